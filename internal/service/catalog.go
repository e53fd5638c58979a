package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/policy"
	"github.com/courtside/platform/internal/repository"
	"github.com/google/uuid"
)

// CatalogService manages the game catalog.
type CatalogService struct {
	db     Pool
	games  repository.GameRepository
	outbox repository.OutboxRepository
	logger *slog.Logger
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(db Pool, games repository.GameRepository, outbox repository.OutboxRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{db: db, games: games, outbox: outbox, logger: logger}
}

// ListActive returns the active games. Open to anonymous callers.
func (s *CatalogService) ListActive(ctx context.Context) ([]domain.Game, error) {
	games, err := s.games.ListActive(ctx, s.db)
	if err != nil {
		return nil, storageError("list games", err)
	}
	return games, nil
}

// ListAll returns every game to admins; other principals see the active ones.
func (s *CatalogService) ListAll(ctx context.Context, p policy.Principal) ([]domain.Game, error) {
	games, err := s.games.ListAll(ctx, s.db)
	if err != nil {
		return nil, storageError("list games", err)
	}
	return policy.VisibleGames(p, games), nil
}

// Get returns a single game, hiding inactive ones from non-admins.
func (s *CatalogService) Get(ctx context.Context, p policy.Principal, id uuid.UUID) (*domain.Game, error) {
	g, err := s.games.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, storageError("find game", err)
	}
	if g == nil {
		return nil, domain.ErrNotFound("game", id.String())
	}
	if d := policy.CanReadGame(p, g); !d.Allowed {
		return nil, d.Err("game", id.String())
	}
	return g, nil
}

// CreateGameInput holds the fields of a new catalog entry.
type CreateGameInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// Create adds an active game. Admin only.
func (s *CatalogService) Create(ctx context.Context, p policy.Principal, input CreateGameInput) (*domain.Game, error) {
	if d := policy.CanWriteGame(p); !d.Allowed {
		return nil, d.Err("game", "")
	}
	if err := domain.ValidateGameName(input.Name); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if input.Description != nil && len([]rune(*input.Description)) > domain.MaxDescriptionLength {
		return nil, domain.ErrValidation("description is too long")
	}

	g := &domain.Game{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		IsActive:    true,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, storageError("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := s.games.Create(ctx, tx, g); err != nil {
		return nil, storageError("create game", err)
	}
	if err := s.outbox.Insert(ctx, tx, domain.NewGameCreatedEvent(g)); err != nil {
		return nil, storageError("insert outbox event", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, storageError("commit tx", err)
	}

	s.logger.Info("game created", "game_id", g.ID, "name", g.Name, "actor", p.ID)
	return g, nil
}

// SetActive shows or hides a game. Setting the current value again is a no-op
// that still returns the game. Admin only.
func (s *CatalogService) SetActive(ctx context.Context, p policy.Principal, id uuid.UUID, active bool) (*domain.Game, error) {
	if d := policy.CanWriteGame(p); !d.Allowed {
		return nil, d.Err("game", id.String())
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, storageError("begin tx", err)
	}
	defer tx.Rollback(ctx)

	current, err := s.games.FindByID(ctx, tx, id)
	if err != nil {
		return nil, storageError("find game", err)
	}
	if current == nil {
		return nil, domain.ErrNotFound("game", id.String())
	}
	if current.IsActive == active {
		return current, nil
	}

	g, err := s.games.SetActive(ctx, tx, id, active)
	if err != nil {
		return nil, storageError("update game", err)
	}
	if g == nil {
		return nil, domain.ErrNotFound("game", id.String())
	}
	if err := s.outbox.Insert(ctx, tx, domain.NewGameActivationEvent(id, active, p.ID)); err != nil {
		return nil, storageError("insert outbox event", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, storageError("commit tx", err)
	}

	s.logger.Info("game activation changed", "game_id", id, "is_active", active, "actor", p.ID)
	return g, nil
}
