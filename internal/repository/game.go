package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/courtside/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PgGameRepository implements GameRepository using pgx.
type PgGameRepository struct{}

// NewPgGameRepository creates a new PgGameRepository.
func NewPgGameRepository() *PgGameRepository {
	return &PgGameRepository{}
}

const gameColumns = `id, name, description, is_active, created_at, updated_at`

func scanGame(row pgx.Row) (*domain.Game, error) {
	g := &domain.Game{}
	err := row.Scan(&g.ID, &g.Name, &g.Description, &g.IsActive, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan game: %w", err)
	}
	return g, nil
}

func (r *PgGameRepository) list(ctx context.Context, db DBTX, query string) ([]domain.Game, error) {
	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var games []domain.Game
	for rows.Next() {
		var g domain.Game
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.IsActive, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// ListActive returns active games ordered by name.
func (r *PgGameRepository) ListActive(ctx context.Context, db DBTX) ([]domain.Game, error) {
	return r.list(ctx, db, `SELECT `+gameColumns+` FROM games WHERE is_active ORDER BY name ASC`)
}

// ListAll returns every game ordered by name.
func (r *PgGameRepository) ListAll(ctx context.Context, db DBTX) ([]domain.Game, error) {
	return r.list(ctx, db, `SELECT `+gameColumns+` FROM games ORDER BY name ASC`)
}

// FindByID returns a game, or nil if not found.
func (r *PgGameRepository) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Game, error) {
	return scanGame(db.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id))
}

// Create inserts a game and fills its timestamps.
func (r *PgGameRepository) Create(ctx context.Context, db DBTX, g *domain.Game) error {
	err := db.QueryRow(ctx,
		`INSERT INTO games (id, name, description, is_active) VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`,
		g.ID, g.Name, g.Description, g.IsActive).Scan(&g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

// SetActive toggles the active flag. Setting the current value is a no-op update.
func (r *PgGameRepository) SetActive(ctx context.Context, db DBTX, id uuid.UUID, active bool) (*domain.Game, error) {
	return scanGame(db.QueryRow(ctx,
		`UPDATE games SET is_active = $2 WHERE id = $1 RETURNING `+gameColumns, id, active))
}
