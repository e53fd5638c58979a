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

// ProfileService owns the identity and role store.
type ProfileService struct {
	db             Pool
	profiles       repository.ProfileRepository
	outbox         repository.OutboxRepository
	bootstrapAdmin string
	logger         *slog.Logger
}

// NewProfileService creates a ProfileService. bootstrapAdmin is the email
// that receives the admin role on first sign-in.
func NewProfileService(
	db Pool,
	profiles repository.ProfileRepository,
	outbox repository.OutboxRepository,
	bootstrapAdmin string,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		db:             db,
		profiles:       profiles,
		outbox:         outbox,
		bootstrapAdmin: domain.NormalizeEmail(bootstrapAdmin),
		logger:         logger,
	}
}

// RoleFor returns the role a new profile with this email receives.
func (s *ProfileService) RoleFor(email string) domain.Role {
	if s.bootstrapAdmin != "" && domain.NormalizeEmail(email) == s.bootstrapAdmin {
		return domain.RoleAdmin
	}
	return domain.RoleUser
}

// EnsureProfile returns the principal's profile, creating it on first
// authentication. Concurrent first sign-ins converge on one row.
func (s *ProfileService) EnsureProfile(ctx context.Context, principalID uuid.UUID, email, name string) (*domain.Profile, error) {
	existing, err := s.profiles.FindByID(ctx, s.db, principalID)
	if err != nil {
		return nil, storageError("find profile", err)
	}
	if existing != nil {
		return existing, nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, storageError("begin tx", err)
	}
	defer tx.Rollback(ctx)

	p, err := s.ensure(ctx, tx, principalID, email, name)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, storageError("commit tx", err)
	}
	return p, nil
}

// ensure inserts the profile inside db if absent and returns the stored row.
func (s *ProfileService) ensure(ctx context.Context, db repository.DBTX, principalID uuid.UUID, email, name string) (*domain.Profile, error) {
	email = domain.NormalizeEmail(email)
	name = strings.TrimSpace(name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	p := &domain.Profile{
		ID:    principalID,
		Email: email,
		Name:  name,
		Role:  s.RoleFor(email),
	}
	created, err := s.profiles.InsertIfAbsent(ctx, db, p)
	if err != nil {
		return nil, storageError("create profile", err)
	}
	if !created {
		stored, err := s.profiles.FindByID(ctx, db, principalID)
		if err != nil {
			return nil, storageError("find profile", err)
		}
		if stored == nil {
			return nil, domain.ErrInternal("profile vanished after insert conflict", nil)
		}
		return stored, nil
	}

	if err := s.outbox.Insert(ctx, db, domain.NewProfileCreatedEvent(p)); err != nil {
		return nil, storageError("insert outbox event", err)
	}
	s.logger.Info("profile created", "profile_id", p.ID, "role", p.Role)
	return p, nil
}

// Get returns a profile by id. Profiles are readable by anyone.
func (s *ProfileService) Get(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	p, err := s.profiles.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, storageError("find profile", err)
	}
	if p == nil {
		return nil, domain.ErrNotFound("profile", id.String())
	}
	return p, nil
}

// UpdateOwn changes the caller's name and/or email. The role is never
// changed through this path.
func (s *ProfileService) UpdateOwn(ctx context.Context, p policy.Principal, id uuid.UUID, u domain.ProfileUpdate) (*domain.Profile, error) {
	if d := policy.CanUpdateProfile(p, id); !d.Allowed {
		return nil, d.Err("profile", id.String())
	}
	if err := domain.ValidateProfileUpdate(u); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if u.Email != nil {
		normalized := domain.NormalizeEmail(*u.Email)
		u.Email = &normalized
	}
	if u.Name != nil {
		trimmed := strings.TrimSpace(*u.Name)
		u.Name = &trimmed
	}

	updated, err := s.profiles.Update(ctx, s.db, id, u)
	if err != nil {
		return nil, storageError("update profile", err)
	}
	if updated == nil {
		return nil, domain.ErrNotFound("profile", id.String())
	}
	return updated, nil
}

// List returns every profile for admins and an empty list for anyone else.
func (s *ProfileService) List(ctx context.Context, p policy.Principal) ([]domain.Profile, error) {
	if !policy.CanListProfiles(p).Allowed {
		return []domain.Profile{}, nil
	}
	profiles, err := s.profiles.List(ctx, s.db)
	if err != nil {
		return nil, storageError("list profiles", err)
	}
	return profiles, nil
}
