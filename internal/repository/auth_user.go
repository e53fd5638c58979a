package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/courtside/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PgAuthUserRepository implements AuthUserRepository using pgx.
type PgAuthUserRepository struct{}

// NewPgAuthUserRepository creates a new PgAuthUserRepository.
func NewPgAuthUserRepository() *PgAuthUserRepository {
	return &PgAuthUserRepository{}
}

const authUserColumns = `id, email, password_hash, created_at, updated_at`

func scanAuthUser(row pgx.Row) (*domain.AuthUser, error) {
	u := &domain.AuthUser{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan auth user: %w", err)
	}
	return u, nil
}

// FindByEmail returns an auth user by email, or nil if not found.
func (r *PgAuthUserRepository) FindByEmail(ctx context.Context, db DBTX, email string) (*domain.AuthUser, error) {
	return scanAuthUser(db.QueryRow(ctx,
		`SELECT `+authUserColumns+` FROM auth_users WHERE lower(email) = lower($1)`, email))
}

// FindByID returns an auth user by id, or nil if not found.
func (r *PgAuthUserRepository) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.AuthUser, error) {
	return scanAuthUser(db.QueryRow(ctx,
		`SELECT `+authUserColumns+` FROM auth_users WHERE id = $1`, id))
}

// Create inserts a new auth user.
func (r *PgAuthUserRepository) Create(ctx context.Context, db DBTX, user *domain.AuthUser) error {
	err := db.QueryRow(ctx,
		`INSERT INTO auth_users (id, email, password_hash) VALUES ($1, $2, $3)
		 RETURNING created_at, updated_at`,
		user.ID, user.Email, user.PasswordHash).Scan(&user.CreatedAt, &user.UpdatedAt)
	if IsUniqueViolation(err, ConstraintAuthUserEmail) {
		return domain.ErrConflict("email already registered")
	}
	if err != nil {
		return fmt.Errorf("insert auth user: %w", err)
	}
	return nil
}
