package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/courtside/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PgProfileRepository implements ProfileRepository using pgx.
type PgProfileRepository struct{}

// NewPgProfileRepository creates a new PgProfileRepository.
func NewPgProfileRepository() *PgProfileRepository {
	return &PgProfileRepository{}
}

const profileColumns = `id, email, name, role, created_at, updated_at`

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	p := &domain.Profile{}
	err := row.Scan(&p.ID, &p.Email, &p.Name, &p.Role, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	return p, nil
}

// FindByID returns a profile, or nil if not found.
func (r *PgProfileRepository) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Profile, error) {
	return scanProfile(db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
}

// InsertIfAbsent creates a profile; concurrent first sign-ins for the same
// principal collapse onto one row.
func (r *PgProfileRepository) InsertIfAbsent(ctx context.Context, db DBTX, p *domain.Profile) (bool, error) {
	err := db.QueryRow(ctx,
		`INSERT INTO profiles (id, email, name, role) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO NOTHING
		 RETURNING created_at, updated_at`,
		p.ID, p.Email, p.Name, p.Role).Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert profile: %w", err)
	}
	return true, nil
}

// Update modifies the owner-editable fields of a profile.
func (r *PgProfileRepository) Update(ctx context.Context, db DBTX, id uuid.UUID, u domain.ProfileUpdate) (*domain.Profile, error) {
	var name, email *string
	if u.Name != nil {
		v := strings.TrimSpace(*u.Name)
		name = &v
	}
	if u.Email != nil {
		v := domain.NormalizeEmail(*u.Email)
		email = &v
	}
	return scanProfile(db.QueryRow(ctx,
		`UPDATE profiles SET
		   name  = COALESCE($2, name),
		   email = COALESCE($3, email)
		 WHERE id = $1
		 RETURNING `+profileColumns,
		id, name, email))
}

// List returns all profiles, oldest first.
func (r *PgProfileRepository) List(ctx context.Context, db DBTX) ([]domain.Profile, error) {
	rows, err := db.Query(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []domain.Profile
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.ID, &p.Email, &p.Name, &p.Role, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
