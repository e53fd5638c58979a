package repository

import (
	"context"
	"fmt"
	"time"
)

// PgLoginAttemptRepository implements LoginAttemptRepository using pgx.
type PgLoginAttemptRepository struct{}

// NewPgLoginAttemptRepository creates a new PgLoginAttemptRepository.
func NewPgLoginAttemptRepository() *PgLoginAttemptRepository {
	return &PgLoginAttemptRepository{}
}

// Record inserts a login attempt row.
func (r *PgLoginAttemptRepository) Record(ctx context.Context, db DBTX, email, ip string, success bool) error {
	_, err := db.Exec(ctx, `
		INSERT INTO login_attempts (email, ip_address, success)
		VALUES (lower($1), $2, $3)`,
		email, ip, success)
	if err != nil {
		return fmt.Errorf("record login attempt: %w", err)
	}
	return nil
}

// CountFailuresSince counts failed attempts for email after since.
func (r *PgLoginAttemptRepository) CountFailuresSince(ctx context.Context, db DBTX, email string, since time.Time) (int, error) {
	var count int
	err := db.QueryRow(ctx, `
		SELECT COUNT(*) FROM login_attempts
		WHERE email = lower($1) AND success = false AND created_at > $2`,
		email, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count login failures: %w", err)
	}
	return count, nil
}
