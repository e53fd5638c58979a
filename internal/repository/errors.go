package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Constraint names declared in db/migrations.
const (
	ConstraintBookingSlot   = "bookings_slot_key"
	ConstraintAuthUserEmail = "auth_users_email_key"
	ConstraintBookingGame   = "bookings_game_id_fkey"
	ConstraintBookingUser   = "bookings_user_id_fkey"
)

const (
	sqlstateUniqueViolation     = "23505"
	sqlstateForeignKeyViolation = "23503"
)

// IsUniqueViolation reports whether err is a unique violation on constraint.
// An empty constraint matches any unique violation.
func IsUniqueViolation(err error, constraint string) bool {
	return isViolation(err, sqlstateUniqueViolation, constraint)
}

// IsForeignKeyViolation reports whether err is a foreign key violation on constraint.
func IsForeignKeyViolation(err error, constraint string) bool {
	return isViolation(err, sqlstateForeignKeyViolation, constraint)
}

func isViolation(err error, code, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != code {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
