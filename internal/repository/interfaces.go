package repository

import (
	"context"
	"time"

	"github.com/courtside/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// AuthUserRepository provides access to auth_users.
type AuthUserRepository interface {
	// FindByEmail returns the credential row for a normalized email, or nil.
	FindByEmail(ctx context.Context, db DBTX, email string) (*domain.AuthUser, error)

	// FindByID returns the credential row, or nil.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.AuthUser, error)

	// Create inserts a credential row. A duplicate email is a CONFLICT.
	Create(ctx context.Context, db DBTX, user *domain.AuthUser) error
}

// ProfileRepository provides access to profiles.
type ProfileRepository interface {
	// FindByID returns a profile, or nil if absent.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Profile, error)

	// InsertIfAbsent creates the profile unless a row with the same id exists.
	// It reports whether a row was created.
	InsertIfAbsent(ctx context.Context, db DBTX, p *domain.Profile) (bool, error)

	// Update applies the non-nil fields of u and returns the updated row, or nil if absent.
	Update(ctx context.Context, db DBTX, id uuid.UUID, u domain.ProfileUpdate) (*domain.Profile, error)

	// List returns all profiles ordered by creation time.
	List(ctx context.Context, db DBTX) ([]domain.Profile, error)
}

// GameRepository provides access to games.
type GameRepository interface {
	ListActive(ctx context.Context, db DBTX) ([]domain.Game, error)
	ListAll(ctx context.Context, db DBTX) ([]domain.Game, error)

	// FindByID returns a game, or nil if absent.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Game, error)

	Create(ctx context.Context, db DBTX, g *domain.Game) error

	// SetActive updates the active flag and returns the row, or nil if absent.
	SetActive(ctx context.Context, db DBTX, id uuid.UUID, active bool) (*domain.Game, error)
}

// BookingRepository provides access to bookings and their status history.
type BookingRepository interface {
	// Insert creates a booking. A slot already present under any status is a CONFLICT.
	Insert(ctx context.Context, db DBTX, b *domain.Booking) error

	// FindByID returns a booking, or nil if absent.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Booking, error)

	// LockForUpdate acquires a row-level lock (SELECT FOR UPDATE) and returns the booking.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Booking, error)

	// UpdateStatus sets status and, when cost is non-nil, cost.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.BookingStatus, cost *int64) (*domain.Booking, error)

	// Delete removes a booking and reports whether a row existed.
	Delete(ctx context.Context, db DBTX, id uuid.UUID) (bool, error)

	// ListByUser returns a user's bookings, newest first.
	ListByUser(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.Booking, error)

	// ListAll returns every booking with owner and game display data, newest first.
	ListAll(ctx context.Context, db DBTX) ([]domain.BookingDetail, error)

	// ListBookedSlots returns the sorted time slots held by pending or confirmed
	// bookings for a game and date.
	ListBookedSlots(ctx context.Context, db DBTX, gameID uuid.UUID, date string) ([]string, error)

	InsertStatusChange(ctx context.Context, db DBTX, c *domain.StatusChange) error
	ListStatusChanges(ctx context.Context, db DBTX, bookingID uuid.UUID) ([]domain.StatusChange, error)
}

// OutboxRepository provides access to event_outbox.
type OutboxRepository interface {
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublished locks up to limit unpublished rows (FOR UPDATE SKIP LOCKED),
	// oldest first. Call inside a transaction.
	FetchUnpublished(ctx context.Context, tx pgx.Tx, limit int) ([]domain.OutboxRow, error)

	MarkPublished(ctx context.Context, db DBTX, ids []int64) error

	// PurgePublished deletes rows published before cutoff and returns the count.
	PurgePublished(ctx context.Context, db DBTX, cutoff time.Time) (int64, error)
}

// LoginAttemptRepository records authentication attempts for lockout.
type LoginAttemptRepository interface {
	Record(ctx context.Context, db DBTX, email, ip string, success bool) error
	CountFailuresSince(ctx context.Context, db DBTX, email string, since time.Time) (int, error)
}
