package ledger

import (
	"context"
	"fmt"

	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Engine owns every write to the booking ledger. Each command runs inside
// the caller's transaction and records, alongside the booking change, one
// status-history row and one outbox event:
//
//	create      -> insert (slot unique index) + history(nil -> pending) + booking.created
//	transition  -> lock + policy + update      + history(from -> to)      + booking.status_changed
//	delete      -> lock + policy + delete                                 + booking.deleted
type Engine struct {
	bookings repository.BookingRepository
	outbox   repository.OutboxRepository
}

// NewEngine creates a ledger engine with the given repositories.
func NewEngine(bookings repository.BookingRepository, outbox repository.OutboxRepository) *Engine {
	return &Engine{bookings: bookings, outbox: outbox}
}

// LockBookingForUpdate acquires a row-level lock and returns the booking.
// Must be called within a transaction.
func (e *Engine) LockBookingForUpdate(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID) (*domain.Booking, error) {
	b, err := e.bookings.LockForUpdate(ctx, tx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("lock booking: %w", err)
	}
	if b == nil {
		return nil, domain.ErrNotFound("booking", bookingID.String())
	}
	return b, nil
}

// recordChange appends the history row and the outbox event for a change.
func (e *Engine) recordChange(ctx context.Context, tx pgx.Tx, change *domain.StatusChange, event domain.OutboxDraft) error {
	if change != nil {
		if err := e.bookings.InsertStatusChange(ctx, tx, change); err != nil {
			return fmt.Errorf("record status change: %w", err)
		}
	}
	if err := e.outbox.Insert(ctx, tx, event); err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}
