package ledger

import (
	"context"
	"fmt"

	"github.com/courtside/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ExecuteCreate inserts a pending booking for nb.UserID. Authorization
// (self-booking only) is the caller's job; this validates and writes.
// A taken slot surfaces as a CONFLICT from the insert itself.
func (e *Engine) ExecuteCreate(ctx context.Context, tx pgx.Tx, nb domain.NewBooking) (*domain.Booking, error) {
	if err := domain.ValidateNewBooking(nb); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	b := &domain.Booking{
		ID:          uuid.New(),
		UserID:      nb.UserID,
		GameID:      nb.GameID,
		BookingDate: nb.BookingDate,
		TimeSlot:    nb.TimeSlot,
		Status:      domain.StatusPending,
		Notes:       nb.Notes,
	}
	if err := e.bookings.Insert(ctx, tx, b); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	change := &domain.StatusChange{BookingID: b.ID, ToStatus: domain.StatusPending, ChangedBy: nb.UserID}
	if err := e.recordChange(ctx, tx, change, domain.NewBookingCreatedEvent(b)); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	return b, nil
}
