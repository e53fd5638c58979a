package ledger

import (
	"context"
	"fmt"

	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/policy"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ExecuteDelete physically removes a booking, which is the only way to
// release its slot. Admin only.
func (e *Engine) ExecuteDelete(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID, actor policy.Principal) (*domain.Booking, error) {
	current, err := e.LockBookingForUpdate(ctx, tx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("delete: %w", err)
	}

	if d := policy.CanDeleteBooking(actor, current); !d.Allowed {
		return nil, d.Err("booking", bookingID.String())
	}

	deleted, err := e.bookings.Delete(ctx, tx, current.ID)
	if err != nil {
		return nil, fmt.Errorf("delete: %w", err)
	}
	if !deleted {
		return nil, domain.ErrNotFound("booking", bookingID.String())
	}

	if err := e.recordChange(ctx, tx, nil, domain.NewBookingDeletedEvent(current, actor.ID)); err != nil {
		return nil, fmt.Errorf("delete: %w", err)
	}
	return current, nil
}
