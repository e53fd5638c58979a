package ledger

import (
	"context"
	"fmt"

	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/policy"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransitionParams describes a requested status change.
type TransitionParams struct {
	BookingID uuid.UUID
	To        domain.BookingStatus
	Cost      *int64
	Actor     policy.Principal
}

// TransitionResult is the booking after the change plus the status it left.
type TransitionResult struct {
	Booking *domain.Booking
	From    domain.BookingStatus
}

// ExecuteTransition moves a booking along the status machine.
//
// The row is locked first and the policy is evaluated against the locked,
// committed state, so two racing transitions cannot both leave pending.
func (e *Engine) ExecuteTransition(ctx context.Context, tx pgx.Tx, params TransitionParams) (*TransitionResult, error) {
	if err := domain.ValidateCost(params.Cost); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	current, err := e.LockBookingForUpdate(ctx, tx, params.BookingID)
	if err != nil {
		return nil, fmt.Errorf("transition: %w", err)
	}

	decision := policy.EvaluateTransition(params.Actor, current, params.To, params.Cost)
	if !decision.Allowed {
		return nil, decision.Err("booking", params.BookingID.String())
	}

	updated, err := e.bookings.UpdateStatus(ctx, tx, current.ID, params.To, params.Cost)
	if err != nil {
		return nil, fmt.Errorf("transition: %w", err)
	}
	if updated == nil {
		return nil, domain.ErrNotFound("booking", params.BookingID.String())
	}

	from := current.Status
	change := &domain.StatusChange{
		BookingID:  updated.ID,
		FromStatus: &from,
		ToStatus:   updated.Status,
		Cost:       params.Cost,
		ChangedBy:  params.Actor.ID,
	}
	event := domain.NewBookingStatusChangedEvent(updated, from, params.Actor.ID)
	if err := e.recordChange(ctx, tx, change, event); err != nil {
		return nil, fmt.Errorf("transition: %w", err)
	}

	return &TransitionResult{Booking: updated, From: from}, nil
}

// ExecuteConfirm accepts a pending booking, optionally pricing it.
func (e *Engine) ExecuteConfirm(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID, cost *int64, actor policy.Principal) (*TransitionResult, error) {
	return e.ExecuteTransition(ctx, tx, TransitionParams{BookingID: bookingID, To: domain.StatusConfirmed, Cost: cost, Actor: actor})
}

// ExecuteCancel rejects (admin) or withdraws (owner) a pending booking.
// The slot stays occupied until the booking row is deleted.
func (e *Engine) ExecuteCancel(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID, actor policy.Principal) (*TransitionResult, error) {
	return e.ExecuteTransition(ctx, tx, TransitionParams{BookingID: bookingID, To: domain.StatusCanceled, Actor: actor})
}

// ExecuteMarkNoShow records that a confirmed booking was not attended.
func (e *Engine) ExecuteMarkNoShow(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID, actor policy.Principal) (*TransitionResult, error) {
	return e.ExecuteTransition(ctx, tx, TransitionParams{BookingID: bookingID, To: domain.StatusNoShow, Actor: actor})
}
