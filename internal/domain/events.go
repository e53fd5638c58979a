package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BookingStatusChangedPayload is the body of a booking.status_changed event.
type BookingStatusChangedPayload struct {
	BookingID   uuid.UUID     `json:"booking_id"`
	UserID      uuid.UUID     `json:"user_id"`
	GameID      uuid.UUID     `json:"game_id"`
	BookingDate string        `json:"booking_date"`
	TimeSlot    string        `json:"time_slot"`
	From        BookingStatus `json:"from"`
	To          BookingStatus `json:"to"`
	Cost        *int64        `json:"cost,omitempty"`
	ChangedBy   uuid.UUID     `json:"changed_by"`
}

func newDraft(aggType AggregateType, aggID uuid.UUID, evtType EventType, partition string, payload interface{}) OutboxDraft {
	data, _ := json.Marshal(payload)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: aggType,
		AggregateID:   aggID.String(),
		EventType:     evtType,
		PartitionKey:  partition,
		Headers:       json.RawMessage(`{}`),
		Payload:       data,
		OccurredAt:    time.Now().UTC(),
	}
}

// NewProfileCreatedEvent creates a profile lifecycle event.
func NewProfileCreatedEvent(p *Profile) OutboxDraft {
	return newDraft(AggregateProfile, p.ID, EventProfileCreated, p.ID.String(), map[string]string{
		"profile_id": p.ID.String(),
		"email":      p.Email,
		"role":       string(p.Role),
	})
}

// NewGameCreatedEvent creates a catalog event for a new game.
func NewGameCreatedEvent(g *Game) OutboxDraft {
	return newDraft(AggregateGame, g.ID, EventGameCreated, g.ID.String(), g)
}

// NewGameActivationEvent creates a catalog event for an active-flag toggle.
func NewGameActivationEvent(gameID uuid.UUID, active bool, actor uuid.UUID) OutboxDraft {
	return newDraft(AggregateGame, gameID, EventGameActivationChanged, gameID.String(), map[string]interface{}{
		"game_id":    gameID.String(),
		"is_active":  active,
		"changed_by": actor.String(),
	})
}

// NewBookingCreatedEvent creates the event emitted when a slot is requested.
// Bookings are partitioned by owner so a user's events stay ordered.
func NewBookingCreatedEvent(b *Booking) OutboxDraft {
	return newDraft(AggregateBooking, b.ID, EventBookingCreated, b.UserID.String(), b)
}

// NewBookingStatusChangedEvent creates the event emitted on every status transition.
func NewBookingStatusChangedEvent(b *Booking, from BookingStatus, actor uuid.UUID) OutboxDraft {
	return newDraft(AggregateBooking, b.ID, EventBookingStatusChanged, b.UserID.String(), BookingStatusChangedPayload{
		BookingID:   b.ID,
		UserID:      b.UserID,
		GameID:      b.GameID,
		BookingDate: b.BookingDate,
		TimeSlot:    b.TimeSlot,
		From:        from,
		To:          b.Status,
		Cost:        b.Cost,
		ChangedBy:   actor,
	})
}

// NewBookingDeletedEvent creates the event emitted when an admin removes a booking.
func NewBookingDeletedEvent(b *Booking, actor uuid.UUID) OutboxDraft {
	return newDraft(AggregateBooking, b.ID, EventBookingDeleted, b.UserID.String(), map[string]string{
		"booking_id":   b.ID.String(),
		"game_id":      b.GameID.String(),
		"booking_date": b.BookingDate,
		"time_slot":    b.TimeSlot,
		"deleted_by":   actor.String(),
	})
}
