package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types.
type EventType string

const (
	EventProfileCreated        EventType = "profile.created"
	EventGameCreated           EventType = "game.created"
	EventGameActivationChanged EventType = "game.activation_changed"
	EventBookingCreated        EventType = "booking.created"
	EventBookingStatusChanged  EventType = "booking.status_changed"
	EventBookingDeleted        EventType = "booking.deleted"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateProfile AggregateType = "profile"
	AggregateGame    AggregateType = "game"
	AggregateBooking AggregateType = "booking"
)

// OutboxDraft is the payload written to the event_outbox table.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateType AggregateType   `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     EventType       `json:"event_type"`
	PartitionKey  string          `json:"partition_key"`
	Headers       json.RawMessage `json:"headers"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// OutboxRow is a stored outbox event awaiting publication.
type OutboxRow struct {
	ID int64 `json:"id"`
	OutboxDraft
	PublishedAt *time.Time `json:"published_at,omitempty"`
}
