package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus is the lifecycle state of a Booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCanceled  BookingStatus = "canceled"
	StatusNoShow    BookingStatus = "no-show"
)

// allowedTransitions lists every legal status edge. pending is the only
// initial state; canceled and no-show have no outgoing edges.
var allowedTransitions = map[BookingStatus]map[BookingStatus]bool{
	StatusPending: {
		StatusConfirmed: true,
		StatusCanceled:  true,
	},
	StatusConfirmed: {
		StatusNoShow: true,
	},
	StatusCanceled: {},
	StatusNoShow:   {},
}

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// Terminal reports whether no transition leaves s.
func (s BookingStatus) Terminal() bool {
	return s.Valid() && len(allowedTransitions[s]) == 0
}

// OccupiesSlot reports whether a booking in status s is counted as a booked slot.
func (s BookingStatus) OccupiesSlot() bool {
	return s == StatusPending || s == StatusConfirmed
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to BookingStatus) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

// NextStatuses returns the statuses reachable from s in one step.
func NextStatuses(s BookingStatus) []BookingStatus {
	var out []BookingStatus
	for _, candidate := range []BookingStatus{StatusPending, StatusConfirmed, StatusCanceled, StatusNoShow} {
		if allowedTransitions[s][candidate] {
			out = append(out, candidate)
		}
	}
	return out
}

// Booking is a reservation of one slot: (game, date, time).
type Booking struct {
	ID          uuid.UUID     `json:"id"`
	UserID      uuid.UUID     `json:"user_id"`
	GameID      uuid.UUID     `json:"game_id"`
	BookingDate string        `json:"booking_date"`
	TimeSlot    string        `json:"time_slot"`
	Status      BookingStatus `json:"status"`
	Cost        *int64        `json:"cost"`
	Notes       *string       `json:"notes,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// OwnedBy reports whether the booking belongs to userID.
func (b *Booking) OwnedBy(userID uuid.UUID) bool { return b.UserID == userID }

// Slot returns the slot identity of the booking.
func (b *Booking) Slot() Slot {
	return Slot{GameID: b.GameID, Date: b.BookingDate, Time: b.TimeSlot}
}

// BookingDetail is a booking joined with owner and game display data.
type BookingDetail struct {
	Booking
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
	GameName  string `json:"game_name"`
}

// Slot is the unique reservation key.
type Slot struct {
	GameID uuid.UUID `json:"game_id"`
	Date   string    `json:"booking_date"`
	Time   string    `json:"time_slot"`
}

// NewBooking is the input for creating a booking.
type NewBooking struct {
	UserID      uuid.UUID `json:"user_id"`
	GameID      uuid.UUID `json:"game_id"`
	BookingDate string    `json:"booking_date"`
	TimeSlot    string    `json:"time_slot"`
	Notes       *string   `json:"notes,omitempty"`
}

// StatusChange is one row of a booking's status history.
type StatusChange struct {
	ID         int64          `json:"id"`
	BookingID  uuid.UUID      `json:"booking_id"`
	FromStatus *BookingStatus `json:"from_status"`
	ToStatus   BookingStatus  `json:"to_status"`
	Cost       *int64         `json:"cost,omitempty"`
	ChangedBy  uuid.UUID      `json:"changed_by"`
	CreatedAt  time.Time      `json:"created_at"`
}
