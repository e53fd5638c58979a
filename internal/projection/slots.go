package projection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BookedSlots is the cached set of occupied time slots for one game and date.
// It is advisory: the bookings unique index remains the source of truth.
type BookedSlots struct {
	GameID   uuid.UUID `json:"game_id"`
	Date     string    `json:"date"`
	Slots    []string  `json:"slots"`
	Version  string    `json:"version,omitempty"`
	CachedAt string    `json:"cached_at"`
}

// DefaultSlotTTL bounds how stale a cached slot list can get if an
// invalidation is lost.
const DefaultSlotTTL = time.Minute

// slotVersionTTL must outlive any cached list, or an expired version would
// match lists written before it was set.
const slotVersionTTL = 24 * time.Hour

func slotsKey(gameID uuid.UUID, date string) string {
	return fmt.Sprintf("projection:slots:%s:%s", gameID, date)
}

func slotsVersionKey(gameID uuid.UUID, date string) string {
	return fmt.Sprintf("projection:slots-version:%s:%s", gameID, date)
}

// BookedSlotsVersion returns the current invalidation version for (game, date),
// or "" if it was never invalidated. Read it before loading the slots from
// storage and pass it to PutBookedSlots.
func BookedSlotsVersion(ctx context.Context, store Store, gameID uuid.UUID, date string) (string, error) {
	v, err := store.Get(ctx, slotsVersionKey(gameID, date))
	if errors.Is(err, ErrMiss) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// PutBookedSlots caches the occupied slots for (game, date), stamped with the
// version read before the slots were loaded.
func PutBookedSlots(ctx context.Context, store Store, gameID uuid.UUID, date, version string, slots []string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultSlotTTL
	}
	p := BookedSlots{
		GameID:   gameID,
		Date:     date,
		Slots:    slots,
		Version:  version,
		CachedAt: time.Now().UTC().Format(time.RFC3339),
	}
	return SetJSON(ctx, store, slotsKey(gameID, date), p, ttl)
}

// GetBookedSlots returns the cached slots, or ErrMiss. A list stamped with an
// older version than the current one is a miss: it was loaded before the last
// invalidation and may lack a booking committed since.
func GetBookedSlots(ctx context.Context, store Store, gameID uuid.UUID, date string) (*BookedSlots, error) {
	var p BookedSlots
	if err := GetJSON(ctx, store, slotsKey(gameID, date), &p); err != nil {
		return nil, err
	}
	current, err := BookedSlotsVersion(ctx, store, gameID, date)
	if err != nil {
		return nil, err
	}
	if p.Version != current {
		return nil, ErrMiss
	}
	return &p, nil
}

// InvalidateBookedSlots bumps the version for (game, date) and drops the
// cached slots.
func InvalidateBookedSlots(ctx context.Context, store Store, gameID uuid.UUID, date string) error {
	if err := store.Set(ctx, slotsVersionKey(gameID, date), []byte(uuid.NewString()), slotVersionTTL); err != nil {
		return err
	}
	return store.Delete(ctx, slotsKey(gameID, date))
}
