package domain

import (
	"time"

	"github.com/google/uuid"
)

// Game is a bookable catalog entry.
type Game struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DefaultGames is the catalog seeded by the initial migration.
var DefaultGames = []string{"Cricket", "Carrom", "Badminton", "Table Tennis"}
