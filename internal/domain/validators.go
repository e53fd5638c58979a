package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxGameNameLength    = 100
	MaxDescriptionLength = 1000
	MaxNotesLength       = 500
	MaxProfileNameLength = 100
	MinPasswordLength    = 8

	// MaxCost is the largest price bookings.cost (numeric(12,0)) can hold.
	MaxCost int64 = 999_999_999_999
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	timeSlotRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

// ValidateEmail checks if an email address is valid.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// NormalizeEmail trims and lower-cases an email for comparison and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateGameName requires a non-blank name of bounded length.
func ValidateGameName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("game name is required")
	}
	if utf8.RuneCountInString(name) > MaxGameNameLength {
		return fmt.Errorf("game name must be at most %d characters", MaxGameNameLength)
	}
	return nil
}

// ValidateBookingDate checks a YYYY-MM-DD calendar date.
func ValidateBookingDate(date string) error {
	if date == "" {
		return fmt.Errorf("booking date is required")
	}
	d, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return fmt.Errorf("booking date must be YYYY-MM-DD")
	}
	if d.Year() < 1 {
		return fmt.Errorf("booking date year must be 0001 or later")
	}
	return nil
}

// ValidateTimeSlot checks a 24-hour HH:MM slot label.
func ValidateTimeSlot(slot string) error {
	if slot == "" {
		return fmt.Errorf("time slot is required")
	}
	if !timeSlotRegex.MatchString(slot) {
		return fmt.Errorf("time slot must be HH:MM (24-hour)")
	}
	return nil
}

// ValidateNotes bounds the optional booking notes.
func ValidateNotes(notes *string) error {
	if notes != nil && utf8.RuneCountInString(*notes) > MaxNotesLength {
		return fmt.Errorf("notes must be at most %d characters", MaxNotesLength)
	}
	return nil
}

// ValidateCost accepts prices from 0 to MaxCost.
func ValidateCost(cost *int64) error {
	if cost == nil {
		return nil
	}
	if *cost < 0 {
		return fmt.Errorf("cost must not be negative, got %d", *cost)
	}
	if *cost > MaxCost {
		return fmt.Errorf("cost must be at most %d, got %d", MaxCost, *cost)
	}
	return nil
}

// ValidateNewBooking runs the field validators for a booking request.
func ValidateNewBooking(nb NewBooking) error {
	if err := ValidateBookingDate(nb.BookingDate); err != nil {
		return err
	}
	if err := ValidateTimeSlot(nb.TimeSlot); err != nil {
		return err
	}
	return ValidateNotes(nb.Notes)
}

// ValidateProfileUpdate checks owner-editable profile fields.
func ValidateProfileUpdate(u ProfileUpdate) error {
	if u.Empty() {
		return fmt.Errorf("nothing to update")
	}
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return fmt.Errorf("name must not be blank")
		}
		if utf8.RuneCountInString(name) > MaxProfileNameLength {
			return fmt.Errorf("name must be at most %d characters", MaxProfileNameLength)
		}
	}
	if u.Email != nil {
		return ValidateEmail(strings.TrimSpace(*u.Email))
	}
	return nil
}
