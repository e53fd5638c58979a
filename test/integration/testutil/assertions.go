//go:build integration

package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
)

// DecodeJSON reads and decodes a JSON response body into dst.
func DecodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
}

// AssertStatus checks that the response has the expected HTTP status code.
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// AssertErrorCode checks the status and the error code in the JSON body.
func AssertErrorCode(t *testing.T, resp *http.Response, status int, expectedCode string) {
	t.Helper()
	AssertStatus(t, resp, status)
	var body struct {
		Code string `json:"code"`
	}
	DecodeJSON(t, resp, &body)
	if body.Code != expectedCode {
		t.Errorf("expected error code %q, got %q", expectedCode, body.Code)
	}
}

// CountHistory returns the number of status-history rows for a booking.
func CountHistory(t *testing.T, env *TestEnv, bookingID uuid.UUID) int {
	t.Helper()
	return count(t, env, `SELECT COUNT(*) FROM booking_status_history WHERE booking_id = $1`, bookingID)
}

// CountOutboxEvents returns the number of outbox rows for an aggregate.
func CountOutboxEvents(t *testing.T, env *TestEnv, aggregateID uuid.UUID) int {
	t.Helper()
	return count(t, env, `SELECT COUNT(*) FROM event_outbox WHERE aggregate_id = $1`, aggregateID.String())
}

// CountBookings returns the number of booking rows for a game.
func CountBookings(t *testing.T, env *TestEnv, gameID uuid.UUID) int {
	t.Helper()
	return count(t, env, `SELECT COUNT(*) FROM bookings WHERE game_id = $1`, gameID)
}

func count(t *testing.T, env *TestEnv, query string, args ...interface{}) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var n int
	if err := env.Pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
