//go:build integration

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// TestPassword is used for every account the helpers register.
const TestPassword = "securepass123"

// Register signs up email and returns the token and profile ID.
func (env *TestEnv) Register(email string) (token string, profileID uuid.UUID) {
	env.t.Helper()
	resp := env.POST("/auth/register", map[string]string{
		"email":    email,
		"password": TestPassword,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("Register: expected 201, got %d", resp.StatusCode)
	}

	var result struct {
		Token   string `json:"token"`
		Profile struct {
			ID uuid.UUID `json:"id"`
		} `json:"profile"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("Register: decode: %v", err)
	}
	return result.Token, result.Profile.ID
}

// RegisterAdmin signs up the bootstrap admin address.
func (env *TestEnv) RegisterAdmin() (token string, profileID uuid.UUID) {
	env.t.Helper()
	return env.Register(TestAdminEmail)
}

// Login signs in with TestPassword and returns the token.
func (env *TestEnv) Login(email string) string {
	env.t.Helper()
	resp := env.POST("/auth/login", map[string]string{
		"email":    email,
		"password": TestPassword,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		env.t.Fatalf("Login: expected 200, got %d", resp.StatusCode)
	}
	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("Login: decode: %v", err)
	}
	return result.Token
}

// SeedGame inserts a game directly and returns its ID.
func (env *TestEnv) SeedGame(name string, active bool) uuid.UUID {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id uuid.UUID
	err := env.Pool.QueryRow(ctx,
		`INSERT INTO games (name, description, is_active) VALUES ($1, $2, $3) RETURNING id`,
		name, name+" court", active).Scan(&id)
	if err != nil {
		env.t.Fatalf("SeedGame: %v", err)
	}
	return id
}

// CreateBooking books a slot for the caller and returns the response.
func (env *TestEnv) CreateBooking(token string, gameID uuid.UUID, date, slot string) *http.Response {
	env.t.Helper()
	return env.POST("/bookings", map[string]string{
		"game_id":      gameID.String(),
		"booking_date": date,
		"time_slot":    slot,
	}, token)
}

// Transition posts a status change for a booking.
func (env *TestEnv) Transition(token string, bookingID uuid.UUID, status string, cost *int64) *http.Response {
	env.t.Helper()
	body := map[string]interface{}{"status": status}
	if cost != nil {
		body["cost"] = *cost
	}
	return env.POST("/bookings/"+bookingID.String()+"/transition", body, token)
}

// GET performs an unauthenticated GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodGet, path, nil, "")
}

// AuthGET performs a GET with a bearer token.
func (env *TestEnv) AuthGET(path, token string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodGet, path, nil, token)
}

// POST performs a JSON POST; token may be empty.
func (env *TestEnv) POST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodPost, path, body, token)
}

// AuthPATCH performs a JSON PATCH with a bearer token.
func (env *TestEnv) AuthPATCH(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodPatch, path, body, token)
}

// AuthDELETE performs a DELETE with a bearer token.
func (env *TestEnv) AuthDELETE(path, token string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodDelete, path, nil, token)
}

func (env *TestEnv) do(method, path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("%s %s: marshal: %v", method, path, err)
		}
	}
	req, err := http.NewRequest(method, env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("%s %s: new request: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}
