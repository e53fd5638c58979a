package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/courtside/platform/internal/auth"
	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/guard"
	"github.com/courtside/platform/internal/infra"
	"github.com/courtside/platform/internal/projection"
	"github.com/courtside/platform/internal/repository/repotest"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	t      *testing.T
	router chi.Router
	store  *repotest.Store
	games  map[string]domain.Game
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	store := repotest.NewStore()
	store.Bookings.CheckForeignKeys = true

	games := map[string]domain.Game{}
	for _, g := range store.Games.Seed(true, domain.DefaultGames...) {
		games[g.Name] = g
	}
	squash := store.Games.Seed(false, "Squash")[0]
	games[squash.Name] = squash

	cfg := &infra.Config{
		BootstrapAdminEmail: "admin@courtside.test",
		SlotSchedule:        []string{"09:00", "10:00", "11:00"},
		SlotCacheTTL:        time.Minute,
		CORSAllowedOrigins:  "*",
	}

	router := NewRouter(RouterDeps{
		Pool: &repotest.Pool{},
		Repos: Repositories{
			AuthUsers:     store.AuthUsers,
			Profiles:      store.Profiles,
			Games:         store.Games,
			Bookings:      store.Bookings,
			Outbox:        store.Outbox,
			LoginAttempts: store.LoginAttempts,
		},
		Health:       func(context.Context) error { return nil },
		Config:       cfg,
		JWTMgr:       auth.NewJWTManager("router-test-secret-with-enough-length", time.Hour),
		Revocations:  auth.NewMemoryRevocationStore(),
		SlotStore:    projection.NewInMemoryStore(),
		BookingLimit: guard.NewRateLimiter(100, time.Minute),
		LoginLimit:   guard.NewRateLimiter(100, time.Minute),
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return &testApp{t: t, router: router, store: store, games: games}
}

func (a *testApp) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, path, &buf)
	r.Header.Set("Content-Type", "application/json")
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, r)
	return w
}

// register signs up email and returns its token and profile id.
func (a *testApp) register(email string) (string, string) {
	a.t.Helper()
	w := a.do(http.MethodPost, "/auth/register", "", map[string]string{
		"email": email, "password": "securepass123",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	var res struct {
		Token   string `json:"token"`
		Profile struct {
			ID string `json:"id"`
		} `json:"profile"`
	}
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &res))
	return res.Token, res.Profile.ID
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	return decode[map[string]string](t, w)["code"]
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	w := app.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)
	tokenA, _ := app.register("a@example.com")
	tokenB, _ := app.register("b@example.com")
	adminToken, _ := app.register("admin@courtside.test")
	cricket := app.games["Cricket"].ID.String()

	w := app.do(http.MethodPost, "/bookings", tokenA, map[string]string{
		"game_id": cricket, "booking_date": "2024-06-15", "time_slot": "10:00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	booking := decode[domain.Booking](t, w)
	assert.Equal(t, domain.StatusPending, booking.Status)
	assert.Nil(t, booking.Cost)
	bookingPath := "/bookings/" + booking.ID.String()

	w = app.do(http.MethodPost, "/bookings", tokenB, map[string]string{
		"game_id": cricket, "booking_date": "2024-06-15", "time_slot": "10:00",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, domain.CodeConflict, errCode(t, w))

	w = app.do(http.MethodGet, bookingPath, tokenB, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(http.MethodPost, bookingPath+"/transition", tokenA, map[string]interface{}{"status": "confirmed"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(http.MethodPost, bookingPath+"/transition", adminToken, map[string]interface{}{"status": "confirmed", "cost": 500})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	confirmed := decode[domain.Booking](t, w)
	assert.Equal(t, domain.StatusConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.Cost)
	assert.Equal(t, int64(500), *confirmed.Cost)

	w = app.do(http.MethodPost, bookingPath+"/transition", adminToken, map[string]interface{}{"status": "no-show"})
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(http.MethodPost, bookingPath+"/transition", adminToken, map[string]interface{}{"status": "confirmed"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, domain.CodeInvalidTransition, errCode(t, w))

	w = app.do(http.MethodGet, bookingPath+"/history", tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[struct {
		Changes []domain.StatusChange `json:"changes"`
		Audit   struct {
			AllPassed bool `json:"all_passed"`
		} `json:"audit"`
	}](t, w)
	assert.Len(t, history.Changes, 3)
	assert.True(t, history.Audit.AllPassed)

	w = app.do(http.MethodGet, "/admin/bookings", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[[]domain.BookingDetail](t, w)
	require.Len(t, all, 1)
	assert.Equal(t, "Cricket", all[0].GameName)
	assert.Equal(t, "a@example.com", all[0].UserEmail)
}

func TestCreateBookingForSomeoneElse(t *testing.T) {
	app := newTestApp(t)
	_, idA := app.register("a@example.com")
	adminToken, _ := app.register("admin@courtside.test")

	w := app.do(http.MethodPost, "/bookings", adminToken, map[string]string{
		"user_id": idA, "game_id": app.games["Carrom"].ID.String(), "booking_date": "2024-06-15", "time_slot": "10:00",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCatalogVisibility(t *testing.T) {
	app := newTestApp(t)
	userToken, _ := app.register("a@example.com")
	adminToken, _ := app.register("admin@courtside.test")
	squash := "/games/" + app.games["Squash"].ID.String()

	w := app.do(http.MethodGet, "/games", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Game](t, w), len(domain.DefaultGames))

	w = app.do(http.MethodGet, "/games/all", userToken, nil)
	assert.Len(t, decode[[]domain.Game](t, w), len(domain.DefaultGames))

	w = app.do(http.MethodGet, "/games/all", adminToken, nil)
	assert.Len(t, decode[[]domain.Game](t, w), len(domain.DefaultGames)+1)

	assert.Equal(t, http.StatusNotFound, app.do(http.MethodGet, squash, "", nil).Code)
	assert.Equal(t, http.StatusOK, app.do(http.MethodGet, squash, adminToken, nil).Code)

	w = app.do(http.MethodGet, "/games", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRoutes(t *testing.T) {
	app := newTestApp(t)
	userToken, _ := app.register("a@example.com")
	adminToken, _ := app.register("admin@courtside.test")

	assert.Equal(t, http.StatusUnauthorized, app.do(http.MethodGet, "/admin/profiles", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, app.do(http.MethodGet, "/admin/profiles", userToken, nil).Code)

	w := app.do(http.MethodGet, "/admin/profiles", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Profile](t, w), 2)

	w = app.do(http.MethodPost, "/admin/games", adminToken, map[string]string{"name": "Squash Doubles"})
	require.Equal(t, http.StatusCreated, w.Code)
	game := decode[domain.Game](t, w)
	assert.True(t, game.IsActive)

	w = app.do(http.MethodPatch, "/admin/games/"+game.ID.String(), adminToken, map[string]bool{"is_active": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[domain.Game](t, w).IsActive)

	w = app.do(http.MethodPatch, "/admin/games/"+game.ID.String(), adminToken, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminDeleteReopensSlot(t *testing.T) {
	app := newTestApp(t)
	tokenA, _ := app.register("a@example.com")
	tokenB, _ := app.register("b@example.com")
	adminToken, _ := app.register("admin@courtside.test")
	game := app.games["Badminton"].ID.String()
	body := map[string]string{"game_id": game, "booking_date": "2024-06-15", "time_slot": "09:00"}

	w := app.do(http.MethodPost, "/bookings", tokenA, body)
	require.Equal(t, http.StatusCreated, w.Code)
	booking := decode[domain.Booking](t, w)

	w = app.do(http.MethodPost, "/bookings/"+booking.ID.String()+"/transition", tokenA, map[string]string{"status": "canceled"})
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(http.MethodGet, "/games/"+game+"/available-slots?date=2024-06-15", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode[map[string]interface{}](t, w)["slots"], "09:00")

	assert.Equal(t, http.StatusConflict, app.do(http.MethodPost, "/bookings", tokenB, body).Code)

	assert.Equal(t, http.StatusForbidden, app.do(http.MethodDelete, "/admin/bookings/"+booking.ID.String(), tokenA, nil).Code)
	assert.Equal(t, http.StatusNoContent, app.do(http.MethodDelete, "/admin/bookings/"+booking.ID.String(), adminToken, nil).Code)

	assert.Equal(t, http.StatusCreated, app.do(http.MethodPost, "/bookings", tokenB, body).Code)

	w = app.do(http.MethodGet, "/games/"+game+"/booked-slots?date=2024-06-15", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"09:00"}, decode[map[string]interface{}](t, w)["slots"])
}

func TestSessionLifecycle(t *testing.T) {
	app := newTestApp(t)
	token, id := app.register("a@example.com")

	w := app.do(http.MethodGet, "/auth/session", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(http.MethodPatch, "/profiles/me", token, map[string]string{"name": "Asha"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Asha", decode[domain.Profile](t, w).Name)

	w = app.do(http.MethodGet, "/profiles/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Asha", decode[domain.Profile](t, w).Name)

	w = app.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "a@example.com", "password": "securepass123"})
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(http.MethodPost, "/auth/refresh", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	refreshed := decode[struct {
		Token string `json:"token"`
	}](t, w).Token

	assert.Equal(t, http.StatusUnauthorized, app.do(http.MethodGet, "/auth/session", token, nil).Code)

	assert.Equal(t, http.StatusNoContent, app.do(http.MethodPost, "/auth/logout", refreshed, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, app.do(http.MethodGet, "/auth/session", refreshed, nil).Code)
}
