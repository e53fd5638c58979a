package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/courtside/platform/internal/auth"
	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/guard"
	"github.com/courtside/platform/internal/ledger"
	"github.com/courtside/platform/internal/policy"
	"github.com/courtside/platform/internal/projection"
	"github.com/courtside/platform/internal/repository/repotest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const bootstrapEmail = "Admin@Club.test"

var testSchedule = []string{"09:00", "10:00", "11:00"}

type fixture struct {
	store    *repotest.Store
	pool     *repotest.Pool
	cache    *projection.InMemoryStore
	revoked  *auth.MemoryRevocationStore
	jwtMgr   *auth.JWTManager
	profiles *ProfileService
	catalog  *CatalogService
	bookings *BookingService
	auth     *AuthService
}

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := discardLogger()
	store := repotest.NewStore()
	pool := &repotest.Pool{}
	cache := projection.NewInMemoryStore()
	revoked := auth.NewMemoryRevocationStore()
	jwtMgr := auth.NewJWTManager("test-secret-key-for-unit-tests", time.Hour)

	profiles := NewProfileService(pool, store.Profiles, store.Outbox, bootstrapEmail, logger)
	engine := ledger.NewEngine(store.Bookings, store.Outbox)
	authSvc := NewAuthService(pool, store.AuthUsers, profiles, jwtMgr, revoked,
		guard.NewLockout(pool, store.LoginAttempts, logger), logger)
	authSvc.hashCost = bcrypt.MinCost

	return &fixture{
		store:    store,
		pool:     pool,
		cache:    cache,
		revoked:  revoked,
		jwtMgr:   jwtMgr,
		profiles: profiles,
		catalog:  NewCatalogService(pool, store.Games, store.Outbox, logger),
		bookings: NewBookingService(pool, engine, store.Bookings, store.Games, cache, time.Minute, testSchedule, logger),
		auth:     authSvc,
	}
}

// user creates a profile through EnsureProfile and returns its principal.
func (f *fixture) user(t *testing.T, email string) policy.Principal {
	t.Helper()
	p, err := f.profiles.EnsureProfile(context.Background(), uuid.New(), email, "")
	require.NoError(t, err)
	return policy.NewPrincipal(p.ID, p.Role)
}

func (f *fixture) book(t *testing.T, p policy.Principal, gameID uuid.UUID, slot string) *domain.Booking {
	t.Helper()
	b, err := f.bookings.Create(context.Background(), p, domain.NewBooking{
		UserID: p.ID, GameID: gameID, BookingDate: "2024-06-15", TimeSlot: slot,
	})
	require.NoError(t, err)
	return b
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *domain.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code, appErr.Message)
}

func ptr(v int64) *int64 { return &v }
