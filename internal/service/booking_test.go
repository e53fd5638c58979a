package service

import (
	"context"
	"errors"
	"testing"

	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/policy"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingScenario(t *testing.T) {
	f := newFixture(t)
	cricket := f.store.Games.Seed(true, "Cricket")[0]
	a := f.user(t, "a@example.com")
	b := f.user(t, "b@example.com")
	admin := f.user(t, "admin@club.test")
	ctx := context.Background()

	booking := f.book(t, a, cricket.ID, "10:00")
	assert.Equal(t, domain.StatusPending, booking.Status)
	assert.Nil(t, booking.Cost)

	_, err := f.bookings.Create(ctx, b, domain.NewBooking{
		UserID: b.ID, GameID: cricket.ID, BookingDate: "2024-06-15", TimeSlot: "10:00",
	})
	assertCode(t, err, domain.CodeConflict)

	confirmed, err := f.bookings.Transition(ctx, admin, booking.ID, TransitionInput{Status: domain.StatusConfirmed, Cost: ptr(500)})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, confirmed.Status)
	assert.Equal(t, int64(500), *confirmed.Cost)

	noShow, err := f.bookings.Transition(ctx, admin, booking.ID, TransitionInput{Status: domain.StatusNoShow})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNoShow, noShow.Status)

	for _, to := range []domain.BookingStatus{domain.StatusPending, domain.StatusConfirmed, domain.StatusCanceled, domain.StatusNoShow} {
		_, err := f.bookings.Transition(ctx, admin, booking.ID, TransitionInput{Status: to})
		assertCode(t, err, domain.CodeInvalidTransition)
	}

	history, err := f.bookings.History(ctx, a, booking.ID)
	require.NoError(t, err)
	assert.Len(t, history.Changes, 3)
	assert.True(t, history.Audit.AllPassed)
}

func TestBookingCreate_OnlyForSelf(t *testing.T) {
	f := newFixture(t)
	cricket := f.store.Games.Seed(true, "Cricket")[0]
	a := f.user(t, "a@example.com")
	admin := f.user(t, "admin@club.test")

	for _, actor := range []policy.Principal{admin, f.user(t, "b@example.com")} {
		_, err := f.bookings.Create(context.Background(), actor, domain.NewBooking{
			UserID: a.ID, GameID: cricket.ID, BookingDate: "2024-06-15", TimeSlot: "10:00",
		})
		assertCode(t, err, domain.CodeForbidden)
	}

	_, err := f.bookings.Create(context.Background(), policy.Anonymous(), domain.NewBooking{
		UserID: a.ID, GameID: cricket.ID, BookingDate: "2024-06-15", TimeSlot: "10:00",
	})
	assertCode(t, err, domain.CodeUnauthorized)
}

func TestBookingCreate_Rejections(t *testing.T) {
	f := newFixture(t)
	cricket := f.store.Games.Seed(true, "Cricket")[0]
	squash := f.store.Games.Seed(false, "Squash")[0]
	a := f.user(t, "a@example.com")

	tests := []struct {
		name   string
		gameID uuid.UUID
		date   string
		slot   string
		code   string
	}{
		{"bad date", cricket.ID, "2024-13-01", "10:00", domain.CodeValidation},
		{"year zero", cricket.ID, "0000-01-01", "10:00", domain.CodeValidation},
		{"bad slot", cricket.ID, "2024-06-15", "25:00", domain.CodeValidation},
		{"inactive game", squash.ID, "2024-06-15", "10:00", domain.CodeNotFound},
		{"unknown game", uuid.New(), "2024-06-15", "10:00", domain.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.bookings.Create(context.Background(), a, domain.NewBooking{
				UserID: a.ID, GameID: tt.gameID, BookingDate: tt.date, TimeSlot: tt.slot,
			})
			assertCode(t, err, tt.code)
		})
	}
}

func TestBookingReads(t *testing.T) {
	f := newFixture(t)
	cricket := f.store.Games.Seed(true, "Cricket")[0]
	a := f.user(t, "a@example.com")
	b := f.user(t, "b@example.com")
	admin := f.user(t, "admin@club.test")
	ctx := context.Background()

	mine := f.book(t, a, cricket.ID, "09:00")
	f.book(t, a, cricket.ID, "10:00")
	f.book(t, b, cricket.ID, "11:00")

	got, err := f.bookings.Get(ctx, a, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, mine.ID, got.ID)

	_, err = f.bookings.Get(ctx, b, mine.ID)
	assertCode(t, err, domain.CodeNotFound)

	_, err = f.bookings.Get(ctx, admin, mine.ID)
	require.NoError(t, err)

	list, err := f.bookings.ListForUser(ctx, a, a.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, "10:00", list[0].TimeSlot, "newest first")

	_, err = f.bookings.ListForUser(ctx, b, a.ID)
	assertCode(t, err, domain.CodeForbidden)

	list, err = f.bookings.ListForUser(ctx, admin, a.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	all, err := f.bookings.ListAll(ctx, admin)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Cricket", all[0].GameName)
	assert.Equal(t, "b@example.com", all[0].UserEmail)

	none, err := f.bookings.ListAll(ctx, a)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBookingTransition_OwnerCancel(t *testing.T) {
	f := newFixture(t)
	cricket := f.store.Games.Seed(true, "Cricket")[0]
	a := f.user(t, "a@example.com")
	b := f.user(t, "b@example.com")
	ctx := context.Background()
	booking := f.book(t, a, cricket.ID, "10:00")

	_, err := f.bookings.Transition(ctx, a, booking.ID, TransitionInput{Status: domain.StatusConfirmed})
	assertCode(t, err, domain.CodeForbidden)

	_, err = f.bookings.Transition(ctx, b, booking.ID, TransitionInput{Status: domain.StatusCanceled})
	assertCode(t, err, domain.CodeNotFound)

	canceled, err := f.bookings.Transition(ctx, a, booking.ID, TransitionInput{Status: domain.StatusCanceled})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCanceled, canceled.Status)

	// Canceled slots drop out of the projection but still block inserts.
	available, err := f.bookings.AvailableSlots(ctx, cricket.ID, "2024-06-15")
	require.NoError(t, err)
	assert.Contains(t, available, "10:00")

	_, err = f.bookings.Create(ctx, b, domain.NewBooking{
		UserID: b.ID, GameID: cricket.ID, BookingDate: "2024-06-15", TimeSlot: "10:00",
	})
	assertCode(t, err, domain.CodeConflict)
}

func TestBookingTransition_CostBounds(t *testing.T) {
	f := newFixture(t)
	cricket := f.store.Games.Seed(true, "Cricket")[0]
	a := f.user(t, "a@example.com")
	admin := f.user(t, "admin@club.test")
	ctx := context.Background()
	booking := f.book(t, a, cricket.ID, "10:00")

	for _, cost := range []int64{-1, domain.MaxCost + 1} {
		_, err := f.bookings.Transition(ctx, admin, booking.ID, TransitionInput{Status: domain.StatusConfirmed, Cost: ptr(cost)})
		assertCode(t, err, domain.CodeValidation)
	}

	stored, err := f.bookings.Get(ctx, admin, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status, "rejected cost leaves the booking untouched")

	confirmed, err := f.bookings.Transition(ctx, admin, booking.ID, TransitionInput{Status: domain.StatusConfirmed, Cost: ptr(domain.MaxCost)})
	require.NoError(t, err)
	assert.Equal(t, domain.MaxCost, *confirmed.Cost)
}

func TestBookingDelete(t *testing.T) {
	f := newFixture(t)
	cricket := f.store.Games.Seed(true, "Cricket")[0]
	a := f.user(t, "a@example.com")
	admin := f.user(t, "admin@club.test")
	ctx := context.Background()
	booking := f.book(t, a, cricket.ID, "10:00")

	assertCode(t, f.bookings.Delete(ctx, a, booking.ID), domain.CodeForbidden)
	require.NoError(t, f.bookings.Delete(ctx, admin, booking.ID))
	assertCode(t, f.bookings.Delete(ctx, admin, booking.ID), domain.CodeNotFound)

	f.book(t, a, cricket.ID, "10:00")
}

func TestBookedSlots_Projection(t *testing.T) {
	f := newFixture(t)
	cricket := f.store.Games.Seed(true, "Cricket")[0]
	a := f.user(t, "a@example.com")
	ctx := context.Background()

	f.book(t, a, cricket.ID, "11:00")
	f.book(t, a, cricket.ID, "09:00")

	slots, err := f.bookings.ListBookedSlots(ctx, cricket.ID, "2024-06-15")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "11:00"}, slots)

	// A row written behind the service's back is not seen while the cache is warm.
	require.NoError(t, f.store.Bookings.Insert(ctx, nil, &domain.Booking{
		ID: uuid.New(), UserID: a.ID, GameID: cricket.ID, BookingDate: "2024-06-15",
		TimeSlot: "10:00", Status: domain.StatusPending,
	}))
	slots, err = f.bookings.ListBookedSlots(ctx, cricket.ID, "2024-06-15")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "11:00"}, slots)

	available, err := f.bookings.AvailableSlots(ctx, cricket.ID, "2024-06-15")
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00"}, available)

	_, err = f.bookings.ListBookedSlots(ctx, cricket.ID, "June 15")
	assertCode(t, err, domain.CodeValidation)

	empty, err := f.bookings.ListBookedSlots(ctx, cricket.ID, "2024-06-16")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestBookedSlots_CommitDuringCacheFill(t *testing.T) {
	f := newFixture(t)
	cricket := f.store.Games.Seed(true, "Cricket")[0]
	a := f.user(t, "a@example.com")
	b := f.user(t, "b@example.com")
	ctx := context.Background()

	f.book(t, a, cricket.ID, "09:00")

	// A booking commits between the storage read and the cache write.
	f.store.Bookings.AfterListBookedSlots = func() {
		f.store.Bookings.AfterListBookedSlots = nil
		f.book(t, b, cricket.ID, "10:00")
	}
	slots, err := f.bookings.ListBookedSlots(ctx, cricket.ID, "2024-06-15")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00"}, slots, "the in-flight read predates the commit")

	slots, err = f.bookings.ListBookedSlots(ctx, cricket.ID, "2024-06-15")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00"}, slots)

	available, err := f.bookings.AvailableSlots(ctx, cricket.ID, "2024-06-15")
	require.NoError(t, err)
	assert.Equal(t, []string{"11:00"}, available)
}

func TestStorageErrorClassification(t *testing.T) {
	f := newFixture(t)
	cricket := f.store.Games.Seed(true, "Cricket")[0]
	a := f.user(t, "a@example.com")
	nb := domain.NewBooking{UserID: a.ID, GameID: cricket.ID, BookingDate: "2024-06-15", TimeSlot: "10:00"}

	f.pool.BeginErr = context.DeadlineExceeded
	_, err := f.bookings.Create(context.Background(), a, nb)
	assertCode(t, err, domain.CodeUnavailable)

	f.pool.BeginErr = errors.New("syntax error at or near")
	_, err = f.bookings.Create(context.Background(), a, nb)
	assertCode(t, err, domain.CodeInternal)
}
