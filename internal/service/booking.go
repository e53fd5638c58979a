package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/ledger"
	"github.com/courtside/platform/internal/policy"
	"github.com/courtside/platform/internal/projection"
	"github.com/courtside/platform/internal/repository"
	"github.com/google/uuid"
)

// BookingService is the policy-checked facade over the booking ledger.
// Writes go through ledger.Engine; reads go straight to the repository.
type BookingService struct {
	db       Pool
	engine   *ledger.Engine
	bookings repository.BookingRepository
	games    repository.GameRepository
	slots    projection.Store
	slotTTL  time.Duration
	schedule []string
	logger   *slog.Logger
}

// NewBookingService creates a BookingService. schedule is the ordered list
// of daily time slots offered for every game.
func NewBookingService(
	db Pool,
	engine *ledger.Engine,
	bookings repository.BookingRepository,
	games repository.GameRepository,
	slots projection.Store,
	slotTTL time.Duration,
	schedule []string,
	logger *slog.Logger,
) *BookingService {
	return &BookingService{
		db:       db,
		engine:   engine,
		bookings: bookings,
		games:    games,
		slots:    slots,
		slotTTL:  slotTTL,
		schedule: schedule,
		logger:   logger,
	}
}

// Create books a slot for the acting principal.
func (s *BookingService) Create(ctx context.Context, p policy.Principal, nb domain.NewBooking) (*domain.Booking, error) {
	if d := policy.CanInsertBooking(p, nb.UserID); !d.Allowed {
		s.logger.Info("booking create denied", "actor", p.ID, "user_id", nb.UserID, "reason", d.Reason)
		return nil, d.Err("booking", "")
	}
	if err := domain.ValidateNewBooking(nb); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	game, err := s.games.FindByID(ctx, s.db, nb.GameID)
	if err != nil {
		return nil, storageError("find game", err)
	}
	if game == nil || !game.IsActive {
		return nil, domain.ErrNotFound("game", nb.GameID.String())
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, storageError("begin tx", err)
	}
	defer tx.Rollback(ctx)

	b, err := s.engine.ExecuteCreate(ctx, tx, nb)
	if err != nil {
		if domain.HasCode(err, domain.CodeConflict) {
			s.logger.Info("booking slot conflict",
				"game_id", nb.GameID, "date", nb.BookingDate, "time_slot", nb.TimeSlot, "actor", p.ID)
		}
		return nil, storageError("create booking", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, storageError("commit tx", err)
	}

	s.invalidate(ctx, b)
	s.logger.Info("booking created", "booking_id", b.ID, "user_id", b.UserID, "game_id", b.GameID)
	return b, nil
}

// Get returns one booking to its owner or an admin.
func (s *BookingService) Get(ctx context.Context, p policy.Principal, id uuid.UUID) (*domain.Booking, error) {
	b, err := s.bookings.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, storageError("find booking", err)
	}
	if b == nil {
		return nil, domain.ErrNotFound("booking", id.String())
	}
	if d := policy.CanReadBooking(p, b); !d.Allowed {
		return nil, d.Err("booking", id.String())
	}
	return b, nil
}

// ListForUser returns the bookings owned by userID, newest first.
func (s *BookingService) ListForUser(ctx context.Context, p policy.Principal, userID uuid.UUID) ([]domain.Booking, error) {
	if d := policy.CanListBookingsFor(p, userID); !d.Allowed {
		return nil, d.Err("bookings", userID.String())
	}
	bookings, err := s.bookings.ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, storageError("list bookings", err)
	}
	return bookings, nil
}

// ListAll returns the whole ledger to admins and an empty list to anyone else.
func (s *BookingService) ListAll(ctx context.Context, p policy.Principal) ([]domain.BookingDetail, error) {
	if !policy.CanListAllBookings(p).Allowed {
		return []domain.BookingDetail{}, nil
	}
	bookings, err := s.bookings.ListAll(ctx, s.db)
	if err != nil {
		return nil, storageError("list bookings", err)
	}
	return bookings, nil
}

// ListBookedSlots returns the sorted time slots held by pending or confirmed
// bookings. The projection is consulted first; a cache failure falls back to
// storage.
func (s *BookingService) ListBookedSlots(ctx context.Context, gameID uuid.UUID, date string) ([]string, error) {
	if err := domain.ValidateBookingDate(date); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	cached, err := projection.GetBookedSlots(ctx, s.slots, gameID, date)
	switch {
	case err == nil:
		return cached.Slots, nil
	case !errors.Is(err, projection.ErrMiss):
		s.logger.Warn("slot projection read failed", "game_id", gameID, "date", date, "error", err)
	}

	// Taken before the read so a list loaded ahead of a concurrent commit is
	// stamped with the pre-invalidation version and never served.
	version, verr := projection.BookedSlotsVersion(ctx, s.slots, gameID, date)
	if verr != nil {
		s.logger.Warn("slot projection version read failed", "game_id", gameID, "date", date, "error", verr)
	}

	slots, err := s.bookings.ListBookedSlots(ctx, s.db, gameID, date)
	if err != nil {
		return nil, storageError("list booked slots", err)
	}
	if verr == nil {
		if err := projection.PutBookedSlots(ctx, s.slots, gameID, date, version, slots, s.slotTTL); err != nil {
			s.logger.Warn("slot projection write failed", "game_id", gameID, "date", date, "error", err)
		}
	}
	return slots, nil
}

// AvailableSlots returns the schedule minus the booked slots. It is advisory:
// a slot whose booking was canceled is listed but still conflicts on create.
func (s *BookingService) AvailableSlots(ctx context.Context, gameID uuid.UUID, date string) ([]string, error) {
	booked, err := s.ListBookedSlots(ctx, gameID, date)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(booked))
	for _, slot := range booked {
		taken[slot] = true
	}
	available := make([]string, 0, len(s.schedule))
	for _, slot := range s.schedule {
		if !taken[slot] {
			available = append(available, slot)
		}
	}
	return available, nil
}

// TransitionInput is a requested status change.
type TransitionInput struct {
	Status domain.BookingStatus `json:"status"`
	Cost   *int64               `json:"cost,omitempty"`
}

// Transition moves a booking to a new status, optionally pricing it.
func (s *BookingService) Transition(ctx context.Context, p policy.Principal, id uuid.UUID, input TransitionInput) (*domain.Booking, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, storageError("begin tx", err)
	}
	defer tx.Rollback(ctx)

	res, err := s.engine.ExecuteTransition(ctx, tx, ledger.TransitionParams{
		BookingID: id,
		To:        input.Status,
		Cost:      input.Cost,
		Actor:     p,
	})
	if err != nil {
		if domain.HasCode(err, domain.CodeForbidden) || domain.HasCode(err, domain.CodeInvalidTransition) {
			s.logger.Info("booking transition denied", "booking_id", id, "to", input.Status, "actor", p.ID, "error", err)
		}
		return nil, storageError("transition booking", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, storageError("commit tx", err)
	}

	s.invalidate(ctx, res.Booking)
	s.logger.Info("booking transitioned",
		"booking_id", id, "from", res.From, "to", res.Booking.Status, "actor", p.ID)
	return res.Booking, nil
}

// Delete removes a booking and frees its slot. Admin only.
func (s *BookingService) Delete(ctx context.Context, p policy.Principal, id uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return storageError("begin tx", err)
	}
	defer tx.Rollback(ctx)

	b, err := s.engine.ExecuteDelete(ctx, tx, id, p)
	if err != nil {
		return storageError("delete booking", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return storageError("commit tx", err)
	}

	s.invalidate(ctx, b)
	s.logger.Info("booking deleted", "booking_id", id, "actor", p.ID)
	return nil
}

// BookingHistory is a booking's status trail with its replay audit.
type BookingHistory struct {
	Booking *domain.Booking       `json:"booking"`
	Changes []domain.StatusChange `json:"changes"`
	Audit   ledger.ReplayResult   `json:"audit"`
}

// History returns the status history of a booking, oldest first.
func (s *BookingService) History(ctx context.Context, p policy.Principal, id uuid.UUID) (*BookingHistory, error) {
	b, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	changes, err := s.bookings.ListStatusChanges(ctx, s.db, id)
	if err != nil {
		return nil, storageError("list status changes", err)
	}

	audit := ledger.ReplayHistory(b, changes)
	if !audit.AllPassed {
		s.logger.Warn("booking history failed replay", "booking_id", id, "invariants", audit.Invariants)
	}
	return &BookingHistory{Booking: b, Changes: changes, Audit: audit}, nil
}

func (s *BookingService) invalidate(ctx context.Context, b *domain.Booking) {
	if err := projection.InvalidateBookedSlots(ctx, s.slots, b.GameID, b.BookingDate); err != nil {
		s.logger.Warn("slot projection invalidate failed", "game_id", b.GameID, "date", b.BookingDate, "error", err)
	}
}
