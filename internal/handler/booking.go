package handler

import (
	"context"
	"net/http"

	"github.com/courtside/platform/internal/auth"
	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/service"
	"github.com/google/uuid"
)

type slotLookup func(ctx context.Context, gameID uuid.UUID, date string) ([]string, error)

// BookingHandler serves booking creation, reads and status transitions.
type BookingHandler struct {
	bookings *service.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookings *service.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

type createBookingRequest struct {
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	GameID      uuid.UUID  `json:"game_id"`
	BookingDate string     `json:"booking_date"`
	TimeSlot    string     `json:"time_slot"`
	Notes       *string    `json:"notes,omitempty"`
}

// Create handles POST /bookings. user_id defaults to the caller.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p := auth.PrincipalFromContext(r.Context())
	userID := p.ID
	if req.UserID != nil {
		userID = *req.UserID
	}

	booking, err := h.bookings.Create(r.Context(), p, domain.NewBooking{
		UserID:      userID,
		GameID:      req.GameID,
		BookingDate: req.BookingDate,
		TimeSlot:    req.TimeSlot,
		Notes:       req.Notes,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, booking)
}

// List handles GET /bookings?user_id=. Without user_id it lists the caller's bookings.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	userID := p.ID
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			RespondError(w, domain.ErrValidation("invalid user_id"))
			return
		}
		userID = parsed
	}

	bookings, err := h.bookings.ListForUser(r.Context(), p, userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, bookings)
}

// Get handles GET /bookings/{id}.
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := URLParamUUID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	booking, err := h.bookings.Get(r.Context(), auth.PrincipalFromContext(r.Context()), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, booking)
}

// History handles GET /bookings/{id}/history.
func (h *BookingHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := URLParamUUID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	history, err := h.bookings.History(r.Context(), auth.PrincipalFromContext(r.Context()), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, history)
}

// Transition handles POST /bookings/{id}/transition with {"status", "cost"}.
func (h *BookingHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id, err := URLParamUUID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	var input service.TransitionInput
	if !decodeBody(w, r, &input) {
		return
	}
	if input.Status == "" {
		RespondError(w, domain.ErrValidation("status is required"))
		return
	}

	booking, err := h.bookings.Transition(r.Context(), auth.PrincipalFromContext(r.Context()), id, input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, booking)
}
