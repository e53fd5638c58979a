package handler

import (
	"net/http"

	"github.com/courtside/platform/internal/auth"
	"github.com/courtside/platform/internal/service"
)

// GameHandler serves the public catalog and slot lookups.
type GameHandler struct {
	catalog  *service.CatalogService
	bookings *service.BookingService
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(catalog *service.CatalogService, bookings *service.BookingService) *GameHandler {
	return &GameHandler{catalog: catalog, bookings: bookings}
}

// ListActive handles GET /games.
func (h *GameHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	games, err := h.catalog.ListActive(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, games)
}

// ListAll handles GET /games/all.
func (h *GameHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	games, err := h.catalog.ListAll(r.Context(), auth.PrincipalFromContext(r.Context()))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, games)
}

// Get handles GET /games/{id}.
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := URLParamUUID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	game, err := h.catalog.Get(r.Context(), auth.PrincipalFromContext(r.Context()), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, game)
}

type slotsResponse struct {
	GameID string   `json:"game_id"`
	Date   string   `json:"date"`
	Slots  []string `json:"slots"`
}

// BookedSlots handles GET /games/{id}/booked-slots?date=YYYY-MM-DD.
func (h *GameHandler) BookedSlots(w http.ResponseWriter, r *http.Request) {
	h.slots(w, r, h.bookings.ListBookedSlots)
}

// AvailableSlots handles GET /games/{id}/available-slots?date=YYYY-MM-DD.
func (h *GameHandler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	h.slots(w, r, h.bookings.AvailableSlots)
}

func (h *GameHandler) slots(w http.ResponseWriter, r *http.Request, lookup slotLookup) {
	id, err := URLParamUUID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	date := r.URL.Query().Get("date")

	slots, err := lookup(r.Context(), id, date)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, slotsResponse{GameID: id.String(), Date: date, Slots: slots})
}
