// Package admin holds the handlers mounted under /admin. Every route here
// sits behind auth.RequireRole(domain.RoleAdmin); the services re-check the
// role through the policy package regardless.
package admin

import (
	"net/http"

	"github.com/courtside/platform/internal/auth"
	"github.com/courtside/platform/internal/handler"
	"github.com/courtside/platform/internal/service"
)

// BookingAdminHandler handles ledger-wide booking management.
type BookingAdminHandler struct {
	bookings *service.BookingService
}

// NewBookingAdminHandler creates a new BookingAdminHandler.
func NewBookingAdminHandler(bookings *service.BookingService) *BookingAdminHandler {
	return &BookingAdminHandler{bookings: bookings}
}

// ListAll handles GET /admin/bookings.
func (h *BookingAdminHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookings.ListAll(r.Context(), auth.PrincipalFromContext(r.Context()))
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, bookings)
}

// Delete handles DELETE /admin/bookings/{id}.
func (h *BookingAdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := handler.URLParamUUID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	if err := h.bookings.Delete(r.Context(), auth.PrincipalFromContext(r.Context()), id); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusNoContent, nil)
}
