package admin

import (
	"net/http"

	"github.com/courtside/platform/internal/auth"
	"github.com/courtside/platform/internal/handler"
	"github.com/courtside/platform/internal/service"
)

// ProfileAdminHandler lists user profiles.
type ProfileAdminHandler struct {
	profiles *service.ProfileService
}

// NewProfileAdminHandler creates a new ProfileAdminHandler.
func NewProfileAdminHandler(profiles *service.ProfileService) *ProfileAdminHandler {
	return &ProfileAdminHandler{profiles: profiles}
}

// List handles GET /admin/profiles.
func (h *ProfileAdminHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profiles.List(r.Context(), auth.PrincipalFromContext(r.Context()))
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, profiles)
}
