package handler

import (
	"net/http"

	"github.com/courtside/platform/internal/auth"
	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/service"
)

// ProfileHandler serves profile reads and self-service updates.
type ProfileHandler struct {
	profiles *service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Get handles GET /profiles/{id}.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := URLParamUUID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	profile, err := h.profiles.Get(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, profile)
}

// GetMe handles GET /profiles/me.
func (h *ProfileHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		RespondError(w, domain.ErrUnauthorized("sign-in required"))
		return
	}

	profile, err := h.profiles.EnsureProfile(r.Context(), session.PrincipalID, session.Email, "")
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, profile)
}

// UpdateMe handles PATCH /profiles/me.
func (h *ProfileHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var input domain.ProfileUpdate
	if !decodeBody(w, r, &input) {
		return
	}

	p := auth.PrincipalFromContext(r.Context())
	profile, err := h.profiles.UpdateOwn(r.Context(), p, p.ID, input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, profile)
}
