package admin

import (
	"net/http"

	"github.com/courtside/platform/internal/auth"
	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/handler"
	"github.com/courtside/platform/internal/service"
)

// GameAdminHandler handles catalog mutations.
type GameAdminHandler struct {
	catalog *service.CatalogService
}

// NewGameAdminHandler creates a new GameAdminHandler.
func NewGameAdminHandler(catalog *service.CatalogService) *GameAdminHandler {
	return &GameAdminHandler{catalog: catalog}
}

// Create handles POST /admin/games.
func (h *GameAdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateGameInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	game, err := h.catalog.Create(r.Context(), auth.PrincipalFromContext(r.Context()), input)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, game)
}

type setActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

// SetActive handles PATCH /admin/games/{id} with {"is_active": bool}.
func (h *GameAdminHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, err := handler.URLParamUUID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var req setActiveRequest
	if err := handler.DecodeJSON(r, &req); err != nil || req.IsActive == nil {
		handler.RespondError(w, domain.ErrValidation("is_active is required"))
		return
	}

	game, err := h.catalog.SetActive(r.Context(), auth.PrincipalFromContext(r.Context()), id, *req.IsActive)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, game)
}
