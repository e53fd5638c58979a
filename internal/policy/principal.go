package policy

import (
	"github.com/courtside/platform/internal/domain"
	"github.com/google/uuid"
)

// Principal is the acting identity an operation is evaluated against.
// The zero value is the anonymous principal.
type Principal struct {
	ID   uuid.UUID   `json:"id"`
	Role domain.Role `json:"role"`
}

// Anonymous returns the principal used for unauthenticated requests.
func Anonymous() Principal { return Principal{} }

// NewPrincipal builds an authenticated principal.
func NewPrincipal(id uuid.UUID, role domain.Role) Principal {
	return Principal{ID: id, Role: role}
}

// IsAnonymous reports whether no identity is attached.
func (p Principal) IsAnonymous() bool { return p.ID == uuid.Nil }

// IsAdmin reports whether the principal is an authenticated admin.
func (p Principal) IsAdmin() bool { return !p.IsAnonymous() && p.Role == domain.RoleAdmin }

// Is reports whether the principal is the given user.
func (p Principal) Is(userID uuid.UUID) bool { return !p.IsAnonymous() && p.ID == userID }
