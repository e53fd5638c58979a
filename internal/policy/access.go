package policy

import (
	"github.com/courtside/platform/internal/domain"
	"github.com/google/uuid"
)

// Denial classifies why a decision was negative.
type Denial int

const (
	// DenyNone means the operation is allowed.
	DenyNone Denial = iota
	// DenyHidden means the record is not visible to the principal; callers
	// report it as absent rather than forbidden.
	DenyHidden
	// DenyForbidden means the record is visible but the operation is not permitted.
	DenyForbidden
	// DenyInvalid means the operation is permitted in principle but the
	// requested state change is not a legal edge.
	DenyInvalid
	// DenyUnauthenticated means the operation requires a signed-in principal.
	DenyUnauthenticated
)

// Decision is the outcome of a policy predicate.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Denial  Denial `json:"-"`
}

func allow() Decision { return Decision{Allowed: true} }

func deny(d Denial, reason string) Decision {
	return Decision{Allowed: false, Reason: reason, Denial: d}
}

func requireSignIn(p Principal) (Decision, bool) {
	if p.IsAnonymous() {
		return deny(DenyUnauthenticated, "sign-in required"), false
	}
	return Decision{}, true
}

// --- Profiles: readable by anyone, writable only by self ---

// CanReadProfile always allows; profile display data is public.
func CanReadProfile(_ Principal) Decision { return allow() }

// CanUpdateProfile allows only the profile's owner.
func CanUpdateProfile(p Principal, profileID uuid.UUID) Decision {
	if d, ok := requireSignIn(p); !ok {
		return d
	}
	if !p.Is(profileID) {
		return deny(DenyForbidden, "profiles are writable only by their owner")
	}
	return allow()
}

// CanListProfiles restricts the profile directory to admins.
func CanListProfiles(p Principal) Decision {
	if !p.IsAdmin() {
		return deny(DenyHidden, "profile directory is admin-only")
	}
	return allow()
}

// --- Games: active readable by anyone, everything else admin-only ---

// CanReadGame hides inactive games from non-admins.
func CanReadGame(p Principal, g *domain.Game) Decision {
	if g.IsActive || p.IsAdmin() {
		return allow()
	}
	return deny(DenyHidden, "inactive games are visible to admins only")
}

// CanWriteGame allows catalog mutations for admins only.
func CanWriteGame(p Principal) Decision {
	if d, ok := requireSignIn(p); !ok {
		return d
	}
	if !p.IsAdmin() {
		return deny(DenyForbidden, "catalog changes require the admin role")
	}
	return allow()
}

// VisibleGames applies the game read predicate as a row filter.
func VisibleGames(p Principal, games []domain.Game) []domain.Game {
	if p.IsAdmin() {
		return games
	}
	out := make([]domain.Game, 0, len(games))
	for i := range games {
		if CanReadGame(p, &games[i]).Allowed {
			out = append(out, games[i])
		}
	}
	return out
}

// --- Bookings: owner or admin read/update, self insert, admin delete ---

// CanReadBooking allows the owner and admins.
func CanReadBooking(p Principal, b *domain.Booking) Decision {
	if p.IsAdmin() || p.Is(b.UserID) {
		return allow()
	}
	return deny(DenyHidden, "bookings are visible to their owner and admins")
}

// CanInsertBooking allows a principal to book only for themselves.
func CanInsertBooking(p Principal, ownerID uuid.UUID) Decision {
	if d, ok := requireSignIn(p); !ok {
		return d
	}
	if p.ID != ownerID {
		return deny(DenyForbidden, "bookings can only be created for yourself")
	}
	return allow()
}

// CanUpdateBooking is the row-level update grant. Status changes are further
// narrowed by EvaluateTransition.
func CanUpdateBooking(p Principal, b *domain.Booking) Decision {
	if p.IsAdmin() || p.Is(b.UserID) {
		return allow()
	}
	return deny(DenyHidden, "bookings are writable by their owner and admins")
}

// CanDeleteBooking allows admins only.
func CanDeleteBooking(p Principal, b *domain.Booking) Decision {
	if p.IsAdmin() {
		return allow()
	}
	if p.Is(b.UserID) {
		return deny(DenyForbidden, "bookings can only be deleted by an admin")
	}
	return deny(DenyHidden, "bookings are visible to their owner and admins")
}

// CanListBookingsFor allows a user to list their own bookings; admins may list anyone's.
func CanListBookingsFor(p Principal, userID uuid.UUID) Decision {
	if d, ok := requireSignIn(p); !ok {
		return d
	}
	if p.IsAdmin() || p.Is(userID) {
		return allow()
	}
	return deny(DenyForbidden, "cannot list another user's bookings")
}

// CanListAllBookings is the ledger-wide read; non-admins see an empty set.
func CanListAllBookings(p Principal) Decision {
	if !p.IsAdmin() {
		return deny(DenyHidden, "ledger listing is admin-only")
	}
	return allow()
}
