package policy

import "github.com/courtside/platform/internal/domain"

// ownerTransitions is the self-service subset of the status machine.
var ownerTransitions = map[domain.BookingStatus]map[domain.BookingStatus]bool{
	domain.StatusPending: {domain.StatusCanceled: true},
}

// EvaluateTransition decides whether p may move booking b to status to,
// optionally setting cost.
//
// Admins may take any edge of the status machine and set a price. Owners may
// only cancel their own pending booking and never touch the price. Anyone
// else does not see the booking at all.
func EvaluateTransition(p Principal, b *domain.Booking, to domain.BookingStatus, cost *int64) Decision {
	if d := CanUpdateBooking(p, b); !d.Allowed {
		return d
	}
	if !to.Valid() {
		return deny(DenyInvalid, "unknown status: "+string(to))
	}
	if !domain.CanTransition(b.Status, to) {
		return deny(DenyInvalid, "illegal transition "+string(b.Status)+" -> "+string(to))
	}
	if p.IsAdmin() {
		return allow()
	}
	if cost != nil {
		return deny(DenyForbidden, "only admins can set a booking cost")
	}
	if !ownerTransitions[b.Status][to] {
		return deny(DenyForbidden, "owners may only cancel a pending booking")
	}
	return allow()
}
