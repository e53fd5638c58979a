package policy

import "github.com/courtside/platform/internal/domain"

// Err converts a negative decision into the domain error surfaced to callers.
// Hidden records are reported as not found so their existence does not leak.
func (d Decision) Err(entity, id string) error {
	if d.Allowed {
		return nil
	}
	switch d.Denial {
	case DenyHidden:
		return domain.ErrNotFound(entity, id)
	case DenyUnauthenticated:
		return domain.ErrUnauthorized(d.Reason)
	case DenyInvalid:
		return &domain.AppError{Code: domain.CodeInvalidTransition, Message: d.Reason, Status: 422}
	default:
		return domain.ErrForbidden(d.Reason)
	}
}
