package auth

import (
	"context"
	"time"

	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/policy"
	"github.com/google/uuid"
)

// Session is the authenticated request context. It is built from a
// validated token by the middleware and passed explicitly to services as a
// policy.Principal; it ends when the token expires or is revoked on sign-out.
type Session struct {
	PrincipalID uuid.UUID   `json:"principal_id"`
	Email       string      `json:"email"`
	Role        domain.Role `json:"role"`
	TokenID     string      `json:"-"`
	ExpiresAt   time.Time   `json:"expires_at"`
}

// SessionFromClaims builds a session from validated claims.
func SessionFromClaims(c *Claims) (*Session, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, err
	}
	s := &Session{PrincipalID: id, Email: c.Email, Role: c.Role, TokenID: c.ID}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s, nil
}

// Principal returns the policy identity for this session.
func (s *Session) Principal() policy.Principal {
	if s == nil {
		return policy.Anonymous()
	}
	return policy.NewPrincipal(s.PrincipalID, s.Role)
}

type contextKey string

const sessionKey contextKey = "auth_session"

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext extracts the session, or nil for anonymous requests.
func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey).(*Session)
	return s
}

// PrincipalFromContext returns the acting principal; anonymous when no session is attached.
func PrincipalFromContext(ctx context.Context) policy.Principal {
	return SessionFromContext(ctx).Principal()
}
