package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/courtside/platform/internal/domain"
)

var errNoCredentials = errors.New("missing Authorization header")

// Authenticator turns bearer tokens into sessions.
type Authenticator struct {
	jwt     *JWTManager
	revoked RevocationStore
	logger  *slog.Logger
}

// NewAuthenticator creates the auth middleware factory.
func NewAuthenticator(jwtMgr *JWTManager, revoked RevocationStore, logger *slog.Logger) *Authenticator {
	return &Authenticator{jwt: jwtMgr, revoked: revoked, logger: logger}
}

// Require rejects requests without a valid, unrevoked bearer token.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, appErr := a.authenticate(r)
		if appErr != nil {
			writeError(w, appErr)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// Optional attaches a session when a bearer token is present and lets
// anonymous requests through. A present but invalid token is still rejected.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}
		session, appErr := a.authenticate(r)
		if appErr != nil {
			writeError(w, appErr)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// RequireRole returns middleware that checks the session role. It must run after Require.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	roleSet := make(map[domain.Role]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := SessionFromContext(r.Context())
			if session == nil {
				writeError(w, domain.ErrUnauthorized("no auth context"))
				return
			}
			if !roleSet[session.Role] {
				writeError(w, domain.ErrForbidden("insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *Authenticator) authenticate(r *http.Request) (*Session, *domain.AppError) {
	token, err := bearerToken(r)
	if err != nil {
		return nil, domain.ErrUnauthorized(err.Error())
	}
	claims, err := a.jwt.ValidateToken(token)
	if err != nil {
		return nil, domain.ErrUnauthorized("invalid or expired token")
	}
	revoked, err := a.revoked.IsRevoked(r.Context(), claims.ID)
	if err != nil {
		a.logger.Error("token revocation check failed", "error", err)
		return nil, domain.ErrUnavailable("session store", err)
	}
	if revoked {
		return nil, domain.ErrUnauthorized("session has ended")
	}
	session, err := SessionFromClaims(claims)
	if err != nil {
		return nil, domain.ErrUnauthorized("invalid token subject")
	}
	return session, nil
}

func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errNoCredentials
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", errors.New("invalid Authorization format")
	}
	return parts[1], nil
}

func writeError(w http.ResponseWriter, appErr *domain.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)
	_ = json.NewEncoder(w).Encode(appErr)
}
