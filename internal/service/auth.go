package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/courtside/platform/internal/auth"
	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/guard"
	"github.com/courtside/platform/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, sign-in and session lifecycle for the
// built-in identity provider.
type AuthService struct {
	db       Pool
	users    repository.AuthUserRepository
	profiles *ProfileService
	jwtMgr   *auth.JWTManager
	revoked  auth.RevocationStore
	lockout  *guard.Lockout
	logger   *slog.Logger
	hashCost int
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	db Pool,
	users repository.AuthUserRepository,
	profiles *ProfileService,
	jwtMgr *auth.JWTManager,
	revoked auth.RevocationStore,
	lockout *guard.Lockout,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		db:       db,
		users:    users,
		profiles: profiles,
		jwtMgr:   jwtMgr,
		revoked:  revoked,
		lockout:  lockout,
		logger:   logger,
		hashCost: bcrypt.DefaultCost,
	}
}

// RegisterInput holds the registration request fields.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginInput holds the login request fields.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned on successful registration, login or refresh.
type AuthResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Session   *auth.Session   `json:"session"`
	Profile   *domain.Profile `json:"profile"`
}

// Register creates the credential row and the profile in one transaction.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if err := domain.ValidateEmail(strings.TrimSpace(input.Email)); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if len(input.Password) < domain.MinPasswordLength {
		return nil, domain.ErrValidation("password must be at least 8 characters")
	}
	if len([]rune(strings.TrimSpace(input.Name))) > domain.MaxProfileNameLength {
		return nil, domain.ErrValidation("name is too long")
	}
	email := domain.NormalizeEmail(input.Email)

	existing, err := s.users.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, storageError("find user", err)
	}
	if existing != nil {
		return nil, domain.ErrConflict("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.hashCost)
	if err != nil {
		return nil, domain.ErrInternal("hash password", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, storageError("begin tx", err)
	}
	defer tx.Rollback(ctx)

	user := &domain.AuthUser{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, tx, user); err != nil {
		return nil, storageError("create auth user", err)
	}
	profile, err := s.profiles.ensure(ctx, tx, user.ID, email, input.Name)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, storageError("commit tx", err)
	}

	return s.issue(profile)
}

// Login authenticates by email and password. ip is recorded for lockout.
func (s *AuthService) Login(ctx context.Context, input LoginInput, ip string) (*AuthResult, error) {
	email := domain.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, domain.ErrValidation("email and password are required")
	}

	if res := s.lockout.Check(ctx, email); !res.Allowed {
		s.logger.Warn("login blocked", "guard", res.Guard, "ip", ip)
		return nil, domain.ErrAccountLocked(res.Reason)
	}

	user, err := s.users.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, storageError("find user", err)
	}
	if user == nil {
		s.lockout.Record(ctx, email, ip, false)
		return nil, domain.ErrUnauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.lockout.Record(ctx, email, ip, false)
		return nil, domain.ErrUnauthorized("invalid credentials")
	}
	s.lockout.Record(ctx, email, ip, true)

	profile, err := s.profiles.EnsureProfile(ctx, user.ID, user.Email, "")
	if err != nil {
		return nil, err
	}
	return s.issue(profile)
}

// Refresh issues a new token for the session and revokes the old one. The
// role is re-read from the profile so role changes take effect here.
func (s *AuthService) Refresh(ctx context.Context, session *auth.Session) (*AuthResult, error) {
	if session == nil {
		return nil, domain.ErrUnauthorized("sign-in required")
	}
	profile, err := s.profiles.profiles.FindByID(ctx, s.db, session.PrincipalID)
	if err != nil {
		return nil, storageError("find profile", err)
	}
	if profile == nil {
		return nil, domain.ErrUnauthorized("profile no longer exists")
	}

	result, err := s.issue(profile)
	if err != nil {
		return nil, err
	}
	if err := s.revoke(ctx, session); err != nil {
		return nil, err
	}
	return result, nil
}

// Logout revokes the session's token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, session *auth.Session) error {
	if session == nil {
		return domain.ErrUnauthorized("sign-in required")
	}
	if err := s.revoke(ctx, session); err != nil {
		return err
	}
	s.logger.Info("session ended", "principal_id", session.PrincipalID)
	return nil
}

func (s *AuthService) revoke(ctx context.Context, session *auth.Session) error {
	if err := s.revoked.Revoke(ctx, session.TokenID, session.ExpiresAt); err != nil {
		return domain.ErrUnavailable("revocation store", err)
	}
	return nil
}

func (s *AuthService) issue(profile *domain.Profile) (*AuthResult, error) {
	token, claims, err := s.jwtMgr.GenerateToken(profile.ID, profile.Email, profile.Role)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}
	session, err := auth.SessionFromClaims(claims)
	if err != nil {
		return nil, domain.ErrInternal("build session", err)
	}
	return &AuthResult{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		Session:   session,
		Profile:   profile,
	}, nil
}
