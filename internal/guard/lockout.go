package guard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/repository"
)

const (
	MaxAttempts   = 5
	LockoutWindow = 15 * time.Minute
)

// Lockout blocks sign-in for an email after repeated failures.
type Lockout struct {
	db          repository.DBTX
	attempts    repository.LoginAttemptRepository
	logger      *slog.Logger
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

// NewLockout creates a lockout guard with the default thresholds.
func NewLockout(db repository.DBTX, attempts repository.LoginAttemptRepository, logger *slog.Logger) *Lockout {
	return &Lockout{
		db:          db,
		attempts:    attempts,
		logger:      logger,
		maxAttempts: MaxAttempts,
		window:      LockoutWindow,
		now:         time.Now,
	}
}

// Check blocks when email has at least MaxAttempts failures inside the window.
// Storage errors fail open so an outage never locks everyone out.
func (l *Lockout) Check(ctx context.Context, email string) domain.GuardResult {
	count, err := l.attempts.CountFailuresSince(ctx, l.db, email, l.now().Add(-l.window))
	if err != nil {
		l.logger.Warn("lockout check failed, allowing", "error", err)
		return domain.GuardResult{Allowed: true}
	}
	if count >= l.maxAttempts {
		return domain.GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("too many failed login attempts, try again in %s", l.window),
			Guard:   "lockout",
		}
	}
	return domain.GuardResult{Allowed: true}
}

// Record stores the outcome of a login attempt. Failures to record are logged only.
func (l *Lockout) Record(ctx context.Context, email, ip string, success bool) {
	if err := l.attempts.Record(ctx, l.db, email, ip, success); err != nil {
		l.logger.Warn("record login attempt failed", "error", err)
	}
}
