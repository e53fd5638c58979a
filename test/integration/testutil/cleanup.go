//go:build integration

package testutil

import (
	"context"
	"time"
)

// CleanAll truncates every table the tests write to.
func (env *TestEnv) CleanAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tables := []string{
		"booking_status_history",
		"bookings",
		"games",
		"event_outbox",
		"login_attempts",
		"profiles",
		"auth_users",
	}
	for _, table := range tables {
		_, _ = env.Pool.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE")
	}
}
