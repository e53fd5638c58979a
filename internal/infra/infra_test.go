package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/courtside/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		EventBroker:         BrokerNone,
		SlotSchedule:        []string{"09:00", "10:00"},
		BootstrapAdminEmail: "admin@club.test",
		JWTSecret:           "0123456789abcdef0123456789abcdef",
		JWTExpiry:           time.Hour,
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 3100, cfg.APIPort)
	assert.Equal(t, BrokerNone, cfg.EventBroker)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Len(t, cfg.SlotSchedule, 16)
	assert.Equal(t, "06:00", cfg.SlotSchedule[0])
}

func TestLoadConfig_EnvFile(t *testing.T) {
	t.Cleanup(func() {
		_ = os.Unsetenv("BOOTSTRAP_ADMIN_EMAIL")
		_ = os.Unsetenv("SLOT_SCHEDULE")
	})
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("BOOTSTRAP_ADMIN_EMAIL=boss@club.test\nSLOT_SCHEDULE=18:00,19:00\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Setenv("API_PORT", "8080")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "boss@club.test", cfg.BootstrapAdminEmail)
	assert.Equal(t, []string{"18:00", "19:00"}, cfg.SlotSchedule)
	assert.Equal(t, 8080, cfg.APIPort)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"unknown broker", func(c *Config) { c.EventBroker = "nats" }, "EVENT_BROKER"},
		{"empty schedule", func(c *Config) { c.SlotSchedule = nil }, "SLOT_SCHEDULE"},
		{"bad slot", func(c *Config) { c.SlotSchedule = []string{"9am"} }, "SLOT_SCHEDULE"},
		{"duplicate slot", func(c *Config) { c.SlotSchedule = []string{"09:00", "09:00"} }, "twice"},
		{"bad admin email", func(c *Config) { c.BootstrapAdminEmail = "nope" }, "BOOTSTRAP_ADMIN_EMAIL"},
		{"insecure secret", func(c *Config) { c.JWTSecret = insecureJWTSecret }, "insecure default"},
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, "too short"},
		{"zero expiry", func(c *Config) { c.JWTExpiry = 0 }, "JWT_EXPIRY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfigValidate_InsecureAllowedInDev(t *testing.T) {
	cfg := validConfig()
	cfg.JWTSecret = insecureJWTSecret
	cfg.AllowInsecureDefaults = true
	assert.NoError(t, cfg.Validate())
}

func TestConfigDSN(t *testing.T) {
	cfg := &Config{PGUser: "u", PGPassword: "p", PGHost: "db", PGPort: 5432, PGDatabase: "courtside"}
	assert.Equal(t, "postgres://u:p@db:5432/courtside?sslmode=disable", cfg.DSN())

	cfg.DatabaseURL = "postgres://override"
	assert.Equal(t, "postgres://override", cfg.DSN())
}

func TestConfigSlogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", (&Config{LogLevel: "debug"}).SlogLevel().String())
	assert.Equal(t, "WARN", (&Config{LogLevel: "warn"}).SlogLevel().String())
	assert.Equal(t, "INFO", (&Config{LogLevel: "loud"}).SlogLevel().String())
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(errors.New("syntax error")))
	assert.False(t, IsTransient(&pgconn.PgError{Code: "23505"}))

	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.True(t, IsTransient(fmt.Errorf("query: %w", context.DeadlineExceeded)))
	assert.True(t, IsTransient(&pgconn.PgError{Code: "08006"}))
	assert.True(t, IsTransient(&pgconn.PgError{Code: "57P01"}))
	assert.True(t, IsTransient(&net.OpError{Op: "dial", Err: errors.New("connection refused")}))
}

func TestEncodeDecodeEvent(t *testing.T) {
	b := &domain.Booking{ID: uuid.New(), UserID: uuid.New(), Status: domain.StatusPending, TimeSlot: "10:00"}
	draft := domain.NewBookingCreatedEvent(b)
	row := domain.OutboxRow{ID: 7, OutboxDraft: draft}

	msg, err := EncodeEvent(row)
	require.NoError(t, err)
	assert.Equal(t, "booking.created", msg.Type)
	assert.Equal(t, b.UserID.String(), string(msg.Key))
	assert.Equal(t, draft.EventID.String(), msg.ID)

	decoded, err := DecodeEvent(msg)
	require.NoError(t, err)
	assert.Equal(t, draft.EventID, decoded.EventID)
	assert.Equal(t, domain.EventBookingCreated, decoded.EventType)
	assert.JSONEq(t, string(draft.Payload), string(decoded.Payload))

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(decoded.Payload, &payload))
	assert.Equal(t, "10:00", payload["time_slot"])
}

func TestDecodeEvent_Invalid(t *testing.T) {
	_, err := DecodeEvent(Message{Value: []byte("not json")})
	assert.Error(t, err)
}

func TestFindMigrationDir_WalksUp(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "db", "migrations"), 0o755))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	t.Chdir(nested)

	assert.Equal(t, filepath.Join(root, "db", "migrations"), FindMigrationDir())
}
