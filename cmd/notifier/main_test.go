package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/infra"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotifier() (*notifier, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return &notifier{logger: logger}, &buf
}

func encode(t *testing.T, draft domain.OutboxDraft) infra.Message {
	t.Helper()
	msg, err := infra.EncodeEvent(domain.OutboxRow{OutboxDraft: draft})
	require.NoError(t, err)
	return msg
}

func TestHandle_StatusChanged(t *testing.T) {
	n, buf := newTestNotifier()
	cost := int64(2500)
	b := &domain.Booking{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		GameID:      uuid.New(),
		BookingDate: "2026-11-02",
		TimeSlot:    "10:00",
		Status:      domain.StatusConfirmed,
		Cost:        &cost,
	}

	err := n.handle(context.Background(), encode(t, domain.NewBookingStatusChangedEvent(b, domain.StatusPending, uuid.New())))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Amount due: 2500")
	assert.Contains(t, buf.String(), b.UserID.String())
}

func TestHandle_Created(t *testing.T) {
	n, buf := newTestNotifier()
	b := &domain.Booking{ID: uuid.New(), UserID: uuid.New(), BookingDate: "2026-11-02", TimeSlot: "09:00", Status: domain.StatusPending}

	require.NoError(t, n.handle(context.Background(), encode(t, domain.NewBookingCreatedEvent(b))))
	assert.Contains(t, buf.String(), "pending approval")
}

func TestHandle_BadMessageIsAcked(t *testing.T) {
	n, buf := newTestNotifier()
	err := n.handle(context.Background(), infra.Message{ID: "x", Value: []byte("not json")})
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "dropping undecodable event")
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "Your booking was canceled.", statusText(domain.BookingStatusChangedPayload{To: domain.StatusCanceled}))
	assert.Equal(t, "Your booking was marked as a no-show.", statusText(domain.BookingStatusChangedPayload{To: domain.StatusNoShow}))
	assert.Equal(t, "Your booking is confirmed.", statusText(domain.BookingStatusChangedPayload{To: domain.StatusConfirmed}))
}

func TestNewConsumer_RequiresBroker(t *testing.T) {
	_, err := newConsumer(&infra.Config{EventBroker: infra.BrokerNone}, slog.Default())
	assert.Error(t, err)
}
