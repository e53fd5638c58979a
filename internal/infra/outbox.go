package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/guard"
	"github.com/courtside/platform/internal/repository"
	"github.com/jackc/pgx/v5"
)

const brokerCircuitKey = "event_broker"

// TxStarter begins a database transaction; satisfied by *pgxpool.Pool.
type TxStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OutboxPoller relays event_outbox rows to the configured broker.
// Rows are published in id order and marked only after a successful publish,
// so delivery is at-least-once.
type OutboxPoller struct {
	db        TxStarter
	repo      repository.OutboxRepository
	publisher EventPublisher
	breaker   *guard.CircuitBreaker
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
	retention time.Duration
}

// NewOutboxPoller creates a new outbox poller.
func NewOutboxPoller(db TxStarter, repo repository.OutboxRepository, publisher EventPublisher, cfg *Config, logger *slog.Logger) *OutboxPoller {
	interval := cfg.OutboxPollInterval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	batch := cfg.OutboxBatchSize
	if batch <= 0 {
		batch = 100
	}
	return &OutboxPoller{
		db:        db,
		repo:      repo,
		publisher: publisher,
		breaker:   guard.NewCircuitBreaker(3, 10*time.Second),
		logger:    logger,
		interval:  interval,
		batchSize: batch,
		retention: 7 * 24 * time.Hour,
	}
}

// Run polls until ctx is cancelled.
func (p *OutboxPoller) Run(ctx context.Context) error {
	p.logger.Info("outbox poller started", "interval", p.interval, "batch_size", p.batchSize)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	purge := time.NewTicker(time.Hour)
	defer purge.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("outbox poller stopped")
			return nil
		case <-ticker.C:
			if _, err := p.Poll(ctx); err != nil && ctx.Err() == nil {
				p.logger.Error("outbox poll error", "error", err)
			}
		case <-purge.C:
			p.purge(ctx)
		}
	}
}

// Poll publishes one batch and returns the number of events delivered.
func (p *OutboxPoller) Poll(ctx context.Context) (int, error) {
	if res := p.breaker.Check(ctx, brokerCircuitKey); !res.Allowed {
		p.logger.Debug("outbox poll skipped", "reason", res.Reason)
		return 0, nil
	}

	tx, err := p.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin outbox tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	rows, err := p.repo.FetchUnpublished(ctx, tx, p.batchSize)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	// The batch stops at the first row that cannot be sent, so later events
	// of the same aggregate are never delivered ahead of it.
	published := make([]int64, 0, len(rows))
	for _, row := range rows {
		msg, err := EncodeEvent(row)
		if err != nil {
			p.logger.Error("encode outbox event", "event_id", row.EventID, "error", err)
			break
		}
		if err := p.publisher.Publish(ctx, msg); err != nil {
			p.breaker.RecordFailure(brokerCircuitKey)
			p.logger.Error("event publish failed", "event_id", row.EventID, "event_type", row.EventType, "error", err)
			break
		}
		p.breaker.RecordSuccess(brokerCircuitKey)
		published = append(published, row.ID)
	}

	if err := p.repo.MarkPublished(ctx, tx, published); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit outbox tx: %w", err)
	}

	p.logger.Debug("outbox poll complete", "published", len(published), "fetched", len(rows))
	return len(published), nil
}

func (p *OutboxPoller) purge(ctx context.Context) {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		p.logger.Warn("outbox purge skipped", "error", err)
		return
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	n, err := p.repo.PurgePublished(ctx, tx, time.Now().Add(-p.retention))
	if err != nil {
		p.logger.Warn("outbox purge failed", "error", err)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		p.logger.Warn("outbox purge commit failed", "error", err)
		return
	}
	if n > 0 {
		p.logger.Info("outbox purged", "rows", n)
	}
}

// EncodeEvent builds the broker message for an outbox row. The body is the
// JSON form of domain.OutboxDraft.
func EncodeEvent(row domain.OutboxRow) (Message, error) {
	body, err := json.Marshal(row.OutboxDraft)
	if err != nil {
		return Message{}, fmt.Errorf("marshal event %s: %w", row.EventID, err)
	}
	return Message{
		Type:  string(row.EventType),
		Key:   []byte(row.PartitionKey),
		Value: body,
		ID:    row.EventID.String(),
	}, nil
}

// DecodeEvent parses a broker message produced by EncodeEvent.
func DecodeEvent(msg Message) (domain.OutboxDraft, error) {
	var draft domain.OutboxDraft
	if err := json.Unmarshal(msg.Value, &draft); err != nil {
		return draft, fmt.Errorf("decode event: %w", err)
	}
	return draft, nil
}
