package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/courtside/platform/internal/domain"
	"github.com/jackc/pgx/v5"
)

// PgOutboxRepository implements OutboxRepository using pgx.
type PgOutboxRepository struct{}

// NewPgOutboxRepository creates a new PgOutboxRepository.
func NewPgOutboxRepository() *PgOutboxRepository {
	return &PgOutboxRepository{}
}

// Insert writes an outbox event; call with the transaction that made the change.
func (r *PgOutboxRepository) Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error {
	_, err := db.Exec(ctx, `
		INSERT INTO event_outbox
		  (event_id, aggregate_type, aggregate_id, event_type, partition_key, headers, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		draft.EventID,
		string(draft.AggregateType),
		draft.AggregateID,
		string(draft.EventType),
		draft.PartitionKey,
		draft.Headers,
		draft.Payload,
		draft.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

// FetchUnpublished locks a batch of pending events so concurrent pollers skip them.
func (r *PgOutboxRepository) FetchUnpublished(ctx context.Context, tx pgx.Tx, limit int) ([]domain.OutboxRow, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, event_id, aggregate_type, aggregate_id, event_type,
		       partition_key, headers, payload, occurred_at
		FROM event_outbox
		WHERE published_at IS NULL
		ORDER BY id ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch unpublished events: %w", err)
	}
	defer rows.Close()

	var events []domain.OutboxRow
	for rows.Next() {
		var e domain.OutboxRow
		err := rows.Scan(&e.ID, &e.EventID, &e.AggregateType, &e.AggregateID,
			&e.EventType, &e.PartitionKey, &e.Headers, &e.Payload, &e.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// MarkPublished stamps published_at on the given rows.
func (r *PgOutboxRepository) MarkPublished(ctx context.Context, db DBTX, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := db.Exec(ctx, `UPDATE event_outbox SET published_at = now() WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	return nil
}

// PurgePublished deletes delivered events older than cutoff.
func (r *PgOutboxRepository) PurgePublished(ctx context.Context, db DBTX, cutoff time.Time) (int64, error) {
	tag, err := db.Exec(ctx, `DELETE FROM event_outbox WHERE published_at IS NOT NULL AND published_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge published events: %w", err)
	}
	return tag.RowsAffected(), nil
}
