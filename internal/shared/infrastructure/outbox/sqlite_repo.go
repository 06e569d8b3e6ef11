package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sharedApplication "github.com/felixgeelhaar/calcompare/internal/shared/application"
	sharedPersistence "github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
)

const sqliteSelectColumns = `
	SELECT id, event_id, aggregate_type, aggregate_id, event_type, routing_key,
	       payload, metadata, created_at, published_at, next_retry_at, retry_count,
	       last_error, dead_lettered_at, dead_letter_reason
	FROM outbox`

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	dbConn *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

// NewSQLiteRepository creates a new SQLite outbox repository.
func NewSQLiteRepository(dbConn *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{dbConn: dbConn}
}

// Save stores a new outbox message.
func (r *SQLiteRepository) Save(ctx context.Context, msg *Message) error {
	return r.insert(ctx, sharedPersistence.SQLiteQuerier(ctx, r.dbConn), msg)
}

// SaveBatch stores multiple outbox messages atomically, inside the caller's
// transaction when ctx carries one.
func (r *SQLiteRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}
	return sharedApplication.WithUnitOfWork(ctx, sharedPersistence.NewSQLiteUnitOfWork(r.dbConn), func(txCtx context.Context) error {
		q := sharedPersistence.SQLiteQuerier(txCtx, r.dbConn)
		for _, msg := range msgs {
			if err := r.insert(txCtx, q, msg); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) insert(ctx context.Context, q sharedPersistence.SQLQuerier, msg *Message) error {
	result, err := q.ExecContext(ctx, `
		INSERT INTO outbox (
			event_id, aggregate_type, aggregate_id, event_type, routing_key,
			payload, metadata, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.EventID.String(),
		msg.AggregateType,
		msg.AggregateID.String(),
		msg.EventType,
		msg.RoutingKey,
		string(msg.Payload),
		nullString(string(msg.Metadata)),
		formatTime(msg.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert outbox message %s: %w", msg.EventID, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	msg.ID = id
	return nil
}

// GetUnpublished retrieves messages due for publishing, oldest first.
func (r *SQLiteRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	rows, err := sharedPersistence.SQLiteQuerier(ctx, r.dbConn).QueryContext(ctx, sqliteSelectColumns+`
		WHERE published_at IS NULL
		  AND dead_lettered_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY created_at, id
		LIMIT ?`,
		formatTime(time.Now()), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSQLiteMessages(rows)
}

// MarkPublished marks a message as successfully published.
func (r *SQLiteRepository) MarkPublished(ctx context.Context, id int64) error {
	_, err := sharedPersistence.SQLiteQuerier(ctx, r.dbConn).ExecContext(ctx,
		`UPDATE outbox SET published_at = ?, dead_lettered_at = NULL WHERE id = ?`,
		formatTime(time.Now()), id)
	return err
}

// MarkFailed records a publish failure with error message.
func (r *SQLiteRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	_, err := sharedPersistence.SQLiteQuerier(ctx, r.dbConn).ExecContext(ctx, `
		UPDATE outbox
		SET retry_count = retry_count + 1,
			last_error = ?,
			next_retry_at = ?
		WHERE id = ?`,
		errMsg, formatTime(nextRetryAt), id)
	return err
}

// MarkDead marks a message as dead-lettered.
func (r *SQLiteRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	_, err := sharedPersistence.SQLiteQuerier(ctx, r.dbConn).ExecContext(ctx,
		`UPDATE outbox SET dead_lettered_at = ?, dead_letter_reason = ? WHERE id = ?`,
		formatTime(time.Now()), reason, id)
	return err
}

// DeleteOld removes successfully published messages older than the retention period.
func (r *SQLiteRepository) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)
	result, err := sharedPersistence.SQLiteQuerier(ctx, r.dbConn).ExecContext(ctx,
		`DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < ?`,
		formatTime(cutoff))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanSQLiteMessages(rows *sql.Rows) ([]*Message, error) {
	var messages []*Message
	for rows.Next() {
		var (
			msg                                   Message
			eventID, aggregateID, payload         string
			createdAt                             string
			metadata, publishedAt, nextRetryAt    sql.NullString
			lastError, deadLetteredAt, deadReason sql.NullString
		)
		err := rows.Scan(
			&msg.ID,
			&eventID,
			&msg.AggregateType,
			&aggregateID,
			&msg.EventType,
			&msg.RoutingKey,
			&payload,
			&metadata,
			&createdAt,
			&publishedAt,
			&nextRetryAt,
			&msg.RetryCount,
			&lastError,
			&deadLetteredAt,
			&deadReason,
		)
		if err != nil {
			return nil, err
		}

		msg.EventID, _ = uuid.Parse(eventID)
		msg.AggregateID, _ = uuid.Parse(aggregateID)
		msg.Payload = json.RawMessage(payload)
		msg.CreatedAt = parseTime(createdAt)
		if metadata.Valid {
			msg.Metadata = json.RawMessage(metadata.String)
		}
		msg.PublishedAt = parseNullTime(publishedAt)
		msg.NextRetryAt = parseNullTime(nextRetryAt)
		msg.DeadLetteredAt = parseNullTime(deadLetteredAt)
		if lastError.Valid {
			msg.LastError = &lastError.String
		}
		if deadReason.Valid {
			msg.DeadLetterReason = &deadReason.String
		}
		messages = append(messages, &msg)
	}
	return messages, rows.Err()
}

// Timestamps are stored as fixed-width UTC text so they compare lexically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(sqliteTimeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}

func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t := parseTime(s.String)
	return &t
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
