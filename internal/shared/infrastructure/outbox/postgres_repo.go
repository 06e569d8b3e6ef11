package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	sharedApplication "github.com/felixgeelhaar/calcompare/internal/shared/application"
	sharedPersistence "github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/persistence"
)

const (
	pgInsertMessage = `
		INSERT INTO outbox (event_id, aggregate_type, aggregate_id, event_type, routing_key, payload, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	// Column order matches the fields of Message.
	pgDueMessages = `
		SELECT id, event_id, aggregate_type, aggregate_id, event_type, routing_key,
		       payload, metadata, created_at, published_at, next_retry_at, retry_count,
		       last_error, dead_lettered_at, dead_letter_reason
		FROM outbox
		WHERE published_at IS NULL
		  AND dead_lettered_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= NOW())
		ORDER BY created_at, id
		LIMIT $1`

	pgMarkPublished = `UPDATE outbox SET published_at = NOW(), dead_lettered_at = NULL WHERE id = $1`

	pgMarkFailed = `
		UPDATE outbox
		SET retry_count = retry_count + 1, last_error = $2, next_retry_at = $3
		WHERE id = $1`

	pgMarkDead = `UPDATE outbox SET dead_lettered_at = NOW(), dead_letter_reason = $2 WHERE id = $1`

	pgDeletePublished = `
		DELETE FROM outbox
		WHERE published_at IS NOT NULL
		  AND published_at < NOW() - make_interval(days => $1)`
)

// PostgresRepository stores the outbox in PostgreSQL. Writes join the
// transaction carried by ctx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Save(ctx context.Context, msg *Message) error {
	return r.SaveBatch(ctx, []*Message{msg})
}

// SaveBatch queues every insert in one round trip and assigns the generated ids.
func (r *PostgresRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}
	return sharedApplication.WithUnitOfWork(ctx, sharedPersistence.NewPostgresUnitOfWork(r.pool), func(txCtx context.Context) error {
		batch := &pgx.Batch{}
		for _, msg := range msgs {
			batch.Queue(pgInsertMessage,
				msg.EventID, msg.AggregateType, msg.AggregateID, msg.EventType, msg.RoutingKey,
				[]byte(msg.Payload), nullableJSON(msg.Metadata), msg.CreatedAt,
			).QueryRow(func(row pgx.Row) error {
				return row.Scan(&msg.ID)
			})
		}
		if err := sharedPersistence.PostgresQuerier(txCtx, r.pool).SendBatch(txCtx, batch).Close(); err != nil {
			return fmt.Errorf("insert outbox messages: %w", err)
		}
		return nil
	})
}

func (r *PostgresRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	rows, err := sharedPersistence.PostgresQuerier(ctx, r.pool).Query(ctx, pgDueMessages, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[Message])
}

func (r *PostgresRepository) MarkPublished(ctx context.Context, id int64) error {
	return r.exec(ctx, pgMarkPublished, id)
}

func (r *PostgresRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	return r.exec(ctx, pgMarkFailed, id, errMsg, nextRetryAt)
}

func (r *PostgresRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	return r.exec(ctx, pgMarkDead, id, reason)
}

func (r *PostgresRepository) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	tag, err := sharedPersistence.PostgresQuerier(ctx, r.pool).Exec(ctx, pgDeletePublished, olderThanDays)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresRepository) exec(ctx context.Context, sql string, args ...any) error {
	_, err := sharedPersistence.PostgresQuerier(ctx, r.pool).Exec(ctx, sql, args...)
	return err
}

func nullableJSON(raw []byte) []byte {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
