package outbox

import (
	"context"
	"time"
)

// Repository persists outbox messages for the processor. Save and SaveBatch
// join the transaction in ctx so messages commit with the aggregate change.
type Repository interface {
	Save(ctx context.Context, msg *Message) error
	// SaveBatch stores msgs atomically and sets their IDs.
	SaveBatch(ctx context.Context, msgs []*Message) error

	// GetUnpublished returns at most limit due messages, oldest first.
	GetUnpublished(ctx context.Context, limit int) ([]*Message, error)
	MarkPublished(ctx context.Context, id int64) error
	// MarkFailed counts a failed attempt and holds the message until nextRetryAt.
	MarkFailed(ctx context.Context, id int64, err string, nextRetryAt time.Time) error
	// MarkDead stops relaying the message.
	MarkDead(ctx context.Context, id int64, reason string) error

	// DeleteOld prunes published messages older than olderThanDays and
	// returns how many were removed. Dead letters are kept.
	DeleteOld(ctx context.Context, olderThanDays int) (int64, error)
}
