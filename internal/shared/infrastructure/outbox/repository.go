package outbox

import (
	"context"
	"time"
)

// Repository persists outbox messages. Save and SaveBatch run inside
// the command's transaction; the remaining methods belong to the
// worker's publish loop.
type Repository interface {
	// Save stores one message.
	Save(ctx context.Context, msg *Message) error

	// SaveBatch stores several messages in one statement.
	SaveBatch(ctx context.Context, msgs []*Message) error

	// GetUnpublished returns messages awaiting publish, oldest first,
	// skipping those whose retry backoff has not elapsed.
	GetUnpublished(ctx context.Context, limit int) ([]*Message, error)

	// MarkPublished stamps the message as delivered.
	MarkPublished(ctx context.Context, id int64) error

	// MarkFailed records a delivery failure and schedules the retry.
	MarkFailed(ctx context.Context, id int64, err string, nextRetryAt time.Time) error

	// DeleteOld prunes published messages past the retention window and
	// returns how many were removed.
	DeleteOld(ctx context.Context, olderThanDays int) (int64, error)
}
