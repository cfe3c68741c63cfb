package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination for trade ledger queries.
type ListOpts struct {
	Limit  int
	Offset int
}

// TaskStore reads the worker-owned task registry. The dashboard never writes
// tasks; mutations go through the command bus.
type TaskStore interface {
	List(ctx context.Context) ([]CopyTask, error)
	Get(ctx context.Context, id string) (CopyTask, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// PositionStore reads the mock-position records written by the worker.
type PositionStore interface {
	ListByTask(ctx context.Context, taskID string) ([]Position, error)
}

// TradeStore reads the trade ledger written by the worker.
type TradeStore interface {
	// ListByTask returns trades for a task sorted by execution time
	// descending, honoring opts.
	ListByTask(ctx context.Context, taskID string, opts ListOpts) ([]Trade, error)
	// ListByTaskSince returns trades for a task executed at or after sinceMs,
	// sorted by execution time ascending.
	ListByTaskSince(ctx context.Context, taskID string, sinceMs int64) ([]Trade, error)
	// ListRecent returns the newest trades across all tasks.
	ListRecent(ctx context.Context, limit int) ([]Trade, error)
	// SumRealizedPnlBefore sums the realized P&L of a task's trades executed
	// strictly before beforeMs, ignoring fills with no realized P&L.
	SumRealizedPnlBefore(ctx context.Context, taskID string, beforeMs int64) (float64, error)
	CountByTask(ctx context.Context, taskID string) (int64, error)
}

// Subscription is a scoped handle on an inbound-channel subscription.
// Release stops delivery to the handler; it is safe to call more than once.
type Subscription interface {
	Release()
}

// CommandBus publishes commands to the worker and exposes fan-out
// subscriptions to the worker's notification channel. Every concurrent
// subscriber independently receives every inbound message.
type CommandBus interface {
	Publish(ctx context.Context, cmd TaskCommand) error
	Subscribe(ctx context.Context, handler func(Notification)) (Subscription, error)
}

// RateLimiter bounds request rates per key. Allow reports whether one more
// request fits under the limit and counts it when it does.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
