// Package feed publishes task mutations as events for downstream consumers
// (audit, notifications, other caches). The feed is strictly fire-and-forget:
// a broker failure never blocks or fails a mutation.
package feed

import (
	"context"

	"tasksync/internal/models"
)

// Publisher emits a task event. Implementations must not return control-flow
// errors; delivery problems are their own concern.
type Publisher interface {
	Publish(ctx context.Context, ev models.TaskEvent)
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(ctx context.Context, ev models.TaskEvent) {}
