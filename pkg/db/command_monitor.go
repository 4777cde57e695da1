package db

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/event"
	"go.uber.org/zap"

	"portfolio/pkg/metrics"
)

// CommandMonitor records command latency and logs commands slower than
// the threshold.
type CommandMonitor struct {
	logger        *zap.Logger
	slowThreshold time.Duration

	// request id -> collection name, filled on start and drained on finish
	inflight sync.Map
}

// NewCommandMonitor defaults the threshold to 100ms.
func NewCommandMonitor(logger *zap.Logger, slowThreshold time.Duration) *CommandMonitor {
	if slowThreshold == 0 {
		slowThreshold = 100 * time.Millisecond
	}
	return &CommandMonitor{
		logger:        logger,
		slowThreshold: slowThreshold,
	}
}

// Monitor adapts m to the driver's monitor hooks.
func (m *CommandMonitor) Monitor() *event.CommandMonitor {
	return &event.CommandMonitor{
		Started:   m.Started,
		Succeeded: m.Succeeded,
		Failed:    m.Failed,
	}
}

func (m *CommandMonitor) Started(_ context.Context, evt *event.CommandStartedEvent) {
	collection, _ := evt.Command.Lookup(evt.CommandName).StringValueOK()
	m.inflight.Store(evt.RequestID, collection)
}

func (m *CommandMonitor) Succeeded(_ context.Context, evt *event.CommandSucceededEvent) {
	m.finish(evt.CommandFinishedEvent, "ok")
}

func (m *CommandMonitor) Failed(_ context.Context, evt *event.CommandFailedEvent) {
	m.finish(evt.CommandFinishedEvent, "error")
	m.logger.Warn("store-command-failed",
		zap.String("command", evt.CommandName),
		zap.String("failure", evt.Failure),
	)
}

func (m *CommandMonitor) finish(evt event.CommandFinishedEvent, status string) {
	var collection string
	if v, ok := m.inflight.LoadAndDelete(evt.RequestID); ok {
		collection, _ = v.(string)
	}

	metrics.RecordStoreCommand(evt.CommandName, status, evt.Duration)

	if evt.Duration > m.slowThreshold {
		m.logger.Warn("slow-query",
			zap.String("command", evt.CommandName),
			zap.String("collection", collection),
			zap.Duration("took", evt.Duration),
		)
		metrics.IncrementSlowStoreCommand(evt.CommandName)
	}
}
