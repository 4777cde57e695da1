package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/event"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func started(t *testing.T, id int64, name, collection string) *event.CommandStartedEvent {
	t.Helper()
	raw, err := bson.Marshal(bson.D{{Key: name, Value: collection}})
	require.NoError(t, err)
	return &event.CommandStartedEvent{Command: raw, CommandName: name, RequestID: id}
}

func TestSlowCommandIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	m := NewCommandMonitor(zap.New(core), 50*time.Millisecond)
	ctx := context.Background()

	m.Started(ctx, started(t, 1, "find", "projects"))
	m.Succeeded(ctx, &event.CommandSucceededEvent{CommandFinishedEvent: event.CommandFinishedEvent{
		CommandName: "find", RequestID: 1, Duration: 120 * time.Millisecond,
	}})

	entries := logs.FilterMessage("slow-query").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "projects", entries[0].ContextMap()["collection"])
	assert.Equal(t, "find", entries[0].ContextMap()["command"])
}

func TestFastCommandIsQuiet(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	m := NewCommandMonitor(zap.New(core), 0)
	ctx := context.Background()

	m.Started(ctx, started(t, 2, "insert", "services"))
	m.Succeeded(ctx, &event.CommandSucceededEvent{CommandFinishedEvent: event.CommandFinishedEvent{
		CommandName: "insert", RequestID: 2, Duration: time.Millisecond,
	}})

	assert.Zero(t, logs.Len())
	_, pending := m.inflight.Load(int64(2))
	assert.False(t, pending)
}

func TestFailedCommandIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	m := NewCommandMonitor(zap.New(core), time.Second)
	ctx := context.Background()

	m.Started(ctx, started(t, 3, "delete", "messages"))
	m.Failed(ctx, &event.CommandFailedEvent{
		CommandFinishedEvent: event.CommandFinishedEvent{CommandName: "delete", RequestID: 3, Duration: time.Millisecond},
		Failure:              "not primary",
	})

	assert.Equal(t, 1, logs.FilterMessage("store-command-failed").Len())
}
