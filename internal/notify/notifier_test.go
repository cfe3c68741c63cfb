package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/domain"
)

type fakeSender struct {
	name   string
	err    error
	titles []string
	bodies []string
}

func (f *fakeSender) Send(_ context.Context, title, message string) error {
	f.titles = append(f.titles, title)
	f.bodies = append(f.bodies, message)
	return f.err
}

func (f *fakeSender) Name() string { return f.name }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTaskEventDispatchesToAllSenders(t *testing.T) {
	a := &fakeSender{name: "a"}
	b := &fakeSender{name: "b"}
	n := NewNotifier([]Sender{a, b}, nil, discardLogger())

	err := n.TaskEvent(context.Background(), domain.Notification{
		Event:   domain.EventTaskError,
		TaskID:  "t1",
		Address: "0xabc",
		Error:   "fill rejected",
	})

	require.NoError(t, err)
	require.Len(t, a.titles, 1)
	assert.Equal(t, "Copy task error", a.titles[0])
	assert.Contains(t, a.bodies[0], "Task: t1")
	assert.Contains(t, a.bodies[0], "Trader: 0xabc")
	assert.Contains(t, a.bodies[0], "Error: fill rejected")
	assert.Len(t, b.titles, 1)
}

func TestTaskEventFiltersByAllowlist(t *testing.T) {
	s := &fakeSender{name: "a"}
	n := NewNotifier([]Sender{s}, []string{domain.EventTaskError}, discardLogger())

	require.NoError(t, n.TaskEvent(context.Background(), domain.Notification{Event: domain.EventTaskCreated}))
	assert.Empty(t, s.titles, "filtered event not delivered")

	require.NoError(t, n.TaskEvent(context.Background(), domain.Notification{Event: domain.EventTaskError}))
	assert.Len(t, s.titles, 1)
}

func TestTaskEventIgnoresUnknownEvents(t *testing.T) {
	s := &fakeSender{name: "a"}
	n := NewNotifier([]Sender{s}, nil, discardLogger())

	require.NoError(t, n.TaskEvent(context.Background(), domain.Notification{Event: "heartbeat"}))
	assert.Empty(t, s.titles)
}

func TestTaskEventCollectsSenderFailures(t *testing.T) {
	bad := &fakeSender{name: "bad", err: errors.New("down")}
	good := &fakeSender{name: "good"}
	n := NewNotifier([]Sender{bad, good}, nil, discardLogger())

	err := n.TaskEvent(context.Background(), domain.Notification{Event: domain.EventTaskStopped, TaskID: "t1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
	assert.Len(t, good.titles, 1, "remaining senders still delivered")
}
