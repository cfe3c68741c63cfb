package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/domain"
)

// fakeBus is an in-process domain.CommandBus. Notifications emitted via
// Emit are delivered synchronously to all live subscribers, and onPublish
// lets a test play the worker's side of the protocol.
type fakeBus struct {
	mu        sync.Mutex
	published []domain.TaskCommand
	handlers  map[int]func(domain.Notification)
	nextID    int
	onPublish func(cmd domain.TaskCommand)
}

func newFakeBus() *fakeBus {
	return &fakeBus{handlers: make(map[int]func(domain.Notification))}
}

func (b *fakeBus) Publish(_ context.Context, cmd domain.TaskCommand) error {
	b.mu.Lock()
	b.published = append(b.published, cmd)
	hook := b.onPublish
	b.mu.Unlock()
	if hook != nil {
		hook(cmd)
	}
	return nil
}

func (b *fakeBus) Subscribe(_ context.Context, handler func(domain.Notification)) (domain.Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = handler
	return &fakeSub{bus: b, id: id}, nil
}

func (b *fakeBus) Emit(n domain.Notification) {
	b.mu.Lock()
	handlers := make([]func(domain.Notification), 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()
	for _, h := range handlers {
		h(n)
	}
}

func (b *fakeBus) liveSubscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers)
}

type fakeSub struct {
	bus  *fakeBus
	id   int
	once sync.Once
}

func (s *fakeSub) Release() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.handlers, s.id)
		s.bus.mu.Unlock()
	})
}

type fakeScraper struct {
	address string
	err     error
}

func (f *fakeScraper) ScrapeAddress(context.Context, string) (string, error) {
	return f.address, f.err
}

type fakeArchiver struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeArchiver) ArchiveTask(_ context.Context, taskID string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, taskID)
	f.mu.Unlock()
	return "archives/tasks/" + taskID + "/x.json", f.err
}

func newCommandService(bus *fakeBus, tasks *fakeTaskStore, scraper *fakeScraper, archiver *fakeArchiver) *CommandService {
	var arch TradeArchiver
	if archiver != nil {
		arch = archiver
	}
	svc := NewCommandService(bus, tasks, scraper, arch, testLogger())
	svc.timeout = 200 * time.Millisecond
	return svc
}

func TestCreateTraderConfirmed(t *testing.T) {
	bus := newFakeBus()
	bus.onPublish = func(cmd domain.TaskCommand) {
		bus.Emit(domain.Notification{
			Event:   domain.EventTaskCreated,
			TaskID:  "t-new",
			Address: cmd.Address,
		})
	}
	svc := newCommandService(bus, &fakeTaskStore{}, &fakeScraper{address: "0xAbC"}, nil)

	n, err := svc.CreateTrader(context.Background(), TraderRequest{
		Type:          "mock",
		Profile:       "https://polymarket.com/profile/whale",
		FixedAmount:   10,
		InitialAmount: 500,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.EventTaskCreated, n.Event)
	assert.Equal(t, "t-new", n.TaskID)

	require.Len(t, bus.published, 1)
	cmd := bus.published[0]
	assert.Empty(t, cmd.Action, "create commands carry no action")
	assert.Equal(t, "0xAbC", cmd.Address)
	assert.Equal(t, 10.0, cmd.FixedAmount)
	assert.Equal(t, 10.0, cmd.FixAmount, "legacy field mirrors fixedAmount")

	assert.Equal(t, 0, bus.liveSubscribers(), "subscription released after confirmation")
}

func TestCreateTraderRequiresProfile(t *testing.T) {
	svc := newCommandService(newFakeBus(), &fakeTaskStore{}, &fakeScraper{}, nil)

	_, err := svc.CreateTrader(context.Background(), TraderRequest{Profile: "  "})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateTraderScrapeFailure(t *testing.T) {
	svc := newCommandService(newFakeBus(), &fakeTaskStore{}, &fakeScraper{err: errors.New("no address")}, nil)

	_, err := svc.CreateTrader(context.Background(), TraderRequest{Profile: "https://polymarket.com/profile/x"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateTraderWorkerError(t *testing.T) {
	bus := newFakeBus()
	bus.onPublish = func(cmd domain.TaskCommand) {
		bus.Emit(domain.Notification{
			Event:   domain.EventTaskError,
			Address: cmd.Address,
			Error:   "insufficient funds",
		})
	}
	svc := newCommandService(bus, &fakeTaskStore{}, &fakeScraper{address: "0xAbC"}, nil)

	_, err := svc.CreateTrader(context.Background(), TraderRequest{Profile: "https://polymarket.com/profile/x"})

	require.ErrorIs(t, err, domain.ErrWorkerRejected)
	assert.Contains(t, err.Error(), "insufficient funds")
	assert.Equal(t, 0, bus.liveSubscribers())
}

func TestUpdateTraderMatchesByDataID(t *testing.T) {
	bus := newFakeBus()
	bus.onPublish = func(domain.TaskCommand) {
		// Confirmation for another task must not resolve this request.
		bus.Emit(domain.Notification{
			Event: domain.EventTaskUpdated,
			Data:  json.RawMessage(`{"id":"other"}`),
		})
		bus.Emit(domain.Notification{
			Event: domain.EventTaskUpdated,
			Data:  json.RawMessage(`{"id":"t1"}`),
		})
	}
	tasks := &fakeTaskStore{tasks: map[string]domain.CopyTask{"t1": {ID: "t1"}}}
	svc := newCommandService(bus, tasks, &fakeScraper{address: "0xAbC"}, nil)

	n, err := svc.UpdateTrader(context.Background(), "t1", TraderRequest{Type: "mock"})

	require.NoError(t, err)
	assert.Equal(t, "t1", n.CorrelationTaskID())
	require.Len(t, bus.published, 1)
	assert.Equal(t, domain.ActionEdit, bus.published[0].Action)
}

func TestUpdateTraderKeepsAddressOnScrapeFailure(t *testing.T) {
	bus := newFakeBus()
	bus.onPublish = func(domain.TaskCommand) {
		bus.Emit(domain.Notification{Event: domain.EventTaskUpdated, TaskID: "t1"})
	}
	tasks := &fakeTaskStore{tasks: map[string]domain.CopyTask{"t1": {ID: "t1"}}}
	svc := newCommandService(bus, tasks, &fakeScraper{err: errors.New("timeout")}, nil)

	_, err := svc.UpdateTrader(context.Background(), "t1", TraderRequest{
		Profile: "https://polymarket.com/profile/x",
	})

	require.NoError(t, err)
	assert.Empty(t, bus.published[0].Address, "worker keeps the existing address")
}

func TestStopTraderTimeout(t *testing.T) {
	bus := newFakeBus()
	tasks := &fakeTaskStore{tasks: map[string]domain.CopyTask{"t1": {ID: "t1"}}}
	svc := newCommandService(bus, tasks, &fakeScraper{}, nil)
	svc.timeout = 30 * time.Millisecond

	_, err := svc.StopTrader(context.Background(), "t1")

	require.ErrorIs(t, err, domain.ErrTimeout)
	assert.Equal(t, 0, bus.liveSubscribers(), "subscription released after timeout")

	// A confirmation arriving after the timeout must go nowhere.
	bus.Emit(domain.Notification{Event: domain.EventTaskStopped, TaskID: "t1"})
}

func TestStopTraderUnknownTask(t *testing.T) {
	svc := newCommandService(newFakeBus(), &fakeTaskStore{tasks: map[string]domain.CopyTask{}}, &fakeScraper{}, nil)

	_, err := svc.StopTrader(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemoveTraderArchivesBeforePublishing(t *testing.T) {
	bus := newFakeBus()
	archiver := &fakeArchiver{}
	bus.onPublish = func(cmd domain.TaskCommand) {
		archiver.mu.Lock()
		archived := len(archiver.calls)
		archiver.mu.Unlock()
		require.Equal(t, 1, archived, "ledger archived before the remove command goes out")
		bus.Emit(domain.Notification{Event: domain.EventTaskRemoved, TaskID: cmd.TaskID})
	}
	tasks := &fakeTaskStore{tasks: map[string]domain.CopyTask{"t1": {ID: "t1"}}}
	svc := newCommandService(bus, tasks, &fakeScraper{}, archiver)

	_, err := svc.RemoveTrader(context.Background(), "t1")

	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, archiver.calls)
}

func TestRemoveTraderArchiveFailureDoesNotBlock(t *testing.T) {
	bus := newFakeBus()
	bus.onPublish = func(cmd domain.TaskCommand) {
		bus.Emit(domain.Notification{Event: domain.EventTaskRemoved, TaskID: cmd.TaskID})
	}
	tasks := &fakeTaskStore{tasks: map[string]domain.CopyTask{"t1": {ID: "t1"}}}
	svc := newCommandService(bus, tasks, &fakeScraper{}, &fakeArchiver{err: errors.New("bucket gone")})

	_, err := svc.RemoveTrader(context.Background(), "t1")

	assert.NoError(t, err)
}

func TestPublishAndAwaitResolvesOnce(t *testing.T) {
	bus := newFakeBus()
	bus.onPublish = func(cmd domain.TaskCommand) {
		// Duplicate confirmations; only the first may resolve.
		bus.Emit(domain.Notification{Event: domain.EventTaskStopped, TaskID: "t1"})
		bus.Emit(domain.Notification{Event: domain.EventTaskError, TaskID: "t1", Error: "late"})
	}
	tasks := &fakeTaskStore{tasks: map[string]domain.CopyTask{"t1": {ID: "t1"}}}
	svc := newCommandService(bus, tasks, &fakeScraper{}, nil)

	n, err := svc.StopTrader(context.Background(), "t1")

	require.NoError(t, err)
	assert.Equal(t, domain.EventTaskStopped, n.Event)
}

func TestPublishAndAwaitUnkeyedBroadcastResolves(t *testing.T) {
	bus := newFakeBus()
	bus.onPublish = func(domain.TaskCommand) {
		bus.Emit(domain.Notification{Event: domain.EventTaskStopped})
	}
	tasks := &fakeTaskStore{tasks: map[string]domain.CopyTask{"t1": {ID: "t1"}}}
	svc := newCommandService(bus, tasks, &fakeScraper{}, nil)

	n, err := svc.StopTrader(context.Background(), "t1")

	require.NoError(t, err)
	assert.True(t, n.Unkeyed())
}
