package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/domain"
)

// AddressScraper resolves a trader's wallet address from a profile URL.
type AddressScraper interface {
	ScrapeAddress(ctx context.Context, profileURL string) (string, error)
}

// TradeArchiver exports a task's trade ledger to durable storage.
type TradeArchiver interface {
	ArchiveTask(ctx context.Context, taskID string) (string, error)
}

// defaultConfirmTimeout bounds how long a mutation waits for the worker's
// confirmation before failing with domain.ErrTimeout.
const defaultConfirmTimeout = 30 * time.Second

// CommandService implements the request/confirmation protocol between the
// dashboard and the execution worker. Each mutation publishes a command on
// the outbound channel and blocks until a correlated confirmation arrives on
// the inbound channel, the worker reports an error, or the wait times out.
//
// The subscription is always opened before the command is published, so a
// worker that confirms instantly cannot race the listener.
type CommandService struct {
	bus      domain.CommandBus
	tasks    domain.TaskStore
	scraper  AddressScraper
	archiver TradeArchiver
	logger   *slog.Logger
	timeout  time.Duration
}

// NewCommandService creates a CommandService. archiver may be nil, in which
// case removed tasks are not archived.
func NewCommandService(
	bus domain.CommandBus,
	tasks domain.TaskStore,
	scraper AddressScraper,
	archiver TradeArchiver,
	logger *slog.Logger,
) *CommandService {
	return &CommandService{
		bus:      bus,
		tasks:    tasks,
		scraper:  scraper,
		archiver: archiver,
		logger:   logger,
		timeout:  defaultConfirmTimeout,
	}
}

// TraderRequest carries the user-supplied fields of a create or update
// mutation. Profile is the trader's public profile URL; the wallet address
// is always derived from it, never taken from the caller.
type TraderRequest struct {
	Type            string  `json:"type"`
	Profile         string  `json:"profile"`
	FixedAmount     float64 `json:"fixedAmount"`
	InitialAmount   float64 `json:"initialAmount"`
	PrivateKey      string  `json:"privateKey"`
	MyWalletAddress string  `json:"myWalletAddress"`
}

// CreateTrader resolves the trader's wallet address from the profile URL,
// publishes a create command, and waits for the worker's confirmation. The
// returned notification is the worker's task_created message.
func (s *CommandService) CreateTrader(ctx context.Context, req TraderRequest) (domain.Notification, error) {
	if strings.TrimSpace(req.Profile) == "" {
		return domain.Notification{}, fmt.Errorf("%w: profile url is required", domain.ErrInvalidInput)
	}

	address, err := s.scraper.ScrapeAddress(ctx, req.Profile)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("%w: could not resolve trader address from profile: %v",
			domain.ErrInvalidInput, err)
	}

	cmd := domain.TaskCommand{
		Type:            req.Type,
		Address:         address,
		Profile:         req.Profile,
		FixedAmount:     req.FixedAmount,
		FixAmount:       req.FixedAmount,
		InitialAmount:   req.InitialAmount,
		PrivateKey:      req.PrivateKey,
		MyWalletAddress: req.MyWalletAddress,
	}

	// No task id exists yet; the confirmation is correlated by the trader
	// address the worker echoes back.
	return s.publishAndAwait(ctx, cmd, "", address, domain.EventTaskCreated)
}

// UpdateTrader publishes an edit command for an existing task and waits for
// confirmation. When a profile URL is supplied the trader address is
// re-resolved from it; a failed scrape leaves the address empty and the
// worker keeps the existing one.
func (s *CommandService) UpdateTrader(ctx context.Context, taskID string, req TraderRequest) (domain.Notification, error) {
	if err := s.requireTask(ctx, taskID); err != nil {
		return domain.Notification{}, err
	}

	var address string
	if strings.TrimSpace(req.Profile) != "" {
		scraped, err := s.scraper.ScrapeAddress(ctx, req.Profile)
		if err != nil {
			s.logger.WarnContext(ctx, "command: address rescrape failed, keeping existing",
				slog.String("task_id", taskID),
				slog.String("error", err.Error()),
			)
		} else {
			address = scraped
		}
	}

	cmd := domain.TaskCommand{
		Action:          domain.ActionEdit,
		TaskID:          taskID,
		Type:            req.Type,
		Address:         address,
		Profile:         req.Profile,
		FixedAmount:     req.FixedAmount,
		FixAmount:       req.FixedAmount,
		InitialAmount:   req.InitialAmount,
		PrivateKey:      req.PrivateKey,
		MyWalletAddress: req.MyWalletAddress,
	}

	return s.publishAndAwait(ctx, cmd, taskID, "", domain.EventTaskUpdated)
}

// StopTrader publishes a stop command and waits for the worker to confirm
// the task is stopped.
func (s *CommandService) StopTrader(ctx context.Context, taskID string) (domain.Notification, error) {
	if err := s.requireTask(ctx, taskID); err != nil {
		return domain.Notification{}, err
	}
	cmd := domain.TaskCommand{Action: domain.ActionStop, TaskID: taskID}
	return s.publishAndAwait(ctx, cmd, taskID, "", domain.EventTaskStopped)
}

// RemoveTrader archives the task's trade ledger, then publishes a remove
// command and waits for confirmation. Archiving failures are logged but do
// not block the removal.
func (s *CommandService) RemoveTrader(ctx context.Context, taskID string) (domain.Notification, error) {
	if err := s.requireTask(ctx, taskID); err != nil {
		return domain.Notification{}, err
	}

	// Archive before the worker deletes anything.
	if s.archiver != nil {
		if key, err := s.archiver.ArchiveTask(ctx, taskID); err != nil {
			s.logger.WarnContext(ctx, "command: trade archive failed",
				slog.String("task_id", taskID),
				slog.String("error", err.Error()),
			)
		} else {
			s.logger.InfoContext(ctx, "command: trade ledger archived",
				slog.String("task_id", taskID),
				slog.String("key", key),
			)
		}
	}

	cmd := domain.TaskCommand{Action: domain.ActionRemove, TaskID: taskID}
	return s.publishAndAwait(ctx, cmd, taskID, "", domain.EventTaskRemoved)
}

func (s *CommandService) requireTask(ctx context.Context, taskID string) error {
	if strings.TrimSpace(taskID) == "" {
		return fmt.Errorf("%w: task id is required", domain.ErrInvalidInput)
	}
	exists, err := s.tasks.Exists(ctx, taskID)
	if err != nil {
		return fmt.Errorf("command: check task %s: %w", taskID, err)
	}
	if !exists {
		return fmt.Errorf("%w: task %s", domain.ErrNotFound, taskID)
	}
	return nil
}

// publishAndAwait runs one round of the confirmation protocol: subscribe,
// publish, then wait for the first notification that carries the expected
// event (or task_error) and matches the correlation key.
func (s *CommandService) publishAndAwait(
	ctx context.Context,
	cmd domain.TaskCommand,
	taskID, address string,
	confirmEvent string,
) (domain.Notification, error) {
	requestID := uuid.NewString()
	log := s.logger.With(
		slog.String("request_id", requestID),
		slog.String("action", actionName(cmd.Action)),
	)

	result := make(chan domain.Notification, 1)
	var once sync.Once

	sub, err := s.bus.Subscribe(ctx, func(n domain.Notification) {
		if n.Event != confirmEvent && n.Event != domain.EventTaskError {
			return
		}
		if !n.MatchesKey(taskID, address) {
			return
		}
		once.Do(func() { result <- n })
	})
	if err != nil {
		return domain.Notification{}, fmt.Errorf("command: subscribe: %w", err)
	}
	defer sub.Release()

	if err := s.bus.Publish(ctx, cmd); err != nil {
		return domain.Notification{}, fmt.Errorf("command: publish: %w", err)
	}
	log.InfoContext(ctx, "command: published, awaiting confirmation",
		slog.String("task_id", taskID),
		slog.String("address", address),
	)

	waitCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	select {
	case n := <-result:
		if n.Event == domain.EventTaskError || (n.Success != nil && !*n.Success) {
			reason := n.Error
			if reason == "" {
				reason = "worker reported failure"
			}
			log.WarnContext(ctx, "command: worker rejected",
				slog.String("reason", reason),
			)
			return n, fmt.Errorf("%w: %s", domain.ErrWorkerRejected, reason)
		}
		log.InfoContext(ctx, "command: confirmed",
			slog.String("event", n.Event),
		)
		return n, nil
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return domain.Notification{}, fmt.Errorf("command: await confirmation: %w", ctx.Err())
		}
		log.WarnContext(ctx, "command: confirmation timed out")
		return domain.Notification{}, domain.ErrTimeout
	}
}

func actionName(action string) string {
	if action == "" {
		return "create"
	}
	return action
}
