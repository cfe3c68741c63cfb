package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/domain"
)

// LiveDataSource reads a live wallet's positions and activity from the
// Polymarket data API.
type LiveDataSource interface {
	Positions(ctx context.Context, user, taskID string) ([]domain.Position, error)
	Activity(ctx context.Context, user, taskID string, limit int) ([]domain.Trade, error)
}

// TaskPortfolio pairs a task with its computed portfolio snapshot for the
// dashboard's overview list.
type TaskPortfolio struct {
	Task       domain.CopyTask
	Snapshot   domain.PortfolioSnapshot
	TradeCount int64
}

// TaskDetail is the full single-task view: the snapshot plus recent trades.
type TaskDetail struct {
	Task         domain.CopyTask
	Snapshot     domain.PortfolioSnapshot
	RecentTrades []domain.Trade
}

// RecentTrade is a cross-task ledger entry annotated with its task's display
// name for the activity feed.
type RecentTrade struct {
	Trade    domain.Trade
	TaskName string
}

// TaskService serves the dashboard's read surface: portfolio overviews, task
// detail, and trade history. All views are computed fresh per request.
type TaskService struct {
	tasks     domain.TaskStore
	positions domain.PositionStore
	trades    domain.TradeStore
	liveData  LiveDataSource
	valuation *ValuationService
	logger    *slog.Logger
}

// NewTaskService creates a TaskService.
func NewTaskService(
	tasks domain.TaskStore,
	positions domain.PositionStore,
	trades domain.TradeStore,
	liveData LiveDataSource,
	valuation *ValuationService,
	logger *slog.Logger,
) *TaskService {
	return &TaskService{
		tasks:     tasks,
		positions: positions,
		trades:    trades,
		liveData:  liveData,
		valuation: valuation,
		logger:    logger,
	}
}

// ListPortfolios returns a snapshot for every registered task. Snapshots are
// computed concurrently; a task whose data cannot be loaded is returned with
// an unpriced snapshot rather than failing the whole list.
func (s *TaskService) ListPortfolios(ctx context.Context) ([]TaskPortfolio, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("task_service: list tasks: %w", err)
	}

	portfolios := make([]TaskPortfolio, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, task := range tasks {
		g.Go(func() error {
			portfolios[i] = s.buildPortfolio(gctx, task)
			return nil
		})
	}
	_ = g.Wait()

	return portfolios, nil
}

// GetTaskDetail returns the full view of one task: its priced snapshot and
// the 20 most recent trades.
func (s *TaskService) GetTaskDetail(ctx context.Context, taskID string) (TaskDetail, error) {
	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return TaskDetail{}, fmt.Errorf("task_service: get task %s: %w", taskID, err)
	}

	positions := s.positionsFor(ctx, task)
	snapshot := s.valuation.Snapshot(ctx, task, positions)
	trades := s.recentTradesFor(ctx, task, 20)

	return TaskDetail{
		Task:         task,
		Snapshot:     snapshot,
		RecentTrades: trades,
	}, nil
}

// ListTrades returns a task's trade ledger, newest first, with pagination.
func (s *TaskService) ListTrades(ctx context.Context, taskID string, opts domain.ListOpts) ([]domain.Trade, int64, error) {
	if _, err := s.tasks.Get(ctx, taskID); err != nil {
		return nil, 0, fmt.Errorf("task_service: get task %s: %w", taskID, err)
	}

	trades, err := s.trades.ListByTask(ctx, taskID, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("task_service: list trades for %s: %w", taskID, err)
	}
	total, err := s.trades.CountByTask(ctx, taskID)
	if err != nil {
		return nil, 0, fmt.Errorf("task_service: count trades for %s: %w", taskID, err)
	}
	return trades, total, nil
}

// RecentTrades returns the newest ledger entries across all tasks, annotated
// with each task's display name.
func (s *TaskService) RecentTrades(ctx context.Context, limit int) ([]RecentTrade, error) {
	trades, err := s.trades.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("task_service: list recent trades: %w", err)
	}

	names := make(map[string]string)
	out := make([]RecentTrade, 0, len(trades))
	for _, t := range trades {
		name, ok := names[t.TaskID]
		if !ok {
			name = "Unknown"
			if task, err := s.tasks.Get(ctx, t.TaskID); err == nil {
				name = task.ProfileName()
			}
			names[t.TaskID] = name
		}
		out = append(out, RecentTrade{Trade: t, TaskName: name})
	}
	return out, nil
}

// buildPortfolio computes one task's overview entry, degrading to an
// unpriced snapshot when its positions cannot be loaded.
func (s *TaskService) buildPortfolio(ctx context.Context, task domain.CopyTask) TaskPortfolio {
	positions := s.positionsFor(ctx, task)
	snapshot := s.valuation.Snapshot(ctx, task, positions)

	count, err := s.trades.CountByTask(ctx, task.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "task_service: trade count failed",
			slog.String("task_id", task.ID),
			slog.String("error", err.Error()),
		)
	}

	return TaskPortfolio{Task: task, Snapshot: snapshot, TradeCount: count}
}

// positionsFor loads a task's positions from the appropriate source: the
// worker's store for mock tasks, the data API for live ones. Load failures
// degrade to an empty portfolio.
func (s *TaskService) positionsFor(ctx context.Context, task domain.CopyTask) []domain.Position {
	var positions []domain.Position
	var err error
	if task.IsLive() {
		positions, err = s.liveData.Positions(ctx, task.MyWalletAddress, task.ID)
	} else {
		positions, err = s.positions.ListByTask(ctx, task.ID)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "task_service: load positions failed",
			slog.String("task_id", task.ID),
			slog.String("mode", string(task.Mode)),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return positions
}

// recentTradesFor loads a task's recent fills: the ledger for mock tasks,
// on-chain activity for live ones with the ledger as fallback.
func (s *TaskService) recentTradesFor(ctx context.Context, task domain.CopyTask, limit int) []domain.Trade {
	if task.IsLive() && task.MyWalletAddress != "" {
		trades, err := s.liveData.Activity(ctx, task.MyWalletAddress, task.ID, limit)
		if err == nil {
			sort.SliceStable(trades, func(i, j int) bool {
				return trades[i].ExecutedAt > trades[j].ExecutedAt
			})
			return trades
		}
		s.logger.WarnContext(ctx, "task_service: live activity fetch failed, using ledger",
			slog.String("task_id", task.ID),
			slog.String("error", err.Error()),
		)
	}

	trades, err := s.trades.ListByTask(ctx, task.ID, domain.ListOpts{Limit: limit})
	if err != nil {
		s.logger.WarnContext(ctx, "task_service: load trades failed",
			slog.String("task_id", task.ID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return trades
}
