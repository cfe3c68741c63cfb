package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/domain"
	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/service"
)

// TaskReader defines the read operations the task handler requires.
type TaskReader interface {
	ListPortfolios(ctx context.Context) ([]service.TaskPortfolio, error)
	GetTaskDetail(ctx context.Context, taskID string) (service.TaskDetail, error)
	ListTrades(ctx context.Context, taskID string, opts domain.ListOpts) ([]domain.Trade, int64, error)
	RecentTrades(ctx context.Context, limit int) ([]service.RecentTrade, error)
}

// PerformanceBuilder builds a task's equity history.
type PerformanceBuilder interface {
	Build(ctx context.Context, taskID, rangeKey string) (domain.PerformanceSeries, error)
}

// TaskHandler serves the dashboard's read endpoints.
type TaskHandler struct {
	tasks       TaskReader
	performance PerformanceBuilder
	logger      *slog.Logger
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(tasks TaskReader, performance PerformanceBuilder, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:       tasks,
		performance: performance,
		logger:      logger,
	}
}

// ListTasks returns a portfolio overview for every registered task.
// GET /api/tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	portfolios, err := h.tasks.ListPortfolios(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list tasks failed",
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	out := make([]portfolioDTO, len(portfolios))
	for i, p := range portfolios {
		out[i] = toPortfolioDTO(p)
	}
	writeSuccess(w, out)
}

// GetTask returns the full detail view of one task.
// GET /api/tasks/{taskId}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("taskId")
	if taskID == "" {
		writeError(w, http.StatusBadRequest, "task id is required")
		return
	}

	detail, err := h.tasks.GetTaskDetail(r.Context(), taskID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get task failed",
			slog.String("task_id", taskID),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeSuccess(w, toTaskDetailDTO(detail))
}

// GetPerformance returns the equity history chart for a task.
// GET /api/tasks/{taskId}/performance?range=1D|1W|ALL
func (h *TaskHandler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("taskId")
	if taskID == "" {
		writeError(w, http.StatusBadRequest, "task id is required")
		return
	}

	rangeKey := r.URL.Query().Get("range")
	if rangeKey == "" {
		rangeKey = service.RangeAll
	}

	series, err := h.performance.Build(r.Context(), taskID, rangeKey)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: performance failed",
			slog.String("task_id", taskID),
			slog.String("range", rangeKey),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeSuccess(w, toPerformanceDTO(series))
}
