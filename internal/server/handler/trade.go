package handler

import (
	"log/slog"
	"net/http"
)

// recentTradesLimit is how many entries the activity feed shows.
const recentTradesLimit = 5

// TradeHandler serves trade ledger endpoints.
type TradeHandler struct {
	tasks  TaskReader
	logger *slog.Logger
}

// NewTradeHandler creates a TradeHandler.
func NewTradeHandler(tasks TaskReader, logger *slog.Logger) *TradeHandler {
	return &TradeHandler{tasks: tasks, logger: logger}
}

// ListTrades returns a task's trade history, newest first, paginated via
// page/limit query parameters.
// GET /api/tasks/{taskId}/trades?page=1&limit=20
func (h *TradeHandler) ListTrades(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("taskId")
	if taskID == "" {
		writeError(w, http.StatusBadRequest, "task id is required")
		return
	}

	page, opts := parsePageOpts(r)

	trades, total, err := h.tasks.ListTrades(r.Context(), taskID, opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list trades failed",
			slog.String("task_id", taskID),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	out := make([]tradeDTO, len(trades))
	for i, t := range trades {
		out[i] = toTradeDTO(t)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    out,
		"pagination": map[string]any{
			"page":    page,
			"limit":   opts.Limit,
			"total":   total,
			"hasMore": int64(opts.Offset+len(trades)) < total,
		},
	})
}

// RecentTrades returns the newest fills across all tasks for the activity
// feed.
// GET /api/tasks/recent-trades
func (h *TradeHandler) RecentTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := h.tasks.RecentTrades(r.Context(), recentTradesLimit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: recent trades failed",
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	out := make([]recentTradeDTO, len(trades))
	for i, t := range trades {
		out[i] = toRecentTradeDTO(t)
	}
	writeSuccess(w, out)
}
