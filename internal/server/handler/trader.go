package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/domain"
	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/service"
)

// TraderCommander defines the mutation operations the trader handler
// requires. Every call blocks until the worker confirms, rejects, or the
// wait times out.
type TraderCommander interface {
	CreateTrader(ctx context.Context, req service.TraderRequest) (domain.Notification, error)
	UpdateTrader(ctx context.Context, taskID string, req service.TraderRequest) (domain.Notification, error)
	StopTrader(ctx context.Context, taskID string) (domain.Notification, error)
	RemoveTrader(ctx context.Context, taskID string) (domain.Notification, error)
}

// TraderHandler serves the task mutation endpoints.
type TraderHandler struct {
	commands TraderCommander
	logger   *slog.Logger
}

// NewTraderHandler creates a TraderHandler.
func NewTraderHandler(commands TraderCommander, logger *slog.Logger) *TraderHandler {
	return &TraderHandler{commands: commands, logger: logger}
}

// createRequest is the JSON body of create and update calls. Url mirrors
// Profile under the legacy field name older frontends send.
type createRequest struct {
	TaskID          string  `json:"taskId"`
	Type            string  `json:"type"`
	Profile         string  `json:"profile"`
	URL             string  `json:"url"`
	FixedAmount     float64 `json:"fixedAmount"`
	InitialAmount   float64 `json:"initialAmount"`
	PrivateKey      string  `json:"privateKey"`
	MyWalletAddress string  `json:"myWalletAddress"`
}

func (r createRequest) toServiceRequest() service.TraderRequest {
	profile := r.Profile
	if profile == "" {
		profile = r.URL
	}
	return service.TraderRequest{
		Type:            r.Type,
		Profile:         profile,
		FixedAmount:     r.FixedAmount,
		InitialAmount:   r.InitialAmount,
		PrivateKey:      r.PrivateKey,
		MyWalletAddress: r.MyWalletAddress,
	}
}

// taskIDRequest is the JSON body of stop and remove calls.
type taskIDRequest struct {
	TaskID string `json:"taskId"`
}

// CreateTrader starts copying a new trader.
// POST /api/traders/create
func (h *TraderHandler) CreateTrader(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	n, err := h.commands.CreateTrader(r.Context(), req.toServiceRequest())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: create trader failed",
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, n)
}

// UpdateTrader edits an existing copy task.
// POST /api/traders/update
func (h *TraderHandler) UpdateTrader(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TaskID == "" {
		writeError(w, http.StatusBadRequest, "taskId is required")
		return
	}

	n, err := h.commands.UpdateTrader(r.Context(), req.TaskID, req.toServiceRequest())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: update trader failed",
			slog.String("task_id", req.TaskID),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, n)
}

// StopTrader pauses a running copy task.
// POST /api/traders/stop
func (h *TraderHandler) StopTrader(w http.ResponseWriter, r *http.Request) {
	h.taskIDCall(w, r, "stop", h.commands.StopTrader)
}

// RemoveTrader removes a copy task entirely.
// POST /api/traders/remove
func (h *TraderHandler) RemoveTrader(w http.ResponseWriter, r *http.Request) {
	h.taskIDCall(w, r, "remove", h.commands.RemoveTrader)
}

func (h *TraderHandler) taskIDCall(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	call func(ctx context.Context, taskID string) (domain.Notification, error),
) {
	var req taskIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TaskID == "" {
		writeError(w, http.StatusBadRequest, "taskId is required")
		return
	}

	n, err := call(r.Context(), req.TaskID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: "+op+" trader failed",
			slog.String("task_id", req.TaskID),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, n)
}
