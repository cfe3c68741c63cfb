package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/domain"
	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/service"
)

func boolPtr(b bool) *bool { return &b }

type fakeCommander struct {
	err     error
	created service.TraderRequest
	taskID  string
}

func (f *fakeCommander) CreateTrader(_ context.Context, req service.TraderRequest) (domain.Notification, error) {
	f.created = req
	if f.err != nil {
		return domain.Notification{}, f.err
	}
	return domain.Notification{Event: domain.EventTaskCreated, Success: boolPtr(true)}, nil
}

func (f *fakeCommander) UpdateTrader(_ context.Context, taskID string, req service.TraderRequest) (domain.Notification, error) {
	f.taskID = taskID
	f.created = req
	if f.err != nil {
		return domain.Notification{}, f.err
	}
	return domain.Notification{Event: domain.EventTaskUpdated, Success: boolPtr(true)}, nil
}

func (f *fakeCommander) StopTrader(_ context.Context, taskID string) (domain.Notification, error) {
	f.taskID = taskID
	if f.err != nil {
		return domain.Notification{}, f.err
	}
	return domain.Notification{Event: domain.EventTaskStopped, Success: boolPtr(true)}, nil
}

func (f *fakeCommander) RemoveTrader(_ context.Context, taskID string) (domain.Notification, error) {
	f.taskID = taskID
	if f.err != nil {
		return domain.Notification{}, f.err
	}
	return domain.Notification{Event: domain.EventTaskRemoved, Success: boolPtr(true)}, nil
}

func newTraderHandler(err error) (*TraderHandler, *fakeCommander) {
	fc := &fakeCommander{err: err}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewTraderHandler(fc, logger), fc
}

func postJSON(t *testing.T, handlerFn http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handlerFn(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCreateTraderSuccess(t *testing.T) {
	h, fc := newTraderHandler(nil)

	rec := postJSON(t, h.CreateTrader, `{"profile": "https://polymarket.com/profile/0xabc", "fixedAmount": 10}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	out := decodeEnvelope(t, rec)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "https://polymarket.com/profile/0xabc", fc.created.Profile)
	assert.Equal(t, 10.0, fc.created.FixedAmount)
}

func TestCreateTraderLegacyURLField(t *testing.T) {
	h, fc := newTraderHandler(nil)

	rec := postJSON(t, h.CreateTrader, `{"url": "https://polymarket.com/profile/0xabc"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://polymarket.com/profile/0xabc", fc.created.Profile)
}

func TestCreateTraderBadBody(t *testing.T) {
	h, _ := newTraderHandler(nil)

	rec := postJSON(t, h.CreateTrader, `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	out := decodeEnvelope(t, rec)
	assert.Equal(t, false, out["success"])
}

func TestUpdateTraderRequiresTaskID(t *testing.T) {
	h, _ := newTraderHandler(nil)

	rec := postJSON(t, h.UpdateTrader, `{"profile": "https://polymarket.com/profile/0xabc"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStopTraderPassesTaskID(t *testing.T) {
	h, fc := newTraderHandler(nil)

	rec := postJSON(t, h.StopTrader, `{"taskId": "task-9"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "task-9", fc.taskID)
}

func TestTraderErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "invalid input",
			err:        fmt.Errorf("%w: profile url is required", domain.ErrInvalidInput),
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid input: profile url is required",
		},
		{
			name:       "not found",
			err:        fmt.Errorf("lookup: %w", domain.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantError:  "task not found",
		},
		{
			name:       "confirmation timeout",
			err:        fmt.Errorf("stop: %w", domain.ErrTimeout),
			wantStatus: http.StatusGatewayTimeout,
			wantError:  "timed out waiting for worker confirmation",
		},
		{
			name:       "worker rejection",
			err:        fmt.Errorf("%w: insufficient balance", domain.ErrWorkerRejected),
			wantStatus: http.StatusInternalServerError,
			wantError:  "worker rejected the command: insufficient balance",
		},
		{
			name:       "unknown error stays opaque",
			err:        fmt.Errorf("pgx: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTraderHandler(tt.err)

			rec := postJSON(t, h.RemoveTrader, `{"taskId": "task-1"}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
			out := decodeEnvelope(t, rec)
			assert.Equal(t, false, out["success"])
			assert.Equal(t, tt.wantError, out["error"])
		})
	}
}
