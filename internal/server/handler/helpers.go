// Package handler implements the HTTP endpoints of the dashboard API. All
// responses share the {"success": ..., "data": ...} envelope the frontend
// expects.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/domain"
)

// writeJSON marshals v as JSON and writes it with the given status code.
// If marshaling fails, it falls back to a plain 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"success":false,"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeSuccess wraps the payload in the success envelope.
func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
	})
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   msg,
	})
}

// writeDomainError maps domain errors onto HTTP status codes: invalid input
// is 400, missing tasks 404, a confirmation timeout 504, and a worker
// rejection 500 with the worker's reason. Anything else becomes an opaque
// 500 so internals do not leak.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "task not found")
	case errors.Is(err, domain.ErrTimeout):
		writeError(w, http.StatusGatewayTimeout, "timed out waiting for worker confirmation")
	case errors.Is(err, domain.ErrWorkerRejected):
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// parsePageOpts reads page/limit pagination from the query string.
// Defaults: page=1, limit=20 (max 200).
func parsePageOpts(r *http.Request) (page int, opts domain.ListOpts) {
	q := r.URL.Query()

	page = 1
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}

	limit := 20
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 200 {
		limit = 200
	}

	return page, domain.ListOpts{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}
