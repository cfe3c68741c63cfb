// Package domain defines the core data model for the copy-trading dashboard:
// tasks, positions, trades, portfolio snapshots, and the interfaces of the
// external collaborators (stores, command bus, price sources).
package domain

import (
	"net/url"
	"strings"
)

// TaskMode distinguishes simulated tasks from tasks trading real funds.
type TaskMode string

const (
	TaskModeMock TaskMode = "mock"
	TaskModeLive TaskMode = "live"
)

// TaskStatus tracks whether the execution worker is running a task.
type TaskStatus string

const (
	TaskStatusRunning TaskStatus = "running"
	TaskStatusStopped TaskStatus = "stopped"
)

// CopyTask is one configured copy-trading bot. Tasks are owned by the
// execution worker; the dashboard reads them and issues mutation requests
// over the command bus, but never writes task state directly.
type CopyTask struct {
	ID              string     `json:"id"`
	Mode            TaskMode   `json:"type"`
	Address         string     `json:"address"`
	MyWalletAddress string     `json:"myWalletAddress"`
	ProfileURL      string     `json:"url"`
	InitialFinance  float64    `json:"initialFinance"`
	CurrentBalance  float64    `json:"currentBalance"`
	FixedAmount     float64    `json:"fixedAmount"`
	Status          TaskStatus `json:"status"`
	CreatedAt       int64      `json:"createdAt"` // epoch millis
}

// IsLive reports whether the task trades with real funds.
func (t CopyTask) IsLive() bool {
	return t.Mode == TaskModeLive
}

// ProfileName derives a display name from the task's profile URL: the last
// path segment, or "Unknown" when the URL cannot be parsed.
func (t CopyTask) ProfileName() string {
	u, err := url.Parse(t.ProfileURL)
	if err != nil {
		return "Unknown"
	}
	parts := strings.Split(u.Path, "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}
	return "Unknown"
}

// ShortAddress renders the copied wallet as "0x1234...abcd" for display.
func (t CopyTask) ShortAddress() string {
	if len(t.Address) <= 10 {
		return t.Address
	}
	return t.Address[:6] + "..." + t.Address[len(t.Address)-4:]
}
