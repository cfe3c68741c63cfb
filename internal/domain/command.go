package domain

import (
	"encoding/json"
	"strings"
)

// Redis channel and key names shared with the execution worker.
const (
	TasksKey             = "copy-polymarket:tasks"
	ChannelCommands      = "copy-polymarket:tasks:incoming"
	ChannelNotifications = "copy-polymarket:notifications"
)

// Command actions understood by the execution worker. An absent action means
// "create".
const (
	ActionEdit   = "edit"
	ActionStop   = "stop"
	ActionRemove = "remove"
)

// Terminal notification events published by the worker.
const (
	EventTaskCreated = "task_created"
	EventTaskUpdated = "task_updated"
	EventTaskStopped = "task_stopped"
	EventTaskRemoved = "task_removed"
	EventTaskError   = "task_error"
)

// TaskCommand is the payload published on the outbound command channel.
// FixAmount mirrors FixedAmount under the legacy field name the worker still
// reads for create and edit commands.
type TaskCommand struct {
	Action          string  `json:"action,omitempty"`
	TaskID          string  `json:"taskId,omitempty"`
	Type            string  `json:"type,omitempty"`
	Address         string  `json:"address,omitempty"`
	Profile         string  `json:"profile,omitempty"`
	FixedAmount     float64 `json:"fixedAmount,omitempty"`
	FixAmount       float64 `json:"fixAmount,omitempty"`
	InitialAmount   float64 `json:"initialAmount,omitempty"`
	PrivateKey      string  `json:"privateKey,omitempty"`
	MyWalletAddress string  `json:"myWalletAddress,omitempty"`
}

// Notification is a message arriving on the inbound notification channel.
// Data carries the worker's event payload verbatim; for task_updated and some
// task_error messages the task identifier lives in Data under "id".
type Notification struct {
	Event   string          `json:"event"`
	TaskID  string          `json:"taskId,omitempty"`
	Address string          `json:"address,omitempty"`
	Error   string          `json:"error,omitempty"`
	Success *bool           `json:"success,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// CorrelationTaskID returns the task identifier the notification refers to:
// the top-level taskId when present, else the "id" field of Data.
func (n Notification) CorrelationTaskID() string {
	if n.TaskID != "" {
		return n.TaskID
	}
	if len(n.Data) == 0 {
		return ""
	}
	var payload struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(n.Data, &payload); err != nil {
		return ""
	}
	return payload.ID
}

// Unkeyed reports whether the notification carries no correlation key at all,
// in which case it is treated as a broadcast reply.
func (n Notification) Unkeyed() bool {
	return n.Address == "" && n.CorrelationTaskID() == ""
}

// MatchesKey reports whether the notification belongs to a request correlated
// by the given task identifier and/or address. An unscoped request (both keys
// empty) matches everything; a keyed request matches notifications carrying
// the same task id, the same address compared case-insensitively, or no key
// at all.
func (n Notification) MatchesKey(taskID, address string) bool {
	if taskID == "" && address == "" {
		return true
	}
	if n.Unkeyed() {
		return true
	}
	if taskID != "" && n.CorrelationTaskID() == taskID {
		return true
	}
	if address != "" && n.Address != "" && strings.EqualFold(n.Address, address) {
		return true
	}
	return false
}
