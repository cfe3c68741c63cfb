// Package notify pushes task lifecycle alerts to operator channels
// (Telegram, Discord). Alerts are rendered from worker notifications and
// filtered by event type so operators only hear about the events they
// subscribed to.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/domain"
)

// Sender is one delivery channel for rendered alerts.
type Sender interface {
	Send(ctx context.Context, title, message string) error
	// Name identifies the channel in logs (e.g. "telegram").
	Name() string
}

// eventTitles maps worker events to alert headlines.
var eventTitles = map[string]string{
	domain.EventTaskCreated: "Copy task created",
	domain.EventTaskUpdated: "Copy task updated",
	domain.EventTaskStopped: "Copy task stopped",
	domain.EventTaskRemoved: "Copy task removed",
	domain.EventTaskError:   "Copy task error",
}

// Notifier renders worker notifications into alerts and fans them out to the
// configured senders. When an event allowlist is configured, events outside
// it are dropped silently.
type Notifier struct {
	senders []Sender
	events  map[string]bool
	logger  *slog.Logger
}

// NewNotifier creates a Notifier delivering to the given senders. An empty
// events slice allows every event type.
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		allowed[strings.TrimSpace(e)] = true
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// TaskEvent renders and dispatches an alert for a worker notification.
// Unknown events are ignored.
func (n *Notifier) TaskEvent(ctx context.Context, msg domain.Notification) error {
	title, ok := eventTitles[msg.Event]
	if !ok {
		return nil
	}
	if len(n.events) > 0 && !n.events[msg.Event] {
		n.logger.DebugContext(ctx, "event filtered out",
			slog.String("event", msg.Event),
		)
		return nil
	}

	return n.dispatch(ctx, title, renderBody(msg))
}

// renderBody builds the alert body from whatever identifying fields the
// notification carries.
func renderBody(msg domain.Notification) string {
	var lines []string
	if id := msg.CorrelationTaskID(); id != "" {
		lines = append(lines, "Task: "+id)
	}
	if msg.Address != "" {
		lines = append(lines, "Trader: "+msg.Address)
	}
	if msg.Error != "" {
		lines = append(lines, "Error: "+msg.Error)
	}
	if len(lines) == 0 {
		lines = append(lines, "(no details)")
	}
	return strings.Join(lines, "\n")
}

// dispatch fans the alert out to every sender. A failing sender does not
// block the others; failures are combined into one error.
func (n *Notifier) dispatch(ctx context.Context, title, message string) error {
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
			continue
		}
		n.logger.DebugContext(ctx, "alert sent",
			slog.String("sender", s.Name()),
			slog.String("title", title),
		)
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}

// postJSON is the shared HTTP delivery path of the webhook-style senders.
func postJSON(ctx context.Context, client *http.Client, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
