// Package notify delivers item change events to interested parties.
// Delivery is best effort: callers log failures and carry on.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mohdshuhaib/community-voice-53/internal/model"
)

// Kind identifies what happened to an item.
type Kind string

// Change kinds.
const (
	KindNewFeedback    Kind = "new_feedback"
	KindStatusChange   Kind = "status_change"
	KindPriorityChange Kind = "priority_change"
)

// Change is one notification about an item. OldStatus and OldPriority are
// set only for the matching change kind.
type Change struct {
	Kind        Kind           `json:"type"`
	Item        model.Item     `json:"item"`
	OldStatus   model.Status   `json:"old_status,omitempty"`
	OldPriority model.Priority `json:"old_priority,omitempty"`
	At          time.Time      `json:"at"`
}

// Notifier receives item changes.
type Notifier interface {
	Notify(ctx context.Context, c Change) error
}

// LogNotifier writes each change to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify logs the change at INFO.
func (n LogNotifier) Notify(ctx context.Context, c Change) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{
		"kind", c.Kind,
		"item_id", c.Item.ID,
		"title", c.Item.Title,
		"status", c.Item.Status,
		"priority", c.Item.Priority,
	}
	if c.OldStatus != "" {
		attrs = append(attrs, "old_status", c.OldStatus)
	}
	if c.OldPriority != "" {
		attrs = append(attrs, "old_priority", c.OldPriority)
	}
	logger.InfoContext(ctx, "item change", attrs...)
	return nil
}

// DefaultWebhookTimeout bounds a single webhook delivery.
const DefaultWebhookTimeout = 5 * time.Second

// WebhookNotifier POSTs each change as JSON to a URL.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
}

// NewWebhookNotifier returns a notifier posting to url. A nil client gets
// one with DefaultWebhookTimeout.
func NewWebhookNotifier(url string, client *http.Client) (*WebhookNotifier, error) {
	if url == "" {
		return nil, fmt.Errorf("notify: webhook URL is required")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, fmt.Errorf("notify: webhook URL %q must be http or https", url)
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultWebhookTimeout}
	}
	return &WebhookNotifier{url: url, httpClient: client}, nil
}

// Notify delivers the change. Any non-2xx response is an error.
func (w *WebhookNotifier) Notify(ctx context.Context, c Change) error {
	body, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("notify: encoding change: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: creating request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := w.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("notify: posting %s: %w", c.Kind, err)
	}
	defer response.Body.Close()
	io.Copy(io.Discard, io.LimitReader(response.Body, 64<<10))

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("notify: webhook returned %s", response.Status)
	}
	return nil
}

// Multi fans a change out to every notifier and joins their errors.
type Multi []Notifier

// Notify calls each notifier in order; one failure does not stop the rest.
func (m Multi) Notify(ctx context.Context, c Change) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
