package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohdshuhaib/community-voice-53/internal/model"
)

func testChange() Change {
	return Change{
		Kind: KindStatusChange,
		Item: model.Item{
			ID:       "item-1",
			Title:    "Broken heater",
			Status:   model.StatusResolved,
			Priority: model.PriorityHigh,
		},
		OldStatus: model.StatusNew,
		At:        time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := LogNotifier{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	require.NoError(t, n.Notify(context.Background(), testChange()))
	out := buf.String()
	assert.Contains(t, out, "kind=status_change")
	assert.Contains(t, out, "item_id=item-1")
	assert.Contains(t, out, "old_status=NEW")
	assert.NotContains(t, out, "old_priority")
}

func TestWebhookNotifierPostsJSON(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n, err := NewWebhookNotifier(srv.URL, srv.Client())
	require.NoError(t, err)
	require.NoError(t, n.Notify(context.Background(), testChange()))

	assert.Equal(t, "status_change", got["type"])
	assert.Equal(t, "NEW", got["old_status"])
	item, ok := got["item"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "item-1", item["id"])
}

func TestWebhookNotifierRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	n, err := NewWebhookNotifier(srv.URL, nil)
	require.NoError(t, err)
	err = n.Notify(context.Background(), testChange())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestNewWebhookNotifierValidatesURL(t *testing.T) {
	_, err := NewWebhookNotifier("", nil)
	assert.Error(t, err)
	_, err = NewWebhookNotifier("ftp://example.com/hook", nil)
	assert.Error(t, err)
}

type failing struct{ calls *int }

func (f failing) Notify(context.Context, Change) error {
	*f.calls++
	return errors.New("down")
}

func TestMultiContinuesPastFailures(t *testing.T) {
	calls := 0
	var buf bytes.Buffer
	m := Multi{
		failing{calls: &calls},
		LogNotifier{Logger: slog.New(slog.NewTextHandler(&buf, nil))},
		failing{calls: &calls},
	}

	err := m.Notify(context.Background(), testChange())
	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Contains(t, buf.String(), "item change")
}
