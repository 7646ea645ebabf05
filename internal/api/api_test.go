package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohdshuhaib/community-voice-53/internal/analytics"
	"github.com/mohdshuhaib/community-voice-53/internal/auth"
	"github.com/mohdshuhaib/community-voice-53/internal/clock"
	"github.com/mohdshuhaib/community-voice-53/internal/db"
	"github.com/mohdshuhaib/community-voice-53/internal/engine"
	"github.com/mohdshuhaib/community-voice-53/internal/model"
	"github.com/mohdshuhaib/community-voice-53/internal/notify"
)

const testSecret = "test-secret"

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type testServer struct {
	*httptest.Server
	key []byte
}

func setupTestServer(t *testing.T, limiter *CallerRateLimiter) *testServer {
	t.Helper()
	key, err := auth.DeriveKey(testSecret)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := engine.New(db.NewTestDB(t), engine.Options{
		Clock:    clock.Fake(now),
		Notifier: notify.LogNotifier{Logger: logger},
		Logger:   logger,
	})
	t.Cleanup(e.Wait)

	server := httptest.NewServer(NewRouter(e, key, limiter))
	t.Cleanup(server.Close)
	return &testServer{Server: server, key: key}
}

func (s *testServer) token(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := auth.GenerateToken(s.key, userID, role, time.Hour)
	require.NoError(t, err)
	return token
}

// do sends a request and decodes a JSON response into out when non-nil.
func (s *testServer) do(t *testing.T, method, path, token string, body, out any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func (s *testServer) submit(t *testing.T, token, title string) model.Item {
	t.Helper()
	var item model.Item
	resp := s.do(t, "POST", "/api/items", token, map[string]string{
		"title":       title,
		"description": "details about " + title,
		"category":    string(model.CategoryInfrastructure),
	}, &item)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return item
}

func TestSubmitRequiresToken(t *testing.T) {
	s := setupTestServer(t, nil)

	resp := s.do(t, "POST", "/api/items", "", map[string]string{"title": "x"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(t, "GET", "/api/items", "not-a-token", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSubmitAndGet(t *testing.T) {
	s := setupTestServer(t, nil)
	alice := s.token(t, "alice", model.RoleMember)

	item := s.submit(t, alice, "Wifi drops in library")
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "alice", item.AuthorID)
	assert.Equal(t, model.StatusNew, item.Status)
	assert.Equal(t, model.PriorityLow, item.Priority)

	var got engine.ItemDetail
	resp := s.do(t, "GET", "/api/items/"+item.ID, alice, nil, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, item.Title, got.Title)
	assert.Equal(t, 0, got.Upvotes)

	var apiErr map[string]string
	resp = s.do(t, "GET", "/api/items/missing", alice, nil, &apiErr)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", apiErr["kind"])

	resp = s.do(t, "POST", "/api/items", alice, map[string]string{
		"title":       "No category",
		"description": "body",
	}, &apiErr)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation", apiErr["kind"])
}

func TestUpvoteToggleFlow(t *testing.T) {
	s := setupTestServer(t, nil)
	alice := s.token(t, "alice", model.RoleMember)
	bob := s.token(t, "bob", model.RoleMember)

	item := s.submit(t, alice, "Broken projector")
	path := "/api/items/" + item.ID + "/upvote"

	var result engine.ToggleResult
	resp := s.do(t, "POST", path, bob, nil, &result)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, model.ToggleAdded, result.State)
	assert.Equal(t, 1, result.Upvotes)

	var detail engine.ItemDetail
	s.do(t, "GET", "/api/items/"+item.ID, bob, nil, &detail)
	assert.True(t, detail.Upvoted)
	assert.Equal(t, 1, detail.Upvotes)

	resp = s.do(t, "POST", path, bob, nil, &result)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, model.ToggleRemoved, result.State)
	assert.Equal(t, 0, result.Upvotes)

	var apiErr map[string]string
	resp = s.do(t, "POST", path, alice, nil, &apiErr)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "self_vote", apiErr["kind"])
}

func TestUpdateRequiresAdmin(t *testing.T) {
	s := setupTestServer(t, nil)
	alice := s.token(t, "alice", model.RoleMember)
	admin := s.token(t, "root", model.RoleAdmin)

	item := s.submit(t, alice, "Leaking roof")
	path := "/api/items/" + item.ID

	resp := s.do(t, "PATCH", path, alice, map[string]string{"status": "RESOLVED"}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var updated model.Item
	resp = s.do(t, "PATCH", path, admin, map[string]string{
		"status":   "RESOLVED",
		"priority": "HIGH",
	}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, model.StatusResolved, updated.Status)
	assert.Equal(t, model.PriorityHigh, updated.Priority)

	resp = s.do(t, "PATCH", path, admin, map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, "PATCH", "/api/items/missing", admin, map[string]string{"status": "NEW"}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListAndSimilar(t *testing.T) {
	s := setupTestServer(t, nil)
	alice := s.token(t, "alice", model.RoleMember)

	s.submit(t, alice, "WiFi is slow")
	s.submit(t, alice, "Cafeteria menu")
	s.submit(t, alice, "No wifi in hostel")

	var items []model.RankedItem
	resp := s.do(t, "GET", "/api/items?q=wifi", alice, nil, &items)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, items, 2)

	resp = s.do(t, "GET", "/api/items?status=BOGUS", alice, nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var similar []model.Item
	resp = s.do(t, "GET", "/api/items/similar?title=wifi", alice, nil, &similar)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, similar, 2)

	similar = nil
	resp = s.do(t, "GET", "/api/items/similar?title=wi", alice, nil, &similar)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotNil(t, similar)
	assert.Empty(t, similar)
}

func TestUserViewsAreSelfOrAdmin(t *testing.T) {
	s := setupTestServer(t, nil)
	alice := s.token(t, "alice", model.RoleMember)
	bob := s.token(t, "bob", model.RoleMember)
	admin := s.token(t, "root", model.RoleAdmin)

	item := s.submit(t, alice, "Library hours")
	s.do(t, "POST", "/api/items/"+item.ID+"/upvote", bob, nil, nil)

	var mine []model.Item
	resp := s.do(t, "GET", "/api/users/me/items", alice, nil, &mine)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, mine, 1)
	assert.Equal(t, item.ID, mine[0].ID)

	resp = s.do(t, "GET", "/api/users/alice/items", bob, nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var history []model.Upvote
	resp = s.do(t, "GET", "/api/users/bob/upvotes", admin, nil, &history)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, history, 1)
	assert.Equal(t, item.ID, history[0].ItemID)

	var activity model.Activity
	resp = s.do(t, "GET", "/api/users/me/activity", bob, nil, &activity)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "bob", activity.UserID)
	assert.Equal(t, 1, activity.Upvotes)
	assert.Equal(t, 0, activity.Submitted)
}

func TestAnalyticsEndpoint(t *testing.T) {
	s := setupTestServer(t, nil)
	alice := s.token(t, "alice", model.RoleMember)
	bob := s.token(t, "bob", model.RoleMember)

	item := s.submit(t, alice, "Broken lockers")
	s.submit(t, alice, "More study rooms")
	s.do(t, "POST", "/api/items/"+item.ID+"/upvote", bob, nil, nil)

	var report analytics.Report
	resp := s.do(t, "GET", "/api/analytics?from=2026-03-10&to=2026-03-10", bob, nil, &report)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 2, report.StatusDistribution[model.StatusNew])
	require.Len(t, report.TimeSeries, 1)
	assert.Equal(t, "Mar 10", report.TimeSeries[0].Label)
	require.NotEmpty(t, report.TopUpvoted)
	assert.Equal(t, item.ID, report.TopUpvoted[0].ID)
	assert.Equal(t, 1, report.TopUpvoted[0].Upvotes)

	report = analytics.Report{}
	resp = s.do(t, "GET", "/api/analytics?from=2026-03-01&to=2026-03-09", bob, nil, &report)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, report.Total)

	resp = s.do(t, "GET", "/api/analytics", bob, nil, &report)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, report.Total)
}

func TestAnalyticsRejectsBadParams(t *testing.T) {
	s := setupTestServer(t, nil)
	bob := s.token(t, "bob", model.RoleMember)

	for _, query := range []string{
		"from=yesterday-ish&to=2026-03-10",
		"from=2026-03-10",
		"from=2026-03-10&to=2026-03-01",
		"tz=Mars/Olympus",
		"top=-1",
	} {
		resp := s.do(t, "GET", "/api/analytics?"+query, bob, nil, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, query)
	}
}

func TestExportCSV(t *testing.T) {
	s := setupTestServer(t, nil)
	alice := s.token(t, "alice", model.RoleMember)
	admin := s.token(t, "root", model.RoleAdmin)

	s.submit(t, alice, `Projector "flickers"`)

	resp := s.do(t, "GET", "/api/export", alice, nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req, err := http.NewRequest("GET", s.URL+"/api/export", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+admin)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="feedback-report-2026-03-10.csv"`,
		resp.Header.Get("Content-Disposition"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ID,Title,Description"))
	assert.Contains(t, lines[1], `"Projector ""flickers"""`)
}

func TestSubmitRateLimit(t *testing.T) {
	s := setupTestServer(t, NewCallerRateLimiter(1, 2))
	alice := s.token(t, "alice", model.RoleMember)
	bob := s.token(t, "bob", model.RoleMember)

	s.submit(t, alice, "First")
	s.submit(t, alice, "Second")

	resp := s.do(t, "POST", "/api/items", alice, map[string]string{
		"title":       "Third",
		"description": "too soon",
		"category":    string(model.CategoryOther),
	}, nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	// Buckets are per caller.
	s.submit(t, bob, "Bob's first")

	// Reads are not limited.
	resp = s.do(t, "GET", "/api/items", alice, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
