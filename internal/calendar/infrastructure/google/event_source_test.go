package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	calendarApp "github.com/felixgeelhaar/calcompare/internal/calendar/application"
	"github.com/felixgeelhaar/calcompare/internal/calendar/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type stubTokenSourceProvider struct {
	source oauth2.TokenSource
	err    error
	asked  []string
}

func (s *stubTokenSourceProvider) TokenSource(ctx context.Context, participantID string) (oauth2.TokenSource, error) {
	s.asked = append(s.asked, participantID)
	return s.source, s.err
}

func staticTokens() *stubTokenSourceProvider {
	return &stubTokenSourceProvider{source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "token-123", TokenType: "Bearer"})}
}

func TestEventSource_ListEvents(t *testing.T) {
	var queries []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/calendars/primary/events" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer token-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		queries = append(queries, r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")

		if r.URL.Query().Get("pageToken") == "" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"nextPageToken": "page-2",
				"items": []map[string]any{
					{
						"id":        "evt-1",
						"summary":   "Planning",
						"status":    "confirmed",
						"creator":   map[string]any{"email": "alice@example.com"},
						"attendees": []map[string]any{{"email": "alice@example.com"}, {"email": "bob@example.com"}},
						"start":     map[string]any{"dateTime": "2025-06-03T10:00:00Z"},
						"end":       map[string]any{"dateTime": "2025-06-03T11:00:00Z"},
					},
				},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{
					"id":     "evt-2",
					"status": "cancelled",
					"start":  map[string]any{"date": "2025-06-04"},
					"end":    map[string]any{"date": "2025-06-05"},
				},
			},
		})
	}))
	defer server.Close()

	tokens := staticTokens()
	source := NewEventSource(tokens, nil).WithEndpoint(server.URL + "/")
	start := time.Date(2025, time.June, 3, 0, 0, 0, 0, time.UTC)

	events, err := source.ListEvents(context.Background(), "alice", start, start.AddDate(0, 0, 7))

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, []string{"alice"}, tokens.asked)

	assert.Equal(t, "evt-1", events[0].ID)
	assert.Equal(t, domain.StatusConfirmed, events[0].Status)
	assert.Equal(t, 2, events[0].AttendeeCount)
	assert.Equal(t, "alice@example.com", events[0].Creator)
	assert.Equal(t, "2025-06-03T10:00:00Z", events[0].Start.DateTime)

	assert.Equal(t, domain.StatusCancelled, events[1].Status)
	assert.True(t, events[1].IsAllDay())

	require.Len(t, queries, 2)
	assert.Contains(t, queries[0], "singleEvents=true")
	assert.Contains(t, queries[0], "orderBy=startTime")
	assert.Contains(t, queries[0], "timeMin=2025-06-03T00%3A00%3A00Z")
}

func TestEventSource_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	source := NewEventSource(staticTokens(), nil).WithEndpoint(server.URL + "/")

	_, err := source.ListEvents(context.Background(), "alice", time.Now(), time.Now().Add(time.Hour))

	assert.Error(t, err)
}

func TestEventSource_TokenErrors(t *testing.T) {
	source := NewEventSource(&stubTokenSourceProvider{err: calendarApp.ErrNoCredentials}, nil)
	_, err := source.ListEvents(context.Background(), "alice", time.Now(), time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, calendarApp.ErrNoCredentials)

	source = NewEventSource(nil, nil)
	_, err = source.ListEvents(context.Background(), "alice", time.Now(), time.Now().Add(time.Hour))
	assert.Error(t, err)
}

type failingTokenSource struct{}

func (failingTokenSource) Token() (*oauth2.Token, error) {
	return nil, errors.New("refresh revoked")
}

func TestEventSource_RefreshFailure(t *testing.T) {
	source := NewEventSource(&stubTokenSourceProvider{source: failingTokenSource{}}, nil)

	_, err := source.ListEvents(context.Background(), "alice", time.Now(), time.Now().Add(time.Hour))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh revoked")
}

func TestFileTokenProvider(t *testing.T) {
	dir := t.TempDir()
	token := oauth2.Token{AccessToken: "stored", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)}
	data, err := json.Marshal(token)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alice.json"), data, 0o600))

	provider := NewFileTokenProvider(dir, nil)

	assert.True(t, provider.HasToken("alice"))
	assert.False(t, provider.HasToken("bob"))

	source, err := provider.TokenSource(context.Background(), "alice")
	require.NoError(t, err)
	got, err := source.Token()
	require.NoError(t, err)
	assert.Equal(t, "stored", got.AccessToken)

	_, err = provider.TokenSource(context.Background(), "bob")
	assert.ErrorIs(t, err, calendarApp.ErrNoCredentials)

	_, err = provider.TokenSource(context.Background(), "../alice")
	assert.Error(t, err)
}

func TestNewOAuthConfig(t *testing.T) {
	cfg := NewOAuthConfig("id", "secret", "")
	assert.Equal(t, "https://oauth2.googleapis.com/token", cfg.Endpoint.TokenURL)
	assert.Equal(t, []string{CalendarReadonlyScope}, cfg.Scopes)

	cfg = NewOAuthConfig("id", "secret", "http://localhost/token")
	assert.Equal(t, "http://localhost/token", cfg.Endpoint.TokenURL)
}
