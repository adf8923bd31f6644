//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ashureev/helpdesk-bot/internal/agent"
	"github.com/ashureev/helpdesk-bot/internal/domain"
	"github.com/ashureev/helpdesk-bot/internal/faq"
	"github.com/ashureev/helpdesk-bot/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("disk gone") }

type testServer struct {
	*httptest.Server
	repo *store.JSONFileStore
}

func newTestServer(t *testing.T, faqs []domain.FAQEntry, opts Options) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo, err := store.NewJSONFile(filepath.Join(t.TempDir(), "conversations.json"), logger)
	require.NoError(t, err)

	svc := agent.NewService(agent.Config{FAQs: faqs, Logger: logger})
	chat := agent.NewConversations(svc, repo, nil, logger)

	opts.Logger = logger
	h := NewHandler(chat, repo, opts)
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		h.Close()
		_ = chat.Close()
		_ = repo.Close()
	})
	return &testServer{Server: srv, repo: repo}
}

func (s *testServer) post(t *testing.T, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(s.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var got map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	return resp, got
}

func (s *testServer) newSession(t *testing.T) string {
	t.Helper()
	resp, got := s.post(t, "/sessions", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	id, _ := got["session_id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %q", ct)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got["foo"] != "bar" {
		t.Errorf("Expected foo=bar, got %v", got["foo"])
	}
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, http.StatusNotFound, "session not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"session not found"}`, w.Body.String())
}

func TestCreateSession(t *testing.T) {
	srv := newTestServer(t, nil, Options{})

	for _, path := range []string{"/sessions", "/sessions/"} {
		resp, got := srv.post(t, path, "")
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, "active", got["status"], path)
		assert.NotEmpty(t, got["session_id"], path)
	}
}

func TestSendMessageFAQAnswer(t *testing.T) {
	srv := newTestServer(t, faq.Samples, Options{})
	id := srv.newSession(t)

	resp, got := srv.post(t, "/sessions/"+id+"/message", `{"message":"How do I cancel my subscription?"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, faq.Samples[0].Answer, got["response"])
	assert.Equal(t, false, got["requires_escalation"])
	assert.Equal(t, "continue", got["next_action"])
	assert.Equal(t, "active", got["session_status"])
}

func TestSendMessageFallbackEscalates(t *testing.T) {
	srv := newTestServer(t, nil, Options{})
	id := srv.newSession(t)

	resp, got := srv.post(t, "/sessions/"+id+"/message", `{"message":"I want a refund"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, agent.ReplyRefund, got["response"])
	assert.Equal(t, true, got["requires_escalation"])
	assert.Equal(t, "escalate", got["next_action"])
	assert.Equal(t, "escalated", got["session_status"])

	session, err := srv.repo.GetSession(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEscalated, session.Status)
}

func TestSendMessageErrors(t *testing.T) {
	srv := newTestServer(t, nil, Options{MaxBodyBytes: 64})
	id := srv.newSession(t)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		errMsg string
	}{
		{"unknown session", "/sessions/nope/message", `{"message":"hi"}`, http.StatusNotFound, "session not found"},
		{"empty message", "/sessions/" + id + "/message", `{"message":""}`, http.StatusBadRequest, "message is required"},
		{"missing message", "/sessions/" + id + "/message", `{}`, http.StatusBadRequest, "message is required"},
		{"bad body", "/sessions/" + id + "/message", `not json`, http.StatusBadRequest, "invalid request body"},
		{"oversize body", "/sessions/" + id + "/message", `{"message":"` + strings.Repeat("a", 200) + `"}`, http.StatusRequestEntityTooLarge, "request body too large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, got := srv.post(t, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.errMsg, got["error"])
		})
	}
}

func TestSendMessageRateLimited(t *testing.T) {
	srv := newTestServer(t, nil, Options{RateLimitRequests: 1})
	id := srv.newSession(t)

	resp, _ := srv.post(t, "/sessions/"+id+"/message", `{"message":"hello"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, got := srv.post(t, "/sessions/"+id+"/message", `{"message":"hello again"}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "rate limit exceeded", got["error"])
}

func TestHistory(t *testing.T) {
	srv := newTestServer(t, nil, Options{})

	resp, err := http.Get(srv.URL + "/sessions/unknown/history")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))

	id := srv.newSession(t)
	srv.post(t, "/sessions/"+id+"/message", `{"message":"what time do you open"}`)

	resp, err = http.Get(srv.URL + "/sessions/" + id + "/history")
	require.NoError(t, err)
	defer resp.Body.Close()

	var history []domain.Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	require.Len(t, history, 2)
	assert.True(t, history[0].IsUser)
	assert.Equal(t, "what time do you open", history[0].Text)
	assert.False(t, history[1].IsUser)
	assert.Equal(t, agent.ReplyHours, history[1].Text)
}

func TestEscalate(t *testing.T) {
	srv := newTestServer(t, nil, Options{})

	resp, got := srv.post(t, "/sessions/missing/escalate", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "session not found", got["error"])

	id := srv.newSession(t)
	srv.post(t, "/sessions/"+id+"/message", `{"message":"hello"}`)
	srv.post(t, "/sessions/"+id+"/message", `{"message":"is there a trial"}`)

	resp, got = srv.post(t, "/sessions/"+id+"/escalate", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "escalated", got["status"])
	assert.Equal(t, "User discussed: hello, is there a trial", got["summary"])
	assert.Equal(t, "Conversation escalated to human agent", got["message"])
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil, Options{})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var got map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", got["status"])
	assert.NotEmpty(t, got["timestamp"])
}

func TestHealthDegraded(t *testing.T) {
	h := NewHandler(nil, failingPinger{}, Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	defer h.Close()

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"degraded"`)
}

func TestRoot(t *testing.T) {
	h := NewHandler(nil, nil, Options{})
	defer h.Close()

	w := httptest.NewRecorder()
	h.Root(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"AI Customer Support Bot API"}`, w.Body.String())
}

func TestOriginHosts(t *testing.T) {
	got := originHosts([]string{"*", "http://localhost:3000", "app.example.com"})
	assert.Equal(t, []string{"*", "localhost:3000", "app.example.com"}, got)
}
