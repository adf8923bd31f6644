package api

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/ashureev/helpdesk-bot/internal/agent"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialChat(t *testing.T, srv *testServer, sessionID string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/sessions/" + sessionID + "/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func TestWebSocketChat(t *testing.T) {
	srv := newTestServer(t, nil, Options{})
	id := srv.newSession(t)
	conn := dialChat(t, srv, id)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, wsjson.Write(ctx, conn, map[string]string{"message": "I forgot my password"}))
	var reply map[string]any
	require.NoError(t, wsjson.Read(ctx, conn, &reply))
	assert.Equal(t, agent.ReplyPassword, reply["response"])
	assert.Equal(t, "continue", reply["next_action"])
	assert.Equal(t, "active", reply["session_status"])

	// Validation failures keep the socket open.
	require.NoError(t, wsjson.Write(ctx, conn, map[string]string{"message": ""}))
	var frame map[string]any
	require.NoError(t, wsjson.Read(ctx, conn, &frame))
	assert.Equal(t, "message is required", frame["error"])

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("not json")))
	require.NoError(t, wsjson.Read(ctx, conn, &frame))
	assert.Equal(t, "invalid message frame", frame["error"])

	require.NoError(t, wsjson.Write(ctx, conn, map[string]string{"type": "ping"}))
	require.NoError(t, wsjson.Read(ctx, conn, &frame))
	assert.Equal(t, "pong", frame["type"])

	require.NoError(t, wsjson.Write(ctx, conn, map[string]string{"message": "let me speak to a manager"}))
	require.NoError(t, wsjson.Read(ctx, conn, &reply))
	assert.Equal(t, true, reply["requires_escalation"])
	assert.Equal(t, "escalated", reply["session_status"])
}

func TestWebSocketUnknownSession(t *testing.T) {
	srv := newTestServer(t, nil, Options{})

	resp, err := http.Get(srv.URL + "/sessions/missing/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
