package social

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blorm-network/zerepy/internal/logging"
)

var testUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

func newTestGateway(t *testing.T, handler http.HandlerFunc) *DiscordGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g := NewDiscordGateway("bot-token", logging.New(io.Discard, "silent"))
	g.url = "ws" + strings.TrimPrefix(srv.URL, "http")
	g.backoff = func() time.Duration { return 10 * time.Millisecond }
	return g
}

func writePayload(t *testing.T, conn *websocket.Conn, op int, d any, seq int64, typ string) {
	t.Helper()
	p := gatewayPayload{Op: op, D: mustJSON(d), T: typ}
	if seq > 0 {
		p.S = &seq
	}
	require.NoError(t, conn.WriteJSON(p))
}

func readPayload(t *testing.T, conn *websocket.Conn) gatewayPayload {
	t.Helper()
	var p gatewayPayload
	require.NoError(t, conn.ReadJSON(&p))
	return p
}

func TestGatewayHandshakeAndDispatch(t *testing.T) {
	received := make(chan DiscordMessageEvent, 1)

	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		writePayload(t, conn, opHello, map[string]int{"heartbeat_interval": 45000}, 0, "")

		identify := readPayload(t, conn)
		assert.Equal(t, opIdentify, identify.Op)

		var d struct {
			Token   string `json:"token"`
			Intents int    `json:"intents"`
		}
		require.NoError(t, json.Unmarshal(identify.D, &d))
		assert.Equal(t, "bot-token", d.Token)
		assert.Equal(t, 513, d.Intents)

		writePayload(t, conn, opDispatch, map[string]string{"session_id": "sess-1"}, 1, "READY")
		writePayload(t, conn, opDispatch, map[string]any{
			"id":         "m1",
			"channel_id": "chan1",
			"content":    "gm agents",
			"author":     map[string]any{"id": "u1", "username": "alice", "bot": false},
		}, 2, "MESSAGE_CREATE")

		// Hold the socket open until the client hangs up.
		conn.ReadMessage()
	})

	g.On("MESSAGE_CREATE", func(data json.RawMessage) {
		var msg DiscordMessageEvent
		require.NoError(t, json.Unmarshal(data, &msg))
		received <- msg
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- g.Run(ctx) }()

	select {
	case msg := <-received:
		assert.Equal(t, "m1", msg.ID)
		assert.Equal(t, "gm agents", msg.Content)
		assert.Equal(t, "alice", msg.Author.Username)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for MESSAGE_CREATE")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for gateway shutdown")
	}

	assert.Equal(t, "sess-1", g.sessionID)
	require.NotNil(t, g.loadSequence())
	assert.Equal(t, int64(2), *g.loadSequence())
}

func TestGatewayHeartbeatRequest(t *testing.T) {
	gotHeartbeat := make(chan gatewayPayload, 1)

	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		writePayload(t, conn, opHello, map[string]int{"heartbeat_interval": 45000}, 0, "")
		readPayload(t, conn) // IDENTIFY
		writePayload(t, conn, opDispatch, map[string]string{"session_id": "sess-2"}, 5, "READY")

		// Server-requested heartbeat must be answered immediately.
		writePayload(t, conn, opHeartbeat, nil, 0, "")
		gotHeartbeat <- readPayload(t, conn)

		conn.ReadMessage()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- g.Run(ctx) }()

	select {
	case hb := <-gotHeartbeat:
		assert.Equal(t, opHeartbeat, hb.Op)
		assert.Equal(t, "5", string(hb.D), "heartbeat should carry the last sequence")
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for heartbeat reply")
	}

	cancel()
	<-done
}

func TestGatewayResumesAfterReconnect(t *testing.T) {
	var sessions atomic.Int32
	resumed := make(chan gatewayPayload, 1)

	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		writePayload(t, conn, opHello, map[string]int{"heartbeat_interval": 45000}, 0, "")

		switch sessions.Add(1) {
		case 1:
			readPayload(t, conn) // IDENTIFY
			writePayload(t, conn, opDispatch, map[string]string{"session_id": "sess-9"}, 1, "READY")
			writePayload(t, conn, opReconnect, nil, 0, "")
		default:
			resumed <- readPayload(t, conn)
			conn.ReadMessage()
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- g.Run(ctx) }()

	select {
	case payload := <-resumed:
		assert.Equal(t, opResume, payload.Op)

		var d struct {
			Token     string `json:"token"`
			SessionID string `json:"session_id"`
			Seq       int64  `json:"seq"`
		}
		require.NoError(t, json.Unmarshal(payload.D, &d))
		assert.Equal(t, "bot-token", d.Token)
		assert.Equal(t, "sess-9", d.SessionID)
		assert.Equal(t, int64(1), d.Seq)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for RESUME")
	}

	cancel()
	<-done
}

func TestGatewayInvalidSessionIdentifiesAgain(t *testing.T) {
	var sessions atomic.Int32
	second := make(chan gatewayPayload, 1)

	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		writePayload(t, conn, opHello, map[string]int{"heartbeat_interval": 45000}, 0, "")

		switch sessions.Add(1) {
		case 1:
			readPayload(t, conn) // IDENTIFY
			writePayload(t, conn, opDispatch, map[string]string{"session_id": "sess-3"}, 1, "READY")
			writePayload(t, conn, opInvalidSession, false, 0, "")
		default:
			second <- readPayload(t, conn)
			conn.ReadMessage()
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- g.Run(ctx) }()

	select {
	case payload := <-second:
		assert.Equal(t, opIdentify, payload.Op, "non-resumable session should identify from scratch")
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for second IDENTIFY")
	}

	cancel()
	<-done
}

func TestGatewayRejectsNonHello(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		writePayload(t, conn, opDispatch, map[string]string{}, 0, "READY")
		conn.ReadMessage()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := g.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
