package social

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/blorm-network/zerepy/internal/logging"
)

// Discord Gateway operation codes.
const (
	opDispatch       = 0
	opHeartbeat      = 1
	opIdentify       = 2
	opResume         = 6
	opReconnect      = 7
	opInvalidSession = 9
	opHello          = 10
	opHeartbeatACK   = 11
)

const (
	discordGatewayURL = "wss://gateway.discord.gg/?v=10&encoding=json"
	defaultIntents    = 513 // GUILDS | GUILD_MESSAGES
)

// DiscordGateway is a WebSocket client for real-time Discord events. It runs
// the HELLO/IDENTIFY handshake, keeps the session alive with heartbeats at
// the server-provided interval, and dispatches typed events to registered
// handlers. Dropped connections are resumed when the session allows it.
type DiscordGateway struct {
	token   string
	intents int
	url     string
	log     *logging.Logger
	backoff func() time.Duration

	mu        sync.Mutex
	conn      *websocket.Conn
	sequence  *int64
	sessionID string

	handlers map[string]func(data json.RawMessage)
}

// DiscordMessageEvent is the payload of a MESSAGE_CREATE dispatch.
type DiscordMessageEvent struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	Content   string `json:"content"`
	Author    struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Bot      bool   `json:"bot"`
	} `json:"author"`
}

type gatewayPayload struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d,omitempty"`
	S  *int64          `json:"s,omitempty"`
	T  string          `json:"t,omitempty"`
}

// NewDiscordGateway creates a gateway client for a bot token.
func NewDiscordGateway(token string, log *logging.Logger) *DiscordGateway {
	return &DiscordGateway{
		token:   token,
		intents: defaultIntents,
		url:     discordGatewayURL,
		log:     log.Sub("discord-gateway"),
		backoff: func() time.Duration {
			// 1-3s with jitter, per the gateway reconnect guidance
			return time.Duration(1000+rand.Intn(2000)) * time.Millisecond
		},
		handlers: make(map[string]func(json.RawMessage)),
	}
}

// On registers a handler for a dispatch event type such as MESSAGE_CREATE.
// Handlers must be registered before Run is called.
func (g *DiscordGateway) On(eventType string, handler func(data json.RawMessage)) {
	g.handlers[eventType] = handler
}

// Run connects to the gateway and processes events until the context is
// cancelled. Lost connections are re-established, resuming the session when
// possible.
func (g *DiscordGateway) Run(ctx context.Context) error {
	for {
		err := g.runSession(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			return nil
		}

		g.log.Warn().Err(err).Msg("gateway connection lost, reconnecting")
		select {
		case <-time.After(g.backoff()):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (g *DiscordGateway) runSession(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, g.url, nil)
	if err != nil {
		return fmt.Errorf("gateway dial: %w", err)
	}
	g.mu.Lock()
	g.conn = conn
	g.mu.Unlock()
	defer conn.Close()

	heartbeatInterval, err := g.readHello(conn)
	if err != nil {
		return err
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	wg.Add(1)
	go func() {
		defer wg.Done()
		g.heartbeatLoop(sessionCtx, heartbeatInterval)
	}()
	go func() {
		// Unblock ReadMessage when the context is cancelled.
		<-sessionCtx.Done()
		conn.Close()
	}()

	if g.sessionID != "" && g.loadSequence() != nil {
		if err := g.resume(); err != nil {
			return err
		}
	} else {
		if err := g.identify(); err != nil {
			return err
		}
	}

	return g.readLoop(conn)
}

func (g *DiscordGateway) readHello(conn *websocket.Conn) (time.Duration, error) {
	var payload gatewayPayload
	if err := conn.ReadJSON(&payload); err != nil {
		return 0, fmt.Errorf("gateway hello read: %w", err)
	}
	if payload.Op != opHello {
		return 0, fmt.Errorf("gateway: expected HELLO op, got %d", payload.Op)
	}

	var hello struct {
		HeartbeatInterval int `json:"heartbeat_interval"`
	}
	if err := json.Unmarshal(payload.D, &hello); err != nil {
		return 0, fmt.Errorf("gateway hello parse: %w", err)
	}

	g.log.Info().Int("intervalMs", hello.HeartbeatInterval).Msg("received HELLO")
	return time.Duration(hello.HeartbeatInterval) * time.Millisecond, nil
}

func (g *DiscordGateway) identify() error {
	g.log.Info().Msg("sending IDENTIFY")
	return g.send(gatewayPayload{
		Op: opIdentify,
		D: mustJSON(map[string]any{
			"token":   g.token,
			"intents": g.intents,
			"properties": map[string]string{
				"os":      "linux",
				"browser": "zerepy",
				"device":  "zerepy",
			},
		}),
	})
}

func (g *DiscordGateway) resume() error {
	g.log.Info().Str("session", g.sessionID).Msg("resuming session")
	return g.send(gatewayPayload{
		Op: opResume,
		D: mustJSON(map[string]any{
			"token":      g.token,
			"session_id": g.sessionID,
			"seq":        *g.loadSequence(),
		}),
	})
}

func (g *DiscordGateway) readLoop(conn *websocket.Conn) error {
	for {
		var payload gatewayPayload
		if err := conn.ReadJSON(&payload); err != nil {
			return fmt.Errorf("gateway read: %w", err)
		}

		switch payload.Op {
		case opDispatch:
			g.handleDispatch(payload)
		case opHeartbeat:
			if err := g.sendHeartbeat(); err != nil {
				return err
			}
		case opHeartbeatACK:
			g.log.Debug().Msg("heartbeat acknowledged")
		case opReconnect:
			return fmt.Errorf("gateway: server requested reconnect")
		case opInvalidSession:
			var resumable bool
			_ = json.Unmarshal(payload.D, &resumable)
			if !resumable {
				g.mu.Lock()
				g.sessionID = ""
				g.sequence = nil
				g.mu.Unlock()
			}
			return fmt.Errorf("gateway: session invalidated (resumable=%v)", resumable)
		default:
			g.log.Warn().Int("op", payload.Op).Msg("unknown gateway op")
		}
	}
}

func (g *DiscordGateway) handleDispatch(payload gatewayPayload) {
	if payload.S != nil {
		g.storeSequence(*payload.S)
	}

	if payload.T == "READY" {
		var ready struct {
			SessionID string `json:"session_id"`
		}
		if err := json.Unmarshal(payload.D, &ready); err == nil {
			g.mu.Lock()
			g.sessionID = ready.SessionID
			g.mu.Unlock()
			g.log.Info().Str("session", ready.SessionID).Msg("gateway ready")
		}
	}

	if handler, ok := g.handlers[payload.T]; ok {
		handler(payload.D)
	}
}

func (g *DiscordGateway) heartbeatLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := g.sendHeartbeat(); err != nil {
				g.log.Warn().Err(err).Msg("heartbeat send failed")
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (g *DiscordGateway) sendHeartbeat() error {
	seq := g.loadSequence()
	data := []byte("null")
	if seq != nil {
		data = mustJSON(*seq)
	}
	g.log.Debug().Msg("sending heartbeat")
	return g.send(gatewayPayload{Op: opHeartbeat, D: data})
}

// send writes a payload to the socket. Thread-safe; the heartbeat goroutine
// and the read loop both write.
func (g *DiscordGateway) send(payload gatewayPayload) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.conn == nil {
		return fmt.Errorf("gateway: not connected")
	}
	return g.conn.WriteJSON(payload)
}

func (g *DiscordGateway) storeSequence(s int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sequence = &s
}

func (g *DiscordGateway) loadSequence() *int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sequence
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
