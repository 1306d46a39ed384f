package social

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lrstanley/girc"

	"github.com/blorm-network/zerepy/internal/logging"
)

// IRCConfig holds the connection parameters for an IRC platform.
type IRCConfig struct {
	Server       string
	Port         int
	Nick         string
	Channel      string
	UseTLS       bool
	Password     string // enables SASL PLAIN when set
	HistorySize  int    // ring buffer capacity for Timeline
	ConnectGrace time.Duration
}

// IRCClient joins a single channel and treats it as a timeline: Post sends a
// PRIVMSG, Timeline returns the recently seen channel messages. IRC has no
// likes or threads, so those operations report ErrUnsupported.
type IRCClient struct {
	cfg IRCConfig
	log *logging.Logger

	client *girc.Client

	mu      sync.RWMutex
	history []Post
}

// NewIRCClient creates an IRC platform from configuration.
func NewIRCClient(cfg IRCConfig, log *logging.Logger) *IRCClient {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 50
	}
	if cfg.ConnectGrace <= 0 {
		cfg.ConnectGrace = 30 * time.Second
	}
	return &IRCClient{
		cfg: cfg,
		log: log.Sub("irc"),
	}
}

// Name returns the platform name.
func (c *IRCClient) Name() string {
	return "irc"
}

// Start connects to the IRC server and joins the configured channel. It
// returns once the server acknowledges the connection; message processing
// continues in the background until Stop.
func (c *IRCClient) Start(ctx context.Context) error {
	port := c.cfg.Port
	if port == 0 {
		if c.cfg.UseTLS {
			port = 6697
		} else {
			port = 6667
		}
	}

	gircCfg := girc.Config{
		Server:  c.cfg.Server,
		Port:    port,
		Nick:    c.cfg.Nick,
		User:    c.cfg.Nick,
		Name:    "ZerePy Agent",
		SSL:     c.cfg.UseTLS,
		Version: "zerepy/1.0",
	}

	if c.cfg.UseTLS {
		gircCfg.TLSConfig = &tls.Config{
			ServerName: c.cfg.Server,
		}
	}

	if c.cfg.Password != "" {
		gircCfg.SASL = &girc.SASLPlain{
			User: c.cfg.Nick,
			Pass: c.cfg.Password,
		}
	}

	c.client = girc.New(gircCfg)

	ready := make(chan struct{})
	c.client.Handlers.Add(girc.CONNECTED, func(_ *girc.Client, _ girc.Event) {
		c.log.Info().Str("nick", c.client.GetNick()).Msg("connected to IRC")
		c.client.Cmd.Join(c.cfg.Channel)
		close(ready)
	})
	c.client.Handlers.Add(girc.PRIVMSG, c.onPrivmsg)
	c.client.Handlers.Add(girc.DISCONNECTED, func(_ *girc.Client, _ girc.Event) {
		c.log.Warn().Msg("disconnected from IRC")
	})

	c.log.Info().
		Str("server", c.cfg.Server).
		Int("port", port).
		Str("nick", c.cfg.Nick).
		Str("channel", c.cfg.Channel).
		Bool("tls", c.cfg.UseTLS).
		Msg("connecting to IRC")

	// Connect blocks until the connection ends, so it runs in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		errCh <- c.client.Connect()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("irc connect: %w", err)
		}
		return fmt.Errorf("irc: connection closed before registration")
	case <-ready:
		return nil
	case <-time.After(c.cfg.ConnectGrace):
		c.client.Close()
		return fmt.Errorf("irc: connect timed out")
	case <-ctx.Done():
		c.client.Close()
		return ctx.Err()
	}
}

// Stop gracefully disconnects from the IRC server.
func (c *IRCClient) Stop(ctx context.Context) error {
	if c.client != nil && c.client.IsConnected() {
		c.log.Info().Msg("disconnecting from IRC")
		c.client.Quit("shutting down")
	}
	return nil
}

// Post sends a message to the configured channel. Long text is split at the
// IRC line limit. IRC assigns no message IDs, so the returned ID is a local
// identifier that only resolves within this client's history.
func (c *IRCClient) Post(ctx context.Context, text string) (string, error) {
	if c.client == nil || !c.client.IsConnected() {
		return "", fmt.Errorf("irc: not connected")
	}

	lines := splitIRCMessage(text, 400)
	for _, line := range lines {
		c.client.Cmd.Message(c.cfg.Channel, line)
	}

	c.log.Debug().Int("lines", len(lines)).Msg("sent IRC message")
	return uuid.New().String(), nil
}

// Reply addresses the author of a previously seen message by nick.
func (c *IRCClient) Reply(ctx context.Context, postID, text string) (string, error) {
	if target, ok := c.findAuthor(postID); ok {
		text = target + ": " + text
	}
	return c.Post(ctx, text)
}

// Like is not expressible in IRC.
func (c *IRCClient) Like(ctx context.Context, postID string) error {
	return ErrUnsupported
}

// Timeline returns recently seen channel messages, newest first.
func (c *IRCClient) Timeline(ctx context.Context, count int) ([]Post, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := len(c.history)
	if count > 0 && count < n {
		n = count
	}

	posts := make([]Post, 0, n)
	for i := len(c.history) - 1; i >= 0 && len(posts) < n; i-- {
		posts = append(posts, c.history[i])
	}
	return posts, nil
}

// Me returns the connected nick.
func (c *IRCClient) Me(ctx context.Context) (*User, error) {
	nick := c.cfg.Nick
	if c.client != nil && c.client.IsConnected() {
		nick = c.client.GetNick()
	}
	return &User{ID: nick, Username: nick}, nil
}

// Replies is not expressible in IRC; channels have no threading.
func (c *IRCClient) Replies(ctx context.Context, postID string, count int) ([]Post, error) {
	return nil, ErrUnsupported
}

func (c *IRCClient) onPrivmsg(_ *girc.Client, e girc.Event) {
	if e.Source == nil || !e.IsFromChannel() {
		return
	}
	// Ignore messages from ourselves
	if e.Source.Name == c.client.GetNick() {
		return
	}

	body := e.Last()
	if e.IsAction() {
		body = e.StripAction()
	}

	c.record(Post{
		ID:             uuid.New().String(),
		Text:           body,
		AuthorID:       e.Source.Name,
		AuthorUsername: e.Source.Name,
		CreatedAt:      time.Now(),
	})
}

// record appends a message to the history ring buffer, dropping the oldest
// entries past the configured capacity.
func (c *IRCClient) record(p Post) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, p)
	if len(c.history) > c.cfg.HistorySize {
		c.history = c.history[len(c.history)-c.cfg.HistorySize:]
	}
}

func (c *IRCClient) findAuthor(postID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.history {
		if p.ID == postID {
			return p.AuthorUsername, true
		}
	}
	return "", false
}

// splitIRCMessage breaks text into chunks suitable for IRC. Each newline
// produces a separate chunk because PRIVMSG does not support embedded
// newlines; lines longer than maxLen are further split at the byte boundary.
func splitIRCMessage(text string, maxLen int) []string {
	var chunks []string
	for _, line := range strings.Split(text, "\n") {
		for len(line) > maxLen {
			chunks = append(chunks, line[:maxLen])
			line = line[maxLen:]
		}
		if line != "" {
			chunks = append(chunks, line)
		}
	}
	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}
