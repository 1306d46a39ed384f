package connection

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/blorm-network/zerepy/internal/credential"
	"github.com/blorm-network/zerepy/internal/llm"
	"github.com/blorm-network/zerepy/internal/logging"
	"github.com/blorm-network/zerepy/internal/social"
)

// Info summarizes one managed connection for list-connections.
type Info struct {
	Name       string `json:"name"`
	Class      Class  `json:"class"`
	Configured bool   `json:"configured"`
}

type entry struct {
	cfg        Config
	class      Class
	configured bool
	llm        llm.Client
	platform   social.Platform
	youtube    *social.YouTubeClient
}

// Manager owns the live clients for a profile's connection list. It is built
// explicitly from the profile entries, the credential store, and a logger;
// there is no process-wide registry.
type Manager struct {
	log     *logging.Logger
	rootLog *logging.Logger
	creds   *credential.Store
	order   []string
	entries map[string]*entry
}

// NewManager builds one client per config entry. Entries whose credentials
// do not resolve are listed as unconfigured and have no client; unknown
// kinds are listed as-is.
func NewManager(configs []Config, creds *credential.Store, log *logging.Logger) *Manager {
	m := &Manager{
		log:     log.Sub("connections"),
		rootLog: log,
		creds:   creds,
		entries: make(map[string]*entry, len(configs)),
	}
	for _, cfg := range configs {
		if _, dup := m.entries[cfg.Name]; dup {
			continue
		}
		m.entries[cfg.Name] = m.build(cfg)
		m.order = append(m.order, cfg.Name)
	}
	return m
}

func (m *Manager) build(cfg Config) *entry {
	e := &entry{cfg: cfg, class: Kind(cfg.Name)}

	switch {
	case cfg.OpenAI != nil:
		key, ok := m.creds.Lookup(cfg.Name, "api_key")
		if !ok {
			return e
		}
		e.llm = llm.NewOpenAICompatClient(cfg.Name, key, cfg.OpenAI.Endpoint(cfg.Name), cfg.OpenAI.ModelName())

	case cfg.Anthropic != nil:
		key, ok := m.creds.Lookup(cfg.Name, "api_key")
		if !ok {
			return e
		}
		e.llm = llm.NewAnthropicClient(key, cfg.Anthropic.ModelName())

	case cfg.Ollama != nil:
		e.llm = llm.NewOllamaClient(cfg.Ollama.HostURL(), cfg.Ollama.ModelName())

	case cfg.Twitter != nil:
		token, ok := m.creds.Lookup(cfg.Name, "access_token")
		if !ok {
			return e
		}
		e.platform = social.NewTwitterClient(token)

	case cfg.Discord != nil:
		token, ok := m.creds.Lookup(cfg.Name, "bot_token")
		if !ok || cfg.Discord.Channel() == "" {
			return e
		}
		e.platform = social.NewDiscordClient(token, cfg.Discord.Channel())

	case cfg.IRC != nil:
		if cfg.IRC.Server == nil || cfg.IRC.Nick == nil || cfg.IRC.Channel == nil {
			return e
		}
		password, _ := m.creds.Lookup(cfg.Name, "password")
		e.platform = social.NewIRCClient(social.IRCConfig{
			Server:      *cfg.IRC.Server,
			Port:        cfg.IRC.PortNumber(),
			Nick:        *cfg.IRC.Nick,
			Channel:     *cfg.IRC.Channel,
			UseTLS:      cfg.IRC.TLS(),
			Password:    password,
			HistorySize: cfg.IRC.HistorySize(),
		}, m.rootLog)

	case cfg.YouTube != nil:
		apiKey, ok := m.creds.Lookup(cfg.Name, "api_key")
		if !ok {
			return e
		}
		accessToken, _ := m.creds.Lookup(cfg.Name, "access_token")
		e.youtube = social.NewYouTubeClient(apiKey, accessToken, cfg.YouTube.Channel())

	default:
		return e
	}

	e.configured = true
	m.log.Info().Str("connection", cfg.Name).Str("class", string(e.class)).Msg("connection ready")
	return e
}

// RegisterLLM installs a client under the given name, replacing whatever the
// profile configured.
func (m *Manager) RegisterLLM(name string, c llm.Client) {
	e, ok := m.entries[name]
	if !ok {
		e = &entry{cfg: Config{Name: name}, class: ClassLLM}
		m.entries[name] = e
		m.order = append(m.order, name)
	}
	e.llm = c
	e.configured = true
}

// RegisterPlatform installs a platform under the given name, replacing
// whatever the profile configured.
func (m *Manager) RegisterPlatform(name string, p social.Platform) {
	e, ok := m.entries[name]
	if !ok {
		e = &entry{cfg: Config{Name: name}, class: ClassSocial}
		m.entries[name] = e
		m.order = append(m.order, name)
	}
	e.platform = p
	e.configured = true
}

// LLM returns the client for a named LLM connection.
func (m *Manager) LLM(name string) (llm.Client, error) {
	e, ok := m.entries[name]
	if !ok {
		return nil, fmt.Errorf("unknown connection %q", name)
	}
	if e.llm == nil {
		return nil, fmt.Errorf("connection %q is not a configured LLM provider", name)
	}
	return e.llm, nil
}

// Platform returns the client for a named social connection.
func (m *Manager) Platform(name string) (social.Platform, error) {
	e, ok := m.entries[name]
	if !ok {
		return nil, fmt.Errorf("unknown connection %q", name)
	}
	if e.platform == nil {
		return nil, fmt.Errorf("connection %q is not a configured social platform", name)
	}
	return e.platform, nil
}

// FirstLLM returns the first configured LLM provider in profile order.
func (m *Manager) FirstLLM() (llm.Client, error) {
	for _, name := range m.order {
		if e := m.entries[name]; e.llm != nil {
			return e.llm, nil
		}
	}
	return nil, fmt.Errorf("no LLM provider is configured")
}

// FirstPlatform returns the first configured social platform in profile
// order.
func (m *Manager) FirstPlatform() (social.Platform, error) {
	for _, name := range m.order {
		if e := m.entries[name]; e.platform != nil {
			return e.platform, nil
		}
	}
	return nil, fmt.Errorf("no social platform is configured")
}

// List reports every managed connection in profile order.
func (m *Manager) List() []Info {
	infos := make([]Info, 0, len(m.order))
	for _, name := range m.order {
		e := m.entries[name]
		infos = append(infos, Info{Name: name, Class: e.class, Configured: e.configured})
	}
	return infos
}

// StartPlatforms brings up platforms that hold long-lived connections (IRC).
// Platforms without a Start hook are already usable.
func (m *Manager) StartPlatforms(ctx context.Context) error {
	for _, name := range m.order {
		e := m.entries[name]
		s, ok := e.platform.(social.Starter)
		if !ok {
			continue
		}
		if err := s.Start(ctx); err != nil {
			return fmt.Errorf("start %s: %w", name, err)
		}
	}
	return nil
}

// StopPlatforms shuts down platforms started by StartPlatforms.
func (m *Manager) StopPlatforms(ctx context.Context) {
	for _, name := range m.order {
		e := m.entries[name]
		if s, ok := e.platform.(social.Starter); ok {
			if err := s.Stop(ctx); err != nil {
				m.log.Warn().Err(err).Str("connection", name).Msg("platform stop failed")
			}
		}
	}
}

// Perform runs a named action against a connection with string-typed
// arguments, for the action CLI command. The result is a printable summary.
func (m *Manager) Perform(ctx context.Context, name, action string, args map[string]string) (string, error) {
	e, ok := m.entries[name]
	if !ok {
		return "", fmt.Errorf("unknown connection %q", name)
	}

	spec, ok := findAction(e.cfg.Name, action)
	if !ok {
		return "", fmt.Errorf("connection %q has no action %q", name, action)
	}
	for _, p := range spec.Params {
		if p.Required && args[p.Name] == "" {
			return "", fmt.Errorf("missing required parameter %q", p.Name)
		}
	}

	switch action {
	case "generate-text":
		if e.llm == nil {
			return "", notConfigured(name)
		}
		return llm.GenerateText(ctx, e.llm, args["prompt"], args["system_prompt"])

	case "check-model":
		client, err := m.openAIClient(e)
		if err != nil {
			return "", err
		}
		found, err := client.CheckModel(ctx, args["model"])
		if err != nil {
			return "", err
		}
		if found {
			return fmt.Sprintf("model %s is available", args["model"]), nil
		}
		return fmt.Sprintf("model %s was not found", args["model"]), nil

	case "list-models":
		client, err := m.openAIClient(e)
		if err != nil {
			return "", err
		}
		models, err := client.Models(ctx)
		if err != nil {
			return "", err
		}
		sort.Strings(models)
		return strings.Join(models, "\n"), nil

	case "post-tweet", "post-message":
		if e.platform == nil {
			return "", notConfigured(name)
		}
		id, err := e.platform.Post(ctx, args["message"])
		if err != nil {
			return "", err
		}
		return "posted " + id, nil

	case "reply-to-tweet", "reply-to-message":
		if e.platform == nil {
			return "", notConfigured(name)
		}
		ref := args["tweet_id"]
		if ref == "" {
			ref = args["message_id"]
		}
		id, err := e.platform.Reply(ctx, ref, args["message"])
		if err != nil {
			return "", err
		}
		return "posted reply " + id, nil

	case "like-tweet", "react-to-message":
		if e.platform == nil {
			return "", notConfigured(name)
		}
		ref := args["tweet_id"]
		if ref == "" {
			ref = args["message_id"]
		}
		if err := e.platform.Like(ctx, ref); err != nil {
			return "", err
		}
		return "liked " + ref, nil

	case "read-timeline", "read-messages":
		if e.platform == nil {
			return "", notConfigured(name)
		}
		posts, err := e.platform.Timeline(ctx, argInt(args, "count", e.defaultReadCount()))
		if err != nil {
			return "", err
		}
		return formatPosts(posts), nil

	case "get-tweet-replies":
		if e.platform == nil {
			return "", notConfigured(name)
		}
		posts, err := e.platform.Replies(ctx, args["tweet_id"], argInt(args, "count", 10))
		if err != nil {
			return "", err
		}
		return formatPosts(posts), nil

	case "listen":
		return m.listen(ctx, e)

	case "get-recent-comments":
		if e.youtube == nil {
			return "", notConfigured(name)
		}
		comments, err := e.youtube.RecentComments(ctx, argInt(args, "count", e.cfg.YouTube.FetchCount()))
		if err != nil {
			return "", err
		}
		return formatComments(comments), nil

	case "reply-to-comment":
		if e.youtube == nil {
			return "", notConfigured(name)
		}
		id, err := e.youtube.ReplyToComment(ctx, args["comment_id"], args["text"])
		if err != nil {
			return "", err
		}
		return "posted reply " + id, nil
	}

	return "", fmt.Errorf("action %q is not implemented", action)
}

// listen streams gateway dispatches into the log until the context ends.
func (m *Manager) listen(ctx context.Context, e *entry) (string, error) {
	token, ok := m.creds.Lookup(e.cfg.Name, "bot_token")
	if !ok {
		return "", notConfigured(e.cfg.Name)
	}

	gw := social.NewDiscordGateway(token, m.rootLog)
	channelID := e.cfg.Discord.Channel()
	gw.On("MESSAGE_CREATE", func(data json.RawMessage) {
		var msg social.DiscordMessageEvent
		if err := json.Unmarshal(data, &msg); err != nil {
			m.log.Warn().Err(err).Msg("bad MESSAGE_CREATE payload")
			return
		}
		if msg.Author.Bot || (channelID != "" && msg.ChannelID != channelID) {
			return
		}
		m.log.Info().
			Str("channel", msg.ChannelID).
			Str("author", msg.Author.Username).
			Str("content", msg.Content).
			Msg("message")
	})

	err := gw.Run(ctx)
	if err != nil && ctx.Err() == nil {
		return "", err
	}
	return "gateway closed", nil
}

func (m *Manager) openAIClient(e *entry) (*llm.OpenAIClient, error) {
	client, ok := e.llm.(*llm.OpenAIClient)
	if !ok {
		return nil, notConfigured(e.cfg.Name)
	}
	return client, nil
}

// defaultReadCount picks the timeline page size from the entry's options.
func (e *entry) defaultReadCount() int {
	switch {
	case e.cfg.Twitter != nil:
		return e.cfg.Twitter.ReadCount()
	case e.cfg.Discord != nil:
		return e.cfg.Discord.Limit()
	case e.cfg.IRC != nil:
		return e.cfg.IRC.HistorySize()
	}
	return 10
}

func notConfigured(name string) error {
	return fmt.Errorf("connection %q is not configured; run configure-connection %s", name, name)
}

func argInt(args map[string]string, key string, def int) int {
	if v, ok := args[key]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func formatPosts(posts []social.Post) string {
	if len(posts) == 0 {
		return "no posts"
	}
	var b strings.Builder
	for i, p := range posts {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%s] @%s: %s", p.ID, p.AuthorUsername, p.Text)
	}
	return b.String()
}

func formatComments(comments []social.YouTubeComment) string {
	if len(comments) == 0 {
		return "no comments"
	}
	var b strings.Builder
	for i, c := range comments {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%s] %s: %s", c.ID, c.Author, c.Text)
	}
	return b.String()
}
