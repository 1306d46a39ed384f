// Package connection defines the per-connection configuration carried by an
// agent profile and the manager that turns those entries into live LLM and
// social platform clients.
package connection

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Class groups connection kinds by what they provide.
type Class string

const (
	ClassLLM     Class = "llm"
	ClassSocial  Class = "social"
	ClassUnknown Class = "unknown"
)

// openAICompatible lists the kinds served by the OpenAI client with a
// kind-specific endpoint.
var openAICompatible = map[string]string{
	"openai":     "",
	"xai":        "https://api.x.ai/v1",
	"groq":       "https://api.groq.com/openai/v1",
	"together":   "https://api.together.xyz/v1",
	"hyperbolic": "https://api.hyperbolic.xyz/v1",
	"galadriel":  "https://api.galadriel.com/v1",
	"eternalai":  "https://api.eternalai.org/v1",
}

// Kind classifies a connection name.
func Kind(name string) Class {
	switch name {
	case "twitter", "discord", "irc", "youtube":
		return ClassSocial
	case "anthropic", "ollama":
		return ClassLLM
	}
	if _, ok := openAICompatible[name]; ok {
		return ClassLLM
	}
	return ClassUnknown
}

// Config is one entry of a profile's connection list. Name selects the kind;
// exactly one of the typed options fields is set for known kinds. Keys the
// kind does not define, and every key of an unknown kind, are preserved in
// Extra so the profile document round-trips unchanged.
type Config struct {
	Name string

	Twitter   *TwitterOptions
	OpenAI    *OpenAIOptions
	Anthropic *AnthropicOptions
	Ollama    *OllamaOptions
	Discord   *DiscordOptions
	IRC       *IRCOptions
	YouTube   *YouTubeOptions

	Extra map[string]any

	// type mismatches found while decoding, reported by Validate
	issues []Issue
}

// TwitterOptions configures the twitter connection. All values are optional;
// accessors fall back to the defaults.
type TwitterOptions struct {
	TimelineReadCount    *int `json:"timeline_read_count,omitempty"`
	OwnTweetRepliesCount *int `json:"own_tweet_replies_count,omitempty"`
	TweetInterval        *int `json:"tweet_interval,omitempty"` // seconds
}

// ReadCount returns how many timeline entries to fetch per refill.
func (o *TwitterOptions) ReadCount() int {
	if o == nil || o.TimelineReadCount == nil {
		return 10
	}
	return *o.TimelineReadCount
}

// OwnReplies returns how many replies to the agent's own posts to enqueue.
func (o *TwitterOptions) OwnReplies() int {
	if o == nil || o.OwnTweetRepliesCount == nil {
		return 2
	}
	return *o.OwnTweetRepliesCount
}

// Interval returns the minimum spacing between posts.
func (o *TwitterOptions) Interval() time.Duration {
	if o == nil || o.TweetInterval == nil {
		return 900 * time.Second
	}
	return time.Duration(*o.TweetInterval) * time.Second
}

// OpenAIOptions configures openai and the OpenAI-compatible kinds.
type OpenAIOptions struct {
	Model       *string  `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	BaseURL     *string  `json:"base_url,omitempty"`
}

// ModelName returns the configured model, empty when unset.
func (o *OpenAIOptions) ModelName() string {
	if o == nil || o.Model == nil {
		return ""
	}
	return *o.Model
}

// Endpoint returns the API base URL for the given kind, preferring an
// explicit base_url over the kind's default.
func (o *OpenAIOptions) Endpoint(kind string) string {
	if o != nil && o.BaseURL != nil && *o.BaseURL != "" {
		return *o.BaseURL
	}
	return openAICompatible[kind]
}

// AnthropicOptions configures the anthropic connection.
type AnthropicOptions struct {
	Model     *string `json:"model,omitempty"`
	MaxTokens *int    `json:"max_tokens,omitempty"`
}

// ModelName returns the configured model or the default.
func (o *AnthropicOptions) ModelName() string {
	if o == nil || o.Model == nil {
		return "claude-3-5-sonnet-20241022"
	}
	return *o.Model
}

// OllamaOptions configures the ollama connection.
type OllamaOptions struct {
	Host  *string `json:"host,omitempty"`
	Model *string `json:"model,omitempty"`
}

// HostURL returns the daemon address or the local default.
func (o *OllamaOptions) HostURL() string {
	if o == nil || o.Host == nil || *o.Host == "" {
		return "http://localhost:11434"
	}
	return *o.Host
}

// ModelName returns the configured model, empty when unset.
func (o *OllamaOptions) ModelName() string {
	if o == nil || o.Model == nil {
		return ""
	}
	return *o.Model
}

// DiscordOptions configures the discord connection.
type DiscordOptions struct {
	ChannelID       *string `json:"channel_id,omitempty"`
	GuildID         *string `json:"guild_id,omitempty"`
	MessageLimit    *int    `json:"message_limit,omitempty"`
	MessageInterval *int    `json:"message_interval,omitempty"` // seconds
}

// Channel returns the bound channel ID, empty when unset.
func (o *DiscordOptions) Channel() string {
	if o == nil || o.ChannelID == nil {
		return ""
	}
	return *o.ChannelID
}

// Limit returns the history page size.
func (o *DiscordOptions) Limit() int {
	if o == nil || o.MessageLimit == nil {
		return 100
	}
	return *o.MessageLimit
}

// Interval returns the minimum spacing between messages.
func (o *DiscordOptions) Interval() time.Duration {
	if o == nil || o.MessageInterval == nil {
		return 60 * time.Second
	}
	return time.Duration(*o.MessageInterval) * time.Second
}

// IRCOptions configures the irc connection.
type IRCOptions struct {
	Server           *string `json:"server,omitempty"`
	Port             *int    `json:"port,omitempty"`
	Nick             *string `json:"nick,omitempty"`
	Channel          *string `json:"channel,omitempty"`
	UseTLS           *bool   `json:"use_tls,omitempty"`
	HistoryReadCount *int    `json:"history_read_count,omitempty"`
}

// TLS reports whether the connection uses TLS. Defaults to true.
func (o *IRCOptions) TLS() bool {
	if o == nil || o.UseTLS == nil {
		return true
	}
	return *o.UseTLS
}

// PortNumber returns the configured port, or the scheme default (6697 for
// TLS, 6667 otherwise).
func (o *IRCOptions) PortNumber() int {
	if o != nil && o.Port != nil {
		return *o.Port
	}
	if o.TLS() {
		return 6697
	}
	return 6667
}

// HistorySize returns the timeline ring buffer capacity.
func (o *IRCOptions) HistorySize() int {
	if o == nil || o.HistoryReadCount == nil {
		return 50
	}
	return *o.HistoryReadCount
}

// YouTubeOptions configures the youtube connection.
type YouTubeOptions struct {
	ChannelID         *string `json:"channel_id,omitempty"`
	CommentFetchCount *int    `json:"comment_fetch_count,omitempty"`
}

// Channel returns the channel whose comments are read. When empty, the
// client resolves the authenticated account's own channel.
func (o *YouTubeOptions) Channel() string {
	if o == nil || o.ChannelID == nil {
		return ""
	}
	return *o.ChannelID
}

// FetchCount returns how many comment threads get-recent-comments reads.
func (o *YouTubeOptions) FetchCount() int {
	if o == nil || o.CommentFetchCount == nil {
		return 10
	}
	return *o.CommentFetchCount
}

// Issue describes one problem with a connection entry. Key is the option key
// ("name" for the kind tag itself).
type Issue struct {
	Key     string
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Key, i.Message)
}

// allocOptions creates the typed options struct for the config's kind and
// returns it, or nil for unknown kinds.
func (c *Config) allocOptions() any {
	switch c.Name {
	case "twitter":
		c.Twitter = &TwitterOptions{}
		return c.Twitter
	case "anthropic":
		c.Anthropic = &AnthropicOptions{}
		return c.Anthropic
	case "ollama":
		c.Ollama = &OllamaOptions{}
		return c.Ollama
	case "discord":
		c.Discord = &DiscordOptions{}
		return c.Discord
	case "irc":
		c.IRC = &IRCOptions{}
		return c.IRC
	case "youtube":
		c.YouTube = &YouTubeOptions{}
		return c.YouTube
	}
	if _, ok := openAICompatible[c.Name]; ok {
		c.OpenAI = &OpenAIOptions{}
		return c.OpenAI
	}
	return nil
}

// options returns the populated typed options struct, or nil.
func (c *Config) options() any {
	switch {
	case c.Twitter != nil:
		return c.Twitter
	case c.OpenAI != nil:
		return c.OpenAI
	case c.Anthropic != nil:
		return c.Anthropic
	case c.Ollama != nil:
		return c.Ollama
	case c.Discord != nil:
		return c.Discord
	case c.IRC != nil:
		return c.IRC
	case c.YouTube != nil:
		return c.YouTube
	}
	return nil
}

// optionFields maps an options struct's json keys to addressable pointers to
// its fields, for key-by-key decoding.
func optionFields(opts any) map[string]any {
	v := reflect.ValueOf(opts).Elem()
	t := v.Type()
	fields := make(map[string]any, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		fields[name] = v.Field(i).Addr().Interface()
	}
	return fields
}

// fieldTypeName names the expected JSON type of an option field for error
// messages.
func fieldTypeName(target any) string {
	switch target.(type) {
	case **int:
		return "an integer"
	case **float64:
		return "a number"
	case **string:
		return "a string"
	case **bool:
		return "a boolean"
	}
	return "a valid value"
}

// UnmarshalJSON decodes a connection entry, sorting keys into the kind's
// typed options and the Extra bag. Schema problems (wrong value types) do not
// fail the decode; they surface through Validate so the caller can report
// them with field paths.
func (c *Config) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	if raw, ok := m["name"]; ok {
		if err := json.Unmarshal(raw, &c.Name); err != nil {
			c.issues = append(c.issues, Issue{Key: "name", Message: "must be a string"})
		}
		delete(m, "name")
	}

	var fields map[string]any
	if opts := c.allocOptions(); opts != nil {
		fields = optionFields(opts)
	}

	for key, raw := range m {
		if target, known := fields[key]; known && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			if err := json.Unmarshal(raw, target); err == nil {
				continue
			}
			c.issues = append(c.issues, Issue{
				Key:     key,
				Message: fmt.Sprintf("must be %s", fieldTypeName(target)),
			})
			// fall through so the original value still round-trips
		}

		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("connection option %s: %w", key, err)
		}
		if c.Extra == nil {
			c.Extra = make(map[string]any)
		}
		c.Extra[key] = v
	}
	return nil
}

// MarshalJSON re-emits the source object: the name tag, the typed options
// under their original keys, and the untouched Extra keys.
func (c Config) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+8)
	for k, v := range c.Extra {
		out[k] = v
	}
	if opts := c.options(); opts != nil {
		blob, err := json.Marshal(opts)
		if err != nil {
			return nil, err
		}
		var typed map[string]any
		if err := json.Unmarshal(blob, &typed); err != nil {
			return nil, err
		}
		for k, v := range typed {
			out[k] = v
		}
	}
	out["name"] = c.Name
	return json.Marshal(out)
}

// Validate checks the entry against its kind's schema. Unknown kinds
// validate name-only.
func (c *Config) Validate() []Issue {
	var issues []Issue
	if c.Name == "" {
		issues = append(issues, Issue{Key: "name", Message: "connection name is required"})
	}
	issues = append(issues, c.issues...)

	switch {
	case c.Twitter != nil:
		issues = positive(issues, "timeline_read_count", c.Twitter.TimelineReadCount)
		issues = positive(issues, "own_tweet_replies_count", c.Twitter.OwnTweetRepliesCount)
		issues = positive(issues, "tweet_interval", c.Twitter.TweetInterval)
	case c.OpenAI != nil:
		if t := c.OpenAI.Temperature; t != nil && (*t < 0 || *t > 2) {
			issues = append(issues, Issue{Key: "temperature", Message: "must be between 0 and 2"})
		}
		issues = positive(issues, "max_tokens", c.OpenAI.MaxTokens)
	case c.Anthropic != nil:
		issues = positive(issues, "max_tokens", c.Anthropic.MaxTokens)
	case c.Discord != nil:
		issues = required(issues, "channel_id", c.Discord.ChannelID)
		issues = positive(issues, "message_limit", c.Discord.MessageLimit)
		issues = positive(issues, "message_interval", c.Discord.MessageInterval)
	case c.IRC != nil:
		issues = required(issues, "server", c.IRC.Server)
		issues = required(issues, "nick", c.IRC.Nick)
		issues = required(issues, "channel", c.IRC.Channel)
		issues = positive(issues, "port", c.IRC.Port)
		issues = positive(issues, "history_read_count", c.IRC.HistoryReadCount)
	case c.YouTube != nil:
		issues = positive(issues, "comment_fetch_count", c.YouTube.CommentFetchCount)
	}
	return issues
}

func positive(issues []Issue, key string, v *int) []Issue {
	if v != nil && *v <= 0 {
		issues = append(issues, Issue{Key: key, Message: "must be a positive integer"})
	}
	return issues
}

func required(issues []Issue, key string, v *string) []Issue {
	if v == nil || *v == "" {
		issues = append(issues, Issue{Key: key, Message: "is required"})
	}
	return issues
}
