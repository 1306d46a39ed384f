package connection

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigUnmarshalTwitter(t *testing.T) {
	src := `{"name":"twitter","timeline_read_count":15,"tweet_interval":600,"own_tweet_replies_count":3}`

	var c Config
	require.NoError(t, json.Unmarshal([]byte(src), &c))

	assert.Equal(t, "twitter", c.Name)
	require.NotNil(t, c.Twitter)
	assert.Equal(t, 15, c.Twitter.ReadCount())
	assert.Equal(t, 3, c.Twitter.OwnReplies())
	assert.Equal(t, 600*time.Second, c.Twitter.Interval())
	assert.Empty(t, c.Extra)
}

func TestConfigTwitterDefaults(t *testing.T) {
	var c Config
	require.NoError(t, json.Unmarshal([]byte(`{"name":"twitter"}`), &c))

	assert.Equal(t, 10, c.Twitter.ReadCount())
	assert.Equal(t, 2, c.Twitter.OwnReplies())
	assert.Equal(t, 900*time.Second, c.Twitter.Interval())
}

func TestConfigNilOptionsAccessors(t *testing.T) {
	var o *TwitterOptions
	assert.Equal(t, 10, o.ReadCount())

	var irc *IRCOptions
	assert.True(t, irc.TLS())
	assert.Equal(t, 6697, irc.PortNumber())

	var yt *YouTubeOptions
	assert.Equal(t, 10, yt.FetchCount())
	assert.Equal(t, "", yt.Channel())
}

func TestConfigUnknownKeysPreserved(t *testing.T) {
	src := `{"name":"twitter","timeline_read_count":5,"custom_flag":true,"labels":["a","b"]}`

	var c Config
	require.NoError(t, json.Unmarshal([]byte(src), &c))

	assert.Equal(t, 5, c.Twitter.ReadCount())
	assert.Equal(t, true, c.Extra["custom_flag"])
	assert.NotContains(t, c.Extra, "timeline_read_count")
}

func TestConfigUnknownKind(t *testing.T) {
	src := `{"name":"farcaster","mentions_count":5}`

	var c Config
	require.NoError(t, json.Unmarshal([]byte(src), &c))

	assert.Equal(t, "farcaster", c.Name)
	assert.Nil(t, c.options())
	assert.Equal(t, float64(5), c.Extra["mentions_count"])
	assert.Empty(t, c.Validate(), "unknown kinds validate name-only")
}

func TestConfigRoundTrip(t *testing.T) {
	cases := []string{
		`{"name":"twitter","timeline_read_count":15,"tweet_interval":600,"own_tweet_replies_count":3}`,
		`{"name":"openai","model":"gpt-4"}`,
		`{"name":"groq","model":"llama-3.3-70b-versatile","temperature":0.5,"base_url":"https://example.test/v1"}`,
		`{"name":"anthropic","model":"claude-3-5-sonnet-20241022","max_tokens":512}`,
		`{"name":"ollama","host":"http://box:11434","model":"llama3.2"}`,
		`{"name":"discord","channel_id":"123","guild_id":"456","message_limit":50}`,
		`{"name":"irc","server":"irc.libera.chat","nick":"zerebot","channel":"#agents","use_tls":false,"port":6667}`,
		`{"name":"youtube","channel_id":"UCabc","comment_fetch_count":25}`,
		`{"name":"farcaster","mentions_count":5,"nested":{"a":1}}`,
		`{"name":"twitter","timeline_read_count":5,"custom_flag":true}`,
	}

	for _, src := range cases {
		var c Config
		require.NoError(t, json.Unmarshal([]byte(src), &c), src)

		out, err := json.Marshal(c)
		require.NoError(t, err, src)
		assert.JSONEq(t, src, string(out), "round-trip changed the document")
	}
}

func TestConfigValidateEmptyName(t *testing.T) {
	var c Config
	require.NoError(t, json.Unmarshal([]byte(`{"timeline_read_count":5}`), &c))

	issues := c.Validate()
	require.NotEmpty(t, issues)
	assert.Equal(t, "name", issues[0].Key)
}

func TestConfigValidateNonPositive(t *testing.T) {
	var c Config
	require.NoError(t, json.Unmarshal([]byte(`{"name":"twitter","tweet_interval":-5,"timeline_read_count":0}`), &c))

	issues := c.Validate()
	keys := issueKeys(issues)
	assert.Contains(t, keys, "tweet_interval")
	assert.Contains(t, keys, "timeline_read_count")
}

func TestConfigValidateTemperature(t *testing.T) {
	var bad Config
	require.NoError(t, json.Unmarshal([]byte(`{"name":"openai","temperature":3.5}`), &bad))
	assert.Contains(t, issueKeys(bad.Validate()), "temperature")

	var edge Config
	require.NoError(t, json.Unmarshal([]byte(`{"name":"openai","temperature":2}`), &edge))
	assert.Empty(t, edge.Validate())
}

func TestConfigValidateDiscordChannel(t *testing.T) {
	var c Config
	require.NoError(t, json.Unmarshal([]byte(`{"name":"discord"}`), &c))

	issues := c.Validate()
	require.Len(t, issues, 1)
	assert.Equal(t, "channel_id", issues[0].Key)
	assert.Equal(t, "channel_id: is required", issues[0].String())
}

func TestConfigValidateIRCRequired(t *testing.T) {
	var c Config
	require.NoError(t, json.Unmarshal([]byte(`{"name":"irc"}`), &c))

	keys := issueKeys(c.Validate())
	assert.Contains(t, keys, "server")
	assert.Contains(t, keys, "nick")
	assert.Contains(t, keys, "channel")
}

func TestConfigValidateTypeMismatch(t *testing.T) {
	src := `{"name":"twitter","tweet_interval":"soon"}`

	var c Config
	require.NoError(t, json.Unmarshal([]byte(src), &c))

	issues := c.Validate()
	require.Len(t, issues, 1)
	assert.Equal(t, "tweet_interval", issues[0].Key)
	assert.Contains(t, issues[0].Message, "integer")

	// the bad value still round-trips
	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, src, string(out))
}

func TestConfigValidateYouTubeCount(t *testing.T) {
	var c Config
	require.NoError(t, json.Unmarshal([]byte(`{"name":"youtube","comment_fetch_count":0}`), &c))
	assert.Contains(t, issueKeys(c.Validate()), "comment_fetch_count")
}

func TestKindClassification(t *testing.T) {
	assert.Equal(t, ClassSocial, Kind("twitter"))
	assert.Equal(t, ClassSocial, Kind("discord"))
	assert.Equal(t, ClassSocial, Kind("irc"))
	assert.Equal(t, ClassSocial, Kind("youtube"))
	assert.Equal(t, ClassLLM, Kind("openai"))
	assert.Equal(t, ClassLLM, Kind("groq"))
	assert.Equal(t, ClassLLM, Kind("eternalai"))
	assert.Equal(t, ClassLLM, Kind("anthropic"))
	assert.Equal(t, ClassLLM, Kind("ollama"))
	assert.Equal(t, ClassUnknown, Kind("farcaster"))
}

func TestIRCPortDefaults(t *testing.T) {
	var tls Config
	require.NoError(t, json.Unmarshal([]byte(`{"name":"irc","server":"s","nick":"n","channel":"#c"}`), &tls))
	assert.True(t, tls.IRC.TLS())
	assert.Equal(t, 6697, tls.IRC.PortNumber())

	var plain Config
	require.NoError(t, json.Unmarshal([]byte(`{"name":"irc","server":"s","nick":"n","channel":"#c","use_tls":false}`), &plain))
	assert.False(t, plain.IRC.TLS())
	assert.Equal(t, 6667, plain.IRC.PortNumber())

	var explicit Config
	require.NoError(t, json.Unmarshal([]byte(`{"name":"irc","server":"s","nick":"n","channel":"#c","port":7000}`), &explicit))
	assert.Equal(t, 7000, explicit.IRC.PortNumber())
}

func TestOpenAIEndpoint(t *testing.T) {
	var groq Config
	require.NoError(t, json.Unmarshal([]byte(`{"name":"groq"}`), &groq))
	assert.Equal(t, "https://api.groq.com/openai/v1", groq.OpenAI.Endpoint("groq"))

	var override Config
	require.NoError(t, json.Unmarshal([]byte(`{"name":"groq","base_url":"http://localhost:9999"}`), &override))
	assert.Equal(t, "http://localhost:9999", override.OpenAI.Endpoint("groq"))

	var plain Config
	require.NoError(t, json.Unmarshal([]byte(`{"name":"openai"}`), &plain))
	assert.Empty(t, plain.OpenAI.Endpoint("openai"), "openai uses the client default")
}

func issueKeys(issues []Issue) []string {
	keys := make([]string, len(issues))
	for i, issue := range issues {
		keys[i] = issue.Key
	}
	return keys
}
