package connection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func actionNames(actions []Action) []string {
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = a.Name
	}
	return names
}

func TestActionsTwitter(t *testing.T) {
	names := actionNames(Actions("twitter"))
	assert.Contains(t, names, "post-tweet")
	assert.Contains(t, names, "reply-to-tweet")
	assert.Contains(t, names, "like-tweet")
	assert.Contains(t, names, "read-timeline")
	assert.Contains(t, names, "get-tweet-replies")

	post, ok := findAction("twitter", "post-tweet")
	require.True(t, ok)
	require.Len(t, post.Params, 1)
	assert.Equal(t, "message", post.Params[0].Name)
	assert.True(t, post.Params[0].Required)
}

func TestActionsOpenAICompat(t *testing.T) {
	names := actionNames(Actions("groq"))
	assert.Contains(t, names, "generate-text")
	assert.Contains(t, names, "check-model")
	assert.Contains(t, names, "list-models")
}

func TestActionsAnthropicGenerateOnly(t *testing.T) {
	names := actionNames(Actions("anthropic"))
	assert.Equal(t, []string{"generate-text"}, names)

	names = actionNames(Actions("ollama"))
	assert.Equal(t, []string{"generate-text"}, names)
}

func TestActionsDiscordIncludesListen(t *testing.T) {
	names := actionNames(Actions("discord"))
	assert.Contains(t, names, "listen")
	assert.Contains(t, names, "react-to-message")
}

func TestActionsUnknownKind(t *testing.T) {
	assert.Nil(t, Actions("farcaster"))
}

func TestFindAction(t *testing.T) {
	_, ok := findAction("twitter", "post-tweet")
	assert.True(t, ok)

	_, ok = findAction("twitter", "listen")
	assert.False(t, ok)

	_, ok = findAction("farcaster", "anything")
	assert.False(t, ok)
}

func TestCredentialSpec(t *testing.T) {
	assert.Nil(t, CredentialSpec("ollama"))
	assert.Nil(t, CredentialSpec("farcaster"))

	groq := CredentialSpec("groq")
	require.Len(t, groq, 1)
	assert.Equal(t, "api_key", groq[0].Key)
	assert.True(t, groq[0].Secret)
	assert.False(t, groq[0].Optional)

	yt := CredentialSpec("youtube")
	require.Len(t, yt, 2)
	assert.Equal(t, "api_key", yt[0].Key)
	assert.True(t, yt[1].Optional)

	irc := CredentialSpec("irc")
	require.Len(t, irc, 1)
	assert.True(t, irc[0].Optional)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "OpenAI", DisplayName("openai"))
	assert.Equal(t, "xAI", DisplayName("xai"))
	assert.Equal(t, "EternalAI", DisplayName("eternalai"))
	assert.Equal(t, "farcaster", DisplayName("farcaster"))
}
