package connection

// Param describes one argument of a connection action.
type Param struct {
	Name        string
	Required    bool
	Description string
}

// Action is a named operation a connection exposes through the action
// command.
type Action struct {
	Name        string
	Description string
	Params      []Param
}

// CredentialField describes one credential a kind needs, used for the
// configure-connection prompts and for presence checks.
type CredentialField struct {
	Key      string
	Prompt   string
	Secret   bool
	Optional bool
}

// DisplayName returns the human-readable name of a connection kind.
func DisplayName(kind string) string {
	switch kind {
	case "openai":
		return "OpenAI"
	case "xai":
		return "xAI"
	case "groq":
		return "Groq"
	case "together":
		return "Together"
	case "hyperbolic":
		return "Hyperbolic"
	case "galadriel":
		return "Galadriel"
	case "eternalai":
		return "EternalAI"
	case "anthropic":
		return "Anthropic"
	case "ollama":
		return "Ollama"
	case "twitter":
		return "Twitter"
	case "discord":
		return "Discord"
	case "irc":
		return "IRC"
	case "youtube":
		return "YouTube"
	}
	return kind
}

var generateTextAction = Action{
	Name:        "generate-text",
	Description: "Generate text from a prompt",
	Params: []Param{
		{Name: "prompt", Required: true, Description: "The input prompt"},
		{Name: "system_prompt", Required: false, Description: "System instructions for the model"},
	},
}

// Actions returns the action metadata for a connection kind. Unknown kinds
// have none.
func Actions(kind string) []Action {
	switch {
	case kind == "anthropic" || kind == "ollama":
		return []Action{generateTextAction}
	case Kind(kind) == ClassLLM: // openai and compatible
		return []Action{
			generateTextAction,
			{
				Name:        "check-model",
				Description: "Check whether a model is available",
				Params: []Param{
					{Name: "model", Required: true, Description: "Model identifier to check"},
				},
			},
			{
				Name:        "list-models",
				Description: "List the models the API offers",
			},
		}
	}

	switch kind {
	case "twitter":
		return []Action{
			{
				Name:        "post-tweet",
				Description: "Post a new tweet",
				Params: []Param{
					{Name: "message", Required: true, Description: "Text of the tweet"},
				},
			},
			{
				Name:        "reply-to-tweet",
				Description: "Reply to an existing tweet",
				Params: []Param{
					{Name: "tweet_id", Required: true, Description: "ID of the tweet to reply to"},
					{Name: "message", Required: true, Description: "Text of the reply"},
				},
			},
			{
				Name:        "like-tweet",
				Description: "Like a tweet",
				Params: []Param{
					{Name: "tweet_id", Required: true, Description: "ID of the tweet to like"},
				},
			},
			{
				Name:        "read-timeline",
				Description: "Read the home timeline",
				Params: []Param{
					{Name: "count", Required: false, Description: "Number of tweets to read"},
				},
			},
			{
				Name:        "get-tweet-replies",
				Description: "List replies to a tweet",
				Params: []Param{
					{Name: "tweet_id", Required: true, Description: "ID of the tweet"},
					{Name: "count", Required: false, Description: "Number of replies to fetch"},
				},
			},
		}
	case "discord":
		return []Action{
			{
				Name:        "post-message",
				Description: "Send a message to the configured channel",
				Params: []Param{
					{Name: "message", Required: true, Description: "Text of the message"},
				},
			},
			{
				Name:        "reply-to-message",
				Description: "Reply to a message in the channel",
				Params: []Param{
					{Name: "message_id", Required: true, Description: "ID of the message to reply to"},
					{Name: "message", Required: true, Description: "Text of the reply"},
				},
			},
			{
				Name:        "react-to-message",
				Description: "Add a heart reaction to a message",
				Params: []Param{
					{Name: "message_id", Required: true, Description: "ID of the message"},
				},
			},
			{
				Name:        "read-messages",
				Description: "Read recent channel messages",
				Params: []Param{
					{Name: "count", Required: false, Description: "Number of messages to read"},
				},
			},
			{
				Name:        "listen",
				Description: "Stream gateway events until interrupted",
			},
		}
	case "irc":
		return []Action{
			{
				Name:        "post-message",
				Description: "Send a message to the joined channel",
				Params: []Param{
					{Name: "message", Required: true, Description: "Text of the message"},
				},
			},
			{
				Name:        "reply-to-message",
				Description: "Reply to a recent channel message",
				Params: []Param{
					{Name: "message_id", Required: true, Description: "ID of the message to reply to"},
					{Name: "message", Required: true, Description: "Text of the reply"},
				},
			},
			{
				Name:        "read-messages",
				Description: "Read recent channel messages",
				Params: []Param{
					{Name: "count", Required: false, Description: "Number of messages to read"},
				},
			},
		}
	case "youtube":
		return []Action{
			{
				Name:        "get-recent-comments",
				Description: "Get recent comments from the channel's videos",
				Params: []Param{
					{Name: "count", Required: false, Description: "Number of comments to retrieve"},
				},
			},
			{
				Name:        "reply-to-comment",
				Description: "Post a reply to a comment",
				Params: []Param{
					{Name: "comment_id", Required: true, Description: "ID of the comment to reply to"},
					{Name: "text", Required: true, Description: "Text of the reply"},
				},
			},
		}
	}
	return nil
}

// findAction resolves an action by name within a kind.
func findAction(kind, name string) (Action, bool) {
	for _, a := range Actions(kind) {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}

// CredentialSpec returns the credentials a kind needs. Kinds with no entry
// (ollama, unknown kinds) need none.
func CredentialSpec(kind string) []CredentialField {
	switch kind {
	case "twitter":
		return []CredentialField{
			{Key: "access_token", Prompt: "Twitter OAuth2 user access token", Secret: true},
		}
	case "discord":
		return []CredentialField{
			{Key: "bot_token", Prompt: "Discord bot token", Secret: true},
		}
	case "irc":
		return []CredentialField{
			{Key: "password", Prompt: "IRC SASL password (leave empty for none)", Secret: true, Optional: true},
		}
	case "youtube":
		return []CredentialField{
			{Key: "api_key", Prompt: "YouTube Data API key", Secret: true},
			{Key: "access_token", Prompt: "OAuth access token for posting replies (optional)", Secret: true, Optional: true},
		}
	case "anthropic":
		return []CredentialField{
			{Key: "api_key", Prompt: "Anthropic API key", Secret: true},
		}
	case "ollama":
		return nil
	}
	if _, ok := openAICompatible[kind]; ok {
		return []CredentialField{
			{Key: "api_key", Prompt: DisplayName(kind) + " API key", Secret: true},
		}
	}
	return nil
}
