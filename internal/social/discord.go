package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const discordBaseURL = "https://discord.com/api/v10"

// DiscordClient talks to the Discord REST API with bot-token authentication.
// The client is bound to a single channel; posts land there and the timeline
// reads the channel's recent history.
type DiscordClient struct {
	http      *http.Client
	baseURL   string
	token     string
	channelID string
}

// NewDiscordClient creates a Discord REST client for a bot in one channel.
func NewDiscordClient(botToken, channelID string) *DiscordClient {
	return &DiscordClient{
		http:      &http.Client{Timeout: 30 * time.Second},
		baseURL:   discordBaseURL,
		token:     botToken,
		channelID: channelID,
	}
}

// Name returns the platform name.
func (c *DiscordClient) Name() string {
	return "discord"
}

// Post sends a message to the configured channel and returns its ID.
func (c *DiscordClient) Post(ctx context.Context, text string) (string, error) {
	var msg discordMessage
	err := c.do(ctx, "POST", "/channels/"+c.channelID+"/messages", map[string]any{"content": text}, &msg)
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

// Reply sends a message referencing an existing one.
func (c *DiscordClient) Reply(ctx context.Context, postID, text string) (string, error) {
	body := map[string]any{
		"content":           text,
		"message_reference": map[string]any{"message_id": postID},
	}
	var msg discordMessage
	if err := c.do(ctx, "POST", "/channels/"+c.channelID+"/messages", body, &msg); err != nil {
		return "", err
	}
	return msg.ID, nil
}

// Like adds a heart reaction to a message.
func (c *DiscordClient) Like(ctx context.Context, postID string) error {
	emoji := url.PathEscape("❤️")
	path := "/channels/" + c.channelID + "/messages/" + postID + "/reactions/" + emoji + "/@me"
	return c.do(ctx, "PUT", path, nil, nil)
}

// Timeline returns the channel's most recent messages, newest first.
func (c *DiscordClient) Timeline(ctx context.Context, count int) ([]Post, error) {
	limit := clampCount(count, 1, 100)
	var msgs []discordMessage
	path := "/channels/" + c.channelID + "/messages?limit=" + strconv.Itoa(limit)
	if err := c.do(ctx, "GET", path, nil, &msgs); err != nil {
		return nil, err
	}

	posts := make([]Post, 0, len(msgs))
	for _, m := range msgs {
		posts = append(posts, m.toPost())
	}
	return posts, nil
}

// Me returns the bot user.
func (c *DiscordClient) Me(ctx context.Context) (*User, error) {
	var user struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	if err := c.do(ctx, "GET", "/users/@me", nil, &user); err != nil {
		return nil, err
	}
	return &User{ID: user.ID, Username: user.Username}, nil
}

// Replies scans recent channel history for messages referencing the post.
// Discord has no reply-listing endpoint, so this is bounded by one page.
func (c *DiscordClient) Replies(ctx context.Context, postID string, count int) ([]Post, error) {
	var msgs []discordMessage
	if err := c.do(ctx, "GET", "/channels/"+c.channelID+"/messages?limit=100", nil, &msgs); err != nil {
		return nil, err
	}

	var posts []Post
	for _, m := range msgs {
		if m.MessageReference != nil && m.MessageReference.MessageID == postID {
			posts = append(posts, m.toPost())
			if count > 0 && len(posts) >= count {
				break
			}
		}
	}
	return posts, nil
}

// Helper methods

func (c *DiscordClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = strings.NewReader(string(payload))
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bot "+c.token)
	httpReq.Header.Set("User-Agent", "DiscordBot (https://github.com/blorm-network/zerepy, 1.0)")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &PlatformError{Platform: "discord", Code: resp.StatusCode, Message: string(respBody)}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// API response structures

type discordMessage struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Author  struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"author"`
	Timestamp        string `json:"timestamp"`
	MessageReference *struct {
		MessageID string `json:"message_id"`
	} `json:"message_reference,omitempty"`
}

func (m discordMessage) toPost() Post {
	p := Post{
		ID:             m.ID,
		Text:           m.Content,
		AuthorID:       m.Author.ID,
		AuthorUsername: m.Author.Username,
	}
	if ts, err := time.Parse(time.RFC3339, m.Timestamp); err == nil {
		p.CreatedAt = ts
	}
	return p
}
