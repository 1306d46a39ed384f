package social

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// YouTubeComment is a single comment on the configured channel.
type YouTubeComment struct {
	ID          string    `json:"id"`
	Author      string    `json:"author"`
	Text        string    `json:"text"`
	VideoID     string    `json:"video_id,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// YouTubeClient talks to the YouTube Data API. Reading comments needs only an
// API key; posting replies needs an OAuth access token. It is not a loop
// platform, its operations are reachable through connection actions.
type YouTubeClient struct {
	apiKey      string
	accessToken string
	channelID   string

	// extraOpts lets tests point the client at a local server.
	extraOpts []option.ClientOption

	mu    sync.Mutex
	read  *youtube.Service
	write *youtube.Service
}

// NewYouTubeClient creates a YouTube client for the given channel.
func NewYouTubeClient(apiKey, accessToken, channelID string) *YouTubeClient {
	return &YouTubeClient{
		apiKey:      apiKey,
		accessToken: accessToken,
		channelID:   channelID,
	}
}

// Name returns the connection name.
func (c *YouTubeClient) Name() string {
	return "youtube"
}

func (c *YouTubeClient) readService(ctx context.Context) (*youtube.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.read != nil {
		return c.read, nil
	}
	if c.apiKey == "" {
		return nil, &PlatformError{Platform: "youtube", Message: "an api key is required"}
	}
	opts := append([]option.ClientOption{option.WithAPIKey(c.apiKey)}, c.extraOpts...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}
	c.read = svc
	return svc, nil
}

func (c *YouTubeClient) writeService(ctx context.Context) (*youtube.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.write != nil {
		return c.write, nil
	}
	if c.accessToken == "" {
		return nil, &PlatformError{Platform: "youtube", Message: "write access requires an oauth access token"}
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.accessToken})
	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, c.extraOpts...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}
	c.write = svc
	return svc, nil
}

// resolveChannelID returns the configured channel, or looks up the
// authenticated account's own channel once and caches it.
func (c *YouTubeClient) resolveChannelID(ctx context.Context) (string, error) {
	c.mu.Lock()
	id := c.channelID
	c.mu.Unlock()
	if id != "" {
		return id, nil
	}

	svc, err := c.writeService(ctx)
	if err != nil {
		return "", &PlatformError{Platform: "youtube", Message: "set a channel_id or an oauth access token to scope comment reads"}
	}
	resp, err := svc.Channels.List([]string{"id"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("youtube resolve channel: %w", err)
	}
	if len(resp.Items) == 0 {
		return "", &PlatformError{Platform: "youtube", Message: "the authenticated account has no channel"}
	}

	c.mu.Lock()
	c.channelID = resp.Items[0].Id
	c.mu.Unlock()
	return resp.Items[0].Id, nil
}

// RecentComments lists the newest comment threads across the channel's videos.
func (c *YouTubeClient) RecentComments(ctx context.Context, count int) ([]YouTubeComment, error) {
	channelID, err := c.resolveChannelID(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := c.readService(ctx)
	if err != nil {
		return nil, err
	}

	n := clampCount(count, 1, 100)
	resp, err := svc.CommentThreads.List([]string{"snippet"}).
		AllThreadsRelatedToChannelId(channelID).
		Order("time").
		MaxResults(int64(n)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("youtube list comments: %w", err)
	}

	comments := make([]YouTubeComment, 0, len(resp.Items))
	for _, item := range resp.Items {
		top := item.Snippet.TopLevelComment
		if top == nil || top.Snippet == nil {
			continue
		}
		published, _ := time.Parse(time.RFC3339, top.Snippet.PublishedAt)
		comments = append(comments, YouTubeComment{
			ID:          top.Id,
			Author:      top.Snippet.AuthorDisplayName,
			Text:        top.Snippet.TextDisplay,
			VideoID:     top.Snippet.VideoId,
			PublishedAt: published,
		})
	}
	return comments, nil
}

// ReplyToComment posts a reply under an existing top-level comment and
// returns the new comment's ID.
func (c *YouTubeClient) ReplyToComment(ctx context.Context, commentID, text string) (string, error) {
	svc, err := c.writeService(ctx)
	if err != nil {
		return "", err
	}

	reply, err := svc.Comments.Insert([]string{"snippet"}, &youtube.Comment{
		Snippet: &youtube.CommentSnippet{
			ParentId:     commentID,
			TextOriginal: text,
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("youtube reply: %w", err)
	}
	return reply.Id, nil
}
