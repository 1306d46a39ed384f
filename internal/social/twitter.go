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
	"sync"
	"time"

	"golang.org/x/oauth2"
)

const twitterBaseURL = "https://api.twitter.com"

// TwitterClient talks to the Twitter API v2. Requests are authenticated with
// an OAuth2 user access token that must carry tweet.read, tweet.write,
// users.read and like.write scopes.
type TwitterClient struct {
	http    *http.Client
	baseURL string

	mu   sync.Mutex
	self *User // cached GET /2/users/me result
}

// NewTwitterClient creates a Twitter API client from a user access token.
func NewTwitterClient(accessToken string) *TwitterClient {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	httpClient := oauth2.NewClient(context.Background(), src)
	httpClient.Timeout = 30 * time.Second

	return &TwitterClient{
		http:    httpClient,
		baseURL: twitterBaseURL,
	}
}

// Name returns the platform name.
func (c *TwitterClient) Name() string {
	return "twitter"
}

// Post publishes a tweet and returns its ID.
func (c *TwitterClient) Post(ctx context.Context, text string) (string, error) {
	var resp tweetCreateResponse
	err := c.do(ctx, "POST", "/2/tweets", map[string]any{"text": text}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Data.ID, nil
}

// Reply publishes a tweet in reply to an existing one.
func (c *TwitterClient) Reply(ctx context.Context, postID, text string) (string, error) {
	body := map[string]any{
		"text":  text,
		"reply": map[string]any{"in_reply_to_tweet_id": postID},
	}
	var resp tweetCreateResponse
	if err := c.do(ctx, "POST", "/2/tweets", body, &resp); err != nil {
		return "", err
	}
	return resp.Data.ID, nil
}

// Like marks a tweet as liked by the authenticated user.
func (c *TwitterClient) Like(ctx context.Context, postID string) error {
	me, err := c.Me(ctx)
	if err != nil {
		return err
	}
	var resp struct {
		Data struct {
			Liked bool `json:"liked"`
		} `json:"data"`
	}
	return c.do(ctx, "POST", "/2/users/"+me.ID+"/likes", map[string]any{"tweet_id": postID}, &resp)
}

// Timeline returns the authenticated user's home timeline, newest first.
func (c *TwitterClient) Timeline(ctx context.Context, count int) ([]Post, error) {
	me, err := c.Me(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("max_results", strconv.Itoa(clampCount(count, 1, 100)))
	q.Set("tweet.fields", "created_at,author_id")
	q.Set("expansions", "author_id")
	q.Set("user.fields", "username")

	var resp tweetListResponse
	path := "/2/users/" + me.ID + "/timelines/reverse_chronological?" + q.Encode()
	if err := c.do(ctx, "GET", path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.posts(), nil
}

// Me returns the authenticated user. The result is cached for the lifetime
// of the client.
func (c *TwitterClient) Me(ctx context.Context) (*User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.self != nil {
		u := *c.self
		return &u, nil
	}

	var resp struct {
		Data struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"data"`
	}
	if err := c.do(ctx, "GET", "/2/users/me", nil, &resp); err != nil {
		return nil, err
	}

	c.self = &User{ID: resp.Data.ID, Username: resp.Data.Username}
	u := *c.self
	return &u, nil
}

// Replies returns recent replies in the conversation rooted at the post.
func (c *TwitterClient) Replies(ctx context.Context, postID string, count int) ([]Post, error) {
	q := url.Values{}
	q.Set("query", "conversation_id:"+postID)
	q.Set("max_results", strconv.Itoa(clampCount(count, 10, 100))) // recent search floor is 10
	q.Set("tweet.fields", "created_at,author_id")
	q.Set("expansions", "author_id")
	q.Set("user.fields", "username")

	var resp tweetListResponse
	if err := c.do(ctx, "GET", "/2/tweets/search/recent?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.posts(), nil
}

// Helper methods

func (c *TwitterClient) do(ctx context.Context, method, path string, body, out any) error {
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
		return &PlatformError{Platform: "twitter", Code: resp.StatusCode, Message: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

func clampCount(n, min, max int) int {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// API response structures

type tweetCreateResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

type tweetListResponse struct {
	Data []struct {
		ID        string `json:"id"`
		Text      string `json:"text"`
		AuthorID  string `json:"author_id"`
		CreatedAt string `json:"created_at"`
	} `json:"data"`
	Includes struct {
		Users []struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"users"`
	} `json:"includes"`
}

func (r *tweetListResponse) posts() []Post {
	usernames := make(map[string]string, len(r.Includes.Users))
	for _, u := range r.Includes.Users {
		usernames[u.ID] = u.Username
	}

	posts := make([]Post, 0, len(r.Data))
	for _, t := range r.Data {
		p := Post{
			ID:             t.ID,
			Text:           t.Text,
			AuthorID:       t.AuthorID,
			AuthorUsername: usernames[t.AuthorID],
		}
		if ts, err := time.Parse(time.RFC3339, t.CreatedAt); err == nil {
			p.CreatedAt = ts
		}
		posts = append(posts, p)
	}
	return posts
}
