// Package social provides clients for the platforms an agent posts to.
//
// Every platform satisfies the same Platform interface so the agent loop and
// action dispatch never branch on which service is behind a connection.
// Operations a platform cannot express return ErrUnsupported.
package social

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Post is a single message on a platform timeline.
type Post struct {
	ID             string    `json:"id"`
	Text           string    `json:"text"`
	AuthorID       string    `json:"authorId,omitempty"`
	AuthorUsername string    `json:"authorUsername,omitempty"`
	CreatedAt      time.Time `json:"createdAt,omitempty"`
}

// User identifies the authenticated account on a platform.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ErrUnsupported is returned for operations a platform cannot perform.
var ErrUnsupported = errors.New("operation not supported on this platform")

// Platform is the interface all social platforms must implement.
type Platform interface {
	// Name returns the platform name (e.g., "twitter", "discord").
	Name() string

	// Post publishes text and returns the new post's ID.
	Post(ctx context.Context, text string) (string, error)

	// Reply publishes text in response to an existing post.
	Reply(ctx context.Context, postID, text string) (string, error)

	// Like marks a post as liked.
	Like(ctx context.Context, postID string) error

	// Timeline returns up to count recent posts, newest first.
	Timeline(ctx context.Context, count int) ([]Post, error)

	// Me returns the authenticated user.
	Me(ctx context.Context) (*User, error)

	// Replies returns up to count replies to the given post.
	Replies(ctx context.Context, postID string, count int) ([]Post, error)
}

// Starter is implemented by platforms that maintain a long-lived connection.
// The loop starts them before the first tick and stops them on shutdown.
type Starter interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// PlatformError describes a failed platform API call.
type PlatformError struct {
	Platform string
	Message  string
	Code     int // HTTP status code, 0 if not applicable
}

func (e *PlatformError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s: %d %s", e.Platform, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Platform, e.Message)
}
