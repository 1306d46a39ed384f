package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/blorm-network/zerepy/internal/connection"
	"github.com/blorm-network/zerepy/internal/llm"
	"github.com/blorm-network/zerepy/internal/social"
)

func (l *Loop) twitterOptions() *connection.TwitterOptions {
	if c := l.profile.Connection("twitter"); c != nil {
		return c.Twitter
	}
	return nil
}

// handlePostTweet generates a new post with the LLM and publishes it to the
// first platform, honoring the tweet_interval between posts.
func (l *Loop) handlePostTweet(ctx context.Context, _ Task) (string, error) {
	if !l.lastPost.IsZero() && time.Since(l.lastPost) < l.twitterOptions().Interval() {
		return "", ErrSkipTick
	}

	client, err := l.manager.FirstLLM()
	if err != nil {
		return "", err
	}
	platform, err := l.manager.FirstPlatform()
	if err != nil {
		return "", err
	}

	text, err := llm.GenerateText(ctx, client, postPrompt(l.profile.Name), l.profile.SystemPrompt())
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", ErrSkipTick
	}

	id, err := platform.Post(ctx, text)
	if err != nil {
		return "", err
	}
	l.lastPost = time.Now()
	return "posted " + id, nil
}

// handleReplyToTweet answers the next timeline post. The agent's own posts
// are not replied to; instead their replies are queued for later ticks.
func (l *Loop) handleReplyToTweet(ctx context.Context, _ Task) (string, error) {
	platform, err := l.manager.FirstPlatform()
	if err != nil {
		return "", err
	}

	post, err := l.nextPost(ctx, platform)
	if err != nil {
		return "", err
	}
	if post == nil {
		return "", ErrSkipTick
	}

	own, err := l.isOwnPost(ctx, platform, post)
	if err != nil {
		return "", err
	}
	if own {
		return l.queueOwnReplies(ctx, platform, post)
	}

	client, err := l.manager.FirstLLM()
	if err != nil {
		return "", err
	}
	text, err := llm.GenerateText(ctx, client, replyPrompt(l.profile.Name, post.Text), l.profile.SystemPrompt())
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", ErrSkipTick
	}

	id, err := platform.Reply(ctx, post.ID, text)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("replied to %s with %s", post.ID, id), nil
}

// handleLikeTweet likes the next timeline post.
func (l *Loop) handleLikeTweet(ctx context.Context, _ Task) (string, error) {
	platform, err := l.manager.FirstPlatform()
	if err != nil {
		return "", err
	}

	post, err := l.nextPost(ctx, platform)
	if err != nil {
		return "", err
	}
	if post == nil {
		return "", ErrSkipTick
	}

	if err := platform.Like(ctx, post.ID); err != nil {
		return "", err
	}
	return "liked " + post.ID, nil
}

// nextPost pops the timeline queue, refilling it from the platform when
// empty. Returns nil when the platform has nothing to offer either.
func (l *Loop) nextPost(ctx context.Context, platform social.Platform) (*social.Post, error) {
	if len(l.timeline) == 0 {
		count := l.twitterOptions().ReadCount()
		l.log.Debug().Int("count", count).Msg("reading timeline")
		posts, err := platform.Timeline(ctx, count)
		if err != nil {
			return nil, err
		}
		l.timeline = posts
	}
	if len(l.timeline) == 0 {
		return nil, nil
	}
	post := l.timeline[0]
	l.timeline = l.timeline[1:]
	return &post, nil
}

// isOwnPost reports whether the post was authored by the agent's own
// account. The identity is fetched once per run and cached.
func (l *Loop) isOwnPost(ctx context.Context, platform social.Platform, post *social.Post) (bool, error) {
	if l.self == nil {
		me, err := platform.Me(ctx)
		if err != nil {
			return false, fmt.Errorf("resolving own identity: %w", err)
		}
		l.self = me
	}
	if post.AuthorID != "" && post.AuthorID == l.self.ID {
		return true, nil
	}
	return post.AuthorUsername != "" && strings.EqualFold(post.AuthorUsername, l.self.Username), nil
}

// queueOwnReplies pulls replies to the agent's own post into the timeline
// queue, capped at own_tweet_replies_count, so later ticks can answer them.
func (l *Loop) queueOwnReplies(ctx context.Context, platform social.Platform, post *social.Post) (string, error) {
	limit := l.twitterOptions().OwnReplies()
	if limit <= 0 {
		return "", ErrSkipTick
	}

	replies, err := platform.Replies(ctx, post.ID, limit)
	if err != nil {
		return "", err
	}
	if len(replies) > limit {
		replies = replies[:limit]
	}
	if len(replies) == 0 {
		return "", ErrSkipTick
	}

	l.timeline = append(l.timeline, replies...)
	return fmt.Sprintf("queued %d replies to own post %s", len(replies), post.ID), nil
}

func postPrompt(name string) string {
	return "Generate an engaging tweet. Don't include any hashtags, links or emojis. " +
		"Keep it under 280 characters. The tweet should be pure commentary; do not shill any " +
		"coins or projects apart from " + name + ", and do not repeat any of the example " +
		"tweets. Avoid the words AI and crypto."
}

func replyPrompt(name, text string) string {
	return "Generate a friendly, engaging reply to this tweet: " + text + ". " +
		"Keep it under 280 characters. Don't include any usernames, hashtags, links or emojis. " +
		"The reply should be pure commentary; do not shill any coins or projects apart from " +
		name + ", and do not repeat any of the example tweets. Avoid the words AI and crypto."
}
