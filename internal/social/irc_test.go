package social

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blorm-network/zerepy/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.New(nil, "silent")
}

func newTestIRCClient(cfg IRCConfig) *IRCClient {
	return NewIRCClient(cfg, testLogger())
}

func TestNewIRCClientDefaults(t *testing.T) {
	c := newTestIRCClient(IRCConfig{Server: "irc.libera.chat", Nick: "zerebot", Channel: "#agents"})
	assert.Equal(t, "irc", c.Name())
	assert.Equal(t, 50, c.cfg.HistorySize)
	assert.NotZero(t, c.cfg.ConnectGrace)
}

func TestIRCPostNotConnected(t *testing.T) {
	c := newTestIRCClient(IRCConfig{})
	_, err := c.Post(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
}

func TestIRCUnsupportedOperations(t *testing.T) {
	c := newTestIRCClient(IRCConfig{})

	err := c.Like(context.Background(), "some-id")
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = c.Replies(context.Background(), "some-id", 5)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestIRCMeNotConnected(t *testing.T) {
	c := newTestIRCClient(IRCConfig{Nick: "zerebot"})
	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "zerebot", me.Username)
}

func TestIRCTimelineNewestFirst(t *testing.T) {
	c := newTestIRCClient(IRCConfig{HistorySize: 10})
	c.record(Post{ID: "1", Text: "first", AuthorUsername: "alice"})
	c.record(Post{ID: "2", Text: "second", AuthorUsername: "bob"})
	c.record(Post{ID: "3", Text: "third", AuthorUsername: "carol"})

	posts, err := c.Timeline(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "3", posts[0].ID)
	assert.Equal(t, "2", posts[1].ID)
}

func TestIRCTimelineCountLargerThanHistory(t *testing.T) {
	c := newTestIRCClient(IRCConfig{HistorySize: 10})
	c.record(Post{ID: "1"})

	posts, err := c.Timeline(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestIRCHistoryRingBuffer(t *testing.T) {
	c := newTestIRCClient(IRCConfig{HistorySize: 3})
	for i := 1; i <= 5; i++ {
		c.record(Post{ID: fmt.Sprintf("%d", i)})
	}

	posts, err := c.Timeline(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "5", posts[0].ID)
	assert.Equal(t, "3", posts[2].ID, "oldest entries should be dropped")
}

func TestIRCFindAuthor(t *testing.T) {
	c := newTestIRCClient(IRCConfig{})
	c.record(Post{ID: "abc", AuthorUsername: "alice"})

	nick, ok := c.findAuthor("abc")
	assert.True(t, ok)
	assert.Equal(t, "alice", nick)

	_, ok = c.findAuthor("ghost")
	assert.False(t, ok)
}

func TestSplitIRCMessage_Short(t *testing.T) {
	assert.Equal(t, []string{"hello world"}, splitIRCMessage("hello world", 400))
}

func TestSplitIRCMessage_MultiLine(t *testing.T) {
	result := splitIRCMessage("line one\nline two", 400)
	assert.Equal(t, []string{"line one", "line two"}, result)
}

func TestSplitIRCMessage_LongLine(t *testing.T) {
	result := splitIRCMessage("abcdefghijklmnopqrstuvwxyz", 10)
	assert.Equal(t, []string{"abcdefghij", "klmnopqrst", "uvwxyz"}, result)
}

func TestSplitIRCMessage_SkipsBlankLines(t *testing.T) {
	result := splitIRCMessage("one\n\ntwo", 400)
	assert.Equal(t, []string{"one", "two"}, result)
}

func TestSplitIRCMessage_Empty(t *testing.T) {
	assert.Equal(t, []string{""}, splitIRCMessage("", 400))
}
