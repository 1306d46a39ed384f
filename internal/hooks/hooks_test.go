package hooks

import (
	"context"
	"errors"
	"testing"

	"github.com/blorm-network/zerepy/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager() *Manager {
	return NewManager(logging.New(nil, "silent"))
}

func TestManager_On_And_Emit(t *testing.T) {
	m := testManager()

	var called bool
	m.On(EventLoopStarted, "test", func(_ context.Context, p Payload) error {
		called = true
		assert.Equal(t, EventLoopStarted, p.Event)
		return nil
	})

	m.Emit(context.Background(), EventLoopStarted, nil)
	assert.True(t, called)
}

func TestManager_Emit_MultipleHandlers(t *testing.T) {
	m := testManager()

	var order []string
	m.On(EventLoopTick, "first", func(_ context.Context, _ Payload) error {
		order = append(order, "first")
		return nil
	})
	m.On(EventLoopTick, "second", func(_ context.Context, _ Payload) error {
		order = append(order, "second")
		return nil
	})

	m.Emit(context.Background(), EventLoopTick, nil)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestManager_Emit_WithData(t *testing.T) {
	m := testManager()

	var gotData map[string]any
	m.On(EventActionCompleted, "test", func(_ context.Context, p Payload) error {
		gotData = p.Data
		return nil
	})

	m.Emit(context.Background(), EventActionCompleted, map[string]any{
		"task":       "post-tweet",
		"connection": "twitter",
	})

	assert.Equal(t, "post-tweet", gotData["task"])
	assert.Equal(t, "twitter", gotData["connection"])
}

func TestManager_Emit_HandlerError(t *testing.T) {
	m := testManager()

	var secondCalled bool
	m.On(EventLoopStarted, "failing", func(_ context.Context, _ Payload) error {
		return errors.New("handler broke")
	})
	m.On(EventLoopStarted, "second", func(_ context.Context, _ Payload) error {
		secondCalled = true
		return nil
	})

	// Should not panic; second handler should still run
	m.Emit(context.Background(), EventLoopStarted, nil)
	assert.True(t, secondCalled)
}

func TestManager_Emit_NoHandlers(t *testing.T) {
	m := testManager()
	// Should not panic
	m.Emit(context.Background(), EventLoopStopped, nil)
}

func TestManager_Off(t *testing.T) {
	m := testManager()

	var callCount int
	m.On(EventLoopStarted, "removable", func(_ context.Context, _ Payload) error {
		callCount++
		return nil
	})

	m.Emit(context.Background(), EventLoopStarted, nil)
	assert.Equal(t, 1, callCount)

	m.Off(EventLoopStarted, "removable")
	m.Emit(context.Background(), EventLoopStarted, nil)
	assert.Equal(t, 1, callCount) // should not have been called again
}

func TestManager_Off_KeepsOthers(t *testing.T) {
	m := testManager()

	var keepCalled int
	m.On(EventLoopStarted, "remove-me", func(_ context.Context, _ Payload) error { return nil })
	m.On(EventLoopStarted, "keep-me", func(_ context.Context, _ Payload) error {
		keepCalled++
		return nil
	})

	m.Off(EventLoopStarted, "remove-me")
	m.Emit(context.Background(), EventLoopStarted, nil)
	assert.Equal(t, 1, keepCalled)
}

func TestManager_Count(t *testing.T) {
	m := testManager()

	assert.Equal(t, 0, m.Count(EventLoopStarted))

	m.On(EventLoopStarted, "h1", func(_ context.Context, _ Payload) error { return nil })
	assert.Equal(t, 1, m.Count(EventLoopStarted))

	m.On(EventLoopStarted, "h2", func(_ context.Context, _ Payload) error { return nil })
	assert.Equal(t, 2, m.Count(EventLoopStarted))
}

func TestManager_Events(t *testing.T) {
	m := testManager()

	m.On(EventLoopStarted, "h1", func(_ context.Context, _ Payload) error { return nil })
	m.On(EventActionCompleted, "h2", func(_ context.Context, _ Payload) error { return nil })

	events := m.Events()
	assert.Len(t, events, 2)
	assert.Contains(t, events, EventLoopStarted)
	assert.Contains(t, events, EventActionCompleted)
}

func TestAllEvents_NotEmpty(t *testing.T) {
	require.NotEmpty(t, AllEvents)
	assert.Contains(t, AllEvents, EventLoopStarted)
	assert.Contains(t, AllEvents, EventActionCompleted)
}
