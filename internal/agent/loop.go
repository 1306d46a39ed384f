package agent

import (
	"context"
	"errors"
	"time"

	"github.com/blorm-network/zerepy/internal/connection"
	"github.com/blorm-network/zerepy/internal/hooks"
	"github.com/blorm-network/zerepy/internal/logging"
	"github.com/blorm-network/zerepy/internal/social"
)

// ErrSkipTick signals that a task handler had nothing to do this tick.
// The loop logs the skip and waits for the next tick.
var ErrSkipTick = errors.New("tick skipped")

// TaskHandler performs one task and returns a short human-readable result.
type TaskHandler func(ctx context.Context, task Task) (string, error)

// LoopOptions tunes loop construction.
type LoopOptions struct {
	Seed  int64          // task selection seed; 0 derives one from the clock
	Delay time.Duration  // tick delay override; 0 uses the profile's loop_delay
	Hooks *hooks.Manager // optional; a fresh manager is created when nil
}

// Loop drives one agent: once per delay it selects a weighted task and
// dispatches it to the registered handler. All tick state is owned by the
// goroutine that calls Run and is deliberately unsynchronized.
type Loop struct {
	profile  *Profile
	manager  *connection.Manager
	log      *logging.Logger
	hooks    *hooks.Manager
	selector *TaskSelector
	delay    time.Duration
	handlers map[string]TaskHandler

	// tick state, owned by Run
	timeline []social.Post
	lastPost time.Time
	self     *social.User
}

// NewLoop constructs a loop for the profile with the built-in task handlers
// registered. Fails with *EmptyTaskSetError when the profile has no tasks.
func NewLoop(profile *Profile, manager *connection.Manager, log *logging.Logger, opts LoopOptions) (*Loop, error) {
	selector, err := NewTaskSelector(profile.Tasks, opts.Seed)
	if err != nil {
		return nil, err
	}

	delay := opts.Delay
	if delay <= 0 {
		delay = time.Duration(profile.LoopDelay) * time.Second
	}
	hk := opts.Hooks
	if hk == nil {
		hk = hooks.NewManager(log)
	}

	l := &Loop{
		profile:  profile,
		manager:  manager,
		log:      log.Sub("loop"),
		hooks:    hk,
		selector: selector,
		delay:    delay,
	}
	l.handlers = map[string]TaskHandler{
		"post-tweet":     l.handlePostTweet,
		"reply-to-tweet": l.handleReplyToTweet,
		"like-tweet":     l.handleLikeTweet,
	}
	return l, nil
}

// RegisterHandler adds or replaces the handler for a task name. Call before
// Run; the registry is not synchronized.
func (l *Loop) RegisterHandler(name string, handler TaskHandler) {
	l.handlers[name] = handler
}

// Hooks returns the loop's hook manager for event subscriptions.
func (l *Loop) Hooks() *hooks.Manager { return l.hooks }

// Run ticks until ctx is canceled. Cancellation is honored at tick
// boundaries; a tick in flight finishes first. Returns nil after a clean
// stop.
func (l *Loop) Run(ctx context.Context) error {
	l.log.Info().Str("agent", l.profile.Name).Dur("delay", l.delay).Msg("agent loop started")
	l.hooks.Emit(ctx, hooks.EventLoopStarted, map[string]any{"agent": l.profile.Name})

	ticks := 0
	defer func() {
		l.log.Info().Int("ticks", ticks).Msg("agent loop stopped")
		l.hooks.Emit(ctx, hooks.EventLoopStopped, map[string]any{
			"agent": l.profile.Name,
			"ticks": ticks,
		})
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}
		ticks++
		l.tick(ctx, ticks)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.delay):
		}
	}
}

func (l *Loop) tick(ctx context.Context, n int) {
	task := l.selector.Next()
	l.hooks.Emit(ctx, hooks.EventLoopTick, map[string]any{"tick": n, "task": task.Name})

	handler, ok := l.handlers[task.Name]
	if !ok {
		l.log.Warn().Str("task", task.Name).Msg("no handler for task, skipping tick")
		return
	}

	result, err := handler(ctx, task)
	switch {
	case errors.Is(err, ErrSkipTick):
		l.log.Info().Str("task", task.Name).Msg("nothing to do this tick")
	case err != nil:
		l.log.Error().Err(err).Str("task", task.Name).Msg("task failed")
		l.hooks.Emit(ctx, hooks.EventActionFailed, map[string]any{
			"task":  task.Name,
			"error": err.Error(),
		})
	default:
		l.log.Info().Str("task", task.Name).Str("result", result).Msg("task completed")
		l.hooks.Emit(ctx, hooks.EventActionCompleted, map[string]any{
			"task":   task.Name,
			"result": result,
		})
	}
}
