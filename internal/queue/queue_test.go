package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DisaAst/chathub-bot/internal/commands"
	"github.com/DisaAst/chathub-bot/internal/logger"
	"github.com/DisaAst/chathub-bot/internal/telegram"
)

type countingCommand struct {
	name     string
	executed atomic.Int32
	failures atomic.Int32
	failN    int32
	done     chan struct{}
}

func (c *countingCommand) Name() string                 { return c.name }
func (c *countingCommand) Aliases() []string            { return nil }
func (c *countingCommand) Handle(telegram.Update) error { return nil }

func (c *countingCommand) GetQueueConfig() commands.QueueConfig {
	return commands.QueueConfig{
		MaxRetries: 3,
		RetryDelay: 10 * time.Millisecond,
		Timeout:    time.Second,
		Throttle: commands.ThrottleConfig{
			Period:      time.Second,
			Requests:    100,
			Concurrency: 2,
		},
	}
}

func (c *countingCommand) Execute(telegram.Update) error {
	n := c.executed.Add(1)
	if c.failures.Load() < c.failN {
		c.failures.Add(1)
		return errors.New("transient failure")
	}
	if c.done != nil && n >= 1 {
		select {
		case c.done <- struct{}{}:
		default:
		}
	}
	return nil
}

func TestQueue_ExecutesTask(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := &countingCommand{name: "ask", done: make(chan struct{}, 1)}
	q := NewQueue(logger.NewTestLogger())
	q.Start(ctx, map[string]commands.Command{"ask": cmd})

	require.NoError(t, q.Add(cmd, telegram.Update{UpdateID: 1}, 3, 10*time.Millisecond))

	select {
	case <-cmd.done:
	case <-time.After(2 * time.Second):
		t.Fatal("task was not executed")
	}
	assert.GreaterOrEqual(t, cmd.executed.Load(), int32(1))
}

func TestQueue_RetriesFailedTask(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := &countingCommand{name: "ask", failN: 2, done: make(chan struct{}, 1)}
	q := NewQueue(logger.NewTestLogger())
	q.Start(ctx, map[string]commands.Command{"ask": cmd})

	require.NoError(t, q.Add(cmd, telegram.Update{UpdateID: 1}, 3, 10*time.Millisecond))

	select {
	case <-cmd.done:
	case <-time.After(2 * time.Second):
		t.Fatal("task was not retried to completion")
	}
	// Two failures plus the final success.
	assert.Equal(t, int32(3), cmd.executed.Load())
}

func TestQueue_AddUnknownCommand(t *testing.T) {
	q := NewQueue(logger.NewTestLogger())
	cmd := &countingCommand{name: "ask"}

	err := q.Add(cmd, telegram.Update{UpdateID: 1}, 3, time.Millisecond)
	assert.Error(t, err)
}
