// Package queue runs command executions through per-command worker pools
// with rate limiting and bounded retries. Tasks live in memory only; an
// update lost to a restart is simply re-sent by the user.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/DisaAst/chathub-bot/internal/commands"
	"github.com/DisaAst/chathub-bot/internal/logger"
	"github.com/DisaAst/chathub-bot/internal/telegram"
)

const taskBufferSize = 128

// ErrQueueFull is returned when a command's task buffer cannot accept
// another update.
var ErrQueueFull = fmt.Errorf("queue is full")

type Task struct {
	Command    string
	Update     telegram.Update
	RetryCount int
	MaxRetries int
	RetryDelay time.Duration
}

type Queue struct {
	mu       sync.RWMutex
	tasks    map[string]chan Task
	limiters map[string]*rate.Limiter
	logger   logger.Logger
}

func NewQueue(log logger.Logger) *Queue {
	return &Queue{
		tasks:    make(map[string]chan Task),
		limiters: make(map[string]*rate.Limiter),
		logger:   log,
	}
}

// Add enqueues one update for a command. Non-blocking: a full buffer is
// reported to the caller instead of stalling the update loop.
func (q *Queue) Add(cmd commands.Command, update telegram.Update, maxRetries int, retryDelay time.Duration) error {
	cmdName := cmd.Name()
	if cmdName == "" {
		return fmt.Errorf("command name cannot be empty")
	}

	q.mu.RLock()
	ch, ok := q.tasks[cmdName]
	q.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no queue registered for command %q", cmdName)
	}

	task := Task{
		Command:    cmdName,
		Update:     update,
		MaxRetries: maxRetries,
		RetryDelay: retryDelay,
	}

	select {
	case ch <- task:
		q.logger.WithFields(logger.Fields{
			"command":   cmdName,
			"update_id": update.UpdateID,
		}).Debug("Task added to queue")
		return nil
	default:
		q.logger.WithField("command", cmdName).Warn("Queue full, dropping task")
		return ErrQueueFull
	}
}

func (q *Queue) Start(ctx context.Context, handlers map[string]commands.Command) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for cmd, handler := range handlers {
		cfg := handler.GetQueueConfig()

		interval := cfg.Throttle.Period / time.Duration(cfg.Throttle.Requests)
		q.logger.WithFields(logger.Fields{
			"command":     cmd,
			"period":      cfg.Throttle.Period,
			"requests":    cfg.Throttle.Requests,
			"interval":    interval,
			"concurrency": cfg.Throttle.Concurrency,
		}).Info("Configured rate limiter")

		q.tasks[cmd] = make(chan Task, taskBufferSize)
		q.limiters[cmd] = rate.NewLimiter(
			rate.Every(interval),
			cfg.Throttle.Requests,
		)

		for range cfg.Throttle.Concurrency {
			go q.taskWorker(ctx, cmd, handler)
		}
	}
}

func (q *Queue) taskWorker(ctx context.Context, command string, handler commands.Command) {
	log := q.logger.WithField("command", command)
	log.Debug("Worker started")
	defer func() {
		log.Debug("Worker stopped")
		if r := recover(); r != nil {
			log.Error(fmt.Sprintf("recovered from panic: %v", r))
		}
	}()

	q.mu.RLock()
	tasks := q.tasks[command]
	limiter := q.limiters[command]
	q.mu.RUnlock()

	for {
		select {
		case <-ctx.Done():
			return
		case task := <-tasks:
			reserve := limiter.Reserve()
			if delay := reserve.Delay(); delay > 0 {
				log.WithFields(logger.Fields{
					"update_id": task.Update.UpdateID,
					"wait_for":  delay.String(),
				}).Debug("Rate limiting - delaying task")

				select {
				case <-time.After(delay):
				case <-ctx.Done():
					reserve.Cancel()
					return
				}
			}

			if err := q.handleTask(ctx, task, handler); err != nil {
				log.WithError(err).WithField("update_id", task.Update.UpdateID).Error("Task processing failed")
			}
		}
	}
}

func (q *Queue) handleTask(ctx context.Context, task Task, handler commands.Command) error {
	cfg := handler.GetQueueConfig()
	log := q.logger.WithFields(logger.Fields{
		"command":   task.Command,
		"update_id": task.Update.UpdateID,
	})

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	start := time.Now()
	log.WithField("timeout", cfg.Timeout.String()).Debug("Start processing task")

	resultCh := make(chan error, 1)
	go func() {
		resultCh <- handler.Execute(task.Update)
	}()

	var err error
	select {
	case err = <-resultCh:
	case <-ctx.Done():
		log.WithFields(logger.Fields{
			"actual_duration": time.Since(start).String(),
			"retry_count":     task.RetryCount,
		}).Warn("Execution timeout exceeded")
		err = ctx.Err()
	}

	if err != nil {
		return q.handleTaskError(task, log, err)
	}

	log.WithField("duration", time.Since(start).String()).Debug("Task completed")
	return nil
}

func (q *Queue) handleTaskError(task Task, log logger.Logger, cause error) error {
	if task.RetryCount >= task.MaxRetries {
		log.WithError(cause).Warn("Max retries exceeded, dropping task")
		return cause
	}

	task.RetryCount++
	log.WithFields(logger.Fields{
		"retry_count": task.RetryCount,
		"max_retries": task.MaxRetries,
		"retry_delay": task.RetryDelay.String(),
	}).Info("Task rescheduled")

	q.mu.RLock()
	tasks := q.tasks[task.Command]
	q.mu.RUnlock()

	time.AfterFunc(task.RetryDelay, func() {
		select {
		case tasks <- task:
		default:
			log.Warn("Queue full, dropping rescheduled task")
		}
	})
	return nil
}
