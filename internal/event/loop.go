package event

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"
)

var (
	// ErrLoopClosed is returned by Post once the loop has been closed.
	ErrLoopClosed = errors.New("event loop closed")
	// ErrLoopFull is returned by TryPost while the queue is at capacity.
	ErrLoopFull = errors.New("event loop full")
)

// Task is a unit of work executed on the loop goroutine.
type Task func(ctx context.Context)

// Loop serialises tasks onto a single goroutine. Transports, timers and other
// producers only Post; every handler therefore runs one task at a time.
type Loop struct {
	tasks  chan Task
	logger runtime.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// NewLoop returns a loop with the given queue capacity.
func NewLoop(capacity int, logger runtime.Logger) *Loop {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Loop{
		tasks:  make(chan Task, capacity),
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Post enqueues a task. It blocks while the queue is full.
func (l *Loop) Post(task Task) error {
	select {
	case <-l.done:
		return ErrLoopClosed
	default:
	}
	select {
	case l.tasks <- task:
		return nil
	case <-l.done:
		return ErrLoopClosed
	}
}

// TryPost enqueues a task without blocking. Goroutines that also drain the
// loop must use it, since a blocking Post from the consumer never returns.
func (l *Loop) TryPost(task Task) error {
	select {
	case <-l.done:
		return ErrLoopClosed
	default:
	}
	select {
	case l.tasks <- task:
		return nil
	default:
		return ErrLoopFull
	}
}

// Publish posts a task that publishes ev on bus and logs any handler error.
func (l *Loop) Publish(bus *Bus, ev any) error {
	return l.Post(l.publishTask(bus, ev))
}

// TryPublish is Publish through TryPost.
func (l *Loop) TryPublish(bus *Bus, ev any) error {
	return l.TryPost(l.publishTask(bus, ev))
}

func (l *Loop) publishTask(bus *Bus, ev any) Task {
	return func(ctx context.Context) {
		if err := bus.Publish(ctx, ev); err != nil {
			l.logger.Error("Loop: publish %T failed: %v", ev, err)
		}
	}
}

// Run executes tasks until ctx is cancelled or the loop is closed.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case task := <-l.tasks:
			l.exec(ctx, task)
		}
	}
}

// Drain executes every task queued at the time of the call without blocking
// and returns how many ran. Hosts that own their own tick use it instead of Run.
func (l *Loop) Drain(ctx context.Context) int {
	n := len(l.tasks)
	for i := 0; i < n; i++ {
		select {
		case task := <-l.tasks:
			l.exec(ctx, task)
		default:
			return i
		}
	}
	return n
}

// Len reports how many tasks are queued.
func (l *Loop) Len() int { return len(l.tasks) }

// Close stops accepting tasks and releases a running Run call.
func (l *Loop) Close() {
	l.closeOnce.Do(func() { close(l.done) })
}

func (l *Loop) exec(ctx context.Context, task Task) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Loop: task panicked: %v", fmt.Sprint(r))
		}
	}()
	task(ctx)
}
