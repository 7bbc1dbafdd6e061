// Package timer schedules delayed events onto the event loop and keeps the
// per-room turn timers that drive reminders and timeouts.
package timer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RussellLuo/timingwheel"
	"github.com/heroiclabs/nakama-common/runtime"

	"gamehub/internal/event"
)

// Handle identifies a scheduled event. The zero Handle is never issued.
type Handle uint64

// Scheduler publishes an event after a delay unless cancelled first.
type Scheduler interface {
	Schedule(ev any, delay time.Duration) Handle
	// Cancel is idempotent and a no-op once the event was delivered.
	Cancel(h Handle)
}

const (
	defaultTick      = 100 * time.Millisecond
	defaultWheelSize = 64
)

type WheelOption func(*WheelScheduler)

func WithTick(d time.Duration) WheelOption {
	return func(s *WheelScheduler) {
		if d > 0 {
			s.tick = d
		}
	}
}

func WithWheelSize(size int64) WheelOption {
	return func(s *WheelScheduler) {
		if size > 0 {
			s.wheelSize = size
		}
	}
}

type wheelEntry struct {
	timer     *timingwheel.Timer
	cancelled atomic.Bool
}

// WheelScheduler runs delays on a hierarchical timing wheel. An expired delay
// only posts a task to the loop; the task checks the cancelled flag again
// before publishing, so a Cancel issued on the loop ahead of it always wins.
type WheelScheduler struct {
	loop   *event.Loop
	bus    *event.Bus
	logger runtime.Logger

	tick      time.Duration
	wheelSize int64
	tw        *timingwheel.TimingWheel

	mu      sync.Mutex
	entries map[Handle]*wheelEntry
	nextID  atomic.Uint64

	stopOnce sync.Once
}

var _ Scheduler = (*WheelScheduler)(nil)

// NewWheelScheduler starts the wheel. Call Stop to release its goroutines.
func NewWheelScheduler(loop *event.Loop, bus *event.Bus, logger runtime.Logger, opts ...WheelOption) *WheelScheduler {
	s := &WheelScheduler{
		loop:      loop,
		bus:       bus,
		logger:    logger,
		tick:      defaultTick,
		wheelSize: defaultWheelSize,
		entries:   make(map[Handle]*wheelEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tw = timingwheel.NewTimingWheel(s.tick, s.wheelSize)
	s.tw.Start()
	return s
}

func (s *WheelScheduler) Schedule(ev any, delay time.Duration) Handle {
	h := Handle(s.nextID.Add(1))
	entry := &wheelEntry{}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[h] = entry
	entry.timer = s.tw.AfterFunc(delay, func() {
		if entry.cancelled.Load() {
			return
		}
		err := s.loop.Post(func(ctx context.Context) {
			s.forget(h)
			if entry.cancelled.Load() {
				return
			}
			if err := s.bus.Publish(ctx, ev); err != nil {
				s.logger.Error("WheelScheduler: publish %T failed: %v", ev, err)
			}
		})
		if err != nil {
			s.logger.Warn("WheelScheduler: dropping %T: %v", ev, err)
		}
	})
	return h
}

func (s *WheelScheduler) Cancel(h Handle) {
	s.mu.Lock()
	entry, ok := s.entries[h]
	delete(s.entries, h)
	s.mu.Unlock()
	if !ok {
		return
	}
	entry.cancelled.Store(true)
	if entry.timer != nil {
		entry.timer.Stop()
	}
}

// Pending reports how many scheduled events have neither fired nor been cancelled.
func (s *WheelScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Run blocks until ctx is done, then stops the wheel.
func (s *WheelScheduler) Run(ctx context.Context) error {
	<-ctx.Done()
	s.Stop()
	return nil
}

// Stop cancels everything pending and stops the wheel.
func (s *WheelScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		handles := make([]Handle, 0, len(s.entries))
		for h := range s.entries {
			handles = append(handles, h)
		}
		s.mu.Unlock()
		for _, h := range handles {
			s.Cancel(h)
		}
		s.tw.Stop()
	})
}

func (s *WheelScheduler) forget(h Handle) {
	s.mu.Lock()
	delete(s.entries, h)
	s.mu.Unlock()
}
