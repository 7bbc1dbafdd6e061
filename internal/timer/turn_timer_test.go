package timer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamehub/internal/event"
	"gamehub/internal/game"
	"gamehub/internal/logging"
)

type scheduled struct {
	ev    any
	delay time.Duration
}

// recordingScheduler never fires; it only remembers what was asked of it.
type recordingScheduler struct {
	next      Handle
	scheduled map[Handle]scheduled
	cancelled []Handle
}

func newRecordingScheduler() *recordingScheduler {
	return &recordingScheduler{scheduled: make(map[Handle]scheduled)}
}

func (s *recordingScheduler) Schedule(ev any, delay time.Duration) Handle {
	s.next++
	s.scheduled[s.next] = scheduled{ev: ev, delay: delay}
	return s.next
}

func (s *recordingScheduler) Cancel(h Handle) {
	s.cancelled = append(s.cancelled, h)
}

func TestStartSchedulesTimeoutAndReminders(t *testing.T) {
	sched := newRecordingScheduler()
	tt := NewTurnTimer(7, 5*time.Second, []time.Duration{time.Second, 2 * time.Second}, sched)

	tt.Start("p1", []string{"p1", "p2"})

	require.Len(t, sched.scheduled, 3)
	assert.Equal(t, scheduled{TurnTimeout{RoomID: 7, PlayerID: "p1"}, 5 * time.Second}, sched.scheduled[1])
	assert.Equal(t, scheduled{TurnTimerAlert{RoomID: 7, PlayerID: "p1", SecondsRemaining: 2, Recipients: []string{"p1", "p2"}}, 3 * time.Second}, sched.scheduled[2])
	assert.Equal(t, scheduled{TurnTimerAlert{RoomID: 7, PlayerID: "p1", SecondsRemaining: 1, Recipients: []string{"p1", "p2"}}, 4 * time.Second}, sched.scheduled[3])
	assert.Empty(t, sched.cancelled)
}

func TestCancelDropsPlayersHandles(t *testing.T) {
	sched := newRecordingScheduler()
	tt := NewTurnTimer(7, 5*time.Second, []time.Duration{time.Second, 2 * time.Second}, sched)

	tt.Start("p1", []string{"p1", "p2"})
	tt.Cancel("p1")
	assert.ElementsMatch(t, []Handle{1, 2, 3}, sched.cancelled)

	tt.Cancel("p1")
	assert.Len(t, sched.cancelled, 3)
	assert.Empty(t, tt.Active())
}

func TestResetCancelsEveryPlayer(t *testing.T) {
	sched := newRecordingScheduler()
	tt := NewTurnTimer(7, 5*time.Second, []time.Duration{time.Second, 2 * time.Second}, sched)

	tt.Start("p1", []string{"p1", "p2"})
	tt.Start("p2", []string{"p1", "p2"})
	assert.Equal(t, []string{"p1", "p2"}, tt.Active())

	tt.Reset()
	assert.Len(t, sched.cancelled, 6)
	assert.Empty(t, tt.Active())
}

func TestRestartCancelsPreviousHandles(t *testing.T) {
	sched := newRecordingScheduler()
	tt := NewTurnTimer(1, 10*time.Second, []time.Duration{5 * time.Second}, sched)

	tt.Start("p1", nil)
	tt.Start("p1", nil)

	assert.ElementsMatch(t, []Handle{1, 2}, sched.cancelled)
	assert.Len(t, sched.scheduled, 4)
}

func TestReminderOffsetsAreFiltered(t *testing.T) {
	sched := newRecordingScheduler()
	tt := NewTurnTimer(1, 5*time.Second, []time.Duration{time.Second, time.Second, 5 * time.Second, 0}, sched)
	tt.Start("p1", nil)
	assert.Len(t, sched.scheduled, 2)
}

func TestRegistryRoutesLifecycleEvents(t *testing.T) {
	sched := newRecordingScheduler()
	bus := event.NewBus()
	reg := NewRegistry(logging.Nop())
	reg.Add(1, NewTurnTimer(1, 5*time.Second, []time.Duration{time.Second}, sched))
	reg.Subscribe(bus)
	ctx := context.Background()

	require.NoError(t, bus.Publish(ctx, game.GameStarted{RoomID: 1}))
	require.NoError(t, bus.Publish(ctx, game.TurnStarted{RoomID: 1, PlayerID: "a", Recipients: []string{"a", "b"}}))
	assert.Len(t, sched.scheduled, 2)

	require.NoError(t, bus.Publish(ctx, game.TurnEnded{RoomID: 1, PlayerID: "a"}))
	assert.ElementsMatch(t, []Handle{1, 2}, sched.cancelled)

	require.NoError(t, bus.Publish(ctx, game.TurnStarted{RoomID: 1, PlayerID: "b"}))
	require.NoError(t, bus.Publish(ctx, game.GameEnded{RoomID: 1}))
	assert.ElementsMatch(t, []Handle{1, 2, 3, 4}, sched.cancelled)

	// unknown rooms are ignored
	require.NoError(t, bus.Publish(ctx, game.TurnStarted{RoomID: 99, PlayerID: "a"}))
	assert.Len(t, sched.scheduled, 4)
}
