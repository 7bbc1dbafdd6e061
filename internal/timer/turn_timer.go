package timer

import (
	"slices"
	"time"

	"github.com/samber/lo"
)

// TurnTimeout fires when a player's turn runs out.
type TurnTimeout struct {
	RoomID   int
	PlayerID string
}

// TurnTimerAlert reminds Recipients how long the active player has left.
type TurnTimerAlert struct {
	RoomID           int
	PlayerID         string
	SecondsRemaining int
	Recipients       []string
}

// TurnTimer tracks the scheduled timeout and reminders of each player in one room.
// It is only used from the event loop.
type TurnTimer struct {
	roomID    int
	timeout   time.Duration
	reminders []time.Duration
	scheduler Scheduler
	handles   map[string][]Handle
}

// NewTurnTimer builds a timer for roomID. reminders are offsets before the
// timeout; duplicates and offsets outside (0, timeout) are ignored.
func NewTurnTimer(roomID int, timeout time.Duration, reminders []time.Duration, scheduler Scheduler) *TurnTimer {
	offsets := lo.Uniq(lo.Filter(reminders, func(d time.Duration, _ int) bool { return d > 0 && d < timeout }))
	slices.Sort(offsets)
	slices.Reverse(offsets)
	return &TurnTimer{
		roomID:    roomID,
		timeout:   timeout,
		reminders: offsets,
		scheduler: scheduler,
		handles:   make(map[string][]Handle),
	}
}

// Start (re)arms playerID's turn: a timeout plus one alert per reminder offset.
func (t *TurnTimer) Start(playerID string, recipients []string) {
	t.Cancel(playerID)
	handles := make([]Handle, 0, len(t.reminders)+1)
	handles = append(handles, t.scheduler.Schedule(TurnTimeout{RoomID: t.roomID, PlayerID: playerID}, t.timeout))
	for _, offset := range t.reminders {
		alert := TurnTimerAlert{
			RoomID:           t.roomID,
			PlayerID:         playerID,
			SecondsRemaining: int(offset / time.Second),
			Recipients:       slices.Clone(recipients),
		}
		handles = append(handles, t.scheduler.Schedule(alert, t.timeout-offset))
	}
	t.handles[playerID] = handles
}

// Cancel drops every pending event for playerID.
func (t *TurnTimer) Cancel(playerID string) {
	for _, h := range t.handles[playerID] {
		t.scheduler.Cancel(h)
	}
	delete(t.handles, playerID)
}

// Reset drops every pending event in the room.
func (t *TurnTimer) Reset() {
	for playerID := range t.handles {
		t.Cancel(playerID)
	}
}

// Active lists players with pending events.
func (t *TurnTimer) Active() []string {
	ids := lo.Keys(t.handles)
	slices.Sort(ids)
	return ids
}
