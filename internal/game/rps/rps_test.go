package rps

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamehub/internal/game"
)

func start(t *testing.T) game.State {
	t.Helper()
	s, err := Logic{}.InitialState([]string{"Alice", "Bob"})
	require.NoError(t, err)
	return s
}

func mustMove(t *testing.T, s game.State, player string, sel Selection) game.State {
	t.Helper()
	next, err := Logic{}.MakeMove(s, Move{Player: player, Selection: sel})
	require.NoError(t, err)
	return next
}

func TestLogicShape(t *testing.T) {
	l := Logic{}
	assert.Equal(t, 2, l.NumPlayers())
	assert.Equal(t, "rock_paper_scissors", l.GameType())
	assert.Nil(t, l.Configuration())
	assert.Empty(t, l.DerivedEvents(start(t), 1, nil))
	_, ok := l.StateAfterTimeout(start(t), "Alice")
	assert.False(t, ok)
}

func TestSelectionIsHiddenUntilBothChoose(t *testing.T) {
	s := start(t)
	assert.Equal(t, SharedView{Players: []SharedPlayerView{{"Alice", false}, {"Bob", false}}}, s.SharedView())

	s = mustMove(t, s, "Alice", Rock)
	assert.Equal(t, SharedView{Players: []SharedPlayerView{{"Alice", true}, {"Bob", false}}}, s.SharedView())
	assert.False(t, s.IsTerminal())
	assert.Equal(t, []game.PrivateView{{PlayerID: "Alice", View: PrivateView{Selection: Rock}}}, s.PrivateViews())

	view, ok := s.PrivateView("Alice")
	require.True(t, ok)
	assert.Equal(t, PrivateView{Selection: Rock}, view)
	_, ok = s.PrivateView("Bob")
	assert.False(t, ok)
}

func TestSelectionIsEchoedOnce(t *testing.T) {
	s := start(t)
	assert.Empty(t, s.PrivateViews())

	s = mustMove(t, s, "Bob", Paper)
	assert.Equal(t, []game.PrivateView{{PlayerID: "Bob", View: PrivateView{Selection: Paper}}}, s.PrivateViews())

	s = mustMove(t, s, "Alice", Scissors)
	require.True(t, s.IsTerminal())
	assert.Equal(t, []game.PrivateView{{PlayerID: "Alice", View: PrivateView{Selection: Scissors}}}, s.PrivateViews())
	view, ok := s.PrivateView("Bob")
	require.True(t, ok)
	assert.Equal(t, PrivateView{Selection: Paper}, view)
}

func TestCannotSelectTwice(t *testing.T) {
	s := mustMove(t, start(t), "Alice", Rock)
	_, err := Logic{}.MakeMove(s, Move{Player: "Alice", Selection: Paper})
	require.EqualError(t, err, "Alice has already selected")
}

func TestResult(t *testing.T) {
	cases := []struct {
		alice, bob Selection
		winner     string
	}{
		{Rock, Paper, "Bob"},
		{Paper, Rock, "Alice"},
		{Scissors, Paper, "Alice"},
		{Rock, Scissors, "Alice"},
		{Rock, Rock, ""},
		{Paper, Paper, ""},
		{Scissors, Scissors, ""},
	}
	for _, tc := range cases {
		t.Run(string(tc.alice)+"-"+string(tc.bob), func(t *testing.T) {
			s := mustMove(t, mustMove(t, start(t), "Alice", tc.alice), "Bob", tc.bob)
			require.True(t, s.IsTerminal())
			result := s.SharedView().(SharedView).Result
			require.NotNil(t, result)
			assert.Equal(t, tc.winner, result.Winner)
			assert.Equal(t, []PlayerSelection{{"Alice", tc.alice}, {"Bob", tc.bob}}, result.Moves)
		})
	}
}

func TestParseMove(t *testing.T) {
	m, err := ParseMove("Alice", json.RawMessage(`{"selection":"PAPER"}`))
	require.NoError(t, err)
	assert.Equal(t, Move{Player: "Alice", Selection: Paper}, m)

	_, err = ParseMove("Alice", json.RawMessage(`{"selection":"LIZARD"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "selection")

	_, err = ParseMove("Alice", json.RawMessage(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "selection: field required")
}
