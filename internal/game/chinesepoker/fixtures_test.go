package chinesepoker

import (
	"math/rand"
	"strings"
	"testing"

	"gamehub/internal/domain"
	"gamehub/internal/game"
)

var playerIDs = []string{"Alice", "Bob", "Charlie", "Diana"}

var initialHands = map[string]string{
	"Alice":   "3s 4h 5d 5h 6s 7d 9d 9c Qh Qs Kd Kh Kc",
	"Bob":     "5c 6c 7c 8c 9h Td Th Tc Jc Qc Ks Ad 2d",
	"Charlie": "3h 3c 4d 4s 8d 9s Ts Jh Js Qd As Ac 2h",
	"Diana":   "3d 4c 5s 6d 6h 7h 7s 8h 8s Jd Ah 2s 2c",
}

var firstMatchMoves = [][2]string{
	{"Diana", "3d 4c 5s 6d 7h"},
	{"Alice", "9d 9c Kd Kh Kc"},
	{"Bob", ""},
	{"Charlie", ""},
	{"Diana", ""},
	{"Alice", "3s 4h 5d 6s 7d"},
	{"Bob", "5c 6c 7c 8c Jc"},
	{"Charlie", "4s 9s Ts Js As"},
	{"Diana", ""},
	{"Alice", ""},
	{"Bob", ""},
	{"Charlie", "3h 3c"},
	{"Diana", "8h 8s"},
	{"Alice", "Qh Qs"},
	{"Bob", ""},
	{"Charlie", ""},
	{"Diana", ""},
	{"Alice", "5h"},
	{"Bob", "2d"},
	{"Charlie", "2h"},
	{"Diana", "2c"},
}

func newTestLogic(t *testing.T) *Logic {
	t.Helper()
	l, err := NewLogic(DefaultConfig(), rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("NewLogic() error = %v", err)
	}
	return l
}

func move(player, cards string) Move {
	return Move{Player: player, Cards: domain.MustParseCards(cards)}
}

func hand(player string) []domain.Card {
	return domain.MustParseCards(initialHands[player])
}

// dealtState mirrors a DEAL_CARDS state holding the fixture hands.
func dealtState(l *Logic) *State {
	players := make([]Player, len(playerIDs))
	for i, id := range playerIDs {
		players[i] = Player{ID: id, Cards: hand(id)}
	}
	return &State{Status: StatusDealCards, Players: players, Current: -1, creditsPerPoint: l.cfg.CreditsPerPoint}
}

func pointsState(l *Logic, points ...int) *State {
	players := make([]Player, len(playerIDs))
	for i, id := range playerIDs {
		players[i] = Player{ID: id, Points: points[i]}
	}
	return &State{Status: StatusUpdatePoints, Players: players, Current: -1, creditsPerPoint: l.cfg.CreditsPerPoint}
}

func step(t *testing.T, l *Logic, s game.State) *State {
	t.Helper()
	next, err := l.NextAutomatedState(s)
	if err != nil {
		t.Fatalf("NextAutomatedState(%s) error = %v", s.(*State).Status, err)
	}
	if next == nil {
		t.Fatalf("NextAutomatedState(%s) = nil", s.(*State).Status)
	}
	return next.(*State)
}

func stepUntilAwait(t *testing.T, l *Logic, s *State) *State {
	t.Helper()
	for s.Status != StatusAwaitPlayerAction {
		s = step(t, l, s)
	}
	return s
}

func play(t *testing.T, l *Logic, s *State, moves [][2]string) *State {
	t.Helper()
	for _, mv := range moves {
		s = stepUntilAwait(t, l, s)
		next, err := l.MakeMove(s, move(mv[0], mv[1]))
		if err != nil {
			t.Fatalf("MakeMove(%s %q) error = %v", mv[0], mv[1], err)
		}
		s = next.(*State)
	}
	return s
}

type fixtureStates struct {
	startGame, startMatch, dealCards, startRound, startTurn, awaitAction *State
	endTurn, endLastTurn, endRound                                       *State
	endLastTurnOfMatch, endLastRound, endMatch, updatePoints             *State
	lastPointsUpdate, endGame                                            *State
}

func buildFixtures(t *testing.T) (*Logic, fixtureStates) {
	t.Helper()
	l := newTestLogic(t)
	var f fixtureStates

	start, err := l.InitialState(playerIDs)
	if err != nil {
		t.Fatalf("InitialState() error = %v", err)
	}
	f.startGame = start.(*State)
	f.startMatch = step(t, l, f.startGame)
	f.dealCards = dealtState(l)
	f.startRound = step(t, l, f.dealCards)
	f.startTurn = step(t, l, f.startRound)
	f.awaitAction = step(t, l, f.startTurn)
	f.endTurn = play(t, l, f.awaitAction, firstMatchMoves[:1])
	f.endLastTurn = play(t, l, f.awaitAction, firstMatchMoves[:5])
	f.endRound = step(t, l, f.endLastTurn)
	f.endLastTurnOfMatch = play(t, l, f.awaitAction, firstMatchMoves)
	f.endLastRound = step(t, l, f.endLastTurnOfMatch)
	f.endMatch = step(t, l, f.endLastRound)
	f.updatePoints = step(t, l, f.endMatch)
	f.lastPointsUpdate = pointsState(l, 11, 13, 25, 17)
	f.endGame = step(t, l, f.lastPointsUpdate)
	return l, f
}

func cardSet(cards []domain.Card) string {
	sorted := append([]domain.Card(nil), cards...)
	domain.SortHand(sorted)
	return strings.Join(domain.FormatCards(sorted), " ")
}
