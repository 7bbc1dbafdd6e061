package chinesepoker

// Status is the phase of a game.
type Status string

const (
	StatusStartGame         Status = "START_GAME"
	StatusStartMatch        Status = "START_MATCH"
	StatusDealCards         Status = "DEAL_CARDS"
	StatusStartRound        Status = "START_ROUND"
	StatusStartTurn         Status = "START_TURN"
	StatusAwaitPlayerAction Status = "AWAIT_PLAYER_ACTION"
	StatusEndTurn           Status = "END_TURN"
	StatusEndRound          Status = "END_ROUND"
	StatusEndMatch          Status = "END_MATCH"
	StatusUpdatePoints      Status = "UPDATE_POINTS"
	StatusEndGame           Status = "END_GAME"
)
