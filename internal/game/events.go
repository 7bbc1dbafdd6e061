package game

// GameStarted is derived when a game leaves its initial state.
type GameStarted struct {
	RoomID int
}

// GameEnded is derived from a terminal state.
type GameEnded struct {
	RoomID int
}

// TurnStarted is derived when a player is awaited. Recipients receive timer alerts.
type TurnStarted struct {
	RoomID     int
	PlayerID   string
	Recipients []string
}

// TurnEnded is derived once the awaited player has moved.
type TurnEnded struct {
	RoomID   int
	PlayerID string
}
