package app

// Failure texts shown to players. Clients match on them, so keep them stable.
const (
	msgAlreadyInRoom      = "Player already in room"
	msgRoomFull           = "Unable to join: Room is full"
	msgNotInRoom          = "Player not in room"
	msgNotOffline         = "Player is not offline"
	msgAlreadyPlaying     = "Already joined game. Cannot watch as spectator"
	msgGameNotStarted     = "Game has not started yet"
	msgRoomDoesNotExist   = "Room with id %d does not exist"
	msgNoRoomForGameType  = "No available room for game type %s"
	msgUnparsableRequest  = "Unable to parse request %q: %v"
	msgUnknownRequestType = "Unknown request type %s"
)
