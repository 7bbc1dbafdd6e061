package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create the hub match.
	RpcQuickMatch = "quick_match"

	// RpcRooms lists the rooms of the running hub match.
	RpcRooms = "gamehub_rooms"

	// MatchNameGameHub is the authoritative match handler name registered with Nakama.
	MatchNameGameHub = "gamehub_match"

	// LabelGame tags hub matches so they can be found with a label query.
	LabelGame = "gamehub"
)

// Op codes. Client requests and server messages carry the JSON envelopes the
// websocket transport uses.
const (
	// Client -> Server
	OpRequest int64 = 1

	// Server -> Client
	OpMessage int64 = 100
)

// Runtime env keys.
const (
	EnvRoomsFile       = "gamehub_rooms_file"
	EnvSchedulerTickMs = "gamehub_scheduler_tick_ms"
)

// TickRate is the number of MatchLoop calls per second. Timers resolve to it.
const TickRate = 10
