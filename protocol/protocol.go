package protocol

import (
	"encoding/json"
)

// Message types carried in Envelope.T. Inbound and outbound share the
// same namespace; a few types (direction, shoot, ready) travel both ways.
const (
	MsgConnect             = "connect"
	MsgDisconnect          = "disconnect"
	MsgMessage             = "message"
	MsgClearPlayers        = "clearPlayers"
	MsgSyncDirection       = "syncDirection"
	MsgSyncPosition        = "syncPosition"
	MsgSyncPlayerDirection = "syncPlayerDirection"
	MsgShoot               = "shoot"
	MsgCreateRoom          = "createRoom"
	MsgJoinRoom            = "joinRoom"
	MsgGetRooms            = "getRooms"
	MsgSyncDimensions      = "syncDimensions"
	MsgAssignID            = "assignId"
	MsgSetTeamInfo         = "setTeamInfo"
	MsgReady               = "ready"
	MsgGameStarted         = "gameStarted"
	MsgSetActivity         = "setActivity"
	MsgGameState           = "gameState"
	MsgTimer               = "timer"

	// Hit-point and score updates have no carrier in the enum above, so
	// they get their own types.
	MsgSyncHP     = "syncHp"
	MsgSyncScores = "syncScores"
)

const (
	Version = 1

	SimTickHz = 60

	// Authoritative positions are re-broadcast at most once per this many
	// frames, and only for players whose position actually changed.
	PositionSyncFrames = 120
)

type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"` // raw payload bytes
}
