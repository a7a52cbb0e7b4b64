package protocol

// Payloads the server sends out.

type ConnectionStatus struct {
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
	Message   string `json:"message,omitempty"`
	PlayerID  int    `json:"playerId"`
}

type ClearPlayers struct{}

type AssignID struct {
	PlayerID int `json:"playerId"`
}

type TeamInfo struct {
	Name   string `json:"name"`
	TeamID int    `json:"teamId"`
}

type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Position struct {
	PlayerID int `json:"playerId"`
	X        int `json:"x"`
	Y        int `json:"y"`
}

// PlayerDirection relays one player's movement direction to everyone.
type PlayerDirection struct {
	PlayerID int `json:"playerId"`
	X        int `json:"x"`
	Y        int `json:"y"`
}

type Health struct {
	PlayerID int `json:"playerId"` // -1 addresses every player
	HP       int `json:"hp"`
}

type Scores struct {
	TeamA int `json:"teamA"`
	TeamB int `json:"teamB"`
}

type GameStarted struct{}

type GameStatus struct {
	State string `json:"state"`
}

type Timer struct {
	RemainingMs int64 `json:"remainingMs"`
}

// Activity toggles simulation participation. PlayerID -1 addresses every
// player in the room; a single id with Active false is a player-down event.
type Activity struct {
	PlayerID int    `json:"playerId"`
	Active   bool   `json:"active"`
	Name     string `json:"name,omitempty"`
}

type Message struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type ProjectileSpawn struct {
	TeamID   int `json:"teamId"`
	PlayerID int `json:"playerId"`
	DirX     int `json:"dirX"`
	X        int `json:"x"`
	Y        int `json:"y"`
}

// ProjectileRemove identifies the projectile by its owner's player id;
// a player never has more than one projectile in flight.
type ProjectileRemove struct {
	PlayerID int `json:"playerId"`
}

type RoomList struct {
	Rooms []string `json:"rooms"`
}
