package game

// GameState is the phase of a room's match lifecycle. Transitions only
// ever run LOBBY -> GAME -> END -> LOBBY.
type GameState int

const (
	StateLobby GameState = iota
	StateGame
	StateEnd
)

func (s GameState) String() string {
	switch s {
	case StateLobby:
		return "LOBBY"
	case StateGame:
		return "GAME"
	case StateEnd:
		return "END"
	}
	return "UNKNOWN"
}

type Team int

const (
	TeamNone Team = 0
	TeamA    Team = 1
	TeamB    Team = 2
)

// TeamForID assigns teams by player id parity: even ids to A, odd to B.
func TeamForID(id int) Team {
	if id%2 == 0 {
		return TeamA
	}
	return TeamB
}

func (t Team) Opponent() Team {
	switch t {
	case TeamA:
		return TeamB
	case TeamB:
		return TeamA
	}
	return TeamNone
}

func (t Team) String() string {
	switch t {
	case TeamA:
		return "A"
	case TeamB:
		return "B"
	}
	return "none"
}
