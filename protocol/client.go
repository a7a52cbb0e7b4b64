package protocol

// Payloads coming in from the client.

type Connect struct {
	V    int    `json:"v"`    // protocol version
	Name string `json:"name"` // display name
}

type Chat struct {
	Message string `json:"message"`
}

// Direction is the client's requested movement direction, one unit step
// per axis (-1, 0 or 1).
type Direction struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Shoot struct{}

type Ready struct{}

type CreateRoom struct {
	Name string `json:"name"`
}

type JoinRoom struct {
	Name string `json:"name"`
}

type GetRooms struct {
	Search string `json:"search,omitempty"`
}
