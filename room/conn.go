package room

// Conn is the transport-side handle for one connected client. Send is
// synchronous; a send error means the peer is unreachable and the roster
// prunes it (there is no heartbeat, this is the only disconnect signal).
type Conn interface {
	Name() string
	Send(b []byte) error
	Close() error

	// SetRoom and Room track which room currently owns the connection, so
	// the transport can dispatch inbound events and room switches can
	// detach the connection from its previous room.
	SetRoom(r *Room)
	Room() *Room
}

// Registry is the capability a room needs to delegate create/join-room
// commands and to tear itself down. Injected at construction; rooms never
// reach for a process-wide server.
type Registry interface {
	CreateRoom(name string) error
	JoinRoom(name string, c Conn) error
	JoinLobby(c Conn)
	ListRooms(search string) []string
	DropRoom(r *Room)
}
