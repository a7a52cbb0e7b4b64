package room

import (
	"arena/game"
)

// ClientPlayer binds a network connection to exactly one simulated player.
type ClientPlayer struct {
	Conn   Conn
	Player *game.Player
}

// roster is the ordered set of connected entries for one room. It is not
// locked itself; every access happens under the owning room's lock.
// Player ids come from a monotonic counter so ids are never reused within
// a room's lifetime, even after churn.
type roster struct {
	entries []*ClientPlayer
	nextID  int
}

// add creates a player for the connection, assigning the next id, the
// id-parity team and a spawn point near the team's home edge.
func (ro *roster) add(c Conn) *ClientPlayer {
	id := ro.nextID
	ro.nextID++
	x, y := game.SpawnPosition(id)
	p := game.NewPlayer(id, x, y, c.Name())
	p.MarkSynced()
	cp := &ClientPlayer{Conn: c, Player: p}
	ro.entries = append(ro.entries, cp)
	return cp
}

// remove detaches the entry for the connection and returns it, or nil.
func (ro *roster) remove(c Conn) *ClientPlayer {
	for i, cp := range ro.entries {
		if cp.Conn == c {
			ro.entries = append(ro.entries[:i], ro.entries[i+1:]...)
			return cp
		}
	}
	return nil
}

// removeEntry detaches the exact entry and reports whether it was present.
func (ro *roster) removeEntry(target *ClientPlayer) bool {
	for i, cp := range ro.entries {
		if cp == target {
			ro.entries = append(ro.entries[:i], ro.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (ro *roster) byConn(c Conn) *ClientPlayer {
	for _, cp := range ro.entries {
		if cp.Conn == c {
			return cp
		}
	}
	return nil
}

func (ro *roster) byID(id int) *ClientPlayer {
	for _, cp := range ro.entries {
		if cp.Player.ID == id {
			return cp
		}
	}
	return nil
}

func (ro *roster) players() []*game.Player {
	out := make([]*game.Player, 0, len(ro.entries))
	for _, cp := range ro.entries {
		out = append(out, cp.Player)
	}
	return out
}

func (ro *roster) len() int { return len(ro.entries) }

// all returns the backing slice; callers must not remove entries while
// iterating it. Loops that broadcast (and can therefore prune) iterate
// a snapshot instead.
func (ro *roster) all() []*ClientPlayer { return ro.entries }

func (ro *roster) snapshot() []*ClientPlayer {
	return append([]*ClientPlayer(nil), ro.entries...)
}
