package game

import "math/rand"

// Edge identifies which arena bound a move crossed.
type Edge int

const (
	EdgeNone Edge = iota
	EdgeNorth
	EdgeEast
	EdgeSouth
	EdgeWest
)

// Player is the server-side simulation state for one connected client.
// All mutation happens under the owning room's lock.
type Player struct {
	ID   int
	Name string
	Team Team
	HP   int

	X, Y       int
	DirX, DirY int

	Active   bool
	Ready    bool
	HasFired bool

	lastSyncX, lastSyncY int
}

func NewPlayer(id, x, y int, name string) *Player {
	return &Player{
		ID:   id,
		Name: name,
		Team: TeamForID(id),
		HP:   MaxHP,
		X:    x,
		Y:    y,
	}
}

// SpawnPosition places a player near their team's home edge: team A (even
// ids) on the right, team B on the left, at a random height.
func SpawnPosition(id int) (x, y int) {
	if id%2 == 0 {
		x = ArenaWidth - SpawnMargin
	} else {
		x = SpawnMargin
	}
	return x, rand.Intn(ArenaHeight)
}

// SetDirection updates the movement direction and reports whether it
// actually changed.
func (p *Player) SetDirection(x, y int) bool {
	if p.DirX == x && p.DirY == y {
		return false
	}
	p.DirX = x
	p.DirY = y
	return true
}

func (p *Player) SetPosition(x, y int) {
	p.X = x
	p.Y = y
}

// Move advances the player one tick along its current direction.
func (p *Player) Move() {
	p.X += p.DirX * PlayerSpeed
	p.Y += p.DirY * PlayerSpeed
}

// PassedBounds reports which arena edge, if any, the player's position
// has crossed, keeping PlayerSize clearance from each edge.
func (p *Player) PassedBounds(width, height int) Edge {
	switch {
	case p.Y < PlayerSize:
		return EdgeNorth
	case p.X > width-PlayerSize:
		return EdgeEast
	case p.Y > height-PlayerSize:
		return EdgeSouth
	case p.X < PlayerSize:
		return EdgeWest
	}
	return EdgeNone
}

// ClampToBounds reflects the player back onto the crossed edge. The
// player stays visible instead of despawning.
func (p *Player) ClampToBounds(edge Edge, width, height int) {
	switch edge {
	case EdgeNorth:
		p.Y = PlayerSize
	case EdgeEast:
		p.X = width - PlayerSize
	case EdgeSouth:
		p.Y = height - PlayerSize
	case EdgeWest:
		p.X = PlayerSize
	}
}

// ChangedPosition reports whether the position moved since the last
// authoritative sync.
func (p *Player) ChangedPosition() bool {
	return p.X != p.lastSyncX || p.Y != p.lastSyncY
}

// MarkSynced records the current position as reported.
func (p *Player) MarkSynced() {
	p.lastSyncX = p.X
	p.lastSyncY = p.Y
}

// Alive reports whether the player still has hit points left.
func (p *Player) Alive() bool {
	return p.HP > 0
}
