package game

// Projectile is one bullet in flight. Its id is its owner's player id;
// the fire-gate guarantees at most one live projectile per player.
type Projectile struct {
	ID      int
	Team    Team
	OwnerID int
	DirX    int
	X, Y    int
	Active  bool
}

// NewProjectile spawns a bullet at the owner's position moving toward
// the opposing side: team A fires left, team B fires right.
func NewProjectile(owner *Player) *Projectile {
	dirX := 1
	if owner.Team == TeamA {
		dirX = -1
	}
	return &Projectile{
		ID:      owner.ID,
		Team:    owner.Team,
		OwnerID: owner.ID,
		DirX:    dirX,
		X:       owner.X,
		Y:       owner.Y,
		Active:  true,
	}
}

// Move advances the projectile one tick along its fixed heading.
func (p *Projectile) Move() {
	p.X += p.DirX * ProjectileSpeed
}

// PassedBounds reports whether the projectile has left the arena.
func (p *Projectile) PassedBounds(width, height int) bool {
	return p.X < -BulletRadius || p.X > width+BulletRadius ||
		p.Y < -BulletRadius || p.Y > height+BulletRadius
}

// CollidingPlayers returns the ids of active opposing players currently
// overlapping the projectile. Friendly players are never hit; the bullet
// spawns on top of its owner.
func (p *Projectile) CollidingPlayers(players []*Player) []int {
	var ids []int
	for _, target := range players {
		if target == nil || !target.Active || target.Team == p.Team {
			continue
		}
		dx := target.X - p.X
		dy := target.Y - p.Y
		if dx*dx+dy*dy <= BulletRadius*BulletRadius {
			ids = append(ids, target.ID)
		}
	}
	return ids
}
