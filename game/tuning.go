package game

import "time"

const (
	ArenaWidth  = 1280
	ArenaHeight = 720

	MaxHP = 3

	// Half-extent of the player sprite; bound reflection keeps this much
	// clearance from the arena edges.
	PlayerSize = 32

	PlayerSpeed     = 5
	ProjectileSpeed = 10
	BulletRadius    = 15

	// Spawn x offset from the team's home edge.
	SpawnMargin = 100

	RoundTime    = 5 * time.Minute
	RoundMinutes = 5

	// Pause between a round ending and the room re-opening its lobby.
	EndCooldown = 5 * time.Second
)
