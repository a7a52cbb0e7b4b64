package room

import (
	"time"

	"arena/game"
	"arena/protocol"
)

// Run drives the simulation at the fixed tick rate until Stop. Each frame
// is one Update/LateUpdate pair; both are exported so tests and external
// drivers can step the room deterministically.
func (r *Room) Run() {
	ticker := time.NewTicker(time.Second / protocol.SimTickHz)
	defer ticker.Stop()
	for {
		select {
		case <-r.quit:
			return
		case <-ticker.C:
			r.Update()
			r.LateUpdate()
		}
	}
}

// Update advances one simulation frame: round timer, scheduled END->LOBBY
// transition, projectile flight and collision, player movement with edge
// reflection, and the throttled position resync.
func (r *Room) Update() {
	r.mu.Lock()
	now := r.now()

	// Outside a match the timer stays frozen at the full round length.
	if r.state != game.StateGame {
		r.timeLeft = game.RoundTime
	}
	if r.prev.IsZero() {
		r.prev = now
	}
	r.timeLeft -= now.Sub(r.prev)
	r.prev = now

	if r.state == game.StateGame && int(r.timeLeft/time.Minute) < r.minutesLeft {
		r.minutesLeft--
		r.broadcastTimer()
	}

	if r.state == game.StateGame && r.timeLeft <= 0 {
		r.log.Info("round timer expired")
		r.endGame()
		r.unlockAndMaybeClose()
		return
	}

	// The post-round cooldown is a deadline the tick loop checks, never a
	// sleep under the lock.
	if r.state == game.StateEnd && !r.resumeAt.IsZero() && !now.Before(r.resumeAt) {
		r.reopenLobby()
	}

	if r.state == game.StateGame {
		r.stepProjectiles()
	}
	if r.state == game.StateGame {
		r.stepPlayers()
	}
	r.unlockAndMaybeClose()
}

// LateUpdate closes out the frame.
func (r *Room) LateUpdate() {
	r.mu.Lock()
	r.frame++
	r.mu.Unlock()
}

// unlockAndMaybeClose releases the lock and finishes a close that a
// broadcast prune scheduled mid-frame (Close cannot run under the lock).
func (r *Room) unlockAndMaybeClose() {
	shouldClose := r.pendingClose && !r.closed
	r.pendingClose = false
	r.mu.Unlock()
	if shouldClose {
		r.Close()
	}
}

// stepProjectiles advances every live projectile and resolves bound exits
// and hits. Spent projectiles are dropped two-phase: survivors are
// compacted into a fresh prefix, never removed mid-iteration.
func (r *Room) stepProjectiles() {
	kept := r.projectiles[:0]
	for _, proj := range r.projectiles {
		if proj == nil || !proj.Active {
			continue
		}
		proj.Move()

		if proj.PassedBounds(game.ArenaWidth, game.ArenaHeight) {
			r.consumeProjectile(proj)
			continue
		}

		hits := proj.CollidingPlayers(r.roster.players())
		if len(hits) == 0 {
			kept = append(kept, proj)
			continue
		}
		// One projectile can hit several overlapping players this frame,
		// but is consumed after this single resolution.
		for _, id := range hits {
			cp := r.roster.byID(id)
			if cp == nil {
				continue
			}
			r.applyHit(cp)
			if r.state != game.StateGame {
				// Elimination ended the round; projectiles are already
				// cleared.
				return
			}
		}
		r.consumeProjectile(proj)
	}
	r.projectiles = kept
}

// consumeProjectile deactivates a projectile, reopens its owner's
// fire-gate and announces the removal.
func (r *Room) consumeProjectile(proj *game.Projectile) {
	proj.Active = false
	if owner := r.roster.byID(proj.OwnerID); owner != nil {
		owner.Player.HasFired = false
	}
	r.broadcast(protocol.MsgShoot, protocol.ProjectileRemove{PlayerID: proj.OwnerID})
}

// applyHit resolves one projectile hit on one player, per the combat
// rules: lose a hit point; on the first drop to zero the player goes
// down, the opposing team scores and the elimination condition is
// re-evaluated.
func (r *Room) applyHit(cp *ClientPlayer) {
	p := cp.Player
	p.HP--
	r.broadcast(protocol.MsgSyncHP, protocol.Health{PlayerID: p.ID, HP: p.HP})
	r.log.Info("player hit", "player", p.ID, "hp", p.HP)

	if p.Alive() {
		r.broadcastChat(cp.Conn.Name(), p.Name+" was hit!")
		return
	}

	p.Active = false
	r.broadcast(protocol.MsgSetActivity, protocol.Activity{
		PlayerID: p.ID,
		Active:   false,
		Name:     p.Name,
	})
	if p.Team == game.TeamA {
		r.teamBScore++
	} else {
		r.teamAScore++
	}
	r.broadcastScores()
	r.broadcastChat(cp.Conn.Name(), p.Name+" is out!")

	// Literal elimination comparison: a team's remaining player count
	// against the opposing team's score.
	if r.teamAPlayers == r.teamBScore || r.teamBPlayers == r.teamAScore {
		r.log.Info("elimination", "teamAScore", r.teamAScore, "teamBScore", r.teamBScore)
		r.endGame()
	}
}

// stepPlayers moves every active player, reflecting off arena edges, and
// performs the throttled authoritative position resync.
func (r *Room) stepPlayers() {
	for _, cp := range r.roster.snapshot() {
		p := cp.Player
		if !p.Active {
			continue
		}
		p.Move()
		if edge := p.PassedBounds(game.ArenaWidth, game.ArenaHeight); edge != game.EdgeNone {
			p.ClampToBounds(edge, game.ArenaWidth, game.ArenaHeight)
			r.broadcastPosition(p)
		}
		if r.frame%protocol.PositionSyncFrames == 0 && p.ChangedPosition() {
			r.broadcastPosition(p)
		}
	}
}

// endGame enters END: simulation pauses, projectiles are cleared and the
// lobby reopens after the cooldown deadline elapses.
func (r *Room) endGame() {
	r.state = game.StateEnd
	r.broadcastGameState()
	r.setPlayersActive(false)
	r.projectiles = nil
	r.resumeAt = r.now().Add(game.EndCooldown)
}

// reopenLobby performs the END->LOBBY transition: scores reset and are
// re-broadcast, ready flags clear, team counts zero.
func (r *Room) reopenLobby() {
	r.state = game.StateLobby
	r.resumeAt = time.Time{}
	r.broadcastGameState()
	r.teamAScore, r.teamBScore = 0, 0
	r.broadcastScores()
	for _, cp := range r.roster.all() {
		cp.Player.Ready = false
	}
	r.teamAPlayers, r.teamBPlayers = 0, 0
	r.log.Info("lobby reopened")
}
