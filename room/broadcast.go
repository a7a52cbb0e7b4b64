package room

import (
	"arena/game"
	"arena/protocol"
)

// broadcast fans a message out to every roster member. Failed sends are
// collected and pruned after the iteration completes; each pruned peer is
// announced to the remainder as a disconnect, never as an error.
// Callers hold the room lock.
func (r *Room) broadcast(t string, payload any) {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		r.log.Error("encode broadcast", "type", t, "err", err)
		return
	}
	var failed []*ClientPlayer
	for _, cp := range r.roster.all() {
		if err := cp.Conn.Send(b); err != nil {
			failed = append(failed, cp)
		}
	}
	for _, cp := range failed {
		r.dropFailed(cp)
	}
}

// dropFailed removes a peer whose send failed. The disconnect notice to
// the survivors can itself fail and recurse; the roster only shrinks, so
// this terminates.
func (r *Room) dropFailed(cp *ClientPlayer) {
	if !r.roster.removeEntry(cp) {
		return
	}
	r.decTeamCount(cp.Player)
	_ = cp.Conn.Close()
	r.log.Info("pruned unreachable client", "client", cp.Conn.Name(), "player", cp.Player.ID)
	r.broadcast(protocol.MsgDisconnect, protocol.ConnectionStatus{
		Name:      cp.Conn.Name(),
		Connected: false,
		Message:   "left the room " + r.name,
		PlayerID:  cp.Player.ID,
	})
	if r.roster.len() == 0 && !r.isLobby() {
		r.pendingClose = true
	}
}

// sendTo delivers a message to a single member. A failure here is handled
// the same way as a broadcast failure.
func (r *Room) sendTo(c Conn, t string, payload any) {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		r.log.Error("encode send", "type", t, "err", err)
		return
	}
	if err := c.Send(b); err != nil {
		if cp := r.roster.byConn(c); cp != nil {
			r.dropFailed(cp)
		}
	}
}

func (r *Room) broadcastChat(name, text string) {
	r.broadcast(protocol.MsgMessage, protocol.Message{Name: name, Message: text})
}

func (r *Room) broadcastGameState() {
	r.broadcast(protocol.MsgGameState, protocol.GameStatus{State: r.state.String()})
}

func (r *Room) broadcastScores() {
	r.broadcast(protocol.MsgSyncScores, protocol.Scores{TeamA: r.teamAScore, TeamB: r.teamBScore})
}

func (r *Room) broadcastTimer() {
	r.broadcast(protocol.MsgTimer, protocol.Timer{RemainingMs: r.timeLeft.Milliseconds()})
}

func (r *Room) broadcastPosition(p *game.Player) {
	r.broadcast(protocol.MsgSyncPosition, protocol.Position{PlayerID: p.ID, X: p.X, Y: p.Y})
	p.MarkSynced()
}

// setPlayersActive flips every player's active flag and tells the room.
func (r *Room) setPlayersActive(active bool) {
	for _, cp := range r.roster.all() {
		cp.Player.Active = active
	}
	r.broadcast(protocol.MsgSetActivity, protocol.Activity{PlayerID: -1, Active: active})
}
