package room

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"arena/game"
	"arena/protocol"
)

// LobbyName is the distinguished room every client lands in first. The
// Lobby never starts a match and is never closed, even when empty.
const LobbyName = "Lobby"

// Room is one isolated match session: roster, projectiles, scores, round
// timer and the LOBBY/GAME/END state machine. One lock guards all of it;
// network-driven events and the tick loop serialize on it, so no two
// mutations of the same room ever interleave. Different rooms are fully
// independent.
type Room struct {
	id       int
	name     string
	registry Registry
	log      *slog.Logger
	now      func() time.Time

	quit     chan struct{}
	stopOnce sync.Once

	mu          sync.Mutex
	state       game.GameState
	roster      roster
	projectiles []*game.Projectile

	teamAScore   int
	teamBScore   int
	teamAPlayers int
	teamBPlayers int

	timeLeft    time.Duration
	minutesLeft int
	prev        time.Time
	resumeAt    time.Time // END -> LOBBY transition deadline
	frame       uint64

	closed       bool
	pendingClose bool
}

func New(id int, name string, registry Registry, log *slog.Logger) *Room {
	if log == nil {
		log = slog.Default()
	}
	return &Room{
		id:          id,
		name:        name,
		registry:    registry,
		log:         log.With("room", name),
		now:         time.Now,
		quit:        make(chan struct{}),
		state:       game.StateLobby,
		timeLeft:    game.RoundTime,
		minutesLeft: game.RoundMinutes,
	}
}

func (r *Room) ID() int      { return r.id }
func (r *Room) Name() string { return r.name }

func (r *Room) isLobby() bool { return strings.EqualFold(r.name, LobbyName) }

func (r *Room) State() game.GameState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Room) NumPlayers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.roster.len()
}

func (r *Room) Scores() (teamA, teamB int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.teamAScore, r.teamBScore
}

// AddClient attaches a connection to this room, creating its player and
// syncing both sides: the newcomer gets a clean list, its id, the arena
// dimensions and every existing player; everyone else learns about the
// newcomer.
func (r *Room) AddClient(c Conn) {
	r.mu.Lock()
	if r.closed {
		// Lost a race with teardown; the client lands in the Lobby
		// instead of dangling.
		r.mu.Unlock()
		if r.registry != nil {
			r.registry.JoinLobby(c)
		}
		return
	}
	defer r.mu.Unlock()
	c.SetRoom(r)
	if r.roster.byConn(c) != nil {
		r.log.Warn("client already in room", "client", c.Name())
		return
	}
	cp := r.roster.add(c)
	p := cp.Player
	r.log.Info("client joined", "client", c.Name(), "player", p.ID, "team", p.Team.String())

	r.sendTo(c, protocol.MsgClearPlayers, protocol.ClearPlayers{})
	r.sendTo(c, protocol.MsgAssignID, protocol.AssignID{PlayerID: p.ID})
	r.sendTo(c, protocol.MsgSyncDimensions, protocol.Dimensions{
		Width:  game.ArenaWidth,
		Height: game.ArenaHeight,
	})
	r.broadcast(protocol.MsgConnect, protocol.ConnectionStatus{
		Name:      c.Name(),
		Connected: true,
		Message:   "joined the room " + r.name,
		PlayerID:  p.ID,
	})
	r.broadcast(protocol.MsgSetTeamInfo, protocol.TeamInfo{Name: p.Name, TeamID: int(p.Team)})
	r.broadcast(protocol.MsgSyncPosition, protocol.Position{PlayerID: p.ID, X: p.X, Y: p.Y})
	p.MarkSynced()

	// Replay the existing players to the newcomer so its local view
	// matches the authoritative state.
	for _, other := range r.roster.snapshot() {
		if other == cp {
			continue
		}
		op := other.Player
		r.sendTo(c, protocol.MsgConnect, protocol.ConnectionStatus{
			Name:      op.Name,
			Connected: true,
			PlayerID:  op.ID,
		})
		r.sendTo(c, protocol.MsgSyncPlayerDirection, protocol.PlayerDirection{
			PlayerID: op.ID, X: op.DirX, Y: op.DirY,
		})
		r.sendTo(c, protocol.MsgSyncPosition, protocol.Position{PlayerID: op.ID, X: op.X, Y: op.Y})
		r.sendTo(c, protocol.MsgSetTeamInfo, protocol.TeamInfo{Name: op.Name, TeamID: int(op.Team)})
	}

	if r.state == game.StateLobby {
		r.setPlayersActive(false)
	}
}

// RemoveClient detaches a connection. The last player leaving a non-Lobby
// room closes it.
func (r *Room) RemoveClient(c Conn) {
	r.mu.Lock()
	cp := r.roster.remove(c)
	if cp == nil {
		r.mu.Unlock()
		return
	}
	r.decTeamCount(cp.Player)
	r.log.Info("client left", "client", c.Name(), "player", cp.Player.ID)
	empty := r.roster.len() == 0
	if !empty {
		r.broadcast(protocol.MsgDisconnect, protocol.ConnectionStatus{
			Name:      c.Name(),
			Connected: false,
			Message:   "left the room " + r.name,
			PlayerID:  cp.Player.ID,
		})
	}
	r.mu.Unlock()

	if empty && !r.isLobby() {
		r.Close()
	}
}

// SetDirection applies a client's movement input and relays the change.
// Direction changes broadcast immediately; positions are only re-synced
// periodically or on bound correction.
func (r *Room) SetDirection(c Conn, x, y int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != game.StateGame {
		return
	}
	cp := r.roster.byConn(c)
	if cp == nil {
		return
	}
	if cp.Player.SetDirection(x, y) {
		r.broadcast(protocol.MsgSyncPlayerDirection, protocol.PlayerDirection{
			PlayerID: cp.Player.ID, X: x, Y: y,
		})
	}
}

// Fire spawns a projectile for the requesting player unless one is
// already in flight (the fire-gate).
func (r *Room) Fire(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != game.StateGame {
		return
	}
	cp := r.roster.byConn(c)
	if cp == nil || !cp.Player.Active || cp.Player.HasFired {
		return
	}
	cp.Player.HasFired = true
	proj := game.NewProjectile(cp.Player)
	r.projectiles = append(r.projectiles, proj)
	r.broadcast(protocol.MsgShoot, protocol.ProjectileSpawn{
		TeamID:   int(proj.Team),
		PlayerID: proj.OwnerID,
		DirX:     proj.DirX,
		X:        proj.X,
		Y:        proj.Y,
	})
}

// Ready marks the sender ready and runs the ready-check. Inside the Lobby
// the command is rejected; the Lobby never starts a match.
func (r *Room) Ready(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.isLobby() {
		r.sendTo(c, protocol.MsgMessage, protocol.Message{
			Name:    c.Name(),
			Message: "ready is not valid for the Lobby, join a room first",
		})
		return
	}
	if r.state != game.StateLobby {
		return
	}
	cp := r.roster.byConn(c)
	if cp == nil {
		return
	}
	cp.Player.Ready = true
	r.broadcastChat(c.Name(), "Ready to go!")
	r.readyCheck()
}

// readyCheck starts the match once every roster member is ready: team
// counts are computed from the roster, everyone is healed and activated,
// and the round timer starts.
func (r *Room) readyCheck() {
	total := r.roster.len()
	ready := 0
	for _, cp := range r.roster.all() {
		if cp.Player.Ready {
			ready++
		}
	}
	if total == 0 || ready < total {
		return
	}

	r.teamAPlayers, r.teamBPlayers = 0, 0
	for _, cp := range r.roster.all() {
		if cp.Player.Team == game.TeamA {
			r.teamAPlayers++
		} else {
			r.teamBPlayers++
		}
		cp.Player.HP = game.MaxHP
		cp.Player.HasFired = false
	}
	r.broadcast(protocol.MsgSyncHP, protocol.Health{PlayerID: -1, HP: game.MaxHP})
	r.setPlayersActive(true)
	r.state = game.StateGame
	r.broadcast(protocol.MsgGameStarted, protocol.GameStarted{})
	r.broadcastGameState()
	r.timeLeft = game.RoundTime
	r.minutesLeft = game.RoundMinutes
	r.prev = r.now()
	r.log.Info("match started", "teamA", r.teamAPlayers, "teamB", r.teamBPlayers)
}

// HandleChat routes a chat message: commands are parsed into a tagged
// variant and dispatched; malformed commands are logged and dropped;
// anything else is broadcast verbatim.
func (r *Room) HandleChat(c Conn, text string) {
	cmd, err := ParseCommand(text)
	if err != nil {
		r.log.Warn("dropping malformed command", "client", c.Name(), "err", err)
		return
	}
	switch cmd.Kind {
	case CmdNone:
		r.mu.Lock()
		r.broadcastChat(c.Name(), text)
		r.mu.Unlock()
	case CmdReady:
		r.Ready(c)
	case CmdCreateRoom:
		if r.registry == nil {
			return
		}
		if err := r.registry.CreateRoom(cmd.Room); err != nil {
			r.log.Warn("create room failed", "name", cmd.Room, "err", err)
			return
		}
		r.mu.Lock()
		r.broadcastChat(c.Name(), "Created a new room")
		r.mu.Unlock()
		if err := r.registry.JoinRoom(cmd.Room, c); err != nil {
			r.log.Warn("join after create failed", "name", cmd.Room, "err", err)
		}
	case CmdJoinRoom:
		if r.registry == nil {
			return
		}
		if err := r.registry.JoinRoom(cmd.Room, c); err != nil {
			r.log.Warn("join room failed", "name", cmd.Room, "err", err)
		}
	}
}

// Close tears the room down: remaining clients migrate to the Lobby, the
// tick loop stops and the registry forgets the room. The Lobby itself is
// never closed.
func (r *Room) Close() {
	if r.isLobby() {
		return
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	moved := append([]*ClientPlayer(nil), r.roster.all()...)
	r.roster.entries = nil
	r.mu.Unlock()

	r.Stop()
	r.log.Info("closing room", "migrating", len(moved))
	if r.registry != nil {
		for _, cp := range moved {
			r.registry.JoinLobby(cp.Conn)
		}
		r.registry.DropRoom(r)
	}
}

// Stop halts the tick loop without touching the roster.
func (r *Room) Stop() {
	r.stopOnce.Do(func() { close(r.quit) })
}

func (r *Room) decTeamCount(p *game.Player) {
	if p.Team == game.TeamA {
		r.teamAPlayers--
	} else {
		r.teamBPlayers--
	}
}
