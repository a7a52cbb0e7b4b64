package room

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"arena/game"
	"arena/protocol"
)

type fakeConn struct {
	name      string
	failSends bool
	current   *Room

	mu   sync.Mutex
	sent []protocol.Envelope
}

func (f *fakeConn) Name() string { return f.name }

func (f *fakeConn) Send(b []byte) error {
	if f.failSends {
		return errors.New("peer unreachable")
	}
	env, err := protocol.DecodeEnvelope(b)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.sent = append(f.sent, env)
	f.mu.Unlock()
	return nil
}

func (f *fakeConn) Close() error    { return nil }
func (f *fakeConn) SetRoom(r *Room) { f.current = r }
func (f *fakeConn) Room() *Room     { return f.current }

func (f *fakeConn) count(t string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, env := range f.sent {
		if env.T == t {
			n++
		}
	}
	return n
}

func (f *fakeConn) last(t *testing.T, msgType string) protocol.Envelope {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].T == msgType {
			return f.sent[i]
		}
	}
	t.Fatalf("no %q message received", msgType)
	return protocol.Envelope{}
}

func (f *fakeConn) reset() {
	f.mu.Lock()
	f.sent = nil
	f.mu.Unlock()
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRoom(name string) (*Room, *fakeClock) {
	clk := &fakeClock{t: time.Unix(1_000_000, 0)}
	r := New(1, name, nil, testLogger())
	r.now = clk.Now
	return r, clk
}

func join(r *Room, name string) *fakeConn {
	fc := &fakeConn{name: name}
	r.AddClient(fc)
	return fc
}

// startMatch joins two clients, places them on the same row and readies
// both: player 0 (team A) on the right, player 1 (team B) on the left.
func startMatch(t *testing.T, r *Room) (a, b *fakeConn) {
	t.Helper()
	a = join(r, "alice")
	b = join(r, "bob")
	for _, id := range []int{0, 1} {
		p := r.roster.byID(id).Player
		p.SetPosition(200-50*id, 300)
		p.MarkSynced()
	}
	r.Ready(a)
	if r.State() != game.StateLobby {
		t.Fatalf("one ready player must not start the match")
	}
	r.Ready(b)
	if r.State() != game.StateGame {
		t.Fatalf("all players ready, state = %v, want GAME", r.State())
	}
	return a, b
}

func TestAddClientAssignsIDAndTeamByParity(t *testing.T) {
	r, _ := newTestRoom("match")
	a := join(r, "alice")
	b := join(r, "bob")

	pa := r.roster.byConn(a).Player
	pb := r.roster.byConn(b).Player
	if pa.ID != 0 || pb.ID != 1 {
		t.Fatalf("ids = %d,%d, want 0,1", pa.ID, pb.ID)
	}
	if pa.Team != game.TeamA || pb.Team != game.TeamB {
		t.Fatalf("teams = %v,%v, want A,B", pa.Team, pb.Team)
	}

	if a.count(protocol.MsgClearPlayers) != 1 {
		t.Fatalf("joiner did not get a clear-list")
	}
	assign, err := protocol.DecodePayload[protocol.AssignID](a.last(t, protocol.MsgAssignID))
	if err != nil {
		t.Fatalf("decode assign id: %v", err)
	}
	if assign.PlayerID != 0 {
		t.Fatalf("assigned id = %d, want 0", assign.PlayerID)
	}
	dims, err := protocol.DecodePayload[protocol.Dimensions](a.last(t, protocol.MsgSyncDimensions))
	if err != nil {
		t.Fatalf("decode dimensions: %v", err)
	}
	if dims.Width != game.ArenaWidth || dims.Height != game.ArenaHeight {
		t.Fatalf("dimensions = %dx%d", dims.Width, dims.Height)
	}
}

func TestPlayerIDsNotReusedAfterChurn(t *testing.T) {
	r, _ := newTestRoom(LobbyName)
	a := join(r, "alice")
	join(r, "bob")
	r.RemoveClient(a)
	c := join(r, "carol")
	if got := r.roster.byConn(c).Player.ID; got != 2 {
		t.Fatalf("id after churn = %d, want monotonic 2", got)
	}
}

func TestJoinReplaysExistingPlayersToNewcomer(t *testing.T) {
	r, _ := newTestRoom("match")
	join(r, "alice")
	b := join(r, "bob")

	// Newcomer hears about alice: status, direction, position, team.
	if b.count(protocol.MsgConnect) < 2 { // own join + alice replay
		t.Fatalf("newcomer missing connection statuses: %d", b.count(protocol.MsgConnect))
	}
	if b.count(protocol.MsgSyncPlayerDirection) == 0 {
		t.Fatalf("newcomer missing direction replay")
	}
	if b.count(protocol.MsgSyncPosition) < 2 {
		t.Fatalf("newcomer missing position replay")
	}
}

func TestReadyRejectedInLobby(t *testing.T) {
	r, _ := newTestRoom(LobbyName)
	a := join(r, "alice")
	a.reset()
	r.Ready(a)
	if r.State() != game.StateLobby {
		t.Fatalf("lobby must never leave LOBBY, state = %v", r.State())
	}
	if r.roster.byConn(a).Player.Ready {
		t.Fatalf("ready flag must not be set in the Lobby")
	}
	msg, err := protocol.DecodePayload[protocol.Message](a.last(t, protocol.MsgMessage))
	if err != nil {
		t.Fatalf("decode rejection: %v", err)
	}
	if msg.Message == "" {
		t.Fatalf("expected a rejection message")
	}
}

func TestReadyCheckStartsMatch(t *testing.T) {
	r, _ := newTestRoom("match")
	a, _ := startMatch(t, r)

	if r.teamAPlayers != 1 || r.teamBPlayers != 1 {
		t.Fatalf("team counts = %d,%d, want 1,1", r.teamAPlayers, r.teamBPlayers)
	}
	for _, cp := range r.roster.all() {
		if cp.Player.HP != game.MaxHP {
			t.Fatalf("player %d HP = %d, want %d", cp.Player.ID, cp.Player.HP, game.MaxHP)
		}
		if !cp.Player.Active {
			t.Fatalf("player %d not active after start", cp.Player.ID)
		}
	}
	if a.count(protocol.MsgGameStarted) != 1 {
		t.Fatalf("game-started broadcasts = %d, want 1", a.count(protocol.MsgGameStarted))
	}
	status, err := protocol.DecodePayload[protocol.GameStatus](a.last(t, protocol.MsgGameState))
	if err != nil {
		t.Fatalf("decode game state: %v", err)
	}
	if status.State != "GAME" {
		t.Fatalf("broadcast state = %q, want GAME", status.State)
	}
}

func TestFireGateAllowsOneProjectile(t *testing.T) {
	r, _ := newTestRoom("match")
	a, _ := startMatch(t, r)

	r.Fire(a)
	r.Fire(a)
	if len(r.projectiles) != 1 {
		t.Fatalf("projectiles in flight = %d, want 1", len(r.projectiles))
	}
	if !r.roster.byConn(a).Player.HasFired {
		t.Fatalf("fire-gate not set")
	}
}

func TestProjectileExitClearsFireGate(t *testing.T) {
	r, _ := newTestRoom("match")
	_, b := startMatch(t, r)
	// Move bob out of the bullet's row so it exits cleanly.
	r.roster.byID(1).Player.SetPosition(150, 600)

	r.Fire(b) // fires right from x=150
	b.reset()
	hpBefore := r.roster.byID(0).Player.HP

	for i := 0; i < (game.ArenaWidth/game.ProjectileSpeed)+10; i++ {
		r.Update()
		r.LateUpdate()
	}
	if len(r.projectiles) != 0 {
		t.Fatalf("projectile still in flight after crossing the arena")
	}
	if r.roster.byID(1).Player.HasFired {
		t.Fatalf("fire-gate not cleared after projectile left the arena")
	}
	if b.count(protocol.MsgShoot) == 0 {
		t.Fatalf("no projectile removal broadcast")
	}
	if got := r.roster.byID(0).Player.HP; got != hpBefore {
		t.Fatalf("HP changed on projectile exit: %d -> %d", hpBefore, got)
	}
}

// fireAndHit fires alice's projectile (team A at x=200, shooting left)
// at bob (x=150, same row) and steps the simulation until it resolves.
func fireAndHit(t *testing.T, r *Room, shooter *fakeConn) {
	t.Helper()
	r.Fire(shooter)
	for i := 0; i < 20; i++ {
		r.Update()
		r.LateUpdate()
		if len(r.projectiles) == 0 {
			return
		}
	}
	t.Fatalf("projectile never resolved")
}

func TestCombatScenarioEliminationEndsRound(t *testing.T) {
	r, clk := newTestRoom("match")
	a, _ := startMatch(t, r)
	victim := r.roster.byID(1).Player

	fireAndHit(t, r, a)
	if victim.HP != 2 {
		t.Fatalf("HP after first hit = %d, want 2", victim.HP)
	}
	if !victim.Active {
		t.Fatalf("player down after a single hit")
	}

	fireAndHit(t, r, a)
	if victim.HP != 1 {
		t.Fatalf("HP after second hit = %d, want 1", victim.HP)
	}

	a.reset()
	fireAndHit(t, r, a)
	if victim.HP != 0 {
		t.Fatalf("HP after third hit = %d, want 0", victim.HP)
	}
	if victim.Active {
		t.Fatalf("eliminated player still active")
	}
	if r.teamAScore != 1 || r.teamBScore != 0 {
		t.Fatalf("scores = %d,%d, want 1,0", r.teamAScore, r.teamBScore)
	}
	if r.State() != game.StateEnd {
		t.Fatalf("elimination condition did not end the round, state = %v", r.State())
	}
	if len(r.projectiles) != 0 {
		t.Fatalf("projectiles not cleared on END")
	}
	if a.count(protocol.MsgSyncScores) != 1 {
		t.Fatalf("score broadcasts = %d, want exactly 1", a.count(protocol.MsgSyncScores))
	}
	scores, err := protocol.DecodePayload[protocol.Scores](a.last(t, protocol.MsgSyncScores))
	if err != nil {
		t.Fatalf("decode scores: %v", err)
	}
	if scores.TeamA != 1 || scores.TeamB != 0 {
		t.Fatalf("broadcast scores = %+v", scores)
	}
	down, err := protocol.DecodePayload[protocol.Activity](a.last(t, protocol.MsgSetActivity))
	if err != nil {
		t.Fatalf("decode activity: %v", err)
	}
	// The last activity broadcast is the all-inactive END posture.
	if down.PlayerID != -1 || down.Active {
		t.Fatalf("END activity broadcast = %+v", down)
	}

	// Cooldown elapses, lobby reopens with a clean slate.
	a.reset()
	clk.Advance(game.EndCooldown + time.Second)
	r.Update()
	r.LateUpdate()
	if r.State() != game.StateLobby {
		t.Fatalf("cooldown elapsed, state = %v, want LOBBY", r.State())
	}
	if r.teamAScore != 0 || r.teamBScore != 0 {
		t.Fatalf("scores not reset: %d,%d", r.teamAScore, r.teamBScore)
	}
	if r.teamAPlayers != 0 || r.teamBPlayers != 0 {
		t.Fatalf("team counts not reset: %d,%d", r.teamAPlayers, r.teamBPlayers)
	}
	for _, cp := range r.roster.all() {
		if cp.Player.Ready {
			t.Fatalf("ready flag not cleared for player %d", cp.Player.ID)
		}
	}
	status, err := protocol.DecodePayload[protocol.GameStatus](a.last(t, protocol.MsgGameState))
	if err != nil {
		t.Fatalf("decode game state: %v", err)
	}
	if status.State != "LOBBY" {
		t.Fatalf("rebroadcast state = %q, want LOBBY", status.State)
	}
}

func TestSurvivingHitBroadcastsNotice(t *testing.T) {
	r, _ := newTestRoom("match")
	a, _ := startMatch(t, r)
	a.reset()
	fireAndHit(t, r, a)

	hp, err := protocol.DecodePayload[protocol.Health](a.last(t, protocol.MsgSyncHP))
	if err != nil {
		t.Fatalf("decode hp: %v", err)
	}
	if hp.PlayerID != 1 || hp.HP != 2 {
		t.Fatalf("hp broadcast = %+v, want player 1 at 2", hp)
	}
	msg, err := protocol.DecodePayload[protocol.Message](a.last(t, protocol.MsgMessage))
	if err != nil {
		t.Fatalf("decode notice: %v", err)
	}
	if msg.Message != "bob was hit!" {
		t.Fatalf("notice = %q", msg.Message)
	}
}

func TestTimerBroadcastOncePerMinute(t *testing.T) {
	r, clk := newTestRoom("match")
	a, _ := startMatch(t, r)
	a.reset()

	// A minute of one-second frames: exactly one timer broadcast, showing
	// four whole minutes remaining.
	for i := 0; i < 60; i++ {
		clk.Advance(time.Second)
		r.Update()
		r.LateUpdate()
	}
	if got := a.count(protocol.MsgTimer); got != 1 {
		t.Fatalf("timer broadcasts in first minute = %d, want 1", got)
	}
	timer, err := protocol.DecodePayload[protocol.Timer](a.last(t, protocol.MsgTimer))
	if err != nil {
		t.Fatalf("decode timer: %v", err)
	}
	if mins := timer.RemainingMs / 60_000; mins != 4 {
		t.Fatalf("remaining whole minutes = %d, want 4", mins)
	}

	clk.Advance(time.Second)
	r.Update()
	if got := a.count(protocol.MsgTimer); got != 2 {
		t.Fatalf("timer broadcasts after the minute boundary = %d, want 2", got)
	}
}

func TestRoundTimeoutEndsGame(t *testing.T) {
	r, clk := newTestRoom("match")
	a, _ := startMatch(t, r)
	r.Fire(a)

	clk.Advance(game.RoundTime + time.Second)
	r.Update()
	if r.State() != game.StateEnd {
		t.Fatalf("timeout did not end the round, state = %v", r.State())
	}
	if len(r.projectiles) != 0 {
		t.Fatalf("projectiles not cleared on timeout")
	}
}

func TestTimerFrozenOutsideMatch(t *testing.T) {
	r, clk := newTestRoom("match")
	join(r, "alice")

	clk.Advance(10 * time.Minute)
	r.Update()
	r.LateUpdate()
	if r.State() != game.StateLobby {
		t.Fatalf("idle lobby-state room changed state: %v", r.State())
	}
}

func TestDirectionChangeBroadcastsImmediately(t *testing.T) {
	r, _ := newTestRoom("match")
	a, b := startMatch(t, r)

	b.reset()
	r.SetDirection(a, 1, 0)
	dir, err := protocol.DecodePayload[protocol.PlayerDirection](b.last(t, protocol.MsgSyncPlayerDirection))
	if err != nil {
		t.Fatalf("decode direction: %v", err)
	}
	if dir.PlayerID != 0 || dir.X != 1 || dir.Y != 0 {
		t.Fatalf("direction broadcast = %+v", dir)
	}

	b.reset()
	r.SetDirection(a, 1, 0) // unchanged: no broadcast
	if b.count(protocol.MsgSyncPlayerDirection) != 0 {
		t.Fatalf("unchanged direction was broadcast")
	}
}

func TestDirectionIgnoredOutsideGame(t *testing.T) {
	r, _ := newTestRoom("match")
	a := join(r, "alice")
	a.reset()
	r.SetDirection(a, 1, 0)
	if a.count(protocol.MsgSyncPlayerDirection) != 0 {
		t.Fatalf("direction processed outside GAME")
	}
}

func TestMovementReflectsOffBounds(t *testing.T) {
	r, _ := newTestRoom("match")
	a, _ := startMatch(t, r)
	p := r.roster.byID(0).Player
	p.SetPosition(game.PlayerSize+1, 300)
	r.SetDirection(a, -1, 0)

	for i := 0; i < 10; i++ {
		r.Update()
		r.LateUpdate()
	}
	if p.X < game.PlayerSize {
		t.Fatalf("player escaped the arena: x=%d", p.X)
	}
	if p.X != game.PlayerSize {
		t.Fatalf("player not clamped to the west edge: x=%d", p.X)
	}
}

func TestPeriodicPositionResync(t *testing.T) {
	r, _ := newTestRoom("match")
	a, _ := startMatch(t, r)
	r.SetDirection(a, 1, 0)
	a.reset()

	for i := 0; i < int(protocol.PositionSyncFrames); i++ {
		r.Update()
		r.LateUpdate()
	}
	// Exactly one resync for the mover in a full sync window (the frame
	// counter hits the boundary once), none for the idle player.
	syncs := 0
	a.mu.Lock()
	for _, env := range a.sent {
		if env.T != protocol.MsgSyncPosition {
			continue
		}
		pos, err := protocol.DecodePayload[protocol.Position](env)
		if err != nil {
			a.mu.Unlock()
			t.Fatalf("decode position: %v", err)
		}
		if pos.PlayerID == 0 {
			syncs++
		} else {
			a.mu.Unlock()
			t.Fatalf("idle player %d got a resync", pos.PlayerID)
		}
	}
	a.mu.Unlock()
	if syncs != 1 {
		t.Fatalf("resyncs for the mover = %d, want 1", syncs)
	}
}

func TestBroadcastPrunesFailedConn(t *testing.T) {
	r, _ := newTestRoom(LobbyName)
	a := join(r, "alice")
	b := join(r, "bob")

	b.failSends = true
	a.reset()
	r.HandleChat(a, "hello")
	if got := r.NumPlayers(); got != 1 {
		t.Fatalf("roster after failed send = %d, want 1", got)
	}
	status, err := protocol.DecodePayload[protocol.ConnectionStatus](a.last(t, protocol.MsgDisconnect))
	if err != nil {
		t.Fatalf("decode disconnect: %v", err)
	}
	if status.Connected || status.PlayerID != 1 {
		t.Fatalf("disconnect notice = %+v", status)
	}
	if a.count(protocol.MsgMessage) != 1 {
		t.Fatalf("survivor did not get the chat message")
	}
}

func TestChatBroadcastVerbatim(t *testing.T) {
	r, _ := newTestRoom(LobbyName)
	a := join(r, "alice")
	b := join(r, "bob")
	b.reset()
	r.HandleChat(a, "gl hf")
	msg, err := protocol.DecodePayload[protocol.Message](b.last(t, protocol.MsgMessage))
	if err != nil {
		t.Fatalf("decode chat: %v", err)
	}
	if msg.Name != "alice" || msg.Message != "gl hf" {
		t.Fatalf("chat = %+v", msg)
	}
}

func TestMalformedCommandDropped(t *testing.T) {
	r, _ := newTestRoom(LobbyName)
	a := join(r, "alice")
	b := join(r, "bob")
	b.reset()
	r.HandleChat(a, "/createroom")
	r.HandleChat(a, "/blargh x")
	if got := b.count(protocol.MsgMessage); got != 0 {
		t.Fatalf("malformed commands were broadcast: %d messages", got)
	}
}
