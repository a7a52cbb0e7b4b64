package network

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"arena/protocol"
	"arena/room"
)

const (
	readLimit  = 1 << 20
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
)

// Server accepts websocket connections and feeds decoded client events
// into the room engine.
type Server struct {
	manager  *room.Manager
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewServer(manager *room.Manager, allowedOrigin string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		manager: manager,
		log:     log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		},
	}
}

// HandleWS upgrades the connection, waits for the connect handshake and
// then pumps inbound events into the client's current room until the
// peer goes away.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", "err", err)
		return
	}

	c := newClient(ws, s.log)
	defer func() {
		if cur := c.Room(); cur != nil {
			cur.RemoveClient(c)
		}
		_ = c.Close()
	}()

	ws.SetReadLimit(readLimit)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := c.ping(); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	// First message must be the connect handshake carrying the name.
	env, ok := s.readEnvelope(c)
	if !ok || env.T != protocol.MsgConnect {
		c.log.Warn("missing connect handshake")
		return
	}
	hello, err := protocol.DecodePayload[protocol.Connect](env)
	if err != nil {
		c.log.Warn("bad connect payload", "err", err)
		return
	}
	c.name = hello.Name
	if c.name == "" {
		c.name = "anon-" + c.session[:8]
	}
	c.log.Info("client connected", "name", c.name)
	s.manager.JoinLobby(c)

	for {
		env, ok := s.readEnvelope(c)
		if !ok {
			return
		}
		s.dispatch(c, env)
	}
}

func (s *Server) readEnvelope(c *Client) (protocol.Envelope, bool) {
	_, b, err := c.ws.ReadMessage()
	if err != nil {
		c.log.Info("read loop done", "err", err)
		return protocol.Envelope{}, false
	}
	env, err := protocol.DecodeEnvelope(b)
	if err != nil {
		c.log.Warn("dropping undecodable message", "err", err)
		return protocol.Envelope{}, true
	}
	return env, true
}

// dispatch routes one inbound envelope. Decode failures are logged and
// the message dropped; nothing here surfaces an error to the peer.
func (s *Server) dispatch(c *Client, env protocol.Envelope) {
	if env.T == "" {
		return
	}
	cur := c.Room()
	switch env.T {
	case protocol.MsgMessage:
		p, err := protocol.DecodePayload[protocol.Chat](env)
		if err == nil && cur != nil {
			cur.HandleChat(c, p.Message)
		}
	case protocol.MsgSyncDirection:
		p, err := protocol.DecodePayload[protocol.Direction](env)
		if err == nil && cur != nil {
			cur.SetDirection(c, p.X, p.Y)
		}
	case protocol.MsgShoot:
		if cur != nil {
			cur.Fire(c)
		}
	case protocol.MsgReady:
		if cur != nil {
			cur.Ready(c)
		}
	case protocol.MsgCreateRoom:
		p, err := protocol.DecodePayload[protocol.CreateRoom](env)
		if err != nil {
			break
		}
		if err := s.manager.CreateRoom(p.Name); err != nil {
			c.log.Warn("create room", "err", err)
			break
		}
		_ = s.manager.JoinRoom(p.Name, c)
	case protocol.MsgJoinRoom:
		p, err := protocol.DecodePayload[protocol.JoinRoom](env)
		if err != nil {
			break
		}
		if err := s.manager.JoinRoom(p.Name, c); err != nil {
			c.log.Warn("join room", "err", err)
		}
	case protocol.MsgGetRooms:
		p, _ := protocol.DecodePayload[protocol.GetRooms](env)
		b, err := protocol.Encode(protocol.MsgGetRooms, protocol.RoomList{
			Rooms: s.manager.ListRooms(p.Search),
		})
		if err == nil {
			_ = c.Send(b)
		}
	default:
		c.log.Debug("unhandled message type", "type", env.T)
	}
}

// HandleRooms serves the room list for the server browser.
func (s *Server) HandleRooms(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.manager.Rooms())
}
