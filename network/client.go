package network

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"arena/room"
)

const writeWait = 10 * time.Second

// Client wraps one websocket connection as a room.Conn. Sends are
// serialized by a write mutex; the room side treats a failed send as a
// disconnect, so Send never retries.
type Client struct {
	session string
	name    string // set once during the connect handshake
	log     *slog.Logger

	ws      *websocket.Conn
	writeMu sync.Mutex

	current   atomic.Pointer[room.Room]
	closeOnce sync.Once
}

func newClient(ws *websocket.Conn, log *slog.Logger) *Client {
	session := uuid.NewString()
	return &Client{
		session: session,
		log:     log.With("session", session),
		ws:      ws,
	}
}

func (c *Client) Name() string { return c.name }

func (c *Client) Send(b []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, b)
}

func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() { err = c.ws.Close() })
	return err
}

func (c *Client) SetRoom(r *room.Room) { c.current.Store(r) }

func (c *Client) Room() *room.Room { return c.current.Load() }

func (c *Client) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.PingMessage, nil)
}
