package room

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// RoomInfo is returned by the API for the server list.
type RoomInfo struct {
	Name    string `json:"name"`
	Players int    `json:"players"`
	State   string `json:"state"`
}

// Manager is the room registry: rooms by name, plus the distinguished
// Lobby that always exists. It implements Registry, which rooms receive
// at construction for create/join delegation.
type Manager struct {
	log *slog.Logger

	mu     sync.RWMutex
	rooms  map[string]*Room
	lobby  *Room
	nextID int
}

func NewManager(log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	m := &Manager{
		log:   log,
		rooms: make(map[string]*Room),
	}
	m.lobby = New(m.allocID(), LobbyName, m, log)
	m.rooms[strings.ToLower(LobbyName)] = m.lobby
	go m.lobby.Run()
	return m
}

func (m *Manager) allocID() int {
	id := m.nextID
	m.nextID++
	return id
}

func (m *Manager) Lobby() *Room { return m.lobby }

// CreateRoom registers a new named room and starts its tick loop.
func (m *Manager) CreateRoom(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("create room: empty name")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(name)
	if _, exists := m.rooms[key]; exists {
		return fmt.Errorf("create room: %q already exists", name)
	}
	r := New(m.allocID(), name, m, m.log)
	m.rooms[key] = r
	go r.Run()
	m.log.Info("room created", "room", name)
	return nil
}

// JoinRoom moves a connection from its current room into the named one.
func (m *Manager) JoinRoom(name string, c Conn) error {
	m.mu.RLock()
	target, ok := m.rooms[strings.ToLower(name)]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("join room: no room named %q", name)
	}
	if cur := c.Room(); cur == target {
		return nil
	} else if cur != nil {
		cur.RemoveClient(c)
	}
	target.AddClient(c)
	return nil
}

func (m *Manager) JoinLobby(c Conn) {
	if cur := c.Room(); cur == m.lobby {
		return
	} else if cur != nil {
		cur.RemoveClient(c)
	}
	m.lobby.AddClient(c)
}

// ListRooms returns room names matching the search string, sorted.
func (m *Manager) ListRooms(search string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	needle := strings.ToLower(search)
	out := make([]string, 0, len(m.rooms))
	for _, r := range m.rooms {
		if needle == "" || strings.Contains(strings.ToLower(r.Name()), needle) {
			out = append(out, r.Name())
		}
	}
	sort.Strings(out)
	return out
}

// Rooms returns the server-list view of every room.
func (m *Manager) Rooms() []RoomInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RoomInfo, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, RoomInfo{
			Name:    r.Name(),
			Players: r.NumPlayers(),
			State:   r.State().String(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DropRoom forgets a closed room. The Lobby is never dropped.
func (m *Manager) DropRoom(r *Room) {
	if r == m.lobby {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(r.Name())
	if m.rooms[key] == r {
		delete(m.rooms, key)
		m.log.Info("room removed", "room", r.Name())
	}
}
