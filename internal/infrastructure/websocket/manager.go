package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"otomart/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one connected session. A user with several open tabs holds
// several Clients; each tracks at most one actively viewed conversation.
// Clients are created by the websocket handler and owned by the Manager —
// there is no package-level connection state.
type Client struct {
	SessionID          string
	UserID             string
	Conn               *websocket.Conn
	Send               chan []byte
	ActiveConversation string
}

// Manager is the push fan-out: it registers sessions, tracks which sessions
// are viewing which conversation, and delivers encoded events. Per-
// conversation ordering holds because each session's events go through its
// single Send channel drained by one WritePump.
type Manager struct {
	clients    map[string]map[string]*Client // userID -> sessionID -> client
	rooms      map[string]map[string]*Client // conversationID -> sessionID -> client
	Register   chan *Client
	Unregister chan *Client
	mutex      sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Start runs the manager's registration loop in a goroutine.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				if m.clients[client.UserID] == nil {
					m.clients[client.UserID] = make(map[string]*Client)
				}
				m.clients[client.UserID][client.SessionID] = client
				m.mutex.Unlock()
				logger.Info("Session registered: user=%s session=%s", client.UserID, client.SessionID)

			case client := <-m.Unregister:
				m.mutex.Lock()
				m.removeClientLocked(client)
				m.mutex.Unlock()
				logger.Info("Session unregistered: user=%s session=%s", client.UserID, client.SessionID)

			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *Manager) removeClientLocked(client *Client) {
	sessions, ok := m.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := sessions[client.SessionID]; !ok {
		return
	}
	delete(sessions, client.SessionID)
	if len(sessions) == 0 {
		delete(m.clients, client.UserID)
	}
	for conversationID, room := range m.rooms {
		if _, ok := room[client.SessionID]; ok {
			delete(room, client.SessionID)
			if len(room) == 0 {
				delete(m.rooms, conversationID)
			}
		}
	}
	close(client.Send)
}

// JoinConversation subscribes the session to a conversation's event stream.
// Authorization (participant check) happens at the handler layer before this
// is called. Switching conversations leaves the previous room first.
func (m *Manager) JoinConversation(client *Client, conversationID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if client.ActiveConversation != "" && client.ActiveConversation != conversationID {
		m.leaveLocked(client, client.ActiveConversation)
	}

	if m.rooms[conversationID] == nil {
		m.rooms[conversationID] = make(map[string]*Client)
	}
	m.rooms[conversationID][client.SessionID] = client
	client.ActiveConversation = conversationID
}

func (m *Manager) LeaveConversation(client *Client, conversationID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.leaveLocked(client, conversationID)
	if client.ActiveConversation == conversationID {
		client.ActiveConversation = ""
	}
}

func (m *Manager) leaveLocked(client *Client, conversationID string) {
	room, ok := m.rooms[conversationID]
	if !ok {
		return
	}
	delete(room, client.SessionID)
	if len(room) == 0 {
		delete(m.rooms, conversationID)
	}
}

// SendToUser delivers an event to every session of one user.
func (m *Manager) SendToUser(userID string, event ChangeEvent) {
	payload := Encode(event)
	if payload == nil {
		return
	}

	m.mutex.RLock()
	sessions := make([]*Client, 0, len(m.clients[userID]))
	for _, client := range m.clients[userID] {
		sessions = append(sessions, client)
	}
	m.mutex.RUnlock()

	for _, client := range sessions {
		m.deliver(client, payload)
	}
}

// SendToConversation delivers an event to every session currently viewing
// the conversation, optionally excluding one session (the originator).
// Exclusion is per session, not per user: the originator's other open tabs
// still receive the event.
func (m *Manager) SendToConversation(conversationID string, event ChangeEvent, excludeSessionID string) {
	payload := Encode(event)
	if payload == nil {
		return
	}

	m.mutex.RLock()
	viewers := make([]*Client, 0, len(m.rooms[conversationID]))
	for _, client := range m.rooms[conversationID] {
		if client.SessionID != excludeSessionID {
			viewers = append(viewers, client)
		}
	}
	m.mutex.RUnlock()

	for _, client := range viewers {
		m.deliver(client, payload)
	}
}

// SendToClient delivers an event to a single session, for direct replies
// like pong and protocol errors.
func (m *Manager) SendToClient(client *Client, event ChangeEvent) {
	payload := Encode(event)
	if payload == nil {
		return
	}
	m.deliver(client, payload)
}

func (m *Manager) deliver(client *Client, payload []byte) {
	defer func() {
		// Send on a channel closed by a concurrent unregister; the event is
		// lost, which the reconciliation poll covers.
		if r := recover(); r != nil {
			logger.Warn("Dropped event for closed session %s", client.SessionID)
		}
	}()

	select {
	case client.Send <- payload:
	default:
		logger.Warn("Send buffer full for user=%s session=%s, dropping session", client.UserID, client.SessionID)
		m.Unregister <- client
	}
}

// ConnectedUserIDs snapshots the users with at least one live session, for
// the reconciliation poll.
func (m *Manager) ConnectedUserIDs() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	ids := make([]string, 0, len(m.clients))
	for userID := range m.clients {
		ids = append(ids, userID)
	}
	return ids
}

// ReadPump reads client messages until the connection dies, handing each to
// handle. There is no server-side reconnect: when the pump exits the session
// is unregistered and the caller must establish a fresh subscription.
func (c *Client) ReadPump(m *Manager, handle func(*Client, []byte)) {
	defer func() {
		m.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("Websocket read error for user %s: %v", c.UserID, err)
			}
			break
		}

		handle(c, message)
	}
}

// WritePump drains the Send channel to the connection and keeps the
// connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("Websocket write error for user %s: %v", c.UserID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
