package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

// ClientConnection wraps one WebSocket connection with metadata. A user may
// hold several at once (one per device).
type ClientConnection struct {
	Conn       *websocket.Conn
	Username   string
	LastPong   time.Time
	PingTicker *time.Ticker
	CloseChan  chan struct{}

	writeMu sync.Mutex
}

func (c *ClientConnection) write(frameType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteMessage(frameType, data)
}

// Hub is the delivery broker: it tracks every live connection per username
// and per topic, and pushes payloads to them best-effort. A failed push is
// never retried; durable storage is the source of truth.
type Hub struct {
	mu           sync.RWMutex
	byUser       map[string]map[*websocket.Conn]*ClientConnection
	byTopic      map[string]map[*websocket.Conn]*ClientConnection
	pingInterval time.Duration
	pongTimeout  time.Duration
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	hub := &Hub{
		byUser:       make(map[string]map[*websocket.Conn]*ClientConnection),
		byTopic:      make(map[string]map[*websocket.Conn]*ClientConnection),
		pingInterval: 30 * time.Second,
		pongTimeout:  90 * time.Second,
	}

	go hub.connectionHealthChecker()

	return hub
}

// Register adds a connection for a username and starts health monitoring.
func (h *Hub) Register(username string, conn *websocket.Conn) *ClientConnection {
	client := &ClientConnection{
		Conn:       conn,
		Username:   username,
		LastPong:   time.Now(),
		PingTicker: time.NewTicker(h.pingInterval),
		CloseChan:  make(chan struct{}),
	}

	conn.SetPongHandler(func(appData string) error {
		h.mu.Lock()
		if conns, ok := h.byUser[username]; ok {
			if c, ok := conns[conn]; ok {
				c.LastPong = time.Now()
			}
		}
		h.mu.Unlock()
		return nil
	})
	conn.SetReadDeadline(time.Now().Add(h.pongTimeout))

	h.mu.Lock()
	if h.byUser[username] == nil {
		h.byUser[username] = make(map[*websocket.Conn]*ClientConnection)
	}
	h.byUser[username][conn] = client
	total := len(h.byUser[username])
	h.mu.Unlock()

	go h.pingRoutine(client)

	log.Printf("User %s connected to hub (connections: %d)", username, total)
	return client
}

// Unregister removes one connection and its topic subscriptions.
func (h *Hub) Unregister(client *ClientConnection) {
	h.mu.Lock()
	if conns, ok := h.byUser[client.Username]; ok {
		if c, ok := conns[client.Conn]; ok {
			if c.PingTicker != nil {
				c.PingTicker.Stop()
			}
			select {
			case <-c.CloseChan:
			default:
				close(c.CloseChan)
			}
			delete(conns, client.Conn)
		}
		if len(conns) == 0 {
			delete(h.byUser, client.Username)
		}
	}
	for _, subscribers := range h.byTopic {
		delete(subscribers, client.Conn)
	}
	h.mu.Unlock()

	log.Printf("User %s disconnected from hub", client.Username)
}

// Subscribe adds a connection to a shared topic.
func (h *Hub) Subscribe(topic string, client *ClientConnection) {
	h.mu.Lock()
	if h.byTopic[topic] == nil {
		h.byTopic[topic] = make(map[*websocket.Conn]*ClientConnection)
	}
	h.byTopic[topic][client.Conn] = client
	h.mu.Unlock()
}

// IsOnline reports whether a user has at least one live connection.
func (h *Hub) IsOnline(username string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser[username]) > 0
}

// OnlineUsernames returns every username with a live connection.
func (h *Hub) OnlineUsernames() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]string, 0, len(h.byUser))
	for username := range h.byUser {
		users = append(users, username)
	}
	return users
}

// Count returns the number of live connections across all users.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, conns := range h.byUser {
		total += len(conns)
	}
	return total
}

// DeliverToUser pushes a payload to every live connection of one user.
// A user with no connections is not an error; the payload is simply dropped.
func (h *Hub) DeliverToUser(username string, payload interface{}) {
	h.mu.RLock()
	clients := make([]*ClientConnection, 0, len(h.byUser[username]))
	for _, client := range h.byUser[username] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	if len(clients) == 0 {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling payload for user %s: %v", username, err)
		return
	}

	for _, client := range clients {
		if err := client.write(websocket.TextMessage, data); err != nil {
			log.Printf("Error delivering to user %s: %v", username, err)
			h.Unregister(client)
		}
	}
}

// Broadcast pushes a payload to every subscriber of a topic.
func (h *Hub) Broadcast(topic string, payload interface{}) {
	h.mu.RLock()
	clients := make([]*ClientConnection, 0, len(h.byTopic[topic]))
	for _, client := range h.byTopic[topic] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling broadcast payload: %v", err)
		return
	}

	for _, client := range clients {
		if err := client.write(websocket.TextMessage, data); err != nil {
			log.Printf("Error broadcasting to user %s: %v", client.Username, err)
			h.Unregister(client)
		}
	}
}

// pingRoutine sends periodic ping frames to keep the connection alive.
func (h *Hub) pingRoutine(client *ClientConnection) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Ping routine recovered from panic for user %s: %v", client.Username, r)
		}
	}()

	for {
		select {
		case <-client.CloseChan:
			return
		case <-client.PingTicker.C:
			if err := client.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
				log.Printf("Ping failed for user %s: %v", client.Username, err)
				h.Unregister(client)
				return
			}
		}
	}
}

// connectionHealthChecker drops connections that stopped answering pings.
func (h *Hub) connectionHealthChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		h.mu.RLock()
		dead := make([]*ClientConnection, 0)
		now := time.Now()
		for _, conns := range h.byUser {
			for _, client := range conns {
				if now.Sub(client.LastPong) > h.pongTimeout {
					dead = append(dead, client)
				}
			}
		}
		h.mu.RUnlock()

		for _, client := range dead {
			log.Printf("Removing dead connection for user %s (no pong received)", client.Username)
			h.Unregister(client)
		}
	}
}
