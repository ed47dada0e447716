package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans change notifications out to the subscribers of each game
type Hub struct {
	// game -> connections
	subscribers map[string]map[*Connection]struct{}

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	quit       chan struct{}
	closeOnce  sync.Once
}

// Connection represents one subscriber
type Connection struct {
	Game   string
	Player string // empty for anonymous watchers
	Send   chan []byte
}

// BroadcastMessage is a message for every subscriber of a game
type BroadcastMessage struct {
	Game    string
	Message *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		subscribers: make(map[string]map[*Connection]struct{}),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan *BroadcastMessage, 256),
		quit:        make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.subscribers[conn.Game] == nil {
				h.subscribers[conn.Game] = make(map[*Connection]struct{})
			}
			h.subscribers[conn.Game][conn] = struct{}{}
			h.mu.Unlock()
			slog.Debug("subscriber connected", "game", conn.Game, "player", conn.Player)

		case conn := <-h.unregister:
			h.mu.Lock()
			if subs, ok := h.subscribers[conn.Game]; ok {
				if _, ok := subs[conn]; ok {
					delete(subs, conn)
					close(conn.Send)
					slog.Debug("subscriber disconnected", "game", conn.Game, "player", conn.Player)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Message)
			if err != nil {
				slog.Warn("failed to encode notification", "game", msg.Game, "error", err)
				continue
			}
			h.mu.RLock()
			for conn := range h.subscribers[msg.Game] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()

		case <-h.quit:
			h.mu.Lock()
			for _, subs := range h.subscribers {
				for conn := range subs {
					close(conn.Send)
				}
			}
			h.subscribers = make(map[string]map[*Connection]struct{})
			h.mu.Unlock()
			return
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.quit:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.quit:
	}
}

// Subscribers returns the number of connections watching game
func (h *Hub) Subscribers(game string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[game])
}

// Publish queues a notification for a game (implements service.Broadcaster).
// It never blocks the caller; notifications are dropped when the queue is full.
func (h *Hub) Publish(game string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("failed to encode notification payload", "game", game, "type", msgType, "error", err)
		return
	}
	select {
	case h.broadcast <- &BroadcastMessage{Game: game, Message: &Message{Type: msgType, Payload: data}}:
	default:
		slog.Warn("notification queue full, dropping", "game", game, "type", msgType)
	}
}

// Close disconnects every subscriber and stops the hub
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.quit) })
}
