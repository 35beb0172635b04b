package websocket

import (
	"sync"

	"SamLoc/internal/utils"
)

// HubInterface is what the game manager needs from the hub.
type HubInterface interface {
	BroadcastToPlayers(ids []string, msg OutgoingMessage)
	SendToPlayer(id string, msg OutgoingMessage)
}

var _ HubInterface = (*Hub)(nil)

// Hub tracks one live connection per player id. A new connection for the same
// player replaces the old one.
type Hub struct {
	clients    map[string]*Client // player id -> client
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}
	closeOnce  sync.Once
	mu         sync.RWMutex

	// OnIncoming runs on the sending client's read goroutine.
	OnIncoming func(IncomingMessage)
	// OnDisconnect runs on its own goroutine once a player's live connection is gone.
	OnDisconnect func(playerID string)
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	utils.Log.Info("hub started")

	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if old, ok := h.clients[c.PlayerID]; ok && old != c {
				close(old.Send)
			}
			h.clients[c.PlayerID] = c
			n := len(h.clients)
			h.mu.Unlock()
			utils.Log.Debug("hub register", "player", c.PlayerID, "clients", n)

		case c := <-h.unregister:
			h.mu.Lock()
			current, ok := h.clients[c.PlayerID]
			if ok && current == c {
				delete(h.clients, c.PlayerID)
				close(c.Send)
			}
			n := len(h.clients)
			h.mu.Unlock()

			if ok && current == c {
				utils.Log.Debug("hub unregister", "player", c.PlayerID, "clients", n)
				if h.OnDisconnect != nil {
					go h.OnDisconnect(c.PlayerID)
				}
			}

		case <-h.quit:
			h.mu.Lock()
			for id, c := range h.clients {
				close(c.Send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			utils.Log.Info("hub stopped")
			return
		}
	}
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.quit:
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

func (h *Hub) dispatch(msg IncomingMessage) {
	if h.OnIncoming != nil {
		h.OnIncoming(msg)
	}
}

// BroadcastToPlayers never blocks; a client whose buffer is full misses the message.
func (h *Hub) BroadcastToPlayers(ids []string, msg OutgoingMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, id := range ids {
		if c, ok := h.clients[id]; ok {
			h.trySend(c, msg)
		}
	}
}

func (h *Hub) SendToPlayer(id string, msg OutgoingMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.clients[id]; ok {
		h.trySend(c, msg)
	}
}

func (h *Hub) trySend(c *Client, msg OutgoingMessage) {
	select {
	case c.Send <- msg:
	default:
		utils.Log.Warn("send buffer full, dropping message", "player", c.PlayerID, "event", msg.Event)
	}
}

func (h *Hub) ClientByID(id string) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[id]
	return c, ok
}

func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.quit) })
}
