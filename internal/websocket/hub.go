package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/fairwaylabs/swinglab/pkg/models"
)

// Hub manages WebSocket connections and pushes finished analysis
// reports to subscribed clients.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu sync.RWMutex
}

// Client is one WebSocket connection. A client may subscribe to a
// single session id; an empty sessionID receives everything.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	sessionID string
}

// reportEvent is the wire envelope pushed to clients.
type reportEvent struct {
	Type      string                      `json:"type"`
	SessionID string                      `json:"session_id,omitempty"`
	Report    *models.SwingAnalysisReport `json:"report"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte),
	}
}

// Run processes register/unregister/broadcast events until the process
// exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("[WEBSOCKET] Client registered: %p, session: %s", client, client.sessionID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Printf("[WEBSOCKET] Client unregistered: %p", client)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastReport pushes a finished report to all connected clients.
// Session filtering happens in writePump via the envelope's session id.
func (h *Hub) BroadcastReport(report *models.SwingAnalysisReport) {
	message, err := json.Marshal(&reportEvent{
		Type:      "swing_report",
		SessionID: report.SessionID,
		Report:    report,
	})
	if err != nil {
		log.Printf("[ERROR] Failed to marshal report event: %v", err)
		return
	}

	select {
	case h.broadcast <- message:
	default:
		log.Printf("[WARN] Broadcast channel full, dropping message")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the HTTP connection and registers the client.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ERROR] Failed to upgrade connection: %v", err)
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, 256),
		sessionID: r.URL.Query().Get("session_id"),
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump drains incoming messages until the client disconnects.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[ERROR] WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump sends queued messages to the client, skipping events for
// other sessions when the client subscribed to one.
func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if c.sessionID != "" {
			var ev reportEvent
			if err := json.Unmarshal(message, &ev); err == nil && ev.SessionID != "" && ev.SessionID != c.sessionID {
				continue
			}
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("[ERROR] Failed to write message: %v", err)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
