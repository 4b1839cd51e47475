package websocket

import (
	"encoding/json"

	"go.uber.org/zap"
)

// directMessage targets a single connection.
type directMessage struct {
	connID  string
	payload []byte
}

// Hub maintains the set of active connections and fans events out to them.
// All map access happens inside the Run loop, so registration, broadcast and
// direct delivery never race.
type Hub struct {
	// Registered connections by connection id.
	clients map[string]*Client

	// Events for every connected client.
	broadcast chan []byte

	// Events aimed at one connection.
	direct chan directMessage

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan []byte, 256),
		direct:     make(chan directMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// SendToAll delivers event to every connected client.
func (h *Hub) SendToAll(event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		zap.S().Errorw("failed to serialize broadcast event", "error", err)
		return
	}
	h.broadcast <- payload
}

// SendToOne delivers event to the connection with the given id only. Unknown
// ids are ignored: the connection may have closed between enumeration and
// delivery.
func (h *Hub) SendToOne(connID string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		zap.S().Errorw("failed to serialize direct event", "connId", connID, "error", err)
		return
	}
	h.direct <- directMessage{connID: connID, payload: payload}
}

// Run starts the hub and listens for events on its channels.
func (h *Hub) Run() {
	zap.S().Info("websocket hub started")
	for {
		select {
		case client := <-h.register:
			h.clients[client.ID] = client
			zap.S().Debugw("connection registered", "connId", client.ID)

		case client := <-h.unregister:
			if stored, ok := h.clients[client.ID]; ok && stored == client {
				delete(h.clients, client.ID)
				close(client.send)
				zap.S().Debugw("connection unregistered", "connId", client.ID)
			}

		case payload := <-h.broadcast:
			for connID, client := range h.clients {
				select {
				case client.send <- payload:
				default:
					// Send buffer full: the client is slow or gone, drop it
					// rather than stall the fan-out.
					zap.S().Warnw("send buffer full on broadcast, dropping connection", "connId", connID)
					close(client.send)
					delete(h.clients, connID)
				}
			}

		case msg := <-h.direct:
			client, ok := h.clients[msg.connID]
			if !ok {
				continue
			}
			select {
			case client.send <- msg.payload:
			default:
				zap.S().Warnw("send buffer full on direct delivery, dropping connection", "connId", msg.connID)
				close(client.send)
				delete(h.clients, msg.connID)
			}
		}
	}
}
