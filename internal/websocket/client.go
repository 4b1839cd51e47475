package websocket

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"relay-go/internal/chattypes"
	"relay-go/internal/config"
)

// EventHandler processes one inbound event from a connection.
type EventHandler func(c *Client, evt chattypes.InboundEvent)

// CloseHandler runs once when a connection's read loop ends.
type CloseHandler func(c *Client)

// Client is a middleman between one websocket connection and the hub.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan []byte

	// Connection id, unique per connection.
	ID string

	// Participant identity, set once the join event is accepted. Written and
	// read only from the readPump goroutine, so no lock is needed.
	nickname string
	color    string
	joined   bool

	handleEvent  EventHandler
	closeHandler CloseHandler
}

// SessionID returns the connection id.
func (c *Client) SessionID() string {
	return c.ID
}

// SetIdentity records the participant identity after a successful join.
func (c *Client) SetIdentity(nickname, color string) {
	c.nickname = nickname
	c.color = color
	c.joined = true
}

// Identity returns the participant identity and whether the connection has
// completed a join.
func (c *Client) Identity() (nickname, color string, joined bool) {
	return c.nickname, c.color, c.joined
}

// readPump pumps events from the websocket connection to the event handler.
func (c *Client) readPump(wsCfg config.WebSocketConfig) {
	defer func() {
		if c.closeHandler != nil {
			c.closeHandler(c)
		}
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(int64(wsCfg.MaxMessageSizeBytes))
	c.conn.SetReadDeadline(time.Now().Add(time.Duration(wsCfg.PongWaitSeconds) * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(time.Duration(wsCfg.PongWaitSeconds) * time.Second))
		return nil
	})

	for {
		messageType, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.S().Warnw("websocket closed unexpectedly", "connId", c.ID, "error", err)
			}
			break
		}
		if messageType != websocket.TextMessage {
			zap.S().Debugw("ignoring non-text websocket frame", "connId", c.ID, "frameType", messageType)
			continue
		}

		var evt chattypes.InboundEvent
		if err := json.Unmarshal(raw, &evt); err != nil {
			zap.S().Warnw("failed to parse inbound event", "connId", c.ID, "error", err)
			continue
		}
		if c.handleEvent != nil {
			c.handleEvent(c, evt)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump(wsCfg config.WebSocketConfig) {
	ticker := time.NewTicker(time.Duration(wsCfg.PingPeriodSeconds) * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(time.Duration(wsCfg.WriteWaitSeconds) * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(time.Duration(wsCfg.WriteWaitSeconds) * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeConnection upgrades an HTTP request to a websocket connection,
// registers it with the hub and starts its pumps. onConnect runs after
// registration, before any inbound event is processed.
func ServeConnection(hub *Hub, handler EventHandler, closeHandler CloseHandler, onConnect func(c *Client), w http.ResponseWriter, r *http.Request, wsCfg config.WebSocketConfig) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("websocket upgrade failed", "error", err)
		return
	}
	client := &Client{
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, wsCfg.SendBufferSize),
		ID:           uuid.New().String(),
		handleEvent:  handler,
		closeHandler: closeHandler,
	}
	client.hub.register <- client

	go client.writePump(wsCfg)

	if onConnect != nil {
		onConnect(client)
	}
	go client.readPump(wsCfg)

	zap.S().Debugw("connection established", "connId", client.ID)
}
