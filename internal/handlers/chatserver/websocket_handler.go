package chatserver

import (
	"net/http"

	"relay-go/internal/chattypes"
	"relay-go/internal/config"
	"relay-go/internal/relay"
	ws "relay-go/internal/websocket"
)

// WebSocketHandler upgrades connections and glues them to the router.
type WebSocketHandler struct {
	hub    *ws.Hub
	router relay.Router
	cfg    config.Config
}

// NewWebSocketHandler creates a new WebSocketHandler instance.
func NewWebSocketHandler(hub *ws.Hub, router relay.Router, cfg config.Config) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		router: router,
		cfg:    cfg,
	}
}

// ServeWS handles websocket requests from peers. History replay starts as
// soon as the connection is registered, before the client's join event.
func (h *WebSocketHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws.ServeConnection(
		h.hub,
		func(c *ws.Client, evt chattypes.InboundEvent) { h.router.HandleEvent(c, evt) },
		func(c *ws.Client) { h.router.HandleDisconnect(c) },
		func(c *ws.Client) { h.router.HandleConnect(c) },
		w, r, h.cfg.WebSocket,
	)
}

// HealthCheckHandler reports liveness.
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "alive"})
}
