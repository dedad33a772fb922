package handler

import (
	"github.com/gofiber/contrib/websocket"

	"scenecraft-backend/internal/relay"
)

// RelayWSHandler bridges websocket connections into the relay hub
type RelayWSHandler struct {
	hub *relay.Hub
}

// NewRelayWSHandler creates the relay websocket handler
func NewRelayWSHandler(hub *relay.Hub) *RelayWSHandler {
	return &RelayWSHandler{hub: hub}
}

// HandleWebSocket runs one relay session. The connection carries no
// identity; room membership comes only from explicit join frames.
func (h *RelayWSHandler) HandleWebSocket(c *websocket.Conn) {
	client := relay.NewClient(c)
	h.hub.Register(client)

	defer func() {
		h.hub.Unregister(client)
		c.Close()
	}()

	for {
		msgType, raw, err := c.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		relay.Dispatch(h.hub, client, raw)
	}
}
