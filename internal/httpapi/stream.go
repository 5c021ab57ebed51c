package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/nodecast/playcore/internal/events"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsMessage is the envelope pushed to every connected dashboard, mirroring
// pluginmodule/dashboard_api.go's WebSocketMessage.
type wsMessage struct {
	Type      events.Type `json:"type"`
	Source    string      `json:"source,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// HandleWebSocket handles GET /v1/events/ws. Each connection subscribes to
// every event type on the Bus and receives them as they are published,
// until the client disconnects, the same life cycle
// dashboard_api.go's handleWebSocketClient follows.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("failed to upgrade connection: %v", err)})
		return
	}
	defer conn.Close()

	clientID := fmt.Sprintf("client_%d", time.Now().UnixNano())

	subID := h.Bus.Subscribe(events.Filter{}, func(e events.Event) error {
		msg := wsMessage{Type: e.Type, Source: e.Source, Data: e.Data, Timestamp: e.Timestamp.Unix()}
		data, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		return conn.WriteMessage(websocket.TextMessage, data)
	})
	defer h.Bus.Unsubscribe(subID)

	h.Log.Info("websocket client connected", "client", clientID)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.Log.Info("websocket client disconnected", "client", clientID)
			return
		}
	}
}
