package handlers

import (
	"net/http"
	"time"

	"crosspay-backend/internal/services"
	"crosspay-backend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 45 * time.Second
)

// WebSocketHandler upgrades clients and streams payment status pushes
type WebSocketHandler struct {
	pushService *services.WebSocketPushService
	upgrader    websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(pushService *services.WebSocketPushService) *WebSocketHandler {
	return &WebSocketHandler{
		pushService: pushService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// HandleWebSocket subscribes a wallet to live payment updates
// GET /api/ws?address=0x...
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	address := c.Query("address")
	if !utils.IsValidAddress(address) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid wallet address format"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithField("error", err).Error("❌ WebSocket upgrade failed")
		return
	}

	connection := &services.Connection{
		ID:            uuid.New().String(),
		WalletAddress: address,
		Conn:          conn,
		Send:          make(chan []byte, 256),
		LastPing:      time.Now(),
	}
	h.pushService.RegisterConnection(connection)

	go h.writePump(connection)
	h.readPump(connection)
}

// writePump drains the connection's send buffer and keeps it alive with pings
func (h *WebSocketHandler) writePump(connection *services.Connection) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-connection.Send:
			connection.Conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				// Send channel closed by unregister
				connection.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := connection.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			connection.Conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := connection.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump consumes client frames until the connection drops, then
// unregisters it. Clients are not expected to send anything meaningful.
func (h *WebSocketHandler) readPump(connection *services.Connection) {
	defer h.pushService.UnregisterConnection(connection)

	connection.Conn.SetReadLimit(1024)
	connection.Conn.SetReadDeadline(time.Now().Add(wsPongWait))
	connection.Conn.SetPongHandler(func(string) error {
		connection.LastPing = time.Now()
		connection.Conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		if _, _, err := connection.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithFields(logrus.Fields{
					"wallet": connection.WalletAddress,
					"error":  err,
				}).Debug("WebSocket read error")
			}
			return
		}
	}
}
