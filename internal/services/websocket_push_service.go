package services

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"crosspay-backend/internal/metrics"
	"crosspay-backend/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Push message types
const (
	PushTypeConnectionEstablished = "connection_established"
	PushTypePaymentLinkUpdate     = "payment_link_update"
	PushTypeTransactionUpdate     = "transaction_update"
)

// Connection one client WebSocket connection bound to a wallet address
type Connection struct {
	ID            string          `json:"id"`
	WalletAddress string          `json:"wallet_address"`
	Conn          *websocket.Conn `json:"-"`
	Send          chan []byte     `json:"-"`
	LastPing      time.Time       `json:"last_ping"`
}

// PushMessage envelope for all pushed messages
type PushMessage struct {
	Type          string      `json:"type"`
	Timestamp     string      `json:"timestamp"`
	MessageID     string      `json:"message_id"`
	WalletAddress string      `json:"wallet_address"`
	Data          interface{} `json:"data"`
}

// PaymentLinkUpdateData payload for payment_link_update messages
type PaymentLinkUpdateData struct {
	PaymentID       string     `json:"payment_id"`
	Status          string     `json:"status"` // derived status
	StoredStatus    string     `json:"stored_status"`
	TransactionHash string     `json:"transaction_hash,omitempty"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
	AttemptAddress  string     `json:"attempt_address,omitempty"`
	AttemptChainID  int64      `json:"attempt_chain_id,omitempty"`
	UserMessage     string     `json:"user_message,omitempty"`
}

// TransactionUpdateData payload for transaction_update messages
type TransactionUpdateData struct {
	TransactionID   string `json:"transaction_id"`
	Type            string `json:"type"`
	Success         bool   `json:"success"`
	TransactionHash string `json:"transaction_hash,omitempty"`
	ErrorMessage    string `json:"error_message,omitempty"`
}

// WebSocketPushService pushes live payment activity to connected wallets.
// The original frontend polled the creator listing to notice paid links;
// connected clients get the transition pushed instead.
type WebSocketPushService struct {
	connections map[string]*Connection   // key: connection ID
	userConns   map[string][]*Connection // key: lowercase wallet address
	hub         chan PushMessage
	register    chan *Connection
	unregister  chan *Connection
	mutex       sync.RWMutex
}

// NewWebSocketPushService creates the push service and starts its hub loop
func NewWebSocketPushService() *WebSocketPushService {
	service := &WebSocketPushService{
		connections: make(map[string]*Connection),
		userConns:   make(map[string][]*Connection),
		hub:         make(chan PushMessage, 256),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
	}

	go service.run()
	return service
}

func (s *WebSocketPushService) run() {
	for {
		select {
		case conn := <-s.register:
			s.handleRegister(conn)

		case conn := <-s.unregister:
			s.handleUnregister(conn)

		case message := <-s.hub:
			s.handleBroadcast(message)
		}
	}
}

// RegisterConnection registers a connection with the push service
func (s *WebSocketPushService) RegisterConnection(conn *Connection) {
	s.register <- conn
}

// UnregisterConnection unregisters a connection and closes it
func (s *WebSocketPushService) UnregisterConnection(conn *Connection) {
	s.unregister <- conn
}

func (s *WebSocketPushService) handleRegister(conn *Connection) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	key := strings.ToLower(conn.WalletAddress)
	s.connections[conn.ID] = conn
	s.userConns[key] = append(s.userConns[key], conn)

	metrics.WebSocketConnectionsActive.Set(float64(len(s.connections)))
	logrus.WithFields(logrus.Fields{
		"wallet":  conn.WalletAddress,
		"conn_id": conn.ID,
	}).Info("📱 WebSocket connection registered")

	confirm := PushMessage{
		Type:          PushTypeConnectionEstablished,
		Timestamp:     time.Now().Format(time.RFC3339),
		MessageID:     generateMessageID(),
		WalletAddress: conn.WalletAddress,
		Data: map[string]interface{}{
			"wallet_address": conn.WalletAddress,
			"connection_id":  conn.ID,
			"message":        "Real-time payment status connection established",
		},
	}
	s.sendToConnection(conn, confirm)
}

func (s *WebSocketPushService) handleUnregister(conn *Connection) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.connections[conn.ID]; !exists {
		return
	}
	delete(s.connections, conn.ID)

	key := strings.ToLower(conn.WalletAddress)
	conns := s.userConns[key]
	for i, c := range conns {
		if c.ID == conn.ID {
			s.userConns[key] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(s.userConns[key]) == 0 {
		delete(s.userConns, key)
	}

	close(conn.Send)
	if conn.Conn != nil {
		conn.Conn.Close()
	}

	metrics.WebSocketConnectionsActive.Set(float64(len(s.connections)))
	logrus.WithFields(logrus.Fields{
		"wallet":  conn.WalletAddress,
		"conn_id": conn.ID,
	}).Info("📱 WebSocket connection unregistered")
}

func (s *WebSocketPushService) handleBroadcast(message PushMessage) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	conns, exists := s.userConns[strings.ToLower(message.WalletAddress)]
	if !exists {
		return
	}

	for _, conn := range conns {
		s.sendToConnection(conn, message)
	}
	metrics.WebSocketMessagesPushed.WithLabelValues(message.Type).Add(float64(len(conns)))
}

// sendToConnection sends without blocking; a full send buffer drops the message
func (s *WebSocketPushService) sendToConnection(conn *Connection, message PushMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		logrus.WithField("error", err).Error("❌ Failed to marshal push message")
		return
	}
	select {
	case conn.Send <- data:
	default:
		logrus.WithFields(logrus.Fields{
			"wallet":  conn.WalletAddress,
			"conn_id": conn.ID,
		}).Warn("⚠️ Push buffer full, dropping message")
	}
}

// PushPaymentLinkUpdate notifies a wallet of a payment link status change
func (s *WebSocketPushService) PushPaymentLinkUpdate(walletAddress string, data PaymentLinkUpdateData) {
	s.hub <- PushMessage{
		Type:          PushTypePaymentLinkUpdate,
		Timestamp:     time.Now().Format(time.RFC3339),
		MessageID:     generateMessageID(),
		WalletAddress: walletAddress,
		Data:          data,
	}
}

// PushTransactionUpdate notifies a wallet of a recorded ledger transaction
func (s *WebSocketPushService) PushTransactionUpdate(tx *models.Transaction) {
	s.hub <- PushMessage{
		Type:          PushTypeTransactionUpdate,
		Timestamp:     time.Now().Format(time.RFC3339),
		MessageID:     generateMessageID(),
		WalletAddress: tx.WalletAddress,
		Data: TransactionUpdateData{
			TransactionID:   tx.ID,
			Type:            string(tx.Type),
			Success:         tx.Success,
			TransactionHash: tx.TransactionHash,
			ErrorMessage:    tx.ErrorMessage,
		},
	}
}

func generateMessageID() string {
	return uuid.New().String()
}
