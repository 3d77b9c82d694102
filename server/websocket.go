package server

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Message represents a message sent to WebSocket clients.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ClientManager manages WebSocket client connections and broadcasting.
type ClientManager struct {
	clients map[*websocket.Conn]string // conn -> client id
	mu      sync.Mutex
	logger  *log.Logger
}

// NewClientManager creates a ClientManager.
func NewClientManager(logger *log.Logger) *ClientManager {
	return &ClientManager{
		clients: make(map[*websocket.Conn]string),
		logger:  logger,
	}
}

// Register adds a new client connection under the given id.
func (cm *ClientManager) Register(conn *websocket.Conn, id string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.clients[conn] = id
}

// Unregister removes a client connection.
func (cm *ClientManager) Unregister(conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	delete(cm.clients, conn)
}

// Count returns the number of connected clients.
func (cm *ClientManager) Count() int {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return len(cm.clients)
}

// Broadcast sends a message to all connected clients. Clients that fail to
// accept the write are closed and dropped.
func (cm *ClientManager) Broadcast(message *Message) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for conn, id := range cm.clients {
		if err := conn.WriteJSON(message); err != nil {
			cm.logger.Printf("WebSocket write to client %s failed: %v", id, err)
			conn.Close()
			delete(cm.clients, conn)
		}
	}
}

// CloseAll closes all client connections.
func (cm *ClientManager) CloseAll() {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for conn := range cm.clients {
		conn.Close()
		delete(cm.clients, conn)
	}
}
