package connection

import (
	"slices"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client represents a connected websocket client
type Client struct {
	ID       string
	Conn     *websocket.Conn
	Send     chan []byte
	TableIDs []string // Tables the client follows
}

// Manager handles all client connections
type Manager struct {
	clients map[string]*Client
	mutex   sync.RWMutex
	logger  *zap.Logger
}

// NewManager creates a new connection manager
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// Register adds a client. It is registered once Register returns, so the
// client's first command can already address it.
func (m *Manager) Register(client *Client) {
	m.mutex.Lock()
	m.clients[client.ID] = client
	m.mutex.Unlock()
	m.logger.Debug("client registered", zap.String("client_id", client.ID))
}

// Unregister removes a client and closes its send channel
func (m *Manager) Unregister(client *Client) {
	m.mutex.Lock()
	if _, ok := m.clients[client.ID]; ok {
		delete(m.clients, client.ID)
		close(client.Send)
	}
	m.mutex.Unlock()
	m.logger.Debug("client unregistered", zap.String("client_id", client.ID))
}

// IsRegistered checks if the client is known to the manager
func (m *Manager) IsRegistered(clientID string) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	_, ok := m.clients[clientID]
	return ok
}

// send never blocks; a client whose buffer is full misses the message
func (m *Manager) send(client *Client, message []byte) bool {
	select {
	case client.Send <- message:
		return true
	default:
		m.logger.Warn("client send buffer full, dropping message", zap.String("client_id", client.ID))
		return false
	}
}

// SendToClient sends a message to a specific client
func (m *Manager) SendToClient(clientID string, message []byte) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if client, ok := m.clients[clientID]; ok {
		return m.send(client, message)
	}
	return false
}

// SendToTable sends a message to every client following a table
func (m *Manager) SendToTable(tableID string, message []byte) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	sent := 0
	for _, client := range m.clients {
		if slices.Contains(client.TableIDs, tableID) && m.send(client, message) {
			sent++
		}
	}
	return sent
}

// AddTableToClient adds a table ID to a client's tables
func (m *Manager) AddTableToClient(clientID string, tableID string) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	client, ok := m.clients[clientID]
	if !ok {
		return false
	}
	if !slices.Contains(client.TableIDs, tableID) {
		client.TableIDs = append(client.TableIDs, tableID)
	}
	return true
}

// RemoveTableFromClient removes a table ID from a client's tables
func (m *Manager) RemoveTableFromClient(clientID string, tableID string) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if client, ok := m.clients[clientID]; ok {
		if i := slices.Index(client.TableIDs, tableID); i >= 0 {
			client.TableIDs = slices.Delete(client.TableIDs, i, i+1)
			return true
		}
	}
	return false
}

// IsClientAtTable checks if a client follows a specific table
func (m *Manager) IsClientAtTable(clientID string, tableID string) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if client, ok := m.clients[clientID]; ok {
		return slices.Contains(client.TableIDs, tableID)
	}
	return false
}
