package http

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/fredcamaral/slideforge/internal/domain/ports"
)

// Connection is a registered websocket client's outbound queue
type Connection struct {
	ID   string
	Send chan ports.UpdateEvent
}

// ConnectionManager fans deck events out to websocket clients. A client whose
// queue is full is dropped rather than stalling the store's listeners.
type ConnectionManager struct {
	connections map[string]*Connection
	broadcast   chan ports.UpdateEvent
	register    chan *Connection
	unregister  chan string
	mu          sync.RWMutex
	done        chan struct{}
	log         *zap.Logger
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager(log *zap.Logger) *ConnectionManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &ConnectionManager{
		connections: make(map[string]*Connection),
		broadcast:   make(chan ports.UpdateEvent, 256),
		register:    make(chan *Connection),
		unregister:  make(chan string),
		done:        make(chan struct{}),
		log:         log,
	}
}

// Run services registrations and broadcasts until ctx is cancelled
func (cm *ConnectionManager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(cm.done)
			cm.CloseAll()
			return

		case conn := <-cm.register:
			cm.mu.Lock()
			cm.connections[conn.ID] = conn
			cm.mu.Unlock()
			cm.log.Debug("client connected", zap.String("client", conn.ID))

		case id := <-cm.unregister:
			cm.remove(id)

		case event := <-cm.broadcast:
			cm.deliver(event)
		}
	}
}

// deliver queues event for every client, dropping clients that cannot keep up
func (cm *ConnectionManager) deliver(event ports.UpdateEvent) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for id, conn := range cm.connections {
		select {
		case conn.Send <- event:
		default:
			cm.log.Warn("dropping slow client", zap.String("client", id))
			close(conn.Send)
			delete(cm.connections, id)
		}
	}
}

func (cm *ConnectionManager) remove(id string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if conn, ok := cm.connections[id]; ok {
		delete(cm.connections, id)
		close(conn.Send)
		cm.log.Debug("client disconnected", zap.String("client", id))
	}
}

// RegisterConnection adds a connection; it reports false once the manager has stopped
func (cm *ConnectionManager) RegisterConnection(conn *Connection) bool {
	select {
	case cm.register <- conn:
		return true
	case <-cm.done:
		return false
	}
}

// Unregister removes a connection
func (cm *ConnectionManager) Unregister(connID string) {
	select {
	case cm.unregister <- connID:
	case <-cm.done:
	}
}

// Broadcast sends an event to all connections
func (cm *ConnectionManager) Broadcast(event ports.UpdateEvent) {
	select {
	case cm.broadcast <- event:
	case <-cm.done:
	}
}

// Count returns the number of registered connections
func (cm *ConnectionManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections)
}

// CloseAll closes all connections
func (cm *ConnectionManager) CloseAll() {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for id, conn := range cm.connections {
		close(conn.Send)
		delete(cm.connections, id)
	}
}
