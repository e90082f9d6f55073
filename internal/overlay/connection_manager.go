package overlay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ConnectionManager tracks which WebSocket connection belongs to which
// tenant channel and fans pushed messages out to a tenant's subscribers.
type ConnectionManager struct {
	// Subscriber pools organized by tenant ID
	tenantConnections map[uuid.UUID]map[*Connection]bool
	mu                sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig

	broadcastCh chan broadcastMessage
}

// Connection represents one overlay viewer's WebSocket connection.
type Connection struct {
	ID       string
	TenantID uuid.UUID
	// Credentials presented at join time, revalidated on every poll so a
	// blocked tenant loses access without connection-level callbacks.
	PublicKey string
	Token     string

	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	ConnectedAt time.Time

	// done signals the pumps to exit. Send is never closed: an in-flight
	// deliver racing a disconnect must not hit a closed channel.
	done      chan struct{}
	closeOnce sync.Once
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

type broadcastMessage struct {
	TenantID uuid.UUID
	Message  *Message
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  512,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Overlay pages are embedded as browser sources from
			// arbitrary origins.
			return true
		},
	}
}

// NewConnectionManager creates a new WebSocket connection manager
func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	return &ConnectionManager{
		tenantConnections: make(map[uuid.UUID]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan broadcastMessage, 1000),
	}
}

// Start drains the broadcast channel until the context is cancelled.
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			return
		case message := <-cm.broadcastCh:
			cm.handleBroadcast(message)
		}
	}
}

// Upgrade upgrades an HTTP request to a WebSocket connection and registers it
// in the tenant's pool. onMessage is invoked for every client message.
func (cm *ConnectionManager) Upgrade(w http.ResponseWriter, r *http.Request, tenantID uuid.UUID, publicKey, token string, onMessage func(*Connection, []byte)) (*Connection, error) {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		PublicKey:   publicKey,
		Token:       token,
		Conn:        conn,
		Send:        make(chan []byte, 64),
		Manager:     cm,
		ConnectedAt: time.Now(),
		done:        make(chan struct{}),
	}

	cm.register(connection)

	go connection.writePump()
	go connection.readPump(onMessage)

	log.Info().
		Str("connection_id", connection.ID).
		Str("tenant_id", tenantID.String()).
		Msg("overlay connection established")

	return connection, nil
}

func (cm *ConnectionManager) register(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.tenantConnections[conn.TenantID] == nil {
		cm.tenantConnections[conn.TenantID] = make(map[*Connection]bool)
	}
	cm.tenantConnections[conn.TenantID][conn] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Int("subscribers", len(cm.tenantConnections[conn.TenantID])).
		Msg("connection registered")
}

// unregister removes a connection from its tenant pool. Safe to call twice;
// a dropped connection stops being a fan-out target immediately, with no
// guarantees about in-flight messages.
func (cm *ConnectionManager) unregister(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if connections, exists := cm.tenantConnections[conn.TenantID]; exists {
		if _, exists := connections[conn]; exists {
			delete(connections, conn)

			if len(connections) == 0 {
				delete(cm.tenantConnections, conn.TenantID)
			}

			log.Info().
				Str("connection_id", conn.ID).
				Str("tenant_id", conn.TenantID.String()).
				Msg("connection unregistered")
		}
	}

	conn.closeOnce.Do(func() { close(conn.done) })
}

// BroadcastToTenant queues a message for every subscriber of the tenant.
// Non-blocking relative to the mutation path.
func (cm *ConnectionManager) BroadcastToTenant(tenantID uuid.UUID, msg *Message) {
	select {
	case cm.broadcastCh <- broadcastMessage{TenantID: tenantID, Message: msg}:
	default:
		log.Warn().Str("tenant_id", tenantID.String()).Msg("broadcast channel full, dropping message")
	}
}

// Send delivers a message to a single connection. A full send buffer drops
// the connection rather than blocking the caller.
func (cm *ConnectionManager) Send(conn *Connection, msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal message")
		return
	}
	cm.deliver(conn, data)
}

func (cm *ConnectionManager) deliver(conn *Connection, data []byte) {
	select {
	case <-conn.done:
	case conn.Send <- data:
	default:
		log.Warn().
			Str("connection_id", conn.ID).
			Msg("connection send buffer full, closing connection")
		cm.unregister(conn)
		conn.Conn.Close()
	}
}

func (cm *ConnectionManager) handleBroadcast(message broadcastMessage) {
	cm.mu.RLock()
	connections, exists := cm.tenantConnections[message.TenantID]
	if !exists {
		cm.mu.RUnlock()
		return
	}

	// Snapshot the pool so the lock is not held during delivery.
	targets := make([]*Connection, 0, len(connections))
	for conn := range connections {
		targets = append(targets, conn)
	}
	cm.mu.RUnlock()

	data, err := json.Marshal(message.Message)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal message for broadcast")
		return
	}

	for _, conn := range targets {
		cm.deliver(conn, data)
	}

	log.Debug().
		Str("type", string(message.Message.Type)).
		Str("tenant_id", message.TenantID.String()).
		Int("subscribers", len(targets)).
		Msg("message broadcasted")
}

// Stats returns counters about active connections, keyed for the stats
// endpoint.
func (cm *ConnectionManager) Stats() map[string]interface{} {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	total := 0
	perTenant := make(map[string]int)
	for tenantID, connections := range cm.tenantConnections {
		total += len(connections)
		perTenant[tenantID.String()] = len(connections)
	}

	return map[string]interface{}{
		"total_connections":  total,
		"active_tenants":     len(cm.tenantConnections),
		"tenant_connections": perTenant,
	}
}

// writePump handles sending messages to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Manager.unregister(c)
	}()

	for {
		select {
		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump handles reading messages from the WebSocket connection
func (c *Connection) readPump(onMessage func(*Connection, []byte)) {
	defer func() {
		c.Manager.unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		if onMessage != nil {
			onMessage(c, message)
		}
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}

// Close drops the connection.
func (c *Connection) Close() {
	c.Manager.unregister(c)
	c.Conn.Close()
}
