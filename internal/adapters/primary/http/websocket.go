package http

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/fredcamaral/slideforge/internal/domain/ports"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

// createUpgrader creates a WebSocket upgrader with origin validation
func (s *Server) createUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return s.isValidOrigin(r)
		},
	}
}

// WebSocketClient is one live-preview connection. Clients only listen; edits
// go through the JSON API.
type WebSocketClient struct {
	id      string
	conn    *websocket.Conn
	send    chan ports.UpdateEvent
	manager *ConnectionManager
	log     *zap.Logger
}

// handleWebSocket upgrades the request and sends the current deck as the first update
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := s.createUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &WebSocketClient{
		id:      uuid.New().String(),
		conn:    conn,
		send:    make(chan ports.UpdateEvent, 256),
		manager: s.connMgr,
	}
	client.log = s.log.With(zap.String("client", client.id))

	// queued before registration so they precede any broadcast
	now := time.Now()
	client.send <- ports.UpdateEvent{
		Type:      ports.EventTypeConnected,
		Timestamp: now,
		Data:      map[string]string{"client": client.id},
	}
	client.send <- ports.UpdateEvent{
		Type:      ports.EventTypeDeckUpdated,
		Timestamp: now,
		Data:      s.store().GetState(),
	}

	if !s.connMgr.RegisterConnection(&Connection{ID: client.id, Send: client.send}) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		_ = conn.Close()
		return
	}
	s.monitor.RecordWebSocketConnection()

	go client.writePump()
	go client.readPump()
}

// readPump drains the connection so control frames are processed and
// disconnects are noticed
func (c *WebSocketClient) readPump() {
	defer func() {
		c.manager.Unregister(c.id)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("websocket connection error", zap.Error(err))
			}
			return
		}
		c.log.Debug("ignoring client message", zap.Int("bytes", len(message)))
	}
}

// writePump pumps queued events to the connection
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// isValidOrigin validates WebSocket connection origins based on environment
func (s *Server) isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// Allow empty origin (same-origin requests)
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		s.log.Warn("websocket connection rejected: invalid origin", zap.String("origin", origin), zap.Error(err))
		return false
	}

	if s.config.IsDevelopment() {
		return isDevelopmentOrigin(originURL)
	}

	return s.isProductionOrigin(originURL)
}

// isDevelopmentOrigin allows localhost and private network addresses
func isDevelopmentOrigin(originURL *url.URL) bool {
	switch hostname := originURL.Hostname(); {
	case hostname == "localhost", hostname == "127.0.0.1", hostname == "0.0.0.0":
		return true
	case strings.HasPrefix(hostname, "192.168."), strings.HasPrefix(hostname, "10."):
		return true
	default:
		return isPrivateClassB(hostname)
	}
}

// isProductionOrigin checks the configured CORS origins, including *.domain wildcards
func (s *Server) isProductionOrigin(originURL *url.URL) bool {
	for _, allowed := range s.config.GetCORSOrigins() {
		if originURL.String() == allowed || allowed == "*" {
			return true
		}

		if strings.HasPrefix(allowed, "*.") {
			domain := strings.TrimPrefix(allowed, "*")
			if strings.HasSuffix(originURL.Hostname(), domain) {
				return true
			}
		}
	}

	s.log.Warn("websocket connection rejected: origin not allowed",
		zap.String("origin", originURL.String()),
		zap.Strings("allowed_origins", s.config.GetCORSOrigins()))
	return false
}

// isPrivateClassB checks for 172.16.0.0 to 172.31.255.255 range
func isPrivateClassB(hostname string) bool {
	if !strings.HasPrefix(hostname, "172.") {
		return false
	}

	parts := strings.Split(hostname, ".")
	if len(parts) < 2 {
		return false
	}

	switch parts[1] {
	case "16", "17", "18", "19", "20", "21", "22", "23", "24", "25", "26", "27", "28", "29", "30", "31":
		return true
	default:
		return false
	}
}
