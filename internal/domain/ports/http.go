package ports

import (
	"context"
	"time"
)

// HTTPServer defines the interface for the editor HTTP server
type HTTPServer interface {
	Start(ctx context.Context, port int, host string) error
	Stop(ctx context.Context) error
	NotifyClients(event UpdateEvent) error
	IsRunning() bool
}

// UpdateEvent represents an event sent to WebSocket clients
type UpdateEvent struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// UpdateEvent types
const (
	EventTypeConnected   = "connected"
	EventTypeDeckUpdated = "deck_updated"
	EventTypeReloaded    = "reloaded"
	EventTypeError       = "error"
)
