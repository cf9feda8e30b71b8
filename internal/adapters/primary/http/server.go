package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/fredcamaral/slideforge/internal/adapters/secondary/monitoring"
	"github.com/fredcamaral/slideforge/internal/adapters/secondary/templates"
	"github.com/fredcamaral/slideforge/internal/domain/entities"
	"github.com/fredcamaral/slideforge/internal/domain/ports"
	"github.com/fredcamaral/slideforge/internal/domain/services"
)

// maxDocumentSize bounds request bodies carrying whole decks or documents
const maxDocumentSize = 10 << 20

// Server is the editor HTTP server: a JSON API over the deck store, whole-document
// import and export, and a websocket pushing every deck change to connected clients
type Server struct {
	server       *http.Server
	connMgr      *ConnectionManager
	monitor      *monitoring.Monitor
	deck         *services.DeckService
	registry     *templates.Registry
	config       *entities.ServerConfig
	exportConfig entities.ExportConfig
	log          *zap.Logger
	mu           sync.RWMutex
	running      bool
	unsubscribe  func()
}

// NewServer creates a new HTTP server
// config must not be nil - use config.GetDefaultConfig().Server if needed
func NewServer(deck *services.DeckService, registry *templates.Registry, config *entities.ServerConfig, log *zap.Logger) *Server {
	if config == nil {
		panic("server config cannot be nil - provide a valid ServerConfig")
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("http")
	return &Server{
		deck:     deck,
		registry: registry,
		config:   config,
		connMgr:  NewConnectionManager(log),
		monitor:  monitoring.NewMonitor(),
		log:      log,
	}
}

// SetExportConfig sets how GET /export names the downloaded document
func (s *Server) SetExportConfig(cfg entities.ExportConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exportConfig = cfg
}

// downloadName is the file name offered for a deck called deckName
func (s *Server) downloadName(deckName string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exportConfig.OutputNameFor(deckName)
}

// Start starts the connection manager, subscribes to the deck store and
// begins serving on host:port
func (s *Server) Start(ctx context.Context, port int, host string) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}

	s.attach(ctx)

	s.server = &http.Server{
		Addr:         net.JoinHostPort(host, strconv.Itoa(port)),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.GetReadTimeout(),
		WriteTimeout: s.config.GetWriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}
	s.running = true
	srv := s.server
	s.mu.Unlock()

	go func() {
		s.log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// attach starts broadcasting store notifications to websocket clients
func (s *Server) attach(ctx context.Context) {
	go s.connMgr.Run(ctx)

	s.unsubscribe = s.deck.Store().Subscribe(func(deck entities.Deck) {
		s.monitor.RecordDeckChange()
		s.connMgr.Broadcast(ports.UpdateEvent{
			Type:      ports.EventTypeDeckUpdated,
			Timestamp: time.Now(),
			Data:      deck,
		})
	})
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return errors.New("server not running")
	}

	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.connMgr.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.GetShutdownTimeout())
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.running = false
	s.log.Info("HTTP server stopped")
	return nil
}

// NotifyClients sends an update event to all connected clients
func (s *Server) NotifyClients(event ports.UpdateEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return errors.New("server not running")
	}

	s.connMgr.Broadcast(event)
	return nil
}

// Monitor returns the server's request and deck counters
func (s *Server) Monitor() *monitoring.Monitor {
	return s.monitor
}

// IsRunning returns whether the server is currently running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Handler returns the routed handler with middleware and CORS applied
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/deck", s.handleGetDeck).Methods(http.MethodGet)
	api.HandleFunc("/deck", s.handleLoadDeck).Methods(http.MethodPut)
	api.HandleFunc("/slides", s.handleAddSlide).Methods(http.MethodPost)
	api.HandleFunc("/slides/reorder", s.handleReorderSlides).Methods(http.MethodPost)
	api.HandleFunc("/slides/{id}", s.handleGetSlide).Methods(http.MethodGet)
	api.HandleFunc("/slides/{id}", s.handleDeleteSlide).Methods(http.MethodDelete)
	api.HandleFunc("/slides/{id}/duplicate", s.handleDuplicateSlide).Methods(http.MethodPost)
	api.HandleFunc("/slides/{id}/content", s.handleUpdateContent).Methods(http.MethodPatch)
	api.HandleFunc("/slides/{id}/template", s.handleSetTemplate).Methods(http.MethodPut)
	api.HandleFunc("/slides/{id}/preview", s.handlePreviewSlide).Methods(http.MethodGet)
	api.HandleFunc("/active", s.handleSetActive).Methods(http.MethodPut)
	api.HandleFunc("/theme", s.handleSetTheme).Methods(http.MethodPut)
	api.HandleFunc("/name", s.handleSetName).Methods(http.MethodPut)
	api.HandleFunc("/templates", s.handleTemplates).Methods(http.MethodGet)
	api.HandleFunc("/themes", s.handleThemes).Methods(http.MethodGet)
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/export", s.handleExport).Methods(http.MethodGet)
	r.HandleFunc("/import", s.handleImport).Methods(http.MethodPost)
	r.HandleFunc("/ws", s.handleWebSocket)
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		s.writeError(w, http.StatusNotFound, "resource not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	c := cors.New(cors.Options{
		AllowedOrigins: s.config.GetCORSOrigins(),
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           300,
	})

	// Applied outermost last: recovery -> logging -> counting -> security headers -> cors -> router
	var handler http.Handler = c.Handler(r)
	handler = securityHeadersMiddleware(handler)
	handler = countingMiddleware(handler, s.monitor)
	handler = loggingMiddleware(handler, s.log)
	handler = recoveryMiddleware(handler, s.log)

	return handler
}

// Ensure Server implements ports.HTTPServer
var _ ports.HTTPServer = (*Server)(nil)
