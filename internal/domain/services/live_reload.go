package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fredcamaral/slideforge/internal/domain/entities"
	"github.com/fredcamaral/slideforge/internal/domain/ports"
)

// LiveReloadService keeps the deck and its saved-state file in step: changes
// made on disk are loaded into the store and changes made in the editor are
// written back to disk
type LiveReloadService struct {
	watcher ports.FileWatcher
	server  ports.HTTPServer
	deck    *DeckService
	log     *zap.Logger

	mu          sync.Mutex
	watching    bool
	watchCancel context.CancelFunc
	watchPath   string
	unsubscribe func()

	// serializes writes of the state file
	saveMu   sync.Mutex
	savePath string
}

// NewLiveReloadService creates a new live reload service. watcher is only
// needed by Start and server may be nil.
func NewLiveReloadService(watcher ports.FileWatcher, server ports.HTTPServer, deck *DeckService, log *zap.Logger) *LiveReloadService {
	if log == nil {
		log = zap.NewNop()
	}

	return &LiveReloadService{
		watcher: watcher,
		server:  server,
		deck:    deck,
		log:     log.Named("live_reload"),
	}
}

// Start watches path and reloads the deck whenever the file changes. A file
// that fails to load leaves the deck as it was.
func (s *LiveReloadService) Start(ctx context.Context, path string) error {
	if s.watcher == nil {
		return errors.New("no file watcher configured")
	}

	s.mu.Lock()
	if s.watching {
		s.mu.Unlock()
		return errors.New("already watching")
	}
	watchCtx, cancel := context.WithCancel(ctx)
	s.watching = true
	s.watchCancel = cancel
	s.watchPath = path
	s.mu.Unlock()

	events, err := s.watcher.Watch(watchCtx, path)
	if err != nil {
		cancel()
		s.mu.Lock()
		s.watching = false
		s.watchCancel = nil
		s.mu.Unlock()
		return fmt.Errorf("starting watcher: %w", err)
	}

	go s.handleEvents(watchCtx, events)
	return nil
}

// AutoSave writes the deck to path after every change until Stop is called
func (s *LiveReloadService) AutoSave(path string) {
	s.saveMu.Lock()
	s.savePath = path
	s.saveMu.Unlock()

	unsubscribe := s.deck.Store().Subscribe(s.save)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.unsubscribe = unsubscribe
}

// Stop stops watching and saving
func (s *LiveReloadService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}

	if !s.watching {
		return nil
	}
	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}
	s.watching = false
	return nil
}

// IsWatching returns whether the service is currently watching
func (s *LiveReloadService) IsWatching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watching
}

// save is a store listener, so the store lock is already released when it runs
func (s *LiveReloadService) save(entities.Deck) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if err := s.deck.SaveState(context.Background(), s.savePath); err != nil {
		s.log.Error("saving state file", zap.String("path", s.savePath), zap.Error(err))
		return
	}

	// the write must not come back as an external change
	if s.watcher != nil {
		if err := s.watcher.Refresh(s.savePath); err != nil {
			s.log.Warn("refreshing watcher", zap.String("path", s.savePath), zap.Error(err))
		}
	}
}

func (s *LiveReloadService) handleEvents(ctx context.Context, events <-chan ports.FileChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}

			s.log.Debug("file change detected",
				zap.String("path", event.Path),
				zap.Stringer("type", event.Type),
				zap.Time("timestamp", event.Timestamp),
			)

			if event.Type == ports.Deleted {
				s.log.Warn("state file removed, keeping current deck", zap.String("path", event.Path))
				s.notify(ports.EventTypeError, event, errors.New("state file removed"))
				continue
			}

			if err := s.reload(ctx); err != nil {
				s.log.Warn("state file not reloaded", zap.String("path", event.Path), zap.Error(err))
				s.notify(ports.EventTypeError, event, err)
				continue
			}

			s.log.Info("state file reloaded", zap.String("path", event.Path), zap.Stringer("change", event.Type))
			s.notify(ports.EventTypeReloaded, event, nil)
		}
	}
}

func (s *LiveReloadService) reload(ctx context.Context) error {
	s.mu.Lock()
	path := s.watchPath
	s.mu.Unlock()

	if path == "" {
		return errors.New("no state file path set")
	}
	return s.deck.LoadStateFile(ctx, path)
}

// notify tells connected clients about a reload; deck contents reach them
// through the store subscription
func (s *LiveReloadService) notify(eventType string, event ports.FileChangeEvent, cause error) {
	if s.server == nil {
		return
	}

	data := map[string]interface{}{
		"file": event.Path,
		"type": event.Type.String(),
	}
	if cause != nil {
		data["error"] = cause.Error()
	}

	err := s.server.NotifyClients(ports.UpdateEvent{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	})
	if err != nil {
		s.log.Warn("failed to notify clients", zap.String("event_type", eventType), zap.Error(err))
	}
}
