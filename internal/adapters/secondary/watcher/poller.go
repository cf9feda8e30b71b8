package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fredcamaral/slideforge/internal/domain/ports"
)

// PollingWatcher reports changes to watched files by polling their size,
// modification time and checksum
type PollingWatcher struct {
	interval time.Duration
	debounce time.Duration
	log      *zap.Logger

	mu      sync.Mutex
	files   map[string]fingerprint
	stopped bool

	events chan ports.FileChangeEvent
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// fingerprint is the last observed state of a file; a zero value means absent
type fingerprint struct {
	size     int64
	modTime  time.Time
	checksum string
}

func (f fingerprint) exists() bool {
	return f.checksum != ""
}

// NewPollingWatcher creates a new polling-based file watcher
func NewPollingWatcher(interval, debounce time.Duration, log *zap.Logger) *PollingWatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &PollingWatcher{
		interval: interval,
		debounce: debounce,
		log:      log.Named("watcher"),
		files:    make(map[string]fingerprint),
		events:   make(chan ports.FileChangeEvent, 10),
		stopCh:   make(chan struct{}),
	}
}

// Watch starts watching path. The file must exist when watching starts.
func (w *PollingWatcher) Watch(ctx context.Context, path string) (<-chan ports.FileChangeEvent, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	fp, err := scan(absPath)
	if err != nil {
		return nil, fmt.Errorf("initial scan: %w", err)
	}

	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil, errors.New("watcher stopped")
	}
	w.files[absPath] = fp
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		w.pollLoop(ctx, absPath)
	}()

	w.log.Debug("watching file", zap.String("path", absPath), zap.Duration("interval", w.interval))
	return w.events, nil
}

// Refresh records the current state of path as already seen
func (w *PollingWatcher) Refresh(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	fp, err := scan(absPath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	w.mu.Lock()
	w.files[absPath] = fp
	w.mu.Unlock()
	return nil
}

// Stop stops polling and closes the events channel
func (w *PollingWatcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	close(w.stopCh)
	w.mu.Unlock()

	w.wg.Wait()
	close(w.events)
	return nil
}

// pollLoop polls path until stopped. A change inside the debounce window is
// held back and delivered once the window has passed.
func (w *PollingWatcher) pollLoop(ctx context.Context, path string) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var (
		lastEvent time.Time
		pending   *ports.FileChangeEvent
	)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
		}

		if change, ok, err := w.checkForChanges(path); err != nil {
			w.log.Warn("watch error", zap.String("path", path), zap.Error(err))
		} else if ok {
			// a later change supersedes a held one
			event := ports.FileChangeEvent{Path: path, Type: change, Timestamp: time.Now()}
			pending = &event
		}

		if pending == nil || time.Since(lastEvent) < w.debounce {
			continue
		}

		select {
		case w.events <- *pending:
			w.log.Debug("file changed", zap.String("path", path), zap.Stringer("type", pending.Type))
			lastEvent = time.Now()
			pending = nil
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		}
	}
}

// checkForChanges compares path against its last fingerprint. The checksum
// is only computed when size or modification time moved.
func (w *PollingWatcher) checkForChanges(path string) (ports.ChangeType, bool, error) {
	w.mu.Lock()
	old := w.files[path]
	w.mu.Unlock()

	info, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return 0, false, fmt.Errorf("stat file: %w", err)
		}
		if !old.exists() {
			return 0, false, nil
		}
		w.store(path, fingerprint{})
		return ports.Deleted, true, nil
	}

	if old.exists() && old.size == info.Size() && old.modTime.Equal(info.ModTime()) {
		return 0, false, nil
	}

	checksum, err := checksumOf(path)
	if err != nil {
		return 0, false, fmt.Errorf("calculate checksum: %w", err)
	}

	current := fingerprint{size: info.Size(), modTime: info.ModTime(), checksum: checksum}
	w.store(path, current)

	switch {
	case !old.exists():
		return ports.Created, true, nil
	case old.checksum != checksum:
		return ports.Modified, true, nil
	default:
		return 0, false, nil
	}
}

func (w *PollingWatcher) store(path string, fp fingerprint) {
	w.mu.Lock()
	w.files[path] = fp
	w.mu.Unlock()
}

func scan(path string) (fingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fingerprint{}, err
	}

	checksum, err := checksumOf(path)
	if err != nil {
		return fingerprint{}, fmt.Errorf("calculate checksum: %w", err)
	}

	return fingerprint{size: info.Size(), modTime: info.ModTime(), checksum: checksum}, nil
}

// checksumOf returns the hex SHA-256 of a file's contents
func checksumOf(path string) (string, error) {
	file, err := os.Open(path) // #nosec G304 - path is the watched state file
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// Ensure PollingWatcher implements ports.FileWatcher
var _ ports.FileWatcher = (*PollingWatcher)(nil)
