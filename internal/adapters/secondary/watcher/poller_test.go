package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slideforge/internal/domain/ports"
)

func createStateFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deck.json")
	updateFile(t, path, content)
	return path
}

func updateFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func nextEvent(t *testing.T, events <-chan ports.FileChangeEvent, within time.Duration) ports.FileChangeEvent {
	t.Helper()
	select {
	case event, ok := <-events:
		require.True(t, ok, "events channel closed")
		return event
	case <-time.After(within):
		t.Fatal("no event received")
		return ports.FileChangeEvent{}
	}
}

func TestPollingWatcher(t *testing.T) {
	t.Run("reports modification", func(t *testing.T) {
		watcher := NewPollingWatcher(50*time.Millisecond, 100*time.Millisecond, nil)
		defer func() { _ = watcher.Stop() }()

		path := createStateFile(t, `{"slides":[]}`)
		events, err := watcher.Watch(context.Background(), path)
		require.NoError(t, err)

		time.Sleep(100 * time.Millisecond)
		updateFile(t, path, `{"slides":[{"id":"a"}]}`)

		event := nextEvent(t, events, 2*time.Second)
		assert.Equal(t, path, event.Path)
		assert.Equal(t, ports.Modified, event.Type)
		assert.WithinDuration(t, time.Now(), event.Timestamp, 2*time.Second)
	})

	t.Run("change inside debounce window is delivered late", func(t *testing.T) {
		watcher := NewPollingWatcher(20*time.Millisecond, 300*time.Millisecond, nil)
		defer func() { _ = watcher.Stop() }()

		path := createStateFile(t, "v0")
		events, err := watcher.Watch(context.Background(), path)
		require.NoError(t, err)

		updateFile(t, path, "version 1")
		nextEvent(t, events, 2*time.Second)
		firstAt := time.Now()

		updateFile(t, path, "version two")
		second := nextEvent(t, events, 2*time.Second)

		assert.Equal(t, ports.Modified, second.Type)
		assert.GreaterOrEqual(t, time.Since(firstAt), 250*time.Millisecond)

		select {
		case <-events:
			t.Fatal("got unexpected third event")
		case <-time.After(400 * time.Millisecond):
		}
	})

	t.Run("deletion and recreation", func(t *testing.T) {
		watcher := NewPollingWatcher(20*time.Millisecond, 0, nil)
		defer func() { _ = watcher.Stop() }()

		path := createStateFile(t, "content")
		events, err := watcher.Watch(context.Background(), path)
		require.NoError(t, err)

		require.NoError(t, os.Remove(path))
		assert.Equal(t, ports.Deleted, nextEvent(t, events, 2*time.Second).Type)

		updateFile(t, path, "back again")
		assert.Equal(t, ports.Created, nextEvent(t, events, 2*time.Second).Type)
	})

	t.Run("stop closes events", func(t *testing.T) {
		watcher := NewPollingWatcher(50*time.Millisecond, 100*time.Millisecond, nil)

		events, err := watcher.Watch(context.Background(), createStateFile(t, "content"))
		require.NoError(t, err)

		require.NoError(t, watcher.Stop())
		_, ok := <-events
		assert.False(t, ok)

		assert.NoError(t, watcher.Stop())

		_, err = watcher.Watch(context.Background(), createStateFile(t, "content"))
		assert.Error(t, err)
	})

	t.Run("context cancellation stops polling", func(t *testing.T) {
		watcher := NewPollingWatcher(20*time.Millisecond, 0, nil)
		defer func() { _ = watcher.Stop() }()

		ctx, cancel := context.WithCancel(context.Background())
		path := createStateFile(t, "content")
		events, err := watcher.Watch(ctx, path)
		require.NoError(t, err)

		cancel()
		time.Sleep(100 * time.Millisecond)
		updateFile(t, path, "updated content")

		select {
		case <-events:
			t.Fatal("event after cancellation")
		case <-time.After(200 * time.Millisecond):
		}
	})

	t.Run("missing file", func(t *testing.T) {
		watcher := NewPollingWatcher(50*time.Millisecond, 100*time.Millisecond, nil)

		_, err := watcher.Watch(context.Background(), "/nonexistent/path/deck.json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "initial scan")
	})
}

func TestPollingWatcher_Refresh(t *testing.T) {
	watcher := NewPollingWatcher(time.Hour, 0, nil)
	path := createStateFile(t, "original")

	fp, err := scan(path)
	require.NoError(t, err)
	watcher.files[path] = fp

	updateFile(t, path, "written by the editor")
	require.NoError(t, watcher.Refresh(path))

	_, changed, err := watcher.checkForChanges(path)
	require.NoError(t, err)
	assert.False(t, changed, "refreshed writes are not reported")

	updateFile(t, path, "written by someone else")
	change, changed, err := watcher.checkForChanges(path)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, ports.Modified, change)

	t.Run("missing file clears fingerprint", func(t *testing.T) {
		require.NoError(t, os.Remove(path))
		require.NoError(t, watcher.Refresh(path))

		_, changed, err := watcher.checkForChanges(path)
		require.NoError(t, err)
		assert.False(t, changed)
	})
}

func TestChecksumOf(t *testing.T) {
	path := createStateFile(t, "test content")

	first, err := checksumOf(path)
	require.NoError(t, err)
	assert.Len(t, first, 64)

	again, err := checksumOf(path)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	updateFile(t, path, "different content")
	changed, err := checksumOf(path)
	require.NoError(t, err)
	assert.NotEqual(t, first, changed)

	_, err = checksumOf("/nonexistent/file")
	assert.Error(t, err)
}

func TestPollingWatcher_ManyFiles(t *testing.T) {
	watcher := NewPollingWatcher(10*time.Millisecond, 50*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		path := filepath.Join(dir, fmt.Sprintf("deck-%d.json", i))
		updateFile(t, path, fmt.Sprintf("file %d", i))
		_, err := watcher.Watch(ctx, path)
		require.NoError(t, err)

		go func(idx int, path string) {
			for j := 0; j < 5; j++ {
				_ = os.WriteFile(path, []byte(fmt.Sprintf("update %d-%d", idx, j)), 0o644)
				time.Sleep(20 * time.Millisecond)
			}
			done <- struct{}{}
		}(i, path)
	}

	drained := make(chan struct{})
	go func() {
		for range watcher.events {
		}
		close(drained)
	}()

	for i := 0; i < 5; i++ {
		<-done
	}
	require.NoError(t, watcher.Stop())
	<-drained
}
