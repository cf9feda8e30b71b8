package ports

import (
	"context"
	"time"
)

// FileWatcher watches a saved-state file for changes made outside the editor
type FileWatcher interface {
	// Watch starts watching a file for changes
	Watch(ctx context.Context, path string) (<-chan FileChangeEvent, error)
	// Refresh records the file's current contents as seen, so a write made by
	// the editor itself is not reported back
	Refresh(path string) error
	// Stop stops the file watcher
	Stop() error
}

// FileChangeEvent represents a file change event
type FileChangeEvent struct {
	Path      string
	Type      ChangeType
	Timestamp time.Time
}

// ChangeType represents the type of file change
type ChangeType int

const (
	// Modified indicates the file was modified
	Modified ChangeType = iota
	// Created indicates the file appeared after being absent
	Created
	// Deleted indicates the file was removed
	Deleted
)

// String returns the string representation of ChangeType
func (c ChangeType) String() string {
	switch c {
	case Modified:
		return "modified"
	case Created:
		return "created"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}
