package ports

import (
	"context"

	"github.com/fredcamaral/slideforge/internal/domain/entities"
)

// StateRepository persists a deck as a structural saved-state file
type StateRepository interface {
	// Load reads a saved state; a document without a slide sequence is rejected
	// with *entities.SnapshotError
	Load(ctx context.Context, path string) (*entities.Deck, error)

	// Save writes the deck atomically
	Save(ctx context.Context, path string, deck *entities.Deck) error
}
