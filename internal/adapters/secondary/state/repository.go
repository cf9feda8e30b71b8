package state

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/fredcamaral/slideforge/internal/domain/entities"
	"github.com/fredcamaral/slideforge/internal/domain/ports"
)

// Format is the encoding of a saved-state file
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the encoding from the file extension; JSON unless .yaml or .yml
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// FileRepository stores decks as structural dumps on disk. Writes go to a
// temp file in the target directory and are renamed into place.
type FileRepository struct {
	log *zap.Logger
}

// NewFileRepository creates a new saved-state repository
func NewFileRepository(log *zap.Logger) *FileRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileRepository{log: log.Named("state")}
}

// Load reads a saved-state file. Documents without a slide sequence, with slides
// of unknown templates or with duplicate identifiers fail with *entities.SnapshotError.
func (r *FileRepository) Load(ctx context.Context, path string) (*entities.Deck, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("state file not found: %s", path)
		}
		return nil, fmt.Errorf("reading state file: %w", err)
	}

	deck, err := Decode(data, FormatFor(path))
	if err != nil {
		return nil, err
	}

	r.log.Debug("state file read", zap.String("path", path), zap.Int("slides", len(deck.Slides)))
	return deck, nil
}

// Save writes deck atomically
func (r *FileRepository) Save(ctx context.Context, path string, deck *entities.Deck) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if deck == nil {
		return &entities.SnapshotError{Reason: "nothing to save", Cause: entities.ErrMissingSlides}
	}

	data, err := Encode(deck, FormatFor(path))
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	r.log.Debug("state file written", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

// Encode serializes deck in the given format
func Encode(deck *entities.Deck, format Format) ([]byte, error) {
	snapshot := deck.Clone()
	if snapshot.Slides == nil {
		snapshot.Slides = []entities.Slide{}
	}

	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(&snapshot); err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		data, err := json.MarshalIndent(&snapshot, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding json: %w", err)
		}
		return append(data, '\n'), nil
	}
}

// Decode parses and shape-checks a saved-state document
func Decode(data []byte, format Format) (*entities.Deck, error) {
	var deck entities.Deck
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &deck); err != nil {
			return nil, &entities.SnapshotError{Reason: "invalid YAML", Cause: err}
		}
	default:
		if err := json.Unmarshal(data, &deck); err != nil {
			return nil, &entities.SnapshotError{Reason: "invalid JSON", Cause: err}
		}
	}

	if deck.Slides == nil {
		return nil, &entities.SnapshotError{Reason: "document has no slides", Cause: entities.ErrMissingSlides}
	}

	seen := make(map[string]struct{}, len(deck.Slides))
	for i := range deck.Slides {
		slide := &deck.Slides[i]
		if err := slide.Validate(); err != nil {
			return nil, &entities.SnapshotError{Reason: fmt.Sprintf("slide %d is invalid", i+1), Cause: err}
		}
		if _, dup := seen[slide.ID]; dup {
			return nil, &entities.SnapshotError{Reason: fmt.Sprintf("duplicate slide id %q", slide.ID)}
		}
		seen[slide.ID] = struct{}{}
		if slide.Content == nil {
			slide.Content = entities.Content{}
		}
	}

	if deck.Theme == "" {
		deck.Theme = entities.DefaultTheme
	}
	if deck.Name == "" {
		deck.Name = entities.DefaultDeckName
	}
	deck.RepairActive()

	return &deck, nil
}

// Ensure FileRepository implements ports.StateRepository
var _ ports.StateRepository = (*FileRepository)(nil)
