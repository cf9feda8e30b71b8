package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/fredcamaral/slideforge/internal/domain/entities"
	"github.com/fredcamaral/slideforge/internal/domain/ports"
)

// DeckService implements the whole-document operations around a DeckStore:
// HTML and markdown import, HTML export and saved-state files. Imports and
// loads are atomic; on failure the store is left untouched.
type DeckService struct {
	store    *DeckStore
	exporter ports.DeckExporter
	html     ports.DeckImporter
	markdown ports.DeckImporter
	repo     ports.StateRepository
	log      *zap.Logger
}

// NewDeckService creates a new deck service instance
func NewDeckService(
	store *DeckStore,
	exporter ports.DeckExporter,
	htmlImporter ports.DeckImporter,
	markdownImporter ports.DeckImporter,
	repo ports.StateRepository,
	log *zap.Logger,
) *DeckService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DeckService{
		store:    store,
		exporter: exporter,
		html:     htmlImporter,
		markdown: markdownImporter,
		repo:     repo,
		log:      log.Named("deck"),
	}
}

// Store returns the underlying deck store
func (s *DeckService) Store() *DeckStore {
	return s.store
}

// Export renders the current deck as a standalone HTML document
func (s *DeckService) Export() ([]byte, error) {
	deck := s.store.GetState()
	out, err := s.exporter.Export(&deck)
	if err != nil {
		return nil, fmt.Errorf("exporting deck: %w", err)
	}
	return out, nil
}

// ExportFile writes the exported document to path
func (s *DeckService) ExportFile(ctx context.Context, path string) error {
	if path == "" {
		return errors.New("export path cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	out, err := s.Export()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("writing export file: %w", err)
	}

	s.log.Info("deck exported", zap.String("path", path), zap.Int("bytes", len(out)))
	return nil
}

// ImportHTML replaces the deck with one parsed from an exported document
func (s *DeckService) ImportHTML(ctx context.Context, data []byte) error {
	return s.importWith(ctx, s.html, "html", data)
}

// ImportMarkdown replaces the deck with one built from a markdown outline
func (s *DeckService) ImportMarkdown(ctx context.Context, data []byte) error {
	return s.importWith(ctx, s.markdown, "markdown", data)
}

// ImportFile imports a document, choosing the importer from the file extension
func (s *DeckService) ImportFile(ctx context.Context, path string) error {
	data, err := readDocument(path)
	if err != nil {
		return err
	}
	if IsMarkdownPath(path) {
		return s.ImportMarkdown(ctx, data)
	}
	return s.ImportHTML(ctx, data)
}

// ParseFile parses a document into a deck without touching the store
func (s *DeckService) ParseFile(path string) (*entities.Deck, error) {
	data, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	importer, kind := s.html, "html"
	if IsMarkdownPath(path) {
		importer, kind = s.markdown, "markdown"
	}
	deck, err := importer.Import(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s document: %w", kind, err)
	}
	return deck, nil
}

// SaveState writes the current deck to a saved-state file
func (s *DeckService) SaveState(ctx context.Context, path string) error {
	deck := s.store.GetState()
	if err := s.repo.Save(ctx, path, &deck); err != nil {
		return fmt.Errorf("saving state: %w", err)
	}
	s.log.Debug("state saved", zap.String("path", path), zap.Int("slides", len(deck.Slides)))
	return nil
}

// LoadStateFile replaces the deck with a saved-state file
func (s *DeckService) LoadStateFile(ctx context.Context, path string) error {
	deck, err := s.repo.Load(ctx, path)
	if err != nil {
		s.log.Warn("state load failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("loading state: %w", err)
	}
	if err := s.store.LoadState(deck); err != nil {
		s.log.Warn("state rejected", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("loading state: %w", err)
	}
	s.log.Info("state loaded", zap.String("path", path), zap.Int("slides", len(deck.Slides)))
	return nil
}

func (s *DeckService) importWith(ctx context.Context, importer ports.DeckImporter, kind string, data []byte) error {
	if len(data) == 0 {
		return &entities.ParseError{Reason: "document is empty"}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	deck, err := importer.Import(data)
	if err != nil {
		s.log.Warn("import failed", zap.String("format", kind), zap.Error(err))
		return fmt.Errorf("importing %s document: %w", kind, err)
	}
	if err := s.store.LoadState(deck); err != nil {
		s.log.Warn("imported deck rejected", zap.String("format", kind), zap.Error(err))
		return fmt.Errorf("importing %s document: %w", kind, err)
	}

	s.log.Info("deck imported", zap.String("format", kind), zap.Int("slides", len(deck.Slides)))
	return nil
}

// IsMarkdownPath reports whether path names a markdown outline
func IsMarkdownPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

func readDocument(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("document path cannot be empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("document not found: %s", path)
		}
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return data, nil
}
