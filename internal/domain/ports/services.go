package ports

import (
	"golang.org/x/net/html"

	"github.com/fredcamaral/slideforge/internal/domain/entities"
)

// ContentSchema is the part of the template registry the deck store depends on
type ContentSchema interface {
	// DefaultContent returns initial content for a new slide of template t
	DefaultContent(t entities.TemplateName) (entities.Content, bool)

	// MergeContent re-derives content for a switch to template t
	MergeContent(t entities.TemplateName, existing entities.Content) (entities.Content, bool)

	// NormalizeContent drops keys outside t's schema
	NormalizeContent(t entities.TemplateName, content entities.Content) entities.Content
}

// TemplateRenderer renders and extracts slide markup
type TemplateRenderer interface {
	ContentSchema

	// Render returns the markup fragment for a slide's content
	Render(t entities.TemplateName, content entities.Content) (string, error)

	// Extract reads content back from a parsed fragment produced by Render
	Extract(t entities.TemplateName, node *html.Node) (entities.Content, error)

	// Stylesheet returns the concatenated style rules of every variant
	Stylesheet() string
}

// DeckExporter serializes a deck snapshot into a single HTML document
type DeckExporter interface {
	Export(deck *entities.Deck) ([]byte, error)
}

// DeckImporter reconstructs a deck snapshot from an external document
type DeckImporter interface {
	Import(data []byte) (*entities.Deck, error)
}

// IDGenerator produces fresh, never reused slide identifiers
type IDGenerator func() string
