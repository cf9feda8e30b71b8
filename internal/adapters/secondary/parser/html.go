package parser

import (
	"bytes"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/fredcamaral/slideforge/internal/domain/entities"
	"github.com/fredcamaral/slideforge/internal/domain/ports"
)

const (
	slideClass    = "slide"
	templateAttr  = "data-template"
	themeAttr     = "data-theme"
	noSlidesFound = "no slides found"
)

// HTMLParser reconstructs a deck from a document written by the HTML exporter.
// It works from markup alone: containers are located by class and template
// attribute, and each variant's fields are read back by the template registry.
type HTMLParser struct {
	renderer ports.TemplateRenderer
	newID    ports.IDGenerator
	log      *zap.Logger
}

// NewHTMLParser creates a new HTML deck parser
func NewHTMLParser(renderer ports.TemplateRenderer, newID ports.IDGenerator, log *zap.Logger) *HTMLParser {
	if log == nil {
		log = zap.NewNop()
	}
	return &HTMLParser{
		renderer: renderer,
		newID:    newID,
		log:      log.Named("parser"),
	}
}

// Import parses data into a fresh deck. Every slide gets a new identifier and
// the first slide becomes active. A document without a single recognized slide
// container fails with a *entities.ParseError.
func (p *HTMLParser) Import(data []byte) (*entities.Deck, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &entities.ParseError{Reason: "document is not valid HTML", Cause: err}
	}

	deck := &entities.Deck{
		Slides: []entities.Slide{},
		Theme:  documentTheme(doc),
		Name:   documentTitle(doc),
	}

	for i, container := range slideContainers(doc) {
		t := entities.TemplateName(strings.TrimSpace(attr(container, templateAttr)))
		if !t.IsValid() {
			p.log.Warn("skipping slide container with unknown template",
				zap.Int("position", i+1), zap.String("template", string(t)))
			continue
		}

		content, err := p.renderer.Extract(t, container)
		if err != nil {
			p.log.Warn("skipping slide", zap.Int("position", i+1), zap.Error(err))
			continue
		}

		deck.Slides = append(deck.Slides, entities.Slide{
			ID:       p.newID(),
			Template: t,
			Content:  content,
		})
	}

	if len(deck.Slides) == 0 {
		return nil, &entities.ParseError{Reason: noSlidesFound, Cause: entities.ErrNoSlides}
	}
	deck.ActiveSlideID = deck.Slides[0].ID

	p.log.Debug("document parsed", zap.Int("slides", len(deck.Slides)), zap.String("theme", deck.Theme))
	return deck, nil
}

// slideContainers returns every element carrying the slide class and a template
// attribute, in document order. Containers are not searched for nested containers.
func slideContainers(doc *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			if ch.Type != html.ElementNode {
				continue
			}
			if hasClass(ch, slideClass) && hasAttr(ch, templateAttr) {
				out = append(out, ch)
				continue
			}
			walk(ch)
		}
	}
	walk(doc)
	return out
}

// documentTheme reads data-theme as written from <html>, then <body>, else the default theme
func documentTheme(doc *html.Node) string {
	for _, a := range []atom.Atom{atom.Html, atom.Body} {
		if n := findElement(doc, a); n != nil {
			if theme := attr(n, themeAttr); theme != "" {
				return theme
			}
		}
	}
	return entities.DefaultTheme
}

func documentTitle(doc *html.Node) string {
	if n := findElement(doc, atom.Title); n != nil {
		if title := textContent(n); title != "" {
			return title
		}
	}
	return entities.DefaultDeckName
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if found := findElement(ch, a); found != nil {
			return found
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(n)
	return sb.String()
}

// Ensure HTMLParser implements ports.DeckImporter
var _ ports.DeckImporter = (*HTMLParser)(nil)
