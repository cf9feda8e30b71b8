package export

import (
	"bytes"
	"fmt"
	"html/template"

	"go.uber.org/zap"

	"github.com/fredcamaral/slideforge/internal/domain/entities"
	"github.com/fredcamaral/slideforge/internal/domain/ports"
)

// Generator is written to the generator meta tag of every exported document
const Generator = "slideforge"

// HTMLExporter serializes a deck into one standalone HTML document. Each slide
// becomes a section.slide container tagged with data-template; the deck theme
// is carried by data-theme on the root element.
type HTMLExporter struct {
	template *template.Template
	renderer ports.TemplateRenderer
	config   entities.ExportConfig
	styles   template.CSS
	log      *zap.Logger
}

// NewHTMLExporter creates a new HTML exporter
func NewHTMLExporter(renderer ports.TemplateRenderer, cfg entities.ExportConfig, log *zap.Logger) *HTMLExporter {
	if log == nil {
		log = zap.NewNop()
	}

	tmpl := template.New("export").Funcs(template.FuncMap{
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s) // #nosec G203 - fragments are built from escaped text nodes
		},
	})
	tmpl = template.Must(tmpl.Parse(documentTemplate))

	return &HTMLExporter{
		template: tmpl,
		renderer: renderer,
		config:   cfg,
		styles:   template.CSS(Stylesheet(renderer.Stylesheet())), // #nosec G203 - static rules
		log:      log.Named("export"),
	}
}

type exportedSlide struct {
	Template string
	Markup   string
}

// Export renders the document. Slides with unrecognized templates are skipped.
func (e *HTMLExporter) Export(deck *entities.Deck) ([]byte, error) {
	if deck == nil {
		return nil, fmt.Errorf("exporting deck: %w", entities.ErrMissingSlides)
	}

	slides := make([]exportedSlide, 0, len(deck.Slides))
	for i := range deck.Slides {
		slide := &deck.Slides[i]
		markup, err := e.renderer.Render(slide.Template, slide.Content)
		if err != nil {
			e.log.Warn("skipping slide", zap.String("id", slide.ID), zap.Int("position", i+1), zap.Error(err))
			continue
		}
		slides = append(slides, exportedSlide{Template: string(slide.Template), Markup: markup})
	}

	theme := deck.Theme
	if theme == "" {
		theme = entities.DefaultTheme
	}
	title := deck.Name
	if e.config.TitleOverride != "" {
		title = e.config.TitleOverride
	}
	if title == "" {
		title = entities.DefaultDeckName
	}

	data := struct {
		Title     string
		Theme     string
		Generator string
		Styles    template.CSS
		Slides    []exportedSlide
	}{
		Title:     title,
		Theme:     theme,
		Generator: Generator,
		Styles:    e.styles,
		Slides:    slides,
	}

	var buf bytes.Buffer
	if err := e.template.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	e.log.Debug("deck exported", zap.Int("slides", len(slides)), zap.String("theme", theme))
	return buf.Bytes(), nil
}

// GetMimeType returns the MIME type of exported documents
func (e *HTMLExporter) GetMimeType() string {
	return "text/html; charset=utf-8"
}

// Ensure HTMLExporter implements ports.DeckExporter
var _ ports.DeckExporter = (*HTMLExporter)(nil)

const documentTemplate = `<!DOCTYPE html>
<html lang="en" data-theme="{{.Theme}}">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <meta name="generator" content="{{.Generator}}">
    <title>{{.Title}}</title>
    <style>
{{.Styles}}
    </style>
</head>
<body data-theme="{{.Theme}}">
    <div class="deck-container">
{{- range .Slides}}
        <section class="slide" data-template="{{.Template}}">
{{safeHTML .Markup}}
        </section>
{{- end}}
    </div>
</body>
</html>
`
