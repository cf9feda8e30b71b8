package parser

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slideforge/internal/adapters/secondary/export"
	"github.com/fredcamaral/slideforge/internal/adapters/secondary/templates"
	"github.com/fredcamaral/slideforge/internal/domain/entities"
)

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func newTestHTMLParser() *HTMLParser {
	return NewHTMLParser(templates.NewRegistry(), sequentialIDs("new-"), nil)
}

func TestHTMLParser_RoundTrip(t *testing.T) {
	registry := templates.NewRegistry()
	exporter := export.NewHTMLExporter(registry, entities.ExportConfig{}, nil)
	parser := NewHTMLParser(registry, sequentialIDs("new-"), nil)

	slides := []entities.Slide{
		{ID: "a", Template: entities.TemplateTitle, Content: entities.Content{"title": "Launch <2025>", "subtitle": "Tom & Jerry's"}},
		{ID: "b", Template: entities.TemplateContent, Content: entities.Content{"title": "Agenda", "body": "one\ntwo\n\nthree"}},
		{ID: "c", Template: entities.TemplateQuote, Content: entities.Content{"quote": "Stay hungry", "author": "Steve Jobs"}},
		{ID: "d", Template: entities.TemplateImage, Content: entities.Content{"title": "View", "imageUrl": "https://img.test/a.png?x=1&y=2"}},
		{ID: "e", Template: entities.TemplateSplit, Content: entities.Content{"title": "Left", "body": "line 1\nline 2", "imageUrl": "https://img.test/it's.jpg"}},
		{ID: "f", Template: entities.TemplateMetrics, Content: entities.Content{
			"title":        "Numbers",
			"metric1Value": "1st", "metric1Label": "first",
			"metric2Value": "2nd", "metric2Label": "second",
			"metric3Value": "3rd", "metric3Label": "third",
		}},
	}

	for _, theme := range []string{"default", "ocean", "custom-theme"} {
		t.Run(theme, func(t *testing.T) {
			deck := &entities.Deck{Slides: slides, ActiveSlideID: "c", Theme: theme, Name: "Q3 Review"}

			doc, err := exporter.Export(deck)
			require.NoError(t, err)

			got, err := parser.Import(doc)
			require.NoError(t, err)

			assert.Equal(t, theme, got.Theme)
			assert.Equal(t, "Q3 Review", got.Name)
			require.Len(t, got.Slides, len(slides))
			for i, want := range slides {
				assert.Equal(t, want.Template, got.Slides[i].Template, "slide %d", i)
				assert.Equal(t, want.Content, got.Slides[i].Content, "slide %d", i)
				assert.NotEqual(t, want.ID, got.Slides[i].ID, "identifiers are never carried over")
			}
			assert.Equal(t, got.Slides[0].ID, got.ActiveSlideID)
			require.NoError(t, got.Validate())
		})
	}
}

func TestHTMLParser_ThemeAndNameReadAsWritten(t *testing.T) {
	registry := templates.NewRegistry()
	exporter := export.NewHTMLExporter(registry, entities.ExportConfig{}, nil)

	deck := &entities.Deck{
		Slides:        []entities.Slide{{ID: "a", Template: entities.TemplateTitle, Content: entities.Content{"title": "Hi", "subtitle": ""}}},
		ActiveSlideID: "a",
		Theme:         " weird theme ",
		Name:          "  Q3 Review ",
	}

	doc, err := exporter.Export(deck)
	require.NoError(t, err)

	got, err := NewHTMLParser(registry, sequentialIDs("new-"), nil).Import(doc)
	require.NoError(t, err)

	assert.Equal(t, " weird theme ", got.Theme)
	assert.Equal(t, "  Q3 Review ", got.Name)
}

func TestHTMLParser_SingleSlideRoundTripPerVariant(t *testing.T) {
	registry := templates.NewRegistry()
	exporter := export.NewHTMLExporter(registry, entities.ExportConfig{}, nil)

	for _, name := range entities.AllTemplates() {
		t.Run(string(name), func(t *testing.T) {
			content, ok := registry.DefaultContent(name)
			require.True(t, ok)

			doc, err := exporter.Export(&entities.Deck{
				Slides: []entities.Slide{{ID: "x", Template: name, Content: content}},
				Theme:  "dark",
			})
			require.NoError(t, err)

			got, err := newTestHTMLParser().Import(doc)
			require.NoError(t, err)
			require.Len(t, got.Slides, 1)
			assert.Equal(t, name, got.Slides[0].Template)
			assert.Equal(t, content, got.Slides[0].Content)
		})
	}
}

func TestHTMLParser_NoSlides(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "plain page", doc: `<html><body><p>hello</p></body></html>`},
		{name: "empty", doc: ``},
		{name: "not markup", doc: `just some text`},
		{name: "containers without template", doc: `<div class="slide"><h1>x</h1></div>`},
		{name: "unknown templates only", doc: `<section class="slide" data-template="chart"><h1>x</h1></section>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deck, err := newTestHTMLParser().Import([]byte(tt.doc))

			assert.Nil(t, deck)
			require.Error(t, err)
			assert.True(t, entities.IsParseError(err))
			assert.ErrorIs(t, err, entities.ErrNoSlides)
			assert.Contains(t, err.Error(), "no slides found")
		})
	}
}

func TestHTMLParser_Defensive(t *testing.T) {
	t.Run("skips unknown containers and keeps the rest", func(t *testing.T) {
		doc := `<html><body>
			<section class="slide" data-template="bogus"><div class="slide-template">?</div></section>
			<section class="slide" data-template="title"><div class="slide-template title-slide"><h1>Kept</h1></div></section>
		</body></html>`

		deck, err := newTestHTMLParser().Import([]byte(doc))
		require.NoError(t, err)

		require.Len(t, deck.Slides, 1)
		assert.Equal(t, entities.Content{"title": "Kept", "subtitle": ""}, deck.Slides[0].Content)
	})

	t.Run("theme falls back to body then default", func(t *testing.T) {
		body := `<html><body data-theme="forest"><div class="slide" data-template="title"><h1>a</h1></div></body></html>`
		deck, err := newTestHTMLParser().Import([]byte(body))
		require.NoError(t, err)
		assert.Equal(t, "forest", deck.Theme)

		none := `<div class="slide" data-template="title"><h1>a</h1></div>`
		deck, err = newTestHTMLParser().Import([]byte(none))
		require.NoError(t, err)
		assert.Equal(t, entities.DefaultTheme, deck.Theme)
		assert.Equal(t, entities.DefaultDeckName, deck.Name)
	})

	t.Run("container without template root", func(t *testing.T) {
		doc := `<div class="slide" data-template="quote"><blockquote>"Less is more"</blockquote><cite>- Mies</cite></div>`

		deck, err := newTestHTMLParser().Import([]byte(doc))
		require.NoError(t, err)

		assert.Equal(t, entities.Content{"quote": "Less is more", "author": "Mies"}, deck.Slides[0].Content)
	})

	t.Run("fresh identifiers", func(t *testing.T) {
		doc := `<div class="slide" data-template="title"></div><div class="slide" data-template="title"></div>`

		deck, err := newTestHTMLParser().Import([]byte(doc))
		require.NoError(t, err)

		assert.Equal(t, "new-1", deck.Slides[0].ID)
		assert.Equal(t, "new-2", deck.Slides[1].ID)
		assert.Equal(t, "new-1", deck.ActiveSlideID)
	})
}
