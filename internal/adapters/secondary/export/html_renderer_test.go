package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slideforge/internal/adapters/secondary/templates"
	"github.com/fredcamaral/slideforge/internal/domain/entities"
)

func testDeck() *entities.Deck {
	return &entities.Deck{
		Slides: []entities.Slide{
			{ID: "1", Template: entities.TemplateTitle, Content: entities.Content{"title": "Hello", "subtitle": "World"}},
			{ID: "2", Template: entities.TemplateQuote, Content: entities.Content{"quote": "Q", "author": "A"}},
		},
		ActiveSlideID: "1",
		Theme:         "sunset",
		Name:          "Deck <One>",
	}
}

func TestHTMLExporter_Export(t *testing.T) {
	exporter := NewHTMLExporter(templates.NewRegistry(), entities.ExportConfig{}, nil)

	out, err := exporter.Export(testDeck())
	require.NoError(t, err)
	doc := string(out)

	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
	assert.Contains(t, doc, `<html lang="en" data-theme="sunset">`)
	assert.Contains(t, doc, `<body data-theme="sunset">`)
	assert.Contains(t, doc, `<meta name="generator" content="slideforge">`)
	assert.Contains(t, doc, "<title>Deck &lt;One&gt;</title>")
	assert.Contains(t, doc, `<div class="deck-container">`)
	assert.Equal(t, 2, strings.Count(doc, `<section class="slide"`))
	assert.Contains(t, doc, `<section class="slide" data-template="title">`)
	assert.Contains(t, doc, `<section class="slide" data-template="quote">`)
	assert.Less(t, strings.Index(doc, `data-template="title"`), strings.Index(doc, `data-template="quote"`))
	assert.Contains(t, doc, "<h1>Hello</h1>")
	assert.Equal(t, 1, strings.Count(doc, "<style>"))
}

func TestHTMLExporter_Stylesheet(t *testing.T) {
	exporter := NewHTMLExporter(templates.NewRegistry(), entities.ExportConfig{}, nil)

	out, err := exporter.Export(testDeck())
	require.NoError(t, err)
	doc := string(out)

	for _, palette := range []string{"dark", "ocean", "sunset", "forest"} {
		assert.Contains(t, doc, `[data-theme="`+palette+`"]`)
	}
	assert.Contains(t, doc, ":root { --slide-bg:")
	assert.Contains(t, doc, "scroll-snap-type: y mandatory")
	assert.Contains(t, doc, ".metrics-grid")
	assert.Contains(t, doc, ".title-slide")
}

func TestHTMLExporter_Defaults(t *testing.T) {
	t.Run("empty theme and name", func(t *testing.T) {
		exporter := NewHTMLExporter(templates.NewRegistry(), entities.ExportConfig{}, nil)

		out, err := exporter.Export(&entities.Deck{Slides: []entities.Slide{}})
		require.NoError(t, err)

		assert.Contains(t, string(out), `data-theme="default"`)
		assert.Contains(t, string(out), "<title>My Presentation</title>")
	})

	t.Run("title override", func(t *testing.T) {
		exporter := NewHTMLExporter(templates.NewRegistry(), entities.ExportConfig{TitleOverride: "Board Meeting"}, nil)

		out, err := exporter.Export(testDeck())
		require.NoError(t, err)

		assert.Contains(t, string(out), "<title>Board Meeting</title>")
	})

	t.Run("unknown template slides are skipped", func(t *testing.T) {
		exporter := NewHTMLExporter(templates.NewRegistry(), entities.ExportConfig{}, nil)
		deck := testDeck()
		deck.Slides = append(deck.Slides, entities.Slide{ID: "3", Template: "chart"})

		out, err := exporter.Export(deck)
		require.NoError(t, err)

		assert.NotContains(t, string(out), `data-template="chart"`)
		assert.Equal(t, 2, strings.Count(string(out), `<section class="slide"`))
	})

	t.Run("nil deck", func(t *testing.T) {
		exporter := NewHTMLExporter(templates.NewRegistry(), entities.ExportConfig{}, nil)

		_, err := exporter.Export(nil)
		assert.ErrorIs(t, err, entities.ErrMissingSlides)
	})
}

func TestPaletteRules(t *testing.T) {
	rules := PaletteRules()

	assert.Equal(t, len(entities.BuiltInPalettes()), strings.Count(rules, "--slide-bg"))
	assert.NotContains(t, rules, `[data-theme="default"]`)
}
