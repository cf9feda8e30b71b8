package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slideforge/internal/domain/entities"
)

func TestMarkdownParser_Import(t *testing.T) {
	outline := `---
title: Product Launch
theme: ocean
---

# Launch Day
Everything you need to know

---

## Agenda

- Why now
- What ships
- Next steps

---

> Make it simple, but significant.
>
> -- Don Draper

---

![City skyline](https://img.test/city.jpg)

---

## Architecture

The service runs on **three** regions.

![diagram](https://img.test/arch.png)

---

## KPIs

- **85%** Growth
- **1.2M** Users
- **$50k** Revenue
`

	p := NewMarkdownParser(sequentialIDs("md-"), nil)
	deck, err := p.Import([]byte(outline))
	require.NoError(t, err)

	assert.Equal(t, "Product Launch", deck.Name)
	assert.Equal(t, "ocean", deck.Theme)
	require.Len(t, deck.Slides, 6)
	assert.Equal(t, "md-1", deck.ActiveSlideID)

	tests := []struct {
		template entities.TemplateName
		content  entities.Content
	}{
		{entities.TemplateTitle, entities.Content{"title": "Launch Day", "subtitle": "Everything you need to know"}},
		{entities.TemplateContent, entities.Content{"title": "Agenda", "body": "• Why now\n• What ships\n• Next steps"}},
		{entities.TemplateQuote, entities.Content{"quote": "Make it simple, but significant.", "author": "Don Draper"}},
		{entities.TemplateImage, entities.Content{"title": "City skyline", "imageUrl": "https://img.test/city.jpg"}},
		{entities.TemplateSplit, entities.Content{"title": "Architecture", "body": "The service runs on three regions.", "imageUrl": "https://img.test/arch.png"}},
		{entities.TemplateMetrics, entities.Content{
			"title":        "KPIs",
			"metric1Value": "85%", "metric1Label": "Growth",
			"metric2Value": "1.2M", "metric2Label": "Users",
			"metric3Value": "$50k", "metric3Label": "Revenue",
		}},
	}
	for i, tt := range tests {
		assert.Equal(t, tt.template, deck.Slides[i].Template, "slide %d", i+1)
		assert.Equal(t, tt.content, deck.Slides[i].Content, "slide %d", i+1)
	}
}

func TestMarkdownParser_Metrics(t *testing.T) {
	kpis := func(v1, l1, v2, l2, v3, l3 string) entities.Content {
		return entities.Content{
			"title":        "KPIs",
			"metric1Value": v1, "metric1Label": l1,
			"metric2Value": v2, "metric2Label": l2,
			"metric3Value": v3, "metric3Label": l3,
		}
	}

	tests := []struct {
		name     string
		src      string
		template entities.TemplateName
		content  entities.Content
	}{
		{
			name:     "value colon label",
			src:      "# KPIs\n\n- 85%: Growth\n- 1.2M: Users\n- $50k: Revenue\n",
			template: entities.TemplateMetrics,
			content:  kpis("85%", "Growth", "1.2M", "Users", "$50k", "Revenue"),
		},
		{
			name:     "first three of a longer list",
			src:      "# KPIs\n\n- 85%: Growth\n- 1.2M: Users\n- $50k: Revenue\n- 4.9: Rating\n",
			template: entities.TemplateMetrics,
			content:  kpis("85%", "Growth", "1.2M", "Users", "$50k", "Revenue"),
		},
		{
			name:     "bold values in a longer list",
			src:      "# KPIs\n\n- **85%** Growth\n- **1.2M** Users\n- **$50k** Revenue\n- **4.9** Rating\n",
			template: entities.TemplateMetrics,
			content:  kpis("85%", "Growth", "1.2M", "Users", "$50k", "Revenue"),
		},
		{
			name:     "short list leaves slots empty",
			src:      "# KPIs\n\n- 99.9%: Uptime\n- 12ms: Latency\n",
			template: entities.TemplateMetrics,
			content:  kpis("99.9%", "Uptime", "12ms", "Latency", "", ""),
		},
		{
			name:     "definitions without numbers stay content",
			src:      "# KPIs\n\n- Owner: Platform team\n- Status: Green\n",
			template: entities.TemplateContent,
			content:  entities.Content{"title": "KPIs", "body": "• Owner: Platform team\n• Status: Green"},
		},
		{
			name:     "one plain item stays content",
			src:      "# KPIs\n\n- 85%: Growth\n- More to come\n",
			template: entities.TemplateContent,
			content:  entities.Content{"title": "KPIs", "body": "• 85%: Growth\n• More to come"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deck, err := NewMarkdownParser(sequentialIDs("m-"), nil).Import([]byte(tt.src))
			require.NoError(t, err)
			require.Len(t, deck.Slides, 1)

			assert.Equal(t, tt.template, deck.Slides[0].Template)
			assert.Equal(t, tt.content, deck.Slides[0].Content)
		})
	}
}

func TestMarkdownParser_QuoteAuthors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		quote  string
		author string
	}{
		{name: "author line inside quote", src: "> Be kind\n> -- Anon", quote: "Be kind", author: "Anon"},
		{name: "author list after quote", src: "> Ship it\n\n- Team", quote: "Ship it", author: "Team"},
		{name: "no author", src: "> Just words\n> over two lines", quote: "Just words over two lines", author: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deck, err := NewMarkdownParser(sequentialIDs("q"), nil).Import([]byte(tt.src))
			require.NoError(t, err)
			require.Len(t, deck.Slides, 1)

			assert.Equal(t, entities.TemplateQuote, deck.Slides[0].Template)
			assert.Equal(t, tt.quote, deck.Slides[0].Content["quote"])
			assert.Equal(t, tt.author, deck.Slides[0].Content["author"])
		})
	}
}

func TestMarkdownParser_Defaults(t *testing.T) {
	deck, err := NewMarkdownParser(sequentialIDs("d"), nil).Import([]byte("# Only a heading\n"))
	require.NoError(t, err)

	assert.Equal(t, entities.DefaultDeckName, deck.Name)
	assert.Equal(t, entities.DefaultTheme, deck.Theme)
	assert.Equal(t, entities.Content{"title": "Only a heading", "subtitle": ""}, deck.Slides[0].Content)
}

func TestMarkdownParser_NoSlides(t *testing.T) {
	for _, src := range []string{"", "---\ntitle: x\n---\n", "---\n---\n---"} {
		_, err := NewMarkdownParser(sequentialIDs("n"), nil).Import([]byte(src))

		require.Error(t, err, "source %q", src)
		assert.True(t, entities.IsParseError(err))
		assert.ErrorIs(t, err, entities.ErrNoSlides)
	}
}

func TestExtractFrontmatter(t *testing.T) {
	t.Run("mapping", func(t *testing.T) {
		fm, rest := extractFrontmatter([]byte("---\r\ntitle: Deck\r\n---\r\n# A"))
		assert.Equal(t, "Deck", fm.Title)
		assert.Equal(t, "# A", string(rest))
	})

	t.Run("leading slide separator is not frontmatter", func(t *testing.T) {
		src := "---\n# First\n---\n# Second"
		fm, rest := extractFrontmatter([]byte(src))
		assert.Empty(t, fm.Title)
		assert.Equal(t, src, string(rest))
	})

	t.Run("no delimiter", func(t *testing.T) {
		_, rest := extractFrontmatter([]byte("# A"))
		assert.Equal(t, "# A", string(rest))
	})
}

func TestSplitSlides(t *testing.T) {
	slides := splitSlides([]byte("# A\n\n---\n\n# B\n  ---  \n\n---\n# C"))

	require.Len(t, slides, 3)
	assert.Equal(t, "# A", string(slides[0]))
	assert.Equal(t, "# B", string(slides[1]))
	assert.Equal(t, "# C", string(slides[2]))
}
