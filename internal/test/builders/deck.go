package builders

import (
	"strconv"

	"github.com/fredcamaral/slideforge/internal/domain/entities"
)

// DeckBuilder helps build Deck entities for testing
type DeckBuilder struct {
	deck *entities.Deck
}

// NewDeckBuilder creates a new deck builder with sensible defaults: no slides,
// the default theme and name
func NewDeckBuilder() *DeckBuilder {
	return &DeckBuilder{
		deck: &entities.Deck{
			Slides:        []entities.Slide{},
			ActiveSlideID: entities.NoActiveSlide,
			Theme:         entities.DefaultTheme,
			Name:          entities.DefaultDeckName,
		},
	}
}

// WithTheme sets the deck theme
func (b *DeckBuilder) WithTheme(theme string) *DeckBuilder {
	b.deck.Theme = theme
	return b
}

// WithName sets the deck display name
func (b *DeckBuilder) WithName(name string) *DeckBuilder {
	b.deck.Name = name
	return b
}

// WithSlide appends a slide; the first slide added becomes active
func (b *DeckBuilder) WithSlide(slide entities.Slide) *DeckBuilder {
	b.deck.Slides = append(b.deck.Slides, slide)
	if b.deck.ActiveSlideID == entities.NoActiveSlide {
		b.deck.ActiveSlideID = slide.ID
	}
	return b
}

// WithDefaultSlide appends a title slide with placeholder content
func (b *DeckBuilder) WithDefaultSlide() *DeckBuilder {
	id := slideID(len(b.deck.Slides) + 1)
	return b.WithSlide(NewSlideBuilder().WithID(id).Build())
}

// WithSlideCount appends count title slides numbered from the current length
func (b *DeckBuilder) WithSlideCount(count int) *DeckBuilder {
	for i := 0; i < count; i++ {
		n := len(b.deck.Slides) + 1
		title := "Slide " + strconv.Itoa(n)
		b.WithSlide(NewSlideBuilder().
			WithID(slideID(n)).
			WithField("title", title).
			Build())
	}
	return b
}

// WithActive sets the active slide identifier without checking it
func (b *DeckBuilder) WithActive(id string) *DeckBuilder {
	b.deck.ActiveSlideID = id
	return b
}

// Build creates the final Deck entity
func (b *DeckBuilder) Build() *entities.Deck {
	// Deep copy to prevent mutation
	d := b.deck.Clone()
	return &d
}

// SlideBuilder helps build Slide entities for testing
type SlideBuilder struct {
	slide *entities.Slide
}

// NewSlideBuilder creates a new title slide builder with placeholder content
func NewSlideBuilder() *SlideBuilder {
	return &SlideBuilder{
		slide: &entities.Slide{
			ID:       "slide-1",
			Template: entities.TemplateTitle,
			Content: entities.Content{
				"title":    "Test Slide",
				"subtitle": "Test subtitle",
			},
		},
	}
}

// WithID sets the slide ID
func (b *SlideBuilder) WithID(id string) *SlideBuilder {
	b.slide.ID = id
	return b
}

// WithTemplate sets the template and clears content
func (b *SlideBuilder) WithTemplate(t entities.TemplateName) *SlideBuilder {
	b.slide.Template = t
	b.slide.Content = entities.Content{}
	return b
}

// WithField sets one content field
func (b *SlideBuilder) WithField(name, value string) *SlideBuilder {
	b.slide.Content[name] = value
	return b
}

// WithContent replaces the content
func (b *SlideBuilder) WithContent(c entities.Content) *SlideBuilder {
	b.slide.Content = c.Clone()
	return b
}

// Build creates the final Slide entity
func (b *SlideBuilder) Build() entities.Slide {
	return b.slide.Clone()
}

// MinimalDeck returns a deck with a single active title slide
func MinimalDeck() *entities.Deck {
	return NewDeckBuilder().WithName("Minimal").WithDefaultSlide().Build()
}

// LargeDeck returns a deck with 50 title slides
func LargeDeck() *entities.Deck {
	return NewDeckBuilder().WithName("Large Deck").WithSlideCount(50).Build()
}

func slideID(n int) string {
	return "slide-" + strconv.Itoa(n)
}
