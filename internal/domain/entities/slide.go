package entities

import (
	"errors"
	"maps"
)

// Content maps schema field names to their string values
type Content map[string]string

// Clone returns a value copy of the content
func (c Content) Clone() Content {
	if c == nil {
		return Content{}
	}
	return maps.Clone(c)
}

// Get returns the value of a field or "" when absent
func (c Content) Get(field string) string {
	return c[field]
}

// Slide represents a single slide in a deck
type Slide struct {
	// ID is assigned at creation and never reused
	ID string `json:"id" yaml:"id"`

	// Template is the slide variant
	Template TemplateName `json:"template" yaml:"template"`

	// Content holds the values of the template's schema fields
	Content Content `json:"content" yaml:"content"`
}

// Validate ensures the slide carries an identifier and a known template
func (s *Slide) Validate() error {
	if s.ID == "" {
		return errors.New("slide id is required")
	}

	if !s.Template.IsValid() {
		return ErrUnknownTemplate
	}

	return nil
}

// Clone returns a deep copy of the slide
func (s Slide) Clone() Slide {
	return Slide{
		ID:       s.ID,
		Template: s.Template,
		Content:  s.Content.Clone(),
	}
}

// Title returns the slide's title field, used for slide list summaries
func (s *Slide) Title() string {
	if title := s.Content.Get("title"); title != "" {
		return title
	}
	return "Untitled"
}
