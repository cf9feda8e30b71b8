package entities

import (
	"fmt"
)

const (
	// NoActiveSlide is the active identifier of an empty deck
	NoActiveSlide = ""

	// DefaultTheme is the baseline palette identifier
	DefaultTheme = "default"

	// DefaultDeckName is the display name of a fresh or unnamed deck
	DefaultDeckName = "My Presentation"
)

// Deck is the complete editor state: ordered slides, active selection, theme and name
type Deck struct {
	// Slides in presentation order
	Slides []Slide `json:"slides" yaml:"slides"`

	// ActiveSlideID references the slide being edited, or NoActiveSlide
	ActiveSlideID string `json:"activeSlideId" yaml:"activeSlideId"`

	// Theme names a palette; it is not validated
	Theme string `json:"theme" yaml:"theme"`

	// Name is the display name of the whole deck
	Name string `json:"presentationName" yaml:"presentationName"`
}

// Clone returns a deep copy that shares no memory with d
func (d *Deck) Clone() Deck {
	out := Deck{
		ActiveSlideID: d.ActiveSlideID,
		Theme:         d.Theme,
		Name:          d.Name,
	}
	if d.Slides != nil {
		out.Slides = make([]Slide, len(d.Slides))
		for i := range d.Slides {
			out.Slides[i] = d.Slides[i].Clone()
		}
	}
	return out
}

// IndexOf returns the position of the slide with id, or -1
func (d *Deck) IndexOf(id string) int {
	for i := range d.Slides {
		if d.Slides[i].ID == id {
			return i
		}
	}
	return -1
}

// SlideByID returns the slide with id
func (d *Deck) SlideByID(id string) (*Slide, bool) {
	if i := d.IndexOf(id); i >= 0 {
		return &d.Slides[i], true
	}
	return nil, false
}

// SlideCount returns the total number of slides
func (d *Deck) SlideCount() int {
	return len(d.Slides)
}

// RepairActive points ActiveSlideID at an existing slide: the current one if valid,
// otherwise the first slide, or NoActiveSlide for an empty deck.
func (d *Deck) RepairActive() {
	if d.ActiveSlideID != NoActiveSlide && d.IndexOf(d.ActiveSlideID) >= 0 {
		return
	}
	if len(d.Slides) > 0 {
		d.ActiveSlideID = d.Slides[0].ID
		return
	}
	d.ActiveSlideID = NoActiveSlide
}

// Validate checks the structural invariants: a slide sequence exists, identifiers are
// unique and the active identifier references a slide.
func (d *Deck) Validate() error {
	if d.Slides == nil {
		return &SnapshotError{Reason: "deck has no slide sequence", Cause: ErrMissingSlides}
	}

	seen := make(map[string]struct{}, len(d.Slides))
	for i := range d.Slides {
		if err := d.Slides[i].Validate(); err != nil {
			return &SnapshotError{Reason: fmt.Sprintf("slide %d is invalid", i+1), Cause: err}
		}
		if _, dup := seen[d.Slides[i].ID]; dup {
			return &SnapshotError{Reason: fmt.Sprintf("duplicate slide id %q", d.Slides[i].ID)}
		}
		seen[d.Slides[i].ID] = struct{}{}
	}

	if d.ActiveSlideID == NoActiveSlide {
		if len(d.Slides) > 0 {
			return &SnapshotError{Reason: "active slide missing for non-empty deck"}
		}
		return nil
	}
	if _, ok := seen[d.ActiveSlideID]; !ok {
		return &SnapshotError{Reason: fmt.Sprintf("active slide %q not in deck", d.ActiveSlideID)}
	}

	return nil
}
