package entities

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Palette is a named set of CSS custom property values consumed by template styles
type Palette struct {
	// Name is the theme identifier stored on the deck
	Name string `json:"name"`

	// Background is the value of --slide-bg
	Background string `json:"background"`

	// Text is the value of --slide-text
	Text string `json:"text"`

	// Accent is the value of --slide-accent
	Accent string `json:"accent"`
}

// DisplayName returns the human-readable palette name
func (p Palette) DisplayName() string {
	return cases.Title(language.English).String(strings.ReplaceAll(p.Name, "-", " "))
}

// IsDefault reports whether p is the baseline palette
func (p Palette) IsDefault() bool {
	return p.Name == DefaultTheme
}

var builtInPalettes = []Palette{
	{Name: DefaultTheme, Background: "white", Text: "#333", Accent: "#3b82f6"},
	{Name: "dark", Background: "#1e293b", Text: "#f8fafc", Accent: "#60a5fa"},
	{Name: "ocean", Background: "#e0f2fe", Text: "#0c4a6e", Accent: "#0284c7"},
	{Name: "sunset", Background: "#fff7ed", Text: "#7c2d12", Accent: "#ea580c"},
	{Name: "forest", Background: "#f0fdf4", Text: "#14532d", Accent: "#16a34a"},
}

// BuiltInPalettes returns the fixed palette set, default first
func BuiltInPalettes() []Palette {
	out := make([]Palette, len(builtInPalettes))
	copy(out, builtInPalettes)
	return out
}

// LookupPalette returns the palette for a theme identifier. Unrecognized identifiers
// are legal and receive the default palette; ok reports whether name was recognized.
func LookupPalette(name string) (Palette, bool) {
	for _, p := range builtInPalettes {
		if p.Name == name {
			return p, true
		}
	}
	return builtInPalettes[0], false
}

// IsBuiltInTheme returns true if name is one of the built-in palettes
func IsBuiltInTheme(name string) bool {
	_, ok := LookupPalette(name)
	return ok
}
