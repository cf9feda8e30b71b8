package export

import (
	"fmt"
	"strings"

	"github.com/fredcamaral/slideforge/internal/domain/entities"
)

// scaffolding lays slides out full-bleed with vertical scroll-snap paging
const scaffolding = `
* { margin: 0; padding: 0; box-sizing: border-box; }
html, body { height: 100%; }
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.5; }
.deck-container { height: 100vh; overflow-y: auto; scroll-snap-type: y mandatory; }
.slide { width: 100vw; height: 100vh; scroll-snap-align: start; overflow: hidden; position: relative; }
`

// themeRules apply the active palette variables to slides and accents
const themeRules = `
body, .slide { background: var(--slide-bg); color: var(--slide-text); }
.slide h1, .slide h2, .metric-value { color: var(--slide-accent); }
`

// Stylesheet returns the complete document stylesheet: scaffolding, theme
// palettes and the given variant rules
func Stylesheet(variantRules string) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(scaffolding))
	sb.WriteString("\n")
	sb.WriteString(PaletteRules())
	sb.WriteString(strings.TrimSpace(themeRules))
	sb.WriteString("\n")
	sb.WriteString(variantRules)
	return sb.String()
}

// PaletteRules renders every built-in palette as CSS custom properties. The
// default palette is bound to :root so unknown themes fall back to it.
func PaletteRules() string {
	var sb strings.Builder
	for _, p := range entities.BuiltInPalettes() {
		selector := fmt.Sprintf(`[data-theme="%s"]`, p.Name)
		if p.IsDefault() {
			selector = ":root"
		}
		fmt.Fprintf(&sb, "%s { --slide-bg: %s; --slide-text: %s; --slide-accent: %s; }\n",
			selector, p.Background, p.Text, p.Accent)
	}
	return sb.String()
}
