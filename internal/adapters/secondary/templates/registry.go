package templates

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fredcamaral/slideforge/internal/domain/entities"
	"github.com/fredcamaral/slideforge/internal/domain/ports"
)

// UnknownTemplateHTML is rendered in place of a slide whose variant is not recognized
const UnknownTemplateHTML = `<div class="slide-template unknown-slide">Unknown Template</div>`

// anyTemplateRoot matches the root of any rendered slide regardless of variant
var anyTemplateRoot = el("div", templateClass)

// FieldSpec is one schema field and its placeholder value
type FieldSpec struct {
	Name    string
	Default string
}

// Variant is a slide template: schema, defaults, blueprint and style rules
type Variant struct {
	Name   entities.TemplateName
	Fields []FieldSpec
	Layout Element
	Styles string
}

// Schema returns the ordered field names
func (v *Variant) Schema() []string {
	names := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		names[i] = f.Name
	}
	return names
}

// HasField reports whether name belongs to the schema
func (v *Variant) HasField(name string) bool {
	for _, f := range v.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// DefaultContent returns a fresh mapping with every schema field populated
func (v *Variant) DefaultContent() entities.Content {
	c := make(entities.Content, len(v.Fields))
	for _, f := range v.Fields {
		c[f.Name] = f.Default
	}
	return c
}

// DisplayName returns the human-readable variant name, e.g. "Title Slide"
func (v *Variant) DisplayName() string {
	return cases.Title(language.English).String(string(v.Name)) + " Slide"
}

// Registry holds the closed set of slide variants
type Registry struct {
	variants map[entities.TemplateName]*Variant
	order    []entities.TemplateName
	strip    *bluemonday.Policy
}

// NewRegistry creates a registry with the built-in variants
func NewRegistry() *Registry {
	r := &Registry{
		variants: make(map[entities.TemplateName]*Variant),
		strip:    bluemonday.StrictPolicy(),
	}
	for _, v := range builtInVariants() {
		r.variants[v.Name] = v
		r.order = append(r.order, v.Name)
	}
	return r
}

// Variant returns the variant for t
func (r *Registry) Variant(t entities.TemplateName) (*Variant, bool) {
	v, ok := r.variants[t]
	return v, ok
}

// Variants returns every variant in definition order
func (r *Registry) Variants() []*Variant {
	out := make([]*Variant, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.variants[name])
	}
	return out
}

// Schema returns the ordered field names of t
func (r *Registry) Schema(t entities.TemplateName) ([]string, bool) {
	v, ok := r.variants[t]
	if !ok {
		return nil, false
	}
	return v.Schema(), true
}

// DefaultContent returns initial content for a new slide of template t
func (r *Registry) DefaultContent(t entities.TemplateName) (entities.Content, bool) {
	v, ok := r.variants[t]
	if !ok {
		return nil, false
	}
	return v.DefaultContent(), true
}

// MergeContent starts from t's defaults and overwrites them with every existing
// value whose key is also in t's schema. Keys outside the schema are dropped.
func (r *Registry) MergeContent(t entities.TemplateName, existing entities.Content) (entities.Content, bool) {
	v, ok := r.variants[t]
	if !ok {
		return nil, false
	}
	merged := v.DefaultContent()
	for key, value := range existing {
		if v.HasField(key) {
			merged[key] = value
		}
	}
	return merged, true
}

// NormalizeContent returns a copy of content restricted to t's schema. Content
// of an unknown template is copied unchanged.
func (r *Registry) NormalizeContent(t entities.TemplateName, content entities.Content) entities.Content {
	v, ok := r.variants[t]
	if !ok {
		return content.Clone()
	}
	out := make(entities.Content, len(content))
	for key, value := range content {
		if v.HasField(key) {
			out[key] = value
		}
	}
	return out
}

// RenderNode builds the detached markup tree of a slide
func (r *Registry) RenderNode(t entities.TemplateName, content entities.Content) (*html.Node, error) {
	v, ok := r.variants[t]
	if !ok {
		return nil, fmt.Errorf("rendering %q: %w", t, entities.ErrUnknownTemplate)
	}
	return v.Layout.build(content, 0), nil
}

// Render returns the markup fragment of a slide. It is a pure function of content.
func (r *Registry) Render(t entities.TemplateName, content entities.Content) (string, error) {
	n, err := r.RenderNode(t, content)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", fmt.Errorf("rendering %q markup: %w", t, err)
	}
	return buf.String(), nil
}

// RenderSlide renders a slide for preview, substituting a placeholder for unknown variants
func (r *Registry) RenderSlide(slide *entities.Slide) string {
	out, err := r.Render(slide.Template, slide.Content)
	if err != nil {
		return UnknownTemplateHTML
	}
	return out
}

// Extract reads a slide's content back from node, the element produced by Render
// (or a container holding it). Missing sub-elements yield empty fields.
func (r *Registry) Extract(t entities.TemplateName, node *html.Node) (entities.Content, error) {
	v, ok := r.variants[t]
	if !ok {
		return nil, fmt.Errorf("extracting %q: %w", t, entities.ErrUnknownTemplate)
	}

	content := make(entities.Content, len(v.Fields))
	root := node
	if root != nil && !v.Layout.matches(root) {
		if found := nthMatch(root, v.Layout, 0); found != nil {
			root = found
		} else if found := nthMatch(root, anyTemplateRoot, 0); found != nil {
			root = found
		}
	}
	v.Layout.extract(root, content, r.strip)
	return content, nil
}

// Stylesheet returns the style rules of every variant concatenated in definition order
func (r *Registry) Stylesheet() string {
	var sb strings.Builder
	for _, v := range r.Variants() {
		sb.WriteString(strings.TrimSpace(v.Styles))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Ensure Registry implements ports.TemplateRenderer
var _ ports.TemplateRenderer = (*Registry)(nil)
