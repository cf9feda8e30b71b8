package entities

import "fmt"

// TemplateName identifies a slide variant
type TemplateName string

const (
	TemplateTitle   TemplateName = "title"
	TemplateContent TemplateName = "content"
	TemplateQuote   TemplateName = "quote"
	TemplateImage   TemplateName = "image"
	TemplateSplit   TemplateName = "split"
	TemplateMetrics TemplateName = "metrics"
)

// DefaultTemplate is used by addSlide when no variant is given
const DefaultTemplate = TemplateTitle

// AllTemplates returns the closed variant set in presentation order
func AllTemplates() []TemplateName {
	return []TemplateName{
		TemplateTitle,
		TemplateContent,
		TemplateQuote,
		TemplateImage,
		TemplateSplit,
		TemplateMetrics,
	}
}

// IsValid reports whether t is one of the recognized variants
func (t TemplateName) IsValid() bool {
	switch t {
	case TemplateTitle, TemplateContent, TemplateQuote, TemplateImage, TemplateSplit, TemplateMetrics:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer
func (t TemplateName) String() string {
	return string(t)
}

// ParseTemplateName converts a raw tag into a TemplateName
func ParseTemplateName(s string) (TemplateName, error) {
	t := TemplateName(s)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTemplate, s)
	}
	return t, nil
}
