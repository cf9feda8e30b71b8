package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/fredcamaral/slideforge/internal/domain/entities"
	"github.com/fredcamaral/slideforge/internal/domain/ports"
)

const (
	slideDelimiter = "---"
	listBullet     = "• "
	metricSlots    = 3
)

var authorPrefixes = []string{"-- ", "- "}

// deckFrontmatter holds the deck-level settings of a markdown outline
type deckFrontmatter struct {
	Title string `yaml:"title"`
	Theme string `yaml:"theme"`
}

// MarkdownParser builds a deck from a markdown outline. Slides are separated by
// "---" lines and each one is mapped onto the variant its structure suggests.
type MarkdownParser struct {
	md    goldmark.Markdown
	newID ports.IDGenerator
	log   *zap.Logger
}

// NewMarkdownParser creates a new goldmark-based markdown deck parser
func NewMarkdownParser(newID ports.IDGenerator, log *zap.Logger) *MarkdownParser {
	if log == nil {
		log = zap.NewNop()
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM, // GitHub Flavored Markdown
		),
	)

	return &MarkdownParser{
		md:    md,
		newID: newID,
		log:   log.Named("markdown"),
	}
}

// Import parses a markdown outline into a fresh deck
func (p *MarkdownParser) Import(data []byte) (*entities.Deck, error) {
	fm, body := extractFrontmatter(data)

	deck := &entities.Deck{
		Slides: []entities.Slide{},
		Theme:  entities.DefaultTheme,
		Name:   entities.DefaultDeckName,
	}
	if fm.Title != "" {
		deck.Name = fm.Title
	}
	if fm.Theme != "" {
		deck.Theme = fm.Theme
	}

	for i, src := range splitSlides(body) {
		doc := p.md.Parser().Parse(text.NewReader(src))
		t, content, ok := classify(doc, src)
		if !ok {
			p.log.Debug("skipping empty slide", zap.Int("position", i+1))
			continue
		}
		deck.Slides = append(deck.Slides, entities.Slide{
			ID:       p.newID(),
			Template: t,
			Content:  content,
		})
	}

	if len(deck.Slides) == 0 {
		return nil, &entities.ParseError{Reason: noSlidesFound, Cause: entities.ErrNoSlides}
	}
	deck.ActiveSlideID = deck.Slides[0].ID

	p.log.Debug("outline parsed", zap.Int("slides", len(deck.Slides)))
	return deck, nil
}

// slideParts is the top-level structure of one slide
type slideParts struct {
	heading    string
	blocks     []ast.Node
	blockquote *ast.Blockquote
	image      *ast.Image
}

// classify picks a variant for the slide and fills its content
func classify(doc ast.Node, src []byte) (entities.TemplateName, entities.Content, bool) {
	var parts slideParts
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch b := n.(type) {
		case *ast.Heading:
			if parts.heading == "" {
				parts.heading = inlineText(b, src, " ")
				continue
			}
			parts.blocks = append(parts.blocks, b)
		case *ast.Blockquote:
			if parts.blockquote == nil {
				parts.blockquote = b
				continue
			}
			parts.blocks = append(parts.blocks, b)
		case *ast.ThematicBreak, *ast.HTMLBlock:
			continue
		default:
			if img := findImage(b); img != nil && parts.image == nil {
				parts.image = img
				if inlineText(b, src, " ") == "" {
					continue
				}
			}
			parts.blocks = append(parts.blocks, b)
		}
	}

	switch {
	case parts.blockquote != nil:
		return entities.TemplateQuote, quoteContent(parts, src), true
	case parts.image != nil && len(parts.blocks) > 0:
		return entities.TemplateSplit, entities.Content{
			"title":    parts.heading,
			"body":     strings.Join(bodyLines(parts.blocks, src), "\n"),
			"imageUrl": string(parts.image.Destination),
		}, true
	case parts.image != nil:
		title := parts.heading
		if title == "" {
			title = inlineText(parts.image, src, " ")
		}
		return entities.TemplateImage, entities.Content{
			"title":    title,
			"imageUrl": string(parts.image.Destination),
		}, true
	case parts.heading != "" && len(parts.blocks) == 0:
		return entities.TemplateTitle, entities.Content{"title": parts.heading, "subtitle": ""}, true
	case parts.heading != "" && len(parts.blocks) == 1 && isParagraph(parts.blocks[0]):
		return entities.TemplateTitle, entities.Content{
			"title":    parts.heading,
			"subtitle": inlineText(parts.blocks[0], src, " "),
		}, true
	case parts.heading != "" && len(parts.blocks) == 1:
		if content, ok := metricsContent(parts.heading, parts.blocks[0], src); ok {
			return entities.TemplateMetrics, content, true
		}
	}

	if parts.heading == "" && len(parts.blocks) == 0 {
		return "", nil, false
	}
	return entities.TemplateContent, entities.Content{
		"title": parts.heading,
		"body":  strings.Join(bodyLines(parts.blocks, src), "\n"),
	}, true
}

// quoteContent reads the quotation and its author. The author is a block
// following the quote, or the quote's last line, written as "- name" or "-- name".
func quoteContent(parts slideParts, src []byte) entities.Content {
	var lines []string
	author := ""
	for n := parts.blockquote.FirstChild(); n != nil; n = n.NextSibling() {
		if n.NextSibling() == nil && n != parts.blockquote.FirstChild() {
			if a, ok := authorLine(n, src); ok {
				author = a
				break
			}
		}
		lines = append(lines, strings.Split(inlineText(n, src, "\n"), "\n")...)
	}

	if len(parts.blocks) > 0 {
		if a, ok := authorLine(parts.blocks[len(parts.blocks)-1], src); ok {
			author = a
		}
	}
	if author == "" && len(lines) > 1 {
		if a, ok := trimAuthor(lines[len(lines)-1]); ok {
			author = a
			lines = lines[:len(lines)-1]
		}
	}

	return entities.Content{
		"quote":  strings.TrimSpace(strings.Join(lines, " ")),
		"author": author,
	}
}

// authorLine accepts a single-item bullet list or a paragraph with an author prefix
func authorLine(n ast.Node, src []byte) (string, bool) {
	if list, ok := n.(*ast.List); ok {
		if list.ChildCount() == 1 && !list.IsOrdered() {
			return inlineText(list.FirstChild(), src, " "), true
		}
		return "", false
	}
	return trimAuthor(inlineText(n, src, " "))
}

func trimAuthor(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, prefix := range authorPrefixes {
		if strings.HasPrefix(s, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(s, prefix)), true
		}
	}
	return "", false
}

// metricsContent accepts a list whose items are all written as "value: label"
// or "**value** label". The first three items fill the metric slots in order.
func metricsContent(title string, block ast.Node, src []byte) (entities.Content, bool) {
	list, ok := block.(*ast.List)
	if !ok || list.ChildCount() == 0 {
		return nil, false
	}

	content := entities.Content{"title": title}
	for i := 1; i <= metricSlots; i++ {
		content[fmt.Sprintf("metric%dValue", i)] = ""
		content[fmt.Sprintf("metric%dLabel", i)] = ""
	}

	i := 1
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		value, label, ok := metricItem(item, src)
		if !ok {
			return nil, false
		}
		if i <= metricSlots {
			content[fmt.Sprintf("metric%dValue", i)] = value
			content[fmt.Sprintf("metric%dLabel", i)] = label
		}
		i++
	}
	return content, true
}

// metricItem splits one list item into its value and label. A "value: label"
// value must hold a digit so ordinary "Term: definition" bullets stay body text.
func metricItem(item ast.Node, src []byte) (string, string, bool) {
	para := item.FirstChild()
	if para == nil || para.NextSibling() != nil {
		return "", "", false
	}

	if strong, ok := para.FirstChild().(*ast.Emphasis); ok && strong.Level == 2 {
		value := inlineText(strong, src, " ")
		label := strings.TrimSpace(strings.TrimPrefix(inlineText(para, src, " "), value))
		return value, label, true
	}

	value, label, found := strings.Cut(inlineText(para, src, " "), ": ")
	value = strings.TrimSpace(value)
	if !found || value == "" || !strings.ContainsAny(value, "0123456789") {
		return "", "", false
	}
	return value, strings.TrimSpace(label), true
}

// bodyLines renders blocks as plain text, one line per block or list item
func bodyLines(blocks []ast.Node, src []byte) []string {
	var lines []string
	for _, b := range blocks {
		switch n := b.(type) {
		case *ast.List:
			for item := n.FirstChild(); item != nil; item = item.NextSibling() {
				lines = append(lines, listBullet+inlineText(item, src, " "))
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			segs := n.Lines()
			for i := 0; i < segs.Len(); i++ {
				seg := segs.At(i)
				lines = append(lines, strings.TrimRight(string(seg.Value(src)), "\r\n"))
			}
		default:
			if s := inlineText(n, src, " "); s != "" {
				lines = append(lines, s)
			}
		}
	}
	return lines
}

// inlineText concatenates the text below n; soft line breaks become softBreak
// and images contribute nothing except when n is the image itself
func inlineText(n ast.Node, src []byte, softBreak string) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Image:
			if c != n {
				return ast.WalkSkipChildren, nil
			}
		case *ast.Text:
			sb.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteString(softBreak)
			}
		case *ast.String:
			sb.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

func findImage(n ast.Node) *ast.Image {
	var img *ast.Image
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if i, ok := c.(*ast.Image); ok && entering {
			img = i
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return img
}

func isParagraph(n ast.Node) bool {
	_, ok := n.(*ast.Paragraph)
	return ok
}

// extractFrontmatter splits a leading YAML mapping delimited by "---" lines from
// the outline. Anything else is left in place as slide content.
func extractFrontmatter(content []byte) (deckFrontmatter, []byte) {
	var fm deckFrontmatter
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(content, []byte(slideDelimiter+"\n")) {
		return fm, content
	}

	lines := bytes.Split(content, []byte("\n"))
	end := -1
	for i := 1; i < len(lines); i++ {
		if string(bytes.TrimSpace(lines[i])) == slideDelimiter {
			end = i
			break
		}
	}
	if end == -1 {
		return fm, content
	}

	block := bytes.Join(lines[1:end], []byte("\n"))
	var raw map[string]any
	if err := yaml.Unmarshal(block, &raw); err != nil || (raw == nil && len(bytes.TrimSpace(block)) > 0) {
		return fm, content
	}
	if err := yaml.Unmarshal(block, &fm); err != nil {
		return deckFrontmatter{}, content
	}
	return fm, bytes.Join(lines[end+1:], []byte("\n"))
}

// splitSlides splits the outline on lines holding only "---"
func splitSlides(content []byte) [][]byte {
	var slides [][]byte
	var current []string
	flush := func() {
		if s := strings.TrimSpace(strings.Join(current, "\n")); s != "" {
			slides = append(slides, []byte(s))
		}
		current = current[:0]
	}

	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == slideDelimiter {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	return slides
}

// Ensure MarkdownParser implements ports.DeckImporter
var _ ports.DeckImporter = (*MarkdownParser)(nil)
