package templates

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/fredcamaral/slideforge/internal/domain/entities"
)

// Codec describes how a field value is written into markup and read back
type Codec int

const (
	// CodecText writes the value as the element's text
	CodecText Codec = iota
	// CodecLines writes newlines as <br> elements
	CodecLines
	// CodecQuoted wraps the value in literal double quotes
	CodecQuoted
	// CodecCited prefixes the value with "- "
	CodecCited
)

const (
	quoteMark   = `"`
	citePrefix  = "- "
	indentUnit  = "    "
	styleAttr   = "style"
	classAttr   = "class"
	bgProperty  = "background-image"
	urlFunction = "url("
)

var brPattern = regexp.MustCompile(`(?i)<br\s*/?>`)

// Element is one node of a variant's markup blueprint. The same tree renders
// content to markup and locates fields when reading markup back.
type Element struct {
	Tag     string
	Classes []string

	// Text names the field rendered as this element's text, encoded with Codec
	Text  string
	Codec Codec

	// Background names the field rendered as an inline background-image URL
	Background string

	Children []Element
}

func el(tag, class string, children ...Element) Element {
	return Element{Tag: tag, Classes: strings.Fields(class), Children: children}
}

func text(tag, class, field string, codec Codec) Element {
	return Element{Tag: tag, Classes: strings.Fields(class), Text: field, Codec: codec}
}

func (e Element) withBackground(field string) Element {
	e.Background = field
	return e
}

// Fields returns the bound field names in document order
func (e Element) Fields() []string {
	var out []string
	if e.Background != "" {
		out = append(out, e.Background)
	}
	if e.Text != "" {
		out = append(out, e.Text)
	}
	for _, child := range e.Children {
		out = append(out, child.Fields()...)
	}
	return out
}

// build renders the blueprint into a detached node tree
func (e Element) build(c entities.Content, depth int) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     e.Tag,
		DataAtom: atom.Lookup([]byte(e.Tag)),
	}
	if len(e.Classes) > 0 {
		n.Attr = append(n.Attr, html.Attribute{Key: classAttr, Val: strings.Join(e.Classes, " ")})
	}
	if e.Background != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: styleAttr, Val: encodeBackground(c.Get(e.Background))})
	}
	if e.Text != "" {
		appendEncoded(n, e.Codec, c.Get(e.Text))
	}
	for _, child := range e.Children {
		n.AppendChild(indent(depth + 1))
		n.AppendChild(child.build(c, depth+1))
	}
	if len(e.Children) > 0 {
		n.AppendChild(indent(depth))
	}
	return n
}

// extract reads every field bound in the blueprint from n; a nil n yields
// empty values for the whole subtree
func (e Element) extract(n *html.Node, c entities.Content, strip *bluemonday.Policy) {
	if n == nil {
		for _, f := range e.Fields() {
			c[f] = ""
		}
		return
	}

	if e.Background != "" {
		c[e.Background] = decodeBackground(attr(n, styleAttr))
	}
	if e.Text != "" {
		c[e.Text] = decode(e.Codec, n, strip)
	}

	seen := make(map[string]int, len(e.Children))
	for _, child := range e.Children {
		sel := child.selector()
		k := seen[sel]
		seen[sel]++
		child.extract(nthMatch(n, child, k), c, strip)
	}
}

func (e Element) selector() string {
	return e.Tag + "." + strings.Join(e.Classes, ".")
}

// matches reports whether n has the blueprint's tag and carries all its classes
func (e Element) matches(n *html.Node) bool {
	if n.Type != html.ElementNode || !strings.EqualFold(n.Data, e.Tag) {
		return false
	}
	return hasClasses(n, e.Classes)
}

// nthMatch returns the k-th descendant of root matching the blueprint, in document order
func nthMatch(root *html.Node, e Element, k int) *html.Node {
	var found *html.Node
	count := 0
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			if e.matches(ch) {
				if count == k {
					found = ch
					return true
				}
				count++
			}
			if walk(ch) {
				return true
			}
		}
		return false
	}
	walk(root)
	return found
}

func hasClasses(n *html.Node, want []string) bool {
	if len(want) == 0 {
		return true
	}
	have := strings.Fields(attr(n, classAttr))
	for _, w := range want {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func indent(depth int) *html.Node {
	return &html.Node{Type: html.TextNode, Data: "\n" + strings.Repeat(indentUnit, depth)}
}

func appendEncoded(n *html.Node, codec Codec, value string) {
	switch codec {
	case CodecQuoted:
		value = quoteMark + value + quoteMark
	case CodecCited:
		value = citePrefix + value
	case CodecLines:
		value = strings.ReplaceAll(value, "\r\n", "\n")
		for i, line := range strings.Split(value, "\n") {
			if i > 0 {
				n.AppendChild(&html.Node{Type: html.ElementNode, Data: "br", DataAtom: atom.Br})
			}
			if line != "" {
				n.AppendChild(&html.Node{Type: html.TextNode, Data: line})
			}
		}
		return
	}
	if value != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: value})
	}
}

func decode(codec Codec, n *html.Node, strip *bluemonday.Policy) string {
	switch codec {
	case CodecLines:
		return innerLines(n, strip)
	case CodecQuoted:
		s := textContent(n)
		s = strings.TrimPrefix(s, quoteMark)
		return strings.TrimSuffix(s, quoteMark)
	case CodecCited:
		return strings.TrimPrefix(textContent(n), citePrefix)
	default:
		return textContent(n)
	}
}

// textContent concatenates every descendant text node
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(n)
	return sb.String()
}

// innerLines turns the inner markup into plain text: <br> becomes a newline and
// any other markup is stripped
func innerLines(n *html.Node, strip *bluemonday.Policy) string {
	var buf bytes.Buffer
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if err := html.Render(&buf, ch); err != nil {
			return textContent(n)
		}
	}
	s := brPattern.ReplaceAllString(buf.String(), "\n")
	return html.UnescapeString(strip.Sanitize(s))
}

// encodeBackground writes a CSS declaration with the URL in single quotes
func encodeBackground(url string) string {
	url = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", "", "\r", "").Replace(url)
	return bgProperty + ": url('" + url + "');"
}

// decodeBackground extracts the URL of the background-image declaration of an
// inline style attribute
func decodeBackground(style string) string {
	if strings.TrimSpace(style) == "" {
		return ""
	}

	p := css.NewParser(parse.NewInput(strings.NewReader(style)), true)
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			return ""
		case css.DeclarationGrammar:
			prop := strings.ToLower(string(data))
			if prop != bgProperty && prop != "background" {
				continue
			}
			if u, ok := urlFromTokens(p.Values()); ok {
				return u
			}
		}
	}
}

func urlFromTokens(tokens []css.Token) (string, bool) {
	for i, t := range tokens {
		switch t.TokenType {
		case css.URLToken:
			s := string(t.Data)
			s = s[min(len(urlFunction), len(s)):]
			s = strings.TrimSuffix(s, ")")
			return unescapeCSS(unquote(s)), true
		case css.FunctionToken:
			if !strings.EqualFold(string(t.Data), urlFunction) {
				continue
			}
			for _, next := range tokens[i+1:] {
				if next.TokenType == css.StringToken {
					return unescapeCSS(unquote(string(next.Data))), true
				}
			}
		}
	}
	return "", false
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}

func unescapeCSS(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	escaped := false
	for _, r := range s {
		if escaped {
			sb.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
