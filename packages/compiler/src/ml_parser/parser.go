package ml_parser

import (
	"io"
	"strings"

	"github.com/tliron/commonlog"
	"golang.org/x/net/html"

	"wick-go/packages/compiler/src/util"
)

var log = commonlog.GetLogger("wick.compiler.markup")

// ParseOptions controls tree building
type ParseOptions struct {
	PreserveWhitespaces bool
}

// ParseTreeResult represents the result of parsing a markup tree
type ParseTreeResult struct {
	RootNodes []Node
	Errors    []*util.ParseError
}

// Parse parses component markup into a node tree.
func Parse(source, url string, options ParseOptions) *ParseTreeResult {
	file := util.NewParseSourceFile(source, url)
	b := newTreeBuilder(file, options)
	b.build()
	return &ParseTreeResult{RootNodes: b.roots, Errors: b.errors}
}

type treeBuilder struct {
	file    *util.ParseSourceFile
	src     string
	z       *html.Tokenizer
	offset  int
	stack   []*Element
	roots   []Node
	errors  util.ErrorList
	options ParseOptions
}

func newTreeBuilder(file *util.ParseSourceFile, options ParseOptions) *treeBuilder {
	return &treeBuilder{
		file:    file,
		src:     file.Content,
		z:       html.NewTokenizer(strings.NewReader(file.Content)),
		options: options,
	}
}

func (b *treeBuilder) build() {
	for b.next() {
	}
	for len(b.stack) > 0 {
		el := b.pop()
		if !GetHtmlTagDefinition(el.Name).ClosedByParent() {
			b.errors.Add(el.StartSourceSpan, "Unclosed element <%s>", el.Name)
		}
		b.closeSpan(el, b.offset, b.offset)
	}
}

// next consumes a single token. It returns false at the end of input.
func (b *treeBuilder) next() bool {
	tt := b.z.Next()
	if tt == html.ErrorToken {
		if err := b.z.Err(); err != io.EOF {
			b.errors.Add(b.file.Span(b.offset, b.offset), "%s", err)
		}
		return false
	}

	raw := string(b.z.Raw())
	start := b.offset
	b.offset += len(raw)

	switch tt {
	case html.TextToken:
		b.addText(raw, start)
	case html.CommentToken:
		b.addChild(NewComment(string(b.z.Text()), b.file.Span(start, b.offset)))
	case html.StartTagToken, html.SelfClosingTagToken:
		b.startTag(tt, raw, start)
	case html.EndTagToken:
		name, _ := b.z.TagName()
		b.endTag(string(name), start)
	case html.DoctypeToken:
	}
	return true
}

func (b *treeBuilder) top() *Element {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

func (b *treeBuilder) pop() *Element {
	el := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	return el
}

func (b *treeBuilder) addChild(node Node) {
	parent := b.top()
	if parent == nil {
		b.roots = append(b.roots, node)
		return
	}
	switch n := node.(type) {
	case *Element:
		n.Parent = parent
	case *Text:
		n.Parent = parent
	}
	parent.Children = append(parent.Children, node)
}

func (b *treeBuilder) preformatted() bool {
	if b.options.PreserveWhitespaces {
		return true
	}
	for _, el := range b.stack {
		if el.Name == "pre" || el.Name == "textarea" || el.Attr("preserve-whitespace") != nil {
			return true
		}
	}
	return false
}

func (b *treeBuilder) addText(raw string, start int) {
	parts, err := SplitInterpolation(b.file, raw, start)
	if err != nil {
		b.errors.Append(err)
	}

	if !b.preformatted() {
		if !hasExpr(parts) && IsBlank(html.UnescapeString(raw)) {
			return
		}
		for _, p := range parts {
			if !p.IsExpr {
				p.Text = collapseWhitespace(p.Text)
			}
		}
	}

	if parent := b.top(); parent != nil && len(parts) > 0 && !parts[0].IsExpr &&
		len(parent.Children) == 0 && GetHtmlTagDefinition(parent.Name).IgnoreFirstLf() {
		parts[0].Text = strings.TrimPrefix(parts[0].Text, "\n")
	}

	b.addChild(NewText(PartsValue(parts), parts, b.file.Span(start, start+len(raw))))
}

func (b *treeBuilder) startTag(tt html.TokenType, raw string, start int) {
	nameBytes, _ := b.z.TagName()
	name := string(nameBytes)
	attrs := b.scanAttributes(raw, start)
	startSpan := b.file.Span(start, b.offset)

	switch name {
	case "script", "style":
		if tt == html.StartTagToken {
			b.rawTextElement(name, attrs, start)
			return
		}
	case "markdown":
		if tt == html.StartTagToken {
			b.markdown(startSpan)
			return
		}
	}

	if parent := b.top(); parent != nil && GetHtmlTagDefinition(parent.Name).IsClosedByChild(name) {
		b.closeSpan(b.pop(), start, start)
	}

	el := NewElement(name, attrs, nil, startSpan, startSpan, nil)
	b.addChild(el)
	if tt == html.SelfClosingTagToken || el.IsVoid {
		el.IsSelfClosing = tt == html.SelfClosingTagToken
		el.EndSourceSpan = startSpan
		return
	}
	b.stack = append(b.stack, el)
}

func (b *treeBuilder) closeSpan(el *Element, endStart, end int) {
	el.EndSourceSpan = b.file.Span(endStart, end)
	el.sourceSpan = util.NewParseSourceSpan(el.StartSourceSpan.Start, b.file.Location(end), el.StartSourceSpan.Start, nil)
}

func (b *treeBuilder) endTag(name string, start int) {
	if GetHtmlTagDefinition(name).IsVoid() {
		return
	}
	for i := len(b.stack) - 1; i >= 0; i-- {
		if b.stack[i].Name != name {
			continue
		}
		for len(b.stack) > i+1 {
			el := b.pop()
			if !GetHtmlTagDefinition(el.Name).ClosedByParent() {
				b.errors.Add(el.StartSourceSpan, "Unclosed element <%s>", el.Name)
			}
			b.closeSpan(el, start, start)
		}
		b.closeSpan(b.pop(), start, b.offset)
		return
	}
	b.errors.Add(b.file.Span(start, b.offset), "Unexpected closing tag \"%s\"", name)
}

// rawTextElement consumes the body and end tag of a script or style element.
func (b *treeBuilder) rawTextElement(name string, attrs []*Attribute, start int) {
	contentStart := b.offset
	content := ""
	for {
		tt := b.z.Next()
		if tt == html.ErrorToken {
			b.errors.Add(b.file.Span(start, contentStart), "Unclosed element <%s>", name)
			return
		}
		raw := string(b.z.Raw())
		b.offset += len(raw)
		if tt == html.EndTagToken {
			break
		}
		content += raw
	}

	contentSpan := b.file.Span(contentStart, contentStart+len(content))
	span := b.file.Span(start, b.offset)
	if name == "script" {
		b.addChild(&Script{Attrs: attrs, Content: content, ContentSpan: contentSpan, sourceSpan: span})
	} else {
		b.addChild(&Style{Attrs: attrs, Content: content, ContentSpan: contentSpan, sourceSpan: span})
	}
}

type rawAttr struct {
	name                 string
	nameStart, nameEnd   int
	valueStart, valueEnd int
	hasValue             bool
}

// scanAttributes reads attributes from the raw start tag text, keeping exact
// source offsets for names and values.
func (b *treeBuilder) scanAttributes(raw string, start int) []*Attribute {
	var attrs []*Attribute
	for _, ra := range scanRawAttributes(raw) {
		keySpan := b.file.Span(start+ra.nameStart, start+ra.nameEnd)
		if !ra.hasValue {
			attrs = append(attrs, NewAttribute(ra.name, "", nil, keySpan, keySpan, nil))
			continue
		}
		valueRaw := raw[ra.valueStart:ra.valueEnd]
		parts, err := SplitInterpolation(b.file, valueRaw, start+ra.valueStart)
		if err != nil {
			b.errors.Append(err)
		}
		valueSpan := b.file.Span(start+ra.valueStart, start+ra.valueEnd)
		span := b.file.Span(start+ra.nameStart, start+ra.valueEnd)
		attrs = append(attrs, NewAttribute(ra.name, PartsValue(parts), parts, span, keySpan, valueSpan))
	}
	return attrs
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\t' || c == '\r' || c == '\f'
}

func scanRawAttributes(raw string) []rawAttr {
	var attrs []rawAttr
	i := 1
	for i < len(raw) && !isSpace(raw[i]) && raw[i] != '>' && raw[i] != '/' {
		i++
	}
	for i < len(raw) {
		for i < len(raw) && (isSpace(raw[i]) || raw[i] == '/') {
			i++
		}
		if i >= len(raw) || raw[i] == '>' {
			break
		}

		ra := rawAttr{nameStart: i}
		for i < len(raw) && !isSpace(raw[i]) && raw[i] != '=' && raw[i] != '>' && !(raw[i] == '/' && i+1 < len(raw) && raw[i+1] == '>') {
			i++
		}
		ra.nameEnd = i
		ra.name = strings.ToLower(raw[ra.nameStart:ra.nameEnd])

		j := i
		for j < len(raw) && isSpace(raw[j]) {
			j++
		}
		if j < len(raw) && raw[j] == '=' {
			j++
			for j < len(raw) && isSpace(raw[j]) {
				j++
			}
			ra.hasValue = true
			if j < len(raw) && (raw[j] == '"' || raw[j] == '\'') {
				quote := raw[j]
				ra.valueStart = j + 1
				end := strings.IndexByte(raw[j+1:], quote)
				if end < 0 {
					end = len(raw) - j - 1
				}
				ra.valueEnd = ra.valueStart + end
				i = ra.valueEnd + 1
			} else {
				ra.valueStart = j
				for j < len(raw) && !isSpace(raw[j]) && raw[j] != '>' {
					j++
				}
				ra.valueEnd = j
				i = j
			}
		}
		if ra.name != "" {
			attrs = append(attrs, ra)
		}
	}
	return attrs
}
