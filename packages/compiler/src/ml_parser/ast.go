package ml_parser

import (
	"strings"

	"wick-go/packages/compiler/src/util"
)

// Node represents a node in the markup AST
type Node interface {
	SourceSpan() *util.ParseSourceSpan
	Type() NodeType
	Visit(visitor Visitor, context interface{}) interface{}
}

// Part is a piece of attribute or text content: either literal text or the
// source of a `${}` expression.
type Part struct {
	Text   string
	IsExpr bool
	// Offset is the position of Text in the source file
	Offset int
	Span   *util.ParseSourceSpan
}

func hasExpr(parts []*Part) bool {
	for _, p := range parts {
		if p.IsExpr {
			return true
		}
	}
	return false
}

// Text represents a text node
type Text struct {
	Value  string
	Parts  []*Part
	Parent *Element
	// Index is the position in the flattened node table, or -1
	Index      int
	sourceSpan *util.ParseSourceSpan
}

// NewText creates a new Text node
func NewText(value string, parts []*Part, sourceSpan *util.ParseSourceSpan) *Text {
	return &Text{Value: value, Parts: parts, Index: -1, sourceSpan: sourceSpan}
}

func (t *Text) SourceSpan() *util.ParseSourceSpan { return t.sourceSpan }
func (t *Text) Type() NodeType                    { return HTMLText }

// Visit implements the Node interface
func (t *Text) Visit(visitor Visitor, context interface{}) interface{} {
	return visitor.VisitText(t, context)
}

// HasBinding reports whether the text contains `${}` expressions
func (t *Text) HasBinding() bool {
	return hasExpr(t.Parts)
}

// Attribute represents an attribute node
type Attribute struct {
	Name       string
	Value      string
	Parts      []*Part
	KeySpan    *util.ParseSourceSpan
	ValueSpan  *util.ParseSourceSpan
	HasValue   bool
	sourceSpan *util.ParseSourceSpan
}

// NewAttribute creates a new Attribute node
func NewAttribute(name, value string, parts []*Part, sourceSpan, keySpan, valueSpan *util.ParseSourceSpan) *Attribute {
	return &Attribute{
		Name:       name,
		Value:      value,
		Parts:      parts,
		KeySpan:    keySpan,
		ValueSpan:  valueSpan,
		HasValue:   valueSpan != nil,
		sourceSpan: sourceSpan,
	}
}

func (a *Attribute) SourceSpan() *util.ParseSourceSpan { return a.sourceSpan }
func (a *Attribute) Type() NodeType                    { return HTMLText }

// Visit implements the Node interface
func (a *Attribute) Visit(visitor Visitor, context interface{}) interface{} {
	return visitor.VisitAttribute(a, context)
}

// HasBinding reports whether the value contains `${}` expressions
func (a *Attribute) HasBinding() bool {
	return hasExpr(a.Parts)
}

// IsSingleExpression reports whether the whole value is one `${}` expression
func (a *Attribute) IsSingleExpression() bool {
	return len(a.Parts) == 1 && a.Parts[0].IsExpr
}

// Element represents an element node
type Element struct {
	Name     string
	NodeType NodeType
	Attrs    []*Attribute
	Children []Node
	Parent   *Element
	// Index is the position in the flattened element table, or -1
	Index           int
	IsVoid          bool
	IsSelfClosing   bool
	StartSourceSpan *util.ParseSourceSpan
	EndSourceSpan   *util.ParseSourceSpan
	sourceSpan      *util.ParseSourceSpan
}

// NewElement creates a new Element node
func NewElement(name string, attrs []*Attribute, children []Node, sourceSpan, startSourceSpan, endSourceSpan *util.ParseSourceSpan) *Element {
	return &Element{
		Name:            name,
		NodeType:        elementType(name),
		Attrs:           attrs,
		Children:        children,
		Index:           -1,
		IsVoid:          GetHtmlTagDefinition(name).IsVoid(),
		StartSourceSpan: startSourceSpan,
		EndSourceSpan:   endSourceSpan,
		sourceSpan:      sourceSpan,
	}
}

func (e *Element) SourceSpan() *util.ParseSourceSpan { return e.sourceSpan }
func (e *Element) Type() NodeType                    { return e.NodeType }

// Visit implements the Node interface
func (e *Element) Visit(visitor Visitor, context interface{}) interface{} {
	return visitor.VisitElement(e, context)
}

// Attr returns the attribute with the given name, or nil
func (e *Element) Attr(name string) *Attribute {
	for _, attr := range e.Attrs {
		if attr.Name == name {
			return attr
		}
	}
	return nil
}

// RemoveAttr removes the named attribute and returns it
func (e *Element) RemoveAttr(name string) *Attribute {
	for i, attr := range e.Attrs {
		if attr.Name == name {
			e.Attrs = append(e.Attrs[:i:i], e.Attrs[i+1:]...)
			return attr
		}
	}
	return nil
}

// ChildElements returns the element children
func (e *Element) ChildElements() []*Element {
	var out []*Element
	for _, child := range e.Children {
		if el, ok := child.(*Element); ok {
			out = append(out, el)
		}
	}
	return out
}

// Comment represents a comment node
type Comment struct {
	Value      string
	sourceSpan *util.ParseSourceSpan
}

// NewComment creates a new Comment node
func NewComment(value string, sourceSpan *util.ParseSourceSpan) *Comment {
	return &Comment{Value: value, sourceSpan: sourceSpan}
}

func (c *Comment) SourceSpan() *util.ParseSourceSpan { return c.sourceSpan }
func (c *Comment) Type() NodeType                    { return HTMLComment }

// Visit implements the Node interface
func (c *Comment) Visit(visitor Visitor, context interface{}) interface{} {
	return visitor.VisitComment(c, context)
}

// Script is a <script> element holding component code
type Script struct {
	Attrs       []*Attribute
	Content     string
	ContentSpan *util.ParseSourceSpan
	sourceSpan  *util.ParseSourceSpan
}

func (s *Script) SourceSpan() *util.ParseSourceSpan { return s.sourceSpan }
func (s *Script) Type() NodeType                    { return JSScript }

// Visit implements the Node interface
func (s *Script) Visit(visitor Visitor, context interface{}) interface{} {
	return visitor.VisitScript(s, context)
}

// ContentOffset returns the source offset of the script body
func (s *Script) ContentOffset() int {
	return s.ContentSpan.Start.Offset
}

// Style is a <style> element
type Style struct {
	Attrs       []*Attribute
	Content     string
	ContentSpan *util.ParseSourceSpan
	sourceSpan  *util.ParseSourceSpan
}

func (s *Style) SourceSpan() *util.ParseSourceSpan { return s.sourceSpan }
func (s *Style) Type() NodeType                    { return CSSStyle }

// Visit implements the Node interface
func (s *Style) Visit(visitor Visitor, context interface{}) interface{} {
	return visitor.VisitStyle(s, context)
}

// Visitor interface for visiting AST nodes
type Visitor interface {
	VisitElement(element *Element, context interface{}) interface{}
	VisitAttribute(attribute *Attribute, context interface{}) interface{}
	VisitText(text *Text, context interface{}) interface{}
	VisitComment(comment *Comment, context interface{}) interface{}
	VisitScript(script *Script, context interface{}) interface{}
	VisitStyle(style *Style, context interface{}) interface{}
}

// VisitAll visits all nodes with a visitor, collecting non-nil results
func VisitAll(visitor Visitor, nodes []Node, context interface{}) []interface{} {
	var result []interface{}
	for _, ast := range nodes {
		if astResult := ast.Visit(visitor, context); astResult != nil {
			result = append(result, astResult)
		}
	}
	return result
}

// WalkElements calls fn for every element in depth-first document order.
func WalkElements(nodes []Node, fn func(el *Element)) {
	for _, node := range nodes {
		if el, ok := node.(*Element); ok {
			fn(el)
			WalkElements(el.Children, fn)
		}
	}
}

// MarkComponents retypes elements whose tag names refer to imported
// components.
func MarkComponents(nodes []Node, tags map[string]bool) {
	WalkElements(nodes, func(el *Element) {
		if tags[strings.ToLower(el.Name)] {
			el.NodeType = HTMLComponent
		}
	})
}

// IndexNodes assigns Index to every element and text node under root in
// depth-first document order and returns the table. Comments are skipped, as
// are the children of components and containers, which are instantiated
// separately.
func IndexNodes(root *Element) []Node {
	var table []Node
	var walk func(node Node)
	walk = func(node Node) {
		switch n := node.(type) {
		case *Element:
			n.Index = len(table)
			table = append(table, n)
			if n.NodeType == HTMLComponent || n.NodeType == HTMLContainer {
				return
			}
			for _, child := range n.Children {
				walk(child)
			}
		case *Text:
			n.Index = len(table)
			table = append(table, n)
		}
	}
	walk(root)
	return table
}
