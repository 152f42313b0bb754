// Package dom is the node model the runtime mounts component instances
// into. Nodes are golang.org/x/net/html nodes; every structural or content
// change made through a Document is counted so callers can assert how much
// work an update did.
package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"wick-go/packages/core"
)

// Document creates and mutates nodes.
type Document struct {
	mutations int
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{}
}

// Mutations returns the number of mutations made since the last reset.
func (d *Document) Mutations() int {
	return d.mutations
}

// ResetMutations sets the mutation counter back to zero.
func (d *Document) ResetMutations() {
	d.mutations = 0
}

// CreateElement creates a detached element.
func (d *Document) CreateElement(tag string) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
}

// CreateText creates a detached text node.
func (d *Document) CreateText(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// InsertBefore moves node under parent, before ref. A nil ref appends.
func (d *Document) InsertBefore(parent, node, ref *html.Node) {
	if node.Parent != nil {
		node.Parent.RemoveChild(node)
	}
	if ref == nil {
		parent.AppendChild(node)
	} else {
		parent.InsertBefore(node, ref)
	}
	d.mutations++
}

// AppendChild moves node to the end of parent.
func (d *Document) AppendChild(parent, node *html.Node) {
	d.InsertBefore(parent, node, nil)
}

// Replace puts node where old is.
func (d *Document) Replace(old, node *html.Node) {
	parent := old.Parent
	if parent == nil {
		return
	}
	d.InsertBefore(parent, node, old)
	parent.RemoveChild(old)
}

// Remove detaches node from its parent.
func (d *Document) Remove(node *html.Node) {
	if node.Parent == nil {
		return
	}
	node.Parent.RemoveChild(node)
	d.mutations++
}

// SetAttribute sets or replaces an attribute.
func (d *Document) SetAttribute(node *html.Node, name, value string) {
	d.mutations++
	for i := range node.Attr {
		if node.Attr[i].Key == name {
			node.Attr[i].Val = value
			return
		}
	}
	node.Attr = append(node.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttribute deletes an attribute if present.
func (d *Document) RemoveAttribute(node *html.Node, name string) {
	for i := range node.Attr {
		if node.Attr[i].Key == name {
			node.Attr = append(node.Attr[:i], node.Attr[i+1:]...)
			d.mutations++
			return
		}
	}
}

// SetText replaces the content of a text node.
func (d *Document) SetText(node *html.Node, text string) {
	if node.Data == text {
		return
	}
	node.Data = text
	d.mutations++
}

// Attribute returns the value of an attribute.
func Attribute(node *html.Node, name string) (string, bool) {
	for _, a := range node.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// Children returns the child nodes of node.
func Children(node *html.Node) []*html.Node {
	var out []*html.Node
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// Render serializes node and its subtree.
func Render(node *html.Node) string {
	var b strings.Builder
	if err := html.Render(&b, node); err != nil {
		return ""
	}
	return b.String()
}

// Built is a node tree created from a compiled template.
type Built struct {
	Root *html.Node
	// Lookup holds element and text nodes in the order of the class element
	// lookup table (`elu`)
	Lookup []*html.Node
	// Components are the placeholders of child components, in document order
	Components []*html.Node
	// Containers are the container elements, in document order
	Containers []*html.Node
}

// Build creates the node tree of a template without counting mutations.
func (d *Document) Build(t *core.TemplateNode) *Built {
	b := &Built{}
	if t != nil {
		b.Root = d.build(t, b)
	}
	return b
}

func (d *Document) build(t *core.TemplateNode, b *Built) *html.Node {
	if t.IsText() {
		n := d.CreateText(t.Text)
		b.Lookup = append(b.Lookup, n)
		return n
	}
	n := d.CreateElement(t.Tag)
	b.Lookup = append(b.Lookup, n)
	for _, a := range t.Attrs {
		n.Attr = append(n.Attr, html.Attribute{Key: a.Name, Val: a.Value})
	}
	switch {
	case t.Component != "":
		b.Components = append(b.Components, n)
		return n
	case t.Container:
		b.Containers = append(b.Containers, n)
		return n
	}
	for _, c := range t.Children {
		n.AppendChild(d.build(c, b))
	}
	return n
}
