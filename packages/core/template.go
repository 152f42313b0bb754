package core

// TemplateAttr is a static attribute of a template element
type TemplateAttr struct {
	Name  string
	Value string
}

// TemplateNode describes one node of the static DOM of a component. Text
// nodes have an empty Tag.
type TemplateNode struct {
	Tag      string
	Text     string
	Attrs    []TemplateAttr
	Children []*TemplateNode
	// Component is the tag of the child component mounted at this element
	Component string
	// Container marks a list container element
	Container bool
}

// Element creates an element node.
func Element(tag string, attrs []TemplateAttr, children ...*TemplateNode) *TemplateNode {
	return &TemplateNode{Tag: tag, Attrs: attrs, Children: children}
}

// Text creates a text node.
func Text(text string) *TemplateNode {
	return &TemplateNode{Text: text}
}

// IsText reports whether the node is a text node.
func (n *TemplateNode) IsText() bool {
	return n.Tag == ""
}

// Attr returns the value of the named attribute.
func (n *TemplateNode) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Flatten returns the lookup table order of the template: every node
// depth-first, without descending into components or containers. Position i
// of the result is element lookup index i.
func (n *TemplateNode) Flatten() []*TemplateNode {
	var out []*TemplateNode
	var walk func(node *TemplateNode)
	walk = func(node *TemplateNode) {
		out = append(out, node)
		if node.Component != "" || node.Container {
			return
		}
		for _, child := range node.Children {
			walk(child)
		}
	}
	walk(n)
	return out
}
