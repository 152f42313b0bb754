package assembler

import (
	"strings"

	"wick-go/packages/compiler/src/hooks"
	"wick-go/packages/compiler/src/ml_parser"
	"wick-go/packages/compiler/src/output"
	"wick-go/packages/core"
)

// BuildTemplate converts the markup tree into the static template. Bound
// attributes and texts carry their compile time default, or are left empty
// for the update methods to fill. Components and containers keep no
// children; they are instantiated by the runtime.
func BuildTemplate(root *ml_parser.Element, defaults *hooks.Defaults) *core.TemplateNode {
	if root == nil {
		return nil
	}
	if defaults == nil {
		defaults = &hooks.Defaults{}
	}
	return templateElement(root, defaults)
}

func templateElement(el *ml_parser.Element, defaults *hooks.Defaults) *core.TemplateNode {
	node := &core.TemplateNode{Tag: el.Name}
	switch el.NodeType {
	case ml_parser.HTMLComponent:
		node.Component = el.Name
		return node
	case ml_parser.HTMLContainer:
		node.Container = true
		return node
	}

	for _, attr := range el.Attrs {
		if attr.HasBinding() {
			if value, ok := defaults.Attributes[attr]; ok {
				node.Attrs = append(node.Attrs, core.TemplateAttr{Name: attr.Name, Value: value})
			}
			continue
		}
		if strings.HasPrefix(attr.Name, "on") && len(attr.Name) > 2 {
			continue
		}
		node.Attrs = append(node.Attrs, core.TemplateAttr{Name: attr.Name, Value: attr.Value})
	}

	for _, child := range el.Children {
		switch c := child.(type) {
		case *ml_parser.Element:
			node.Children = append(node.Children, templateElement(c, defaults))
		case *ml_parser.Text:
			text := c.Value
			if c.HasBinding() {
				text = defaults.Texts[c]
			}
			node.Children = append(node.Children, core.Text(text))
		}
	}
	return node
}

// templateLiteral encodes a template node for the generated class: text
// nodes are strings, elements are `{t, a, c}` objects and mounted nodes carry
// `k` (1 for components, 2 for containers).
func templateLiteral(node *core.TemplateNode) output.OutputExpression {
	if node == nil {
		return output.Literal(nil)
	}
	if node.IsText() {
		return output.Literal(node.Text)
	}
	entries := []*output.LiteralMapEntry{output.NewLiteralMapEntry("t", output.Literal(node.Tag), false)}
	switch {
	case node.Component != "":
		entries = append(entries, output.NewLiteralMapEntry("k", output.Literal(1), false))
	case node.Container:
		entries = append(entries, output.NewLiteralMapEntry("k", output.Literal(2), false))
	}
	if len(node.Attrs) > 0 {
		var attrs []*output.LiteralMapEntry
		for _, a := range node.Attrs {
			attrs = append(attrs, output.NewLiteralMapEntry(a.Name, output.Literal(a.Value), true))
		}
		entries = append(entries, output.NewLiteralMapEntry("a", output.NewLiteralMapExpr(attrs, nil), false))
	}
	if len(node.Children) > 0 {
		var children []output.OutputExpression
		for _, c := range node.Children {
			children = append(children, templateLiteral(c))
		}
		entries = append(entries, output.NewLiteralMapEntry("c", output.NewLiteralArrayExpr(children, nil), false))
	}
	return output.NewLiteralMapExpr(entries, nil)
}
