package core

import "testing"

func TestTemplateNode(t *testing.T) {
	t.Run("should flatten without entering components and containers", func(t *testing.T) {
		root := Element("div", nil,
			Text("a"),
			&TemplateNode{Tag: "card", Component: "card", Children: []*TemplateNode{Text("ignored")}},
			&TemplateNode{Tag: "container", Container: true, Children: []*TemplateNode{Element("item", nil)}},
			Element("p", []TemplateAttr{{Name: "class", Value: "x"}}, Text("b")),
		)
		var got []string
		for _, n := range root.Flatten() {
			if n.IsText() {
				got = append(got, "#"+n.Text)
			} else {
				got = append(got, n.Tag)
			}
		}
		expected := []string{"div", "#a", "card", "container", "p", "#b"}
		if len(got) != len(expected) {
			t.Fatalf("Expected %v, got %v", expected, got)
		}
		for i := range expected {
			if got[i] != expected[i] {
				t.Errorf("Expected %q at %d, got %q", expected[i], i, got[i])
			}
		}
	})

	t.Run("should look up attributes", func(t *testing.T) {
		node := Element("p", []TemplateAttr{{Name: "class", Value: "x"}})
		if v, ok := node.Attr("class"); !ok || v != "x" {
			t.Errorf("Expected %q, got %q", "x", v)
		}
		if _, ok := node.Attr("id"); ok {
			t.Error("Expected no id attribute")
		}
	})
}
