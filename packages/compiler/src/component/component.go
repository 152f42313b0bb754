package component

import (
	"sort"
	"strings"

	"wick-go/packages/compiler/src/assembler"
	"wick-go/packages/compiler/src/ml_parser"
	"wick-go/packages/compiler/src/util"
)

// Component is one compilation unit: a `.wick` file and everything derived
// from it.
type Component struct {
	Path      string
	ClassName string
	Hash      uint64
	Source    string
	File      *util.ParseSourceFile

	Template *ml_parser.Element
	Script   *ml_parser.Script
	Styles   []string

	// Children maps component tags to the compiled imports
	Children map[string]*Component

	Class     *assembler.CompiledComponentClass
	Output    string
	SourceMap []byte
	Manifest  []byte
	Errors    util.ErrorList
	// Cached is set when the output came from the persistent store
	Cached bool
}

func newComponent(path, source, fingerprint, prefix string) *Component {
	hash := SourceHash(source, fingerprint)
	return &Component{
		Path:      path,
		ClassName: ClassName(prefix, path, hash),
		Hash:      hash,
		Source:    source,
		File:      util.NewParseSourceFile(source, path),
		Children:  map[string]*Component{},
	}
}

// HasErrors reports whether the component compiled to an error component.
func (c *Component) HasErrors() bool {
	return c.Errors.HasErrors()
}

// Dependencies returns the compiled imports in tag order.
func (c *Component) Dependencies() []*Component {
	var out []*Component
	for _, tag := range c.childTags() {
		out = append(out, c.Children[tag])
	}
	return out
}

func (c *Component) childTags() []string {
	tags := make([]string, 0, len(c.Children))
	for tag := range c.Children {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// split sorts the top level nodes into the script, the styles and the
// single root template element.
func (c *Component) split(nodes []ml_parser.Node) {
	for _, node := range nodes {
		switch n := node.(type) {
		case *ml_parser.Script:
			if c.Script != nil {
				c.Errors.Add(n.SourceSpan(), "A component may only have one <script>")
				continue
			}
			c.Script = n
		case *ml_parser.Style:
			c.Styles = append(c.Styles, strings.TrimSpace(n.Content))
		case *ml_parser.Element:
			if c.Template != nil {
				c.Errors.Add(n.SourceSpan(), "A component must have a single root element, found a second <%s>", n.Name)
				continue
			}
			c.Template = n
		case *ml_parser.Text:
			if strings.TrimSpace(n.Value) != "" {
				c.Errors.Add(n.SourceSpan(), "Unexpected text outside the root element")
			}
		}
	}
	if c.Template == nil && !c.Errors.HasErrors() {
		c.Errors.Add(c.File.Span(0, len(c.Source)), "A component must have a root element")
	}
}

// entry converts a successful compilation into a cache entry.
func (c *Component) entry() *Entry {
	e := &Entry{
		ClassName: c.ClassName,
		Output:    c.Output,
		SourceMap: c.SourceMap,
		Manifest:  c.Manifest,
		Styles:    c.Styles,
	}
	if len(c.Children) > 0 {
		e.Children = map[string]string{}
		for tag, child := range c.Children {
			e.Children[tag] = child.Path
		}
	}
	return e
}

func (c *Component) restore(e *Entry) {
	c.ClassName = e.ClassName
	c.Output = e.Output
	c.SourceMap = e.SourceMap
	c.Manifest = e.Manifest
	c.Styles = e.Styles
	c.Cached = true
}
