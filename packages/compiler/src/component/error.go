package component

import (
	"strings"

	"wick-go/packages/compiler/src/assembler"
	"wick-go/packages/core"
)

// ErrorClassName is the CSS class of the element an error component renders.
const ErrorClassName = "wick-error"

// errorComponent replaces the compiled artifact of c with a class that only
// renders its diagnostics.
func errorComponent(c *Component) {
	var lines []string
	for _, e := range c.Errors {
		lines = append(lines, e.Error())
	}
	c.Class = ErrorClass(c.ClassName, c.Path, lines)
	c.Output = assembler.Render(c.Class)
	c.SourceMap = nil
	c.Manifest = nil
}

// ErrorClass builds a component class that renders messages in place of a
// component that failed to compile.
func ErrorClass(name, path string, messages []string) *assembler.CompiledComponentClass {
	return &assembler.CompiledComponentClass{
		Name:           name,
		InitFrame:      assembler.NewMethod("init"),
		AsyncInitFrame: &assembler.Method{Name: "async_init", IsAsync: true},
		TerminateFrame: assembler.NewMethod("terminate"),
		LookupTable:    core.LookupTable{},
		Template: core.Element("div",
			[]core.TemplateAttr{{Name: "class", Value: ErrorClassName}, {Name: "data-source", Value: path}},
			core.Element("pre", nil, core.Text(strings.Join(messages, "\n"))),
		),
	}
}
