package hooks

import (
	"strings"

	"wick-go/packages/compiler/src/binding"
	"wick-go/packages/compiler/src/config"
	"wick-go/packages/compiler/src/expression_parser"
	"wick-go/packages/compiler/src/ml_parser"
	"wick-go/packages/compiler/src/output"
	"wick-go/packages/compiler/src/util"
)

// Container describes a `<container>` of the template
type Container struct {
	Element *ml_parser.Element
	// Templates are the component elements instantiated per item
	Templates []*ml_parser.Element
}

// Extraction is the result of walking a template
type Extraction struct {
	Root  *ml_parser.Element
	Hooks []*IntermediateHook
	// Nodes is the element lookup table, indexed by node Index
	Nodes      []ml_parser.Node
	Children   []*ml_parser.Element
	Containers []*Container
}

// Extractor finds the binding points of a template.
type Extractor struct {
	file   *util.ParseSourceFile
	root   *binding.Frame
	config *config.CompilerConfig
	errors *util.ErrorList
	result *Extraction
}

// NewExtractor creates an extractor resolving expressions against root.
func NewExtractor(file *util.ParseSourceFile, root *binding.Frame, cfg *config.CompilerConfig, errs *util.ErrorList) *Extractor {
	return &Extractor{file: file, root: root, config: cfg, errors: errs}
}

type nodeHandler func(e *Extractor, node ml_parser.Node)

// handlers is indexed by NodeType bucket
var handlers [3]nodeHandler

func init() {
	handlers = [...]nodeHandler{
		ml_parser.BucketJS:   (*Extractor).visitScript,
		ml_parser.BucketHTML: (*Extractor).visitHTML,
		ml_parser.BucketCSS:  (*Extractor).visitStyle,
	}
}

// Extract indexes the template, registers children and containers in ctx
// and returns every binding point, including watched method frames.
func (e *Extractor) Extract(template *ml_parser.Element, ctx *Context) *Extraction {
	e.result = &Extraction{Root: template}
	if template == nil {
		return e.result
	}
	e.result.Nodes = ml_parser.IndexNodes(template)
	e.visit(template)

	for i, child := range e.result.Children {
		ctx.Children[child] = i
	}
	for i, c := range e.result.Containers {
		ctx.Containers[c.Element] = i
	}

	for _, frame := range e.root.Frames() {
		if frame.IsWatched {
			e.result.Hooks = append(e.result.Hooks, &IntermediateHook{
				Selector:     frame.Name,
				Kind:         KindWatchedFrame,
				ElementIndex: -1,
				Span:         frame.Span,
				Frame:        frame,
			})
		}
	}
	return e.result
}

func (e *Extractor) visit(node ml_parser.Node) {
	bucket := node.Type().Bucket()
	if int(bucket) >= len(handlers) {
		e.errors.Add(node.SourceSpan(), "Unsupported node type %s", node.Type())
		return
	}
	handlers[bucket](e, node)
}

func (e *Extractor) visitScript(node ml_parser.Node) {
	e.errors.Add(node.SourceSpan(), "Scripts must be declared at the top level of a component")
}

func (e *Extractor) visitStyle(node ml_parser.Node) {
	e.errors.Add(node.SourceSpan(), "Styles must be declared at the top level of a component")
}

func (e *Extractor) visitHTML(node ml_parser.Node) {
	switch n := node.(type) {
	case *ml_parser.Text:
		e.visitText(n)
	case *ml_parser.Element:
		e.visitElement(n)
	}
}

func (e *Extractor) visitText(text *ml_parser.Text) {
	if !text.HasBinding() {
		return
	}
	frame, expr := e.frameFor(text.Parts)
	if expr == nil {
		return
	}
	kind := KindText
	if isMethodCall(frame, expr) {
		kind = KindMethodCall
	}
	e.add(&IntermediateHook{
		Selector:     "text",
		Kind:         kind,
		Value:        []output.OutputExpression{expr},
		Host:         text,
		HostType:     text.Type(),
		ElementIndex: text.Index,
		Span:         text.SourceSpan(),
		Frame:        frame,
	})
}

func (e *Extractor) visitElement(el *ml_parser.Element) {
	switch el.NodeType {
	case ml_parser.HTMLComponent:
		if !isContainerTemplate(el) {
			e.result.Children = append(e.result.Children, el)
		}
	case ml_parser.HTMLContainer:
		c := &Container{Element: el}
		for _, child := range el.ChildElements() {
			if child.NodeType != ml_parser.HTMLComponent {
				e.errors.Add(child.SourceSpan(), "Containers may only hold components, found <%s>", child.Name)
				continue
			}
			c.Templates = append(c.Templates, child)
		}
		e.result.Containers = append(e.result.Containers, c)
	}

	for _, attr := range el.Attrs {
		e.visitAttribute(el, attr)
	}

	switch el.NodeType {
	case ml_parser.HTMLComponent:
		return
	case ml_parser.HTMLContainer:
		for _, child := range el.ChildElements() {
			if child.NodeType == ml_parser.HTMLComponent {
				for _, attr := range child.Attrs {
					if attr.Name == "use-if" {
						e.visitAttribute(child, attr)
					}
				}
			}
		}
		return
	}
	for _, child := range el.Children {
		e.visit(child)
	}
}

func isContainerTemplate(el *ml_parser.Element) bool {
	return el.Parent != nil && el.Parent.NodeType == ml_parser.HTMLContainer
}

var containerTerms = map[string]bool{"sort": true, "limit": true, "offset": true, "shift": true, "scrub": true}

func (e *Extractor) visitAttribute(el *ml_parser.Element, attr *ml_parser.Attribute) {
	index := el.Index
	if isContainerTemplate(el) {
		if attr.Name != "use-if" {
			return
		}
		index = -1
	}

	if el.NodeType == ml_parser.HTMLComponent && (attr.Name == "import" || attr.Name == "export") && !attr.HasBinding() {
		e.visitNameList(el, attr)
		return
	}

	if !attr.HasBinding() {
		switch {
		case el.NodeType == ml_parser.HTMLComponent && !isContainerTemplate(el):
		case el.NodeType == ml_parser.HTMLContainer && (attr.Name == "data" || attr.Name == "filter" || containerTerms[attr.Name]):
		default:
			return
		}
	}

	frame, expr := e.frameFor(attr.Parts)
	if expr == nil {
		if attr.HasBinding() {
			return
		}
		expr = output.NewLiteralExpr(attr.Value, attr.ValueSpan)
		if !attr.HasValue {
			expr = output.NewLiteralExpr(true, attr.KeySpan)
		}
		frame = e.root.NewChild("")
		frame.Expressions = []output.OutputExpression{expr}
		frame.Resolve(e.config)
	}

	hook := &IntermediateHook{
		Selector:     attr.Name,
		Kind:         classify(el, attr.Name, frame, expr),
		Value:        []output.OutputExpression{expr},
		Host:         el,
		HostType:     el.NodeType,
		Attr:         attr,
		ElementIndex: index,
		Span:         attr.SourceSpan(),
		Frame:        frame,
	}
	if hook.Kind == KindEventLocal || hook.Kind == KindEventWindow {
		hook.Selector = eventName(attr.Name)
	}
	e.add(hook)
}

// classify maps an attribute selector to its binding kind. The order of the
// cases is the order in which selector families claim an attribute.
func classify(el *ml_parser.Element, name string, frame *binding.Frame, expr output.OutputExpression) BindingKind {
	switch {
	case strings.HasPrefix(name, "on") && len(name) > 2:
		if strings.HasSuffix(name, "_window") {
			return KindEventWindow
		}
		return KindEventLocal
	case name == "value" && el.NodeType.IsFormControl():
		return KindInputValue
	case name == "checked" && el.NodeType == ml_parser.HTMLInput:
		return KindInputChecked
	case el.NodeType == ml_parser.HTMLContainer && name == "data":
		return KindContainerData
	case el.NodeType == ml_parser.HTMLContainer && name == "filter":
		return KindContainerFilter
	case el.NodeType == ml_parser.HTMLContainer && containerTerms[name]:
		return KindContainerTerm
	case el.NodeType == ml_parser.HTMLComponent && isContainerTemplate(el) && name == "use-if":
		return KindContainerUseIf
	case el.NodeType == ml_parser.HTMLComponent && name == "import":
		return KindImportFromChild
	case el.NodeType == ml_parser.HTMLComponent:
		return KindExportToChild
	case isMethodCall(frame, expr):
		return KindMethodCall
	}
	return KindWriteAttribute
}

func eventName(attr string) string {
	return strings.TrimSuffix(strings.TrimPrefix(attr, "on"), "_window")
}

// isMethodCall reports whether expr is a call of a component method.
func isMethodCall(frame *binding.Frame, expr output.OutputExpression) bool {
	call, ok := expr.(*output.InvokeFunctionExpr)
	if !ok {
		return false
	}
	callee, ok := call.Fn.(*output.ReadVarExpr)
	if !ok {
		return false
	}
	v := frame.Variable(callee)
	return v != nil && v.IsMethod()
}

// visitNameList creates one hook per entry of an `import` or `export` list
// on a child component. Entries are `local` or `local:child`.
func (e *Extractor) visitNameList(el *ml_parser.Element, attr *ml_parser.Attribute) {
	kind := KindExportToChild
	if attr.Name == "import" {
		kind = KindImportFromChild
	}
	base := 0
	if attr.ValueSpan != nil {
		base = attr.ValueSpan.Start.Offset
	}
	for _, entry := range util.SplitNameList(attr.Value) {
		span := e.file.Span(base+entry.Offset, base+entry.Offset+len(entry.Local))
		frame := e.root.NewChild("")
		ref := output.NewReadVarExpr(entry.Local, span)
		frame.Expressions = []output.OutputExpression{ref}
		e.errors.Append(frame.Resolve(e.config)...)
		if frame.Variable(ref) == nil {
			continue
		}
		e.add(&IntermediateHook{
			Selector:     entry.External,
			Kind:         kind,
			Value:        []output.OutputExpression{ref},
			Host:         el,
			HostType:     el.NodeType,
			Attr:         attr,
			ElementIndex: el.Index,
			Span:         span,
			Frame:        frame,
		})
	}
}

// frameFor parses the expression parts of a value into a single expression
// resolved in a new frame. Mixed literal and expression parts become a
// template literal.
func (e *Extractor) frameFor(parts []*ml_parser.Part) (*binding.Frame, output.OutputExpression) {
	var exprs []output.OutputExpression
	var elements []*output.TemplateLiteralElementExpr
	literal := ""
	ok := true
	for _, p := range parts {
		if !p.IsExpr {
			literal += p.Text
			continue
		}
		expr, errs := expression_parser.ParseExpression(e.file, p.Text, p.Offset)
		if len(errs) > 0 {
			e.errors.Append(errs...)
			ok = false
			continue
		}
		elements = append(elements, output.NewTemplateLiteralElementExpr(literal, nil, ""))
		exprs = append(exprs, expr)
		literal = ""
	}
	if !ok || len(exprs) == 0 {
		return nil, nil
	}

	var expr output.OutputExpression
	if len(parts) == 1 {
		expr = exprs[0]
	} else {
		elements = append(elements, output.NewTemplateLiteralElementExpr(literal, nil, ""))
		expr = output.NewTemplateLiteralExpr(elements, exprs, spanOf(parts))
	}

	frame := e.root.NewChild("")
	frame.Expressions = []output.OutputExpression{expr}
	e.errors.Append(frame.Resolve(e.config)...)
	return frame, expr
}

func spanOf(parts []*ml_parser.Part) *util.ParseSourceSpan {
	first, last := parts[0].Span, parts[len(parts)-1].Span
	if first == nil || last == nil {
		return nil
	}
	return util.NewParseSourceSpan(first.Start, last.End, first.Start, nil)
}

func (e *Extractor) add(hook *IntermediateHook) {
	e.result.Hooks = append(e.result.Hooks, hook)
}
