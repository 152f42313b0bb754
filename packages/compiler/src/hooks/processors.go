package hooks

import (
	"fmt"
	"strconv"
	"strings"

	"wick-go/packages/compiler/src/binding"
	"wick-go/packages/compiler/src/ml_parser"
	"wick-go/packages/compiler/src/output"
	"wick-go/packages/core"
)

// Processor priorities
const (
	PriorityWriteAttribute = 0
	PriorityText           = 5
	PriorityChild          = 10
	PriorityEvent          = 20
	PriorityWindowEvent    = 21
	PriorityMethodCall     = 30
	PriorityTwoWay         = 40
	PriorityWatchedFrame   = 50
	PriorityContainer      = 100
)

// DefaultRegistry returns a registry with every built in processor.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

// RegisterDefaults adds the built in processors to r.
func RegisterDefaults(r *Registry) {
	r.Register(
		writeAttributeProcessor,
		textProcessor,
		importFromChildProcessor,
		exportToChildProcessor,
		eventProcessor(false),
		eventProcessor(true),
		methodCallProcessor,
		twoWayProcessor("value", KindInputValue),
		twoWayProcessor("checked", KindInputChecked),
		watchedFrameProcessor,
		containerProcessor("data", KindContainerData),
		containerProcessor("filter", KindContainerFilter),
		containerProcessor("terms", KindContainerTerm),
		containerProcessor("use-if", KindContainerUseIf),
		catchAllProcessor,
	)
}

func kinds(accepted ...BindingKind) func(BindingKind) bool {
	return func(k BindingKind) bool {
		for _, a := range accepted {
			if a == k {
				return true
			}
		}
		return false
	}
}

// Code synthesis helpers

func thisProp(name string) *output.ReadPropExpr {
	return output.Prop(output.This(), name)
}

func elementRef(index int) *output.ReadPropExpr {
	return thisProp(fmt.Sprintf("e%d", index))
}

func methodCall(receiver output.OutputExpression, name string, args ...output.OutputExpression) *output.ExpressionStatement {
	return output.Stmt(output.Call(output.Prop(receiver, name), args...))
}

func frameCall(index int, args ...output.OutputExpression) *output.InvokeFunctionExpr {
	return output.Call(thisProp(fmt.Sprintf("f%d", index)), args...)
}

func stmts(s ...output.OutputStatement) []output.OutputStatement {
	return s
}

var writeAttributeAccepts = kinds(
	KindWriteAttribute, KindInputValue, KindInputChecked, KindMethodCall,
	KindContainerData, KindContainerFilter, KindContainerTerm,
)

var writeAttributeProcessor = &Processor{
	Name:     "write-attribute",
	Priority: PriorityWriteAttribute,
	CanProcess: func(kind BindingKind, host ml_parser.NodeType) bool {
		return host.IsElement() && writeAttributeAccepts(kind)
	},
	Process: func(ctx *Context, hook *IntermediateHook) *ProcessedHook {
		if hook.ElementIndex < 0 {
			return nil
		}
		return &ProcessedHook{
			Type:         HookWrite,
			WriteAST:     stmts(methodCall(elementRef(hook.ElementIndex), "setAttribute", output.Literal(hook.Selector), hook.Primary())),
			ElementIndex: hook.ElementIndex,
			Async:        hook.Frame.IsAsync,
		}
	},
	DefaultValue: constantDefault,
}

var textProcessor = &Processor{
	Name:     "text",
	Priority: PriorityText,
	CanProcess: func(kind BindingKind, host ml_parser.NodeType) bool {
		return host == ml_parser.HTMLText && (kind == KindText || kind == KindMethodCall)
	},
	Process: func(ctx *Context, hook *IntermediateHook) *ProcessedHook {
		return &ProcessedHook{
			Type:         HookWrite,
			WriteAST:     stmts(output.Stmt(output.Assign(output.Prop(elementRef(hook.ElementIndex), "data"), hook.Primary()))),
			ElementIndex: hook.ElementIndex,
			Async:        hook.Frame.IsAsync,
		}
	},
	DefaultValue: constantDefault,
}

// constantDefault folds constant expressions into the static template.
func constantDefault(ctx *Context, hook *IntermediateHook) (string, bool) {
	return ConstantString(hook.Primary())
}

// ConstantString evaluates literal expressions and template literals made
// of literals to the string the DOM would receive.
func ConstantString(expr output.OutputExpression) (string, bool) {
	switch e := expr.(type) {
	case *output.LiteralExpr:
		switch v := e.Value.(type) {
		case string:
			return v, true
		case nil:
			return "null", true
		case bool:
			return strconv.FormatBool(v), true
		default:
			return output.FormatLiteral(v), true
		}
	case *output.TemplateLiteralExpr:
		var b strings.Builder
		for i, el := range e.Elements {
			b.WriteString(el.Text)
			if i < len(e.Expressions) {
				s, ok := ConstantString(e.Expressions[i])
				if !ok {
					return "", false
				}
				b.WriteString(s)
			}
		}
		return b.String(), true
	}
	return "", false
}

var importFromChildProcessor = &Processor{
	Name:     "import-from-child",
	Priority: PriorityChild,
	CanProcess: func(kind BindingKind, host ml_parser.NodeType) bool {
		return kind == KindImportFromChild && host == ml_parser.HTMLComponent
	},
	Process: func(ctx *Context, hook *IntermediateHook) *ProcessedHook {
		child, ok := ctx.Children[hook.Element()]
		if !ok {
			return nil
		}
		ref, ok := hook.Primary().(*output.ReadVarExpr)
		if !ok {
			ctx.Errors.Add(hook.Span, "Child imports must name a component variable")
			return nil
		}
		v := hook.Frame.Variable(ref)
		if v == nil || v.IsMethod() || v.IsDirectlyAccessed() {
			ctx.Errors.Add(hook.Span, "Cannot import child value `%s` into `%s`", hook.Selector, ref.Name)
			return nil
		}
		ctx.Root.AddWriteFlagToBindingVariable(v.InternalName)
		return &ProcessedHook{
			Type:         HookRead,
			ReadAST:      stmts(methodCall(output.This(), "ci", output.Literal(child), output.Literal(hook.Selector), output.Literal(v.ClassIndex))),
			ElementIndex: -1,
		}
	},
}

var exportToChildProcessor = &Processor{
	Name:     "export-to-child",
	Priority: PriorityChild,
	CanProcess: func(kind BindingKind, host ml_parser.NodeType) bool {
		return kind == KindExportToChild && host == ml_parser.HTMLComponent
	},
	Process: func(ctx *Context, hook *IntermediateHook) *ProcessedHook {
		child, ok := ctx.Children[hook.Element()]
		if !ok {
			return nil
		}
		data := output.NewLiteralMapExpr([]*output.LiteralMapEntry{
			output.NewLiteralMapEntry(hook.Selector, hook.Primary(), true),
		}, nil)
		return &ProcessedHook{
			Type:         HookWrite,
			WriteAST:     stmts(methodCall(output.Key(thisProp("ch"), output.Literal(child)), "update", data, output.Literal(int(core.UpdateFlagFromParent)))),
			ElementIndex: -1,
			Async:        hook.Frame.IsAsync,
		}
	},
}

// eventProcessor installs a listener that calls a method frame. Inline
// closures and plain statements are promoted to method frames of their own.
func eventProcessor(window bool) *Processor {
	kind, name, priority := KindEventLocal, "event", float64(PriorityEvent)
	if window {
		kind, name, priority = KindEventWindow, "window-event", PriorityWindowEvent
	}
	return &Processor{
		Name:     name,
		Priority: priority,
		CanProcess: func(k BindingKind, host ml_parser.NodeType) bool {
			return k == kind && host.IsElement()
		},
		Process: func(ctx *Context, hook *IntermediateHook) *ProcessedHook {
			if !window && hook.ElementIndex < 0 {
				return nil
			}
			index := eventFrame(hook).Index()
			hookName := ctx.nextHookName()
			listener := thisProp("l" + strings.TrimPrefix(hookName, "h"))
			handler := output.NewArrowFunctionExpr(
				[]*output.FnParam{output.NewFnParam("e")},
				frameCall(index, output.Variable("e")),
				nil,
			)

			var target output.OutputExpression = output.Variable("window")
			elementIndex := -1
			if !window {
				target = elementRef(hook.ElementIndex)
				elementIndex = hook.ElementIndex
			}
			return &ProcessedHook{
				Name:         hookName,
				Type:         HookRead,
				ReadAST:      stmts(methodCall(target, "addEventListener", output.Literal(hook.Selector), output.Assign(listener, handler))),
				CleanupAST:   stmts(methodCall(target, "removeEventListener", output.Literal(hook.Selector), listener)),
				ElementIndex: elementIndex,
			}
		},
	}
}

// eventFrame returns the activated method frame an event hook dispatches to.
func eventFrame(hook *IntermediateHook) *binding.Frame {
	frame := hook.Frame
	switch expr := hook.Primary().(type) {
	case *output.ReadVarExpr:
		if v := frame.Variable(expr); v != nil && v.IsMethod() && v.Method != nil {
			v.Method.Activate()
			return v.Method
		}
	case *output.ArrowFunctionExpr:
		var body []output.OutputStatement
		switch b := expr.Body.(type) {
		case []output.OutputStatement:
			body = b
		case output.OutputExpression:
			body = stmts(output.Stmt(b))
		}
		frame.PromoteToMethod(expr.Params, body, expr.IsAsync)
		return frame
	case *output.FunctionExpr:
		frame.PromoteToMethod(expr.Params, expr.Statements, expr.IsAsync)
		return frame
	}
	switch primary := hook.Primary().(type) {
	case *output.ReadVarExpr, *output.ReadPropExpr, *output.ReadKeyExpr:
		// a function value held in a variable or member
		call := output.Call(primary, output.Variable("e"))
		frame.PromoteToMethod([]*output.FnParam{output.NewFnParam("e")}, stmts(output.Stmt(call)), frame.IsAsync)
	default:
		frame.PromoteToMethod(nil, stmts(output.Stmt(primary)), frame.IsAsync)
	}
	return frame
}

var methodCallProcessor = &Processor{
	Name:     "method-call",
	Priority: PriorityMethodCall,
	CanProcess: func(kind BindingKind, host ml_parser.NodeType) bool {
		return kind == KindMethodCall
	},
	Process: func(ctx *Context, hook *IntermediateHook) *ProcessedHook {
		call := hook.Primary().(*output.InvokeFunctionExpr)
		v := hook.Frame.Variable(call.Fn.(*output.ReadVarExpr))
		if v == nil || v.Method == nil || hook.ElementIndex < 0 {
			return nil
		}
		v.Method.Activate()

		write := func(value output.OutputExpression) output.OutputStatement {
			if hook.HostType == ml_parser.HTMLText {
				return output.Stmt(output.Assign(output.Prop(elementRef(hook.ElementIndex), "data"), value))
			}
			return methodCall(elementRef(hook.ElementIndex), "setAttribute", output.Literal(hook.Selector), value)
		}
		var fragment output.OutputStatement
		if v.Method.IsAsync {
			body := write(output.Variable("v")).(*output.ExpressionStatement).Expr
			fragment = methodCall(call, "then", output.NewArrowFunctionExpr([]*output.FnParam{output.NewFnParam("v")}, body, nil))
		} else {
			fragment = write(call)
		}
		return &ProcessedHook{
			Type:         HookWrite,
			WriteAST:     stmts(fragment),
			ElementIndex: hook.ElementIndex,
			Async:        hook.Frame.IsAsync,
		}
	},
}

// twoWayProcessor writes a form control property and reads it back into an
// assignable expression on the control's input events.
func twoWayProcessor(property string, kind BindingKind) *Processor {
	return &Processor{
		Name:     "two-way-" + property,
		Priority: PriorityTwoWay,
		CanProcess: func(k BindingKind, host ml_parser.NodeType) bool {
			return k == kind && host.IsFormControl()
		},
		Process: func(ctx *Context, hook *IntermediateHook) *ProcessedHook {
			el := hook.Element()
			if el == nil || hook.ElementIndex < 0 {
				return nil
			}
			if el.NodeType == ml_parser.HTMLInput {
				if t := el.Attr("type"); t != nil && strings.EqualFold(t.Value, "file") {
					return nil
				}
			}

			ref := elementRef(hook.ElementIndex)
			result := &ProcessedHook{
				Type:         HookWrite,
				WriteAST:     stmts(output.Stmt(output.Assign(output.Prop(ref, property), hook.Primary()))),
				ElementIndex: hook.ElementIndex,
				Async:        hook.Frame.IsAsync,
			}

			target, v := assignable(hook)
			if target == nil {
				ctx.Errors.Warn(hook.Span, "Binding of `%s` is one-way: the expression cannot be assigned", property)
				log.Warningf("one-way binding of %s at %s", property, hook.Span)
				return result
			}
			ctx.Root.AddWriteFlagToBindingVariable(v.InternalName)

			event := "input"
			if property == "checked" || el.NodeType == ml_parser.HTMLSelect {
				event = "change"
			}
			hookName := ctx.nextHookName()
			listener := thisProp("l" + strings.TrimPrefix(hookName, "h"))
			handler := output.NewArrowFunctionExpr(nil, output.Assign(target, output.Prop(ref, property)), nil)
			result.Name = hookName
			result.Type = HookReadWrite
			result.ReadAST = stmts(methodCall(ref, "addEventListener", output.Literal(event), output.Assign(listener, handler)))
			result.CleanupAST = stmts(methodCall(ref, "removeEventListener", output.Literal(event), listener))
			return result
		},
	}
}

// assignable returns the expression a two-way binding writes to, and the
// binding variable at its root.
func assignable(hook *IntermediateHook) (output.OutputExpression, *binding.BindingVariable) {
	expr := hook.Primary()
	node := expr
	for {
		switch n := node.(type) {
		case *output.ReadVarExpr:
			v := hook.Frame.Variable(n)
			if v == nil || v.IsMethod() || v.IsDirectlyAccessed() {
				return nil, nil
			}
			return expr, v
		case *output.ReadPropExpr:
			if n.Optional {
				return nil, nil
			}
			node = n.Receiver
		case *output.ReadKeyExpr:
			if n.Optional {
				return nil, nil
			}
			node = n.Receiver
		default:
			return nil, nil
		}
	}
}

var watchedFrameProcessor = &Processor{
	Name:     "watched-frame",
	Priority: PriorityWatchedFrame,
	CanProcess: func(kind BindingKind, host ml_parser.NodeType) bool {
		return kind == KindWatchedFrame
	},
	Process: func(ctx *Context, hook *IntermediateHook) *ProcessedHook {
		index := hook.Frame.Activate()
		return &ProcessedHook{
			Type:         HookWrite,
			WriteAST:     stmts(output.Stmt(frameCall(index))),
			ElementIndex: -1,
			Async:        hook.Frame.IsAsync,
		}
	},
}

var containerMethods = map[BindingKind]string{
	KindContainerData:   "sd",
	KindContainerFilter: "sf",
	KindContainerTerm:   "st",
	KindContainerUseIf:  "su",
}

// containerProcessor forwards container attributes to the runtime container
// in the `ct` table.
func containerProcessor(name string, kind BindingKind) *Processor {
	return &Processor{
		Name:     "container-" + name,
		Priority: PriorityContainer,
		CanProcess: func(k BindingKind, host ml_parser.NodeType) bool {
			if kind == KindContainerUseIf {
				return k == kind && host == ml_parser.HTMLComponent
			}
			return k == kind && host == ml_parser.HTMLContainer
		},
		Process: func(ctx *Context, hook *IntermediateHook) *ProcessedHook {
			el := hook.Element()
			args := []output.OutputExpression{hook.Primary()}
			switch kind {
			case KindContainerTerm:
				args = append([]output.OutputExpression{output.Literal(hook.Selector)}, args...)
			case KindContainerUseIf:
				template := templateIndex(el)
				el = el.Parent
				args = append([]output.OutputExpression{output.Literal(template)}, args...)
			}
			slot, ok := ctx.Containers[el]
			if !ok {
				return nil
			}
			return &ProcessedHook{
				Type:         HookWrite,
				WriteAST:     stmts(methodCall(output.Key(thisProp("ct"), output.Literal(slot)), containerMethods[kind], args...)),
				ElementIndex: -1,
				Async:        hook.Frame.IsAsync,
			}
		},
	}
}

func templateIndex(el *ml_parser.Element) int {
	index := 0
	for _, sibling := range el.Parent.ChildElements() {
		if sibling == el {
			return index
		}
		if sibling.NodeType == ml_parser.HTMLComponent {
			index++
		}
	}
	return -1
}

var catchAllProcessor = &Processor{
	Name:     "catch-all",
	Priority: CatchAllPriority,
	CanProcess: func(kind BindingKind, host ml_parser.NodeType) bool {
		return true
	},
	Process: func(ctx *Context, hook *IntermediateHook) *ProcessedHook {
		log.Warningf("dropped %s binding %q at %s", hook.Kind, hook.Selector, hook.Span)
		return nil
	},
}

// Defaults holds the compile time values baked into the template
type Defaults struct {
	Attributes map[*ml_parser.Attribute]string
	Texts      map[*ml_parser.Text]string
}

// ProcessAll runs every hook through the registry. Hooks whose value is
// known at compile time become template defaults instead of code.
func ProcessAll(ctx *Context, registry *Registry, hooks []*IntermediateHook) ([]*ProcessedHook, *Defaults) {
	defaults := &Defaults{
		Attributes: map[*ml_parser.Attribute]string{},
		Texts:      map[*ml_parser.Text]string{},
	}
	var processed []*ProcessedHook
	for _, hook := range hooks {
		switch host := hook.Host.(type) {
		case *ml_parser.Text:
			if value, ok := registry.DefaultValue(ctx, hook); ok {
				defaults.Texts[host] = value
				continue
			}
		case *ml_parser.Element:
			if hook.Attr != nil && hook.Attr.HasBinding() {
				if value, ok := registry.DefaultValue(ctx, hook); ok {
					defaults.Attributes[hook.Attr] = value
					continue
				}
			}
		}
		if result := registry.Process(ctx, hook); result != nil {
			processed = append(processed, result)
		}
	}
	return processed, defaults
}
