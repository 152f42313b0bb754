package hooks

import (
	"wick-go/packages/compiler/src/binding"
	"wick-go/packages/compiler/src/ml_parser"
	"wick-go/packages/compiler/src/output"
	"wick-go/packages/compiler/src/util"
)

// BindingKind is the classified selector of a binding point
type BindingKind int

const (
	KindWriteAttribute BindingKind = iota
	KindInputValue
	KindInputChecked
	KindEventLocal
	KindEventWindow
	KindText
	KindMethodCall
	KindWatchedFrame
	KindImportFromChild
	KindExportToChild
	KindContainerData
	KindContainerFilter
	KindContainerTerm
	KindContainerUseIf
)

var kindNames = [...]string{
	KindWriteAttribute:  "write-attribute",
	KindInputValue:      "input-value",
	KindInputChecked:    "input-checked",
	KindEventLocal:      "event",
	KindEventWindow:     "window-event",
	KindText:            "text",
	KindMethodCall:      "method-call",
	KindWatchedFrame:    "watched-frame",
	KindImportFromChild: "import-from-child",
	KindExportToChild:   "export-to-child",
	KindContainerData:   "container-data",
	KindContainerFilter: "container-filter",
	KindContainerTerm:   "container-term",
	KindContainerUseIf:  "container-use-if",
}

func (k BindingKind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IntermediateHook is a binding point found in the template, before any
// processor has turned it into code.
type IntermediateHook struct {
	// Selector is the attribute name, the event name for events, the child
	// side name for child imports and exports, "text" for text nodes and the
	// method name for watched frames.
	Selector string
	Kind     BindingKind
	// Value holds the primary expression, followed by optional secondary ones
	Value []output.OutputExpression
	// Host is the attribute owner or the text node, nil for watched frames
	Host     ml_parser.Node
	HostType ml_parser.NodeType
	// Attr is the template attribute the hook came from, if any
	Attr *ml_parser.Attribute
	// ElementIndex is the lookup index of the host node, or -1
	ElementIndex int
	Span         *util.ParseSourceSpan
	// Frame is the scope the expressions were resolved in
	Frame *binding.Frame
}

// Primary returns the main expression of the hook.
func (h *IntermediateHook) Primary() output.OutputExpression {
	if len(h.Value) == 0 {
		return nil
	}
	return h.Value[0]
}

// Element returns the host element, walking up from text nodes.
func (h *IntermediateHook) Element() *ml_parser.Element {
	switch n := h.Host.(type) {
	case *ml_parser.Element:
		return n
	case *ml_parser.Text:
		return n.Parent
	}
	return nil
}

// HookType tells the assembler which fragments a processed hook carries
type HookType int

const (
	HookRead HookType = 1 << iota
	HookWrite
	HookReadWrite = HookRead | HookWrite
)

func (t HookType) String() string {
	switch t {
	case HookRead:
		return "READ"
	case HookWrite:
		return "WRITE"
	case HookReadWrite:
		return "READ_WRITE"
	}
	return "NONE"
}

// VariableUse describes how a hook uses a component variable
type VariableUse struct {
	// IsObject is set when the hook reaches into the value, so updates must
	// run even when the reference did not change.
	IsObject bool
}

// ProcessedHook is the code a processor generated for one binding point.
//
// WriteAST runs whenever a dependency changes, ReadAST once at construction
// to start reading from the DOM, InitializeAST once at construction (or in
// async init when Async) and CleanupAST at teardown.
type ProcessedHook struct {
	Name          string
	Type          HookType
	Kind          BindingKind
	ReadAST       []output.OutputStatement
	WriteAST      []output.OutputStatement
	InitializeAST []output.OutputStatement
	CleanupAST    []output.OutputStatement
	Priority      float64
	// Variables maps the internal names of referenced binding variables
	Variables    map[string]VariableUse
	ElementIndex int
	Async        bool
	Frame        *binding.Frame
	Span         *util.ParseSourceSpan
}

// Dependencies returns the variables the hook reads directly.
func (h *ProcessedHook) Dependencies() []*binding.BindingVariable {
	if h.Frame == nil {
		return nil
	}
	return h.Frame.Dependencies()
}

// IndirectDependencies returns the variables the hook reads through method
// calls.
func (h *ProcessedHook) IndirectDependencies() []*binding.BindingVariable {
	if h.Frame == nil {
		return nil
	}
	return h.Frame.IndirectDependencies()
}

// variableUses records the binding variables a frame references. A variable
// is an object use when the frame reads one of its members.
func variableUses(frame *binding.Frame) map[string]VariableUse {
	uses := map[string]VariableUse{}
	if frame == nil {
		return uses
	}
	record := func(expr output.OutputExpression, isObject bool) {
		ref, ok := expr.(*output.ReadVarExpr)
		if !ok {
			return
		}
		v := frame.Variable(ref)
		if v == nil || v.IsMethod() {
			return
		}
		use := uses[v.InternalName]
		use.IsObject = use.IsObject || isObject
		uses[v.InternalName] = use
	}
	visit := func(node interface{}) bool {
		switch n := node.(type) {
		case *output.ReadVarExpr:
			record(n, false)
		case *output.ReadPropExpr:
			record(n.Receiver, true)
		case *output.ReadKeyExpr:
			record(n.Receiver, true)
		}
		return true
	}
	output.Inspect(frame.Statements, visit)
	output.Inspect(frame.Expressions, visit)
	return uses
}
