package binding

import (
	"wick-go/packages/compiler/src/config"
	"wick-go/packages/compiler/src/output"
	"wick-go/packages/compiler/src/util"
	"wick-go/packages/core"
)

// Frame is a lexical scope of a component: the top level script, a method,
// an inline closure or a single template expression. Frames form a chain to
// the root frame, which owns the variable registry.
//
// Scoping is function level: a name declared anywhere inside a frame,
// including nested blocks and nested closures, is local to the whole frame.
type Frame struct {
	Parent *Frame
	// Name is the source name of a method frame, empty otherwise
	Name        string
	Params      []*output.FnParam
	Statements  []output.OutputStatement
	Expressions []output.OutputExpression
	IsAsync     bool
	IsWatched   bool
	Span        *util.ParseSourceSpan

	index    int
	declared map[string]bool
	refs     map[*output.ReadVarExpr]*BindingVariable
	writes   map[*output.ReadVarExpr]bool
	reads    []*BindingVariable
	calls    []*Frame
	resolved bool

	// root only
	registry   *Registry
	frames     []*Frame
	methods    []*Frame
	Components []*ComponentImport
}

// NewRootFrame creates the root frame of a component with an empty registry.
func NewRootFrame() *Frame {
	return &Frame{index: -1, registry: newRegistry()}
}

// NewChild creates a frame whose parent is f. The frame is not activated.
func (f *Frame) NewChild(name string) *Frame {
	child := &Frame{Parent: f, Name: name, index: -1}
	root := f.Root()
	root.frames = append(root.frames, child)
	return child
}

// Root returns the root frame of the chain.
func (f *Frame) Root() *Frame {
	for f.Parent != nil {
		f = f.Parent
	}
	return f
}

// IsRoot reports whether f is the top level frame.
func (f *Frame) IsRoot() bool {
	return f.Parent == nil
}

// Registry returns the variable registry owned by the root frame.
func (f *Frame) Registry() *Registry {
	return f.Root().registry
}

// Frames returns every frame created under the root, in creation order.
func (f *Frame) Frames() []*Frame {
	return f.Root().frames
}

// Methods returns the activated frames in activation order.
func (f *Frame) Methods() []*Frame {
	return f.Root().methods
}

// Index returns the method table slot of the frame, or -1 when it has not
// been activated.
func (f *Frame) Index() int {
	return f.index
}

// Activate assigns the frame a method table slot the first time it is
// referenced as a callable unit and returns the slot.
func (f *Frame) Activate() int {
	if f.index >= 0 {
		return f.index
	}
	root := f.Root()
	f.index = len(root.methods)
	root.methods = append(root.methods, f)
	log.Debugf("activated frame %q as f%d", f.Name, f.index)
	return f.index
}

// PromoteToMethod turns a resolved expression frame into a method frame
// with the given parameters and body, and activates it. References keep
// pointing at the variables they were resolved to.
func (f *Frame) PromoteToMethod(params []*output.FnParam, body []output.OutputStatement, isAsync bool) int {
	f.Params = params
	f.Statements = body
	f.Expressions = nil
	f.IsAsync = isAsync
	return f.Activate()
}

// AddBindingVariable declares a variable in the registry of the frame chain.
// It returns false when name is already declared with a conflicting type;
// repeated `var` style declarations of an INTERNAL variable are accepted.
func (f *Frame) AddBindingVariable(name string, span *util.ParseSourceSpan, typ core.BindingType, external string, flags core.VariableFlag) bool {
	registry := f.Registry()
	if existing := registry.Get(name); existing != nil {
		if existing.Type != core.BindingTypeInternal || typ != core.BindingTypeInternal {
			return false
		}
		existing.Flags |= flags
		return true
	}
	if external == "" {
		external = name
	}
	v := &BindingVariable{
		InternalName: name,
		ExternalName: external,
		Type:         typ,
		Flags:        typ.DefaultFlags() | flags,
		ClassIndex:   len(registry.order),
		Span:         span,
	}
	registry.vars[name] = v
	registry.order = append(registry.order, v)
	return true
}

// AddWriteFlagToBindingVariable marks the variable as written. It reports
// whether the variable exists.
func (f *Frame) AddWriteFlagToBindingVariable(name string) bool {
	v := f.Registry().Get(name)
	if v == nil {
		return false
	}
	v.Flags |= core.VariableFlagWritten
	return true
}

// IsLocal reports whether name is declared by f or one of its non-root
// ancestors.
func (f *Frame) IsLocal(name string) bool {
	for frame := f; frame != nil && !frame.IsRoot(); frame = frame.Parent {
		if frame.declared[name] {
			return true
		}
	}
	return f.IsRoot() && f.declared[name]
}

// Lookup resolves name to a binding variable, or nil when it is local or
// unknown.
func (f *Frame) Lookup(name string) *BindingVariable {
	if f.IsLocal(name) {
		return nil
	}
	return f.Registry().Get(name)
}

// Variable returns the binding variable a resolved reference points at.
func (f *Frame) Variable(expr *output.ReadVarExpr) *BindingVariable {
	return f.refs[expr]
}

// IsWrite reports whether a resolved reference is the target of a write.
func (f *Frame) IsWrite(expr *output.ReadVarExpr) bool {
	return f.writes[expr]
}

// Dependencies returns the non-method variables the frame reads, in order of
// first reference.
func (f *Frame) Dependencies() []*BindingVariable {
	return f.reads
}

// Calls returns the method frames the frame references.
func (f *Frame) Calls() []*Frame {
	return f.calls
}

// IndirectDependencies returns the variables read by the methods f calls,
// transitively, excluding variables f reads itself.
func (f *Frame) IndirectDependencies() []*BindingVariable {
	direct := map[*BindingVariable]bool{}
	for _, v := range f.reads {
		direct[v] = true
	}
	seen := map[*Frame]bool{f: true}
	var out []*BindingVariable
	var walk func(frame *Frame)
	walk = func(frame *Frame) {
		for _, callee := range frame.calls {
			if seen[callee] {
				continue
			}
			seen[callee] = true
			for _, v := range callee.reads {
				if !direct[v] {
					direct[v] = true
					out = append(out, v)
				}
			}
			walk(callee)
		}
	}
	walk(f)
	return out
}

// Resolve binds every identifier of the frame to a local, a binding variable
// or a configured global, sets write flags and counts references. A frame is
// resolved at most once; later calls return nil.
func (f *Frame) Resolve(cfg *config.CompilerConfig) util.ErrorList {
	if f.resolved {
		return nil
	}
	f.resolved = true
	f.refs = map[*output.ReadVarExpr]*BindingVariable{}
	f.writes = map[*output.ReadVarExpr]bool{}
	f.collectLocals()

	var errs util.ErrorList
	seenRead := map[*BindingVariable]bool{}
	visit := func(node interface{}) bool {
		switch n := node.(type) {
		case *output.BinaryOperatorExpr:
			if n.Operator.IsAssignment() {
				f.markWrite(n.Lhs, n.Operator != output.BinaryOperatorAssign)
			}
		case *output.UpdateExpr:
			f.markWrite(n.Expr, true)
		case *output.ForInOfStmt:
			if n.Kind == output.VarKindNone {
				f.markWrite(n.Target, false)
			}
		case *output.ReadVarExpr:
			if n.Name == "this" || f.IsLocal(n.Name) {
				return true
			}
			v := f.Registry().Get(n.Name)
			if v == nil {
				if !cfg.IsGlobal(n.Name) {
					errs.Add(n.GetSourceSpan(), "missing binding variable for `%s`", n.Name)
				}
				return true
			}
			f.refs[n] = v
			v.RefCount++
			if v.IsMethod() {
				if f.writes[n] {
					errs.Add(n.GetSourceSpan(), "Cannot assign to method `%s`", n.Name)
				}
				if v.Method != nil && v.Method != f {
					v.Method.Activate()
					f.addCall(v.Method)
				}
				return true
			}
			if written, ok := f.writes[n]; ok {
				v.Flags |= core.VariableFlagWritten
				if !written {
					return true
				}
			}
			if !seenRead[v] {
				seenRead[v] = true
				f.reads = append(f.reads, v)
			}
		}
		return true
	}
	for _, p := range f.Params {
		if p.Default != nil {
			output.Inspect(p.Default, visit)
		}
	}
	output.Inspect(f.Statements, visit)
	output.Inspect(f.Expressions, visit)

	if !f.IsAsync && !f.IsRoot() && f.Name == "" {
		f.IsAsync = HasAwait(f.Expressions)
	}
	return errs
}

func (f *Frame) addCall(callee *Frame) {
	for _, c := range f.calls {
		if c == callee {
			return
		}
	}
	f.calls = append(f.calls, callee)
}

// markWrite records the identifier at the root of target as written. The
// recorded value is true when the write also reads the previous value.
func (f *Frame) markWrite(target output.OutputExpression, reads bool) {
	for {
		switch t := target.(type) {
		case *output.ReadVarExpr:
			f.writes[t] = f.writes[t] || reads
			return
		case *output.ReadPropExpr:
			target, reads = t.Receiver, true
		case *output.ReadKeyExpr:
			target, reads = t.Receiver, true
		default:
			return
		}
	}
}

func (f *Frame) collectLocals() {
	f.declared = map[string]bool{}
	for _, p := range f.Params {
		f.declared[p.Name] = true
	}
	topLevel := map[output.OutputStatement]bool{}
	if f.IsRoot() {
		for _, s := range f.Statements {
			topLevel[s] = true
		}
	}
	declareParams := func(params []*output.FnParam) {
		for _, p := range params {
			f.declared[p.Name] = true
		}
	}
	collect := func(node interface{}) bool {
		switch n := node.(type) {
		case *output.DeclareVarStmt:
			if !topLevel[n] {
				f.declared[n.Name] = true
			}
		case *output.DeclareFunctionStmt:
			if !topLevel[n] {
				f.declared[n.Name] = true
			}
			declareParams(n.Params)
		case *output.FunctionExpr:
			if n.Name != nil {
				f.declared[*n.Name] = true
			}
			declareParams(n.Params)
		case *output.ArrowFunctionExpr:
			declareParams(n.Params)
		case *output.ForInOfStmt:
			if n.Kind != output.VarKindNone {
				f.declared[n.Name] = true
			}
		case *output.TryCatchStmt:
			if n.HasCatch && n.CatchParam != "" {
				f.declared[n.CatchParam] = true
			}
		}
		return true
	}
	output.Inspect(f.Statements, collect)
	output.Inspect(f.Expressions, collect)
}

// HasAwait reports whether node awaits outside of nested functions.
func HasAwait(node interface{}) bool {
	found := false
	output.Inspect(node, func(n interface{}) bool {
		switch n.(type) {
		case *output.AwaitExpr:
			found = true
		case *output.FunctionExpr, *output.ArrowFunctionExpr, *output.DeclareFunctionStmt:
			return false
		}
		return !found
	})
	return found
}
