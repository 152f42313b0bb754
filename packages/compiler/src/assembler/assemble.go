package assembler

import (
	"fmt"
	"sort"

	"github.com/tliron/commonlog"

	"wick-go/packages/compiler/src/binding"
	"wick-go/packages/compiler/src/hooks"
	"wick-go/packages/compiler/src/output"
	"wick-go/packages/compiler/src/util"
	"wick-go/packages/core"
)

var log = commonlog.GetLogger("wick.compiler.assembler")

// Input is everything the assembler needs to know about a component
type Input struct {
	Name       string
	Root       *binding.Frame
	Extraction *hooks.Extraction
	Hooks      []*hooks.ProcessedHook
	Defaults   *hooks.Defaults
	Styles     []string
}

// Job is an ongoing assembly. Phases mutate it in order until Class is
// complete.
type Job struct {
	Input
	Class  *CompiledComponentClass
	Errors util.ErrorList

	updates   map[*binding.BindingVariable]*Method
	records   map[*binding.BindingVariable]*BindingRecord
	elements  map[int]bool
	lookups   []output.OutputStatement
	direct    []output.OutputStatement
	hookInit  []output.OutputStatement
	asyncInit []output.OutputStatement
	stmtInit  []output.OutputStatement
}

// NewJob creates an assembly job for input.
func NewJob(input Input) *Job {
	return &Job{
		Input: input,
		Class: &CompiledComponentClass{
			Name:           input.Name,
			InitFrame:      NewMethod("init"),
			AsyncInitFrame: &Method{Name: "async_init", IsAsync: true},
			TerminateFrame: NewMethod("terminate"),
			Styles:         input.Styles,
		},
		updates:  map[*binding.BindingVariable]*Method{},
		records:  map[*binding.BindingVariable]*BindingRecord{},
		elements: map[int]bool{},
	}
}

type phase struct {
	name string
	fn   func(*Job)
}

var phases = []phase{
	{"sort-hooks", sortHooks},
	{"update-methods", createUpdateMethods},
	{"method-frames", emitMethodFrames},
	{"direct-access", initDirectAccess},
	{"hooks", placeHooks},
	{"statements", emitRootStatements},
	{"exports", emitExports},
	{"init", collectInit},
	{"tables", buildTables},
}

// Assemble runs every assembly phase and returns the compiled class.
func Assemble(input Input) (*CompiledComponentClass, util.ErrorList) {
	job := NewJob(input)
	for _, p := range phases {
		p.fn(job)
		log.Debugf("%s: ran phase %s", input.Name, p.name)
	}
	return job.Class, job.Errors
}

// sortHooks orders hooks by descending priority, keeping processing order
// among equal priorities.
func sortHooks(job *Job) {
	sorted := append([]*hooks.ProcessedHook(nil), job.Hooks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})
	job.Hooks = sorted
}

// createUpdateMethods gives every variable that can change at runtime an
// update method `u<ci>(v, f)` that stores the value. Internal variables
// that are never assigned keep their undefined slot.
func createUpdateMethods(job *Job) {
	for _, v := range job.Root.Registry().Variables() {
		job.Class.Variables = append(job.Class.Variables, v)
		if v.IsMethod() {
			continue
		}
		record := &BindingRecord{Variable: v}
		job.records[v] = record
		job.Class.Records = append(job.Class.Records, record)
		if v.IsDirectlyAccessed() || (v.Type == core.BindingTypeInternal && !v.IsWritten()) {
			continue
		}
		m := NewMethod(updateName(v.ClassIndex), output.NewFnParam("v"), output.NewFnParam("f"))
		m.Add(output.Stmt(output.Assign(slot(v), output.Variable("v"))))
		job.updates[v] = m
		record.Update = m.Name
		job.Class.UpdateMethods = append(job.Class.UpdateMethods, m)
	}
}

// emitMethodFrames renders every activated frame as `f<index>`.
func emitMethodFrames(job *Job) {
	methods := job.Root.Methods()
	for i := 0; i < len(methods); i++ {
		frame := methods[i]
		r := job.rewriterFor(frame)
		m := NewMethod(frameName(frame.Index()), r.params(frame.Params)...)
		m.Statements = r.stmts(frame.Statements)
		m.IsAsync = frame.IsAsync
		job.Class.MethodFrames = append(job.Class.MethodFrames, m)
		methods = job.Root.Methods()
	}
}

// initDirectAccess resolves API, global and module variables once at
// construction.
func initDirectAccess(job *Job) {
	for _, v := range job.Root.Registry().Variables() {
		var value output.OutputExpression
		switch v.Type {
		case core.BindingTypeAPI:
			value = output.Prop(output.Prop(output.This(), "api"), v.ExternalName)
		case core.BindingTypeGlobal:
			value = output.Prop(output.Variable("globalThis"), v.ExternalName)
		case core.BindingTypeModule:
			value = moduleRef(v.Source)
			if v.Imported == "default" {
				value = output.Prop(value, "default")
			}
		case core.BindingTypeModuleMember:
			value = output.Prop(moduleRef(v.Source), v.Imported)
		default:
			continue
		}
		job.direct = append(job.direct, output.Stmt(job.write(v, value)))
	}
}

func moduleRef(source string) output.OutputExpression {
	return output.Call(output.Prop(output.This(), "md"), output.Literal(source))
}

// updatable keeps the variables that own an update method.
func (j *Job) updatable(vars []*binding.BindingVariable) []*binding.BindingVariable {
	var out []*binding.BindingVariable
	for _, v := range vars {
		if j.updates[v] != nil {
			out = append(out, v)
		}
	}
	return out
}

// placeHooks distributes hook fragments. READ and initialize fragments run
// at construction, cleanups at teardown. WRITE fragments with a single
// direct dependency are inlined into its update method, fragments without
// dependencies run at construction and everything else becomes a dedicated
// method called from the update method of each dependency.
func placeHooks(job *Job) {
	nextSlot := job.Root.Registry().Len()
	for _, h := range job.Hooks {
		r := job.rewriterFor(h.Frame)
		if h.ElementIndex >= 0 && !job.elements[h.ElementIndex] {
			job.elements[h.ElementIndex] = true
			job.lookups = append(job.lookups, output.Stmt(output.Assign(
				output.Prop(output.This(), fmt.Sprintf("e%d", h.ElementIndex)),
				output.Key(output.Prop(output.This(), "elu"), output.Literal(h.ElementIndex)),
			)))
		}

		job.hookInit = append(job.hookInit, r.stmts(h.ReadAST)...)
		if len(h.InitializeAST) > 0 {
			if h.Async {
				job.asyncInit = append(job.asyncInit, r.stmts(h.InitializeAST)...)
			} else {
				job.hookInit = append(job.hookInit, r.stmts(h.InitializeAST)...)
			}
		}
		if len(h.CleanupAST) > 0 {
			job.Class.TerminateFrame.Prepend(r.stmts(h.CleanupAST)...)
		}

		if len(h.WriteAST) == 0 {
			continue
		}
		write := r.stmts(h.WriteAST)
		deps := job.updatable(h.Dependencies())
		indirect := job.updatable(h.IndirectDependencies())

		switch {
		case len(deps) == 0 && len(indirect) == 0:
			if h.Async {
				job.asyncInit = append(job.asyncInit, write...)
			} else {
				job.hookInit = append(job.hookInit, write...)
			}
		case len(deps) == 1 && len(indirect) == 0 && !h.Async:
			job.updates[deps[0]].Add(write...)
			log.Debugf("%s: inlined %s into %s", job.Name, h.Name, job.updates[deps[0]].Name)
		default:
			all := append(append([]*binding.BindingVariable(nil), deps...), indirect...)
			m := NewMethod(h.Name)
			m.Add(undefinedGuard(all))
			m.Add(write...)
			m.IsAsync = h.Async
			job.Class.Dedicated = append(job.Class.Dedicated, m)
			for len(job.Class.FunctionTable) < nextSlot {
				job.Class.FunctionTable = append(job.Class.FunctionTable, "")
			}
			job.Class.FunctionTable = append(job.Class.FunctionTable, m.Name)
			nextSlot++

			call := output.Stmt(output.Call(output.Prop(output.This(), m.Name)))
			for _, v := range all {
				job.updates[v].Add(call)
				job.records[v].Dispatch = append(job.records[v].Dispatch, m.Name)
			}
			log.Debugf("%s: dedicated method %s for %d dependencies", job.Name, m.Name, len(deps)+len(indirect))
		}
	}
}

// undefinedGuard returns early until every slot in vars holds a value.
func undefinedGuard(vars []*binding.BindingVariable) output.OutputStatement {
	var cond output.OutputExpression
	for _, v := range vars {
		missing := output.Binary(output.BinaryOperatorIdentical, slot(v), output.Variable("undefined"))
		if cond == nil {
			cond = missing
		} else {
			cond = output.Binary(output.BinaryOperatorOr, cond, missing)
		}
	}
	return output.NewIfStmt(cond, []output.OutputStatement{output.NewReturnStatement(nil, nil)}, nil, nil)
}

// emitRootStatements turns the top level script into construction code.
// Initialized declarations become writes; everything from the first
// statement that awaits runs in async init.
func emitRootStatements(job *Job) {
	r := job.rewriterFor(job.Root)
	async := false
	for _, stmt := range job.Root.Statements {
		if !async && binding.HasAwait(stmt) {
			async = true
		}
		var out output.OutputStatement
		if decl, ok := stmt.(*output.DeclareVarStmt); ok {
			v := job.Root.Registry().Get(decl.Name)
			if v == nil || decl.Value == nil {
				continue
			}
			out = output.NewExpressionStatement(job.write(v, r.expr(decl.Value)), decl.GetSourceSpan())
		} else {
			out = r.stmts([]output.OutputStatement{stmt})[0]
		}
		if async {
			job.asyncInit = append(job.asyncInit, out)
		} else {
			job.stmtInit = append(job.stmtInit, out)
		}
	}
}

// emitExports closes update methods of exported variables with the export
// to the parent, skipped when the value came from the parent.
func emitExports(job *Job) {
	for _, v := range job.Root.Registry().Variables() {
		m := job.updates[v]
		if m == nil || !v.IsExported() {
			continue
		}
		fromParent := output.Binary(output.BinaryOperatorBitwiseAnd, output.Variable("f"), output.Literal(int(core.UpdateFlagFromParent)))
		m.Add(output.NewIfStmt(
			output.Binary(output.BinaryOperatorEquals, fromParent, output.Literal(0)),
			[]output.OutputStatement{output.Stmt(output.Call(output.Prop(output.This(), "ep"), output.Literal(v.ExternalName), output.Variable("v")))},
			nil, nil,
		))
	}
}

func collectInit(job *Job) {
	init := job.Class.InitFrame
	init.Add(job.lookups...)
	init.Add(job.direct...)
	init.Add(job.hookInit...)
	init.Add(job.stmtInit...)
	job.Class.AsyncInitFrame.Add(job.asyncInit...)
}

func buildTables(job *Job) {
	job.Class.LookupTable = job.Root.Registry().LookupTable()
	for len(job.Class.FunctionTable) < job.Root.Registry().Len() {
		job.Class.FunctionTable = append(job.Class.FunctionTable, "")
	}
	for v, m := range job.updates {
		job.Class.FunctionTable[v.ClassIndex] = m.Name
	}

	if job.Extraction == nil {
		return
	}
	job.Class.Template = BuildTemplate(job.Extraction.Root, job.Defaults)
	for _, child := range job.Extraction.Children {
		job.Class.Children = append(job.Class.Children, child.Name)
	}
	for _, c := range job.Extraction.Containers {
		record := &ContainerRecord{}
		for _, t := range c.Templates {
			record.Templates = append(record.Templates, t.Name)
		}
		job.Class.Containers = append(job.Class.Containers, record)
	}
}
