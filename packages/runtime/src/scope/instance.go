package scope

import (
	"sort"

	"golang.org/x/net/html"

	"wick-go/packages/core"
	"wick-go/packages/runtime/src/model"
	"wick-go/packages/runtime/src/scheduler"
)

// Behavior is the code of a compiled class: construction, the update method
// of each class index and teardown.
type Behavior interface {
	Init(inst *Instance)
	Update(inst *Instance, index int, value interface{}, flags core.UpdateFlag)
	Terminate(inst *Instance)
}

// Class is a compiled component as the runtime sees it
type Class struct {
	Name     string
	Lookup   core.LookupTable
	Template *core.TemplateNode
	Behavior Behavior
}

type pendingValue struct {
	value interface{}
	flags core.UpdateFlag
}

// Instance is a live component: its nodes, its variable slots and its
// scope in the graph.
type Instance struct {
	Class *Class
	Root  *html.Node
	// Elements is the element lookup table (`elu`)
	Elements []*html.Node
	// Children are the child component instances (`ch`)
	Children []*Instance
	// Containers are the container elements (`ct`)
	Containers []*html.Node

	graph     *Graph
	scope     *Scope
	parent    *Instance
	slots     map[int]interface{}
	imports   map[*Instance]map[string]int
	exporting map[string]bool
	pending   map[string]pendingValue
	flush     *scheduler.Task
}

// NewInstance builds the nodes of class, instantiates its child components
// and runs its construction code. The instance scope is a child of the
// parent instance scope.
func NewInstance(g *Graph, class *Class, parent *Instance) *Instance {
	parentScope := NoScope
	if parent != nil {
		parentScope = parent.scope.ID
	}
	inst := &Instance{
		Class:     class,
		graph:     g,
		parent:    parent,
		scope:     g.NewScope(parentScope, class.Name),
		slots:     map[int]interface{}{},
		imports:   map[*Instance]map[string]int{},
		exporting: map[string]bool{},
		pending:   map[string]pendingValue{},
	}

	built := g.Document.Build(class.Template)
	inst.Root = built.Root
	inst.Elements = built.Lookup
	inst.Containers = built.Containers
	for _, placeholder := range built.Components {
		childClass := g.Class(placeholder.Data)
		if childClass == nil {
			log.Warningf("%s: no class for component <%s>", class.Name, placeholder.Data)
			continue
		}
		child := NewInstance(g, childClass, inst)
		switch {
		case placeholder == inst.Root:
			inst.Root = child.Root
		case placeholder.Parent != nil && child.Root != nil:
			placeholder.Parent.InsertBefore(child.Root, placeholder)
			placeholder.Parent.RemoveChild(placeholder)
		}
		for i, n := range inst.Elements {
			if n == placeholder {
				inst.Elements[i] = child.Root
			}
		}
		inst.Children = append(inst.Children, child)
		child.scope.Load(nil)
	}

	for _, name := range inst.lookupNames() {
		if class.Lookup[name].Flags().Has(core.VariableFlagFromModel) {
			inst.scope.Tap(name).AddIO(&instanceIO{inst: inst, name: name})
		}
	}
	inst.scope.AddCleanup(inst.terminate)
	if class.Behavior != nil {
		class.Behavior.Init(inst)
	}
	return inst
}

func (inst *Instance) lookupNames() []string {
	names := make([]string, 0, len(inst.Class.Lookup))
	for name := range inst.Class.Lookup {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Scope returns the scope of the instance.
func (inst *Instance) Scope() *Scope {
	return inst.scope
}

// Parent returns the parent component instance, or nil.
func (inst *Instance) Parent() *Instance {
	return inst.parent
}

// Destroyed reports whether the instance was torn down.
func (inst *Instance) Destroyed() bool {
	return inst.scope.destroyed
}

// Slot returns the value stored at a class index.
func (inst *Instance) Slot(index int) (interface{}, bool) {
	v, ok := inst.slots[index]
	return v, ok
}

// Value returns the value of a public variable.
func (inst *Instance) Value(name string) (interface{}, bool) {
	packed, ok := inst.Class.Lookup[name]
	if !ok {
		return nil, false
	}
	return inst.Slot(packed.Index())
}

// Update writes data into the public variables that accept values of the
// given origin. Unless immediate is set the writes are batched until the
// scheduler next runs, the last value of each variable winning.
func (inst *Instance) Update(data map[string]interface{}, flags core.UpdateFlag, immediate bool) {
	if inst.Destroyed() {
		return
	}
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		packed, ok := inst.Class.Lookup[name]
		if !ok {
			continue
		}
		if !packed.Accepts(flags) {
			log.Debugf("%s: %q rejected update with flags %d", inst.Class.Name, name, flags)
			continue
		}
		if immediate {
			inst.set(packed.Index(), data[name], flags)
			continue
		}
		inst.pending[name] = pendingValue{value: data[name], flags: flags}
	}
	if len(inst.pending) > 0 && !inst.flush.Pending() {
		inst.flush = inst.graph.Scheduler.After(0, inst.flushPending)
	}
}

func (inst *Instance) flushPending() {
	if inst.Destroyed() {
		return
	}
	pending := inst.pending
	inst.pending = map[string]pendingValue{}
	names := make([]string, 0, len(pending))
	for name := range pending {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := pending[name]
		inst.set(inst.Class.Lookup[name].Index(), p.value, p.flags)
	}
}

// Set stores a value at a class index and runs its update method. It is
// what generated code calls for local writes.
func (inst *Instance) Set(index int, value interface{}) {
	if inst.Destroyed() {
		return
	}
	inst.set(index, value, core.UpdateFlagNone)
}

func (inst *Instance) set(index int, value interface{}, flags core.UpdateFlag) {
	inst.slots[index] = value
	if inst.Class.Behavior != nil {
		inst.Class.Behavior.Update(inst, index, value, flags)
	}
}

// Import routes the exported variable name of child k into the class index
// slot (`ci`).
func (inst *Instance) Import(k int, name string, slot int) {
	if inst.Destroyed() || k < 0 || k >= len(inst.Children) {
		return
	}
	child := inst.Children[k]
	if inst.imports[child] == nil {
		inst.imports[child] = map[string]int{}
	}
	inst.imports[child][name] = slot
}

// Export publishes a local value (`ep`): the parent receives it when it
// imports the name and the scope tap of the same name, if any, carries it
// up.
func (inst *Instance) Export(name string, value interface{}) {
	if inst.Destroyed() || inst.exporting[name] {
		return
	}
	inst.exporting[name] = true
	defer delete(inst.exporting, name)

	if p := inst.parent; p != nil && !p.Destroyed() {
		if slot, ok := p.imports[inst][name]; ok {
			p.set(slot, value, core.UpdateFlagFromChild)
		}
	}
	if inst.scope.HasTap(name) {
		inst.scope.Up(name, value)
	}
}

// AppendToDOM inserts the root before before under parent, or appends it.
func (inst *Instance) AppendToDOM(parent, before *html.Node) {
	if inst.Destroyed() || inst.Root == nil {
		return
	}
	inst.graph.Document.InsertBefore(parent, inst.Root, before)
	inst.scope.Connect()
}

// RemoveFromDOM detaches the root.
func (inst *Instance) RemoveFromDOM() {
	if inst.Destroyed() || inst.Root == nil {
		return
	}
	inst.graph.Document.Remove(inst.Root)
	inst.scope.Disconnect()
}

// TransitionIn cancels a pending exit.
func (inst *Instance) TransitionIn(t *Transition) {
	inst.scope.TransitionIn()
}

// TransitionOut removes the instance from the document once t has played.
// With destroy set the instance is also destroyed.
func (inst *Instance) TransitionOut(t *Transition, destroy bool) *scheduler.Task {
	return inst.scope.TransitionOut(t.Duration(), func() {
		inst.RemoveFromDOM()
		if destroy {
			inst.Destructor()
		}
	})
}

// SetModel loads the instance with m, or replaces its model.
func (inst *Instance) SetModel(m *model.Model) {
	inst.scope.Load(m)
}

// Destructor destroys the scope of the instance and, with it, its children.
func (inst *Instance) Destructor() {
	inst.scope.Destroy()
}

func (inst *Instance) terminate() {
	inst.flush.Cancel()
	if inst.Class.Behavior != nil {
		inst.Class.Behavior.Terminate(inst)
	}
	if p := inst.parent; p != nil {
		delete(p.imports, inst)
	}
}

// instanceIO feeds a tap into a public variable of an instance.
type instanceIO struct {
	inst *Instance
	name string
}

func (io *instanceIO) Down(value interface{}, flags core.UpdateFlag) {
	if io.inst.exporting[io.name] {
		return
	}
	io.inst.Update(map[string]interface{}{io.name: value}, flags, true)
}

func (io *instanceIO) Destroy() {}
