// Package behavior runs compiled component classes. Every class of a
// Runtime is loaded into one goja VM and each scope.Instance gets a
// JavaScript object of its class whose runtime members (`elu`, `ch`, `ct`,
// `ep`, `ci`, `md`, `api`) are backed by the instance, its document nodes
// and its containers.
//
// Values written by scripts keep their JavaScript identity: objects are
// stored in instance slots as *goja.Object, primitives as Go values.
package behavior

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dop251/goja"
	"github.com/tliron/commonlog"
	"golang.org/x/net/html"

	"wick-go/packages/compiler/src/assembler"
	"wick-go/packages/compiler/src/component"
	"wick-go/packages/compiler/src/output"
	"wick-go/packages/runtime/src/scope"
)

var log = commonlog.GetLogger("wick.runtime.behavior")

// baseSource is the class every compiled class extends.
const baseSource = `(class ` + assembler.RuntimeBase + ` {})`

// installSource routes the update methods of a class through the runtime.
// The original method stays reachable as `$u<ci>`.
const installSource = `(function (C, set) {
  C.lfu.forEach(function (name, i) {
    if (typeof name !== "string" || !/^u[0-9]+$/.test(name)) return;
    C.prototype["$" + name] = C.prototype[name];
    C.prototype[name] = function (v) { set(this, i, v); };
  });
  return C;
})`

// Runtime loads compiled components and runs their instances on a graph.
type Runtime struct {
	Graph *scope.Graph
	// API is exposed to components as `this.api`
	API map[string]interface{}
	// Modules resolves `this.md(source)`
	Modules map[string]interface{}

	js        *output.GojaRuntime
	vm        *goja.Runtime
	base      goja.Value
	install   goja.Callable
	window    *goja.Object
	classes   map[string]*scope.Class
	instances map[*goja.Object]*scope.Instance
	nodes     map[*html.Node]*goja.Object
	listeners map[*html.Node]map[string][]goja.Value
}

// Option is a function that modifies Runtime
type Option func(*Runtime)

// WithAPI sets the values of `@api` imports
func WithAPI(api map[string]interface{}) Option {
	return func(r *Runtime) {
		r.API = api
	}
}

// WithModules sets the modules returned for import sources
func WithModules(modules map[string]interface{}) Option {
	return func(r *Runtime) {
		r.Modules = modules
	}
}

// New creates a runtime for g.
func New(g *scope.Graph, opts ...Option) (*Runtime, error) {
	js := output.NewGojaRuntime()
	r := &Runtime{
		Graph:     g,
		API:       map[string]interface{}{},
		Modules:   map[string]interface{}{},
		js:        js,
		vm:        js.VM(),
		classes:   map[string]*scope.Class{},
		instances: map[*goja.Object]*scope.Instance{},
		nodes:     map[*html.Node]*goja.Object{},
		listeners: map[*html.Node]map[string][]goja.Value{},
	}
	for _, opt := range opts {
		opt(r)
	}

	var err error
	if r.base, err = r.vm.RunString(baseSource); err != nil {
		return nil, fmt.Errorf("runtime base class: %w", err)
	}
	install, err := r.vm.RunString(installSource)
	if err != nil {
		return nil, fmt.Errorf("runtime installer: %w", err)
	}
	r.install, _ = goja.AssertFunction(install)

	r.window = r.vm.NewObject()
	r.listenOn(r.window, nil)
	if err := r.vm.Set("window", r.window); err != nil {
		return nil, err
	}
	return r, nil
}

// Load evaluates the output of c and its imports and returns the runtime
// class of c. Imports are defined on the graph under their component tags.
func (r *Runtime) Load(ctx context.Context, c *component.Component) (*scope.Class, error) {
	if class, ok := r.classes[c.Path]; ok {
		return class, nil
	}

	tags := make([]string, 0, len(c.Children))
	for tag := range c.Children {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		child, err := r.Load(ctx, c.Children[tag])
		if err != nil {
			return nil, err
		}
		r.Graph.Define(tag, child)
	}

	ctor, err := r.evaluate(ctx, c)
	if err != nil {
		return nil, err
	}
	if _, err := r.install(goja.Undefined(), ctor, r.vm.ToValue(r.set)); err != nil {
		return nil, fmt.Errorf("load %s: %w", c.Path, err)
	}

	b := &classBehavior{
		rt:         r,
		ctor:       ctor,
		updates:    updateMethods(r.array(ctor.Get("lfu"))),
		containers: r.templates(ctor.Get("containers")),
		objects:    map[*scope.Instance]*object{},
	}
	class := &scope.Class{
		Name:     c.ClassName,
		Lookup:   r.lookup(ctor.Get("lu")),
		Template: r.template(ctor.Get("template")),
		Behavior: b,
	}
	r.classes[c.Path] = class
	log.Debugf("loaded %s as %s", c.Path, c.ClassName)
	return class, nil
}

// evaluate runs the factory of c against the base class. The evaluation
// is interrupted when ctx is cancelled.
func (r *Runtime) evaluate(ctx context.Context, c *component.Component) (*goja.Object, error) {
	factory := strings.TrimSuffix(strings.TrimSpace(c.Output), ";")
	fn, err := r.js.NewFunction([]string{assembler.RuntimeBase, "define"},
		"define("+factory+"("+assembler.RuntimeBase+"));")
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.Path, err)
	}

	var ctor *goja.Object
	define := func(call goja.FunctionCall) goja.Value {
		if obj, ok := call.Argument(0).(*goja.Object); ok {
			ctor = obj
		}
		return goja.Undefined()
	}
	if _, err := r.js.ExecuteFunction(ctx, fn, []interface{}{r.base, define}); err != nil {
		return nil, fmt.Errorf("load %s: %w", c.Path, err)
	}
	if ctor == nil {
		return nil, fmt.Errorf("load %s: factory did not return a class", c.Path)
	}
	return ctor, nil
}

// set is the target of the installed update methods: a local write of
// class index i goes through Instance.Set.
func (r *Runtime) set(call goja.FunctionCall) goja.Value {
	obj, ok := call.Argument(0).(*goja.Object)
	if !ok {
		return goja.Undefined()
	}
	inst := r.instances[obj]
	if inst == nil {
		return goja.Undefined()
	}
	inst.Set(int(call.Argument(1).ToInteger()), fromJS(call.Argument(2)))
	return goja.Undefined()
}

// module implements `md`.
func (r *Runtime) module(call goja.FunctionCall) goja.Value {
	source := call.Argument(0).String()
	m, ok := r.Modules[source]
	if !ok {
		log.Warningf("no module for %q", source)
		return goja.Undefined()
	}
	return r.vm.ToValue(m)
}

// invoke calls a method of obj if it exists. Script errors are logged.
func (r *Runtime) invoke(obj *goja.Object, method string, args ...goja.Value) goja.Value {
	fn, ok := goja.AssertFunction(obj.Get(method))
	if !ok {
		return goja.Undefined()
	}
	v, err := fn(obj, args...)
	if err != nil {
		log.Errorf("%s: %s", method, err)
		return goja.Undefined()
	}
	return v
}
