package behavior

import (
	"github.com/dop251/goja"

	"wick-go/packages/core"
	"wick-go/packages/runtime/src/container"
	"wick-go/packages/runtime/src/scope"
)

// classBehavior implements scope.Behavior with a loaded class.
type classBehavior struct {
	rt   *Runtime
	ctor *goja.Object
	// updates holds the original update method of each class index
	updates []string
	// containers holds the template tags of each container
	containers [][]string
	objects    map[*scope.Instance]*object
}

// object is the script side of one instance.
type object struct {
	this       *goja.Object
	containers []*containerProxy
}

func (b *classBehavior) Init(inst *scope.Instance) {
	r := b.rt
	this, err := r.vm.New(b.ctor)
	if err != nil {
		log.Errorf("%s: %s", inst.Class.Name, err)
		return
	}
	o := &object{this: this}
	b.objects[inst] = o
	r.instances[this] = inst

	elu := make([]interface{}, len(inst.Elements))
	for i, n := range inst.Elements {
		elu[i] = r.node(n)
	}
	ch := make([]interface{}, len(inst.Children))
	for i, child := range inst.Children {
		ch[i] = r.child(child)
	}
	ct := make([]interface{}, len(inst.Containers))
	for i, el := range inst.Containers {
		var tags []string
		if i < len(b.containers) {
			tags = b.containers[i]
		}
		var class *scope.Class
		if len(tags) > 0 {
			class = r.Graph.Class(tags[0])
		}
		p := r.newContainerProxy(container.New(r.Graph, inst, el, class), tags)
		o.containers = append(o.containers, p)
		ct[i] = p.object()
	}

	members := map[string]interface{}{
		"elu": r.vm.NewArray(elu...),
		"ch":  r.vm.NewArray(ch...),
		"ct":  r.vm.NewArray(ct...),
		"api": r.API,
		"md":  r.module,
		"ep": func(call goja.FunctionCall) goja.Value {
			inst.Export(call.Argument(0).String(), fromJS(call.Argument(1)))
			return goja.Undefined()
		},
		"ci": func(call goja.FunctionCall) goja.Value {
			inst.Import(int(call.Argument(0).ToInteger()), call.Argument(1).String(), int(call.Argument(2).ToInteger()))
			return goja.Undefined()
		},
	}
	for name, v := range members {
		if err := this.Set(name, v); err != nil {
			log.Errorf("%s: %s", inst.Class.Name, err)
		}
	}

	r.invoke(this, "init")
	r.invoke(this, "async_init")
}

func (b *classBehavior) Update(inst *scope.Instance, index int, value interface{}, flags core.UpdateFlag) {
	o := b.objects[inst]
	if o == nil || index < 0 || index >= len(b.updates) || b.updates[index] == "" {
		return
	}
	b.rt.invoke(o.this, b.updates[index], b.rt.toJS(value), b.rt.vm.ToValue(int(flags)))
}

func (b *classBehavior) Terminate(inst *scope.Instance) {
	o := b.objects[inst]
	if o == nil {
		return
	}
	b.rt.invoke(o.this, "terminate")
	delete(b.objects, inst)
	delete(b.rt.instances, o.this)
}

// child is the `ch` entry of a child instance. Parent writes are batched.
func (r *Runtime) child(child *scope.Instance) *goja.Object {
	obj := r.vm.NewObject()
	obj.Set("update", func(call goja.FunctionCall) goja.Value {
		child.Update(r.record(call.Argument(0)), core.UpdateFlag(call.Argument(1).ToInteger()), false)
		return goja.Undefined()
	})
	return obj
}
