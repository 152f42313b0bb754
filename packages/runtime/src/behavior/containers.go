package behavior

import (
	"github.com/dop251/goja"

	"wick-go/packages/runtime/src/container"
	"wick-go/packages/runtime/src/model"
)

// containerProxy is the `ct` entry of a container. It keeps one model per
// item so that repeated data keeps its instances.
type containerProxy struct {
	rt        *Runtime
	c         *container.Container
	templates []string

	objects    map[*goja.Object]*model.Model
	primitives map[interface{}]*model.Model
	items      map[*model.Model]goja.Value
	useIf      map[int]goja.Callable
}

func (r *Runtime) newContainerProxy(c *container.Container, templates []string) *containerProxy {
	return &containerProxy{
		rt:         r,
		c:          c,
		templates:  templates,
		objects:    map[*goja.Object]*model.Model{},
		primitives: map[interface{}]*model.Model{},
		items:      map[*model.Model]goja.Value{},
		useIf:      map[int]goja.Callable{},
	}
}

func (p *containerProxy) object() *goja.Object {
	obj := p.rt.vm.NewObject()
	obj.Set("sd", func(call goja.FunctionCall) goja.Value {
		p.setData(call.Argument(0))
		return goja.Undefined()
	})
	obj.Set("sf", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			p.c.SetFilter(nil)
			return goja.Undefined()
		}
		p.c.SetFilter(func(m *model.Model) bool {
			return p.call(fn, m).ToBoolean()
		})
		return goja.Undefined()
	})
	obj.Set("st", func(call goja.FunctionCall) goja.Value {
		p.setTerm(call.Argument(0).String(), call.Argument(1))
		return goja.Undefined()
	})
	obj.Set("su", func(call goja.FunctionCall) goja.Value {
		p.setUseIf(int(call.Argument(0).ToInteger()), call.Argument(1))
		return goja.Undefined()
	})
	return obj
}

// setData converts the items of an array to models. Objects are tracked
// by identity and primitives by value; other items become `{value}`.
func (p *containerProxy) setData(v goja.Value) {
	items := p.rt.array(v)
	models := make([]*model.Model, 0, len(items))
	for _, item := range items {
		var m *model.Model
		switch value := item.(type) {
		case *goja.Object:
			values := p.rt.record(value)
			if m = p.objects[value]; m != nil {
				m.Update(values)
			} else {
				m = model.New(values)
				p.objects[value] = m
			}
		default:
			key := fromJS(item)
			if m = p.primitives[key]; m == nil {
				m = model.New(map[string]interface{}{"value": key})
				p.primitives[key] = m
			}
		}
		p.items[m] = item
		models = append(models, m)
	}
	p.c.SetData(models)
}

func (p *containerProxy) setTerm(name string, v goja.Value) {
	if name != "sort" {
		if !p.c.SetTerm(name, v.ToFloat()) {
			log.Warningf("unknown container term %q", name)
		}
		return
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		p.c.SetSort(nil)
		return
	}
	p.c.SetSort(func(a, b *model.Model) bool {
		return p.call(fn, a, b).ToFloat() < 0
	})
}

// setUseIf binds template i to a predicate. Later calls replace the
// predicate of the same template.
func (p *containerProxy) setUseIf(i int, v goja.Value) {
	if i < 0 || i >= len(p.templates) {
		return
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return
	}
	_, registered := p.useIf[i]
	p.useIf[i] = fn
	if registered {
		return
	}
	class := p.rt.Graph.Class(p.templates[i])
	if class == nil {
		log.Warningf("no class for container template <%s>", p.templates[i])
		return
	}
	p.c.UseIf(class, func(m *model.Model) bool {
		return p.call(p.useIf[i], m).ToBoolean()
	})
}

// call runs a script callback with the items of models.
func (p *containerProxy) call(fn goja.Callable, models ...*model.Model) goja.Value {
	args := make([]goja.Value, len(models))
	for i, m := range models {
		if item, ok := p.items[m]; ok {
			args[i] = item
		} else {
			args[i] = goja.Undefined()
		}
	}
	v, err := fn(goja.Undefined(), args...)
	if err != nil {
		log.Errorf("container callback: %s", err)
		return goja.Undefined()
	}
	return v
}
