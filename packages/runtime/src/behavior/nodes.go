package behavior

import (
	"github.com/dop251/goja"
	"golang.org/x/net/html"

	"wick-go/packages/runtime/src/dom"
)

// node returns the script object of a document node. Writes go through
// the graph document so they are counted.
func (r *Runtime) node(n *html.Node) *goja.Object {
	if obj, ok := r.nodes[n]; ok {
		return obj
	}
	doc := r.Graph.Document
	obj := r.vm.NewObject()
	r.nodes[n] = obj

	obj.Set("setAttribute", func(call goja.FunctionCall) goja.Value {
		doc.SetAttribute(n, call.Argument(0).String(), call.Argument(1).String())
		return goja.Undefined()
	})
	obj.Set("getAttribute", func(call goja.FunctionCall) goja.Value {
		if v, ok := dom.Attribute(n, call.Argument(0).String()); ok {
			return r.vm.ToValue(v)
		}
		return goja.Null()
	})
	obj.Set("removeAttribute", func(call goja.FunctionCall) goja.Value {
		doc.RemoveAttribute(n, call.Argument(0).String())
		return goja.Undefined()
	})
	r.listenOn(obj, n)

	r.accessor(obj, "data", func() goja.Value {
		return r.vm.ToValue(n.Data)
	}, func(v goja.Value) {
		doc.SetText(n, v.String())
	})
	r.accessor(obj, "value", func() goja.Value {
		v, _ := dom.Attribute(n, "value")
		return r.vm.ToValue(v)
	}, func(v goja.Value) {
		doc.SetAttribute(n, "value", v.String())
	})
	r.accessor(obj, "checked", func() goja.Value {
		_, ok := dom.Attribute(n, "checked")
		return r.vm.ToValue(ok)
	}, func(v goja.Value) {
		if v.ToBoolean() {
			doc.SetAttribute(n, "checked", "")
		} else {
			doc.RemoveAttribute(n, "checked")
		}
	})
	return obj
}

func (r *Runtime) accessor(obj *goja.Object, name string, get func() goja.Value, set func(goja.Value)) {
	getter := r.vm.ToValue(func(goja.FunctionCall) goja.Value {
		return get()
	})
	setter := r.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		set(call.Argument(0))
		return goja.Undefined()
	})
	if err := obj.DefineAccessorProperty(name, getter, setter, goja.FLAG_TRUE, goja.FLAG_TRUE); err != nil {
		log.Errorf("accessor %s: %s", name, err)
	}
}

// listenOn gives obj addEventListener and removeEventListener for the
// events of n. A nil n is the window.
func (r *Runtime) listenOn(obj *goja.Object, n *html.Node) {
	obj.Set("addEventListener", func(call goja.FunctionCall) goja.Value {
		if _, ok := goja.AssertFunction(call.Argument(1)); !ok {
			return goja.Undefined()
		}
		if r.listeners[n] == nil {
			r.listeners[n] = map[string][]goja.Value{}
		}
		event := call.Argument(0).String()
		r.listeners[n][event] = append(r.listeners[n][event], call.Argument(1))
		return goja.Undefined()
	})
	obj.Set("removeEventListener", func(call goja.FunctionCall) goja.Value {
		event := call.Argument(0).String()
		list := r.listeners[n][event]
		for i, fn := range list {
			if fn.StrictEquals(call.Argument(1)) {
				r.listeners[n][event] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
		return goja.Undefined()
	})
}

// Listeners returns the number of listeners for event on n. A nil n is
// the window.
func (r *Runtime) Listeners(n *html.Node, event string) int {
	return len(r.listeners[n][event])
}

// Dispatch calls the listeners for event on n with an event object
// holding detail, its type and its target. A nil n is the window. It
// returns the number of listeners called.
func (r *Runtime) Dispatch(n *html.Node, event string, detail map[string]interface{}) int {
	ev := r.vm.NewObject()
	for k, v := range detail {
		ev.Set(k, v)
	}
	ev.Set("type", event)
	if n != nil {
		ev.Set("target", r.node(n))
	} else {
		ev.Set("target", r.window)
	}

	list := append([]goja.Value(nil), r.listeners[n][event]...)
	for _, v := range list {
		fn, _ := goja.AssertFunction(v)
		if _, err := fn(goja.Undefined(), ev); err != nil {
			log.Errorf("%s listener: %s", event, err)
		}
	}
	return len(list)
}
