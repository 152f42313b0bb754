package behavior

import (
	"strconv"
	"strings"

	"github.com/dop251/goja"

	"wick-go/packages/core"
)

func isNothing(v goja.Value) bool {
	return v == nil || goja.IsUndefined(v) || goja.IsNull(v)
}

// fromJS converts a script value for storage outside the VM.
func fromJS(v goja.Value) interface{} {
	if isNothing(v) {
		return nil
	}
	if obj, ok := v.(*goja.Object); ok {
		return obj
	}
	return v.Export()
}

func (r *Runtime) toJS(value interface{}) goja.Value {
	switch v := value.(type) {
	case nil:
		return goja.Undefined()
	case goja.Value:
		return v
	}
	return r.vm.ToValue(value)
}

// record converts the own properties of an object.
func (r *Runtime) record(v goja.Value) map[string]interface{} {
	out := map[string]interface{}{}
	obj, ok := v.(*goja.Object)
	if !ok {
		return out
	}
	for _, key := range obj.Keys() {
		out[key] = fromJS(obj.Get(key))
	}
	return out
}

// array returns the elements of an array-like value.
func (r *Runtime) array(v goja.Value) []goja.Value {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil
	}
	n := int(obj.Get("length").ToInteger())
	out := make([]goja.Value, n)
	for i := range out {
		out[i] = obj.Get(strconv.Itoa(i))
	}
	return out
}

func (r *Runtime) lookup(v goja.Value) core.LookupTable {
	table := core.LookupTable{}
	if obj, ok := v.(*goja.Object); ok {
		for _, name := range obj.Keys() {
			table[name] = core.Packed(uint32(obj.Get(name).ToInteger()))
		}
	}
	return table
}

// template decodes the static template table: text nodes are strings,
// elements are `{t, k, a, c}` objects.
func (r *Runtime) template(v goja.Value) *core.TemplateNode {
	if isNothing(v) {
		return nil
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return core.Text(v.String())
	}
	n := &core.TemplateNode{Tag: obj.Get("t").String()}
	if k := obj.Get("k"); !isNothing(k) {
		switch k.ToInteger() {
		case 1:
			n.Component = n.Tag
		case 2:
			n.Container = true
		}
	}
	if attrs, ok := obj.Get("a").(*goja.Object); ok {
		for _, name := range attrs.Keys() {
			n.Attrs = append(n.Attrs, core.TemplateAttr{Name: name, Value: attrs.Get(name).String()})
		}
	}
	for _, child := range r.array(obj.Get("c")) {
		n.Children = append(n.Children, r.template(child))
	}
	return n
}

// templates decodes the container table: the template tags of each
// container.
func (r *Runtime) templates(v goja.Value) [][]string {
	var out [][]string
	for _, ct := range r.array(v) {
		var tags []string
		for _, tag := range r.array(ct) {
			tags = append(tags, tag.String())
		}
		out = append(out, tags)
	}
	return out
}

// updateMethods maps class indexes to the original update methods.
func updateMethods(lfu []goja.Value) []string {
	out := make([]string, len(lfu))
	for i, v := range lfu {
		if isNothing(v) {
			continue
		}
		name := v.String()
		if _, err := strconv.Atoi(strings.TrimPrefix(name, "u")); err == nil && strings.HasPrefix(name, "u") {
			out[i] = "$" + name
		}
	}
	return out
}
