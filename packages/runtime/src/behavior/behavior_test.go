package behavior_test

import (
	"context"
	"testing"

	"wick-go/packages/compiler/src/component"
	"wick-go/packages/compiler/src/config"
	"wick-go/packages/core"
	"wick-go/packages/runtime/src/behavior"
	"wick-go/packages/runtime/src/dom"
	"wick-go/packages/runtime/src/scope"
)

func mount(t *testing.T, files map[string]string, entry string, opts ...behavior.Option) (*behavior.Runtime, *scope.Instance) {
	t.Helper()
	ctx := component.NewContext(config.NewCompilerConfig(), component.NewMemoryResolver(files))
	c, err := ctx.Compile(entry)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, dep := range append([]*component.Component{c}, c.Dependencies()...) {
		if dep.HasErrors() {
			t.Fatalf("Unexpected errors in %s: %v", dep.Path, dep.Errors)
		}
	}

	g := scope.NewGraph(nil, nil)
	r, err := behavior.New(g, opts...)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	class, err := r.Load(context.Background(), c)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	inst := scope.NewInstance(g, class, nil)
	g.Scheduler.RunAll()
	return r, inst
}

func expectRender(t *testing.T, inst *scope.Instance, expected string) {
	t.Helper()
	if got := dom.Render(inst.Root); got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestRuntime(t *testing.T) {
	t.Run("should render a component and pass values to its import", func(t *testing.T) {
		r, inst := mount(t, map[string]string{
			"/app/main.wick": `<script>
import Card from "./card.wick";
let title = "Hello";
</script>
<div><h1>${title}</h1><card export="title"></card></div>`,
			"/app/card.wick": `<script>
import { title } from "@parent";
</script>
<p>${title}</p>`,
		}, "/app/main.wick")
		expectRender(t, inst, "<div><h1>Hello</h1><p>Hello</p></div>")

		inst.Update(map[string]interface{}{"title": "World"}, core.UpdateFlagNone, false)
		expectRender(t, inst, "<div><h1>Hello</h1><p>Hello</p></div>")
		r.Graph.Scheduler.RunAll()
		expectRender(t, inst, "<div><h1>World</h1><p>World</p></div>")
	})

	t.Run("should run event handlers and remove them on teardown", func(t *testing.T) {
		r, inst := mount(t, map[string]string{
			"/counter.wick": `<script>
let count = 0;
function inc() { count++; }
</script>
<div><button onclick="${inc}">${count}</button></div>`,
		}, "/counter.wick")
		expectRender(t, inst, "<div><button>0</button></div>")

		button := inst.Elements[1]
		if n := r.Dispatch(button, "click", nil); n != 1 {
			t.Fatalf("Expected 1 listener, got %d", n)
		}
		r.Dispatch(button, "click", nil)
		expectRender(t, inst, "<div><button>2</button></div>")
		if v, _ := inst.Value("count"); v != int64(2) {
			t.Errorf("Expected 2, got %v", v)
		}

		inst.Destructor()
		if n := r.Listeners(button, "click"); n != 0 {
			t.Errorf("Expected no listeners after teardown, got %d", n)
		}
	})

	t.Run("should feed containers from script data", func(t *testing.T) {
		r, inst := mount(t, map[string]string{
			"/app/list.wick": `<script>
import Row from "./row.wick";
let items = [{name: "b"}, {name: "a"}, {name: "c"}];
let max = 2;
let byName = (x, y) => x.name < y.name ? -1 : 1;
</script>
<div><container data="${items}" limit="${max}" sort="${byName}"><row></row></container></div>`,
			"/app/row.wick": `<script>
import { name } from "@model";
</script>
<span>${name}</span>`,
		}, "/app/list.wick")
		expectRender(t, inst, "<div><container><span>a</span><span>b</span></container></div>")

		inst.Update(map[string]interface{}{"max": 3}, core.UpdateFlagNone, false)
		r.Graph.Scheduler.RunAll()
		expectRender(t, inst, "<div><container><span>a</span><span>b</span><span>c</span></container></div>")
	})

	t.Run("should resolve api values", func(t *testing.T) {
		_, inst := mount(t, map[string]string{
			"/greet.wick": `<script>
import { greeting } from "@api";
</script>
<p>${greeting}</p>`,
		}, "/greet.wick", behavior.WithAPI(map[string]interface{}{"greeting": "hi"}))
		expectRender(t, inst, "<p>hi</p>")
	})

	t.Run("should load each component once", func(t *testing.T) {
		ctx := component.NewContext(config.NewCompilerConfig(), component.NewMemoryResolver(map[string]string{
			"/x.wick": `<div></div>`,
		}))
		c, err := ctx.Compile("/x.wick")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		r, err := behavior.New(scope.NewGraph(nil, nil))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		a, err := r.Load(context.Background(), c)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		b, _ := r.Load(context.Background(), c)
		if a != b {
			t.Error("Expected the same class for repeated loads")
		}
		if a.Name != c.ClassName {
			t.Errorf("Expected %q, got %q", c.ClassName, a.Name)
		}
	})
}
