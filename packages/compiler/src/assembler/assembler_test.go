package assembler_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"wick-go/packages/compiler/src/assembler"
	"wick-go/packages/compiler/src/binding"
	"wick-go/packages/compiler/src/config"
	"wick-go/packages/compiler/src/expression_parser"
	"wick-go/packages/compiler/src/hooks"
	"wick-go/packages/compiler/src/ml_parser"
	"wick-go/packages/compiler/src/output"
	"wick-go/packages/compiler/src/util"
	"wick-go/packages/core"
)

func assemble(t *testing.T, script, markup string) *assembler.CompiledComponentClass {
	t.Helper()
	cfg := config.NewCompilerConfig()
	parsed := expression_parser.ParseScript(util.NewParseSourceFile(script, "test.wick"), script, 0)
	if len(parsed.Errors) > 0 {
		t.Fatalf("Unexpected parse errors: %v", parsed.Errors)
	}
	root, errs := binding.Build(parsed, cfg)
	if errs.HasErrors() {
		t.Fatalf("Unexpected binding errors: %v", errs)
	}

	tree := ml_parser.Parse(markup, "test.wick", ml_parser.ParseOptions{})
	tags := map[string]bool{}
	for _, c := range root.Components {
		tags[c.Tag] = true
	}
	ml_parser.MarkComponents(tree.RootNodes, tags)
	template := tree.RootNodes[0].(*ml_parser.Element)

	ctx := hooks.NewContext(root, cfg, &errs)
	extraction := hooks.NewExtractor(util.NewParseSourceFile(markup, "test.wick"), root, cfg, &errs).Extract(template, ctx)
	processed, defaults := hooks.ProcessAll(ctx, hooks.DefaultRegistry(), extraction.Hooks)
	if errs.HasErrors() {
		t.Fatalf("Unexpected errors: %v", errs)
	}

	class, errs := assembler.Assemble(assembler.Input{
		Name:       "Test",
		Root:       root,
		Extraction: extraction,
		Hooks:      processed,
		Defaults:   defaults,
	})
	if errs.HasErrors() {
		t.Fatalf("Unexpected assembly errors: %v", errs)
	}
	return class
}

func method(t *testing.T, class *assembler.CompiledComponentClass, name string) string {
	t.Helper()
	m := class.Method(name)
	if m == nil {
		t.Fatalf("Expected method %s", name)
	}
	return m.Source()
}

func expectContains(t *testing.T, source, fragment string) {
	t.Helper()
	if !strings.Contains(source, fragment) {
		t.Errorf("Expected %q to contain %q", source, fragment)
	}
}

func TestAssemble(t *testing.T) {
	t.Run("should share one dedicated method between dependencies", func(t *testing.T) {
		class := assemble(t, `
let a = 1;
let b = 2;
`, `<div title="${a + b}"></div>`)
		if len(class.Dedicated) != 1 {
			t.Fatalf("Expected 1 dedicated method, got %d", len(class.Dedicated))
		}
		name := class.Dedicated[0].Name
		for _, u := range []string{"u0", "u1"} {
			if n := strings.Count(method(t, class, u), "this."+name+"();"); n != 1 {
				t.Errorf("Expected %s to call %s once, got %d", u, name, n)
			}
		}
		if diff := cmp.Diff([]string{"u0", "u1", name}, class.FunctionTable); diff != "" {
			t.Errorf("Function table mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{name}, class.Record(0).Dispatch); diff != "" {
			t.Errorf("Dispatch mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should inline single dependency writes", func(t *testing.T) {
		class := assemble(t, `let a = 1;`, `<div title="${a}"></div>`)
		if len(class.Dedicated) != 0 {
			t.Errorf("Expected no dedicated methods, got %d", len(class.Dedicated))
		}
		expectContains(t, method(t, class, "u0"), "this.e0.setAttribute('title', this[0]);")
	})

	t.Run("should run independent writes at construction", func(t *testing.T) {
		class := assemble(t, ``, `<div title="${Math.random()}"></div>`)
		init := method(t, class, "init")
		expectContains(t, init, "this.e0 = this.elu[0];")
		expectContains(t, init, "this.e0.setAttribute('title', Math.random());")
	})

	t.Run("should look up elements once", func(t *testing.T) {
		class := assemble(t, `
let a = 1;
let b = 2;
`, `<div title="${a}" lang="${b}"></div>`)
		if n := strings.Count(method(t, class, "init"), "this.e0 = this.elu[0];"); n != 1 {
			t.Errorf("Expected a single lookup, got %d", n)
		}
	})

	t.Run("should export to the parent unless the value came from it", func(t *testing.T) {
		class := assemble(t, `
let a = 1;
export { a as total };
`, `<div></div>`)
		u := method(t, class, "u0")
		expectContains(t, u, "(f & 1) == 0")
		expectContains(t, u, "this.ep('total', v);")
		if _, ok := class.LookupTable["total"]; !ok {
			t.Error("Expected total in the lookup table")
		}
	})

	t.Run("should route writes through update methods", func(t *testing.T) {
		class := assemble(t, `
let count = 0;
let user = {};
function inc() { count++; count += 2; }
function rename() { user.name = "x"; }
`, `<div><button onclick="${inc}">${count}</button><button onclick="${rename}"></button></div>`)
		inc := method(t, class, "f0")
		expectContains(t, inc, "this.u0(this[0] + 1);")
		expectContains(t, inc, "this.u0(this[0] + 2);")
		expectContains(t, method(t, class, "f1"), "this[1].name = 'x', this.u1(this[1]);")
	})

	t.Run("should not create update methods for unassigned variables", func(t *testing.T) {
		class := assemble(t, `
let x;
let a = 1;
`, `<div title="${x}">${a}</div>`)
		if class.Method("u0") != nil {
			t.Errorf("Expected no update method for x, got %q", class.Method("u0").Source())
		}
		if class.FunctionTable[0] != "" {
			t.Errorf("Expected an empty function slot for x, got %q", class.FunctionTable[0])
		}
		expectContains(t, method(t, class, "init"), "this.e0.setAttribute('title', this[0]);")
		method(t, class, "u1")
	})

	t.Run("should bind methods used as values", func(t *testing.T) {
		class := assemble(t, `
function go() {}
let h = go;
`, `<div></div>`)
		expectContains(t, method(t, class, "init"), "this.u1(this.f0.bind(this));")
	})

	t.Run("should move statements after an await to async init", func(t *testing.T) {
		class := assemble(t, `
let a = 1;
await Promise.resolve();
let b = 2;
`, `<div></div>`)
		init := method(t, class, "init")
		expectContains(t, init, "this.u0(1);")
		if strings.Contains(init, "this.u1(2);") {
			t.Errorf("Expected b to be set in async init, got %q", init)
		}
		async := method(t, class, "async_init")
		expectContains(t, async, "await Promise.resolve();")
		expectContains(t, async, "this.u1(2);")
	})

	t.Run("should resolve direct access variables at construction", func(t *testing.T) {
		class := assemble(t, `
import { router } from "@api";
import { theme } from "@globals";
import fmt from "./fmt.js";
`, `<div></div>`)
		init := method(t, class, "init")
		expectContains(t, init, "this[0] = this.api.router;")
		expectContains(t, init, "this[1] = globalThis.theme;")
		expectContains(t, init, "this.u2(this.md('./fmt.js').default);")
	})

	t.Run("should clean up in reverse order", func(t *testing.T) {
		class := assemble(t, `function go() {}`, `<div><a onclick="${go}"></a><b onclick="${go}"></b></div>`)
		terminate := method(t, class, "terminate")
		first := strings.Index(terminate, "this.l1")
		second := strings.Index(terminate, "this.l0")
		if first < 0 || second < 0 || first > second {
			t.Errorf("Expected l1 to be removed before l0, got %q", terminate)
		}
	})

	t.Run("should build the static template", func(t *testing.T) {
		class := assemble(t, `
import Card from "./card.wick";
function go() {}
`, `<div class="x" title="${'y'}" onclick="${go}"><p>${'z'}</p><card></card><container></container></div>`)
		expected := core.Element("div",
			[]core.TemplateAttr{{Name: "class", Value: "x"}, {Name: "title", Value: "y"}},
			core.Element("p", nil, core.Text("z")),
			&core.TemplateNode{Tag: "card", Component: "card"},
			&core.TemplateNode{Tag: "container", Container: true},
		)
		if diff := cmp.Diff(expected, class.Template); diff != "" {
			t.Errorf("Template mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"card"}, class.Children); diff != "" {
			t.Errorf("Children mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestRender(t *testing.T) {
	t.Run("should render a factory goja can compile", func(t *testing.T) {
		class := assemble(t, `
let a = 1;
let b = 2;
function inc() { a++; }
`, `<div title="${a + b}" onclick="${inc}"><p>${a}</p></div>`)
		if err := assembler.Verify(output.NewGojaRuntime(), class); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		source := assembler.Render(class)
		expectContains(t, source, "class Test extends WickRTComponent")
		if len(class.Dedicated) != 1 {
			t.Fatalf("Expected 1 dedicated method, got %d", len(class.Dedicated))
		}
		expectContains(t, source, "Test.lfu = ['u0', 'u1', null, '"+class.Dedicated[0].Name+"'];")
	})

	t.Run("should propagate updates when executed", func(t *testing.T) {
		class := assemble(t, `
let a = 1;
let b = 2;
`, `<div title="${a + b}"></div>`)
		rt := output.NewGojaRuntime()
		program := `
const calls = [];
class WickRTComponent {
  constructor() { this.elu = [{ setAttribute: (k, v) => calls.push(k + "=" + v) }]; }
  ep() {}
}
const factory = ` + strings.TrimSuffix(assembler.Render(class), ";") + `;
const C = factory(WickRTComponent);
const c = new C();
c.init();
c.u0(5, 0);
calls.join(",");
`
		v, err := rt.VM().RunString(program)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		expected := "title=3,title=7"
		if got := v.String(); got != expected {
			t.Errorf("Expected %q, got %q", expected, got)
		}
	})

	t.Run("should wait for every dependency before running a shared hook", func(t *testing.T) {
		class := assemble(t, `
let first = "Ada";
let last = "Lovelace";
`, `<div title="${first + ' ' + last}"></div>`)
		rt := output.NewGojaRuntime()
		program := `
const calls = [];
class WickRTComponent {
  constructor() { this.elu = [{ setAttribute: (k, v) => calls.push(k + "=" + v) }]; }
  ep() {}
}
const factory = ` + strings.TrimSuffix(assembler.Render(class), ";") + `;
const c = new (factory(WickRTComponent))();
c.init();
calls.join(",");
`
		v, err := rt.VM().RunString(program)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		expected := "title=Ada Lovelace"
		if got := v.String(); got != expected {
			t.Errorf("Expected %q, got %q", expected, got)
		}
		expectContains(t, method(t, class, class.Dedicated[0].Name), "if ((this[0] === undefined) || (this[1] === undefined)) { return; }")
	})

	t.Run("should invoke handler values on events", func(t *testing.T) {
		class := assemble(t, `
let count = 0;
let handler = () => { count++; };
`, `<button onclick="${handler}"></button>`)
		expectContains(t, method(t, class, "f0"), "this[1](e);")
		rt := output.NewGojaRuntime()
		program := `
let listener;
class WickRTComponent {
  constructor() { this.elu = [{ addEventListener: (k, fn) => { listener = fn; }, removeEventListener() {} }]; }
  ep() {}
}
const factory = ` + strings.TrimSuffix(assembler.Render(class), ";") + `;
const c = new (factory(WickRTComponent))();
c.init();
listener({});
listener({});
c[0];
`
		v, err := rt.VM().RunString(program)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if got := v.ToInteger(); got != 2 {
			t.Errorf("Expected 2, got %d", got)
		}
	})

	t.Run("should render a source map", func(t *testing.T) {
		class := assemble(t, `let a = 1;`, `<div title="${a}"></div>`)
		source, sm, err := assembler.RenderWithSourceMap(class, "test.js")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if source != assembler.Render(class) {
			t.Error("Expected the same source with and without a source map")
		}
		if sm == nil {
			t.Error("Expected a source map")
		}
	})
}

func TestManifest(t *testing.T) {
	t.Run("should describe variables and methods", func(t *testing.T) {
		class := assemble(t, `
let a = 1;
let b = 2;
export { a };
`, `<div title="${a + b}"></div>`)
		data, err := class.Manifest().YAML()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		m, err := assembler.ParseManifest(data)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(m.Variables) != 2 {
			t.Fatalf("Expected 2 variables, got %d", len(m.Variables))
		}
		if m.Variables[0].Flags != "WRITTEN|ALLOW_EXPORT_TO_PARENT" {
			t.Errorf("Expected %q, got %q", "WRITTEN|ALLOW_EXPORT_TO_PARENT", m.Variables[0].Flags)
		}
		if diff := cmp.Diff([]string{class.Dedicated[0].Name}, m.Variables[1].Dispatch); diff != "" {
			t.Errorf("Dispatch mismatch (-want +got):\n%s", diff)
		}
	})
}
