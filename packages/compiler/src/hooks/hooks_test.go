package hooks_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"wick-go/packages/compiler/src/binding"
	"wick-go/packages/compiler/src/config"
	"wick-go/packages/compiler/src/expression_parser"
	"wick-go/packages/compiler/src/hooks"
	"wick-go/packages/compiler/src/ml_parser"
	"wick-go/packages/compiler/src/output"
	"wick-go/packages/compiler/src/util"
	"wick-go/packages/core"
)

type fixture struct {
	root       *binding.Frame
	ctx        *hooks.Context
	extraction *hooks.Extraction
	errs       *util.ErrorList
}

func extract(t *testing.T, script, markup string) *fixture {
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
	if len(tree.Errors) > 0 {
		t.Fatalf("Unexpected markup errors: %v", tree.Errors)
	}
	tags := map[string]bool{}
	for _, c := range root.Components {
		tags[c.Tag] = true
	}
	ml_parser.MarkComponents(tree.RootNodes, tags)
	var template *ml_parser.Element
	for _, node := range tree.RootNodes {
		if el, ok := node.(*ml_parser.Element); ok {
			template = el
			break
		}
	}

	f := &fixture{root: root, errs: &util.ErrorList{}}
	f.ctx = hooks.NewContext(root, cfg, f.errs)
	extractor := hooks.NewExtractor(util.NewParseSourceFile(markup, "test.wick"), root, cfg, f.errs)
	f.extraction = extractor.Extract(template, f.ctx)
	if f.errs.HasErrors() {
		t.Fatalf("Unexpected extraction errors: %v", *f.errs)
	}
	return f
}

func (f *fixture) process() ([]*hooks.ProcessedHook, *hooks.Defaults) {
	return hooks.ProcessAll(f.ctx, hooks.DefaultRegistry(), f.extraction.Hooks)
}

type kindRow struct {
	Selector string
	Kind     string
}

func kindsOf(list []*hooks.IntermediateHook) []kindRow {
	var out []kindRow
	for _, h := range list {
		out = append(out, kindRow{h.Selector, h.Kind.String()})
	}
	return out
}

func source(stmts []output.OutputStatement) string {
	return output.EmitStatements(stmts)
}

func TestSortProcessors(t *testing.T) {
	t.Run("should order by descending priority and keep ties stable", func(t *testing.T) {
		list := []*hooks.Processor{
			{Name: "a", Priority: 0},
			{Name: "b", Priority: 10},
			{Name: "c", Priority: hooks.CatchAllPriority},
			{Name: "d", Priority: 10},
			{Name: "e", Priority: 0},
			{Name: "f", Priority: 100},
		}
		hooks.SortProcessors(list)
		var names []string
		for _, p := range list {
			names = append(names, p.Name)
		}
		expected := []string{"f", "b", "d", "a", "e", "c"}
		if diff := cmp.Diff(expected, names); diff != "" {
			t.Errorf("Processor order mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should order the default registry deterministically", func(t *testing.T) {
		first := hooks.DefaultRegistry().Processors()
		second := hooks.DefaultRegistry().Processors()
		if len(first) != len(second) {
			t.Fatalf("Expected %d processors, got %d", len(first), len(second))
		}
		for i := range first {
			if first[i].Name != second[i].Name {
				t.Errorf("Expected %q at %d, got %q", first[i].Name, i, second[i].Name)
			}
		}
		if first[0].Priority != hooks.PriorityContainer {
			t.Errorf("Expected container processors first, got %q", first[0].Name)
		}
		if last := first[len(first)-1]; last.Name != "catch-all" {
			t.Errorf("Expected catch-all last, got %q", last.Name)
		}
	})
}

func TestRegistry(t *testing.T) {
	always := func(hooks.BindingKind, ml_parser.NodeType) bool { return true }
	decline := func(*hooks.Context, *hooks.IntermediateHook) *hooks.ProcessedHook { return nil }
	accept := func(*hooks.Context, *hooks.IntermediateHook) *hooks.ProcessedHook {
		return &hooks.ProcessedHook{Type: hooks.HookWrite, ElementIndex: -1}
	}

	newHook := func() (*hooks.Context, *hooks.IntermediateHook) {
		root := binding.NewRootFrame()
		frame := root.NewChild("")
		ctx := hooks.NewContext(root, config.NewCompilerConfig(), &util.ErrorList{})
		return ctx, &hooks.IntermediateHook{
			Selector:     "title",
			Kind:         hooks.KindWriteAttribute,
			Value:        []output.OutputExpression{output.Literal("x")},
			HostType:     ml_parser.HTMLElement,
			ElementIndex: 0,
			Frame:        frame,
		}
	}

	t.Run("should retry the next processor when one declines", func(t *testing.T) {
		ctx, hook := newHook()
		r := hooks.NewRegistry(
			&hooks.Processor{Name: "low", Priority: 1, CanProcess: always, Process: accept},
			&hooks.Processor{Name: "high", Priority: 2, CanProcess: always, Process: decline},
		)
		result := r.Process(ctx, hook)
		if result == nil {
			t.Fatal("Expected the hook to be processed")
		}
		if result.Priority != 1 {
			t.Errorf("Expected priority 1, got %v", result.Priority)
		}
		if result.Name != "h0" {
			t.Errorf("Expected %q, got %q", "h0", result.Name)
		}
		if result.Frame != hook.Frame {
			t.Error("Expected the hook frame to be carried over")
		}
	})

	t.Run("should not retry on the default value path", func(t *testing.T) {
		ctx, hook := newHook()
		r := hooks.NewRegistry(
			&hooks.Processor{Name: "high", Priority: 2, CanProcess: always, Process: accept},
			&hooks.Processor{Name: "low", Priority: 1, CanProcess: always, Process: accept,
				DefaultValue: func(*hooks.Context, *hooks.IntermediateHook) (string, bool) { return "x", true }},
		)
		if value, ok := r.DefaultValue(ctx, hook); ok {
			t.Errorf("Expected no default value, got %q", value)
		}
	})

	t.Run("should skip processors that cannot process the hook", func(t *testing.T) {
		ctx, hook := newHook()
		never := func(hooks.BindingKind, ml_parser.NodeType) bool { return false }
		r := hooks.NewRegistry(
			&hooks.Processor{Name: "other", Priority: 5, CanProcess: never, Process: accept,
				DefaultValue: func(*hooks.Context, *hooks.IntermediateHook) (string, bool) { return "y", true }},
			&hooks.Processor{Name: "low", Priority: 1, CanProcess: always, Process: accept,
				DefaultValue: func(*hooks.Context, *hooks.IntermediateHook) (string, bool) { return "x", true }},
		)
		value, ok := r.DefaultValue(ctx, hook)
		if !ok || value != "x" {
			t.Errorf("Expected %q, got %q", "x", value)
		}
	})

	t.Run("should drop hooks the catch-all receives", func(t *testing.T) {
		ctx, hook := newHook()
		defaults := hooks.DefaultRegistry().Processors()
		catchAll := defaults[len(defaults)-1]
		r := hooks.NewRegistry(catchAll, &hooks.Processor{Name: "declines", Priority: 1, CanProcess: always, Process: decline})
		if result := r.Process(ctx, hook); result != nil {
			t.Errorf("Expected the hook to be dropped, got %v", result.Name)
		}
	})
}

func TestExtract(t *testing.T) {
	t.Run("should classify binding points", func(t *testing.T) {
		f := extract(t, `
let a = 1;
function go() {}
`, `<div title="${a}" onclick="${go}" onkeyup_window="${go}"><input value="${a}"><input type="checkbox" checked="${a}"><p>${a} x</p><span>${go()}</span></div>`)
		expected := []kindRow{
			{"title", "write-attribute"},
			{"click", "event"},
			{"keyup", "window-event"},
			{"value", "input-value"},
			{"checked", "input-checked"},
			{"text", "text"},
			{"text", "method-call"},
		}
		if diff := cmp.Diff(expected, kindsOf(f.extraction.Hooks)); diff != "" {
			t.Errorf("Hook kinds mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should index elements and texts", func(t *testing.T) {
		f := extract(t, `let a = 1;`, `<div><p>${a}</p><b></b></div>`)
		if len(f.extraction.Nodes) != 4 {
			t.Fatalf("Expected 4 nodes, got %d", len(f.extraction.Nodes))
		}
		hook := f.extraction.Hooks[0]
		if hook.ElementIndex != 2 {
			t.Errorf("Expected text index 2, got %d", hook.ElementIndex)
		}
	})

	t.Run("should register children and containers", func(t *testing.T) {
		f := extract(t, `
import Card from "./card.wick";
import Row from "./row.wick";
let items = [];
let show = true;
`, `<div><card></card><container data="${items}" limit="3"><row use-if="${show}"></row></container><card></card></div>`)
		if len(f.extraction.Children) != 2 {
			t.Errorf("Expected 2 children, got %d", len(f.extraction.Children))
		}
		if len(f.extraction.Containers) != 1 || len(f.extraction.Containers[0].Templates) != 1 {
			t.Fatalf("Expected one container with one template, got %v", f.extraction.Containers)
		}
		expected := []kindRow{
			{"data", "container-data"},
			{"limit", "container-term"},
			{"use-if", "container-use-if"},
		}
		if diff := cmp.Diff(expected, kindsOf(f.extraction.Hooks)); diff != "" {
			t.Errorf("Hook kinds mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should split component name lists", func(t *testing.T) {
		f := extract(t, `
import Card from "./card.wick";
let a = 1;
let b;
`, `<div><card export="a, a:title" import="b:value"></card></div>`)
		expected := []kindRow{
			{"a", "export-to-child"},
			{"title", "export-to-child"},
			{"value", "import-from-child"},
		}
		if diff := cmp.Diff(expected, kindsOf(f.extraction.Hooks)); diff != "" {
			t.Errorf("Hook kinds mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should add watched frames", func(t *testing.T) {
		f := extract(t, `
let a = 1;
let b;
function $watch() { b = a * 2; }
`, `<div></div>`)
		expected := []kindRow{{"$watch", "watched-frame"}}
		if diff := cmp.Diff(expected, kindsOf(f.extraction.Hooks)); diff != "" {
			t.Errorf("Hook kinds mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should reject nested scripts", func(t *testing.T) {
		errs := &util.ErrorList{}
		root := binding.NewRootFrame()
		cfg := config.NewCompilerConfig()
		tree := ml_parser.Parse(`<div><script>let a;</script></div>`, "test.wick", ml_parser.ParseOptions{})
		template := tree.RootNodes[0].(*ml_parser.Element)
		hooks.NewExtractor(util.NewParseSourceFile("", "test.wick"), root, cfg, errs).Extract(template, hooks.NewContext(root, cfg, errs))
		if !errs.HasErrors() {
			t.Error("Expected an error for a nested script")
		}
	})
}

func TestProcessors(t *testing.T) {
	t.Run("should write attributes", func(t *testing.T) {
		f := extract(t, `let a = 1;`, `<div title="${a}"></div>`)
		processed, _ := f.process()
		if len(processed) != 1 {
			t.Fatalf("Expected 1 hook, got %d", len(processed))
		}
		h := processed[0]
		if h.Type != hooks.HookWrite {
			t.Errorf("Expected WRITE, got %s", h.Type)
		}
		expected := "this.e0.setAttribute('title', a);"
		if result := source(h.WriteAST); result != expected {
			t.Errorf("Expected %q, got %q", expected, result)
		}
		if diff := cmp.Diff(map[string]hooks.VariableUse{"a": {}}, h.Variables); diff != "" {
			t.Errorf("Variables mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should mark member reads as object uses", func(t *testing.T) {
		f := extract(t, `let user = {};`, `<div title="${user.name}"></div>`)
		processed, _ := f.process()
		if !processed[0].Variables["user"].IsObject {
			t.Error("Expected user to be an object use")
		}
	})

	t.Run("should interpolate text", func(t *testing.T) {
		f := extract(t, `let a = 1;`, `<p>Hello ${a}!</p>`)
		processed, _ := f.process()
		expected := "this.e1.data = `Hello ${a}!`;"
		if result := source(processed[0].WriteAST); result != expected {
			t.Errorf("Expected %q, got %q", expected, result)
		}
	})

	t.Run("should fold constant values into defaults", func(t *testing.T) {
		f := extract(t, ``, `<div title="a-${'b'}" hidden="${true}">${'x'}</div>`)
		processed, defaults := f.process()
		if len(processed) != 0 {
			t.Errorf("Expected no processed hooks, got %d", len(processed))
		}
		div := f.extraction.Root
		if got := defaults.Attributes[div.Attr("title")]; got != "a-b" {
			t.Errorf("Expected %q, got %q", "a-b", got)
		}
		if got := defaults.Attributes[div.Attr("hidden")]; got != "true" {
			t.Errorf("Expected %q, got %q", "true", got)
		}
		text := div.Children[0].(*ml_parser.Text)
		if got := defaults.Texts[text]; got != "x" {
			t.Errorf("Expected %q, got %q", "x", got)
		}
	})

	t.Run("should bind local events to activated frames", func(t *testing.T) {
		f := extract(t, `let count = 0;`, `<button onclick="${() => count++}"></button>`)
		processed, _ := f.process()
		h := processed[0]
		if h.Type != hooks.HookRead {
			t.Errorf("Expected READ, got %s", h.Type)
		}
		expected := "this.e0.addEventListener('click', this.l0 = (e) => this.f0(e));"
		if result := source(h.ReadAST); result != expected {
			t.Errorf("Expected %q, got %q", expected, result)
		}
		expected = "this.e0.removeEventListener('click', this.l0);"
		if result := source(h.CleanupAST); result != expected {
			t.Errorf("Expected %q, got %q", expected, result)
		}
		methods := f.root.Methods()
		if len(methods) != 1 || len(methods[0].Statements) != 1 {
			t.Fatalf("Expected one promoted method frame, got %d", len(methods))
		}
	})

	t.Run("should call handlers stored in variables", func(t *testing.T) {
		f := extract(t, `
let count = 0;
let handler = () => { count++; };
`, `<button onclick="${handler}"></button>`)
		processed, _ := f.process()
		expected := "this.e0.addEventListener('click', this.l0 = (e) => this.f0(e));"
		if result := source(processed[0].ReadAST); result != expected {
			t.Errorf("Expected %q, got %q", expected, result)
		}
		methods := f.root.Methods()
		if len(methods) != 1 {
			t.Fatalf("Expected one promoted method frame, got %d", len(methods))
		}
		expected = "handler(e);"
		if result := source(methods[0].Statements); result != expected {
			t.Errorf("Expected %q, got %q", expected, result)
		}
	})

	t.Run("should dispatch window events to declared methods", func(t *testing.T) {
		f := extract(t, `function resize() {}`, `<div onresize_window="${resize}"></div>`)
		processed, _ := f.process()
		expected := "window.addEventListener('resize', this.l0 = (e) => this.f0(e));"
		if result := source(processed[0].ReadAST); result != expected {
			t.Errorf("Expected %q, got %q", expected, result)
		}
		if name := f.root.Methods()[0].Name; name != "resize" {
			t.Errorf("Expected %q, got %q", "resize", name)
		}
	})

	t.Run("should bind values both ways", func(t *testing.T) {
		f := extract(t, `let name = "";`, `<input value="${name}">`)
		processed, _ := f.process()
		h := processed[0]
		if h.Type != hooks.HookReadWrite {
			t.Errorf("Expected READ_WRITE, got %s", h.Type)
		}
		expected := "this.e0.value = name;"
		if result := source(h.WriteAST); result != expected {
			t.Errorf("Expected %q, got %q", expected, result)
		}
		expected = "this.e0.addEventListener('input', this.l0 = () => name = this.e0.value);"
		if result := source(h.ReadAST); result != expected {
			t.Errorf("Expected %q, got %q", expected, result)
		}
		if !f.root.Registry().Get("name").IsWritten() {
			t.Error("Expected name to be written")
		}
	})

	t.Run("should listen for change on checkboxes", func(t *testing.T) {
		f := extract(t, `let on = false;`, `<input type="checkbox" checked="${on}">`)
		processed, _ := f.process()
		if result := source(processed[0].ReadAST); !strings.Contains(result, "'change'") {
			t.Errorf("Expected a change listener, got %q", result)
		}
	})

	t.Run("should downgrade unassignable values with a warning", func(t *testing.T) {
		f := extract(t, `let a = 1;`, `<input value="${a + 1}">`)
		processed, _ := f.process()
		if processed[0].Type != hooks.HookWrite {
			t.Errorf("Expected WRITE, got %s", processed[0].Type)
		}
		if len(*f.errs) != 1 || f.errs.HasErrors() {
			t.Errorf("Expected a single warning, got %v", *f.errs)
		}
	})

	t.Run("should fall back to attribute writes for file inputs", func(t *testing.T) {
		f := extract(t, `let path = "";`, `<input type="file" value="${path}">`)
		processed, _ := f.process()
		expected := "this.e0.setAttribute('value', path);"
		if result := source(processed[0].WriteAST); result != expected {
			t.Errorf("Expected %q, got %q", expected, result)
		}
		if processed[0].Priority != hooks.PriorityWriteAttribute {
			t.Errorf("Expected write-attribute priority, got %v", processed[0].Priority)
		}
	})

	t.Run("should call methods", func(t *testing.T) {
		f := extract(t, `
function label() { return "x"; }
async function load() { return 1; }
`, `<p title="${label()}">${load()}</p>`)
		processed, _ := f.process()
		if len(processed) != 2 {
			t.Fatalf("Expected 2 hooks, got %d", len(processed))
		}
		expected := "this.e0.setAttribute('title', label());"
		if result := source(processed[0].WriteAST); result != expected {
			t.Errorf("Expected %q, got %q", expected, result)
		}
		expected = "load().then((v) => this.e1.data = v);"
		if result := source(processed[1].WriteAST); result != expected {
			t.Errorf("Expected %q, got %q", expected, result)
		}
	})

	t.Run("should run watched frames", func(t *testing.T) {
		f := extract(t, `
let a = 1;
let b;
function $watch() { b = a * 2; }
`, `<div></div>`)
		processed, _ := f.process()
		h := processed[0]
		expected := "this.f0();"
		if result := source(h.WriteAST); result != expected {
			t.Errorf("Expected %q, got %q", expected, result)
		}
		deps := h.Dependencies()
		if len(deps) != 1 || deps[0].InternalName != "a" {
			t.Errorf("Expected a single dependency on a, got %v", deps)
		}
	})

	t.Run("should exchange values with children", func(t *testing.T) {
		f := extract(t, `
import Card from "./card.wick";
let a = 1;
let b;
`, `<div><card export="a:title" import="b:value"></card></div>`)
		processed, _ := f.process()
		if len(processed) != 2 {
			t.Fatalf("Expected 2 hooks, got %d", len(processed))
		}
		expected := "this.ch[0].update({'title': a}, 1);"
		if result := source(processed[0].WriteAST); result != expected {
			t.Errorf("Expected %q, got %q", expected, result)
		}
		expected = "this.ci(0, 'value', 1);"
		if result := source(processed[1].ReadAST); result != expected {
			t.Errorf("Expected %q, got %q", expected, result)
		}
		if !f.root.Registry().Get("b").Flags.Has(core.VariableFlagWritten) {
			t.Error("Expected b to be written")
		}
	})

	t.Run("should drive containers", func(t *testing.T) {
		f := extract(t, `
import Row from "./row.wick";
let items = [];
let show = true;
`, `<div><container data="${items}" limit="3"><row use-if="${show}"></row></container></div>`)
		processed, _ := f.process()
		var got []string
		for _, h := range processed {
			got = append(got, source(h.WriteAST))
		}
		expected := []string{
			"this.ct[0].sd(items);",
			"this.ct[0].st('limit', '3');",
			"this.ct[0].su(0, show);",
		}
		if diff := cmp.Diff(expected, got); diff != "" {
			t.Errorf("Container code mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestConstantString(t *testing.T) {
	cases := []struct {
		expr     output.OutputExpression
		expected string
		ok       bool
	}{
		{output.Literal("a"), "a", true},
		{output.Literal(nil), "null", true},
		{output.Literal(false), "false", true},
		{output.Literal(3), "3", true},
		{output.Variable("a"), "", false},
	}
	for _, c := range cases {
		got, ok := hooks.ConstantString(c.expr)
		if got != c.expected || ok != c.ok {
			t.Errorf("Expected (%q, %v), got (%q, %v)", c.expected, c.ok, got, ok)
		}
	}
}
