package binding_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"wick-go/packages/compiler/src/binding"
	"wick-go/packages/compiler/src/config"
	"wick-go/packages/compiler/src/expression_parser"
	"wick-go/packages/compiler/src/output"
	"wick-go/packages/compiler/src/util"
	"wick-go/packages/core"
)

func build(t *testing.T, source string) *binding.Frame {
	t.Helper()
	root, errs := buildWithErrors(t, source)
	if len(errs) > 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	return root
}

func buildWithErrors(t *testing.T, source string) (*binding.Frame, util.ErrorList) {
	t.Helper()
	file := util.NewParseSourceFile(source, "test.wick")
	script := expression_parser.ParseScript(file, source, 0)
	if len(script.Errors) > 0 {
		t.Fatalf("Unexpected parse errors: %v", script.Errors)
	}
	return binding.Build(script, config.NewCompilerConfig())
}

type varRow struct {
	Name     string
	External string
	Type     core.BindingType
	Flags    core.VariableFlag
	Index    int
}

func rows(root *binding.Frame) []varRow {
	var out []varRow
	for _, v := range root.Registry().Variables() {
		out = append(out, varRow{v.InternalName, v.ExternalName, v.Type, v.Flags, v.ClassIndex})
	}
	return out
}

func TestBuild(t *testing.T) {
	t.Run("should classify declarations", func(t *testing.T) {
		root := build(t, `
import { name, age as years } from "@model";
import { title } from "@parent";
import { router } from "@api";
import { theme } from "@globals";
import moment from "./moment.js";
import { format } from "./fmt.js";
import UserCard from "./user-card.wick";
let count = 0;
let pending;
function inc() { count++; }
export { count as total };
`)
		expected := []varRow{
			{"name", "name", core.BindingTypeModel, core.VariableFlagFromModel, 0},
			{"years", "age", core.BindingTypeModel, core.VariableFlagFromModel, 1},
			{"title", "title", core.BindingTypeParent, core.VariableFlagFromParent, 2},
			{"router", "router", core.BindingTypeAPI, core.VariableFlagDirectAccess, 3},
			{"theme", "theme", core.BindingTypeGlobal, core.VariableFlagDirectAccess, 4},
			{"moment", "moment", core.BindingTypeModule, core.VariableFlagWritten, 5},
			{"format", "format", core.BindingTypeModuleMember, core.VariableFlagWritten, 6},
			{"count", "total", core.BindingTypeInternal, core.VariableFlagWritten | core.VariableFlagAllowExportToParent, 7},
			{"pending", "pending", core.BindingTypeInternal, 0, 8},
			{"inc", "inc", core.BindingTypeMethod, 0, 9},
		}
		if diff := cmp.Diff(expected, rows(root)); diff != "" {
			t.Errorf("variables mismatch (-want +got):\n%s", diff)
		}
		if len(root.Components) != 1 || root.Components[0].Tag != "user-card" {
			t.Errorf("Expected user-card component, got %+v", root.Components)
		}
		if len(root.Statements) != 2 {
			t.Errorf("Expected 2 top level statements, got %d", len(root.Statements))
		}
	})

	t.Run("should mark assigned variables as written", func(t *testing.T) {
		root := build(t, "let a;\nlet b;\nlet c = {};\nfunction go() { a = 1; c.x = 2; }")
		reg := root.Registry()
		if !reg.Get("a").IsWritten() {
			t.Error("Expected a to be written")
		}
		if reg.Get("b").IsWritten() {
			t.Error("Expected b not to be written")
		}
		if !reg.Get("c").IsWritten() {
			t.Error("Expected member write to mark c as written")
		}
	})

	t.Run("should count every syntactic reference once", func(t *testing.T) {
		root := build(t, "let a = 1;\nlet b = a + a;\nfunction go(x) { return a + b + x; }")
		reg := root.Registry()
		counts := map[string]int{"a": reg.Get("a").RefCount, "b": reg.Get("b").RefCount}
		expected := map[string]int{"a": 3, "b": 1}
		if diff := cmp.Diff(expected, counts); diff != "" {
			t.Errorf("ref counts mismatch (-want +got):\n%s", diff)
		}
		for _, frame := range root.Frames() {
			if errs := frame.Resolve(config.NewCompilerConfig()); errs != nil {
				t.Errorf("Expected no errors on second resolve, got %v", errs)
			}
		}
		if reg.Get("a").RefCount != 3 {
			t.Errorf("Expected resolving again to keep ref count 3, got %d", reg.Get("a").RefCount)
		}
	})

	t.Run("should shadow binding variables with locals", func(t *testing.T) {
		root := build(t, "let item = 1;\nfunction go(list) { for (const item of list) { use(item); } }\nfunction use(v) {}")
		if got := root.Registry().Get("item").RefCount; got != 0 {
			t.Errorf("Expected 0 references, got %d", got)
		}
	})

	t.Run("should activate referenced method frames only", func(t *testing.T) {
		root := build(t, "function a() { b(); }\nfunction b() {}\nfunction c() {}")
		var names []string
		for _, frame := range root.Methods() {
			names = append(names, frame.Name)
		}
		if diff := cmp.Diff([]string{"b"}, names); diff != "" {
			t.Errorf("activated frames mismatch (-want +got):\n%s", diff)
		}
		if root.Registry().Get("c").Method.Index() != -1 {
			t.Error("Expected c to stay inactive")
		}
	})

	t.Run("should mark watched frames", func(t *testing.T) {
		root := build(t, "let a = 1;\nfunction $log() { console.log(a); }")
		frame := root.Registry().Get("$log").Method
		if !frame.IsWatched {
			t.Error("Expected a watched frame")
		}
		deps := frame.Dependencies()
		if len(deps) != 1 || deps[0].InternalName != "a" {
			t.Errorf("Unexpected dependencies %v", deps)
		}
	})

	t.Run("should collect indirect dependencies through calls", func(t *testing.T) {
		root := build(t, "let a = 1;\nlet b = 2;\nfunction sum() { return a + b; }\nfunction show() { return sum() + a; }")
		frame := root.Registry().Get("show").Method
		var names []string
		for _, v := range frame.IndirectDependencies() {
			names = append(names, v.InternalName)
		}
		if diff := cmp.Diff([]string{"b"}, names); diff != "" {
			t.Errorf("indirect dependencies mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestBuildErrors(t *testing.T) {
	cases := []struct {
		name    string
		source  string
		message string
	}{
		{"should report missing binding variables", "let a = b;", "missing binding variable for `b`"},
		{"should report conflicting declarations", "import { a } from \"@model\";\nlet a = 1;", "Identifier `a` has already been declared"},
		{"should report undeclared exports", "export { nope };", "Cannot export undeclared variable `nope`"},
		{"should report exported methods", "function go() {}\nexport { go };", "Cannot export method `go`"},
		{"should report default model imports", "import m from \"@model\";", "Only named imports are allowed"},
		{"should report named component imports", "import { Card } from \"./card.wick\";", "single default import"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, errs := buildWithErrors(t, c.source)
			if len(errs) != 1 {
				t.Fatalf("Expected 1 error, got %d: %v", len(errs), errs)
			}
			if !strings.Contains(errs[0].Msg, c.message) {
				t.Errorf("Expected %q, got %q", c.message, errs[0].Msg)
			}
			if errs[0].Span == nil {
				t.Error("Expected a positioned error")
			}
		})
	}

	t.Run("should accept repeated var declarations", func(t *testing.T) {
		root := build(t, "var a;\nvar a = 2;")
		if root.Registry().Len() != 1 {
			t.Errorf("Expected 1 variable, got %d", root.Registry().Len())
		}
		if !root.Registry().Get("a").IsWritten() {
			t.Error("Expected a to be written")
		}
	})

	t.Run("should resolve configured globals", func(t *testing.T) {
		file := util.NewParseSourceFile("let a = myGlobal;", "test.wick")
		script := expression_parser.ParseScript(file, file.Content, 0)
		_, errs := binding.Build(script, config.NewCompilerConfig(config.WithGlobals("myGlobal")))
		if len(errs) != 0 {
			t.Errorf("Expected no errors, got %v", errs)
		}
	})
}

func TestFrame(t *testing.T) {
	t.Run("should resolve expression frames against the registry", func(t *testing.T) {
		root := build(t, "let a = 1;\nlet b = 2;")
		frame := root.NewChild("")
		file := util.NewParseSourceFile("a + b + a", "test.wick")
		expr, errs := expression_parser.ParseExpression(file, file.Content, 0)
		if len(errs) > 0 {
			t.Fatalf("Unexpected errors: %v", errs)
		}
		frame.Expressions = []output.OutputExpression{expr}
		if errs := frame.Resolve(config.NewCompilerConfig()); len(errs) > 0 {
			t.Fatalf("Unexpected errors: %v", errs)
		}
		var names []string
		for _, v := range frame.Dependencies() {
			names = append(names, v.InternalName)
		}
		if diff := cmp.Diff([]string{"a", "b"}, names); diff != "" {
			t.Errorf("dependencies mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should detect awaited expressions", func(t *testing.T) {
		root := build(t, "let a = 1;")
		frame := root.NewChild("")
		file := util.NewParseSourceFile("await a", "test.wick")
		expr, _ := expression_parser.ParseExpression(file, file.Content, 0)
		frame.Expressions = []output.OutputExpression{expr}
		frame.Resolve(config.NewCompilerConfig())
		if !frame.IsAsync {
			t.Error("Expected an async frame")
		}
	})

	t.Run("should pack lookup entries", func(t *testing.T) {
		root := build(t, "import { a } from \"@parent\";\nlet b = 1;\nfunction go() {}")
		table := root.Registry().LookupTable()
		if len(table) != 2 {
			t.Fatalf("Expected 2 entries, got %d", len(table))
		}
		if table["a"].Index() != 0 || !table["a"].Flags().Has(core.VariableFlagFromParent) {
			t.Errorf("Unexpected entry for a: %v", table["a"])
		}
		if table["b"].Index() != 1 {
			t.Errorf("Expected index 1, got %d", table["b"].Index())
		}
	})

	t.Run("should derive component tags", func(t *testing.T) {
		for input, expected := range map[string]string{"Card": "card", "UserCard": "user-card", "my_list": "my-list"} {
			if got := binding.ComponentTag(input); got != expected {
				t.Errorf("Expected %q, got %q", expected, got)
			}
		}
	})
}
