package component_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"wick-go/packages/compiler/src/component"
	"wick-go/packages/compiler/src/config"
	"wick-go/packages/compiler/src/hooks"
)

const mainSource = `<script>
import Card from "./card.wick";
let title = "Hello";
export { title };
</script>
<style>
  .main { color: red; }
</style>
<div class="main"><h1>${title}</h1><card export="title"></card></div>
`

const cardSource = `<script>
import { title } from "@parent";
</script>
<p>${title}</p>
`

func newSession(files map[string]string, opts ...config.CompilerConfigOption) *component.Context {
	return component.NewContext(config.NewCompilerConfig(opts...), component.NewMemoryResolver(files))
}

func mustCompile(t *testing.T, ctx *component.Context, path string) *component.Component {
	t.Helper()
	c, err := ctx.Compile(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return c
}

func errorsContain(c *component.Component, fragment string) bool {
	for _, e := range c.Errors {
		if strings.Contains(e.Msg, fragment) {
			return true
		}
	}
	return false
}

func TestCompile(t *testing.T) {
	t.Run("should compile a component and its imports", func(t *testing.T) {
		ctx := newSession(map[string]string{
			"/app/main.wick": mainSource,
			"/app/card.wick": cardSource,
		})
		c := mustCompile(t, ctx, "/app/main.wick")
		if c.HasErrors() {
			t.Fatalf("Unexpected errors: %v", c.Errors)
		}
		if !strings.HasPrefix(c.ClassName, "Main_") {
			t.Errorf("Expected class name to start with Main_, got %q", c.ClassName)
		}
		if !strings.Contains(c.Output, "class "+c.ClassName+" extends WickRTComponent") {
			t.Errorf("Expected the class declaration in %q", c.Output)
		}
		if diff := cmp.Diff([]string{".main { color: red; }"}, c.Styles); diff != "" {
			t.Errorf("Styles mismatch (-want +got):\n%s", diff)
		}

		card := c.Children["card"]
		if card == nil {
			t.Fatal("Expected the card import to be compiled")
		}
		if card != ctx.Component("/app/card.wick") {
			t.Error("Expected the session to share the compiled import")
		}
		if card.HasErrors() {
			t.Errorf("Unexpected errors in card: %v", card.Errors)
		}
		if diff := cmp.Diff([]string{"card"}, c.Class.Children); diff != "" {
			t.Errorf("Children mismatch (-want +got):\n%s", diff)
		}
		if len(c.Manifest) == 0 {
			t.Error("Expected a manifest")
		}
	})

	t.Run("should reuse session results", func(t *testing.T) {
		ctx := newSession(map[string]string{"/x.wick": `<div></div>`})
		a := mustCompile(t, ctx, "/x.wick")
		b := mustCompile(t, ctx, "/x.wick")
		if a != b {
			t.Error("Expected the same component for repeated compilations")
		}
		ctx.Forget("/x.wick")
		if c := mustCompile(t, ctx, "/x.wick"); c == a {
			t.Error("Expected a fresh compilation after Forget")
		}
	})

	t.Run("should produce identical output across sessions", func(t *testing.T) {
		files := map[string]string{
			"/app/main.wick": mainSource,
			"/app/card.wick": cardSource,
		}
		registry := hooks.DefaultRegistry()
		compileOnce := func() *component.Component {
			ctx := component.NewContext(config.NewCompilerConfig(), component.NewMemoryResolver(files), component.WithRegistry(registry))
			return mustCompile(t, ctx, "/app/main.wick")
		}
		first, second := compileOnce(), compileOnce()
		if diff := cmp.Diff(first.Output, second.Output); diff != "" {
			t.Errorf("Output mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(string(first.Manifest), string(second.Manifest)); diff != "" {
			t.Errorf("Manifest mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(first.Children["card"].Output, second.Children["card"].Output); diff != "" {
			t.Errorf("Import output mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should return an error for unreadable sources", func(t *testing.T) {
		ctx := newSession(map[string]string{})
		if _, err := ctx.Compile("/missing.wick"); err == nil {
			t.Error("Expected an error")
		}
	})

	t.Run("should verify and map generated code", func(t *testing.T) {
		ctx := newSession(map[string]string{"/app/main.wick": mainSource, "/app/card.wick": cardSource},
			config.WithVerify(true), config.WithSourceMaps(true))
		c := mustCompile(t, ctx, "/app/main.wick")
		if c.HasErrors() {
			t.Fatalf("Unexpected errors: %v", c.Errors)
		}
		var sm map[string]interface{}
		if err := json.Unmarshal(c.SourceMap, &sm); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if sm["version"] != float64(3) {
			t.Errorf("Expected version 3, got %v", sm["version"])
		}
	})
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		msg    string
	}{
		{"should require a root element", `<script>let a = 1;</script>`, "must have a root element"},
		{"should reject a second root element", `<div></div><p></p>`, "single root element"},
		{"should reject a second script", `<script></script><script></script><div></div>`, "only have one <script>"},
		{"should reject text outside the root", `hello <div></div>`, "outside the root element"},
		{"should report unresolved references", `<div>${nope}</div>`, "missing binding variable for `nope`"},
		{"should report missing imports", `<script>import Gone from "./gone.wick";</script><div><gone></gone></div>`, "Cannot find component"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newSession(map[string]string{"/c.wick": tt.source})
			c := mustCompile(t, ctx, "/c.wick")
			if !c.HasErrors() {
				t.Fatal("Expected errors")
			}
			if !errorsContain(c, tt.msg) {
				t.Errorf("Expected an error containing %q, got %v", tt.msg, c.Errors)
			}
		})
	}

	t.Run("should replace failed components with an error component", func(t *testing.T) {
		ctx := newSession(map[string]string{"/c.wick": `<div>${nope}</div>`})
		c := mustCompile(t, ctx, "/c.wick")
		if c.Class.Template == nil || c.Class.Template.Children[0].Children[0].Text == "" {
			t.Fatalf("Expected the diagnostics in the template, got %+v", c.Class.Template)
		}
		if class, _ := c.Class.Template.Attr("class"); class != component.ErrorClassName {
			t.Errorf("Expected %q, got %q", component.ErrorClassName, class)
		}
		if !strings.Contains(c.Output, component.ErrorClassName) {
			t.Errorf("Expected the error component source, got %q", c.Output)
		}
		if c.Manifest != nil {
			t.Error("Expected no manifest for an error component")
		}
	})

	t.Run("should report import cycles", func(t *testing.T) {
		ctx := newSession(map[string]string{
			"/a.wick": `<script>import B from "./b.wick";</script><div><b></b></div>`,
			"/b.wick": `<script>import A from "./a.wick";</script><div><a></a></div>`,
		})
		a := mustCompile(t, ctx, "/a.wick")
		b := ctx.Component("/b.wick")
		if b == nil || !errorsContain(b, "Circular component import /a.wick -> /b.wick -> /a.wick") {
			t.Fatalf("Expected a cycle error on b")
		}
		if a.HasErrors() {
			t.Errorf("Expected only a warning on a, got %v", a.Errors)
		}
		if !errorsContain(a, "compiled with errors") {
			t.Errorf("Expected a warning about b, got %v", a.Errors)
		}
	})

	t.Run("should report self imports", func(t *testing.T) {
		ctx := newSession(map[string]string{
			"/a.wick": `<script>import A from "./a.wick";</script><div><a></a></div>`,
		})
		a := mustCompile(t, ctx, "/a.wick")
		if !errorsContain(a, "Circular component import /a.wick -> /a.wick") {
			t.Errorf("Expected a cycle error, got %v", a.Errors)
		}
	})
}

func TestClassName(t *testing.T) {
	t.Run("should combine the file name and the hash", func(t *testing.T) {
		got := component.ClassName("W", "/ui/todo-item.wick", 0x1234abcd00000abc)
		if got != "WTodoItem_00000abc" {
			t.Errorf("Expected %q, got %q", "WTodoItem_00000abc", got)
		}
	})

	t.Run("should depend on the source and the configuration", func(t *testing.T) {
		fp := component.Fingerprint(config.NewCompilerConfig())
		if component.SourceHash("<div></div>", fp) != component.SourceHash("<div></div>", fp) {
			t.Error("Expected a stable hash")
		}
		if component.SourceHash("<div></div>", fp) == component.SourceHash("<p></p>", fp) {
			t.Error("Expected different sources to hash differently")
		}
		other := component.Fingerprint(config.NewCompilerConfig(config.WithVerify(true)))
		if component.SourceHash("<div></div>", fp) == component.SourceHash("<div></div>", other) {
			t.Error("Expected the configuration to change the hash")
		}
	})
}

func TestStore(t *testing.T) {
	t.Run("should serve unchanged components from the cache", func(t *testing.T) {
		store, err := component.OpenStore(filepath.Join(t.TempDir(), "cache.db"))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		defer store.Close()

		files := map[string]string{"/app/main.wick": mainSource, "/app/card.wick": cardSource}
		first := component.NewContext(config.NewCompilerConfig(), component.NewMemoryResolver(files), component.WithStore(store))
		fresh := mustCompile(t, first, "/app/main.wick")
		if fresh.Cached {
			t.Error("Expected the first compilation to miss the cache")
		}
		if n, err := store.Len(); err != nil || n != 2 {
			t.Errorf("Expected 2 entries, got %d (%v)", n, err)
		}

		second := component.NewContext(config.NewCompilerConfig(), component.NewMemoryResolver(files), component.WithStore(store))
		cached := mustCompile(t, second, "/app/main.wick")
		if !cached.Cached {
			t.Error("Expected a cache hit")
		}
		if cached.Output != fresh.Output || cached.ClassName != fresh.ClassName {
			t.Error("Expected the cached output to match")
		}
		if cached.Children["card"] == nil || !cached.Children["card"].Cached {
			t.Error("Expected the cached import to be restored")
		}
	})

	t.Run("should not cache failed components", func(t *testing.T) {
		store, err := component.OpenStore(filepath.Join(t.TempDir(), "cache.db"))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		defer store.Close()
		ctx := component.NewContext(config.NewCompilerConfig(), component.NewMemoryResolver(map[string]string{
			"/c.wick": `<div>${nope}</div>`,
		}), component.WithStore(store))
		mustCompile(t, ctx, "/c.wick")
		if n, _ := store.Len(); n != 0 {
			t.Errorf("Expected an empty cache, got %d entries", n)
		}
	})
}

func TestFileResolver(t *testing.T) {
	t.Run("should compile components from disk", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.MkdirAll(filepath.Join(dir, "ui"), 0755); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "main.wick"), []byte(mainSource), 0644); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "card.wick"), []byte(cardSource), 0644); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		ctx := component.NewContext(config.NewCompilerConfig(), &component.FileResolver{Root: dir})
		c := mustCompile(t, ctx, filepath.Join(dir, "main.wick"))
		if c.HasErrors() {
			t.Fatalf("Unexpected errors: %v", c.Errors)
		}
		if c.Children["card"] == nil || c.Children["card"].Path != filepath.Join(dir, "card.wick") {
			t.Errorf("Expected card to resolve next to main")
		}
	})

	t.Run("should reject bare specifiers", func(t *testing.T) {
		r := &component.FileResolver{}
		if _, err := r.Resolve("/a/main.wick", "card.wick"); err == nil {
			t.Error("Expected an error")
		}
	})
}
