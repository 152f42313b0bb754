package compiler_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	compiler "wick-go/packages/compiler/src"
	"wick-go/packages/compiler/src/config"
)

const mainSource = `<script>
import Card from "./widgets/card.wick";
let title = "Hello";
</script>
<div><h1>${title}</h1><card></card></div>
`

const cardSource = `<script>
let label = "card";
</script>
<p>${label}</p>
`

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func newProject(t *testing.T, files map[string]string, toml string) *config.Project {
	t.Helper()
	dir := t.TempDir()
	writeFiles(t, dir, files)
	if toml == "" {
		return config.DefaultProject(dir)
	}
	writeFiles(t, dir, map[string]string{config.ProjectFileName: toml})
	p, err := config.LoadProject(dir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return p
}

func build(t *testing.T, p *config.Project) (*compiler.Compiler, []*compiler.Artifact) {
	t.Helper()
	c, err := compiler.NewCompiler(p)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	files, err := c.Discover()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	artifacts, err := c.Compile(context.Background(), files)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return c, artifacts
}

func TestCompiler(t *testing.T) {
	t.Run("should discover and compile every component", func(t *testing.T) {
		p := newProject(t, map[string]string{
			"main.wick":         mainSource,
			"widgets/card.wick": cardSource,
			"notes.txt":         "ignored",
			".hidden/x.wick":    cardSource,
		}, "")
		c, artifacts := build(t, p)

		var names []string
		for _, a := range artifacts {
			names = append(names, a.Name)
		}
		if diff := cmp.Diff([]string{"main", "widgets/card"}, names); diff != "" {
			t.Errorf("Names mismatch (-want +got):\n%s", diff)
		}
		if failed := compiler.Failed(artifacts); len(failed) != 0 {
			t.Fatalf("Unexpected failures: %v", failed[0].Component.Errors)
		}
		if artifacts[0].Component.Children["card"] != artifacts[1].Component {
			t.Error("Expected the import to share the compiled entry point")
		}

		if err := c.Write(artifacts); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		data, err := os.ReadFile(filepath.Join(p.OutputDir(), "widgets", "card.js"))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !strings.HasPrefix(string(data), "export default ") || !strings.Contains(string(data), "extends WickRTComponent") {
			t.Errorf("Expected a component module, got %q", data)
		}
		if _, err := os.Stat(filepath.Join(p.OutputDir(), "main.manifest.yaml")); !os.IsNotExist(err) {
			t.Error("Expected no manifest without the manifest option")
		}
	})

	t.Run("should skip the output directory", func(t *testing.T) {
		p := newProject(t, map[string]string{
			"main.wick":           cardSource,
			"dist/wick/old.wick": cardSource,
		}, "")
		_, artifacts := build(t, p)
		if len(artifacts) != 1 || artifacts[0].Name != "main" {
			t.Errorf("Expected only main, got %d artifacts", len(artifacts))
		}
	})

	t.Run("should follow the project configuration", func(t *testing.T) {
		p := newProject(t, map[string]string{
			"src/main.wick": cardSource,
		}, `
[compiler]
source-maps = true
cache = ".cache/wick.db"

[source]
dirs = ["src"]
output = "out"
manifest = true
`)
		c, artifacts := build(t, p)
		if err := c.Write(artifacts); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		for _, name := range []string{"main.js", "main.js.map", "main.manifest.yaml"} {
			if _, err := os.Stat(filepath.Join(p.Dir, "out", name)); err != nil {
				t.Errorf("Expected %s: %v", name, err)
			}
		}
		c.Close()

		again, artifacts := build(t, p)
		if !artifacts[0].Component.Cached {
			t.Error("Expected the second build to hit the cache")
		}
		again.Close()
	})

	t.Run("should report components with errors", func(t *testing.T) {
		p := newProject(t, map[string]string{
			"broken.wick": `<div></div><p></p>`,
			"main.wick":   cardSource,
		}, "")
		_, artifacts := build(t, p)
		failed := compiler.Failed(artifacts)
		if len(failed) != 1 || failed[0].Name != "broken" {
			t.Fatalf("Expected broken to fail, got %d failures", len(failed))
		}
		if !strings.Contains(failed[0].Component.Output, "wick-error") {
			t.Errorf("Expected an error component, got %q", failed[0].Component.Output)
		}
	})
}
