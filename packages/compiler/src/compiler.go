// Package compiler compiles the components of a project: it discovers the
// `.wick` sources, compiles them in parallel in one session and writes the
// generated modules.
package compiler

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"wick-go/packages/compiler/src/component"
	"wick-go/packages/compiler/src/config"
)

var log = commonlog.GetLogger("wick.compiler")

// SourceExt is the extension of component sources.
const SourceExt = ".wick"

// Compiler compiles the components of one project.
type Compiler struct {
	Project *config.Project
	Config  *config.CompilerConfig

	store   *component.Store
	session *component.Context
}

// Artifact is a compiled entry point.
type Artifact struct {
	// Name is the slash separated path of the source relative to its source
	// directory, without extension
	Name      string
	Path      string
	Component *component.Component
}

// NewCompiler creates a compiler for p, opening the compile cache when the
// project configures one.
func NewCompiler(p *config.Project) (*Compiler, error) {
	c := &Compiler{
		Project: p,
		Config:  config.NewCompilerConfig(p.CompilerOptions()...),
	}
	if c.Config.CachePath != "" {
		if err := os.MkdirAll(filepath.Dir(c.Config.CachePath), 0755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
		store, err := component.OpenStore(c.Config.CachePath)
		if err != nil {
			return nil, err
		}
		c.store = store
	}
	c.Reset()
	return c, nil
}

// Close releases the compile cache.
func (c *Compiler) Close() error {
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	return err
}

// Reset starts a new session so every source is read again. Unchanged
// sources are still served from the cache.
func (c *Compiler) Reset() {
	var opts []component.ContextOption
	if c.store != nil {
		opts = append(opts, component.WithStore(c.store))
	}
	c.session = component.NewContext(c.Config, &component.FileResolver{Root: c.Project.Dir}, opts...)
}

// Session returns the current compile session.
func (c *Compiler) Session() *component.Context {
	return c.session
}

// Discover returns the component sources under the source directories in
// sorted order. The output directory is skipped.
func (c *Compiler) Discover() ([]string, error) {
	output := c.Project.OutputDir()
	seen := map[string]bool{}
	var files []string
	for _, dir := range c.Project.SourceDirPaths() {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path == output || (path != dir && strings.HasPrefix(d.Name(), ".")) {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) == SourceExt && !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("discover components in %s: %w", dir, err)
		}
	}
	sort.Strings(files)
	log.Debugf("discovered %d components", len(files))
	return files, nil
}

// Compile compiles files in parallel. Diagnostics are reported on the
// artifacts; the error is set when a source could not be read.
func (c *Compiler) Compile(ctx context.Context, files []string) ([]*Artifact, error) {
	artifacts := make([]*Artifact, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			comp, err := c.session.Compile(path)
			if err != nil {
				return err
			}
			artifacts[i] = &Artifact{Name: c.name(path), Path: path, Component: comp}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

func (c *Compiler) name(path string) string {
	best := ""
	for _, dir := range c.Project.SourceDirPaths() {
		rel, err := filepath.Rel(dir, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		if best == "" || len(rel) < len(best) {
			best = rel
		}
	}
	if best == "" {
		best = filepath.Base(path)
	}
	return filepath.ToSlash(strings.TrimSuffix(best, SourceExt))
}

// Write stores the generated module of every artifact in the output
// directory, with its source map and, when the project asks for it, its
// manifest.
func (c *Compiler) Write(artifacts []*Artifact) error {
	out := c.Project.OutputDir()
	for _, a := range artifacts {
		base := filepath.Join(out, filepath.FromSlash(a.Name))
		if err := os.MkdirAll(filepath.Dir(base), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(base+".js", []byte(a.Module()), 0644); err != nil {
			return err
		}
		if a.Component.SourceMap != nil {
			if err := os.WriteFile(base+".js.map", a.Component.SourceMap, 0644); err != nil {
				return err
			}
		}
		if c.Project.Source.Manifest && a.Component.Manifest != nil {
			if err := os.WriteFile(base+".manifest.yaml", a.Component.Manifest, 0644); err != nil {
				return err
			}
		}
	}
	return nil
}

// Module returns the generated code as an ES module whose default export
// is the class factory.
func (a *Artifact) Module() string {
	return "export default " + a.Component.Output + "\n"
}

// Failed returns the artifacts that compiled to error components.
func Failed(artifacts []*Artifact) []*Artifact {
	var out []*Artifact
	for _, a := range artifacts {
		if a.Component.HasErrors() {
			out = append(out, a)
		}
	}
	return out
}
