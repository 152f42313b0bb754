package component

import (
	"encoding/json"
	"errors"
	"strings"

	"wick-go/packages/compiler/src/assembler"
	"wick-go/packages/compiler/src/binding"
	"wick-go/packages/compiler/src/expression_parser"
	"wick-go/packages/compiler/src/hooks"
	"wick-go/packages/compiler/src/ml_parser"
	"wick-go/packages/compiler/src/output"
)

// job carries the intermediate results of one component through the
// pipeline.
type job struct {
	ctx   *Context
	c     *Component
	chain []string

	nodes      []ml_parser.Node
	script     *expression_parser.Script
	root       *binding.Frame
	hooks      *hooks.Context
	extraction *hooks.Extraction
	processed  []*hooks.ProcessedHook
	defaults   *hooks.Defaults
}

type phase struct {
	name string
	fn   func(*job)
}

// phases run in order; the first phase that leaves errors on the component
// ends the compilation. compileImports reenters run, so the table is
// filled in init.
var phases []phase

func init() {
	phases = []phase{
		{"parse", parseMarkup},
		{"split", splitNodes},
		{"script", parseScript},
		{"bindings", buildBindings},
		{"imports", compileImports},
		{"hooks", processHooks},
		{"assemble", assemble},
		{"render", render},
	}
}

func run(ctx *Context, c *Component, chain []string) {
	j := &job{ctx: ctx, c: c, chain: chain}
	for _, p := range phases {
		p.fn(j)
		if c.HasErrors() {
			log.Debugf("%s: stopped after phase %s with %d errors", c.Path, p.name, len(c.Errors.Errors()))
			c.Errors.Sort()
			errorComponent(c)
			return
		}
	}
	log.Debugf("%s: compiled %s", c.Path, c.ClassName)
}

func parseMarkup(j *job) {
	result := ml_parser.Parse(j.c.Source, j.c.Path, ml_parser.ParseOptions{
		PreserveWhitespaces: j.ctx.Config.PreserveWhitespaces,
	})
	j.c.Errors.Append(result.Errors...)
	j.nodes = result.RootNodes
}

func splitNodes(j *job) {
	j.c.split(j.nodes)
}

func parseScript(j *job) {
	if j.c.Script == nil {
		j.script = &expression_parser.Script{}
		return
	}
	j.script = expression_parser.ParseScript(j.c.File, j.c.Script.Content, j.c.Script.ContentOffset())
	j.c.Errors.Append(j.script.Errors...)
}

func buildBindings(j *job) {
	root, errs := binding.Build(j.script, j.ctx.Config)
	j.c.Errors.Append(errs...)
	j.root = root
}

// compileImports compiles the imported child components and marks their
// elements in the template.
func compileImports(j *job) {
	next := append(append([]string(nil), j.chain...), j.c.Path)
	tags := map[string]bool{}
	for _, imp := range j.root.Components {
		path, err := j.ctx.Resolver.Resolve(j.c.Path, imp.Source)
		if err != nil {
			j.c.Errors.Add(imp.Span, "Cannot resolve component %q: %s", imp.Source, err)
			continue
		}
		if cycle := importCycle(next, path); cycle != "" {
			j.c.Errors.Add(imp.Span, "Circular component import %s", cycle)
			continue
		}
		child, err := j.ctx.compile(path, next)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				j.c.Errors.Add(imp.Span, "Cannot find component %q", imp.Source)
			} else {
				j.c.Errors.Add(imp.Span, "Cannot load component %q: %s", imp.Source, err)
			}
			continue
		}
		if child.HasErrors() {
			j.c.Errors.Warn(imp.Span, "Component %q compiled with errors", imp.Source)
		}
		j.c.Children[imp.Tag] = child
		tags[imp.Tag] = true
	}
	ml_parser.MarkComponents([]ml_parser.Node{j.c.Template}, tags)
}

func importCycle(chain []string, path string) string {
	for i, p := range chain {
		if p == path {
			return strings.Join(append(append([]string(nil), chain[i:]...), path), " -> ")
		}
	}
	return ""
}

func processHooks(j *job) {
	j.hooks = hooks.NewContext(j.root, j.ctx.Config, &j.c.Errors)
	extractor := hooks.NewExtractor(j.c.File, j.root, j.ctx.Config, &j.c.Errors)
	j.extraction = extractor.Extract(j.c.Template, j.hooks)
	j.processed, j.defaults = hooks.ProcessAll(j.hooks, j.ctx.Registry, j.extraction.Hooks)
}

func assemble(j *job) {
	class, errs := assembler.Assemble(assembler.Input{
		Name:       j.c.ClassName,
		Root:       j.root,
		Extraction: j.extraction,
		Hooks:      j.processed,
		Defaults:   j.defaults,
		Styles:     j.c.Styles,
	})
	j.c.Errors.Append(errs...)
	j.c.Class = class
}

func render(j *job) {
	c := j.c
	cfg := j.ctx.Config
	if cfg.SourceMaps {
		source, sm, err := assembler.RenderWithSourceMap(c.Class, c.ClassName+".js")
		if err != nil {
			c.Errors.Add(c.File.Span(0, 0), "%s", err)
			return
		}
		c.Output = source
		if c.SourceMap, err = json.Marshal(sm); err != nil {
			c.Errors.Add(c.File.Span(0, 0), "Cannot encode source map: %s", err)
			return
		}
	} else {
		c.Output = assembler.Render(c.Class)
	}

	if cfg.Verify {
		if err := assembler.Verify(output.NewGojaRuntime(), c.Class); err != nil {
			c.Errors.Add(c.File.Span(0, 0), "%s", err)
			return
		}
	}

	manifest, err := c.Class.Manifest().YAML()
	if err != nil {
		c.Errors.Add(c.File.Span(0, 0), "%s", err)
		return
	}
	c.Manifest = manifest
}
