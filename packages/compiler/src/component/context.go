package component

import (
	"fmt"
	"sync"

	"github.com/tliron/commonlog"

	"wick-go/packages/compiler/src/config"
	"wick-go/packages/compiler/src/hooks"
)

var log = commonlog.GetLogger("wick.compiler.component")

// Context is a compile session. It owns the configuration, the processor
// registry and the components compiled so far, keyed by path. A Context may
// be shared by goroutines compiling different entry points.
type Context struct {
	Config   *config.CompilerConfig
	Resolver Resolver
	Registry *hooks.Registry
	Store    *Store

	fingerprint string

	mu         sync.Mutex
	components map[string]*Component
}

// ContextOption is a function that modifies Context
type ContextOption func(*Context)

// WithRegistry replaces the default processor registry
func WithRegistry(r *hooks.Registry) ContextOption {
	return func(ctx *Context) {
		ctx.Registry = r
	}
}

// WithStore enables the persistent compile cache
func WithStore(s *Store) ContextOption {
	return func(ctx *Context) {
		ctx.Store = s
	}
}

// NewContext creates a compile session.
func NewContext(cfg *config.CompilerConfig, resolver Resolver, opts ...ContextOption) *Context {
	ctx := &Context{
		Config:     cfg,
		Resolver:   resolver,
		Registry:   hooks.DefaultRegistry(),
		components: map[string]*Component{},
	}
	for _, opt := range opts {
		opt(ctx)
	}
	// Sort once so concurrent compilations only read the registry.
	ctx.Registry.Processors()
	ctx.fingerprint = Fingerprint(cfg)
	return ctx
}

// Compile compiles the component at path and, recursively, its imports.
// Diagnostics are reported on the returned component; the error is only set
// when the source could not be read.
func (ctx *Context) Compile(path string) (*Component, error) {
	return ctx.compile(path, nil)
}

// Component returns the session's compilation of path, or nil.
func (ctx *Context) Component(path string) *Component {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.components[path]
}

// Components returns every component compiled in the session.
func (ctx *Context) Components() []*Component {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	out := make([]*Component, 0, len(ctx.components))
	for _, c := range ctx.components {
		out = append(out, c)
	}
	return out
}

// Forget drops path from the session so the next Compile reads it again.
func (ctx *Context) Forget(path string) {
	ctx.mu.Lock()
	delete(ctx.components, path)
	ctx.mu.Unlock()
}

func (ctx *Context) compile(path string, chain []string) (*Component, error) {
	if c := ctx.Component(path); c != nil {
		return c, nil
	}
	source, err := ctx.Resolver.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read component: %w", err)
	}
	c := ctx.build(path, source, chain)

	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if existing, ok := ctx.components[path]; ok {
		return existing, nil
	}
	ctx.components[path] = c
	return c, nil
}

// build compiles one component, consulting the persistent store first.
func (ctx *Context) build(path, source string, chain []string) *Component {
	c := newComponent(path, source, ctx.fingerprint, ctx.Config.ClassPrefix)
	if ctx.Store != nil {
		entry, ok, err := ctx.Store.Get(c.Hash)
		switch {
		case err != nil:
			log.Warningf("%s: %s", path, err)
		case ok:
			log.Debugf("%s: cache hit %s", path, HashString(c.Hash))
			c.restore(entry)
			ctx.restoreChildren(c, entry, chain)
			return c
		}
	}

	run(ctx, c, chain)

	if ctx.Store != nil && !c.HasErrors() {
		if err := ctx.Store.Put(c.Hash, c.entry()); err != nil {
			log.Warningf("%s: %s", path, err)
		}
	}
	return c
}

func (ctx *Context) restoreChildren(c *Component, e *Entry, chain []string) {
	next := append(append([]string(nil), chain...), c.Path)
	for tag, path := range e.Children {
		child, err := ctx.compile(path, next)
		if err != nil {
			c.Errors.Warn(c.File.Span(0, 0), "Cannot load cached import %s: %s", path, err)
			continue
		}
		c.Children[tag] = child
	}
}
