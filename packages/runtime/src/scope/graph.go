// Package scope is the runtime propagation graph. Scopes bind models to
// component instances through named taps; the graph owns every scope of a
// root in an arena and scopes refer to each other by ScopeID.
package scope

import (
	"github.com/tliron/commonlog"

	"wick-go/packages/runtime/src/dom"
	"wick-go/packages/runtime/src/scheduler"
)

var log = commonlog.GetLogger("wick.runtime.scope")

// ScopeID is the index of a scope in its graph.
type ScopeID int32

// NoScope is the parent of root scopes.
const NoScope ScopeID = -1

// Graph is the arena of a root scope and its descendants.
type Graph struct {
	Scheduler *scheduler.Scheduler
	Document  *dom.Document

	scopes  []*Scope
	classes map[string]*Class
}

// NewGraph creates an empty graph. Nil arguments are replaced with fresh
// instances.
func NewGraph(s *scheduler.Scheduler, d *dom.Document) *Graph {
	if s == nil {
		s = scheduler.New()
	}
	if d == nil {
		d = dom.NewDocument()
	}
	return &Graph{Scheduler: s, Document: d, classes: map[string]*Class{}}
}

// Define registers the class instantiated for a component tag.
func (g *Graph) Define(tag string, c *Class) {
	g.classes[tag] = c
}

// Class returns the class registered for tag, or nil.
func (g *Graph) Class(tag string) *Class {
	return g.classes[tag]
}

// Scope returns the scope with the given ID, or nil.
func (g *Graph) Scope(id ScopeID) *Scope {
	if id < 0 || int(id) >= len(g.scopes) {
		return nil
	}
	return g.scopes[id]
}

// Len returns the number of scopes ever created in the graph.
func (g *Graph) Len() int {
	return len(g.scopes)
}

// Live returns the number of scopes that are not destroyed.
func (g *Graph) Live() int {
	n := 0
	for _, s := range g.scopes {
		if !s.destroyed {
			n++
		}
	}
	return n
}

// NewScope creates a scope under parent. A parent that has not finished
// loading waits for the new scope before it reports LOADED.
func (g *Graph) NewScope(parent ScopeID, name string) *Scope {
	s := &Scope{
		ID:     ScopeID(len(g.scopes)),
		Name:   name,
		graph:  g,
		parent: NoScope,
		taps:   map[string]*Tap{},
	}
	g.scopes = append(g.scopes, s)
	if p := g.Scope(parent); p != nil && !p.destroyed {
		s.parent = parent
		p.children = append(p.children, s.ID)
		if p.load != Loaded {
			p.pending++
			s.counted = true
		}
	}
	log.Debugf("created scope %d %q under %d", s.ID, name, s.parent)
	return s
}
