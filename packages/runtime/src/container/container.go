// Package container renders one component instance per item of a list and
// keeps the mounted instances in filter and sort order with as few node
// moves as possible.
package container

import (
	"math"
	"sort"

	"github.com/tliron/commonlog"
	"golang.org/x/net/html"

	"wick-go/packages/runtime/src/model"
	"wick-go/packages/runtime/src/scope"
)

var log = commonlog.GetLogger("wick.runtime.container")

// Filter reports whether an item is shown.
type Filter func(m *model.Model) bool

// Less orders two items.
type Less func(a, b *model.Model) bool

// Terms window the filtered and sorted output. Zero values disable a term.
type Terms struct {
	// Limit is the maximum number of mounted items
	Limit int
	// Offset is the first shown item, or the page number when Shift is set
	Offset int
	// Shift is the number of items one Offset step advances
	Shift int
	// Scrub moves the window by a fractional number of items; the integral
	// part is applied
	Scrub float64
}

func (t Terms) start() int {
	start := t.Offset
	if t.Shift > 0 {
		start = t.Offset * t.Shift
	}
	start += int(math.Floor(t.Scrub))
	if start < 0 {
		return 0
	}
	return start
}

// Source is the instance created for one item.
type Source struct {
	Model    *model.Model
	Instance *scope.Instance

	// index is the position in the output of the current pass, -1 outside
	// a pass
	index int
}

type useIf struct {
	class *scope.Class
	pred  Filter
}

// Container owns the sources of a list and the mounted, ordered subset of
// them.
type Container struct {
	graph      *scope.Graph
	parent     *scope.Instance
	element    *html.Node
	class      *scope.Class
	useIfs     []useIf
	transition *scope.Transition

	sources []*Source
	active  []*Source
	filters []Filter
	sorts   []Less
	terms   Terms

	// set by the filter and sort attributes
	attrFilter Filter
	attrSort   Less
}

// New creates a container mounting instances of class under element. The
// container is destroyed with parent.
func New(g *scope.Graph, parent *scope.Instance, element *html.Node, class *scope.Class) *Container {
	c := &Container{graph: g, parent: parent, element: element, class: class}
	if parent != nil {
		parent.Scope().AddCleanup(c.Destroy)
	}
	return c
}

// Sources returns every instantiated source in data order.
func (c *Container) Sources() []*Source {
	return append([]*Source(nil), c.sources...)
}

// Active returns the mounted sources in display order.
func (c *Container) Active() []*Source {
	return append([]*Source(nil), c.active...)
}

// SetTransition sets the transition played by removed items.
func (c *Container) SetTransition(t *scope.Transition) {
	c.transition = t
}

// UseIf selects class for the items matching pred. The first matching
// registration wins; unmatched items use the default class.
func (c *Container) UseIf(class *scope.Class, pred Filter) {
	c.useIfs = append(c.useIfs, useIf{class: class, pred: pred})
}

// AddFilter registers a filter and reorders.
func (c *Container) AddFilter(f Filter) {
	c.filters = append(c.filters, f)
	c.FilterUpdate()
}

// AddSort registers a comparator consulted after the earlier ones tie, and
// reorders.
func (c *Container) AddSort(less Less) {
	c.sorts = append(c.sorts, less)
	c.FilterUpdate()
}

// ClearFilters removes the filters and comparators added with AddFilter and
// AddSort and reorders.
func (c *Container) ClearFilters() {
	c.filters = nil
	c.sorts = nil
	c.FilterUpdate()
}

// SetTerms changes the window and reorders.
func (c *Container) SetTerms(t Terms) {
	c.terms = t
	c.FilterUpdate()
}

// SetFilter replaces the filter of the filter attribute. A nil f removes
// it. Filters added with AddFilter still apply.
func (c *Container) SetFilter(f Filter) {
	c.attrFilter = f
	c.FilterUpdate()
}

// SetSort replaces the comparator of the sort attribute, which is consulted
// before the ones added with AddSort. A nil less removes it.
func (c *Container) SetSort(less Less) {
	c.attrSort = less
	c.FilterUpdate()
}

// SetTerm changes one window term by attribute name: limit, offset, shift
// or scrub. It reports whether name is a term.
func (c *Container) SetTerm(name string, value float64) bool {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		value = 0
	}
	switch name {
	case "limit":
		c.terms.Limit = int(value)
	case "offset":
		c.terms.Offset = int(value)
	case "shift":
		c.terms.Shift = int(value)
	case "scrub":
		c.terms.Scrub = value
	default:
		return false
	}
	c.FilterUpdate()
	return true
}

// SetData replaces the items and reorders.
func (c *Container) SetData(items []*model.Model) {
	c.Cull(items)
	c.FilterUpdate()
}

// Cull makes the sources match items: sources of absent items are torn
// down, new items are instantiated and sources take the order of items. An
// item listed more than once gets a single source at its first position.
func (c *Container) Cull(items []*model.Model) {
	existing := make(map[*model.Model]*Source, len(c.sources))
	for _, s := range c.sources {
		existing[s.Model] = s
	}

	sources := make([]*Source, 0, len(items))
	claimed := make(map[*model.Model]bool, len(items))
	for _, m := range items {
		if m == nil || claimed[m] {
			continue
		}
		claimed[m] = true
		if s, ok := existing[m]; ok {
			sources = append(sources, s)
			continue
		}
		if s := c.instantiate(m); s != nil {
			sources = append(sources, s)
		}
	}

	mounted := make(map[*Source]bool, len(c.active))
	active := make([]*Source, 0, len(c.active))
	for _, s := range c.active {
		mounted[s] = true
		if claimed[s.Model] {
			active = append(active, s)
		}
	}
	for _, s := range c.sources {
		if claimed[s.Model] {
			continue
		}
		if mounted[s] {
			s.Instance.TransitionOut(c.transition, true)
		} else {
			s.Instance.RemoveFromDOM()
			s.Instance.Destructor()
		}
	}
	c.active = active
	c.sources = sources
}

func (c *Container) instantiate(m *model.Model) *Source {
	class := c.class
	for _, u := range c.useIfs {
		if u.pred(m) {
			class = u.class
			break
		}
	}
	if class == nil {
		log.Debugf("no class for container item")
		return nil
	}
	inst := scope.NewInstance(c.graph, class, c.parent)
	inst.SetModel(m)
	return &Source{Model: m, Instance: inst, index: -1}
}

// FilterUpdate computes the output order and moves the mounted instances
// to match it. Instances that keep their relative order are not touched;
// the others are inserted before their successor in the output.
func (c *Container) FilterUpdate() {
	output := c.output()
	for i, s := range output {
		s.index = i
	}

	// Old positions of the retained sources, in current display order.
	var kept []*Source
	for _, s := range c.active {
		if s.index < 0 {
			s.Instance.TransitionOut(c.transition, false)
			continue
		}
		kept = append(kept, s)
	}
	stay := map[*Source]bool{}
	for _, s := range longestIncreasing(kept) {
		stay[s] = true
	}

	var next *html.Node
	for i := len(output) - 1; i >= 0; i-- {
		s := output[i]
		if !stay[s] {
			s.Instance.TransitionIn(nil)
			s.Instance.AppendToDOM(c.element, next)
		}
		next = s.Instance.Root
	}

	for _, s := range c.sources {
		s.index = -1
	}
	c.active = output
}

func (c *Container) output() []*Source {
	var out []*Source
	for _, s := range c.sources {
		if s.Instance.Destroyed() {
			continue
		}
		keep := c.attrFilter == nil || c.attrFilter(s.Model)
		for _, f := range c.filters {
			if !keep {
				break
			}
			keep = f(s.Model)
		}
		if keep {
			out = append(out, s)
		}
	}
	sorts := c.sorts
	if c.attrSort != nil {
		sorts = append([]Less{c.attrSort}, sorts...)
	}
	if len(sorts) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].Model, out[j].Model
			for _, less := range sorts {
				switch {
				case less(a, b):
					return true
				case less(b, a):
					return false
				}
			}
			return false
		})
	}

	start := c.terms.start()
	if start > len(out) {
		start = len(out)
	}
	out = out[start:]
	if c.terms.Limit > 0 && c.terms.Limit < len(out) {
		out = out[:c.terms.Limit]
	}
	return out
}

// Destroy tears down every source.
func (c *Container) Destroy() {
	for _, s := range c.sources {
		s.Instance.RemoveFromDOM()
		s.Instance.Destructor()
	}
	c.sources = nil
	c.active = nil
}
