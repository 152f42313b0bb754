package hooks

import (
	"fmt"
	"math"
	"sort"

	"github.com/tliron/commonlog"

	"wick-go/packages/compiler/src/binding"
	"wick-go/packages/compiler/src/config"
	"wick-go/packages/compiler/src/ml_parser"
	"wick-go/packages/compiler/src/util"
)

var log = commonlog.GetLogger("wick.compiler.hooks")

// CatchAllPriority is the priority of the processor that ends every chain.
var CatchAllPriority = math.Inf(-1)

// Processor turns intermediate hooks of the kinds it accepts into code.
type Processor struct {
	Name     string
	Priority float64
	// CanProcess reports whether the processor handles the selector kind on
	// the given host node type.
	CanProcess func(kind BindingKind, host ml_parser.NodeType) bool
	// Process returns nil to decline the hook.
	Process func(ctx *Context, hook *IntermediateHook) *ProcessedHook
	// DefaultValue optionally computes a compile time value for the host.
	DefaultValue func(ctx *Context, hook *IntermediateHook) (string, bool)
}

// Registry is an ordered set of processors.
type Registry struct {
	processors []*Processor
	sorted     bool
}

// NewRegistry creates a registry holding the given processors.
func NewRegistry(processors ...*Processor) *Registry {
	r := &Registry{}
	r.Register(processors...)
	return r
}

// Register adds processors to the registry.
func (r *Registry) Register(processors ...*Processor) {
	r.processors = append(r.processors, processors...)
	r.sorted = false
}

// Processors returns the processors by descending priority.
func (r *Registry) Processors() []*Processor {
	if !r.sorted {
		SortProcessors(r.processors)
		r.sorted = true
	}
	return r.processors
}

// SortProcessors orders processors by descending priority. Processors of
// equal priority keep their registration order.
func SortProcessors(processors []*Processor) {
	sort.SliceStable(processors, func(i, j int) bool {
		return processors[i].Priority > processors[j].Priority
	})
}

// Process runs the hook through the chain. A processor that declines passes
// the hook on to the next matching one; nil is returned when every
// processor declined.
func (r *Registry) Process(ctx *Context, hook *IntermediateHook) *ProcessedHook {
	for _, p := range r.Processors() {
		if !p.CanProcess(hook.Kind, hook.HostType) {
			continue
		}
		result := p.Process(ctx, hook)
		if result == nil {
			continue
		}
		if result.Name == "" {
			result.Name = ctx.nextHookName()
		}
		result.Kind = hook.Kind
		result.Priority = p.Priority
		if result.Frame == nil {
			result.Frame = hook.Frame
		}
		if result.Span == nil {
			result.Span = hook.Span
		}
		if result.Variables == nil {
			result.Variables = variableUses(result.Frame)
		}
		log.Debugf("%s hook %q processed by %s as %s", hook.Kind, hook.Selector, p.Name, result.Name)
		return result
	}
	return nil
}

// DefaultValue asks the first matching processor for a compile time value.
// It does not fall through to later processors.
func (r *Registry) DefaultValue(ctx *Context, hook *IntermediateHook) (string, bool) {
	for _, p := range r.Processors() {
		if !p.CanProcess(hook.Kind, hook.HostType) {
			continue
		}
		if p.DefaultValue == nil {
			return "", false
		}
		return p.DefaultValue(ctx, hook)
	}
	return "", false
}

// Context is the per component state shared by the processors.
type Context struct {
	Root   *binding.Frame
	Config *config.CompilerConfig
	Errors *util.ErrorList
	// Children maps component elements to their slot in the `ch` table
	Children map[*ml_parser.Element]int
	// Containers maps container elements to their slot in the `ct` table
	Containers map[*ml_parser.Element]int

	hooks int
}

// NewContext creates processor state for a component.
func NewContext(root *binding.Frame, cfg *config.CompilerConfig, errs *util.ErrorList) *Context {
	return &Context{
		Root:       root,
		Config:     cfg,
		Errors:     errs,
		Children:   map[*ml_parser.Element]int{},
		Containers: map[*ml_parser.Element]int{},
	}
}

func (ctx *Context) nextHookName() string {
	name := fmt.Sprintf("h%d", ctx.hooks)
	ctx.hooks++
	return name
}
