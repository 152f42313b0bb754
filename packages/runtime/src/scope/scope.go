package scope

import (
	"sort"
	"time"

	"wick-go/packages/core"
	"wick-go/packages/runtime/src/model"
	"wick-go/packages/runtime/src/scheduler"
)

// LoadState is the loading progress of a scope.
type LoadState int

const (
	Unloaded LoadState = iota
	Loading
	ModelLoaded
	// Loaded is reached once the model is attached and every child that
	// existed while loading has reported Loaded.
	Loaded
)

func (s LoadState) String() string {
	switch s {
	case Unloaded:
		return "UNLOADED"
	case Loading:
		return "LOADING"
	case ModelLoaded:
		return "MODEL_LOADED"
	case Loaded:
		return "LOADED"
	}
	return "UNKNOWN"
}

// Scope binds a model to the taps of one node of the graph.
type Scope struct {
	ID   ScopeID
	Name string

	graph    *Graph
	parent   ScopeID
	children []ScopeID
	taps     map[string]*Tap
	model    *model.Model

	load    LoadState
	pending int
	// counted is set when the parent waits for this scope to load
	counted   bool
	connected bool
	destroyed bool

	exit     *scheduler.Task
	cleanups []func()
	onLoad   []func()
}

// Graph returns the graph owning the scope.
func (s *Scope) Graph() *Graph {
	return s.graph
}

// Parent returns the parent scope, or nil for a root.
func (s *Scope) Parent() *Scope {
	return s.graph.Scope(s.parent)
}

// Children returns the IDs of the live child scopes.
func (s *Scope) Children() []ScopeID {
	return append([]ScopeID(nil), s.children...)
}

// State returns the load state.
func (s *Scope) State() LoadState {
	return s.load
}

// Pending returns the number of children the scope waits for.
func (s *Scope) Pending() int {
	return s.pending
}

func (s *Scope) Connected() bool {
	return s.connected
}

func (s *Scope) Destroyed() bool {
	return s.destroyed
}

// Model returns the bound model.
func (s *Scope) Model() *model.Model {
	return s.model
}

// AddCleanup registers fn to run when the scope is destroyed. Cleanups run
// in reverse registration order, at most once.
func (s *Scope) AddCleanup(fn func()) {
	if s.destroyed {
		return
	}
	s.cleanups = append(s.cleanups, fn)
}

// OnLoaded registers fn to run when the scope reaches Loaded, or runs it
// immediately if it already has.
func (s *Scope) OnLoaded(fn func()) {
	if s.destroyed {
		return
	}
	if s.load == Loaded {
		fn()
		return
	}
	s.onLoad = append(s.onLoad, fn)
}

// Tap returns the tap of name, creating it in KEEP mode on first use.
func (s *Scope) Tap(name string) *Tap {
	if s.destroyed {
		return nil
	}
	if t, ok := s.taps[name]; ok {
		return t
	}
	t := &Tap{Name: name, scope: s}
	if s.model != nil {
		t.value, t.hasValue = s.model.Get(name)
	}
	s.taps[name] = t
	return t
}

// HasTap reports whether a tap of name exists.
func (s *Scope) HasTap(name string) bool {
	_, ok := s.taps[name]
	return ok
}

// TapNames returns the names of the existing taps in sorted order.
func (s *Scope) TapNames() []string {
	names := make([]string, 0, len(s.taps))
	for name := range s.taps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load attaches m and advances the scope to MODEL_LOADED, and to LOADED
// when no child is pending. Loading an already loaded scope replaces its
// model.
func (s *Scope) Load(m *model.Model) {
	if s.destroyed {
		return
	}
	if s.load != Unloaded {
		s.SetModel(m)
		return
	}
	s.load = Loading
	s.SetModel(m)
	s.load = ModelLoaded
	s.checkLoaded()
}

func (s *Scope) checkLoaded() {
	if s.load != ModelLoaded || s.pending > 0 {
		return
	}
	s.load = Loaded
	log.Debugf("scope %d loaded", s.ID)
	callbacks := s.onLoad
	s.onLoad = nil
	for _, fn := range callbacks {
		fn()
	}
	if p := s.Parent(); p != nil && s.counted {
		s.counted = false
		p.childLoaded()
	}
}

func (s *Scope) childLoaded() {
	if s.destroyed {
		return
	}
	s.pending--
	s.checkLoaded()
}

// SetModel binds m, pushing its values through the existing taps.
func (s *Scope) SetModel(m *model.Model) {
	if s.destroyed || s.model == m {
		return
	}
	if s.model != nil {
		s.model.Unobserve(s)
	}
	s.model = m
	if m != nil {
		m.Observe(s)
		s.ModelUpdated(m, m.Keys())
	}
}

// ModelUpdated implements model.Observer.
func (s *Scope) ModelUpdated(m *model.Model, keys []string) {
	if s.destroyed || m != s.model {
		return
	}
	for _, key := range keys {
		if t := s.taps[key]; t != nil {
			v, _ := m.Get(key)
			t.Down(v, core.UpdateFlagFromModel)
		}
	}
}

// Up sends a locally produced value through the tap of name.
func (s *Scope) Up(name string, value interface{}) {
	if t := s.Tap(name); t != nil {
		t.Up(value)
	}
}

// upImport receives a value exported by a child. Only an IMPORT tap of the
// same name accepts it; the value then flows as if it came from the model
// and continues upward only through the tap's own PUT and EXPORT modes.
func (s *Scope) upImport(name string, value interface{}) {
	if s.destroyed {
		return
	}
	t := s.taps[name]
	if t == nil || !t.Mode.Has(core.TapModeImport) {
		log.Debugf("scope %d ignored import of %q", s.ID, name)
		return
	}
	if t.Mode.Has(core.TapModePut) && s.model != nil {
		s.model.SetQuiet(name, value)
	}
	if t.Mode.Has(core.TapModeExport) {
		if p := s.Parent(); p != nil {
			p.upImport(name, value)
		}
	}
	t.Down(value, core.UpdateFlagFromModel)
}

// Connect marks the scope and its descendants as attached to the document.
func (s *Scope) Connect() {
	s.setConnected(true)
}

// Disconnect marks the scope and its descendants as detached.
func (s *Scope) Disconnect() {
	s.setConnected(false)
}

func (s *Scope) setConnected(connected bool) {
	if s.destroyed {
		return
	}
	s.connected = connected
	for _, id := range s.children {
		if c := s.graph.Scope(id); c != nil {
			c.setConnected(connected)
		}
	}
}

// TransitionIn supersedes a pending exit.
func (s *Scope) TransitionIn() {
	if s.destroyed {
		return
	}
	if s.exit.Cancel() {
		log.Debugf("scope %d exit superseded", s.ID)
	}
	s.exit = nil
}

// TransitionOut runs done once d has elapsed unless the exit is superseded
// by TransitionIn or the scope is destroyed first.
func (s *Scope) TransitionOut(d time.Duration, done func()) *scheduler.Task {
	if s.destroyed {
		return nil
	}
	s.exit.Cancel()
	var task *scheduler.Task
	task = s.graph.Scheduler.After(d, func() {
		if s.exit == task {
			s.exit = nil
		}
		done()
	})
	s.exit = task
	return task
}

// ExitPending reports whether an exit transition is waiting to finish.
func (s *Scope) ExitPending() bool {
	return s.exit.Pending()
}

// Destroy tears the scope down: pending exits are cancelled, children are
// destroyed, cleanups run and taps release their IOs. Destroying twice has
// no effect.
func (s *Scope) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	s.exit.Cancel()
	s.exit = nil

	for _, id := range append([]ScopeID(nil), s.children...) {
		if c := s.graph.Scope(id); c != nil {
			c.Destroy()
		}
	}
	cleanups := s.cleanups
	s.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	for _, t := range s.taps {
		t.destroy()
	}
	if s.model != nil {
		s.model.Unobserve(s)
	}
	s.onLoad = nil

	if p := s.Parent(); p != nil {
		p.removeChild(s.ID)
		if s.counted {
			s.counted = false
			p.childLoaded()
		}
	}
	s.connected = false
	log.Debugf("scope %d destroyed", s.ID)
}

func (s *Scope) removeChild(id ScopeID) {
	for i, c := range s.children {
		if c == id {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}
