package scope

import (
	"wick-go/packages/core"
)

// IO consumes the values flowing down a tap.
type IO interface {
	Down(value interface{}, flags core.UpdateFlag)
	Destroy()
}

// Tap is the channel between one model property of a scope and its
// consumers.
type Tap struct {
	Name string
	Mode core.TapMode

	scope     *Scope
	ios       []IO
	value     interface{}
	hasValue  bool
	destroyed bool
}

// Scope returns the ID of the owning scope.
func (t *Tap) Scope() ScopeID {
	return t.scope.ID
}

// Value returns the last value that flowed down the tap.
func (t *Tap) Value() (interface{}, bool) {
	return t.value, t.hasValue
}

// IOs returns the number of attached consumers.
func (t *Tap) IOs() int {
	return len(t.ios)
}

// Destroyed reports whether the owning scope destroyed the tap.
func (t *Tap) Destroyed() bool {
	return t.destroyed
}

// AddIO attaches io and hands it the current value, if any.
func (t *Tap) AddIO(io IO) {
	if t.destroyed {
		return
	}
	t.ios = append(t.ios, io)
	if t.hasValue {
		io.Down(t.value, core.UpdateFlagFromModel)
	}
}

// RemoveIO detaches io without destroying it.
func (t *Tap) RemoveIO(io IO) {
	for i, existing := range t.ios {
		if existing == io {
			t.ios = append(t.ios[:i], t.ios[i+1:]...)
			return
		}
	}
}

// Down delivers value to every consumer.
func (t *Tap) Down(value interface{}, flags core.UpdateFlag) {
	if t.destroyed {
		return
	}
	t.value, t.hasValue = value, true
	for _, io := range append([]IO(nil), t.ios...) {
		io.Down(value, flags)
	}
}

// Up handles a value produced below the tap. Without EXPORT or PUT the
// value is echoed straight back down. PUT writes the model, whose
// notification echoes it unless EXPORT hands authority to the parent, and
// EXPORT forwards it to the parent's tap of the same name.
func (t *Tap) Up(value interface{}) {
	if t.destroyed {
		return
	}
	s := t.scope
	if t.Mode&(core.TapModeExport|core.TapModePut) == 0 {
		t.Down(value, core.UpdateFlagNone)
		return
	}
	if t.Mode.Has(core.TapModePut) {
		switch {
		case s.model == nil:
			if !t.Mode.Has(core.TapModeExport) {
				t.Down(value, core.UpdateFlagNone)
			}
		case t.Mode.Has(core.TapModeExport):
			s.model.SetQuiet(t.Name, value)
		default:
			s.model.Set(t.Name, value)
		}
	}
	if t.Mode.Has(core.TapModeExport) {
		if p := s.Parent(); p != nil {
			p.upImport(t.Name, value)
		}
	}
}

func (t *Tap) destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	ios := t.ios
	t.ios = nil
	for _, io := range ios {
		io.Destroy()
	}
}

// FuncIO calls a function for every value.
type FuncIO struct {
	fn        func(value interface{}, flags core.UpdateFlag)
	destroyed bool
}

// NewFuncIO creates an IO around fn.
func NewFuncIO(fn func(value interface{}, flags core.UpdateFlag)) *FuncIO {
	return &FuncIO{fn: fn}
}

func (io *FuncIO) Down(value interface{}, flags core.UpdateFlag) {
	if io.destroyed {
		return
	}
	io.fn(value, flags)
}

func (io *FuncIO) Destroy() {
	io.destroyed = true
}

// Destroyed reports whether the owning tap was destroyed.
func (io *FuncIO) Destroyed() bool {
	return io.destroyed
}
