package binding

import (
	"wick-go/packages/compiler/src/util"
	"wick-go/packages/core"
)

// BindingVariable is a named value of a component that hooks may read or
// write. Each internal name is declared at most once per component.
type BindingVariable struct {
	InternalName string
	ExternalName string
	Type         core.BindingType
	Flags        core.VariableFlag
	// ClassIndex is the slot of the variable on the compiled class
	ClassIndex int
	RefCount   int
	Span       *util.ParseSourceSpan

	// Source is the module specifier of MODULE and MODULE_MEMBER variables
	Source string
	// Imported is the member name of a MODULE_MEMBER, "default" or "*" for
	// MODULE variables.
	Imported string
	// Method is the frame of a METHOD variable
	Method *Frame
}

// IsDirectlyAccessed reports whether the variable is resolved once when the
// component is constructed rather than fed through an update method.
func (v *BindingVariable) IsDirectlyAccessed() bool {
	return v.Flags.Has(core.VariableFlagDirectAccess)
}

// IsWritten reports whether the variable is assigned anywhere in the component.
func (v *BindingVariable) IsWritten() bool {
	return v.Flags.Has(core.VariableFlagWritten)
}

// IsExported reports whether local writes propagate to the parent component.
func (v *BindingVariable) IsExported() bool {
	return v.Flags.Has(core.VariableFlagAllowExportToParent)
}

// IsMethod reports whether the variable names a function of the component.
func (v *BindingVariable) IsMethod() bool {
	return v.Type == core.BindingTypeMethod
}

// Packed returns the lookup table entry of the variable.
func (v *BindingVariable) Packed() core.Packed {
	return core.Pack(v.Flags, v.ClassIndex)
}

// Registry holds the binding variables of one component. It is owned by the
// root frame.
type Registry struct {
	vars  map[string]*BindingVariable
	order []*BindingVariable
}

func newRegistry() *Registry {
	return &Registry{vars: map[string]*BindingVariable{}}
}

// Get returns the variable declared under the internal name, or nil.
func (r *Registry) Get(name string) *BindingVariable {
	return r.vars[name]
}

// Variables returns all variables in declaration order.
func (r *Registry) Variables() []*BindingVariable {
	return r.order
}

// Len returns the number of declared variables.
func (r *Registry) Len() int {
	return len(r.order)
}

// External returns the variable exposed under the external name, or nil.
func (r *Registry) External(name string) *BindingVariable {
	for _, v := range r.order {
		if v.ExternalName == name {
			return v
		}
	}
	return nil
}

// LookupTable returns the `lu` table of the component, mapping external
// names of non-method variables to packed entries.
func (r *Registry) LookupTable() core.LookupTable {
	table := core.LookupTable{}
	for _, v := range r.order {
		if v.IsMethod() {
			continue
		}
		table[v.ExternalName] = v.Packed()
	}
	return table
}
