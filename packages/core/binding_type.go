package core

// BindingType determines the default data-flow direction of a binding variable.
type BindingType int

const (
	BindingTypeInternal BindingType = iota
	BindingTypeMethod
	BindingTypeAPI
	BindingTypeParent
	BindingTypeModel
	BindingTypeGlobal
	BindingTypeModule
	BindingTypeModuleMember
)

var bindingTypeNames = [...]string{
	BindingTypeInternal:     "INTERNAL",
	BindingTypeMethod:       "METHOD",
	BindingTypeAPI:          "API",
	BindingTypeParent:       "PARENT",
	BindingTypeModel:        "MODEL",
	BindingTypeGlobal:       "GLOBAL",
	BindingTypeModule:       "MODULE",
	BindingTypeModuleMember: "MODULE_MEMBER",
}

func (t BindingType) String() string {
	if int(t) >= 0 && int(t) < len(bindingTypeNames) {
		return bindingTypeNames[t]
	}
	return "UNKNOWN"
}

// MarshalText writes the upper case name used in manifests.
func (t BindingType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// DefaultFlags returns the flags a freshly declared variable of this type carries.
func (t BindingType) DefaultFlags() VariableFlag {
	switch t {
	case BindingTypeAPI, BindingTypeGlobal:
		return VariableFlagDirectAccess
	case BindingTypeParent:
		return VariableFlagFromParent
	case BindingTypeModel:
		return VariableFlagFromModel
	case BindingTypeModule, BindingTypeModuleMember:
		return VariableFlagWritten
	}
	return 0
}

// TapMode is the data-flow bitset of a runtime tap.
type TapMode uint8

const (
	// TapModeKeep only lets model values flow down.
	TapModeKeep TapMode = 0
	// TapModeImport accepts parent-originated values.
	TapModeImport TapMode = 1
	// TapModeExport forwards local changes to the parent's tap of the same name.
	TapModeExport TapMode = 2
	// TapModePut writes local changes back into the bound model.
	TapModePut TapMode = 4
)

// Has reports whether all bits of m are set.
func (t TapMode) Has(m TapMode) bool {
	return t&m == m
}
