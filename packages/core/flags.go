package core

import "fmt"

// VariableFlag is the permission bitset carried by a binding variable.
// The low byte is what ends up in the high byte of a packed lookup entry.
type VariableFlag uint8

const (
	// VariableFlagWritten marks a variable that is assigned somewhere in scope.
	VariableFlagWritten VariableFlag = 1 << iota
	// VariableFlagAllowExportToParent lets local writes propagate to the parent.
	VariableFlagAllowExportToParent
	// VariableFlagFromParent marks a variable fed by the parent component.
	VariableFlagFromParent
	// VariableFlagDirectAccess marks a variable resolved once at construction.
	VariableFlagDirectAccess
	// VariableFlagFromModel marks a variable fed by the bound model.
	VariableFlagFromModel
)

// Has reports whether all bits of other are set.
func (f VariableFlag) Has(other VariableFlag) bool {
	return f&other == other
}

func (f VariableFlag) String() string {
	names := []string{}
	for _, e := range []struct {
		flag VariableFlag
		name string
	}{
		{VariableFlagWritten, "WRITTEN"},
		{VariableFlagAllowExportToParent, "ALLOW_EXPORT_TO_PARENT"},
		{VariableFlagFromParent, "FROM_PARENT"},
		{VariableFlagDirectAccess, "DIRECT_ACCESS"},
		{VariableFlagFromModel, "FROM_MODEL"},
	} {
		if f&e.flag != 0 {
			names = append(names, e.name)
		}
	}
	if len(names) == 0 {
		return "NONE"
	}
	out := names[0]
	for _, n := range names[1:] {
		out += "|" + n
	}
	return out
}

// UpdateFlag describes where an incoming runtime value came from.
type UpdateFlag uint32

const (
	UpdateFlagNone       UpdateFlag = 0
	UpdateFlagFromParent UpdateFlag = 1 << 0
	UpdateFlagFromModel  UpdateFlag = 1 << 1
	UpdateFlagFromChild  UpdateFlag = 1 << 2
)

// IndexMask recovers a class index from a packed lookup entry.
const IndexMask = 0xFFFFFF

// MaxClassIndex is the largest class index a packed entry can carry.
const MaxClassIndex = IndexMask

// flagShift is the bit position of the flag byte in a packed entry.
const flagShift = 24

// Packed is a lookup table entry: `(flags << 24) | class_index`.
type Packed uint32

// Pack combines flags and a class index into a single lookup entry.
// It panics if index does not fit in 24 bits.
func Pack(flags VariableFlag, index int) Packed {
	if index < 0 || index > MaxClassIndex {
		panic(fmt.Sprintf("class index %d out of range [0, %d]", index, MaxClassIndex))
	}
	return Packed(uint32(flags)<<flagShift | uint32(index))
}

// Index returns the class index stored in the entry.
func (p Packed) Index() int {
	return int(p & IndexMask)
}

// Flags returns the permission bits stored in the entry.
func (p Packed) Flags() VariableFlag {
	return VariableFlag(p >> flagShift)
}

// LookupTable maps external variable names to packed entries. It is the
// `lu` table shared by the compiler output and the runtime.
type LookupTable map[string]Packed

// Accepts reports whether a value arriving with the given update flags may be
// written into the variable described by p.
func (p Packed) Accepts(origin UpdateFlag) bool {
	flags := p.Flags()
	switch {
	case origin&UpdateFlagFromParent != 0:
		return flags.Has(VariableFlagFromParent)
	case origin&UpdateFlagFromModel != 0:
		return flags.Has(VariableFlagFromModel)
	default:
		return true
	}
}
