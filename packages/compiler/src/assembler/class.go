package assembler

import (
	"fmt"

	"wick-go/packages/compiler/src/binding"
	"wick-go/packages/compiler/src/output"
	"wick-go/packages/core"
)

// Method is one method of the compiled class
type Method struct {
	Name       string
	Params     []*output.FnParam
	Statements []output.OutputStatement
	IsAsync    bool
}

// NewMethod creates an empty method.
func NewMethod(name string, params ...*output.FnParam) *Method {
	return &Method{Name: name, Params: params}
}

// Add appends statements to the method body.
func (m *Method) Add(stmts ...output.OutputStatement) {
	m.Statements = append(m.Statements, stmts...)
}

// Prepend inserts statements at the start of the method body.
func (m *Method) Prepend(stmts ...output.OutputStatement) {
	m.Statements = append(append([]output.OutputStatement(nil), stmts...), m.Statements...)
}

// IsEmpty reports whether the method has no statements.
func (m *Method) IsEmpty() bool {
	return len(m.Statements) == 0
}

// ClassMethod converts the method to an output class member.
func (m *Method) ClassMethod() *output.ClassMethod {
	cm := output.NewClassMethod(m.Name, m.Params, m.Statements)
	cm.IsAsync = m.IsAsync
	return cm
}

// Source renders the method on its own.
func (m *Method) Source() string {
	return output.MethodSource(m.ClassMethod())
}

// BindingRecord lists what runs when a binding variable changes
type BindingRecord struct {
	Variable *binding.BindingVariable
	// Update is the name of the variable update method, empty for variables
	// resolved once at construction
	Update string
	// Dispatch names the dedicated methods the update method calls
	Dispatch []string
}

// ContainerRecord describes a list container of the template
type ContainerRecord struct {
	// Templates are the component tags instantiated per item
	Templates []string
}

// CompiledComponentClass is the assembled form of a component.
type CompiledComponentClass struct {
	Name string
	// MethodFrames are the activated frames, f<index>, in activation order
	MethodFrames   []*Method
	InitFrame      *Method
	AsyncInitFrame *Method
	TerminateFrame *Method
	// UpdateMethods are the u<class index> methods in class index order
	UpdateMethods []*Method
	// Dedicated are update methods shared by hooks with several dependencies
	Dedicated []*Method

	// LookupTable is the `lu` table of public variables
	LookupTable core.LookupTable
	// FunctionTable is the `lfu` table: slot to method name, empty for slots
	// without a method
	FunctionTable []string
	Records       []*BindingRecord
	Variables     []*binding.BindingVariable

	Template   *core.TemplateNode
	Children   []string
	Containers []*ContainerRecord
	Styles     []string
}

// Methods returns every method in render order.
func (c *CompiledComponentClass) Methods() []*Method {
	var out []*Method
	out = append(out, c.InitFrame)
	if c.AsyncInitFrame != nil && !c.AsyncInitFrame.IsEmpty() {
		out = append(out, c.AsyncInitFrame)
	}
	out = append(out, c.TerminateFrame)
	out = append(out, c.MethodFrames...)
	out = append(out, c.UpdateMethods...)
	out = append(out, c.Dedicated...)
	return out
}

// Method returns the method with the given name, or nil.
func (c *CompiledComponentClass) Method(name string) *Method {
	for _, m := range c.Methods() {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Record returns the binding record of a class index, or nil.
func (c *CompiledComponentClass) Record(classIndex int) *BindingRecord {
	for _, r := range c.Records {
		if r.Variable.ClassIndex == classIndex {
			return r
		}
	}
	return nil
}

func frameName(index int) string {
	return fmt.Sprintf("f%d", index)
}

func updateName(classIndex int) string {
	return fmt.Sprintf("u%d", classIndex)
}
