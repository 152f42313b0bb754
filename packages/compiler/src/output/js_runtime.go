package output

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dop251/goja"
)

// ErrInterrupted is returned when evaluation was stopped by its context.
var ErrInterrupted = errors.New("javascript evaluation interrupted")

// JSRuntime evaluates generated JavaScript
type JSRuntime interface {
	// NewFunction creates a function from parameter names and a body
	NewFunction(args []string, body string) (FunctionHandle, error)

	// ExecuteFunction calls fn with the given arguments
	ExecuteFunction(ctx context.Context, fn FunctionHandle, args []interface{}) (interface{}, error)

	// Check reports syntax errors in a complete program
	Check(name string, source string) error
}

// FunctionHandle represents a function owned by a JSRuntime
type FunctionHandle interface {
	// String returns the function source code
	String() string
}

// GojaRuntime implements JSRuntime with an embedded goja VM
type GojaRuntime struct {
	vm *goja.Runtime
}

// NewGojaRuntime creates a runtime with a fresh VM
func NewGojaRuntime() *GojaRuntime {
	return &GojaRuntime{vm: goja.New()}
}

// VM exposes the underlying goja runtime for installing globals.
func (r *GojaRuntime) VM() *goja.Runtime {
	return r.vm
}

type gojaFunctionHandle struct {
	fn     goja.Callable
	source string
}

func (f *gojaFunctionHandle) String() string {
	return f.source
}

// NewFunction creates a new function in the VM
func (r *GojaRuntime) NewFunction(args []string, body string) (FunctionHandle, error) {
	source := "(function(" + strings.Join(args, ", ") + ") {\n" + body + "\n})"
	v, err := r.vm.RunString(source)
	if err != nil {
		return nil, fmt.Errorf("failed to create function: %w", err)
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return nil, fmt.Errorf("source did not evaluate to a function")
	}
	return &gojaFunctionHandle{fn: fn, source: source}, nil
}

// ExecuteFunction calls fn. The VM is interrupted when ctx is cancelled.
func (r *GojaRuntime) ExecuteFunction(ctx context.Context, fn FunctionHandle, args []interface{}) (interface{}, error) {
	handle, ok := fn.(*gojaFunctionHandle)
	if !ok {
		return nil, fmt.Errorf("invalid function handle type %T", fn)
	}

	values := make([]goja.Value, len(args))
	for i, arg := range args {
		values[i] = r.vm.ToValue(arg)
	}

	ictx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ictx.Done()
		r.vm.Interrupt(ErrInterrupted)
	}()

	v, err := handle.fn(goja.Undefined(), values...)
	cancel()
	<-done
	r.vm.ClearInterrupt()

	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			return nil, ErrInterrupted
		}
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v.Export(), nil
}

// Check compiles source without running it
func (r *GojaRuntime) Check(name string, source string) error {
	_, err := goja.Compile(name, source, true)
	return err
}
