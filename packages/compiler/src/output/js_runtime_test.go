package output_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"wick-go/packages/compiler/src/output"
)

func TestGojaRuntime(t *testing.T) {
	t.Run("should create and execute functions", func(t *testing.T) {
		rt := output.NewGojaRuntime()
		fn, err := rt.NewFunction([]string{"a", "b"}, "return a + b;")
		if err != nil {
			t.Fatal(err)
		}
		result, err := rt.ExecuteFunction(context.Background(), fn, []interface{}{1, 2})
		if err != nil {
			t.Fatal(err)
		}
		if result != int64(3) {
			t.Errorf("Expected %v, got %v (%T)", 3, result, result)
		}
	})

	t.Run("should surface thrown errors", func(t *testing.T) {
		rt := output.NewGojaRuntime()
		fn, err := rt.NewFunction(nil, "throw new Error('boom');")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := rt.ExecuteFunction(context.Background(), fn, nil); err == nil {
			t.Error("Expected an error")
		}
	})

	t.Run("should interrupt on context cancellation", func(t *testing.T) {
		rt := output.NewGojaRuntime()
		fn, err := rt.NewFunction(nil, "while (true) {}")
		if err != nil {
			t.Fatal(err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err = rt.ExecuteFunction(ctx, fn, nil)
		if !errors.Is(err, output.ErrInterrupted) {
			t.Errorf("Expected %v, got %v", output.ErrInterrupted, err)
		}

		again, err := rt.NewFunction(nil, "return 1;")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := rt.ExecuteFunction(context.Background(), again, nil); err != nil {
			t.Errorf("Expected the runtime to be reusable, got %v", err)
		}
	})

	t.Run("should check emitted classes", func(t *testing.T) {
		rt := output.NewGojaRuntime()
		class := output.NewClassStmt("A", nil, []*output.ClassMethod{
			output.NewClassMethod("c", nil, []output.OutputStatement{
				output.NewReturnStatement(output.Binary(output.BinaryOperatorPlus, output.Literal(1), output.Literal(2)), nil),
			}),
		}, nil)
		if err := rt.Check("a.js", output.EmitStatements([]output.OutputStatement{class})); err != nil {
			t.Errorf("Unexpected error %v", err)
		}
		if err := rt.Check("b.js", "class {"); err == nil {
			t.Error("Expected a syntax error")
		}
	})
}
