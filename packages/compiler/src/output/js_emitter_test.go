package output_test

import (
	"testing"

	"wick-go/packages/compiler/src/output"
)

func emit(stmts ...output.OutputStatement) string {
	return output.EmitStatements(stmts)
}

func TestJsEmitter(t *testing.T) {
	t.Run("declarations", func(t *testing.T) {
		t.Run("should emit let declarations", func(t *testing.T) {
			result := emit(output.NewDeclareVarStmt("a", output.Literal(1), output.VarKindLet, nil))
			expected := "let a = 1;"
			if result != expected {
				t.Errorf("Expected %q, got %q", expected, result)
			}
		})

		t.Run("should default to var", func(t *testing.T) {
			result := emit(output.NewDeclareVarStmt("a", nil, output.VarKindNone, nil))
			expected := "var a;"
			if result != expected {
				t.Errorf("Expected %q, got %q", expected, result)
			}
		})
	})

	t.Run("expressions", func(t *testing.T) {
		t.Run("should parenthesize nested binary expressions", func(t *testing.T) {
			expr := output.Assign(
				output.Prop(output.This(), "x"),
				output.Binary(output.BinaryOperatorPlus,
					output.Variable("a"),
					output.Binary(output.BinaryOperatorMultiply, output.Variable("b"), output.Literal(2))),
			)
			result := emit(output.Stmt(expr))
			expected := "this.x = (a + (b * 2));"
			if result != expected {
				t.Errorf("Expected %q, got %q", expected, result)
			}
		})

		t.Run("should not wrap a statement level await", func(t *testing.T) {
			result := emit(output.Stmt(output.NewAwaitExpr(output.Call(output.Variable("f")), nil)))
			expected := "await f();"
			if result != expected {
				t.Errorf("Expected %q, got %q", expected, result)
			}
		})

		t.Run("should wrap a nested await", func(t *testing.T) {
			expr := output.Prop(output.NewAwaitExpr(output.Call(output.Variable("f")), nil), "data")
			result := output.EmitExpression(expr)
			expected := "(await f()).data"
			if result != expected {
				t.Errorf("Expected %q, got %q", expected, result)
			}
		})

		t.Run("should wrap object literal statements", func(t *testing.T) {
			m := output.NewLiteralMapExpr([]*output.LiteralMapEntry{
				output.NewLiteralMapEntry("a", output.Literal(1), false),
			}, nil)
			result := emit(output.Stmt(m))
			expected := "({a: 1});"
			if result != expected {
				t.Errorf("Expected %q, got %q", expected, result)
			}
		})

		t.Run("should wrap object literal arrow bodies", func(t *testing.T) {
			m := output.NewLiteralMapExpr([]*output.LiteralMapEntry{
				output.NewLiteralMapEntry("a", output.Variable("x"), false),
			}, nil)
			arrow := output.NewArrowFunctionExpr([]*output.FnParam{output.NewFnParam("x")}, m, nil)
			result := output.EmitExpression(arrow)
			expected := "(x) => ({a: x})"
			if result != expected {
				t.Errorf("Expected %q, got %q", expected, result)
			}
		})

		t.Run("should emit optional chains", func(t *testing.T) {
			prop := output.NewReadPropExpr(output.Variable("a"), "b", nil)
			prop.Optional = true
			result := output.EmitExpression(prop)
			expected := "a?.b"
			if result != expected {
				t.Errorf("Expected %q, got %q", expected, result)
			}
		})

		t.Run("should emit template literals", func(t *testing.T) {
			tpl := output.NewTemplateLiteralExpr([]*output.TemplateLiteralElementExpr{
				output.NewTemplateLiteralElementExpr("a", nil, ""),
				output.NewTemplateLiteralElementExpr("b`", nil, ""),
			}, []output.OutputExpression{output.Variable("x")}, nil)
			result := output.EmitExpression(tpl)
			expected := "`a${x}b\\``"
			if result != expected {
				t.Errorf("Expected %q, got %q", expected, result)
			}
		})

		t.Run("should not wrap call arguments", func(t *testing.T) {
			expr := output.Call(output.Prop(output.This(), "u0"),
				output.Binary(output.BinaryOperatorPlus, output.Key(output.This(), output.Literal(0)), output.Literal(1)))
			result := emit(output.Stmt(expr))
			expected := "this.u0(this[0] + 1);"
			if result != expected {
				t.Errorf("Expected %q, got %q", expected, result)
			}
		})

		t.Run("should wrap comma arguments only", func(t *testing.T) {
			comma := output.NewCommaExpr([]output.OutputExpression{
				output.Assign(output.Variable("a"), output.Literal(1)),
				output.Variable("a"),
			}, nil)
			result := emit(output.Stmt(comma), output.Stmt(output.Call(output.Variable("f"), comma)))
			expected := "a = 1, a;\nf((a = 1, a));"
			if result != expected {
				t.Errorf("Expected %q, got %q", expected, result)
			}
		})

		t.Run("should wrap conditionals below the top level", func(t *testing.T) {
			cond := output.NewConditionalExpr(output.Variable("ok"), output.Literal("y"), output.Literal("n"), nil)
			if result := output.EmitExpression(cond); result != "ok ? 'y' : 'n'" {
				t.Errorf("Expected %q, got %q", "ok ? 'y' : 'n'", result)
			}
			result := output.EmitExpression(output.Prop(cond, "length"))
			expected := "(ok ? 'y' : 'n').length"
			if result != expected {
				t.Errorf("Expected %q, got %q", expected, result)
			}
		})

		t.Run("should emit computed keys", func(t *testing.T) {
			expr := output.Key(output.Prop(output.This(), "ch"), output.Literal(0))
			result := output.EmitExpression(expr)
			expected := "this.ch[0]"
			if result != expected {
				t.Errorf("Expected %q, got %q", expected, result)
			}
		})
	})

	t.Run("literals", func(t *testing.T) {
		cases := []struct {
			value    interface{}
			expected string
		}{
			{nil, "null"},
			{true, "true"},
			{1.5, "1.5"},
			{float64(3), "3"},
			{42, "42"},
			{"it's", `'it\'s'`},
			{"", "''"},
		}
		for _, c := range cases {
			if result := output.FormatLiteral(c.value); result != c.expected {
				t.Errorf("Expected %q, got %q", c.expected, result)
			}
		}
	})

	t.Run("statements", func(t *testing.T) {
		t.Run("should keep a simple if on one line", func(t *testing.T) {
			result := emit(output.NewIfStmt(output.Variable("a"),
				[]output.OutputStatement{output.NewReturnStatement(nil, nil)}, nil, nil))
			expected := "if (a) { return; }"
			if result != expected {
				t.Errorf("Expected %q, got %q", expected, result)
			}
		})

		t.Run("should emit if else blocks", func(t *testing.T) {
			result := emit(output.NewIfStmt(output.Variable("a"),
				[]output.OutputStatement{output.Stmt(output.Call(output.Variable("f")))},
				[]output.OutputStatement{output.Stmt(output.Call(output.Variable("g")))},
				nil))
			expected := "if (a) {\n  f();\n} else {\n  g();\n}"
			if result != expected {
				t.Errorf("Expected %q, got %q", expected, result)
			}
		})

		t.Run("should emit for loops", func(t *testing.T) {
			loop := output.NewForStmt(
				[]output.OutputStatement{output.NewDeclareVarStmt("i", output.Literal(0), output.VarKindLet, nil)},
				output.Binary(output.BinaryOperatorLower, output.Variable("i"), output.Literal(3)),
				output.NewUpdateExpr(output.UpdateOperatorIncrement, false, output.Variable("i"), nil),
				[]output.OutputStatement{output.Stmt(output.Call(output.Variable("f"), output.Variable("i")))},
				nil,
			)
			result := emit(loop)
			expected := "for (let i = 0; i < 3; i++) {\n  f(i);\n}"
			if result != expected {
				t.Errorf("Expected %q, got %q", expected, result)
			}
		})

		t.Run("should emit classes", func(t *testing.T) {
			class := output.NewClassStmt("A", output.Variable("B"), []*output.ClassMethod{
				output.NewClassMethod("c", nil, []output.OutputStatement{
					output.NewReturnStatement(output.Literal(1), nil),
				}),
			}, nil)
			result := emit(class)
			expected := "class A extends B {\n  c() {\n    return 1;\n  }\n}"
			if result != expected {
				t.Errorf("Expected %q, got %q", expected, result)
			}
		})
	})
}
