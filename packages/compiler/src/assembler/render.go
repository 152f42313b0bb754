package assembler

import (
	"fmt"

	"wick-go/packages/compiler/src/output"
)

// RuntimeBase is the parameter of the factory the class extends
const RuntimeBase = "WickRTComponent"

// ClassStatement returns the class declaration.
func (c *CompiledComponentClass) ClassStatement() *output.ClassStmt {
	var methods []*output.ClassMethod
	for _, m := range c.Methods() {
		methods = append(methods, m.ClassMethod())
	}
	return output.NewClassStmt(c.Name, output.Variable(RuntimeBase), methods, nil)
}

// TableStatements assigns the static tables to the class.
func (c *CompiledComponentClass) TableStatements() []output.OutputStatement {
	class := output.Variable(c.Name)
	assign := func(name string, value output.OutputExpression) output.OutputStatement {
		return output.Stmt(output.Assign(output.Prop(class, name), value))
	}

	var lu []*output.LiteralMapEntry
	for _, v := range c.Variables {
		if v.IsMethod() {
			continue
		}
		lu = append(lu, output.NewLiteralMapEntry(v.ExternalName, output.Literal(uint32(c.LookupTable[v.ExternalName])), true))
	}

	var lfu []output.OutputExpression
	for _, name := range c.FunctionTable {
		if name == "" {
			lfu = append(lfu, output.Literal(nil))
			continue
		}
		lfu = append(lfu, output.Literal(name))
	}

	var containers []output.OutputExpression
	for _, ct := range c.Containers {
		containers = append(containers, stringArray(ct.Templates))
	}

	return []output.OutputStatement{
		assign("lu", output.NewLiteralMapExpr(lu, nil)),
		assign("lfu", output.NewLiteralArrayExpr(lfu, nil)),
		assign("template", templateLiteral(c.Template)),
		assign("children", stringArray(c.Children)),
		assign("containers", output.NewLiteralArrayExpr(containers, nil)),
		assign("styles", stringArray(c.Styles)),
	}
}

func stringArray(values []string) output.OutputExpression {
	entries := []output.OutputExpression{}
	for _, s := range values {
		entries = append(entries, output.Literal(s))
	}
	return output.NewLiteralArrayExpr(entries, nil)
}

// Factory returns the function that builds the class from the runtime base
// class.
func (c *CompiledComponentClass) Factory() *output.FunctionExpr {
	var body []output.OutputStatement
	body = append(body, c.ClassStatement())
	body = append(body, c.TableStatements()...)
	body = append(body, output.NewReturnStatement(output.Variable(c.Name), nil))
	return output.NewFunctionExpr([]*output.FnParam{output.NewFnParam(RuntimeBase)}, body, nil, nil)
}

// Render returns the factory expression source.
func Render(c *CompiledComponentClass) string {
	return output.EmitStatements([]output.OutputStatement{output.Stmt(c.Factory())})
}

// RenderWithSourceMap renders the factory and a source map of the
// generated file back to the component sources.
func RenderWithSourceMap(c *CompiledComponentClass, file string) (string, *output.SourceMap, error) {
	ctx := output.CreateRootEmitterVisitorContext()
	output.NewJsEmitterVisitor().VisitAllStatements([]output.OutputStatement{output.Stmt(c.Factory())}, ctx)
	gen, err := ctx.ToSourceMapGenerator(file, 0)
	if err != nil {
		return "", nil, fmt.Errorf("source map for %s: %w", c.Name, err)
	}
	return ctx.ToSource(), gen.ToJSON(), nil
}

// Verify compiles the rendered factory with rt and reports syntax errors.
func Verify(rt output.JSRuntime, c *CompiledComponentClass) error {
	if err := rt.Check(c.Name+".js", Render(c)); err != nil {
		return fmt.Errorf("generated class %s: %w", c.Name, err)
	}
	return nil
}
