package expression_parser

import (
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
	"github.com/tliron/commonlog"

	"wick-go/packages/compiler/src/output"
	"wick-go/packages/compiler/src/util"
)

var log = commonlog.GetLogger("wick.compiler.script")

const (
	scriptPrefix     = "(async function () {"
	scriptSuffix     = "\n})"
	expressionPrefix = "(async () => ("
	expressionSuffix = "\n))"
)

// Script is a parsed component script
type Script struct {
	Statements []output.OutputStatement
	Imports    []*ImportDecl
	Exports    []*ExportSpecifier
	Errors     util.ErrorList
}

// ParseScript parses the body of a component <script>. content starts at
// offset in file. Module declarations are collected separately; exported
// `var`, `let`, `const` and `function` declarations are added to Exports.
func ParseScript(file *util.ParseSourceFile, content string, offset int) *Script {
	decls := scanDeclarations(file, content, offset)
	script := &Script{
		Imports: decls.imports,
		Exports: decls.exports,
		Errors:  decls.errors,
	}

	c := newConverter(file, offset, len(scriptPrefix), len(content))
	program, err := parser.ParseFile(nil, file.URL, scriptPrefix+decls.blanked()+scriptSuffix, 0)
	if err != nil {
		c.syntaxErrors(err, scriptPrefix+decls.blanked()+scriptSuffix)
		script.Errors = append(script.Errors, c.errors...)
		return script
	}

	fn := wrappedFunction(program)
	if fn == nil {
		script.Errors.Add(file.Span(offset, offset+len(content)), "Script must not close its own wrapper")
		return script
	}
	script.Statements = c.statements(fn.Body.List)
	script.Errors = append(script.Errors, c.errors...)
	script.Exports = append(script.Exports, exportedDeclarations(script.Statements, decls.declared)...)
	log.Debugf("parsed script %s: %d statements, %d imports", file.URL, len(script.Statements), len(script.Imports))
	return script
}

// ParseExpression parses a `${}` expression found at offset in file.
func ParseExpression(file *util.ParseSourceFile, source string, offset int) (output.OutputExpression, util.ErrorList) {
	span := file.Span(offset, offset+len(source))
	if strings.TrimSpace(source) == "" {
		var errs util.ErrorList
		errs.Add(span, "Empty expression")
		return nil, errs
	}

	c := newConverter(file, offset, len(expressionPrefix), len(source))
	wrapped := expressionPrefix + source + expressionSuffix
	program, err := parser.ParseFile(nil, file.URL, wrapped, 0)
	if err != nil {
		c.syntaxErrors(err, wrapped)
		return nil, c.errors
	}

	var body ast.ConciseBody
	if len(program.Body) == 1 {
		if stmt, ok := program.Body[0].(*ast.ExpressionStatement); ok {
			if arrow, ok := stmt.Expression.(*ast.ArrowFunctionLiteral); ok {
				body = arrow.Body
			}
		}
	}
	expr, ok := body.(*ast.ExpressionBody)
	if !ok {
		c.errors.Add(span, "Expected a single expression")
		return nil, c.errors
	}
	return c.expr(expr.Expression), c.errors
}

func wrappedFunction(program *ast.Program) *ast.FunctionLiteral {
	if len(program.Body) != 1 {
		return nil
	}
	stmt, ok := program.Body[0].(*ast.ExpressionStatement)
	if !ok {
		return nil
	}
	fn, _ := stmt.Expression.(*ast.FunctionLiteral)
	return fn
}

// exportedDeclarations returns export specifiers for the top level
// declarations starting at one of the given offsets.
func exportedDeclarations(stmts []output.OutputStatement, offsets []int) []*ExportSpecifier {
	if len(offsets) == 0 {
		return nil
	}
	at := map[int]bool{}
	for _, o := range offsets {
		at[o] = true
	}
	var out []*ExportSpecifier
	for _, stmt := range stmts {
		span := stmt.GetSourceSpan()
		if span == nil || !at[span.Start.Offset] {
			continue
		}
		switch s := stmt.(type) {
		case *output.DeclareVarStmt:
			out = append(out, &ExportSpecifier{Local: s.Name, Exported: s.Name, Span: s.NameSpan})
		case *output.DeclareFunctionStmt:
			out = append(out, &ExportSpecifier{Local: s.Name, Exported: s.Name, Span: s.NameSpan})
		}
	}
	return out
}
