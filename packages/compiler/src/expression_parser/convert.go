package expression_parser

import (
	"fmt"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"
	"github.com/dop251/goja/parser"
	"github.com/dop251/goja/token"

	"wick-go/packages/compiler/src/output"
	"wick-go/packages/compiler/src/util"
)

var unaryOperators = map[token.Token]output.UnaryOperator{
	token.MINUS:       output.UnaryOperatorMinus,
	token.PLUS:        output.UnaryOperatorPlus,
	token.NOT:         output.UnaryOperatorNot,
	token.BITWISE_NOT: output.UnaryOperatorBitwiseNot,
	token.TYPEOF:      output.UnaryOperatorTypeof,
	token.VOID:        output.UnaryOperatorVoid,
	token.DELETE:      output.UnaryOperatorDelete,
}

var binaryOperators = map[token.Token]output.BinaryOperator{
	token.PLUS:                 output.BinaryOperatorPlus,
	token.MINUS:                output.BinaryOperatorMinus,
	token.MULTIPLY:             output.BinaryOperatorMultiply,
	token.SLASH:                output.BinaryOperatorDivide,
	token.REMAINDER:            output.BinaryOperatorModulo,
	token.EXPONENT:             output.BinaryOperatorExponentiation,
	token.AND:                  output.BinaryOperatorBitwiseAnd,
	token.OR:                   output.BinaryOperatorBitwiseOr,
	token.EXCLUSIVE_OR:         output.BinaryOperatorBitwiseXor,
	token.SHIFT_LEFT:           output.BinaryOperatorShiftLeft,
	token.SHIFT_RIGHT:          output.BinaryOperatorShiftRight,
	token.UNSIGNED_SHIFT_RIGHT: output.BinaryOperatorUnsignedShiftRight,
	token.LOGICAL_AND:          output.BinaryOperatorAnd,
	token.LOGICAL_OR:           output.BinaryOperatorOr,
	token.COALESCE:             output.BinaryOperatorNullishCoalesce,
	token.EQUAL:                output.BinaryOperatorEquals,
	token.NOT_EQUAL:            output.BinaryOperatorNotEquals,
	token.STRICT_EQUAL:         output.BinaryOperatorIdentical,
	token.STRICT_NOT_EQUAL:     output.BinaryOperatorNotIdentical,
	token.LESS:                 output.BinaryOperatorLower,
	token.LESS_OR_EQUAL:        output.BinaryOperatorLowerEquals,
	token.GREATER:              output.BinaryOperatorBigger,
	token.GREATER_OR_EQUAL:     output.BinaryOperatorBiggerEquals,
	token.INSTANCEOF:           output.BinaryOperatorInstanceOf,
	token.IN:                   output.BinaryOperatorIn,
}

// goja stores compound assignments with the operator they apply, e.g.
// token.PLUS for `+=`.
var assignOperators = map[token.Token]output.BinaryOperator{
	token.ASSIGN:               output.BinaryOperatorAssign,
	token.PLUS:                 output.BinaryOperatorAdditionAssignment,
	token.MINUS:                output.BinaryOperatorSubtractionAssignment,
	token.MULTIPLY:             output.BinaryOperatorMultiplicationAssignment,
	token.SLASH:                output.BinaryOperatorDivisionAssignment,
	token.REMAINDER:            output.BinaryOperatorRemainderAssignment,
	token.EXPONENT:             output.BinaryOperatorExponentiationAssignment,
	token.AND:                  output.BinaryOperatorBitwiseAndAssignment,
	token.OR:                   output.BinaryOperatorBitwiseOrAssignment,
	token.EXCLUSIVE_OR:         output.BinaryOperatorBitwiseXorAssignment,
	token.SHIFT_LEFT:           output.BinaryOperatorShiftLeftAssignment,
	token.SHIFT_RIGHT:          output.BinaryOperatorShiftRightAssignment,
	token.UNSIGNED_SHIFT_RIGHT: output.BinaryOperatorUnsignedShiftRightAssignment,
	token.LOGICAL_AND:          output.BinaryOperatorAndAssignment,
	token.LOGICAL_OR:           output.BinaryOperatorOrAssignment,
	token.COALESCE:             output.BinaryOperatorNullishCoalesceAssignment,
}

// converter turns goja AST nodes into output AST nodes. goja positions are
// one based offsets into the wrapped source; shift is the wrapper prefix
// length and base the file offset of the unwrapped source.
type converter struct {
	file   *util.ParseSourceFile
	base   int
	shift  int
	length int
	errors util.ErrorList
}

func newConverter(file *util.ParseSourceFile, base, shift, length int) *converter {
	return &converter{file: file, base: base, shift: shift, length: length}
}

func (c *converter) offset(idx file.Idx) int {
	o := int(idx) - 1 - c.shift
	if o < 0 {
		o = 0
	}
	if o > c.length {
		o = c.length
	}
	return c.base + o
}

func (c *converter) span(n ast.Node) *util.ParseSourceSpan {
	return c.file.Span(c.offset(n.Idx0()), c.offset(n.Idx1()))
}

func (c *converter) unsupported(n ast.Node, what string) {
	c.errors.Add(c.span(n), "Unsupported syntax: %s", what)
}

// syntaxErrors maps goja parse errors back onto the component file
func (c *converter) syntaxErrors(err error, wrapped string) {
	var list parser.ErrorList
	switch e := err.(type) {
	case parser.ErrorList:
		list = e
	case *parser.Error:
		list = parser.ErrorList{e}
	default:
		c.errors.Add(c.file.Span(c.base, c.base+c.length), "%s", err)
		return
	}
	lines := lineStarts(wrapped)
	for _, e := range list {
		o := 0
		if line := e.Position.Line - 1; line >= 0 && line < len(lines) {
			o = lines[line] + e.Position.Column - 1
		}
		at := c.offset(file.Idx(o + 1))
		c.errors.Add(c.file.Span(at, at), "%s", e.Message)
	}
}

func lineStarts(s string) []int {
	starts := []int{0}
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func one(stmt output.OutputStatement) []output.OutputStatement {
	return []output.OutputStatement{stmt}
}

func (c *converter) statements(list []ast.Statement) []output.OutputStatement {
	var out []output.OutputStatement
	for _, s := range list {
		out = append(out, c.statement(s)...)
	}
	return out
}

// body flattens a block statement used as a loop or branch body
func (c *converter) body(s ast.Statement) []output.OutputStatement {
	if block, ok := s.(*ast.BlockStatement); ok {
		return c.statements(block.List)
	}
	return c.statement(s)
}

func lexicalKind(tok token.Token) output.VarKind {
	if tok == token.CONST {
		return output.VarKindConst
	}
	return output.VarKindLet
}

func (c *converter) statement(s ast.Statement) []output.OutputStatement {
	span := c.span(s)
	switch n := s.(type) {
	case *ast.EmptyStatement:
		return nil
	case *ast.ExpressionStatement:
		return one(output.NewExpressionStatement(c.expr(n.Expression), span))
	case *ast.VariableStatement:
		return c.bindings(n.List, output.VarKindVar, span)
	case *ast.LexicalDeclaration:
		return c.bindings(n.List, lexicalKind(n.Token), span)
	case *ast.FunctionDeclaration:
		return one(c.functionDecl(n.Function))
	case *ast.ReturnStatement:
		return one(output.NewReturnStatement(c.optExpr(n.Argument), span))
	case *ast.IfStatement:
		var falseCase []output.OutputStatement
		if n.Alternate != nil {
			falseCase = c.body(n.Alternate)
		}
		return one(output.NewIfStmt(c.expr(n.Test), c.body(n.Consequent), falseCase, span))
	case *ast.BlockStatement:
		return one(output.NewBlockStmt(c.statements(n.List), span))
	case *ast.ForStatement:
		var init []output.OutputStatement
		switch in := n.Initializer.(type) {
		case nil:
		case *ast.ForLoopInitializerExpression:
			init = one(output.NewExpressionStatement(c.expr(in.Expression), c.span(in.Expression)))
		case *ast.ForLoopInitializerVarDeclList:
			init = c.bindings(in.List, output.VarKindVar, span)
		case *ast.ForLoopInitializerLexicalDecl:
			init = c.bindings(in.LexicalDeclaration.List, lexicalKind(in.LexicalDeclaration.Token), span)
		}
		return one(output.NewForStmt(init, c.optExpr(n.Test), c.optExpr(n.Update), c.body(n.Body), span))
	case *ast.ForInStatement:
		return one(c.forInOf(false, n.Into, n.Source, n.Body, span))
	case *ast.ForOfStatement:
		return one(c.forInOf(true, n.Into, n.Source, n.Body, span))
	case *ast.WhileStatement:
		return one(output.NewWhileStmt(c.expr(n.Test), c.body(n.Body), false, span))
	case *ast.DoWhileStatement:
		return one(output.NewWhileStmt(c.expr(n.Test), c.body(n.Body), true, span))
	case *ast.ThrowStatement:
		return one(output.NewThrowStmt(c.expr(n.Argument), span))
	case *ast.TryStatement:
		var catchParam string
		var catchStmts, finallyStmts []output.OutputStatement
		if n.Catch != nil {
			if n.Catch.Parameter != nil {
				catchParam = c.bindingName(n.Catch.Parameter)
			}
			catchStmts = c.statements(n.Catch.Body.List)
		}
		if n.Finally != nil {
			finallyStmts = c.statements(n.Finally.List)
		}
		return one(output.NewTryCatchStmt(c.statements(n.Body.List), catchParam, catchStmts, finallyStmts, n.Catch != nil, span))
	case *ast.BranchStatement:
		label := ""
		if n.Label != nil {
			label = n.Label.Name.String()
		}
		return one(output.NewBranchStmt(n.Token == token.CONTINUE, label, span))
	case *ast.SwitchStatement:
		cases := make([]*output.SwitchCase, len(n.Body))
		for i, cs := range n.Body {
			cases[i] = &output.SwitchCase{Test: c.optExpr(cs.Test), Body: c.statements(cs.Consequent)}
		}
		return one(output.NewSwitchStmt(c.expr(n.Discriminant), cases, span))
	case *ast.ClassDeclaration:
		c.unsupported(s, "class declarations")
	case *ast.LabelledStatement:
		c.unsupported(s, "labelled statements")
	case *ast.WithStatement:
		c.unsupported(s, "with statements")
	case *ast.DebuggerStatement:
	default:
		c.unsupported(s, fmt.Sprintf("%T", s))
	}
	return nil
}

func (c *converter) bindings(list []*ast.Binding, kind output.VarKind, span *util.ParseSourceSpan) []output.OutputStatement {
	out := make([]output.OutputStatement, 0, len(list))
	for _, b := range list {
		id, ok := b.Target.(*ast.Identifier)
		if !ok {
			c.unsupported(b.Target, "destructuring patterns")
			continue
		}
		stmt := output.NewDeclareVarStmt(id.Name.String(), c.optExpr(b.Initializer), kind, span)
		stmt.NameSpan = c.span(id)
		out = append(out, stmt)
	}
	return out
}

func (c *converter) bindingName(target ast.Expression) string {
	if id, ok := target.(*ast.Identifier); ok {
		return id.Name.String()
	}
	c.unsupported(target, "destructuring patterns")
	return "_"
}

func (c *converter) forInOf(of bool, into ast.ForInto, source ast.Expression, body ast.Statement, span *util.ParseSourceSpan) output.OutputStatement {
	kind := output.VarKindNone
	name := ""
	var target output.OutputExpression
	switch in := into.(type) {
	case *ast.ForIntoVar:
		kind = output.VarKindVar
		name = c.bindingName(in.Binding.Target)
	case *ast.ForDeclaration:
		kind = output.VarKindLet
		if in.IsConst {
			kind = output.VarKindConst
		}
		name = c.bindingName(in.Target)
	case *ast.ForIntoExpression:
		target = c.expr(in.Expression)
	}
	return output.NewForInOfStmt(of, kind, name, target, c.expr(source), c.body(body), span)
}

func (c *converter) params(list *ast.ParameterList) []*output.FnParam {
	if list == nil {
		return nil
	}
	out := make([]*output.FnParam, 0, len(list.List)+1)
	for _, b := range list.List {
		p := output.NewFnParam(c.bindingName(b.Target))
		p.Default = c.optExpr(b.Initializer)
		p.Span = c.span(b.Target)
		out = append(out, p)
	}
	if list.Rest != nil {
		p := output.NewFnParam(c.bindingName(list.Rest))
		p.Rest = true
		p.Span = c.span(list.Rest)
		out = append(out, p)
	}
	return out
}

func (c *converter) functionDecl(fn *ast.FunctionLiteral) output.OutputStatement {
	if fn.Generator {
		c.unsupported(fn, "generator functions")
	}
	stmt := output.NewDeclareFunctionStmt(fn.Name.Name.String(), c.params(fn.ParameterList), c.statements(fn.Body.List), c.span(fn))
	stmt.IsAsync = fn.Async
	stmt.NameSpan = c.span(fn.Name)
	return stmt
}

func (c *converter) optExpr(e ast.Expression) output.OutputExpression {
	if e == nil {
		return nil
	}
	return c.expr(e)
}

func (c *converter) exprs(list []ast.Expression) []output.OutputExpression {
	out := make([]output.OutputExpression, len(list))
	for i, e := range list {
		out[i] = c.expr(e)
	}
	return out
}

// unwrapOptional strips the marker goja puts on the receiver of `?.`
func unwrapOptional(e ast.Expression) (ast.Expression, bool) {
	if opt, ok := e.(*ast.Optional); ok {
		return opt.Expression, true
	}
	return e, false
}

func (c *converter) expr(e ast.Expression) output.OutputExpression {
	span := c.span(e)
	switch n := e.(type) {
	case *ast.Identifier:
		return output.NewReadVarExpr(n.Name.String(), span)
	case *ast.ThisExpression:
		return output.NewReadVarExpr("this", span)
	case *ast.NullLiteral:
		return output.NewLiteralExpr(nil, span)
	case *ast.BooleanLiteral:
		return output.NewLiteralExpr(n.Value, span)
	case *ast.NumberLiteral:
		switch n.Value.(type) {
		case int64, float64:
			return output.NewLiteralExpr(n.Value, span)
		}
		c.unsupported(e, "numeric literal "+n.Literal)
	case *ast.StringLiteral:
		return output.NewLiteralExpr(n.Value.String(), span)
	case *ast.RegExpLiteral:
		return output.NewRegularExpressionLiteralExpr(n.Pattern, n.Flags, span)
	case *ast.TemplateLiteral:
		elements := make([]*output.TemplateLiteralElementExpr, len(n.Elements))
		for i, el := range n.Elements {
			elements[i] = output.NewTemplateLiteralElementExpr(el.Parsed.String(), c.span(el), el.Literal)
		}
		tpl := output.NewTemplateLiteralExpr(elements, c.exprs(n.Expressions), span)
		if n.Tag != nil {
			return output.NewTaggedTemplateLiteralExpr(c.expr(n.Tag), tpl, span)
		}
		return tpl
	case *ast.ArrayLiteral:
		entries := make([]output.OutputExpression, len(n.Value))
		for i, v := range n.Value {
			if v == nil {
				entries[i] = output.NewReadVarExpr("undefined", span)
				continue
			}
			entries[i] = c.expr(v)
		}
		return output.NewLiteralArrayExpr(entries, span)
	case *ast.SpreadElement:
		return output.NewSpreadExpr(c.expr(n.Expression), span)
	case *ast.ObjectLiteral:
		return c.object(n, span)
	case *ast.FunctionLiteral:
		if n.Generator {
			c.unsupported(e, "generator functions")
		}
		var name *string
		if n.Name != nil {
			s := n.Name.Name.String()
			name = &s
		}
		fn := output.NewFunctionExpr(c.params(n.ParameterList), c.statements(n.Body.List), span, name)
		fn.IsAsync = n.Async
		return fn
	case *ast.ArrowFunctionLiteral:
		var body interface{}
		switch b := n.Body.(type) {
		case *ast.BlockStatement:
			body = c.statements(b.List)
		case *ast.ExpressionBody:
			body = c.expr(b.Expression)
		}
		arrow := output.NewArrowFunctionExpr(c.params(n.ParameterList), body, span)
		arrow.IsAsync = n.Async
		return arrow
	case *ast.CallExpression:
		callee, optional := unwrapOptional(n.Callee)
		call := output.NewInvokeFunctionExpr(c.expr(callee), c.exprs(n.ArgumentList), span)
		call.Optional = optional
		return call
	case *ast.NewExpression:
		return output.NewInstantiateExpr(c.expr(n.Callee), c.exprs(n.ArgumentList), span)
	case *ast.DotExpression:
		left, optional := unwrapOptional(n.Left)
		prop := output.NewReadPropExpr(c.expr(left), n.Identifier.Name.String(), span)
		prop.Optional = optional
		return prop
	case *ast.BracketExpression:
		left, optional := unwrapOptional(n.Left)
		key := output.NewReadKeyExpr(c.expr(left), c.expr(n.Member), span)
		key.Optional = optional
		return key
	case *ast.OptionalChain:
		return c.expr(n.Expression)
	case *ast.Optional:
		return c.expr(n.Expression)
	case *ast.ConditionalExpression:
		return output.NewConditionalExpr(c.expr(n.Test), c.expr(n.Consequent), c.expr(n.Alternate), span)
	case *ast.SequenceExpression:
		return output.NewCommaExpr(c.exprs(n.Sequence), span)
	case *ast.AwaitExpression:
		return output.NewAwaitExpr(c.expr(n.Argument), span)
	case *ast.UnaryExpression:
		switch n.Operator {
		case token.INCREMENT:
			return output.NewUpdateExpr(output.UpdateOperatorIncrement, !n.Postfix, c.expr(n.Operand), span)
		case token.DECREMENT:
			return output.NewUpdateExpr(output.UpdateOperatorDecrement, !n.Postfix, c.expr(n.Operand), span)
		}
		if op, ok := unaryOperators[n.Operator]; ok {
			return output.NewUnaryOperatorExpr(op, c.expr(n.Operand), span)
		}
		c.unsupported(e, "operator "+n.Operator.String())
	case *ast.BinaryExpression:
		if op, ok := binaryOperators[n.Operator]; ok {
			return output.NewBinaryOperatorExpr(op, c.expr(n.Left), c.expr(n.Right), span)
		}
		c.unsupported(e, "operator "+n.Operator.String())
	case *ast.AssignExpression:
		switch n.Left.(type) {
		case *ast.ObjectPattern, *ast.ArrayPattern:
			c.unsupported(n.Left, "destructuring assignment")
			return output.NewReadVarExpr("undefined", span)
		}
		if op, ok := assignOperators[n.Operator]; ok {
			return output.NewBinaryOperatorExpr(op, c.expr(n.Left), c.expr(n.Right), span)
		}
		c.unsupported(e, "assignment operator "+n.Operator.String())
	case *ast.ClassLiteral:
		c.unsupported(e, "class expressions")
	case *ast.YieldExpression:
		c.unsupported(e, "yield")
	case *ast.SuperExpression:
		c.unsupported(e, "super")
	default:
		c.unsupported(e, fmt.Sprintf("%T", e))
	}
	return output.NewReadVarExpr("undefined", span)
}

func (c *converter) object(n *ast.ObjectLiteral, span *util.ParseSourceSpan) output.OutputExpression {
	entries := make([]*output.LiteralMapEntry, 0, len(n.Value))
	for _, p := range n.Value {
		switch prop := p.(type) {
		case *ast.PropertyShort:
			name := prop.Name.Name.String()
			entries = append(entries, output.NewLiteralMapEntry(name, output.NewReadVarExpr(name, c.span(&prop.Name)), false))
		case *ast.PropertyKeyed:
			if prop.Kind == ast.PropertyKindGet || prop.Kind == ast.PropertyKindSet {
				c.unsupported(prop, "property accessors")
				continue
			}
			value := c.expr(prop.Value)
			if prop.Computed {
				entry := output.NewLiteralMapEntry("", value, false)
				entry.KeyExpr = c.expr(prop.Key)
				entries = append(entries, entry)
				continue
			}
			key, quoted := c.propertyKey(prop.Key)
			entries = append(entries, output.NewLiteralMapEntry(key, value, quoted))
		case *ast.SpreadElement:
			entries = append(entries, &output.LiteralMapEntry{Value: c.expr(prop.Expression), Spread: true})
		}
	}
	return output.NewLiteralMapExpr(entries, span)
}

func (c *converter) propertyKey(key ast.Expression) (string, bool) {
	switch k := key.(type) {
	case *ast.StringLiteral:
		name := k.Value.String()
		return name, !output.IsLegalIdentifier(name)
	case *ast.Identifier:
		return k.Name.String(), false
	case *ast.NumberLiteral:
		return k.Literal, false
	}
	c.unsupported(key, "property key")
	return "_", false
}
