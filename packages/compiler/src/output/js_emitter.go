package output

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// JsEmitterVisitor prints the output AST as JavaScript source
type JsEmitterVisitor struct {
	// topLevel is the expression currently printed as a whole statement or
	// condition; it is emitted without wrapping parentheses.
	topLevel OutputExpression
}

// NewJsEmitterVisitor creates a new JsEmitterVisitor
func NewJsEmitterVisitor() *JsEmitterVisitor {
	return &JsEmitterVisitor{}
}

// EmitStatements renders statements to source text
func EmitStatements(stmts []OutputStatement) string {
	ctx := CreateRootEmitterVisitorContext()
	NewJsEmitterVisitor().VisitAllStatements(stmts, ctx)
	return ctx.ToSource()
}

// EmitExpression renders a single expression to source text
func EmitExpression(expr OutputExpression) string {
	ctx := CreateRootEmitterVisitorContext()
	v := NewJsEmitterVisitor()
	v.topLevel = expr
	expr.VisitExpression(v, ctx)
	return ctx.ToSource()
}

func (v *JsEmitterVisitor) visitTop(expr OutputExpression, ctx *EmitterVisitorContext) {
	prev := v.topLevel
	v.topLevel = expr
	expr.VisitExpression(v, ctx)
	v.topLevel = prev
}

func (v *JsEmitterVisitor) visitNested(expr OutputExpression, ctx *EmitterVisitorContext) {
	prev := v.topLevel
	v.topLevel = nil
	expr.VisitExpression(v, ctx)
	v.topLevel = prev
}

// visitOperand prints an argument, list entry or initializer. Only a comma
// expression needs parentheses in these positions.
func (v *JsEmitterVisitor) visitOperand(expr OutputExpression, ctx *EmitterVisitorContext) {
	if _, ok := expr.(*CommaExpr); ok {
		v.visitNested(expr, ctx)
		return
	}
	v.visitTop(expr, ctx)
}

// VisitAllStatements visits all statements
func (v *JsEmitterVisitor) VisitAllStatements(statements []OutputStatement, ctx *EmitterVisitorContext) {
	for _, stmt := range statements {
		stmt.VisitStatement(v, ctx)
	}
}

// VisitAllExpressions visits all expressions, wrapping long lists
func (v *JsEmitterVisitor) VisitAllExpressions(expressions []OutputExpression, ctx *EmitterVisitorContext, separator string) {
	incrementedIndent := false
	for i, expr := range expressions {
		if i > 0 {
			if ctx.LineLength() > 80 {
				ctx.Print(nil, separator, true)
				if !incrementedIndent {
					ctx.IncIndent()
					ctx.IncIndent()
					incrementedIndent = true
				}
			} else {
				ctx.Print(nil, separator+" ", false)
			}
		}
		v.visitOperand(expr, ctx)
	}
	if incrementedIndent {
		ctx.DecIndent()
		ctx.DecIndent()
	}
}

func (v *JsEmitterVisitor) visitParams(params []*FnParam, ctx *EmitterVisitorContext) {
	for i, param := range params {
		if i > 0 {
			ctx.Print(nil, ", ", false)
		}
		if param.Rest {
			ctx.Print(param, "...", false)
		}
		ctx.Print(nil, param.Name, false)
		if param.Default != nil {
			ctx.Print(nil, " = ", false)
			v.visitOperand(param.Default, ctx)
		}
	}
}

func (v *JsEmitterVisitor) visitBlock(from interface{}, stmts []OutputStatement, ctx *EmitterVisitorContext) {
	ctx.Println(from, "{")
	ctx.IncIndent()
	v.VisitAllStatements(stmts, ctx)
	ctx.DecIndent()
	ctx.Print(from, "}", false)
}

// Expressions

func (v *JsEmitterVisitor) VisitReadVarExpr(ast *ReadVarExpr, context interface{}) interface{} {
	getContext(context).Print(ast, ast.Name, false)
	return nil
}

func (v *JsEmitterVisitor) VisitLiteralExpr(ast *LiteralExpr, context interface{}) interface{} {
	ctx := getContext(context)
	ctx.Print(ast, FormatLiteral(ast.Value), false)
	return nil
}

// FormatLiteral renders a Go literal value as JavaScript
func FormatLiteral(value interface{}) string {
	switch val := value.(type) {
	case nil:
		return "null"
	case string:
		return EscapeIdentifier(val, false, true)
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case float64:
		switch {
		case math.IsNaN(val):
			return "NaN"
		case math.IsInf(val, 1):
			return "Infinity"
		case math.IsInf(val, -1):
			return "-Infinity"
		}
		return strconv.FormatFloat(val, 'g', -1, 64)
	}
	return fmt.Sprintf("%v", value)
}

func (v *JsEmitterVisitor) VisitRegularExpressionLiteral(ast *RegularExpressionLiteralExpr, context interface{}) interface{} {
	getContext(context).Print(ast, fmt.Sprintf("/%s/%s", ast.Body, ast.Flags), false)
	return nil
}

func (v *JsEmitterVisitor) VisitTemplateLiteralExpr(expr *TemplateLiteralExpr, context interface{}) interface{} {
	ctx := getContext(context)
	ctx.Print(expr, "`", false)
	for i := 0; i < len(expr.Elements); i++ {
		expr.Elements[i].VisitExpression(v, ctx)
		if i < len(expr.Expressions) {
			expression := expr.Expressions[i]
			ctx.Print(expression, "${", false)
			v.visitTop(expression, ctx)
			ctx.Print(expression, "}", false)
		}
	}
	ctx.Print(expr, "`", false)
	return nil
}

func (v *JsEmitterVisitor) VisitTemplateLiteralElementExpr(expr *TemplateLiteralElementExpr, context interface{}) interface{} {
	getContext(context).Print(expr, expr.RawText, false)
	return nil
}

func (v *JsEmitterVisitor) VisitTaggedTemplateLiteralExpr(expr *TaggedTemplateLiteralExpr, context interface{}) interface{} {
	ctx := getContext(context)
	v.visitNested(expr.Tag, ctx)
	expr.Template.VisitExpression(v, ctx)
	return nil
}

func (v *JsEmitterVisitor) VisitLiteralArrayExpr(ast *LiteralArrayExpr, context interface{}) interface{} {
	ctx := getContext(context)
	ctx.Print(ast, "[", false)
	v.VisitAllExpressions(ast.Entries, ctx, ",")
	ctx.Print(ast, "]", false)
	return nil
}

func (v *JsEmitterVisitor) VisitLiteralMapExpr(ast *LiteralMapExpr, context interface{}) interface{} {
	ctx := getContext(context)
	ctx.Print(ast, "{", false)
	for i, entry := range ast.Entries {
		if i > 0 {
			ctx.Print(nil, ", ", false)
		}
		switch {
		case entry.Spread:
			ctx.Print(ast, "...", false)
		case entry.KeyExpr != nil:
			ctx.Print(ast, "[", false)
			v.visitNested(entry.KeyExpr, ctx)
			ctx.Print(ast, "]: ", false)
		default:
			ctx.Print(ast, EscapeIdentifier(entry.Key, false, entry.Quoted)+": ", false)
		}
		v.visitOperand(entry.Value, ctx)
	}
	ctx.Print(ast, "}", false)
	return nil
}

func (v *JsEmitterVisitor) visitReceiver(receiver OutputExpression, ctx *EmitterVisitorContext) {
	switch receiver.(type) {
	case *FunctionExpr, *ArrowFunctionExpr, *LiteralMapExpr:
		ctx.Print(receiver, "(", false)
		v.visitNested(receiver, ctx)
		ctx.Print(receiver, ")", false)
	case *LiteralExpr:
		if _, isString := receiver.(*LiteralExpr).Value.(string); !isString {
			ctx.Print(receiver, "(", false)
			v.visitNested(receiver, ctx)
			ctx.Print(receiver, ")", false)
			return
		}
		v.visitNested(receiver, ctx)
	default:
		v.visitNested(receiver, ctx)
	}
}

func (v *JsEmitterVisitor) VisitReadPropExpr(ast *ReadPropExpr, context interface{}) interface{} {
	ctx := getContext(context)
	v.visitReceiver(ast.Receiver, ctx)
	if ast.Optional {
		ctx.Print(ast, "?.", false)
	} else {
		ctx.Print(ast, ".", false)
	}
	ctx.Print(ast, ast.Name, false)
	return nil
}

func (v *JsEmitterVisitor) VisitReadKeyExpr(ast *ReadKeyExpr, context interface{}) interface{} {
	ctx := getContext(context)
	v.visitReceiver(ast.Receiver, ctx)
	if ast.Optional {
		ctx.Print(ast, "?.", false)
	}
	ctx.Print(ast, "[", false)
	v.visitTop(ast.Index, ctx)
	ctx.Print(ast, "]", false)
	return nil
}

func (v *JsEmitterVisitor) VisitInvokeFunctionExpr(expr *InvokeFunctionExpr, context interface{}) interface{} {
	ctx := getContext(context)
	v.visitReceiver(expr.Fn, ctx)
	if expr.Optional {
		ctx.Print(expr, "?.", false)
	}
	ctx.Print(expr, "(", false)
	v.VisitAllExpressions(expr.Args, ctx, ",")
	ctx.Print(expr, ")", false)
	return nil
}

func (v *JsEmitterVisitor) VisitInstantiateExpr(ast *InstantiateExpr, context interface{}) interface{} {
	ctx := getContext(context)
	ctx.Print(ast, "new ", false)
	v.visitReceiver(ast.ClassExpr, ctx)
	ctx.Print(ast, "(", false)
	v.VisitAllExpressions(ast.Args, ctx, ",")
	ctx.Print(ast, ")", false)
	return nil
}

func (v *JsEmitterVisitor) VisitBinaryOperatorExpr(ast *BinaryOperatorExpr, context interface{}) interface{} {
	ctx := getContext(context)
	operator, ok := binaryOperators[ast.Operator]
	if !ok {
		panic(fmt.Sprintf("Unknown operator %d", ast.Operator))
	}

	parens := OutputExpression(ast) != v.topLevel
	if parens {
		ctx.Print(ast, "(", false)
	}
	v.visitNested(ast.Lhs, ctx)
	ctx.Print(ast, " "+operator+" ", false)
	v.visitNested(ast.Rhs, ctx)
	if parens {
		ctx.Print(ast, ")", false)
	}
	return nil
}

func (v *JsEmitterVisitor) VisitUnaryOperatorExpr(ast *UnaryOperatorExpr, context interface{}) interface{} {
	ctx := getContext(context)
	opStr, ok := unaryOperators[ast.Operator]
	if !ok {
		panic(fmt.Sprintf("Unknown operator %d", ast.Operator))
	}

	parens := OutputExpression(ast) != v.topLevel
	if parens {
		ctx.Print(ast, "(", false)
	}
	ctx.Print(ast, opStr, false)
	v.visitNested(ast.Expr, ctx)
	if parens {
		ctx.Print(ast, ")", false)
	}
	return nil
}

func (v *JsEmitterVisitor) VisitUpdateExpr(ast *UpdateExpr, context interface{}) interface{} {
	ctx := getContext(context)
	op := "++"
	if ast.Operator == UpdateOperatorDecrement {
		op = "--"
	}
	parens := OutputExpression(ast) != v.topLevel
	if parens {
		ctx.Print(ast, "(", false)
	}
	if ast.Prefix {
		ctx.Print(ast, op, false)
	}
	v.visitNested(ast.Expr, ctx)
	if !ast.Prefix {
		ctx.Print(ast, op, false)
	}
	if parens {
		ctx.Print(ast, ")", false)
	}
	return nil
}

func (v *JsEmitterVisitor) VisitConditionalExpr(ast *ConditionalExpr, context interface{}) interface{} {
	ctx := getContext(context)
	parens := OutputExpression(ast) != v.topLevel
	if parens {
		ctx.Print(ast, "(", false)
	}
	v.visitNested(ast.Condition, ctx)
	ctx.Print(ast, " ? ", false)
	v.visitNested(ast.TrueCase, ctx)
	ctx.Print(ast, " : ", false)
	v.visitNested(ast.FalseCase, ctx)
	if parens {
		ctx.Print(ast, ")", false)
	}
	return nil
}

func (v *JsEmitterVisitor) VisitFunctionExpr(ast *FunctionExpr, context interface{}) interface{} {
	ctx := getContext(context)
	if ast.IsAsync {
		ctx.Print(ast, "async ", false)
	}
	namePart := ""
	if ast.Name != nil {
		namePart = " " + *ast.Name
	}
	ctx.Print(ast, fmt.Sprintf("function%s(", namePart), false)
	v.visitParams(ast.Params, ctx)
	ctx.Print(ast, ") ", false)
	v.visitBlock(ast, ast.Statements, ctx)
	return nil
}

func (v *JsEmitterVisitor) VisitArrowFunctionExpr(ast *ArrowFunctionExpr, context interface{}) interface{} {
	ctx := getContext(context)
	if ast.IsAsync {
		ctx.Print(ast, "async ", false)
	}
	ctx.Print(ast, "(", false)
	v.visitParams(ast.Params, ctx)
	ctx.Print(ast, ") => ", false)

	switch body := ast.Body.(type) {
	case []OutputStatement:
		v.visitBlock(ast, body, ctx)
	case OutputExpression:
		_, isObjectLiteral := body.(*LiteralMapExpr)
		if isObjectLiteral {
			ctx.Print(ast, "(", false)
		}
		v.visitOperand(body, ctx)
		if isObjectLiteral {
			ctx.Print(ast, ")", false)
		}
	}
	return nil
}

func (v *JsEmitterVisitor) VisitAwaitExpr(ast *AwaitExpr, context interface{}) interface{} {
	ctx := getContext(context)
	parens := OutputExpression(ast) != v.topLevel
	if parens {
		ctx.Print(ast, "(", false)
	}
	ctx.Print(ast, "await ", false)
	v.visitNested(ast.Expr, ctx)
	if parens {
		ctx.Print(ast, ")", false)
	}
	return nil
}

func (v *JsEmitterVisitor) VisitCommaExpr(ast *CommaExpr, context interface{}) interface{} {
	ctx := getContext(context)
	parens := OutputExpression(ast) != v.topLevel
	if parens {
		ctx.Print(ast, "(", false)
	}
	for i, part := range ast.Parts {
		if i > 0 {
			ctx.Print(ast, ", ", false)
		}
		v.visitOperand(part, ctx)
	}
	if parens {
		ctx.Print(ast, ")", false)
	}
	return nil
}

func (v *JsEmitterVisitor) VisitSpreadExpr(ast *SpreadExpr, context interface{}) interface{} {
	ctx := getContext(context)
	ctx.Print(ast, "...", false)
	v.visitNested(ast.Expr, ctx)
	return nil
}

// Statements

func (v *JsEmitterVisitor) printDeclaration(stmt *DeclareVarStmt, ctx *EmitterVisitorContext, withKind bool) {
	if withKind {
		ctx.Print(stmt, stmt.Kind.String()+" ", false)
	}
	ctx.Print(stmt, stmt.Name, false)
	if stmt.Value != nil {
		ctx.Print(stmt, " = ", false)
		v.visitOperand(stmt.Value, ctx)
	}
}

func (v *JsEmitterVisitor) VisitDeclareVarStmt(stmt *DeclareVarStmt, context interface{}) interface{} {
	ctx := getContext(context)
	v.printDeclaration(stmt, ctx, true)
	ctx.Println(stmt, ";")
	return nil
}

func (v *JsEmitterVisitor) VisitDeclareFunctionStmt(stmt *DeclareFunctionStmt, context interface{}) interface{} {
	ctx := getContext(context)
	if stmt.IsAsync {
		ctx.Print(stmt, "async ", false)
	}
	ctx.Print(stmt, fmt.Sprintf("function %s(", stmt.Name), false)
	v.visitParams(stmt.Params, ctx)
	ctx.Print(stmt, ") ", false)
	v.visitBlock(stmt, stmt.Statements, ctx)
	ctx.Println(stmt, "")
	return nil
}

func (v *JsEmitterVisitor) VisitExpressionStmt(stmt *ExpressionStatement, context interface{}) interface{} {
	ctx := getContext(context)
	switch stmt.Expr.(type) {
	case *LiteralMapExpr, *FunctionExpr:
		ctx.Print(stmt, "(", false)
		v.visitNested(stmt.Expr, ctx)
		ctx.Print(stmt, ")", false)
	default:
		v.visitTop(stmt.Expr, ctx)
	}
	ctx.Println(stmt, ";")
	return nil
}

func (v *JsEmitterVisitor) VisitReturnStmt(stmt *ReturnStatement, context interface{}) interface{} {
	ctx := getContext(context)
	if stmt.Value == nil {
		ctx.Println(stmt, "return;")
		return nil
	}
	ctx.Print(stmt, "return ", false)
	v.visitTop(stmt.Value, ctx)
	ctx.Println(stmt, ";")
	return nil
}

func (v *JsEmitterVisitor) VisitIfStmt(stmt *IfStmt, context interface{}) interface{} {
	ctx := getContext(context)
	ctx.Print(stmt, "if (", false)
	v.visitTop(stmt.Condition, ctx)
	ctx.Print(stmt, ") {", false)

	hasElseCase := len(stmt.FalseCase) > 0
	if len(stmt.TrueCase) == 1 && !hasElseCase && isSimpleStatement(stmt.TrueCase[0]) {
		ctx.Print(stmt, " ", false)
		v.VisitAllStatements(stmt.TrueCase, ctx)
		ctx.RemoveEmptyLastLine()
		ctx.Print(stmt, " ", false)
	} else {
		ctx.Println(nil, "")
		ctx.IncIndent()
		v.VisitAllStatements(stmt.TrueCase, ctx)
		ctx.DecIndent()
		if hasElseCase {
			ctx.Println(stmt, "} else {")
			ctx.IncIndent()
			v.VisitAllStatements(stmt.FalseCase, ctx)
			ctx.DecIndent()
		}
	}
	ctx.Println(stmt, "}")
	return nil
}

func isSimpleStatement(stmt OutputStatement) bool {
	switch stmt.(type) {
	case *ExpressionStatement, *ReturnStatement, *BranchStmt, *ThrowStmt:
		return true
	}
	return false
}

func (v *JsEmitterVisitor) VisitBlockStmt(stmt *BlockStmt, context interface{}) interface{} {
	ctx := getContext(context)
	v.visitBlock(stmt, stmt.Statements, ctx)
	ctx.Println(stmt, "")
	return nil
}

func (v *JsEmitterVisitor) VisitForStmt(stmt *ForStmt, context interface{}) interface{} {
	ctx := getContext(context)
	ctx.Print(stmt, "for (", false)
	for i, init := range stmt.Init {
		switch s := init.(type) {
		case *DeclareVarStmt:
			if i > 0 {
				ctx.Print(nil, ", ", false)
			}
			v.printDeclaration(s, ctx, i == 0)
		case *ExpressionStatement:
			v.visitTop(s.Expr, ctx)
		}
	}
	ctx.Print(stmt, "; ", false)
	if stmt.Test != nil {
		v.visitTop(stmt.Test, ctx)
	}
	ctx.Print(stmt, "; ", false)
	if stmt.Update != nil {
		v.visitTop(stmt.Update, ctx)
	}
	ctx.Print(stmt, ") ", false)
	v.visitBlock(stmt, stmt.Body, ctx)
	ctx.Println(stmt, "")
	return nil
}

func (v *JsEmitterVisitor) VisitForInOfStmt(stmt *ForInOfStmt, context interface{}) interface{} {
	ctx := getContext(context)
	ctx.Print(stmt, "for (", false)
	if stmt.Kind != VarKindNone {
		ctx.Print(stmt, stmt.Kind.String()+" "+stmt.Name, false)
	} else {
		v.visitTop(stmt.Target, ctx)
	}
	if stmt.Of {
		ctx.Print(stmt, " of ", false)
	} else {
		ctx.Print(stmt, " in ", false)
	}
	v.visitTop(stmt.Iterable, ctx)
	ctx.Print(stmt, ") ", false)
	v.visitBlock(stmt, stmt.Body, ctx)
	ctx.Println(stmt, "")
	return nil
}

func (v *JsEmitterVisitor) VisitWhileStmt(stmt *WhileStmt, context interface{}) interface{} {
	ctx := getContext(context)
	if stmt.DoWhile {
		ctx.Print(stmt, "do ", false)
		v.visitBlock(stmt, stmt.Body, ctx)
		ctx.Print(stmt, " while (", false)
		v.visitTop(stmt.Condition, ctx)
		ctx.Println(stmt, ");")
		return nil
	}
	ctx.Print(stmt, "while (", false)
	v.visitTop(stmt.Condition, ctx)
	ctx.Print(stmt, ") ", false)
	v.visitBlock(stmt, stmt.Body, ctx)
	ctx.Println(stmt, "")
	return nil
}

func (v *JsEmitterVisitor) VisitThrowStmt(stmt *ThrowStmt, context interface{}) interface{} {
	ctx := getContext(context)
	ctx.Print(stmt, "throw ", false)
	v.visitTop(stmt.Error, ctx)
	ctx.Println(stmt, ";")
	return nil
}

func (v *JsEmitterVisitor) VisitTryCatchStmt(stmt *TryCatchStmt, context interface{}) interface{} {
	ctx := getContext(context)
	ctx.Print(stmt, "try ", false)
	v.visitBlock(stmt, stmt.BodyStmts, ctx)
	if stmt.HasCatch {
		if stmt.CatchParam != "" {
			ctx.Print(stmt, fmt.Sprintf(" catch (%s) ", stmt.CatchParam), false)
		} else {
			ctx.Print(stmt, " catch ", false)
		}
		v.visitBlock(stmt, stmt.CatchStmts, ctx)
	}
	if stmt.FinallyStmts != nil {
		ctx.Print(stmt, " finally ", false)
		v.visitBlock(stmt, stmt.FinallyStmts, ctx)
	}
	ctx.Println(stmt, "")
	return nil
}

func (v *JsEmitterVisitor) VisitBranchStmt(stmt *BranchStmt, context interface{}) interface{} {
	ctx := getContext(context)
	keyword := "break"
	if stmt.Continue {
		keyword = "continue"
	}
	if stmt.Label != "" {
		keyword += " " + stmt.Label
	}
	ctx.Println(stmt, keyword+";")
	return nil
}

func (v *JsEmitterVisitor) VisitSwitchStmt(stmt *SwitchStmt, context interface{}) interface{} {
	ctx := getContext(context)
	ctx.Print(stmt, "switch (", false)
	v.visitTop(stmt.Discriminant, ctx)
	ctx.Println(stmt, ") {")
	ctx.IncIndent()
	for _, c := range stmt.Cases {
		if c.Test == nil {
			ctx.Println(stmt, "default:")
		} else {
			ctx.Print(stmt, "case ", false)
			v.visitTop(c.Test, ctx)
			ctx.Println(stmt, ":")
		}
		ctx.IncIndent()
		v.VisitAllStatements(c.Body, ctx)
		ctx.DecIndent()
	}
	ctx.DecIndent()
	ctx.Println(stmt, "}")
	return nil
}

func (v *JsEmitterVisitor) VisitClassStmt(stmt *ClassStmt, context interface{}) interface{} {
	ctx := getContext(context)
	ctx.Print(stmt, "class "+stmt.Name, false)
	if stmt.Parent != nil {
		ctx.Print(stmt, " extends ", false)
		v.visitNested(stmt.Parent, ctx)
	}
	ctx.Println(stmt, " {")
	ctx.IncIndent()
	for i, m := range stmt.Methods {
		if i > 0 {
			ctx.Println(nil, "")
		}
		prefix := ""
		if m.IsAsync {
			prefix = "async "
		}
		ctx.Print(stmt, prefix+m.Name+"(", false)
		v.visitParams(m.Params, ctx)
		ctx.Print(stmt, ") ", false)
		v.visitBlock(stmt, m.Statements, ctx)
		ctx.Println(stmt, "")
	}
	ctx.DecIndent()
	ctx.Println(stmt, "}")
	return nil
}

// MethodSource renders a single class method, used for manifests and diagnostics.
func MethodSource(m *ClassMethod) string {
	ctx := CreateRootEmitterVisitorContext()
	v := NewJsEmitterVisitor()
	prefix := ""
	if m.IsAsync {
		prefix = "async "
	}
	ctx.Print(nil, prefix+m.Name+"(", false)
	v.visitParams(m.Params, ctx)
	ctx.Print(nil, ") ", false)
	v.visitBlock(nil, m.Statements, ctx)
	return strings.TrimRight(ctx.ToSource(), "\n")
}
