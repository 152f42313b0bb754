package output

import (
	"wick-go/packages/compiler/src/util"
)

// UnaryOperator represents prefix unary operators
type UnaryOperator int

const (
	UnaryOperatorMinus UnaryOperator = iota
	UnaryOperatorPlus
	UnaryOperatorNot
	UnaryOperatorBitwiseNot
	UnaryOperatorTypeof
	UnaryOperatorVoid
	UnaryOperatorDelete
)

// UpdateOperator represents the increment and decrement operators
type UpdateOperator int

const (
	UpdateOperatorIncrement UpdateOperator = iota
	UpdateOperatorDecrement
)

// BinaryOperator represents binary operators
type BinaryOperator int

const (
	BinaryOperatorEquals BinaryOperator = iota
	BinaryOperatorNotEquals
	BinaryOperatorAssign
	BinaryOperatorIdentical
	BinaryOperatorNotIdentical
	BinaryOperatorMinus
	BinaryOperatorPlus
	BinaryOperatorDivide
	BinaryOperatorMultiply
	BinaryOperatorModulo
	BinaryOperatorAnd
	BinaryOperatorOr
	BinaryOperatorBitwiseOr
	BinaryOperatorBitwiseAnd
	BinaryOperatorBitwiseXor
	BinaryOperatorShiftLeft
	BinaryOperatorShiftRight
	BinaryOperatorUnsignedShiftRight
	BinaryOperatorLower
	BinaryOperatorLowerEquals
	BinaryOperatorBigger
	BinaryOperatorBiggerEquals
	BinaryOperatorNullishCoalesce
	BinaryOperatorExponentiation
	BinaryOperatorIn
	BinaryOperatorInstanceOf
	BinaryOperatorAdditionAssignment
	BinaryOperatorSubtractionAssignment
	BinaryOperatorMultiplicationAssignment
	BinaryOperatorDivisionAssignment
	BinaryOperatorRemainderAssignment
	BinaryOperatorExponentiationAssignment
	BinaryOperatorAndAssignment
	BinaryOperatorOrAssignment
	BinaryOperatorNullishCoalesceAssignment
	BinaryOperatorBitwiseAndAssignment
	BinaryOperatorBitwiseOrAssignment
	BinaryOperatorBitwiseXorAssignment
	BinaryOperatorShiftLeftAssignment
	BinaryOperatorShiftRightAssignment
	BinaryOperatorUnsignedShiftRightAssignment
)

var compoundAssignmentBase = map[BinaryOperator]BinaryOperator{
	BinaryOperatorAdditionAssignment:           BinaryOperatorPlus,
	BinaryOperatorSubtractionAssignment:        BinaryOperatorMinus,
	BinaryOperatorMultiplicationAssignment:     BinaryOperatorMultiply,
	BinaryOperatorDivisionAssignment:           BinaryOperatorDivide,
	BinaryOperatorRemainderAssignment:          BinaryOperatorModulo,
	BinaryOperatorExponentiationAssignment:     BinaryOperatorExponentiation,
	BinaryOperatorAndAssignment:                BinaryOperatorAnd,
	BinaryOperatorOrAssignment:                 BinaryOperatorOr,
	BinaryOperatorNullishCoalesceAssignment:    BinaryOperatorNullishCoalesce,
	BinaryOperatorBitwiseAndAssignment:         BinaryOperatorBitwiseAnd,
	BinaryOperatorBitwiseOrAssignment:          BinaryOperatorBitwiseOr,
	BinaryOperatorBitwiseXorAssignment:         BinaryOperatorBitwiseXor,
	BinaryOperatorShiftLeftAssignment:          BinaryOperatorShiftLeft,
	BinaryOperatorShiftRightAssignment:         BinaryOperatorShiftRight,
	BinaryOperatorUnsignedShiftRightAssignment: BinaryOperatorUnsignedShiftRight,
}

// IsAssignment reports whether op writes to its left operand.
func (op BinaryOperator) IsAssignment() bool {
	if op == BinaryOperatorAssign {
		return true
	}
	_, ok := compoundAssignmentBase[op]
	return ok
}

// CompoundBase returns the arithmetic operator of a compound assignment,
// e.g. `+` for `+=`.
func (op BinaryOperator) CompoundBase() (BinaryOperator, bool) {
	base, ok := compoundAssignmentBase[op]
	return base, ok
}

// OutputExpression represents an expression in the output AST
type OutputExpression interface {
	GetSourceSpan() *util.ParseSourceSpan
	VisitExpression(visitor ExpressionVisitor, context interface{}) interface{}
	IsConstant() bool
}

// ExpressionVisitor is the interface for visiting expressions
type ExpressionVisitor interface {
	VisitReadVarExpr(ast *ReadVarExpr, context interface{}) interface{}
	VisitLiteralExpr(ast *LiteralExpr, context interface{}) interface{}
	VisitRegularExpressionLiteral(ast *RegularExpressionLiteralExpr, context interface{}) interface{}
	VisitTemplateLiteralExpr(ast *TemplateLiteralExpr, context interface{}) interface{}
	VisitTemplateLiteralElementExpr(ast *TemplateLiteralElementExpr, context interface{}) interface{}
	VisitTaggedTemplateLiteralExpr(ast *TaggedTemplateLiteralExpr, context interface{}) interface{}
	VisitLiteralArrayExpr(ast *LiteralArrayExpr, context interface{}) interface{}
	VisitLiteralMapExpr(ast *LiteralMapExpr, context interface{}) interface{}
	VisitReadPropExpr(ast *ReadPropExpr, context interface{}) interface{}
	VisitReadKeyExpr(ast *ReadKeyExpr, context interface{}) interface{}
	VisitInvokeFunctionExpr(ast *InvokeFunctionExpr, context interface{}) interface{}
	VisitInstantiateExpr(ast *InstantiateExpr, context interface{}) interface{}
	VisitBinaryOperatorExpr(ast *BinaryOperatorExpr, context interface{}) interface{}
	VisitUnaryOperatorExpr(ast *UnaryOperatorExpr, context interface{}) interface{}
	VisitUpdateExpr(ast *UpdateExpr, context interface{}) interface{}
	VisitConditionalExpr(ast *ConditionalExpr, context interface{}) interface{}
	VisitFunctionExpr(ast *FunctionExpr, context interface{}) interface{}
	VisitArrowFunctionExpr(ast *ArrowFunctionExpr, context interface{}) interface{}
	VisitAwaitExpr(ast *AwaitExpr, context interface{}) interface{}
	VisitCommaExpr(ast *CommaExpr, context interface{}) interface{}
	VisitSpreadExpr(ast *SpreadExpr, context interface{}) interface{}
}

// ExpressionBase is the base struct for all expressions
type ExpressionBase struct {
	SourceSpan *util.ParseSourceSpan
}

// GetSourceSpan returns the source span
func (e *ExpressionBase) GetSourceSpan() *util.ParseSourceSpan {
	return e.SourceSpan
}

// ReadVarExpr represents a variable read expression. `this` is a ReadVarExpr
// with the name "this".
type ReadVarExpr struct {
	ExpressionBase
	Name string
}

// NewReadVarExpr creates a new ReadVarExpr
func NewReadVarExpr(name string, sourceSpan *util.ParseSourceSpan) *ReadVarExpr {
	return &ReadVarExpr{ExpressionBase: ExpressionBase{SourceSpan: sourceSpan}, Name: name}
}

// VisitExpression implements OutputExpression interface
func (r *ReadVarExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitReadVarExpr(r, context)
}

// IsConstant implements OutputExpression interface
func (r *ReadVarExpr) IsConstant() bool {
	return false
}

// Set creates an assignment to this variable
func (r *ReadVarExpr) Set(value OutputExpression) *BinaryOperatorExpr {
	return NewBinaryOperatorExpr(BinaryOperatorAssign, r, value, nil)
}

// LiteralExpr represents a literal value: nil (null), bool, float64, int or string
type LiteralExpr struct {
	ExpressionBase
	Value interface{}
}

// NewLiteralExpr creates a new LiteralExpr
func NewLiteralExpr(value interface{}, sourceSpan *util.ParseSourceSpan) *LiteralExpr {
	return &LiteralExpr{ExpressionBase: ExpressionBase{SourceSpan: sourceSpan}, Value: value}
}

func (l *LiteralExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitLiteralExpr(l, context)
}

func (l *LiteralExpr) IsConstant() bool {
	return true
}

// RegularExpressionLiteralExpr represents a regular expression literal
type RegularExpressionLiteralExpr struct {
	ExpressionBase
	Body  string
	Flags string
}

// NewRegularExpressionLiteralExpr creates a new RegularExpressionLiteralExpr
func NewRegularExpressionLiteralExpr(body, flags string, sourceSpan *util.ParseSourceSpan) *RegularExpressionLiteralExpr {
	return &RegularExpressionLiteralExpr{ExpressionBase: ExpressionBase{SourceSpan: sourceSpan}, Body: body, Flags: flags}
}

func (r *RegularExpressionLiteralExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitRegularExpressionLiteral(r, context)
}

func (r *RegularExpressionLiteralExpr) IsConstant() bool {
	return false
}

// TemplateLiteralExpr represents a template literal. Elements has one more
// entry than Expressions.
type TemplateLiteralExpr struct {
	ExpressionBase
	Elements    []*TemplateLiteralElementExpr
	Expressions []OutputExpression
}

// NewTemplateLiteralExpr creates a new TemplateLiteralExpr
func NewTemplateLiteralExpr(elements []*TemplateLiteralElementExpr, expressions []OutputExpression, sourceSpan *util.ParseSourceSpan) *TemplateLiteralExpr {
	return &TemplateLiteralExpr{
		ExpressionBase: ExpressionBase{SourceSpan: sourceSpan},
		Elements:       elements,
		Expressions:    expressions,
	}
}

func (t *TemplateLiteralExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitTemplateLiteralExpr(t, context)
}

func (t *TemplateLiteralExpr) IsConstant() bool {
	for _, e := range t.Expressions {
		if !e.IsConstant() {
			return false
		}
	}
	return true
}

// TemplateLiteralElementExpr represents a static chunk of a template literal
type TemplateLiteralElementExpr struct {
	ExpressionBase
	Text    string
	RawText string
}

// NewTemplateLiteralElementExpr creates a new TemplateLiteralElementExpr
func NewTemplateLiteralElementExpr(text string, sourceSpan *util.ParseSourceSpan, rawText string) *TemplateLiteralElementExpr {
	if rawText == "" {
		rawText = escapeTemplateRaw(text)
	}
	return &TemplateLiteralElementExpr{ExpressionBase: ExpressionBase{SourceSpan: sourceSpan}, Text: text, RawText: rawText}
}

func (t *TemplateLiteralElementExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitTemplateLiteralElementExpr(t, context)
}

func (t *TemplateLiteralElementExpr) IsConstant() bool {
	return true
}

// TaggedTemplateLiteralExpr represents tag`...`
type TaggedTemplateLiteralExpr struct {
	ExpressionBase
	Tag      OutputExpression
	Template *TemplateLiteralExpr
}

// NewTaggedTemplateLiteralExpr creates a new TaggedTemplateLiteralExpr
func NewTaggedTemplateLiteralExpr(tag OutputExpression, template *TemplateLiteralExpr, sourceSpan *util.ParseSourceSpan) *TaggedTemplateLiteralExpr {
	return &TaggedTemplateLiteralExpr{ExpressionBase: ExpressionBase{SourceSpan: sourceSpan}, Tag: tag, Template: template}
}

func (t *TaggedTemplateLiteralExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitTaggedTemplateLiteralExpr(t, context)
}

func (t *TaggedTemplateLiteralExpr) IsConstant() bool {
	return false
}

// LiteralArrayExpr represents an array literal
type LiteralArrayExpr struct {
	ExpressionBase
	Entries []OutputExpression
}

// NewLiteralArrayExpr creates a new LiteralArrayExpr
func NewLiteralArrayExpr(entries []OutputExpression, sourceSpan *util.ParseSourceSpan) *LiteralArrayExpr {
	return &LiteralArrayExpr{ExpressionBase: ExpressionBase{SourceSpan: sourceSpan}, Entries: entries}
}

func (l *LiteralArrayExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitLiteralArrayExpr(l, context)
}

func (l *LiteralArrayExpr) IsConstant() bool {
	for _, e := range l.Entries {
		if !e.IsConstant() {
			return false
		}
	}
	return true
}

// LiteralMapEntry is one property of an object literal. Computed keys are held
// in KeyExpr; spread entries carry only Value.
type LiteralMapEntry struct {
	Key     string
	KeyExpr OutputExpression
	Value   OutputExpression
	Quoted  bool
	Spread  bool
}

// NewLiteralMapEntry creates a new LiteralMapEntry
func NewLiteralMapEntry(key string, value OutputExpression, quoted bool) *LiteralMapEntry {
	return &LiteralMapEntry{Key: key, Value: value, Quoted: quoted}
}

// LiteralMapExpr represents an object literal
type LiteralMapExpr struct {
	ExpressionBase
	Entries []*LiteralMapEntry
}

// NewLiteralMapExpr creates a new LiteralMapExpr
func NewLiteralMapExpr(entries []*LiteralMapEntry, sourceSpan *util.ParseSourceSpan) *LiteralMapExpr {
	return &LiteralMapExpr{ExpressionBase: ExpressionBase{SourceSpan: sourceSpan}, Entries: entries}
}

func (l *LiteralMapExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitLiteralMapExpr(l, context)
}

func (l *LiteralMapExpr) IsConstant() bool {
	for _, e := range l.Entries {
		if e.KeyExpr != nil || e.Spread || !e.Value.IsConstant() {
			return false
		}
	}
	return true
}

// ReadPropExpr represents `receiver.name` or `receiver?.name`
type ReadPropExpr struct {
	ExpressionBase
	Receiver OutputExpression
	Name     string
	Optional bool
}

// NewReadPropExpr creates a new ReadPropExpr
func NewReadPropExpr(receiver OutputExpression, name string, sourceSpan *util.ParseSourceSpan) *ReadPropExpr {
	return &ReadPropExpr{ExpressionBase: ExpressionBase{SourceSpan: sourceSpan}, Receiver: receiver, Name: name}
}

func (r *ReadPropExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitReadPropExpr(r, context)
}

func (r *ReadPropExpr) IsConstant() bool {
	return false
}

// Set creates an assignment to this property
func (r *ReadPropExpr) Set(value OutputExpression) *BinaryOperatorExpr {
	return NewBinaryOperatorExpr(BinaryOperatorAssign, r, value, nil)
}

// ReadKeyExpr represents `receiver[index]`
type ReadKeyExpr struct {
	ExpressionBase
	Receiver OutputExpression
	Index    OutputExpression
	Optional bool
}

// NewReadKeyExpr creates a new ReadKeyExpr
func NewReadKeyExpr(receiver, index OutputExpression, sourceSpan *util.ParseSourceSpan) *ReadKeyExpr {
	return &ReadKeyExpr{ExpressionBase: ExpressionBase{SourceSpan: sourceSpan}, Receiver: receiver, Index: index}
}

func (r *ReadKeyExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitReadKeyExpr(r, context)
}

func (r *ReadKeyExpr) IsConstant() bool {
	return false
}

// Set creates an assignment to this key
func (r *ReadKeyExpr) Set(value OutputExpression) *BinaryOperatorExpr {
	return NewBinaryOperatorExpr(BinaryOperatorAssign, r, value, nil)
}

// InvokeFunctionExpr represents a call
type InvokeFunctionExpr struct {
	ExpressionBase
	Fn       OutputExpression
	Args     []OutputExpression
	Optional bool
}

// NewInvokeFunctionExpr creates a new InvokeFunctionExpr
func NewInvokeFunctionExpr(fn OutputExpression, args []OutputExpression, sourceSpan *util.ParseSourceSpan) *InvokeFunctionExpr {
	return &InvokeFunctionExpr{ExpressionBase: ExpressionBase{SourceSpan: sourceSpan}, Fn: fn, Args: args}
}

func (i *InvokeFunctionExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitInvokeFunctionExpr(i, context)
}

func (i *InvokeFunctionExpr) IsConstant() bool {
	return false
}

// InstantiateExpr represents `new ClassExpr(args)`
type InstantiateExpr struct {
	ExpressionBase
	ClassExpr OutputExpression
	Args      []OutputExpression
}

// NewInstantiateExpr creates a new InstantiateExpr
func NewInstantiateExpr(classExpr OutputExpression, args []OutputExpression, sourceSpan *util.ParseSourceSpan) *InstantiateExpr {
	return &InstantiateExpr{ExpressionBase: ExpressionBase{SourceSpan: sourceSpan}, ClassExpr: classExpr, Args: args}
}

func (i *InstantiateExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitInstantiateExpr(i, context)
}

func (i *InstantiateExpr) IsConstant() bool {
	return false
}

// BinaryOperatorExpr represents binary operators, including assignments
type BinaryOperatorExpr struct {
	ExpressionBase
	Operator BinaryOperator
	Lhs      OutputExpression
	Rhs      OutputExpression
}

// NewBinaryOperatorExpr creates a new BinaryOperatorExpr
func NewBinaryOperatorExpr(operator BinaryOperator, lhs, rhs OutputExpression, sourceSpan *util.ParseSourceSpan) *BinaryOperatorExpr {
	return &BinaryOperatorExpr{ExpressionBase: ExpressionBase{SourceSpan: sourceSpan}, Operator: operator, Lhs: lhs, Rhs: rhs}
}

func (b *BinaryOperatorExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitBinaryOperatorExpr(b, context)
}

func (b *BinaryOperatorExpr) IsConstant() bool {
	return !b.Operator.IsAssignment() && b.Lhs.IsConstant() && b.Rhs.IsConstant()
}

// IsAssignment checks if this is an assignment operation
func (b *BinaryOperatorExpr) IsAssignment() bool {
	return b.Operator.IsAssignment()
}

// UnaryOperatorExpr represents prefix unary operators
type UnaryOperatorExpr struct {
	ExpressionBase
	Operator UnaryOperator
	Expr     OutputExpression
}

// NewUnaryOperatorExpr creates a new UnaryOperatorExpr
func NewUnaryOperatorExpr(operator UnaryOperator, expr OutputExpression, sourceSpan *util.ParseSourceSpan) *UnaryOperatorExpr {
	return &UnaryOperatorExpr{ExpressionBase: ExpressionBase{SourceSpan: sourceSpan}, Operator: operator, Expr: expr}
}

func (u *UnaryOperatorExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitUnaryOperatorExpr(u, context)
}

func (u *UnaryOperatorExpr) IsConstant() bool {
	return u.Operator != UnaryOperatorDelete && u.Expr.IsConstant()
}

// UpdateExpr represents `++x`, `x++`, `--x` and `x--`
type UpdateExpr struct {
	ExpressionBase
	Operator UpdateOperator
	Prefix   bool
	Expr     OutputExpression
}

// NewUpdateExpr creates a new UpdateExpr
func NewUpdateExpr(operator UpdateOperator, prefix bool, expr OutputExpression, sourceSpan *util.ParseSourceSpan) *UpdateExpr {
	return &UpdateExpr{ExpressionBase: ExpressionBase{SourceSpan: sourceSpan}, Operator: operator, Prefix: prefix, Expr: expr}
}

func (u *UpdateExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitUpdateExpr(u, context)
}

func (u *UpdateExpr) IsConstant() bool {
	return false
}

// ConditionalExpr represents `condition ? trueCase : falseCase`
type ConditionalExpr struct {
	ExpressionBase
	Condition OutputExpression
	TrueCase  OutputExpression
	FalseCase OutputExpression
}

// NewConditionalExpr creates a new ConditionalExpr
func NewConditionalExpr(condition, trueCase, falseCase OutputExpression, sourceSpan *util.ParseSourceSpan) *ConditionalExpr {
	return &ConditionalExpr{ExpressionBase: ExpressionBase{SourceSpan: sourceSpan}, Condition: condition, TrueCase: trueCase, FalseCase: falseCase}
}

func (c *ConditionalExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitConditionalExpr(c, context)
}

func (c *ConditionalExpr) IsConstant() bool {
	return c.Condition.IsConstant() && c.TrueCase.IsConstant() && c.FalseCase.IsConstant()
}

// FnParam is a function parameter
type FnParam struct {
	Name    string
	Default OutputExpression
	Rest    bool
	Span    *util.ParseSourceSpan
}

// NewFnParam creates a new FnParam
func NewFnParam(name string) *FnParam {
	return &FnParam{Name: name}
}

// FunctionExpr represents a function expression
type FunctionExpr struct {
	ExpressionBase
	Params     []*FnParam
	Statements []OutputStatement
	Name       *string
	IsAsync    bool
}

// NewFunctionExpr creates a new FunctionExpr
func NewFunctionExpr(params []*FnParam, statements []OutputStatement, sourceSpan *util.ParseSourceSpan, name *string) *FunctionExpr {
	return &FunctionExpr{ExpressionBase: ExpressionBase{SourceSpan: sourceSpan}, Params: params, Statements: statements, Name: name}
}

func (f *FunctionExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitFunctionExpr(f, context)
}

func (f *FunctionExpr) IsConstant() bool {
	return false
}

// ToDeclStmt converts to a declare function statement
func (f *FunctionExpr) ToDeclStmt(name string) *DeclareFunctionStmt {
	stmt := NewDeclareFunctionStmt(name, f.Params, f.Statements, f.SourceSpan)
	stmt.IsAsync = f.IsAsync
	return stmt
}

// ArrowFunctionExpr represents an arrow function. Body is either an
// OutputExpression or a []OutputStatement.
type ArrowFunctionExpr struct {
	ExpressionBase
	Params  []*FnParam
	Body    interface{}
	IsAsync bool
}

// NewArrowFunctionExpr creates a new ArrowFunctionExpr
func NewArrowFunctionExpr(params []*FnParam, body interface{}, sourceSpan *util.ParseSourceSpan) *ArrowFunctionExpr {
	return &ArrowFunctionExpr{ExpressionBase: ExpressionBase{SourceSpan: sourceSpan}, Params: params, Body: body}
}

func (a *ArrowFunctionExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitArrowFunctionExpr(a, context)
}

func (a *ArrowFunctionExpr) IsConstant() bool {
	return false
}

// AwaitExpr represents `await expr`
type AwaitExpr struct {
	ExpressionBase
	Expr OutputExpression
}

// NewAwaitExpr creates a new AwaitExpr
func NewAwaitExpr(expr OutputExpression, sourceSpan *util.ParseSourceSpan) *AwaitExpr {
	return &AwaitExpr{ExpressionBase: ExpressionBase{SourceSpan: sourceSpan}, Expr: expr}
}

func (a *AwaitExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitAwaitExpr(a, context)
}

func (a *AwaitExpr) IsConstant() bool {
	return false
}

// CommaExpr represents a sequence expression
type CommaExpr struct {
	ExpressionBase
	Parts []OutputExpression
}

// NewCommaExpr creates a new CommaExpr
func NewCommaExpr(parts []OutputExpression, sourceSpan *util.ParseSourceSpan) *CommaExpr {
	return &CommaExpr{ExpressionBase: ExpressionBase{SourceSpan: sourceSpan}, Parts: parts}
}

func (c *CommaExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitCommaExpr(c, context)
}

func (c *CommaExpr) IsConstant() bool {
	return false
}

// SpreadExpr represents `...expr` inside calls and literals
type SpreadExpr struct {
	ExpressionBase
	Expr OutputExpression
}

// NewSpreadExpr creates a new SpreadExpr
func NewSpreadExpr(expr OutputExpression, sourceSpan *util.ParseSourceSpan) *SpreadExpr {
	return &SpreadExpr{ExpressionBase: ExpressionBase{SourceSpan: sourceSpan}, Expr: expr}
}

func (s *SpreadExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitSpreadExpr(s, context)
}

func (s *SpreadExpr) IsConstant() bool {
	return false
}

// Builder helpers used by code synthesis.

// Variable returns a read of name
func Variable(name string) *ReadVarExpr {
	return NewReadVarExpr(name, nil)
}

// This returns the `this` receiver
func This() *ReadVarExpr {
	return NewReadVarExpr("this", nil)
}

// Literal returns a literal value
func Literal(value interface{}) *LiteralExpr {
	return NewLiteralExpr(value, nil)
}

// Prop returns `receiver.name`
func Prop(receiver OutputExpression, name string) *ReadPropExpr {
	return NewReadPropExpr(receiver, name, nil)
}

// Key returns `receiver[index]`
func Key(receiver OutputExpression, index OutputExpression) *ReadKeyExpr {
	return NewReadKeyExpr(receiver, index, nil)
}

// Call returns `fn(args...)`
func Call(fn OutputExpression, args ...OutputExpression) *InvokeFunctionExpr {
	return NewInvokeFunctionExpr(fn, args, nil)
}

// Assign returns `lhs = rhs`
func Assign(lhs, rhs OutputExpression) *BinaryOperatorExpr {
	return NewBinaryOperatorExpr(BinaryOperatorAssign, lhs, rhs, nil)
}

// Binary returns `lhs op rhs`
func Binary(op BinaryOperator, lhs, rhs OutputExpression) *BinaryOperatorExpr {
	return NewBinaryOperatorExpr(op, lhs, rhs, nil)
}

// Stmt wraps an expression in an expression statement
func Stmt(expr OutputExpression) *ExpressionStatement {
	return NewExpressionStatement(expr, expr.GetSourceSpan())
}

func escapeTemplateRaw(text string) string {
	out := make([]byte, 0, len(text))
	for i := 0; i < len(text); i++ {
		switch c := text[i]; c {
		case '`', '\\':
			out = append(out, '\\', c)
		case '$':
			if i+1 < len(text) && text[i+1] == '{' {
				out = append(out, '\\', c)
			} else {
				out = append(out, c)
			}
		default:
			out = append(out, c)
		}
	}
	return string(out)
}
