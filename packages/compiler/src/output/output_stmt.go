package output

import (
	"wick-go/packages/compiler/src/util"
)

// StatementVisitor is the interface for visiting statements
type StatementVisitor interface {
	VisitDeclareVarStmt(stmt *DeclareVarStmt, context interface{}) interface{}
	VisitDeclareFunctionStmt(stmt *DeclareFunctionStmt, context interface{}) interface{}
	VisitExpressionStmt(stmt *ExpressionStatement, context interface{}) interface{}
	VisitReturnStmt(stmt *ReturnStatement, context interface{}) interface{}
	VisitIfStmt(stmt *IfStmt, context interface{}) interface{}
	VisitBlockStmt(stmt *BlockStmt, context interface{}) interface{}
	VisitForStmt(stmt *ForStmt, context interface{}) interface{}
	VisitForInOfStmt(stmt *ForInOfStmt, context interface{}) interface{}
	VisitWhileStmt(stmt *WhileStmt, context interface{}) interface{}
	VisitThrowStmt(stmt *ThrowStmt, context interface{}) interface{}
	VisitTryCatchStmt(stmt *TryCatchStmt, context interface{}) interface{}
	VisitBranchStmt(stmt *BranchStmt, context interface{}) interface{}
	VisitSwitchStmt(stmt *SwitchStmt, context interface{}) interface{}
	VisitClassStmt(stmt *ClassStmt, context interface{}) interface{}
}

// OutputStatement represents a statement in the output AST
type OutputStatement interface {
	GetSourceSpan() *util.ParseSourceSpan
	VisitStatement(visitor StatementVisitor, context interface{}) interface{}
}

// StatementBase is the base struct for all statements
type StatementBase struct {
	SourceSpan *util.ParseSourceSpan
}

// GetSourceSpan returns the source span
func (s *StatementBase) GetSourceSpan() *util.ParseSourceSpan {
	return s.SourceSpan
}

// VarKind is the declaration keyword of a variable statement
type VarKind int

const (
	VarKindNone VarKind = iota
	VarKindVar
	VarKindLet
	VarKindConst
)

func (k VarKind) String() string {
	switch k {
	case VarKindVar:
		return "var"
	case VarKindLet:
		return "let"
	case VarKindConst:
		return "const"
	}
	return ""
}

// DeclareVarStmt represents a single variable declaration
type DeclareVarStmt struct {
	StatementBase
	Name     string
	Value    OutputExpression
	Kind     VarKind
	NameSpan *util.ParseSourceSpan
}

// NewDeclareVarStmt creates a new DeclareVarStmt
func NewDeclareVarStmt(name string, value OutputExpression, kind VarKind, sourceSpan *util.ParseSourceSpan) *DeclareVarStmt {
	if kind == VarKindNone {
		kind = VarKindVar
	}
	return &DeclareVarStmt{StatementBase: StatementBase{SourceSpan: sourceSpan}, Name: name, Value: value, Kind: kind}
}

func (d *DeclareVarStmt) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitDeclareVarStmt(d, context)
}

// DeclareFunctionStmt represents a function declaration
type DeclareFunctionStmt struct {
	StatementBase
	Name       string
	Params     []*FnParam
	Statements []OutputStatement
	IsAsync    bool
	NameSpan   *util.ParseSourceSpan
}

// NewDeclareFunctionStmt creates a new DeclareFunctionStmt
func NewDeclareFunctionStmt(name string, params []*FnParam, statements []OutputStatement, sourceSpan *util.ParseSourceSpan) *DeclareFunctionStmt {
	return &DeclareFunctionStmt{StatementBase: StatementBase{SourceSpan: sourceSpan}, Name: name, Params: params, Statements: statements}
}

func (d *DeclareFunctionStmt) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitDeclareFunctionStmt(d, context)
}

// ExpressionStatement represents an expression statement
type ExpressionStatement struct {
	StatementBase
	Expr OutputExpression
}

// NewExpressionStatement creates a new ExpressionStatement
func NewExpressionStatement(expr OutputExpression, sourceSpan *util.ParseSourceSpan) *ExpressionStatement {
	return &ExpressionStatement{StatementBase: StatementBase{SourceSpan: sourceSpan}, Expr: expr}
}

func (e *ExpressionStatement) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitExpressionStmt(e, context)
}

// ReturnStatement represents a return statement. Value may be nil.
type ReturnStatement struct {
	StatementBase
	Value OutputExpression
}

// NewReturnStatement creates a new ReturnStatement
func NewReturnStatement(value OutputExpression, sourceSpan *util.ParseSourceSpan) *ReturnStatement {
	return &ReturnStatement{StatementBase: StatementBase{SourceSpan: sourceSpan}, Value: value}
}

func (r *ReturnStatement) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitReturnStmt(r, context)
}

// IfStmt represents an if statement
type IfStmt struct {
	StatementBase
	Condition OutputExpression
	TrueCase  []OutputStatement
	FalseCase []OutputStatement
}

// NewIfStmt creates a new IfStmt
func NewIfStmt(condition OutputExpression, trueCase, falseCase []OutputStatement, sourceSpan *util.ParseSourceSpan) *IfStmt {
	return &IfStmt{StatementBase: StatementBase{SourceSpan: sourceSpan}, Condition: condition, TrueCase: trueCase, FalseCase: falseCase}
}

func (i *IfStmt) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitIfStmt(i, context)
}

// BlockStmt represents a nested block
type BlockStmt struct {
	StatementBase
	Statements []OutputStatement
}

// NewBlockStmt creates a new BlockStmt
func NewBlockStmt(statements []OutputStatement, sourceSpan *util.ParseSourceSpan) *BlockStmt {
	return &BlockStmt{StatementBase: StatementBase{SourceSpan: sourceSpan}, Statements: statements}
}

func (b *BlockStmt) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitBlockStmt(b, context)
}

// ForStmt represents `for (init; test; update) body`. Init may be a
// statement list of declarations or a single expression statement.
type ForStmt struct {
	StatementBase
	Init   []OutputStatement
	Test   OutputExpression
	Update OutputExpression
	Body   []OutputStatement
}

// NewForStmt creates a new ForStmt
func NewForStmt(init []OutputStatement, test, update OutputExpression, body []OutputStatement, sourceSpan *util.ParseSourceSpan) *ForStmt {
	return &ForStmt{StatementBase: StatementBase{SourceSpan: sourceSpan}, Init: init, Test: test, Update: update, Body: body}
}

func (f *ForStmt) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitForStmt(f, context)
}

// ForInOfStmt represents `for (x in y)` and `for (x of y)`. When Kind is
// VarKindNone the loop assigns to Target, otherwise it declares Name.
type ForInOfStmt struct {
	StatementBase
	Of       bool
	Kind     VarKind
	Name     string
	Target   OutputExpression
	Iterable OutputExpression
	Body     []OutputStatement
}

// NewForInOfStmt creates a new ForInOfStmt
func NewForInOfStmt(of bool, kind VarKind, name string, target, iterable OutputExpression, body []OutputStatement, sourceSpan *util.ParseSourceSpan) *ForInOfStmt {
	return &ForInOfStmt{
		StatementBase: StatementBase{SourceSpan: sourceSpan},
		Of:            of,
		Kind:          kind,
		Name:          name,
		Target:        target,
		Iterable:      iterable,
		Body:          body,
	}
}

func (f *ForInOfStmt) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitForInOfStmt(f, context)
}

// WhileStmt represents while and do-while loops
type WhileStmt struct {
	StatementBase
	Condition OutputExpression
	Body      []OutputStatement
	DoWhile   bool
}

// NewWhileStmt creates a new WhileStmt
func NewWhileStmt(condition OutputExpression, body []OutputStatement, doWhile bool, sourceSpan *util.ParseSourceSpan) *WhileStmt {
	return &WhileStmt{StatementBase: StatementBase{SourceSpan: sourceSpan}, Condition: condition, Body: body, DoWhile: doWhile}
}

func (w *WhileStmt) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitWhileStmt(w, context)
}

// ThrowStmt represents a throw statement
type ThrowStmt struct {
	StatementBase
	Error OutputExpression
}

// NewThrowStmt creates a new ThrowStmt
func NewThrowStmt(err OutputExpression, sourceSpan *util.ParseSourceSpan) *ThrowStmt {
	return &ThrowStmt{StatementBase: StatementBase{SourceSpan: sourceSpan}, Error: err}
}

func (t *ThrowStmt) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitThrowStmt(t, context)
}

// TryCatchStmt represents try/catch/finally. CatchStmts is nil when there is
// no catch clause.
type TryCatchStmt struct {
	StatementBase
	BodyStmts    []OutputStatement
	CatchParam   string
	CatchStmts   []OutputStatement
	FinallyStmts []OutputStatement
	HasCatch     bool
}

// NewTryCatchStmt creates a new TryCatchStmt
func NewTryCatchStmt(body []OutputStatement, catchParam string, catchStmts, finallyStmts []OutputStatement, hasCatch bool, sourceSpan *util.ParseSourceSpan) *TryCatchStmt {
	return &TryCatchStmt{
		StatementBase: StatementBase{SourceSpan: sourceSpan},
		BodyStmts:     body,
		CatchParam:    catchParam,
		CatchStmts:    catchStmts,
		FinallyStmts:  finallyStmts,
		HasCatch:      hasCatch,
	}
}

func (t *TryCatchStmt) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitTryCatchStmt(t, context)
}

// BranchStmt represents break and continue
type BranchStmt struct {
	StatementBase
	Continue bool
	Label    string
}

// NewBranchStmt creates a new BranchStmt
func NewBranchStmt(isContinue bool, label string, sourceSpan *util.ParseSourceSpan) *BranchStmt {
	return &BranchStmt{StatementBase: StatementBase{SourceSpan: sourceSpan}, Continue: isContinue, Label: label}
}

func (b *BranchStmt) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitBranchStmt(b, context)
}

// SwitchCase is one clause of a switch; Test is nil for default
type SwitchCase struct {
	Test OutputExpression
	Body []OutputStatement
}

// SwitchStmt represents a switch statement
type SwitchStmt struct {
	StatementBase
	Discriminant OutputExpression
	Cases        []*SwitchCase
}

// NewSwitchStmt creates a new SwitchStmt
func NewSwitchStmt(discriminant OutputExpression, cases []*SwitchCase, sourceSpan *util.ParseSourceSpan) *SwitchStmt {
	return &SwitchStmt{StatementBase: StatementBase{SourceSpan: sourceSpan}, Discriminant: discriminant, Cases: cases}
}

func (s *SwitchStmt) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitSwitchStmt(s, context)
}

// ClassMethod is one method of a generated class
type ClassMethod struct {
	Name       string
	Params     []*FnParam
	Statements []OutputStatement
	IsAsync    bool
}

// NewClassMethod creates a new ClassMethod
func NewClassMethod(name string, params []*FnParam, statements []OutputStatement) *ClassMethod {
	return &ClassMethod{Name: name, Params: params, Statements: statements}
}

// ClassStmt represents a class declaration
type ClassStmt struct {
	StatementBase
	Name    string
	Parent  OutputExpression
	Methods []*ClassMethod
}

// NewClassStmt creates a new ClassStmt
func NewClassStmt(name string, parent OutputExpression, methods []*ClassMethod, sourceSpan *util.ParseSourceSpan) *ClassStmt {
	return &ClassStmt{StatementBase: StatementBase{SourceSpan: sourceSpan}, Name: name, Parent: parent, Methods: methods}
}

func (c *ClassStmt) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitClassStmt(c, context)
}
