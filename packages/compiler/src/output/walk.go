package output

import "fmt"

// Inspect traverses an AST in depth-first order. node may be an
// OutputExpression, an OutputStatement or a []OutputStatement. fn is called for
// every expression and statement; if it returns false the children of that
// node are skipped.
func Inspect(node interface{}, fn func(node interface{}) bool) {
	switch n := node.(type) {
	case nil:
		return
	case []OutputStatement:
		for _, s := range n {
			Inspect(s, fn)
		}
		return
	case []OutputExpression:
		for _, e := range n {
			Inspect(e, fn)
		}
		return
	}
	if !fn(node) {
		return
	}
	switch n := node.(type) {
	case *ReadVarExpr, *LiteralExpr, *RegularExpressionLiteralExpr, *TemplateLiteralElementExpr:
	case *TemplateLiteralExpr:
		Inspect(n.Expressions, fn)
	case *TaggedTemplateLiteralExpr:
		Inspect(n.Tag, fn)
		Inspect(n.Template, fn)
	case *LiteralArrayExpr:
		Inspect(n.Entries, fn)
	case *LiteralMapExpr:
		for _, entry := range n.Entries {
			if entry.KeyExpr != nil {
				Inspect(entry.KeyExpr, fn)
			}
			Inspect(entry.Value, fn)
		}
	case *ReadPropExpr:
		Inspect(n.Receiver, fn)
	case *ReadKeyExpr:
		Inspect(n.Receiver, fn)
		Inspect(n.Index, fn)
	case *InvokeFunctionExpr:
		Inspect(n.Fn, fn)
		Inspect(n.Args, fn)
	case *InstantiateExpr:
		Inspect(n.ClassExpr, fn)
		Inspect(n.Args, fn)
	case *BinaryOperatorExpr:
		Inspect(n.Lhs, fn)
		Inspect(n.Rhs, fn)
	case *UnaryOperatorExpr:
		Inspect(n.Expr, fn)
	case *UpdateExpr:
		Inspect(n.Expr, fn)
	case *ConditionalExpr:
		Inspect(n.Condition, fn)
		Inspect(n.TrueCase, fn)
		Inspect(n.FalseCase, fn)
	case *FunctionExpr:
		inspectParams(n.Params, fn)
		Inspect(n.Statements, fn)
	case *ArrowFunctionExpr:
		inspectParams(n.Params, fn)
		Inspect(n.Body, fn)
	case *AwaitExpr:
		Inspect(n.Expr, fn)
	case *CommaExpr:
		Inspect(n.Parts, fn)
	case *SpreadExpr:
		Inspect(n.Expr, fn)

	case *DeclareVarStmt:
		if n.Value != nil {
			Inspect(n.Value, fn)
		}
	case *DeclareFunctionStmt:
		inspectParams(n.Params, fn)
		Inspect(n.Statements, fn)
	case *ExpressionStatement:
		Inspect(n.Expr, fn)
	case *ReturnStatement:
		if n.Value != nil {
			Inspect(n.Value, fn)
		}
	case *IfStmt:
		Inspect(n.Condition, fn)
		Inspect(n.TrueCase, fn)
		Inspect(n.FalseCase, fn)
	case *BlockStmt:
		Inspect(n.Statements, fn)
	case *ForStmt:
		Inspect(n.Init, fn)
		if n.Test != nil {
			Inspect(n.Test, fn)
		}
		if n.Update != nil {
			Inspect(n.Update, fn)
		}
		Inspect(n.Body, fn)
	case *ForInOfStmt:
		if n.Target != nil {
			Inspect(n.Target, fn)
		}
		Inspect(n.Iterable, fn)
		Inspect(n.Body, fn)
	case *WhileStmt:
		Inspect(n.Condition, fn)
		Inspect(n.Body, fn)
	case *ThrowStmt:
		Inspect(n.Error, fn)
	case *TryCatchStmt:
		Inspect(n.BodyStmts, fn)
		Inspect(n.CatchStmts, fn)
		Inspect(n.FinallyStmts, fn)
	case *BranchStmt:
	case *SwitchStmt:
		Inspect(n.Discriminant, fn)
		for _, c := range n.Cases {
			if c.Test != nil {
				Inspect(c.Test, fn)
			}
			Inspect(c.Body, fn)
		}
	case *ClassStmt:
		if n.Parent != nil {
			Inspect(n.Parent, fn)
		}
		for _, m := range n.Methods {
			inspectParams(m.Params, fn)
			Inspect(m.Statements, fn)
		}
	default:
		panic(fmt.Sprintf("output.Inspect: unexpected node %T", node))
	}
}

func inspectParams(params []*FnParam, fn func(node interface{}) bool) {
	for _, p := range params {
		if p.Default != nil {
			Inspect(p.Default, fn)
		}
	}
}

// Rewriter is called for every expression before its children. Returning
// (replacement, true) substitutes the node and stops descent into it.
type Rewriter func(expr OutputExpression) (OutputExpression, bool)

// RewriteExpr returns a copy of e with fn applied. Nodes that fn does not
// replace are shallow copied with rewritten children, so the input tree is
// never mutated and node identity of the input stays usable as a map key.
func RewriteExpr(e OutputExpression, fn Rewriter) OutputExpression {
	if e == nil {
		return nil
	}
	if out, ok := fn(e); ok {
		return out
	}
	switch n := e.(type) {
	case *ReadVarExpr, *LiteralExpr, *RegularExpressionLiteralExpr, *TemplateLiteralElementExpr:
		return e
	case *TemplateLiteralExpr:
		c := *n
		c.Expressions = rewriteExprs(n.Expressions, fn)
		return &c
	case *TaggedTemplateLiteralExpr:
		c := *n
		c.Tag = RewriteExpr(n.Tag, fn)
		c.Template = RewriteExpr(n.Template, fn).(*TemplateLiteralExpr)
		return &c
	case *LiteralArrayExpr:
		c := *n
		c.Entries = rewriteExprs(n.Entries, fn)
		return &c
	case *LiteralMapExpr:
		c := *n
		c.Entries = make([]*LiteralMapEntry, len(n.Entries))
		for i, entry := range n.Entries {
			ce := *entry
			ce.KeyExpr = RewriteExpr(entry.KeyExpr, fn)
			ce.Value = RewriteExpr(entry.Value, fn)
			c.Entries[i] = &ce
		}
		return &c
	case *ReadPropExpr:
		c := *n
		c.Receiver = RewriteExpr(n.Receiver, fn)
		return &c
	case *ReadKeyExpr:
		c := *n
		c.Receiver = RewriteExpr(n.Receiver, fn)
		c.Index = RewriteExpr(n.Index, fn)
		return &c
	case *InvokeFunctionExpr:
		c := *n
		c.Fn = RewriteExpr(n.Fn, fn)
		c.Args = rewriteExprs(n.Args, fn)
		return &c
	case *InstantiateExpr:
		c := *n
		c.ClassExpr = RewriteExpr(n.ClassExpr, fn)
		c.Args = rewriteExprs(n.Args, fn)
		return &c
	case *BinaryOperatorExpr:
		c := *n
		c.Lhs = RewriteExpr(n.Lhs, fn)
		c.Rhs = RewriteExpr(n.Rhs, fn)
		return &c
	case *UnaryOperatorExpr:
		c := *n
		c.Expr = RewriteExpr(n.Expr, fn)
		return &c
	case *UpdateExpr:
		c := *n
		c.Expr = RewriteExpr(n.Expr, fn)
		return &c
	case *ConditionalExpr:
		c := *n
		c.Condition = RewriteExpr(n.Condition, fn)
		c.TrueCase = RewriteExpr(n.TrueCase, fn)
		c.FalseCase = RewriteExpr(n.FalseCase, fn)
		return &c
	case *FunctionExpr:
		c := *n
		c.Params = rewriteParams(n.Params, fn)
		c.Statements = RewriteStmts(n.Statements, fn)
		return &c
	case *ArrowFunctionExpr:
		c := *n
		c.Params = rewriteParams(n.Params, fn)
		switch body := n.Body.(type) {
		case []OutputStatement:
			c.Body = RewriteStmts(body, fn)
		case OutputExpression:
			c.Body = RewriteExpr(body, fn)
		}
		return &c
	case *AwaitExpr:
		c := *n
		c.Expr = RewriteExpr(n.Expr, fn)
		return &c
	case *CommaExpr:
		c := *n
		c.Parts = rewriteExprs(n.Parts, fn)
		return &c
	case *SpreadExpr:
		c := *n
		c.Expr = RewriteExpr(n.Expr, fn)
		return &c
	}
	panic(fmt.Sprintf("output.RewriteExpr: unexpected node %T", e))
}

func rewriteExprs(exprs []OutputExpression, fn Rewriter) []OutputExpression {
	if exprs == nil {
		return nil
	}
	out := make([]OutputExpression, len(exprs))
	for i, e := range exprs {
		out[i] = RewriteExpr(e, fn)
	}
	return out
}

func rewriteParams(params []*FnParam, fn Rewriter) []*FnParam {
	out := make([]*FnParam, len(params))
	for i, p := range params {
		cp := *p
		cp.Default = RewriteExpr(p.Default, fn)
		out[i] = &cp
	}
	return out
}

// RewriteStmts applies fn to every expression of stmts, returning new statements.
func RewriteStmts(stmts []OutputStatement, fn Rewriter) []OutputStatement {
	if stmts == nil {
		return nil
	}
	out := make([]OutputStatement, len(stmts))
	for i, s := range stmts {
		out[i] = RewriteStmt(s, fn)
	}
	return out
}

// RewriteStmt applies fn to every expression of a single statement.
func RewriteStmt(stmt OutputStatement, fn Rewriter) OutputStatement {
	switch n := stmt.(type) {
	case *DeclareVarStmt:
		c := *n
		c.Value = RewriteExpr(n.Value, fn)
		return &c
	case *DeclareFunctionStmt:
		c := *n
		c.Params = rewriteParams(n.Params, fn)
		c.Statements = RewriteStmts(n.Statements, fn)
		return &c
	case *ExpressionStatement:
		c := *n
		c.Expr = RewriteExpr(n.Expr, fn)
		return &c
	case *ReturnStatement:
		c := *n
		c.Value = RewriteExpr(n.Value, fn)
		return &c
	case *IfStmt:
		c := *n
		c.Condition = RewriteExpr(n.Condition, fn)
		c.TrueCase = RewriteStmts(n.TrueCase, fn)
		c.FalseCase = RewriteStmts(n.FalseCase, fn)
		return &c
	case *BlockStmt:
		c := *n
		c.Statements = RewriteStmts(n.Statements, fn)
		return &c
	case *ForStmt:
		c := *n
		c.Init = RewriteStmts(n.Init, fn)
		c.Test = RewriteExpr(n.Test, fn)
		c.Update = RewriteExpr(n.Update, fn)
		c.Body = RewriteStmts(n.Body, fn)
		return &c
	case *ForInOfStmt:
		c := *n
		c.Target = RewriteExpr(n.Target, fn)
		c.Iterable = RewriteExpr(n.Iterable, fn)
		c.Body = RewriteStmts(n.Body, fn)
		return &c
	case *WhileStmt:
		c := *n
		c.Condition = RewriteExpr(n.Condition, fn)
		c.Body = RewriteStmts(n.Body, fn)
		return &c
	case *ThrowStmt:
		c := *n
		c.Error = RewriteExpr(n.Error, fn)
		return &c
	case *TryCatchStmt:
		c := *n
		c.BodyStmts = RewriteStmts(n.BodyStmts, fn)
		c.CatchStmts = RewriteStmts(n.CatchStmts, fn)
		c.FinallyStmts = RewriteStmts(n.FinallyStmts, fn)
		return &c
	case *BranchStmt:
		return n
	case *SwitchStmt:
		c := *n
		c.Discriminant = RewriteExpr(n.Discriminant, fn)
		c.Cases = make([]*SwitchCase, len(n.Cases))
		for i, sc := range n.Cases {
			c.Cases[i] = &SwitchCase{Test: RewriteExpr(sc.Test, fn), Body: RewriteStmts(sc.Body, fn)}
		}
		return &c
	case *ClassStmt:
		c := *n
		c.Parent = RewriteExpr(n.Parent, fn)
		c.Methods = make([]*ClassMethod, len(n.Methods))
		for i, m := range n.Methods {
			cm := *m
			cm.Params = rewriteParams(m.Params, fn)
			cm.Statements = RewriteStmts(m.Statements, fn)
			c.Methods[i] = &cm
		}
		return &c
	}
	panic(fmt.Sprintf("output.RewriteStmt: unexpected node %T", stmt))
}
