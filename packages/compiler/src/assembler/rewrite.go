package assembler

import (
	"wick-go/packages/compiler/src/binding"
	"wick-go/packages/compiler/src/output"
)

// rewriter replaces references resolved in a frame with instance accesses:
// reads become `this[ci]`, writes go through the update method of the
// variable and method references point at the method frame.
type rewriter struct {
	job   *Job
	frame *binding.Frame
}

func (j *Job) rewriterFor(frame *binding.Frame) *rewriter {
	return &rewriter{job: j, frame: frame}
}

func (r *rewriter) expr(e output.OutputExpression) output.OutputExpression {
	if r.frame == nil {
		return e
	}
	return output.RewriteExpr(e, r.visit)
}

func (r *rewriter) stmts(s []output.OutputStatement) []output.OutputStatement {
	if r.frame == nil {
		return s
	}
	return output.RewriteStmts(s, r.visit)
}

func (r *rewriter) params(params []*output.FnParam) []*output.FnParam {
	out := make([]*output.FnParam, len(params))
	for i, p := range params {
		cp := *p
		if p.Default != nil {
			cp.Default = r.expr(p.Default)
		}
		out[i] = &cp
	}
	return out
}

func (r *rewriter) variable(e output.OutputExpression) *binding.BindingVariable {
	ref, ok := e.(*output.ReadVarExpr)
	if !ok {
		return nil
	}
	return r.frame.Variable(ref)
}

// root returns the binding variable a member chain starts from.
func (r *rewriter) root(e output.OutputExpression) *binding.BindingVariable {
	for {
		switch n := e.(type) {
		case *output.ReadVarExpr:
			return r.frame.Variable(n)
		case *output.ReadPropExpr:
			e = n.Receiver
		case *output.ReadKeyExpr:
			e = n.Receiver
		default:
			return nil
		}
	}
}

func (r *rewriter) visit(e output.OutputExpression) (output.OutputExpression, bool) {
	switch n := e.(type) {
	case *output.ReadVarExpr:
		v := r.frame.Variable(n)
		if v == nil {
			return nil, false
		}
		if v.IsMethod() {
			return output.Call(output.Prop(methodRef(v), "bind"), output.This()), true
		}
		return slot(v), true

	case *output.InvokeFunctionExpr:
		v := r.variable(n.Fn)
		if v == nil || !v.IsMethod() {
			return nil, false
		}
		c := *n
		c.Fn = methodRef(v)
		c.Args = make([]output.OutputExpression, len(n.Args))
		for i, arg := range n.Args {
			c.Args[i] = r.expr(arg)
		}
		return &c, true

	case *output.BinaryOperatorExpr:
		if !n.Operator.IsAssignment() {
			return nil, false
		}
		v := r.root(n.Lhs)
		if v == nil || v.IsMethod() {
			return nil, false
		}
		value := r.expr(n.Rhs)
		if _, direct := n.Lhs.(*output.ReadVarExpr); direct {
			if base, ok := n.Operator.CompoundBase(); ok {
				value = output.Binary(base, slot(v), value)
			}
			return r.job.write(v, value), true
		}
		c := *n
		c.Lhs = r.expr(n.Lhs)
		c.Rhs = value
		return output.NewCommaExpr([]output.OutputExpression{&c, r.job.touch(v)}, n.SourceSpan), true

	case *output.UpdateExpr:
		v := r.root(n.Expr)
		if v == nil || v.IsMethod() {
			return nil, false
		}
		if _, direct := n.Expr.(*output.ReadVarExpr); direct {
			op := output.BinaryOperatorPlus
			if n.Operator == output.UpdateOperatorDecrement {
				op = output.BinaryOperatorMinus
			}
			return r.job.write(v, output.Binary(op, slot(v), output.Literal(1))), true
		}
		c := *n
		c.Expr = r.expr(n.Expr)
		return output.NewCommaExpr([]output.OutputExpression{&c, r.job.touch(v)}, n.SourceSpan), true
	}
	return nil, false
}

// slot is the instance storage of a binding variable.
func slot(v *binding.BindingVariable) output.OutputExpression {
	return output.Key(output.This(), output.Literal(v.ClassIndex))
}

func methodRef(v *binding.BindingVariable) output.OutputExpression {
	return output.Prop(output.This(), frameName(v.Method.Activate()))
}

// write stores value in v, running its update method when it has one.
func (j *Job) write(v *binding.BindingVariable, value output.OutputExpression) output.OutputExpression {
	if m := j.updates[v]; m != nil {
		return output.Call(output.Prop(output.This(), m.Name), value)
	}
	return output.Assign(slot(v), value)
}

// touch reruns the update method of v after one of its members changed.
func (j *Job) touch(v *binding.BindingVariable) output.OutputExpression {
	if m := j.updates[v]; m != nil {
		return output.Call(output.Prop(output.This(), m.Name), slot(v))
	}
	return slot(v)
}
