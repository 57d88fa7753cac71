package evaluator

import "github.com/rill-lang/rill/internal/ast"

// runLoopBody evaluates one iteration and folds the control signals:
// done=true means the loop is finished and result is its value (break value,
// a passthrough return signal, or a failure).
func (e *Evaluator) runLoopBody(body *ast.BlockStatement, env Environment) (result Value, done bool) {
	res := e.evalBlockStatement(body, env)
	if isError(res) {
		return res, true
	}
	switch sig := res.(type) {
	case *BreakSignal:
		return sig.Value, true
	case *ContinueSignal:
		return nil, false
	case *ReturnSignal:
		// Not ours to consume; the enclosing call boundary handles it.
		return sig, true
	}
	return nil, false
}

func (e *Evaluator) evalLoopExpression(node *ast.LoopExpression, env Environment) Value {
	for {
		// Interrupt is re-checked at every iteration boundary so a
		// non-terminating loop stays cancellable.
		if e.interrupted() {
			return newError(Interrupted, "evaluation interrupted")
		}
		if res, done := e.runLoopBody(node.Body, env); done {
			return res
		}
	}
}

func (e *Evaluator) evalWhileExpression(node *ast.WhileExpression, env Environment) Value {
	for {
		if e.interrupted() {
			return newError(Interrupted, "evaluation interrupted")
		}
		cond := e.Eval(node.Condition, env)
		if isError(cond) {
			return cond
		}
		// The condition sits inside the loop: break and continue from it
		// belong to this boundary, a return keeps unwinding.
		switch sig := cond.(type) {
		case *BreakSignal:
			return sig.Value
		case *ContinueSignal:
			continue
		case *ReturnSignal:
			return sig
		}
		b, ok := cond.(*Boolean)
		if !ok {
			return withSpan(newError(TypeMismatch, "while condition must be Bool, got %s", cond.Type()), node.Condition)
		}
		if !b.Value {
			return UNIT
		}
		if res, done := e.runLoopBody(node.Body, env); done {
			return res
		}
	}
}

func (e *Evaluator) evalForExpression(node *ast.ForExpression, env Environment) Value {
	iterable := e.Eval(node.Iterable, env)
	if isError(iterable) {
		return iterable
	}
	switch sig := iterable.(type) {
	case *BreakSignal:
		return sig.Value
	case *ContinueSignal:
		// No iteration was produced to resume; the loop is over.
		return UNIT
	case *ReturnSignal:
		return sig
	}

	var items []Value
	switch iterable := iterable.(type) {
	case *Array:
		items = iterable.Elements
	case *Sequence:
		items = iterable.Elements
	case *Tuple:
		items = iterable.Elements
	case *Text:
		for _, r := range iterable.Value {
			items = append(items, &Char{Value: r})
		}
	default:
		return withSpan(newError(TypeMismatch, "%s is not iterable", iterable.Type()), node.Iterable)
	}

	for _, item := range items {
		if e.interrupted() {
			return newError(Interrupted, "evaluation interrupted")
		}
		iterEnv := env.Extend(node.Item.Value, item)
		if res, done := e.runLoopBody(node.Body, iterEnv); done {
			return res
		}
	}
	return UNIT
}
