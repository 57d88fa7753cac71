package evaluator

import "github.com/rill-lang/rill/internal/ast"

func (e *Evaluator) evalPrefixExpression(operator string, right Value) Value {
	switch operator {
	case "!":
		b, ok := right.(*Boolean)
		if !ok {
			return newError(TypeMismatch, "operator ! not supported for %s", right.Type())
		}
		return nativeBoolToBoolean(!b.Value)
	case "-":
		switch right := right.(type) {
		case *Integer:
			return NewInteger(right.Kind, -right.Value)
		case *Float:
			return &Float{Kind: right.Kind, Value: -right.Value}
		}
		return newError(TypeMismatch, "operator - not supported for %s", right.Type())
	default:
		return newError(UnsupportedConstruct, "unknown prefix operator %s", operator)
	}
}

// evalShortCircuit handles && and ||, which evaluate their right operand
// only when the left one does not decide the result.
func (e *Evaluator) evalShortCircuit(node *ast.InfixExpression, env Environment) Value {
	left := e.Eval(node.Left, env)
	if isUnwind(left) {
		return left
	}
	lb, ok := left.(*Boolean)
	if !ok {
		return newError(TypeMismatch, "operator %s expects Bool, got %s", node.Operator, left.Type())
	}
	if node.Operator == "&&" && !lb.Value {
		return FALSE
	}
	if node.Operator == "||" && lb.Value {
		return TRUE
	}
	right := e.Eval(node.Right, env)
	if isUnwind(right) {
		return right
	}
	rb, ok := right.(*Boolean)
	if !ok {
		return newError(TypeMismatch, "operator %s expects Bool, got %s", node.Operator, right.Type())
	}
	return nativeBoolToBoolean(rb.Value)
}

// evalInfixExpression dispatches on the operand variant pair. The table is
// fixed: mismatched operand types never coerce, they fail.
func (e *Evaluator) evalInfixExpression(operator string, left, right Value) Value {
	switch operator {
	case "==":
		return nativeBoolToBoolean(valuesEqual(left, right))
	case "!=":
		return nativeBoolToBoolean(!valuesEqual(left, right))
	}

	switch l := left.(type) {
	case *Integer:
		r, ok := right.(*Integer)
		if !ok || r.Kind != l.Kind {
			return typeMismatch(operator, left, right)
		}
		return e.evalIntegerInfix(operator, l, r)
	case *Float:
		r, ok := right.(*Float)
		if !ok || r.Kind != l.Kind {
			return typeMismatch(operator, left, right)
		}
		return e.evalFloatInfix(operator, l, r)
	case *Text:
		r, ok := right.(*Text)
		if !ok {
			return typeMismatch(operator, left, right)
		}
		return e.evalTextInfix(operator, l, r)
	case *Char:
		r, ok := right.(*Char)
		if !ok {
			return typeMismatch(operator, left, right)
		}
		return e.evalCharInfix(operator, l, r)
	default:
		return typeMismatch(operator, left, right)
	}
}

func typeMismatch(operator string, left, right Value) Value {
	return newError(TypeMismatch, "operator %s not supported for %s and %s",
		operator, operandName(left), operandName(right))
}

func operandName(v Value) string {
	switch v := v.(type) {
	case *Integer:
		return v.Kind.String()
	case *Float:
		return v.Kind.String()
	default:
		return string(v.Type())
	}
}

func (e *Evaluator) evalIntegerInfix(operator string, left, right *Integer) Value {
	k := left.Kind
	switch operator {
	case "+":
		return NewInteger(k, left.Value+right.Value)
	case "-":
		return NewInteger(k, left.Value-right.Value)
	case "*":
		return NewInteger(k, left.Value*right.Value)
	case "/":
		if right.Value == 0 {
			return newError(BuiltinInvocationError, "division by zero")
		}
		if !k.Signed() {
			return NewInteger(k, int64(left.Unsigned()/right.Unsigned()))
		}
		return NewInteger(k, left.Value/right.Value)
	case "%":
		if right.Value == 0 {
			return newError(BuiltinInvocationError, "division by zero")
		}
		if !k.Signed() {
			return NewInteger(k, int64(left.Unsigned()%right.Unsigned()))
		}
		return NewInteger(k, left.Value%right.Value)
	case "<", ">", "<=", ">=":
		if !k.Signed() {
			return compareOrdered(operator, left.Unsigned(), right.Unsigned())
		}
		return compareOrdered(operator, left.Value, right.Value)
	default:
		return newError(UnsupportedConstruct, "unknown operator %s for %s", operator, k)
	}
}

func (e *Evaluator) evalFloatInfix(operator string, left, right *Float) Value {
	switch operator {
	case "+":
		return &Float{Kind: left.Kind, Value: left.Value + right.Value}
	case "-":
		return &Float{Kind: left.Kind, Value: left.Value - right.Value}
	case "*":
		return &Float{Kind: left.Kind, Value: left.Value * right.Value}
	case "/":
		return &Float{Kind: left.Kind, Value: left.Value / right.Value}
	case "<", ">", "<=", ">=":
		return compareOrdered(operator, left.Value, right.Value)
	default:
		return newError(UnsupportedConstruct, "unknown operator %s for %s", operator, left.Kind)
	}
}

func (e *Evaluator) evalTextInfix(operator string, left, right *Text) Value {
	switch operator {
	case "+":
		return &Text{Value: left.Value + right.Value}
	case "<", ">", "<=", ">=":
		return compareOrdered(operator, left.Value, right.Value)
	default:
		return newError(TypeMismatch, "operator %s not supported for Text", operator)
	}
}

func (e *Evaluator) evalCharInfix(operator string, left, right *Char) Value {
	switch operator {
	case "<", ">", "<=", ">=":
		return compareOrdered(operator, left.Value, right.Value)
	default:
		return newError(TypeMismatch, "operator %s not supported for Char", operator)
	}
}

func compareOrdered[T int64 | uint64 | float64 | string | rune](operator string, left, right T) Value {
	switch operator {
	case "<":
		return nativeBoolToBoolean(left < right)
	case ">":
		return nativeBoolToBoolean(left > right)
	case "<=":
		return nativeBoolToBoolean(left <= right)
	default:
		return nativeBoolToBoolean(left >= right)
	}
}
