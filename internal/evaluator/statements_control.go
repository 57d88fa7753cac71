package evaluator

import (
	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/config"
)

func (e *Evaluator) evalIfExpression(node *ast.IfExpression, env Environment) Value {
	cond := e.Eval(node.Condition, env)
	if isUnwind(cond) {
		return cond
	}
	b, ok := cond.(*Boolean)
	if !ok {
		return withSpan(newError(TypeMismatch, "if condition must be Bool, got %s", cond.Type()), node.Condition)
	}
	if b.Value {
		return e.evalBlockStatement(node.Consequence, env)
	}
	if node.Alternative != nil {
		return e.evalBlockStatement(node.Alternative, env)
	}
	return UNIT
}

// evalMatchExpression tests arms in order; the first matching arm wins. A
// subject no arm matches is a runtime failure, never a silent skip.
func (e *Evaluator) evalMatchExpression(node *ast.MatchExpression, env Environment) Value {
	subject := e.Eval(node.Subject, env)
	if isUnwind(subject) {
		return subject
	}

	for _, arm := range node.Arms {
		bindings := make(map[string]Value)
		ok, errv := e.matchPattern(arm.Pattern, subject, env, bindings)
		if errv != nil {
			return errv
		}
		if !ok {
			continue
		}
		armEnv := env
		if len(bindings) > 0 {
			armEnv = env.ExtendFrame(bindings)
		}
		return e.Eval(arm.Body, armEnv)
	}
	return withSpan(newError(NonExhaustiveMatch, "no pattern matched %s", subject.Inspect()), node)
}

// matchPattern reports whether pattern matches subject, accumulating
// pattern bindings. The bool result is the match outcome; the Value result
// is non-nil only for a hard failure (for example an unevaluable literal).
func (e *Evaluator) matchPattern(pattern ast.Pattern, subject Value, env Environment, bindings map[string]Value) (bool, Value) {
	switch pattern := pattern.(type) {
	case *ast.WildcardPattern:
		return true, nil
	case *ast.IdentifierPattern:
		bindings[pattern.Name.Value] = subject
		return true, nil
	case *ast.LiteralPattern:
		lit := e.Eval(pattern.Literal, env)
		if isError(lit) {
			return false, lit
		}
		return valuesEqual(lit, subject), nil
	case *ast.TuplePattern:
		tup, ok := subject.(*Tuple)
		if !ok || len(tup.Elements) != len(pattern.Elements) {
			return false, nil
		}
		for i, sub := range pattern.Elements {
			ok, errv := e.matchPattern(sub, tup.Elements[i], env, bindings)
			if errv != nil || !ok {
				return ok, errv
			}
		}
		return true, nil
	case *ast.VariantPattern:
		return e.matchVariantPattern(pattern, subject, env, bindings)
	default:
		return false, newError(UnsupportedConstruct, "unsupported pattern %T", pattern)
	}
}

func (e *Evaluator) matchVariantPattern(pattern *ast.VariantPattern, subject Value, env Environment, bindings map[string]Value) (bool, Value) {
	variant := pattern.Variant.Value

	// Unqualified Some/None/Ok/Err match the Optional and Outcome builtins.
	if pattern.TypeName == nil {
		switch subject := subject.(type) {
		case *Optional:
			switch variant {
			case config.SomeCtorName:
				if subject.Value == nil {
					return false, nil
				}
				return e.matchPayload(pattern, []Value{subject.Value}, env, bindings)
			case config.NoneCtorName:
				return subject.Value == nil && len(pattern.Elements) == 0, nil
			}
			return false, nil
		case *Outcome:
			switch variant {
			case config.OkCtorName:
				if !subject.Ok {
					return false, nil
				}
				return e.matchPayload(pattern, []Value{subject.Value}, env, bindings)
			case config.ErrCtorName:
				if subject.Ok {
					return false, nil
				}
				return e.matchPayload(pattern, []Value{subject.Value}, env, bindings)
			}
			return false, nil
		}
		return false, nil
	}

	ev, ok := subject.(*EnumValue)
	if !ok || ev.TypeName != pattern.TypeName.Value || ev.Variant != variant {
		return false, nil
	}
	return e.matchPayload(pattern, ev.Payload, env, bindings)
}

func (e *Evaluator) matchPayload(pattern *ast.VariantPattern, payload []Value, env Environment, bindings map[string]Value) (bool, Value) {
	if len(pattern.Elements) != len(payload) {
		return false, nil
	}
	for i, sub := range pattern.Elements {
		ok, errv := e.matchPattern(sub, payload[i], env, bindings)
		if errv != nil || !ok {
			return ok, errv
		}
	}
	return true, nil
}
