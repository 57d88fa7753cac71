package evaluator

import (
	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/registry"
)

func (e *Evaluator) evalCallExpression(node *ast.CallExpression, env Environment) Value {
	// Payload variant construction is call syntax: Color::Rgb(1, 2, 3).
	if ve, ok := node.Callee.(*ast.VariantExpression); ok {
		args, errv := e.evalExpressions(node.Arguments, env)
		if errv != nil {
			return errv
		}
		return withSpan(e.evalVariantExpression(ve, args, env), node)
	}

	callee := e.Eval(node.Callee, env)
	if isUnwind(callee) {
		return callee
	}

	// Arguments are evaluated strictly, left to right, in the caller's
	// environment, before any parameter is bound.
	args, errv := e.evalExpressions(node.Arguments, env)
	if errv != nil {
		return errv
	}

	return withSpan(e.ApplyFunction(callee, args, env), node)
}

// ApplyFunction applies any callable value to already-evaluated arguments.
// Exported for the REPL, the embed API and builtins that call back into
// user functions.
func (e *Evaluator) ApplyFunction(callee Value, args []Value, env Environment) Value {
	if errv := e.enterCall(); errv != nil {
		return errv
	}
	defer e.exitCall()

	switch callee := callee.(type) {
	case *FunctionRef:
		return e.callByName(callee, args, env)
	case *Closure:
		if len(args) != len(callee.Parameters) {
			return newError(ArityMismatch, "function expects %d arguments, got %d",
				len(callee.Parameters), len(args))
		}
		return e.runBody(callee.Parameters, args, callee.Env, callee.Body)
	case *Builtin:
		if callee.Arity >= 0 && len(args) != callee.Arity {
			return newError(ArityMismatch, "%s expects %d arguments, got %d",
				callee.Name, callee.Arity, len(args))
		}
		return callee.Fn(e, args)
	default:
		return newError(TypeMismatch, "%s is not callable", callee.Type())
	}
}

// callByName is the late-binding path: resolve the definition through the
// registry at this very call, then run it. A replacement installed between
// two recursive calls is observed by the next one.
func (e *Evaluator) callByName(ref *FunctionRef, args []Value, env Environment) Value {
	def, ok := e.Defs.Lookup(ref.Module, ref.Name, len(args))
	if !ok {
		// Distinguish a wrong arity from a vanished definition. Arity is
		// checked here, before any parameter binding; the body is never
		// entered on a mismatch.
		if defs := e.Defs.ByName(ref.Module, ref.Name); len(defs) > 0 {
			return newError(ArityMismatch, "%s expects %d arguments, got %d",
				ref.Name, defs[0].Arity(), len(args))
		}
		return newError(UndefinedBinding, "undefined function: %s/%d", ref.Name, len(args))
	}
	return e.runDefinition(def, args, env)
}

// runDefinition executes a registry definition. The caller already holds
// its own copy of the definition pointer, so a concurrent Replace does not
// disturb this call — only the next resolution.
func (e *Evaluator) runDefinition(def *registry.FunctionDefinition, args []Value, env Environment) Value {
	if def.Compiled != nil {
		compiled, ok := def.Compiled.(*Builtin)
		if !ok {
			return newError(BuiltinInvocationError,
				"%s: compiled entry has unusable type %T", def.Name, def.Compiled)
		}
		return compiled.Fn(e, args)
	}

	// A named function's body chains to the global frame, not to a capture:
	// free variables resolve dynamically against the current globals,
	// consistent with late binding.
	return e.runBody(def.Params, args, env.GlobalOnly(), def.Body)
}

// runBody binds parameters in one fresh frame and evaluates the body,
// consuming a return signal at this call boundary. Break and continue must
// not cross a call boundary; one that reaches here is evaluator misuse.
func (e *Evaluator) runBody(params []string, args []Value, base Environment, body *ast.BlockStatement) Value {
	bindings := make(map[string]Value, len(params))
	for i, p := range params {
		bindings[p] = args[i]
	}
	callEnv := base.ExtendFrame(bindings)

	result := e.evalBlockStatement(body, callEnv)
	switch sig := result.(type) {
	case *ReturnSignal:
		return sig.Value
	case *BreakSignal:
		return newError(ControlFlowMisuse, "break outside of loop")
	case *ContinueSignal:
		return newError(ControlFlowMisuse, "continue outside of loop")
	}
	return result
}

// enterCall threads the explicit call-depth counter. Exceeding the
// configured maximum fails deterministically at the threshold instead of
// trusting the host stack.
func (e *Evaluator) enterCall() Value {
	if e.callDepth >= e.MaxCallDepth {
		// Checked before incrementing: the refused call must not leave the
		// counter raised, exitCall only runs for admitted calls.
		return newError(CallDepthExceeded, "maximum call depth %d exceeded", e.MaxCallDepth)
	}
	e.callDepth++
	return nil
}

// exitCall restores the counter on every exit path, including failures.
func (e *Evaluator) exitCall() {
	e.callDepth--
}
