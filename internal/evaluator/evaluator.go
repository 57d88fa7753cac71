// Package evaluator implements the tree-walking core: the runtime value
// model, the environment chain, and the recursive evaluator.
//
// Evaluation of a node ends in exactly one of three ways: a completed value,
// an internal unwind signal (return/break/continue) consumed by an ancestor
// boundary, or a structured *Error. There is no suspension; the model is
// fully synchronous within one evaluation.
package evaluator

import (
	"context"
	"io"
	"os"

	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/config"
	"github.com/rill-lang/rill/internal/registry"
)

// maxEvalDepth bounds the nesting of Eval calls (expression depth, not call
// depth) so a pathological tree cannot overflow the host stack.
const maxEvalDepth = 10000

// Evaluator interprets syntax-tree nodes against an Environment and a
// registry Store. It is single-use per evaluation context: the REPL worker
// creates one per submission, embedders one per VM.
type Evaluator struct {
	// Out receives the output of print builtins and diagnostics.
	Out io.Writer

	// Defs resolves name-based calls. FunctionRef values re-resolve through
	// it at every invocation, which is what gives redefinition immediate
	// universal effect.
	Defs registry.Store

	// Module is the module id new definitions are installed under.
	Module string

	// Context carries the cooperative interrupt flag. It is checked at
	// every node dispatch and at loop iteration boundaries; cancellation
	// surfaces as an Interrupted failure.
	Context context.Context

	// MaxCallDepth bounds nested function calls. The counter is threaded
	// through every call boundary explicitly, so exceeding the limit is a
	// deterministic, catchable failure independent of host stack size.
	MaxCallDepth int

	callDepth int
	evalDepth int
}

func New(defs registry.Store) *Evaluator {
	return &Evaluator{
		Out:          os.Stdout,
		Defs:         defs,
		Module:       config.DefaultModule,
		MaxCallDepth: config.DefaultMaxCallDepth,
	}
}

// Eval interprets node in env. Failures are returned as *Error values and
// carry the originating node's span when available.
func (e *Evaluator) Eval(node ast.Node, env Environment) Value {
	e.evalDepth++
	if e.evalDepth > maxEvalDepth {
		e.evalDepth--
		return newError(CallDepthExceeded, "expression nesting too deep")
	}
	defer func() { e.evalDepth-- }()

	if e.interrupted() {
		return newError(Interrupted, "evaluation interrupted")
	}

	return withSpan(e.evalCore(node, env), node)
}

func (e *Evaluator) interrupted() bool {
	if e.Context == nil {
		return false
	}
	select {
	case <-e.Context.Done():
		return true
	default:
		return false
	}
}

func (e *Evaluator) evalCore(node ast.Node, env Environment) Value {
	switch node := node.(type) {
	// Statements
	case *ast.Program:
		return e.EvalProgram(node, env)
	case *ast.ExpressionStatement:
		return e.Eval(node.Expression, env)
	case *ast.BlockStatement:
		return e.evalBlockStatement(node, env)
	case *ast.ReturnStatement:
		var val Value = UNIT
		if node.Value != nil {
			val = e.Eval(node.Value, env)
			if isUnwind(val) {
				return val
			}
		}
		return &ReturnSignal{Value: val}
	case *ast.BreakStatement:
		var val Value = UNIT
		if node.Value != nil {
			val = e.Eval(node.Value, env)
			if isUnwind(val) {
				return val
			}
		}
		return &BreakSignal{Value: val}
	case *ast.ContinueStatement:
		return &ContinueSignal{}

	// Literals
	case *ast.IntegerLiteral:
		kind, ok := IntKindFromSuffix(node.Suffix)
		if !ok {
			return newError(TypeMismatch, "unknown integer width %q", node.Suffix)
		}
		return NewInteger(kind, node.Value)
	case *ast.FloatLiteral:
		kind := FloatKind(F64)
		if node.Suffix == "f32" {
			kind = F32
		}
		return &Float{Kind: kind, Value: node.Value}
	case *ast.BooleanLiteral:
		return nativeBoolToBoolean(node.Value)
	case *ast.StringLiteral:
		return &Text{Value: node.Value}
	case *ast.CharLiteral:
		return &Char{Value: node.Value}
	case *ast.UnitLiteral:
		return UNIT

	// Identifiers and composites
	case *ast.Identifier:
		if v, ok := env.Lookup(node.Value); ok {
			return v
		}
		return newError(UndefinedBinding, "undefined binding: %s", node.Value)
	case *ast.TupleLiteral:
		elems, errv := e.evalExpressions(node.Elements, env)
		if errv != nil {
			return errv
		}
		return &Tuple{Elements: elems}
	case *ast.ArrayLiteral:
		elems, errv := e.evalExpressions(node.Elements, env)
		if errv != nil {
			return errv
		}
		return &Array{Elements: elems}
	case *ast.StructLiteral:
		return e.evalStructLiteral(node, env)
	case *ast.VariantExpression:
		return e.evalVariantExpression(node, nil, env)

	// Operators
	case *ast.PrefixExpression:
		right := e.Eval(node.Right, env)
		if isUnwind(right) {
			return right
		}
		return e.evalPrefixExpression(node.Operator, right)
	case *ast.InfixExpression:
		if node.Operator == "&&" || node.Operator == "||" {
			return e.evalShortCircuit(node, env)
		}
		left := e.Eval(node.Left, env)
		if isUnwind(left) {
			return left
		}
		right := e.Eval(node.Right, env)
		if isUnwind(right) {
			return right
		}
		return e.evalInfixExpression(node.Operator, left, right)

	// Control flow
	case *ast.IfExpression:
		return e.evalIfExpression(node, env)
	case *ast.MatchExpression:
		return e.evalMatchExpression(node, env)
	case *ast.LoopExpression:
		return e.evalLoopExpression(node, env)
	case *ast.WhileExpression:
		return e.evalWhileExpression(node, env)
	case *ast.ForExpression:
		return e.evalForExpression(node, env)

	// Functions
	case *ast.FunctionLiteral:
		params := make([]string, len(node.Parameters))
		for i, p := range node.Parameters {
			params[i] = p.Value
		}
		return &Closure{Parameters: params, Body: node.Body, Env: env.Capture()}
	case *ast.CallExpression:
		return e.evalCallExpression(node, env)
	case *ast.IndexExpression:
		return e.evalIndexExpression(node, env)
	case *ast.FieldExpression:
		return e.evalFieldExpression(node, env)

	case nil:
		return newError(UnsupportedConstruct, "nil syntax node")
	default:
		return newError(UnsupportedConstruct, "unsupported syntax node %T", node)
	}
}

// EvalProgram evaluates a sequence of top-level statements. Definitions at
// this level go to the global frame (and the registry for functions); the
// last statement's value is the program's value.
func (e *Evaluator) EvalProgram(program *ast.Program, env Environment) Value {
	var result Value = UNIT
	for _, stmt := range program.Statements {
		result = e.evalTopLevelStatement(stmt, env)
		if isError(result) {
			return result
		}
		if isSignal(result) {
			return withSpan(newError(ControlFlowMisuse, "%s outside of its boundary", signalName(result)), stmt)
		}
	}
	return result
}

func (e *Evaluator) evalTopLevelStatement(stmt ast.Statement, env Environment) Value {
	switch stmt := stmt.(type) {
	case *ast.LetStatement:
		val := e.Eval(stmt.Value, env)
		if isUnwind(val) {
			// A signal here surfaces as ControlFlowMisuse in EvalProgram;
			// the name is never bound.
			return val
		}
		env.DefineGlobal(stmt.Name.Value, val)
		return val
	case *ast.FunctionStatement:
		return e.defineFunction(stmt, env)
	case *ast.StructStatement:
		st := structTypeFromDecl(stmt)
		env.DefineGlobal(st.Name, st)
		return st
	case *ast.EnumStatement:
		et := enumTypeFromDecl(stmt)
		env.DefineGlobal(et.Name, et)
		return et
	default:
		return e.Eval(stmt, env)
	}
}

// defineFunction installs a named top-level function into the registry and
// binds a FunctionRef in the global frame. The body is not captured by the
// ref; calls resolve it late.
func (e *Evaluator) defineFunction(stmt *ast.FunctionStatement, env Environment) Value {
	params := make([]string, len(stmt.Parameters))
	for i, p := range stmt.Parameters {
		params[i] = p.Value
	}
	def := &registry.FunctionDefinition{
		Module: e.Module,
		Name:   stmt.Name.Value,
		Params: params,
		Body:   stmt.Body,
	}
	e.Defs.Replace(def)

	ref := &FunctionRef{Module: e.Module, Name: def.Name, Arity: def.Arity()}
	env.DefineGlobal(def.Name, ref)
	return ref
}

// evalBlockStatement runs statements in sequence. let and nested
// declarations extend the local chain for the remainder of the block; the
// final expression's value escapes unless a trailing separator demotes the
// block to Unit.
func (e *Evaluator) evalBlockStatement(block *ast.BlockStatement, env Environment) Value {
	var result Value = UNIT
	for _, stmt := range block.Statements {
		switch stmt := stmt.(type) {
		case *ast.LetStatement:
			val := e.Eval(stmt.Value, env)
			if isUnwind(val) {
				return val
			}
			env = env.Extend(stmt.Name.Value, val)
			result = UNIT
		case *ast.FunctionStatement:
			var cl *Closure
			env, cl = e.bindLocalFunction(stmt, env)
			result = cl
		case *ast.StructStatement:
			st := structTypeFromDecl(stmt)
			env = env.Extend(st.Name, st)
			result = st
		case *ast.EnumStatement:
			et := enumTypeFromDecl(stmt)
			env = env.Extend(et.Name, et)
			result = et
		default:
			result = e.Eval(stmt, env)
			if isUnwind(result) {
				return result
			}
		}
	}
	if block.TrailingSeparator {
		return UNIT
	}
	return result
}

// bindLocalFunction turns a nested fn statement into a closure bound in a
// fresh frame. The closure's captured chain includes its own binding, so
// local recursion works; the frame is mutated only before any other handle
// can see it.
func (e *Evaluator) bindLocalFunction(stmt *ast.FunctionStatement, env Environment) (Environment, *Closure) {
	params := make([]string, len(stmt.Parameters))
	for i, p := range stmt.Parameters {
		params[i] = p.Value
	}
	frame := &Frame{bindings: make(map[string]Value, 1), parent: env.frame}
	newEnv := Environment{frame: frame, globals: env.globals}
	cl := &Closure{Parameters: params, Body: stmt.Body, Env: newEnv}
	frame.bindings[stmt.Name.Value] = cl
	return newEnv, cl
}

// evalExpressions evaluates expressions strictly, left to right, in the
// caller's environment. The first failure or escaping signal aborts the rest.
func (e *Evaluator) evalExpressions(exprs []ast.Expression, env Environment) ([]Value, Value) {
	vals := make([]Value, 0, len(exprs))
	for _, expr := range exprs {
		v := e.Eval(expr, env)
		if isUnwind(v) {
			return nil, v
		}
		vals = append(vals, v)
	}
	return vals, nil
}

func structTypeFromDecl(stmt *ast.StructStatement) *StructType {
	fields := make([]string, len(stmt.Fields))
	for i, f := range stmt.Fields {
		fields[i] = f.Value
	}
	return &StructType{Name: stmt.Name.Value, Fields: fields}
}

func enumTypeFromDecl(stmt *ast.EnumStatement) *EnumType {
	variants := make([]EnumVariantDecl, len(stmt.Variants))
	for i, v := range stmt.Variants {
		variants[i] = EnumVariantDecl{Name: v.Name.Value, Arity: len(v.Params)}
	}
	return &EnumType{Name: stmt.Name.Value, Variants: variants}
}

func signalName(v Value) string {
	switch v.Type() {
	case RETURN_SIGNAL:
		return "return"
	case BREAK_SIGNAL:
		return "break"
	default:
		return "continue"
	}
}
