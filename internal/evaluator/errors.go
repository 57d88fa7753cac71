package evaluator

import (
	"fmt"

	"github.com/rill-lang/rill/internal/ast"
)

// ErrorKind is the failure taxonomy. Every failure the evaluator produces
// carries one of these.
type ErrorKind string

const (
	UndefinedBinding       ErrorKind = "UndefinedBinding"
	ArityMismatch          ErrorKind = "ArityMismatch"
	TypeMismatch           ErrorKind = "TypeMismatch"
	UnsupportedConstruct   ErrorKind = "UnsupportedConstruct"
	NonExhaustiveMatch     ErrorKind = "NonExhaustiveMatch"
	CallDepthExceeded      ErrorKind = "CallDepthExceeded"
	BuiltinInvocationError ErrorKind = "BuiltinInvocationError"
	Interrupted            ErrorKind = "Interrupted"
	ControlFlowMisuse      ErrorKind = "ControlFlowMisuse"
	WorkerLost             ErrorKind = "WorkerLost"
)

// Error is a structured evaluation failure. It is a runtime value so it can
// unwind through eval like any other result, and a Go error so the session
// controller can hand it straight to callers. The evaluator performs no
// local recovery; errors propagate to whoever invoked Eval.
type Error struct {
	Kind    ErrorKind
	Message string
	Line    int
	Column  int
}

func (e *Error) Type() ValueType { return ERROR_VALUE }

func (e *Error) Inspect() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s at %d:%d: %s", e.Kind, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Error() string { return e.Inspect() }

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func isError(v Value) bool {
	if v == nil {
		return false
	}
	return v.Type() == ERROR_VALUE
}

// IsFailure reports whether v is a structured failure. Exported for the
// session controller and embedders; inside this package isError is used.
func IsFailure(v Value) bool { return isError(v) }

// withSpan fills in the originating node's source span if the error does not
// already carry one.
func withSpan(v Value, node ast.Node) Value {
	err, ok := v.(*Error)
	if !ok || err.Line > 0 || node == nil {
		return v
	}
	if provider, ok := node.(ast.TokenProvider); ok {
		tok := provider.GetToken()
		err.Line = tok.Line
		err.Column = tok.Column
	}
	return err
}
