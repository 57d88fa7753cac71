package evaluator

import (
	"fmt"

	"github.com/rill-lang/rill/internal/config"
)

// Builtins is the core native surface. Entries are bound into the prelude
// global frame, where user definitions may shadow them.
var Builtins = map[string]*Builtin{
	"len": {Name: "len", Arity: 1, Fn: builtinLen},
	"show": {Name: "show", Arity: 1, Fn: func(e *Evaluator, args []Value) Value {
		return &Text{Value: args[0].Inspect()}
	}},
	"type_of": {Name: "type_of", Arity: 1, Fn: func(e *Evaluator, args []Value) Value {
		return &Text{Value: operandName(args[0])}
	}},
	"print": {Name: "print", Arity: -1, Fn: builtinPrint},
	"println": {Name: "println", Arity: -1, Fn: func(e *Evaluator, args []Value) Value {
		res := builtinPrint(e, args)
		if isError(res) {
			return res
		}
		fmt.Fprintln(e.Out)
		return UNIT
	}},

	"seq": {Name: "seq", Arity: -1, Fn: func(e *Evaluator, args []Value) Value {
		return &Sequence{Elements: append([]Value(nil), args...)}
	}},
	"push": {Name: "push", Arity: 2, Fn: builtinPush},

	config.SomeCtorName: {Name: config.SomeCtorName, Arity: 1, Fn: func(e *Evaluator, args []Value) Value {
		return &Optional{Value: args[0]}
	}},
	config.OkCtorName: {Name: config.OkCtorName, Arity: 1, Fn: func(e *Evaluator, args []Value) Value {
		return &Outcome{Ok: true, Value: args[0]}
	}},
	config.ErrCtorName: {Name: config.ErrCtorName, Arity: 1, Fn: func(e *Evaluator, args []Value) Value {
		return &Outcome{Ok: false, Value: args[0]}
	}},
	"is_some": {Name: "is_some", Arity: 1, Fn: func(e *Evaluator, args []Value) Value {
		opt, ok := args[0].(*Optional)
		if !ok {
			return newError(TypeMismatch, "is_some expects an Optional, got %s", args[0].Type())
		}
		return nativeBoolToBoolean(opt.Value != nil)
	}},
	"is_ok": {Name: "is_ok", Arity: 1, Fn: func(e *Evaluator, args []Value) Value {
		out, ok := args[0].(*Outcome)
		if !ok {
			return newError(TypeMismatch, "is_ok expects an Outcome, got %s", args[0].Type())
		}
		return nativeBoolToBoolean(out.Ok)
	}},
	"unwrap": {Name: "unwrap", Arity: 1, Fn: builtinUnwrap},

	"ref": {Name: "ref", Arity: 1, Fn: func(e *Evaluator, args []Value) Value {
		return NewRef(args[0])
	}},
	"load": {Name: "load", Arity: 1, Fn: func(e *Evaluator, args []Value) Value {
		r, ok := args[0].(*Ref)
		if !ok {
			return newError(TypeMismatch, "load expects a ref, got %s", args[0].Type())
		}
		return r.Load()
	}},
	"store": {Name: "store", Arity: 2, Fn: func(e *Evaluator, args []Value) Value {
		r, ok := args[0].(*Ref)
		if !ok {
			return newError(TypeMismatch, "store expects a ref, got %s", args[0].Type())
		}
		r.Store(args[1])
		return UNIT
	}},

	"fail": {Name: "fail", Arity: 1, Fn: func(e *Evaluator, args []Value) Value {
		msg, ok := args[0].(*Text)
		if !ok {
			return newError(BuiltinInvocationError, "%s", args[0].Inspect())
		}
		return newError(BuiltinInvocationError, "%s", msg.Value)
	}},
}

// RegisterBuiltins binds the native surface and the builtin constant values
// into a global frame. Called once when building a prelude environment.
func RegisterBuiltins(globals *GlobalFrame) {
	for name, builtin := range Builtins {
		globals.Define(name, builtin)
	}
	for name, builtin := range GrpcBuiltins() {
		globals.Define(name, builtin)
	}
	globals.Define(config.NoneCtorName, &Optional{})
}

func builtinLen(e *Evaluator, args []Value) Value {
	switch v := args[0].(type) {
	case *Text:
		return NewInteger(I64, int64(len([]rune(v.Value))))
	case *Array:
		return NewInteger(I64, int64(len(v.Elements)))
	case *Sequence:
		return NewInteger(I64, int64(len(v.Elements)))
	case *Tuple:
		return NewInteger(I64, int64(len(v.Elements)))
	default:
		return newError(TypeMismatch, "len not supported for %s", args[0].Type())
	}
}

func builtinPrint(e *Evaluator, args []Value) Value {
	for i, arg := range args {
		if i > 0 {
			fmt.Fprint(e.Out, " ")
		}
		fmt.Fprint(e.Out, Render(arg))
	}
	return UNIT
}

func builtinPush(e *Evaluator, args []Value) Value {
	s, ok := args[0].(*Sequence)
	if !ok {
		return newError(TypeMismatch, "push expects a sequence, got %s", args[0].Type())
	}
	elems := make([]Value, 0, len(s.Elements)+1)
	elems = append(elems, s.Elements...)
	elems = append(elems, args[1])
	return &Sequence{Elements: elems}
}

func builtinUnwrap(e *Evaluator, args []Value) Value {
	switch v := args[0].(type) {
	case *Optional:
		if v.Value == nil {
			return newError(BuiltinInvocationError, "unwrap of None")
		}
		return v.Value
	case *Outcome:
		if !v.Ok {
			return newError(BuiltinInvocationError, "unwrap of Err(%s)", v.Value.Inspect())
		}
		return v.Value
	default:
		return newError(TypeMismatch, "unwrap expects Optional or Outcome, got %s", args[0].Type())
	}
}
