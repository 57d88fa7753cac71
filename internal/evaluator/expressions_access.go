package evaluator

import (
	"github.com/rill-lang/rill/internal/ast"
)

func (e *Evaluator) evalIndexExpression(node *ast.IndexExpression, env Environment) Value {
	left := e.Eval(node.Left, env)
	if isUnwind(left) {
		return left
	}
	index := e.Eval(node.Index, env)
	if isUnwind(index) {
		return index
	}

	idx, ok := index.(*Integer)
	if !ok {
		return withSpan(newError(TypeMismatch, "index must be an integer, got %s", index.Type()), node)
	}
	i := idx.Value

	var elems []Value
	switch left := left.(type) {
	case *Array:
		elems = left.Elements
	case *Sequence:
		elems = left.Elements
	case *Tuple:
		elems = left.Elements
	case *Text:
		runes := []rune(left.Value)
		if i < 0 || i >= int64(len(runes)) {
			return withSpan(newError(BuiltinInvocationError, "index %d out of range (len %d)", i, len(runes)), node)
		}
		return &Char{Value: runes[i]}
	default:
		return withSpan(newError(TypeMismatch, "%s is not indexable", left.Type()), node)
	}

	if i < 0 || i >= int64(len(elems)) {
		return withSpan(newError(BuiltinInvocationError, "index %d out of range (len %d)", i, len(elems)), node)
	}
	return elems[i]
}

func (e *Evaluator) evalFieldExpression(node *ast.FieldExpression, env Environment) Value {
	obj := e.Eval(node.Object, env)
	if isUnwind(obj) {
		return obj
	}
	st, ok := obj.(*StructInstance)
	if !ok {
		return withSpan(newError(TypeMismatch, "%s has no fields", obj.Type()), node)
	}
	if v, ok := st.Field(node.Field.Value); ok {
		return v
	}
	return withSpan(newError(UndefinedBinding, "%s has no field %s", st.TypeName, node.Field.Value), node)
}

func (e *Evaluator) evalStructLiteral(node *ast.StructLiteral, env Environment) Value {
	tv, ok := env.Lookup(node.Name.Value)
	if !ok {
		return newError(UndefinedBinding, "undefined struct type: %s", node.Name.Value)
	}
	st, ok := tv.(*StructType)
	if !ok {
		return newError(TypeMismatch, "%s is not a struct type", node.Name.Value)
	}

	given := make(map[string]Value, len(node.Names))
	for i, name := range node.Names {
		val := e.Eval(node.Values[i], env)
		if isUnwind(val) {
			return val
		}
		given[name.Value] = val
	}

	if len(given) != len(st.Fields) {
		return newError(TypeMismatch, "%s has %d fields, literal supplies %d",
			st.Name, len(st.Fields), len(given))
	}
	// Fields are stored in declaration order regardless of literal order.
	fields := make([]Value, len(st.Fields))
	for i, name := range st.Fields {
		v, ok := given[name]
		if !ok {
			return newError(TypeMismatch, "%s literal is missing field %s", st.Name, name)
		}
		fields[i] = v
	}
	return &StructInstance{TypeName: st.Name, Names: append([]string(nil), st.Fields...), Fields: fields}
}

// evalVariantExpression resolves Type::Variant, with args non-nil when the
// variant was called with a payload.
func (e *Evaluator) evalVariantExpression(node *ast.VariantExpression, args []Value, env Environment) Value {
	tv, ok := env.Lookup(node.TypeName.Value)
	if !ok {
		return newError(UndefinedBinding, "undefined enum type: %s", node.TypeName.Value)
	}
	et, ok := tv.(*EnumType)
	if !ok {
		return newError(TypeMismatch, "%s is not an enum type", node.TypeName.Value)
	}
	decl, ok := et.Variant(node.Variant.Value)
	if !ok {
		return newError(UndefinedBinding, "%s has no variant %s", et.Name, node.Variant.Value)
	}
	if len(args) != decl.Arity {
		return newError(ArityMismatch, "%s::%s takes %d values, got %d",
			et.Name, decl.Name, decl.Arity, len(args))
	}
	return &EnumValue{TypeName: et.Name, Variant: decl.Name, Payload: args}
}
