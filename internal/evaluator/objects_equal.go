package evaluator

// valuesEqual is the structural equality used by ==, != and literal
// patterns. Aggregates compare element-wise; function values and refs
// compare by identity.
func valuesEqual(a, b Value) bool {
	switch a := a.(type) {
	case *Unit:
		_, ok := b.(*Unit)
		return ok
	case *Boolean:
		bb, ok := b.(*Boolean)
		return ok && a.Value == bb.Value
	case *Integer:
		bb, ok := b.(*Integer)
		return ok && a.Kind == bb.Kind && a.Value == bb.Value
	case *Float:
		bb, ok := b.(*Float)
		return ok && a.Kind == bb.Kind && a.Value == bb.Value
	case *Char:
		bb, ok := b.(*Char)
		return ok && a.Value == bb.Value
	case *Text:
		bb, ok := b.(*Text)
		return ok && a.Value == bb.Value
	case *Tuple:
		bb, ok := b.(*Tuple)
		return ok && elementsEqual(a.Elements, bb.Elements)
	case *Array:
		bb, ok := b.(*Array)
		return ok && elementsEqual(a.Elements, bb.Elements)
	case *Sequence:
		bb, ok := b.(*Sequence)
		return ok && elementsEqual(a.Elements, bb.Elements)
	case *Optional:
		bb, ok := b.(*Optional)
		if !ok {
			return false
		}
		if a.Value == nil || bb.Value == nil {
			return a.Value == nil && bb.Value == nil
		}
		return valuesEqual(a.Value, bb.Value)
	case *Outcome:
		bb, ok := b.(*Outcome)
		return ok && a.Ok == bb.Ok && valuesEqual(a.Value, bb.Value)
	case *StructInstance:
		bb, ok := b.(*StructInstance)
		return ok && a.TypeName == bb.TypeName && elementsEqual(a.Fields, bb.Fields)
	case *EnumValue:
		bb, ok := b.(*EnumValue)
		return ok && a.TypeName == bb.TypeName && a.Variant == bb.Variant &&
			elementsEqual(a.Payload, bb.Payload)
	case *FunctionRef:
		bb, ok := b.(*FunctionRef)
		return ok && a.Module == bb.Module && a.Name == bb.Name && a.Arity == bb.Arity
	default:
		// Closure, Builtin, Ref, type values: identity.
		return a == b
	}
}

func elementsEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !valuesEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
