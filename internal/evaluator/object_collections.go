package evaluator

import "strings"

// Tuple is a fixed, heterogeneous aggregate.
type Tuple struct {
	Elements []Value
}

func (t *Tuple) Type() ValueType { return TUPLE_VALUE }
func (t *Tuple) Inspect() string {
	elems := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		elems[i] = e.Inspect()
	}
	return "(" + strings.Join(elems, ", ") + ")"
}

// Array is a fixed-length aggregate.
type Array struct {
	Elements []Value
}

func (a *Array) Type() ValueType { return ARRAY_VALUE }
func (a *Array) Inspect() string {
	elems := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		elems[i] = e.Inspect()
	}
	return "[" + strings.Join(elems, ", ") + "]"
}

// Sequence is a growable aggregate. Builtins that grow it return a new
// Sequence; the value itself is immutable like every non-Ref value.
type Sequence struct {
	Elements []Value
}

func (s *Sequence) Type() ValueType { return SEQUENCE_VALUE }
func (s *Sequence) Inspect() string {
	elems := make([]string, len(s.Elements))
	for i, e := range s.Elements {
		elems[i] = e.Inspect()
	}
	return "seq(" + strings.Join(elems, ", ") + ")"
}
