package evaluator

import "strings"

// Optional wraps a present value or nothing. Value is nil for None.
type Optional struct {
	Value Value
}

func (o *Optional) Type() ValueType { return OPTIONAL_VALUE }
func (o *Optional) Inspect() string {
	if o.Value == nil {
		return "None"
	}
	return "Some(" + o.Value.Inspect() + ")"
}

// Outcome is an ok/err result pair.
type Outcome struct {
	Ok    bool
	Value Value
}

func (o *Outcome) Type() ValueType { return OUTCOME_VALUE }
func (o *Outcome) Inspect() string {
	if o.Ok {
		return "Ok(" + o.Value.Inspect() + ")"
	}
	return "Err(" + o.Value.Inspect() + ")"
}

// StructType is the declared shape of a struct; struct literals resolve the
// name to one of these and must supply exactly its fields.
type StructType struct {
	Name   string
	Fields []string
}

func (st *StructType) Type() ValueType { return STRUCT_TYPE_VALUE }
func (st *StructType) Inspect() string {
	return "struct " + st.Name + " { " + strings.Join(st.Fields, ", ") + " }"
}

// StructInstance is a struct value: type name plus ordered named fields.
type StructInstance struct {
	TypeName string
	Names    []string
	Fields   []Value
}

func (si *StructInstance) Type() ValueType { return STRUCT_VALUE }
func (si *StructInstance) Inspect() string {
	fields := make([]string, len(si.Names))
	for i := range si.Names {
		fields[i] = si.Names[i] + ": " + si.Fields[i].Inspect()
	}
	return si.TypeName + " { " + strings.Join(fields, ", ") + " }"
}

// Field returns the named field's value.
func (si *StructInstance) Field(name string) (Value, bool) {
	for i, n := range si.Names {
		if n == name {
			return si.Fields[i], true
		}
	}
	return nil, false
}

// EnumVariantDecl describes one variant of a declared enum.
type EnumVariantDecl struct {
	Name  string
	Arity int
}

// EnumType is the declared shape of an enum.
type EnumType struct {
	Name     string
	Variants []EnumVariantDecl
}

func (et *EnumType) Type() ValueType { return ENUM_TYPE_VALUE }
func (et *EnumType) Inspect() string {
	names := make([]string, len(et.Variants))
	for i, v := range et.Variants {
		names[i] = v.Name
	}
	return "enum " + et.Name + " { " + strings.Join(names, ", ") + " }"
}

// Variant looks up a variant declaration by name.
func (et *EnumType) Variant(name string) (EnumVariantDecl, bool) {
	for _, v := range et.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return EnumVariantDecl{}, false
}

// EnumValue is an enum instance: type name, variant tag, optional payload.
type EnumValue struct {
	TypeName string
	Variant  string
	Payload  []Value
}

func (ev *EnumValue) Type() ValueType { return ENUM_VALUE }
func (ev *EnumValue) Inspect() string {
	name := ev.TypeName + "::" + ev.Variant
	if len(ev.Payload) == 0 {
		return name
	}
	elems := make([]string, len(ev.Payload))
	for i, p := range ev.Payload {
		elems[i] = p.Inspect()
	}
	return name + "(" + strings.Join(elems, ", ") + ")"
}
