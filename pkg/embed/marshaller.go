package embed

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/rill-lang/rill/internal/evaluator"
)

// Marshaller converts between Go values and runtime values at the embedding
// boundary. Conversions are by value; mutating a converted collection on one
// side is invisible to the other.
type Marshaller struct{}

func NewMarshaller() *Marshaller { return &Marshaller{} }

var errType = reflect.TypeOf((*error)(nil)).Elem()
var valueType = reflect.TypeOf((*evaluator.Value)(nil)).Elem()

// ToValue converts a Go value into a runtime value. Functions become
// natives that marshal their arguments and results on every call. name is
// used for diagnostics only.
func (m *Marshaller) ToValue(name string, v any) (evaluator.Value, error) {
	if v == nil {
		return evaluator.UNIT, nil
	}
	if obj, ok := v.(evaluator.Value); ok {
		return obj, nil
	}

	switch val := v.(type) {
	case bool:
		if val {
			return evaluator.TRUE, nil
		}
		return evaluator.FALSE, nil
	case int:
		return evaluator.NewInteger(evaluator.I64, int64(val)), nil
	case int8:
		return evaluator.NewInteger(evaluator.I8, int64(val)), nil
	case int16:
		return evaluator.NewInteger(evaluator.I16, int64(val)), nil
	case int32:
		return evaluator.NewInteger(evaluator.I32, int64(val)), nil
	case int64:
		return evaluator.NewInteger(evaluator.I64, val), nil
	case uint8:
		return evaluator.NewInteger(evaluator.U8, int64(val)), nil
	case uint16:
		return evaluator.NewInteger(evaluator.U16, int64(val)), nil
	case uint32:
		return evaluator.NewInteger(evaluator.U32, int64(val)), nil
	case uint64:
		return evaluator.NewInteger(evaluator.U64, int64(val)), nil
	case float32:
		return &evaluator.Float{Kind: evaluator.F32, Value: float64(val)}, nil
	case float64:
		return &evaluator.Float{Kind: evaluator.F64, Value: val}, nil
	case string:
		return &evaluator.Text{Value: val}, nil
	case []any:
		elems := make([]evaluator.Value, len(val))
		for i, e := range val {
			obj, err := m.ToValue(fmt.Sprintf("%s[%d]", name, i), e)
			if err != nil {
				return nil, err
			}
			elems[i] = obj
		}
		return &evaluator.Array{Elements: elems}, nil
	case error:
		return &evaluator.Outcome{Ok: false, Value: &evaluator.Text{Value: val.Error()}}, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func:
		return m.wrapFunc(name, rv), nil
	case reflect.Slice, reflect.Array:
		elems := make([]evaluator.Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			obj, err := m.ToValue(fmt.Sprintf("%s[%d]", name, i), rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			elems[i] = obj
		}
		return &evaluator.Array{Elements: elems}, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%s: map keys must be strings, got %s", name, rv.Type().Key())
		}
		keys := rv.MapKeys()
		names := make([]string, 0, len(keys))
		for _, k := range keys {
			names = append(names, k.String())
		}
		sort.Strings(names)
		fields := make([]evaluator.Value, len(names))
		for i, k := range names {
			obj, err := m.ToValue(name+"."+k, rv.MapIndex(reflect.ValueOf(k)).Interface())
			if err != nil {
				return nil, err
			}
			fields[i] = obj
		}
		return &evaluator.StructInstance{Names: names, Fields: fields}, nil
	case reflect.Ptr:
		if rv.IsNil() {
			return evaluator.UNIT, nil
		}
		return m.ToValue(name, rv.Elem().Interface())
	}
	return nil, fmt.Errorf("%s: cannot convert Go %T into a runtime value", name, v)
}

// FromValue converts a runtime value into a Go value. target, when non-nil,
// requests conversion to a specific Go type for function binding; nil means
// the natural mapping.
func (m *Marshaller) FromValue(v evaluator.Value, target *reflect.Type) (any, error) {
	if target != nil {
		return m.toTyped(v, *target)
	}

	switch val := v.(type) {
	case *evaluator.Unit:
		return nil, nil
	case *evaluator.Boolean:
		return val.Value, nil
	case *evaluator.Integer:
		if val.Kind == evaluator.U64 {
			return uint64(val.Value), nil
		}
		return val.Value, nil
	case *evaluator.Float:
		return val.Value, nil
	case *evaluator.Char:
		return val.Value, nil
	case *evaluator.Text:
		return val.Value, nil
	case *evaluator.Tuple:
		return m.fromElements(val.Elements)
	case *evaluator.Array:
		return m.fromElements(val.Elements)
	case *evaluator.Sequence:
		return m.fromElements(val.Elements)
	case *evaluator.Optional:
		if val.Value == nil {
			return nil, nil
		}
		return m.FromValue(val.Value, nil)
	case *evaluator.Outcome:
		inner, err := m.FromValue(val.Value, nil)
		if err != nil {
			return nil, err
		}
		if !val.Ok {
			return nil, fmt.Errorf("Err(%v)", inner)
		}
		return inner, nil
	case *evaluator.StructInstance:
		fields := make(map[string]any, len(val.Names))
		for i, name := range val.Names {
			f, err := m.FromValue(val.Fields[i], nil)
			if err != nil {
				return nil, err
			}
			fields[name] = f
		}
		return fields, nil
	case *evaluator.EnumValue:
		if len(val.Payload) == 0 {
			return val.Inspect(), nil
		}
		return m.fromElements(val.Payload)
	case *evaluator.Ref:
		return m.FromValue(val.Load(), nil)
	}
	// Functions and other opaque values cross the boundary as themselves.
	return v, nil
}

func (m *Marshaller) fromElements(elems []evaluator.Value) ([]any, error) {
	out := make([]any, len(elems))
	for i, e := range elems {
		v, err := m.FromValue(e, nil)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// toTyped converts a runtime value into the exact Go type a bound function
// parameter expects.
func (m *Marshaller) toTyped(v evaluator.Value, t reflect.Type) (any, error) {
	if t == valueType {
		return v, nil
	}
	natural, err := m.FromValue(v, nil)
	if err != nil {
		return nil, err
	}
	if natural == nil {
		return reflect.Zero(t).Interface(), nil
	}
	nv := reflect.ValueOf(natural)
	if nv.Type() == t {
		return natural, nil
	}
	if nv.Type().ConvertibleTo(t) {
		return nv.Convert(t).Interface(), nil
	}
	if t.Kind() == reflect.Interface && nv.Type().Implements(t) {
		return natural, nil
	}
	return nil, fmt.Errorf("cannot pass %s as %s", v.Type(), t)
}

// wrapFunc turns a Go function into a native callable. Arguments are
// converted to the parameter types, results back to runtime values; a
// trailing error return maps onto the failure channel.
func (m *Marshaller) wrapFunc(name string, fn reflect.Value) *evaluator.Builtin {
	ft := fn.Type()
	arity := ft.NumIn()
	if ft.IsVariadic() {
		arity = -1
	}

	return &evaluator.Builtin{
		Name:  name,
		Arity: arity,
		Fn: func(e *evaluator.Evaluator, args []evaluator.Value) evaluator.Value {
			in, errVal := m.convertArgs(name, ft, args)
			if errVal != nil {
				return errVal
			}

			var out []reflect.Value
			if ft.IsVariadic() {
				out = fn.CallSlice(in)
			} else {
				out = fn.Call(in)
			}
			return m.convertResults(name, ft, out)
		},
	}
}

func (m *Marshaller) convertArgs(name string, ft reflect.Type, args []evaluator.Value) ([]reflect.Value, evaluator.Value) {
	numIn := ft.NumIn()
	if ft.IsVariadic() {
		if len(args) < numIn-1 {
			return nil, invocationError("%s expects at least %d arguments, got %d", name, numIn-1, len(args))
		}
	} else if len(args) != numIn {
		return nil, invocationError("%s expects %d arguments, got %d", name, numIn, len(args))
	}

	var in []reflect.Value
	for i, arg := range args {
		var pt reflect.Type
		if ft.IsVariadic() && i >= numIn-1 {
			pt = ft.In(numIn - 1).Elem()
		} else {
			pt = ft.In(i)
		}
		converted, err := m.toTyped(arg, pt)
		if err != nil {
			return nil, invocationError("%s argument %d: %s", name, i, err)
		}
		if converted == nil {
			in = append(in, reflect.Zero(pt))
		} else {
			in = append(in, reflect.ValueOf(converted).Convert(pt))
		}
	}

	if ft.IsVariadic() {
		// Pack the tail into the variadic slice for CallSlice.
		vt := ft.In(numIn - 1)
		tail := reflect.MakeSlice(vt, 0, len(in)-(numIn-1))
		for _, arg := range in[numIn-1:] {
			tail = reflect.Append(tail, arg)
		}
		in = append(in[:numIn-1], tail)
	}
	return in, nil
}

func (m *Marshaller) convertResults(name string, ft reflect.Type, out []reflect.Value) evaluator.Value {
	// A trailing error return is consumed here, never surfaced as a value.
	if n := ft.NumOut(); n > 0 && ft.Out(n-1) == errType {
		if errOut := out[n-1]; !errOut.IsNil() {
			return invocationError("%s: %s", name, errOut.Interface().(error).Error())
		}
		out = out[:n-1]
	}

	switch len(out) {
	case 0:
		return evaluator.UNIT
	case 1:
		obj, err := m.ToValue(name+" result", out[0].Interface())
		if err != nil {
			return invocationError("%s result: %s", name, err)
		}
		return obj
	default:
		elems := make([]evaluator.Value, len(out))
		for i, r := range out {
			obj, err := m.ToValue(fmt.Sprintf("%s result %d", name, i), r.Interface())
			if err != nil {
				return invocationError("%s result %d: %s", name, i, err)
			}
			elems[i] = obj
		}
		return &evaluator.Tuple{Elements: elems}
	}
}

func invocationError(format string, args ...any) *evaluator.Error {
	return &evaluator.Error{
		Kind:    evaluator.BuiltinInvocationError,
		Message: fmt.Sprintf(format, args...),
	}
}
