package evaluator

import (
	"fmt"
	"strconv"
)

// Unit is the empty value ().
type Unit struct{}

func (u *Unit) Type() ValueType { return UNIT_VALUE }
func (u *Unit) Inspect() string { return "()" }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ValueType { return BOOL_VALUE }
func (b *Boolean) Inspect() string { return strconv.FormatBool(b.Value) }

// IntKind selects one member of the fixed-width integer family.
type IntKind uint8

const (
	I8 IntKind = iota
	I16
	I32
	I64
	U8
	U16
	U32
	U64
)

var intKindNames = [...]string{"i8", "i16", "i32", "i64", "u8", "u16", "u32", "u64"}

func (k IntKind) String() string { return intKindNames[k] }

// Signed reports whether the kind is one of the signed widths.
func (k IntKind) Signed() bool { return k <= I64 }

// Bits reports the width of the kind.
func (k IntKind) Bits() int {
	switch k {
	case I8, U8:
		return 8
	case I16, U16:
		return 16
	case I32, U32:
		return 32
	default:
		return 64
	}
}

// IntKindFromSuffix maps a literal suffix to its kind. The empty suffix is
// i64.
func IntKindFromSuffix(suffix string) (IntKind, bool) {
	if suffix == "" {
		return I64, true
	}
	for k, name := range intKindNames {
		if name == suffix {
			return IntKind(k), true
		}
	}
	return I64, false
}

// Integer holds any member of the integer family. Unsigned kinds store their
// bit pattern in Value; arithmetic wraps to the kind's width.
type Integer struct {
	Kind  IntKind
	Value int64
}

func (i *Integer) Type() ValueType { return INT_VALUE }
func (i *Integer) Inspect() string {
	if !i.Kind.Signed() {
		return strconv.FormatUint(i.Unsigned(), 10)
	}
	return strconv.FormatInt(i.Value, 10)
}

// Unsigned returns the value of an unsigned integer as uint64.
func (i *Integer) Unsigned() uint64 {
	return uint64(i.Value) & maskFor(i.Kind)
}

func maskFor(k IntKind) uint64 {
	switch k.Bits() {
	case 8:
		return 0xff
	case 16:
		return 0xffff
	case 32:
		return 0xffffffff
	default:
		return ^uint64(0)
	}
}

// wrapInt truncates v to the kind's width, sign-extending for signed kinds.
func wrapInt(k IntKind, v int64) int64 {
	switch k {
	case I8:
		return int64(int8(v))
	case I16:
		return int64(int16(v))
	case I32:
		return int64(int32(v))
	case I64:
		return v
	case U8:
		return int64(uint8(v))
	case U16:
		return int64(uint16(v))
	case U32:
		return int64(uint32(v))
	default:
		return v
	}
}

// NewInteger wraps v into kind k.
func NewInteger(k IntKind, v int64) *Integer {
	return &Integer{Kind: k, Value: wrapInt(k, v)}
}

// FloatKind selects one member of the float family.
type FloatKind uint8

const (
	F32 FloatKind = iota
	F64
)

func (k FloatKind) String() string {
	if k == F32 {
		return "f32"
	}
	return "f64"
}

type Float struct {
	Kind  FloatKind
	Value float64
}

func (f *Float) Type() ValueType { return FLOAT_VALUE }
func (f *Float) Inspect() string {
	s := strconv.FormatFloat(f.Value, 'g', -1, 64)
	if f.Kind == F32 {
		s = strconv.FormatFloat(float64(float32(f.Value)), 'g', -1, 32)
	}
	return s
}

type Char struct {
	Value rune
}

func (c *Char) Type() ValueType { return CHAR_VALUE }
func (c *Char) Inspect() string { return "'" + string(c.Value) + "'" }

type Text struct {
	Value string
}

func (t *Text) Type() ValueType { return TEXT_VALUE }
func (t *Text) Inspect() string { return fmt.Sprintf("%q", t.Value) }

var (
	UNIT  = &Unit{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

func nativeBoolToBoolean(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}
