package evaluator

type ValueType string

const (
	UNIT_VALUE     = "UNIT"
	BOOL_VALUE     = "BOOL"
	INT_VALUE      = "INT"
	FLOAT_VALUE    = "FLOAT"
	CHAR_VALUE     = "CHAR"
	TEXT_VALUE     = "TEXT"
	TUPLE_VALUE    = "TUPLE"
	ARRAY_VALUE    = "ARRAY"
	SEQUENCE_VALUE = "SEQUENCE"
	OPTIONAL_VALUE = "OPTIONAL"
	OUTCOME_VALUE  = "OUTCOME"
	STRUCT_VALUE   = "STRUCT"
	ENUM_VALUE     = "ENUM"

	FUNCTION_REF_VALUE = "FUNCTION_REF"
	CLOSURE_VALUE      = "CLOSURE"
	NATIVE_VALUE       = "NATIVE"
	REF_VALUE          = "REF"

	STRUCT_TYPE_VALUE = "STRUCT_TYPE"
	ENUM_TYPE_VALUE   = "ENUM_TYPE"

	GRPC_CONN_VALUE = "GRPC_CONN"

	ERROR_VALUE = "ERROR"

	// Internal unwind signals. Never user-visible: a signal escaping its
	// boundary is converted to a ControlFlowMisuse failure.
	RETURN_SIGNAL   = "RETURN_SIGNAL"
	BREAK_SIGNAL    = "BREAK_SIGNAL"
	CONTINUE_SIGNAL = "CONTINUE_SIGNAL"
)

// Value is the closed union of runtime values. Values are immutable except
// through the explicit Ref cell.
type Value interface {
	Type() ValueType
	Inspect() string
}
