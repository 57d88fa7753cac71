package config

const SourceFileExt = ".rill"

// DefaultModule is the module id used for definitions entered at the REPL or
// loaded from a standalone script.
const DefaultModule = "main"

// DefaultMaxCallDepth bounds the interpreter call stack. Exceeding it is a
// deterministic, catchable failure rather than a native stack fault.
const DefaultMaxCallDepth = 1000

// DefaultHistorySize bounds the REPL history ring.
const DefaultHistorySize = 100

// History binding names. After each successful submission the three most
// recent result values and submitted forms are rebound under these names.
var (
	ValueBindings = [3]string{"it", "it2", "it3"}
	FormBindings  = [3]string{"form", "form2", "form3"}
)

// Builtin constructor names for Optional and Outcome values.
const (
	SomeCtorName = "Some"
	NoneCtorName = "None"
	OkCtorName   = "Ok"
	ErrCtorName  = "Err"
)
