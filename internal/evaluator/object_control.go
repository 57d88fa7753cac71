package evaluator

// ReturnSignal unwinds to the nearest enclosing function-call boundary,
// which converts it into the call's result.
type ReturnSignal struct {
	Value Value
}

func (rs *ReturnSignal) Type() ValueType { return RETURN_SIGNAL }
func (rs *ReturnSignal) Inspect() string { return "return " + rs.Value.Inspect() }

// BreakSignal unwinds to the nearest enclosing loop boundary, optionally
// carrying the loop's result.
type BreakSignal struct {
	Value Value // UNIT for a bare break
}

func (bs *BreakSignal) Type() ValueType { return BREAK_SIGNAL }
func (bs *BreakSignal) Inspect() string { return "break" }

// ContinueSignal unwinds to the nearest enclosing loop boundary and resumes
// the next iteration.
type ContinueSignal struct{}

func (cs *ContinueSignal) Type() ValueType { return CONTINUE_SIGNAL }
func (cs *ContinueSignal) Inspect() string { return "continue" }

func isSignal(v Value) bool {
	switch v.Type() {
	case RETURN_SIGNAL, BREAK_SIGNAL, CONTINUE_SIGNAL:
		return true
	}
	return false
}

// isUnwind reports whether v aborts the surrounding expression: a failure,
// or a control signal travelling to its boundary. Subexpression results that
// unwind must be returned unchanged, never bound or embedded as values.
func isUnwind(v Value) bool { return isError(v) || isSignal(v) }
