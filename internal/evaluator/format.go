package evaluator

// Render formats a value for display to a person rather than for re-reading:
// text and chars appear without quotes, everything else as Inspect.
func Render(v Value) string {
	switch v := v.(type) {
	case *Text:
		return v.Value
	case *Char:
		return string(v.Value)
	default:
		return v.Inspect()
	}
}
