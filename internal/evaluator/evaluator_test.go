package evaluator

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/rill-lang/rill/internal/parser"
	"github.com/rill-lang/rill/internal/registry"
)

func testEval(t *testing.T, input string) Value {
	t.Helper()
	globals := NewGlobalFrame()
	RegisterBuiltins(globals)
	return testEvalIn(t, input, globals, registry.New())
}

func testEvalIn(t *testing.T, input string, globals *GlobalFrame, reg *registry.Registry) Value {
	t.Helper()
	program, errs := parser.Parse(input)
	if len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	e := New(reg)
	e.Out = io.Discard
	return e.EvalProgram(program, NewEnvironment(globals))
}

func testInteger(t *testing.T, v Value, want int64) {
	t.Helper()
	i, ok := v.(*Integer)
	if !ok {
		t.Fatalf("expected Integer, got %T (%s)", v, v.Inspect())
	}
	if i.Value != want {
		t.Errorf("got %d, want %d", i.Value, want)
	}
}

func testBoolean(t *testing.T, v Value, want bool) {
	t.Helper()
	b, ok := v.(*Boolean)
	if !ok {
		t.Fatalf("expected Boolean, got %T (%s)", v, v.Inspect())
	}
	if b.Value != want {
		t.Errorf("got %t, want %t", b.Value, want)
	}
}

func testFailure(t *testing.T, v Value, kind ErrorKind) *Error {
	t.Helper()
	errv, ok := v.(*Error)
	if !ok {
		t.Fatalf("expected %s failure, got %T (%s)", kind, v, v.Inspect())
	}
	if errv.Kind != kind {
		t.Errorf("got %s failure (%s), want %s", errv.Kind, errv.Message, kind)
	}
	return errv
}

func TestIntegerExpressions(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"5", 5},
		{"-5", -5},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 / 3", 3},
		{"10 % 3", 1},
		{"7i16 + 1i16", 8},
		{"255u8 + 1u8", 0},   // wraps at width
		{"0u8 - 1u8", 255},   // wraps below zero
		{"127i8 + 1i8", -128}, // two's complement wrap
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			testInteger(t, testEval(t, tt.input), tt.want)
		})
	}
}

func TestBooleanExpressions(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"true", true},
		{"!true", false},
		{"1 < 2", true},
		{"2 <= 2", true},
		{"1 == 2", false},
		{"1 != 2", true},
		{"(1, 2) == (1, 2)", true},
		{"[1, 2] == [1, 3]", false},
		{`"a" < "b"`, true},
		{"true && false", false},
		{"true || false", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			testBoolean(t, testEval(t, tt.input), tt.want)
		})
	}
}

func TestShortCircuitSkipsRightOperand(t *testing.T) {
	// fail would produce a BuiltinInvocationError if evaluated.
	testBoolean(t, testEval(t, `false && fail("boom")`), false)
	testBoolean(t, testEval(t, `true || fail("boom")`), true)
}

func TestMixedWidthArithmeticFails(t *testing.T) {
	tests := []string{
		"1u8 + 1",
		"1i32 + 1i64",
		"1 + 1.5",
		"1 + true",
		`"a" * "b"`,
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			testFailure(t, testEval(t, input), TypeMismatch)
		})
	}
}

func TestDivisionByZero(t *testing.T) {
	testFailure(t, testEval(t, "1 / 0"), BuiltinInvocationError)
	testFailure(t, testEval(t, "1 % 0"), BuiltinInvocationError)
}

func TestLetAndShadowing(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{"global let", "let x = 5\nx", 5},
		{"parameter shadows global", "let x = 1\nfn f(x) { x }\nf(2)", 2},
		{"block let shadows outer", "let x = 1\nif true { let x = 2\nx } else { 0 }", 2},
		{"outer binding intact after block", "let x = 1\nlet y = if true { let x = 2\nx } else { 0 }\nx", 1},
		{"global rebinding", "let x = 1\nlet x = 2\nx", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testInteger(t, testEval(t, tt.input), tt.want)
		})
	}
}

func TestUndefinedBinding(t *testing.T) {
	errv := testFailure(t, testEval(t, "nope"), UndefinedBinding)
	if errv.Line == 0 {
		t.Errorf("failure carries no source span: %s", errv.Inspect())
	}
}

func TestIfExpressions(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"if true { 1 } else { 2 }", 1},
		{"if false { 1 } else { 2 }", 2},
		{"if false { 1 } else if true { 2 } else { 3 }", 2},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			testInteger(t, testEval(t, tt.input), tt.want)
		})
	}

	if v := testEval(t, "if false { 1 }"); v != UNIT {
		t.Errorf("if without alternative should be unit, got %s", v.Inspect())
	}
	testFailure(t, testEval(t, "if 1 { 2 } else { 3 }"), TypeMismatch)
}

func TestBlockTrailingSeparatorYieldsUnit(t *testing.T) {
	if v := testEval(t, "if true { 1; } else { 2 }"); v != UNIT {
		t.Errorf("trailing separator should demote block to unit, got %s", v.Inspect())
	}
}

func TestMatchExpressions(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{"literal arm", "match 2 { 1 => 10, 2 => 20, _ => 0 }", 20},
		{"wildcard arm", "match 9 { 1 => 10, _ => 0 }", 0},
		{"binding arm", "match 7 { n => n + 1 }", 8},
		{"first match wins", "match 1 { 1 => 10, 1 => 20, _ => 0 }", 10},
		{"tuple destructuring", "match (1, 2) { (a, b) => a + b }", 3},
		{"nested tuple", "match ((1, 2), 3) { ((a, _), c) => a + c }", 4},
		{"negative literal", "match -1 { -1 => 10, _ => 0 }", 10},
		{"some payload", "match Some(5) { Some(n) => n, None => 0 }", 5},
		{"none", "match None { Some(n) => n, None => 42 }", 42},
		{"ok payload", "match Ok(3) { Ok(n) => n, Err(_) => 0 }", 3},
		{"err payload", `match Err("x") { Ok(n) => n, Err(_) => -1 }`, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testInteger(t, testEval(t, tt.input), tt.want)
		})
	}
}

func TestNonExhaustiveMatch(t *testing.T) {
	testFailure(t, testEval(t, "match 3 { 1 => 10, 2 => 20 }"), NonExhaustiveMatch)
}

func TestLoops(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{"loop with break value", "let r = ref(0)\nloop { store(r, load(r) + 1)\nif load(r) == 5 { break load(r) } }", 5},
		{"while accumulates", "let r = ref(0)\nlet n = ref(0)\nwhile load(n) < 4 { store(n, load(n) + 1)\nstore(r, load(r) + load(n)) }\nload(r)", 10},
		{"for over array", "let r = ref(0)\nfor x in [1, 2, 3] { store(r, load(r) + x) }\nload(r)", 6},
		{"continue skips", "let r = ref(0)\nfor x in [1, 2, 3, 4] { if x % 2 == 0 { continue }\nstore(r, load(r) + x) }\nload(r)", 4},
		{"break stops for", "let r = ref(0)\nfor x in [1, 2, 3, 4] { if x == 3 { break }\nstore(r, load(r) + x) }\nload(r)", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testInteger(t, testEval(t, tt.input), tt.want)
		})
	}

	if v := testEval(t, "while false { 1 }"); v != UNIT {
		t.Errorf("while should evaluate to unit, got %s", v.Inspect())
	}
	testFailure(t, testEval(t, "for x in 5 { x }"), TypeMismatch)
}

func TestControlFlowMisuse(t *testing.T) {
	tests := []string{
		"break",
		"continue",
		"return 1",
		"fn f() { break }\nf()",
		"fn f() { continue }\nf()",
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			testFailure(t, testEval(t, input), ControlFlowMisuse)
		})
	}
}

// Signals produced in argument, element, operand, or subject position must
// unwind to the nearest boundary, never be bound or embedded as values.
func TestSignalsUnwindThroughExpressions(t *testing.T) {
	t.Run("escaping signals are misuse", func(t *testing.T) {
		tests := []string{
			"[if true { break } else { 0 }]",
			"(1, if true { break } else { 0 })",
			"1 + if true { break } else { 0 }",
			"len(if true { break } else { \"x\" })",
			"match if true { continue } else { 0 } { _ => 1 }",
			"let x = if true { break } else { 0 }",
		}
		for _, input := range tests {
			t.Run(input, func(t *testing.T) {
				testFailure(t, testEval(t, input), ControlFlowMisuse)
			})
		}
	})

	t.Run("let binds nothing when its value unwinds", func(t *testing.T) {
		globals := NewGlobalFrame()
		RegisterBuiltins(globals)
		reg := registry.New()

		testFailure(t, testEvalIn(t, "let x = if true { break } else { 0 }", globals, reg), ControlFlowMisuse)
		if _, ok := globals.Get("x"); ok {
			t.Error("let bound a name from an unwinding value")
		}
	})

	t.Run("break in argument ends the iteration", func(t *testing.T) {
		input := `fn id(x) { x }
		let r = ref(0)
		loop {
			store(r, load(r) + 1)
			id(if load(r) > 0 { break } else { 0 })
		}
		load(r)`
		testInteger(t, testEval(t, input), 1)
	})

	t.Run("break reaches the loop from inner positions", func(t *testing.T) {
		tests := []struct {
			name  string
			input string
			want  int64
		}{
			{"operand", "loop { 1 + (if true { break 5 } else { 0 }) }", 5},
			{"array element", "loop { [if true { break 3 } else { 0 }] }", 3},
			{"match subject", "loop { match (if true { break 4 } else { 0 }) { _ => 0 } }", 4},
			{"short-circuit right", "loop { false || (if true { break 9 } else { true }) }", 9},
			{"index", "loop { [1, 2][if true { break 2 } else { 0 }] }", 2},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				testInteger(t, testEval(t, tt.input), tt.want)
			})
		}
	})

	t.Run("break in while condition ends the loop", func(t *testing.T) {
		v := testEval(t, "while (if true { break 6 } else { true }) { 1 }")
		testInteger(t, v, 6)
	})

	t.Run("return in argument unwinds to the call", func(t *testing.T) {
		input := `fn id(x) { x }
		fn f() {
			id(if true { return 7 } else { 0 })
			0
		}
		f()`
		testInteger(t, testEval(t, input), 7)
	})
}

func TestReturnUnwindsCall(t *testing.T) {
	input := `fn f(n) {
		if n > 0 { return 100 }
		0
	}
	f(1)`
	testInteger(t, testEval(t, input), 100)

	// return crosses loop boundaries up to the call.
	input = `fn f() {
		loop { return 7 }
	}
	f()`
	testInteger(t, testEval(t, input), 7)
}

func TestStructs(t *testing.T) {
	decl := "struct Point { x, y }\n"
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{"field access", decl + "let p = Point { x: 1, y: 2 }\np.x", 1},
		{"literal order irrelevant", decl + "let p = Point { y: 2, x: 1 }\np.y", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testInteger(t, testEval(t, tt.input), tt.want)
		})
	}

	testFailure(t, testEval(t, decl+"Point { x: 1 }"), TypeMismatch)
	testFailure(t, testEval(t, decl+"let p = Point { x: 1, y: 2 }\np.z"), UndefinedBinding)
	testFailure(t, testEval(t, "Nope { x: 1 }"), UndefinedBinding)
}

func TestEnums(t *testing.T) {
	decl := "enum Color { Red, Green, Rgb(r, g, b) }\n"
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{"bare variant match", decl + "match Color::Red { Color::Red => 1, _ => 0 }", 1},
		{"payload destructuring", decl + "match Color::Rgb(1, 2, 3) { Color::Rgb(r, g, b) => r + g + b, _ => 0 }", 6},
		{"variant mismatch", decl + "match Color::Green { Color::Red => 1, _ => 0 }", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testInteger(t, testEval(t, tt.input), tt.want)
		})
	}

	testFailure(t, testEval(t, decl+"Color::Blue"), UndefinedBinding)
	testFailure(t, testEval(t, decl+"Color::Rgb(1, 2)"), ArityMismatch)
}

func TestIndexing(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"[1, 2, 3][0]", 1},
		{"(4, 5)[1]", 5},
		{"seq(7, 8)[1]", 8},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			testInteger(t, testEval(t, tt.input), tt.want)
		})
	}

	testFailure(t, testEval(t, "[1][5]"), BuiltinInvocationError)
	testFailure(t, testEval(t, "[1][-1]"), BuiltinInvocationError)
	testFailure(t, testEval(t, `[1]["a"]`), TypeMismatch)
	testFailure(t, testEval(t, "5[0]"), TypeMismatch)

	v := testEval(t, `"héllo"[1]`)
	c, ok := v.(*Char)
	if !ok || c.Value != 'é' {
		t.Errorf("text indexing is by rune, got %s", v.Inspect())
	}
}

func TestBuiltins(t *testing.T) {
	t.Run("len", func(t *testing.T) {
		testInteger(t, testEval(t, `len("héllo")`), 5)
		testInteger(t, testEval(t, "len([1, 2, 3])"), 3)
		testFailure(t, testEval(t, "len(5)"), TypeMismatch)
	})
	t.Run("push is copy on write", func(t *testing.T) {
		input := "let s = seq(1)\nlet s2 = push(s, 2)\nlen(s)"
		testInteger(t, testEval(t, input), 1)
	})
	t.Run("unwrap", func(t *testing.T) {
		testInteger(t, testEval(t, "unwrap(Some(3))"), 3)
		testInteger(t, testEval(t, "unwrap(Ok(4))"), 4)
		testFailure(t, testEval(t, "unwrap(None)"), BuiltinInvocationError)
		testFailure(t, testEval(t, `unwrap(Err("x"))`), BuiltinInvocationError)
	})
	t.Run("show", func(t *testing.T) {
		v := testEval(t, "show((1, 2))")
		txt, ok := v.(*Text)
		if !ok || txt.Value != "(1, 2)" {
			t.Errorf("got %s", v.Inspect())
		}
	})
	t.Run("type_of", func(t *testing.T) {
		v := testEval(t, "type_of(1u8)")
		txt, ok := v.(*Text)
		if !ok || txt.Value != "u8" {
			t.Errorf("got %s", v.Inspect())
		}
	})
	t.Run("fail", func(t *testing.T) {
		errv := testFailure(t, testEval(t, `fail("boom")`), BuiltinInvocationError)
		if errv.Message != "boom" {
			t.Errorf("got message %q", errv.Message)
		}
	})
	t.Run("shadowable", func(t *testing.T) {
		testInteger(t, testEval(t, "fn len(x) { 42 }\nlen([1])"), 42)
	})
}

func TestRefs(t *testing.T) {
	input := "let r = ref(1)\nstore(r, 2)\nload(r)"
	testInteger(t, testEval(t, input), 2)

	// Both names alias one cell.
	input = "let a = ref(10)\nlet b = a\nstore(b, 20)\nload(a)"
	testInteger(t, testEval(t, input), 20)
}

func TestInterruptedContext(t *testing.T) {
	program, errs := parser.Parse("1 + 2")
	if len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}

	globals := NewGlobalFrame()
	RegisterBuiltins(globals)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := New(registry.New())
	e.Out = io.Discard
	e.Context = ctx

	result := e.EvalProgram(program, NewEnvironment(globals))
	testFailure(t, result, Interrupted)
}

func TestPrintOutput(t *testing.T) {
	program, errs := parser.Parse(`println("a", 1, (2, 3))`)
	if len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}

	globals := NewGlobalFrame()
	RegisterBuiltins(globals)

	var buf bytes.Buffer
	e := New(registry.New())
	e.Out = &buf
	e.EvalProgram(program, NewEnvironment(globals))

	if got, want := buf.String(), "a 1 (2, 3)\n"; got != want {
		t.Errorf("printed %q, want %q", got, want)
	}
}
