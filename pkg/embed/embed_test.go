package embed

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rill-lang/rill/internal/evaluator"
)

func TestEvalReturnsGoValues(t *testing.T) {
	tests := []struct {
		src  string
		want any
	}{
		{"1 + 2", int64(3)},
		{"3 * 7 - 1", int64(20)},
		{`"he" + "llo"`, "hello"},
		{"1.5 + 2.5", 4.0},
		{"2 > 1", true},
		{"[1, 2, 3]", []any{int64(1), int64(2), int64(3)}},
		{"(1, true)", []any{int64(1), true}},
		{"Some(5)", int64(5)},
		{"None", nil},
		{"let x = 1", nil},
	}

	vm := New()
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := vm.Eval(tt.src)
			if err != nil {
				t.Fatalf("Eval: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestEvalParseError(t *testing.T) {
	vm := New()
	if _, err := vm.Eval("let = 1"); err == nil {
		t.Error("malformed source did not report an error")
	}
}

func TestEvalRuntimeFailure(t *testing.T) {
	vm := New()

	_, err := vm.Eval("missing")
	if err == nil {
		t.Fatal("undefined name did not report an error")
	}
	var e *evaluator.Error
	if !errors.As(err, &e) {
		t.Fatalf("error is %T, want *evaluator.Error", err)
	}
	if e.Kind != evaluator.UndefinedBinding {
		t.Errorf("kind = %s, want UndefinedBinding", e.Kind)
	}
}

func TestVMStatePersistsAcrossEvals(t *testing.T) {
	vm := New()

	if _, err := vm.Eval("fn add(a, b) { a + b }"); err != nil {
		t.Fatal(err)
	}
	if _, err := vm.Eval("let seven = add(3, 4)"); err != nil {
		t.Fatal(err)
	}
	got, err := vm.Eval("seven + 2")
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(9) {
		t.Errorf("got %v, want 9", got)
	}
}

func TestVMsAreIndependent(t *testing.T) {
	a, b := New(), New()

	if _, err := a.Eval("let x = 1"); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Eval("x"); err == nil {
		t.Error("binding in one VM visible in another")
	}
}

func TestBindValueAndGet(t *testing.T) {
	vm := New()
	if err := vm.Bind("answer", 42); err != nil {
		t.Fatal(err)
	}

	got, err := vm.Eval("answer + 1")
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(43) {
		t.Errorf("got %v, want 43", got)
	}

	back, err := vm.Get("answer")
	if err != nil {
		t.Fatal(err)
	}
	if back != int64(42) {
		t.Errorf("Get = %v, want 42", back)
	}

	if _, err := vm.Get("unbound"); err == nil {
		t.Error("Get on an unbound name did not report an error")
	}
}

func TestBindMapAsStruct(t *testing.T) {
	vm := New()
	err := vm.Bind("cfg", map[string]any{"host": "localhost", "port": 8080})
	if err != nil {
		t.Fatal(err)
	}

	got, err := vm.Eval("cfg.host")
	if err != nil {
		t.Fatal(err)
	}
	if got != "localhost" {
		t.Errorf("cfg.host = %v", got)
	}
}

func TestBindFunction(t *testing.T) {
	vm := New()
	if err := vm.Bind("mul", func(a, b int) int { return a * b }); err != nil {
		t.Fatal(err)
	}

	got, err := vm.Eval("mul(6, 7)")
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(42) {
		t.Errorf("mul(6, 7) = %v, want 42", got)
	}
}

func TestBindVariadicFunction(t *testing.T) {
	vm := New()
	sum := func(xs ...int) int {
		total := 0
		for _, x := range xs {
			total += x
		}
		return total
	}
	if err := vm.Bind("sum", sum); err != nil {
		t.Fatal(err)
	}

	got, err := vm.Eval("sum(1, 2, 3, 4)")
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(10) {
		t.Errorf("sum(1, 2, 3, 4) = %v, want 10", got)
	}

	got, err = vm.Eval("sum()")
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(0) {
		t.Errorf("sum() = %v, want 0", got)
	}
}

func TestBoundFunctionErrorBecomesFailure(t *testing.T) {
	vm := New()
	div := func(a, b int) (int, error) {
		if b == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return a / b, nil
	}
	if err := vm.Bind("div", div); err != nil {
		t.Fatal(err)
	}

	got, err := vm.Eval("div(10, 2)")
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(5) {
		t.Errorf("div(10, 2) = %v, want 5", got)
	}

	_, err = vm.Eval("div(1, 0)")
	if err == nil {
		t.Fatal("failing host function did not report an error")
	}
	var e *evaluator.Error
	if !errors.As(err, &e) || e.Kind != evaluator.BuiltinInvocationError {
		t.Errorf("error = %v, want a BuiltinInvocationError", err)
	}
}

func TestCall(t *testing.T) {
	vm := New()
	if _, err := vm.Eval("fn square(x) { x * x }"); err != nil {
		t.Fatal(err)
	}

	got, err := vm.Call("square", 3)
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(9) {
		t.Errorf("Call(square, 3) = %v, want 9", got)
	}

	if _, err := vm.Call("square", 1, 2); err == nil {
		t.Error("arity mismatch through Call did not report an error")
	}
	if _, err := vm.Call("nope"); err == nil {
		t.Error("Call on an unbound name did not report an error")
	}
}

func TestSetOutput(t *testing.T) {
	vm := New()
	var buf bytes.Buffer
	vm.SetOutput(&buf)

	if _, err := vm.Eval(`println("hi", 2)`); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "hi 2\n" {
		t.Errorf("output %q, want %q", buf.String(), "hi 2\n")
	}
}

func TestSetMaxCallDepth(t *testing.T) {
	vm := New()
	vm.SetMaxCallDepth(10)

	if _, err := vm.Eval("fn down(n) { if n == 0 { 0 } else { down(n - 1) } }"); err != nil {
		t.Fatal(err)
	}

	if _, err := vm.Eval("down(5)"); err != nil {
		t.Errorf("shallow recursion failed: %v", err)
	}

	_, err := vm.Eval("down(50)")
	var e *evaluator.Error
	if !errors.As(err, &e) || e.Kind != evaluator.CallDepthExceeded {
		t.Errorf("error = %v, want CallDepthExceeded", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.rill")
	src := "fn twice(x) { x * 2 }\ntwice(21)\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	vm := New()
	got, err := vm.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(42) {
		t.Errorf("LoadFile = %v, want 42", got)
	}

	if _, err := vm.LoadFile(filepath.Join(t.TempDir(), "absent.rill")); err == nil {
		t.Error("missing file did not report an error")
	}
}
