package repl

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rill-lang/rill/internal/config"
	"github.com/rill-lang/rill/internal/evaluator"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(io.Discard, config.DefaultLimits())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func submit(t *testing.T, s *Session, form string) evaluator.Value {
	t.Helper()
	v, err := s.Submit(form)
	if err != nil {
		t.Fatalf("Submit(%q): %v", form, err)
	}
	return v
}

func asInt(t *testing.T, v evaluator.Value) int64 {
	t.Helper()
	i, ok := v.(*evaluator.Integer)
	if !ok {
		t.Fatalf("value is %T (%s), want Integer", v, v.Inspect())
	}
	return i.Value
}

func failureKind(t *testing.T, err error) evaluator.ErrorKind {
	t.Helper()
	var e *evaluator.Error
	if !errors.As(err, &e) {
		t.Fatalf("error is %T (%v), want *evaluator.Error", err, err)
	}
	return e.Kind
}

func TestSubmitEvaluatesForms(t *testing.T) {
	s := newTestSession(t)

	submit(t, s, "fn add(a, b) { a + b }")
	submit(t, s, "fn square(x) { x * x }")

	if got := asInt(t, submit(t, s, "add(3, 4)")); got != 7 {
		t.Errorf("add(3, 4) = %d, want 7", got)
	}
	if got := asInt(t, submit(t, s, "square(3)")); got != 9 {
		t.Errorf("square(3) = %d, want 9", got)
	}
}

func TestSubmitParseError(t *testing.T) {
	s := newTestSession(t)

	if _, err := s.Submit("let = 3"); err == nil {
		t.Fatal("malformed form did not report an error")
	}
	// The session must stay usable.
	if got := asInt(t, submit(t, s, "1 + 2")); got != 3 {
		t.Errorf("follow-up submit = %d, want 3", got)
	}
}

// A failed submission must leave globals and registry exactly as they were,
// even when the form performed bindings and installs before failing.
func TestFailedSubmitRollsBack(t *testing.T) {
	s := newTestSession(t)

	submit(t, s, "let x = 5")
	submit(t, s, "fn g(n) { n + 1 }")

	_, err := s.Submit("let y = 1\nfn g(n) { n + 2 }\nno_such_name")
	if err == nil {
		t.Fatal("failing form reported success")
	}
	if kind := failureKind(t, err); kind != evaluator.UndefinedBinding {
		t.Errorf("failure kind = %s, want UndefinedBinding", kind)
	}

	if got := asInt(t, submit(t, s, "x")); got != 5 {
		t.Errorf("x = %d after rollback, want 5", got)
	}
	if _, err := s.Submit("y"); err == nil {
		t.Error("binding from the failed form survived rollback")
	}
	if got := asInt(t, submit(t, s, "g(1)")); got != 2 {
		t.Errorf("g(1) = %d after rollback, want the pre-submit definition", got)
	}

	keys := s.Definitions()
	if len(keys) != 1 {
		t.Fatalf("registry holds %d definitions after rollback, want 1", len(keys))
	}
}

func TestFailedSubmitNotRecordedInHistory(t *testing.T) {
	s := newTestSession(t)

	submit(t, s, "40 + 2")
	s.Submit("no_such_name")

	entries := s.History(10)
	if len(entries) != 1 {
		t.Fatalf("history holds %d entries, want 1", len(entries))
	}
	if entries[0].Form != "40 + 2" {
		t.Errorf("history form = %q", entries[0].Form)
	}
}

func TestHistoryBindings(t *testing.T) {
	s := newTestSession(t)

	submit(t, s, "1 + 1")
	submit(t, s, "2 + 2")
	submit(t, s, "3 + 3")

	values := map[string]int64{"it": 6, "it2": 4, "it3": 2}
	for name, want := range values {
		v, ok := s.globals.Get(name)
		if !ok {
			t.Fatalf("%s is not bound", name)
		}
		if got := asInt(t, v); got != want {
			t.Errorf("%s = %d, want %d", name, got, want)
		}
	}

	forms := map[string]string{"form": "3 + 3", "form2": "2 + 2", "form3": "1 + 1"}
	for name, want := range forms {
		v, ok := s.globals.Get(name)
		if !ok {
			t.Fatalf("%s is not bound", name)
		}
		text, ok := v.(*evaluator.Text)
		if !ok {
			t.Fatalf("%s is %T, want Text", name, v)
		}
		if text.Value != want {
			t.Errorf("%s = %q, want %q", name, text.Value, want)
		}
	}
}

func TestHistoryBindingsRollForward(t *testing.T) {
	s := newTestSession(t)

	submit(t, s, "10")
	submit(t, s, "20")
	// it is now 20. A submission referencing it must see the previous
	// result, and afterwards the bindings roll.
	if got := asInt(t, submit(t, s, "it + 1")); got != 21 {
		t.Fatalf("it + 1 = %d, want 21", got)
	}
	it, _ := s.globals.Get("it")
	if got := asInt(t, it); got != 21 {
		t.Errorf("it = %d after roll, want 21", got)
	}
	it3, _ := s.globals.Get("it3")
	if got := asInt(t, it3); got != 10 {
		t.Errorf("it3 = %d after roll, want 10", got)
	}
}

func TestWorkerPanicRespawns(t *testing.T) {
	s := newTestSession(t)
	s.globals.Define("detonate", &evaluator.Builtin{
		Name:  "detonate",
		Arity: 0,
		Fn: func(e *evaluator.Evaluator, args []evaluator.Value) evaluator.Value {
			panic("kaboom")
		},
	})
	firstWorker := s.worker.id

	submit(t, s, "let x = 1")

	_, err := s.Submit("let y = 2\ndetonate()")
	if err == nil {
		t.Fatal("panicking form reported success")
	}
	if kind := failureKind(t, err); kind != evaluator.WorkerLost {
		t.Fatalf("failure kind = %s, want WorkerLost", kind)
	}
	if s.worker.id == firstWorker {
		t.Error("worker was not respawned after the panic")
	}

	// State rolled back, session still live.
	if _, err := s.Submit("y"); err == nil {
		t.Error("binding from the lost submission survived")
	}
	if got := asInt(t, submit(t, s, "x + 41")); got != 42 {
		t.Errorf("submit after respawn = %d, want 42", got)
	}
}

func TestInterruptCancelsRunawayLoop(t *testing.T) {
	s := newTestSession(t)

	type result struct {
		value evaluator.Value
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := s.Submit("loop { }")
		done <- result{v, err}
	}()

	deadline := time.After(5 * time.Second)
	for {
		s.Interrupt()
		select {
		case res := <-done:
			if res.err == nil {
				t.Fatalf("interrupted loop returned %s", res.value.Inspect())
			}
			if kind := failureKind(t, res.err); kind != evaluator.Interrupted {
				t.Fatalf("failure kind = %s, want Interrupted", kind)
			}
			if got := asInt(t, submit(t, s, "2 + 2")); got != 4 {
				t.Errorf("submit after interrupt = %d, want 4", got)
			}
			return
		case <-deadline:
			t.Fatal("loop was not interrupted within 5s")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestSlurpAndUnslurp(t *testing.T) {
	s := newTestSession(t)

	submit(t, s, "let keep = 1")

	v, err := s.Slurp("fn sq(x) { x * x }\nlet loaded = sq(4)\nloaded")
	if err != nil {
		t.Fatalf("Slurp: %v", err)
	}
	if got := asInt(t, v); got != 16 {
		t.Errorf("slurp value = %d, want 16", got)
	}
	if !s.Slurped() {
		t.Fatal("Slurped() = false after a successful slurp")
	}

	if _, err := s.Slurp("let again = 2"); !errors.Is(err, ErrAlreadySlurped) {
		t.Errorf("second Slurp error = %v, want ErrAlreadySlurped", err)
	}

	if got := asInt(t, submit(t, s, "loaded + sq(2)")); got != 20 {
		t.Errorf("slurped definitions unusable: got %d", got)
	}

	if err := s.Unslurp(); err != nil {
		t.Fatalf("Unslurp: %v", err)
	}
	if s.Slurped() {
		t.Error("Slurped() = true after Unslurp")
	}
	if _, err := s.Submit("loaded"); err == nil {
		t.Error("slurped binding survived Unslurp")
	}
	if _, err := s.Submit("sq(2)"); err == nil {
		t.Error("slurped definition survived Unslurp")
	}
	if got := asInt(t, submit(t, s, "keep")); got != 1 {
		t.Errorf("keep = %d after Unslurp, want 1", got)
	}

	if err := s.Unslurp(); !errors.Is(err, ErrNotSlurped) {
		t.Errorf("second Unslurp error = %v, want ErrNotSlurped", err)
	}
}

func TestFailedSlurpLeavesNoSavePoint(t *testing.T) {
	s := newTestSession(t)

	_, err := s.Slurp("fn h(x) { x }\nno_such_name")
	if err == nil {
		t.Fatal("failing slurp reported success")
	}
	if s.Slurped() {
		t.Error("failed slurp left a save point")
	}
	if _, err := s.Submit("h(1)"); err == nil {
		t.Error("definition from the failed slurp survived")
	}
}

func TestReset(t *testing.T) {
	s := newTestSession(t)
	baseNames := len(s.GlobalNames())

	submit(t, s, "let x = 1")
	submit(t, s, "fn f(n) { n }")
	if _, err := s.Slurp("let sl = 2"); err != nil {
		t.Fatalf("Slurp: %v", err)
	}

	s.Reset()

	if got := len(s.GlobalNames()); got != baseNames {
		t.Errorf("%d global names after Reset, want the %d prelude names", got, baseNames)
	}
	if defs := s.Definitions(); len(defs) != 0 {
		t.Errorf("%d definitions after Reset, want 0", len(defs))
	}
	if hist := s.History(10); len(hist) != 0 {
		t.Errorf("%d history entries after Reset, want 0", len(hist))
	}
	if s.Slurped() {
		t.Error("save point survived Reset")
	}
	if got := asInt(t, submit(t, s, "3 * 3")); got != 9 {
		t.Errorf("submit after Reset = %d, want 9", got)
	}
}

func TestClearKeepsDefinitions(t *testing.T) {
	s := newTestSession(t)

	submit(t, s, "fn f(n) { n * 2 }")
	submit(t, s, "f(21)")

	s.Clear()

	if hist := s.History(10); len(hist) != 0 {
		t.Errorf("%d history entries after Clear, want 0", len(hist))
	}
	if got := asInt(t, submit(t, s, "f(21)")); got != 42 {
		t.Errorf("f(21) = %d after Clear, want 42", got)
	}
}

func TestHistoryMostRecentFirst(t *testing.T) {
	s := newTestSession(t)

	submit(t, s, "1")
	submit(t, s, "2")
	submit(t, s, "3")

	entries := s.History(2)
	if len(entries) != 2 {
		t.Fatalf("History(2) returned %d entries", len(entries))
	}
	if entries[0].Form != "3" || entries[1].Form != "2" {
		t.Errorf("got %q, %q, want most recent first", entries[0].Form, entries[1].Form)
	}
}
