package repl

import (
	"testing"

	"github.com/rill-lang/rill/internal/evaluator"
)

func intVal(n int64) *evaluator.Integer {
	return &evaluator.Integer{Kind: evaluator.I64, Value: n}
}

func TestStagedReadsFallThrough(t *testing.T) {
	base := evaluator.NewGlobalFrame()
	base.Define("x", intVal(1))

	staged := newStagedGlobals(base)

	v, ok := staged.Get("x")
	if !ok || asInt(t, v) != 1 {
		t.Error("base binding not visible through the overlay")
	}
	if _, ok := staged.Get("y"); ok {
		t.Error("overlay resolved an unbound name")
	}
}

func TestStagedWritesShadowBase(t *testing.T) {
	base := evaluator.NewGlobalFrame()
	base.Define("x", intVal(1))

	staged := newStagedGlobals(base)
	staged.Define("x", intVal(2))
	staged.Define("y", intVal(3))

	if v, _ := staged.Get("x"); asInt(t, v) != 2 {
		t.Error("overlay read does not see the staged write")
	}
	if v, _ := base.Get("x"); asInt(t, v) != 1 {
		t.Error("staged write leaked into the base before commit")
	}
	if _, ok := base.Get("y"); ok {
		t.Error("staged define leaked into the base before commit")
	}
}

func TestStagedCommitFlushesDelta(t *testing.T) {
	base := evaluator.NewGlobalFrame()
	base.Define("x", intVal(1))

	staged := newStagedGlobals(base)
	staged.Define("x", intVal(2))
	staged.Define("y", intVal(3))
	staged.Commit()

	if v, _ := base.Get("x"); asInt(t, v) != 2 {
		t.Error("commit did not apply the overwrite")
	}
	if v, _ := base.Get("y"); asInt(t, v) != 3 {
		t.Error("commit did not apply the new binding")
	}
}

func TestStagedDiscardDropsDelta(t *testing.T) {
	base := evaluator.NewGlobalFrame()
	base.Define("x", intVal(1))

	staged := newStagedGlobals(base)
	staged.Define("x", intVal(2))
	staged.Define("y", intVal(3))
	staged.Discard()

	if v, _ := base.Get("x"); asInt(t, v) != 1 {
		t.Error("discard applied the overwrite")
	}
	if _, ok := base.Get("y"); ok {
		t.Error("discard applied the new binding")
	}
}

// Closures created during a submission hold the overlay handle. After the
// overlay seals it must keep tracking the base, so those closures resolve
// globals exactly like closures created before or after the submission.
func TestSealedOverlayDelegatesToBase(t *testing.T) {
	base := evaluator.NewGlobalFrame()
	staged := newStagedGlobals(base)
	staged.Define("x", intVal(1))
	staged.Commit()

	base.Define("x", intVal(9))
	if v, _ := staged.Get("x"); asInt(t, v) != 9 {
		t.Error("sealed overlay does not see later base writes")
	}

	staged.Define("z", intVal(7))
	if v, ok := base.Get("z"); !ok || asInt(t, v) != 7 {
		t.Error("define on a sealed overlay did not reach the base")
	}
}
