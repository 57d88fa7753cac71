package repl

import (
	"testing"

	"github.com/rill-lang/rill/internal/registry"
)

func testDef(name string, params ...string) *registry.FunctionDefinition {
	return &registry.FunctionDefinition{Module: "main", Name: name, Params: params}
}

func TestJournalUndoRemovesFreshInstalls(t *testing.T) {
	inner := registry.New()
	j := newJournalRegistry(inner)

	j.Replace(testDef("f", "x"))
	j.Replace(testDef("g", "x", "y"))

	if inner.Len() != 2 {
		t.Fatalf("installs did not reach the live registry: Len() = %d", inner.Len())
	}

	j.Undo()

	if inner.Len() != 0 {
		t.Errorf("Len() = %d after Undo, want 0", inner.Len())
	}
}

func TestJournalUndoRestoresDisplaced(t *testing.T) {
	inner := registry.New()
	original := testDef("f", "x")
	inner.Replace(original)

	j := newJournalRegistry(inner)
	j.Replace(testDef("f", "y"))
	j.Replace(testDef("f", "z"))
	j.Undo()

	got, ok := inner.Lookup("main", "f", 1)
	if !ok {
		t.Fatal("definition missing after Undo")
	}
	if got != original {
		t.Errorf("Lookup = %v, want the pre-journal definition", got)
	}
}

func TestJournalDropMakesInstallsPermanent(t *testing.T) {
	inner := registry.New()
	j := newJournalRegistry(inner)

	replacement := testDef("f", "x")
	j.Replace(replacement)
	j.Drop()
	j.Undo() // nothing recorded, must be a no-op

	got, ok := inner.Lookup("main", "f", 1)
	if !ok || got != replacement {
		t.Error("dropped journal reverted the install")
	}
}

func TestJournalLookupSeesOwnInstalls(t *testing.T) {
	inner := registry.New()
	j := newJournalRegistry(inner)

	d := testDef("f", "x")
	j.Replace(d)

	got, ok := j.Lookup("main", "f", 1)
	if !ok || got != d {
		t.Error("journaled install not resolvable through Lookup")
	}
	if defs := j.ByName("main", "f"); len(defs) != 1 {
		t.Errorf("ByName returned %d definitions, want 1", len(defs))
	}
}
