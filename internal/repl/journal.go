package repl

import (
	"sync"

	"github.com/rill-lang/rill/internal/registry"
)

type journalEntry struct {
	key       registry.Key
	displaced *registry.FunctionDefinition // nil for a fresh install
}

// journalRegistry passes registry operations through while recording every
// install, so a failed submission can be undone. Installs are applied to the
// live registry immediately — a form that defines f and then calls it
// recursively must resolve its own definition — and reverted in reverse
// order when the submission fails.
type journalRegistry struct {
	inner *registry.Registry

	mu      sync.Mutex
	entries []journalEntry
}

func newJournalRegistry(inner *registry.Registry) *journalRegistry {
	return &journalRegistry{inner: inner}
}

func (j *journalRegistry) Lookup(module, name string, arity int) (*registry.FunctionDefinition, bool) {
	return j.inner.Lookup(module, name, arity)
}

func (j *journalRegistry) ByName(module, name string) []*registry.FunctionDefinition {
	return j.inner.ByName(module, name)
}

func (j *journalRegistry) Replace(def *registry.FunctionDefinition) *registry.FunctionDefinition {
	displaced := j.inner.Replace(def)
	j.mu.Lock()
	j.entries = append(j.entries, journalEntry{key: def.Key(), displaced: displaced})
	j.mu.Unlock()
	return displaced
}

// Undo reverts every recorded install, newest first, restoring the
// displaced definitions.
func (j *journalRegistry) Undo() {
	j.mu.Lock()
	entries := j.entries
	j.entries = nil
	j.mu.Unlock()

	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.displaced == nil {
			j.inner.Remove(e.key)
		} else {
			j.inner.Replace(e.displaced)
		}
	}
}

// Drop forgets the journal, making the installs permanent.
func (j *journalRegistry) Drop() {
	j.mu.Lock()
	j.entries = nil
	j.mu.Unlock()
}
