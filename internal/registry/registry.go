// Package registry is the single authority for name-based function calls.
//
// Definitions are keyed by (module, name, arity) and replaced atomically:
// exactly one version of a definition is ever live, and a reader never
// observes a partially-updated definition because installed definitions are
// immutable — Replace swaps the stored pointer under an exclusive lock held
// only for the swap itself. Callers that are already executing a body keep
// the definition they resolved; the next lookup, including a recursive
// self-call, observes the replacement.
package registry

import (
	"sort"
	"sync"

	"github.com/rill-lang/rill/internal/ast"
)

// Key identifies a function definition.
type Key struct {
	Module string
	Name   string
	Arity  int
}

// FunctionDefinition is an installed function. Body is the opaque syntax
// tree of an interpreted function; Compiled, when non-nil, is a NativeFn-
// shaped substitute installed through the compilation escape hatch and is
// asserted to its concrete type by the evaluator. A definition is never
// mutated after installation.
type FunctionDefinition struct {
	Module   string
	Name     string
	Params   []string
	Body     *ast.BlockStatement
	Compiled any
}

// Arity reports the number of parameters.
func (d *FunctionDefinition) Arity() int { return len(d.Params) }

// Key returns the registry key the definition is installed under.
func (d *FunctionDefinition) Key() Key {
	return Key{Module: d.Module, Name: d.Name, Arity: d.Arity()}
}

// Store is the registry surface the evaluator resolves calls through. The
// REPL session controller wraps it with an undo journal so failed
// submissions can be rolled back.
type Store interface {
	Lookup(module, name string, arity int) (*FunctionDefinition, bool)
	ByName(module, name string) []*FunctionDefinition
	Replace(def *FunctionDefinition) *FunctionDefinition
}

// Registry is a concurrently readable map of function definitions. It is an
// explicit, injectable object rather than a process-wide singleton so that
// independent runtimes can coexist in one process.
type Registry struct {
	mu   sync.RWMutex
	defs map[Key]*FunctionDefinition
}

func New() *Registry {
	return &Registry{defs: make(map[Key]*FunctionDefinition)}
}

// Lookup resolves a definition by exact key.
func (r *Registry) Lookup(module, name string, arity int) (*FunctionDefinition, bool) {
	r.mu.RLock()
	def, ok := r.defs[Key{Module: module, Name: name, Arity: arity}]
	r.mu.RUnlock()
	return def, ok
}

// ByName returns every live definition for a name regardless of arity,
// ordered by arity. Used to distinguish ArityMismatch from UndefinedBinding.
func (r *Registry) ByName(module, name string) []*FunctionDefinition {
	r.mu.RLock()
	var defs []*FunctionDefinition
	for k, d := range r.defs {
		if k.Module == module && k.Name == name {
			defs = append(defs, d)
		}
	}
	r.mu.RUnlock()
	sort.Slice(defs, func(i, j int) bool { return defs[i].Arity() < defs[j].Arity() })
	return defs
}

// Replace atomically installs def under its key, returning the displaced
// definition (nil for a fresh install). Once Replace returns, every
// subsequent Lookup from any goroutine observes the new definition.
func (r *Registry) Replace(def *FunctionDefinition) *FunctionDefinition {
	r.mu.Lock()
	key := def.Key()
	old := r.defs[key]
	r.defs[key] = def
	r.mu.Unlock()
	return old
}

// Remove deletes the definition under key, returning it if present. Used by
// the session controller when rolling back a fresh install.
func (r *Registry) Remove(key Key) (*FunctionDefinition, bool) {
	r.mu.Lock()
	def, ok := r.defs[key]
	if ok {
		delete(r.defs, key)
	}
	r.mu.Unlock()
	return def, ok
}

// Len reports the number of live definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

// Keys returns the keys of all live definitions, ordered by module, name,
// arity. Used by the REPL's environment listing.
func (r *Registry) Keys() []Key {
	r.mu.RLock()
	keys := make([]Key, 0, len(r.defs))
	for k := range r.defs {
		keys = append(keys, k)
	}
	r.mu.RUnlock()
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Module != keys[j].Module {
			return keys[i].Module < keys[j].Module
		}
		if keys[i].Name != keys[j].Name {
			return keys[i].Name < keys[j].Name
		}
		return keys[i].Arity < keys[j].Arity
	})
	return keys
}
