package evaluator

import (
	"sort"
	"sync"
)

// GlobalStore is the flat, explicitly mutable symbol table at the root of a
// working environment. It is referenced by handle from every environment and
// closure — never cloned into a captured frame chain — so an in-place
// redefinition of a global name is visible to existing closures (late
// binding). The REPL session controller substitutes a staging implementation
// during isolated evaluation.
type GlobalStore interface {
	Get(name string) (Value, bool)
	Define(name string, val Value)
}

// GlobalFrame is the standard GlobalStore: a mutex-guarded flat table. It is
// safe for concurrent readers from worker goroutines.
type GlobalFrame struct {
	mu    sync.RWMutex
	store map[string]Value
}

func NewGlobalFrame() *GlobalFrame {
	return &GlobalFrame{store: make(map[string]Value)}
}

func (g *GlobalFrame) Get(name string) (Value, bool) {
	g.mu.RLock()
	v, ok := g.store[name]
	g.mu.RUnlock()
	return v, ok
}

func (g *GlobalFrame) Define(name string, val Value) {
	g.mu.Lock()
	g.store[name] = val
	g.mu.Unlock()
}

// Snapshot returns a copy of the table. Values are shared; they are
// immutable apart from Ref cells.
func (g *GlobalFrame) Snapshot() map[string]Value {
	g.mu.RLock()
	defer g.mu.RUnlock()
	snap := make(map[string]Value, len(g.store))
	for k, v := range g.store {
		snap[k] = v
	}
	return snap
}

// Restore replaces the table's contents in place, preserving the frame's
// identity so closures holding the handle keep resolving through it.
func (g *GlobalFrame) Restore(snap map[string]Value) {
	g.mu.Lock()
	g.store = make(map[string]Value, len(snap))
	for k, v := range snap {
		g.store[k] = v
	}
	g.mu.Unlock()
}

// Names returns the bound names in sorted order.
func (g *GlobalFrame) Names() []string {
	g.mu.RLock()
	names := make([]string, 0, len(g.store))
	for k := range g.store {
		names = append(names, k)
	}
	g.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Frame is one link in the local binding chain. A frame is never mutated
// once another environment handle may have seen it; extension always
// allocates a child. The chain is strictly acyclic: each frame owns a
// one-directional link to its parent, so local frames are reclaimed by
// ordinary garbage collection once the last handle drops.
type Frame struct {
	bindings map[string]Value
	parent   *Frame
}

// Environment is a handle onto a frame chain plus the global frame. It is a
// small value: capture is a copy of two references.
type Environment struct {
	frame   *Frame
	globals GlobalStore
}

// NewEnvironment returns an environment with no local frames over globals.
func NewEnvironment(globals GlobalStore) Environment {
	return Environment{globals: globals}
}

// Lookup walks the local frame chain innermost-first, then the global
// frame. First match wins, so an inner binding shadows an outer one.
func (e Environment) Lookup(name string) (Value, bool) {
	for f := e.frame; f != nil; f = f.parent {
		if v, ok := f.bindings[name]; ok {
			return v, true
		}
	}
	if e.globals != nil {
		return e.globals.Get(name)
	}
	return nil, false
}

// Extend returns a new environment whose innermost frame binds name. The
// receiver is not mutated; environments that already reference the old
// chain never observe the extension.
func (e Environment) Extend(name string, val Value) Environment {
	return Environment{
		frame:   &Frame{bindings: map[string]Value{name: val}, parent: e.frame},
		globals: e.globals,
	}
}

// ExtendFrame returns a new environment with one fresh frame holding all of
// bindings. Used for call parameter binding and pattern destructuring.
func (e Environment) ExtendFrame(bindings map[string]Value) Environment {
	return Environment{
		frame:   &Frame{bindings: bindings, parent: e.frame},
		globals: e.globals,
	}
}

// DefineGlobal mutates the global frame in place. This is the REPL's
// definition primitive; it is the only observable environment mutation.
func (e Environment) DefineGlobal(name string, val Value) {
	e.globals.Define(name, val)
}

// Capture returns the environment fixed for a closure being created. It is
// cheap and reference-based: the local chain is shared, not copied.
func (e Environment) Capture() Environment { return e }

// GlobalOnly strips the local chain, leaving only the global frame. Named
// top-level function bodies evaluate against this, so their free variables
// resolve dynamically against the current globals.
func (e Environment) GlobalOnly() Environment {
	return Environment{globals: e.globals}
}

// Globals exposes the underlying store handle.
func (e Environment) Globals() GlobalStore { return e.globals }
