package evaluator

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rill-lang/rill/internal/ast"
)

// FunctionRef is a name-based handle to a registry definition. It stores
// only the identifying key — never a body or environment — so every
// invocation re-resolves through the registry. This is what makes a
// replaced definition take immediate effect at every call site.
type FunctionRef struct {
	Module string
	Name   string
	Arity  int // arity at definition time, for display only
}

func (fr *FunctionRef) Type() ValueType { return FUNCTION_REF_VALUE }
func (fr *FunctionRef) Inspect() string {
	return fmt.Sprintf("fn %s/%d", fr.Name, fr.Arity)
}

// Closure pairs parameters and a body with the environment captured at
// creation. The captured local frames are immutable; the global frame is
// captured by reference, so later global redefinitions remain visible.
type Closure struct {
	Parameters []string
	Body       *ast.BlockStatement
	Env        Environment
}

func (c *Closure) Type() ValueType { return CLOSURE_VALUE }
func (c *Closure) Inspect() string {
	return "fn(" + strings.Join(c.Parameters, ", ") + ") { ... }"
}

// BuiltinFn is the host-callable signature: it receives fully evaluated
// arguments and returns a result value or a reported failure message.
type BuiltinFn func(e *Evaluator, args []Value) Value

// Builtin is a host-provided callable. Arity < 0 means variadic.
type Builtin struct {
	Name  string
	Arity int
	Fn    BuiltinFn
}

func (b *Builtin) Type() ValueType { return NATIVE_VALUE }
func (b *Builtin) Inspect() string { return "native fn " + b.Name }

// Ref is the mutable-reference handle: the only door to observable mutation
// in the value model. It aliases a storage cell shared by every copy of the
// handle.
type Ref struct {
	mu   sync.RWMutex
	cell Value
}

func NewRef(v Value) *Ref { return &Ref{cell: v} }

func (r *Ref) Type() ValueType { return REF_VALUE }
func (r *Ref) Inspect() string { return "ref(" + r.Load().Inspect() + ")" }

// Load reads the cell.
func (r *Ref) Load() Value {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cell
}

// Store writes the cell.
func (r *Ref) Store(v Value) {
	r.mu.Lock()
	r.cell = v
	r.mu.Unlock()
}
