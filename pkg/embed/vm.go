// Package embed is the host-facing API: create a VM, bind Go values and
// functions into its global scope, and evaluate source text. Results cross
// the boundary as plain Go values through the marshaller.
package embed

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rill-lang/rill/internal/config"
	"github.com/rill-lang/rill/internal/evaluator"
	"github.com/rill-lang/rill/internal/parser"
	"github.com/rill-lang/rill/internal/registry"
)

// VM is one embedded runtime: a private registry, a private global frame
// preloaded with the builtin natives, and a marshaller for the Go boundary.
// Multiple VMs coexist independently in one process.
type VM struct {
	registry   *registry.Registry
	globals    *evaluator.GlobalFrame
	marshaller *Marshaller
	limits     config.Limits
	out        io.Writer
}

func New() *VM {
	globals := evaluator.NewGlobalFrame()
	evaluator.RegisterBuiltins(globals)

	return &VM{
		registry:   registry.New(),
		globals:    globals,
		marshaller: NewMarshaller(),
		limits:     config.DefaultLimits(),
		out:        os.Stdout,
	}
}

// SetOutput redirects the print builtins.
func (v *VM) SetOutput(w io.Writer) { v.out = w }

// SetMaxCallDepth overrides the call-depth limit.
func (v *VM) SetMaxCallDepth(depth int) {
	if depth > 0 {
		v.limits.MaxCallDepth = depth
	}
}

// Bind makes a Go value or function available under name in the global
// scope of scripts. Functions are wrapped as natives through reflection.
func (v *VM) Bind(name string, val any) error {
	obj, err := v.marshaller.ToValue(name, val)
	if err != nil {
		return fmt.Errorf("binding %s: %w", name, err)
	}
	v.globals.Define(name, obj)
	return nil
}

// Get retrieves a global by name as a Go value.
func (v *VM) Get(name string) (any, error) {
	obj, ok := v.globals.Get(name)
	if !ok {
		return nil, fmt.Errorf("%s is not defined", name)
	}
	return v.marshaller.FromValue(obj, nil)
}

// Eval evaluates source text and returns the final value marshalled to Go.
func (v *VM) Eval(src string) (any, error) {
	value, err := v.EvalValue(src)
	if err != nil {
		return nil, err
	}
	return v.marshaller.FromValue(value, nil)
}

// EvalValue is Eval without the Go marshalling, for hosts that want the
// runtime value itself.
func (v *VM) EvalValue(src string) (evaluator.Value, error) {
	program, errs := parser.Parse(src)
	if len(errs) > 0 {
		return nil, fmt.Errorf("parse error: %s", strings.Join(errs, "; "))
	}

	ev := v.newEvaluator()
	value := ev.EvalProgram(program, evaluator.NewEnvironment(v.globals))
	if evaluator.IsFailure(value) {
		return nil, value.(*evaluator.Error)
	}
	return value, nil
}

// Call invokes a defined function by name with Go arguments.
func (v *VM) Call(name string, args ...any) (any, error) {
	fn, ok := v.globals.Get(name)
	if !ok {
		return nil, fmt.Errorf("%s is not defined", name)
	}

	vals := make([]evaluator.Value, len(args))
	for i, arg := range args {
		obj, err := v.marshaller.ToValue(fmt.Sprintf("%s argument %d", name, i), arg)
		if err != nil {
			return nil, err
		}
		vals[i] = obj
	}

	result := v.newEvaluator().ApplyFunction(fn, vals, evaluator.NewEnvironment(v.globals))
	if evaluator.IsFailure(result) {
		return nil, result.(*evaluator.Error)
	}
	return v.marshaller.FromValue(result, nil)
}

// LoadFile evaluates a source file.
func (v *VM) LoadFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return v.Eval(string(data))
}

func (v *VM) newEvaluator() *evaluator.Evaluator {
	ev := evaluator.New(v.registry)
	ev.Out = v.out
	ev.MaxCallDepth = v.limits.MaxCallDepth
	return ev
}
