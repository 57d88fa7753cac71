// Package hatch is the compilation escape hatch: given an installed
// FunctionDefinition it generates a standalone Go program around the
// function, builds it out-of-band with the Go toolchain, and substitutes a
// native-backed definition into the registry under the same key. The
// runtime itself never compiles anything; the hatch is strictly optional
// tooling on top of the stable FunctionDefinition shape.
package hatch

import (
	"fmt"
	"strings"

	"github.com/rill-lang/rill/internal/registry"
)

// ModulePath is the import path of this project, used by the generated
// program.
const ModulePath = "github.com/rill-lang/rill"

// SourceFor reconstructs the function's source text from its definition.
func SourceFor(def *registry.FunctionDefinition) string {
	return fmt.Sprintf("fn %s(%s) %s", def.Name, strings.Join(def.Params, ", "), def.Body.String())
}

// GenerateMain emits the main.go of the shim: a program that installs the
// function into an embedded VM, evaluates the call form passed as its only
// argument, and prints the result.
func GenerateMain(def *registry.FunctionDefinition) string {
	var b strings.Builder
	b.WriteString("package main\n\n")
	b.WriteString("import (\n")
	b.WriteString("\t\"fmt\"\n")
	b.WriteString("\t\"os\"\n\n")
	fmt.Fprintf(&b, "\t%q\n", ModulePath+"/pkg/embed")
	b.WriteString(")\n\n")
	fmt.Fprintf(&b, "const source = %q\n\n", SourceFor(def))
	b.WriteString(`func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: shim <call-form>")
		os.Exit(2)
	}
	vm := embed.New()
	if _, err := vm.Eval(source); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	result, err := vm.Eval(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Print(format(result))
}

func format(v any) string {
	if v == nil {
		return "()"
	}
	return fmt.Sprintf("%v", v)
}
`)
	return b.String()
}

// GenerateGoMod emits the shim's go.mod. sourceDir, when non-empty, becomes
// a replace directive pointing at a local checkout of this project.
func GenerateGoMod(goVersion, sourceDir string) string {
	var b strings.Builder
	b.WriteString("module rill-hatch-shim\n\n")
	fmt.Fprintf(&b, "go %s\n\n", goVersion)
	fmt.Fprintf(&b, "require %s v0.0.0\n", ModulePath)
	if sourceDir != "" {
		fmt.Fprintf(&b, "\nreplace %s => %s\n", ModulePath, sourceDir)
	}
	return b.String()
}
