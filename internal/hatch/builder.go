package hatch

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/rill-lang/rill/internal/evaluator"
	"github.com/rill-lang/rill/internal/registry"
)

// Builder assembles the temporary shim project and compiles it.
type Builder struct {
	// sourceDir is a local checkout of this project, used as a replace
	// target in the shim's go.mod. Empty means the module is fetched.
	sourceDir string

	// goVersion is the Go directive for the shim's go.mod.
	goVersion string

	workDir string
	verbose bool
}

type BuilderOption func(*Builder)

// WithSourceDir points the shim at a local checkout.
func WithSourceDir(dir string) BuilderOption {
	return func(b *Builder) { b.sourceDir = dir }
}

func WithVerbose(v bool) BuilderOption {
	return func(b *Builder) { b.verbose = v }
}

func NewBuilder(goVersion string, opts ...BuilderOption) *Builder {
	b := &Builder{goVersion: goVersion}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildResult is the output of a successful build.
type BuildResult struct {
	BinaryPath string
	WorkDir    string
}

// Build generates the shim workspace for def, type-checks it and compiles
// it to a standalone binary.
func (b *Builder) Build(def *registry.FunctionDefinition) (*BuildResult, error) {
	if def.Body == nil {
		return nil, fmt.Errorf("%s/%d has no interpretable body to compile", def.Name, def.Arity())
	}
	if err := b.ensureWorkDir(); err != nil {
		return nil, fmt.Errorf("workspace setup: %w", err)
	}

	files := map[string]string{
		"main.go": GenerateMain(def),
		"go.mod":  GenerateGoMod(b.goVersion, b.sourceDir),
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(b.workDir, name), []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", name, err)
		}
		if b.verbose {
			fmt.Fprintf(os.Stderr, "[hatch] wrote %s\n", name)
		}
	}

	if err := b.goModTidy(); err != nil {
		return nil, fmt.Errorf("go mod tidy: %w", err)
	}
	if err := Inspect(b.workDir); err != nil {
		return nil, err
	}

	binaryPath, err := b.goBuild(def.Name)
	if err != nil {
		return nil, fmt.Errorf("go build: %w", err)
	}
	return &BuildResult{BinaryPath: binaryPath, WorkDir: b.workDir}, nil
}

// Cleanup removes the temporary workspace.
func (b *Builder) Cleanup() {
	if b.workDir != "" {
		os.RemoveAll(b.workDir)
		b.workDir = ""
	}
}

func (b *Builder) ensureWorkDir() error {
	if b.workDir != "" {
		return nil
	}
	dir, err := os.MkdirTemp("", "rill-hatch-*")
	if err != nil {
		return err
	}
	b.workDir = dir
	return nil
}

func (b *Builder) goModTidy() error {
	cmd := exec.Command("go", "mod", "tidy")
	cmd.Dir = b.workDir
	cmd.Env = append(os.Environ(), "GOWORK=off")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s\n%w", string(output), err)
	}
	return nil
}

func (b *Builder) goBuild(name string) (string, error) {
	outputPath := filepath.Join(b.workDir, "rill-hatch-"+name)
	if runtime.GOOS == "windows" {
		outputPath += ".exe"
	}

	cmd := exec.Command("go", "build", "-trimpath", "-o", outputPath, ".")
	cmd.Dir = b.workDir
	cmd.Env = append(os.Environ(), "GOWORK=off", "CGO_ENABLED=0")

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("go build failed:\n%s\n%w", string(output), err)
	}
	if b.verbose {
		fmt.Fprintf(os.Stderr, "[hatch] built %s\n", outputPath)
	}
	return outputPath, nil
}

// Substitute installs a compiled-backed definition in the registry under
// def's key. Future calls resolve the substitute through the ordinary late
// binding path; the interpreted body is displaced like any other
// replacement.
func Substitute(reg *registry.Registry, def *registry.FunctionDefinition, binaryPath string) {
	compiled := &evaluator.Builtin{
		Name:  def.Name,
		Arity: def.Arity(),
		Fn:    invokeShim(def.Name, binaryPath),
	}
	reg.Replace(&registry.FunctionDefinition{
		Module:   def.Module,
		Name:     def.Name,
		Params:   def.Params,
		Compiled: compiled,
	})
}

// invokeShim builds the native function that runs the compiled binary. The
// call is rendered back to source form, evaluated in the shim, and the
// printed result parsed into a runtime value.
func invokeShim(name, binaryPath string) evaluator.BuiltinFn {
	return func(e *evaluator.Evaluator, args []evaluator.Value) evaluator.Value {
		rendered := make([]string, len(args))
		for i, arg := range args {
			rendered[i] = arg.Inspect()
		}
		form := fmt.Sprintf("%s(%s)", name, strings.Join(rendered, ", "))

		out, err := exec.Command(binaryPath, form).Output()
		if err != nil {
			detail := err.Error()
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
				detail = strings.TrimSpace(string(exitErr.Stderr))
			}
			return &evaluator.Error{
				Kind:    evaluator.BuiltinInvocationError,
				Message: fmt.Sprintf("compiled %s: %s", name, detail),
			}
		}
		return parseShimOutput(strings.TrimSpace(string(out)))
	}
}

// parseShimOutput maps the shim's printed result back onto a value. The
// shim prints Go-marshalled values, so the grammar is small: unit, bool,
// integer, float, anything else is text.
func parseShimOutput(s string) evaluator.Value {
	switch s {
	case "()", "":
		return evaluator.UNIT
	case "true":
		return evaluator.TRUE
	case "false":
		return evaluator.FALSE
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return evaluator.NewInteger(evaluator.I64, n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return &evaluator.Float{Kind: evaluator.F64, Value: f}
	}
	return &evaluator.Text{Value: strings.Trim(s, `"`)}
}
