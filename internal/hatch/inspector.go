package hatch

import (
	"fmt"
	"strings"

	"golang.org/x/tools/go/packages"
)

// Inspect type-checks the generated shim package before the build step, so
// a codegen defect surfaces as a structured error instead of a raw compiler
// dump.
func Inspect(workDir string) error {
	cfg := &packages.Config{
		Mode: packages.NeedName |
			packages.NeedTypes |
			packages.NeedTypesInfo |
			packages.NeedSyntax |
			packages.NeedImports,
		Dir: workDir,
	}

	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return fmt.Errorf("loading shim package: %w", err)
	}

	var problems []string
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			problems = append(problems, e.Error())
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("shim does not type-check:\n%s", strings.Join(problems, "\n"))
	}
	return nil
}
