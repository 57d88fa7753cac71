package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/rill-lang/rill/internal/config"
	"github.com/rill-lang/rill/internal/evaluator"
	"github.com/rill-lang/rill/internal/parser"
	"github.com/rill-lang/rill/internal/registry"
	"github.com/rill-lang/rill/internal/repl"
)

const configFile = "rill.yaml"

const prompt = ">> "

func main() {
	limits, err := config.LoadLimits(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	args := os.Args[1:]
	if len(args) >= 1 && !strings.HasPrefix(args[0], "-") {
		os.Exit(runScript(args[0], limits))
	}

	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		runREPL(os.Stdin, os.Stdout, limits, true)
		return
	}

	// Piped input: evaluate stdin as a script.
	source, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading stdin: %v\n", err)
		os.Exit(1)
	}
	os.Exit(runSource(string(source), limits))
}

// runScript evaluates a source file outside of any session.
func runScript(path string, limits config.Limits) int {
	if !strings.HasSuffix(path, config.SourceFileExt) {
		fmt.Fprintf(os.Stderr, "%s: expected a %s file\n", path, config.SourceFileExt)
		return 2
	}
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	return runSource(string(source), limits)
}

func runSource(source string, limits config.Limits) int {
	program, errs := parser.Parse(source)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "parse error: %s\n", e)
		}
		return 1
	}

	globals := evaluator.NewGlobalFrame()
	evaluator.RegisterBuiltins(globals)

	ev := evaluator.New(registry.New())
	ev.MaxCallDepth = limits.MaxCallDepth

	result := ev.EvalProgram(program, evaluator.NewEnvironment(globals))
	if evaluator.IsFailure(result) {
		fmt.Fprintf(os.Stderr, "%s\n", result.Inspect())
		return 1
	}
	return 0
}

// runREPL drives an interactive session. Ctrl-C interrupts the evaluation in
// flight instead of killing the process.
func runREPL(in io.Reader, out io.Writer, limits config.Limits, interactive bool) {
	session, err := repl.NewSession(out, limits)
	if err != nil {
		fmt.Fprintf(os.Stderr, "session: %v\n", err)
		os.Exit(1)
	}
	defer session.Close()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		for range sigs {
			session.Interrupt()
		}
	}()
	defer signal.Stop(sigs)

	if interactive {
		fmt.Fprintf(out, "rill session %s (:help for commands)\n", session.ID)
	}

	scanner := bufio.NewScanner(in)
	var pending strings.Builder
	for {
		if interactive {
			if pending.Len() > 0 {
				fmt.Fprint(out, ".. ")
			} else {
				fmt.Fprint(out, prompt)
			}
		}
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()

		if pending.Len() == 0 && strings.HasPrefix(line, ":") {
			if quit := command(session, out, line); quit {
				return
			}
			continue
		}

		pending.WriteString(line)
		pending.WriteString("\n")
		form := pending.String()
		if strings.TrimSpace(form) == "" {
			pending.Reset()
			continue
		}
		if incomplete(form) {
			continue
		}
		pending.Reset()

		value, err := session.Submit(form)
		if err != nil {
			fmt.Fprintf(out, "%v\n", err)
			continue
		}
		fmt.Fprintln(out, evaluator.Render(value))
	}
}

// incomplete reports whether the form has an open block and should keep
// accumulating lines before submission.
func incomplete(form string) bool {
	_, errs := parser.Parse(form)
	for _, e := range errs {
		if strings.Contains(e, "unterminated block") {
			return true
		}
	}
	return false
}

// command handles one :-prefixed session command, returning true on :quit.
func command(session *repl.Session, out io.Writer, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Fprint(out, helpText)
	case ":env":
		for _, name := range session.GlobalNames() {
			fmt.Fprintln(out, name)
		}
	case ":defs":
		for _, key := range session.Definitions() {
			fmt.Fprintf(out, "%s.%s/%d\n", key.Module, key.Name, key.Arity)
		}
	case ":history":
		n := 10
		if len(fields) > 1 {
			if parsed, err := strconv.Atoi(fields[1]); err == nil && parsed > 0 {
				n = parsed
			}
		}
		for _, entry := range session.History(n) {
			fmt.Fprintf(out, "%s => %s\n", strings.TrimSpace(entry.Form), entry.Value.Inspect())
		}
	case ":clear":
		session.Clear()
	case ":reset":
		session.Reset()
	case ":slurp":
		if len(fields) < 2 {
			fmt.Fprintln(out, "usage: :slurp <file>")
			return false
		}
		data, err := os.ReadFile(fields[1])
		if err != nil {
			fmt.Fprintf(out, "%v\n", err)
			return false
		}
		if _, err := session.Slurp(string(data)); err != nil {
			fmt.Fprintf(out, "slurp: %v\n", err)
			return false
		}
		fmt.Fprintf(out, "slurped %s\n", fields[1])
	case ":unslurp":
		if err := session.Unslurp(); err != nil {
			fmt.Fprintf(out, "unslurp: %v\n", err)
			return false
		}
		fmt.Fprintln(out, "restored to save point")
	default:
		fmt.Fprintf(out, "unknown command %s (:help for commands)\n", fields[0])
	}
	return false
}

const helpText = `commands:
  :help           show this help
  :env            list global bindings
  :defs           list function definitions
  :history [n]    show recent submissions
  :clear          clear history
  :reset          reset session to its initial state
  :slurp <file>   load a file with a save point
  :unslurp        roll back to the save point
  :quit           exit

history bindings: it, it2, it3 hold recent values; form, form2, form3 the forms.
`
