// Package repl implements the session controller: the supervisor that owns
// the working environment, dispatches every submission to an isolated worker
// goroutine, and guarantees that a failed submission leaves session state
// exactly as it found it.
//
// Per submission the controller moves Idle -> Dispatching -> awaiting the
// worker -> Committing on success, RollingBack on failure, or Respawning
// when the worker itself was lost. It is the sole recovery point; the
// evaluator never recovers locally.
package repl

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/config"
	"github.com/rill-lang/rill/internal/evaluator"
	"github.com/rill-lang/rill/internal/parser"
	"github.com/rill-lang/rill/internal/registry"
)

// Session is the REPL state: the immutable base snapshot, the mutable
// current global frame, the optional slurp save point, the history ring and
// the shared registry.
type Session struct {
	ID string

	mu sync.Mutex // serializes submissions and state commands

	out    io.Writer
	limits config.Limits

	registry *registry.Registry
	globals  *evaluator.GlobalFrame     // current
	base     map[string]evaluator.Value // prelude snapshot, never mutated

	save         map[string]evaluator.Value // snapshot taken by Slurp
	slurpJournal *journalRegistry
	slurped      bool

	hist  *history
	store *HistoryStore

	worker *worker

	cancelMu sync.Mutex
	cancel   context.CancelFunc
}

// NewSession builds a session with a fresh registry and a prelude of the
// builtin natives.
func NewSession(out io.Writer, limits config.Limits) (*Session, error) {
	if limits.MaxCallDepth <= 0 {
		limits.MaxCallDepth = config.DefaultMaxCallDepth
	}

	globals := evaluator.NewGlobalFrame()
	evaluator.RegisterBuiltins(globals)

	s := &Session{
		ID:       uuid.NewString(),
		out:      out,
		limits:   limits,
		registry: registry.New(),
		globals:  globals,
		base:     globals.Snapshot(),
		hist:     newHistory(limits.HistorySize),
		worker:   newWorker(),
	}

	if limits.HistoryDB != "" {
		store, err := OpenHistoryStore(limits.HistoryDB)
		if err != nil {
			return nil, fmt.Errorf("opening history store: %w", err)
		}
		s.store = store
	}
	return s, nil
}

// Registry exposes the shared definition store, e.g. for the compilation
// escape hatch.
func (s *Session) Registry() *registry.Registry { return s.registry }

// Submit parses and evaluates one form. On success the binding deltas are
// committed and the result recorded in history; on any failure the working
// environment and the registry are left in their pre-submit state.
func (s *Session) Submit(form string) (evaluator.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	program, err := s.parse(form)
	if err != nil {
		return nil, err
	}

	value, journal, err := s.evaluate(program)
	if err != nil {
		return nil, err
	}
	journal.Drop()

	s.hist.add(HistoryEntry{Form: form, Value: value})
	s.hist.bind(s.globals)
	if s.store != nil {
		if err := s.store.Append(form, value.Inspect()); err != nil {
			fmt.Fprintf(s.out, "history store: %v\n", err)
		}
	}
	return value, nil
}

func (s *Session) parse(form string) (*ast.Program, error) {
	program, errs := parser.Parse(form)
	if len(errs) > 0 {
		return nil, fmt.Errorf("parse error: %s", strings.Join(errs, "; "))
	}
	return program, nil
}

// evaluate runs one program in the worker against a staged view of the
// globals and a journaled view of the registry. On success the staged delta
// is committed and the journal returned for the caller to keep or drop; on
// failure both are rolled back.
func (s *Session) evaluate(program *ast.Program) (evaluator.Value, *journalRegistry, error) {
	staged := newStagedGlobals(s.globals)
	journal := newJournalRegistry(s.registry)

	ctx, cancel := context.WithCancel(context.Background())
	s.setCancel(cancel)
	defer func() {
		s.setCancel(nil)
		cancel()
	}()

	resp := s.worker.submit(&request{
		program:  program,
		env:      evaluator.NewEnvironment(staged),
		defs:     journal,
		ctx:      ctx,
		out:      s.out,
		module:   config.DefaultModule,
		maxDepth: s.limits.MaxCallDepth,
	})

	if resp.panicked {
		staged.Discard()
		journal.Undo()
		lost := s.worker.id
		s.worker = newWorker()
		return nil, nil, &evaluator.Error{
			Kind:    evaluator.WorkerLost,
			Message: fmt.Sprintf("worker %s lost: %s", lost, resp.panicMsg),
		}
	}
	if evaluator.IsFailure(resp.value) {
		staged.Discard()
		journal.Undo()
		return nil, nil, resp.value.(*evaluator.Error)
	}

	staged.Commit()
	return resp.value, journal, nil
}

func (s *Session) setCancel(cancel context.CancelFunc) {
	s.cancelMu.Lock()
	s.cancel = cancel
	s.cancelMu.Unlock()
}

// Interrupt cancels the evaluation in flight, if any. The worker observes
// the cancellation cooperatively and answers with an Interrupted failure.
func (s *Session) Interrupt() {
	s.cancelMu.Lock()
	cancel := s.cancel
	s.cancelMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Reset restores the session to its initial state: prelude globals, empty
// registry, empty history.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.globals.Restore(s.base)
	for _, key := range s.registry.Keys() {
		s.registry.Remove(key)
	}
	s.hist.clear()
	s.save = nil
	s.slurpJournal = nil
	s.slurped = false
}

// Clear empties the history ring, leaving definitions intact.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hist.clear()
}

// GlobalNames lists the names bound in the current global frame.
func (s *Session) GlobalNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.globals.Names()
}

// Definitions lists the registry keys of the live function definitions.
func (s *Session) Definitions() []registry.Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Keys()
}

// History returns up to n entries, most recent first.
func (s *Session) History(n int) []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.recent(n)
}

// Slurped reports whether a slurp save point is active.
func (s *Session) Slurped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slurped
}

// Close shuts the worker down and closes the history store.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.worker.close()
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
