package repl

import (
	"errors"

	"github.com/rill-lang/rill/internal/evaluator"
)

var (
	// ErrAlreadySlurped is returned by Slurp when a save point is active.
	ErrAlreadySlurped = errors.New("a definition set is already slurped; unslurp first")

	// ErrNotSlurped is returned by Unslurp when there is nothing to restore.
	ErrNotSlurped = errors.New("nothing slurped")
)

// Slurp evaluates a whole definition set after snapshotting the current
// globals into the save point. A later Unslurp restores the snapshot and
// undoes the set's registry installs. A failed slurp rolls back like any
// submission and leaves no save point.
func (s *Session) Slurp(src string) (evaluator.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.slurped {
		return nil, ErrAlreadySlurped
	}

	program, err := s.parse(src)
	if err != nil {
		return nil, err
	}

	save := s.globals.Snapshot()
	value, journal, err := s.evaluate(program)
	if err != nil {
		return nil, err
	}

	s.save = save
	s.slurpJournal = journal
	s.slurped = true
	return value, nil
}

// Unslurp restores the globals saved by Slurp and reverts the slurped
// registry installs.
func (s *Session) Unslurp() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.slurped {
		return ErrNotSlurped
	}

	s.globals.Restore(s.save)
	s.slurpJournal.Undo()
	s.save = nil
	s.slurpJournal = nil
	s.slurped = false
	return nil
}
