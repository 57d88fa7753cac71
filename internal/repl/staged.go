package repl

import (
	"sync"

	"github.com/rill-lang/rill/internal/evaluator"
)

// stagedGlobals is the isolation device for one submission. The worker
// evaluates against this overlay: reads fall through to the session's stable
// global frame, writes land in a private delta. On success the delta is
// flushed into the base frame in one step; on failure it is simply dropped,
// leaving the base byte-for-byte untouched.
//
// After Commit the overlay seals and delegates to the base frame forever.
// Closures created during the submission captured the overlay handle, so
// sealing keeps them resolving against the same globals every earlier
// closure sees — late binding survives the commit.
type stagedGlobals struct {
	mu     sync.RWMutex
	base   *evaluator.GlobalFrame
	delta  map[string]evaluator.Value
	sealed bool
}

func newStagedGlobals(base *evaluator.GlobalFrame) *stagedGlobals {
	return &stagedGlobals{base: base, delta: make(map[string]evaluator.Value)}
}

func (s *stagedGlobals) Get(name string) (evaluator.Value, bool) {
	s.mu.RLock()
	if !s.sealed {
		if v, ok := s.delta[name]; ok {
			s.mu.RUnlock()
			return v, true
		}
	}
	s.mu.RUnlock()
	return s.base.Get(name)
}

func (s *stagedGlobals) Define(name string, val evaluator.Value) {
	s.mu.Lock()
	if s.sealed {
		s.mu.Unlock()
		s.base.Define(name, val)
		return
	}
	s.delta[name] = val
	s.mu.Unlock()
}

// Commit flushes the delta into the base frame and seals the overlay.
func (s *stagedGlobals) Commit() {
	s.mu.Lock()
	delta := s.delta
	s.delta = nil
	s.sealed = true
	s.mu.Unlock()

	for name, val := range delta {
		s.base.Define(name, val)
	}
}

// Discard seals the overlay without applying the delta. Values created by
// the failed submission become unreachable with it.
func (s *stagedGlobals) Discard() {
	s.mu.Lock()
	s.delta = nil
	s.sealed = true
	s.mu.Unlock()
}
