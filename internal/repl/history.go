package repl

import (
	"github.com/rill-lang/rill/internal/config"
	"github.com/rill-lang/rill/internal/evaluator"
)

// HistoryEntry is one successful submission.
type HistoryEntry struct {
	Form  string
	Value evaluator.Value
}

// history is a bounded ring of successful submissions, most recent last.
type history struct {
	entries []HistoryEntry
	size    int
}

func newHistory(size int) *history {
	if size <= 0 {
		size = config.DefaultHistorySize
	}
	return &history{size: size}
}

func (h *history) add(entry HistoryEntry) {
	h.entries = append(h.entries, entry)
	if len(h.entries) > h.size {
		h.entries = h.entries[len(h.entries)-h.size:]
	}
}

// recent returns up to n entries, most recent first.
func (h *history) recent(n int) []HistoryEntry {
	if n > len(h.entries) {
		n = len(h.entries)
	}
	out := make([]HistoryEntry, 0, n)
	for i := len(h.entries) - 1; i >= len(h.entries)-n; i-- {
		out = append(out, h.entries[i])
	}
	return out
}

func (h *history) clear() { h.entries = nil }

// bind refreshes the rolling history bindings in the global frame: the three
// most recent result values under it/it2/it3 and the matching source forms
// under form/form2/form3.
func (h *history) bind(globals *evaluator.GlobalFrame) {
	recent := h.recent(len(config.ValueBindings))
	for i, entry := range recent {
		globals.Define(config.ValueBindings[i], entry.Value)
		globals.Define(config.FormBindings[i], &evaluator.Text{Value: entry.Form})
	}
}
