package policy

import "github.com/vovakirdan/blockdude-evo/internal/games/blockdude/core"

// DefaultTraceSize is the window used for repeated-state detection.
const DefaultTraceSize = 15

type traceEntry struct {
	state  core.Snapshot
	action core.Action
	tagged bool
}

// Trace is a bounded history of visited states and the action chosen
// in each. Once full, the oldest entry is evicted.
type Trace struct {
	entries []traceEntry
	next    int
	size    int
}

// NewTrace creates a trace holding up to capacity states.
func NewTrace(capacity int) *Trace {
	if capacity <= 0 {
		capacity = DefaultTraceSize
	}
	return &Trace{entries: make([]traceEntry, capacity)}
}

// Push records a visited state.
func (t *Trace) Push(s core.Snapshot) {
	t.entries[t.next] = traceEntry{state: s}
	t.next = (t.next + 1) % len(t.entries)
	if t.size < len(t.entries) {
		t.size++
	}
}

// Tag records the action chosen in the most recent state.
func (t *Trace) Tag(a core.Action) {
	if t.size == 0 {
		return
	}
	i := (t.next - 1 + len(t.entries)) % len(t.entries)
	t.entries[i].action = a
	t.entries[i].tagged = true
}

// Count returns how many recorded states equal s.
func (t *Trace) Count(s *core.State) int {
	n := 0
	t.each(func(e *traceEntry) {
		if e.state.Matches(s) {
			n++
		}
	})
	return n
}

// TakenFrom returns the actions already chosen from states equal to s.
func (t *Trace) TakenFrom(s *core.State) [core.ActionCount]bool {
	var taken [core.ActionCount]bool
	t.each(func(e *traceEntry) {
		if e.tagged && e.state.Matches(s) {
			taken[e.action] = true
		}
	})
	return taken
}

// Len returns the number of recorded states.
func (t *Trace) Len() int { return t.size }

// Cap returns the trace capacity.
func (t *Trace) Cap() int { return len(t.entries) }

// Reset drops every entry.
func (t *Trace) Reset() {
	clear(t.entries)
	t.next, t.size = 0, 0
}

func (t *Trace) each(fn func(*traceEntry)) {
	start := (t.next - t.size + len(t.entries)) % len(t.entries)
	for i := 0; i < t.size; i++ {
		fn(&t.entries[(start+i)%len(t.entries)])
	}
}
