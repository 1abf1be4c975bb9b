package policy

import (
	"testing"

	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/core"
)

func TestTraceCountsIdenticalStates(t *testing.T) {
	s := stateFrom(t, flat, 1, 0, core.FacingRight)
	trace := NewTrace(15)

	for i := 1; i <= 15; i++ {
		trace.Push(s.Snapshot())
		if got := trace.Count(s); got != i {
			t.Fatalf("after %d pushes: expected count %d, got %d", i, i, got)
		}
	}
	if trace.Len() != 15 || trace.Cap() != 15 {
		t.Errorf("expected len=cap=15, got %d/%d", trace.Len(), trace.Cap())
	}
}

func TestTraceEvictsOldest(t *testing.T) {
	a := stateFrom(t, flat, 1, 0, core.FacingRight)
	b := stateFrom(t, flat, 2, 0, core.FacingRight)
	trace := NewTrace(15)

	for i := 0; i < 15; i++ {
		trace.Push(a.Snapshot())
	}
	trace.Push(b.Snapshot())

	if got := trace.Count(a); got != 14 {
		t.Errorf("expected 14 copies of a after eviction, got %d", got)
	}
	if got := trace.Count(b); got != 1 {
		t.Errorf("expected 1 copy of b, got %d", got)
	}
	if trace.Len() != 15 {
		t.Errorf("expected len 15, got %d", trace.Len())
	}
}

func TestTraceTagAndReset(t *testing.T) {
	s := stateFrom(t, flat, 1, 0, core.FacingRight)
	trace := NewTrace(3)

	trace.Tag(core.ActionUp) // no entry yet
	trace.Push(s.Snapshot())
	trace.Tag(core.ActionLeft)

	taken := trace.TakenFrom(s)
	if !taken[core.ActionLeft] || taken[core.ActionUp] {
		t.Errorf("unexpected taken set %v", taken)
	}

	trace.Reset()
	if trace.Len() != 0 || trace.Count(s) != 0 {
		t.Error("reset should empty the trace")
	}
}

func TestNewTraceDefaultCapacity(t *testing.T) {
	if got := NewTrace(0).Cap(); got != DefaultTraceSize {
		t.Errorf("expected default capacity %d, got %d", DefaultTraceSize, got)
	}
}
