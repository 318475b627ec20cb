package heap

import (
	"testing"

	"flan/internal/value"
)

// fakeRoots is a RootScanner over a fixed slice of Values, standing in
// for the evaluation stack and globals table a real interpreter would
// expose.
type fakeRoots struct {
	values []value.Value
}

func (r *fakeRoots) WalkRoots(visit func(value.Value)) {
	for _, v := range r.values {
		visit(v)
	}
}

func TestCollectSweepsUnreachable(t *testing.T) {
	roots := &fakeRoots{}
	h := New(roots)

	garbage := h.AllocString("garbage")
	_ = garbage

	if h.NurseryBytes() == 0 {
		t.Fatal("expected nursery bytes to account for the allocation")
	}

	h.Collect()

	if h.NurseryBytes() != 0 {
		t.Fatalf("unreachable nursery object survived collection: %d bytes still linked", h.NurseryBytes())
	}
	if h.TenuredBytes() != 0 {
		t.Fatalf("unreachable object was promoted instead of swept: %d tenured bytes", h.TenuredBytes())
	}
}

func TestCollectPromotesSurvivors(t *testing.T) {
	roots := &fakeRoots{}
	h := New(roots)

	kept := h.AllocString("kept")
	roots.values = []value.Value{value.FromObject(kept)}

	h.Collect()

	if h.NurseryBytes() != 0 {
		t.Fatalf("survivor should have been promoted out of the nursery, got %d nursery bytes", h.NurseryBytes())
	}
	if h.TenuredBytes() == 0 {
		t.Fatal("survivor should have been promoted into the tenured generation")
	}

	// A second collection sweeps the tenured generation; the still-rooted
	// survivor must remain, proving sweepTenured's re-mark-and-keep path
	// (not just sweepNursery's promotion path) also respects live roots.
	before := h.TenuredBytes()
	h.Collect()
	if h.TenuredBytes() != before {
		t.Fatalf("tenured survivor's byte count changed across an idempotent collection: %d -> %d", before, h.TenuredBytes())
	}
}

func TestCollectIsIdempotentOnAnEmptyHeap(t *testing.T) {
	h := New(&fakeRoots{})

	h.Collect()
	h.Collect()

	if h.NurseryBytes() != 0 || h.TenuredBytes() != 0 {
		t.Fatalf("collecting an empty heap twice should leave both generations at zero, got nursery=%d tenured=%d", h.NurseryBytes(), h.TenuredBytes())
	}
}

func TestMarkIsCycleSafe(t *testing.T) {
	roots := &fakeRoots{}
	h := New(roots)

	list := h.AllocList(nil)
	list.Elements = []value.Value{value.FromObject(list)}
	roots.values = []value.Value{value.FromObject(list)}

	h.Collect() // a mark that isn't cycle-safe would recurse into itself forever here

	if h.TenuredBytes() == 0 {
		t.Fatal("self-referential list should have survived as its own root")
	}
}

func TestCollectRecursesIntoCompositeChildren(t *testing.T) {
	roots := &fakeRoots{}
	h := New(roots)

	child := h.AllocString("child")
	parent := h.AllocList([]value.Value{value.FromObject(child)})
	roots.values = []value.Value{value.FromObject(parent)}

	h.Collect()

	// The child is reachable only through the parent's Elements slice,
	// never listed directly in roots -- it must still be promoted.
	wantBytes := parent.Header().Size + child.Header().Size
	if h.TenuredBytes() != wantBytes {
		t.Fatalf("child reachable only via parent.Elements was not retained: tenured=%d want=%d", h.TenuredBytes(), wantBytes)
	}
}

func TestAllocTriggersCollectionPastNurseryBudget(t *testing.T) {
	roots := &fakeRoots{}
	h := New(roots)
	h.nursery.budget = 10 // force the trigger with a tiny budget instead of real 8MiB of allocation

	first := h.AllocString("unrooted before the budget trips")
	_ = first
	if h.NurseryBytes() == 0 {
		t.Fatal("expected the first allocation to land in the nursery")
	}

	// This allocation's own checkGC call runs before it links itself in,
	// so it should observe (and sweep away) the unrooted first string.
	h.AllocString("this alloc crosses the tiny budget and forces a sweep")

	if h.TenuredBytes() != 0 {
		t.Fatalf("garbage should not have been promoted by the triggered collection: tenured=%d", h.TenuredBytes())
	}
}
