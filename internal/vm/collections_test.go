package vm

import (
	"testing"

	"flan/internal/value"
	"flan/internal/vmerror"
)

// withCursorBytes rebinds the interpreter's cursor onto a standalone
// buffer of pre-encoded operand bytes, so an execute* handler can be
// called directly without assembling a whole instruction stream.
func withCursorBytes(vm *Interpreter, b []byte) {
	vm.cursor.Rebind(b, 0)
}

func TestInitListPreservesPushOrder(t *testing.T) {
	vm := newTestInterpreter()
	vm.push(value.Int(1))
	vm.push(value.Int(2))
	vm.push(value.Int(3))
	withCursorBytes(vm, []byte{3, 0, 0, 0}) // n=3

	if err := vm.executeInitList(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	top, _ := vm.pop()
	list := top.AsObject().(*value.List)
	for i, want := range []int64{1, 2, 3} {
		if list.Elements[i].Int64() != want {
			t.Fatalf("Elements[%d] = %d, want %d", i, list.Elements[i].Int64(), want)
		}
	}
}

func TestInitTupRejectsLengthOver255(t *testing.T) {
	vm := newTestInterpreter()
	withCursorBytes(vm, []byte{0, 1, 0, 0}) // n=256

	if err := vm.executeInitTup(); err == nil {
		t.Fatal("expected an error for a tuple length over 255")
	}
}

// TestResolveIndexCountsNegativeFromEnd exercises resolveIndex directly
// with a raw negative int64. This bypasses decodeInlineIndex on purpose:
// the tagInteger operand format zero-extends (Cursor.Integer), so -1 is
// the only negative value reachable through a real encoded operand, and
// only via the dedicated LoadNeg1 immediate, never through this inline
// tag-dispatched index -- see list_index_negative.yaml.
func TestResolveIndexCountsNegativeFromEnd(t *testing.T) {
	vm := newTestInterpreter()

	i, err := vm.resolveIndex(0, -1, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if i != 2 {
		t.Fatalf("resolveIndex(-1, length 3) = %d, want 2 (the last element)", i)
	}
}

func TestIdxListOrTupOutOfRangeIsBlamedDomainError(t *testing.T) {
	vm := newTestInterpreter()
	list := vm.heap.AllocList([]value.Value{value.Int(10), value.Int(20), value.Int(30)})
	vm.push(value.FromObject(list))

	idxOperand := append([]byte{0, 0}, encodeInlineInt(t, 5)...)
	withCursorBytes(vm, idxOperand)

	err := vm.executeIdxListOrTup()
	verr, ok := err.(*vmerror.Error)
	if !ok || verr.Kind != vmerror.DomainError {
		t.Fatalf("out-of-range index: got %v, want a blamed DomainError", err)
	}
}

func TestSetListMutatesInPlaceWithoutPushing(t *testing.T) {
	vm := newTestInterpreter()
	list := vm.heap.AllocList([]value.Value{value.Int(10), value.Int(20), value.Int(30)})
	vm.push(value.FromObject(list))
	vm.push(value.Int(99))

	idxOperand := append([]byte{0, 0}, encodeInlineInt(t, 1)...)
	withCursorBytes(vm, idxOperand)

	if err := vm.executeSetList(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.Elements[1].Int64() != 99 {
		t.Fatalf("Elements[1] = %v, want Int(99)", list.Elements[1])
	}
	if len(vm.stack) != 0 {
		t.Fatalf("SetList must not push a result, stack has %d values left", len(vm.stack))
	}
}

func TestGetMemberMissingKeyIsBlamedDomainError(t *testing.T) {
	vm := newTestInterpreter()
	table := vm.heap.AllocTable()
	vm.push(value.FromObject(table))
	withCursorBytes(vm, []byte{0, 0, 3, 'f', 'o', 'o'}) // errIdx=0, key="foo"

	err := vm.executeGetMember()
	verr, ok := err.(*vmerror.Error)
	if !ok || verr.Kind != vmerror.DomainError {
		t.Fatalf("missing member: got %v, want a blamed DomainError", err)
	}
}

func TestSetMemberThenGetMemberRoundTrips(t *testing.T) {
	vm := newTestInterpreter()
	table := vm.heap.AllocTable()

	vm.push(value.FromObject(table))
	vm.push(value.Int(7))
	withCursorBytes(vm, []byte{0, 0, 3, 'f', 'o', 'o'})
	if err := vm.executeSetMember(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vm.push(value.FromObject(table))
	withCursorBytes(vm, []byte{0, 0, 3, 'f', 'o', 'o'})
	if err := vm.executeGetMember(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := vm.pop()
	if got.Int64() != 7 {
		t.Fatalf("got %v, want Int(7)", got)
	}
}

// encodeInlineInt encodes a tag-dispatched Integer constant the way
// loader.DecodeValue expects it: a tag byte then 4 bytes little-endian.
func encodeInlineInt(t *testing.T, v int64) []byte {
	t.Helper()
	var b [5]byte
	b[0] = 0 // tagInteger
	u := uint32(v)
	b[1] = byte(u)
	b[2] = byte(u >> 8)
	b[3] = byte(u >> 16)
	b[4] = byte(u >> 24)
	return b[:]
}
