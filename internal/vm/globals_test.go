package vm

import (
	"testing"

	"flan/internal/value"
	"flan/internal/vmerror"
)

func TestDefGlobalThenGetGlobalRoundTrips(t *testing.T) {
	vm := newTestInterpreter()
	vm.push(value.Int(5))
	withCursorBytes(vm, []byte{0, 0, 1, 'x'}) // errIdx=0, name="x"
	if err := vm.executeDefGlobal(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	withCursorBytes(vm, []byte{0, 0, 1, 'x'})
	if err := vm.executeGetGlobal(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := vm.pop()
	if got.Int64() != 5 {
		t.Fatalf("got %v, want Int(5)", got)
	}
}

func TestDefGlobalRedefinitionIsBlamedNameError(t *testing.T) {
	vm := newTestInterpreter()
	vm.push(value.Int(1))
	withCursorBytes(vm, []byte{0, 0, 1, 'x'})
	if err := vm.executeDefGlobal(); err != nil {
		t.Fatalf("unexpected error on first definition: %v", err)
	}

	vm.push(value.Int(2))
	withCursorBytes(vm, []byte{0, 0, 1, 'x'})
	err := vm.executeDefGlobal()
	verr, ok := err.(*vmerror.Error)
	if !ok || verr.Kind != vmerror.NameError {
		t.Fatalf("redefining a global: got %v, want a blamed NameError", err)
	}
}

func TestGetGlobalUndefinedIsBlamedNameError(t *testing.T) {
	vm := newTestInterpreter()
	withCursorBytes(vm, []byte{0, 0, 1, 'x'})
	err := vm.executeGetGlobal()
	verr, ok := err.(*vmerror.Error)
	if !ok || verr.Kind != vmerror.NameError {
		t.Fatalf("undefined global: got %v, want a blamed NameError", err)
	}
}

func TestSetGlobalPopsItsOperand(t *testing.T) {
	vm := newTestInterpreter()
	vm.push(value.Int(1))
	withCursorBytes(vm, []byte{0, 0, 1, 'x'})
	if err := vm.executeDefGlobal(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vm.push(value.Int(2))
	withCursorBytes(vm, []byte{0, 0, 1, 'x'})
	if err := vm.executeSetGlobal(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vm.stack) != 0 {
		t.Fatalf("SetGlobal left %d values on the stack, want 0 (SetGlobal pops, unlike SetLocal)", len(vm.stack))
	}
	if vm.globals["x"].Int64() != 2 {
		t.Fatalf("globals[x] = %v, want Int(2)", vm.globals["x"])
	}
}
