// Package vm implements the fetch-decode-execute loop: the evaluation
// stack, the bounded call-frame stack, the global table, and every
// instruction's semantics. It owns the heap/GC and the loader, invoking
// both as execution proceeds.
package vm

import (
	"flan/internal/bytecode"
	"flan/internal/heap"
	"flan/internal/loader"
	"flan/internal/trace"
	"flan/internal/value"
	"flan/internal/vmerror"
)

// Interpreter is constructed fresh per run: a single long-lived VM
// instance built from a loaded image, torn down when Run returns.
type Interpreter struct {
	image   *loader.Image
	cursor  *loader.Cursor
	stack   []value.Value
	from    int
	frames  []Frame
	globals map[string]value.Value
	heap    *heap.Heap
	tracer  *trace.Tracer
}

// New builds an interpreter over a decoded image. The heap is
// constructed with this interpreter as its root-scanning collaborator,
// per the design note against global GC state: the heap never reaches
// for a particular VM instance except through the scanner it was handed
// at construction.
func New(img *loader.Image) *Interpreter {
	vm := &Interpreter{
		image:   img,
		cursor:  loader.NewCursor(img.Body),
		stack:   make([]value.Value, 0, 256),
		globals: make(map[string]value.Value),
		tracer:  trace.Noop(),
	}
	vm.heap = heap.New(vm)
	return vm
}

// SetTracer installs an execution tracer; nil restores the no-op tracer.
func (vm *Interpreter) SetTracer(t *trace.Tracer) {
	if t == nil {
		t = trace.Noop()
	}
	vm.tracer = t
}

// BindGlobal installs a value directly into the globals table, bypassing
// DefGlobal's redefinition check. Used at startup to seed builtin call
// hooks before the program's own bytecode runs.
func (vm *Interpreter) BindGlobal(name string, v value.Value) {
	vm.globals[name] = v
}

// Heap exposes the interpreter's heap, e.g. so builtins can allocate
// result objects without a separate path back into the VM.
func (vm *Interpreter) Heap() *heap.Heap { return vm.heap }

// WalkRoots implements heap.RootScanner: every Value currently on the
// evaluation stack and every Value bound in globals is a GC root.
func (vm *Interpreter) WalkRoots(visit func(value.Value)) {
	for _, v := range vm.stack {
		visit(v)
	}
	for _, v := range vm.globals {
		visit(v)
	}
}

// Run executes the image's top-level instruction stream to completion,
// returning the final evaluation stack (for tests) or a fatal error.
func (vm *Interpreter) Run() ([]value.Value, error) {
	for {
		op, runErr := vm.fetch()
		if runErr != nil {
			return nil, vm.fatal(runErr)
		}

		vm.tracer.Instruction(vm.cursor.Pos()-1, op.String(), len(vm.stack))

		if op == bytecode.Halt {
			return vm.stack, nil
		}

		if err := vm.execute(op); err != nil {
			return nil, vm.fatal(err)
		}
	}
}

// fetch reads one opcode byte and advances the cursor past it.
func (vm *Interpreter) fetch() (bytecode.Op, error) {
	b, err := vm.cursor.U8()
	if err != nil {
		return 0, vmerror.New(vmerror.LoadError, "truncated instruction stream: %v", err)
	}
	return bytecode.Op(b), nil
}

// fatal attaches the live call-frame traceback to an error escaping Run.
func (vm *Interpreter) fatal(err error) error {
	if verr, ok := err.(*vmerror.Error); ok {
		names := make([]string, 0, len(vm.frames))
		for i := len(vm.frames) - 1; i >= 0; i-- {
			names = append(names, vm.frames[i].FuncName)
		}
		return verr.WithFrames(names)
	}
	return err
}
