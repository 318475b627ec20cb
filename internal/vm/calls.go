package vm

import (
	"flan/internal/bytecode"
	"flan/internal/value"
	"flan/internal/vmerror"
)

// executeCallFn implements CallFn. The stack holds [..., callee, arg0,
// ..., argN-1] with argc = N; the callee sits argc slots below the top.
// A bytecode-bodied Function pushes a call frame and jumps the cursor
// into its body, with the arguments left in place as locals 0..argc-1
// of the new frame. A native-bodied Function (Native != nil) is invoked
// directly with no frame at all.
func (vm *Interpreter) executeCallFn() error {
	errIdx, err := vm.cursor.U16()
	if err != nil {
		return err
	}
	argc, err := vm.cursor.U16()
	if err != nil {
		return err
	}

	calleeIdx := len(vm.stack) - int(argc) - 1
	if calleeIdx < 0 {
		return vmerror.New(vmerror.InternalError, "stack underflow at CallFn")
	}
	calleeVal := vm.stack[calleeIdx]

	fn, ok := asFunction(calleeVal)
	if !ok {
		return vm.blame(vmerror.TypeMismatch, errIdx, "CallFn requires a function")
	}
	if fn.Arity != argc {
		return vm.blame(vmerror.DomainError, errIdx, "%s expects %d arguments, got %d", fn.Name, fn.Arity, argc)
	}

	// Splice the callee out, leaving the arguments contiguous at
	// calleeIdx so they double as the new frame's locals.
	vm.stack = append(vm.stack[:calleeIdx], vm.stack[calleeIdx+1:]...)

	if fn.Native != nil {
		args := make([]value.Value, argc)
		copy(args, vm.stack[calleeIdx:])
		result, err := fn.Native(args)
		if err != nil {
			return err
		}
		vm.stack = vm.stack[:calleeIdx]
		vm.push(result)
		return nil
	}

	if len(vm.frames) >= bytecode.CallFramesMax {
		return vm.blame(vmerror.StackOverflow, errIdx, "call stack exceeded %d frames", bytecode.CallFramesMax)
	}

	vm.tracer.Call(fn.Name, int(argc))

	vm.frames = append(vm.frames, Frame{
		ReturnBuf:  vm.cursor.Buf(),
		ReturnAddr: vm.cursor.Pos(),
		PrevFrom:   vm.from,
		FuncName:   fn.Name,
	})
	vm.from = calleeIdx
	vm.cursor.Rebind(fn.Body, 0)
	return nil
}

// executeRetFn implements RetFn: discard the callee's entire frame
// (locals and any temporaries above them), restore the caller's cursor
// position and frame base, and leave the return value where the callee
// used to sit.
func (vm *Interpreter) executeRetFn() error {
	retVal, err := vm.pop()
	if err != nil {
		return err
	}
	if len(vm.frames) == 0 {
		return vmerror.New(vmerror.InternalError, "RetFn with no active call frame")
	}

	frame := vm.frames[len(vm.frames)-1]
	vm.frames = vm.frames[:len(vm.frames)-1]

	vm.tracer.Return(frame.FuncName)

	vm.stack = vm.stack[:vm.from]
	vm.from = frame.PrevFrom
	vm.cursor.Rebind(frame.ReturnBuf, frame.ReturnAddr)
	vm.push(retVal)
	return nil
}

func asFunction(v value.Value) (*value.Function, bool) {
	if !v.IsObject() {
		return nil, false
	}
	fn, ok := v.AsObject().(*value.Function)
	return fn, ok
}
