package vm

import (
	"flan/internal/bytecode"
	"flan/internal/loader"
	"flan/internal/value"
	"flan/internal/vmerror"
)

// execute dispatches one opcode's semantics. The cursor has already
// advanced past the opcode byte itself; handlers read and consume their
// own operands.
func (vm *Interpreter) execute(op bytecode.Op) error {
	if n, ok := bytecode.ImmediateValue(op); ok {
		vm.push(value.Int(n))
		return nil
	}

	switch op {
	case bytecode.Load:
		v, err := loader.DecodeValue(vm.cursor, vm.heap)
		if err != nil {
			return err
		}
		vm.push(v)
		return nil

	case bytecode.Push:
		count, err := vm.cursor.U8()
		if err != nil {
			return err
		}
		for i := 0; i < int(count); i++ {
			v, err := loader.DecodeValue(vm.cursor, vm.heap)
			if err != nil {
				return err
			}
			vm.push(v)
		}
		return nil

	case bytecode.Pop:
		_, err := vm.pop()
		return err

	case bytecode.PopN:
		n, err := vm.cursor.U8()
		if err != nil {
			return err
		}
		_, err = vm.popN(int(n))
		return err

	case bytecode.Nip:
		top, err := vm.pop()
		if err != nil {
			return err
		}
		if _, err := vm.pop(); err != nil {
			return err
		}
		vm.push(top)
		return nil

	case bytecode.NipN:
		n, err := vm.cursor.U8()
		if err != nil {
			return err
		}
		top, err := vm.pop()
		if err != nil {
			return err
		}
		if _, err := vm.popN(int(n)); err != nil {
			return err
		}
		vm.push(top)
		return nil

	case bytecode.Dup:
		top, err := vm.peek(0)
		if err != nil {
			return err
		}
		vm.push(top)
		return nil

	case bytecode.Add, bytecode.Sub, bytecode.Mul, bytecode.Div, bytecode.Mod,
		bytecode.Eq, bytecode.NEq, bytecode.LT, bytecode.LTE, bytecode.GT, bytecode.GTE:
		return vm.executeBinaryOp(op)

	case bytecode.And:
		return vm.executeLogical(func(a, b bool) bool { return a && b })

	case bytecode.Or:
		return vm.executeLogical(func(a, b bool) bool { return a || b })

	case bytecode.Not:
		top, err := vm.pop()
		if err != nil {
			return err
		}
		vm.push(value.Bool(!top.Truthy()))
		return nil

	case bytecode.Negate:
		return vm.executeNegate()

	case bytecode.Jmp:
		off, err := vm.cursor.U32()
		if err != nil {
			return err
		}
		vm.cursor.Seek(vm.cursor.Pos() + int(off))
		return nil

	case bytecode.Jz:
		off, err := vm.cursor.U32()
		if err != nil {
			return err
		}
		top, err := vm.pop()
		if err != nil {
			return err
		}
		if !top.Truthy() {
			vm.cursor.Seek(vm.cursor.Pos() + int(off))
		}
		return nil

	case bytecode.Jnz:
		off, err := vm.cursor.U32()
		if err != nil {
			return err
		}
		top, err := vm.pop()
		if err != nil {
			return err
		}
		if top.Truthy() {
			vm.cursor.Seek(vm.cursor.Pos() + int(off))
		}
		return nil

	case bytecode.InitList:
		return vm.executeInitList()
	case bytecode.InitTable:
		return vm.executeInitTable()
	case bytecode.InitTup:
		return vm.executeInitTup()
	case bytecode.IdxListOrTup:
		return vm.executeIdxListOrTup()
	case bytecode.SetList:
		return vm.executeSetList()
	case bytecode.GetMember:
		return vm.executeGetMember()
	case bytecode.SetMember:
		return vm.executeSetMember()

	case bytecode.DefGlobal:
		return vm.executeDefGlobal()
	case bytecode.GetGlobal:
		return vm.executeGetGlobal()
	case bytecode.SetGlobal:
		return vm.executeSetGlobal()

	case bytecode.GetLocal:
		idx, err := vm.cursor.U16()
		if err != nil {
			return err
		}
		v, err := vm.local(int(idx))
		if err != nil {
			return err
		}
		vm.push(v)
		return nil

	case bytecode.SetLocal:
		idx, err := vm.cursor.U16()
		if err != nil {
			return err
		}
		top, err := vm.peek(0)
		if err != nil {
			return err
		}
		return vm.setLocal(int(idx), top)

	case bytecode.CallFn:
		return vm.executeCallFn()
	case bytecode.RetFn:
		return vm.executeRetFn()

	case bytecode.EndFn:
		return vmerror.New(vmerror.InternalError, "reached EndFn during execution (missing RetFn)")

	default:
		return vmerror.New(vmerror.LoadError, "unknown opcode %#x", byte(op))
	}
}

// blame resolves an err_info_idx operand into a blamed error constructor.
func (vm *Interpreter) blame(kind vmerror.Kind, errIdx uint16, format string, args ...any) error {
	rec, err := vm.image.Blame(errIdx)
	if err != nil {
		return err
	}
	return vmerror.Blamed(kind, rec.Line, rec.Text, format, args...)
}

func (vm *Interpreter) executeLogical(combine func(a, b bool) bool) error {
	b, err := vm.pop()
	if err != nil {
		return err
	}
	a, err := vm.pop()
	if err != nil {
		return err
	}
	vm.push(value.Bool(combine(a.Truthy(), b.Truthy())))
	return nil
}
