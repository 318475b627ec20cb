package vm

import "flan/internal/vmerror"

func (vm *Interpreter) executeDefGlobal() error {
	errIdx, err := vm.cursor.U16()
	if err != nil {
		return err
	}
	name, err := vm.cursor.ShortString()
	if err != nil {
		return err
	}
	if _, exists := vm.globals[name]; exists {
		return vm.blame(vmerror.NameError, errIdx, "global %q already defined", name)
	}
	v, err := vm.pop()
	if err != nil {
		return err
	}
	vm.globals[name] = v
	return nil
}

func (vm *Interpreter) executeGetGlobal() error {
	errIdx, err := vm.cursor.U16()
	if err != nil {
		return err
	}
	name, err := vm.cursor.ShortString()
	if err != nil {
		return err
	}
	v, ok := vm.globals[name]
	if !ok {
		return vm.blame(vmerror.NameError, errIdx, "undefined global %q", name)
	}
	vm.push(v)
	return nil
}

func (vm *Interpreter) executeSetGlobal() error {
	errIdx, err := vm.cursor.U16()
	if err != nil {
		return err
	}
	name, err := vm.cursor.ShortString()
	if err != nil {
		return err
	}
	if _, ok := vm.globals[name]; !ok {
		return vm.blame(vmerror.NameError, errIdx, "undefined global %q", name)
	}
	top, err := vm.pop()
	if err != nil {
		return err
	}
	vm.globals[name] = top
	return nil
}
