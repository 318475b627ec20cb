package vm

import (
	"flan/internal/loader"
	"flan/internal/value"
	"flan/internal/vmerror"
)

func (vm *Interpreter) executeInitList() error {
	n, err := vm.cursor.U32()
	if err != nil {
		return err
	}
	elems, err := vm.popN(int(n))
	if err != nil {
		return err
	}
	list := vm.heap.AllocList(elems)
	vm.push(value.FromObject(list))
	return nil
}

func (vm *Interpreter) executeInitTable() error {
	n, err := vm.cursor.U32()
	if err != nil {
		return err
	}
	table := vm.heap.AllocTable()
	for i := uint32(0); i < n; i++ {
		key, err := vm.cursor.ShortString()
		if err != nil {
			return err
		}
		v, err := vm.pop()
		if err != nil {
			return err
		}
		table.Pairs[key] = v
	}
	vm.push(value.FromObject(table))
	return nil
}

func (vm *Interpreter) executeInitTup() error {
	n, err := vm.cursor.U32()
	if err != nil {
		return err
	}
	if n > 255 {
		return vmerror.New(vmerror.LoadError, "tuple length %d exceeds 255", n)
	}
	elems, err := vm.popN(int(n))
	if err != nil {
		return err
	}
	tup := vm.heap.AllocTuple(elems)
	vm.push(value.FromObject(tup))
	return nil
}

// decodeInlineIndex decodes the inline-value-tagged int operand that
// IdxListOrTup and SetList carry (§6: "Inline value tags ... follow a
// Load / Push / IdxListOrTup / SetList opcode").
func decodeInlineIndex(vm *Interpreter) (int64, error) {
	v, err := loader.DecodeValue(vm.cursor, vm.heap)
	if err != nil {
		return 0, err
	}
	if !v.IsInt() {
		return 0, vmerror.New(vmerror.LoadError, "IdxListOrTup/SetList index operand must be an integer")
	}
	return v.Int64(), nil
}

// resolveIndex applies the negative-counts-from-the-end rule and checks
// bounds, returning a blamed DomainError on out-of-range.
func (vm *Interpreter) resolveIndex(errIdx uint16, idx int64, length int) (int, error) {
	resolved := idx
	if resolved < 0 {
		resolved += int64(length)
	}
	if resolved < 0 || resolved >= int64(length) {
		return 0, vm.blame(vmerror.DomainError, errIdx, "index %d out of range (length %d)", idx, length)
	}
	return int(resolved), nil
}

func (vm *Interpreter) executeIdxListOrTup() error {
	errIdx, err := vm.cursor.U16()
	if err != nil {
		return err
	}
	idx, err := decodeInlineIndex(vm)
	if err != nil {
		return err
	}

	top, err := vm.pop()
	if err != nil {
		return err
	}

	switch {
	case top.IsObject():
		switch o := top.AsObject().(type) {
		case *value.List:
			i, err := vm.resolveIndex(errIdx, idx, len(o.Elements))
			if err != nil {
				return err
			}
			vm.push(o.Elements[i])
			return nil
		case *value.Tuple:
			i, err := vm.resolveIndex(errIdx, idx, len(o.Elements))
			if err != nil {
				return err
			}
			vm.push(o.Elements[i])
			return nil
		}
	}
	return vm.blame(vmerror.TypeMismatch, errIdx, "IdxListOrTup requires a list or tuple")
}

func (vm *Interpreter) executeSetList() error {
	errIdx, err := vm.cursor.U16()
	if err != nil {
		return err
	}
	idx, err := decodeInlineIndex(vm)
	if err != nil {
		return err
	}

	newVal, err := vm.pop()
	if err != nil {
		return err
	}
	target, err := vm.pop()
	if err != nil {
		return err
	}

	if !target.IsObject() {
		return vm.blame(vmerror.TypeMismatch, errIdx, "SetList requires a list")
	}
	list, ok := target.AsObject().(*value.List)
	if !ok {
		return vm.blame(vmerror.TypeMismatch, errIdx, "SetList requires a list")
	}

	i, err := vm.resolveIndex(errIdx, idx, len(list.Elements))
	if err != nil {
		return err
	}
	list.Elements[i] = newVal
	return nil
}

func (vm *Interpreter) executeGetMember() error {
	errIdx, err := vm.cursor.U16()
	if err != nil {
		return err
	}
	key, err := vm.cursor.ShortString()
	if err != nil {
		return err
	}

	top, err := vm.pop()
	if err != nil {
		return err
	}
	table, ok := asTable(top)
	if !ok {
		return vm.blame(vmerror.TypeMismatch, errIdx, "GetMember requires a table")
	}
	v, ok := table.Pairs[key]
	if !ok {
		return vm.blame(vmerror.DomainError, errIdx, "no such member %q", key)
	}
	vm.push(v)
	return nil
}

func (vm *Interpreter) executeSetMember() error {
	errIdx, err := vm.cursor.U16()
	if err != nil {
		return err
	}
	key, err := vm.cursor.ShortString()
	if err != nil {
		return err
	}

	newVal, err := vm.pop()
	if err != nil {
		return err
	}
	top, err := vm.pop()
	if err != nil {
		return err
	}
	table, ok := asTable(top)
	if !ok {
		return vm.blame(vmerror.TypeMismatch, errIdx, "SetMember requires a table")
	}
	table.Pairs[key] = newVal
	return nil
}

func asTable(v value.Value) (*value.Table, bool) {
	if !v.IsObject() {
		return nil, false
	}
	t, ok := v.AsObject().(*value.Table)
	return t, ok
}
