package vm

import (
	"math"

	"flan/internal/bytecode"
	"flan/internal/value"
	"flan/internal/vmerror"
)

// executeBinaryOp handles every opcode that pops two operands, applies
// one operator, and pushes the result behind a blaming err_info_idx:
// Add Sub Mul Div Mod Eq NEq LT LTE GT GTE.
func (vm *Interpreter) executeBinaryOp(op bytecode.Op) error {
	errIdx, err := vm.cursor.U16()
	if err != nil {
		return err
	}

	b, err := vm.pop()
	if err != nil {
		return err
	}
	a, err := vm.pop()
	if err != nil {
		return err
	}

	switch op {
	case bytecode.Add:
		return vm.arith(errIdx, a, b, '+')
	case bytecode.Sub:
		return vm.arith(errIdx, a, b, '-')
	case bytecode.Mul:
		return vm.arith(errIdx, a, b, '*')
	case bytecode.Div:
		return vm.arith(errIdx, a, b, '/')
	case bytecode.Mod:
		return vm.arith(errIdx, a, b, '%')
	case bytecode.Eq:
		return vm.compareEq(errIdx, a, b, false)
	case bytecode.NEq:
		return vm.compareEq(errIdx, a, b, true)
	case bytecode.LT:
		return vm.compareOrder(errIdx, a, b, orderLT)
	case bytecode.LTE:
		return vm.compareOrder(errIdx, a, b, orderLTE)
	case bytecode.GT:
		return vm.compareOrder(errIdx, a, b, orderGT)
	case bytecode.GTE:
		return vm.compareOrder(errIdx, a, b, orderGTE)
	default:
		return vmerror.New(vmerror.InternalError, "executeBinaryOp called with non-binary opcode %s", op)
	}
}

// arith implements + - * / % per §4.4: '+' also concatenates two
// strings (result newly allocated); int-op-int yields int for + - * %;
// int / int truncates toward zero; any mixed int/float operand promotes
// the whole operation to float; % on any float uses the remainder with
// the sign of the dividend (math.Mod's convention, matching a direct
// remainder operator rather than a floored modulo).
func (vm *Interpreter) arith(errIdx uint16, a, b value.Value, kind byte) error {
	if kind == '+' && a.IsObject() && b.IsObject() {
		if as, ok := a.AsObject().(*value.String); ok {
			if bs, ok := b.AsObject().(*value.String); ok {
				concat := vm.heap.AllocString(as.Text() + bs.Text())
				vm.push(value.FromObject(concat))
				return nil
			}
		}
	}

	if a.IsInt() && b.IsInt() {
		ai, bi := a.Int64(), b.Int64()
		switch kind {
		case '+':
			vm.push(value.Int(ai + bi))
			return nil
		case '-':
			vm.push(value.Int(ai - bi))
			return nil
		case '*':
			vm.push(value.Int(ai * bi))
			return nil
		case '/':
			if bi == 0 {
				return vm.blame(vmerror.DomainError, errIdx, "division by zero")
			}
			vm.push(value.Int(ai / bi))
			return nil
		case '%':
			if bi == 0 {
				return vm.blame(vmerror.DomainError, errIdx, "modulo by zero")
			}
			vm.push(value.Int(ai % bi))
			return nil
		}
	}

	if (a.IsInt() || a.IsFloat()) && (b.IsInt() || b.IsFloat()) {
		af, bf := toFloat(a), toFloat(b)
		switch kind {
		case '+':
			vm.push(value.Float(af + bf))
			return nil
		case '-':
			vm.push(value.Float(af - bf))
			return nil
		case '*':
			vm.push(value.Float(af * bf))
			return nil
		case '/':
			if bf == 0 {
				return vm.blame(vmerror.DomainError, errIdx, "division by zero")
			}
			vm.push(value.Float(af / bf))
			return nil
		case '%':
			if bf == 0 {
				return vm.blame(vmerror.DomainError, errIdx, "modulo by zero")
			}
			vm.push(value.Float(math.Mod(af, bf)))
			return nil
		}
	}

	return vm.blame(vmerror.TypeMismatch, errIdx, "invalid operands for operator %q", string(kind))
}

func toFloat(v value.Value) float64 {
	if v.IsInt() {
		return float64(v.Int64())
	}
	return v.Float64()
}

func (vm *Interpreter) compareEq(errIdx uint16, a, b value.Value, negate bool) error {
	eq, err := value.Equal(a, b)
	if err != nil {
		return vm.blame(err.Kind, errIdx, "%s", err.Message)
	}
	if negate {
		eq = !eq
	}
	vm.push(value.Bool(eq))
	return nil
}

type orderKind int

const (
	orderLT orderKind = iota
	orderLTE
	orderGT
	orderGTE
)

// compareOrder dispatches to the distinct comparison the opcode names.
// The source this VM replaces dispatched GT to the same handler as LTE
// by copy-paste; each comparison here gets its own branch of
// value.Compare's four results.
func (vm *Interpreter) compareOrder(errIdx uint16, a, b value.Value, kind orderKind) error {
	less, lessEq, greater, greaterEq, err := value.Compare(a, b)
	if err != nil {
		return vm.blame(err.Kind, errIdx, "%s", err.Message)
	}
	var result bool
	switch kind {
	case orderLT:
		result = less
	case orderLTE:
		result = lessEq
	case orderGT:
		result = greater
	case orderGTE:
		result = greaterEq
	}
	vm.push(value.Bool(result))
	return nil
}

func (vm *Interpreter) executeNegate() error {
	top, err := vm.pop()
	if err != nil {
		return err
	}
	switch {
	case top.IsInt():
		vm.push(value.Int(-top.Int64()))
		return nil
	case top.IsFloat():
		vm.push(value.Float(-top.Float64()))
		return nil
	default:
		return vmerror.New(vmerror.TypeMismatch, "cannot negate a non-numeric value")
	}
}
