package bytecode

import (
	"fmt"
	"strings"

	"flan/internal/heap"
	"flan/internal/loader"
	"flan/internal/value"
)

// nullRoots is the root scanner handed to the scratch heap Disassemble
// allocates decoded constants through. Disassembly never runs the
// interpreter, so nothing outside the decode call itself can reference
// these objects -- there is nothing for a root scan to ever find, and
// none of them live long enough to be collected anyway.
type nullRoots struct{}

func (nullRoots) WalkRoots(func(value.Value)) {}

// Disassemble walks an image's instruction stream linearly, decoding
// every instruction and its operands without executing any of them, and
// returns one formatted "offset: MNEMONIC operands" line per
// instruction. It stops after printing HALT.
func Disassemble(img *loader.Image) ([]string, error) {
	c := loader.NewCursor(img.Body)
	h := heap.New(nullRoots{})
	var lines []string

	for c.Pos() < c.Len() {
		offset := c.Pos()
		opByte, err := c.U8()
		if err != nil {
			return lines, err
		}
		op := Op(opByte)

		operand, err := disasmOperands(c, h, op)
		if err != nil {
			return lines, fmt.Errorf("offset %d: %w", offset, err)
		}

		line := fmt.Sprintf("%6d: %s", offset, op)
		if operand != "" {
			line += " " + operand
		}
		lines = append(lines, line)

		if op == Halt {
			break
		}
	}

	return lines, nil
}

func disasmOperands(c *loader.Cursor, h *heap.Heap, op Op) (string, error) {
	switch op {
	case Load:
		v, err := loader.DecodeValue(c, h)
		if err != nil {
			return "", err
		}
		return value.ToDbgString(v), nil

	case Push:
		n, err := c.U8()
		if err != nil {
			return "", err
		}
		parts := make([]string, 0, n)
		for i := 0; i < int(n); i++ {
			v, err := loader.DecodeValue(c, h)
			if err != nil {
				return "", err
			}
			parts = append(parts, value.ToDbgString(v))
		}
		return strings.Join(parts, ", "), nil

	case PopN, NipN:
		n, err := c.U8()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d", n), nil

	case Add, Sub, Mul, Div, Mod, Eq, NEq, LT, LTE, GT, GTE:
		idx, err := c.U16()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("err=%d", idx), nil

	case Jmp, Jz, Jnz:
		off, err := c.U32()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("+%d", off), nil

	case InitList, InitTup:
		n, err := c.U32()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("n=%d", n), nil

	case InitTable:
		n, err := c.U32()
		if err != nil {
			return "", err
		}
		keys := make([]string, 0, n)
		for i := uint32(0); i < n; i++ {
			k, err := c.ShortString()
			if err != nil {
				return "", err
			}
			keys = append(keys, k)
		}
		return fmt.Sprintf("n=%d keys=%s", n, strings.Join(keys, ",")), nil

	case IdxListOrTup, SetList:
		errIdx, err := c.U16()
		if err != nil {
			return "", err
		}
		idx, err := loader.DecodeValue(c, h)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("err=%d idx=%s", errIdx, value.ToDbgString(idx)), nil

	case GetMember, SetMember:
		errIdx, err := c.U16()
		if err != nil {
			return "", err
		}
		key, err := c.ShortString()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("err=%d key=%q", errIdx, key), nil

	case DefGlobal, GetGlobal, SetGlobal:
		errIdx, err := c.U16()
		if err != nil {
			return "", err
		}
		name, err := c.ShortString()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("err=%d name=%q", errIdx, name), nil

	case GetLocal, SetLocal:
		idx, err := c.U16()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("idx=%d", idx), nil

	case CallFn:
		errIdx, err := c.U16()
		if err != nil {
			return "", err
		}
		argc, err := c.U16()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("err=%d argc=%d", errIdx, argc), nil

	default:
		return "", nil
	}
}
