package conformance

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"flan/internal/bytecode"
)

const (
	tagInteger uint8 = 0
	tagFloat   uint8 = 1
	tagBool    uint8 = 2
	tagEmpty   uint8 = 3
	tagString  uint8 = 4
	tagAtom    uint8 = 5
	tagFunction uint8 = 6
)

// Assemble turns a Scenario's instructions and error-info table into a
// complete binary image, in the §6 grammar: header, error_info, body.
func Assemble(sc *Scenario) ([]byte, error) {
	var out bytes.Buffer
	out.Write([]byte{0x46, 0x4C, 0x41, 0x4E}) // magic "FLAN"
	out.Write([]byte{0, 0, 0})                // version

	writeU16(&out, uint16(len(sc.ErrorInfo)))
	for _, rec := range sc.ErrorInfo {
		writeU16(&out, rec.Line)
		writeU16(&out, uint16(len(rec.Text)))
		out.WriteString(rec.Text)
	}

	body, err := assembleInstructions(sc.Program)
	if err != nil {
		return nil, err
	}
	out.Write(body)

	return out.Bytes(), nil
}

// assembleInstructions is a two-pass assembler: pass one encodes every
// instruction with placeholder zero offsets for Jmp/Jz/Jnz while
// recording each instruction's start offset (for labels) and each
// jump's patch location; pass two resolves labels and patches the real
// relative offsets in place.
func assembleInstructions(program []Instruction) ([]byte, error) {
	var buf bytes.Buffer
	labels := make(map[string]int)
	type patch struct {
		at    int // offset of the 4-byte operand to patch
		label string
	}
	var patches []patch

	for _, instr := range program {
		if instr.Label != "" {
			labels[instr.Label] = buf.Len()
		}

		op, ok := bytecode.OpByName(instr.Op)
		if !ok {
			return nil, fmt.Errorf("unknown opcode %q", instr.Op)
		}
		buf.WriteByte(byte(op))

		switch instr.Op {
		case "LOAD":
			if instr.Value == nil {
				return nil, fmt.Errorf("LOAD requires a value")
			}
			if err := encodeValue(&buf, *instr.Value); err != nil {
				return nil, err
			}

		case "PUSH":
			buf.WriteByte(byte(len(instr.Values)))
			for _, v := range instr.Values {
				if err := encodeValue(&buf, v); err != nil {
					return nil, err
				}
			}

		case "POPN", "NIPN":
			if instr.Count == nil {
				return nil, fmt.Errorf("%s requires count", instr.Op)
			}
			buf.WriteByte(*instr.Count)

		case "ADD", "SUB", "MUL", "DIV", "MOD", "EQ", "NEQ", "LT", "LTE", "GT", "GTE":
			writeU16(&buf, requireErr(instr))

		case "JMP", "JZ", "JNZ":
			patches = append(patches, patch{at: buf.Len(), label: instr.To})
			writeU32(&buf, 0)

		case "INITLIST", "INITTUP":
			writeU32(&buf, requireN(instr))

		case "INITTABLE":
			writeU32(&buf, requireN(instr))
			for _, k := range instr.Keys {
				writeShortString(&buf, k)
			}

		case "IDXLISTORTUP", "SETLIST":
			writeU16(&buf, requireErr(instr))
			if instr.Idx == nil {
				return nil, fmt.Errorf("%s requires idx", instr.Op)
			}
			if err := encodeValue(&buf, InlineValue{Int: instr.Idx}); err != nil {
				return nil, err
			}

		case "GETMEMBER", "SETMEMBER":
			writeU16(&buf, requireErr(instr))
			writeShortString(&buf, instr.Key)

		case "DEFGLOBAL", "GETGLOBAL", "SETGLOBAL":
			writeU16(&buf, requireErr(instr))
			writeShortString(&buf, instr.Name)

		case "GETLOCAL", "SETLOCAL":
			if instr.LIdx == nil {
				return nil, fmt.Errorf("%s requires lidx", instr.Op)
			}
			writeU16(&buf, *instr.LIdx)

		case "CALLFN":
			writeU16(&buf, requireErr(instr))
			if instr.Argc == nil {
				return nil, fmt.Errorf("CALLFN requires argc")
			}
			writeU16(&buf, *instr.Argc)
		}
	}

	out := buf.Bytes()
	for _, p := range patches {
		target, ok := labels[p.label]
		if !ok {
			return nil, fmt.Errorf("undefined label %q", p.label)
		}
		offset := target - (p.at + 4)
		if offset < 0 {
			return nil, fmt.Errorf("label %q is behind its jump; Jmp/Jz/Jnz only advance forward per spec", p.label)
		}
		binary.LittleEndian.PutUint32(out[p.at:p.at+4], uint32(offset))
	}
	return out, nil
}

func requireErr(instr Instruction) uint16 {
	if instr.Err == nil {
		return 0
	}
	return *instr.Err
}

func requireN(instr Instruction) uint32 {
	if instr.N == nil {
		return 0
	}
	return *instr.N
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

// writeInteger encodes a tag-dispatched Integer's 4-byte LE payload. The
// high 32 bits of v are dropped here; Cursor.Integer zero-extends the 4
// bytes on decode, per §4.3.
func writeInteger(buf *bytes.Buffer, v int64) {
	writeU32(buf, uint32(v))
}

// writeBodyLength encodes a function constant's body-length prefix: 4
// bytes assembled big-endian, matching Cursor.BodyLength's decode.
func writeBodyLength(buf *bytes.Buffer, v int64) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	buf.Write(b[:])
}

func writeShortString(buf *bytes.Buffer, s string) {
	buf.WriteByte(byte(len(s)))
	buf.WriteString(s)
}

func writeLongString(buf *bytes.Buffer, s string) {
	writeU16(buf, uint16(len(s)))
	buf.WriteString(s)
}

func encodeValue(buf *bytes.Buffer, v InlineValue) error {
	switch {
	case v.Int != nil:
		buf.WriteByte(tagInteger)
		writeInteger(buf, *v.Int)
	case v.Float != nil:
		buf.WriteByte(tagFloat)
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(float32(*v.Float)))
		buf.Write(b[:])
	case v.Bool != nil:
		buf.WriteByte(tagBool)
		if *v.Bool {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case v.Str != nil:
		buf.WriteByte(tagString)
		writeLongString(buf, *v.Str)
	case v.Atom != nil:
		buf.WriteByte(tagAtom)
		writeShortString(buf, *v.Atom)
	case v.Func != nil:
		buf.WriteByte(tagFunction)
		writeShortString(buf, v.Func.Name)
		writeU16(buf, v.Func.Arity)
		fnBody, err := assembleInstructions(v.Func.Body)
		if err != nil {
			return err
		}
		writeBodyLength(buf, int64(len(fnBody)))
		buf.Write(fnBody)
		buf.WriteByte(byte(bytecode.EndFn))
	case v.Empty:
		buf.WriteByte(tagEmpty)
	default:
		return fmt.Errorf("inline value has no field set")
	}
	return nil
}
