package loader

import (
	"flan/internal/heap"
	"flan/internal/value"
	"flan/internal/vmerror"
)

// endFnSentinel mirrors flan/internal/bytecode.EndFn's byte value. It is
// duplicated here (instead of imported) because bytecode imports loader
// for disassembly, and loader importing bytecode back would be a cycle.
const endFnSentinel uint8 = 46

// Value tags as they appear in the binary image, per §4.3.
const (
	tagInteger uint8 = 0
	tagFloat   uint8 = 1
	tagBool    uint8 = 2
	tagEmpty   uint8 = 3
	tagString  uint8 = 4
	tagAtom    uint8 = 5
	tagFunction uint8 = 6
)

// DecodeValue reads one value-tag-dispatched constant from the cursor,
// allocating through h when the tag denotes a heap object. It is used
// both by Load/Push operand decoding and by function-constant decoding.
func DecodeValue(c *Cursor, h *heap.Heap) (value.Value, error) {
	tag, err := c.U8()
	if err != nil {
		return value.Value{}, err
	}

	switch tag {
	case tagInteger:
		i, err := c.Integer()
		if err != nil {
			return value.Value{}, err
		}
		return value.Int(i), nil

	case tagFloat:
		f, err := c.Float()
		if err != nil {
			return value.Value{}, err
		}
		return value.Float(f), nil

	case tagBool:
		b, err := c.U8()
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(b != 0), nil

	case tagEmpty:
		return value.Empty, nil

	case tagString:
		s, err := c.LongString()
		if err != nil {
			return value.Value{}, err
		}
		return value.FromObject(h.AllocString(s)), nil

	case tagAtom:
		s, err := c.ShortString()
		if err != nil {
			return value.Value{}, err
		}
		return value.FromObject(h.AllocAtom(s)), nil

	case tagFunction:
		fn, err := decodeFunction(c, h)
		if err != nil {
			return value.Value{}, err
		}
		return value.FromObject(fn), nil

	default:
		return value.Value{}, vmerror.New(vmerror.LoadError, "unknown value tag %d at offset %d", tag, c.pos)
	}
}

// decodeFunction decodes a function constant: short_string name, u16
// arity, a 4-byte big-endian body length (Cursor.BodyLength), that many
// body bytes, and a
// trailing EndFn sentinel that must match.
func decodeFunction(c *Cursor, h *heap.Heap) (*value.Function, error) {
	name, err := c.ShortString()
	if err != nil {
		return nil, err
	}

	arity, err := c.U16()
	if err != nil {
		return nil, err
	}

	bodyLen, err := c.BodyLength()
	if err != nil {
		return nil, err
	}
	if bodyLen < 0 {
		return nil, vmerror.New(vmerror.LoadError, "negative function body length for %q", name)
	}

	body, err := c.bytes(int(bodyLen))
	if err != nil {
		return nil, vmerror.New(vmerror.LoadError, "truncated function body for %q: %v", name, err)
	}

	sentinel, err := c.U8()
	if err != nil {
		return nil, vmerror.New(vmerror.LoadError, "missing EndFn after function %q body: %v", name, err)
	}
	if sentinel != endFnSentinel {
		return nil, vmerror.New(vmerror.LoadError, "malformed function %q: expected EndFn sentinel, got %#x", name, sentinel)
	}

	bodyCopy := make([]byte, len(body))
	copy(bodyCopy, body)

	return h.AllocFunction(name, arity, bodyCopy), nil
}
