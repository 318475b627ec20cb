package loader

import (
	"math"

	"flan/internal/vmerror"
)

// Cursor advances over an instruction stream, decoding typed operands.
// Every reader method advances the Cursor's own position field -- never
// a local copy -- so the caller always sees the cursor move. (The source
// this VM is a clean rewrite of had several decoder helpers that
// advanced a copy of the cursor instead of the caller's; that bug is not
// reproduced here.)
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor wraps a byte slice for decoding, starting at offset 0.
func NewCursor(buf []byte) *Cursor { return &Cursor{buf: buf} }

// Pos returns the current absolute offset into the underlying buffer.
func (c *Cursor) Pos() int { return c.pos }

// Seek repositions the cursor, used by Jmp/Jz/Jnz/CallFn/RetFn.
func (c *Cursor) Seek(pos int) { c.pos = pos }

// Rebind points the cursor at a different underlying buffer -- used by
// CallFn to switch into a callee's body and by RetFn to switch back to
// the caller's buffer at its saved return offset.
func (c *Cursor) Rebind(buf []byte, pos int) {
	c.buf = buf
	c.pos = pos
}

// Buf exposes the underlying buffer, e.g. so a call frame can record
// which buffer to resume in on return.
func (c *Cursor) Buf() []byte { return c.buf }

// Len reports the size of the underlying buffer.
func (c *Cursor) Len() int { return len(c.buf) }

func (c *Cursor) bytes(n int) ([]byte, error) {
	if c.pos+n > len(c.buf) {
		return nil, vmerror.New(vmerror.LoadError, "unexpected end of stream at offset %d", c.pos)
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// U8 reads one byte.
func (c *Cursor) U8() (uint8, error) {
	b, err := c.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads a little-endian 16-bit unsigned integer.
func (c *Cursor) U16() (uint16, error) {
	b, err := c.bytes(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0]) | uint16(b[1])<<8, nil
}

// U32 reads a little-endian 32-bit unsigned integer.
func (c *Cursor) U32() (uint32, error) {
	b, err := c.bytes(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

// ShortString reads a u8 length prefix followed by that many bytes.
func (c *Cursor) ShortString() (string, error) {
	n, err := c.U8()
	if err != nil {
		return "", err
	}
	b, err := c.bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// LongString reads a u16 length prefix followed by that many bytes.
func (c *Cursor) LongString() (string, error) {
	n, err := c.U16()
	if err != nil {
		return "", err
	}
	b, err := c.bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Integer reads 4 bytes little-endian and assembles them into the low 32
// bits of a 64-bit integer, high 32 bits zero. This is a direct port of
// the source compiler's emission format -- not the 8-byte read a fully
// corrected decoder would use -- because the compiler that produces
// these images is out of scope and this is the format it actually
// emits. See DESIGN.md for the open-question discussion.
func (c *Cursor) Integer() (int64, error) {
	u, err := c.U32()
	if err != nil {
		return 0, err
	}
	return int64(u), nil
}

// BodyLength reads a function constant's body-length prefix: 4 bytes
// assembled big-endian into the low 32 bits of a 64-bit integer, high 32
// bits zero. Per §6/§9 this is a distinct quirk from Integer's regular
// little-endian 4-byte read -- the compiler emits this one field
// byte-reversed, and this decoder matches that emission exactly rather
// than "fixing" it to either 8 bytes or little-endian.
func (c *Cursor) BodyLength() (int64, error) {
	b, err := c.bytes(4)
	if err != nil {
		return 0, err
	}
	u := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	return int64(u), nil
}

// Float reads 4 bytes as an IEEE-754 single-precision float and widens it
// to float64 -- the compiler's on-disk constants are 4-byte floats, but
// the VM's Value model promised by §4.3 is "IEEE-754 double", so every
// float constant is widened (not bit-reinterpreted) the moment it's
// decoded. This keeps the compiler's compact emission format while still
// producing a sensible double: Load(float 0.5) must decode to exactly
// 0.5, the value the spec's worked float-promotion example depends on.
func (c *Cursor) Float() (float64, error) {
	u, err := c.U32()
	if err != nil {
		return 0, err
	}
	return float64(math.Float32frombits(u)), nil
}
