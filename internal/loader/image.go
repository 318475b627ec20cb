// Package loader reads a compiled FLAN image into memory, validates its
// header, decodes the error-info table that precedes the instruction
// stream, and exposes a Cursor for decoding operands and constants on
// demand as the interpreter's instruction pointer advances.
package loader

import (
	"os"

	"flan/internal/vmerror"
)

// Magic is the 4-byte "FLAN" file signature every image must start with.
var Magic = [4]byte{0x46, 0x4C, 0x41, 0x4E}

// SupportedVersion is the version this loader was built against. byte[0]
// must match exactly; byte[1] and byte[2] (minor/patch) in the image
// must be <= the corresponding supported byte.
var SupportedVersion = [3]byte{0, 0, 0}

// ErrorRecord is one entry of the error-info table: the source line
// number and the literal source text an instruction blames when it
// carries that record's index as its err_info_idx operand.
type ErrorRecord struct {
	Line uint16
	Text string
}

// Image is the decoded, ready-to-run representation of a binary program:
// the validated header, the fully-decoded error-info table, and the
// remaining bytes of the instruction stream (the "body" in the §6
// grammar), which the interpreter walks lazily through a Cursor.
type Image struct {
	Version   [3]byte
	ErrorInfo []ErrorRecord
	Body      []byte
}

// Blame resolves an err_info_idx operand to its (line, text) record. The
// zero value of idx is a valid index like any other; callers that mean
// "no blame" simply never look it up.
func (img *Image) Blame(idx uint16) (ErrorRecord, error) {
	if int(idx) >= len(img.ErrorInfo) {
		return ErrorRecord{}, vmerror.New(vmerror.InternalError, "error-info index %d out of range (table has %d entries)", idx, len(img.ErrorInfo))
	}
	return img.ErrorInfo[idx], nil
}

// Load reads the file at path and decodes its header and error-info
// table, returning an Image positioned at the start of the instruction
// stream.
func Load(path string) (*Image, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, vmerror.New(vmerror.LoadError, "cannot read %s: %v", path, err)
	}
	return Decode(buf)
}

// Decode parses an already-read buffer. It is split out from Load so
// tests and the conformance harness can build images in memory.
func Decode(buf []byte) (*Image, error) {
	c := &Cursor{buf: buf}

	version, err := readHeader(c)
	if err != nil {
		return nil, err
	}

	errInfo, err := readErrorInfo(c)
	if err != nil {
		return nil, err
	}

	return &Image{
		Version:   version,
		ErrorInfo: errInfo,
		Body:      buf[c.pos:],
	}, nil
}

func readHeader(c *Cursor) ([3]byte, error) {
	var zero [3]byte

	var magic [4]byte
	for i := range magic {
		b, err := c.U8()
		if err != nil {
			return zero, vmerror.New(vmerror.LoadError, "truncated header: %v", err)
		}
		magic[i] = b
	}
	if magic != Magic {
		return zero, vmerror.New(vmerror.LoadError, "bad magic number %v, expected %v", magic, Magic)
	}

	var version [3]byte
	for i := range version {
		b, err := c.U8()
		if err != nil {
			return zero, vmerror.New(vmerror.LoadError, "truncated version: %v", err)
		}
		version[i] = b
	}
	if version[0] != SupportedVersion[0] || version[1] > SupportedVersion[1] || version[2] > SupportedVersion[2] {
		return zero, vmerror.New(vmerror.LoadError, "unsupported version %v, supported %v", version, SupportedVersion)
	}

	return version, nil
}

func readErrorInfo(c *Cursor) ([]ErrorRecord, error) {
	count, err := c.U16()
	if err != nil {
		return nil, vmerror.New(vmerror.LoadError, "truncated error-info count: %v", err)
	}

	records := make([]ErrorRecord, 0, count)
	for i := uint16(0); i < count; i++ {
		line, err := c.U16()
		if err != nil {
			return nil, vmerror.New(vmerror.LoadError, "truncated error-info record %d: %v", i, err)
		}
		textLen, err := c.U16()
		if err != nil {
			return nil, vmerror.New(vmerror.LoadError, "truncated error-info record %d: %v", i, err)
		}
		text, err := c.bytes(int(textLen))
		if err != nil {
			return nil, vmerror.New(vmerror.LoadError, "truncated error-info record %d: %v", i, err)
		}
		records = append(records, ErrorRecord{Line: line, Text: string(text)})
	}
	return records, nil
}
