package bytecode

import (
	"strings"
	"testing"

	"flan/internal/loader"
)

// buildBody hand-encodes a tiny instruction stream: LOAD 5, IDXLISTORTUP
// err=0 idx=2, HALT. It exists to pin the disassembler's operand
// decoding against the same tag-dispatched encoding the interpreter and
// the conformance assembler use -- in particular IdxListOrTup's idx
// operand, which is a full tag-dispatched value, not a bare 4-byte int.
func buildBody() []byte {
	var b []byte
	b = append(b, byte(Load), 0, 5, 0, 0, 0) // tagInteger=0, then int32 LE 5
	b = append(b, byte(IdxListOrTup))
	b = append(b, 0, 0)          // err_idx u16 = 0
	b = append(b, 0, 2, 0, 0, 0) // tagInteger=0, then int32 LE 2
	b = append(b, byte(Halt))
	return b
}

func TestDisassembleDecodesIdxListOrTupAsATaggedValue(t *testing.T) {
	img := &loader.Image{ErrorInfo: []loader.ErrorRecord{{Line: 1, Text: "x"}}, Body: buildBody()}

	lines, err := Disassemble(img)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var idxLine string
	for _, l := range lines {
		if strings.Contains(l, "IDXLISTORTUP") {
			idxLine = l
		}
	}
	if idxLine == "" {
		t.Fatal("no IDXLISTORTUP line found in disassembly")
	}
	if !strings.Contains(idxLine, "idx=2") {
		t.Fatalf("IDXLISTORTUP line = %q, want it to mention idx=2", idxLine)
	}
	if lines[len(lines)-1] != "    14: HALT" {
		// Any misalignment from a wrong operand width would desync
		// every offset after IDXLISTORTUP, including HALT's.
		t.Fatalf("HALT line = %q, disassembly desynced after IDXLISTORTUP", lines[len(lines)-1])
	}
}
