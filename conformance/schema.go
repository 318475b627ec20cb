package conformance

// Scenario is one YAML document: a hand-assembled instruction stream plus
// the stack (or error) it must produce. There is no FLAN compiler in
// scope, so scenarios are written at roughly the disassembler's level of
// granularity -- one YAML entry per instruction -- rather than as source
// text. Grounded on the teacher's TestSuite/TestCase split: a named
// scenario plays the role of a suite, its instructions and expectation
// play the role of a single test case.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	ErrorInfo   []ErrorRecord `yaml:"error_info,omitempty"`
	Program     []Instruction `yaml:"instructions"`
	Expect      Expectation   `yaml:"expect"`
}

// ErrorRecord mirrors loader.ErrorRecord for the purposes of assembling
// the error-info table the image header carries.
type ErrorRecord struct {
	Line uint16 `yaml:"line"`
	Text string `yaml:"text"`
}

// Instruction is one assembled opcode, carrying whichever of these fields
// its mnemonic's operand shape needs. Label is a pure assembler construct:
// it names this instruction's start offset so a later Jmp/Jz/Jnz's To
// field can refer to it without knowing byte offsets by hand.
type Instruction struct {
	Op     string        `yaml:"op"`
	Label  string        `yaml:"label,omitempty"`
	Err    *uint16       `yaml:"err,omitempty"`
	N      *uint32       `yaml:"n,omitempty"`
	Idx    *int64        `yaml:"idx,omitempty"`
	LIdx   *uint16       `yaml:"lidx,omitempty"` // GetLocal/SetLocal operand
	Argc   *uint16       `yaml:"argc,omitempty"`
	Count  *uint8        `yaml:"count,omitempty"` // PopN/NipN operand
	Key    string        `yaml:"key,omitempty"`
	Name   string        `yaml:"name,omitempty"`
	Keys   []string      `yaml:"keys,omitempty"`
	To     string        `yaml:"to,omitempty"`
	Value  *InlineValue  `yaml:"value,omitempty"`
	Values []InlineValue `yaml:"values,omitempty"`
}

// InlineValue is a YAML-friendly encoding of the tag-dispatched constants
// Load/Push carry: exactly one field set.
type InlineValue struct {
	Int   *int64            `yaml:"int,omitempty"`
	Float *float64          `yaml:"float,omitempty"`
	Bool  *bool             `yaml:"bool,omitempty"`
	Str   *string           `yaml:"str,omitempty"`
	Atom  *string           `yaml:"atom,omitempty"`
	Empty bool              `yaml:"empty,omitempty"`
	Func  *FunctionLiteral  `yaml:"func,omitempty"`
}

// FunctionLiteral assembles a function constant: name, arity, and a body
// instruction stream assembled independently of the enclosing program
// (its own label namespace, its own Jmp/Jz/Jnz offsets).
type FunctionLiteral struct {
	Name  string        `yaml:"name"`
	Arity uint16        `yaml:"arity"`
	Body  []Instruction `yaml:"body"`
}

// Expectation describes the expected outcome: either a final stack
// (success) or a runtime error kind (failure), not both.
type Expectation struct {
	Stack     []InlineValue `yaml:"stack,omitempty"`
	ErrorKind string        `yaml:"error_kind,omitempty"`
}
