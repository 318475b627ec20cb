package value

// Value is the tagged union every slot on the evaluation stack, every
// local, and every global holds: an immediate (self-contained) scalar or
// a handle to a heap object owned by the heap's nursery or tenured list.
type Value struct {
	tag Tag
	i   int64
	f   float64
	b   bool
	obj Object
}

// Empty is the wildcard sentinel: truthy, and a universal match under
// equality and ordering (see Equal and Compare).
var Empty = Value{tag: TagEmpty}

// Int wraps a 64-bit signed integer.
func Int(i int64) Value { return Value{tag: TagInteger, i: i} }

// Float wraps an IEEE-754 double.
func Float(f float64) Value { return Value{tag: TagFloat, f: f} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{tag: TagBool, b: b} }

// FromObject wraps a handle to a heap object.
func FromObject(obj Object) Value { return Value{tag: TagObject, obj: obj} }

func (v Value) Tag() Tag { return v.tag }

func (v Value) IsEmpty() bool  { return v.tag == TagEmpty }
func (v Value) IsInt() bool    { return v.tag == TagInteger }
func (v Value) IsFloat() bool  { return v.tag == TagFloat }
func (v Value) IsBool() bool   { return v.tag == TagBool }
func (v Value) IsObject() bool { return v.tag == TagObject }

// Int64 returns the integer payload. Only meaningful when IsInt() is true.
func (v Value) Int64() int64 { return v.i }

// Float64 returns the float payload. Only meaningful when IsFloat() is true.
func (v Value) Float64() float64 { return v.f }

// BoolVal returns the bool payload. Only meaningful when IsBool() is true.
func (v Value) BoolVal() bool { return v.b }

// AsObject returns the heap handle. Only meaningful when IsObject() is true.
func (v Value) AsObject() Object { return v.obj }

// Truthy implements the VM's truthiness rule: false, integer 0, and
// float 0.0 are falsy; everything else -- including Empty and every heap
// object -- is truthy.
func (v Value) Truthy() bool {
	switch v.tag {
	case TagBool:
		return v.b
	case TagInteger:
		return v.i != 0
	case TagFloat:
		return v.f != 0
	default:
		return true
	}
}
