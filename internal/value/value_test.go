package value

import "testing"

func TestTruthy(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"false is falsy", Bool(false), false},
		{"true is truthy", Bool(true), true},
		{"int 0 is falsy", Int(0), false},
		{"int nonzero is truthy", Int(-1), true},
		{"float 0.0 is falsy", Float(0), false},
		{"float nonzero is truthy", Float(0.5), true},
		{"Empty is truthy", Empty, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Truthy(); got != tt.want {
				t.Errorf("Truthy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestObjectValueWrapsAndUnwraps(t *testing.T) {
	s := NewStringObject("hi")
	v := FromObject(s)
	if !v.IsObject() {
		t.Fatal("expected IsObject() true")
	}
	if v.AsObject() != s {
		t.Fatal("AsObject() did not return the wrapped object")
	}
}

func TestTagPredicatesAreMutuallyExclusive(t *testing.T) {
	values := []Value{Empty, Int(1), Float(1), Bool(true), FromObject(NewAtomObject("x"))}
	for _, v := range values {
		count := 0
		for _, pred := range []bool{v.IsEmpty(), v.IsInt(), v.IsFloat(), v.IsBool(), v.IsObject()} {
			if pred {
				count++
			}
		}
		if count != 1 {
			t.Errorf("value with tag %v matched %d predicates, want exactly 1", v.Tag(), count)
		}
	}
}

func TestStringObjectCountsRunesNotBytes(t *testing.T) {
	// "café" is 5 bytes in UTF-8 (the é is 2 bytes) but 4 runes.
	s := NewStringObject("café")
	if s.RuneLen != 4 {
		t.Errorf("RuneLen = %d, want 4", s.RuneLen)
	}
	if len(s.Bytes) != 5 {
		t.Errorf("len(Bytes) = %d, want 5", len(s.Bytes))
	}
}
