package vmerror

import "testing"

func TestBlamedErrorIncludesLineAndText(t *testing.T) {
	err := Blamed(DomainError, 3, "x / 0", "division by zero")
	if err.Error() != "DomainError: division by zero (line 3: x / 0)" {
		t.Fatalf("got %q", err.Error())
	}
}

func TestUnblamedErrorOmitsLine(t *testing.T) {
	err := New(InternalError, "stack underflow")
	if err.Error() != "InternalError: stack underflow" {
		t.Fatalf("got %q", err.Error())
	}
}

func TestRenderAppendsFramesInnermostFirst(t *testing.T) {
	err := New(TypeMismatch, "bad operand").WithFrames([]string{"c", "b", "a"})
	want := "TypeMismatch: bad operand\n  in function \"c\"\n  in function \"b\"\n  in function \"a\""
	if got := err.Render(); got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
}

func TestKindStringMatchesConstructorUsage(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{LoadError, "LoadError"}, {TypeMismatch, "TypeMismatch"}, {DomainError, "DomainError"},
		{NameError, "NameError"}, {StackOverflow, "StackOverflow"}, {InternalError, "InternalError"},
	}
	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("%v.String() = %q, want %q", tt.k, got, tt.want)
		}
	}
}
