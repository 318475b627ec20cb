package conformance

import (
	"fmt"

	"flan/internal/builtins"
	"flan/internal/loader"
	"flan/internal/value"
	"flan/internal/vm"
	"flan/internal/vmerror"
)

// Result is the outcome of running one scenario.
type Result struct {
	Passed bool
	Err    error
}

// Run assembles sc into an image, executes it, and checks the outcome
// against sc.Expect.
func Run(sc *Scenario) Result {
	buf, err := Assemble(sc)
	if err != nil {
		return Result{Err: fmt.Errorf("assembling %s: %w", sc.Name, err)}
	}

	img, err := loader.Decode(buf)
	if err != nil {
		return Result{Err: fmt.Errorf("decoding %s: %w", sc.Name, err)}
	}

	interp := vm.New(img)
	builtins.NewRegistry().BindAll(interp.Heap(), interp.BindGlobal)

	stack, runErr := interp.Run()

	if sc.Expect.ErrorKind != "" {
		if runErr == nil {
			return Result{Err: fmt.Errorf("expected error kind %s, got success with stack %v", sc.Expect.ErrorKind, stack)}
		}
		verr, ok := runErr.(*vmerror.Error)
		if !ok {
			return Result{Err: fmt.Errorf("expected *vmerror.Error, got %T: %v", runErr, runErr)}
		}
		if verr.Kind.String() != sc.Expect.ErrorKind {
			return Result{Err: fmt.Errorf("expected error kind %s, got %s (%v)", sc.Expect.ErrorKind, verr.Kind, verr)}
		}
		return Result{Passed: true}
	}

	if runErr != nil {
		return Result{Err: fmt.Errorf("unexpected error running %s: %v", sc.Name, runErr)}
	}

	if len(stack) != len(sc.Expect.Stack) {
		return Result{Err: fmt.Errorf("expected stack of length %d, got %d: %v", len(sc.Expect.Stack), len(stack), renderStack(stack))}
	}
	for i, want := range sc.Expect.Stack {
		got := stack[i]
		ok, err := matchesExpectation(got, want)
		if err != nil {
			return Result{Err: fmt.Errorf("stack[%d]: %v", i, err)}
		}
		if !ok {
			return Result{Err: fmt.Errorf("stack[%d]: expected %s, got %s", i, describeExpectation(want), value.ToDbgString(got))}
		}
	}

	return Result{Passed: true}
}

func renderStack(stack []value.Value) []string {
	out := make([]string, len(stack))
	for i, v := range stack {
		out[i] = value.ToDbgString(v)
	}
	return out
}

func matchesExpectation(got value.Value, want InlineValue) (bool, error) {
	switch {
	case want.Int != nil:
		return got.IsInt() && got.Int64() == *want.Int, nil
	case want.Float != nil:
		return got.IsFloat() && got.Float64() == *want.Float, nil
	case want.Bool != nil:
		return got.IsBool() && got.BoolVal() == *want.Bool, nil
	case want.Str != nil:
		s, ok := asStringText(got)
		return ok && s == *want.Str, nil
	case want.Atom != nil:
		a, ok := asAtomText(got)
		return ok && a == *want.Atom, nil
	case want.Empty:
		return got.IsEmpty(), nil
	default:
		return false, fmt.Errorf("expectation has no field set")
	}
}

func describeExpectation(want InlineValue) string {
	switch {
	case want.Int != nil:
		return fmt.Sprintf("int %d", *want.Int)
	case want.Float != nil:
		return fmt.Sprintf("float %g", *want.Float)
	case want.Bool != nil:
		return fmt.Sprintf("bool %v", *want.Bool)
	case want.Str != nil:
		return fmt.Sprintf("str %q", *want.Str)
	case want.Atom != nil:
		return fmt.Sprintf("atom '%s", *want.Atom)
	case want.Empty:
		return "empty"
	default:
		return "<unset>"
	}
}

func asStringText(v value.Value) (string, bool) {
	if !v.IsObject() {
		return "", false
	}
	s, ok := v.AsObject().(*value.String)
	if !ok {
		return "", false
	}
	return s.Text(), true
}

func asAtomText(v value.Value) (string, bool) {
	if !v.IsObject() {
		return "", false
	}
	a, ok := v.AsObject().(*value.Atom)
	if !ok {
		return "", false
	}
	return a.Text(), true
}
