package value

import "flan/internal/vmerror"

// Equal implements the VM's equality contract:
//
//   - Empty == anything is true (wildcard/sentinel semantics).
//   - Integer and Float compare by numeric value, promoting the integer.
//   - Bool equals Bool by value.
//   - String equals String by byte-sequence equality; Atom equals Atom
//     the same way, but String and Atom are never equal to each other.
//   - Everything else is a TypeMismatch.
func Equal(a, b Value) (bool, *vmerror.Error) {
	if a.tag == TagEmpty || b.tag == TagEmpty {
		return true, nil
	}

	switch a.tag {
	case TagInteger:
		switch b.tag {
		case TagInteger:
			return a.i == b.i, nil
		case TagFloat:
			return float64(a.i) == b.f, nil
		}
	case TagFloat:
		switch b.tag {
		case TagInteger:
			return a.f == float64(b.i), nil
		case TagFloat:
			return a.f == b.f, nil
		}
	case TagBool:
		if b.tag == TagBool {
			return a.b == b.b, nil
		}
	case TagObject:
		if b.tag == TagObject {
			return objectEqual(a.obj, b.obj)
		}
	}

	return false, vmerror.New(vmerror.TypeMismatch, "cannot compare values of incompatible kinds")
}

func objectEqual(a, b Object) (bool, *vmerror.Error) {
	switch av := a.(type) {
	case *String:
		bv, ok := b.(*String)
		if !ok {
			return false, vmerror.New(vmerror.TypeMismatch, "cannot compare string to %s", b.Kind())
		}
		return string(av.Bytes) == string(bv.Bytes), nil
	case *Atom:
		bv, ok := b.(*Atom)
		if !ok {
			return false, vmerror.New(vmerror.TypeMismatch, "cannot compare atom to %s", b.Kind())
		}
		return string(av.Bytes) == string(bv.Bytes), nil
	default:
		return false, vmerror.New(vmerror.TypeMismatch, "cannot compare values of kind %s", a.Kind())
	}
}

// Compare implements the VM's ordering contract: defined on Integer/Float
// (with promotion) and String (lexicographic over bytes). Any comparison
// where one side is Empty evaluates to true, matching Empty's wildcard
// role as both -Inf and +Inf. Returns the four results a<b, a<=b, a>b
// and a>=b for ordered operands.
func Compare(a, b Value) (less, lessEq, greater, greaterEq bool, err *vmerror.Error) {
	if a.tag == TagEmpty || b.tag == TagEmpty {
		return true, true, true, true, nil
	}

	switch a.tag {
	case TagInteger:
		switch b.tag {
		case TagInteger:
			return cmpOrder(float64(a.i), float64(b.i))
		case TagFloat:
			return cmpOrder(float64(a.i), b.f)
		}
	case TagFloat:
		switch b.tag {
		case TagInteger:
			return cmpOrder(a.f, float64(b.i))
		case TagFloat:
			return cmpOrder(a.f, b.f)
		}
	case TagObject:
		if av, ok := a.obj.(*String); ok {
			if bv, ok := b.obj.(*String); ok {
				return cmpString(string(av.Bytes), string(bv.Bytes))
			}
		}
	}

	return false, false, false, false, vmerror.New(vmerror.TypeMismatch, "cannot order values of incompatible kinds")
}

func cmpOrder(a, b float64) (less, lessEq, greater, greaterEq bool, err *vmerror.Error) {
	return a < b, a <= b, a > b, a >= b, nil
}

func cmpString(a, b string) (less, lessEq, greater, greaterEq bool, err *vmerror.Error) {
	return a < b, a <= b, a > b, a >= b, nil
}
