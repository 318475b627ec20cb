package value

import (
	"strconv"
	"strings"
)

// ToString produces the canonical user-facing form of a value. It is
// total: every Value and every Object variant renders to something.
func ToString(v Value) string {
	switch v.tag {
	case TagEmpty:
		return "_"
	case TagInteger:
		return strconv.FormatInt(v.i, 10)
	case TagFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case TagBool:
		if v.b {
			return "true"
		}
		return "false"
	case TagObject:
		return objectToString(v.obj)
	default:
		return "?"
	}
}

// ToDbgString wraps strings in quotes and recursively renders composite
// structures, the way a REPL would echo a value back.
func ToDbgString(v Value) string {
	switch v.tag {
	case TagObject:
		return objectToDbgString(v.obj)
	default:
		return ToString(v)
	}
}

func objectToString(obj Object) string {
	switch o := obj.(type) {
	case *String:
		return o.Text()
	case *Atom:
		return "'" + o.Text()
	case *List:
		parts := make([]string, len(o.Elements))
		for i, e := range o.Elements {
			parts[i] = ToDbgString(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *Table:
		parts := make([]string, 0, len(o.Pairs))
		for k, v := range o.Pairs {
			parts = append(parts, k+": "+ToDbgString(v))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *Tuple:
		parts := make([]string, len(o.Elements))
		for i, e := range o.Elements {
			parts[i] = ToDbgString(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *Function:
		return "<function " + o.Name + "/" + strconv.Itoa(int(o.Arity)) + ">"
	case *Upvalue:
		return "<upvalue>"
	case *Closure:
		return "<closure " + o.Name() + "/" + strconv.Itoa(int(o.Arity())) + ">"
	default:
		return "<object>"
	}
}

func objectToDbgString(obj Object) string {
	switch o := obj.(type) {
	case *String:
		return strconv.Quote(o.Text())
	default:
		return objectToString(obj)
	}
}
