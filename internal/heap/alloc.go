package heap

import "flan/internal/value"

// register runs the GC check, computes and caches the object's retained
// size, and links it into the nursery. It must be the only path by which
// an object enters the heap: every allocation goes through it so the
// invariant "every object is reachable through a root by the time the
// next allocation can trigger a collection" holds by construction -- the
// caller gets the object back already linked, before doing anything else
// that could allocate.
func (h *Heap) register(obj value.Object) value.Object {
	h.checkGC()
	size := byteSize(obj)
	obj.Header().Size = size
	h.nursery.add(obj, size)
	return obj
}

func (h *Heap) AllocString(s string) *value.String {
	return h.register(value.NewStringObject(s)).(*value.String)
}

func (h *Heap) AllocAtom(s string) *value.Atom {
	return h.register(value.NewAtomObject(s)).(*value.Atom)
}

func (h *Heap) AllocList(elems []value.Value) *value.List {
	return h.register(value.NewListObject(elems)).(*value.List)
}

func (h *Heap) AllocTable() *value.Table {
	return h.register(value.NewTableObject()).(*value.Table)
}

func (h *Heap) AllocTuple(elems []value.Value) *value.Tuple {
	return h.register(value.NewTupleObject(elems)).(*value.Tuple)
}

func (h *Heap) AllocFunction(name string, arity uint16, body []byte) *value.Function {
	return h.register(value.NewFunctionObject(name, arity, body)).(*value.Function)
}

// AllocNativeFunction registers a Go call hook as a heap-tracked Function
// object, used at startup to bind builtins into globals before the
// program's own bytecode runs.
func (h *Heap) AllocNativeFunction(name string, arity uint16, fn func(args []value.Value) (value.Value, error)) *value.Function {
	return h.register(value.NewNativeFunction(name, arity, fn)).(*value.Function)
}

func (h *Heap) AllocUpvalue(v value.Value) *value.Upvalue {
	return h.register(value.NewUpvalueObject(v)).(*value.Upvalue)
}

func (h *Heap) AllocClosure(fn *value.Function, upvalues []*value.Upvalue) *value.Closure {
	return h.register(value.NewClosureObject(fn, upvalues)).(*value.Closure)
}
