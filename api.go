package compval

// NewValue allocates a zero-valued instance of t: every atomic field at its
// zero/null default, every fixed array element likewise, every variable
// array at length zero. alloc may be nil to use the plain slice allocator.
func NewValue(t *TypeDef, alloc Allocator) *Value {
	return newZeroValue(t, alloc)
}

// Duplicate returns an independent deep copy of v: no string or
// variable-array buffer is shared between the two values, so freeing or
// mutating one never affects the other.
func (v *Value) Duplicate(t *TypeDef) *Value {
	out := newZeroValue(t, v.alloc)
	duplicate(v.buf, 0, v, out.buf, 0, out, t)
	return out
}

// Free releases every string and variable-array buffer v transitively
// owns, returning v's own root buffer to its allocator. v must not be used
// again afterward.
func (v *Value) Free(t *TypeDef) {
	freeAux(v.buf, 0, v, t)
	v.alloc.Free(v.buf)
	v.buf = nil
}

// Compare orders a and b, both of type t: <0 if a<b, 0 if equal, >0 if a>b.
func Compare(a, b *Value, t *TypeDef) int {
	return compare(a.buf, 0, a, b.buf, 0, b, t)
}
