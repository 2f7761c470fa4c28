package compval

// computeRecordLayout assigns byte offsets to fields in declaration order
// and returns the record's overall size and alignment, following the same
// rounding discipline as a struct layout computer: each field is aligned up
// to its own requirement before being placed, and the final size is rounded
// up to the widest field alignment seen.
//
// This mirrors computeStructLayout from the WGSL reflection layout computer
// in the retrieved examples almost line for line; the only domain
// difference is that fields here carry an already-resolved *TypeDef instead
// of an AST type node.
func computeRecordLayout(fields []FieldDef) (size, align uint32) {
	var offset uint32
	var maxAlign uint32 = 1

	for i := range fields {
		f := &fields[i]
		fa := f.Type.Align
		if fa == 0 {
			fa = 1
		}
		offset = roundUp(offset, fa)
		f.Offset = offset
		offset += f.Type.Size
		if fa > maxAlign {
			maxAlign = fa
		}
	}

	align = maxAlign
	size = roundUp(offset, maxAlign)
	return size, align
}

// computeArrayLayout derives an array's per-element stride and, for fixed
// arrays, its total size, from the element type's own layout. The stride is
// the element size rounded up to the element's own alignment, so that
// consecutive elements in the flat buffer remain individually aligned —
// the same rule computeStructLayout applies to a struct field followed by
// another field of the same alignment class.
func computeArrayLayout(elem *TypeDef, n int, variable bool) (size, align, stride uint32) {
	ea := elem.Align
	if ea == 0 {
		ea = 1
	}
	stride = roundUp(elem.Size, ea)
	align = ea
	if variable {
		// a variable array's own slot is just the owning handle plus its
		// length word, regardless of element size.
		return 2 * wordSize, wordSize, stride
	}
	size = roundUp(uint32(n)*stride, ea)
	return size, align, stride
}

// roundUp rounds n up to the next multiple of alignment. alignment must be
// a positive integer; it need not be a power of two, though every atomic
// kind in this package happens to use one.
func roundUp(n, alignment uint32) uint32 {
	if alignment <= 1 {
		return n
	}
	rem := n % alignment
	if rem == 0 {
		return n
	}
	return n + (alignment - rem)
}
