package compval

import "strconv"

// walker.go is the single dispatcher every shape-sensitive operation in
// this package runs through: instead of walking a reflect.Value by []int
// field index, it walks a flat byte buffer by *TypeDef, switching on Shape
// exactly once per recursion level — a switch over the Shape enum, not a
// repeated string comparison against field names.

// duplicate deep-copies the value of type t found at srcBuf[srcOff:] (owned
// by src) into dstBuf[dstOff:] (owned by dst), allocating fresh handles in
// dst for any string or array content so the two values never alias.
func duplicate(srcBuf []byte, srcOff uint32, src *Value, dstBuf []byte, dstOff uint32, dst *Value, t *TypeDef) {
	switch t.Shape {
	case ShapeAtomic:
		if t.Atomic == AtomicString {
			h := readU64(srcBuf, srcOff)
			if h == 0 {
				writeU64(dstBuf, dstOff, 0)
				return
			}
			nh := dst.newStringHandle(src.strings[h])
			writeU64(dstBuf, dstOff, nh)
			return
		}
		copy(dstBuf[dstOff:dstOff+t.Size], srcBuf[srcOff:srcOff+t.Size])

	case ShapeRecord:
		for _, f := range t.Fields {
			duplicate(srcBuf, srcOff+f.Offset, src, dstBuf, dstOff+f.Offset, dst, f.Type)
		}

	case ShapeFixedArray:
		for i := 0; i < t.N; i++ {
			eo := uint32(i) * t.Stride
			duplicate(srcBuf, srcOff+eo, src, dstBuf, dstOff+eo, dst, t.Elem)
		}

	case ShapeVarArray:
		h := readU64(srcBuf, srcOff)
		n := readI64(srcBuf, srcOff+wordSize)
		if h == 0 || n == 0 {
			writeU64(dstBuf, dstOff, 0)
			writeI64(dstBuf, dstOff+wordSize, 0)
			return
		}
		srcArr := src.arrays[h]
		dstArr := dst.alloc.Alloc(len(srcArr))
		for i := int64(0); i < n; i++ {
			eo := uint32(i) * t.Stride
			duplicate(srcArr, eo, src, dstArr, eo, dst, t.Elem)
		}
		nh := dst.newArrayHandle(dstArr)
		writeU64(dstBuf, dstOff, nh)
		writeI64(dstBuf, dstOff+wordSize, n)
	}
}

// freeAux releases every string/array handle transitively owned by the
// value of type t at buf[off:], removing the entries from v's side tables
// and zeroing each released handle (and variable-array length) slot.
// It does not release buf itself; the caller (Value.Free, or a parse
// rollback) owns that decision.
func freeAux(buf []byte, off uint32, v *Value, t *TypeDef) {
	switch t.Shape {
	case ShapeAtomic:
		if t.Atomic == AtomicString {
			h := readU64(buf, off)
			if h != 0 {
				delete(v.strings, h)
				writeU64(buf, off, 0)
			}
		}

	case ShapeRecord:
		for _, f := range t.Fields {
			freeAux(buf, off+f.Offset, v, f.Type)
		}

	case ShapeFixedArray:
		for i := 0; i < t.N; i++ {
			freeAux(buf, off+uint32(i)*t.Stride, v, t.Elem)
		}

	case ShapeVarArray:
		h := readU64(buf, off)
		n := readI64(buf, off+wordSize)
		if h != 0 {
			arr := v.arrays[h]
			for i := int64(0); i < n; i++ {
				freeAux(arr, uint32(i)*t.Stride, v, t.Elem)
			}
			v.alloc.Free(arr)
			delete(v.arrays, h)
			writeU64(buf, off, 0)
			writeI64(buf, off+wordSize, 0)
		}
	}
}

// compare returns <0, 0 or >0 comparing the values of type t found at the
// two locations, per the ordering table: numeric subtraction/direct
// compare for bool/int/real, lexical with null-less-than-any for string,
// elementwise for arrays (size first for variable arrays), field order for
// records.
func compare(aBuf []byte, aOff uint32, a *Value, bBuf []byte, bOff uint32, b *Value, t *TypeDef) int {
	switch t.Shape {
	case ShapeAtomic:
		switch t.Atomic {
		case AtomicBool:
			av, bv := readBool(aBuf, aOff), readBool(bBuf, bOff)
			if av == bv {
				return 0
			}
			if !av {
				return -1
			}
			return 1
		case AtomicInt:
			av, bv := readI64(aBuf, aOff), readI64(bBuf, bOff)
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			default:
				return 0
			}
		case AtomicReal:
			av, bv := readF64(aBuf, aOff), readF64(bBuf, bOff)
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			default:
				return 0
			}
		case AtomicString:
			ah, bh := readU64(aBuf, aOff), readU64(bBuf, bOff)
			if ah == 0 && bh == 0 {
				return 0
			}
			if ah == 0 {
				return -1
			}
			if bh == 0 {
				return 1
			}
			as, bs := a.strings[ah], b.strings[bh]
			switch {
			case as < bs:
				return -1
			case as > bs:
				return 1
			default:
				return 0
			}
		}
		return 0

	case ShapeRecord:
		for _, f := range t.Fields {
			if c := compare(aBuf, aOff+f.Offset, a, bBuf, bOff+f.Offset, b, f.Type); c != 0 {
				return c
			}
		}
		return 0

	case ShapeFixedArray:
		for i := 0; i < t.N; i++ {
			eo := uint32(i) * t.Stride
			if c := compare(aBuf, aOff+eo, a, bBuf, bOff+eo, b, t.Elem); c != 0 {
				return c
			}
		}
		return 0

	case ShapeVarArray:
		an, bn := readI64(aBuf, aOff+wordSize), readI64(bBuf, bOff+wordSize)
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		}
		ah, bh := readU64(aBuf, aOff), readU64(bBuf, bOff)
		aArr, bArr := a.arrays[ah], b.arrays[bh]
		for i := int64(0); i < an; i++ {
			eo := uint32(i) * t.Stride
			if c := compare(aArr, eo, a, bArr, eo, b, t.Elem); c != 0 {
				return c
			}
		}
		return 0
	}
	return 0
}

// fieldType resolves the element/field type addressed by key under t,
// without touching any buffer: "name" for a record field, a decimal index
// for an array element, or "data"/"size" for a variable array's extended
// accessors.
func fieldType(t *TypeDef, key string) (*TypeDef, error) {
	switch t.Shape {
	case ShapeRecord:
		f, ok := t.FieldByName(key)
		if !ok {
			return nil, wrapf(ErrUnknownField, "no field %q on record %q", key, t.Name)
		}
		return f.Type, nil

	case ShapeFixedArray:
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 {
			return nil, wrapf(ErrUnknownField, "invalid array index %q", key)
		}
		if idx >= t.N {
			return nil, wrapf(ErrIndexOutOfBounds, "index %d out of bounds for array of length %d", idx, t.N)
		}
		return t.Elem, nil

	case ShapeVarArray:
		switch key {
		case "data":
			return t.Elem, nil
		case "size":
			return intType, nil
		default:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 {
				return nil, wrapf(ErrUnknownField, "invalid variable-array key %q", key)
			}
			return t.Elem, nil
		}
	}
	return nil, wrapf(ErrUnknownField, "type %q (%s) has no addressable fields", t.Name, t.Shape)
}

// loc identifies a byte span inside some buffer: either a value's root
// buffer, or a variable array's separately-allocated backing buffer. Path
// resolution crosses from one to the other at a var-array "data" step,
// which is why the pointer representation cannot be a single (buf, offset)
// pair rooted only at the value's own buffer.
type loc struct {
	buf []byte
	off uint32
}

// fieldPtr resolves key under t at p, returning the element type and its
// location. It is the single place that understands how a record field, an
// array index, and a variable array's data/size accessors each translate
// into a byte span — the buffer-walking counterpart of fieldType.
func fieldPtr(v *Value, t *TypeDef, p loc, key string) (*TypeDef, loc, error) {
	switch t.Shape {
	case ShapeRecord:
		f, ok := t.FieldByName(key)
		if !ok {
			return nil, loc{}, wrapf(ErrUnknownField, "no field %q on record %q", key, t.Name)
		}
		return f.Type, loc{buf: p.buf, off: p.off + f.Offset}, nil

	case ShapeFixedArray:
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 {
			return nil, loc{}, wrapf(ErrUnknownField, "invalid array index %q", key)
		}
		if idx >= t.N {
			return nil, loc{}, wrapf(ErrIndexOutOfBounds, "index %d out of bounds for array of length %d", idx, t.N)
		}
		return t.Elem, loc{buf: p.buf, off: p.off + uint32(idx)*t.Stride}, nil

	case ShapeVarArray:
		n := readI64(p.buf, p.off+wordSize)
		switch key {
		case "size":
			return intType, loc{buf: p.buf, off: p.off + wordSize}, nil
		case "data":
			h := readU64(p.buf, p.off)
			return t.Elem, loc{buf: v.arrays[h], off: 0}, nil
		default:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 {
				return nil, loc{}, wrapf(ErrUnknownField, "invalid variable-array key %q", key)
			}
			if int64(idx) >= n {
				return nil, loc{}, wrapf(ErrIndexOutOfBounds, "index %d out of bounds for array of length %d", idx, n)
			}
			h := readU64(p.buf, p.off)
			return t.Elem, loc{buf: v.arrays[h], off: uint32(idx) * t.Stride}, nil
		}
	}
	return nil, loc{}, wrapf(ErrUnknownField, "type %q (%s) has no addressable fields", t.Name, t.Shape)
}
