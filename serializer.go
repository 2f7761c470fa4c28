package compval

import "strings"

// Serialize renders v (of type t) as a composite literal text, the inverse
// of Parse. Wire mode single-quotes and escapes every atomic, including
// bools/ints/reals, so every token round-trips through one uniform
// quoting convention; pretty mode only quotes strings (their natural
// literal form) and leaves bool/int/real bare. In both modes, a null
// string always renders as the bare token nil, never quoted — that is what
// lets a quoted 'nil' unambiguously mean the four-letter string rather than
// null, in either mode.
func Serialize(cfg Config, v *Value, t *TypeDef, wire bool) string {
	var b strings.Builder
	serializeValue(&b, cfg, v, v.buf, 0, t, wire)
	return b.String()
}

func serializeValue(b *strings.Builder, cfg Config, v *Value, buf []byte, off uint32, t *TypeDef, wire bool) {
	switch t.Shape {
	case ShapeAtomic:
		serializeAtomic(b, cfg, v, buf, off, t, wire)

	case ShapeRecord:
		b.WriteByte('{')
		for i, f := range t.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name)
			b.WriteString(": ")
			serializeValue(b, cfg, v, buf, off+f.Offset, f.Type, wire)
		}
		b.WriteByte('}')

	case ShapeFixedArray:
		b.WriteByte('[')
		for i := 0; i < t.N; i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			serializeValue(b, cfg, v, buf, off+uint32(i)*t.Stride, t.Elem, wire)
		}
		b.WriteByte(']')

	case ShapeVarArray:
		serializeVarArray(b, cfg, v, buf, off, t, wire)
	}
}

func serializeVarArray(b *strings.Builder, cfg Config, v *Value, buf []byte, off uint32, t *TypeDef, wire bool) {
	h := readU64(buf, off)
	n := readI64(buf, off+wordSize)
	var arr []byte
	if h != 0 {
		arr = v.arrays[h]
	}

	if n >= int64(cfg.ExpandArrayViewThreshold) {
		b.WriteString("{size: ")
		b.WriteString(cfg.Codec.FormatInt(n))
		b.WriteString(", data: [")
		for i := int64(0); i < n; i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			serializeValue(b, cfg, v, arr, uint32(i)*t.Stride, t.Elem, wire)
		}
		b.WriteString("]}")
		return
	}

	b.WriteByte('[')
	for i := int64(0); i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		serializeValue(b, cfg, v, arr, uint32(i)*t.Stride, t.Elem, wire)
	}
	b.WriteByte(']')
}

func serializeAtomic(b *strings.Builder, cfg Config, v *Value, buf []byte, off uint32, t *TypeDef, wire bool) {
	switch t.Atomic {
	case AtomicString:
		h := readU64(buf, off)
		if h == 0 {
			b.WriteString("nil")
			return
		}
		b.WriteString(quoteAtomic(v.strings[h]))

	case AtomicBool:
		s := cfg.Codec.FormatBool(readBool(buf, off))
		writeMaybeQuoted(b, s, wire)

	case AtomicInt:
		s := cfg.Codec.FormatInt(readI64(buf, off))
		writeMaybeQuoted(b, s, wire)

	case AtomicReal:
		s := cfg.Codec.FormatReal(readF64(buf, off))
		writeMaybeQuoted(b, s, wire)
	}
}

func writeMaybeQuoted(b *strings.Builder, s string, wire bool) {
	if wire {
		b.WriteString(quoteAtomic(s))
	} else {
		b.WriteString(s)
	}
}

// LengthOfSerialized returns exactly len(Serialize(cfg, v, t, wire)),
// without building the string: a single walker pass that sums token
// lengths instead of writing them, for callers sizing a buffer ahead of a
// Serialize call (or across many values of the same type, to avoid
// repeated string-builder growth).
func LengthOfSerialized(cfg Config, v *Value, t *TypeDef, wire bool) int {
	return lengthValue(cfg, v, v.buf, 0, t, wire)
}

func lengthValue(cfg Config, v *Value, buf []byte, off uint32, t *TypeDef, wire bool) int {
	switch t.Shape {
	case ShapeAtomic:
		return lengthAtomic(cfg, v, buf, off, t, wire)

	case ShapeRecord:
		n := 2 // '{' '}'
		for i, f := range t.Fields {
			if i > 0 {
				n += 2 // ", "
			}
			n += len(f.Name) + 2 // "name: "
			n += lengthValue(cfg, v, buf, off+f.Offset, f.Type, wire)
		}
		return n

	case ShapeFixedArray:
		n := 2
		for i := 0; i < t.N; i++ {
			if i > 0 {
				n += 2
			}
			n += lengthValue(cfg, v, buf, off+uint32(i)*t.Stride, t.Elem, wire)
		}
		return n

	case ShapeVarArray:
		return lengthVarArray(cfg, v, buf, off, t, wire)
	}
	return 0
}

func lengthVarArray(cfg Config, v *Value, buf []byte, off uint32, t *TypeDef, wire bool) int {
	h := readU64(buf, off)
	arrN := readI64(buf, off+wordSize)
	var arr []byte
	if h != 0 {
		arr = v.arrays[h]
	}

	if arrN >= int64(cfg.ExpandArrayViewThreshold) {
		sizeTok := cfg.Codec.FormatInt(arrN)
		n := len("{size: ") + len(sizeTok) + len(", data: [") + len("]}")
		for i := int64(0); i < arrN; i++ {
			if i > 0 {
				n += 2
			}
			n += lengthValue(cfg, v, arr, uint32(i)*t.Stride, t.Elem, wire)
		}
		return n
	}

	n := 2
	for i := int64(0); i < arrN; i++ {
		if i > 0 {
			n += 2
		}
		n += lengthValue(cfg, v, arr, uint32(i)*t.Stride, t.Elem, wire)
	}
	return n
}

func lengthAtomic(cfg Config, v *Value, buf []byte, off uint32, t *TypeDef, wire bool) int {
	switch t.Atomic {
	case AtomicString:
		h := readU64(buf, off)
		if h == 0 {
			return len("nil")
		}
		return len(quoteAtomic(v.strings[h]))

	case AtomicBool:
		return maybeQuotedLen(cfg.Codec.FormatBool(readBool(buf, off)), wire)
	case AtomicInt:
		return maybeQuotedLen(cfg.Codec.FormatInt(readI64(buf, off)), wire)
	case AtomicReal:
		return maybeQuotedLen(cfg.Codec.FormatReal(readF64(buf, off)), wire)
	}
	return 0
}

func maybeQuotedLen(s string, wire bool) int {
	if wire {
		return len(quoteAtomic(s))
	}
	return len(s)
}
