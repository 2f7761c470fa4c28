package compval

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse is the engine's single textual-input entry point. text is either a
// plain composite literal for t, or — if its last non-whitespace character
// is ';' — a ';'-separated sequence of composite literals, each parsed and
// applied in turn against the accumulator produced by the previous one.
//
// previous may be nil, meaning "start from t's zero value." On success the
// returned Value is entirely independent of previous: Parse never aliases
// previous's owned content, so the caller may go on using (or freeing)
// previous exactly as before. On failure, the returned Value is the
// accumulator as of the last successfully applied step (nil if the very
// first step failed), alongside a non-nil error; no partial effect of the
// failing step itself is ever visible.
func Parse(cfg Config, text string, t *TypeDef, previous *Value) (*Value, error) {
	segments, isPatch := splitPatchList(text)
	if !isPatch {
		return parseOne(cfg, text, t, previous)
	}

	acc := previous
	accIsOurs := false
	for _, seg := range segments {
		next, err := parseOne(cfg, seg, t, acc)
		if err != nil {
			if !accIsOurs {
				return nil, err
			}
			return acc, err
		}
		if accIsOurs {
			acc.Free(t)
		}
		acc = next
		accIsOurs = true
	}
	if !accIsOurs {
		if previous != nil {
			return previous.Duplicate(t), nil
		}
		return newZeroValue(t, cfg.Allocator), nil
	}
	return acc, nil
}

// parseOne parses one full composite literal into a brand-new Value,
// independent of previous. Any field/element the literal does not mention
// is deep-copied from previous (or left zero, if previous is nil). If
// parsing fails at any depth, every allocation made for this attempt is
// freed before the error is returned; previous itself is never touched.
func parseOne(cfg Config, text string, t *TypeDef, previous *Value) (*Value, error) {
	out := newZeroValue(t, cfg.Allocator)
	pc := &parseCtx{cfg: cfg, out: out}

	var prevBuf []byte
	if previous != nil {
		prevBuf = previous.buf
	}

	err := parseValue(pc, text, out.buf, 0, t, prevBuf, 0, previous)
	if err != nil {
		freeAux(out.buf, 0, out, t)
		cfg.Allocator.Free(out.buf)
		return nil, err
	}
	return out, nil
}

// parseCtx threads the engine's configuration, the in-progress output
// Value, and the current field/element breadcrumb through the
// recursive-descent parse functions. The breadcrumb is a stack of
// "field `name`" / "element `idx`" segments pushed on the way down into a
// record field or array element and popped on the way back out, so any
// error or warning raised partway through a deeply nested literal can
// report exactly where it happened.
type parseCtx struct {
	cfg  Config
	out  *Value
	path []string
}

// pushField records that parsing has descended into record field name,
// returning a func that restores the breadcrumb on the way back out.
func (pc *parseCtx) pushField(name string) func() {
	pc.path = append(pc.path, "field `"+name+"`")
	depth := len(pc.path)
	return func() { pc.path = pc.path[:depth-1] }
}

// pushElement records that parsing has descended into array element idx,
// returning a func that restores the breadcrumb on the way back out.
func (pc *parseCtx) pushElement(idx int) func() {
	pc.path = append(pc.path, "element `"+strconv.Itoa(idx)+"`")
	depth := len(pc.path)
	return func() { pc.path = pc.path[:depth-1] }
}

// breadcrumb renders the current path as a prefix for an error or warning
// message, e.g. "in field `nodes`, in element `2`: ". Empty at the root.
func (pc *parseCtx) breadcrumb() string {
	if len(pc.path) == 0 {
		return ""
	}
	return "in " + strings.Join(pc.path, ", in ") + ": "
}

// errf wraps sentinel with the current breadcrumb prefixed onto format,
// the parse functions' uniform way of attaching positional context to a
// failure.
func (pc *parseCtx) errf(sentinel error, format string, args ...any) error {
	return wrapf(sentinel, pc.breadcrumb()+format, args...)
}

// wrapErr prefixes the current breadcrumb onto an error already produced
// elsewhere (e.g. by an AtomicCodec), preserving its existing sentinel
// chain so errors.Is still matches.
func (pc *parseCtx) wrapErr(err error) error {
	if bc := pc.breadcrumb(); bc != "" {
		return fmt.Errorf("%s%w", bc, err)
	}
	return err
}

// warnf reports a non-fatal diagnostic through cfg.Reporter, prefixed with
// the current breadcrumb. Used for conditions the grammar tolerates but
// that are still worth surfacing to the host (e.g. a literal that
// mentions the same field or array index twice).
func (pc *parseCtx) warnf(format string, args ...any) {
	report(pc.cfg.Reporter, ReportWarn, pc.breadcrumb()+fmt.Sprintf(format, args...), nil)
}

// parseValue dispatches on t.Shape to parse one value of type t from s into
// outBuf[outOff:], defaulting to the corresponding span of prevBuf/prev
// wherever the literal leaves something unmentioned.
func parseValue(pc *parseCtx, s string, outBuf []byte, outOff uint32, t *TypeDef, prevBuf []byte, prevOff uint32, prev *Value) error {
	tok := trimSpace(s)
	if tok == "" {
		return pc.errf(ErrInvalidLiteral, "empty literal for type %q", t.Name)
	}

	switch t.Shape {
	case ShapeAtomic:
		return parseAtomic(pc, tok, outBuf, outOff, t)

	case ShapeRecord:
		if tok[0] != '{' || tok[len(tok)-1] != '}' {
			return pc.errf(ErrInvalidLiteral, "record literal for %q must be {...}", t.Name)
		}
		return parseRecord(pc, tok, outBuf, outOff, t, prevBuf, prevOff, prev)

	case ShapeFixedArray:
		if tok[0] != '[' || tok[len(tok)-1] != ']' {
			return pc.errf(ErrInvalidLiteral, "fixed-array literal for %q must be [...]", t.Name)
		}
		return parseFixedArray(pc, tok, outBuf, outOff, t, prevBuf, prevOff, prev)

	case ShapeVarArray:
		switch tok[0] {
		case '[':
			if tok[len(tok)-1] != ']' {
				return pc.errf(ErrInvalidLiteral, "variable-array literal for %q must close with ]", t.Name)
			}
			return parseVarArrayShort(pc, tok, outBuf, outOff, t, prevBuf, prevOff, prev)
		case '{':
			if tok[len(tok)-1] != '}' {
				return pc.errf(ErrInvalidLiteral, "variable-array extended literal for %q must close with }", t.Name)
			}
			return parseVarArrayExtended(pc, tok, outBuf, outOff, t, prevBuf, prevOff, prev)
		default:
			return pc.errf(ErrInvalidLiteral, "variable-array literal for %q must be [...] or {...}", t.Name)
		}
	}
	return pc.errf(ErrInternal, "unhandled shape %s", t.Shape)
}

func parseAtomic(pc *parseCtx, tok string, outBuf []byte, outOff uint32, t *TypeDef) error {
	content, quoted := unquoteAtomic(tok)
	switch t.Atomic {
	case AtomicString:
		if !quoted && content == "nil" {
			writeU64(outBuf, outOff, 0)
			return nil
		}
		h := pc.out.newStringHandle(content)
		writeU64(outBuf, outOff, h)
		return nil

	case AtomicBool:
		v, err := pc.cfg.Codec.ParseBool(content)
		if err != nil {
			return pc.wrapErr(err)
		}
		writeBool(outBuf, outOff, v)
		return nil

	case AtomicInt:
		v, err := pc.cfg.Codec.ParseInt(content)
		if err != nil {
			return pc.wrapErr(err)
		}
		writeI64(outBuf, outOff, v)
		return nil

	case AtomicReal:
		v, err := pc.cfg.Codec.ParseReal(content)
		if err != nil {
			return pc.wrapErr(err)
		}
		writeF64(outBuf, outOff, v)
		return nil
	}
	return pc.errf(ErrInternal, "unhandled atomic kind %s", t.Atomic)
}

// parseRecord parses "{name: value, ...}". Fields not mentioned default to
// the corresponding field of prev (or zero, if prev is nil). Mentioning an
// unknown field name, or using something other than a balanced "name:
// value" pair, fails the whole literal.
func parseRecord(pc *parseCtx, tok string, outBuf []byte, outOff uint32, t *TypeDef, prevBuf []byte, prevOff uint32, prev *Value) error {
	inner := tok[1 : len(tok)-1]
	rawFields := splitTopLevel(inner, ',')

	valueText := make(map[string]string, len(rawFields))
	for _, raw := range rawFields {
		raw = trimSpace(raw)
		if raw == "" {
			return pc.errf(ErrInvalidLiteral, "empty field in record literal for %q", t.Name)
		}
		colon, found := findSameLevel(raw, 0, ':')
		if !found {
			return pc.errf(ErrInvalidLiteral, "field %q missing ':' in record literal for %q", raw, t.Name)
		}
		name := trimSpace(raw[:colon])
		if name == "" {
			return pc.errf(ErrInvalidLiteral, "empty field name in record literal for %q", t.Name)
		}
		if _, ok := t.FieldByName(name); !ok {
			return pc.errf(ErrInvalidLiteral, "unknown field %q on record %q", name, t.Name)
		}
		if _, already := valueText[name]; already {
			pc.warnf("field `%s` mentioned more than once in record literal for %q, last occurrence wins", name, t.Name)
		}
		valueText[name] = raw[colon+1:]
	}

	for _, f := range t.Fields {
		fo := outOff + f.Offset
		if vt, mentioned := valueText[f.Name]; mentioned {
			var pBuf []byte
			var pOff uint32
			var pVal *Value
			if prev != nil {
				pBuf, pOff, pVal = prevBuf, prevOff+f.Offset, prev
			}
			pop := pc.pushField(f.Name)
			err := parseValue(pc, vt, outBuf, fo, f.Type, pBuf, pOff, pVal)
			pop()
			if err != nil {
				return err
			}
			continue
		}
		if prev != nil {
			duplicate(prevBuf, prevOff+f.Offset, prev, outBuf, fo, pc.out, f.Type)
		}
	}
	return nil
}

// indexedElem is one parsed array-literal element, with its resolved
// target index.
type indexedElem struct {
	idx  int
	text string
}

// parseIndexedElements applies the array-element grammar (an optional
// "uint:" index prefix, either present on every element or absent from
// every element) to a list of already top-level-split element texts,
// returning each element's resolved index together with its value text,
// and the maximum index seen.
func parseIndexedElements(pc *parseCtx, elemsRaw []string) ([]indexedElem, int, error) {
	out := make([]indexedElem, 0, len(elemsRaw))
	hasPrefix := false
	prefixDecided := false
	next := 0
	maxIdx := -1
	seen := make(map[int]bool, len(elemsRaw))

	for i, raw := range elemsRaw {
		raw := trimSpace(raw)
		colon, found := findSameLevel(raw, 0, ':')
		prefixed := false
		idxStr := ""
		if found {
			candidate := trimSpace(raw[:colon])
			if candidate != "" && isDecimalUint(candidate) {
				prefixed = true
				idxStr = candidate
			}
		}

		if !prefixDecided {
			hasPrefix = prefixed
			prefixDecided = true
		} else if prefixed != hasPrefix {
			return nil, 0, pc.errf(ErrInvalidLiteral, "array literal mixes indexed and positional elements at element %d", i)
		}

		var idx int
		var text string
		if prefixed {
			n, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, 0, pc.errf(ErrInvalidLiteral, "invalid array index %q", idxStr)
			}
			idx = n
			text = raw[colon+1:]
			next = idx + 1
		} else {
			idx = next
			text = raw
			next++
		}
		if seen[idx] {
			pc.warnf("array index %d mentioned more than once in literal, last occurrence wins", idx)
		}
		seen[idx] = true
		if idx > maxIdx {
			maxIdx = idx
		}
		out = append(out, indexedElem{idx: idx, text: text})
	}
	return out, maxIdx, nil
}

func isDecimalUint(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// parseFixedArray parses "[e0, e1, ...]" against a fixed-length array type.
// Elements not touched keep prev's value at that index; any index at or
// past t.N fails with ErrIndexOutOfBounds.
func parseFixedArray(pc *parseCtx, tok string, outBuf []byte, outOff uint32, t *TypeDef, prevBuf []byte, prevOff uint32, prev *Value) error {
	if prev != nil {
		for i := 0; i < t.N; i++ {
			eo := uint32(i) * t.Stride
			duplicate(prevBuf, prevOff+eo, prev, outBuf, outOff+eo, pc.out, t.Elem)
		}
	}

	inner := tok[1 : len(tok)-1]
	rawElems := splitTopLevel(inner, ',')
	if len(rawElems) == 0 {
		return nil
	}

	elems, maxIdx, err := parseIndexedElements(pc, rawElems)
	if err != nil {
		return err
	}
	if maxIdx >= t.N {
		return pc.errf(ErrIndexOutOfBounds, "index %d out of bounds for array %q of length %d", maxIdx, t.Name, t.N)
	}

	for _, e := range elems {
		eo := outOff + uint32(e.idx)*t.Stride
		freeAux(outBuf, eo, pc.out, t.Elem)
		var pBuf []byte
		var pOff uint32
		var pVal *Value
		if prev != nil {
			pBuf, pOff, pVal = prevBuf, prevOff+uint32(e.idx)*t.Stride, prev
		}
		pop := pc.pushElement(e.idx)
		err := parseValue(pc, e.text, outBuf, eo, t.Elem, pBuf, pOff, pVal)
		pop()
		if err != nil {
			return err
		}
	}
	return nil
}

// growVarArray allocates a fresh backing buffer of newLen elements,
// duplicating the first min(newLen, previousLen) elements from prev's
// backing buffer, then applies elems (indices already validated by the
// caller against whatever bound applies to this form), finally committing
// the handle and length into outBuf[outOff:].
func growVarArray(pc *parseCtx, outBuf []byte, outOff uint32, t *TypeDef, prevArr []byte, previousLen int64, prev *Value, newLen int64, elems []indexedElem) error {
	newArr := pc.out.alloc.Alloc(int(newLen) * int(t.Stride))
	overlap := previousLen
	if newLen < overlap {
		overlap = newLen
	}
	if prev != nil {
		for i := int64(0); i < overlap; i++ {
			eo := uint32(i) * t.Stride
			duplicate(prevArr, eo, prev, newArr, eo, pc.out, t.Elem)
		}
	}

	for _, e := range elems {
		eo := uint32(e.idx) * t.Stride
		freeAux(newArr, eo, pc.out, t.Elem)
		var pBuf []byte
		var pOff uint32
		var pVal *Value
		if prev != nil && int64(e.idx) < previousLen {
			pBuf, pOff, pVal = prevArr, uint32(e.idx)*t.Stride, prev
		}
		pop := pc.pushElement(e.idx)
		err := parseValue(pc, e.text, newArr, eo, t.Elem, pBuf, pOff, pVal)
		pop()
		if err != nil {
			for i := int64(0); i < newLen; i++ {
				freeAux(newArr, uint32(i)*t.Stride, pc.out, t.Elem)
			}
			pc.out.alloc.Free(newArr)
			return err
		}
	}

	h := pc.out.newArrayHandle(newArr)
	writeU64(outBuf, outOff, h)
	writeI64(outBuf, outOff+wordSize, newLen)
	return nil
}

func previousVarArrayState(prevBuf []byte, prevOff uint32, prev *Value) ([]byte, int64) {
	if prev == nil {
		return nil, 0
	}
	h := readU64(prevBuf, prevOff)
	n := readI64(prevBuf, prevOff+wordSize)
	if h == 0 {
		return nil, 0
	}
	return prev.arrays[h], n
}

// parseVarArrayShort parses the compact "[e0, e1, ...]" form for a
// variable array: an empty literal "[]" leaves the array exactly as prev
// had it (or empty, if prev is nil); otherwise the new length is
// max(maxIndex+1, previousLength), growing as needed.
func parseVarArrayShort(pc *parseCtx, tok string, outBuf []byte, outOff uint32, t *TypeDef, prevBuf []byte, prevOff uint32, prev *Value) error {
	prevArr, previousLen := previousVarArrayState(prevBuf, prevOff, prev)

	inner := tok[1 : len(tok)-1]
	rawElems := splitTopLevel(inner, ',')
	if len(rawElems) == 0 {
		return growVarArray(pc, outBuf, outOff, t, prevArr, previousLen, prev, previousLen, nil)
	}

	elems, maxIdx, err := parseIndexedElements(pc, rawElems)
	if err != nil {
		return err
	}
	newLen := int64(maxIdx) + 1
	if previousLen > newLen {
		newLen = previousLen
	}
	return growVarArray(pc, outBuf, outOff, t, prevArr, previousLen, prev, newLen, elems)
}

// parseVarArrayExtended parses "{size: N, data: [...]}" (either field
// optional, but at least one required). With both present, data's indices
// must stay strictly below N — exceeding it is ErrInvalidLiteral, not
// ErrIndexOutOfBounds, since N here is locally declared by the literal
// itself rather than fixed by the type.
func parseVarArrayExtended(pc *parseCtx, tok string, outBuf []byte, outOff uint32, t *TypeDef, prevBuf []byte, prevOff uint32, prev *Value) error {
	inner := tok[1 : len(tok)-1]
	rawFields := splitTopLevel(inner, ',')
	if len(rawFields) == 0 {
		return pc.errf(ErrInvalidLiteral, "extended variable-array literal for %q needs size and/or data", t.Name)
	}

	var sizeText, dataText string
	haveSize, haveData := false, false
	for _, raw := range rawFields {
		raw = trimSpace(raw)
		colon, found := findSameLevel(raw, 0, ':')
		if !found {
			return pc.errf(ErrInvalidLiteral, "malformed field %q in extended variable-array literal", raw)
		}
		key := trimSpace(raw[:colon])
		val := raw[colon+1:]
		switch key {
		case "size":
			if haveSize {
				return pc.errf(ErrInvalidLiteral, "duplicate 'size' in extended variable-array literal")
			}
			haveSize, sizeText = true, val
		case "data":
			if haveData {
				return pc.errf(ErrInvalidLiteral, "duplicate 'data' in extended variable-array literal")
			}
			haveData, dataText = true, val
		default:
			return pc.errf(ErrInvalidLiteral, "unknown field %q in extended variable-array literal", key)
		}
	}

	prevArr, previousLen := previousVarArrayState(prevBuf, prevOff, prev)

	switch {
	case haveSize && haveData:
		n, err := parseSizeField(pc, sizeText)
		if err != nil {
			return err
		}
		dataInner := trimSpace(dataText)
		if dataInner == "" || dataInner[0] != '[' || dataInner[len(dataInner)-1] != ']' {
			return pc.errf(ErrInvalidLiteral, "'data' in extended variable-array literal must be [...]")
		}
		rawElems := splitTopLevel(dataInner[1:len(dataInner)-1], ',')
		elems, maxIdx, err := parseIndexedElements(pc, rawElems)
		if err != nil {
			return err
		}
		if int64(maxIdx) >= n {
			return pc.errf(ErrInvalidLiteral, "data index %d exceeds declared size %d", maxIdx, n)
		}
		return growVarArray(pc, outBuf, outOff, t, prevArr, previousLen, prev, n, elems)

	case haveSize && !haveData:
		n, err := parseSizeField(pc, sizeText)
		if err != nil {
			return err
		}
		return growVarArray(pc, outBuf, outOff, t, prevArr, previousLen, prev, n, nil)

	default: // data only
		dataInner := trimSpace(dataText)
		if dataInner == "" || dataInner[0] != '[' || dataInner[len(dataInner)-1] != ']' {
			return pc.errf(ErrInvalidLiteral, "'data' in extended variable-array literal must be [...]")
		}
		rawElems := splitTopLevel(dataInner[1:len(dataInner)-1], ',')
		if len(rawElems) == 0 {
			return growVarArray(pc, outBuf, outOff, t, prevArr, previousLen, prev, previousLen, nil)
		}
		elems, maxIdx, err := parseIndexedElements(pc, rawElems)
		if err != nil {
			return err
		}
		newLen := int64(maxIdx) + 1
		if previousLen > newLen {
			newLen = previousLen
		}
		return growVarArray(pc, outBuf, outOff, t, prevArr, previousLen, prev, newLen, elems)
	}
}

func parseSizeField(pc *parseCtx, text string) (int64, error) {
	content, _ := unquoteAtomic(trimSpace(text))
	n, err := pc.cfg.Codec.ParseInt(content)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, pc.errf(ErrInvalidLiteral, "negative size %d", n)
	}
	return n, nil
}
