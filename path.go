package compval

import "strings"

// path.go implements dotted/indexed path addressing: "cluster.nodes[1].port"
// either resolves directly to a (type, location) inside a live Value, or —
// given a leaf value's text — expands into the equivalent composite literal
// that Parse would need to apply the same patch. The two directions share
// one tokenizer.

// tokenizePath splits a path into its ordered steps: a name segment
// ("cluster", "nodes", "port") or a bracketed index ("0", "1", from "[0]",
// "[1]"), in path order. The leading segment names the root value/type and
// is not itself a step into it — both ConvertPathToLiteral and ResolvePath
// drop it before walking.
func tokenizePath(path string) ([]string, error) {
	dotParts := strings.Split(path, ".")
	var steps []string
	for _, part := range dotParts {
		if part == "" {
			return nil, wrapf(ErrInvalidLiteral, "empty path segment in %q", path)
		}
		i := strings.IndexByte(part, '[')
		if i < 0 {
			steps = append(steps, part)
			continue
		}
		name := part[:i]
		if name == "" {
			return nil, wrapf(ErrInvalidLiteral, "missing field name before index in %q", path)
		}
		steps = append(steps, name)
		rest := part[i:]
		for len(rest) > 0 {
			if rest[0] != '[' {
				return nil, wrapf(ErrInvalidLiteral, "malformed index in %q", path)
			}
			close := strings.IndexByte(rest, ']')
			if close < 0 {
				return nil, wrapf(ErrInvalidLiteral, "unterminated index in %q", path)
			}
			idx := rest[1:close]
			if !isDecimalUint(idx) {
				return nil, wrapf(ErrInvalidLiteral, "non-numeric index %q in %q", idx, path)
			}
			steps = append(steps, idx)
			rest = rest[close+1:]
		}
	}
	return steps, nil
}

// ConvertPathToLiteral expands a path assignment like
// "cluster.nodes[1].port" with leafText "5433" into the composite literal
// "{nodes: [1: {port: 5433}]}" that Parse would apply to the same effect:
// each step, from the leaf outward, wraps the accumulated text in a
// matching opening/closing pair — "{name: ...}" for a record field step,
// "[idx: ...]" for an array index step.
func ConvertPathToLiteral(path string, leafText string) (string, error) {
	steps, err := tokenizePath(path)
	if err != nil {
		return "", err
	}
	if len(steps) < 2 {
		return "", wrapf(ErrInvalidLiteral, "path %q has no steps below its root", path)
	}
	rest := steps[1:]

	text := leafText
	for i := len(rest) - 1; i >= 0; i-- {
		step := rest[i]
		if isDecimalUint(step) {
			text = "[" + step + ": " + text + "]"
		} else {
			text = "{" + step + ": " + text + "}"
		}
	}
	return text, nil
}

// Pointer is the resolved (type, location) a path resolves to inside a
// specific Value: the Reflective Walker's field-lookup machinery exposed
// to the host directly, without requiring the host to go through a
// composite literal to read (rather than patch) a single nested field.
type Pointer struct {
	Value *Value
	Type  *TypeDef
	buf   []byte
	off   uint32
}

// Bytes returns the raw atomic bytes the pointer addresses. Only valid
// when Type.Shape == ShapeAtomic.
func (p Pointer) Bytes() []byte {
	return p.buf[p.off : p.off+p.Type.Size]
}

// String dereferences an atomic string pointer to its content, "" for a
// null string. Only valid when Type.Atomic == AtomicString.
func (p Pointer) String() string {
	h := readU64(p.buf, p.off)
	if h == 0 {
		return ""
	}
	return p.Value.strings[h]
}

// ResolvePath walks path (whose leading segment must name t, or at least
// be consistent with it — the engine does not check the root label against
// t.Name, leaving that convention to the caller) inside v, returning the
// type and location of the addressed field/element.
func ResolvePath(v *Value, t *TypeDef, path string) (Pointer, error) {
	steps, err := tokenizePath(path)
	if err != nil {
		return Pointer{}, err
	}
	if len(steps) == 0 {
		return Pointer{}, wrapf(ErrUnknownField, "empty path")
	}
	rest := steps[1:]

	cur := loc{buf: v.buf, off: 0}
	curType := t
	for _, step := range rest {
		et, nl, err := fieldPtr(v, curType, cur, step)
		if err != nil {
			return Pointer{}, err
		}
		curType, cur = et, nl
	}
	return Pointer{Value: v, Type: curType, buf: cur.buf, off: cur.off}, nil
}
