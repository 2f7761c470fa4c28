package compval

import "strconv"

// AtomicCodec converts between an atomic value's in-memory form and its
// textual token — bool/int/real parsing and formatting is assumed provided
// by the host rather than fixed by the engine. Parse and Serialize
// take one as a dependency so a caller can swap in a codec with different
// numeric formatting (fixed precision, locale-aware, hex integers) without
// touching the grammar or the walker.
type AtomicCodec interface {
	ParseBool(tok string) (bool, error)
	ParseInt(tok string) (int64, error)
	ParseReal(tok string) (float64, error)
	FormatBool(v bool) string
	FormatInt(v int64) string
	FormatReal(v float64) string
}

// DefaultCodec is the engine's built-in AtomicCodec: Go's own strconv
// conventions for every numeric kind, and the literal tokens "true"/"false"
// for bool.
type DefaultCodec struct{}

func (DefaultCodec) ParseBool(tok string) (bool, error) {
	switch tok {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, wrapf(ErrAtomicParseFailure, "invalid bool token %q", tok)
	}
}

func (DefaultCodec) ParseInt(tok string) (int64, error) {
	v, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, wrapf(ErrAtomicParseFailure, "invalid int token %q", tok)
	}
	return v, nil
}

func (DefaultCodec) ParseReal(tok string) (float64, error) {
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, wrapf(ErrAtomicParseFailure, "invalid real token %q", tok)
	}
	return v, nil
}

func (DefaultCodec) FormatBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func (DefaultCodec) FormatInt(v int64) string { return strconv.FormatInt(v, 10) }

func (DefaultCodec) FormatReal(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
