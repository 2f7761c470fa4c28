package compval

import (
	"strconv"
	"strings"
	"sync"
)

const registryCacheSize = 256

// Registry interns type definitions: Register validates a signature once
// and stores the resulting layout, so every later Parse/Serialize/Compare
// call resolves a type name to an already-built *TypeDef without
// re-parsing or re-laying-out anything.
//
// Storage is a two-tier generation cache: a hot "curr" generation and a
// "prev" generation, rotated when curr grows past max. Unlike a plan
// cache, entries here are never
// recomputed from a miss — a registered type is the source of truth for its
// name — so rotation only ever demotes an entry, never discards it; the
// structure is kept for texture and for the same bounded-hot-set benefit
// under a registry holding a very large number of type names.
type Registry struct {
	mu   sync.RWMutex
	curr map[string]*TypeDef
	prev map[string]*TypeDef
	max  int
}

// NewRegistry returns an empty registry ready for Register/Lookup/Resolve.
func NewRegistry() *Registry {
	return &Registry{
		curr: make(map[string]*TypeDef, registryCacheSize/2),
		prev: make(map[string]*TypeDef),
		max:  registryCacheSize,
	}
}

func (r *Registry) getLocked(name string) (*TypeDef, bool) {
	if t, ok := r.curr[name]; ok {
		return t, true
	}
	if t, ok := r.prev[name]; ok {
		return t, true
	}
	return nil, false
}

// get looks up a previously registered record by name, promoting it to the
// hot generation when found in the previous one.
func (r *Registry) get(name string) (*TypeDef, bool) {
	r.mu.RLock()
	if t, ok := r.curr[name]; ok {
		r.mu.RUnlock()
		return t, true
	}
	if t, ok := r.prev[name]; ok {
		r.mu.RUnlock()
		r.mu.Lock()
		if len(r.curr) >= r.max {
			r.prev = r.curr
			r.curr = make(map[string]*TypeDef, r.max/2)
		}
		r.curr[name] = t
		r.mu.Unlock()
		return t, true
	}
	r.mu.RUnlock()
	return nil, false
}

func (r *Registry) put(name string, t *TypeDef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.curr) >= r.max {
		r.prev = r.curr
		r.curr = make(map[string]*TypeDef, r.max/2)
	}
	r.curr[name] = t
}

// Lookup returns the TypeDef previously stored under name by Register, with
// no further resolution. It does not accept array suffixes or atomic
// keywords; use Resolve for a general type-name expression.
func (r *Registry) Lookup(name string) (*TypeDef, bool) {
	return r.get(name)
}

// Register validates signature, a ';'-separated list of "type name" field
// declarations (e.g. "int port; string ip; node[10] nodes"), computes its
// layout, and stores it under name. Registering an already-used name, or a
// signature naming an unresolvable field type, fails with
// ErrInvalidTypeDefinition and leaves the registry unchanged.
func (r *Registry) Register(name string, signature string) (*TypeDef, error) {
	if name == "" {
		return nil, wrapf(ErrInvalidTypeDefinition, "empty type name")
	}
	if isAtomicName(name) {
		return nil, wrapf(ErrInvalidTypeDefinition, "%q is a reserved atomic name", name)
	}
	r.mu.RLock()
	_, exists := r.getLocked(name)
	r.mu.RUnlock()
	if exists {
		return nil, wrapf(ErrInvalidTypeDefinition, "type %q already registered", name)
	}

	fields, err := r.parseSignature(signature)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, wrapf(ErrInvalidTypeDefinition, "type %q declares no fields", name)
	}

	size, align := computeRecordLayout(fields)
	t := &TypeDef{
		Name:      name,
		Signature: signature,
		Shape:     ShapeRecord,
		Fields:    fields,
		Size:      size,
		Align:     align,
	}
	r.put(name, t)
	return t, nil
}

func (r *Registry) parseSignature(signature string) ([]FieldDef, error) {
	var fields []FieldDef
	for _, raw := range strings.Split(signature, ";") {
		decl := strings.TrimSpace(raw)
		if decl == "" {
			continue
		}
		toks := strings.Fields(decl)
		if len(toks) != 2 {
			return nil, wrapf(ErrInvalidTypeDefinition, "malformed field declaration %q", decl)
		}
		typeTok, fieldName := toks[0], toks[1]
		ft, err := r.resolve(typeTok)
		if err != nil {
			return nil, err
		}
		for _, f := range fields {
			if f.Name == fieldName {
				return nil, wrapf(ErrInvalidTypeDefinition, "duplicate field name %q", fieldName)
			}
		}
		fields = append(fields, FieldDef{Name: fieldName, Type: ft})
	}
	return fields, nil
}

func isAtomicName(tok string) bool {
	switch tok {
	case "bool", "int", "real", "string":
		return true
	default:
		return false
	}
}

// Resolve turns any type-name expression — an atomic keyword, a registered
// record name, or either suffixed with one or more "[n]" / "[]" array
// markers — into its *TypeDef, resolving nested array markers from the
// outside in (the rightmost bracket pair is the outermost dimension).
func (r *Registry) Resolve(tok string) (*TypeDef, error) {
	return r.resolve(tok)
}

func (r *Registry) resolve(tok string) (*TypeDef, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return nil, wrapf(ErrInvalidTypeDefinition, "empty type name")
	}
	if strings.HasSuffix(tok, "]") {
		open := strings.LastIndexByte(tok, '[')
		if open < 0 {
			return nil, wrapf(ErrInvalidTypeDefinition, "unbalanced array suffix in %q", tok)
		}
		base := tok[:open]
		inner := tok[open+1 : len(tok)-1]
		elem, err := r.resolve(base)
		if err != nil {
			return nil, err
		}
		if inner == "" || inner == "0" {
			size, align, stride := computeArrayLayout(elem, 0, true)
			return &TypeDef{Name: tok, Shape: ShapeVarArray, Elem: elem, Size: size, Align: align, Stride: stride}, nil
		}
		n, err := strconv.Atoi(inner)
		if err != nil || n < 1 {
			return nil, wrapf(ErrInvalidTypeDefinition, "invalid array length %q in %q", inner, tok)
		}
		size, align, stride := computeArrayLayout(elem, n, false)
		return &TypeDef{Name: tok, Shape: ShapeFixedArray, Elem: elem, N: n, Size: size, Align: align, Stride: stride}, nil
	}

	switch tok {
	case "bool":
		return boolType, nil
	case "int":
		return intType, nil
	case "real":
		return realType, nil
	case "string":
		return strType, nil
	}

	if t, ok := r.get(tok); ok {
		return t, nil
	}
	return nil, wrapf(ErrInvalidTypeDefinition, "unknown type %q", tok)
}
