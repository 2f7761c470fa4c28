// Package compval is a dynamic composite-value engine for a configuration
// subsystem: operators register named record/array type signatures, and the
// engine parses textual literal assignments into native in-memory layouts,
// serializes those layouts back to text, compares, clones, incrementally
// patches them through dotted/indexed paths, and releases their transitively
// allocated memory.

package compval
