package compval

import (
	"gopkg.in/yaml.v3"
)

// defaultExpandArrayViewThreshold is the variable-array length at and above
// which Serialize prefers the extended "{size: N, data: [...]}" form over
// the compact "[...]" form.
const defaultExpandArrayViewThreshold = 3

// Config bundles the engine's pluggable boundaries: the atomic codec, the
// buffer allocator, a diagnostics sink, and the serializer's array-view
// threshold — a small struct of overridable knobs, each with a sensible
// default.
type Config struct {
	Codec                    AtomicCodec
	Allocator                Allocator
	Reporter                 Reporter
	ExpandArrayViewThreshold int
}

// defaultConfig fills in zero-valued fields of the first supplied Config
// (or an empty Config, if none is given) with the engine's defaults.
func defaultConfig(cfg ...Config) Config {
	var c Config
	if len(cfg) > 0 {
		c = cfg[0]
	}
	if c.Codec == nil {
		c.Codec = DefaultCodec{}
	}
	if c.Allocator == nil {
		c.Allocator = sliceAllocator{}
	}
	if c.Reporter == nil {
		c.Reporter = NopReporter{}
	}
	if c.ExpandArrayViewThreshold <= 0 {
		c.ExpandArrayViewThreshold = defaultExpandArrayViewThreshold
	}
	return c
}

// Engine bundles a Registry with a Config: the single entry point a caller
// constructs once and reuses concurrently for every
// Register/Parse/Serialize call.
type Engine struct {
	registry *Registry
	config   Config
}

// NewEngine returns a ready-to-use Engine with an empty Registry.
// Optionally provide a Config; unspecified fields fall back to defaults.
func NewEngine(cfg ...Config) *Engine {
	return &Engine{registry: NewRegistry(), config: defaultConfig(cfg...)}
}

// Registry exposes the engine's type registry directly, for callers that
// want to Lookup/Resolve without going through Register/Parse.
func (e *Engine) Registry() *Registry { return e.registry }

// Register interns a new record type's signature.
func (e *Engine) Register(name, signature string) (*TypeDef, error) {
	return e.registry.Register(name, signature)
}

// Parse parses text against t, patching previous if given.
func (e *Engine) Parse(text string, t *TypeDef, previous *Value) (*Value, error) {
	return Parse(e.config, text, t, previous)
}

// Serialize renders v (of type t) back to text, in pretty or wire mode.
func (e *Engine) Serialize(v *Value, t *TypeDef, wire bool) string {
	return Serialize(e.config, v, t, wire)
}

// Manifest is the YAML document shape LoadManifest accepts: an ordered list
// of named type signatures, registered in file order.
type Manifest struct {
	Types []ManifestType `yaml:"types"`
}

// ManifestType is one entry of a Manifest.
type ManifestType struct {
	Name      string `yaml:"name"`
	Signature string `yaml:"signature"`
}

// LoadManifest parses data as a YAML Manifest and registers each of its
// types in file order, stopping at the first registration failure (leaving
// every type registered before it intact, and none of the remainder
// registered).
func (e *Engine) LoadManifest(data []byte) error {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return wrapf(ErrInvalidTypeDefinition, "manifest: %v", err)
	}
	for _, mt := range m.Types {
		if _, err := e.registry.Register(mt.Name, mt.Signature); err != nil {
			return err
		}
	}
	return nil
}
