// Package openapi synthesizes JSON Schema / OpenAPI definitions from registered
// Go types.
//
// Types are registered once, at package initialization, through [Register] or the
// lower-level [Definition] and [Prop] helpers. A [Synthesizer] then walks a root
// type and produces its schema together with a map of named definitions:
//
//   - types registered with definition metadata become named definitions and are
//     referenced with {"$ref": title} at every use site;
//   - types without definition metadata are inlined at every use site;
//   - cyclic type graphs terminate because a named definition is registered before
//     its properties are walked.
//
// Synthesis never fails: anything that cannot be resolved becomes a null schema.
package openapi

import (
	"reflect"
	"strings"

	"github.com/davinci-dev/davinci/pkg/reflector"
)

// MetadataProvider is the read-only view of the metadata store used by the synthesizer.
type MetadataProvider interface {
	GetMetadata(key reflector.Key, target reflect.Type) any
	GetPropertyMetadata(key reflector.Key, target reflect.Type, property string) any
}

// Result is the output of a synthesis call.
type Result struct {
	// Schema is the root node. For a named root it is a reference; the body lives
	// in Definitions.
	Schema      *Schema
	Definitions *Definitions

	refPrefix string
}

// Root returns the root body, dereferencing a reference root through Definitions.
func (r Result) Root() *Schema {
	if !r.Schema.IsRef() {
		return r.Schema
	}
	s, _ := r.Definitions.Get(strings.TrimPrefix(r.Schema.Ref, r.refPrefix))
	return s
}

// Synthesizer turns registered types into schemas. It is stateless between calls
// and may be shared; each call owns its definitions accumulator.
type Synthesizer struct {
	provider  MetadataProvider
	refPrefix string
}

// Option configures a Synthesizer.
type Option func(s *Synthesizer)

// WithRefPrefix sets the prefix of emitted references, e.g. "#/components/schemas/".
// The default emits the bare title.
func WithRefPrefix(prefix string) Option {
	return func(s *Synthesizer) {
		s.refPrefix = prefix
	}
}

// NewSynthesizer creates a Synthesizer reading metadata from provider.
func NewSynthesizer(provider MetadataProvider, opts ...Option) *Synthesizer {
	s := &Synthesizer{provider: provider}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RefPrefix returns the configured reference prefix.
func (s *Synthesizer) RefPrefix() string {
	return s.refPrefix
}

// Synthesize resolves root into a fresh definitions map.
func (s *Synthesizer) Synthesize(root Type) Result {
	return s.SynthesizeInto(root, NewDefinitions())
}

// SynthesizeInto resolves root, accumulating named definitions into defs.
// defs must not be used concurrently by another synthesis.
func (s *Synthesizer) SynthesizeInto(root Type, defs *Definitions) Result {
	if defs == nil {
		defs = NewDefinitions()
	}
	w := &walker{s: s, defs: defs}
	return Result{
		Schema:      w.resolve(root, ""),
		Definitions: defs,
		refPrefix:   s.refPrefix,
	}
}

// ExtractDefinitions returns only the definitions reachable from root, or an empty
// map when root is nil.
func (s *Synthesizer) ExtractDefinitions(root Type) *Definitions {
	if isAbsent(root) {
		return NewDefinitions()
	}
	return s.Synthesize(root).Definitions
}

func isAbsent(t Type) bool {
	if t == nil {
		return true
	}
	c, ok := t.(Class)
	return ok && c.typ == nil
}

// walker carries the accumulator through one synthesis call.
type walker struct {
	s    *Synthesizer
	defs *Definitions
}

func (w *walker) ref(title string) *Schema {
	return &Schema{Ref: w.s.refPrefix + title}
}

func (w *walker) resolve(t Type, hint string) *Schema {
	switch typ := t.(type) {
	case Primitive:
		if !typ.valid() {
			return nil
		}
		if typ == Date {
			return &Schema{Type: "string", Format: "date-time"}
		}
		return &Schema{Type: strings.ToLower(string(typ))}
	case Array:
		var elem Type
		if len(typ) > 0 {
			elem = typ[0]
		}
		return &Schema{Type: "array", Items: w.resolve(elem, hint)}
	case Object:
		properties := NewSchemaMap()
		for _, f := range typ {
			properties.Set(f.Key, w.resolve(f.Type, ""))
		}
		s := &Schema{Type: "object"}
		if properties.Len() > 0 {
			s.Properties = properties
		}
		return s
	case Class:
		if typ.typ == nil {
			return nil
		}
		return w.resolveClass(typ, hint)
	default:
		return nil
	}
}

func (w *walker) resolveClass(c Class, hint string) *Schema {
	meta, hasTitle := w.definitionOptions(c.typ)

	title := c.Name()
	switch {
	case hasTitle && meta.Title != "":
		title = meta.Title
	case !hasTitle && hint != "":
		title = hint
	}

	if hasTitle && w.defs.Has(title) {
		return w.ref(title)
	}

	def := &Schema{Type: "object"}
	if hasTitle {
		def.Description = meta.Description
		if len(meta.Extensions) > 0 {
			def.Extensions = cloneValue(meta.Extensions).(map[string]any)
		}
		// Registered before walking properties: a cyclic reference back to this
		// type must find it and stop at a $ref.
		w.defs.Set(title, def)
	}

	if strings.ToLower(title) != "object" {
		def.Title = title
	}

	props, _ := w.s.provider.GetMetadata(PropsKey, c.typ).([]PropMetadata)
	properties := NewSchemaMap()
	var required []string
	for _, p := range props {
		opts := p.options()
		properties.Set(p.Key, w.resolveProp(c.typ, p.Key, opts))
		if opts != nil && opts.Required {
			required = append(required, p.Key)
		}
	}
	if properties.Len() > 0 {
		def.Properties = properties
	}
	if len(required) > 0 {
		def.Required = required
	}

	if hasTitle {
		w.defs.Set(title, def)
		return w.ref(title)
	}
	return def
}

func (w *walker) definitionOptions(t reflect.Type) (DefinitionOptions, bool) {
	switch meta := w.s.provider.GetMetadata(DefinitionKey, t).(type) {
	case DefinitionOptions:
		return meta, true
	case *DefinitionOptions:
		if meta != nil {
			return *meta, true
		}
	}
	return DefinitionOptions{}, false
}

func (w *walker) resolveProp(owner reflect.Type, key string, opts *PropOptions) *Schema {
	if opts != nil && opts.RawType != nil {
		return opts.RawType.Clone()
	}

	var t Type
	switch {
	case opts != nil && opts.Type != nil:
		t = opts.Type
	case opts != nil && opts.TypeFactory != nil:
		t = opts.TypeFactory()
	default:
		if declared, ok := w.s.provider.GetPropertyMetadata(DesignTypeKey, owner, key).(reflect.Type); ok {
			t = TypeFromReflect(declared)
		}
	}

	node := w.resolve(t, key)
	if node != nil && !node.IsRef() && opts != nil && opts.Description != "" {
		node.Description = opts.Description
	}
	return node
}

var defaultSynthesizer = NewSynthesizer(reflector.Default())

// Synthesize resolves root against the default metadata store.
func Synthesize(root Type) Result {
	return defaultSynthesizer.Synthesize(root)
}

// ExtractDefinitions returns the definitions reachable from root using the default
// metadata store, or an empty map when root is nil.
func ExtractDefinitions(root Type) *Definitions {
	return defaultSynthesizer.ExtractDefinitions(root)
}

// SchemaFor synthesizes T using the default metadata store.
func SchemaFor[T any]() Result {
	return Synthesize(ClassOf[T]())
}
