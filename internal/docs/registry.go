package docs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/davinci-dev/davinci/pkg/openapi"
)

// Registry is a huma.Registry that keeps synthesized definitions in the order
// they were added and encodes them in that order. Schemas generated from Go
// types through Schema live in a nested huma map registry.
type Registry struct {
	defs  *openapi.Definitions
	types huma.Registry
}

var _ huma.Registry = (*Registry)(nil)

// NewRegistry creates an empty registry using ComponentsRefPrefix.
func NewRegistry() *Registry {
	return &Registry{
		defs:  openapi.NewDefinitions(),
		types: huma.NewMapRegistry(ComponentsRefPrefix, huma.DefaultSchemaNamer),
	}
}

// Set stores a definition under title, replacing an existing one in place.
func (r *Registry) Set(title string, s *openapi.Schema) {
	r.defs.Set(title, s)
}

// Definitions returns the synthesized definitions held by the registry.
func (r *Registry) Definitions() *openapi.Definitions {
	return r.defs
}

func (r *Registry) Schema(t reflect.Type, allowRef bool, hint string) *huma.Schema {
	return r.types.Schema(t, allowRef, hint)
}

func (r *Registry) SchemaFromRef(ref string) *huma.Schema {
	if title, ok := strings.CutPrefix(ref, ComponentsRefPrefix); ok {
		if s, ok := r.defs.Get(title); ok {
			return ToHuma(s)
		}
	}
	return r.types.SchemaFromRef(ref)
}

func (r *Registry) TypeFromRef(ref string) reflect.Type {
	return r.types.TypeFromRef(ref)
}

func (r *Registry) RegisterTypeAlias(t reflect.Type, alias reflect.Type) {
	r.types.RegisterTypeAlias(t, alias)
}

// Map returns every schema converted to the huma model. The returned map is a
// copy; use Set to change definitions.
func (r *Registry) Map() map[string]*huma.Schema {
	types := r.types.Map()
	out := make(map[string]*huma.Schema, len(types)+r.defs.Len())
	for name, s := range types {
		out[name] = s
	}
	for title, s := range r.defs.All() {
		out[title] = ToHuma(s)
	}
	return out
}

// MarshalJSON encodes type schemas sorted by name, then definitions in
// declaration order. Null nodes are encoded as empty schemas.
func (r *Registry) MarshalJSON() ([]byte, error) {
	var w jsonObject

	types := r.types.Map()
	names := make([]string, 0, len(types))
	for name := range types {
		if !r.defs.Has(name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	for _, name := range names {
		w.field(name, types[name])
	}
	for title, s := range r.defs.All() {
		w.field(title, emptyForNull(s))
	}
	return w.close()
}

// emptyForNull returns a copy of s where null nodes are replaced by {}.
func emptyForNull(s *openapi.Schema) *openapi.Schema {
	if s == nil {
		return &openapi.Schema{}
	}
	c := s.Clone()
	for node := range openapi.Traverse(c, nil) {
		for key, p := range node.Properties.All() {
			if p == nil {
				node.Properties.Set(key, &openapi.Schema{})
			}
		}
	}
	return c
}

// jsonObject writes a JSON object with keys in call order.
type jsonObject struct {
	buf bytes.Buffer
	n   int
	err error
}

func (w *jsonObject) field(key string, value any) {
	if w.err != nil {
		return
	}
	k, err := json.Marshal(key)
	if err != nil {
		w.err = err
		return
	}
	v, err := json.Marshal(value)
	if err != nil {
		w.err = fmt.Errorf("failed to encode %q: %w", key, err)
		return
	}

	if w.n == 0 {
		w.buf.WriteByte('{')
	} else {
		w.buf.WriteByte(',')
	}
	w.n++
	w.buf.Write(k)
	w.buf.WriteByte(':')
	w.buf.Write(v)
}

func (w *jsonObject) close() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	if w.n == 0 {
		return []byte("{}"), nil
	}
	w.buf.WriteByte('}')
	return w.buf.Bytes(), nil
}
