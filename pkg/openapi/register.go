package openapi

import (
	"reflect"
	"strings"

	"github.com/davinci-dev/davinci/pkg/reflector"
)

// Metadata namespaces written by registration and read by the synthesizer.
const (
	DefinitionKey reflector.Key = "davinci:openapi:definition"
	PropsKey      reflector.Key = "davinci:openapi:props"
	DesignTypeKey reflector.Key = "design:type"
)

// DefinitionOptions marks a type as a named, reusable definition.
type DefinitionOptions struct {
	Title       string
	Description string
	// Extensions are copied verbatim onto the stored definition.
	Extensions map[string]any
}

// PropOptions annotates a single property.
type PropOptions struct {
	// Type is the explicit property type.
	Type Type
	// TypeFactory produces the type lazily, for forward references between types.
	TypeFactory func() Type
	// RawType is emitted as-is, bypassing type resolution.
	RawType *Schema

	Required    bool
	Description string
}

// PropMetadata is an ordered property record attached to a type.
type PropMetadata struct {
	Key string
	// Options may be nil or return nil: the property then has no options and is
	// not required.
	Options func() *PropOptions
}

func (p PropMetadata) options() *PropOptions {
	if p.Options == nil {
		return nil
	}
	return p.Options()
}

// Definition attaches definition metadata to target.
func Definition(store *reflector.Store, target reflect.Type, opts DefinitionOptions) {
	store.DefineMetadata(DefinitionKey, opts, target)
}

// Prop appends a property record to target. A nil opts records a property with
// no options.
func Prop(store *reflector.Store, target reflect.Type, key string, opts *PropOptions) {
	var factory func() *PropOptions
	if opts != nil {
		o := *opts
		factory = func() *PropOptions { return &o }
	}
	PropFactory(store, target, key, factory)
}

// PropFactory appends a property record whose options are produced by factory.
// Declaring the same key twice replaces the earlier record in place.
func PropFactory(store *reflector.Store, target reflect.Type, key string, factory func() *PropOptions) {
	record := PropMetadata{Key: key, Options: factory}
	store.Update(PropsKey, target, func(current any) any {
		existing, _ := current.([]PropMetadata)
		props := make([]PropMetadata, 0, len(existing)+1)
		replaced := false
		for _, p := range existing {
			if p.Key == key {
				props = append(props, record)
				replaced = true
				continue
			}
			props = append(props, p)
		}
		if !replaced {
			props = append(props, record)
		}
		return props
	})
}

// RegisterOption configures a Register call.
type RegisterOption func(r *registration)

type registration struct {
	store  *reflector.Store
	target reflect.Type
	fields map[string]reflect.StructField
	order  []string
}

// WithDefinition marks the registered type as a named definition.
func WithDefinition(opts DefinitionOptions) RegisterOption {
	return func(r *registration) {
		Definition(r.store, r.target, opts)
	}
}

// WithProp records a property with static options.
func WithProp(key string, opts PropOptions) RegisterOption {
	return func(r *registration) {
		Prop(r.store, r.target, key, &opts)
	}
}

// WithPropFactory records a property whose options are produced lazily.
func WithPropFactory(key string, factory func() *PropOptions) RegisterOption {
	return func(r *registration) {
		PropFactory(r.store, r.target, key, factory)
	}
}

// WithTaggedProps records a property for every field carrying an `openapi` tag.
//
// Supported tag items:
//
//	openapi:"required"
//	openapi:"description=Primary phone"
//	openapi:"-"            (field is skipped)
//
// An empty tag (`openapi:""`) records the property with no options.
func WithTaggedProps() RegisterOption {
	return func(r *registration) {
		for _, name := range r.order {
			field := r.fields[name]
			tag, ok := field.Tag.Lookup("openapi")
			if !ok || tag == "-" {
				continue
			}
			opts := parseOpenAPITag(tag)
			Prop(r.store, r.target, name, opts)
		}
	}
}

// Register records the declared field types of T for reflection fallback and
// applies the given options. It returns the registered type.
func Register[T any](store *reflector.Store, opts ...RegisterOption) reflect.Type {
	target := reflector.Target(reflect.TypeFor[T]())
	r := &registration{
		store:  store,
		target: target,
		fields: make(map[string]reflect.StructField),
	}

	if target.Kind() == reflect.Struct {
		for _, f := range encodedFields(target) {
			store.DefinePropertyMetadata(DesignTypeKey, f.field.Type, target, f.name)
			r.fields[f.name] = f.field
			r.order = append(r.order, f.name)
		}
	}

	for _, opt := range opts {
		opt(r)
	}
	return target
}

type encodedField struct {
	name  string
	field reflect.StructField
	depth int
}

// encodedFields lists the fields encoding/json writes for t in declaration
// order. Fields of embedded structs without a json name are promoted; a name
// declared at a shallower depth hides deeper ones.
func encodedFields(t reflect.Type) []encodedField {
	var all []encodedField
	collectFields(t, 0, map[reflect.Type]bool{}, &all)

	shallowest := make(map[string]int, len(all))
	for _, f := range all {
		if d, ok := shallowest[f.name]; !ok || f.depth < d {
			shallowest[f.name] = f.depth
		}
	}

	fields := make([]encodedField, 0, len(all))
	seen := make(map[string]bool, len(all))
	for _, f := range all {
		if f.depth != shallowest[f.name] || seen[f.name] {
			continue
		}
		seen[f.name] = true
		fields = append(fields, f)
	}
	return fields
}

func collectFields(t reflect.Type, depth int, path map[reflect.Type]bool, out *[]encodedField) {
	if path[t] {
		return
	}
	path[t] = true
	defer delete(path, t)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous && field.Tag.Get("json") != "-" {
			embedded := field.Type
			if embedded.Kind() == reflect.Pointer {
				embedded = embedded.Elem()
			}
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "" && embedded.Kind() == reflect.Struct {
				collectFields(embedded, depth+1, path, out)
				continue
			}
		}
		if !field.IsExported() {
			continue
		}
		name, ok := jsonFieldName(field)
		if !ok {
			continue
		}
		*out = append(*out, encodedField{name: name, field: field, depth: depth})
	}
}

// jsonFieldName returns the encoded name of field, false when it is skipped.
func jsonFieldName(field reflect.StructField) (string, bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}
	return name, true
}

func parseOpenAPITag(tag string) *PropOptions {
	if tag == "" {
		return nil
	}
	opts := &PropOptions{}
	// description is always the last item so that it may contain commas
	if before, desc, ok := strings.Cut(tag, "description="); ok {
		opts.Description = desc
		tag = before
	}
	for _, item := range strings.Split(tag, ",") {
		if strings.TrimSpace(item) == "required" {
			opts.Required = true
		}
	}
	return opts
}
