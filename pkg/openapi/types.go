package openapi

import (
	"reflect"
	"time"

	"github.com/davinci-dev/davinci/pkg/reflector"
)

// Type describes the type of a property or array element: a Primitive, an Array,
// a structural Object or a Class.
type Type interface {
	isType()
}

// Primitive is one of the four primitive markers.
type Primitive string

const (
	String  Primitive = "String"
	Number  Primitive = "Number"
	Boolean Primitive = "Boolean"
	Date    Primitive = "Date"
)

func (Primitive) isType() {}

func (p Primitive) valid() bool {
	switch p {
	case String, Number, Boolean, Date:
		return true
	}
	return false
}

// Array is an ordered sequence marker. Arrays are assumed homogeneous: only the
// first element type is inspected.
type Array []Type

func (Array) isType() {}

// ArrayOf returns an Array of elem.
func ArrayOf(elem Type) Array {
	return Array{elem}
}

// Field is a key of a structural Object.
type Field struct {
	Key  string
	Type Type
}

// Object is a plain structural object without class identity. It is always inlined.
type Object []Field

func (Object) isType() {}

// ObjectOf returns an Object with the given fields.
func ObjectOf(fields ...Field) Object {
	return Object(fields)
}

// Class is a reference to a registered Go type. Its identity is the type itself.
type Class struct {
	typ reflect.Type
}

func (Class) isType() {}

// ClassOf returns the Class for T.
func ClassOf[T any]() Class {
	return ClassFor(reflect.TypeFor[T]())
}

// ClassFor returns the Class for t. Pointer types are dereferenced.
func ClassFor(t reflect.Type) Class {
	return Class{typ: reflector.Target(t)}
}

// Type returns the underlying Go type.
func (c Class) Type() reflect.Type {
	return c.typ
}

// Name returns the Go type name, empty for anonymous structs.
func (c Class) Name() string {
	if c.typ == nil {
		return ""
	}
	return c.typ.Name()
}

var timeType = reflect.TypeFor[time.Time]()

// TypeFromReflect derives a Type from a declared Go type. It returns nil when the
// type has no schema representation (funcs, channels, interfaces...).
func TypeFromReflect(t reflect.Type) Type {
	t = reflector.Target(t)
	if t == nil {
		return nil
	}
	if t == timeType {
		return Date
	}

	switch t.Kind() {
	case reflect.String:
		return String
	case reflect.Bool:
		return Boolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return Number
	case reflect.Slice, reflect.Array:
		// encoding/json writes byte slices as base64 strings
		if t.Elem().Kind() == reflect.Uint8 {
			return String
		}
		return ArrayOf(TypeFromReflect(t.Elem()))
	case reflect.Struct:
		return ClassFor(t)
	case reflect.Map:
		return Object{}
	default:
		return nil
	}
}
