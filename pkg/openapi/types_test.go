package openapi_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/davinci-dev/davinci/pkg/openapi"
)

func TestTypeFromReflect(t *testing.T) {
	type nested struct{}

	tests := []struct {
		name     string
		input    reflect.Type
		expected openapi.Type
	}{
		{"string", reflect.TypeFor[string](), openapi.String},
		{"bool", reflect.TypeFor[bool](), openapi.Boolean},
		{"int", reflect.TypeFor[int](), openapi.Number},
		{"uint16", reflect.TypeFor[uint16](), openapi.Number},
		{"float64", reflect.TypeFor[float64](), openapi.Number},
		{"time", reflect.TypeFor[time.Time](), openapi.Date},
		{"time pointer", reflect.TypeFor[*time.Time](), openapi.Date},
		{"bytes", reflect.TypeFor[[]byte](), openapi.String},
		{"string slice", reflect.TypeFor[[]string](), openapi.ArrayOf(openapi.String)},
		{"fixed array", reflect.TypeFor[[3]int](), openapi.ArrayOf(openapi.Number)},
		{"struct", reflect.TypeFor[nested](), openapi.ClassOf[nested]()},
		{"struct pointer slice", reflect.TypeFor[[]*nested](), openapi.ArrayOf(openapi.ClassOf[nested]())},
		{"map", reflect.TypeFor[map[string]any](), openapi.Object{}},
		{"func", reflect.TypeFor[func()](), nil},
		{"channel", reflect.TypeFor[chan int](), nil},
		{"interface", reflect.TypeFor[any](), nil},
		{"nil", nil, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, openapi.TypeFromReflect(tc.input))
		})
	}
}

func TestClass(t *testing.T) {
	type Named struct{}

	c := openapi.ClassOf[*Named]()
	assert.Equal(t, reflect.TypeFor[Named](), c.Type())
	assert.Equal(t, "Named", c.Name())
	assert.Equal(t, c, openapi.ClassFor(reflect.TypeFor[Named]()))

	assert.Empty(t, openapi.Class{}.Name())
	assert.Empty(t, openapi.ClassOf[struct{ A int }]().Name())
}
