package composite

import (
	"fmt"
	"reflect"
	"slices"
)

// Props is the owner supplied mapping of a component or host node.
type Props map[string]any

// State is the mapping owned by a component instance. A nil State models a
// component without state.
type State map[string]any

// ContextMap is a resolved, read-only context mapping.
type ContextMap map[string]any

type undefinedValue struct{}

func (undefinedValue) String() string { return "undefined" }

// Undefined marks a prop as explicitly unset. It is replaced by the declared
// default, or dropped, when props are committed. A nil value is preserved.
var Undefined any = undefinedValue{}

// IsUndefined reports whether value is the Undefined marker.
func IsUndefined(value any) bool {
	_, ok := value.(undefinedValue)
	return ok
}

// isMissing reports whether a type checker should treat value as absent.
func isMissing(value any) bool {
	return value == nil || IsUndefined(value)
}

// Get returns the value stored under key.
func (p Props) Get(key string) any {
	return p[key]
}

// String returns the value under key when it is a string.
func (p Props) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Bool returns the value under key when it is a bool.
func (p Props) Bool(key string) bool {
	b, _ := p[key].(bool)
	return b
}

// Children returns the children passed to a composite element.
func (p Props) Children() []any {
	children, _ := p[childrenKey].([]any)
	return children
}

// Get returns the value stored under key.
func (s State) Get(key string) any {
	return s[key]
}

// Bool returns the value under key when it is a bool.
func (s State) Bool(key string) bool {
	b, _ := s[key].(bool)
	return b
}

// Get returns the value stored under key.
func (c ContextMap) Get(key string) any {
	return c[key]
}

const childrenKey = "children"

// kindOf names the kind of value using the vocabulary found in diagnostics.
func kindOf(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case undefinedValue:
		return "undefined"
	case *Element:
		return "object"
	case Method, BoundMethod:
		return "function"
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Func:
		return "function"
	case reflect.Map, reflect.Struct, reflect.Pointer, reflect.Interface:
		return "object"
	default:
		return fmt.Sprintf("go:%s", rv.Type())
	}
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
