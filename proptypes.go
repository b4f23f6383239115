package composite

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Location names the kind of mapping a validator is checking.
type Location string

const (
	LocationProp         Location = "prop"
	LocationContext      Location = "context"
	LocationChildContext Location = "child context"
)

// Validator checks values[key] for componentName. A non-nil error is
// reported as a warning; it never aborts rendering.
type Validator interface {
	Validate(values map[string]any, key, componentName string, location Location) error
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(values map[string]any, key, componentName string, location Location) error

// Validate implements Validator.
func (f ValidatorFunc) Validate(values map[string]any, key, componentName string, location Location) error {
	return f(values, key, componentName, location)
}

// Descriptor summarises what a type checker accepts.
type Descriptor struct {
	Kind     string
	Required bool
	Enum     []any
	Elem     *Descriptor
	Fields   map[string]Descriptor
	Variants []Descriptor
	Rule     string
}

// Describer is implemented by validators that can describe their contract.
type Describer interface {
	Describe() Descriptor
}

type checkFunc func(value any, key, componentName string, location Location) error

// TypeChecker is the built-in Validator. The zero value accepts anything.
type TypeChecker struct {
	descriptor Descriptor
	check      checkFunc
}

// IsRequired returns a copy of t that also reports missing values.
func (t TypeChecker) IsRequired() TypeChecker {
	t.descriptor.Required = true
	return t
}

// Validate implements Validator.
func (t TypeChecker) Validate(values map[string]any, key, componentName string, location Location) error {
	value, ok := values[key]
	if !ok || isMissing(value) {
		if t.descriptor.Required {
			return fmt.Errorf("Required %s `%s` was not specified in `%s`.", location, key, componentName)
		}
		return nil
	}
	if t.check == nil {
		return nil
	}
	return t.check(value, key, componentName, location)
}

// Describe implements Describer.
func (t TypeChecker) Describe() Descriptor {
	return t.descriptor
}

func newChecker(descriptor Descriptor, check checkFunc) TypeChecker {
	return TypeChecker{descriptor: descriptor, check: check}
}

func primitiveChecker(expected string) TypeChecker {
	return newChecker(Descriptor{Kind: expected}, func(value any, key, componentName string, location Location) error {
		actual := kindOf(value)
		if actual != expected {
			return fmt.Errorf("Invalid %s `%s` of type `%s` supplied to `%s`, expected `%s`.",
				location, key, actual, componentName, expected)
		}
		return nil
	})
}

// PropTypes groups the built-in type checkers.
var PropTypes = struct {
	String  TypeChecker
	Number  TypeChecker
	Bool    TypeChecker
	Func    TypeChecker
	Object  TypeChecker
	Array   TypeChecker
	Any     TypeChecker
	Node    TypeChecker
	Element TypeChecker

	OneOf      func(values ...any) TypeChecker
	OneOfType  func(checkers ...TypeChecker) TypeChecker
	ArrayOf    func(elem TypeChecker) TypeChecker
	ObjectOf   func(elem TypeChecker) TypeChecker
	Shape      func(fields map[string]TypeChecker) TypeChecker
	InstanceOf func(class *Class) TypeChecker
}{
	String:  primitiveChecker("string"),
	Number:  primitiveChecker("number"),
	Bool:    primitiveChecker("boolean"),
	Func:    primitiveChecker("function"),
	Object:  primitiveChecker("object"),
	Array:   primitiveChecker("array"),
	Any:     newChecker(Descriptor{Kind: "any"}, nil),
	Node:    nodeChecker(),
	Element: elementChecker(),

	OneOf:      oneOfChecker,
	OneOfType:  oneOfTypeChecker,
	ArrayOf:    arrayOfChecker,
	ObjectOf:   objectOfChecker,
	Shape:      shapeChecker,
	InstanceOf: instanceOfChecker,
}

func nodeChecker() TypeChecker {
	return newChecker(Descriptor{Kind: "node"}, func(value any, key, componentName string, location Location) error {
		if !isRenderable(value) {
			return fmt.Errorf("Invalid %s `%s` supplied to `%s`, expected a renderable node.",
				location, key, componentName)
		}
		return nil
	})
}

func elementChecker() TypeChecker {
	return newChecker(Descriptor{Kind: "element"}, func(value any, key, componentName string, location Location) error {
		if _, ok := value.(*Element); !ok {
			return fmt.Errorf("Invalid %s `%s` supplied to `%s`, expected a single element.",
				location, key, componentName)
		}
		return nil
	})
}

func oneOfChecker(values ...any) TypeChecker {
	allowed := append([]any(nil), values...)
	return newChecker(Descriptor{Kind: "enum", Enum: allowed}, func(value any, key, componentName string, location Location) error {
		for _, candidate := range allowed {
			if reflect.DeepEqual(candidate, value) {
				return nil
			}
		}
		rendered := make([]string, len(allowed))
		for i, candidate := range allowed {
			rendered[i] = fmt.Sprintf("%v", candidate)
		}
		return fmt.Errorf("Invalid %s `%s` of value `%v` supplied to `%s`, expected one of [%s].",
			location, key, value, componentName, strings.Join(rendered, ","))
	})
}

func oneOfTypeChecker(checkers ...TypeChecker) TypeChecker {
	variants := make([]Descriptor, len(checkers))
	for i, checker := range checkers {
		variants[i] = checker.descriptor
	}
	return newChecker(Descriptor{Kind: "union", Variants: variants}, func(value any, key, componentName string, location Location) error {
		probe := map[string]any{key: value}
		for _, checker := range checkers {
			if checker.Validate(probe, key, componentName, location) == nil {
				return nil
			}
		}
		return fmt.Errorf("Invalid %s `%s` supplied to `%s`.", location, key, componentName)
	})
}

func arrayOfChecker(elem TypeChecker) TypeChecker {
	descriptor := elem.descriptor
	return newChecker(Descriptor{Kind: "array", Elem: &descriptor}, func(value any, key, componentName string, location Location) error {
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return fmt.Errorf("Invalid %s `%s` of type `%s` supplied to `%s`, expected an array.",
				location, key, kindOf(value), componentName)
		}
		for i := 0; i < rv.Len(); i++ {
			itemKey := fmt.Sprintf("%s[%d]", key, i)
			probe := map[string]any{itemKey: rv.Index(i).Interface()}
			if err := elem.Validate(probe, itemKey, componentName, location); err != nil {
				return err
			}
		}
		return nil
	})
}

func objectOfChecker(elem TypeChecker) TypeChecker {
	descriptor := elem.descriptor
	return newChecker(Descriptor{Kind: "object", Elem: &descriptor}, func(value any, key, componentName string, location Location) error {
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("Invalid %s `%s` of type `%s` supplied to `%s`, expected an object.",
				location, key, kindOf(value), componentName)
		}
		names := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			names = append(names, k.String())
		}
		slices.Sort(names)
		for _, name := range names {
			itemKey := key + "." + name
			probe := map[string]any{itemKey: rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key())).Interface()}
			if err := elem.Validate(probe, itemKey, componentName, location); err != nil {
				return err
			}
		}
		return nil
	})
}

func shapeChecker(fields map[string]TypeChecker) TypeChecker {
	described := make(map[string]Descriptor, len(fields))
	for name, checker := range fields {
		described[name] = checker.descriptor
	}
	return newChecker(Descriptor{Kind: "object", Fields: described}, func(value any, key, componentName string, location Location) error {
		values, ok := asMapping(value)
		if !ok || values == nil {
			return fmt.Errorf("Invalid %s `%s` of type `%s` supplied to `%s`, expected `object`.",
				location, key, kindOf(value), componentName)
		}
		for _, name := range sortedKeys(fields) {
			itemKey := key + "." + name
			probe := map[string]any{}
			if field, ok := values[name]; ok {
				probe[itemKey] = field
			}
			if err := fields[name].Validate(probe, itemKey, componentName, location); err != nil {
				return err
			}
		}
		return nil
	})
}

func instanceOfChecker(class *Class) TypeChecker {
	return newChecker(Descriptor{Kind: "instance"}, func(value any, key, componentName string, location Location) error {
		inst, ok := value.(*Instance)
		if !ok || inst.class != class {
			expected := "<<anonymous>>"
			if class != nil {
				expected = class.Name()
			}
			return fmt.Errorf("Invalid %s `%s` supplied to `%s`, expected instance of `%s`.",
				location, key, componentName, expected)
		}
		return nil
	})
}

func isRenderable(value any) bool {
	switch typed := value.(type) {
	case nil, string, bool, *Element:
		return true
	case []any:
		for _, item := range typed {
			if !isRenderable(item) {
				return false
			}
		}
		return true
	}
	return kindOf(value) == "number"
}

func isNilValidator(v Validator) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func, reflect.Pointer, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// checkTypes validates values against types in key order and returns one
// message per failure. ownerName adds the render attribution suffix.
func checkTypes(types map[string]Validator, values map[string]any, componentName, ownerName string, location Location) []string {
	var messages []string
	for _, key := range sortedKeys(types) {
		err := types[key].Validate(values, key, componentName, location)
		if err == nil {
			continue
		}
		message := "Warning: " + err.Error()
		if ownerName != "" {
			message += fmt.Sprintf(" Check the render method of `%s`.", ownerName)
		}
		messages = append(messages, message)
	}
	return messages
}
