package composite

import (
	"fmt"
	"reflect"
)

// Class is the immutable descriptor built once from a Spec and shared by
// every instance.
type Class struct {
	name              string
	spec              *CanonicalSpec
	propTypes         map[string]Validator
	contextTypes      map[string]Validator
	childContextTypes map[string]Validator
	statics           map[string]any
	members           map[string]any
	bindable          map[string]struct{}
}

// ClassOption configures class construction.
type ClassOption func(*classConfig)

type classConfig struct {
	warner Warner
}

// WithClassWarner routes build-time diagnostics, such as misspelled hook
// names, to warner.
func WithClassWarner(warner Warner) ClassOption {
	return func(cfg *classConfig) {
		cfg.warner = warner
	}
}

// CreateClass merges spec with its mixins and builds a Class.
func CreateClass(spec *Spec, opts ...ClassOption) (*Class, error) {
	canonical, err := MergeSpecs(spec)
	if err != nil {
		return nil, err
	}
	return Build(canonical, opts...)
}

// MustCreateClass is like CreateClass but panics on error. It simplifies
// package level class declarations.
func MustCreateClass(spec *Spec, opts ...ClassOption) *Class {
	class, err := CreateClass(spec, opts...)
	if err != nil {
		panic(err)
	}
	return class
}

// Build turns a canonical spec into a Class.
func Build(spec *CanonicalSpec, opts ...ClassOption) (*Class, error) {
	cfg := classConfig{warner: noopWarner{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.warner == nil {
		cfg.warner = noopWarner{}
	}
	if spec == nil || spec.Render == nil {
		return nil, invariant(ErrMissingRender, "createClass(...): Class specification must implement a `render` method.")
	}

	name := spec.DisplayName
	if err := validateTypeMap(name, spec.PropTypes, LocationProp); err != nil {
		return nil, err
	}
	if err := validateTypeMap(name, spec.ContextTypes, LocationContext); err != nil {
		return nil, err
	}
	if err := validateTypeMap(name, spec.ChildContextTypes, LocationChildContext); err != nil {
		return nil, err
	}
	if _, err := spec.defaultProps(); err != nil {
		return nil, err
	}

	class := &Class{
		name:              name,
		spec:              spec,
		propTypes:         copyValidators(spec.PropTypes),
		contextTypes:      copyValidators(spec.ContextTypes),
		childContextTypes: copyValidators(spec.ChildContextTypes),
		statics:           make(map[string]any, len(spec.Statics)),
		members:           make(map[string]any, len(spec.Members)),
		bindable:          map[string]struct{}{},
	}
	for key, value := range spec.Statics {
		class.statics[key] = value
	}
	for key, value := range spec.Members {
		if fn, ok := value.(func(*Instance, ...any) any); ok {
			value = Method(fn)
		}
		class.members[key] = value
		if _, ok := value.(Method); ok {
			class.bindable[key] = struct{}{}
		}
	}
	warnMisspelledHooks(cfg.warner, name, spec.Members)
	return class, nil
}

func validateTypeMap(name string, types map[string]Validator, location Location) error {
	for _, key := range sortedKeys(types) {
		if isNilValidator(types[key]) {
			return invariant(ErrInvalidTypeValidator, "%s: %s type `%s` is invalid; it must be a "+
				"function, usually from React.PropTypes.", classLabel(name), location, key)
		}
	}
	return nil
}

func classLabel(name string) string {
	if name == "" {
		return "<<anonymous>>"
	}
	return name
}

func copyValidators(in map[string]Validator) map[string]Validator {
	out := make(map[string]Validator, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

var misspelledHooks = []struct {
	wrong string
	right string
	extra string
}{
	{
		wrong: "componentShouldUpdate",
		right: "shouldComponentUpdate",
		extra: " The name is phrased as a question because the function is expected to return a value.",
	},
	{
		wrong: "componentWillRecieveProps",
		right: "componentWillReceiveProps",
	},
}

func warnMisspelledHooks(warner Warner, name string, members map[string]any) {
	subject := name
	if subject == "" {
		subject = "A component"
	}
	for _, hook := range misspelledHooks {
		if _, ok := members[hook.wrong]; !ok {
			continue
		}
		warner.Warn(fmt.Sprintf("%s has a method called %s(). Did you mean %s()?%s",
			subject, hook.wrong, hook.right, hook.extra))
	}
}

// Name returns the display name of the class.
func (c *Class) Name() string {
	if c == nil {
		return ""
	}
	return c.name
}

// Spec returns the canonical spec the class was built from.
func (c *Class) Spec() *CanonicalSpec {
	return c.spec
}

// Static returns the statics entry stored under key.
func (c *Class) Static(key string) (any, bool) {
	value, ok := c.statics[key]
	return value, ok
}

// CallStatic invokes a function valued statics entry with the class as
// receiver.
func (c *Class) CallStatic(key string, args ...any) (any, error) {
	value, ok := c.statics[key]
	if !ok {
		return nil, fmt.Errorf("composite: %s has no static %q", classLabel(c.name), key)
	}
	switch fn := value.(type) {
	case StaticFunc:
		return fn(c, args...), nil
	case func(*Class, ...any) any:
		return fn(c, args...), nil
	default:
		return nil, fmt.Errorf("composite: static %q of %s is not callable (%s)", key, classLabel(c.name), reflect.TypeOf(value))
	}
}

// DefaultProps evaluates the getDefaultProps chain. Every call returns a
// fresh mapping.
func (c *Class) DefaultProps() (Props, error) {
	return c.spec.defaultProps()
}

// PropTypes returns a copy of the declared prop validators.
func (c *Class) PropTypes() map[string]Validator {
	return copyValidators(c.propTypes)
}

// ContextTypes returns a copy of the declared context validators.
func (c *Class) ContextTypes() map[string]Validator {
	return copyValidators(c.contextTypes)
}

// ChildContextTypes returns a copy of the declared child context validators.
func (c *Class) ChildContextTypes() map[string]Validator {
	return copyValidators(c.childContextTypes)
}

// Members returns the member names in sorted order.
func (c *Class) Members() []string {
	return sortedKeys(c.members)
}

// AutoBound reports whether the member stored under name is bound to
// instances on construction.
func (c *Class) AutoBound(name string) bool {
	_, ok := c.bindable[name]
	return ok
}
