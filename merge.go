package composite

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-composite/layering"
)

// Contribution pairs a chained hook with the spec that declared it.
type Contribution[F any] struct {
	Source string
	Fn     F
}

// CanonicalSpec is the result of merging a spec with all of its mixins. Hook
// chains are kept in merge order so builders can detect clashing keys.
type CanonicalSpec struct {
	DisplayName string
	Sources     []string

	Render                RenderFunc
	ShouldComponentUpdate ShouldUpdateFunc

	GetInitialState           []Contribution[InitialStateFunc]
	GetDefaultProps           []Contribution[DefaultPropsFunc]
	GetChildContext           []Contribution[ChildContextFunc]
	ComponentWillMount        []Contribution[LifecycleFunc]
	ComponentDidMount         []Contribution[LifecycleFunc]
	ComponentWillReceiveProps []Contribution[ReceivePropsFunc]
	ComponentWillUpdate       []Contribution[WillUpdateFunc]
	ComponentDidUpdate        []Contribution[DidUpdateFunc]
	ComponentWillUnmount      []Contribution[LifecycleFunc]

	PropTypes         map[string]Validator
	ContextTypes      map[string]Validator
	ChildContextTypes map[string]Validator

	Statics map[string]any
	Members map[string]any

	memberSources map[string]string
	staticSources map[string]string
	renderSource  string
	shouldSource  string
}

type specSource struct {
	spec  *Spec
	label string
	base  bool
}

// MergeSpecs flattens base.Mixins recursively and merges every fragment, in
// declaration order, followed by base itself.
func MergeSpecs(base *Spec) (*CanonicalSpec, error) {
	if base == nil {
		return nil, invariant(ErrMissingRender, "createClass(...): Class specification must be provided.")
	}
	sources, err := flattenSpecs(base)
	if err != nil {
		return nil, err
	}

	out := &CanonicalSpec{
		DisplayName:       base.DisplayName,
		PropTypes:         map[string]Validator{},
		ContextTypes:      map[string]Validator{},
		ChildContextTypes: map[string]Validator{},
		Statics:           map[string]any{},
		Members:           map[string]any{},
		memberSources:     map[string]string{},
		staticSources:     map[string]string{},
	}
	for _, source := range sources {
		if err := out.apply(source); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func flattenSpecs(base *Spec) ([]specSource, error) {
	var (
		out     []specSource
		seen    = map[*Spec]struct{}{}
		counter int
	)
	var visit func(mixins []any) error
	visit = func(mixins []any) error {
		for _, raw := range mixins {
			spec, err := asMixin(raw)
			if err != nil {
				return err
			}
			if spec == nil {
				continue
			}
			if _, dup := seen[spec]; dup {
				continue
			}
			seen[spec] = struct{}{}
			if err := visit(spec.Mixins); err != nil {
				return err
			}
			counter++
			label := spec.DisplayName
			if label == "" {
				label = fmt.Sprintf("mixin #%d", counter)
			}
			out = append(out, specSource{spec: spec, label: label})
		}
		return nil
	}
	seen[base] = struct{}{}
	if err := visit(base.Mixins); err != nil {
		return nil, err
	}
	out = append(out, specSource{spec: base, label: "spec", base: true})
	return out, nil
}

func asMixin(raw any) (*Spec, error) {
	switch mixin := raw.(type) {
	case nil:
		return nil, nil
	case *Spec:
		return mixin, nil
	case Spec:
		return &mixin, nil
	case *Class:
		return nil, invariant(ErrInvalidMixin, "ReactClass: You're attempting to use a component "+
			"class as a mixin. Instead, just use a regular object.")
	case *Element, *Instance, *HostComponent:
		return nil, invariant(ErrInvalidMixin, "ReactClass: You're attempting to use a component "+
			"as a mixin. Instead, just use a regular object.")
	default:
		return nil, invariant(ErrInvalidMixin, "ReactClass: mixin of type %T is not supported; "+
			"mixins must be specs.", raw)
	}
}

func (c *CanonicalSpec) apply(source specSource) error {
	spec := source.spec
	c.Sources = append(c.Sources, source.label)
	if c.DisplayName == "" && spec.DisplayName != "" {
		c.DisplayName = spec.DisplayName
	}

	if spec.Render != nil {
		if c.Render != nil {
			return duplicateDefinition("render", c.renderSource, source.label)
		}
		c.Render = spec.Render
		c.renderSource = source.label
	}
	if spec.ShouldComponentUpdate != nil {
		if c.ShouldComponentUpdate != nil {
			return duplicateDefinition("shouldComponentUpdate", c.shouldSource, source.label)
		}
		c.ShouldComponentUpdate = spec.ShouldComponentUpdate
		c.shouldSource = source.label
	}

	label := source.label
	if spec.GetInitialState != nil {
		c.GetInitialState = append(c.GetInitialState, Contribution[InitialStateFunc]{label, spec.GetInitialState})
	}
	if spec.GetDefaultProps != nil {
		c.GetDefaultProps = append(c.GetDefaultProps, Contribution[DefaultPropsFunc]{label, spec.GetDefaultProps})
	}
	if spec.GetChildContext != nil {
		c.GetChildContext = append(c.GetChildContext, Contribution[ChildContextFunc]{label, spec.GetChildContext})
	}
	if spec.ComponentWillMount != nil {
		c.ComponentWillMount = append(c.ComponentWillMount, Contribution[LifecycleFunc]{label, spec.ComponentWillMount})
	}
	if spec.ComponentDidMount != nil {
		c.ComponentDidMount = append(c.ComponentDidMount, Contribution[LifecycleFunc]{label, spec.ComponentDidMount})
	}
	if spec.ComponentWillReceiveProps != nil {
		c.ComponentWillReceiveProps = append(c.ComponentWillReceiveProps, Contribution[ReceivePropsFunc]{label, spec.ComponentWillReceiveProps})
	}
	if spec.ComponentWillUpdate != nil {
		c.ComponentWillUpdate = append(c.ComponentWillUpdate, Contribution[WillUpdateFunc]{label, spec.ComponentWillUpdate})
	}
	if spec.ComponentDidUpdate != nil {
		c.ComponentDidUpdate = append(c.ComponentDidUpdate, Contribution[DidUpdateFunc]{label, spec.ComponentDidUpdate})
	}
	if spec.ComponentWillUnmount != nil {
		c.ComponentWillUnmount = append(c.ComponentWillUnmount, Contribution[LifecycleFunc]{label, spec.ComponentWillUnmount})
	}

	for key, validator := range spec.PropTypes {
		c.PropTypes[key] = validator
	}
	for key, validator := range spec.ContextTypes {
		c.ContextTypes[key] = validator
	}
	for key, validator := range spec.ChildContextTypes {
		c.ChildContextTypes[key] = validator
	}

	for _, key := range sortedKeys(spec.Statics) {
		if IsReservedName(key) {
			return invariant(ErrReservedName, "ReactClass: You are attempting to define a reserved "+
				"property, `%s`, that shouldn't be on the \"statics\" key. Define it as an instance "+
				"property instead; it will still be accessible on the constructor.", key)
		}
		if first, exists := c.staticSources[key]; exists {
			return duplicateDefinition(key, first, label)
		}
		c.Statics[key] = spec.Statics[key]
		c.staticSources[key] = label
	}

	for _, key := range sortedKeys(spec.Members) {
		if IsReservedName(key) {
			return invariant(ErrReservedName, "ReactClass: You are attempting to define a reserved "+
				"property, `%s`, as a member. Use the matching Spec field instead.", key)
		}
		if first, exists := c.memberSources[key]; exists && !source.base {
			return duplicateDefinition(key, first, label)
		}
		c.Members[key] = spec.Members[key]
		c.memberSources[key] = label
	}
	return nil
}

// initialState runs the getInitialState chain, merging every mapping into a
// fresh State. Returned maps are never mutated.
func (c *CanonicalSpec) initialState(inst *Instance, name string) (State, error) {
	if len(c.GetInitialState) == 0 {
		return nil, nil
	}
	var (
		merged  State
		sources = map[string]string{}
	)
	for _, contribution := range c.GetInitialState {
		result := contribution.Fn(inst)
		values, ok := asMapping(result)
		if !ok {
			return nil, invariant(ErrInvalidState, "%s.getInitialState(): must return an object or null", name)
		}
		if values == nil {
			continue
		}
		if merged == nil {
			merged = State{}
		}
		if err := mergeResult(merged, values, sources, contribution.Source); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// defaultProps runs the getDefaultProps chain without any receiver.
func (c *CanonicalSpec) defaultProps() (Props, error) {
	if len(c.GetDefaultProps) == 0 {
		return nil, nil
	}
	merged := Props{}
	sources := map[string]string{}
	for _, contribution := range c.GetDefaultProps {
		values := contribution.Fn()
		if values == nil {
			continue
		}
		if err := mergeResult(merged, values, sources, contribution.Source); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// childContext runs the getChildContext chain.
func (c *CanonicalSpec) childContext(inst *Instance) (ContextMap, error) {
	if len(c.GetChildContext) == 0 {
		return nil, nil
	}
	merged := ContextMap{}
	sources := map[string]string{}
	for _, contribution := range c.GetChildContext {
		values := contribution.Fn(inst)
		if values == nil {
			continue
		}
		if err := mergeResult(merged, values, sources, contribution.Source); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

func mergeResult[M ~map[string]any, S ~map[string]any](dst M, src S, sources map[string]string, label string) error {
	if err := layering.MergeUnique(map[string]any(dst), map[string]any(src)); err != nil {
		var dup *layering.DuplicateKeyError
		if errors.As(err, &dup) {
			return duplicateResultKey(dup.Key, sources[dup.Key], label)
		}
		return err
	}
	for key := range src {
		sources[key] = label
	}
	return nil
}

func asMapping(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case nil:
		return nil, true
	case State:
		return map[string]any(typed), true
	case map[string]any:
		return typed, true
	case Props:
		return map[string]any(typed), true
	case ContextMap:
		return map[string]any(typed), true
	default:
		return nil, false
	}
}
