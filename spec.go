package composite

// RenderFunc produces the description tree of a component. A nil element
// renders nothing.
type RenderFunc func(c *Instance) (*Element, error)

// InitialStateFunc returns the initial state contribution of a spec. Accepted
// results are State, map[string]any and nil; any other shape is rejected.
type InitialStateFunc func(c *Instance) any

// DefaultPropsFunc returns default props. It runs without a receiver so it
// cannot observe instance members.
type DefaultPropsFunc func() Props

// ChildContextFunc returns the context an instance contributes to its
// descendants.
type ChildContextFunc func(c *Instance) ContextMap

// LifecycleFunc is the signature of the notification hooks.
type LifecycleFunc func(c *Instance)

// ReceivePropsFunc runs before new props are committed.
type ReceivePropsFunc func(c *Instance, nextProps Props, nextContext ContextMap)

// ShouldUpdateFunc gates re-rendering.
type ShouldUpdateFunc func(c *Instance, nextProps Props, nextState State, nextContext ContextMap) UpdateDecision

// WillUpdateFunc runs right before the next values are committed.
type WillUpdateFunc func(c *Instance, nextProps Props, nextState State, nextContext ContextMap)

// DidUpdateFunc runs after the re-rendered tree was reconciled.
type DidUpdateFunc func(c *Instance, prevProps Props, prevState State, prevContext ContextMap)

// Method is a plain spec member. Unless wrapped with DoNotBind it is bound
// to every instance on construction.
type Method func(c *Instance, args ...any) any

// BoundMethod is a Method captured together with its instance.
type BoundMethod func(args ...any) any

// StaticFunc is a statics entry invoked with the class as receiver.
type StaticFunc func(class *Class, args ...any) any

type unboundMethod struct {
	fn Method
}

// DoNotBind marks a member that must keep whatever receiver it is invoked
// with instead of being bound to the instance.
func DoNotBind(fn Method) any {
	return unboundMethod{fn: fn}
}

// UpdateDecision is the result of ShouldComponentUpdate. The zero value
// models a hook that forgot to answer: the update proceeds and a warning is
// emitted.
type UpdateDecision int

const (
	UpdateUnspecified UpdateDecision = iota
	UpdateProceed
	UpdateSkip
)

// ShouldUpdate converts a boolean into an UpdateDecision.
func ShouldUpdate(ok bool) UpdateDecision {
	if ok {
		return UpdateProceed
	}
	return UpdateSkip
}

// Spec is the declarative description of a component class. Mixins holds
// further *Spec fragments merged in before the spec's own members.
type Spec struct {
	DisplayName string
	Mixins      []any

	Render                    RenderFunc
	GetInitialState           InitialStateFunc
	GetDefaultProps           DefaultPropsFunc
	GetChildContext           ChildContextFunc
	ComponentWillMount        LifecycleFunc
	ComponentDidMount         LifecycleFunc
	ComponentWillReceiveProps ReceivePropsFunc
	ShouldComponentUpdate     ShouldUpdateFunc
	ComponentWillUpdate       WillUpdateFunc
	ComponentDidUpdate        DidUpdateFunc
	ComponentWillUnmount      LifecycleFunc

	PropTypes         map[string]Validator
	ContextTypes      map[string]Validator
	ChildContextTypes map[string]Validator

	Statics map[string]any
	Members map[string]any
}

var reservedNames = map[string]struct{}{
	"displayName":               {},
	"mixins":                    {},
	"statics":                   {},
	"propTypes":                 {},
	"contextTypes":              {},
	"childContextTypes":         {},
	"render":                    {},
	"getInitialState":           {},
	"getDefaultProps":           {},
	"getChildContext":           {},
	"componentWillMount":        {},
	"componentDidMount":         {},
	"componentWillReceiveProps": {},
	"shouldComponentUpdate":     {},
	"componentWillUpdate":       {},
	"componentDidUpdate":        {},
	"componentWillUnmount":      {},
	"setState":                  {},
	"replaceState":              {},
	"forceUpdate":               {},
	"setProps":                  {},
	"replaceProps":              {},
	"isMounted":                 {},
	"getDOMNode":                {},
}

// IsReservedName reports whether name is a lifecycle or API name that may
// not appear in statics or members.
func IsReservedName(name string) bool {
	_, ok := reservedNames[name]
	return ok
}
