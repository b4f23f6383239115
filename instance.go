package composite

import (
	"fmt"

	"github.com/goliatone/go-composite/layering"
)

// LifecycleState tracks where an instance is in its life. Transitions only
// move forward: UNMOUNTED, MOUNTING, MOUNTED, then UNMOUNTED for good.
type LifecycleState int

const (
	LifecycleUnmounted LifecycleState = iota
	LifecycleMounting
	LifecycleMounted
)

func (s LifecycleState) String() string {
	switch s {
	case LifecycleMounting:
		return "MOUNTING"
	case LifecycleMounted:
		return "MOUNTED"
	default:
		return "UNMOUNTED"
	}
}

type pendingState struct {
	values  State
	replace bool
}

// Instance is one mounted, or mountable, occurrence of a Class.
type Instance struct {
	rt      *Runtime
	class   *Class
	element *Element
	id      string
	root    *rootEntry

	props        Props
	state        State
	context      ContextMap
	childContext ContextMap
	defaults     Props
	refs         map[string]any
	members      map[string]any

	lifecycle   LifecycleState
	used        bool
	deferring   bool
	forceNext   bool
	pending     []pendingState
	parentChain ContextChain
	rendered    node
}

// Instantiate creates an unmounted instance of class. Default props are
// applied and members are bound; mounting is a separate step, see
// Runtime.MountInstance.
func Instantiate(class *Class, props Props, owner *Instance) (*Instance, error) {
	if class == nil {
		return nil, invariant(nil, "instantiate(...): a class is required.")
	}
	el := H(class, props)
	el.owner = owner
	el.stamped = true
	if owner != nil {
		el.ownerChain = owner.childChain()
	}
	return newInstance(class, el)
}

func newInstance(class *Class, el *Element) (*Instance, error) {
	defaults, err := class.DefaultProps()
	if err != nil {
		return nil, err
	}
	c := &Instance{
		class:    class,
		element:  el,
		defaults: defaults,
		refs:     map[string]any{},
		members:  make(map[string]any, len(class.members)),
	}
	c.props = c.resolveProps(el)
	for name, member := range class.members {
		switch fn := member.(type) {
		case Method:
			c.members[name] = c.bind(fn)
		case unboundMethod:
			c.members[name] = fn.fn
		default:
			c.members[name] = member
		}
	}
	return c, nil
}

func (c *Instance) bind(fn Method) BoundMethod {
	return func(args ...any) any {
		return fn(c, args...)
	}
}

// resolveProps builds the props an element hands to the instance: element
// props, children, then defaults for anything missing.
func (c *Instance) resolveProps(el *Element) Props {
	values := layering.CloneMap(el.Props)
	if len(el.Children) > 0 {
		if values == nil {
			values = map[string]any{}
		}
		values[childrenKey] = append([]any(nil), el.Children...)
	}
	return Props(layering.ApplyDefaults(values, c.defaults, IsUndefined))
}

// childChain is the owner based context handed to elements c renders.
func (c *Instance) childChain() ContextChain {
	return c.element.ownerChain.Push(c.Name(), c.childContext)
}

// Name returns the display name of the class.
func (c *Instance) Name() string {
	if c == nil {
		return ""
	}
	return classLabel(c.class.Name())
}

// Class returns the class the instance was built from.
func (c *Instance) Class() *Class { return c.class }

// ID returns the reconciliation identity; empty until mounted.
func (c *Instance) ID() string { return c.id }

// Element returns the element the instance currently reflects.
func (c *Instance) Element() *Element { return c.element }

// Owner returns the instance whose render created this one.
func (c *Instance) Owner() *Instance { return c.element.Owner() }

// Props returns the committed props. The map must not be modified.
func (c *Instance) Props() Props { return c.props }

// State returns the committed state. The map must not be modified.
func (c *Instance) State() State { return c.state }

// Context returns the filtered context. The map must not be modified.
func (c *Instance) Context() ContextMap { return c.context }

// LifecycleState returns the current lifecycle tag.
func (c *Instance) LifecycleState() LifecycleState { return c.lifecycle }

// IsMounted reports whether the instance finished mounting and was not
// unmounted since.
func (c *Instance) IsMounted() bool {
	return c != nil && c.lifecycle == LifecycleMounted
}

// Runtime returns the runtime the instance is mounted in.
func (c *Instance) Runtime() *Runtime { return c.rt }

// Ref returns the target registered under name.
func (c *Instance) Ref(name string) any {
	return c.refs[name]
}

// Refs returns a copy of the ref table.
func (c *Instance) Refs() map[string]any {
	return layering.CloneMap(c.refs)
}

// Rendered returns the handle of the rendered child: an *Instance, a
// *HostComponent, or nil for text and empty renders.
func (c *Instance) Rendered() any {
	if c.rendered == nil {
		return nil
	}
	return c.rendered.handle()
}

// Node returns the platform node backing the instance.
func (c *Instance) Node() any {
	if c.rendered == nil || c.lifecycle == LifecycleUnmounted {
		return nil
	}
	return c.rendered.platform()
}

// Member returns the member stored under name. Auto-bound members come back
// as BoundMethod, DoNotBind members as Method.
func (c *Instance) Member(name string) (any, bool) {
	member, ok := c.members[name]
	return member, ok
}

// Call invokes a function valued member. Unbound members receive c.
func (c *Instance) Call(name string, args ...any) (any, error) {
	member, ok := c.members[name]
	if !ok {
		return nil, fmt.Errorf("composite: %s has no member %q", c.Name(), name)
	}
	switch fn := member.(type) {
	case BoundMethod:
		return fn(args...), nil
	case Method:
		return fn(c, args...), nil
	default:
		return nil, fmt.Errorf("composite: member %q of %s is not callable", name, c.Name())
	}
}

// BindTo rebinds a member. Auto-bound members keep their instance and
// produce a warning; unbound members are bound to receiver, which must be an
// *Instance.
func (c *Instance) BindTo(name string, receiver any) (BoundMethod, error) {
	member, ok := c.members[name]
	if !ok {
		return nil, fmt.Errorf("composite: %s has no member %q", c.Name(), name)
	}
	switch fn := member.(type) {
	case BoundMethod:
		if target, ok := receiver.(*Instance); !ok || target != c {
			c.warn(fmt.Sprintf("Warning: bind(): React component methods may only be bound to the "+
				"component instance. See %s", c.Name()))
		} else {
			c.warn(fmt.Sprintf("Warning: bind(): You are binding a component method to the component. "+
				"React does this for you automatically in a high-performance way, so you can safely "+
				"remove this call. See %s", c.Name()))
		}
		return fn, nil
	case Method:
		target, ok := receiver.(*Instance)
		if !ok {
			return nil, fmt.Errorf("composite: cannot bind %q of %s to %T", name, c.Name(), receiver)
		}
		return target.bind(fn), nil
	default:
		return nil, fmt.Errorf("composite: member %q of %s is not callable", name, c.Name())
	}
}

// SetState shallow merges partial into the state. While mounting, or while
// the instance is receiving props, the change is queued and folded into the
// pending transition; otherwise it triggers a synchronous update.
func (c *Instance) SetState(partial State) error {
	if c.lifecycle == LifecycleUnmounted {
		return invariant(ErrNotMounted, "setState(...): Can only update a mounted or mounting component.")
	}
	c.pending = append(c.pending, pendingState{values: partial})
	return c.scheduleUpdate(false)
}

// ReplaceState swaps the state for next.
func (c *Instance) ReplaceState(next State) error {
	if c.lifecycle == LifecycleUnmounted {
		return invariant(ErrNotMounted, "replaceState(...): Can only update a mounted or mounting component.")
	}
	c.pending = append(c.pending, pendingState{values: next, replace: true})
	return c.scheduleUpdate(false)
}

// ForceUpdate re-renders without consulting ShouldComponentUpdate.
func (c *Instance) ForceUpdate() error {
	if c.lifecycle == LifecycleUnmounted {
		return invariant(ErrNotMounted, "forceUpdate(...): Can only force an update on mounted or mounting components.")
	}
	return c.scheduleUpdate(true)
}

func (c *Instance) scheduleUpdate(force bool) error {
	if c.lifecycle == LifecycleMounting {
		return nil
	}
	if c.deferring {
		c.forceNext = c.forceNext || force
		return nil
	}
	return c.rt.run(func(tx *batch) error {
		return c.update(tx, c.props, c.context, force)
	})
}

// SetProps merges partial into the props of a root instance and updates it.
func (c *Instance) SetProps(partial Props) error {
	return c.updateRootProps("setProps", partial, true)
}

// ReplaceProps replaces the props of a root instance and updates it.
func (c *Instance) ReplaceProps(props Props) error {
	return c.updateRootProps("replaceProps", props, false)
}

func (c *Instance) updateRootProps(op string, props Props, merge bool) error {
	if err := checkRootProps(op, c.IsMounted(), c.root, c.element); err != nil {
		return err
	}
	return c.rt.updateRoot(c.root, c.element.withProps(nextRootProps(c.element.Props, props, merge)))
}

func checkRootProps(op string, mounted bool, root *rootEntry, el *Element) error {
	if !mounted {
		return invariant(ErrNotMounted, "%s(...): Can only update a mounted component.", op)
	}
	if root == nil || el.owner != nil {
		return invariant(ErrOwnedProps, "replaceProps(...): You called `setProps` or `replaceProps` on a "+
			"component with a parent. This is an anti-pattern since props will get reactively updated "+
			"when rendered. Instead, change the owner's `render` method to pass the correct value as "+
			"props to the component where it is created.")
	}
	return nil
}

func nextRootProps(current, props Props, merge bool) Props {
	if merge {
		return Props(layering.Overlay(current, props))
	}
	if props == nil {
		return Props{}
	}
	return Props(layering.CloneMap(props))
}

func (c *Instance) attachRef(name string, target any) {
	c.refs[name] = target
	if c.rt != nil && c.rt.cfg.refObserver != nil {
		c.rt.cfg.refObserver(c, name, target)
	}
}

func (c *Instance) detachRef(name string, target any) {
	if current, ok := c.refs[name]; !ok || current != target {
		return
	}
	delete(c.refs, name)
	if c.rt != nil && c.rt.cfg.refObserver != nil {
		c.rt.cfg.refObserver(c, name, nil)
	}
}

func (c *Instance) warn(message string) {
	if c.rt != nil {
		c.rt.warn(message)
	}
}

func (c *Instance) warnAll(messages []string) {
	for _, message := range messages {
		c.warn(message)
	}
}

// takePendingState folds queued state changes over the committed state
// without touching it.
func (c *Instance) takePendingState() State {
	if len(c.pending) == 0 {
		return c.state
	}
	next := State(layering.CloneMap(c.state))
	for _, change := range c.pending {
		if change.replace {
			next = State(layering.CloneMap(change.values))
			continue
		}
		if next == nil {
			next = State{}
		}
		for key, value := range change.values {
			next[key] = value
		}
	}
	c.pending = nil
	return next
}
