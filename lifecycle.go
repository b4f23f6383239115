package composite

import (
	"fmt"

	"github.com/goliatone/go-composite/pkg/activity"
)

// Activity verbs emitted for lifecycle transitions.
const (
	VerbMounted   = activity.VerbComponentMounted
	VerbUpdated   = activity.VerbComponentUpdated
	VerbUnmounted = activity.VerbComponentUnmounted
)

func ownerName(el *Element) string {
	if owner := el.Owner(); owner != nil {
		return owner.Name()
	}
	return ""
}

func (c *Instance) mount(tx *batch, id string, parent ContextChain) error {
	name := c.Name()
	if c.used {
		return invariant(nil, "mountComponent(...): %s was already mounted once; create a new instance instead.", name)
	}
	c.used = true
	c.rt.active = name
	c.id = id
	c.lifecycle = LifecycleMounting
	c.parentChain = parent
	tx.track(c)

	owner := ownerName(c.element)
	c.context = FilterContext(c.element.ownerChain.Resolve(), c.class.contextTypes)
	c.warnAll(checkTypes(c.class.contextTypes, c.context, name, owner, LocationContext))
	c.warnAll(checkTypes(c.class.propTypes, c.props, name, owner, LocationProp))
	if c.rt.cfg.checkContexts {
		if mismatch, ok := CheckContexts(c.element.ownerChain, parent, c.class.contextTypes, name); ok {
			c.warn(mismatch.Message())
		}
	}

	state, err := c.class.spec.initialState(c, name)
	if err != nil {
		return err
	}
	c.state = state
	for _, hook := range c.class.spec.ComponentWillMount {
		hook.Fn(c)
	}
	c.state = c.takePendingState()

	desc, childParent, err := c.render()
	if err != nil {
		return err
	}
	child, err := tx.mountChild(desc, id, childParent)
	if child != nil {
		c.rendered = child
	}
	if err != nil {
		return err
	}
	c.lifecycle = LifecycleMounted

	tx.enqueue(name+".componentDidMount", func() {
		if !c.IsMounted() {
			return
		}
		for _, hook := range c.class.spec.ComponentDidMount {
			hook.Fn(c)
		}
		c.rt.emitLifecycle(VerbMounted, c)
	})
	return nil
}

// render computes the child context, runs the render function with c as
// the current owner and attributes the produced elements to c.
func (c *Instance) render() (any, ContextChain, error) {
	name := c.Name()
	childContext, err := c.processChildContext(name)
	if err != nil {
		return nil, ContextChain{}, err
	}
	c.childContext = childContext

	el, err := c.renderElement()
	if err != nil {
		return nil, ContextChain{}, err
	}
	parent := c.parentChain.Push(name, childContext)
	if el == nil {
		return nil, parent, nil
	}
	stamp(el, c, c.childChain())
	return el, parent, nil
}

func (c *Instance) renderElement() (*Element, error) {
	release := c.rt.owners.enter(c)
	defer release()
	return c.class.spec.Render(c)
}

func (c *Instance) processChildContext(name string) (ContextMap, error) {
	raw, err := c.class.spec.childContext(c)
	if err != nil || raw == nil {
		return nil, err
	}
	if len(c.class.childContextTypes) == 0 {
		return nil, invariant(nil, "%s.getChildContext(): childContextTypes must be defined in order to "+
			"use getChildContext().", name)
	}
	for _, key := range sortedKeys(raw) {
		if _, ok := c.class.childContextTypes[key]; !ok {
			return nil, invariant(nil, "%s.getChildContext(): key \"%s\" is not defined in childContextTypes.", name, key)
		}
	}
	childContext, warnings := FilterChildContext(raw, c.class.childContextTypes, name)
	c.warnAll(warnings)
	return childContext, nil
}

func (c *Instance) receive(tx *batch, desc any, parent ContextChain) error {
	el := desc.(*Element)
	name := c.Name()
	owner := ownerName(el)
	c.rt.active = name

	nextContext := FilterContext(el.ownerChain.Resolve(), c.class.contextTypes)
	c.warnAll(checkTypes(c.class.contextTypes, nextContext, name, owner, LocationContext))
	nextProps := c.resolveProps(el)
	c.warnAll(checkTypes(c.class.propTypes, nextProps, name, owner, LocationProp))
	if c.rt.cfg.checkContexts {
		if mismatch, ok := CheckContexts(el.ownerChain, parent, c.class.contextTypes, name); ok {
			c.warn(mismatch.Message())
		}
	}

	c.element = el
	c.parentChain = parent
	if hooks := c.class.spec.ComponentWillReceiveProps; len(hooks) > 0 {
		c.deferUpdates(func() {
			for _, hook := range hooks {
				hook.Fn(c, nextProps, nextContext)
			}
		})
	}
	return c.update(tx, nextProps, nextContext, false)
}

// update runs the gated transition to the next props, state and context.
func (c *Instance) update(tx *batch, nextProps Props, nextContext ContextMap, force bool) error {
	force = force || c.forceNext
	c.forceNext = false
	nextState := c.takePendingState()
	name := c.Name()
	c.rt.active = name

	if !force && c.class.spec.ShouldComponentUpdate != nil {
		switch c.class.spec.ShouldComponentUpdate(c, nextProps, nextState, nextContext) {
		case UpdateUnspecified:
			c.warn(fmt.Sprintf("%s.shouldComponentUpdate(): Returned undefined instead of a boolean value. "+
				"Make sure to return true or false.", name))
		case UpdateSkip:
			c.props, c.state, c.context = nextProps, nextState, nextContext
			return nil
		}
	}

	prevProps, prevState, prevContext := c.props, c.state, c.context
	if hooks := c.class.spec.ComponentWillUpdate; len(hooks) > 0 {
		c.deferUpdates(func() {
			for _, hook := range hooks {
				hook.Fn(c, nextProps, nextState, nextContext)
			}
		})
	}
	c.props, c.state, c.context = nextProps, nextState, nextContext
	c.state = c.takePendingState()

	if err := c.updateRendered(tx); err != nil {
		return err
	}
	tx.enqueue(name+".componentDidUpdate", func() {
		if !c.IsMounted() {
			return
		}
		for _, hook := range c.class.spec.ComponentDidUpdate {
			hook.Fn(c, prevProps, prevState, prevContext)
		}
		c.rt.emitLifecycle(VerbUpdated, c)
	})
	return nil
}

// deferUpdates runs fn with state changes queued instead of applied. The
// flag is cleared even when fn panics so the instance stays updatable.
func (c *Instance) deferUpdates(fn func()) {
	c.deferring = true
	defer func() { c.deferring = false }()
	fn()
}

// updateRendered re-renders and either updates the rendered child in place
// or replaces it when the type or key changed.
func (c *Instance) updateRendered(tx *batch) error {
	prev := c.rendered
	desc, parent, err := c.render()
	if err != nil {
		return err
	}
	if sameDesc(prev.description(), desc) {
		return tx.receiveChild(prev, desc, parent)
	}
	oldNode := prev.platform()
	tx.unmountChild(prev)
	next, err := tx.mountChild(desc, c.id, parent)
	if next != nil {
		c.rendered = next
	}
	if err != nil {
		return err
	}
	c.rt.env.ReplaceNode(oldNode, next.platform())
	return nil
}

func (c *Instance) unmountHooks(tx *batch) {
	c.rt.active = c.Name()
	for _, hook := range c.class.spec.ComponentWillUnmount {
		hook.Fn(c)
	}
	c.rt.emitLifecycle(VerbUnmounted, c)
	detachRef(c)
	if c.rendered != nil {
		c.rendered.unmountHooks(tx)
	}
	c.lifecycle = LifecycleUnmounted
	c.pending = nil
}

func (c *Instance) purge(tx *batch) {
	if c.rendered != nil {
		c.rendered.purge(tx)
	}
	c.rt.env.Purge(c.id)
}

func (c *Instance) abandon() {
	c.lifecycle = LifecycleUnmounted
	c.pending = nil
}

func (c *Instance) nodeID() string { return c.id }

func (c *Instance) platform() any {
	if c.rendered == nil {
		return nil
	}
	return c.rendered.platform()
}

func (c *Instance) description() any { return c.element }

func (c *Instance) currentElement() *Element { return c.element }

func (c *Instance) handle() any { return c }
