package composite

import "github.com/goliatone/go-composite/layering"

// Environment is the host side of the runtime. It owns the platform nodes
// and is told about every identity the runtime registers and releases.
type Environment interface {
	CreateNode(id, tag string, props Props) any
	UpdateNode(node any, prev, next Props)
	CreateText(id, text string) any
	UpdateText(node any, text string)
	SetChildren(parent any, children []any)
	ReplaceNode(prev, next any)
	MountRoot(container, node any)
	UnmountRoot(container any)
	Purge(id string)
}

// discardEnvironment is the fallback when no environment is configured.
// Nodes are never materialised; identities are still tracked by the runtime.
type discardEnvironment struct{}

func (discardEnvironment) CreateNode(string, string, Props) any { return nil }
func (discardEnvironment) UpdateNode(any, Props, Props)         {}
func (discardEnvironment) CreateText(string, string) any        { return nil }
func (discardEnvironment) UpdateText(any, string)               {}
func (discardEnvironment) SetChildren(any, []any)               {}
func (discardEnvironment) ReplaceNode(any, any)                 {}
func (discardEnvironment) MountRoot(any, any)                   {}
func (discardEnvironment) UnmountRoot(any)                      {}
func (discardEnvironment) Purge(string)                         {}

// HostComponent is a mounted host element such as a "div".
type HostComponent struct {
	rt       *Runtime
	id       string
	element  *Element
	props    Props
	node     any
	children []*childSlot
	root     *rootEntry
	mounted  bool
}

// ID returns the reconciliation identity of the host node.
func (h *HostComponent) ID() string { return h.id }

// Tag returns the host tag.
func (h *HostComponent) Tag() string {
	tag, _ := h.element.Type.(string)
	return tag
}

// Props returns the props last applied to the platform node.
func (h *HostComponent) Props() Props { return h.props }

// Node returns the platform node created by the environment.
func (h *HostComponent) Node() any { return h.node }

// Owner returns the instance that rendered this element.
func (h *HostComponent) Owner() *Instance { return h.element.Owner() }

// IsMounted reports whether the node is part of a mounted tree.
func (h *HostComponent) IsMounted() bool { return h.mounted }

// SetProps merges partial into the props of a root host element.
func (h *HostComponent) SetProps(partial Props) error {
	return h.updateRootProps("setProps", partial, true)
}

// ReplaceProps replaces the props of a root host element.
func (h *HostComponent) ReplaceProps(props Props) error {
	return h.updateRootProps("replaceProps", props, false)
}

func (h *HostComponent) updateRootProps(op string, props Props, merge bool) error {
	if err := checkRootProps(op, h.mounted, h.root, h.element); err != nil {
		return err
	}
	return h.rt.updateRoot(h.root, h.element.withProps(nextRootProps(h.element.Props, props, merge)))
}

func (h *HostComponent) mount(tx *batch, id string, parent ContextChain) error {
	h.id = id
	tx.track(h)
	h.props = Props(layering.CloneMap(h.element.Props))
	h.node = h.rt.env.CreateNode(id, h.Tag(), h.props)
	children, err := tx.mountChildren(id, flattenChildren(h.element.Children, h.rt.warn), parent)
	h.children = children
	if err != nil {
		return err
	}
	h.rt.env.SetChildren(h.node, platforms(children))
	h.mounted = true
	return nil
}

func (h *HostComponent) receive(tx *batch, desc any, parent ContextChain) error {
	el := desc.(*Element)
	next := Props(layering.CloneMap(el.Props))
	h.rt.env.UpdateNode(h.node, h.props, next)
	h.element = el
	h.props = next
	children, err := tx.reconcileChildren(h.id, h.children, flattenChildren(el.Children, h.rt.warn), parent)
	h.children = children
	if err != nil {
		return err
	}
	h.rt.env.SetChildren(h.node, platforms(children))
	return nil
}

func (h *HostComponent) unmountHooks(tx *batch) {
	detachRef(h)
	for _, child := range h.children {
		child.node.unmountHooks(tx)
	}
	h.mounted = false
}

func (h *HostComponent) purge(tx *batch) {
	for _, child := range h.children {
		child.node.purge(tx)
	}
	h.children = nil
	h.rt.env.Purge(h.id)
}

func (h *HostComponent) abandon() {
	h.mounted = false
}

func (h *HostComponent) nodeID() string { return h.id }

func (h *HostComponent) platform() any { return h.node }

func (h *HostComponent) description() any { return h.element }

func (h *HostComponent) currentElement() *Element { return h.element }

func (h *HostComponent) handle() any { return h }

// textNode renders a string child. An empty textNode stands in for a
// composite that rendered nothing.
type textNode struct {
	rt    *Runtime
	id    string
	text  string
	node  any
	empty bool
}

func (t *textNode) mount(tx *batch, id string, _ ContextChain) error {
	t.id = id
	tx.track(t)
	t.node = t.rt.env.CreateText(id, t.text)
	return nil
}

func (t *textNode) receive(_ *batch, desc any, _ ContextChain) error {
	text, _ := desc.(textDesc)
	if string(text) != t.text {
		t.text = string(text)
		t.rt.env.UpdateText(t.node, t.text)
	}
	return nil
}

func (t *textNode) unmountHooks(*batch) {}

func (t *textNode) purge(*batch) { t.rt.env.Purge(t.id) }

func (t *textNode) abandon() {}

func (t *textNode) nodeID() string { return t.id }

func (t *textNode) platform() any { return t.node }

func (t *textNode) currentElement() *Element { return nil }

func (t *textNode) handle() any { return nil }

func (t *textNode) description() any {
	if t.empty {
		return nil
	}
	return textDesc(t.text)
}
