package composite

import "errors"

// node is a mounted position in the tree: a composite instance, a host
// element or a text run.
type node interface {
	mount(tx *batch, id string, parent ContextChain) error
	receive(tx *batch, desc any, parent ContextChain) error
	// unmountHooks runs teardown notifications top-down and detaches refs.
	unmountHooks(tx *batch)
	// purge releases host identities children first.
	purge(tx *batch)
	// abandon marks a node created by a failed operation as unmounted.
	abandon()
	nodeID() string
	platform() any
	description() any
	currentElement() *Element
	handle() any
}

type childSlot struct {
	name string
	node node
}

// batch collects the work of one top-level operation. Post-mount and
// post-update callbacks are queued and run in order once the tree is
// consistent.
type batch struct {
	rt      *Runtime
	queue   []queued
	created []node
}

type queued struct {
	label string
	fn    func()
}

func (tx *batch) track(n node) {
	tx.created = append(tx.created, n)
}

func (tx *batch) enqueue(label string, fn func()) {
	tx.queue = append(tx.queue, queued{label: label, fn: fn})
}

// flush runs queued callbacks in order, including callbacks queued while
// flushing. A panicking callback does not prevent the rest from running.
func (tx *batch) flush() error {
	var errs []error
	for i := 0; i < len(tx.queue); i++ {
		if err := guard(tx.queue[i].label, tx.queue[i].fn); err != nil {
			errs = append(errs, err)
		}
	}
	tx.queue = nil
	return errors.Join(errs...)
}

// guard runs fn and converts a panic into a *HookPanicError.
func guard(label string, fn func()) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = &HookPanicError{Component: label, Value: recovered}
		}
	}()
	fn()
	return nil
}

// rollback releases every identity registered by a failed operation.
func (tx *batch) rollback() {
	for i := len(tx.created) - 1; i >= 0; i-- {
		n := tx.created[i]
		n.abandon()
		if n.nodeID() != "" {
			tx.rt.env.Purge(n.nodeID())
		}
	}
	tx.created = nil
	tx.queue = nil
}

func (r *Runtime) instantiate(desc any) (node, error) {
	switch d := desc.(type) {
	case nil:
		return &textNode{rt: r, empty: true}, nil
	case textDesc:
		return &textNode{rt: r, text: string(d)}, nil
	case *Element:
		switch typ := d.Type.(type) {
		case string:
			return &HostComponent{rt: r, element: d}, nil
		case *Class:
			inst, err := newInstance(typ, d)
			if err != nil {
				return nil, err
			}
			inst.rt = r
			return inst, nil
		}
		return nil, invariant(nil, "Element type is invalid: expected a string (for host elements) "+
			"or a class (for composite components) but got: %T.", d.Type)
	}
	return nil, invariant(nil, "Child description of type %T cannot be rendered.", desc)
}

func (tx *batch) mountChild(desc any, id string, parent ContextChain) (node, error) {
	n, err := tx.rt.instantiate(desc)
	if err != nil {
		return nil, err
	}
	if el, ok := desc.(*Element); ok && el.Ref != "" {
		if err := tx.attachRef(el, n); err != nil {
			return nil, err
		}
	}
	return n, n.mount(tx, id, parent)
}

func (tx *batch) receiveChild(n node, desc any, parent ContextChain) error {
	prev := n.currentElement()
	next, _ := desc.(*Element)
	moved := prev != nil && next != nil && (prev.Ref != next.Ref || prev.owner != next.owner)
	if moved {
		detachRef(n)
	}
	if err := n.receive(tx, desc, parent); err != nil {
		return err
	}
	if moved && next.Ref != "" {
		return tx.attachRef(next, n)
	}
	return nil
}

func (tx *batch) unmountChild(n node) {
	n.unmountHooks(tx)
	n.purge(tx)
}

func (tx *batch) mountChildren(parentID string, slots []slot, parent ContextChain) ([]*childSlot, error) {
	out := make([]*childSlot, 0, len(slots))
	for _, s := range slots {
		n, err := tx.mountChild(s.desc, parentID+"."+s.name, parent)
		if n != nil {
			out = append(out, &childSlot{name: s.name, node: n})
		}
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

// reconcileChildren updates slots whose name and type survive, unmounts the
// previous occupant before mounting a replacement, and finally unmounts
// slots that disappeared.
func (tx *batch) reconcileChildren(parentID string, prev []*childSlot, next []slot, parent ContextChain) ([]*childSlot, error) {
	remaining := make(map[string]*childSlot, len(prev))
	for _, child := range prev {
		remaining[child.name] = child
	}
	leftovers := func() []*childSlot {
		var out []*childSlot
		for _, child := range prev {
			if _, ok := remaining[child.name]; ok {
				out = append(out, child)
			}
		}
		return out
	}

	out := make([]*childSlot, 0, len(next))
	for _, s := range next {
		if old, ok := remaining[s.name]; ok {
			delete(remaining, s.name)
			if sameDesc(old.node.description(), s.desc) {
				out = append(out, old)
				if err := tx.receiveChild(old.node, s.desc, parent); err != nil {
					return append(out, leftovers()...), err
				}
				continue
			}
			tx.unmountChild(old.node)
		}
		n, err := tx.mountChild(s.desc, parentID+"."+s.name, parent)
		if n != nil {
			out = append(out, &childSlot{name: s.name, node: n})
		}
		if err != nil {
			return append(out, leftovers()...), err
		}
	}
	for _, child := range leftovers() {
		tx.unmountChild(child.node)
	}
	return out, nil
}

func platforms(children []*childSlot) []any {
	out := make([]any, 0, len(children))
	for _, child := range children {
		out = append(out, child.node.platform())
	}
	return out
}

// attachRef queues the registration of n under el.Ref on the element owner.
// The target is resolved when the queue is flushed so the owner observes a
// fully mounted subtree.
func (tx *batch) attachRef(el *Element, n node) error {
	owner := el.owner
	if owner == nil {
		return invariant(ErrRefWithoutOwner, "addComponentAsRefTo(...): Only a ReactOwner can have refs. "+
			"This usually means that you're trying to add a ref to a component that doesn't have an owner "+
			"(that is, was not created inside of another component's `render` method). Try rendering this "+
			"component inside of a new top-level component which will hold the ref.")
	}
	name := el.Ref
	tx.enqueue("ref "+name, func() {
		if !owner.IsMounted() || !nodeMounted(n) || n.currentElement() != el {
			return
		}
		owner.attachRef(name, n.handle())
	})
	return nil
}

// detachRef removes the ref declared by the current element of n, but only
// while the owner still points at n.
func detachRef(n node) {
	el := n.currentElement()
	if el == nil || el.Ref == "" || el.owner == nil {
		return
	}
	el.owner.detachRef(el.Ref, n.handle())
}

func nodeMounted(n node) bool {
	switch typed := n.(type) {
	case *Instance:
		return typed.IsMounted()
	case *HostComponent:
		return typed.IsMounted()
	}
	return false
}
