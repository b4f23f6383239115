package composite

import (
	"log/slog"

	"github.com/goliatone/go-composite/pkg/activity"
)

// Runtime mounts element trees into containers and drives their lifecycle.
// A Runtime is not safe for concurrent use; confine it to one goroutine the
// way a UI thread is confined.
type Runtime struct {
	cfg     runtimeConfig
	env     Environment
	logger  *slog.Logger
	emitter *activity.Emitter
	owners  ownerStack
	ambient []ContextChain
	roots   map[any]*rootEntry
	active  string
}

type rootEntry struct {
	id        string
	container any
	node      node
}

// NewRuntime builds a runtime from opts.
func NewRuntime(opts ...Option) *Runtime {
	cfg := applyOptions(opts)
	return &Runtime{
		cfg:     cfg,
		env:     cfg.env,
		logger:  cfg.logger,
		emitter: activity.NewEmitter(cfg.hooks, cfg.activity),
		roots:   map[any]*rootEntry{},
	}
}

// Render mounts el into container, or updates the existing root in place
// when it has the same type and key. It returns the root handle: an
// *Instance for classes, a *HostComponent for host tags.
func (r *Runtime) Render(el *Element, container any) (any, error) {
	if el == nil {
		return nil, invariant(nil, "render(): Invalid component element.")
	}
	stamp(el, nil, r.ambientChain())
	if entry, ok := r.roots[container]; ok {
		if sameDesc(entry.node.description(), el) {
			if err := r.updateRoot(entry, el); err != nil {
				return nil, err
			}
			return entry.node.handle(), nil
		}
		if _, err := r.Unmount(container); err != nil {
			return nil, err
		}
	}
	n, err := r.instantiate(el)
	if err != nil {
		return nil, err
	}
	if err := r.mountRoot(n, el, container); err != nil {
		if _, mounted := r.roots[container]; mounted {
			return n.handle(), err
		}
		return nil, err
	}
	return n.handle(), nil
}

// MountInstance mounts an instance produced by Instantiate as the root of
// container. An instance can be mounted once.
func (r *Runtime) MountInstance(inst *Instance, container any) error {
	if inst == nil {
		return invariant(nil, "mountInstance(...): instance is required.")
	}
	if inst.used {
		return invariant(nil, "mountComponent(...): %s was already mounted once; create a new instance instead.", inst.Name())
	}
	if _, ok := r.roots[container]; ok {
		if _, err := r.Unmount(container); err != nil {
			return err
		}
	}
	inst.rt = r
	return r.mountRoot(inst, inst.element, container)
}

func (r *Runtime) mountRoot(n node, el *Element, container any) error {
	if r.owners.current() != nil {
		r.warn("Warning: _renderNewRootComponent(): Render methods should be a pure function of props " +
			"and state; triggering nested component updates from render is not allowed. If necessary, " +
			"trigger nested updates in componentDidUpdate.")
	}
	entry := &rootEntry{id: r.cfg.ids(), container: container, node: n}
	return r.run(func(tx *batch) error {
		if el.Ref != "" {
			if err := tx.attachRef(el, n); err != nil {
				return err
			}
		}
		if err := n.mount(tx, entry.id, ContextChain{}); err != nil {
			return err
		}
		setRoot(n, entry)
		r.roots[container] = entry
		r.env.MountRoot(container, n.platform())
		return nil
	})
}

func (r *Runtime) updateRoot(entry *rootEntry, el *Element) error {
	return r.run(func(tx *batch) error {
		return tx.receiveChild(entry.node, el, ContextChain{})
	})
}

// Unmount tears down the tree mounted in container. It reports whether a
// tree was found.
func (r *Runtime) Unmount(container any) (bool, error) {
	entry, ok := r.roots[container]
	if !ok {
		return false, nil
	}
	delete(r.roots, container)
	err := r.run(func(tx *batch) error {
		tx.unmountChild(entry.node)
		r.env.UnmountRoot(container)
		return nil
	})
	setRoot(entry.node, nil)
	return true, err
}

// Root returns the handle of the tree mounted in container.
func (r *Runtime) Root(container any) (any, bool) {
	entry, ok := r.roots[container]
	if !ok {
		return nil, false
	}
	return entry.node.handle(), true
}

// CurrentOwner returns the instance whose render function is executing.
func (r *Runtime) CurrentOwner() *Instance {
	return r.owners.current()
}

// WithContext makes ctx visible as owner based context to every root
// rendered by fn.
//
// Deprecated: render a provider component with GetChildContext instead.
func (r *Runtime) WithContext(ctx ContextMap, fn func() error) error {
	r.warn("Warning: withContext is deprecated and will be removed in a future version. Use a " +
		"wrapper component with getChildContext instead.")
	r.ambient = append(r.ambient, r.ambientChain().Push("withContext", ctx))
	depth := len(r.ambient)
	defer func() {
		r.ambient = r.ambient[:depth-1]
	}()
	return fn()
}

func (r *Runtime) ambientChain() ContextChain {
	if len(r.ambient) == 0 {
		return ContextChain{}
	}
	return r.ambient[len(r.ambient)-1]
}

// run executes one top-level operation. Queued callbacks run only when the
// operation succeeded; on failure every identity it registered is released.
func (r *Runtime) run(op func(tx *batch) error) error {
	tx := &batch{rt: r}
	if err := r.perform(tx, op); err != nil {
		tx.rollback()
		r.logger.Debug("composite operation failed", slog.Any("error", err))
		return err
	}
	return tx.flush()
}

func (r *Runtime) perform(tx *batch, op func(tx *batch) error) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = &HookPanicError{Component: r.active, Value: recovered}
		}
	}()
	return op(tx)
}

func (r *Runtime) warn(message string) {
	r.cfg.warner.Warn(message)
}

func (r *Runtime) emitLifecycle(verb string, c *Instance) {
	if !r.emitter.Allows(verb) {
		return
	}
	err := r.emitter.EmitComponent(r.cfg.eventContext, verb, activity.ComponentEventInput{
		ObjectID:  c.id,
		Component: c.Name(),
		Owner:     ownerName(c.element),
		PropKeys:  sortedKeys(c.props),
		StateKeys: sortedKeys(c.state),
	})
	if err != nil {
		r.logger.Warn("composite activity hook failed",
			slog.String("verb", verb),
			slog.String("component", c.Name()),
			slog.Any("error", err),
		)
	}
}

func setRoot(n node, entry *rootEntry) {
	switch typed := n.(type) {
	case *Instance:
		typed.root = entry
	case *HostComponent:
		typed.root = entry
	}
}

// ownerStack tracks the instances whose render function is executing.
type ownerStack struct {
	stack []*Instance
}

// enter pushes c and returns the function restoring the previous owner.
func (s *ownerStack) enter(c *Instance) func() {
	s.stack = append(s.stack, c)
	depth := len(s.stack)
	return func() {
		s.stack = s.stack[:depth-1]
	}
}

func (s *ownerStack) current() *Instance {
	if len(s.stack) == 0 {
		return nil
	}
	return s.stack[len(s.stack)-1]
}
