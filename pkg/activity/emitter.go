package activity

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// DefaultChannel is stamped on events that do not name a channel.
const DefaultChannel = "composite"

// Config controls which lifecycle events reach the hooks.
type Config struct {
	Enabled bool
	Channel string
	// Verbs restricts emission to the listed verbs. Empty means all.
	Verbs []string
}

// Emitter stamps lifecycle events and hands them to the hooks.
type Emitter struct {
	hooks   Hooks
	enabled bool
	channel string
	verbs   []string

	mu     sync.Mutex
	counts map[string]int
}

// NewEmitter constructs an emitter from hooks and configuration.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = DefaultChannel
	}
	var verbs []string
	for _, verb := range cfg.Verbs {
		if verb = strings.TrimSpace(verb); verb != "" {
			verbs = append(verbs, verb)
		}
	}
	compacted := CompactHooks(hooks)
	return &Emitter{
		hooks:   compacted,
		enabled: cfg.Enabled && len(compacted) > 0,
		channel: channel,
		verbs:   verbs,
		counts:  map[string]int{},
	}
}

// Enabled reports whether any event could be delivered.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled
}

// Allows reports whether events with verb are delivered.
func (e *Emitter) Allows(verb string) bool {
	if !e.Enabled() {
		return false
	}
	return len(e.verbs) == 0 || slices.Contains(e.verbs, verb)
}

// Emit delivers event to every hook. Hook errors are joined; a failing
// hook does not stop the others.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Allows(event.Verb) {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	e.mu.Lock()
	e.counts[event.Verb]++
	e.mu.Unlock()
	return e.hooks.Notify(ctx, event)
}

// EmitComponent builds a component event for verb and emits it.
func (e *Emitter) EmitComponent(ctx context.Context, verb string, input ComponentEventInput) error {
	if !e.Allows(verb) {
		return nil
	}
	return e.Emit(ctx, BuildComponentEvent(verb, input))
}

// Counts returns how many events were emitted per verb.
func (e *Emitter) Counts() map[string]int {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]int, len(e.counts))
	for verb, n := range e.counts {
		out[verb] = n
	}
	return out
}

// CompactHooks drops nil hooks. It returns nil when nothing is left.
func CompactHooks(hooks Hooks) Hooks {
	var out Hooks
	for _, hook := range hooks {
		if hook != nil {
			out = append(out, hook)
		}
	}
	return out
}
