// Package activity fans component lifecycle events out to pluggable sinks.
package activity

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"time"
)

// Event is one lifecycle transition of a mounted instance. ObjectID is the
// runtime id of the instance.
type Event struct {
	Verb       string
	ObjectType string
	ObjectID   string
	Component  string
	Owner      string
	Channel    string
	ActorID    string
	TenantID   string
	Metadata   map[string]any
	OccurredAt time.Time
}

// Valid reports whether the event names a verb and an object.
func (e Event) Valid() bool {
	return e.Verb != "" && e.ObjectType != "" && e.ObjectID != ""
}

// ActivityHook receives normalized activity events.
type ActivityHook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc allows plain functions to satisfy ActivityHook.
type HookFunc func(ctx context.Context, event Event) error

// Notify dispatches to the underlying function.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks fans out events to zero or more hooks.
type Hooks []ActivityHook

// Enabled reports whether there are any hooks to notify.
func (h Hooks) Enabled() bool {
	return len(h) > 0
}

// Notify normalizes event and hands it to every hook. Invalid events are
// dropped silently. Hook errors are joined.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}
	normalized := NormalizeEvent(event)
	if !normalized.Valid() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, normalized); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// VerbFilter forwards only events whose verb is listed. An empty list
// forwards everything.
type VerbFilter struct {
	Verbs []string
	Next  ActivityHook
}

// Notify implements ActivityHook.
func (f VerbFilter) Notify(ctx context.Context, event Event) error {
	if f.Next == nil {
		return nil
	}
	verb := strings.TrimSpace(event.Verb)
	if len(f.Verbs) > 0 && !slices.ContainsFunc(f.Verbs, func(allowed string) bool {
		return strings.TrimSpace(allowed) == verb
	}) {
		return nil
	}
	return f.Next.Notify(ctx, event)
}

// ComponentFilter forwards only events for the named components.
type ComponentFilter struct {
	Components []string
	Next       ActivityHook
}

// Notify implements ActivityHook.
func (f ComponentFilter) Notify(ctx context.Context, event Event) error {
	if f.Next == nil || !slices.Contains(f.Components, strings.TrimSpace(event.Component)) {
		return nil
	}
	return f.Next.Notify(ctx, event)
}

// NormalizeEvent trims the string fields, copies the metadata and stamps
// OccurredAt when it is missing.
func NormalizeEvent(event Event) Event {
	out := Event{
		Verb:       strings.TrimSpace(event.Verb),
		ObjectType: strings.TrimSpace(event.ObjectType),
		ObjectID:   strings.TrimSpace(event.ObjectID),
		Component:  strings.TrimSpace(event.Component),
		Owner:      strings.TrimSpace(event.Owner),
		Channel:    strings.TrimSpace(event.Channel),
		ActorID:    strings.TrimSpace(event.ActorID),
		TenantID:   strings.TrimSpace(event.TenantID),
		Metadata:   cloneMap(event.Metadata),
		OccurredAt: event.OccurredAt,
	}
	if out.OccurredAt.IsZero() {
		out.OccurredAt = time.Now()
	}
	return out
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	return maps.Clone(src)
}
