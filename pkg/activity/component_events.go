package activity

import (
	"strings"
	"time"
)

// Verbs emitted by the composite runtime.
const (
	VerbComponentMounted   = "component.mounted"
	VerbComponentUpdated   = "component.updated"
	VerbComponentUnmounted = "component.unmounted"
)

// LifecycleVerbs lists every verb in emission order of a full lifecycle.
var LifecycleVerbs = []string{VerbComponentMounted, VerbComponentUpdated, VerbComponentUnmounted}

// ObjectTypeComponent is the object type of lifecycle events.
const ObjectTypeComponent = "component"

// ComponentEventInput describes one instance at the moment of a transition.
type ComponentEventInput struct {
	ObjectID   string
	Component  string
	Owner      string
	Channel    string
	ActorID    string
	TenantID   string
	PropKeys   []string
	StateKeys  []string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildComponentMountedEvent constructs the event for a finished mount.
func BuildComponentMountedEvent(input ComponentEventInput) Event {
	return BuildComponentEvent(VerbComponentMounted, input)
}

// BuildComponentUpdatedEvent constructs the event for a committed update.
func BuildComponentUpdatedEvent(input ComponentEventInput) Event {
	return BuildComponentEvent(VerbComponentUpdated, input)
}

// BuildComponentUnmountedEvent constructs the event for a teardown.
func BuildComponentUnmountedEvent(input ComponentEventInput) Event {
	return BuildComponentEvent(VerbComponentUnmounted, input)
}

// BuildComponentEvent constructs a lifecycle event for verb. Prop and state
// keys travel in the metadata as "prop_keys" and "state_keys". The object id
// falls back to the component name.
func BuildComponentEvent(verb string, input ComponentEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if len(input.PropKeys) > 0 {
		metadata = withMetadata(metadata, "prop_keys", append([]string(nil), input.PropKeys...))
	}
	if len(input.StateKeys) > 0 {
		metadata = withMetadata(metadata, "state_keys", append([]string(nil), input.StateKeys...))
	}

	component := strings.TrimSpace(input.Component)
	objectID := strings.TrimSpace(input.ObjectID)
	switch {
	case objectID != "":
	case component != "":
		objectID = component
	default:
		objectID = ObjectTypeComponent
	}

	return Event{
		Verb:       strings.TrimSpace(verb),
		ObjectType: ObjectTypeComponent,
		ObjectID:   objectID,
		Component:  component,
		Owner:      strings.TrimSpace(input.Owner),
		Channel:    strings.TrimSpace(input.Channel),
		ActorID:    strings.TrimSpace(input.ActorID),
		TenantID:   strings.TrimSpace(input.TenantID),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func withMetadata(meta map[string]any, key string, value any) map[string]any {
	if meta == nil {
		meta = map[string]any{}
	}
	meta[key] = value
	return meta
}
