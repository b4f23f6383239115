package activity

import (
	"context"
	"testing"
)

func TestBuildComponentUpdatedEventIncludesComponentMetadata(t *testing.T) {
	meta := map[string]any{"custom": "value"}
	input := ComponentEventInput{
		ObjectID:  " .r1.0 ",
		Component: " Counter ",
		Owner:     "App",
		Channel:   "composite",
		ActorID:   " actor ",
		TenantID:  " tenant ",
		PropKeys:  []string{"count", "label"},
		StateKeys: []string{"open"},
		Metadata:  meta,
	}

	event := BuildComponentUpdatedEvent(input)

	if event.Verb != VerbComponentUpdated {
		t.Fatalf("expected verb %s got %s", VerbComponentUpdated, event.Verb)
	}
	if event.ObjectType != "component" || event.ObjectID != ".r1.0" {
		t.Fatalf("unexpected object fields: %+v", event)
	}
	if event.Component != "Counter" || event.Owner != "App" {
		t.Fatalf("unexpected component fields: %+v", event)
	}
	if event.ActorID != "actor" || event.TenantID != "tenant" {
		t.Fatalf("unexpected identity fields: %+v", event)
	}
	propKeys, ok := event.Metadata["prop_keys"].([]string)
	if !ok || len(propKeys) != 2 || propKeys[0] != "count" {
		t.Fatalf("expected prop_keys, got %v", event.Metadata["prop_keys"])
	}
	propKeys[0] = "changed"
	if input.PropKeys[0] != "count" {
		t.Fatalf("expected input prop keys untouched, got %v", input.PropKeys)
	}
	if event.Metadata["custom"] != "value" {
		t.Fatalf("expected custom metadata carried, got %v", event.Metadata)
	}
	if len(meta) != 1 {
		t.Fatalf("expected input metadata untouched, got %v", meta)
	}
}

func TestBuildComponentEventFallbackObjectID(t *testing.T) {
	event := BuildComponentUnmountedEvent(ComponentEventInput{})
	if event.ObjectID != "component" {
		t.Fatalf("expected fallback object ID 'component', got %q", event.ObjectID)
	}

	event = BuildComponentMountedEvent(ComponentEventInput{Component: "Panel"})
	if event.ObjectID != "Panel" {
		t.Fatalf("expected component name as object ID, got %q", event.ObjectID)
	}
	if event.Verb != VerbComponentMounted {
		t.Fatalf("expected mounted verb, got %q", event.Verb)
	}
}

func TestComponentEventsFlowThroughEmitter(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true})

	if err := emitter.Emit(context.Background(), BuildComponentMountedEvent(ComponentEventInput{ObjectID: ".r1"})); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected one event, got %d", len(capture.Events))
	}
	if capture.Events[0].Channel != "composite" {
		t.Fatalf("expected default channel, got %q", capture.Events[0].Channel)
	}
}
