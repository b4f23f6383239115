package usersink_test

import (
	"context"
	"errors"
	"testing"
	"time"

	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"

	"github.com/goliatone/go-composite/pkg/activity"
	"github.com/goliatone/go-composite/pkg/activity/usersink"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	tenantID := uuid.New()

	event := activity.Event{
		Verb:       "component.updated",
		ObjectType: "component",
		ObjectID:   ".r1.$row",
		Component:  "Counter",
		Owner:      "App",
		Channel:    "composite",
		ActorID:    actorID.String(),
		TenantID:   tenantID.String(),
		Metadata:   map[string]any{"prop_keys": []string{"count"}},
		OccurredAt: now,
	}

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID || record.TenantID != tenantID {
		t.Fatalf("unexpected identities actor=%s tenant=%s", record.ActorID, record.TenantID)
	}
	if record.UserID != uuid.Nil {
		t.Fatalf("lifecycle records carry no user, got %s", record.UserID)
	}
	if record.Verb != "component.updated" || record.ObjectType != "component" || record.ObjectID != ".r1.$row" {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "composite" || record.OccurredAt != now {
		t.Fatalf("unexpected envelope: %+v", record)
	}
	if record.Data["component"] != "Counter" || record.Data["owner"] != "App" {
		t.Fatalf("expected component and owner in data, got %v", record.Data)
	}
	if keys, ok := record.Data["prop_keys"].([]string); !ok || len(keys) != 1 {
		t.Fatalf("expected metadata passthrough, got %v", record.Data["prop_keys"])
	}
	if _, ok := event.Metadata["component"]; ok {
		t.Fatalf("event metadata must not be modified")
	}
}

func TestHookNotifyReturnsSinkErrors(t *testing.T) {
	sink := &recordingSink{err: errors.New("sink down")}
	hook := usersink.Hook{Sink: sink}

	err := hook.Notify(context.Background(), activity.BuildComponentMountedEvent(activity.ComponentEventInput{ObjectID: ".r1"}))
	if err == nil || err.Error() != "sink down" {
		t.Fatalf("expected sink error, got %v", err)
	}
	if err := (usersink.Hook{}).Notify(context.Background(), activity.Event{}); err != nil {
		t.Fatalf("hook without sink must be inert, got %v", err)
	}
}

func TestHookNotifySkipsMissingVerb(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	_ = hook.Notify(context.Background(), activity.Event{})

	if len(sink.records) != 0 {
		t.Fatalf("expected no records for empty event, got %d", len(sink.records))
	}
}

func TestHookNotifyDefaultsTimestamp(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	err := hook.Notify(context.Background(), activity.Event{
		Verb:       "component.mounted",
		ObjectType: "component",
		ObjectID:   ".r1",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	if sink.records[0].OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be defaulted")
	}
}

func TestHookNotifyFallsBackToDefaultIdentities(t *testing.T) {
	sink := &recordingSink{}
	actor := uuid.New()
	tenant := uuid.New()
	hook := usersink.Hook{Sink: sink, DefaultActor: actor, DefaultTenant: tenant}

	err := hook.Notify(context.Background(), activity.BuildComponentUnmountedEvent(activity.ComponentEventInput{
		ObjectID:  ".r1.0",
		Component: "Panel",
		ActorID:   "not-a-uuid",
	}))
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actor || record.TenantID != tenant {
		t.Fatalf("expected default identities, got actor=%s tenant=%s", record.ActorID, record.TenantID)
	}
	if record.UserID != uuid.Nil {
		t.Fatalf("expected nil user, got %s", record.UserID)
	}
	if record.Data["component"] != "Panel" {
		t.Fatalf("expected component metadata, got %v", record.Data)
	}
}
