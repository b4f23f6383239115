package promsink_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/goliatone/go-composite/pkg/activity"
	"github.com/goliatone/go-composite/pkg/activity/promsink"
)

func TestHookCountsTransitionsAndLiveInstances(t *testing.T) {
	reg := prometheus.NewRegistry()
	hook, err := promsink.New(reg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	input := activity.ComponentEventInput{ObjectID: ".r1", Component: "Panel"}
	events := []activity.Event{
		activity.BuildComponentMountedEvent(input),
		activity.BuildComponentUpdatedEvent(input),
		activity.BuildComponentUpdatedEvent(input),
		activity.BuildComponentMountedEvent(activity.ComponentEventInput{ObjectID: ".r2", Component: "Panel"}),
		activity.BuildComponentUnmountedEvent(input),
	}
	for _, event := range events {
		if err := hook.Notify(context.Background(), event); err != nil {
			t.Fatalf("notify: %v", err)
		}
	}

	count, err := testutil.GatherAndCount(reg, "composite_lifecycle_transitions_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 verb series, got %d", count)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var live float64 = -1
	for _, family := range families {
		if family.GetName() != "composite_lifecycle_mounted_instances" {
			continue
		}
		for _, metric := range family.GetMetric() {
			live = metric.GetGauge().GetValue()
		}
	}
	if live != 1 {
		t.Fatalf("expected one live Panel, got %v", live)
	}
}

func TestHookIgnoresForeignEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	hook, err := promsink.New(reg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := hook.Notify(context.Background(), activity.Event{Verb: "options.updated", ObjectType: "options", ObjectID: "x"}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	count, err := testutil.GatherAndCount(reg)
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no series, got %d", count)
	}
}

func TestNewRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := promsink.New(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := promsink.New(reg); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}
