// Package promsink counts component lifecycle events with Prometheus.
package promsink

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-composite/pkg/activity"
)

// Hook turns lifecycle events into counters and a live instance gauge.
type Hook struct {
	transitions *prometheus.CounterVec
	live        *prometheus.GaugeVec
}

// New registers the collectors on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) (*Hook, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	h := &Hook{
		// Labels: verb (component.mounted, component.updated, component.unmounted), component
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "composite",
			Subsystem: "lifecycle",
			Name:      "transitions_total",
			Help:      "Total lifecycle transitions by verb and component",
		}, []string{"verb", "component"}),
		// Labels: component
		live: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "composite",
			Subsystem: "lifecycle",
			Name:      "mounted_instances",
			Help:      "Number of currently mounted instances by component",
		}, []string{"component"}),
	}
	for _, collector := range []prometheus.Collector{h.transitions, h.live} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("promsink: register collector: %w", err)
		}
	}
	return h, nil
}

// Notify implements activity.ActivityHook.
func (h *Hook) Notify(_ context.Context, event activity.Event) error {
	if h == nil || event.ObjectType != activity.ObjectTypeComponent {
		return nil
	}
	component := event.Component
	if component == "" {
		component = "unknown"
	}
	h.transitions.WithLabelValues(event.Verb, component).Inc()
	switch event.Verb {
	case activity.VerbComponentMounted:
		h.live.WithLabelValues(component).Inc()
	case activity.VerbComponentUnmounted:
		h.live.WithLabelValues(component).Dec()
	}
	return nil
}
