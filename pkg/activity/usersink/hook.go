// Package usersink forwards component lifecycle events to a go-users
// ActivitySink.
package usersink

import (
	"context"
	"maps"
	"strings"
	"time"

	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"

	"github.com/goliatone/go-composite/pkg/activity"
)

// Hook adapts activity events to a go-users ActivitySink. Lifecycle events
// rarely carry identities, so DefaultActor and DefaultTenant fill the gaps.
// The component and owner names land in the record data.
type Hook struct {
	Sink          usertypes.ActivitySink
	DefaultActor  uuid.UUID
	DefaultTenant uuid.UUID
}

// Notify maps the event into an ActivityRecord and forwards it to the sink.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	normalized := activity.NormalizeEvent(event)
	if !normalized.Valid() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return h.Sink.Log(ctx, Record(normalized, h.DefaultActor, h.DefaultTenant))
}

// Record builds the ActivityRecord for a normalized event. Identities that
// are missing or not UUIDs fall back to actor and tenant.
func Record(event activity.Event, actor, tenant uuid.UUID) usertypes.ActivityRecord {
	data := cloneMap(event.Metadata)
	if event.Component != "" {
		data = withData(data, "component", event.Component)
	}
	if event.Owner != "" {
		data = withData(data, "owner", event.Owner)
	}
	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	return usertypes.ActivityRecord{
		ActorID:    parseUUID(event.ActorID, actor),
		TenantID:   parseUUID(event.TenantID, tenant),
		Verb:       event.Verb,
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		Channel:    event.Channel,
		Data:       data,
		OccurredAt: occurred,
	}
}

func parseUUID(input string, fallback uuid.UUID) uuid.UUID {
	value := strings.TrimSpace(input)
	if value == "" {
		return fallback
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return fallback
	}
	return id
}

func withData(data map[string]any, key string, value any) map[string]any {
	if data == nil {
		data = map[string]any{}
	}
	data[key] = value
	return data
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	return maps.Clone(src)
}
