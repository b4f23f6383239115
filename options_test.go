package composite

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/goliatone/go-composite/pkg/activity"
)

func TestWithActivityHooksClonesAndFiltersNil(t *testing.T) {
	hook := activity.HookFunc(func(context.Context, activity.Event) error { return nil })
	hooks := activity.Hooks{nil, hook}

	cfg := applyOptions([]Option{WithActivityHooks(hooks)})
	if len(cfg.hooks) != 1 {
		t.Fatalf("expected 1 hook, got %d", len(cfg.hooks))
	}

	hooks[1] = nil
	if cfg.hooks[0] == nil {
		t.Fatal("expected configured hooks unaffected by caller mutation")
	}
}

func TestActivityHooksDefaultNil(t *testing.T) {
	cfg := applyOptions(nil)
	if cfg.hooks != nil {
		t.Fatalf("expected nil hooks by default, got %+v", cfg.hooks)
	}
	if onlyNil := applyOptions([]Option{WithActivityHooks(activity.Hooks{nil})}); onlyNil.hooks != nil {
		t.Fatalf("expected nil hooks when every entry is nil, got %+v", onlyNil.hooks)
	}
}

func TestApplyOptionsDefaults(t *testing.T) {
	cfg := applyOptions([]Option{nil, WithIDGenerator(nil)})
	if _, ok := cfg.env.(discardEnvironment); !ok {
		t.Fatalf("expected discard environment, got %T", cfg.env)
	}
	if _, ok := cfg.warner.(SlogWarner); !ok {
		t.Fatalf("expected slog warner, got %T", cfg.warner)
	}
	if id := cfg.ids(); !strings.HasPrefix(id, ".") || len(id) < 2 {
		t.Fatalf("unexpected root id %q", id)
	}
	if !cfg.checkContexts || !cfg.activity.Enabled || cfg.activity.Channel != "composite" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.eventContext == nil {
		t.Fatal("expected background event context")
	}
}

func TestLoggerBacksDefaultWarner(t *testing.T) {
	var buf bytes.Buffer
	cfg := applyOptions([]Option{WithLogger(slog.New(slog.NewTextHandler(&buf, nil)))})
	cfg.warner.Warn("Warning: something odd")
	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "channel=composite") {
		t.Fatalf("unexpected log output %q", out)
	}
}

func TestDedupeWrapsConfiguredWarner(t *testing.T) {
	capture := &CaptureWarner{}
	cfg := applyOptions([]Option{WithWarner(capture), WithWarningDedupe(true)})
	for _, message := range []string{"a", "a", "b", "a"} {
		cfg.warner.Warn(message)
	}
	if got := strings.Join(capture.Messages(), ","); got != "a,b,a" {
		t.Fatalf("expected consecutive duplicates dropped, got %q", got)
	}
}
