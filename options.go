package composite

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/goliatone/go-composite/pkg/activity"
)

// Option configures a Runtime.
type Option func(*runtimeConfig)

// RefObserver is told about every ref registration; target is nil when the
// ref is released.
type RefObserver func(owner *Instance, name string, target any)

type runtimeConfig struct {
	env           Environment
	warner        Warner
	logger        *slog.Logger
	hooks         activity.Hooks
	activity      activity.Config
	eventContext  context.Context
	ids           func() string
	refObserver   RefObserver
	dedupe        bool
	checkContexts bool
}

func defaultConfig() runtimeConfig {
	return runtimeConfig{
		activity: activity.Config{
			Enabled: true,
			Channel: activity.DefaultChannel,
		},
		ids:           newRootID,
		checkContexts: true,
	}
}

func applyOptions(opts []Option) runtimeConfig {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.env == nil {
		cfg.env = discardEnvironment{}
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	if cfg.warner == nil {
		cfg.warner = SlogWarner{Logger: cfg.logger}
	}
	if cfg.dedupe {
		cfg.warner = &dedupeWarner{next: cfg.warner}
	}
	if cfg.ids == nil {
		cfg.ids = newRootID
	}
	if cfg.eventContext == nil {
		cfg.eventContext = context.Background()
	}
	return cfg
}

func newRootID() string {
	return "." + uuid.NewString()
}

// WithEnvironment sets the host environment that owns platform nodes.
func WithEnvironment(env Environment) Option {
	return func(cfg *runtimeConfig) {
		cfg.env = env
	}
}

// WithWarner routes runtime diagnostics to warner.
func WithWarner(warner Warner) Option {
	return func(cfg *runtimeConfig) {
		cfg.warner = warner
	}
}

// WithLogger sets the structured logger. Without WithWarner, warnings are
// logged at WARN level through it as well.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *runtimeConfig) {
		cfg.logger = logger
	}
}

// WithWarningDedupe drops a warning identical to the one emitted right
// before it.
func WithWarningDedupe(enabled bool) Option {
	return func(cfg *runtimeConfig) {
		cfg.dedupe = enabled
	}
}

// WithContextCheck toggles the owner/parent context comparison on mount.
func WithContextCheck(enabled bool) Option {
	return func(cfg *runtimeConfig) {
		cfg.checkContexts = enabled
	}
}

// WithActivityHooks attaches lifecycle activity hooks. Nil entries are
// dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := activity.CompactHooks(hooks)
	return func(cfg *runtimeConfig) {
		cfg.hooks = normalized
	}
}

// WithActivityConfig overrides the activity emission defaults.
func WithActivityConfig(config activity.Config) Option {
	return func(cfg *runtimeConfig) {
		cfg.activity = config
	}
}

// WithEventContext sets the context handed to activity hooks.
func WithEventContext(ctx context.Context) Option {
	return func(cfg *runtimeConfig) {
		cfg.eventContext = ctx
	}
}

// WithIDGenerator replaces the generator of root identities.
func WithIDGenerator(next func() string) Option {
	return func(cfg *runtimeConfig) {
		cfg.ids = next
	}
}

// WithRefObserver registers a callback invoked on ref attach and detach.
func WithRefObserver(observer RefObserver) Option {
	return func(cfg *runtimeConfig) {
		cfg.refObserver = observer
	}
}
