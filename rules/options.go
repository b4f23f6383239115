package rules

import "log/slog"

// Option configures rules and evaluators.
type Option func(*config)

type config struct {
	engine    string
	cache     ProgramCache
	functions *FunctionRegistry
	logger    Logger
	required  bool
	metadata  map[string]any
}

func applyOptions(opts []Option) config {
	cfg := config{engine: EngineExpr}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = noopLogger{}
	}
	return cfg
}

// WithEngine selects the engine used by New.
func WithEngine(engine string) Option {
	return func(cfg *config) {
		if engine != "" {
			cfg.engine = engine
		}
	}
}

// WithProgramCache shares compiled programs across rules.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *config) {
		cfg.cache = cache
	}
}

// WithFunctionRegistry exposes registry functions to expressions.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *config) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *config) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}

// WithLogger records every evaluation.
func WithLogger(logger Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithSlog records evaluations on logger at debug level, failures at warn.
func WithSlog(logger *slog.Logger) Option {
	return WithLogger(SlogLogger{Logger: logger})
}

// WithMetadata exposes metadata to expressions as `metadata`.
func WithMetadata(metadata map[string]any) Option {
	return func(cfg *config) {
		cfg.metadata = metadata
	}
}

// Required makes a missing value a violation.
func Required() Option {
	return func(cfg *config) {
		cfg.required = true
	}
}
