// Package config loads runtime settings for the composite runtime from YAML
// and turns them into runtime and rule options.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	composite "github.com/goliatone/go-composite"
	"github.com/goliatone/go-composite/internal/hydrate"
	"github.com/goliatone/go-composite/pkg/activity"
	"github.com/goliatone/go-composite/rules"
)

// ErrInvalidConfig marks settings rejected by Validate.
var ErrInvalidConfig = errors.New("config: invalid settings")

// Config is the top level settings document.
type Config struct {
	Warnings WarningsConfig `yaml:"warnings"`
	Context  ContextConfig  `yaml:"context"`
	Activity ActivityConfig `yaml:"activity"`
	Rules    RulesConfig    `yaml:"rules"`
}

// WarningsConfig controls how diagnostics are written.
type WarningsConfig struct {
	// Prefix is prepended to every warning line, ahead of "Warning: ".
	Prefix string `yaml:"prefix" validate:"max=64"`
	Dedupe bool   `yaml:"dedupe"`
}

type ContextConfig struct {
	// CheckOwnerParent compares owner and parent context on mount.
	CheckOwnerParent bool `yaml:"check_owner_parent"`
}

type ActivityConfig struct {
	Enabled bool   `yaml:"enabled"`
	Channel string `yaml:"channel" validate:"required_if=Enabled true"`
	// Verbs limits emission to these lifecycle verbs.
	Verbs []string `yaml:"verbs" validate:"omitempty,dive,lifecycle_verb"`
}

type RulesConfig struct {
	// Engine is one of rules.Engines().
	Engine string `yaml:"engine" validate:"omitempty,rule_engine"`
}

// Default returns the settings used when a document omits a key.
func Default() Config {
	return Config{
		Warnings: WarningsConfig{},
		Context:  ContextConfig{CheckOwnerParent: true},
		Activity: ActivityConfig{Enabled: true, Channel: activity.DefaultChannel},
		Rules:    RulesConfig{Engine: rules.EngineExpr},
	}
}

// Parse decodes a YAML document on top of Default.
func Parse(data []byte) (Config, error) {
	return parse(hydrate.Context{Source: "inline"}, data)
}

// Load reads and decodes the YAML document at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return parse(hydrate.Context{Source: path}, data)
}

func parse(ctx hydrate.Context, data []byte) (Config, error) {
	decoder := hydrate.NewDecoder(
		hydrate.WithDefaults(Default()),
		hydrate.WithKnownFields[Config](),
		hydrate.WithPreHook[Config](normalizeEngine),
		hydrate.WithPostHook[Config](func(_ hydrate.Context, cfg *Config) error {
			return cfg.Validate()
		}),
	)
	return decoder.DecodeBytes(ctx, data)
}

func normalizeEngine(_ hydrate.Context, payload map[string]any) (map[string]any, error) {
	section, ok := payload["rules"].(map[string]any)
	if !ok {
		return payload, nil
	}
	if engine, ok := section["engine"].(string); ok {
		section["engine"] = strings.ToLower(strings.TrimSpace(engine))
	}
	return payload, nil
}

var settingsValidate = newSettingsValidate()

func newSettingsValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("rule_engine", func(fl validator.FieldLevel) bool {
		return slices.Contains(rules.Engines(), fl.Field().String())
	})
	_ = v.RegisterValidation("lifecycle_verb", func(fl validator.FieldLevel) bool {
		return slices.Contains(activity.LifecycleVerbs, fl.Field().String())
	})
	return v
}

// Validate reports settings the runtime cannot honour.
func (c Config) Validate() error {
	err := settingsValidate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		path := strings.TrimPrefix(fe.Namespace(), "Config.")
		switch fe.Tag() {
		case "rule_engine":
			errs = append(errs, fmt.Errorf("%w: %s %q is not available (have %s)",
				ErrInvalidConfig, path, fe.Value(), strings.Join(rules.Engines(), ", ")))
		case "lifecycle_verb":
			errs = append(errs, fmt.Errorf("%w: %s %q is not a lifecycle verb (have %s)",
				ErrInvalidConfig, path, fe.Value(), strings.Join(activity.LifecycleVerbs, ", ")))
		case "required_if":
			errs = append(errs, fmt.Errorf("%w: %s is required when activity is enabled", ErrInvalidConfig, path))
		default:
			errs = append(errs, fmt.Errorf("%w: %s failed %s=%s", ErrInvalidConfig, path, fe.Tag(), fe.Param()))
		}
	}
	return errors.Join(errs...)
}

// RuntimeOptions converts the settings into runtime options. Warnings are
// written through logger, which may be nil.
func (c Config) RuntimeOptions(logger *slog.Logger) []composite.Option {
	if logger == nil {
		logger = slog.Default()
	}
	sink := composite.SlogWarner{Logger: logger}
	prefix := c.Warnings.Prefix
	return []composite.Option{
		composite.WithLogger(logger),
		composite.WithWarner(composite.WarnerFunc(func(message string) {
			sink.Warn(prefix + message)
		})),
		composite.WithWarningDedupe(c.Warnings.Dedupe),
		composite.WithContextCheck(c.Context.CheckOwnerParent),
		composite.WithActivityConfig(activity.Config{
			Enabled: c.Activity.Enabled,
			Channel: c.Activity.Channel,
			Verbs:   c.Activity.Verbs,
		}),
	}
}

// RuleOptions converts the rule settings into rule options.
func (c Config) RuleOptions(extra ...rules.Option) []rules.Option {
	opts := []rules.Option{rules.WithEngine(c.Rules.Engine)}
	return append(opts, extra...)
}
