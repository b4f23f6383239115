package openapi

type generatorConfig struct {
	openAPIVersion string
	info           openapiInfo
	contexts       bool
	defaults       bool
}

type openapiInfo struct {
	Title       string
	Version     string
	Description string
}

func defaultGeneratorConfig() generatorConfig {
	return generatorConfig{
		openAPIVersion: "3.0.3",
		info: openapiInfo{
			Title:   "Component Props",
			Version: "1.0.0",
		},
		contexts: true,
		defaults: true,
	}
}

// GeneratorOption configures the OpenAPI generator behaviour.
type GeneratorOption func(*generatorConfig)

// WithOpenAPIVersion overrides the OpenAPI version string (default: 3.0.3).
func WithOpenAPIVersion(version string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if version == "" {
			return
		}
		cfg.openAPIVersion = version
	}
}

// InfoOption configures optional fields on the OpenAPI info section.
type InfoOption func(*openapiInfo)

// WithInfoDescription sets the optional description field for the info section.
func WithInfoDescription(description string) InfoOption {
	return func(info *openapiInfo) {
		info.Description = description
	}
}

// WithInfo configures the info block. Empty strings retain the existing values.
func WithInfo(title, version string, opts ...InfoOption) GeneratorOption {
	return func(cfg *generatorConfig) {
		if title != "" {
			cfg.info.Title = title
		}
		if version != "" {
			cfg.info.Version = version
		}
		for _, opt := range opts {
			if opt != nil {
				opt(&cfg.info)
			}
		}
	}
}

// WithContextSchemas toggles the <Name>Context and <Name>ChildContext
// components (default: on).
func WithContextSchemas(enabled bool) GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.contexts = enabled
	}
}

// WithDefaultValues toggles publishing getDefaultProps results as property
// defaults (default: on).
func WithDefaultValues(enabled bool) GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.defaults = enabled
	}
}
