package openapi

import (
	"encoding/json"
	"fmt"
	"sort"

	composite "github.com/goliatone/go-composite"
)

type openAPIDocumentBuilder struct {
	config   generatorConfig
	registry *componentRegistry
	roots    []rootComponent
}

type rootComponent struct {
	name   string
	schema map[string]any
}

func newOpenAPIDocumentBuilder(config generatorConfig) *openAPIDocumentBuilder {
	return &openAPIDocumentBuilder{
		config:   config,
		registry: newComponentRegistry(),
	}
}

func (b *openAPIDocumentBuilder) addClass(class *composite.Class) error {
	name := class.Name()
	if name == "" {
		name = "Anonymous"
	}

	var defaults composite.Props
	if b.config.defaults {
		props, err := class.DefaultProps()
		if err != nil {
			return fmt.Errorf("openapi: default props of %s: %w", name, err)
		}
		defaults = props
	}
	b.addRoot(name+"Props", class.PropTypes(), defaults)

	if b.config.contexts {
		if types := class.ContextTypes(); len(types) > 0 {
			b.addRoot(name+"Context", types, nil)
		}
		if types := class.ChildContextTypes(); len(types) > 0 {
			b.addRoot(name+"ChildContext", types, nil)
		}
	}
	return nil
}

func (b *openAPIDocumentBuilder) addRoot(name string, types map[string]composite.Validator, defaults composite.Props) {
	name = b.registry.uniqueName(name)

	keys := make([]string, 0, len(types))
	for key := range types {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	properties := make(map[string]any, len(keys))
	var required []string
	for _, key := range keys {
		var property map[string]any
		describer, ok := types[key].(composite.Describer)
		if ok {
			descriptor := describer.Describe()
			property = schemaForDescriptor(descriptor, b.registry, name+"_"+key)
			if descriptor.Required {
				required = append(required, key)
			}
		} else {
			property = map[string]any{"x-kind": "custom"}
		}
		if value, ok := defaults[key]; ok && encodable(value) {
			property["default"] = value
		}
		properties[key] = property
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	b.roots = append(b.roots, rootComponent{name: name, schema: schema})
}

func (b *openAPIDocumentBuilder) build() (map[string]any, error) {
	schemas := map[string]any{}
	for _, root := range b.roots {
		schemas[root.name] = b.registry.resolve(root.schema)
	}
	for name, schema := range b.registry.shared() {
		schemas[name] = schema
	}

	document := map[string]any{
		"openapi": b.config.openAPIVersion,
		"info":    b.buildInfo(),
		"paths":   map[string]any{},
		"components": map[string]any{
			"schemas": schemas,
		},
	}
	if err := validateDocument(document); err != nil {
		return nil, err
	}
	return document, nil
}

func (b *openAPIDocumentBuilder) buildInfo() map[string]any {
	info := map[string]any{
		"title":   b.config.info.Title,
		"version": b.config.info.Version,
	}
	if b.config.info.Description != "" {
		info["description"] = b.config.info.Description
	}
	return info
}

func encodable(value any) bool {
	if value == nil {
		return false
	}
	_, err := json.Marshal(value)
	return err == nil
}

func validateDocument(document map[string]any) error {
	if document == nil {
		return fmt.Errorf("openapi: document cannot be nil")
	}
	openapi, _ := document["openapi"].(string)
	if openapi == "" {
		return fmt.Errorf("openapi: document missing version string")
	}
	info, _ := document["info"].(map[string]any)
	if info == nil {
		return fmt.Errorf("openapi: document missing info section")
	}
	if title, _ := info["title"].(string); title == "" {
		return fmt.Errorf("openapi: info.title must be set")
	}
	if version, _ := info["version"].(string); version == "" {
		return fmt.Errorf("openapi: info.version must be set")
	}
	components, _ := document["components"].(map[string]any)
	schemas, _ := components["schemas"].(map[string]any)
	for name, value := range schemas {
		if _, ok := value.(map[string]any); !ok {
			return fmt.Errorf("openapi: component %q invalid payload", name)
		}
	}
	return nil
}
