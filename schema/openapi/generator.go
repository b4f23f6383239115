// Package openapi renders the prop and context contracts of component
// classes as an OpenAPI document.
package openapi

import (
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	composite "github.com/goliatone/go-composite"
)

// Generator builds OpenAPI documents from classes.
type Generator struct {
	config generatorConfig
}

// NewGenerator constructs a generator with the provided options applied.
func NewGenerator(opts ...GeneratorOption) *Generator {
	cfg := defaultGeneratorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Generator{config: cfg}
}

// Generate returns the document describing classes. Each class publishes a
// <Name>Props component and, when declared, <Name>Context and
// <Name>ChildContext components.
func (g *Generator) Generate(classes ...*composite.Class) (map[string]any, error) {
	builder := newOpenAPIDocumentBuilder(g.config)
	for i, class := range classes {
		if class == nil {
			return nil, fmt.Errorf("openapi: class %d is nil", i)
		}
		if err := builder.addClass(class); err != nil {
			return nil, err
		}
	}
	return builder.build()
}

// JSON renders the document as indented JSON.
func (g *Generator) JSON(classes ...*composite.Class) ([]byte, error) {
	document, err := g.Generate(classes...)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(document, "", "  ")
}

// YAML renders the document as YAML.
func (g *Generator) YAML(classes ...*composite.Class) ([]byte, error) {
	document, err := g.Generate(classes...)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(document)
}

// Document is a shorthand for NewGenerator().Generate.
func Document(classes ...*composite.Class) (map[string]any, error) {
	return NewGenerator().Generate(classes...)
}

// SchemaFor converts a single validator into a schema. Validators that do not
// implement composite.Describer produce an unconstrained schema.
func SchemaFor(validator composite.Validator) map[string]any {
	describer, ok := validator.(composite.Describer)
	if !ok {
		return map[string]any{"x-kind": "custom"}
	}
	return schemaForDescriptor(describer.Describe(), nil, "")
}

// schemaForDescriptor converts d. When registry is set, nested shapes are
// counted so repeated ones can be shared.
func schemaForDescriptor(d composite.Descriptor, registry *componentRegistry, hint string) map[string]any {
	schema := map[string]any{}
	switch d.Kind {
	case "string", "boolean", "number", "array":
		schema["type"] = d.Kind
	case "object":
		schema["type"] = "object"
	case "function", "node", "element":
		schema["x-kind"] = d.Kind
	case "instance":
		schema["type"] = "object"
		schema["x-kind"] = "instance"
	case "enum":
		schema["enum"] = append([]any(nil), d.Enum...)
	case "union":
		variants := make([]any, len(d.Variants))
		for i, variant := range d.Variants {
			variants[i] = schemaForDescriptor(variant, registry, fmt.Sprintf("%s_variant%d", hint, i))
		}
		schema["oneOf"] = variants
	case "rule":
		schema["x-kind"] = "rule"
	case "", "any":
	default:
		schema["x-kind"] = d.Kind
	}

	if d.Elem != nil {
		elem := schemaForDescriptor(*d.Elem, registry, hint+"_item")
		if d.Kind == "array" {
			schema["items"] = elem
		} else {
			schema["additionalProperties"] = elem
		}
	}
	if d.Fields != nil {
		properties, required := fieldSchemas(d.Fields, registry, hint)
		schema["properties"] = properties
		if len(required) > 0 {
			schema["required"] = required
		}
		if registry != nil {
			registry.observe(hint, schema)
		}
	}
	if d.Rule != "" {
		schema["x-rule"] = d.Rule
	}
	return schema
}

func fieldSchemas(fields map[string]composite.Descriptor, registry *componentRegistry, hint string) (map[string]any, []string) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	properties := make(map[string]any, len(names))
	var required []string
	for _, name := range names {
		field := fields[name]
		properties[name] = schemaForDescriptor(field, registry, hint+"_"+name)
		if field.Required {
			required = append(required, name)
		}
	}
	return properties, required
}
