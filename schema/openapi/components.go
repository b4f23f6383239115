package openapi

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// componentRegistry promotes shape schemas that occur more than once to
// shared components referenced through $ref.
type componentRegistry struct {
	shapes    map[string]*componentEntry
	named     []*componentEntry
	usedNames map[string]struct{}
}

type componentEntry struct {
	hint   string
	name   string
	schema map[string]any
	count  int
}

func newComponentRegistry() *componentRegistry {
	return &componentRegistry{
		shapes:    map[string]*componentEntry{},
		usedNames: map[string]struct{}{},
	}
}

// observe counts one occurrence of a shape.
func (r *componentRegistry) observe(nameHint string, schema map[string]any) {
	digest := digestOf(schema)
	if entry, ok := r.shapes[digest]; ok {
		entry.count++
		return
	}
	r.shapes[digest] = &componentEntry{hint: nameHint, schema: schema, count: 1}
}

// reference returns the $ref of a shared shape, naming it on first use, or
// "" when the shape stays inline.
func (r *componentRegistry) reference(schema map[string]any) string {
	entry, ok := r.shapes[digestOf(schema)]
	if !ok || entry.count < 2 {
		return ""
	}
	if entry.name == "" {
		entry.name = r.uniqueName(entry.hint)
		r.named = append(r.named, entry)
	}
	return refTo(entry.name)
}

// resolve copies schema replacing nested shared shapes with references.
func (r *componentRegistry) resolve(schema map[string]any) map[string]any {
	out := make(map[string]any, len(schema))
	for key, value := range schema {
		switch key {
		case "properties":
			props, _ := value.(map[string]any)
			resolved := make(map[string]any, len(props))
			for name, child := range props {
				resolved[name] = r.resolveChild(child)
			}
			out[key] = resolved
		case "items", "additionalProperties":
			out[key] = r.resolveChild(value)
		case "oneOf":
			variants, _ := value.([]any)
			resolved := make([]any, len(variants))
			for i, child := range variants {
				resolved[i] = r.resolveChild(child)
			}
			out[key] = resolved
		default:
			out[key] = value
		}
	}
	return out
}

func (r *componentRegistry) resolveChild(value any) any {
	child, ok := value.(map[string]any)
	if !ok {
		return value
	}
	if isShape(child) {
		if ref := r.reference(child); ref != "" {
			return map[string]any{"$ref": ref}
		}
	}
	return r.resolve(child)
}

// shared resolves every named shape; resolving one may name more.
func (r *componentRegistry) shared() map[string]any {
	out := map[string]any{}
	for i := 0; i < len(r.named); i++ {
		entry := r.named[i]
		out[entry.name] = r.resolve(entry.schema)
	}
	return out
}

func (r *componentRegistry) uniqueName(name string) string {
	safe := sanitizeComponentName(name)
	if safe == "" {
		safe = "Schema"
	}
	if _, exists := r.usedNames[safe]; !exists {
		r.usedNames[safe] = struct{}{}
		return safe
	}
	suffix := 1
	for {
		candidate := fmt.Sprintf("%s%d", safe, suffix)
		if _, exists := r.usedNames[candidate]; !exists {
			r.usedNames[candidate] = struct{}{}
			return candidate
		}
		suffix++
	}
}

func isShape(schema map[string]any) bool {
	_, ok := schema["properties"]
	return ok
}

func refTo(name string) string {
	return "#/components/schemas/" + name
}

func digestOf(schema map[string]any) string {
	// encoding/json sorts map keys, so equal shapes produce equal digests.
	raw, err := json.Marshal(schema)
	if err != nil {
		return fmt.Sprintf("%p", schema)
	}
	return string(raw)
}

var componentNameRegexp = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

func sanitizeComponentName(name string) string {
	name = componentNameRegexp.ReplaceAllString(name, "_")
	name = trimUnderscores(name)
	if name == "" {
		return ""
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}

func trimUnderscores(input string) string {
	start := 0
	for start < len(input) && input[start] == '_' {
		start++
	}
	end := len(input)
	for end > start && input[end-1] == '_' {
		end--
	}
	return input[start:end]
}
