// Package layering holds the map composition primitives shared by props,
// state and context handling.
package layering

import (
	"fmt"
	"maps"
	"slices"
)

// DuplicateKeyError reports a key that two merged sources both produced.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("layering: duplicate key %q", e.Key)
}

// CloneMap returns a fresh shallow copy of values. A nil map stays nil so
// callers can keep the distinction between an absent and an empty mapping.
func CloneMap(values map[string]any) map[string]any {
	if values == nil {
		return nil
	}
	out := make(map[string]any, len(values))
	for key, value := range values {
		out[key] = value
	}
	return out
}

// Overlay composes frames ordered from weakest to strongest into a new map.
// Later frames replace earlier values key by key.
func Overlay(frames ...map[string]any) map[string]any {
	out := map[string]any{}
	for _, frame := range frames {
		for key, value := range frame {
			out[key] = value
		}
	}
	return out
}

// MergeUnique copies src into dst and fails on the first key, in sorted
// order, present in both. Presence, not value, decides a collision.
func MergeUnique(dst, src map[string]any) error {
	for _, key := range slices.Sorted(maps.Keys(src)) {
		if _, exists := dst[key]; exists {
			return &DuplicateKeyError{Key: key}
		}
	}
	for key, value := range src {
		dst[key] = value
	}
	return nil
}

// ApplyDefaults returns a new map holding values layered over defaults.
// Entries for which missing reports true fall back to the default, or are
// dropped when no default exists. Neither input is modified.
func ApplyDefaults(values, defaults map[string]any, missing func(any) bool) map[string]any {
	out := make(map[string]any, len(values)+len(defaults))
	for key, value := range values {
		if missing != nil && missing(value) {
			continue
		}
		out[key] = value
	}
	for key, value := range defaults {
		if _, ok := out[key]; ok {
			continue
		}
		if missing != nil && missing(value) {
			continue
		}
		out[key] = value
	}
	return out
}

// Pick returns a new map restricted to keys.
func Pick(values map[string]any, keys map[string]struct{}) map[string]any {
	out := make(map[string]any, len(keys))
	for key := range keys {
		if value, ok := values[key]; ok {
			out[key] = value
		}
	}
	return out
}
