package composite

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-composite/layering"
)

// ContextFrame is the contribution of one provider to a context chain.
type ContextFrame struct {
	Provider string
	Values   ContextMap
}

// ContextChain is an immutable stack of context frames ordered from the
// outermost provider to the innermost. Push never mutates the receiver.
type ContextChain struct {
	frames []ContextFrame
}

// NewContextChain builds a chain from frames, copying every value map.
func NewContextChain(frames ...ContextFrame) ContextChain {
	chain := ContextChain{}
	for _, frame := range frames {
		chain = chain.Push(frame.Provider, frame.Values)
	}
	return chain
}

// Push returns a new chain with values layered on top. Empty contributions
// are skipped.
func (c ContextChain) Push(provider string, values ContextMap) ContextChain {
	if len(values) == 0 {
		return c
	}
	frames := make([]ContextFrame, len(c.frames), len(c.frames)+1)
	copy(frames, c.frames)
	frames = append(frames, ContextFrame{
		Provider: provider,
		Values:   ContextMap(layering.CloneMap(values)),
	})
	return ContextChain{frames: frames}
}

// Len returns the number of frames.
func (c ContextChain) Len() int {
	return len(c.frames)
}

// Providers lists the providers from outermost to innermost.
func (c ContextChain) Providers() []string {
	out := make([]string, len(c.frames))
	for i, frame := range c.frames {
		out[i] = frame.Provider
	}
	return out
}

// Resolve flattens the chain; inner providers override outer ones.
func (c ContextChain) Resolve() ContextMap {
	layers := make([]map[string]any, len(c.frames))
	for i, frame := range c.frames {
		layers[i] = frame.Values
	}
	return ContextMap(layering.Overlay(layers...))
}

// FilterContext returns the subset of context declared in contextTypes. It
// never mutates its input. A nil result means nothing was declared.
func FilterContext(context ContextMap, contextTypes map[string]Validator) ContextMap {
	if len(contextTypes) == 0 {
		return ContextMap{}
	}
	keys := make(map[string]struct{}, len(contextTypes))
	for key := range contextTypes {
		keys[key] = struct{}{}
	}
	return ContextMap(layering.Pick(context, keys))
}

// FilterChildContext validates the contribution of a provider against its
// childContextTypes and returns a detached copy alongside the warnings the
// validation produced.
func FilterChildContext(childContext ContextMap, childContextTypes map[string]Validator, componentName string) (ContextMap, []string) {
	warnings := checkTypes(childContextTypes, childContext, componentName, "", LocationChildContext)
	if childContext == nil {
		return nil, warnings
	}
	return ContextMap(layering.CloneMap(childContext)), warnings
}

// ContextMismatch describes a disagreement between the owner based and the
// parent based context of a component.
type ContextMismatch struct {
	Component  string
	OwnerKeys  []string
	ParentKeys []string
}

// Message renders the diagnostic line for the mismatch.
func (m ContextMismatch) Message() string {
	return fmt.Sprintf("owner based context (keys: %s) does not equal parent based context (keys: %s) while mounting %s",
		strings.Join(m.OwnerKeys, ", "), strings.Join(m.ParentKeys, ", "), m.Component)
}

// CheckContexts compares both channels restricted to contextTypes and
// reports a mismatch when they differ.
func CheckContexts(ownerBased, parentBased ContextChain, contextTypes map[string]Validator, componentName string) (ContextMismatch, bool) {
	owner := FilterContext(ownerBased.Resolve(), contextTypes)
	parent := FilterContext(parentBased.Resolve(), contextTypes)
	if cmp.Equal(owner, parent, contextCompareOptions...) {
		return ContextMismatch{}, false
	}
	return ContextMismatch{
		Component:  componentName,
		OwnerKeys:  sortedKeys(owner),
		ParentKeys: sortedKeys(parent),
	}, true
}

var contextCompareOptions = []cmp.Option{
	cmp.Exporter(func(reflect.Type) bool { return true }),
}
