package composite

import (
	"errors"
	"fmt"
)

var (
	// ErrInvariant is matched by every fatal misuse error raised by the runtime.
	ErrInvariant = errors.New("composite: invariant violation")
	// ErrMergeConflict indicates two spec sources defined the same key.
	ErrMergeConflict = errors.New("composite: merge conflict")
	// ErrReservedName indicates a statics key shadows a lifecycle or API name.
	ErrReservedName = errors.New("composite: reserved name")
	// ErrInvalidMixin indicates a class, element or instance was used as a mixin.
	ErrInvalidMixin = errors.New("composite: invalid mixin")
	// ErrInvalidTypeValidator indicates a nil entry in a type checker map.
	ErrInvalidTypeValidator = errors.New("composite: invalid type validator")
	// ErrMissingRender indicates a spec without a render function.
	ErrMissingRender = errors.New("composite: render is required")
	// ErrInvalidState indicates getInitialState returned something other than a mapping.
	ErrInvalidState = errors.New("composite: invalid initial state")
	// ErrNotMounted indicates an update was requested outside the allowed lifecycle states.
	ErrNotMounted = errors.New("composite: not mounted")
	// ErrOwnedProps indicates setProps/replaceProps on a non-root component.
	ErrOwnedProps = errors.New("composite: props owned by parent")
	// ErrRefWithoutOwner indicates a ref declared on an element nobody rendered.
	ErrRefWithoutOwner = errors.New("composite: ref without owner")
	// ErrHookPanic wraps a panic recovered from a user supplied hook.
	ErrHookPanic = errors.New("composite: hook panicked")
)

// InvariantError reports a fatal misuse. Message reproduces the historical
// wording, Kind narrows the failure for errors.Is checks.
type InvariantError struct {
	Kind    error
	Message string
}

func (e *InvariantError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return "Invariant Violation: " + e.Message
}

// Unwrap exposes both ErrInvariant and the specific kind.
func (e *InvariantError) Unwrap() []error {
	if e == nil {
		return nil
	}
	if e.Kind == nil {
		return []error{ErrInvariant}
	}
	return []error{ErrInvariant, e.Kind}
}

func invariant(kind error, format string, args ...any) error {
	return &InvariantError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// MergeConflictError carries the key and the two sources that both defined it.
type MergeConflictError struct {
	Key     string
	First   string
	Second  string
	Message string
}

func (e *MergeConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return "Invariant Violation: " + e.Message
}

func (e *MergeConflictError) Unwrap() []error {
	if e == nil {
		return nil
	}
	return []error{ErrInvariant, ErrMergeConflict}
}

func duplicateDefinition(key, first, second string) error {
	return &MergeConflictError{
		Key:    key,
		First:  first,
		Second: second,
		Message: fmt.Sprintf("ReactClass: You are attempting to define `%s` on your component more "+
			"than once. This conflict may be due to a mixin.", key),
	}
}

func duplicateResultKey(key, first, second string) error {
	return &MergeConflictError{
		Key:    key,
		First:  first,
		Second: second,
		Message: fmt.Sprintf("mergeIntoWithNoDuplicateKeys(): Tried to merge two objects with the same "+
			"key: `%s`. This conflict may be due to a mixin; in particular, this may be caused by two "+
			"getInitialState() or getDefaultProps() methods returning objects with clashing keys.", key),
	}
}

// HookPanicError wraps a value recovered from a panicking hook.
type HookPanicError struct {
	Component string
	Value     any
}

func (e *HookPanicError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if err, ok := e.Value.(error); ok {
		return fmt.Sprintf("composite: %s panicked: %v", e.Component, err)
	}
	return fmt.Sprintf("composite: %s panicked: %v", e.Component, e.Value)
}

func (e *HookPanicError) Unwrap() []error {
	if e == nil {
		return nil
	}
	if err, ok := e.Value.(error); ok {
		return []error{ErrHookPanic, err}
	}
	return []error{ErrHookPanic}
}
