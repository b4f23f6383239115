package composite

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func renderNothing(*Instance) (*Element, error) { return nil, nil }

func TestMergeSpecsOrdersMixinsBeforeSpec(t *testing.T) {
	var calls []string
	hook := func(label string) LifecycleFunc {
		return func(*Instance) { calls = append(calls, label) }
	}
	inner := &Spec{DisplayName: "Inner", ComponentDidMount: hook("inner")}
	outer := &Spec{DisplayName: "Outer", Mixins: []any{inner}, ComponentDidMount: hook("outer")}
	sibling := &Spec{ComponentDidMount: hook("sibling")}
	spec := &Spec{
		DisplayName:       "Component",
		Mixins:            []any{outer, sibling, inner},
		Render:            renderNothing,
		ComponentDidMount: hook("spec"),
	}

	merged, err := MergeSpecs(spec)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	for _, contribution := range merged.ComponentDidMount {
		contribution.Fn(nil)
	}
	want := []string{"inner", "outer", "sibling", "spec"}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Fatalf("unexpected hook order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Inner", "Outer", "mixin #3", "spec"}, merged.Sources); diff != "" {
		t.Fatalf("unexpected sources (-want +got):\n%s", diff)
	}
}

func TestMergeSpecsRejectsDuplicateDefineOnce(t *testing.T) {
	mixin := &Spec{Render: renderNothing}
	_, err := MergeSpecs(&Spec{Mixins: []any{mixin}, Render: renderNothing})
	if !errors.Is(err, ErrMergeConflict) || !errors.Is(err, ErrInvariant) {
		t.Fatalf("expected merge conflict, got %v", err)
	}
	var conflict *MergeConflictError
	if !errors.As(err, &conflict) || conflict.Key != "render" || conflict.First != "mixin #1" || conflict.Second != "spec" {
		t.Fatalf("unexpected conflict detail %+v", conflict)
	}

	decide := func(*Instance, Props, State, ContextMap) UpdateDecision { return UpdateProceed }
	_, err = MergeSpecs(&Spec{
		Mixins:                []any{&Spec{ShouldComponentUpdate: decide}},
		Render:                renderNothing,
		ShouldComponentUpdate: decide,
	})
	if !errors.Is(err, ErrMergeConflict) {
		t.Fatalf("expected shouldComponentUpdate conflict, got %v", err)
	}
}

func TestMergeSpecsStatics(t *testing.T) {
	cases := []struct {
		name    string
		spec    *Spec
		wantErr error
		message string
	}{
		{
			name: "collision",
			spec: &Spec{
				Mixins:  []any{&Spec{Statics: map[string]any{"abc": 1}}},
				Render:  renderNothing,
				Statics: map[string]any{"abc": 2},
			},
			wantErr: ErrMergeConflict,
			message: "Invariant Violation: ReactClass: You are attempting to define `abc` on your component more than once. This conflict may be due to a mixin.",
		},
		{
			name: "reserved",
			spec: &Spec{
				Render:  renderNothing,
				Statics: map[string]any{"getDefaultProps": 1},
			},
			wantErr: ErrReservedName,
			message: "Invariant Violation: ReactClass: You are attempting to define a reserved property, `getDefaultProps`, that shouldn't be on the \"statics\" key. Define it as an instance property instead; it will still be accessible on the constructor.",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := MergeSpecs(tc.spec)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if err.Error() != tc.message {
				t.Fatalf("unexpected message:\n%s", err.Error())
			}
		})
	}
}

func TestMergeSpecsMembers(t *testing.T) {
	fromMixin := Method(func(*Instance, ...any) any { return "mixin" })
	fromSpec := Method(func(*Instance, ...any) any { return "spec" })

	merged, err := MergeSpecs(&Spec{
		Mixins:  []any{&Spec{Members: map[string]any{"label": fromMixin}}},
		Render:  renderNothing,
		Members: map[string]any{"label": fromSpec},
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if got := merged.Members["label"].(Method)(nil); got != "spec" {
		t.Fatalf("expected spec member to win, got %v", got)
	}

	_, err = MergeSpecs(&Spec{
		Mixins: []any{
			&Spec{Members: map[string]any{"label": fromMixin}},
			&Spec{Members: map[string]any{"label": fromSpec}},
		},
		Render: renderNothing,
	})
	if !errors.Is(err, ErrMergeConflict) {
		t.Fatalf("expected mixin member conflict, got %v", err)
	}

	_, err = MergeSpecs(&Spec{Render: renderNothing, Members: map[string]any{"setState": fromSpec}})
	if !errors.Is(err, ErrReservedName) {
		t.Fatalf("expected reserved member, got %v", err)
	}
}

func TestMergeSpecsTypeMapsLastWins(t *testing.T) {
	merged, err := MergeSpecs(&Spec{
		Mixins: []any{&Spec{PropTypes: map[string]Validator{
			"value": PropTypes.Number,
			"label": PropTypes.String,
		}}},
		Render:    renderNothing,
		PropTypes: map[string]Validator{"value": PropTypes.String},
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if got := merged.PropTypes["value"].(TypeChecker).Describe().Kind; got != "string" {
		t.Fatalf("expected spec validator to override, got %s", got)
	}
	if _, ok := merged.PropTypes["label"]; !ok {
		t.Fatalf("expected mixin validator kept")
	}
}

func TestMergeSpecsRejectsComponentsAsMixins(t *testing.T) {
	class := MustCreateClass(&Spec{Render: renderNothing})
	cases := []struct {
		name    string
		mixin   any
		message string
	}{
		{
			name:    "class",
			mixin:   class,
			message: "Invariant Violation: ReactClass: You're attempting to use a component class as a mixin. Instead, just use a regular object.",
		},
		{
			name:    "element",
			mixin:   H(class, nil),
			message: "Invariant Violation: ReactClass: You're attempting to use a component as a mixin. Instead, just use a regular object.",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := MergeSpecs(&Spec{Mixins: []any{tc.mixin}, Render: renderNothing})
			if !errors.Is(err, ErrInvalidMixin) {
				t.Fatalf("expected invalid mixin, got %v", err)
			}
			if err.Error() != tc.message {
				t.Fatalf("unexpected message %q", err.Error())
			}
		})
	}
}

func TestInitialStateMergesContributions(t *testing.T) {
	merged, err := MergeSpecs(&Spec{
		DisplayName: "Component",
		Mixins: []any{&Spec{GetInitialState: func(*Instance) any {
			return map[string]any{"mixin": true}
		}}},
		Render: renderNothing,
		GetInitialState: func(*Instance) any {
			return State{"component": true}
		},
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	state, err := merged.initialState(nil, "Component")
	if err != nil {
		t.Fatalf("initial state: %v", err)
	}
	if diff := cmp.Diff(State{"mixin": true, "component": true}, state); diff != "" {
		t.Fatalf("unexpected state (-want +got):\n%s", diff)
	}
}

func TestInitialStateRejectsClashesAndNonMappings(t *testing.T) {
	clash, err := MergeSpecs(&Spec{
		Mixins:          []any{&Spec{GetInitialState: func(*Instance) any { return State{"x": true} }}},
		Render:          renderNothing,
		GetInitialState: func(*Instance) any { return State{"x": true} },
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	_, err = clash.initialState(nil, "Component")
	want := "Invariant Violation: mergeIntoWithNoDuplicateKeys(): Tried to merge two objects with the same key: `x`. This conflict may be due to a mixin; in particular, this may be caused by two getInitialState() or getDefaultProps() methods returning objects with clashing keys."
	if err == nil || err.Error() != want {
		t.Fatalf("unexpected error %v", err)
	}

	invalid, err := MergeSpecs(&Spec{
		Render:          renderNothing,
		GetInitialState: func(*Instance) any { return []string{"not", "a", "map"} },
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	_, err = invalid.initialState(nil, "Component")
	if !errors.Is(err, ErrInvalidState) || err.Error() != "Invariant Violation: Component.getInitialState(): must return an object or null" {
		t.Fatalf("unexpected error %v", err)
	}

	empty, err := MergeSpecs(&Spec{Render: renderNothing, GetInitialState: func(*Instance) any { return nil }})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	state, err := empty.initialState(nil, "Component")
	if err != nil || state != nil {
		t.Fatalf("expected nil state, got %v %v", state, err)
	}
}
