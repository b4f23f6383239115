package composite_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-composite"
	"github.com/goliatone/go-composite/memhost"
)

func TestContextReachesDescendants(t *testing.T) {
	h := newHarness(t)
	var seen composite.ContextMap
	grandchild := composite.MustCreateClass(&composite.Spec{
		DisplayName: "Grandchild",
		ContextTypes: map[string]composite.Validator{
			"foo":   composite.PropTypes.String,
			"depth": composite.PropTypes.Number,
		},
		ComponentDidMount: func(c *composite.Instance) { seen = c.Context() },
		Render:            renderTag("div"),
	})
	child := composite.MustCreateClass(&composite.Spec{
		DisplayName:       "Child",
		ContextTypes:      map[string]composite.Validator{"depth": composite.PropTypes.Number},
		ChildContextTypes: map[string]composite.Validator{"depth": composite.PropTypes.Number},
		GetChildContext: func(c *composite.Instance) composite.ContextMap {
			return composite.ContextMap{"depth": c.Context().Get("depth").(int) + 1}
		},
		Render: func(*composite.Instance) (*composite.Element, error) {
			return composite.H(grandchild, nil), nil
		},
	})
	parent := composite.MustCreateClass(&composite.Spec{
		DisplayName: "Parent",
		ChildContextTypes: map[string]composite.Validator{
			"foo":   composite.PropTypes.String,
			"depth": composite.PropTypes.Number,
		},
		GetChildContext: func(*composite.Instance) composite.ContextMap {
			return composite.ContextMap{"foo": "bar", "depth": 0}
		},
		Render: func(*composite.Instance) (*composite.Element, error) {
			return composite.H(child, nil), nil
		},
	})

	h.render(t, composite.H(parent, nil))

	if diff := cmp.Diff(composite.ContextMap{"foo": "bar", "depth": 1}, seen); diff != "" {
		t.Fatalf("unexpected grandchild context (-want +got):\n%s", diff)
	}
	if h.warner.Len() != 0 {
		t.Fatalf("unexpected warnings %v", h.warner.Messages())
	}
}

func TestContextIsFilteredToDeclaredKeys(t *testing.T) {
	h := newHarness(t)
	var seen composite.ContextMap
	consumer := composite.MustCreateClass(&composite.Spec{
		DisplayName:       "Consumer",
		ContextTypes:      map[string]composite.Validator{"foo": composite.PropTypes.String},
		ComponentDidMount: func(c *composite.Instance) { seen = c.Context() },
		Render:            renderTag("div"),
	})
	undeclared := composite.MustCreateClass(&composite.Spec{
		DisplayName: "Undeclared",
		ComponentDidMount: func(c *composite.Instance) {
			if len(c.Context()) != 0 {
				t.Errorf("expected empty context without contextTypes, got %v", c.Context())
			}
		},
		Render: renderTag("div"),
	})
	provider := composite.MustCreateClass(&composite.Spec{
		DisplayName: "Provider",
		ChildContextTypes: map[string]composite.Validator{
			"foo": composite.PropTypes.String,
			"bar": composite.PropTypes.Number,
		},
		GetChildContext: func(*composite.Instance) composite.ContextMap {
			return composite.ContextMap{"foo": "abc", "bar": 123}
		},
		Render: func(*composite.Instance) (*composite.Element, error) {
			return composite.H("div", nil, composite.H(consumer, nil), composite.H(undeclared, nil)), nil
		},
	})

	h.render(t, composite.H(provider, nil))

	if diff := cmp.Diff(composite.ContextMap{"foo": "abc"}, seen); diff != "" {
		t.Fatalf("unexpected filtered context (-want +got):\n%s", diff)
	}
}

func TestWithContextMismatchWarns(t *testing.T) {
	h := newHarness(t)
	var seen composite.ContextMap
	component := composite.MustCreateClass(&composite.Spec{
		DisplayName:       "Component",
		ContextTypes:      map[string]composite.Validator{"foo": composite.PropTypes.String},
		ComponentDidMount: func(c *composite.Instance) { seen = c.Context() },
		Render:            renderTag("div"),
	})

	err := h.rt.WithContext(composite.ContextMap{"foo": "bar"}, func() error {
		_, err := h.rt.Render(composite.H(component, nil), memhost.NewContainer())
		return err
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := []string{
		"Warning: withContext is deprecated and will be removed in a future version. Use a wrapper component with getChildContext instead.",
		"owner based context (keys: foo) does not equal parent based context (keys: ) while mounting Component",
	}
	if diff := cmp.Diff(want, h.warner.Messages()); diff != "" {
		t.Fatalf("unexpected warnings (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(composite.ContextMap{"foo": "bar"}, seen); diff != "" {
		t.Fatalf("expected owner based context to win (-want +got):\n%s", diff)
	}
}

func TestMountWarningOrder(t *testing.T) {
	h := newHarness(t)
	component := composite.MustCreateClass(&composite.Spec{
		DisplayName:  "Component",
		ContextTypes: map[string]composite.Validator{"foo": composite.PropTypes.String},
		PropTypes:    map[string]composite.Validator{"n": composite.PropTypes.Number},
		Render:       renderTag("div"),
	})

	err := h.rt.WithContext(composite.ContextMap{"foo": 1}, func() error {
		_, err := h.rt.Render(composite.H(component, composite.Props{"n": "x"}), memhost.NewContainer())
		return err
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := []string{
		"Warning: withContext is deprecated and will be removed in a future version. Use a wrapper component with getChildContext instead.",
		"Warning: Invalid context `foo` of type `number` supplied to `Component`, expected `string`.",
		"Warning: Invalid prop `n` of type `string` supplied to `Component`, expected `number`.",
		"owner based context (keys: foo) does not equal parent based context (keys: ) while mounting Component",
	}
	if diff := cmp.Diff(want, h.warner.Messages()); diff != "" {
		t.Fatalf("unexpected warnings (-want +got):\n%s", diff)
	}
}

func TestContextMismatchCheckedOnUpdate(t *testing.T) {
	h := newHarness(t)
	component := composite.MustCreateClass(&composite.Spec{
		DisplayName:  "Component",
		ContextTypes: map[string]composite.Validator{"foo": composite.PropTypes.String},
		Render:       renderTag("div"),
	})
	container := memhost.NewContainer()

	err := h.rt.WithContext(composite.ContextMap{"foo": "bar"}, func() error {
		if _, err := h.rt.Render(composite.H(component, nil), container); err != nil {
			return err
		}
		_, err := h.rt.Render(composite.H(component, composite.Props{"n": 1}), container)
		return err
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	mismatch := "owner based context (keys: foo) does not equal parent based context (keys: ) while mounting Component"
	want := []string{
		"Warning: withContext is deprecated and will be removed in a future version. Use a wrapper component with getChildContext instead.",
		mismatch,
		mismatch,
	}
	if diff := cmp.Diff(want, h.warner.Messages()); diff != "" {
		t.Fatalf("unexpected warnings (-want +got):\n%s", diff)
	}
}

func TestContextCheckCanBeDisabled(t *testing.T) {
	h := newHarness(t, composite.WithContextCheck(false))
	component := composite.MustCreateClass(&composite.Spec{
		DisplayName:  "Component",
		ContextTypes: map[string]composite.Validator{"foo": composite.PropTypes.String},
		Render:       renderTag("div"),
	})
	err := h.rt.WithContext(composite.ContextMap{"foo": "bar"}, func() error {
		_, err := h.rt.Render(composite.H(component, nil), memhost.NewContainer())
		return err
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if h.warner.Len() != 1 {
		t.Fatalf("expected only the deprecation warning, got %v", h.warner.Messages())
	}
}

func TestContextTypeWarnings(t *testing.T) {
	h := newHarness(t, composite.WithContextCheck(false))
	component := composite.MustCreateClass(&composite.Spec{
		DisplayName:  "Component",
		ContextTypes: map[string]composite.Validator{"foo": composite.PropTypes.String.IsRequired()},
		Render:       renderTag("div"),
	})
	provider := composite.MustCreateClass(&composite.Spec{
		DisplayName:       "ComponentInFooNumberContext",
		ChildContextTypes: map[string]composite.Validator{"foo": composite.PropTypes.Number},
		GetChildContext: func(*composite.Instance) composite.ContextMap {
			return composite.ContextMap{"foo": 123}
		},
		Render: func(*composite.Instance) (*composite.Element, error) {
			return composite.H(component, nil), nil
		},
	})

	h.render(t, composite.H(component, nil))
	err := h.rt.WithContext(composite.ContextMap{"foo": "bar"}, func() error {
		_, err := h.rt.Render(composite.H(component, nil), memhost.NewContainer())
		return err
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	h.render(t, composite.H(provider, nil))

	want := []string{
		"Warning: Required context `foo` was not specified in `Component`.",
		"Warning: withContext is deprecated and will be removed in a future version. Use a wrapper component with getChildContext instead.",
		"Warning: Invalid context `foo` of type `number` supplied to `Component`, expected `string`. Check the render method of `ComponentInFooNumberContext`.",
	}
	if diff := cmp.Diff(want, h.warner.Messages()); diff != "" {
		t.Fatalf("unexpected warnings (-want +got):\n%s", diff)
	}
}

func TestChildContextTypeWarnings(t *testing.T) {
	h := newHarness(t)
	component := composite.MustCreateClass(&composite.Spec{
		DisplayName: "Component",
		ChildContextTypes: map[string]composite.Validator{
			"foo": composite.PropTypes.String.IsRequired(),
			"bar": composite.PropTypes.Number,
		},
		GetChildContext: func(c *composite.Instance) composite.ContextMap {
			return composite.ContextMap{"foo": c.Props().Get("foo"), "bar": c.Props().Get("bar")}
		},
		Render: renderTag("div"),
	})
	container := memhost.NewContainer()

	for _, props := range []composite.Props{nil, {"foo": 123}, {"foo": "foo", "bar": 1}} {
		if _, err := h.rt.Render(composite.H(component, props), container); err != nil {
			t.Fatalf("render %v: %v", props, err)
		}
	}

	want := []string{
		"Warning: Required child context `foo` was not specified in `Component`.",
		"Warning: Invalid child context `foo` of type `number` supplied to `Component`, expected `string`.",
	}
	if diff := cmp.Diff(want, h.warner.Messages()); diff != "" {
		t.Fatalf("unexpected warnings (-want +got):\n%s", diff)
	}
}

func TestChildContextInvariants(t *testing.T) {
	cases := []struct {
		name string
		spec *composite.Spec
		want string
	}{
		{
			name: "missing child context types",
			spec: &composite.Spec{
				DisplayName: "Component",
				GetChildContext: func(*composite.Instance) composite.ContextMap {
					return composite.ContextMap{"foo": "bar"}
				},
				Render: renderTag("div"),
			},
			want: "Invariant Violation: Component.getChildContext(): childContextTypes must be defined in order to use getChildContext().",
		},
		{
			name: "undeclared key",
			spec: &composite.Spec{
				DisplayName:       "Component",
				ChildContextTypes: map[string]composite.Validator{"foo": composite.PropTypes.String},
				GetChildContext: func(*composite.Instance) composite.ContextMap {
					return composite.ContextMap{"foo": "bar", "baz": 1}
				},
				Render: renderTag("div"),
			},
			want: "Invariant Violation: Component.getChildContext(): key \"baz\" is not defined in childContextTypes.",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			_, err := h.rt.Render(composite.H(composite.MustCreateClass(tc.spec), nil), memhost.NewContainer())
			if !errors.Is(err, composite.ErrInvariant) {
				t.Fatalf("expected invariant, got %v", err)
			}
			if err.Error() != tc.want {
				t.Fatalf("unexpected message %q", err.Error())
			}
			if h.host.Len() != 0 {
				t.Fatalf("expected nothing left mounted")
			}
		})
	}
}

func TestContextUpdatesFlowToHooks(t *testing.T) {
	h := newHarness(t)
	var received, previous []string
	var shouldSaw string
	child := composite.MustCreateClass(&composite.Spec{
		DisplayName:  "Child",
		ContextTypes: map[string]composite.Validator{"foo": composite.PropTypes.String},
		ComponentWillReceiveProps: func(_ *composite.Instance, _ composite.Props, next composite.ContextMap) {
			received = append(received, next.Get("foo").(string))
		},
		ShouldComponentUpdate: func(_ *composite.Instance, _ composite.Props, _ composite.State, next composite.ContextMap) composite.UpdateDecision {
			shouldSaw = next.Get("foo").(string)
			return composite.UpdateProceed
		},
		ComponentDidUpdate: func(_ *composite.Instance, _ composite.Props, _ composite.State, prev composite.ContextMap) {
			previous = append(previous, prev.Get("foo").(string))
		},
		Render: func(c *composite.Instance) (*composite.Element, error) {
			return composite.H("span", nil, c.Context().Get("foo")), nil
		},
	})
	parent := composite.MustCreateClass(&composite.Spec{
		DisplayName:       "Parent",
		ChildContextTypes: map[string]composite.Validator{"foo": composite.PropTypes.String},
		GetInitialState:   func(*composite.Instance) any { return composite.State{"foo": "abc"} },
		GetChildContext: func(c *composite.Instance) composite.ContextMap {
			return composite.ContextMap{"foo": c.State().Get("foo")}
		},
		Render: func(*composite.Instance) (*composite.Element, error) {
			return composite.H(child, composite.Props{"ref": "child"}), nil
		},
	})

	inst := h.render(t, composite.H(parent, nil))
	if err := inst.SetState(composite.State{"foo": "def"}); err != nil {
		t.Fatalf("set state: %v", err)
	}

	if diff := cmp.Diff([]string{"def"}, received); diff != "" {
		t.Fatalf("unexpected next contexts (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"abc"}, previous); diff != "" {
		t.Fatalf("unexpected previous contexts (-want +got):\n%s", diff)
	}
	if shouldSaw != "def" {
		t.Fatalf("expected shouldComponentUpdate to see the next context, got %q", shouldSaw)
	}
	childInst := inst.Ref("child").(*composite.Instance)
	if childInst.Context().Get("foo") != "def" || textOf(t, childInst) != "def" {
		t.Fatalf("expected child to render the new context, got %v", childInst.Context())
	}
}
