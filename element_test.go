package composite

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHLiftsKeyAndRef(t *testing.T) {
	props := Props{"key": "A", "ref": "static0", "className": "x"}
	el := H("div", props, "child")

	if el.Key != "A" || el.Ref != "static0" {
		t.Fatalf("expected key and ref lifted, got %q %q", el.Key, el.Ref)
	}
	if diff := cmp.Diff(Props{"className": "x"}, el.Props); diff != "" {
		t.Fatalf("unexpected props (-want +got):\n%s", diff)
	}
	if _, ok := props["key"]; !ok {
		t.Fatalf("expected input props untouched")
	}
	if el.TypeName() != "div" {
		t.Fatalf("unexpected type name %q", el.TypeName())
	}
	if keyed := H("span", nil).Keyed("B").WithRef("r"); keyed.Key != "B" || keyed.Ref != "r" {
		t.Fatalf("unexpected builder result %+v", keyed)
	}
}

func TestFlattenChildrenNamesSlots(t *testing.T) {
	var warnings []string
	slots := flattenChildren([]any{
		H("a", nil),
		nil,
		H("b", Props{"key": "x"}),
		[]any{"text", H("c", nil)},
		false,
		7,
		H("d", Props{"key": "x"}),
	}, func(message string) { warnings = append(warnings, message) })

	var names []string
	for _, s := range slots {
		names = append(names, s.name)
	}
	want := []string{"0", "$x", "3:0", "3:1", "5"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("unexpected slot names (-want +got):\n%s", diff)
	}
	if slots[2].desc != textDesc("text") || slots[4].desc != textDesc("7") {
		t.Fatalf("unexpected text descriptions %v %v", slots[2].desc, slots[4].desc)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected duplicate key warning, got %v", warnings)
	}
}

func TestSameDesc(t *testing.T) {
	class := MustCreateClass(&Spec{Render: renderNothing})
	cases := []struct {
		name       string
		prev, next any
		want       bool
	}{
		{"empty", nil, nil, true},
		{"text", textDesc("a"), textDesc("b"), true},
		{"text to element", textDesc("a"), H("div", nil), false},
		{"same tag", H("div", nil), H("div", Props{"x": 1}), true},
		{"different tag", H("div", nil), H("span", nil), false},
		{"different key", H(class, Props{"key": "A"}), H(class, Props{"key": "B"}), false},
		{"same class", H(class, nil), H(class, nil), true},
		{"element to empty", H(class, nil), nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := sameDesc(tc.prev, tc.next); got != tc.want {
				t.Fatalf("sameDesc = %v, want %v", got, tc.want)
			}
		})
	}
}
