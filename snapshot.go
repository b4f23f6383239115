package composite

import (
	"encoding/json"
	"fmt"
)

// Snapshot is a serialisable view of a mounted subtree, used for logging,
// debugging and golden tests. Values that cannot be encoded as JSON, such as
// functions and elements, are replaced by a short placeholder.
type Snapshot struct {
	ID        string         `json:"id"`
	Kind      string         `json:"kind"`
	Type      string         `json:"type,omitempty"`
	Key       string         `json:"key,omitempty"`
	Ref       string         `json:"ref,omitempty"`
	Owner     string         `json:"owner,omitempty"`
	Lifecycle string         `json:"lifecycle,omitempty"`
	Text      string         `json:"text,omitempty"`
	Props     map[string]any `json:"props,omitempty"`
	State     map[string]any `json:"state,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
	Children  []Snapshot     `json:"children,omitempty"`
}

// Snapshot kinds.
const (
	SnapshotComposite = "composite"
	SnapshotHost      = "host"
	SnapshotText      = "text"
)

// Inspect captures the subtree behind handle, which is an *Instance or a
// *HostComponent as returned by Runtime.Render. ok is false for any other
// value.
func Inspect(handle any) (Snapshot, bool) {
	switch typed := handle.(type) {
	case *Instance:
		if typed == nil {
			return Snapshot{}, false
		}
		return snapshotOf(typed), true
	case *HostComponent:
		if typed == nil {
			return Snapshot{}, false
		}
		return snapshotOf(typed), true
	default:
		return Snapshot{}, false
	}
}

func snapshotOf(n node) Snapshot {
	switch typed := n.(type) {
	case *Instance:
		snap := Snapshot{
			ID:        typed.id,
			Kind:      SnapshotComposite,
			Type:      typed.Name(),
			Lifecycle: typed.lifecycle.String(),
			Props:     encodableValues(typed.props),
			State:     encodableValues(typed.state),
			Context:   encodableValues(typed.context),
		}
		describeElement(&snap, typed.element)
		if text, ok := typed.rendered.(*textNode); typed.rendered != nil && !(ok && text.empty) {
			snap.Children = []Snapshot{snapshotOf(typed.rendered)}
		}
		return snap
	case *HostComponent:
		snap := Snapshot{
			ID:    typed.id,
			Kind:  SnapshotHost,
			Type:  typed.Tag(),
			Props: encodableValues(typed.props),
		}
		describeElement(&snap, typed.element)
		for _, child := range typed.children {
			snap.Children = append(snap.Children, snapshotOf(child.node))
		}
		return snap
	case *textNode:
		return Snapshot{ID: typed.id, Kind: SnapshotText, Text: typed.text}
	default:
		return Snapshot{ID: n.nodeID()}
	}
}

func describeElement(snap *Snapshot, el *Element) {
	if el == nil {
		return
	}
	snap.Key = el.Key
	snap.Ref = el.Ref
	if owner := el.Owner(); owner != nil {
		snap.Owner = owner.Name()
	}
}

func encodableValues(values map[string]any) map[string]any {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]any, len(values))
	for key, value := range values {
		out[key] = encodableValue(value)
	}
	return out
}

func encodableValue(value any) any {
	switch typed := value.(type) {
	case nil:
		return nil
	case undefinedValue:
		return "<undefined>"
	case *Element:
		return "<" + typed.TypeName() + ">"
	case *Instance:
		return "<instance " + typed.Name() + ">"
	case *HostComponent:
		return "<host " + typed.Tag() + ">"
	}
	if kindOf(value) == "function" {
		return "<function>"
	}
	if _, err := json.Marshal(value); err != nil {
		return fmt.Sprintf("<%T>", value)
	}
	return value
}

// Find returns the first snapshot in depth-first order whose ID equals id.
func (s Snapshot) Find(id string) (Snapshot, bool) {
	if s.ID == id {
		return s, true
	}
	for _, child := range s.Children {
		if found, ok := child.Find(id); ok {
			return found, true
		}
	}
	return Snapshot{}, false
}

// ToJSON serialises the snapshot into JSON.
func (s Snapshot) ToJSON() ([]byte, error) {
	type alias Snapshot
	return json.Marshal(alias(s))
}

// SnapshotFromJSON deserialises a payload previously produced by ToJSON.
func SnapshotFromJSON(payload []byte) (Snapshot, error) {
	type alias Snapshot
	var snap alias
	if err := json.Unmarshal(payload, &snap); err != nil {
		return Snapshot{}, err
	}
	return Snapshot(snap), nil
}
