package composite

import (
	"fmt"
	"strconv"
)

// Element is an immutable-by-convention description of what to render at a
// slot. Type is either a host tag (string) or a *Class.
type Element struct {
	Type     any
	Key      string
	Ref      string
	Props    Props
	Children []any

	owner      *Instance
	ownerChain ContextChain
	stamped    bool
}

// H builds an element. The reserved props "key" and "ref" are lifted onto
// the element; the input props map is not modified.
func H(typ any, props Props, children ...any) *Element {
	el := &Element{Type: typ, Props: Props{}}
	for key, value := range props {
		switch key {
		case "key":
			el.Key = fmt.Sprint(value)
		case "ref":
			el.Ref, _ = value.(string)
		default:
			el.Props[key] = value
		}
	}
	if len(children) > 0 {
		el.Children = append([]any(nil), children...)
	}
	return el
}

// Keyed sets the element key and returns the element.
func (e *Element) Keyed(key string) *Element {
	e.Key = key
	return e
}

// WithRef sets the ref name and returns the element.
func (e *Element) WithRef(ref string) *Element {
	e.Ref = ref
	return e
}

// Owner returns the instance whose render produced the element.
func (e *Element) Owner() *Instance {
	if e == nil {
		return nil
	}
	return e.owner
}

// TypeName returns the host tag or the class display name.
func (e *Element) TypeName() string {
	if e == nil {
		return ""
	}
	switch typ := e.Type.(type) {
	case string:
		return typ
	case *Class:
		return classLabel(typ.Name())
	default:
		return fmt.Sprintf("%T", typ)
	}
}

// withProps returns a copy of e carrying props, keeping identity metadata.
func (e *Element) withProps(props Props) *Element {
	clone := *e
	clone.Props = props
	return &clone
}

// stamp records owner attribution on el and every element nested in its
// children that was not already attributed.
func stamp(el *Element, owner *Instance, chain ContextChain) {
	if el == nil || el.stamped {
		return
	}
	el.owner = owner
	el.ownerChain = chain
	el.stamped = true
	stampChildren(el.Children, owner, chain)
}

func stampChildren(children []any, owner *Instance, chain ContextChain) {
	for _, child := range children {
		switch typed := child.(type) {
		case *Element:
			stamp(typed, owner, chain)
		case []any:
			stampChildren(typed, owner, chain)
		}
	}
}

// slot is one position in a flattened child list.
type slot struct {
	name string
	desc any
}

// flattenChildren assigns slot names from keys, or from the position in the
// flattened list. Nil and boolean children keep their position but render
// nothing.
func flattenChildren(children []any, warn func(string)) []slot {
	var (
		out  []slot
		seen = map[string]struct{}{}
	)
	var walk func(items []any, prefix string)
	walk = func(items []any, prefix string) {
		for i, item := range items {
			if nested, ok := item.([]any); ok {
				walk(nested, prefix+strconv.Itoa(i)+":")
				continue
			}
			desc := normalizeChild(item)
			if desc == nil {
				continue
			}
			name := prefix + strconv.Itoa(i)
			if el, ok := desc.(*Element); ok && el.Key != "" {
				name = prefix + "$" + el.Key
			}
			if _, dup := seen[name]; dup {
				if warn != nil {
					warn(fmt.Sprintf("Warning: flattenChildren(...): Encountered two children with the same key, `%s`. "+
						"Child keys must be unique; when two children share a key, only the first child will be used.", name))
				}
				continue
			}
			seen[name] = struct{}{}
			out = append(out, slot{name: name, desc: desc})
		}
	}
	walk(children, "")
	return out
}

// normalizeChild maps a child value to *Element, a text string or nil.
func normalizeChild(child any) any {
	switch typed := child.(type) {
	case nil, bool:
		return nil
	case *Element:
		if typed == nil {
			return nil
		}
		return typed
	case string:
		return textDesc(typed)
	case textDesc:
		return typed
	case fmt.Stringer:
		return textDesc(typed.String())
	}
	return textDesc(fmt.Sprint(child))
}

// textDesc describes a text node.
type textDesc string

// sameDesc reports whether next can update the node created for prev in
// place: both text, both empty, or elements of the same type and key.
func sameDesc(prev, next any) bool {
	switch p := prev.(type) {
	case nil:
		return next == nil
	case textDesc:
		_, ok := next.(textDesc)
		return ok
	case *Element:
		n, ok := next.(*Element)
		if !ok || p == nil || n == nil {
			return false
		}
		return p.Type == n.Type && p.Key == n.Key
	}
	return false
}
