// Package memhost is an in-memory host environment. It keeps a plain node
// tree that tests and tools can inspect after every operation.
package memhost

import (
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-composite"
)

// Node is a host element, a text run or a container.
type Node struct {
	ID       string
	Tag      string
	Props    composite.Props
	Text     string
	Children []*Node
	Parent   *Node
	text     bool
}

// IsText reports whether the node is a text run.
func (n *Node) IsText() bool { return n != nil && n.text }

// TextContent concatenates every text run below n.
func (n *Node) TextContent() string {
	if n == nil {
		return ""
	}
	if n.text {
		return n.Text
	}
	var sb strings.Builder
	for _, child := range n.Children {
		sb.WriteString(child.TextContent())
	}
	return sb.String()
}

// String renders the subtree as compact markup, handy in test failures.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.text {
		return n.Text
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "<%s>", n.Tag)
	for _, child := range n.Children {
		sb.WriteString(child.String())
	}
	fmt.Fprintf(&sb, "</%s>", n.Tag)
	return sb.String()
}

// Host implements composite.Environment on top of Node trees.
type Host struct {
	mu     sync.Mutex
	nodes  map[string]*Node
	purged []string
}

var _ composite.Environment = (*Host)(nil)

// New returns an empty host.
func New() *Host {
	return &Host{nodes: map[string]*Node{}}
}

// NewContainer returns a detached node usable as a mount container.
func NewContainer() *Node {
	return &Node{Tag: "container"}
}

// CreateNode implements composite.Environment.
func (h *Host) CreateNode(id, tag string, props composite.Props) any {
	n := &Node{ID: id, Tag: tag, Props: props}
	h.register(n)
	return n
}

// UpdateNode implements composite.Environment.
func (h *Host) UpdateNode(node any, _, next composite.Props) {
	if n, ok := node.(*Node); ok {
		n.Props = next
	}
}

// CreateText implements composite.Environment.
func (h *Host) CreateText(id, text string) any {
	n := &Node{ID: id, Text: text, text: true}
	h.register(n)
	return n
}

// UpdateText implements composite.Environment.
func (h *Host) UpdateText(node any, text string) {
	if n, ok := node.(*Node); ok {
		n.Text = text
	}
}

// SetChildren implements composite.Environment.
func (h *Host) SetChildren(parent any, children []any) {
	p, ok := parent.(*Node)
	if !ok {
		return
	}
	p.Children = p.Children[:0]
	for _, child := range children {
		c, ok := child.(*Node)
		if !ok || c == nil {
			continue
		}
		c.Parent = p
		p.Children = append(p.Children, c)
	}
}

// ReplaceNode implements composite.Environment.
func (h *Host) ReplaceNode(prev, next any) {
	old, ok := prev.(*Node)
	if !ok || old.Parent == nil {
		return
	}
	replacement, _ := next.(*Node)
	parent := old.Parent
	for i, child := range parent.Children {
		if child != old {
			continue
		}
		if replacement == nil {
			parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
		} else {
			replacement.Parent = parent
			parent.Children[i] = replacement
		}
		break
	}
	old.Parent = nil
}

// MountRoot implements composite.Environment.
func (h *Host) MountRoot(container, node any) {
	c, ok := container.(*Node)
	if !ok {
		return
	}
	c.Children = nil
	if n, ok := node.(*Node); ok && n != nil {
		n.Parent = c
		c.Children = []*Node{n}
	}
}

// UnmountRoot implements composite.Environment.
func (h *Host) UnmountRoot(container any) {
	c, ok := container.(*Node)
	if !ok {
		return
	}
	for _, child := range c.Children {
		child.Parent = nil
	}
	c.Children = nil
}

// Purge implements composite.Environment.
func (h *Host) Purge(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.purged = append(h.purged, id)
	delete(h.nodes, id)
}

// Lookup returns the live node registered under id.
func (h *Host) Lookup(id string) (*Node, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n, ok := h.nodes[id]
	return n, ok
}

// Len returns the number of live nodes.
func (h *Host) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.nodes)
}

// Purged returns the ids released so far, in order.
func (h *Host) Purged() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.purged...)
}

// ResetPurged clears the purge log.
func (h *Host) ResetPurged() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.purged = nil
}

func (h *Host) register(n *Node) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nodes[n.ID] = n
}
