package dom

import (
	kerrors "github.com/kinesis-dev/kinesis/internal/errors"
)

// Node is an opaque handle to a host tree node. Implementations must be
// comparable; the runtime relies on identity.
type Node any

// Host is the host-tree capability surface.
type Host interface {
	// CreateElement creates a detached element node.
	CreateElement(tag string) (Node, error)

	// CreateText creates a detached text node.
	CreateText(content string) (Node, error)

	// SetText overwrites the content of a text node.
	SetText(node Node, content string) error

	// InsertBefore inserts node into parent before anchor. A nil anchor
	// appends. Inserting a node that is already attached moves it.
	InsertBefore(parent, node, anchor Node) error

	// RemoveChild removes node from parent.
	RemoveChild(parent, node Node) error

	// Parent returns the parent of node, if it has one.
	Parent(node Node) (Node, bool)

	// AddEventListener binds cb to the named event on node.
	AddEventListener(node Node, event string, cb *Callback) error
}

// Callback is an identity-stable host callback.
type Callback struct {
	fn func()
}

// NewCallback wraps fn.
func NewCallback(fn func()) *Callback {
	return &Callback{fn: fn}
}

// Invoke runs the callback.
func (c *Callback) Invoke() {
	if c != nil && c.fn != nil {
		c.fn()
	}
}

// Location is a mount target: a parent plus an optional anchor.
type Location struct {
	Parent Node
	Anchor Node
}

// AtParent returns a Location that appends to parent.
func AtParent(parent Node) Location {
	return Location{Parent: parent}
}

// Anchored returns a Location that inserts into parent before anchor.
func Anchored(parent, anchor Node) Location {
	return Location{Parent: parent, Anchor: anchor}
}

// AtAnchor returns a Location that inserts before anchor inside the
// anchor's current parent. The anchor must be attached.
func AtAnchor(host Host, anchor Node) Location {
	parent, ok := host.Parent(anchor)
	if !ok {
		kerrors.Invariant("K003", "dom.AtAnchor", "anchor is not attached")
	}
	return Location{Parent: parent, Anchor: anchor}
}

// Mount inserts node at the location.
func (l Location) Mount(host Host, node Node) error {
	if err := host.InsertBefore(l.Parent, node, l.Anchor); err != nil {
		return kerrors.FromError(err, "K102").WithOp("location.mount")
	}
	return nil
}

// Remove detaches node from whatever parent it currently has. The node
// must be attached.
func Remove(host Host, node Node) error {
	parent, ok := host.Parent(node)
	if !ok {
		kerrors.Invariant("K003", "dom.Remove", "node is not attached")
	}
	if err := host.RemoveChild(parent, node); err != nil {
		return kerrors.FromError(err, "K103").WithOp("dom.remove")
	}
	return nil
}
