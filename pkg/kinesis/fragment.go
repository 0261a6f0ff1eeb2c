package kinesis

import (
	"github.com/kinesis-dev/kinesis/pkg/dom"

	kerrors "github.com/kinesis-dev/kinesis/internal/errors"
)

// Part is a dynamic region of a Fragment.
type Part interface {
	// Mount inserts the part's own nodes at loc.
	Mount(loc dom.Location) error

	// Update refreshes the part's content. changed is the full set of ids
	// the Fragment was asked to update with.
	Update(changed []DepID) error

	// Detach removes the part's content. Nodes whose parent is also being
	// removed are only removed when topLevel is set.
	Detach(topLevel bool) error
}

type slot[T any] struct {
	parent int
	value  T
}

// Fragment is a built, host-bound instance of a Builder.
type Fragment[S any] struct {
	host    dom.Host
	nodes   []slot[dom.Node]
	parts   []slot[Part]
	index   depIndex
	mounted bool
}

func (f *Fragment[S]) location(parent int, loc dom.Location) dom.Location {
	if parent == Root {
		return loc
	}
	return dom.AtParent(f.nodes[parent].value)
}

// Mount attaches the static nodes and mounts every part, in order. Mount
// does not fill dynamic content; follow it with FullUpdate. Mounting an
// already mounted fragment panics. A failed mount leaves the host tree
// partially modified and the fragment unmounted.
func (f *Fragment[S]) Mount(loc dom.Location) error {
	if f.mounted {
		kerrors.Invariant("K001", "fragment.mount", "fragment is already mounted")
	}
	for _, n := range f.nodes {
		if err := f.location(n.parent, loc).Mount(f.host, n.value); err != nil {
			return err
		}
	}
	for _, p := range f.parts {
		if err := p.value.Mount(f.location(p.parent, loc)); err != nil {
			return err
		}
	}
	f.mounted = true
	return nil
}

// Update refreshes the parts registered against any id in changed. Each
// affected part is updated once, in registration order. Unmounted
// fragments and unknown ids are ignored.
func (f *Fragment[S]) Update(changed []DepID) error {
	_, err := f.update(changed)
	return err
}

func (f *Fragment[S]) update(changed []DepID) (int, error) {
	if !f.mounted {
		return 0, nil
	}
	affected := f.index.lookup(changed)
	for _, i := range affected {
		if err := f.parts[i].value.Update(changed); err != nil {
			return 0, err
		}
	}
	return len(affected), nil
}

// FullUpdate updates every part that declared at least one dependency.
func (f *Fragment[S]) FullUpdate() error {
	return f.Update(f.index.keys())
}

// Detach removes the top-level static nodes and detaches every part.
// Detaching an unmounted fragment does nothing.
func (f *Fragment[S]) Detach(topLevel bool) error {
	if !f.mounted {
		return nil
	}
	for _, n := range f.nodes {
		if n.parent != Root {
			continue
		}
		if err := dom.Remove(f.host, n.value); err != nil {
			return err
		}
	}
	for _, p := range f.parts {
		if err := p.value.Detach(topLevel); err != nil {
			return err
		}
	}
	f.mounted = false
	return nil
}

// Mounted reports whether the fragment is mounted.
func (f *Fragment[S]) Mounted() bool {
	return f.mounted
}

// Nodes returns the static host nodes in insertion order.
func (f *Fragment[S]) Nodes() []dom.Node {
	out := make([]dom.Node, len(f.nodes))
	for i, n := range f.nodes {
		out[i] = n.value
	}
	return out
}

// Parts returns the dynamic parts in insertion order.
func (f *Fragment[S]) Parts() []Part {
	out := make([]Part, len(f.parts))
	for i, p := range f.parts {
		out[i] = p.value
	}
	return out
}

// Dependencies returns every id some part registered against, in first
// registration order.
func (f *Fragment[S]) Dependencies() []DepID {
	return f.index.keys()
}
