package kinesis

import (
	"github.com/kinesis-dev/kinesis/pkg/dom"

	kerrors "github.com/kinesis-dev/kinesis/internal/errors"
)

// Each renders a list of child fragments before an anchor. Every update
// throws the previous children away and builds new ones; there is no
// keyed reconciliation.
type Each[S any] struct {
	env      *env[S]
	items    func(S) []*Builder[S]
	anchor   dom.Node
	children []*Fragment[S]
}

func newEach[S any](e *env[S], items func(S) []*Builder[S]) (*Each[S], error) {
	anchor, err := e.host.CreateText("")
	if err != nil {
		return nil, kerrors.FromError(err, "K101").WithOp("each.build")
	}
	return &Each[S]{env: e, items: items, anchor: anchor}, nil
}

// Mount inserts the anchor only.
func (l *Each[S]) Mount(loc dom.Location) error {
	return loc.Mount(l.env.host, l.anchor)
}

// Update detaches every current child, then builds, mounts and fully
// updates one fresh fragment per item, in order.
func (l *Each[S]) Update([]DepID) error {
	if err := l.detachChildren(true); err != nil {
		return err
	}

	var builders []*Builder[S]
	l.env.cell.Read(func(s S) { builders = l.items(s) })

	loc := dom.AtAnchor(l.env.host, l.anchor)
	for _, b := range builders {
		child, err := b.build(l.env)
		if err != nil {
			return err
		}
		if err := child.Mount(loc); err != nil {
			return err
		}
		l.children = append(l.children, child)
		if err := child.FullUpdate(); err != nil {
			return err
		}
	}
	return nil
}

// Detach detaches every child, then removes the anchor when top-level.
func (l *Each[S]) Detach(topLevel bool) error {
	if err := l.detachChildren(topLevel); err != nil {
		return err
	}
	if !topLevel {
		return nil
	}
	return dom.Remove(l.env.host, l.anchor)
}

func (l *Each[S]) detachChildren(topLevel bool) error {
	children := l.children
	l.children = nil
	for _, child := range children {
		if err := child.Detach(topLevel); err != nil {
			return err
		}
	}
	return nil
}

// Children returns the live child fragments in order.
func (l *Each[S]) Children() []*Fragment[S] {
	return append([]*Fragment[S](nil), l.children...)
}
