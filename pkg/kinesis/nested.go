package kinesis

import "github.com/kinesis-dev/kinesis/pkg/dom"

// Nested is a child component prepared by Nest for Builder.WithComponent.
type Nested[S any] interface {
	part(e *env[S]) (Part, error)
}

// Adapter copies state between a parent and a child component. It receives
// the ids that changed on one side and returns the ids that consequently
// changed on the other; ok is false when nothing relevant changed.
type Adapter[S, C any] func(parent S, child C, changed []DepID) (ids []DepID, ok bool)

// NestOption configures a Nesting.
type NestOption[S any, C Component[C]] func(*Nesting[S, C])

// WithBind installs the child-to-parent direction. After the child handles
// one of its own events, bind runs with the parent borrowed exclusively
// and the returned ids are notified on the parent controller.
func WithBind[S any, C Component[C]](bind Adapter[S, C]) NestOption[S, C] {
	return func(n *Nesting[S, C]) { n.bind = bind }
}

// Nesting describes a child component embedded in a parent of state S.
type Nesting[S any, C Component[C]] struct {
	child   C
	adapter Adapter[S, C]
	bind    Adapter[S, C]
	name    string
}

// Nest embeds child. adapter runs on every parent update that touches the
// part's dependencies, with the parent borrowed shared and the child
// exclusively, and returns the child ids to update.
func Nest[S any, C Component[C]](child C, adapter Adapter[S, C], opts ...NestOption[S, C]) *Nesting[S, C] {
	n := &Nesting[S, C]{child: child, adapter: adapter}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Named sets the child controller's name.
func (n *Nesting[S, C]) Named(name string) *Nesting[S, C] {
	n.name = name
	return n
}

func (n *Nesting[S, C]) part(e *env[S]) (Part, error) {
	var child *Controller[C]

	opts := []Option{WithLogger(e.logger), WithObserver(e.observer)}
	if n.name != "" {
		opts = append(opts, WithName(n.name))
	}
	if n.bind != nil {
		opts = append(opts, WithBoundUpdate(func(changed []DepID) error {
			var (
				ids []DepID
				ok  bool
			)
			e.cell.Write(func(p S) {
				child.cell.Read(func(c C) { ids, ok = n.bind(p, c, changed) })
			})
			if !ok || e.notify == nil {
				return nil
			}
			return e.notify(ids)
		}))
	}

	child, err := New(e.host, n.child, opts...)
	if err != nil {
		return nil, err
	}
	return &NestedComponent[S, C]{parent: e.cell, child: child, adapter: n.adapter}, nil
}

// NestedComponent owns a child Controller inside a parent fragment.
type NestedComponent[S any, C Component[C]] struct {
	parent  *Cell[S]
	child   *Controller[C]
	adapter Adapter[S, C]
}

// Mount mounts the child controller, which also fully updates it.
func (n *NestedComponent[S, C]) Mount(loc dom.Location) error {
	return n.child.Mount(loc)
}

// Update runs the adapter and forwards the resulting child ids. No borrow
// is held while the child updates.
func (n *NestedComponent[S, C]) Update(changed []DepID) error {
	var (
		ids []DepID
		ok  bool
	)
	n.parent.Read(func(p S) {
		n.child.cell.Write(func(c C) { ids, ok = n.adapter(p, c, changed) })
	})
	if !ok {
		return nil
	}
	return n.child.refresh(ids)
}

// Detach detaches the child controller.
func (n *NestedComponent[S, C]) Detach(topLevel bool) error {
	return n.child.Detach(topLevel)
}

// Child returns the child controller.
func (n *NestedComponent[S, C]) Child() *Controller[C] {
	return n.child
}
