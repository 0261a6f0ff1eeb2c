package kinesis

import (
	"github.com/kinesis-dev/kinesis/pkg/dom"

	kerrors "github.com/kinesis-dev/kinesis/internal/errors"
)

// Conditional shows a pre-built nested fragment while a condition on state
// holds. The nested fragment is built once and reused across toggles.
type Conditional[S any] struct {
	host     dom.Host
	cell     *Cell[S]
	check    func(S) bool
	anchor   dom.Node
	fragment *Fragment[S]
	showing  bool
}

func newConditional[S any](e *env[S], check func(S) bool, nested func(S) *Builder[S]) (*Conditional[S], error) {
	anchor, err := e.host.CreateText("")
	if err != nil {
		return nil, kerrors.FromError(err, "K101").WithOp("conditional.build")
	}
	var b *Builder[S]
	e.cell.Read(func(s S) { b = nested(s) })
	fragment, err := b.build(e)
	if err != nil {
		return nil, err
	}
	return &Conditional[S]{
		host:     e.host,
		cell:     e.cell,
		check:    check,
		anchor:   anchor,
		fragment: fragment,
	}, nil
}

// Mount inserts the anchor only. Content appears on the first update that
// finds the condition true.
func (c *Conditional[S]) Mount(loc dom.Location) error {
	return loc.Mount(c.host, c.anchor)
}

// Update mounts, detaches or forwards to the nested fragment depending on
// how the condition moved.
func (c *Conditional[S]) Update(changed []DepID) error {
	var show bool
	c.cell.Read(func(s S) { show = c.check(s) })

	switch {
	case show && !c.showing:
		if err := c.fragment.Mount(dom.AtAnchor(c.host, c.anchor)); err != nil {
			return err
		}
		c.showing = true
		return c.fragment.FullUpdate()
	case !show && c.showing:
		c.showing = false
		return c.fragment.Detach(true)
	case show:
		return c.fragment.Update(changed)
	}
	return nil
}

// Detach removes the anchor when top-level and detaches the nested
// fragment if it is showing.
func (c *Conditional[S]) Detach(topLevel bool) error {
	if topLevel {
		if err := dom.Remove(c.host, c.anchor); err != nil {
			return err
		}
	}
	if !c.showing {
		return nil
	}
	c.showing = false
	return c.fragment.Detach(topLevel)
}

// Showing reports whether the nested fragment is mounted.
func (c *Conditional[S]) Showing() bool {
	return c.showing
}

// Fragment returns the nested fragment.
func (c *Conditional[S]) Fragment() *Fragment[S] {
	return c.fragment
}
