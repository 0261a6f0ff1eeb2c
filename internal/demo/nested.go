package demo

import (
	"strconv"

	"github.com/kinesis-dev/kinesis/pkg/dom"
	"github.com/kinesis-dev/kinesis/pkg/kinesis"
)

// Display events and dependencies.
const (
	Reset kinesis.EventID = 0

	Shown kinesis.DepID = 7
)

// Display is a child component showing a value pushed down by its parent.
// Its reset button clears the value and bounces the change back up.
type Display struct {
	value int
}

// Value returns the displayed value.
func (d *Display) Value() int { return d.value }

// Dependencies implements kinesis.DependencyDeclarer.
func (d *Display) Dependencies() []kinesis.DepID {
	return kinesis.Deps(Shown)
}

// HandleEvent implements kinesis.Component.
func (d *Display) HandleEvent(id kinesis.EventID) ([]kinesis.DepID, bool) {
	if id != Reset {
		return nil, false
	}
	d.value = 0
	return kinesis.Deps(Shown), true
}

// Render implements kinesis.Component.
func (d *Display) Render() *kinesis.Builder[*Display] {
	return kinesis.NewBuilder[*Display]().
		WithElement("div", kinesis.Root).
		WithText("child sees ", 0).
		WithElement("span", 0).
		WithNode(kinesis.Element("button").On("click", Reset), 0).
		WithText("reset", 3).
		WithUpdatable(kinesis.Deps(Shown), 2, func(d *Display) string {
			return strconv.Itoa(d.value)
		})
}

// Parent owns a count and embeds a Display mirroring it.
type Parent struct {
	count   int
	display *Display
}

// NewParent returns a parent starting at count.
func NewParent(count int) *Parent {
	return &Parent{count: count, display: &Display{}}
}

// Value returns the parent's count.
func (p *Parent) Value() int { return p.count }

// Display returns the embedded child.
func (p *Parent) Display() *Display { return p.display }

// Dependencies implements kinesis.DependencyDeclarer.
func (p *Parent) Dependencies() []kinesis.DepID {
	return kinesis.Deps(Count)
}

// HandleEvent implements kinesis.Component.
func (p *Parent) HandleEvent(id kinesis.EventID) ([]kinesis.DepID, bool) {
	if id != Increment {
		return nil, false
	}
	p.count++
	return kinesis.Deps(Count), true
}

// Render implements kinesis.Component.
func (p *Parent) Render() *kinesis.Builder[*Parent] {
	return kinesis.NewBuilder[*Parent]().
		WithElement("section", kinesis.Root).
		WithText("parent has ", 0).
		WithUpdatable(kinesis.Deps(Count), 0, func(p *Parent) string {
			return strconv.Itoa(p.count)
		}).
		WithNode(kinesis.Element("button").On("click", Increment), kinesis.Root).
		WithText("increment", 2).
		WithComponent(kinesis.Deps(Count), kinesis.Root,
			kinesis.Nest(p.display, pushCount, kinesis.WithBind(pullCount)).Named("display"))
}

// pushCount copies the parent's count into the child.
func pushCount(p *Parent, d *Display, _ []kinesis.DepID) ([]kinesis.DepID, bool) {
	if d.value == p.count {
		return nil, false
	}
	d.value = p.count
	return kinesis.Deps(Shown), true
}

// pullCount copies a child-side change back into the parent.
func pullCount(p *Parent, d *Display, _ []kinesis.DepID) ([]kinesis.DepID, bool) {
	if p.count == d.value {
		return nil, false
	}
	p.count = d.value
	return kinesis.Deps(Count), true
}

// NewParentController builds a nested parent/child controller.
func NewParentController(host dom.Host, opts ...kinesis.Option) (kinesis.Mountable, error) {
	return kinesis.New(host, NewParent(0), opts...)
}

// Components returns the demo factories by name.
func Components() map[string]kinesis.Factory {
	return map[string]kinesis.Factory{
		"counter": NewCounterController,
		"nested":  NewParentController,
	}
}
