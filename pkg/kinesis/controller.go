package kinesis

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/kinesis-dev/kinesis/pkg/dom"

	kerrors "github.com/kinesis-dev/kinesis/internal/errors"
)

// Component is implemented by component types, usually pointers. Render
// describes the component's fragment; HandleEvent mutates state in
// response to a host event and reports which dependency ids changed.
type Component[C any] interface {
	Render() *Builder[C]
	HandleEvent(id EventID) (changed []DepID, ok bool)
}

// DependencyDeclarer is implemented by components that enumerate their
// dependency ids. Notifying an id outside that set panics.
type DependencyDeclarer interface {
	Dependencies() []DepID
}

// Mountable is a controller with its component type erased.
type Mountable interface {
	Name() string
	Mount(loc dom.Location) error
	Detach(topLevel bool) error
	HandleEvent(id EventID) error
	NotifyChanged(changed []DepID) error
}

type pendingNotify struct {
	ids   []DepID
	bound bool
}

// Controller owns a component, its root fragment and its event registry,
// and drives the event to state to update cycle.
type Controller[C Component[C]] struct {
	name        string
	host        dom.Host
	cell        *Cell[C]
	registry    *EventRegistry
	fragment    *Fragment[C]
	boundUpdate func([]DepID) error
	declared    map[DepID]struct{}
	logger      *slog.Logger
	observer    Observer

	updating bool
	pending  []pendingNotify
}

// New renders component and builds its fragment on host. The fragment is
// not mounted.
func New[C Component[C]](host dom.Host, component C, opts ...Option) (*Controller[C], error) {
	o := options{
		name:     strings.TrimPrefix(fmt.Sprintf("%T", component), "*"),
		logger:   slog.Default(),
		observer: NopObserver{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Controller[C]{
		name:        o.name,
		host:        host,
		cell:        NewCell(component),
		boundUpdate: o.boundUpdate,
		logger:      o.logger.With("component", o.name),
		observer:    o.observer,
	}
	c.registry = NewEventRegistry(c.dispatch)

	if d, ok := any(component).(DependencyDeclarer); ok {
		c.declared = make(map[DepID]struct{})
		for _, id := range d.Dependencies() {
			c.declared[id] = struct{}{}
		}
	}

	var b *Builder[C]
	c.cell.Read(func(comp C) { b = comp.Render() })
	fragment, err := b.build(&env[C]{
		host:     host,
		registry: c.registry,
		cell:     c.cell,
		notify:   c.NotifyChanged,
		logger:   o.logger,
		observer: o.observer,
	})
	if err != nil {
		c.fail("build", err)
		return nil, err
	}
	c.fragment = fragment
	return c, nil
}

// Mount mounts the root fragment at loc and fully updates it.
func (c *Controller[C]) Mount(loc dom.Location) error {
	if err := c.fragment.Mount(loc); err != nil {
		c.fail("mount", err)
		return err
	}
	if err := c.refresh(c.fragment.Dependencies()); err != nil {
		return err
	}
	c.logger.Debug("component mounted")
	c.observer.Mounted(c.name)
	return nil
}

// Detach detaches the root fragment.
func (c *Controller[C]) Detach(topLevel bool) error {
	if err := c.fragment.Detach(topLevel); err != nil {
		c.fail("detach", err)
		return err
	}
	c.logger.Debug("component detached", "top_level", topLevel)
	c.observer.Detached(c.name)
	return nil
}

// HandleEvent runs the component's event handler with the component
// borrowed exclusively, then notifies the ids it reports.
func (c *Controller[C]) HandleEvent(id EventID) error {
	start := time.Now()

	var (
		changed []DepID
		ok      bool
	)
	c.cell.Write(func(comp C) { changed, ok = comp.HandleEvent(id) })
	c.logger.Debug("event handled", "event", id, "changed", changed, "ok", ok)

	var err error
	if ok {
		err = c.NotifyChanged(changed)
	}
	c.observer.EventHandled(c.name, id, ok, time.Since(start))
	return err
}

// NotifyChanged updates the fragment for changed, then calls the bound
// update with every id notified during the pass. A call made while this
// controller is already updating is queued and handled before the outer
// call returns.
func (c *Controller[C]) NotifyChanged(changed []DepID) error {
	c.validate("controller.notify", changed)
	if c.updating {
		c.pending = append(c.pending, pendingNotify{ids: slices.Clone(changed), bound: true})
		return nil
	}

	propagate, err := c.flush(changed)
	if err != nil {
		return err
	}
	if c.boundUpdate == nil {
		return nil
	}
	return c.boundUpdate(union(changed, propagate))
}

// Mutate changes the component outside of an event, then notifies the ids
// fn returns.
func (c *Controller[C]) Mutate(fn func(C) []DepID) error {
	var changed []DepID
	c.cell.Write(func(comp C) { changed = fn(comp) })
	if len(changed) == 0 {
		return nil
	}
	return c.NotifyChanged(changed)
}

// refresh updates the fragment without reporting the ids outward. It is
// how a parent pushes state into a nested child.
func (c *Controller[C]) refresh(ids []DepID) error {
	c.validate("controller.refresh", ids)
	if c.updating {
		c.pending = append(c.pending, pendingNotify{ids: slices.Clone(ids)})
		return nil
	}

	propagate, err := c.flush(ids)
	if err != nil {
		return err
	}
	if len(propagate) == 0 || c.boundUpdate == nil {
		return nil
	}
	return c.boundUpdate(propagate)
}

// flush updates the fragment with changed and drains notifications queued
// meanwhile. It returns the queued ids that must still reach the bound
// update.
func (c *Controller[C]) flush(changed []DepID) ([]DepID, error) {
	c.updating = true
	defer func() { c.updating = false }()

	var propagate []DepID
	next := changed
	for {
		if err := c.update(next); err != nil {
			c.pending = nil
			c.fail("update", err)
			return nil, err
		}
		if len(c.pending) == 0 {
			return propagate, nil
		}
		p := c.pending[0]
		c.pending = c.pending[1:]
		next = p.ids
		if p.bound {
			propagate = union(propagate, p.ids)
		}
	}
}

func (c *Controller[C]) update(changed []DepID) error {
	start := time.Now()
	parts, err := c.fragment.update(changed)
	elapsed := time.Since(start)
	if err != nil {
		return err
	}
	c.logger.Debug("fragment updated", "changed", changed, "parts", parts, "elapsed", elapsed)
	c.observer.FragmentUpdated(c.name, changed, parts, elapsed)
	return nil
}

func (c *Controller[C]) validate(op string, ids []DepID) {
	if c.declared == nil {
		return
	}
	for _, id := range ids {
		if _, ok := c.declared[id]; !ok {
			kerrors.Invariant("K004", op, "%s does not declare dependency %d", c.name, id)
		}
	}
}

// dispatch is the registry's entry point. Host callbacks cannot return
// errors, so failures end here.
func (c *Controller[C]) dispatch(id EventID) {
	if err := c.HandleEvent(id); err != nil {
		c.logger.Error("event failed", "event", id, "error", err)
	}
}

func (c *Controller[C]) fail(op string, err error) {
	c.logger.Error("component "+op+" failed", "error", err)
	c.observer.Failed(c.name, op, err)
}

// Name returns the controller's name.
func (c *Controller[C]) Name() string { return c.name }

// Component returns the component without borrowing it.
func (c *Controller[C]) Component() C { return c.cell.Peek() }

// Cell returns the cell holding the component.
func (c *Controller[C]) Cell() *Cell[C] { return c.cell }

// Fragment returns the root fragment.
func (c *Controller[C]) Fragment() *Fragment[C] { return c.fragment }

// Registry returns the event registry.
func (c *Controller[C]) Registry() *EventRegistry { return c.registry }

// Mounted reports whether the root fragment is mounted.
func (c *Controller[C]) Mounted() bool { return c.fragment.Mounted() }

// Factory creates a root controller on host.
type Factory func(host dom.Host, opts ...Option) (Mountable, error)
