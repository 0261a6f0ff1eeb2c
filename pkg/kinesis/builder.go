package kinesis

import (
	"log/slog"

	"github.com/kinesis-dev/kinesis/pkg/dom"

	kerrors "github.com/kinesis-dev/kinesis/internal/errors"
)

type nodeEntry struct {
	desc   NodeDescriptor
	parent int
}

type partEntry[S any] struct {
	deps    []DepID
	parent  int
	produce func(e *env[S]) (Part, error)
}

// env is what a Builder needs to turn its entries into live parts. Nested
// builders built by Conditional, Each and Switch share their owner's env.
type env[S any] struct {
	host     dom.Host
	registry *EventRegistry
	cell     *Cell[S]
	notify   func([]DepID) error
	logger   *slog.Logger
	observer Observer
}

// Builder accumulates a fragment description. Nodes and parts are indexed
// by insertion order; a parent index refers to a previously added node, or
// Root. A Builder is consumed by Build and cannot be built twice.
type Builder[S any] struct {
	nodes    []nodeEntry
	parts    []partEntry[S]
	consumed bool
}

// NewBuilder returns an empty Builder.
func NewBuilder[S any]() *Builder[S] {
	return &Builder[S]{}
}

// Len returns the number of static nodes added so far. The next node added
// gets this index.
func (b *Builder[S]) Len() int {
	return len(b.nodes)
}

// WithNode adds a static node under parent.
func (b *Builder[S]) WithNode(desc NodeDescriptor, parent int) *Builder[S] {
	b.nodes = append(b.nodes, nodeEntry{desc: desc, parent: parent})
	return b
}

// WithElement adds a static element under parent.
func (b *Builder[S]) WithElement(tag string, parent int) *Builder[S] {
	return b.WithNode(Element(tag), parent)
}

// WithText adds a static text node under parent.
func (b *Builder[S]) WithText(content string, parent int) *Builder[S] {
	return b.WithNode(Text(content), parent)
}

// WithUpdatable adds a text node whose content is getText(state),
// recomputed whenever one of deps changes.
func (b *Builder[S]) WithUpdatable(deps []DepID, parent int, getText func(S) string) *Builder[S] {
	return b.withPart(deps, parent, func(e *env[S]) (Part, error) {
		return newTextBinding(e, getText)
	})
}

// WithConditional adds a region that shows the fragment produced by nested
// while check(state) holds. nested is called once, at build time.
func (b *Builder[S]) WithConditional(deps []DepID, parent int, check func(S) bool, nested func(S) *Builder[S]) *Builder[S] {
	return b.withPart(deps, parent, func(e *env[S]) (Part, error) {
		return newConditional(e, check, nested)
	})
}

// WithEach adds a list region whose children are rebuilt from items(state)
// whenever one of deps changes.
func (b *Builder[S]) WithEach(deps []DepID, parent int, items func(S) []*Builder[S]) *Builder[S] {
	return b.withPart(deps, parent, func(e *env[S]) (Part, error) {
		return newEach(e, items)
	})
}

// WithSwitch adds a region showing the single fragment returned by render,
// rebuilt whenever one of deps changes. A nil builder shows nothing.
func (b *Builder[S]) WithSwitch(deps []DepID, parent int, render func(S) *Builder[S]) *Builder[S] {
	return b.WithEach(deps, parent, func(s S) []*Builder[S] {
		if nb := render(s); nb != nil {
			return []*Builder[S]{nb}
		}
		return nil
	})
}

// WithComponent embeds a child component. See Nest.
func (b *Builder[S]) WithComponent(deps []DepID, parent int, nested Nested[S]) *Builder[S] {
	return b.withPart(deps, parent, nested.part)
}

func (b *Builder[S]) withPart(deps []DepID, parent int, produce func(e *env[S]) (Part, error)) *Builder[S] {
	b.parts = append(b.parts, partEntry[S]{deps: deps, parent: parent, produce: produce})
	return b
}

// Build creates the static nodes on host, binds their events through
// registry and constructs every dynamic part. The returned Fragment is not
// mounted. registry may be nil when no node binds events.
func (b *Builder[S]) Build(host dom.Host, registry *EventRegistry, cell *Cell[S]) (*Fragment[S], error) {
	if registry == nil {
		registry = NewEventRegistry(nil)
	}
	return b.build(&env[S]{
		host:     host,
		registry: registry,
		cell:     cell,
		logger:   slog.Default(),
		observer: NopObserver{},
	})
}

func (b *Builder[S]) build(e *env[S]) (*Fragment[S], error) {
	if b.consumed {
		kerrors.Invariant("K006", "builder.build", "builder was already built")
	}
	b.consumed = true

	f := &Fragment[S]{host: e.host}
	for i, n := range b.nodes {
		if n.parent != Root && (n.parent < 0 || n.parent >= i) {
			kerrors.Invariant("K002", "builder.build", "node %d has parent %d", i, n.parent)
		}
		node, err := n.desc.create(e.host, e.registry)
		if err != nil {
			return nil, err
		}
		f.nodes = append(f.nodes, slot[dom.Node]{parent: n.parent, value: node})
	}

	for i, p := range b.parts {
		if p.parent != Root && (p.parent < 0 || p.parent >= len(b.nodes)) {
			kerrors.Invariant("K002", "builder.build", "part %d has parent %d of %d nodes", i, p.parent, len(b.nodes))
		}
		part, err := p.produce(e)
		if err != nil {
			return nil, err
		}
		f.parts = append(f.parts, slot[Part]{parent: p.parent, value: part})
		for _, dep := range p.deps {
			f.index.insert(dep, i)
		}
	}
	return f, nil
}
