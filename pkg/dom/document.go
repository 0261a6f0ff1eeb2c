package dom

import (
	"errors"
	"slices"
)

// Host errors returned by Document.
var (
	ErrForeignNode = errors.New("dom: node does not belong to this document")
	ErrNotChild    = errors.New("dom: node is not a child of parent")
	ErrHierarchy   = errors.New("dom: invalid hierarchy")
	ErrNotText     = errors.New("dom: node is not a text node")
)

// NodeKind discriminates MemNode types.
type NodeKind uint8

const (
	ElementNode NodeKind = iota + 1
	TextNode
)

// String returns the string representation of the NodeKind.
func (k NodeKind) String() string {
	switch k {
	case ElementNode:
		return "Element"
	case TextNode:
		return "Text"
	default:
		return "Unknown"
	}
}

type listener struct {
	event string
	cb    *Callback
}

// MemNode is a node of an in-memory Document.
type MemNode struct {
	id        uint64
	kind      NodeKind
	tag       string
	data      string
	doc       *Document
	parent    *MemNode
	children  []*MemNode
	listeners []listener
}

// ID returns the document-unique id of the node.
func (n *MemNode) ID() uint64 { return n.id }

// Kind returns the node kind.
func (n *MemNode) Kind() NodeKind { return n.kind }

// Tag returns the element tag, or "" for text nodes.
func (n *MemNode) Tag() string { return n.tag }

// Data returns the content of a text node.
func (n *MemNode) Data() string { return n.data }

// ParentNode returns the parent, or nil when detached.
func (n *MemNode) ParentNode() *MemNode { return n.parent }

// Children returns a copy of the child list.
func (n *MemNode) Children() []*MemNode { return slices.Clone(n.children) }

// ListenerCount returns how many callbacks are bound for event.
func (n *MemNode) ListenerCount(event string) int {
	count := 0
	for _, l := range n.listeners {
		if l.event == event {
			count++
		}
	}
	return count
}

func (n *MemNode) indexOf(child *MemNode) int {
	return slices.Index(n.children, child)
}

func (n *MemNode) contains(other *MemNode) bool {
	for p := other; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// MutationKind identifies a Document mutation.
type MutationKind uint8

const (
	MutCreateElement MutationKind = iota + 1
	MutCreateText
	MutSetText
	MutInsert
	MutRemove
	MutListen
)

// Mutation describes one change applied to a Document. Node, Parent and
// Anchor are node ids; zero means none.
type Mutation struct {
	Kind   MutationKind
	Node   uint64
	Parent uint64
	Anchor uint64
	Value  string
}

// Document is an in-memory Host.
type Document struct {
	nextID    uint64
	body      *MemNode
	observers []func(Mutation)
}

// NewDocument creates a document with an empty body element.
func NewDocument() *Document {
	d := &Document{}
	d.body = d.newNode(ElementNode, "body", "")
	return d
}

var _ Host = (*Document)(nil)

// Body returns the root element.
func (d *Document) Body() *MemNode { return d.body }

// OnMutation registers fn to be called after every mutation.
func (d *Document) OnMutation(fn func(Mutation)) {
	d.observers = append(d.observers, fn)
}

func (d *Document) emit(m Mutation) {
	for _, fn := range d.observers {
		fn(m)
	}
}

func (d *Document) newNode(kind NodeKind, tag, data string) *MemNode {
	d.nextID++
	return &MemNode{id: d.nextID, kind: kind, tag: tag, data: data, doc: d}
}

func (d *Document) own(node Node) (*MemNode, error) {
	n, ok := node.(*MemNode)
	if !ok || n == nil || n.doc != d {
		return nil, ErrForeignNode
	}
	return n, nil
}

// CreateElement implements Host.
func (d *Document) CreateElement(tag string) (Node, error) {
	n := d.newNode(ElementNode, tag, "")
	d.emit(Mutation{Kind: MutCreateElement, Node: n.id, Value: tag})
	return n, nil
}

// CreateText implements Host.
func (d *Document) CreateText(content string) (Node, error) {
	n := d.newNode(TextNode, "", content)
	d.emit(Mutation{Kind: MutCreateText, Node: n.id, Value: content})
	return n, nil
}

// SetText implements Host.
func (d *Document) SetText(node Node, content string) error {
	n, err := d.own(node)
	if err != nil {
		return err
	}
	if n.kind != TextNode {
		return ErrNotText
	}
	n.data = content
	d.emit(Mutation{Kind: MutSetText, Node: n.id, Value: content})
	return nil
}

// InsertBefore implements Host.
func (d *Document) InsertBefore(parent, node, anchor Node) error {
	p, err := d.own(parent)
	if err != nil {
		return err
	}
	n, err := d.own(node)
	if err != nil {
		return err
	}
	if p.kind != ElementNode || n.contains(p) {
		return ErrHierarchy
	}

	var a *MemNode
	if anchor != nil {
		if a, err = d.own(anchor); err != nil {
			return err
		}
		if a.parent != p {
			return ErrNotChild
		}
		if a == n {
			return nil
		}
	}

	if n.parent != nil {
		old := n.parent
		old.children = slices.Delete(old.children, old.indexOf(n), old.indexOf(n)+1)
		n.parent = nil
	}

	idx := len(p.children)
	var anchorID uint64
	if a != nil {
		idx = p.indexOf(a)
		anchorID = a.id
	}
	p.children = slices.Insert(p.children, idx, n)
	n.parent = p

	d.emit(Mutation{Kind: MutInsert, Node: n.id, Parent: p.id, Anchor: anchorID})
	return nil
}

// RemoveChild implements Host.
func (d *Document) RemoveChild(parent, node Node) error {
	p, err := d.own(parent)
	if err != nil {
		return err
	}
	n, err := d.own(node)
	if err != nil {
		return err
	}
	idx := p.indexOf(n)
	if idx < 0 {
		return ErrNotChild
	}
	p.children = slices.Delete(p.children, idx, idx+1)
	n.parent = nil

	d.emit(Mutation{Kind: MutRemove, Node: n.id, Parent: p.id})
	return nil
}

// Parent implements Host.
func (d *Document) Parent(node Node) (Node, bool) {
	n, err := d.own(node)
	if err != nil || n.parent == nil {
		return nil, false
	}
	return n.parent, true
}

// AddEventListener implements Host. Binding the same callback twice for
// one event is ignored.
func (d *Document) AddEventListener(node Node, event string, cb *Callback) error {
	n, err := d.own(node)
	if err != nil {
		return err
	}
	for _, l := range n.listeners {
		if l.event == event && l.cb == cb {
			return nil
		}
	}
	n.listeners = append(n.listeners, listener{event: event, cb: cb})
	d.emit(Mutation{Kind: MutListen, Node: n.id, Value: event})
	return nil
}

// Dispatch invokes every callback bound to event on node and returns how
// many ran.
func (d *Document) Dispatch(node *MemNode, event string) int {
	var cbs []*Callback
	for _, l := range node.listeners {
		if l.event == event {
			cbs = append(cbs, l.cb)
		}
	}
	for _, cb := range cbs {
		cb.Invoke()
	}
	return len(cbs)
}

// Lookup finds an attached node by id, searching from the body.
func (d *Document) Lookup(id uint64) (*MemNode, bool) {
	found := FindAll(d.body, func(n *MemNode) bool { return n.id == id })
	if len(found) == 0 {
		return nil, false
	}
	return found[0], true
}

// FindAll returns every node under root (inclusive) matching pred, in
// document order.
func FindAll(root *MemNode, pred func(*MemNode) bool) []*MemNode {
	var out []*MemNode
	var walk func(n *MemNode)
	walk = func(n *MemNode) {
		if pred(n) {
			out = append(out, n)
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(root)
	return out
}

// ElementsByTag returns every element under root with the given tag.
func ElementsByTag(root *MemNode, tag string) []*MemNode {
	return FindAll(root, func(n *MemNode) bool {
		return n.kind == ElementNode && n.tag == tag
	})
}
