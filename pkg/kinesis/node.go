package kinesis

import (
	"github.com/kinesis-dev/kinesis/pkg/dom"

	kerrors "github.com/kinesis-dev/kinesis/internal/errors"
)

// NodeKind is the NodeDescriptor type discriminator.
type NodeKind uint8

const (
	NodeElement NodeKind = iota + 1
	NodeText
)

// EventBinding binds a host event name to a component event id.
type EventBinding struct {
	Name string
	ID   EventID
}

// NodeDescriptor describes a static host node.
type NodeDescriptor struct {
	Kind   NodeKind
	Value  string // tag for elements, content for text
	Events []EventBinding
}

// Element describes an element node.
func Element(tag string) NodeDescriptor {
	return NodeDescriptor{Kind: NodeElement, Value: tag}
}

// Text describes a static text node.
func Text(content string) NodeDescriptor {
	return NodeDescriptor{Kind: NodeText, Value: content}
}

// On returns a copy of d that forwards the named host event to id.
func (d NodeDescriptor) On(event string, id EventID) NodeDescriptor {
	d.Events = append(append([]EventBinding(nil), d.Events...), EventBinding{Name: event, ID: id})
	return d
}

// create builds the host node and binds its events through registry.
func (d NodeDescriptor) create(host dom.Host, registry *EventRegistry) (dom.Node, error) {
	var (
		node dom.Node
		err  error
	)
	switch d.Kind {
	case NodeElement:
		node, err = host.CreateElement(d.Value)
	case NodeText:
		node, err = host.CreateText(d.Value)
	default:
		kerrors.Invariant("K002", "node.create", "unknown node kind %d", d.Kind)
	}
	if err != nil {
		return nil, kerrors.FromError(err, "K101").WithOp("node.create").WithDetail("%q", d.Value)
	}

	for _, ev := range d.Events {
		if err := host.AddEventListener(node, ev.Name, registry.Get(ev.ID)); err != nil {
			return nil, kerrors.FromError(err, "K105").WithOp("node.create").WithDetail("%s -> event %d", ev.Name, ev.ID)
		}
	}
	return node, nil
}
