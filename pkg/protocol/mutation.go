package protocol

import (
	"fmt"

	"github.com/kinesis-dev/kinesis/pkg/dom"
)

// Op identifies a mutation operation.
type Op uint8

const (
	OpCreateElement Op = 0x01
	OpCreateText    Op = 0x02
	OpSetText       Op = 0x03
	OpInsert        Op = 0x04
	OpRemove        Op = 0x05
	OpListen        Op = 0x06
)

// String returns the string representation of the op.
func (op Op) String() string {
	switch op {
	case OpCreateElement:
		return "CreateElement"
	case OpCreateText:
		return "CreateText"
	case OpSetText:
		return "SetText"
	case OpInsert:
		return "Insert"
	case OpRemove:
		return "Remove"
	case OpListen:
		return "Listen"
	default:
		return fmt.Sprintf("Op(%d)", uint8(op))
	}
}

// Mutation is one change to the mirrored tree.
type Mutation struct {
	Op     Op
	Node   uint64
	Parent uint64
	Anchor uint64
	Value  string
}

// FromDOM converts a document mutation.
func FromDOM(m dom.Mutation) Mutation {
	var op Op
	switch m.Kind {
	case dom.MutCreateElement:
		op = OpCreateElement
	case dom.MutCreateText:
		op = OpCreateText
	case dom.MutSetText:
		op = OpSetText
	case dom.MutInsert:
		op = OpInsert
	case dom.MutRemove:
		op = OpRemove
	case dom.MutListen:
		op = OpListen
	}
	return Mutation{Op: op, Node: m.Node, Parent: m.Parent, Anchor: m.Anchor, Value: m.Value}
}

// Batch is the payload of a Mutations frame. Seq increases by one per
// batch within a session.
type Batch struct {
	Seq       uint64
	Mutations []Mutation
}

// EncodeBatch encodes a Batch to bytes.
func EncodeBatch(b *Batch) []byte {
	e := NewEncoder()
	EncodeBatchTo(e, b)
	return e.Bytes()
}

// EncodeBatchTo encodes a Batch using the provided encoder.
func EncodeBatchTo(e *Encoder, b *Batch) {
	e.WriteUvarint(b.Seq)
	e.WriteUvarint(uint64(len(b.Mutations)))
	for i := range b.Mutations {
		encodeMutation(e, &b.Mutations[i])
	}
}

func encodeMutation(e *Encoder, m *Mutation) {
	e.WriteByte(byte(m.Op))
	e.WriteUvarint(m.Node)
	switch m.Op {
	case OpCreateElement, OpCreateText, OpSetText, OpListen:
		e.WriteString(m.Value)
	case OpInsert:
		e.WriteUvarint(m.Parent)
		e.WriteUvarint(m.Anchor)
	case OpRemove:
		e.WriteUvarint(m.Parent)
	}
}

// DecodeBatch decodes a Batch from bytes.
func DecodeBatch(data []byte) (*Batch, error) {
	d := NewDecoder(data)
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadCount()
	if err != nil {
		return nil, err
	}

	b := &Batch{Seq: seq, Mutations: make([]Mutation, 0, min(count, 1024))}
	for i := 0; i < count; i++ {
		m, err := decodeMutation(d)
		if err != nil {
			return nil, fmt.Errorf("mutation %d: %w", i, err)
		}
		b.Mutations = append(b.Mutations, m)
	}
	return b, nil
}

func decodeMutation(d *Decoder) (Mutation, error) {
	var m Mutation
	op, err := d.ReadByte()
	if err != nil {
		return m, err
	}
	m.Op = Op(op)
	if m.Node, err = d.ReadUvarint(); err != nil {
		return m, err
	}

	switch m.Op {
	case OpCreateElement, OpCreateText, OpSetText, OpListen:
		m.Value, err = d.ReadString()
	case OpInsert:
		if m.Parent, err = d.ReadUvarint(); err != nil {
			return m, err
		}
		m.Anchor, err = d.ReadUvarint()
	case OpRemove:
		m.Parent, err = d.ReadUvarint()
	default:
		return m, fmt.Errorf("protocol: unknown mutation op %d", op)
	}
	return m, err
}
