package kinesis

import (
	"github.com/kinesis-dev/kinesis/pkg/dom"

	kerrors "github.com/kinesis-dev/kinesis/internal/errors"
)

// TextBinding owns one text node whose content is derived from state.
type TextBinding[S any] struct {
	host    dom.Host
	cell    *Cell[S]
	getText func(S) string
	node    dom.Node
}

func newTextBinding[S any](e *env[S], getText func(S) string) (*TextBinding[S], error) {
	node, err := e.host.CreateText("")
	if err != nil {
		return nil, kerrors.FromError(err, "K101").WithOp("text.build")
	}
	return &TextBinding[S]{host: e.host, cell: e.cell, getText: getText, node: node}, nil
}

// Mount inserts the text node at loc.
func (t *TextBinding[S]) Mount(loc dom.Location) error {
	return loc.Mount(t.host, t.node)
}

// Update recomputes and overwrites the text. It does not consult the
// mount state; the owning Fragment only calls it while mounted.
func (t *TextBinding[S]) Update([]DepID) error {
	var text string
	t.cell.Read(func(s S) { text = t.getText(s) })
	if err := t.host.SetText(t.node, text); err != nil {
		return kerrors.FromError(err, "K104").WithOp("text.update")
	}
	return nil
}

// Detach removes the text node when it is top-level.
func (t *TextBinding[S]) Detach(topLevel bool) error {
	if !topLevel {
		return nil
	}
	return dom.Remove(t.host, t.node)
}

// Node returns the owned text node.
func (t *TextBinding[S]) Node() dom.Node {
	return t.node
}
