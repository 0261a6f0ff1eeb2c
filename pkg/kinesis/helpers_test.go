package kinesis

import (
	"errors"
	"testing"
	"time"

	"github.com/kinesis-dev/kinesis/pkg/dom"

	kerrors "github.com/kinesis-dev/kinesis/internal/errors"
)

var errInjected = errors.New("injected host failure")

// faultyHost fails the named host operation.
type faultyHost struct {
	*dom.Document
	fail string
}

func (h *faultyHost) CreateElement(tag string) (dom.Node, error) {
	if h.fail == "create" {
		return nil, errInjected
	}
	return h.Document.CreateElement(tag)
}

func (h *faultyHost) CreateText(content string) (dom.Node, error) {
	if h.fail == "create" {
		return nil, errInjected
	}
	return h.Document.CreateText(content)
}

func (h *faultyHost) SetText(node dom.Node, content string) error {
	if h.fail == "text" {
		return errInjected
	}
	return h.Document.SetText(node, content)
}

func (h *faultyHost) InsertBefore(parent, node, anchor dom.Node) error {
	if h.fail == "insert" {
		return errInjected
	}
	return h.Document.InsertBefore(parent, node, anchor)
}

func (h *faultyHost) RemoveChild(parent, node dom.Node) error {
	if h.fail == "remove" {
		return errInjected
	}
	return h.Document.RemoveChild(parent, node)
}

func (h *faultyHost) AddEventListener(node dom.Node, event string, cb *dom.Callback) error {
	if h.fail == "listen" {
		return errInjected
	}
	return h.Document.AddEventListener(node, event, cb)
}

// probe is an instrumented part.
type probe struct {
	id       int
	calls    *[]int
	mounts   int
	updates  int
	detaches int
	changed  []DepID
}

func (p *probe) Mount(dom.Location) error {
	p.mounts++
	return nil
}

func (p *probe) Update(changed []DepID) error {
	p.updates++
	p.changed = changed
	if p.calls != nil {
		*p.calls = append(*p.calls, p.id)
	}
	return nil
}

func (p *probe) Detach(bool) error {
	p.detaches++
	return nil
}

func withProbe[S any](b *Builder[S], deps []DepID, p *probe) *Builder[S] {
	return b.withPart(deps, Root, func(*env[S]) (Part, error) { return p, nil })
}

type state struct {
	n     int
	show  bool
	items []string
	label string
}

func expectInvariant(t *testing.T, code string, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		err, ok := r.(error)
		if !ok {
			t.Fatalf("expected panic with %s, got %v", code, r)
		}
		if got := kerrors.Code(err); got != code {
			t.Fatalf("panic code = %q, want %q (%v)", got, code, err)
		}
	}()
	fn()
}

func body(doc *dom.Document) string {
	return doc.HTML(doc.Body())
}

type updateRecord struct {
	component string
	changed   []DepID
	parts     int
}

type recordingObserver struct {
	updates  []updateRecord
	events   []EventID
	handled  []bool
	mounted  []string
	detached []string
	failed   []string
}

func (o *recordingObserver) EventHandled(_ string, id EventID, changed bool, _ time.Duration) {
	o.events = append(o.events, id)
	o.handled = append(o.handled, changed)
}

func (o *recordingObserver) FragmentUpdated(component string, changed []DepID, parts int, _ time.Duration) {
	o.updates = append(o.updates, updateRecord{component: component, changed: changed, parts: parts})
}

func (o *recordingObserver) Mounted(component string)  { o.mounted = append(o.mounted, component) }
func (o *recordingObserver) Detached(component string) { o.detached = append(o.detached, component) }

func (o *recordingObserver) Failed(component, op string, _ error) {
	o.failed = append(o.failed, component+"/"+op)
}
