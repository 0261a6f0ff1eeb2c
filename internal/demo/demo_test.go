package demo

import (
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/kinesis-dev/kinesis/pkg/dom"
	"github.com/kinesis-dev/kinesis/pkg/kinesis"
)

type update struct {
	component string
	changed   []kinesis.DepID
}

type recorder struct {
	kinesis.NopObserver
	updates []update
}

func (r *recorder) FragmentUpdated(component string, changed []kinesis.DepID, _ int, _ time.Duration) {
	r.updates = append(r.updates, update{component: component, changed: changed})
}

func (r *recorder) passes(component string) []update {
	var out []update
	for _, u := range r.updates {
		if u.component == component {
			out = append(out, u)
		}
	}
	return out
}

func rows(doc *dom.Document) []string {
	var out []string
	for _, p := range dom.ElementsByTag(doc.Body(), "p") {
		if text := dom.TextContent(p); strings.HasPrefix(text, "counting ") {
			out = append(out, text)
		}
	}
	return out
}

func counting(n int) []string {
	var out []string
	for i := 0; i < n; i++ {
		out = append(out, fmt.Sprintf("counting %d", i))
	}
	return out
}

func mountCounter(t *testing.T, count int) (*dom.Document, *kinesis.Controller[*Counter]) {
	t.Helper()
	doc := dom.NewDocument()
	ctl, err := kinesis.New(doc, NewCounter(count))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := ctl.Mount(dom.AtParent(doc.Body())); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	return doc, ctl
}

func assertCounter(t *testing.T, doc *dom.Document, count int) {
	t.Helper()
	text := dom.TextContent(doc.Body())
	if want := fmt.Sprintf("some content: %d", count); !strings.Contains(text, want) {
		t.Errorf("text %q does not contain %q", text, want)
	}
	if showing := strings.Contains(text, "showing!"); showing != (count%2 == 0) {
		t.Errorf("count %d: showing = %v", count, showing)
	}
	if got := rows(doc); !slices.Equal(got, counting(count)) {
		t.Errorf("rows = %v, want %v", got, counting(count))
	}
}

func TestCounterInitialRender(t *testing.T) {
	doc, _ := mountCounter(t, 3)
	assertCounter(t, doc, 3)

	want := "<body><p>some content: 3</p><button>decrement</button><button>increment</button>" +
		"<p>counting 0</p><p>counting 1</p><p>counting 2</p></body>"
	if got := doc.HTML(doc.Body()); got != want {
		t.Errorf("HTML =\n%s\nwant\n%s", got, want)
	}
}

func TestCounterDecrement(t *testing.T) {
	doc, ctl := mountCounter(t, 3)

	changed, ok := NewCounter(3).HandleEvent(Decrement)
	if !ok || !slices.Equal(changed, kinesis.Deps(Count)) {
		t.Fatalf("HandleEvent(Decrement) = %v, %v", changed, ok)
	}

	if err := ctl.HandleEvent(Decrement); err != nil {
		t.Fatal(err)
	}
	if ctl.Component().Value() != 2 {
		t.Errorf("count = %d, want 2", ctl.Component().Value())
	}
	assertCounter(t, doc, 2)

	want := "<body><p>some content: 2</p><button>decrement</button><button>increment</button>" +
		"<p>showing!</p><p>counting 0</p><p>counting 1</p></body>"
	if got := doc.HTML(doc.Body()); got != want {
		t.Errorf("HTML =\n%s\nwant\n%s", got, want)
	}
}

func TestCounterButtons(t *testing.T) {
	doc, _ := mountCounter(t, 1)
	buttons := dom.ElementsByTag(doc.Body(), "button")
	if len(buttons) != 2 {
		t.Fatalf("buttons = %d", len(buttons))
	}

	doc.Dispatch(buttons[1], "click")
	doc.Dispatch(buttons[1], "click")
	assertCounter(t, doc, 3)

	for i := 0; i < 5; i++ {
		doc.Dispatch(buttons[0], "click")
	}
	assertCounter(t, doc, -2)
}

func TestCounterDetachMutateRemount(t *testing.T) {
	doc, ctl := mountCounter(t, 3)

	if err := ctl.Detach(true); err != nil {
		t.Fatal(err)
	}
	ctl.Cell().Write(func(c *Counter) { c.Set(11) })
	if err := ctl.Fragment().Update(kinesis.Deps(Count)); err != nil {
		t.Fatal(err)
	}
	if got := doc.HTML(doc.Body()); got != "<body></body>" {
		t.Fatalf("detached fragment reinserted nodes: %q", got)
	}

	if err := ctl.Fragment().Mount(dom.AtParent(doc.Body())); err != nil {
		t.Fatal(err)
	}
	if err := ctl.Fragment().FullUpdate(); err != nil {
		t.Fatal(err)
	}
	assertCounter(t, doc, 11)
}

func TestCounterIgnoresUnknownEvent(t *testing.T) {
	if _, ok := NewCounter(0).HandleEvent(9); ok {
		t.Error("unknown event reported a change")
	}
}

func mountParent(t *testing.T, obs kinesis.Observer) (*dom.Document, *kinesis.Controller[*Parent]) {
	t.Helper()
	doc := dom.NewDocument()
	ctl, err := kinesis.New(doc, NewParent(0), kinesis.WithName("parent"), kinesis.WithObserver(obs))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := ctl.Mount(dom.AtParent(doc.Body())); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	return doc, ctl
}

func TestNestedAdapterMapsDependencies(t *testing.T) {
	rec := &recorder{}
	doc, ctl := mountParent(t, rec)
	rec.updates = nil

	if err := ctl.HandleEvent(Increment); err != nil {
		t.Fatal(err)
	}

	child := rec.passes("display")
	if len(child) != 1 {
		t.Fatalf("child update passes = %d, want 1 (%+v)", len(child), rec.updates)
	}
	if !slices.Equal(child[0].changed, kinesis.Deps(Shown)) {
		t.Errorf("child saw %v, want only %v", child[0].changed, kinesis.Deps(Shown))
	}
	if ctl.Component().Display().Value() != 1 {
		t.Errorf("child value = %d, want 1", ctl.Component().Display().Value())
	}

	text := dom.TextContent(doc.Body())
	if !strings.Contains(text, "parent has 1") || !strings.Contains(text, "child sees 1") {
		t.Errorf("text = %q", text)
	}
}

func TestNestedBindBouncesToParent(t *testing.T) {
	rec := &recorder{}
	doc, ctl := mountParent(t, rec)

	for i := 0; i < 3; i++ {
		if err := ctl.HandleEvent(Increment); err != nil {
			t.Fatal(err)
		}
	}

	var reset *dom.MemNode
	for _, b := range dom.ElementsByTag(doc.Body(), "button") {
		if dom.TextContent(b) == "reset" {
			reset = b
		}
	}
	if reset == nil {
		t.Fatal("reset button not rendered")
	}

	rec.updates = nil
	doc.Dispatch(reset, "click")

	if ctl.Component().Value() != 0 {
		t.Errorf("parent count = %d, want 0", ctl.Component().Value())
	}
	text := dom.TextContent(doc.Body())
	if !strings.Contains(text, "parent has 0") || !strings.Contains(text, "child sees 0") {
		t.Errorf("text = %q", text)
	}
	if got := rec.passes("parent"); len(got) != 1 || !slices.Equal(got[0].changed, kinesis.Deps(Count)) {
		t.Errorf("parent passes = %+v", got)
	}
}

func TestComponentsFactories(t *testing.T) {
	for name, factory := range Components() {
		t.Run(name, func(t *testing.T) {
			doc := dom.NewDocument()
			m, err := factory(doc)
			if err != nil {
				t.Fatal(err)
			}
			if err := m.Mount(dom.AtParent(doc.Body())); err != nil {
				t.Fatal(err)
			}
			if len(doc.Body().Children()) == 0 {
				t.Error("factory mounted nothing")
			}
		})
	}
}
