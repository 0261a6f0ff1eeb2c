package kinesis

import (
	"errors"
	"slices"
	"strconv"
	"testing"

	"github.com/kinesis-dev/kinesis/pkg/dom"

	kerrors "github.com/kinesis-dev/kinesis/internal/errors"
)

func TestFragmentMountAndFullUpdate(t *testing.T) {
	doc := dom.NewDocument()
	s := &state{n: 7}

	f, err := NewBuilder[*state]().
		WithElement("div", Root).
		WithText("n=", 0).
		WithUpdatable(Deps(0), 0, func(s *state) string { return strconv.Itoa(s.n) }).
		WithText("tail", Root).
		Build(doc, nil, NewCell(s))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if err := f.Mount(dom.AtParent(doc.Body())); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if got, want := body(doc), "<body><div>n=</div>tail</body>"; got != want {
		t.Errorf("after Mount = %q, want %q", got, want)
	}

	if err := f.FullUpdate(); err != nil {
		t.Fatalf("FullUpdate: %v", err)
	}
	if got, want := body(doc), "<body><div>n=7</div>tail</body>"; got != want {
		t.Errorf("after FullUpdate = %q, want %q", got, want)
	}

	s.n = 8
	if err := f.Update(Deps(0)); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got, want := body(doc), "<body><div>n=8</div>tail</body>"; got != want {
		t.Errorf("after Update = %q, want %q", got, want)
	}
}

func TestFragmentMountAtAnchor(t *testing.T) {
	doc := dom.NewDocument()
	first, _ := doc.CreateElement("hr")
	last, _ := doc.CreateElement("br")
	_ = doc.InsertBefore(doc.Body(), first, nil)
	_ = doc.InsertBefore(doc.Body(), last, nil)

	f, err := NewBuilder[*state]().
		WithElement("a", Root).
		WithElement("b", Root).
		Build(doc, nil, NewCell(&state{}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := f.Mount(dom.Anchored(doc.Body(), last)); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if got, want := body(doc), "<body><hr></hr><a></a><b></b><br></br></body>"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFragmentMountTwicePanics(t *testing.T) {
	doc := dom.NewDocument()
	f, err := NewBuilder[*state]().WithElement("p", Root).Build(doc, nil, NewCell(&state{}))
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Mount(dom.AtParent(doc.Body())); err != nil {
		t.Fatal(err)
	}
	expectInvariant(t, "K001", func() { _ = f.Mount(dom.AtParent(doc.Body())) })
}

func TestBuildInvariants(t *testing.T) {
	doc := dom.NewDocument()
	cell := NewCell(&state{})

	t.Run("reuse", func(t *testing.T) {
		b := NewBuilder[*state]().WithElement("p", Root)
		if _, err := b.Build(doc, nil, cell); err != nil {
			t.Fatal(err)
		}
		expectInvariant(t, "K006", func() { _, _ = b.Build(doc, nil, cell) })
	})

	t.Run("node parent not yet added", func(t *testing.T) {
		b := NewBuilder[*state]().WithElement("p", 0)
		expectInvariant(t, "K002", func() { _, _ = b.Build(doc, nil, cell) })
	})

	t.Run("node parent negative", func(t *testing.T) {
		b := NewBuilder[*state]().WithElement("p", -3)
		expectInvariant(t, "K002", func() { _, _ = b.Build(doc, nil, cell) })
	})

	t.Run("part parent out of range", func(t *testing.T) {
		b := NewBuilder[*state]().
			WithElement("p", Root).
			WithUpdatable(Deps(0), 1, func(*state) string { return "" })
		expectInvariant(t, "K002", func() { _, _ = b.Build(doc, nil, cell) })
	})
}

func TestFragmentUpdateDispatch(t *testing.T) {
	var calls []int
	a := &probe{id: 0, calls: &calls}
	b := &probe{id: 1, calls: &calls}
	c := &probe{id: 2, calls: &calls}
	d := &probe{id: 3, calls: &calls}

	builder := NewBuilder[*state]()
	withProbe(builder, Deps(1), a)
	withProbe(builder, Deps(0, 0), b)
	withProbe(builder, Deps(0, 1), c)
	withProbe(builder, nil, d)

	doc := dom.NewDocument()
	f, err := builder.Build(doc, nil, NewCell(&state{}))
	if err != nil {
		t.Fatal(err)
	}

	if err := f.Update(Deps(0, 1)); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 0 {
		t.Fatalf("unmounted fragment dispatched %v", calls)
	}

	if err := f.Mount(dom.AtParent(doc.Body())); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		changed []DepID
		want    []int
	}{
		{"single id", Deps(1), []int{0, 2}},
		{"registration order", Deps(1, 0), []int{0, 1, 2}},
		{"duplicate ids", Deps(0, 0, 0), []int{1, 2}},
		{"unknown id", Deps(42), nil},
		{"mixed", Deps(42, 0), []int{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls = nil
			if err := f.Update(tt.changed); err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(calls, tt.want) {
				t.Errorf("Update(%v) dispatched %v, want %v", tt.changed, calls, tt.want)
			}
		})
	}

	calls = nil
	if err := f.FullUpdate(); err != nil {
		t.Fatal(err)
	}
	if want := []int{0, 1, 2}; !slices.Equal(calls, want) {
		t.Errorf("FullUpdate dispatched %v, want %v", calls, want)
	}
	if d.updates != 0 {
		t.Errorf("part without dependencies was updated %d times", d.updates)
	}
	if !slices.Equal(f.Dependencies(), Deps(1, 0)) {
		t.Errorf("Dependencies = %v", f.Dependencies())
	}
}

func TestFragmentDetach(t *testing.T) {
	doc := dom.NewDocument()
	p := &probe{}
	builder := NewBuilder[*state]().
		WithElement("div", Root).
		WithText("inner", 0).
		WithText("outer", Root)
	withProbe(builder, Deps(0), p)

	f, err := builder.Build(doc, nil, NewCell(&state{}))
	if err != nil {
		t.Fatal(err)
	}

	if err := f.Detach(true); err != nil {
		t.Fatal(err)
	}
	if p.detaches != 0 {
		t.Error("detaching an unmounted fragment reached its parts")
	}

	if err := f.Mount(dom.AtParent(doc.Body())); err != nil {
		t.Fatal(err)
	}
	if err := f.Detach(true); err != nil {
		t.Fatal(err)
	}
	if got := body(doc); got != "<body></body>" {
		t.Errorf("after Detach = %q", got)
	}
	if f.Mounted() {
		t.Error("fragment still mounted")
	}
	if p.mounts != 1 || p.detaches != 1 {
		t.Errorf("probe mounts=%d detaches=%d, want 1/1", p.mounts, p.detaches)
	}

	div := f.Nodes()[0].(*dom.MemNode)
	if got := dom.TextContent(div); got != "inner" {
		t.Errorf("nested node was removed from its parent: %q", got)
	}

	if err := f.Mount(dom.AtParent(doc.Body())); err != nil {
		t.Fatalf("remount: %v", err)
	}
	if got := body(doc); got != "<body><div>inner</div>outer</body>" {
		t.Errorf("after remount = %q", got)
	}
}

func TestFragmentHostFailures(t *testing.T) {
	build := func(h dom.Host) (*Fragment[*state], error) {
		return NewBuilder[*state]().
			WithNode(Element("button").On("click", 0), Root).
			WithUpdatable(Deps(0), 0, func(*state) string { return "x" }).
			Build(h, nil, NewCell(&state{}))
	}

	tests := []struct {
		fail string
		code string
		run  func(*faultyHost) error
	}{
		{"create", "K101", func(h *faultyHost) error {
			_, err := build(h)
			return err
		}},
		{"listen", "K105", func(h *faultyHost) error {
			_, err := build(h)
			return err
		}},
		{"insert", "K102", func(h *faultyHost) error {
			f, err := build(h)
			if err != nil {
				return err
			}
			return f.Mount(dom.AtParent(h.Body()))
		}},
		{"text", "K104", func(h *faultyHost) error {
			f, err := build(h)
			if err != nil {
				return err
			}
			if err := f.Mount(dom.AtParent(h.Body())); err != nil {
				return err
			}
			return f.FullUpdate()
		}},
		{"remove", "K103", func(h *faultyHost) error {
			f, err := build(h)
			if err != nil {
				return err
			}
			if err := f.Mount(dom.AtParent(h.Body())); err != nil {
				return err
			}
			return f.Detach(true)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.fail, func(t *testing.T) {
			err := tt.run(&faultyHost{Document: dom.NewDocument(), fail: tt.fail})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := kerrors.Code(err); got != tt.code {
				t.Errorf("code = %q, want %q", got, tt.code)
			}
			if !errors.Is(err, errInjected) {
				t.Errorf("host error not reachable through %v", err)
			}
		})
	}
}
