package kinesis

import (
	"fmt"
	"testing"

	"github.com/kinesis-dev/kinesis/pkg/dom"
)

func mountState(t *testing.T, b *Builder[*state], s *state) (*dom.Document, *Fragment[*state]) {
	t.Helper()
	doc := dom.NewDocument()
	f, err := b.Build(doc, nil, NewCell(s))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := f.Mount(dom.AtParent(doc.Body())); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if err := f.FullUpdate(); err != nil {
		t.Fatalf("FullUpdate: %v", err)
	}
	return doc, f
}

func countMutations(doc *dom.Document, kind dom.MutationKind, node dom.Node) *int {
	n := new(int)
	id := node.(*dom.MemNode).ID()
	doc.OnMutation(func(m dom.Mutation) {
		if m.Kind == kind && m.Node == id {
			*n++
		}
	})
	return n
}

func TestTextBindingDetachNotTopLevel(t *testing.T) {
	s := &state{label: "hi"}
	doc, f := mountState(t, NewBuilder[*state]().
		WithElement("span", Root).
		WithUpdatable(Deps(0), 0, func(s *state) string { return s.label }), s)

	text := f.Parts()[0].(*TextBinding[*state])
	if err := text.Detach(false); err != nil {
		t.Fatal(err)
	}
	if got := body(doc); got != "<body><span>hi</span></body>" {
		t.Errorf("non-top-level detach removed the node: %q", got)
	}
	if err := text.Detach(true); err != nil {
		t.Fatal(err)
	}
	if got := body(doc); got != "<body><span></span></body>" {
		t.Errorf("top-level detach kept the node: %q", got)
	}
}

func TestConditionalTransitions(t *testing.T) {
	s := &state{}
	doc, f := mountState(t, NewBuilder[*state]().
		WithText("[", Root).
		WithConditional(Deps(0), Root,
			func(s *state) bool { return s.show },
			func(*state) *Builder[*state] {
				return NewBuilder[*state]().
					WithElement("em", Root).
					WithUpdatable(Deps(0), 0, func(s *state) string { return s.label })
			}).
		WithText("]", Root), s)

	cond := f.Parts()[0].(*Conditional[*state])
	root := cond.Fragment().Nodes()[0]
	inserts := countMutations(doc, dom.MutInsert, root)
	removes := countMutations(doc, dom.MutRemove, root)

	if got := body(doc); got != "<body>[]</body>" {
		t.Fatalf("initial = %q", got)
	}

	s.show, s.label = true, "a"
	for i := 0; i < 3; i++ {
		if err := f.Update(Deps(0)); err != nil {
			t.Fatal(err)
		}
	}
	if got := body(doc); got != "<body>[<em>a</em>]</body>" {
		t.Errorf("shown = %q", got)
	}
	if *inserts != 1 {
		t.Errorf("nested fragment mounted %d times, want 1", *inserts)
	}

	s.label = "b"
	if err := f.Update(Deps(0)); err != nil {
		t.Fatal(err)
	}
	if got := body(doc); got != "<body>[<em>b</em>]</body>" {
		t.Errorf("forwarded update = %q", got)
	}

	s.show = false
	for i := 0; i < 3; i++ {
		if err := f.Update(Deps(0)); err != nil {
			t.Fatal(err)
		}
	}
	if got := body(doc); got != "<body>[]</body>" {
		t.Errorf("hidden = %q", got)
	}
	if *removes != 1 || *inserts != 1 {
		t.Errorf("inserts=%d removes=%d, want 1/1", *inserts, *removes)
	}
	if cond.Showing() {
		t.Error("Showing() = true after hide")
	}

	s.show = true
	if err := f.Update(Deps(0)); err != nil {
		t.Fatal(err)
	}
	if err := f.Detach(true); err != nil {
		t.Fatal(err)
	}
	if got := body(doc); got != "<body></body>" {
		t.Errorf("after detach = %q", got)
	}
	if cond.Fragment().Mounted() {
		t.Error("nested fragment still mounted after detach")
	}
}

func TestEachFullRebuild(t *testing.T) {
	s := &state{items: []string{"a", "b", "c"}}
	doc, f := mountState(t, NewBuilder[*state]().
		WithElement("ul", Root).
		WithEach(Deps(1), 0, func(s *state) []*Builder[*state] {
			var out []*Builder[*state]
			for _, item := range s.items {
				out = append(out, NewBuilder[*state]().
					WithElement("li", Root).
					WithText(item, 0))
			}
			return out
		}), s)

	if got := body(doc); got != "<body><ul><li>a</li><li>b</li><li>c</li></ul></body>" {
		t.Fatalf("initial = %q", got)
	}

	each := f.Parts()[0].(*Each[*state])
	old := each.Children()
	removes := make([]*int, len(old))
	for i, child := range old {
		removes[i] = countMutations(doc, dom.MutRemove, child.Nodes()[0])
	}

	s.items = []string{"x", "y"}
	if err := f.Update(Deps(1)); err != nil {
		t.Fatal(err)
	}
	if got := body(doc); got != "<body><ul><li>x</li><li>y</li></ul></body>" {
		t.Errorf("rebuilt = %q", got)
	}

	fresh := each.Children()
	if len(fresh) != 2 {
		t.Fatalf("children = %d, want 2", len(fresh))
	}
	for i, child := range old {
		if child.Mounted() {
			t.Errorf("old child %d still mounted", i)
		}
		if *removes[i] != 1 {
			t.Errorf("old child %d removed %d times, want 1", i, *removes[i])
		}
		for _, n := range fresh {
			if n == child {
				t.Errorf("old child %d was reused", i)
			}
		}
	}

	if err := f.Update(Deps(0)); err != nil {
		t.Fatal(err)
	}
	if got := each.Children(); got[0] != fresh[0] {
		t.Error("update with an unrelated id rebuilt the list")
	}

	s.items = nil
	if err := f.Update(Deps(1)); err != nil {
		t.Fatal(err)
	}
	if got := body(doc); got != "<body><ul></ul></body>" {
		t.Errorf("empty = %q", got)
	}
}

func TestSwitchRendersOneFragment(t *testing.T) {
	s := &state{n: 1}
	doc, f := mountState(t, NewBuilder[*state]().
		WithSwitch(Deps(0), Root, func(s *state) *Builder[*state] {
			switch s.n {
			case 0:
				return nil
			case 1:
				return NewBuilder[*state]().WithText("one", Root)
			default:
				return NewBuilder[*state]().
					WithElement("b", Root).
					WithText(fmt.Sprint(s.n), 0)
			}
		}), s)

	steps := []struct {
		n    int
		want string
	}{
		{1, "<body>one</body>"},
		{5, "<body><b>5</b></body>"},
		{0, "<body></body>"},
		{2, "<body><b>2</b></body>"},
	}
	for _, step := range steps {
		s.n = step.n
		if err := f.Update(Deps(0)); err != nil {
			t.Fatal(err)
		}
		if got := body(doc); got != step.want {
			t.Errorf("n=%d: got %q, want %q", step.n, got, step.want)
		}
	}
}

func TestNestedPartsDetachWithAncestor(t *testing.T) {
	s := &state{show: true, items: []string{"a"}, label: "l"}
	doc, f := mountState(t, NewBuilder[*state]().
		WithElement("div", Root).
		WithUpdatable(Deps(0), 0, func(s *state) string { return s.label }).
		WithConditional(Deps(0), 0, func(s *state) bool { return s.show },
			func(*state) *Builder[*state] { return NewBuilder[*state]().WithText("c", Root) }).
		WithEach(Deps(0), 0, func(s *state) []*Builder[*state] {
			var out []*Builder[*state]
			for _, item := range s.items {
				out = append(out, NewBuilder[*state]().WithText(item, Root))
			}
			return out
		}), s)

	if got := body(doc); got != "<body><div>lca</div></body>" {
		t.Fatalf("initial = %q", got)
	}
	if err := f.Detach(true); err != nil {
		t.Fatal(err)
	}
	if err := f.Mount(dom.AtParent(doc.Body())); err != nil {
		t.Fatal(err)
	}
	s.label = "m"
	if err := f.FullUpdate(); err != nil {
		t.Fatal(err)
	}
	if got := body(doc); got != "<body><div>mca</div></body>" {
		t.Errorf("after remount = %q", got)
	}
}
