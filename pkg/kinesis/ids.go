package kinesis

import "slices"

// DepID names one reactive fact about component state. Ids are chosen by
// the component author and only used as map keys.
type DepID uint32

// EventID names one host event binding of a component.
type EventID uint32

// Root is the parent index of nodes and parts mounted directly at the
// fragment's location.
const Root = -1

// Deps is shorthand for a dependency list.
func Deps(ids ...DepID) []DepID {
	return ids
}

// depIndex maps dependency ids to the indices of parts registered against
// them. A part is recorded at most once per id, and ids keep their first
// registration order.
type depIndex struct {
	order []DepID
	parts map[DepID][]int
}

func (x *depIndex) insert(dep DepID, part int) {
	if x.parts == nil {
		x.parts = make(map[DepID][]int)
	}
	list, seen := x.parts[dep]
	if !seen {
		x.order = append(x.order, dep)
	}
	if slices.Contains(list, part) {
		return
	}
	x.parts[dep] = append(list, part)
}

// lookup returns the union of parts registered against changed, in
// registration order, each part once.
func (x *depIndex) lookup(changed []DepID) []int {
	var out []int
	for _, dep := range changed {
		out = append(out, x.parts[dep]...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func (x *depIndex) keys() []DepID {
	return slices.Clone(x.order)
}

func union(a, b []DepID) []DepID {
	out := slices.Clone(a)
	for _, id := range b {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
