package kinesis

import (
	kerrors "github.com/kinesis-dev/kinesis/internal/errors"
)

// Cell holds a component value shared by a Controller and every closure
// that reads or mutates it. Borrows are checked: any number of concurrent
// Read calls may nest, but Write requires exclusive access. A conflicting
// borrow panics instead of letting a callback observe a half-applied
// mutation.
//
// Components are expected to be pointer types so that Write can mutate
// them in place.
type Cell[T any] struct {
	value   T
	readers int
	writing bool
}

// NewCell wraps v.
func NewCell[T any](v T) *Cell[T] {
	return &Cell[T]{value: v}
}

// Read calls fn with a shared borrow of the value.
func (c *Cell[T]) Read(fn func(T)) {
	if c.writing {
		kerrors.Invariant("K005", "cell.read", "value is mutably borrowed")
	}
	c.readers++
	defer func() { c.readers-- }()
	fn(c.value)
}

// Write calls fn with an exclusive borrow of the value.
func (c *Cell[T]) Write(fn func(T)) {
	if c.writing || c.readers > 0 {
		kerrors.Invariant("K005", "cell.write", "value is already borrowed (%d readers)", c.readers)
	}
	c.writing = true
	defer func() { c.writing = false }()
	fn(c.value)
}

// Set replaces the value. It requires exclusive access.
func (c *Cell[T]) Set(v T) {
	c.Write(func(T) { c.value = v })
}

// Peek returns the value without borrowing it.
func (c *Cell[T]) Peek() T {
	return c.value
}

// Borrowed reports whether any borrow is outstanding.
func (c *Cell[T]) Borrowed() bool {
	return c.writing || c.readers > 0
}
