// Package demo holds small components used by the CLI, the live server and
// the runtime's scenario tests.
package demo

import (
	"fmt"
	"strconv"

	"github.com/kinesis-dev/kinesis/pkg/dom"
	"github.com/kinesis-dev/kinesis/pkg/kinesis"
)

// Counter events.
const (
	Decrement kinesis.EventID = iota
	Increment
)

// Count is the counter's only dependency.
const Count kinesis.DepID = 0

// Counter renders its count, a banner while the count is even, and one row
// per unit of count.
type Counter struct {
	count int
}

// NewCounter returns a counter starting at count.
func NewCounter(count int) *Counter {
	return &Counter{count: count}
}

// Value returns the current count.
func (c *Counter) Value() int { return c.count }

// Set replaces the count. Callers notify Count afterwards.
func (c *Counter) Set(count int) { c.count = count }

// Dependencies implements kinesis.DependencyDeclarer.
func (c *Counter) Dependencies() []kinesis.DepID {
	return kinesis.Deps(Count)
}

// HandleEvent implements kinesis.Component.
func (c *Counter) HandleEvent(id kinesis.EventID) ([]kinesis.DepID, bool) {
	switch id {
	case Decrement:
		c.count--
	case Increment:
		c.count++
	default:
		return nil, false
	}
	return kinesis.Deps(Count), true
}

// Render implements kinesis.Component.
func (c *Counter) Render() *kinesis.Builder[*Counter] {
	return kinesis.NewBuilder[*Counter]().
		WithElement("p", kinesis.Root).
		WithText("some content: ", 0).
		WithUpdatable(kinesis.Deps(Count), 0, func(c *Counter) string {
			return strconv.Itoa(c.count)
		}).
		WithNode(kinesis.Element("button").On("click", Decrement), kinesis.Root).
		WithText("decrement", 2).
		WithNode(kinesis.Element("button").On("click", Increment), kinesis.Root).
		WithText("increment", 4).
		WithConditional(kinesis.Deps(Count), kinesis.Root,
			func(c *Counter) bool { return c.count%2 == 0 },
			func(*Counter) *kinesis.Builder[*Counter] {
				return kinesis.NewBuilder[*Counter]().
					WithElement("p", kinesis.Root).
					WithText("showing!", 0)
			}).
		WithEach(kinesis.Deps(Count), kinesis.Root, func(c *Counter) []*kinesis.Builder[*Counter] {
			rows := make([]*kinesis.Builder[*Counter], 0, max(c.count, 0))
			for i := range max(c.count, 0) {
				rows = append(rows, kinesis.NewBuilder[*Counter]().
					WithElement("p", kinesis.Root).
					WithText(fmt.Sprintf("counting %d", i), 0))
			}
			return rows
		})
}

// NewCounterController builds a counter controller starting at zero.
func NewCounterController(host dom.Host, opts ...kinesis.Option) (kinesis.Mountable, error) {
	return kinesis.New(host, NewCounter(0), opts...)
}
