// Package kinesis is a dependency-tracked fragment runtime.
//
// Components describe a tree of host nodes interleaved with dynamic parts.
// Every dynamic part is tagged with the dependency ids (author-assigned
// numbers naming facts about component state) it reads. When a component
// reports which ids changed, only the parts registered against those ids
// are updated; nothing is re-rendered or diffed.
//
// # Building
//
// A Builder is a declarative, host-independent description:
//
//	kinesis.NewBuilder[*Counter]().
//	    WithElement("p", kinesis.Root).                 // node 0
//	    WithText("count: ", 0).                         // node 1, inside <p>
//	    WithUpdatable(deps(Count), 0, func(c *Counter) string {
//	        return strconv.Itoa(c.count)
//	    }).
//	    WithNode(kinesis.Element("button").On("click", Decrement), kinesis.Root).
//	    WithConditional(deps(Count), kinesis.Root, isEven, showing).
//	    WithEach(deps(Count), kinesis.Root, rows)
//
// Build turns a Builder into a Fragment for one Host: static nodes are
// created, event bindings are resolved through the EventRegistry, and one
// Part is constructed per dynamic entry.
//
// # Lifecycle
//
// A Fragment is mounted once at a dom.Location, updated any number of
// times, and detached. Mount does not populate dynamic content; callers run
// FullUpdate afterwards (Controller.Mount does both).
//
// # Parts
//
//   - TextBinding owns one text node whose content is recomputed on update.
//   - Conditional owns an anchor and a pre-built nested Fragment mounted
//     while its condition holds.
//   - Each owns an anchor and rebuilds its child fragments from scratch on
//     every update. There is no keyed reconciliation.
//   - NestedComponent owns a child Controller and an adapter translating
//     parent dependency ids into child ones.
//
// # Controller
//
// A Controller owns a component, its root Fragment and its EventRegistry.
// A host event reaches Component.HandleEvent through the registry; the
// returned ids drive Fragment.Update, then the optional bound update
// carries the change out to an owning parent.
//
// # Re-entrancy
//
// Everything is synchronous and single-threaded, but updates can re-enter:
// a child's change bounces to its parent, whose update feeds the child
// again. Component state lives in a Cell whose borrows are scoped to single
// closure calls and never held across a bound update or a forwarded child
// update. A notification that arrives while a Controller is already
// updating is queued and drained before the outer call returns.
package kinesis
