// Package dom defines the host-tree capability surface consumed by the
// kinesis fragment runtime, plus an in-memory implementation of it.
//
// # Host
//
// Host is the minimal set of operations the runtime needs from a concrete
// UI tree: create element and text nodes, set text, insert before an
// anchor, remove a child, look up a parent, and attach an event listener.
// Host nodes are opaque Node handles; the runtime only compares them by
// identity and hands them back to the Host.
//
// # Location
//
// A Location is a mount target: a parent node plus an optional anchor.
// Nodes mounted at a Location are inserted immediately before the anchor,
// or appended when there is none.
//
// # Callback
//
// Callback wraps the function a listener invokes. Hosts compare callbacks
// by pointer, so binding the same *Callback twice to one node and event is
// a no-op, matching browser addEventListener semantics.
//
// # Document
//
// Document is a complete in-memory Host. It backs tests, the CLI renderer
// and the live server, which streams Document mutations to browsers:
//
//	doc := dom.NewDocument()
//	p, _ := doc.CreateElement("p")
//	_ = doc.InsertBefore(doc.Body(), p, nil)
//	fmt.Println(doc.HTML(doc.Body())) // <body><p></p></body>
package dom
