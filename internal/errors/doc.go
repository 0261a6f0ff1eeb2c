// Package errors provides structured, coded errors for kinesis.
//
// Every error carries a code (e.g. "K001") that maps to a registered
// template with a category, a short message and a longer explanation.
//
// # Error Categories
//
//   - invariant: programming errors inside the fragment runtime (mounting
//     twice, bad parent index, conflicting borrows). These are raised with
//     panic and are never recovered by the runtime itself.
//   - host: a host-tree operation (create, insert, remove, listen) failed.
//     These are returned from Build, Mount, Update and Detach.
//   - protocol: wire decoding or transport failures in the live server.
//   - config: configuration loading, validation and snapshot storage.
//
// # Usage
//
//	err := errors.New("K102").
//	    WithDetail("inserting text node into <p>").
//	    Wrap(hostErr)
//
//	fmt.Println(err.Format())
//	// ERROR K102: Host insert failed
//	//
//	//   inserting text node into <p>
//	//
//	//   Caused by: dom: anchor is not a child of parent
package errors
