// Package protocol implements the binary wire protocol between the live
// server and a browser mirroring a server-side dom.Document.
//
// # Wire Format
//
// All messages are framed with a 4-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (2 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameHello (0x00): server → client, session and root node id
//   - FrameEvent (0x01): client → server, a host event on a node
//   - FrameMutations (0x02): server → client, a batch of tree mutations
//   - FrameError (0x05): either direction
//
// # Encoding
//
// Integers are unsigned varints (protobuf-style), strings are prefixed
// with their varint length. Node ids are the ids assigned by the server's
// document; the client keeps an id → node table.
//
// A mutation is encoded as its op byte, the node id, then op-specific
// fields:
//
//	CreateElement  [tag]
//	CreateText     [content]
//	SetText        [content]
//	Insert         [parent][anchor]   anchor 0 appends
//	Remove         [parent]
//	Listen         [event name]
package protocol
