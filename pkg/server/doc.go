// Package server streams live kinesis components to browsers.
//
// Every WebSocket connection gets its own session: a dom.Document, a root
// component built by a registered kinesis.Factory, and a frame sequence.
// The server sends a Hello frame naming the container node, then the
// mutations that mounting produced. Each Event frame from the client is
// dispatched to the document and the mutations it caused go back as one
// Mutations frame.
//
// All work for a session runs on that session's read goroutine. The
// fragment runtime is single-threaded and the session never shares its
// document.
//
// # Routes
//
//	GET /          HTML page with the inline client
//	GET /ws        WebSocket endpoint (?component=name)
//	GET /metrics   Prometheus metrics
//	GET /healthz   liveness probe
//
// # Usage
//
//	srv := server.New(server.DefaultConfig(), demo.Components(),
//	    server.WithLogger(logger),
//	)
//	if err := srv.ListenAndServe(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
