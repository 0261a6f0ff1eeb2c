// Package telemetry provides kinesis.Observer implementations backed by
// Prometheus and OpenTelemetry.
//
// Both are plain observers and can be combined with Multi:
//
//	reg := prometheus.NewRegistry()
//	metrics := telemetry.NewMetrics(telemetry.WithRegistry(reg))
//	tracer := telemetry.NewTracer()
//
//	ctl, err := kinesis.New(host, component,
//	    kinesis.WithObserver(telemetry.Multi(metrics, tracer)),
//	)
//
// Metrics also carries the live server's session and transport counters.
package telemetry
