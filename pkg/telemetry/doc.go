// Package telemetry exposes Prometheus metrics and OpenTelemetry spans for
// binding setup, effect runs and live sessions.
//
//	m := telemetry.NewMetrics()
//	rt := reactive.NewRuntime(m.RuntimeOption())
//	http.Handle("/metrics", m.Handler())
package telemetry
