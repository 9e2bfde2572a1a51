/*
Package observability exposes Prometheus metrics for card production.

Metrics owns its own registry so several instances can coexist in tests. It implements
acquisition.Recorder and the history store instrumentation hook, and serves the
registry through Handler:

	m := observability.NewMetrics()
	svc := acquisition.New(source, store, acquisition.WithMetrics(m))
	router.Handle("/metrics", m.Handler())
*/
package observability
