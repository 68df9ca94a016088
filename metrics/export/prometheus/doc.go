// Package prometheus renders authstate metrics in Prometheus text exposition
// format.
//
// [NewPrometheusExporter] accepts an [authstate.Manager] and exposes an
// [http.Handler]. Counter names are prefixed authstate_*_total; the batch
// latency histograms are authstate_batch_get_latency_seconds and
// authstate_batch_set_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the Handler.
//   - Mutate manager state.
package prometheus
