package prometheus

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/MrEthical07/authstate"
	"github.com/MrEthical07/authstate/metrics/export/internaldefs"
)

const contentType = "text/plain; version=0.0.4; charset=utf-8"

var helpEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`)

type metricsSource interface {
	MetricsSnapshot() authstate.MetricsSnapshot
}

// PrometheusExporter serves a Manager's store counters and batch latency
// histograms as Prometheus text.
type PrometheusExporter struct {
	source metricsSource
}

// NewPrometheusExporter reads snapshots from manager on every scrape.
func NewPrometheusExporter(manager *authstate.Manager) *PrometheusExporter {
	return &PrometheusExporter{source: manager}
}

// NewPrometheusExporterFromSource reads snapshots from source on every
// scrape. Tests and wrappers that do not hold a Manager use it.
func NewPrometheusExporterFromSource(source metricsSource) *PrometheusExporter {
	return &PrometheusExporter{source: source}
}

// Handler serves Render on any method and path.
func (p *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = io.WriteString(w, p.Render())
	})
}

// Render returns one scrape body. A Manager built without metrics yields an
// empty snapshot, and Render then returns "" so scrapers see no families.
func (p *PrometheusExporter) Render() string {
	if p == nil || p.source == nil {
		return ""
	}
	snap := p.source.MetricsSnapshot()
	if len(snap.Counters) == 0 && len(snap.Histograms) == 0 {
		return ""
	}

	var b strings.Builder
	for _, def := range internaldefs.CounterDefs {
		family(&b, def.Name, def.Help, "counter")
		fmt.Fprintf(&b, "%s %d\n", def.Name, snap.Counters[def.ID])
	}
	for _, def := range internaldefs.HistogramDefs {
		family(&b, def.Name, def.Help, "histogram")
		buckets := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(snap.Histograms[def.ID]))
		for i, le := range internaldefs.HistogramBounds {
			fmt.Fprintf(&b, "%s_bucket{le=%q} %d\n", def.Name, le, buckets[i])
		}
		// Observe keeps bucket counts only.
		fmt.Fprintf(&b, "%s_sum 0\n", def.Name)
		fmt.Fprintf(&b, "%s_count %d\n", def.Name, buckets[len(buckets)-1])
	}
	return b.String()
}

func family(b *strings.Builder, name, help, kind string) {
	fmt.Fprintf(b, "# HELP %s %s\n# TYPE %s %s\n", name, helpEscaper.Replace(help), name, kind)
}
