package otel

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/authstate"
	"github.com/MrEthical07/authstate/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() authstate.MetricsSnapshot
}

// observeFunc publishes one instrument's value from a snapshot.
type observeFunc func(metric.Observer, authstate.MetricsSnapshot)

// OTelExporter mirrors a Manager's counters and latency buckets into
// observable instruments on a caller-owned Meter.
type OTelExporter struct {
	registration metric.Registration
}

// NewOTelExporter registers the store instruments on meter, backed by manager.
func NewOTelExporter(meter metric.Meter, manager *authstate.Manager) (*OTelExporter, error) {
	if manager == nil {
		return nil, ErrNilSource
	}
	return NewOTelExporterFromSource(meter, manager)
}

// NewOTelExporterFromSource registers the store instruments on meter, backed
// by any snapshot source.
func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	var (
		observers   []observeFunc
		instruments []metric.Observable
	)

	for _, def := range internaldefs.CounterDefs {
		counter, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("counter %s: %w", def.Name, err)
		}
		id := def.ID
		observers = append(observers, func(o metric.Observer, snap authstate.MetricsSnapshot) {
			o.ObserveInt64(counter, int64(snap.Counters[id]))
		})
		instruments = append(instruments, counter)
	}

	for _, def := range internaldefs.HistogramDefs {
		obs, ins, err := histogramGauges(meter, def)
		if err != nil {
			return nil, err
		}
		observers = append(observers, obs)
		instruments = append(instruments, ins...)
	}

	reg, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		snap := source.MetricsSnapshot()
		for _, observe := range observers {
			observe(o, snap)
		}
		return nil
	}, instruments...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	return &OTelExporter{registration: reg}, nil
}

// histogramGauges creates one gauge per cumulative bucket plus a count gauge
// for def.
func histogramGauges(meter metric.Meter, def internaldefs.HistogramDef) (observeFunc, []metric.Observable, error) {
	var buckets [8]metric.Int64ObservableGauge
	ins := make([]metric.Observable, 0, len(buckets)+1)

	for i, suffix := range internaldefs.HistogramBoundSuffix {
		name := def.Name + "_bucket_le_" + suffix
		g, err := meter.Int64ObservableGauge(name, metric.WithDescription(def.Help+" Samples at or below le="+internaldefs.HistogramBounds[i]+"."))
		if err != nil {
			return nil, nil, fmt.Errorf("bucket gauge %s: %w", name, err)
		}
		buckets[i] = g
		ins = append(ins, g)
	}

	countName := def.Name + "_count"
	count, err := meter.Int64ObservableGauge(countName, metric.WithDescription(def.Help+" Total samples."))
	if err != nil {
		return nil, nil, fmt.Errorf("count gauge %s: %w", countName, err)
	}
	ins = append(ins, count)

	id := def.ID
	observe := func(o metric.Observer, snap authstate.MetricsSnapshot) {
		cum := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(snap.Histograms[id]))
		for i, g := range buckets {
			o.ObserveInt64(g, int64(cum[i]))
		}
		o.ObserveInt64(count, int64(cum[len(cum)-1]))
	}
	return observe, ins, nil
}

// Close unregisters the callback. Instruments stay on the Meter and report
// nothing afterwards.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
