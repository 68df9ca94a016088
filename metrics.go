package authstate

import (
	"sync/atomic"
	"time"

	"github.com/MrEthical07/authstate/internal/records"
)

// MetricID identifies one counter or histogram of [Metrics].
type MetricID uint16

const (
	// MetricRecordWrite counts successful record writes, credentials included.
	MetricRecordWrite MetricID = iota
	// MetricRecordWriteFailure counts writes that returned ErrStoreWrite.
	MetricRecordWriteFailure
	// MetricRecordRead counts reads that returned a value.
	MetricRecordRead
	// MetricRecordReadMiss counts reads of absent or empty records.
	MetricRecordReadMiss
	// MetricRecordReadFailure counts backend read failures.
	MetricRecordReadFailure
	// MetricRecordDecodeFailure counts stored values that could not be decoded
	// or reconstructed.
	MetricRecordDecodeFailure
	// MetricRecordDelete counts successful deletes.
	MetricRecordDelete
	// MetricRecordDeleteFailure counts backend delete failures.
	MetricRecordDeleteFailure
	// MetricSessionClear counts sessions cleared without leftovers.
	MetricSessionClear
	// MetricSessionClearFailure counts clears that failed to enumerate or left
	// keys behind.
	MetricSessionClearFailure
	// MetricCredsSave counts successful SaveCreds and Flush writes.
	MetricCredsSave
	// MetricCredsInit counts credentials synthesized by the initializer.
	MetricCredsInit
	// MetricBatchGetLatency is the KeyStore.Get latency histogram.
	MetricBatchGetLatency
	// MetricBatchSetLatency is the KeyStore.Set latency histogram.
	MetricBatchSetLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free counters and latency histograms for one Manager.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of [Metrics].
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics returns metrics configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether latency histograms are recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc increments the counter id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d into the histogram id. Only latency ids carry histograms.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if !isLatencyMetric(id) {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current counter value of id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter and, when latency is enabled, every histogram.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 2),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if isLatencyMetric(id) {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		for _, id := range []MetricID{MetricBatchGetLatency, MetricBatchSetLatency} {
			buckets := make([]uint64, histBucketCount)
			for i := 0; i < histBucketCount; i++ {
				buckets[i] = atomic.LoadUint64(&m.histograms[id].buckets[i])
			}
			s.Histograms[id] = buckets
		}
	}

	return s
}

func isLatencyMetric(id MetricID) bool {
	return id == MetricBatchGetLatency || id == MetricBatchSetLatency
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}

// storeRecorder feeds record store events into Metrics.
type storeRecorder struct {
	m *Metrics
}

var storeEventMetric = map[records.Event]MetricID{
	records.EventWrite:         MetricRecordWrite,
	records.EventWriteFailure:  MetricRecordWriteFailure,
	records.EventRead:          MetricRecordRead,
	records.EventReadMiss:      MetricRecordReadMiss,
	records.EventReadFailure:   MetricRecordReadFailure,
	records.EventDecodeFailure: MetricRecordDecodeFailure,
	records.EventDelete:        MetricRecordDelete,
	records.EventDeleteFailure: MetricRecordDeleteFailure,
	records.EventClear:         MetricSessionClear,
	records.EventClearFailure:  MetricSessionClearFailure,
	records.EventBatchGet:      MetricBatchGetLatency,
	records.EventBatchSet:      MetricBatchSetLatency,
}

func (r storeRecorder) Inc(e records.Event) {
	if id, ok := storeEventMetric[e]; ok {
		r.m.Inc(id)
	}
}

func (r storeRecorder) Observe(e records.Event, d time.Duration) {
	if id, ok := storeEventMetric[e]; ok {
		r.m.Observe(id, d)
	}
}
