package internaldefs

import (
	"github.com/MrEthical07/authstate"
)

// CounterDef names one counter of [authstate.Metrics].
type CounterDef struct {
	ID   authstate.MetricID
	Name string
	Help string
}

// HistogramDef names one latency histogram of [authstate.Metrics].
type HistogramDef struct {
	ID   authstate.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in exposition order.
var CounterDefs = []CounterDef{
	{ID: authstate.MetricRecordWrite, Name: "authstate_record_write_total", Help: "Successful record writes, credentials included."},
	{ID: authstate.MetricRecordWriteFailure, Name: "authstate_record_write_failure_total", Help: "Record writes rejected by encoding or the backend."},
	{ID: authstate.MetricRecordRead, Name: "authstate_record_read_total", Help: "Record reads that returned a value."},
	{ID: authstate.MetricRecordReadMiss, Name: "authstate_record_read_miss_total", Help: "Record reads of absent or empty records."},
	{ID: authstate.MetricRecordReadFailure, Name: "authstate_record_read_failure_total", Help: "Record reads that failed in the backend."},
	{ID: authstate.MetricRecordDecodeFailure, Name: "authstate_record_decode_failure_total", Help: "Stored values that could not be decoded or reconstructed."},
	{ID: authstate.MetricRecordDelete, Name: "authstate_record_delete_total", Help: "Successful record deletes."},
	{ID: authstate.MetricRecordDeleteFailure, Name: "authstate_record_delete_failure_total", Help: "Record deletes that failed in the backend."},
	{ID: authstate.MetricSessionClear, Name: "authstate_session_clear_total", Help: "Sessions cleared without leftovers."},
	{ID: authstate.MetricSessionClearFailure, Name: "authstate_session_clear_failure_total", Help: "Session clears that failed to enumerate or left keys behind."},
	{ID: authstate.MetricCredsSave, Name: "authstate_creds_save_total", Help: "Successful credential saves."},
	{ID: authstate.MetricCredsInit, Name: "authstate_creds_init_total", Help: "Credentials synthesized for sessions without a stored record."},
}

// HistogramDefs lists every exported latency histogram.
var HistogramDefs = []HistogramDef{
	{ID: authstate.MetricBatchGetLatency, Name: "authstate_batch_get_latency_seconds", Help: "Key store batch get latency histogram."},
	{ID: authstate.MetricBatchSetLatency, Name: "authstate_batch_set_latency_seconds", Help: "Key store batch set latency histogram."},
}

// HistogramBounds are the upper bounds, in seconds, of the eight buckets.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix are HistogramBounds spelled for instrument names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates raw to exactly eight buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
