package records

import "time"

// Event identifies a store outcome reported to a Recorder.
type Event uint8

const (
	EventWrite Event = iota
	EventWriteFailure
	EventRead
	EventReadMiss
	EventReadFailure
	EventDecodeFailure
	EventDelete
	EventDeleteFailure
	EventClear
	EventClearFailure
	EventBatchGet
	EventBatchSet
)

// Recorder receives store outcomes. Implementations must be safe for
// concurrent use; batch operations report from many goroutines.
type Recorder interface {
	Inc(e Event)
	Observe(e Event, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) Inc(Event)                    {}
func (nopRecorder) Observe(Event, time.Duration) {}
