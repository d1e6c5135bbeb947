package events

import (
	"time"

	"github.com/smazurov/alsaprobe/internal/probe"
)

// ProbeSink publishes probe results on a bus.
type ProbeSink struct {
	bus *Bus
	now func() time.Time
}

// NewProbeSink returns a probe.Sink that publishes DeviceProbedEvent and
// ProbeRunEvent.
func NewProbeSink(bus *Bus) *ProbeSink {
	return &ProbeSink{bus: bus, now: time.Now}
}

// DeviceProbed implements probe.Sink.
func (s *ProbeSink) DeviceProbed(result probe.ProbeResult) {
	s.bus.Publish(DeviceProbedEvent{
		Result:    result,
		Timestamp: s.now().UTC().Format(time.RFC3339Nano),
	})
}

// RunFinished implements probe.Sink.
func (s *ProbeSink) RunFinished(summary probe.RunSummary) {
	ev := ProbeRunEvent{
		Cards:      summary.Cards,
		Failed:     summary.Failed,
		DurationMS: float64(summary.Duration.Microseconds()) / 1000,
		Timestamp:  s.now().UTC().Format(time.RFC3339Nano),
	}
	if summary.Err != nil {
		ev.Error = summary.Err.Error()
		ev.Fatal = probe.IsFatal(summary.Err)
	}
	s.bus.Publish(ev)
}
