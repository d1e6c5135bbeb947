package probe

import "time"

// RunSummary describes a finished run.
type RunSummary struct {
	Cards    int
	Failed   int // cards with at least one failed step
	Duration time.Duration
	Err      error // fatal enumeration error or context error
}

// Sink receives results as the probe produces them.
type Sink interface {
	DeviceProbed(result ProbeResult)
	RunFinished(summary RunSummary)
}

// SinkFunc adapts a function to a Sink that ignores run summaries.
type SinkFunc func(result ProbeResult)

func (f SinkFunc) DeviceProbed(result ProbeResult) { f(result) }

func (f SinkFunc) RunFinished(RunSummary) {}

// Sinks fans out to every sink in order.
type Sinks []Sink

func (s Sinks) DeviceProbed(result ProbeResult) {
	for _, sink := range s {
		sink.DeviceProbed(result)
	}
}

func (s Sinks) RunFinished(summary RunSummary) {
	for _, sink := range s {
		sink.RunFinished(summary)
	}
}

type nopSink struct{}

func (nopSink) DeviceProbed(ProbeResult) {}
func (nopSink) RunFinished(RunSummary)   {}
