package events

import "github.com/smazurov/alsaprobe/internal/probe"

// Event type constants for kelindar/event.
const (
	TypeDeviceProbed uint32 = iota + 1
	TypeProbeRun
	TypeCardHotplug
	TypeLogEntry
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// DeviceProbedEvent carries the result of probing one card.
type DeviceProbedEvent struct {
	Result    probe.ProbeResult `json:"result" doc:"Per-card probe result"`
	Timestamp string            `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Time the card finished probing"`
}

// Type returns the event type identifier for DeviceProbedEvent.
func (e DeviceProbedEvent) Type() uint32 { return TypeDeviceProbed }

// ProbeRunEvent is published once a probe run is over.
type ProbeRunEvent struct {
	Cards      int     `json:"cards" example:"2" doc:"Number of cards probed"`
	Failed     int     `json:"failed" example:"0" doc:"Cards with at least one failed step"`
	DurationMS float64 `json:"duration_ms" example:"12.5" doc:"Run duration in milliseconds"`
	Error      string  `json:"error,omitempty" doc:"Fatal enumeration or cancellation error"`
	Fatal      bool    `json:"fatal" doc:"Whether the initial enumeration failed"`
	Timestamp  string  `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Run end time"`
}

// Type returns the event type identifier for ProbeRunEvent.
func (e ProbeRunEvent) Type() uint32 { return TypeProbeRun }

// CardHotplugEvent reports a sound card appearing or disappearing.
type CardHotplugEvent struct {
	Card      int    `json:"card" example:"1" doc:"Card index"`
	Action    string `json:"action" example:"add" doc:"Kernel action: add, remove, change"`
	DevName   string `json:"devname" example:"snd/controlC1" doc:"Device node relative to /dev"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for CardHotplugEvent.
func (e CardHotplugEvent) Type() uint32 { return TypeCardHotplug }

// LogEntryEvent represents a log entry for SSE streaming.
type LogEntryEvent struct {
	Seq        uint64         `json:"seq" example:"42" doc:"Monotonic sequence number for deduplication"`
	Timestamp  string         `json:"timestamp" example:"2026-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"probe" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }
