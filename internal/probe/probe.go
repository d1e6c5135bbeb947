// Package probe walks the sound cards of an audio subsystem and exercises a
// read-only mixer lifecycle on each, recording the outcome of every call.
//
// A run never aborts because one card misbehaves: name lookups and mixer
// steps are best-effort and their failures are recorded, not returned. The
// only fatal condition is a failure of the very first enumeration call.
package probe

import (
	"strconv"
	"time"
)

// DeviceHandle is the subsystem-assigned index of a sound card.
type DeviceHandle int

// NoDevice is both the "before first" seed and the "no more devices" sentinel.
const NoDevice DeviceHandle = -1

// Address returns the canonical control address of the card, "hw:<index>".
func (h DeviceHandle) Address() string {
	return "hw:" + strconv.Itoa(int(h))
}

// StepName identifies one subsystem call within a device probe.
type StepName string

// Steps in the order they are attempted.
const (
	StepCardName      StepName = "card_name"
	StepCardLongName  StepName = "card_longname"
	StepMixerOpen     StepName = "mixer_open"
	StepMixerAttach   StepName = "mixer_attach"
	StepSelemRegister StepName = "selem_register"
	StepMixerLoad     StepName = "mixer_load"
)

// MixerSteps are the steps attempted only once the mixer is open.
var MixerSteps = []StepName{StepMixerAttach, StepSelemRegister, StepMixerLoad}

// StepResult is the outcome of one step. Code is 0 on success and a negative
// status otherwise.
type StepResult struct {
	Step    StepName      `json:"step" toml:"step"`
	Code    int           `json:"code" toml:"code"`
	Error   string        `json:"error,omitempty" toml:"error,omitempty"`
	Elapsed time.Duration `json:"elapsed_ns" toml:"elapsed_ns"`

	// Err is the *StepError behind a failed step.
	Err error `json:"-" toml:"-"`
}

// OK reports whether the step succeeded.
func (s StepResult) OK() bool {
	return s.Err == nil && s.Code == 0
}

// ProbeResult is everything learned about one card in one pass.
type ProbeResult struct {
	Handle        DeviceHandle `json:"card" toml:"card"`
	Address       string       `json:"address" toml:"address"`
	ShortName     string       `json:"short_name,omitempty" toml:"short_name,omitempty"`
	LongName      string       `json:"long_name,omitempty" toml:"long_name,omitempty"`
	Steps         []StepResult `json:"steps" toml:"steps"`
	MixerReleased bool         `json:"mixer_released" toml:"mixer_released"`
	Elements      []string     `json:"elements,omitempty" toml:"elements,omitempty"`
}

// Step returns the result of the named step, if it was attempted.
func (r ProbeResult) Step(name StepName) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Step == name {
			return s, true
		}
	}
	return StepResult{}, false
}

// StepNames lists the attempted steps in order.
func (r ProbeResult) StepNames() []StepName {
	names := make([]StepName, len(r.Steps))
	for i, s := range r.Steps {
		names[i] = s.Step
	}
	return names
}

// Failed returns the steps that did not succeed.
func (r ProbeResult) Failed() []StepResult {
	var failed []StepResult
	for _, s := range r.Steps {
		if !s.OK() {
			failed = append(failed, s)
		}
	}
	return failed
}

// MixerOpened reports whether a mixer context was acquired for the card.
func (r ProbeResult) MixerOpened() bool {
	s, ok := r.Step(StepMixerOpen)
	return ok && s.OK()
}

// OK reports whether every attempted step succeeded.
func (r ProbeResult) OK() bool {
	return len(r.Failed()) == 0
}
