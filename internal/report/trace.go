// Package report renders probe results for people and for machines.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/smazurov/alsaprobe/internal/probe"
)

// Trace writes an append-only, human-readable record of a run: one header
// per card, one line per step with its status code, the release line and a
// closing "Done." once the run completes.
type Trace struct {
	mu  sync.Mutex
	w   io.Writer
	err error
}

// NewTrace returns a Trace writing to w.
func NewTrace(w io.Writer) *Trace {
	return &Trace{w: w}
}

// Err returns the first write error, if any.
func (t *Trace) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Trace) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}

// DeviceProbed implements probe.Sink.
func (t *Trace) DeviceProbed(result probe.ProbeResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.printf("card %d (%s)\n", result.Handle, result.Address)
	for _, step := range result.Steps {
		t.printf("  %-15s %4d%s\n", step.Step, step.Code, stepDetail(result, step))
	}
	switch {
	case result.MixerReleased:
		t.printf("  mixer released\n")
	case !result.MixerOpened():
		t.printf("  no mixer to release\n")
	}
}

// stepDetail is the text after a step's status code.
func stepDetail(result probe.ProbeResult, step probe.StepResult) string {
	if !step.OK() {
		return "  " + step.Error
	}
	switch step.Step {
	case probe.StepCardName:
		return fmt.Sprintf("  %q", result.ShortName)
	case probe.StepCardLongName:
		return fmt.Sprintf("  %q", result.LongName)
	case probe.StepMixerAttach:
		return "  " + result.Address
	case probe.StepMixerLoad:
		if len(result.Elements) == 0 {
			return "  no simple elements"
		}
		return "  " + strings.Join(result.Elements, ", ")
	}
	return ""
}

// RunFinished implements probe.Sink.
func (t *Trace) RunFinished(summary probe.RunSummary) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case probe.IsFatal(summary.Err):
		t.printf("%v\n", summary.Err)
	case errors.Is(summary.Err, context.Canceled), errors.Is(summary.Err, context.DeadlineExceeded):
		t.printf("Interrupted after %d card(s).\n", summary.Cards)
	default:
		if summary.Cards == 0 {
			t.printf("No sound cards found.\n")
		}
		t.printf("Done.\n")
	}
}
