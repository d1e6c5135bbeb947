package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/smazurov/alsaprobe/internal/audio"
	"github.com/smazurov/alsaprobe/internal/logging"
	"github.com/smazurov/alsaprobe/internal/probe"
	"github.com/smazurov/alsaprobe/internal/report"
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitFatal       = 1
	ExitInterrupted = 130
)

// ProbeOptions configures a one-shot probe.
type ProbeOptions struct {
	Backend string
	Output  string
	Stdout  io.Writer
	Stderr  io.Writer

	// Sink additionally receives every result (optional).
	Sink probe.Sink
}

// RunProbe probes every card once and reports the run on Stdout. It returns
// ExitFatal when the backend cannot be created or the first enumeration call
// fails, ExitInterrupted when ctx ends first and ExitOK otherwise, whatever
// happened to individual cards.
func RunProbe(ctx context.Context, opts ProbeOptions) int {
	format, err := report.ParseFormat(opts.Output)
	if err != nil {
		fmt.Fprintf(opts.Stderr, "Error: %v\n", err)
		return ExitFatal
	}

	sub, err := audio.New(opts.Backend)
	if err != nil {
		fmt.Fprintf(opts.Stderr, "Error: %v\n", err)
		return ExitFatal
	}

	return probeOnce(ctx, sub, format, opts)
}

// probeOnce runs one pass over sub. It is shared by the root and watch commands.
func probeOnce(ctx context.Context, sub audio.Subsystem, format report.Format, opts ProbeOptions) int {
	logger := logging.GetLogger("probe")

	var sinks probe.Sinks
	var trace *report.Trace
	if format == report.FormatText {
		trace = report.NewTrace(opts.Stdout)
		sinks = append(sinks, trace)
	}
	if opts.Sink != nil {
		sinks = append(sinks, opts.Sink)
	}

	results, err := probe.New(sub, &probe.Options{Sink: sinks}).Run(ctx)
	if probe.IsFatal(err) {
		if trace == nil {
			fmt.Fprintf(opts.Stderr, "Error: %v\n", err)
		}
		return ExitFatal
	}

	if trace != nil {
		if writeErr := trace.Err(); writeErr != nil {
			logger.Warn("Failed to write trace", "error", writeErr)
		}
	} else if encErr := report.Encode(opts.Stdout, format, results); encErr != nil {
		fmt.Fprintf(opts.Stderr, "Error: %v\n", encErr)
		return ExitFatal
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ExitInterrupted
	}
	return ExitOK
}
