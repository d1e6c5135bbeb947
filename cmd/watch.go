package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/alsaprobe/internal/audio"
	"github.com/smazurov/alsaprobe/internal/config"
	"github.com/smazurov/alsaprobe/internal/logging"
	"github.com/smazurov/alsaprobe/internal/report"
	"github.com/smazurov/alsaprobe/internal/watch"
	"github.com/spf13/cobra"
)

// WatchOptions configures the watch command.
type WatchOptions struct {
	ProbeOptions

	Debounce   time.Duration
	ConfigPath string

	// Source replaces the kernel uevent source when set.
	Source watch.Source
}

// CreateWatchCmd creates the watch command.
func CreateWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Probe now and again whenever a sound card is added or removed",
		Long: `Runs one probe pass, then listens for kernel sound hotplug events and re-probes ` +
			`every card once the events settle. Runs until interrupted.`,
		Args: cobra.NoArgs,
		Run: humacli.WithOptions(func(cmd *cobra.Command, _ []string, opts *config.Options) {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			code := RunWatch(ctx, WatchOptions{
				ProbeOptions: ProbeOptions{
					Backend: opts.Backend,
					Output:  opts.Output,
					Stdout:  cmd.OutOrStdout(),
					Stderr:  cmd.ErrOrStderr(),
				},
				Debounce:   opts.Debounce(),
				ConfigPath: opts.Config,
			})
			stop()
			os.Exit(code)
		}),
	}
}

// RunWatch probes once, then after every settled burst of hotplug events,
// until ctx ends. Failed passes are logged and do not end the watch.
func RunWatch(ctx context.Context, opts WatchOptions) int {
	logger := logging.GetLogger("hotplug")

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

	// Open the source first so cards appearing during the first pass are seen.
	source := opts.Source
	if source == nil {
		if source, err = watch.NewSoundSource(); err != nil {
			fmt.Fprintf(opts.Stderr, "Error: %v\n", err)
			return ExitFatal
		}
	}

	stopReload := watchLogLevels(ctx, opts.ConfigPath)
	defer stopReload()

	pass := func(ctx context.Context) {
		if code := probeOnce(ctx, sub, format, opts.ProbeOptions); code == ExitFatal {
			logger.Warn("Probe pass failed, waiting for the next hotplug event")
		}
	}
	pass(ctx)

	loop := watch.New(source, pass, watch.WithDebounce(opts.Debounce), watch.WithLogger(logger))
	logger.Info("Watching for sound card hotplug events", "debounce", opts.Debounce)
	if err := loop.Run(ctx); err != nil {
		fmt.Fprintf(opts.Stderr, "Error: hotplug monitor failed: %v\n", err)
		return ExitFatal
	}
	return ExitOK
}
