package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/smazurov/alsaprobe/internal/api"
	"github.com/smazurov/alsaprobe/internal/audio"
	"github.com/smazurov/alsaprobe/internal/config"
	"github.com/smazurov/alsaprobe/internal/events"
	"github.com/smazurov/alsaprobe/internal/logging"
	"github.com/smazurov/alsaprobe/internal/metrics"
	"github.com/smazurov/alsaprobe/internal/metrics/exporters"
	"github.com/smazurov/alsaprobe/internal/probe"
	"github.com/smazurov/alsaprobe/internal/watch"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

// ServeOptions configures the serve command.
type ServeOptions struct {
	Backend    string
	Listen     string
	Hotplug    bool
	Metrics    bool
	Debounce   time.Duration
	ConfigPath string

	AuthUsername string
	AuthPassword string

	// Source replaces the kernel uevent source when set.
	Source watch.Source
	// Ready is called with the bound address once the server accepts connections.
	Ready func(addr net.Addr)
}

// CreateServeCmd creates the serve command.
func CreateServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve probe results over HTTP",
		Long: `Starts the read-only HTTP API. Every GET /api/cards runs a probe pass; results, ` +
			`hotplug events and logs are streamed over Server-Sent Events and counted in Prometheus metrics.`,
		Args: cobra.NoArgs,
		Run: humacli.WithOptions(func(cmd *cobra.Command, _ []string, opts *config.Options) {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			code := RunServe(ctx, ServeOptions{
				Backend:      opts.Backend,
				Listen:       opts.Listen,
				Hotplug:      opts.ServeHotplug,
				Metrics:      opts.MetricsEnabled,
				Debounce:     opts.Debounce(),
				ConfigPath:   opts.Config,
				AuthUsername: opts.AuthUsername,
				AuthPassword: opts.AuthPassword,
			})
			stop()
			os.Exit(code)
		}),
	}
}

// RunServe serves the API until ctx ends.
func RunServe(ctx context.Context, opts ServeOptions) int {
	logger := logging.GetLogger("api")

	sub, err := audio.New(opts.Backend)
	if err != nil {
		logger.Error("Failed to create audio backend", "error", err)
		return ExitFatal
	}

	bus := events.New()
	logging.SetLogCallback(func(entry logging.LogEntry) {
		bus.Publish(api.LogEvent(entry))
	})
	defer logging.SetLogCallback(nil)

	prober := probe.New(sub, &probe.Options{Sink: events.NewProbeSink(bus)})

	apiOpts := &api.Options{
		Backend:      opts.Backend,
		Prober:       prober,
		EventBus:     bus,
		AuthUsername: opts.AuthUsername,
		AuthPassword: opts.AuthPassword,
	}
	if opts.Metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		detach := metrics.NewRecorder(reg).Attach(bus)
		defer detach()
		apiOpts.PrometheusHandler = exporters.HTTPHandler(reg)
	}
	server := api.NewServer(apiOpts)

	stopReload := watchLogLevels(ctx, opts.ConfigPath)
	defer stopReload()

	if opts.Hotplug {
		startHotplug(ctx, opts, prober, bus)
	}

	ln, err := net.Listen("tcp", opts.Listen)
	if err != nil {
		logger.Error("Failed to start HTTP server", "addr", opts.Listen, "error", err)
		return ExitFatal
	}
	if opts.Ready != nil {
		opts.Ready(ln.Addr())
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			return ExitFatal
		}
		return ExitOK
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("Error stopping HTTP server", "error", err)
	}
	return ExitOK
}

// startHotplug re-probes in the background after sound card hotplug activity,
// publishing events and results on bus. Without a uevent socket it logs and
// returns.
func startHotplug(ctx context.Context, opts ServeOptions, prober *probe.CardProbe, bus *events.Bus) {
	logger := logging.GetLogger("hotplug")

	source := opts.Source
	if source == nil {
		var err error
		if source, err = watch.NewSoundSource(); err != nil {
			logger.Warn("Hotplug monitoring disabled", "error", err)
			return
		}
	}

	loop := watch.New(source, func(ctx context.Context) {
		if _, err := prober.Run(ctx); err != nil {
			logger.Warn("Hotplug re-probe failed", "error", err)
		}
	}, watch.WithDebounce(opts.Debounce), watch.WithEventBus(bus), watch.WithLogger(logger))

	go func() {
		if err := loop.Run(ctx); err != nil {
			logger.Error("Hotplug monitor stopped", "error", err)
		}
	}()
}
