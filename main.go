package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/alsaprobe/cmd"
	"github.com/smazurov/alsaprobe/internal/config"
	"github.com/smazurov/alsaprobe/internal/logging"
)

func main() {
	var cli humacli.CLI
	exitCode := cmd.ExitOK
	probeDone := make(chan struct{})

	cli = humacli.New(func(hooks humacli.Hooks, opts *config.Options) {
		// Load configuration automatically; flags given on the command line win.
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		// Initialize logging system
		logging.Initialize(opts.LoggingConfig())

		// The root command runs one probe pass. Subcommands ignore these hooks.
		ctx, cancel := context.WithCancel(context.Background())

		hooks.OnStart(func() {
			defer close(probeDone)
			exitCode = cmd.RunProbe(ctx, cmd.ProbeOptions{
				Backend: opts.Backend,
				Output:  opts.Output,
				Stdout:  os.Stdout,
				Stderr:  os.Stderr,
			})
		})

		hooks.OnStop(func() {
			cancel()
			<-probeDone
		})
	})

	root := cli.Root()
	root.Use = "alsaprobe"
	root.Short = "Probe sound cards and the mixer lifecycle of each"
	root.Long = `Enumerates every sound card, prints its names and, for each card, opens a mixer, ` +
		`attaches it to hw:N, registers simple elements, loads them and closes it again, ` +
		`reporting the status code of every call. Nothing is ever written to the hardware.`

	root.AddCommand(cmd.CreateWatchCmd())
	root.AddCommand(cmd.CreateServeCmd())
	root.AddCommand(cmd.CreatePCMCmd())
	root.AddCommand(cmd.CreateVersionCmd())

	// Run the CLI
	cli.Run()
	os.Exit(exitCode)
}
