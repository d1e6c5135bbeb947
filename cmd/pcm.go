package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/alsaprobe/internal/audio"
	"github.com/smazurov/alsaprobe/internal/config"
	"github.com/smazurov/alsaprobe/internal/report"
	"github.com/spf13/cobra"
)

// CreatePCMCmd creates the pcm command.
func CreatePCMCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pcm",
		Short: "List PCM devices and their capabilities",
		Long: `Lists every playback and capture PCM device with the sample rates, formats, ` +
			`channel counts and buffer sizes its driver reports. Devices in use are listed without capabilities.`,
		Args: cobra.NoArgs,
		Run: humacli.WithOptions(func(cmd *cobra.Command, _ []string, opts *config.Options) {
			os.Exit(RunPCM(audio.ListPCM, opts.Output, cmd.OutOrStdout(), cmd.ErrOrStderr()))
		}),
	}
}

// RunPCM lists devices in the given output format.
func RunPCM(list func() ([]audio.Device, error), output string, stdout, stderr io.Writer) int {
	format, err := report.ParseFormat(output)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitFatal
	}

	devices, err := list()
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to list PCM devices: %v\n", err)
		return ExitFatal
	}

	if err := report.EncodePCM(stdout, format, devices); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitFatal
	}
	return ExitOK
}
