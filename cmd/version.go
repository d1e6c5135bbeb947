package cmd

import (
	"fmt"
	"io"

	"github.com/smazurov/alsaprobe/internal/version"
	"github.com/spf13/cobra"
)

// CreateVersionCmd creates the version command.
func CreateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			PrintVersion(cmd.OutOrStdout(), version.Get())
		},
	}
}

// PrintVersion writes info in human-readable form.
func PrintVersion(w io.Writer, info version.Info) {
	fmt.Fprintf(w, "alsaprobe %s\n", info.Version)
	fmt.Fprintf(w, "  commit:   %s\n", info.GitCommit)
	fmt.Fprintf(w, "  built:    %s (%s)\n", info.BuildDate, info.BuildID)
	fmt.Fprintf(w, "  go:       %s %s %s\n", info.GoVersion, info.Compiler, info.Platform)
}
