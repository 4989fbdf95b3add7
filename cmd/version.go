package cmd

import (
	"fmt"
	"runtime"

	"github.com/kozaktomas/face-recognition/internal/constants"
	"github.com/spf13/cobra"
)

// Build metadata, injected with -ldflags "-X .../cmd.Version=...".
var (
	Version   = "dev"
	CommitSHA = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the face-recognition build and runtime versions",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", constants.ServiceName, Version)
		fmt.Fprintf(out, "  commit:  %s\n", CommitSHA)
		fmt.Fprintf(out, "  built:   %s\n", BuildDate)
		fmt.Fprintf(out, "  go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(out, "  policy:  verify d<%.2f conf>=%.2f, compare d<%.2f\n",
			constants.StrictDistanceThreshold, constants.MinConfidenceThreshold, constants.CompareDistanceThreshold)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
