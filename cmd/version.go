package cmd

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

const unknownVersion = "unknown"

// buildInfo is replaced in tests.
var buildInfo = debug.ReadBuildInfo

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the version information",
		Long:  "Displays the module version, the VCS revision and the Go version of this build.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info, ok := buildInfo()
			if !ok {
				cmd.Println("deepsampler", unknownVersion)
				return
			}

			version := info.Main.Version
			if version == "" {
				version = unknownVersion
			}

			cmd.Println("deepsampler\t", version)
			cmd.Println("revision\t", setting(info, "vcs.revision"))
			cmd.Println("go version\t", info.GoVersion)
		},
	}
}

func setting(info *debug.BuildInfo, key string) string {
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}

	return unknownVersion
}

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}
