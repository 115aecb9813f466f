package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"deepsampler.dev/pkg/deepsampler/internal/domain"
)

var parallelFlag int

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list files...",
		Short: "List sample ids and call counts",
		Long:  listLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return workflow.List(context.Background(), domain.ListArgs{
				Files:    parsePaths(args),
				Parallel: viper.GetInt(parallelConfigKey),
			})
		},
	}

	configureParallelFlag(cmd)

	return cmd
}

// configureParallelFlag adds --parallel to cmd. list and merge share the config key, so the
// key is bound to the flag of the command that actually runs.
func configureParallelFlag(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&parallelFlag, parallelFlagName, "p", defaultParallel, "number of sample files read concurrently")

	cmd.PreRun = func(cmd *cobra.Command, _ []string) {
		bindFlagToConfig(cmd.Flags().Lookup(parallelFlagName), parallelConfigKey)
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
}
