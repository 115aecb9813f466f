package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"deepsampler.dev/pkg/deepsampler/internal/domain"
	m "deepsampler.dev/pkg/deepsampler/internal/model"
)

// mergeCmd represents the merge command.
var mergeCmd = newMergeCmd()

func newMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge files...",
		Short: "Merge several sample files into one",
		Long: `Merge the samples of several recordings into the file given by --output.
Identical calls of the same sample id are kept once. The merged file gets a new model id.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return workflow.Merge(context.Background(), domain.MergeArgs{
				Files:    parsePaths(args),
				Output:   m.Path(viper.GetString(outputFlagName)),
				Parallel: viper.GetInt(parallelConfigKey),
			})
		},
	}

	configureParallelFlag(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
