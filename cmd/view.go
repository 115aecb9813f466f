package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"deepsampler.dev/pkg/deepsampler/internal/domain"
	m "deepsampler.dev/pkg/deepsampler/internal/model"
)

var plainFlag bool

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view file",
		Short: "Browse the calls recorded in a sample file",
		Long: `Show every recorded call of a sample file with its arguments and return value.
On a terminal the calls open in a scrollable view unless --plain is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return workflow.View(context.Background(), domain.ViewArgs{
				File:  m.Path(args[0]),
				Plain: viper.GetBool(plainConfigKey),
			})
		},
	}

	cmd.Flags().BoolVar(&plainFlag, plainFlagName, defaultPlain, "print a table instead of the interactive view")
	bindFlagToConfig(cmd.Flags().Lookup(plainFlagName), plainConfigKey)

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
