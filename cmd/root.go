// Package cmd provides the root command and CLI setup for deepsampler.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"deepsampler.dev/pkg/deepsampler/internal/adapter"
	"deepsampler.dev/pkg/deepsampler/internal/controller"
	"deepsampler.dev/pkg/deepsampler/internal/domain"
	m "deepsampler.dev/pkg/deepsampler/internal/model"
	"deepsampler.dev/pkg/deepsampler/pkg/persistence"
)

var sampleStore adapter.SampleStore
var workflow domain.Workflow
var ui controller.UI

// outputFlag is the file written by merge.
var outputFlag string

// rootFlag resolves relative sample paths.
var rootFlag string

// charsetFlag is the charset of sample files.
var charsetFlag string

// verboseFlag switches the log to debug level.
var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	sampleStore = configuredStore{}
	workflow = domain.NewWorkflow(sampleStore, ui)
}

const filesHelp = `Sample files are read by extension:
  - *.json           JSON sample files
  - *.yaml, *.yml    YAML sample files`

const rootLongDescription = `deepsampler inspects the sample files recorded by tests that use the
deepsampler persistence API: list the sampled methods they hold, browse the
recorded calls and merge several recordings into one.

` + filesHelp

const listLongDescription = `List the sample ids of each file and the number of recorded calls.

` + filesHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deepsampler",
		Short: "Inspect and merge recorded method samples",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&outputFlag, outputFlagName, "o",
			defaultOutput,
			"sample file written by merge (.json, .yaml or .yml)",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().StringVar(&rootFlag, rootFlagName, defaultRoot, "directory relative sample paths are resolved against")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(rootFlagName), rootFlagName)

	cmd.PersistentFlags().StringVar(&charsetFlag, charsetFlagName, defaultCharset, "charset of sample files (e.g. utf-8, iso-8859-1)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(charsetFlagName), charsetFlagName)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", defaultLogVerbose, "write debug output to the log file")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}

// configuredStore reads root and charset when a file is accessed, after flags are parsed.
type configuredStore struct{}

func (configuredStore) store() *adapter.LocalSampleStore {
	return adapter.NewLocalSampleStore(
		adapter.WithRoot(viper.GetString(rootFlagName)),
		adapter.WithCharset(viper.GetString(charsetFlagName)),
	)
}

func (s configuredStore) Load(ctx context.Context, path m.Path) (*persistence.Model, error) {
	return s.store().Load(ctx, path)
}

func (s configuredStore) Save(ctx context.Context, path m.Path, model *persistence.Model) error {
	return s.store().Save(ctx, path, model)
}
