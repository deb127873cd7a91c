package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/depexplain/depexplain/pkg/buildinfo"
)

// Execute runs the depexplain CLI and returns an error if any command fails.
//
// The function sets up the root command with all subcommands (analyze,
// rules, cache, serve), configures logging based on the --verbose flag, and
// executes the command tree. The logger is attached to the context and
// accessible to all commands via loggerFromContext.
func Execute(ctx context.Context) error {
	var (
		verbose    bool
		configFile string
	)

	root := &cobra.Command{
		Use:          appName,
		Short:        "depexplain checks requirements.txt files for known dependency conflicts",
		Long:         `depexplain parses Python requirements files, matches them against a table of known-incompatible package pairs, and explains every conflict it finds in plain language.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ~/.config/depexplain/config.toml)")

	root.AddCommand(newAnalyzeCmd(&configFile))
	root.AddCommand(newRulesCmd(&configFile))
	root.AddCommand(newCacheCmd())
	root.AddCommand(newServeCmd(&configFile))
	root.AddCommand(newCompletionCmd())

	return root.ExecuteContext(ctx)
}
