package cli

import (
	"fmt"
	"os"

	"github.com/rileyhilliard/drover/internal/errors"
	"github.com/rileyhilliard/drover/internal/ui"
	"github.com/spf13/cobra"
)

// Global flags shared by all commands
var (
	configFlag  string
	verboseFlag bool
	quietFlag   bool
	noColorFlag bool
)

// rootCmd is the base command all subcommands hang off.
var rootCmd = &cobra.Command{
	Use:   "drover",
	Short: "Run commands across cluster hosts over SSH",
	Long: `Drover runs maintenance commands across a fleet of hosts over SSH.

Hosts are addressed by their ~/.ssh/config aliases, optionally grouped
and tagged in a .drover.yaml file. Commands run per host with bounded
connection retries, optional sudo, and captured output printed in
per-host blocks.

Examples:
  drover exec broker-1 -- service kafka status
  drover exec --tag kafka --sudo -- service kafka restart
  drover put kafka.properties /etc/kafka/server.properties broker-1`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColorFlag || os.Getenv("NO_COLOR") != "" {
			ui.DisableColors()
		}
		if verboseFlag {
			os.Setenv("DROVER_DEBUG", "1")
		}
	},
}

// Execute runs the root command and exits the process on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(errors.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to config file (default .drover.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "suppress per-host progress lines")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "disable colored output")
}
