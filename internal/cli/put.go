package cli

import (
	"os"
	"time"

	"github.com/rileyhilliard/drover/internal/config"
	"github.com/rileyhilliard/drover/internal/errors"
	"github.com/rileyhilliard/drover/internal/ui"
	"github.com/rileyhilliard/drover/pkg/remote"
	"github.com/spf13/cobra"
)

var putFlags ConnectionFlags

// putCmd uploads a local file to one or more hosts.
var putCmd = &cobra.Command{
	Use:   "put <local> <remote> [hosts...]",
	Short: "Copy a local file to cluster hosts",
	Long: `Upload a local file to the same remote path on each selected host.

Hosts after the paths are configured host names or raw SSH aliases.
Without explicit hosts, --tag or --all selects from .drover.yaml.

Examples:
  drover put server.properties /etc/kafka/server.properties broker-1
  drover put restart.sh /tmp/restart.sh --tag kafka`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPut(cmd, args[0], args[1], args[2:])
	},
}

func runPut(cmd *cobra.Command, localPath, remotePath string, hosts []string) error {
	if _, err := os.Stat(localPath); err != nil {
		return errors.WrapWithCode(err, errors.ErrTransfer,
			"Cannot read local file: "+localPath,
			"Check the path exists and is readable.")
	}

	cfg, err := config.LoadOrDefault(configFlag)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	targets, err := selectTargets(cfg, hosts, putFlags.Tag, putFlags.All)
	if err != nil {
		return err
	}

	opts, _, err := buildOptions(cmd, cfg, &putFlags)
	if err != nil {
		return err
	}

	display := ui.NewRunDisplay(os.Stdout)
	display.SetQuiet(quietFlag)
	started := time.Now()

	for _, target := range targets {
		display.HostStart(target.Name)
		hostStart := time.Now()
		hostErr := putOnHost(target, localPath, remotePath, opts)
		display.HostDone(target.Name, time.Since(hostStart), hostErr)
	}

	display.Summary(time.Since(started))
	if display.Failed() > 0 {
		return errors.NewExitError(1)
	}
	return nil
}

func putOnHost(target Target, localPath, remotePath string, opts remote.Options) error {
	conn, err := remote.Connect(target.SSH, opts)
	if err != nil {
		return err
	}
	defer conn.Close()

	return conn.PutFile(localPath, remotePath)
}

func init() {
	AddConnectionFlags(putCmd, &putFlags)
	rootCmd.AddCommand(putCmd)
}
