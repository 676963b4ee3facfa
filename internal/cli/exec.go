package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rileyhilliard/drover/internal/config"
	"github.com/rileyhilliard/drover/internal/errors"
	"github.com/rileyhilliard/drover/internal/ui"
	"github.com/rileyhilliard/drover/pkg/remote"
	"github.com/spf13/cobra"
)

var execFlags ConnectionFlags

// execCmd runs a command on one or more hosts.
var execCmd = &cobra.Command{
	Use:   "exec [hosts...] -- <command>",
	Short: "Run a command on cluster hosts",
	Long: `Run a command on each selected host over SSH.

Hosts before the -- are configured host names or raw SSH aliases.
Without explicit hosts, --tag or --all selects from .drover.yaml.
Captured stdout and stderr print in per-host blocks after each run.

Examples:
  drover exec broker-1 -- service kafka status
  drover exec broker-1 broker-2 -- "df -h /var/kafka"
  drover exec --tag kafka --sudo -- service kafka restart`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hosts, command, err := splitHostsAndCommand(cmd, args)
		if err != nil {
			return err
		}
		return runExec(cmd, hosts, command)
	},
}

// splitHostsAndCommand splits argv at the -- separator. Everything before
// it names hosts, everything after is the remote command. Without a
// separator all args form the command and host selection falls to flags.
func splitHostsAndCommand(cmd *cobra.Command, args []string) ([]string, string, error) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		return nil, strings.Join(args, " "), nil
	}
	command := strings.Join(args[dash:], " ")
	if strings.TrimSpace(command) == "" {
		return nil, "", errors.New(errors.ErrConfig,
			"No command given after --",
			"Usage: drover exec [hosts...] -- <command>")
	}
	return args[:dash], command, nil
}

func runExec(cmd *cobra.Command, hosts []string, command string) error {
	cfg, err := config.LoadOrDefault(configFlag)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	targets, err := selectTargets(cfg, hosts, execFlags.Tag, execFlags.All)
	if err != nil {
		return err
	}

	opts, sudo, err := buildOptions(cmd, cfg, &execFlags)
	if err != nil {
		return err
	}

	display := ui.NewRunDisplay(os.Stdout)
	display.SetQuiet(quietFlag)
	reporter := remote.NewReporter()
	started := time.Now()

	for _, target := range targets {
		display.HostStart(target.Name)
		hostStart := time.Now()
		hostErr := runOnHost(target, command, opts, sudo, reporter)
		display.HostDone(target.Name, time.Since(hostStart), hostErr)
	}

	display.Summary(time.Since(started))
	if failed := display.Failed(); failed > 0 {
		return errors.NewExitError(1)
	}
	return nil
}

// runOnHost connects, runs the command checked, and reports captured
// output. Output is reported even when the command exits non-zero.
func runOnHost(target Target, command string, opts remote.Options, sudo bool, reporter *remote.Reporter) error {
	conn, err := remote.Connect(target.SSH, opts)
	if err != nil {
		return err
	}
	defer conn.Close()

	var streams *remote.Streams
	if sudo {
		streams, err = conn.Sudo(command, true)
	} else {
		streams, err = conn.Exec(command, true)
	}
	if streams != nil {
		reporter.Report(target.Name, streams.Stdout, remote.Stdout)
		reporter.Report(target.Name, streams.Stderr, remote.Stderr)
	}

	var cmdErr *remote.CommandError
	if stderrors.As(err, &cmdErr) {
		return fmt.Errorf("exit status %d", cmdErr.ExitStatus)
	}
	return err
}

func init() {
	AddConnectionFlags(execCmd, &execFlags)
	rootCmd.AddCommand(execCmd)
}
