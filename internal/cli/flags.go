package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rileyhilliard/drover/internal/config"
	"github.com/rileyhilliard/drover/internal/errors"
	"github.com/rileyhilliard/drover/pkg/remote"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// ConnectionFlags holds the SSH connection flags shared by exec and put.
type ConnectionFlags struct {
	Sudo           bool
	ForwardAgent   bool
	Attempts       int
	ConnectTimeout string
	AskPass        bool
	Tag            string
	All            bool
}

// AddConnectionFlags registers the shared connection and host selection
// flags on a command.
func AddConnectionFlags(cmd *cobra.Command, flags *ConnectionFlags) {
	cmd.Flags().BoolVar(&flags.Sudo, "sudo", false, "run under sudo (allocates a pty)")
	cmd.Flags().BoolVar(&flags.ForwardAgent, "forward-agent", false, "forward the local SSH agent")
	cmd.Flags().IntVar(&flags.Attempts, "attempts", 0, "connection attempts per host (default from config)")
	cmd.Flags().StringVar(&flags.ConnectTimeout, "connect-timeout", "", "per-attempt timeout, also the retry delay (e.g., 5s, 2m)")
	cmd.Flags().BoolVar(&flags.AskPass, "ask-pass", false, "prompt for an SSH password")
	cmd.Flags().StringVar(&flags.Tag, "tag", "", "select configured hosts by tag")
	cmd.Flags().BoolVar(&flags.All, "all", false, "target every configured host")
}

// ParseConnectTimeout parses a connect timeout flag value.
// Returns zero duration if the flag is empty.
func ParseConnectTimeout(flag string) (time.Duration, error) {
	if flag == "" {
		return 0, nil
	}

	duration, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid timeout", flag),
			"Try something like 5s, 2m, or 500ms.")
	}
	return duration, nil
}

// buildOptions merges config defaults with flag overrides into connect
// options. Returns the options and whether commands run under sudo.
func buildOptions(cmd *cobra.Command, cfg *config.Config, flags *ConnectionFlags) (remote.Options, bool, error) {
	opts := remote.Options{
		ForwardAgent: cfg.Connection.ForwardAgent,
		MaxAttempts:  cfg.Connection.Attempts,
		MaxTimeout:   cfg.Connection.ConnectTimeout,
	}
	sudo := cfg.Connection.Sudo

	if cmd.Flags().Changed("sudo") {
		sudo = flags.Sudo
	}
	if cmd.Flags().Changed("forward-agent") {
		opts.ForwardAgent = flags.ForwardAgent
	}
	if cmd.Flags().Changed("attempts") {
		if flags.Attempts < 1 {
			return opts, false, errors.New(errors.ErrConfig,
				"--attempts must be at least 1",
				"A host gets at least one connection attempt.")
		}
		opts.MaxAttempts = flags.Attempts
	}

	timeout, err := ParseConnectTimeout(flags.ConnectTimeout)
	if err != nil {
		return opts, false, err
	}
	if timeout > 0 {
		opts.MaxTimeout = timeout
	}

	if flags.AskPass {
		password, err := promptPassword()
		if err != nil {
			return opts, false, err
		}
		opts.Password = password
	}

	opts.Sudoable = sudo
	return opts, sudo, nil
}

// promptPassword reads a password from the terminal without echo.
func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "SSH password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read password",
			"Run from an interactive terminal, or drop --ask-pass to use key auth.")
	}
	return string(raw), nil
}
