package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/drover/internal/config"
	"github.com/rileyhilliard/drover/internal/errors"
	"github.com/rileyhilliard/drover/internal/ui"
	"github.com/rileyhilliard/drover/pkg/remote"
	"github.com/spf13/cobra"
)

var (
	initHostFlag       string
	initNameFlag       string
	initForce          bool
	initNonInteractive bool
)

// initCmd creates a new .drover.yaml configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .drover.yaml configuration",
	Long: `Initialize a new drover configuration file.

Creates a .drover.yaml file in the current directory and guides you
through adding the first host with interactive prompts.

Examples:
  drover init
  drover init --host broker-1.prod --name broker-1
  drover init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Init(InitOptions{
			Host:           initHostFlag,
			Name:           initNameFlag,
			Overwrite:      initForce,
			NonInteractive: initNonInteractive,
		})
	},
}

// InitOptions holds options for the init command.
type InitOptions struct {
	Host           string // Pre-specified SSH alias
	Name           string // Pre-specified host name
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use defaults
}

// Init creates a new .drover.yaml configuration file.
func Init(opts InitOptions) error {
	if !opts.NonInteractive {
		ui.PrintHeader(ui.HeaderInfo{
			Version: formatVersion(version),
			Tagline: "Remote command herder",
		})
	}

	configPath := filepath.Join(".", config.ConfigFileName)

	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	sshAlias := opts.Host
	hostName := opts.Name
	var tagsInput string
	sudoDefault := true

	if opts.NonInteractive {
		if sshAlias == "" {
			return errors.New(errors.ErrConfig,
				"SSH host is required in non-interactive mode",
				"Provide --host, or run interactively")
		}
		if hostName == "" {
			hostName = sshAlias
		}
	} else {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("SSH host or alias").
					Description("Enter hostname, user@host, or an ~/.ssh/config alias").
					Placeholder("broker-1.prod or kafka@10.0.0.1").
					Value(&sshAlias).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return fmt.Errorf("SSH host is required")
						}
						return nil
					}),
			),
			huh.NewGroup(
				huh.NewInput().
					Title("Host name").
					Description("A friendly name for this host in your config").
					Placeholder("broker-1").
					Value(&hostName).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return fmt.Errorf("host name is required")
						}
						if strings.ContainsAny(s, " \t\n") {
							return fmt.Errorf("host name cannot contain whitespace")
						}
						return nil
					}),
			),
			huh.NewGroup(
				huh.NewInput().
					Title("Tags (optional)").
					Description("Comma-separated groups for --tag selection").
					Placeholder("kafka, rack-a (leave empty to skip)").
					Value(&tagsInput),
			),
			huh.NewGroup(
				huh.NewConfirm().
					Title("Run commands under sudo by default?").
					Value(&sudoDefault),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Check terminal compatibility or use --non-interactive")
		}
	}

	// Probe the host before saving so a typo surfaces now, not during
	// the first real run.
	fmt.Println()
	if err := probeHost(sshAlias); err != nil {
		if opts.NonInteractive {
			return errors.WrapWithCode(err, errors.ErrSSH,
				fmt.Sprintf("Connection to '%s' failed", sshAlias),
				"Check that the host is reachable: ssh "+sshAlias)
		}

		fmt.Printf("%s Connection to '%s' failed: %v\n\n", ui.Error(ui.SymbolFail), sshAlias, err)

		var saveAnyway bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Save config anyway? (You can fix the connection later)").
					Value(&saveAnyway),
			),
		)
		if formErr := form.Run(); formErr != nil || !saveAnyway {
			return errors.WrapWithCode(err, errors.ErrSSH,
				fmt.Sprintf("Connection to '%s' failed", sshAlias),
				"Check that the host is reachable: ssh "+sshAlias)
		}
	} else {
		fmt.Printf("%s Connected to %s\n\n", ui.Success(ui.SymbolSuccess), sshAlias)
	}

	cfg := config.DefaultConfig()
	cfg.Connection.Sudo = sudoDefault
	cfg.Hosts[hostName] = config.Host{
		SSH:  sshAlias,
		Tags: parseTags(tagsInput),
	}

	if err := config.Write(cfg, configPath); err != nil {
		return err
	}

	fmt.Printf("%s Wrote %s\n", ui.Success(ui.SymbolSuccess), configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  drover exec " + hostName + " -- uptime")
	return nil
}

// probeHost makes a single short connection attempt to the alias.
func probeHost(alias string) error {
	conn, err := remote.Connect(alias, remote.Options{
		MaxAttempts: 1,
		MaxTimeout:  10 * time.Second,
	})
	if err != nil {
		return err
	}
	return conn.Close()
}

// parseTags splits a comma-separated tag list, dropping empties.
func parseTags(input string) []string {
	var tags []string
	for _, tag := range strings.Split(input, ",") {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

func init() {
	initCmd.Flags().StringVar(&initHostFlag, "host", "", "pre-specify the SSH host or alias")
	initCmd.Flags().StringVar(&initNameFlag, "name", "", "pre-specify the host name")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVar(&initNonInteractive, "non-interactive", false, "skip prompts, use flags and defaults")
	rootCmd.AddCommand(initCmd)
}
