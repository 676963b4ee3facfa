package cli

import (
	"fmt"

	"github.com/rileyhilliard/drover/internal/config"
	"github.com/rileyhilliard/drover/internal/ui"
	"github.com/rileyhilliard/drover/internal/util"
	"github.com/rileyhilliard/drover/pkg/remote"
	"github.com/spf13/cobra"
)

// hostsCmd lists the hosts drover can target.
var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "List configured hosts and SSH config aliases",
	Long: `List hosts from .drover.yaml and concrete aliases from ~/.ssh/config.

Configured hosts show their SSH alias and tags. SSH config aliases show
the resolved hostname, user, and port. Wildcard patterns are skipped.

Examples:
  drover hosts`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHosts()
	},
}

func runHosts() error {
	cfg, err := config.LoadOrDefault(configFlag)
	if err != nil {
		return err
	}

	if len(cfg.Hosts) > 0 {
		fmt.Println(ui.Info("Configured hosts:"))
		for _, name := range cfg.HostNames() {
			h := cfg.Hosts[name]
			fmt.Printf("  %s  %s  %s\n", ui.Host(name), h.SSH,
				ui.Muted("["+util.JoinOrNone(h.Tags)+"]"))
		}
		fmt.Println()
	}

	entries, err := remote.ListHosts()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		if len(cfg.Hosts) == 0 {
			fmt.Println("No hosts found. Run 'drover init' or add entries to ~/.ssh/config.")
		}
		return nil
	}

	fmt.Println(ui.Info("SSH config aliases:"))
	for _, entry := range entries {
		if desc := entry.Description(); desc != entry.Alias {
			fmt.Printf("  %s  %s\n", ui.Host(entry.Alias), ui.Muted(desc))
		} else {
			fmt.Printf("  %s\n", ui.Host(entry.Alias))
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(hostsCmd)
}
