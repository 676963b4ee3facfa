package cli

import (
	"github.com/rileyhilliard/drover/internal/config"
	"github.com/rileyhilliard/drover/internal/errors"
)

// Target is one host a command runs against: a display name and the SSH
// alias used to connect.
type Target struct {
	Name string
	SSH  string
}

// selectTargets resolves which hosts a command runs against. Explicit
// args win; otherwise --tag filters configured hosts and --all takes
// every configured host. An arg naming a configured host uses that
// host's alias; any other arg is treated as a raw SSH alias.
func selectTargets(cfg *config.Config, args []string, tag string, all bool) ([]Target, error) {
	if len(args) > 0 {
		targets := make([]Target, 0, len(args))
		for _, name := range args {
			if h, ok := cfg.Hosts[name]; ok {
				targets = append(targets, Target{Name: name, SSH: h.SSH})
				continue
			}
			targets = append(targets, Target{Name: name, SSH: name})
		}
		return targets, nil
	}

	var names []string
	switch {
	case tag != "":
		names = cfg.HostsByTag(tag)
		if len(names) == 0 {
			return nil, errors.New(errors.ErrConfig,
				"No configured hosts match tag '"+tag+"'",
				"Check the tags in your .drover.yaml, or name hosts explicitly.")
		}
	case all:
		names = cfg.HostNames()
		if len(names) == 0 {
			return nil, errors.New(errors.ErrConfig,
				"No hosts configured",
				"Run 'drover init' to create a config, or name hosts explicitly.")
		}
	default:
		return nil, errors.New(errors.ErrConfig,
			"No hosts specified",
			"Name hosts as arguments, or select them with --tag or --all.")
	}

	targets := make([]Target, 0, len(names))
	for _, name := range names {
		targets = append(targets, Target{Name: name, SSH: cfg.Hosts[name].SSH})
	}
	return targets, nil
}
