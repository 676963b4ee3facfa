package config

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/drover/internal/errors"
)

// Validate checks the config for errors and returns structured error
// messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but drover only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Grab the latest drover release")
	}

	for name, host := range cfg.Hosts {
		if strings.TrimSpace(name) == "" {
			return errors.New(errors.ErrConfig,
				"A host entry has an empty name",
				"Give every host under 'hosts:' a non-empty name")
		}
		if strings.ContainsAny(name, " \t\n") {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Host name '%s' contains whitespace", name),
				"Host names must be single words")
		}
		if strings.TrimSpace(host.SSH) == "" {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Host '%s' has no ssh connection string", name),
				"Set 'ssh:' to a hostname, user@host, or an ~/.ssh/config alias")
		}
	}

	if cfg.Connection.Attempts < 1 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("connection.attempts is %d", cfg.Connection.Attempts),
			"Use at least 1 attempt")
	}

	if cfg.Connection.ConnectTimeout <= 0 {
		return errors.New(errors.ErrConfig,
			"connection.connect_timeout must be positive",
			"Use a duration like 5s or 30s")
	}

	return nil
}
