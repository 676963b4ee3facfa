package config

import (
	"os"

	"github.com/rileyhilliard/drover/internal/errors"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config with durations rendered as strings like "5s",
// so the written file round-trips through the loader.
type fileConfig struct {
	Version    int             `yaml:"version"`
	Hosts      map[string]Host `yaml:"hosts"`
	Connection struct {
		Sudo           bool   `yaml:"sudo"`
		ForwardAgent   bool   `yaml:"forward_agent"`
		Attempts       int    `yaml:"attempts"`
		ConnectTimeout string `yaml:"connect_timeout"`
	} `yaml:"connection"`
	Service Service `yaml:"service"`
}

// Write serializes the config to YAML and writes it to path.
// Used by 'drover init'.
func Write(cfg *Config, path string) error {
	out := fileConfig{
		Version: cfg.Version,
		Hosts:   cfg.Hosts,
		Service: cfg.Service,
	}
	out.Connection.Sudo = cfg.Connection.Sudo
	out.Connection.ForwardAgent = cfg.Connection.ForwardAgent
	out.Connection.Attempts = cfg.Connection.Attempts
	out.Connection.ConnectTimeout = cfg.Connection.ConnectTimeout.String()

	data, err := yaml.Marshal(&out)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to serialize config",
			"This is a bug in drover; please report it")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write "+path,
			"Check directory permissions")
	}

	return nil
}
