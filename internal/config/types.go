package config

import (
	"sort"
	"time"
)

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .drover.yaml configuration file.
type Config struct {
	Version    int             `yaml:"version" mapstructure:"version"`
	Hosts      map[string]Host `yaml:"hosts" mapstructure:"hosts"`
	Connection Connection      `yaml:"connection" mapstructure:"connection"`
	Service    Service         `yaml:"service" mapstructure:"service"`
}

// Host defines a remote machine drover can operate on.
type Host struct {
	// SSH is the connection string: hostname, user@hostname, or an
	// ~/.ssh/config alias.
	SSH string `yaml:"ssh" mapstructure:"ssh"`

	// Tags for selecting groups of hosts with --tag.
	Tags []string `yaml:"tags" mapstructure:"tags"`
}

// Connection holds the default connection options applied when the
// matching command-line flags are not set.
type Connection struct {
	// Sudo allocates a pseudo-terminal and runs service commands with
	// privilege escalation.
	Sudo bool `yaml:"sudo" mapstructure:"sudo"`

	// ForwardAgent propagates the local SSH agent to remote sessions.
	ForwardAgent bool `yaml:"forward_agent" mapstructure:"forward_agent"`

	// Attempts bounds connection attempts per host.
	Attempts int `yaml:"attempts" mapstructure:"attempts"`

	// ConnectTimeout is the per-attempt timeout and the delay between
	// attempts.
	ConnectTimeout time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout"`
}

// Service holds the broker service commands issued during maintenance.
type Service struct {
	StartCommand string `yaml:"start_command" mapstructure:"start_command"`
	StopCommand  string `yaml:"stop_command" mapstructure:"stop_command"`
}

// DefaultConfig returns a config populated with defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Hosts:   map[string]Host{},
		Connection: Connection{
			Sudo:           true,
			Attempts:       3,
			ConnectTimeout: 5 * time.Second,
		},
		Service: Service{
			StartCommand: "service kafka start",
			StopCommand:  "service kafka stop",
		},
	}
}

// HostNames returns the configured host names in sorted order.
func (c *Config) HostNames() []string {
	names := make([]string, 0, len(c.Hosts))
	for name := range c.Hosts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HostsByTag returns the names of hosts carrying the given tag, sorted.
func (c *Config) HostsByTag(tag string) []string {
	var names []string
	for name, host := range c.Hosts {
		for _, t := range host.Tags {
			if t == tag {
				names = append(names, name)
				break
			}
		}
	}
	sort.Strings(names)
	return names
}
