package remote

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kevinburke/ssh_config"
)

// HostParams holds the resolved connection parameters for one host.
// It is built once per connection attempt by merging the caller's explicit
// values with whatever the user's ~/.ssh/config defines for the alias, and
// is not mutated afterwards.
type HostParams struct {
	Hostname     string
	Timeout      time.Duration
	User         string
	Port         int // 0 means unset (dial uses 22)
	ProxyCommand string
	IdentityFile string

	// Password is caller-supplied only. It is never read from the
	// alias file.
	Password string
}

// address returns the host:port string for dialing.
func (p HostParams) address() string {
	port := p.Port
	if port == 0 {
		port = 22
	}
	return p.Hostname + ":" + strconv.Itoa(port)
}

// userConfigPath locates the user's SSH alias configuration file.
// Overridable for tests.
var userConfigPath = filepath.Join(homeDir(), ".ssh", "config")

// ResolveHostParams looks up the alias in the user's ~/.ssh/config and
// returns any of user, port, proxy command, and identity file defined there.
// Resolution is best-effort: a missing config file or an alias with no
// matching entry yields params with only Hostname set.
func ResolveHostParams(alias string) HostParams {
	return resolveHostParamsFrom(alias, userConfigPath)
}

func resolveHostParamsFrom(alias, configPath string) HostParams {
	params := HostParams{Hostname: alias}

	content, _, err := preprocessSSHConfig(configPath)
	if err != nil {
		// Config doesn't exist or can't be read, that's fine
		return params
	}

	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return params
	}

	if hostname, _ := cfg.Get(alias, "HostName"); hostname != "" {
		params.Hostname = hostname
	}

	if user, _ := cfg.Get(alias, "User"); user != "" {
		params.User = user
	}

	if port, _ := cfg.Get(alias, "Port"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			params.Port = n
		}
	}

	if proxy, _ := cfg.Get(alias, "ProxyCommand"); proxy != "" {
		params.ProxyCommand = proxy
	}

	if identity, _ := cfg.Get(alias, "IdentityFile"); identity != "" {
		params.IdentityFile = expandPath(identity)
	}

	return params
}

// HostEntry represents a concrete host entry parsed from SSH config.
type HostEntry struct {
	Alias        string
	Hostname     string
	User         string
	Port         string
	IdentityFile string
}

// Description returns a user-friendly summary of the entry.
func (h HostEntry) Description() string {
	parts := []string{}

	if h.Hostname != "" && h.Hostname != h.Alias {
		parts = append(parts, h.Hostname)
	}
	if h.User != "" {
		parts = append(parts, "user: "+h.User)
	}
	if h.Port != "" && h.Port != "22" {
		parts = append(parts, "port: "+h.Port)
	}

	if len(parts) == 0 {
		return h.Alias
	}
	return strings.Join(parts, ", ")
}

// ListHosts parses ~/.ssh/config and returns all concrete host aliases,
// skipping wildcards and patterns.
func ListHosts() ([]HostEntry, error) {
	return ListHostsFile(userConfigPath)
}

// ListHostsFile parses the specified SSH config file.
func ListHostsFile(configPath string) ([]HostEntry, error) {
	content, _, err := preprocessSSHConfig(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // No SSH config is fine
		}
		return nil, err
	}

	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	var hosts []HostEntry
	seen := make(map[string]bool)

	for _, host := range cfg.Hosts {
		for _, pattern := range host.Patterns {
			alias := pattern.String()

			if strings.Contains(alias, "*") || strings.Contains(alias, "?") {
				continue
			}
			if seen[alias] {
				continue
			}
			seen[alias] = true

			entry := HostEntry{Alias: alias}

			if hostname, _ := cfg.Get(alias, "HostName"); hostname != "" {
				entry.Hostname = hostname
			}
			if user, _ := cfg.Get(alias, "User"); user != "" {
				entry.User = user
			}
			if port, _ := cfg.Get(alias, "Port"); port != "" {
				entry.Port = port
			}
			if identity, _ := cfg.Get(alias, "IdentityFile"); identity != "" {
				entry.IdentityFile = expandPath(identity)
			}

			hosts = append(hosts, entry)
		}
	}

	sort.Slice(hosts, func(i, j int) bool {
		return hosts[i].Alias < hosts[j].Alias
	})

	return hosts, nil
}

// preprocessSSHConfig reads the SSH config and returns content up to the
// first Match directive. The kevinburke/ssh_config library doesn't support
// Match, so everything from the first Match block on is dropped.
// Also returns the line number where Match was found (0 if not found).
func preprocessSSHConfig(configPath string) ([]byte, int, error) {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, 0, err
	}

	lines := strings.Split(string(content), "\n")
	var result []string
	matchLine := 0

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToLower(trimmed), "match ") {
			matchLine = i + 1
			break
		}
		result = append(result, line)
	}

	return []byte(strings.Join(result, "\n")), matchLine, nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

func currentUser() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "root"
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}
