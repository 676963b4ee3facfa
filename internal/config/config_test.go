package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
version: 1
hosts:
  broker-1:
    ssh: broker-1.prod
    tags: [kafka, rack-a]
  broker-2:
    ssh: kafka@10.0.0.2
    tags: [kafka, rack-b]
connection:
  sudo: true
  forward_agent: true
  attempts: 5
  connect_timeout: 10s
service:
  start_command: systemctl start kafka
  stop_command: systemctl stop kafka
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Version)
	assert.Len(t, cfg.Hosts, 2)
	assert.Equal(t, "broker-1.prod", cfg.Hosts["broker-1"].SSH)
	assert.Equal(t, []string{"kafka", "rack-b"}, cfg.Hosts["broker-2"].Tags)
	assert.True(t, cfg.Connection.Sudo)
	assert.True(t, cfg.Connection.ForwardAgent)
	assert.Equal(t, 5, cfg.Connection.Attempts)
	assert.Equal(t, 10*time.Second, cfg.Connection.ConnectTimeout)
	assert.Equal(t, "systemctl start kafka", cfg.Service.StartCommand)
	assert.Equal(t, "systemctl stop kafka", cfg.Service.StopCommand)
}

func TestLoadDefaultsApplied(t *testing.T) {
	path := writeConfig(t, `
version: 1
hosts:
  broker-1:
    ssh: broker-1.prod
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Connection.Attempts)
	assert.Equal(t, 5*time.Second, cfg.Connection.ConnectTimeout)
	assert.Equal(t, "service kafka start", cfg.Service.StartCommand)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), ConfigFileName))
	require.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "hosts: [not: a: map\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestFindExplicit(t *testing.T) {
	path := writeConfig(t, "version: 1\n")

	found, err := Find(path)
	require.NoError(t, err)
	assert.Equal(t, path, found)

	_, err = Find(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadOrDefaultWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, CurrentConfigVersion, cfg.Version)
	assert.Empty(t, cfg.Hosts)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "version from the future",
			mutate:  func(cfg *Config) { cfg.Version = CurrentConfigVersion + 1 },
			wantErr: true,
		},
		{
			name:    "host without ssh",
			mutate:  func(cfg *Config) { cfg.Hosts["bad"] = Host{} },
			wantErr: true,
		},
		{
			name:    "host name with whitespace",
			mutate:  func(cfg *Config) { cfg.Hosts["two words"] = Host{SSH: "h"} },
			wantErr: true,
		},
		{
			name:    "zero attempts",
			mutate:  func(cfg *Config) { cfg.Connection.Attempts = 0 },
			wantErr: true,
		},
		{
			name:    "negative timeout",
			mutate:  func(cfg *Config) { cfg.Connection.ConnectTimeout = -time.Second },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Hosts["broker-1"] = Host{SSH: "broker-1.prod"}
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hosts["broker-1"] = Host{SSH: "broker-1.prod", Tags: []string{"kafka"}}
	cfg.Connection.ConnectTimeout = 7 * time.Second

	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, Write(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Hosts, loaded.Hosts)
	assert.Equal(t, cfg.Connection, loaded.Connection)
	assert.Equal(t, cfg.Service, loaded.Service)
}

func TestHostsByTag(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hosts["b2"] = Host{SSH: "h2", Tags: []string{"kafka", "rack-b"}}
	cfg.Hosts["b1"] = Host{SSH: "h1", Tags: []string{"kafka"}}
	cfg.Hosts["zk"] = Host{SSH: "h3", Tags: []string{"zookeeper"}}

	assert.Equal(t, []string{"b1", "b2"}, cfg.HostsByTag("kafka"))
	assert.Equal(t, []string{"zk"}, cfg.HostsByTag("zookeeper"))
	assert.Empty(t, cfg.HostsByTag("absent"))
}

func TestHostNamesSorted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hosts["b"] = Host{SSH: "h"}
	cfg.Hosts["a"] = Host{SSH: "h"}

	assert.Equal(t, []string{"a", "b"}, cfg.HostNames())
}
