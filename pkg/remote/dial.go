package remote

import (
	stderrors "errors"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/drover/internal/errors"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Options controls connection establishment and the capabilities attached
// to the resulting Connection.
type Options struct {
	// ForwardAgent propagates the local authentication agent into remote
	// sessions so the remote side can authenticate further hops.
	ForwardAgent bool

	// Sudoable allocates a pseudo-terminal on each command channel,
	// required for interactive privilege-escalation prompts.
	Sudoable bool

	// MaxAttempts bounds connection attempts. Default 1.
	MaxAttempts int

	// MaxTimeout is both the per-attempt connect timeout and the delay
	// between attempts. Keeping one knob for both keeps the parameter
	// surface minimal. Default 5s.
	MaxTimeout time.Duration

	// Password enables password authentication when set. Key and agent
	// auth are still tried.
	Password string
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 1
	}
	if o.MaxTimeout <= 0 {
		o.MaxTimeout = 5 * time.Second
	}
	return o
}

// ProgressHandler receives human-readable progress lines during connection
// establishment (retry notices and the final failure diagnostic). If nil,
// lines go to stderr via log.Printf. An operator watching a long cluster
// operation uses these to tell "still trying" from "gave up".
var ProgressHandler func(message string)

func progressf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if ProgressHandler != nil {
		ProgressHandler(msg)
	} else {
		log.Print(msg)
	}
}

// StrictHostKeyChecking controls host key verification behavior.
// When false (default), unknown host keys are accepted, matching the
// auto-add behavior cluster tooling expects on freshly provisioned hosts.
// When true, host keys are verified against ~/.ssh/known_hosts.
var StrictHostKeyChecking = false

// Connect establishes an authenticated SSH connection to the given host,
// honoring the user's ~/.ssh/config entry for the alias and retrying
// transient failures up to opts.MaxAttempts with a fixed delay of
// opts.MaxTimeout between attempts.
//
// On exhaustion it returns *MaxAttemptsError naming the host and the number
// of attempts made. On success the returned Connection owns the underlying
// client; callers must Close it on every exit path.
func Connect(host string, opts Options) (*Connection, error) {
	opts = opts.withDefaults()

	params := ResolveHostParams(host)
	params.Timeout = opts.MaxTimeout
	if opts.Password != "" {
		params.Password = opts.Password
	}

	config, err := buildClientConfig(params)
	if err != nil {
		return nil, err
	}

	var client *ssh.Client
	attempts := 0
	for attempts < opts.MaxAttempts {
		attempts++
		client, err = dialHost(params, config)
		if err == nil {
			break
		}
		if attempts < opts.MaxAttempts {
			progressf("SSH to host %s failed, retrying...", host)
			time.Sleep(opts.MaxTimeout)
		} else {
			progressf("SSH to host %s failed: %v", host, err)
		}
	}

	if client == nil {
		return nil, &MaxAttemptsError{Host: host, Attempts: attempts}
	}

	conn := &Connection{
		client:       client,
		host:         host,
		forwardAgent: opts.ForwardAgent,
		sudoable:     opts.Sudoable,
	}
	return conn, nil
}

// dialHost performs one connection attempt: TCP (or ProxyCommand) transport
// plus SSH handshake.
func dialHost(params HostParams, config *ssh.ClientConfig) (*ssh.Client, error) {
	address := params.address()

	var conn net.Conn
	var err error
	if params.ProxyCommand != "" {
		conn, err = dialProxyCommand(params)
	} else {
		conn, err = net.DialTimeout("tcp", address, params.Timeout)
	}
	if err != nil {
		return nil, err
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, address, config)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return ssh.NewClient(sshConn, chans, reqs), nil
}

// buildClientConfig creates an SSH client config with authentication
// methods resolved from the host params: password (if supplied), the local
// agent, the configured identity file, then default key files.
func buildClientConfig(params HostParams) (*ssh.ClientConfig, error) {
	var authMethods []ssh.AuthMethod

	if params.Password != "" {
		authMethods = append(authMethods, ssh.Password(params.Password))
	}

	if agentAuth := sshAgentAuth(); agentAuth != nil {
		authMethods = append(authMethods, agentAuth)
	}

	tryKeyFile := func(keyPath string) {
		keyAuth, err := keyFileAuth(keyPath)
		if err != nil {
			// Missing or unreadable keys are silently skipped
			return
		}
		authMethods = append(authMethods, keyAuth)
	}

	if params.IdentityFile != "" {
		tryKeyFile(params.IdentityFile)
	}

	defaultKeys := []string{
		filepath.Join(homeDir(), ".ssh", "id_ed25519"),
		filepath.Join(homeDir(), ".ssh", "id_rsa"),
		filepath.Join(homeDir(), ".ssh", "id_ecdsa"),
	}
	for _, keyPath := range defaultKeys {
		if keyPath == params.IdentityFile {
			continue // Already tried this one
		}
		tryKeyFile(keyPath)
	}

	if len(authMethods) == 0 {
		return nil, errors.New(errors.ErrSSH,
			fmt.Sprintf("No SSH auth methods available for '%s'", params.Hostname),
			"Check your keys are loaded: ssh-add -l")
	}

	var hostKeyCallback ssh.HostKeyCallback
	if StrictHostKeyChecking {
		var err error
		hostKeyCallback, err = knownHostsCallback(filepath.Join(homeDir(), ".ssh", "known_hosts"))
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrSSH,
				"Failed to load known_hosts",
				"Check ~/.ssh/known_hosts is readable, or disable strict host key checking")
		}
	} else {
		hostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // Auto-add policy is the documented default
	}

	user := params.User
	if user == "" {
		user = currentUser()
	}

	return &ssh.ClientConfig{
		User:            user,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCallback,
		Timeout:         params.Timeout,
	}, nil
}

// agentConn holds the reusable SSH agent connection.
var (
	agentConn     net.Conn
	agentClient   agent.ExtendedAgent
	agentConnOnce sync.Once
)

// sshAgent returns the shared agent client, connecting on first use.
// Returns nil when no agent is available.
func sshAgent() agent.ExtendedAgent {
	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return nil
	}

	agentConnOnce.Do(func() {
		conn, err := net.Dial("unix", socket)
		if err != nil {
			return
		}
		agentConn = conn
		agentClient = agent.NewClient(conn)
	})

	return agentClient
}

// sshAgentAuth returns an auth method using the SSH agent if available.
// Returns nil if the agent has no keys loaded.
func sshAgentAuth() ssh.AuthMethod {
	client := sshAgent()
	if client == nil {
		return nil
	}

	// Only return agent auth if the agent actually has keys.
	// An empty agent causes auth failures when placed before other methods.
	signers, err := client.Signers()
	if err != nil || len(signers) == 0 {
		return nil
	}

	return ssh.PublicKeysCallback(client.Signers)
}

// CloseAgent closes the SSH agent connection if one is open.
// This should be called when the application is shutting down.
func CloseAgent() {
	if agentConn != nil {
		agentConn.Close()
	}
}

// keyFileAuth returns an auth method using a private key file.
func keyFileAuth(keyPath string) (ssh.AuthMethod, error) {
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, err
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, err
	}

	return ssh.PublicKeys(signer), nil
}

// knownHostsCallback builds a host key callback from the given known_hosts
// file, creating an empty file if none exists.
func knownHostsCallback(knownHostsPath string) (ssh.HostKeyCallback, error) {
	if _, err := os.Stat(knownHostsPath); os.IsNotExist(err) {
		dir := filepath.Dir(knownHostsPath)
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create .ssh directory: %w", err)
		}
		if err := os.WriteFile(knownHostsPath, []byte{}, 0600); err != nil {
			return nil, fmt.Errorf("failed to create known_hosts: %w", err)
		}
	}

	callback, err := knownhosts.New(knownHostsPath)
	if err != nil {
		return nil, err
	}

	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		err := callback(hostname, remote, key)
		var keyErr *knownhosts.KeyError
		if stderrors.As(err, &keyErr) && len(keyErr.Want) > 0 {
			return fmt.Errorf("host key mismatch for %s: server sent %s key (update with: ssh-keygen -R %s)",
				hostname, key.Type(), hostname)
		}
		return err
	}, nil
}

// expandProxyTokens replaces the ssh_config %h, %p, and %r tokens in a
// ProxyCommand with the resolved hostname, port, and user. The fallbacks
// match what the connection itself uses: port 22 and the local user.
func expandProxyTokens(command string, params HostParams) string {
	port := params.Port
	if port == 0 {
		port = 22
	}
	user := params.User
	if user == "" {
		user = currentUser()
	}
	return strings.NewReplacer(
		"%h", params.Hostname,
		"%p", strconv.Itoa(port),
		"%r", user,
	).Replace(command)
}
