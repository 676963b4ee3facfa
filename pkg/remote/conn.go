package remote

import (
	"bytes"
	stderrors "errors"
	"io"
	"sync"

	"github.com/rileyhilliard/drover/internal/errors"
	"github.com/rileyhilliard/drover/internal/logger"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

var connLog = logger.NewEnvLogger("[remote]")

// Connection wraps one established SSH client and the capabilities chosen
// at connect time. A Connection is created only by a successful Connect and
// is not safe for concurrent multi-writer use; each instance belongs to one
// logical flow at a time.
type Connection struct {
	client       *ssh.Client
	host         string
	forwardAgent bool
	sudoable     bool
	closed       bool

	fwdOnce sync.Once
	fwdErr  error
}

// Streams holds the three handles bound to a command's channel.
type Streams struct {
	Stdin  io.WriteCloser
	Stdout io.Reader
	Stderr io.Reader

	session *ssh.Session
}

// Close releases the command's session channel. Safe to call when the
// command already completed.
func (s *Streams) Close() error {
	if s.session == nil {
		return nil
	}
	return s.session.Close()
}

// Host returns the alias the connection was opened with.
func (c *Connection) Host() string {
	return c.host
}

// Close releases the underlying client and every session multiplexed over
// it. Callers must ensure this runs on every exit path.
func (c *Connection) Close() error {
	if c.client == nil || c.closed {
		return nil
	}
	c.closed = true
	return c.client.Close()
}

// established reports whether commands may be issued.
func (c *Connection) established() bool {
	return c.client != nil && !c.closed
}

// Exec runs a command over a new session channel on the established
// connection. With checkStatus set it blocks until the remote process
// exits and returns *CommandError on a non-zero status; the returned
// streams then read from completed buffers. Without checkStatus it does
// not wait and the streams read live from the channel.
//
// Calling Exec on a Connection that was never established or has been
// closed fails immediately with ErrNotConnected.
func (c *Connection) Exec(command string, checkStatus bool) (*Streams, error) {
	if !c.established() {
		return nil, ErrNotConnected
	}

	session, err := c.client.NewSession()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			"Failed to create SSH session",
			"Connection may have been closed. Try reconnecting.")
	}

	if c.forwardAgent {
		c.requestAgentForwarding(session)
	}

	if c.sudoable {
		// Some sudo configurations refuse to prompt without a tty
		modes := ssh.TerminalModes{
			ssh.ECHO:          0,
			ssh.TTY_OP_ISPEED: 14400,
			ssh.TTY_OP_OSPEED: 14400,
		}
		if err := session.RequestPty("xterm", 80, 40, modes); err != nil {
			session.Close()
			return nil, errors.WrapWithCode(err, errors.ErrSSH,
				"Failed to allocate PTY",
				"The remote host may not support pseudo-terminals.")
		}
	}

	if checkStatus {
		return c.runChecked(session, command)
	}
	return c.startUnchecked(session, command)
}

// Sudo runs a command with privilege escalation. It delegates to Exec with
// the escalation prefix applied; the remote command string is byte-identical
// to Exec("sudo "+command).
func (c *Connection) Sudo(command string, checkStatus bool) (*Streams, error) {
	return c.Exec("sudo "+command, checkStatus)
}

// runChecked executes the command to completion and enforces a zero exit
// status. The session is released before returning; stdout and stderr are
// served from capture buffers.
func (c *Connection) runChecked(session *ssh.Session, command string) (*Streams, error) {
	defer session.Close()

	stdin, err := session.StdinPipe()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			"Failed to open stdin for command",
			"Connection may have been closed. Try reconnecting.")
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	session.Stdout = &stdoutBuf
	session.Stderr = &stderrBuf

	if err := session.Run(command); err != nil {
		var exitErr *ssh.ExitError
		if stderrors.As(err, &exitErr) {
			// Output already captured; hand it back so callers can
			// report what the failing command printed.
			streams := &Streams{Stdin: stdin, Stdout: &stdoutBuf, Stderr: &stderrBuf}
			return streams, &CommandError{Command: command, ExitStatus: exitErr.ExitStatus()}
		}
		return nil, errors.WrapWithCode(err, errors.ErrExec,
			"Failed to execute command: "+command,
			"Check if the command exists on the remote host.")
	}

	return &Streams{Stdin: stdin, Stdout: &stdoutBuf, Stderr: &stderrBuf}, nil
}

// startUnchecked submits the command without waiting for completion or
// inspecting its exit status. The channel closes when the remote side
// exits, which surfaces as EOF on the returned readers.
func (c *Connection) startUnchecked(session *ssh.Session, command string) (*Streams, error) {
	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			"Failed to open stdin for command",
			"Connection may have been closed. Try reconnecting.")
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			"Failed to open stdout for command",
			"Connection may have been closed. Try reconnecting.")
	}
	stderr, err := session.StderrPipe()
	if err != nil {
		session.Close()
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			"Failed to open stderr for command",
			"Connection may have been closed. Try reconnecting.")
	}

	if err := session.Start(command); err != nil {
		session.Close()
		return nil, errors.WrapWithCode(err, errors.ErrExec,
			"Failed to execute command: "+command,
			"Check if the command exists on the remote host.")
	}

	return &Streams{Stdin: stdin, Stdout: stdout, Stderr: stderr, session: session}, nil
}

// requestAgentForwarding enables authentication-agent forwarding on the
// session so the remote side can use the caller's local credentials for
// further hops. Forwarding is best-effort: a host without an agent still
// runs commands.
func (c *Connection) requestAgentForwarding(session *ssh.Session) {
	c.fwdOnce.Do(func() {
		client := sshAgent()
		if client == nil {
			c.fwdErr = stderrors.New("no SSH agent available (SSH_AUTH_SOCK unset?)")
			return
		}
		c.fwdErr = agent.ForwardToAgent(c.client, client)
	})
	if c.fwdErr != nil {
		connLog.Debug("agent forwarding unavailable on %s: %v", c.host, c.fwdErr)
		return
	}

	if err := agent.RequestAgentForwarding(session); err != nil {
		connLog.Debug("agent forwarding request failed on %s: %v", c.host, err)
	}
}
