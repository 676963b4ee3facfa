package remote

import (
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"time"
)

// dialProxyCommand starts the resolved ProxyCommand and returns its
// stdin/stdout as a net.Conn, the same transport OpenSSH uses for
// ProxyCommand entries. The subprocess is killed when the conn closes.
func dialProxyCommand(params HostParams) (net.Conn, error) {
	command := expandProxyTokens(params.ProxyCommand, params)

	cmd := exec.Command("sh", "-c", command)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("proxy command stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("proxy command stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("proxy command %q: %w", command, err)
	}

	return &proxyConn{
		cmd:    cmd,
		stdin:  stdin,
		stdout: stdout,
		addr:   proxyAddr(command),
	}, nil
}

// proxyConn adapts a ProxyCommand subprocess to net.Conn for the SSH
// handshake. Deadlines are not supported; the per-attempt timeout is
// enforced by the caller's handshake config.
type proxyConn struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	addr   proxyAddr
}

func (c *proxyConn) Read(b []byte) (int, error)  { return c.stdout.Read(b) }
func (c *proxyConn) Write(b []byte) (int, error) { return c.stdin.Write(b) }

func (c *proxyConn) Close() error {
	c.stdin.Close()
	c.stdout.Close()
	if c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
	}
	return c.cmd.Wait()
}

func (c *proxyConn) LocalAddr() net.Addr                { return c.addr }
func (c *proxyConn) RemoteAddr() net.Addr               { return c.addr }
func (c *proxyConn) SetDeadline(t time.Time) error      { return nil }
func (c *proxyConn) SetReadDeadline(t time.Time) error  { return nil }
func (c *proxyConn) SetWriteDeadline(t time.Time) error { return nil }

type proxyAddr string

func (a proxyAddr) Network() string { return "proxy" }
func (a proxyAddr) String() string  { return string(a) }
