package remote

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialTestServer connects to the given test server through the alias
// machinery and fails the test on error.
func dialTestServer(t *testing.T, server *testServer, opts Options) *Connection {
	t.Helper()

	useTestConfig(t, "h1", server)
	conn, err := Connect("h1", opts)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestExecCheckedSuccess(t *testing.T) {
	server := newTestServer(t)
	server.handler = func(cmd string) execResult {
		return execResult{stdout: "broker is up\n"}
	}
	conn := dialTestServer(t, server, testOptions())

	streams, err := conn.Exec("service broker status", true)
	require.NoError(t, err)

	out, err := io.ReadAll(streams.Stdout)
	require.NoError(t, err)
	assert.Equal(t, "broker is up\n", string(out))

	assert.Equal(t, []string{"service broker status"}, server.execCommands())
}

func TestExecCheckedNonZeroExit(t *testing.T) {
	server := newTestServer(t)
	server.handler = func(cmd string) execResult {
		return execResult{stderr: "no such unit\n", exit: 3}
	}
	conn := dialTestServer(t, server, testOptions())

	streams, err := conn.Exec("service broker status", true)
	require.Error(t, err)

	// Captured output survives the failure.
	require.NotNil(t, streams)
	errOut, readErr := io.ReadAll(streams.Stderr)
	require.NoError(t, readErr)
	assert.Equal(t, "no such unit\n", string(errOut))

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "service broker status", cmdErr.Command)
	assert.Equal(t, 3, cmdErr.ExitStatus)
	assert.Contains(t, err.Error(), "service broker status")
}

func TestExecUncheckedIgnoresExitStatus(t *testing.T) {
	server := newTestServer(t)
	server.handler = func(cmd string) execResult {
		return execResult{stdout: "partial output\n", exit: 7}
	}
	conn := dialTestServer(t, server, testOptions())

	streams, err := conn.Exec("tail /var/log/broker.log", false)
	require.NoError(t, err)
	defer streams.Close()

	out, err := io.ReadAll(streams.Stdout)
	require.NoError(t, err)
	assert.Equal(t, "partial output\n", string(out))
}

func TestSudoMatchesExecWithPrefix(t *testing.T) {
	server := newTestServer(t)
	conn := dialTestServer(t, server, testOptions())

	_, err := conn.Sudo("service broker restart", true)
	require.NoError(t, err)

	_, err = conn.Exec("sudo service broker restart", true)
	require.NoError(t, err)

	cmds := server.execCommands()
	require.Len(t, cmds, 2)
	assert.Equal(t, cmds[0], cmds[1], "sudo must produce a byte-identical command string")
	assert.Equal(t, "sudo service broker restart", cmds[0])
}

func TestSudoableAllocatesPty(t *testing.T) {
	server := newTestServer(t)
	opts := testOptions()
	opts.Sudoable = true
	conn := dialTestServer(t, server, opts)

	_, err := conn.Sudo("service broker stop", true)
	require.NoError(t, err)

	assert.Equal(t, 1, server.ptyRequests())
}

func TestPlainExecSkipsPty(t *testing.T) {
	server := newTestServer(t)
	conn := dialTestServer(t, server, testOptions())

	_, err := conn.Exec("uptime", true)
	require.NoError(t, err)

	assert.Equal(t, 0, server.ptyRequests())
}

func TestForwardAgentWithoutLocalAgent(t *testing.T) {
	// Forwarding is best-effort: no local agent must not break execution.
	t.Setenv("SSH_AUTH_SOCK", "")

	server := newTestServer(t)
	opts := testOptions()
	opts.ForwardAgent = true
	conn := dialTestServer(t, server, opts)

	_, err := conn.Exec("uptime", true)
	require.NoError(t, err)
}

func TestExecOnClosedConnection(t *testing.T) {
	server := newTestServer(t)
	conn := dialTestServer(t, server, testOptions())

	require.NoError(t, conn.Close())

	_, err := conn.Exec("uptime", true)
	assert.ErrorIs(t, err, ErrNotConnected)

	_, err = conn.Sudo("uptime", true)
	assert.ErrorIs(t, err, ErrNotConnected)

	err = conn.PutFile("/tmp/a", "/tmp/b")
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestExecOnUnestablishedConnection(t *testing.T) {
	var conn Connection

	_, err := conn.Exec("uptime", true)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestCloseIsIdempotent(t *testing.T) {
	server := newTestServer(t)
	conn := dialTestServer(t, server, testOptions())

	require.NoError(t, conn.Close())
	assert.NoError(t, conn.Close())
}

func TestExecStdinReachesRemote(t *testing.T) {
	server := newTestServer(t)
	conn := dialTestServer(t, server, testOptions())

	streams, err := conn.Exec("cat > /tmp/upload", false)
	require.NoError(t, err)
	defer streams.Close()

	_, err = io.Copy(streams.Stdin, strings.NewReader("payload\n"))
	require.NoError(t, err)
	require.NoError(t, streams.Stdin.Close())

	// Remote closes the channel once stdin is drained
	_, err = io.ReadAll(streams.Stdout)
	require.NoError(t, err)

	assert.Equal(t, "payload\n", string(server.stdinData()))
}
