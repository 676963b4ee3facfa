package remote

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

const (
	testUser     = "tester"
	testPassword = "hunter2"
)

// execResult is what the test server returns for one exec request.
type execResult struct {
	stdout string
	stderr string
	exit   int
}

// testServer is an in-process SSH server for exercising the connection
// layer without a real network. It records every exec command string and
// session-level request it sees, and can refuse the first N TCP
// connections to simulate a flaky host.
type testServer struct {
	t        *testing.T
	addr     string
	listener net.Listener

	mu       sync.Mutex
	accepts  int
	refuse   int // close this many connections before serving SSH
	execs    []string
	stdin    []byte
	ptyReqs  int
	handler  func(cmd string) execResult
	done     chan struct{}
	conns    []net.Conn
	sftpRoot bool // serve the sftp subsystem
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	_, hostKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate host key: %v", err)
	}
	signer, err := ssh.NewSignerFromKey(hostKey)
	if err != nil {
		t.Fatalf("host key signer: %v", err)
	}

	config := &ssh.ServerConfig{
		PasswordCallback: func(conn ssh.ConnMetadata, password []byte) (*ssh.Permissions, error) {
			if conn.User() == testUser && string(password) == testPassword {
				return &ssh.Permissions{}, nil
			}
			return nil, fmt.Errorf("wrong credentials for %s", conn.User())
		},
	}
	config.AddHostKey(signer)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	s := &testServer{
		t:        t,
		addr:     listener.Addr().String(),
		listener: listener,
		done:     make(chan struct{}),
		handler: func(cmd string) execResult {
			return execResult{}
		},
	}

	go func() {
		defer close(s.done)
		for {
			netConn, err := listener.Accept()
			if err != nil {
				return
			}
			s.mu.Lock()
			s.accepts++
			refused := s.accepts <= s.refuse
			s.conns = append(s.conns, netConn)
			s.mu.Unlock()

			if refused {
				netConn.Close()
				continue
			}
			go s.handleConn(netConn, config)
		}
	}()

	t.Cleanup(func() {
		listener.Close()
		s.mu.Lock()
		for _, c := range s.conns {
			c.Close()
		}
		s.mu.Unlock()
		<-s.done
	})

	return s
}

func (s *testServer) acceptCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accepts
}

func (s *testServer) execCommands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.execs...)
}

func (s *testServer) stdinData() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.stdin...)
}

func (s *testServer) ptyRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ptyReqs
}

func (s *testServer) handleConn(netConn net.Conn, config *ssh.ServerConfig) {
	sshConn, chans, reqs, err := ssh.NewServerConn(netConn, config)
	if err != nil {
		netConn.Close()
		return
	}
	defer sshConn.Close()

	go ssh.DiscardRequests(reqs)

	for newChan := range chans {
		if newChan.ChannelType() != "session" {
			newChan.Reject(ssh.UnknownChannelType, "unknown channel type")
			continue
		}
		ch, requests, err := newChan.Accept()
		if err != nil {
			continue
		}
		go s.handleSession(ch, requests)
	}
}

func (s *testServer) handleSession(ch ssh.Channel, requests <-chan *ssh.Request) {
	defer ch.Close()

	for req := range requests {
		switch req.Type {
		case "pty-req":
			s.mu.Lock()
			s.ptyReqs++
			s.mu.Unlock()
			if req.WantReply {
				req.Reply(true, nil)
			}

		case "subsystem":
			var payload struct{ Name string }
			_ = ssh.Unmarshal(req.Payload, &payload)
			if payload.Name != "sftp" || !s.sftpRoot {
				if req.WantReply {
					req.Reply(false, nil)
				}
				continue
			}
			if req.WantReply {
				req.Reply(true, nil)
			}
			server, err := sftp.NewServer(ch)
			if err != nil {
				return
			}
			server.Serve()
			return

		case "exec":
			var payload struct{ Command string }
			_ = ssh.Unmarshal(req.Payload, &payload)

			s.mu.Lock()
			s.execs = append(s.execs, payload.Command)
			handler := s.handler
			s.mu.Unlock()

			if req.WantReply {
				req.Reply(true, nil)
			}

			// Commands that consume stdin read the channel until the
			// client closes its write side.
			if strings.HasPrefix(payload.Command, "cat > ") {
				data, _ := io.ReadAll(ch)
				s.mu.Lock()
				s.stdin = append(s.stdin, data...)
				s.mu.Unlock()
				status := struct{ Status uint32 }{0}
				ch.SendRequest("exit-status", false, ssh.Marshal(&status))
				return
			}

			result := handler(payload.Command)
			if result.stdout != "" {
				ch.Write([]byte(result.stdout))
			}
			if result.stderr != "" {
				ch.Stderr().Write([]byte(result.stderr))
			}

			status := struct{ Status uint32 }{uint32(result.exit)}
			ch.SendRequest("exit-status", false, ssh.Marshal(&status))
			return

		default:
			if req.WantReply {
				req.Reply(false, nil)
			}
		}
	}
}

// useTestConfig points alias resolution at a temp ssh config that maps
// the given alias to the test server, and restores the default afterwards.
func useTestConfig(t *testing.T, alias string, s *testServer) {
	t.Helper()

	host, port, err := net.SplitHostPort(s.addr)
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}

	writeTestConfig(t, "Host "+alias+"\n    HostName "+host+"\n    Port "+port+"\n    User "+testUser+"\n")
}

// writeTestConfig installs the given content as the user ssh config for
// the duration of the test.
func writeTestConfig(t *testing.T, content string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write ssh config: %v", err)
	}

	prev := userConfigPath
	userConfigPath = path
	t.Cleanup(func() { userConfigPath = prev })
}

// captureProgress collects connection progress lines for assertions.
func captureProgress(t *testing.T) *[]string {
	t.Helper()

	var lines []string
	prev := ProgressHandler
	ProgressHandler = func(msg string) { lines = append(lines, msg) }
	t.Cleanup(func() { ProgressHandler = prev })
	return &lines
}
