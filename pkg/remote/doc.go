// Package remote manages SSH connections and command execution for
// cluster-maintenance tooling.
//
// The package covers four concerns:
//
//   - Resolving per-host connection parameters from the user's
//     ~/.ssh/config (user, port, proxy command, identity file).
//   - Establishing authenticated connections with a bounded retry budget
//     and a fixed inter-attempt delay (Connect).
//   - Running commands over an established Connection, plain or with
//     privilege escalation, with optional exit-status enforcement and
//     agent forwarding (Exec, Sudo), plus file upload (PutFile).
//   - Printing captured per-host output blocks (Reporter).
//
// Everything is synchronous and blocking. Concurrency across hosts is the
// caller's job: the package is safe to use from independent goroutines as
// long as each Connection stays within one logical flow. A Connection must
// be closed on every exit path, normal or not:
//
//	conn, err := remote.Connect("broker-1", remote.Options{
//		Sudoable:    true,
//		MaxAttempts: 3,
//	})
//	if err != nil {
//		return err
//	}
//	defer conn.Close()
//
//	streams, err := conn.Sudo("service broker restart", true)
//	if err != nil {
//		return err
//	}
//	remote.ReportStdout("broker-1", streams.Stdout)
package remote
