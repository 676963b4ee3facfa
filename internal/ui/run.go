package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rileyhilliard/drover/internal/util"
)

// HostResult records the outcome of a command run against one host.
type HostResult struct {
	Host    string
	Err     error
	Elapsed time.Duration
}

// RunDisplay renders per-host progress for a multi-host command run.
// Output is line-oriented so it stays readable when piped or logged.
//
// Example output:
//
//	◐ broker-1 running...
//	✓ broker-1 (0.3s)
//	✗ broker-2: command execution error: service kafka restart (exit status 1)
type RunDisplay struct {
	mu      sync.Mutex
	w       io.Writer
	quiet   bool
	results []HostResult
}

// NewRunDisplay creates a run display writing to w.
func NewRunDisplay(w io.Writer) *RunDisplay {
	return &RunDisplay{w: w}
}

// SetQuiet suppresses per-host progress lines. The summary still prints.
func (rd *RunDisplay) SetQuiet(quiet bool) {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	rd.quiet = quiet
}

// HostStart announces that work on a host has begun.
func (rd *RunDisplay) HostStart(host string) {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	if rd.quiet {
		return
	}
	fmt.Fprintf(rd.w, "%s %s running...\n", Info(SymbolProgress), Host(host))
}

// HostDone records and displays the outcome for a host.
func (rd *RunDisplay) HostDone(host string, elapsed time.Duration, err error) {
	rd.mu.Lock()
	defer rd.mu.Unlock()

	rd.results = append(rd.results, HostResult{Host: host, Err: err, Elapsed: elapsed})
	if rd.quiet {
		return
	}
	if err != nil {
		fmt.Fprintf(rd.w, "%s %s: %v\n", Error(SymbolFail), Host(host), err)
		return
	}
	fmt.Fprintf(rd.w, "%s %s %s\n", Success(SymbolSuccess), Host(host), Muted(formatElapsed(elapsed)))
}

// Failed returns the number of hosts that ended in error.
func (rd *RunDisplay) Failed() int {
	rd.mu.Lock()
	defer rd.mu.Unlock()

	var n int
	for _, r := range rd.results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Summary prints a one-line rollup of the run.
func (rd *RunDisplay) Summary(elapsed time.Duration) {
	rd.mu.Lock()
	defer rd.mu.Unlock()

	total := len(rd.results)
	var failed int
	for _, r := range rd.results {
		if r.Err != nil {
			failed++
		}
	}

	line := fmt.Sprintf("%d/%d %s succeeded in %s", total-failed, total,
		util.Pluralize(total, "host", "hosts"), formatElapsed(elapsed))
	if failed > 0 {
		fmt.Fprintf(rd.w, "%s %s\n", Error(SymbolFail), line)
		return
	}
	fmt.Fprintf(rd.w, "%s %s\n", Success(SymbolSuccess), line)
}

// formatElapsed renders a duration as seconds with one decimal, the
// granularity that matters for SSH round trips.
func formatElapsed(d time.Duration) string {
	return fmt.Sprintf("(%.1fs)", d.Seconds())
}
