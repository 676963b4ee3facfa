package remote

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// StreamKind identifies which output channel a report covers.
type StreamKind int

const (
	// Stdout reports go to the reporter's standard output writer.
	Stdout StreamKind = iota
	// Stderr reports go to the reporter's standard error writer.
	Stderr
)

func (k StreamKind) String() string {
	if k == Stderr {
		return "STDERR"
	}
	return "STDOUT"
}

// Reporter prints per-host output blocks. Output-kind lines go to Out,
// error-kind lines to Err. The zero value is not usable; call NewReporter.
type Reporter struct {
	Out io.Writer
	Err io.Writer
}

// NewReporter returns a Reporter bound to the process's stdout and stderr.
func NewReporter() *Reporter {
	return &Reporter{Out: os.Stdout, Err: os.Stderr}
}

// Report drains the remaining lines from the stream. When at least one
// line is present it prints a header naming the host and kind, then each
// line with trailing whitespace stripped. An empty stream prints nothing;
// absence of output is not itself reported.
func (r *Reporter) Report(host string, stream io.Reader, kind StreamKind) {
	if stream == nil {
		return
	}

	// Lines can be arbitrarily long, so read with an unbounded reader
	// rather than a token scanner.
	var lines []string
	reader := bufio.NewReader(stream)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			lines = append(lines, line)
		}
		if err != nil {
			if err != io.EOF {
				progressf("reading %s from %s failed: %v", kind, host, err)
			}
			break
		}
	}

	if len(lines) == 0 {
		return
	}

	w := r.Out
	if kind == Stderr {
		w = r.Err
	}

	fmt.Fprintf(w, "%s from %s:\n", kind, host)
	for _, line := range lines {
		fmt.Fprintln(w, strings.TrimRight(line, " \t\r\n"))
	}
}

// ReportStdout prints a host's captured standard output to the process's
// standard output channel.
func ReportStdout(host string, stream io.Reader) {
	NewReporter().Report(host, stream, Stdout)
}

// ReportStderr prints a host's captured standard error to the process's
// standard error channel.
func ReportStderr(host string, stream io.Reader) {
	NewReporter().Report(host, stream, Stderr)
}
