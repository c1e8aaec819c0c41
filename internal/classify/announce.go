package classify

import (
	"fmt"
	"io"
	"strings"
)

// Announce writes the console lines for one classified test: the command
// that was invoked, then the skip reason, PASS, or a FAILED:/UNKNOWN:
// header followed by the captured output, then a blank separator line.
// A skip without a reason line and an empty stderr still print as empty
// lines, so every test block has the same shape.
func Announce(w io.Writer, r ExecutionResult, o Outcome) {
	if len(r.Command) > 0 {
		fmt.Fprintln(w, strings.Join(r.Command, " "))
	}

	switch o.Kind {
	case Skipped:
		fmt.Fprintln(w, o.Reason)
	case Passed:
		fmt.Fprintln(w, "PASS")
	case Failed:
		fmt.Fprintln(w, "FAILED:")
		writeDiagnostics(w, o)
	case Unknown:
		fmt.Fprintln(w, "UNKNOWN:")
		writeDiagnostics(w, o)
	}
	fmt.Fprintln(w)
}

func writeDiagnostics(w io.Writer, o Outcome) {
	if o.Stdout != "" {
		fmt.Fprintln(w, o.Stdout)
	}
	fmt.Fprintln(w, o.Stderr)
}
