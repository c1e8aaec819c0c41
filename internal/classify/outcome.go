// Package classify turns the captured output of one test execution into
// exactly one of four outcomes.
package classify

import "fmt"

// Kind enumerates the mutually exclusive outcome variants.
type Kind int

const (
	Passed Kind = iota
	Failed
	Skipped
	Unknown
)

// Kinds lists every outcome kind in reporting order.
var Kinds = []Kind{Passed, Failed, Skipped, Unknown}

func (k Kind) String() string {
	switch k {
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	case Unknown:
		return "unknown"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind parses the lowercase name produced by Kind.String.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, ok := ParseKind(string(text))
	if !ok {
		return fmt.Errorf("unknown outcome %q", text)
	}
	*k = parsed
	return nil
}

// ExitCode is a process exit status that may be absent when the process
// never ran to completion (spawn failure, timeout, kill).
type ExitCode struct {
	code  int
	valid bool
}

// Exited returns the exit status of a process that terminated normally.
func Exited(code int) ExitCode {
	return ExitCode{code: code, valid: true}
}

// NotRun returns the exit status of a process that did not complete.
func NotRun() ExitCode {
	return ExitCode{}
}

// Code returns the exit code and whether one was produced.
func (e ExitCode) Code() (int, bool) {
	return e.code, e.valid
}

// Success reports whether the process ran and exited with status 0.
func (e ExitCode) Success() bool {
	return e.valid && e.code == 0
}

func (e ExitCode) String() string {
	if !e.valid {
		return "did not run"
	}
	return fmt.Sprintf("exit %d", e.code)
}

// ExecutionResult is the captured result of running one test artifact.
type ExecutionResult struct {
	TestID  string
	Command []string // command line that produced the output, for display
	Stdout  string
	Stderr  string
	Exit    ExitCode
}

// Outcome is the classification of one ExecutionResult.
type Outcome struct {
	Kind Kind

	// Reason is the skip line reported by the test; only set for Skipped
	// and only when HasReason is true.
	Reason    string
	HasReason bool

	// Stdout and Stderr are kept for Failed and Unknown so they can be shown.
	Stdout string
	Stderr string
}
