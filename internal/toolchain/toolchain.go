// Package toolchain implements the build and execute collaborators that
// compile a C test source with emcc and run the result in a browser via
// emrun.
package toolchain

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/AndreyAkinshin/conformrun/internal/classify"
)

// DefaultNoisePattern matches timestamped log lines that browsers and
// emrun interleave with test output.
const DefaultNoisePattern = `^\d{4}-`

// waitDelay bounds how long Wait blocks for output pipes after a kill.
const waitDelay = 2 * time.Second

// result is the raw outcome of one subprocess invocation.
type result struct {
	stdout   string
	stderr   string
	exit     classify.ExitCode
	err      error
	timedOut bool
}

// run executes argv in dir with a hard deadline and captures its output.
// The exit code is absent when the process could not be started or was
// killed, including by the deadline.
func run(ctx context.Context, dir string, env map[string]string, deadline time.Duration, argv []string) result {
	if deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := result{
		stdout:   stdout.String(),
		stderr:   stderr.String(),
		err:      err,
		timedOut: errors.Is(ctx.Err(), context.DeadlineExceeded),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		res.exit = classify.Exited(0)
	case res.timedOut || ctx.Err() != nil:
		res.exit = classify.NotRun()
	case errors.As(err, &exitErr) && exitErr.ExitCode() >= 0:
		res.exit = classify.Exited(exitErr.ExitCode())
	default:
		res.exit = classify.NotRun()
	}
	return res
}

// Filter removes noise lines from captured output and trims the result.
type Filter struct {
	noise *regexp.Regexp
}

// NewFilter compiles pattern into a Filter. An empty pattern keeps every line.
func NewFilter(pattern string) (*Filter, error) {
	if pattern == "" {
		return &Filter{}, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &Filter{noise: re}, nil
}

// Clean drops matching lines and trims surrounding whitespace.
func (f *Filter) Clean(text string) string {
	if f == nil || f.noise == nil {
		return strings.TrimSpace(text)
	}
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if f.noise.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// Available reports whether program can be found on PATH.
func Available(program string) bool {
	_, err := exec.LookPath(program)
	return err == nil
}
