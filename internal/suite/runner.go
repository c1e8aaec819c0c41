package suite

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/AndreyAkinshin/conformrun/internal/classify"
)

// Artifact is the output of building one test source.
type Artifact struct {
	Path    string
	Command []string // build command line, shown in the transcript
}

// Capture is the captured output of executing one artifact.
type Capture struct {
	Stdout string
	Stderr string
	Exit   classify.ExitCode
}

// Builder compiles one test source into a runnable artifact.
//
// A build error is not fatal: the returned Artifact must still name the
// path the Executor would run, so a missing artifact shows up as a failed
// execution.
type Builder interface {
	Build(ctx context.Context, source string) (Artifact, error)
}

// Executor runs one artifact and captures its output. Implementations
// must return within timeout and report NotRun when the process did not
// complete.
type Executor interface {
	Execute(ctx context.Context, artifact string, timeout time.Duration) Capture
}

// Options configures a Runner.
type Options struct {
	// Timeout bounds each test execution; it is passed to the Executor.
	Timeout time.Duration
	// Live, if set, receives the transcript as it is produced.
	Live io.Writer
}

// Runner builds, executes and classifies the tests of a suite, one at a time.
type Runner struct {
	builder  Builder
	executor Executor
	opts     Options
}

// NewRunner creates a Runner using the given collaborators.
func NewRunner(b Builder, e Executor, opts Options) *Runner {
	return &Runner{builder: b, executor: e, opts: opts}
}

// RunSuite runs every test of s in order and returns the finished report.
// When ctx is cancelled it stops before the next test, drops the test that
// was interrupted, and returns a Partial report of the tests that finished.
func (r *Runner) RunSuite(ctx context.Context, s Suite) *Report {
	start := time.Now()
	report := &Report{Suite: s.Name, Dir: s.Dir}

	var transcript bytes.Buffer
	var w io.Writer = &transcript
	if r.opts.Live != nil {
		w = io.MultiWriter(&transcript, r.opts.Live)
	}

	writeSuiteHeader(w, s)
	for _, test := range s.Tests {
		if ctx.Err() != nil {
			report.Partial = true
			break
		}
		result := r.runTest(ctx, s, test)
		if ctx.Err() != nil {
			report.Partial = true
			break
		}
		outcome := classify.ClassifyResult(result)
		classify.Announce(w, result, outcome)
		report.add(test, outcome)
	}
	writeSuiteFooter(w, report)

	report.Transcript = transcript.String()
	report.Duration = time.Since(start)
	return report
}

func (r *Runner) runTest(ctx context.Context, s Suite, test string) classify.ExecutionResult {
	source := filepath.Join(s.Dir, test)
	artifact, buildErr := r.builder.Build(ctx, source)
	capture := r.executor.Execute(ctx, artifact.Path, r.opts.Timeout)

	// Build errors only reach the transcript through stderr, which the
	// classifier ignores; the execution result alone decides the outcome.
	stderr := capture.Stderr
	if buildErr != nil {
		stderr = strings.TrimSpace(fmt.Sprintf("build: %v\n%s", buildErr, stderr))
	}
	return classify.ExecutionResult{
		TestID:  test,
		Command: artifact.Command,
		Stdout:  capture.Stdout,
		Stderr:  stderr,
		Exit:    capture.Exit,
	}
}
