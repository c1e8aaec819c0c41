package toolchain

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/AndreyAkinshin/conformrun/internal/suite"
)

// DefaultGrace is added to the test timeout to form the hard deadline
// after which the launcher process is killed.
const DefaultGrace = 30 * time.Second

// DefaultLauncherArgs are the emrun flags placed before the artifact.
// {timeout} and {browser} are substituted per run; an argument that
// references an empty {browser} is dropped.
var DefaultLauncherArgs = []string{
	"--kill_start",
	"--kill_exit",
	"--timeout={timeout}",
	"--silence_timeout={timeout}",
	"--browser={browser}",
}

// LauncherOptions configures the Launcher.
type LauncherOptions struct {
	Program string   // launcher executable, "emrun" if empty
	Args    []string // DefaultLauncherArgs if nil
	Browser string
	Env     map[string]string
	Grace   time.Duration // DefaultGrace if zero
	Filter  *Filter
}

// Launcher runs compiled artifacts in a browser and captures their output.
type Launcher struct {
	opts LauncherOptions
}

// NewLauncher creates a Launcher with defaults applied.
func NewLauncher(opts LauncherOptions) *Launcher {
	if opts.Program == "" {
		opts.Program = "emrun"
	}
	if opts.Args == nil {
		opts.Args = DefaultLauncherArgs
	}
	if opts.Grace == 0 {
		opts.Grace = DefaultGrace
	}
	return &Launcher{opts: opts}
}

// Command returns the launcher command line for artifact.
func (l *Launcher) Command(artifact string, timeout time.Duration) []string {
	secs := strconv.Itoa(int(timeout.Round(time.Second) / time.Second))
	r := strings.NewReplacer("{timeout}", secs, "{browser}", l.opts.Browser)

	argv := []string{l.opts.Program}
	for _, arg := range l.opts.Args {
		if l.opts.Browser == "" && strings.Contains(arg, "{browser}") {
			continue
		}
		argv = append(argv, r.Replace(arg))
	}
	return append(argv, filepath.Base(artifact))
}

// Execute runs artifact. The process is killed if it outlives
// timeout plus the grace period, in which case the exit code is absent.
func (l *Launcher) Execute(ctx context.Context, artifact string, timeout time.Duration) suite.Capture {
	deadline := time.Duration(0)
	if timeout > 0 {
		deadline = timeout + l.opts.Grace
	}
	res := run(ctx, filepath.Dir(artifact), l.opts.Env, deadline, l.Command(artifact, timeout))

	stderr := l.opts.Filter.Clean(res.stderr)
	if res.timedOut {
		stderr = strings.TrimSpace(stderr + fmt.Sprintf("\n%s: killed after %s", l.opts.Program, deadline))
	} else if _, ok := res.exit.Code(); !ok && res.err != nil {
		stderr = strings.TrimSpace(stderr + fmt.Sprintf("\n%s: %v", l.opts.Program, res.err))
	}

	return suite.Capture{
		Stdout: l.opts.Filter.Clean(res.stdout),
		Stderr: stderr,
		Exit:   res.exit,
	}
}

var _ suite.Executor = (*Launcher)(nil)
