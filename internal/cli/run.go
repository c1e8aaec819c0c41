package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/AndreyAkinshin/conformrun/internal/config"
	"github.com/AndreyAkinshin/conformrun/internal/errors"
	"github.com/AndreyAkinshin/conformrun/internal/expect"
	"github.com/AndreyAkinshin/conformrun/internal/history"
	"github.com/AndreyAkinshin/conformrun/internal/project"
	"github.com/AndreyAkinshin/conformrun/internal/suite"
	"github.com/AndreyAkinshin/conformrun/internal/toolchain"
)

// cmdRun builds, runs and classifies the selected suites.
func cmdRun(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printRunUsage()
		return 0
	}

	proj, code := loadProject(opts)
	if proj == nil {
		return code
	}
	cfg := proj.Config

	if err := proj.CheckSuitesRoot(); err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}
	sel, err := selectSuites(proj, args)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}
	if len(sel.Excluded) > 0 {
		out.Info("Excluding %d suites: %s", len(sel.Excluded), strings.Join(sel.Excluded, ", "))
	}
	if len(sel.Suites) == 0 {
		out.ErrorPrefix("no suites with tests found in %s", proj.SuitesRoot())
		return errors.ExitFailure
	}

	compiler, launcher, err := newToolchain(cfg)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}
	timeout := time.Duration(cfg.Launcher.Timeout) * time.Second

	if opts.DryRun {
		printDryRun(sel.Suites, compiler, launcher, timeout)
		return 0
	}

	for _, prog := range []string{cfg.Compiler.Program, cfg.Launcher.Program} {
		if !toolchain.Available(prog) {
			err := errors.Environmentf("%s not found in PATH", prog)
			out.ErrorPrefix("%v", err)
			out.Hint("activate the Emscripten SDK (source emsdk_env.sh) or set the program in %s/%s",
				project.ConfigDirName, project.ConfigFileName)
			return errors.GetExitCode(err)
		}
	}

	expectPath := proj.Resolve(cfg.Expectations)
	var exp *expect.Expectations
	if expectPath != "" && !opts.WriteExpect {
		exp, err = expect.Load(expectPath)
		if err != nil {
			out.ErrorPrefix("%v", err)
			return errors.ExitConfigError
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runOpts := suite.Options{Timeout: timeout}
	if out.Verbose() {
		runOpts.Live = out.Stdout()
	}
	driver := suite.NewDriver(suite.NewRunner(compiler, launcher, runOpts), out)

	started := time.Now()
	res, runErr := driver.Run(ctx, sel.Suites)
	if runErr != nil {
		out.Warning("run interrupted after %d of %d suites", len(res.Reports), len(sel.Suites))
	}

	// Reporting continues after an interrupt, so it uses a fresh context.
	finishCtx := context.Background()
	failed := false

	if path := proj.Resolve(cfg.Report.JSON); path != "" {
		if err := suite.WriteJSONFile(path, res); err != nil {
			out.ErrorPrefix("failed to write JSON report: %v", err)
			failed = true
		} else {
			out.Debug("wrote JSON report to %s", path)
		}
	}

	if path := proj.Resolve(cfg.History); path != "" {
		if err := recordHistory(finishCtx, path, proj.SuitesRoot(), started, res); err != nil {
			out.ErrorPrefix("failed to record history: %v", err)
			failed = true
		}
	}

	switch {
	case opts.WriteExpect:
		if expectPath == "" {
			out.ErrorPrefix("--write-expect needs an expectations path (--expect or %q in config)", "expectations")
			return errors.ExitConfigError
		}
		if runErr != nil {
			out.ErrorPrefix("run was interrupted; not writing expectations to %s", expectPath)
			return errors.ExitFailure
		}
		if err := writeExpectations(expectPath, res); err != nil {
			out.ErrorPrefix("%v", err)
			return errors.ExitFailure
		}
		out.Info("Wrote expectations to %s", expectPath)
	case exp != nil:
		mismatches := exp.Check(res.Reports)
		if len(mismatches) > 0 {
			out.Section("Unexpected outcomes")
			items := make([]string, len(mismatches))
			for i, m := range mismatches {
				items[i] = m.String()
			}
			out.List(items)
			out.FinalFailure("%d unexpected outcomes.", len(mismatches))
			return errors.ExitFailure
		}
		if runErr == nil && !failed {
			out.FinalSuccess("All outcomes match %s.", filepath.Base(expectPath))
		}
	case !res.Total.Clean():
		out.FinalFailure("%d failed, %d unknown of %d tests.", res.Total.Failed, res.Total.Unknown, res.Total.Total())
		return errors.ExitFailure
	}

	if runErr != nil || failed {
		return errors.ExitFailure
	}
	return errors.ExitSuccess
}

func selectSuites(proj *project.Project, selectors []string) (*project.Selection, error) {
	if len(selectors) > 0 {
		return proj.Select(selectors)
	}
	return proj.Discover()
}

// newToolchain builds the compiler and launcher described by cfg.
func newToolchain(cfg *config.Config) (*toolchain.Compiler, *toolchain.Launcher, error) {
	filter, err := toolchain.NewFilter(*cfg.Launcher.NoisePattern)
	if err != nil {
		return nil, nil, errors.Configf("launcher.noise_pattern: %v", err)
	}

	compiler := toolchain.NewCompiler(toolchain.CompilerOptions{
		Program:     cfg.Compiler.Program,
		Flags:       cfg.Compiler.Flags,
		IncludeDirs: cfg.Compiler.IncludeDirs,
		Extra:       cfg.Compiler.Extra,
		Env:         cfg.Compiler.Env,
		Timeout:     time.Duration(cfg.Compiler.Timeout) * time.Second,
	})
	launcher := toolchain.NewLauncher(toolchain.LauncherOptions{
		Program: cfg.Launcher.Program,
		Args:    cfg.Launcher.Args,
		Browser: cfg.Launcher.Browser,
		Env:     cfg.Launcher.Env,
		Grace:   time.Duration(cfg.Launcher.Grace) * time.Second,
		Filter:  filter,
	})
	return compiler, launcher, nil
}

func printDryRun(suites []suite.Suite, c *toolchain.Compiler, l *toolchain.Launcher, timeout time.Duration) {
	out.DryRunStart()
	for _, s := range suites {
		out.Println("%s", suite.Banner(s.Name))
		out.Println("cd %s", s.Dir)
		for _, test := range s.Tests {
			source := filepath.Join(s.Dir, test)
			out.Println("  %s", strings.Join(c.Command(source), " "))
			out.Println("  %s", strings.Join(l.Command(toolchain.ArtifactPath(source), timeout), " "))
		}
	}
	out.DryRunEnd()
}

func recordHistory(ctx context.Context, path, root string, started time.Time, res *suite.Result) error {
	store, err := history.Open(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	run := history.NewRun(root, started, res)
	if err := store.Record(ctx, run, res); err != nil {
		return err
	}
	changes, err := store.Changes(ctx, run)
	if err != nil {
		return err
	}
	if len(changes) > 0 {
		out.Section("Changes since previous run")
		out.List(formatChanges(changes))
	}
	return nil
}

func writeExpectations(path string, res *suite.Result) error {
	data, err := expect.Snapshot(res.Reports)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func printRunUsage() {
	out.HelpTitle("conformrun run - build, run and classify test suites")
	out.HelpSection("Usage:")
	out.HelpUsage("conformrun run [flags]                       Run every discovered suite")
	out.HelpUsage("conformrun run <suite>... [<suite>/<test>...]  Run selected suites or tests")
	out.HelpSection("Description:")
	out.Println("  Each test source is compiled, launched in a browser and classified as")
	out.Println("  passed, failed, skipped or unknown from its output and exit code.")
	out.Println("  Clean suites print a one-line summary; suites with failed or unknown")
	out.Println("  tests print their full transcript. Explicit selectors bypass --exclude.")
	printGlobalFlags(out)
	out.Println("")
}
