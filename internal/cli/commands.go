package cli

import (
	"os"
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/AndreyAkinshin/conformrun/internal/classify"
	"github.com/AndreyAkinshin/conformrun/internal/config"
	"github.com/AndreyAkinshin/conformrun/internal/errors"
	"github.com/AndreyAkinshin/conformrun/internal/output"
	"github.com/AndreyAkinshin/conformrun/internal/project"
	"github.com/AndreyAkinshin/conformrun/internal/suite"
)

// out is the shared output writer for CLI commands.
var out = output.New()

// title renders an outcome kind as a column label ("Passed"). A Caser
// is stateful, so each call gets its own.
func title(s string) string {
	return cases.Title(language.English).String(s)
}

// applyVerbosityToOutput configures the output writer based on verbosity settings.
func applyVerbosityToOutput(opts *GlobalOptions) {
	out.SetQuiet(opts.Quiet)
	out.SetVerbose(opts.Verbose)
}

// loadProject loads the project from --root or the working directory and
// applies environment and flag overrides. Returns nil and the exit code on
// failure.
func loadProject(opts *GlobalOptions) (*project.Project, int) {
	var (
		proj *project.Project
		err  error
	)
	if opts.Root != "" {
		proj, err = loadRoot(opts.Root)
	} else {
		wd, wdErr := os.Getwd()
		if wdErr != nil {
			out.ErrorPrefix("%v", wdErr)
			return nil, errors.ExitFailure
		}
		proj, err = project.Load(wd)
	}
	if err != nil {
		out.ErrorPrefix("%v", err)
		return nil, errors.GetExitCode(err)
	}

	for _, w := range proj.Warnings {
		out.Warning("%s", w)
	}

	if err := config.ApplyEnv(proj.Config, os.Getenv); err != nil {
		out.ErrorPrefix("%v", err)
		return nil, errors.ExitConfigError
	}
	applyFlagOverrides(proj.Config, opts)
	return proj, 0
}

// loadRoot treats dir as the project root, with defaults when it has no
// configuration file.
func loadRoot(dir string) (*project.Project, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, errors.NotFound("project root", dir)
	}
	return project.Load(dir)
}

func applyFlagOverrides(cfg *config.Config, opts *GlobalOptions) {
	cfg.Suites.Exclude = append(cfg.Suites.Exclude, opts.Exclude...)
	if opts.Timeout > 0 {
		cfg.Launcher.Timeout = opts.Timeout
	}
	if opts.Browser != "" {
		cfg.Launcher.Browser = opts.Browser
	}
	if opts.JSON != "" {
		cfg.Report.JSON = opts.JSON
	}
	if opts.History != "" {
		cfg.History = opts.History
	}
	if opts.Expect != "" {
		cfg.Expectations = opts.Expect
	}
}

// kindHeaders returns title-cased outcome labels in canonical order.
func kindHeaders() []string {
	headers := make([]string, len(classify.Kinds))
	for i, k := range classify.Kinds {
		headers[i] = title(k.String())
	}
	return headers
}

// countCells renders c as table cells in the order of kindHeaders.
func countCells(c suite.Counts) []string {
	cells := make([]string, len(classify.Kinds))
	for i, k := range classify.Kinds {
		cells[i] = strconv.Itoa(c.Get(k))
	}
	return cells
}

// cmdSuites lists the suites a run would pick up.
func cmdSuites(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printSuitesUsage()
		return 0
	}
	if len(args) > 0 {
		out.ErrorPrefix("suites: unexpected argument %q", args[0])
		return errors.ExitConfigError
	}

	proj, code := loadProject(opts)
	if proj == nil {
		return code
	}
	if err := proj.CheckSuitesRoot(); err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}
	sel, err := proj.Discover()
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}

	if len(sel.Suites) == 0 {
		out.Println("No suites found in %s", proj.SuitesRoot())
	} else {
		rows := make([][]string, len(sel.Suites))
		for i, s := range sel.Suites {
			rows[i] = []string{s.Name, strconv.Itoa(len(s.Tests)), s.Dir}
		}
		out.Table([]string{"Suite", "Tests", "Directory"}, rows)
	}
	if len(sel.Excluded) > 0 {
		out.Section("Excluded")
		out.List(sel.Excluded)
	}
	return 0
}

func printSuitesUsage() {
	out.HelpTitle("conformrun suites - list test suites")
	out.HelpSection("Usage:")
	out.HelpUsage("conformrun suites [--root=<dir>] [--exclude=<substr>]")
	out.Println("")
}

// cmdConfig handles config subcommands.
func cmdConfig(args []string, opts *GlobalOptions) int {
	if len(args) == 0 || wantsHelp(args) {
		printConfigUsage()
		if len(args) == 0 {
			return errors.ExitConfigError
		}
		return 0
	}

	switch args[0] {
	case "validate":
		return cmdConfigValidate(opts)
	default:
		out.ErrorPrefix("config: unknown subcommand %q", args[0])
		printConfigUsage()
		return errors.ExitConfigError
	}
}

// cmdConfigValidate loads and validates the configuration, printing warnings.
func cmdConfigValidate(opts *GlobalOptions) int {
	proj, code := loadProject(opts)
	if proj == nil {
		return code
	}
	if proj.ConfigPath == "" {
		out.ErrorPrefix("no %s/%s found; running on defaults", project.ConfigDirName, project.ConfigFileName)
		return errors.ExitConfigError
	}
	if err := proj.CheckSuitesRoot(); err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}
	out.ValidationSuccess("%s is valid", proj.ConfigPath)
	return 0
}

func printConfigUsage() {
	out.HelpTitle("conformrun config - configuration commands")
	out.HelpSection("Usage:")
	out.HelpUsage("conformrun config validate")
	out.Println("")
}
