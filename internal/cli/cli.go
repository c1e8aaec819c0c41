// Package cli provides command-line interface functionality for conformrun.
package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/AndreyAkinshin/conformrun/internal/config"
	"github.com/AndreyAkinshin/conformrun/internal/errors"
	"github.com/AndreyAkinshin/conformrun/internal/output"
)

// Version is set at build time.
var Version = "dev"

// wantsHelp returns true if args contain -h or --help before any -- separator.
func wantsHelp(args []string) bool {
	for _, arg := range args {
		if arg == "-h" || arg == "--help" {
			return true
		}
		if arg == "--" {
			return false
		}
	}
	return false
}

// Run executes the CLI with the given arguments and returns an exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 0
	}

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return 0
	case "--version", "version":
		fmt.Printf("conformrun %s\n", Version)
		return 0
	}

	opts, remaining, err := parseGlobalFlags(args)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.ExitConfigError
	}

	if len(remaining) == 0 {
		printUsage()
		return 0
	}
	cmd := remaining[0]
	cmdArgs := remaining[1:]

	switch cmd {
	case "run":
		return cmdRun(cmdArgs, opts)
	case "suites":
		return cmdSuites(cmdArgs, opts)
	case "summarize":
		return cmdSummarize(cmdArgs)
	case "history":
		return cmdHistory(cmdArgs, opts)
	case "config":
		return cmdConfig(cmdArgs, opts)
	default:
		out.ErrorPrefix("unknown command %q", cmd)
		out.Hint("run 'conformrun help' for usage")
		return errors.ExitConfigError
	}
}

// GlobalOptions holds parsed global flags.
type GlobalOptions struct {
	Quiet       bool
	Verbose     bool
	DryRun      bool
	WriteExpect bool
	Root        string
	Exclude     []string
	Timeout     int // seconds; 0 keeps the configured value
	Browser     string
	JSON        string
	History     string
	Expect      string
}

// parseGlobalFlags manually parses global flags from arguments.
//
// Manual parsing is used instead of stdlib flag package because flags can
// appear anywhere in the argument list, not just before the command.
func parseGlobalFlags(args []string) (*GlobalOptions, []string, error) {
	opts := &GlobalOptions{}
	var remaining []string

	i := 0
	for i < len(args) {
		arg := args[i]

		switch {
		case arg == "-q" || arg == "--quiet":
			opts.Quiet = true
			i++
		case arg == "-v" || arg == "--verbose":
			opts.Verbose = true
			i++
		case arg == "--dry-run":
			opts.DryRun = true
			i++
		case arg == "--write-expect":
			opts.WriteExpect = true
			i++
		case isValueFlag(arg):
			name, value, next, err := flagValue(args, i)
			if err != nil {
				return nil, nil, err
			}
			if err := opts.set(name, value); err != nil {
				return nil, nil, err
			}
			i = next
		case arg == "--":
			remaining = append(remaining, args[i+1:]...)
			i = len(args)
		default:
			remaining = append(remaining, arg)
			i++
		}
	}

	if err := validateGlobalOptions(opts); err != nil {
		return nil, nil, err
	}
	if !opts.Quiet && !opts.Verbose && config.VerboseFromEnv(os.Getenv) {
		opts.Verbose = true
	}

	applyVerbosityToOutput(opts)

	return opts, remaining, nil
}

// valueFlags are the global flags that take a value, as --name=value or
// --name value.
var valueFlags = []string{"--root", "--exclude", "--timeout", "--browser", "--json", "--history", "--expect"}

func isValueFlag(arg string) bool {
	name, _, _ := strings.Cut(arg, "=")
	for _, f := range valueFlags {
		if name == f {
			return true
		}
	}
	return false
}

// flagValue returns the name and value of the flag at args[i] and the
// index of the next unconsumed argument.
func flagValue(args []string, i int) (name, value string, next int, err error) {
	if name, value, ok := strings.Cut(args[i], "="); ok {
		return name, value, i + 1, nil
	}
	name = args[i]
	if i+1 >= len(args) {
		return "", "", 0, fmt.Errorf("%s requires a value", name)
	}
	return name, args[i+1], i + 2, nil
}

func (o *GlobalOptions) set(name, value string) error {
	switch name {
	case "--root":
		o.Root = value
	case "--exclude":
		if value == "" {
			return fmt.Errorf("--exclude requires a non-empty substring")
		}
		o.Exclude = append(o.Exclude, value)
	case "--timeout":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid --timeout value %q\n  expected a positive number of seconds\n  example: conformrun run --timeout=30", value)
		}
		o.Timeout = n
	case "--browser":
		o.Browser = value
	case "--json":
		o.JSON = value
	case "--history":
		o.History = value
	case "--expect":
		o.Expect = value
	}
	return nil
}

// validateGlobalOptions checks that global options are valid.
func validateGlobalOptions(opts *GlobalOptions) error {
	if opts.Quiet && opts.Verbose {
		return fmt.Errorf("--quiet and --verbose are mutually exclusive")
	}
	return nil
}

// Help text alignment widths for consistent formatting.
const (
	widthCommand = 22
	widthFlag    = 20
	widthEnv     = 22
)

func printUsage() {
	w := output.New()

	w.HelpTitle("conformrun - build, run and classify C conformance test suites")

	w.HelpSection("Usage:")
	w.HelpUsage("conformrun <command> [flags] [args]")

	w.HelpSection("Commands:")
	w.HelpCommand("run [<suite>[/<test>]...]", "Run all suites, or only the selected ones", widthCommand)
	w.HelpCommand("suites", "List discovered and excluded suites", widthCommand)
	w.HelpCommand("summarize [<file>|-]", "Recount outcomes from a saved transcript", widthCommand)
	w.HelpCommand("history [--limit=<n>]", "Show recent recorded runs", widthCommand)
	w.HelpCommand("config validate", "Validate project configuration", widthCommand)
	w.HelpCommand("version", "Show version information", widthCommand)

	printGlobalFlags(w)

	w.HelpSection("Examples:")
	w.HelpExample("conformrun run", "Run every suite under the suites root")
	w.HelpExample("conformrun run pthread_create sem_init/1-1.c", "Run one suite and one single test")
	w.HelpExample("conformrun run --exclude=pthread_atfork --browser=/usr/bin/firefox", "Skip a suite and pick a browser")
	w.HelpExample("conformrun run > run.log; conformrun summarize run.log", "Recount a saved run")
	w.Println("")
}

func printGlobalFlags(w *output.Writer) {
	w.HelpSection("Global Flags:")
	w.HelpFlag("-q, --quiet", "Minimal output (errors only)", widthFlag)
	w.HelpFlag("-v, --verbose", "Stream every test as it runs", widthFlag)
	w.HelpFlag("--root=<dir>", "Project root (default: search upwards)", widthFlag)
	w.HelpFlag("--exclude=<substr>", "Skip suites whose name contains <substr>", widthFlag)
	w.HelpFlag("--timeout=<sec>", "Per-test launcher timeout", widthFlag)
	w.HelpFlag("--browser=<path>", "Browser passed to the launcher", widthFlag)
	w.HelpFlag("--json=<path>", "Write a JSON report", widthFlag)
	w.HelpFlag("--history=<path>", "Record the run in a SQLite database", widthFlag)
	w.HelpFlag("--expect=<path>", "Compare outcomes with an expectations file", widthFlag)
	w.HelpFlag("--write-expect", "Write current outcomes as expectations", widthFlag)
	w.HelpFlag("--dry-run", "Print commands without running them", widthFlag)
	w.HelpFlag("-h, --help", "Show this help", widthFlag)
	w.HelpFlag("--version", "Show version", widthFlag)

	w.HelpSection("Environment:")
	w.HelpEnvVar(config.EnvBrowser+"=<path>", "Default browser", widthEnv)
	w.HelpEnvVar(config.EnvTimeout+"=<sec>", "Default per-test timeout", widthEnv)
	w.HelpEnvVar(config.EnvVerbose+"=1", "Enable verbose output", widthEnv)
}
