package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/AndreyAkinshin/conformrun/internal/errors"
	"github.com/AndreyAkinshin/conformrun/internal/history"
)

const defaultHistoryLimit = 10

// cmdHistory lists recent runs from the history database.
func cmdHistory(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printHistoryUsage()
		return 0
	}

	limit := defaultHistoryLimit
	for i := 0; i < len(args); i++ {
		arg := args[i]
		var value string
		switch {
		case strings.HasPrefix(arg, "--limit="):
			value = strings.TrimPrefix(arg, "--limit=")
		case arg == "--limit" && i+1 < len(args):
			i++
			value = args[i]
		default:
			out.ErrorPrefix("history: unexpected argument %q", arg)
			return errors.ExitConfigError
		}
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			out.ErrorPrefix("history: invalid --limit value %q", value)
			return errors.ExitConfigError
		}
		limit = n
	}

	proj, code := loadProject(opts)
	if proj == nil {
		return code
	}
	path := proj.Resolve(proj.Config.History)
	if path == "" {
		out.ErrorPrefix("no history database configured")
		out.Hint("pass --history=<path> or set \"history\" in config")
		return errors.ExitConfigError
	}

	ctx := context.Background()
	store, err := history.Open(ctx, path)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.ExitFailure
	}
	defer func() { _ = store.Close() }()

	runs, err := store.Recent(ctx, limit)
	if err != nil {
		out.ErrorPrefix("failed to read history: %v", err)
		return errors.ExitFailure
	}
	if len(runs) == 0 {
		out.Println("No runs recorded in %s", path)
		return 0
	}
	out.Table(historyHeaders(), historyRows(runs, time.Now()))
	return 0
}

func historyHeaders() []string {
	return append([]string{"Run", "Started", "Duration"}, append(kindHeaders(), "Total")...)
}

// historyRows renders runs relative to now.
func historyRows(runs []history.Run, now time.Time) [][]string {
	rows := make([][]string, len(runs))
	for i, r := range runs {
		row := []string{
			shortID(r.ID),
			humanize.RelTime(r.StartedAt, now, "ago", "from now"),
			r.Duration.Round(time.Second).String(),
		}
		row = append(row, countCells(r.Totals)...)
		rows[i] = append(row, humanize.Comma(int64(r.Totals.Total())))
	}
	return rows
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatChanges renders outcome changes as "suite/test: Passed -> Failed".
func formatChanges(changes []history.Change) []string {
	items := make([]string, len(changes))
	for i, c := range changes {
		items[i] = fmt.Sprintf("%s/%s: %s -> %s", c.Suite, c.Test,
			title(c.Previous.String()), title(c.Current.String()))
	}
	return items
}

func printHistoryUsage() {
	out.HelpTitle("conformrun history - show recorded runs")
	out.HelpSection("Usage:")
	out.HelpUsage("conformrun history [--limit=<n>] [--history=<path>]")
	out.Println("")
}
