package cli

import (
	"io"
	"os"

	"github.com/AndreyAkinshin/conformrun/internal/errors"
	"github.com/AndreyAkinshin/conformrun/internal/suite"
	"github.com/AndreyAkinshin/conformrun/internal/transcript"
)

// cmdSummarize recounts outcomes from a saved run transcript.
func cmdSummarize(args []string) int {
	if wantsHelp(args) {
		printSummarizeUsage()
		return 0
	}
	if len(args) > 1 {
		out.ErrorPrefix("summarize: expected at most one file, got %d", len(args))
		return errors.ExitConfigError
	}

	var input io.Reader = os.Stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			out.ErrorPrefix("summarize: %v", err)
			return errors.ExitFailure
		}
		defer func() { _ = f.Close() }()
		input = f
	}

	s, err := transcript.Parse(input)
	if err != nil {
		out.ErrorPrefix("summarize: %v", err)
		return errors.ExitFailure
	}
	if !s.Parsed() {
		out.ErrorPrefix("summarize: no suite results found in input")
		out.Hint("save the output of 'conformrun run' and pass it here")
		return errors.ExitFailure
	}

	printTranscriptSummary(s)
	if !s.Total.Clean() {
		return errors.ExitFailure
	}
	return errors.ExitSuccess
}

func printTranscriptSummary(s *transcript.Summary) {
	rows := make([][]string, len(s.Suites))
	for i, sc := range s.Suites {
		rows[i] = append([]string{sc.Name + "/"}, countCells(sc.Counts)...)
	}
	out.Table(append([]string{"Suite"}, kindHeaders()...), rows)
	suite.WriteGrandTotal(out, s.Total)
}

func printSummarizeUsage() {
	out.HelpTitle("conformrun summarize - recount a saved transcript")
	out.HelpSection("Usage:")
	out.HelpUsage("conformrun run 2>&1 | tee run.log; conformrun summarize run.log")
	out.HelpUsage("cat run.log | conformrun summarize -")
	out.HelpSection("Description:")
	out.Println("  Reads suite banners, FINISHED blocks and one-line suite summaries")
	out.Println("  and prints per-suite counts with the grand total.")
	out.Println("")
}
