package suite

import (
	"fmt"
	"io"
	"strings"

	"github.com/AndreyAkinshin/conformrun/internal/classify"
	"github.com/AndreyAkinshin/conformrun/internal/output"
)

const bannerRule = "----------------------------------"

// Banner returns the transcript header line for a suite. The transcript
// parser keys on this exact shape.
func Banner(suite string) string {
	return fmt.Sprintf("%s %s/ %s", bannerRule, suite, bannerRule)
}

// KindHeading returns the "N tests <kind>:" heading used in the
// per-suite FINISHED block.
func KindHeading(k classify.Kind, n int) string {
	return fmt.Sprintf("%d tests %s:", n, kindPhrase(k))
}

func kindPhrase(k classify.Kind) string {
	if k == classify.Unknown {
		return "finished with unknown result"
	}
	return k.String()
}

// finishedOrder is the order of outcome blocks in the FINISHED section.
var finishedOrder = []classify.Kind{classify.Passed, classify.Failed, classify.Unknown, classify.Skipped}

func writeSuiteHeader(w io.Writer, s Suite) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, Banner(s.Name))
	fmt.Fprintf(w, "Running %d tests: %s in %s\n", len(s.Tests), strings.Join(s.Tests, ", "), s.Dir)
	fmt.Fprintln(w)
}

func writeSuiteFooter(w io.Writer, r *Report) {
	fmt.Fprintln(w, "=== FINISHED ===")
	for _, k := range finishedOrder {
		names := r.Tests(k)
		if len(names) == 0 {
			continue
		}
		fmt.Fprintln(w, KindHeading(k, len(names)))
		fmt.Fprintln(w, strings.Join(names, ", "))
		fmt.Fprintln(w)
	}
}

// SummaryLine returns the one-line summary printed for a clean suite.
func SummaryLine(r *Report) string {
	return fmt.Sprintf("%s/: %d passed, %d skipped.", r.Suite, r.Counts.Passed, r.Counts.Skipped)
}

// WriteReport prints a finished suite report. A clean suite gets the
// one-line summary; a suite with failed or unknown tests gets its full
// transcript. In verbose mode the transcript was already streamed live,
// so nothing more is printed.
func WriteReport(out *output.Writer, r *Report) {
	switch {
	case out.Verbose():
		return
	case !r.Counts.Clean():
		out.Text(r.Transcript)
	default:
		out.Info("%s", SummaryLine(r))
	}
}

// WriteGrandTotal prints the SUMMARY block for all suites.
func WriteGrandTotal(out *output.Writer, g GrandTotal) {
	out.SummaryHeader("Summary")
	out.Println("%d tests run total, of which:", g.Total())
	out.SummaryPassed("%d tests passed.", g.Passed)
	if g.Failed > 0 {
		out.SummaryFailed("%d tests failed.", g.Failed)
	} else {
		out.SummaryItem("%d tests failed.", g.Failed)
	}
	out.SummaryItem("%d tests skipped.", g.Skipped)
	if g.Unknown > 0 {
		out.SummaryWarn("%d tests finished with unknown result.", g.Unknown)
	} else {
		out.SummaryItem("%d tests finished with unknown result.", g.Unknown)
	}
	out.Println("")
}
