// Package suite runs groups of conformance tests, aggregates their
// outcomes per suite and folds suite reports into a grand total.
package suite

import (
	"time"

	"github.com/AndreyAkinshin/conformrun/internal/classify"
)

// Suite is a directory of related test sources sharing a run configuration.
type Suite struct {
	Name  string
	Dir   string
	Tests []string // test source file names relative to Dir, in run order
}

// Counts holds one counter per outcome kind.
type Counts struct {
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
	Unknown int `json:"unknown"`
}

// Inc increments the counter for kind k.
func (c *Counts) Inc(k classify.Kind) {
	switch k {
	case classify.Passed:
		c.Passed++
	case classify.Failed:
		c.Failed++
	case classify.Skipped:
		c.Skipped++
	case classify.Unknown:
		c.Unknown++
	}
}

// Get returns the counter for kind k.
func (c Counts) Get(k classify.Kind) int {
	switch k {
	case classify.Passed:
		return c.Passed
	case classify.Failed:
		return c.Failed
	case classify.Skipped:
		return c.Skipped
	case classify.Unknown:
		return c.Unknown
	}
	return 0
}

// Add returns the elementwise sum of c and other.
func (c Counts) Add(other Counts) Counts {
	return Counts{
		Passed:  c.Passed + other.Passed,
		Failed:  c.Failed + other.Failed,
		Skipped: c.Skipped + other.Skipped,
		Unknown: c.Unknown + other.Unknown,
	}
}

// Total returns the sum of all four counters.
func (c Counts) Total() int {
	return c.Passed + c.Failed + c.Skipped + c.Unknown
}

// Clean reports whether there are no failed or unknown outcomes.
func (c Counts) Clean() bool {
	return c.Failed == 0 && c.Unknown == 0
}

// Entry pairs a test identifier with its outcome.
type Entry struct {
	Test    string
	Outcome classify.Outcome
}

// Report is the ordered list of outcomes for one suite plus derived counts.
// Counts always agree with the entries; both are only changed by add.
type Report struct {
	Suite      string
	Dir        string
	Entries    []Entry
	Counts     Counts
	Duration   time.Duration
	Transcript string // full per-test console transcript

	// Partial is set when the run was interrupted before every test of the
	// suite finished. Entries then hold only the tests that finished.
	Partial bool
}

func (r *Report) add(test string, o classify.Outcome) {
	r.Entries = append(r.Entries, Entry{Test: test, Outcome: o})
	r.Counts.Inc(o.Kind)
}

// Tests returns the identifiers of entries with outcome kind k, in run order.
func (r *Report) Tests(k classify.Kind) []string {
	var names []string
	for _, e := range r.Entries {
		if e.Outcome.Kind == k {
			names = append(names, e.Test)
		}
	}
	return names
}

// GrandTotal accumulates counts across suites. It only ever grows.
type GrandTotal struct {
	Counts
	Suites int
}

// Fold adds one completed suite report to the total. It must be called
// exactly once per suite.
func (g *GrandTotal) Fold(r *Report) {
	if r == nil {
		return
	}
	g.Counts = g.Counts.Add(r.Counts)
	g.Suites++
}
