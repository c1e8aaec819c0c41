// Package transcript recovers per-suite outcome counts from saved console
// output of earlier runs.
package transcript

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/AndreyAkinshin/conformrun/internal/classify"
	"github.com/AndreyAkinshin/conformrun/internal/suite"
)

// Static regexes for transcript lines.
var (
	ansiRegex    = regexp.MustCompile(`\x1b\[[0-9;]*m`)
	bannerRegex  = regexp.MustCompile(`^-{3,}\s+(\S+)/\s+-{3,}$`)
	headingRegex = regexp.MustCompile(`^(\d+) tests (passed|failed|skipped|finished with unknown result):$`)
	oneLineRegex = regexp.MustCompile(`^(\S+)/: (\d+) passed, (\d+) skipped\.$`)
)

const finishedLine = "=== FINISHED ==="

// SuiteCounts is what a transcript says about one suite.
type SuiteCounts struct {
	Name   string
	Counts suite.Counts
	// Tests lists test names per outcome when the FINISHED block was
	// present. One-line summaries carry no names.
	Tests map[classify.Kind][]string
}

// Summary is the parsed content of a whole transcript.
type Summary struct {
	Suites []*SuiteCounts
	Total  suite.GrandTotal
}

// Parsed reports whether anything recognizable was found.
func (s *Summary) Parsed() bool {
	return len(s.Suites) > 0
}

// Parse reads a transcript and returns the counts of every suite it
// mentions, in order of first appearance. A suite that appears more than
// once (for example a banner followed later by a one-line summary from a
// rerun) keeps the counts of its last appearance.
func Parse(r io.Reader) (*Summary, error) {
	p := &parser{index: make(map[string]*SuiteCounts)}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		p.line(strings.TrimSpace(ansiRegex.ReplaceAllString(sc.Text(), "")))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	s := &Summary{Suites: p.order}
	for _, c := range p.order {
		s.Total.Counts = s.Total.Add(c.Counts)
		s.Total.Suites++
	}
	return s, nil
}

// ParseString is Parse for in-memory transcripts. An unreadable
// transcript yields an empty summary.
func ParseString(text string) *Summary {
	s, err := Parse(strings.NewReader(text))
	if err != nil {
		return &Summary{}
	}
	return s
}

type parser struct {
	order   []*SuiteCounts
	index   map[string]*SuiteCounts
	current *SuiteCounts
	// pending is the kind whose name list is expected on the next line.
	pending classify.Kind
	hasList bool
	// inFinished is set between a suite's FINISHED line and the next banner
	// or one-line summary. Headings outside it are test output.
	inFinished bool
}

func (p *parser) suite(name string) *SuiteCounts {
	sc, ok := p.index[name]
	if !ok {
		sc = &SuiteCounts{Name: name}
		p.index[name] = sc
		p.order = append(p.order, sc)
	}
	return sc
}

func (p *parser) line(line string) {
	if p.hasList {
		p.hasList = false
		if p.current != nil && line != "" && !headingRegex.MatchString(line) {
			p.current.Tests[p.pending] = splitNames(line)
			return
		}
	}

	if m := bannerRegex.FindStringSubmatch(line); m != nil {
		sc := p.suite(m[1])
		sc.Counts = suite.Counts{}
		sc.Tests = make(map[classify.Kind][]string)
		p.current = sc
		p.inFinished = false
		return
	}

	if m := oneLineRegex.FindStringSubmatch(line); m != nil {
		sc := p.suite(m[1])
		passed, _ := strconv.Atoi(m[2])
		skipped, _ := strconv.Atoi(m[3])
		sc.Counts = suite.Counts{Passed: passed, Skipped: skipped}
		sc.Tests = nil
		p.current = nil
		p.inFinished = false
		return
	}

	if p.current == nil {
		return
	}
	if line == finishedLine {
		p.inFinished = true
		return
	}
	if !p.inFinished {
		return
	}
	if m := headingRegex.FindStringSubmatch(line); m != nil {
		n, _ := strconv.Atoi(m[1])
		k := headingKind(m[2])
		switch k {
		case classify.Passed:
			p.current.Counts.Passed = n
		case classify.Failed:
			p.current.Counts.Failed = n
		case classify.Skipped:
			p.current.Counts.Skipped = n
		case classify.Unknown:
			p.current.Counts.Unknown = n
		}
		p.pending, p.hasList = k, true
	}
}

func headingKind(phrase string) classify.Kind {
	switch phrase {
	case "passed":
		return classify.Passed
	case "failed":
		return classify.Failed
	case "skipped":
		return classify.Skipped
	}
	return classify.Unknown
}

func splitNames(line string) []string {
	var names []string
	for _, n := range strings.Split(line, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}
