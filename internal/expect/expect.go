// Package expect compares suite outcomes against a YAML file of known
// results, so a run can be judged by regressions rather than raw failures.
package expect

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AndreyAkinshin/conformrun/internal/classify"
	"github.com/AndreyAkinshin/conformrun/internal/schema"
	"github.com/AndreyAkinshin/conformrun/internal/suite"
)

// file is the on-disk layout. Keys are "suite/test.c" or "suite/*".
type file struct {
	Expect map[string]classify.Kind `yaml:"expect"`
	Notes  map[string]string        `yaml:"notes,omitempty"`
}

// Expectations maps tests to the outcome they are known to produce.
// Tests without an entry are expected to pass or be skipped.
type Expectations struct {
	rules map[string]classify.Kind
	notes map[string]string
}

// Mismatch is a test whose outcome differs from its expectation.
type Mismatch struct {
	Suite string
	Test  string
	Want  string // expected kind, or "passed or skipped" without a rule
	Got   classify.Kind
	Note  string
}

func (m Mismatch) String() string {
	s := fmt.Sprintf("%s/%s: expected %s, got %s", m.Suite, m.Test, m.Want, m.Got)
	if m.Note != "" {
		s += " (" + m.Note + ")"
	}
	return s
}

// Load reads an expectations file.
func Load(path string) (*Expectations, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read expectations: %w", err)
	}
	e, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return e, nil
}

// Parse decodes and validates an expectations document.
func Parse(data []byte) (*Expectations, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse expectations: %w", err)
	}
	if err := schema.ValidateExpectations(doc); err != nil {
		return nil, err
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse expectations: %w", err)
	}
	for key := range f.Expect {
		if name, test, ok := strings.Cut(key, "/"); !ok || name == "" || test == "" {
			return nil, fmt.Errorf("expectation key %q must have the form suite/test or suite/*", key)
		}
	}
	return &Expectations{rules: f.Expect, notes: f.Notes}, nil
}

// Lookup returns the expected outcome for a test, preferring an exact
// "suite/test" entry over a "suite/*" wildcard.
func (e *Expectations) Lookup(suiteName, test string) (classify.Kind, string, bool) {
	for _, key := range []string{suiteName + "/" + test, suiteName + "/*"} {
		if k, ok := e.rules[key]; ok {
			return k, e.notes[key], true
		}
	}
	return 0, "", false
}

// Check returns every mismatch across reports, sorted by suite then test.
func (e *Expectations) Check(reports []*suite.Report) []Mismatch {
	var out []Mismatch
	for _, r := range reports {
		for _, entry := range r.Entries {
			got := entry.Outcome.Kind
			want, note, ok := e.Lookup(r.Suite, entry.Test)
			switch {
			case ok && want != got:
				out = append(out, Mismatch{Suite: r.Suite, Test: entry.Test, Want: want.String(), Got: got, Note: note})
			case !ok && (got == classify.Failed || got == classify.Unknown):
				out = append(out, Mismatch{Suite: r.Suite, Test: entry.Test, Want: "passed or skipped", Got: got})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Suite != out[j].Suite {
			return out[i].Suite < out[j].Suite
		}
		return out[i].Test < out[j].Test
	})
	return out
}

// Snapshot builds an expectations document recording every failed,
// skipped or unknown outcome in reports. Loading it back makes the same
// run produce no mismatches.
func Snapshot(reports []*suite.Report) ([]byte, error) {
	f := file{Expect: map[string]classify.Kind{}}
	for _, r := range reports {
		for _, entry := range r.Entries {
			if entry.Outcome.Kind != classify.Passed {
				f.Expect[r.Suite+"/"+entry.Test] = entry.Outcome.Kind
			}
		}
	}
	return yaml.Marshal(f)
}
