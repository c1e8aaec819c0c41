package suite

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/AndreyAkinshin/conformrun/internal/classify"
)

type jsonEntry struct {
	Test    string        `json:"test"`
	Outcome classify.Kind `json:"outcome"`
	Reason  *string       `json:"reason,omitempty"`
	Stdout  string        `json:"stdout,omitempty"`
	Stderr  string        `json:"stderr,omitempty"`
}

type jsonSuite struct {
	Name       string      `json:"name"`
	Dir        string      `json:"dir"`
	DurationMs int64       `json:"duration_ms"`
	Counts     Counts      `json:"counts"`
	Partial    bool        `json:"partial,omitempty"`
	Tests      []jsonEntry `json:"tests"`
}

type jsonResult struct {
	GeneratedAt time.Time   `json:"generated_at"`
	Suites      []jsonSuite `json:"suites"`
	Total       Counts      `json:"total"`
	Sum         int         `json:"sum"`
}

// WriteJSON writes res as an indented JSON document.
func WriteJSON(w io.Writer, res *Result) error {
	doc := jsonResult{
		GeneratedAt: time.Now().UTC(),
		Suites:      make([]jsonSuite, 0, len(res.Reports)),
		Total:       res.Total.Counts,
		Sum:         res.Total.Total(),
	}
	for _, r := range res.Reports {
		js := jsonSuite{
			Name:       r.Suite,
			Dir:        r.Dir,
			DurationMs: r.Duration.Milliseconds(),
			Counts:     r.Counts,
			Partial:    r.Partial,
			Tests:      make([]jsonEntry, 0, len(r.Entries)),
		}
		for _, e := range r.Entries {
			je := jsonEntry{
				Test:    e.Test,
				Outcome: e.Outcome.Kind,
				Stdout:  e.Outcome.Stdout,
				Stderr:  e.Outcome.Stderr,
			}
			if e.Outcome.HasReason {
				reason := e.Outcome.Reason
				je.Reason = &reason
			}
			js.Tests = append(js.Tests, je)
		}
		doc.Suites = append(doc.Suites, js)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteJSONFile writes res to path, creating parent directories.
func WriteJSONFile(path string, res *Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := WriteJSON(f, res); err != nil {
		_ = f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}
