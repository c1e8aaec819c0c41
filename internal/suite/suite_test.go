package suite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AndreyAkinshin/conformrun/internal/classify"
	"github.com/AndreyAkinshin/conformrun/internal/output"
)

// fakeBuilder maps a source file to "<source>.html".
type fakeBuilder struct {
	fail  map[string]bool // base names whose build fails
	built []string
}

func (b *fakeBuilder) Build(_ context.Context, source string) (Artifact, error) {
	b.built = append(b.built, filepath.Base(source))
	art := Artifact{Path: source + ".html", Command: []string{"cc", filepath.Base(source)}}
	if b.fail[filepath.Base(source)] {
		return art, errors.New("compile error")
	}
	return art, nil
}

// fakeExecutor returns canned captures keyed by source base name.
type fakeExecutor struct {
	captures map[string]Capture
	timeouts []time.Duration
}

func (e *fakeExecutor) Execute(_ context.Context, artifact string, timeout time.Duration) Capture {
	e.timeouts = append(e.timeouts, timeout)
	name := strings.TrimSuffix(filepath.Base(artifact), ".html")
	if c, ok := e.captures[name]; ok {
		return c
	}
	return Capture{Exit: classify.NotRun()}
}

func newTestOutput(verbose bool) (*output.Writer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	w := output.NewWithWriters(stdout, &bytes.Buffer{}, false)
	w.SetVerbose(verbose)
	return w, stdout
}

func TestRunner_RunSuite(t *testing.T) {
	t.Parallel()
	exec := &fakeExecutor{captures: map[string]Capture{
		"1-1.c": {Stdout: "Test PASSED", Exit: classify.Exited(0)},
		"1-2.c": {Stdout: "Test SKIPPED: no rt", Exit: classify.Exited(0)},
		"2-1.c": {Stderr: "segfault", Exit: classify.Exited(139)},
		"3-1.c": {Stdout: "done", Exit: classify.Exited(0)},
		"4-1.c": {Stdout: "Test executed successfully.", Exit: classify.Exited(0)},
	}}
	build := &fakeBuilder{}
	r := NewRunner(build, exec, Options{Timeout: 15 * time.Second})

	s := Suite{Name: "sem_init", Dir: "/suites/sem_init", Tests: []string{"1-1.c", "1-2.c", "2-1.c", "3-1.c", "4-1.c"}}
	report := r.RunSuite(context.Background(), s)

	want := Counts{Passed: 2, Failed: 1, Skipped: 1, Unknown: 1}
	if report.Counts != want {
		t.Errorf("Counts = %+v, want %+v", report.Counts, want)
	}
	if len(report.Entries) != len(s.Tests) {
		t.Fatalf("len(Entries) = %d, want %d", len(report.Entries), len(s.Tests))
	}
	for i, e := range report.Entries {
		if e.Test != s.Tests[i] {
			t.Errorf("Entries[%d].Test = %q, want %q", i, e.Test, s.Tests[i])
		}
	}
	if got := strings.Join(build.built, ","); got != "1-1.c,1-2.c,2-1.c,3-1.c,4-1.c" {
		t.Errorf("build order = %s", got)
	}
	for _, d := range exec.timeouts {
		if d != 15*time.Second {
			t.Errorf("executor timeout = %v, want 15s", d)
		}
	}
	if got := report.Entries[1].Outcome.Reason; got != "Test SKIPPED: no rt" {
		t.Errorf("skip reason = %q", got)
	}
	if report.Suite != "sem_init" || report.Dir != "/suites/sem_init" {
		t.Errorf("report identity = %q %q", report.Suite, report.Dir)
	}
}

func TestRunner_CountsMatchEntries(t *testing.T) {
	t.Parallel()
	exec := &fakeExecutor{captures: map[string]Capture{
		"a.c": {Stdout: "test pass", Exit: classify.Exited(0)},
		"b.c": {Stdout: "test pass", Exit: classify.Exited(0)},
		"c.c": {Stdout: "", Exit: classify.Exited(1)},
	}}
	r := NewRunner(&fakeBuilder{}, exec, Options{})
	report := r.RunSuite(context.Background(), Suite{Name: "s", Tests: []string{"a.c", "b.c", "c.c", "d.c"}})

	for _, k := range classify.Kinds {
		if got, want := report.Counts.Get(k), len(report.Tests(k)); got != want {
			t.Errorf("Counts.Get(%v) = %d, entries of kind = %d", k, got, want)
		}
	}
	if report.Counts.Total() != 4 {
		t.Errorf("Total() = %d, want 4", report.Counts.Total())
	}
}

func TestRunner_BuildFailureSurfacesThroughExecution(t *testing.T) {
	t.Parallel()
	exec := &fakeExecutor{captures: map[string]Capture{}}
	build := &fakeBuilder{fail: map[string]bool{"1-1.c": true}}
	r := NewRunner(build, exec, Options{})

	report := r.RunSuite(context.Background(), Suite{Name: "s", Tests: []string{"1-1.c"}})

	got := report.Entries[0].Outcome
	if got.Kind != classify.Failed {
		t.Fatalf("Kind = %v, want Failed", got.Kind)
	}
	if !strings.Contains(got.Stderr, "build: compile error") {
		t.Errorf("Stderr = %q, want build error", got.Stderr)
	}
	if len(exec.timeouts) != 1 {
		t.Errorf("executor called %d times, want 1", len(exec.timeouts))
	}
}

func TestRunner_Transcript(t *testing.T) {
	t.Parallel()
	exec := &fakeExecutor{captures: map[string]Capture{
		"1-1.c": {Stdout: "Test PASSED", Exit: classify.Exited(0)},
		"2-1.c": {Stdout: "oops", Stderr: "abort", Exit: classify.Exited(134)},
	}}
	var live bytes.Buffer
	r := NewRunner(&fakeBuilder{}, exec, Options{Live: &live})

	report := r.RunSuite(context.Background(), Suite{Name: "mq_open", Dir: "/t/mq_open", Tests: []string{"1-1.c", "2-1.c"}})

	for _, want := range []string{
		Banner("mq_open"),
		"Running 2 tests: 1-1.c, 2-1.c in /t/mq_open",
		"cc 1-1.c\nPASS\n",
		"cc 2-1.c\nFAILED:\noops\nabort\n",
		"=== FINISHED ===",
		"1 tests passed:\n1-1.c\n",
		"1 tests failed:\n2-1.c\n",
	} {
		if !strings.Contains(report.Transcript, want) {
			t.Errorf("transcript missing %q:\n%s", want, report.Transcript)
		}
	}
	if live.String() != report.Transcript {
		t.Error("live output differs from stored transcript")
	}
}

func TestGrandTotal_Fold(t *testing.T) {
	t.Parallel()
	a := &Report{Counts: Counts{Passed: 3, Failed: 1}}
	b := &Report{Counts: Counts{Passed: 5, Skipped: 2, Unknown: 1}}

	var g GrandTotal
	g.Fold(a)
	g.Fold(b)
	g.Fold(nil)

	want := Counts{Passed: 8, Failed: 1, Skipped: 2, Unknown: 1}
	if g.Counts != want {
		t.Errorf("Counts = %+v, want %+v", g.Counts, want)
	}
	if g.Total() != 12 {
		t.Errorf("Total() = %d, want 12", g.Total())
	}
	if g.Suites != 2 {
		t.Errorf("Suites = %d, want 2", g.Suites)
	}

	var reversed GrandTotal
	reversed.Fold(b)
	reversed.Fold(a)
	if reversed.Counts != g.Counts {
		t.Errorf("fold order changed the result: %+v vs %+v", reversed.Counts, g.Counts)
	}
}

func TestWriteReport(t *testing.T) {
	t.Parallel()
	clean := &Report{Suite: "sem_post", Counts: Counts{Passed: 4, Skipped: 1}, Transcript: "FULL TRANSCRIPT\n"}
	dirty := &Report{Suite: "sem_wait", Counts: Counts{Passed: 4, Unknown: 1}, Transcript: "FULL TRANSCRIPT\n"}

	tests := []struct {
		name    string
		report  *Report
		verbose bool
		want    string
	}{
		{"clean suite prints one line", clean, false, "sem_post/: 4 passed, 1 skipped.\n"},
		{"unknown prints transcript", dirty, false, "FULL TRANSCRIPT\n"},
		{"verbose already streamed", dirty, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out, stdout := newTestOutput(tt.verbose)
			WriteReport(out, tt.report)
			if got := stdout.String(); got != tt.want {
				t.Errorf("WriteReport() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteGrandTotal(t *testing.T) {
	t.Parallel()
	out, stdout := newTestOutput(false)
	WriteGrandTotal(out, GrandTotal{Counts: Counts{Passed: 8, Failed: 1, Skipped: 2, Unknown: 1}})

	want := `
-------------- SUMMARY --------------
12 tests run total, of which:
  8 tests passed.
  1 tests failed.
  2 tests skipped.
  1 tests finished with unknown result.

`
	if got := stdout.String(); got != want {
		t.Errorf("WriteGrandTotal() =\n%q\nwant\n%q", got, want)
	}
}

func TestDriver_Run(t *testing.T) {
	t.Parallel()
	exec := &fakeExecutor{captures: map[string]Capture{
		"a.c": {Stdout: "Test PASSED", Exit: classify.Exited(0)},
		"b.c": {Stdout: "Test SKIPPED", Exit: classify.Exited(0)},
	}}
	out, stdout := newTestOutput(false)
	d := NewDriver(NewRunner(&fakeBuilder{}, exec, Options{}), out)

	var seen []string
	d.OnReport = func(r *Report) { seen = append(seen, r.Suite) }

	res, err := d.Run(context.Background(), []Suite{
		{Name: "one", Tests: []string{"a.c"}},
		{Name: "two", Tests: []string{"a.c", "b.c"}},
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Total.Counts != (Counts{Passed: 2, Skipped: 1}) {
		t.Errorf("Total = %+v", res.Total.Counts)
	}
	if strings.Join(seen, ",") != "one,two" {
		t.Errorf("OnReport order = %v", seen)
	}
	got := stdout.String()
	for _, want := range []string{"one/: 1 passed, 0 skipped.", "two/: 1 passed, 1 skipped.", "3 tests run total"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestDriver_Run_Cancelled(t *testing.T) {
	t.Parallel()
	out, _ := newTestOutput(false)
	d := NewDriver(NewRunner(&fakeBuilder{}, &fakeExecutor{}, Options{}), out)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := d.Run(ctx, []Suite{{Name: "one", Tests: []string{"a.c"}}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if len(res.Reports) != 0 {
		t.Errorf("ran %d suites after cancellation", len(res.Reports))
	}
}

// cancellingExecutor cancels the run while executing the named test, the
// way SIGINT lands in the middle of a launcher invocation.
type cancellingExecutor struct {
	fakeExecutor
	at     string
	cancel context.CancelFunc
}

func (e *cancellingExecutor) Execute(ctx context.Context, artifact string, timeout time.Duration) Capture {
	if strings.TrimSuffix(filepath.Base(artifact), ".html") == e.at {
		e.cancel()
		return Capture{Stderr: "context canceled", Exit: classify.NotRun()}
	}
	return e.fakeExecutor.Execute(ctx, artifact, timeout)
}

func TestRunner_RunSuite_CancelledMidSuite(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	exec := &cancellingExecutor{
		fakeExecutor: fakeExecutor{captures: map[string]Capture{
			"a.c": {Stdout: "Test PASSED", Exit: classify.Exited(0)},
			"c.c": {Stdout: "Test PASSED", Exit: classify.Exited(0)},
		}},
		at:     "b.c",
		cancel: cancel,
	}
	r := NewRunner(&fakeBuilder{}, exec, Options{})

	report := r.RunSuite(ctx, Suite{Name: "s", Tests: []string{"a.c", "b.c", "c.c"}})
	if !report.Partial {
		t.Error("Partial = false after cancellation")
	}
	if report.Counts != (Counts{Passed: 1}) {
		t.Errorf("Counts = %+v, want only the finished test", report.Counts)
	}
	if len(report.Entries) != 1 || report.Entries[0].Test != "a.c" {
		t.Errorf("Entries = %+v", report.Entries)
	}
	if len(exec.timeouts) != 1 {
		t.Errorf("executed %d tests besides the interrupted one", len(exec.timeouts))
	}
	if strings.Contains(report.Transcript, "FAILED:") {
		t.Errorf("interrupted test announced as failed:\n%s", report.Transcript)
	}
}

func TestDriver_Run_CancelledMidSuite(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	exec := &cancellingExecutor{
		fakeExecutor: fakeExecutor{captures: map[string]Capture{
			"a.c": {Stdout: "Test PASSED", Exit: classify.Exited(0)},
		}},
		at:     "b.c",
		cancel: cancel,
	}
	out, _ := newTestOutput(false)
	d := NewDriver(NewRunner(&fakeBuilder{}, exec, Options{}), out)

	res, err := d.Run(ctx, []Suite{
		{Name: "one", Tests: []string{"a.c", "b.c", "c.c"}},
		{Name: "two", Tests: []string{"a.c"}},
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if len(res.Reports) != 1 || !res.Reports[0].Partial {
		t.Fatalf("Reports = %+v, want one partial report", res.Reports)
	}
	if res.Total.Counts != (Counts{Passed: 1}) || res.Total.Failed != 0 {
		t.Errorf("Total = %+v, want only the finished test", res.Total.Counts)
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, res); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}
	if !strings.Contains(buf.String(), `"partial": true`) {
		t.Errorf("JSON does not mark the suite partial:\n%s", buf.String())
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()
	r := &Report{Suite: "s", Dir: "/d"}
	r.add("1-1.c", classify.Outcome{Kind: classify.Passed})
	r.add("1-2.c", classify.Outcome{Kind: classify.Skipped, Reason: "Test SKIPPED: x", HasReason: true})
	r.add("2-1.c", classify.Outcome{Kind: classify.Failed, Stderr: "boom"})
	res := &Result{Reports: []*Report{r}}
	res.Total.Fold(r)

	var buf bytes.Buffer
	if err := WriteJSON(&buf, res); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}

	var doc struct {
		Suites []struct {
			Name  string `json:"name"`
			Tests []struct {
				Test    string  `json:"test"`
				Outcome string  `json:"outcome"`
				Reason  *string `json:"reason"`
				Stderr  string  `json:"stderr"`
			} `json:"tests"`
		} `json:"suites"`
		Total Counts `json:"total"`
		Sum   int    `json:"sum"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if doc.Sum != 3 || doc.Total.Failed != 1 {
		t.Errorf("total = %+v sum = %d", doc.Total, doc.Sum)
	}
	tests := doc.Suites[0].Tests
	if tests[1].Outcome != "skipped" || tests[1].Reason == nil || *tests[1].Reason != "Test SKIPPED: x" {
		t.Errorf("skipped entry = %+v", tests[1])
	}
	if tests[0].Reason != nil {
		t.Errorf("passed entry has reason %q", *tests[0].Reason)
	}
	if tests[2].Outcome != "failed" || tests[2].Stderr != "boom" {
		t.Errorf("failed entry = %+v", tests[2])
	}
}
