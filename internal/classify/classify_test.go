package classify

import (
	"bytes"
	"testing"
)

func TestClassify(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		stdout     string
		stderr     string
		exit       ExitCode
		wantKind   Kind
		wantReason string
		wantHas    bool
	}{
		{
			name:       "skip with reason",
			stdout:     "Test SKIPPED: feature not implemented\nsome noise",
			exit:       Exited(0),
			wantKind:   Skipped,
			wantReason: "Test SKIPPED: feature not implemented",
			wantHas:    true,
		},
		{
			name:     "skip marker in other case has no reason",
			stdout:   "TEST SKIPPED because reasons",
			exit:     Exited(0),
			wantKind: Skipped,
		},
		{
			name:       "skip wins over non-zero exit",
			stdout:     "  Test SKIPPED: no realtime signals  \nTest FAILED",
			exit:       Exited(1),
			wantKind:   Skipped,
			wantReason: "Test SKIPPED: no realtime signals",
			wantHas:    true,
		},
		{
			name:     "skip wins over pass marker",
			stdout:   "Test PASSED\ntest skipped",
			exit:     Exited(0),
			wantKind: Skipped,
		},
		{
			name:     "skip even when process did not run",
			stdout:   "test skipped",
			exit:     NotRun(),
			wantKind: Skipped,
		},
		{
			name:       "first matching reason line is used",
			stdout:     "header\nTest SKIPPED: first\nTest SKIPPED: second",
			exit:       Exited(0),
			wantKind:   Skipped,
			wantReason: "Test SKIPPED: first",
			wantHas:    true,
		},
		{
			name:     "executed successfully",
			stdout:   "Test executed successfully.",
			exit:     Exited(0),
			wantKind: Passed,
		},
		{
			name:     "test pass any case",
			stdout:   "TEST PASSED",
			exit:     Exited(0),
			wantKind: Passed,
		},
		{
			name:     "executed successfully is case-sensitive",
			stdout:   "test executed successfully.",
			exit:     Exited(0),
			wantKind: Unknown,
		},
		{
			name:     "pass marker with non-zero exit fails",
			stdout:   "Test PASSED",
			exit:     Exited(1),
			wantKind: Failed,
		},
		{
			name:     "segfault",
			stdout:   "",
			stderr:   "segfault",
			exit:     Exited(139),
			wantKind: Failed,
		},
		{
			name:     "did not run",
			stdout:   "Test PASSED",
			exit:     NotRun(),
			wantKind: Failed,
		},
		{
			name:     "no marker",
			stdout:   "done",
			exit:     Exited(0),
			wantKind: Unknown,
		},
		{
			name:     "empty output with zero exit",
			exit:     Exited(0),
			wantKind: Unknown,
		},
		{
			name:     "stderr is ignored",
			stdout:   "done",
			stderr:   "Test PASSED\ntest skipped",
			exit:     Exited(0),
			wantKind: Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Classify(tt.stdout, tt.stderr, tt.exit)
			if got.Kind != tt.wantKind {
				t.Fatalf("Kind = %v, want %v", got.Kind, tt.wantKind)
			}
			if got.HasReason != tt.wantHas {
				t.Errorf("HasReason = %v, want %v", got.HasReason, tt.wantHas)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", got.Reason, tt.wantReason)
			}
		})
	}
}

func TestClassify_DiagnosticsCarried(t *testing.T) {
	t.Parallel()

	failed := Classify("out", "err", Exited(2))
	if failed.Stdout != "out" || failed.Stderr != "err" {
		t.Errorf("Failed outcome lost diagnostics: %+v", failed)
	}

	unknown := Classify("out", "err", Exited(0))
	if unknown.Stdout != "out" || unknown.Stderr != "err" {
		t.Errorf("Unknown outcome lost diagnostics: %+v", unknown)
	}

	passed := Classify("Test PASSED", "warn", Exited(0))
	if passed.Stdout != "" || passed.Stderr != "" {
		t.Errorf("Passed outcome should not carry diagnostics: %+v", passed)
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	if code, ok := Exited(3).Code(); !ok || code != 3 {
		t.Errorf("Exited(3).Code() = %d, %v", code, ok)
	}
	if _, ok := NotRun().Code(); ok {
		t.Error("NotRun().Code() reported a code")
	}
	if !Exited(0).Success() {
		t.Error("Exited(0) should be a success")
	}
	if NotRun().Success() {
		t.Error("NotRun() should not be a success")
	}
	if got := NotRun().String(); got != "did not run" {
		t.Errorf("NotRun().String() = %q", got)
	}
	if got := Exited(139).String(); got != "exit 139" {
		t.Errorf("Exited(139).String() = %q", got)
	}
}

func TestKindText(t *testing.T) {
	t.Parallel()
	for _, k := range Kinds {
		text, err := k.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v) error: %v", k, err)
		}
		var got Kind
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q) error: %v", text, err)
		}
		if got != k {
			t.Errorf("round trip of %v gave %v", k, got)
		}
	}

	var k Kind
	if err := k.UnmarshalText([]byte("flaky")); err == nil {
		t.Error("UnmarshalText(flaky) should fail")
	}
}

func TestAnnounce(t *testing.T) {
	t.Parallel()
	cmd := []string{"emcc", "1-1.c", "-o", "1-1.html"}
	tests := []struct {
		name    string
		outcome Outcome
		want    string
	}{
		{
			name:    "pass",
			outcome: Outcome{Kind: Passed},
			want:    "emcc 1-1.c -o 1-1.html\nPASS\n\n",
		},
		{
			name:    "skip with reason",
			outcome: Outcome{Kind: Skipped, Reason: "Test SKIPPED: no", HasReason: true},
			want:    "emcc 1-1.c -o 1-1.html\nTest SKIPPED: no\n\n",
		},
		{
			name:    "skip without reason",
			outcome: Outcome{Kind: Skipped},
			want:    "emcc 1-1.c -o 1-1.html\n\n\n",
		},
		{
			name:    "failed",
			outcome: Outcome{Kind: Failed, Stdout: "partial", Stderr: "segfault"},
			want:    "emcc 1-1.c -o 1-1.html\nFAILED:\npartial\nsegfault\n\n",
		},
		{
			name:    "unknown without stdout",
			outcome: Outcome{Kind: Unknown, Stderr: "warn"},
			want:    "emcc 1-1.c -o 1-1.html\nUNKNOWN:\nwarn\n\n",
		},
		{
			name:    "failed without stderr",
			outcome: Outcome{Kind: Failed, Stdout: "partial"},
			want:    "emcc 1-1.c -o 1-1.html\nFAILED:\npartial\n\n\n",
		},
		{
			name:    "unknown without output",
			outcome: Outcome{Kind: Unknown},
			want:    "emcc 1-1.c -o 1-1.html\nUNKNOWN:\n\n\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			Announce(&buf, ExecutionResult{TestID: "1-1.c", Command: cmd}, tt.outcome)
			if got := buf.String(); got != tt.want {
				t.Errorf("Announce() = %q, want %q", got, tt.want)
			}
		})
	}
}
