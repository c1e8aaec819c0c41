package classify

import "strings"

// Markers recognized in test stdout. The skip reason lookup is
// case-sensitive while the skip detection itself is not; both behaviours
// match what the conformance tests print in practice.
const (
	skipMarker       = "test skipped"
	skipReasonMarker = "Test SKIPPED"
	passMarker       = "test pass"
	successMarker    = "Test executed successfully."
)

// Classify decides the outcome of one test run. Checks are applied in
// fixed order and the first match wins:
//
//  1. stdout mentions "test skipped" in any case: Skipped
//  2. exit 0 and stdout has "test pass" (any case) or
//     "Test executed successfully.": Passed
//  3. non-zero or absent exit code: Failed
//  4. anything else: Unknown
//
// Stderr never influences the kind.
func Classify(stdout, stderr string, exit ExitCode) Outcome {
	lower := strings.ToLower(stdout)

	if strings.Contains(lower, skipMarker) {
		reason, ok := skipReason(stdout)
		return Outcome{Kind: Skipped, Reason: reason, HasReason: ok}
	}

	if exit.Success() && (strings.Contains(lower, passMarker) || strings.Contains(stdout, successMarker)) {
		return Outcome{Kind: Passed}
	}

	if !exit.Success() {
		return Outcome{Kind: Failed, Stdout: stdout, Stderr: stderr}
	}

	return Outcome{Kind: Unknown, Stdout: stdout, Stderr: stderr}
}

// ClassifyResult is Classify applied to a captured ExecutionResult.
func ClassifyResult(r ExecutionResult) Outcome {
	return Classify(r.Stdout, r.Stderr, r.Exit)
}

// skipReason returns the first stdout line containing the case-sensitive
// skip marker, trimmed.
func skipReason(stdout string) (string, bool) {
	for line := range strings.Lines(stdout) {
		if strings.Contains(line, skipReasonMarker) {
			return strings.TrimSpace(line), true
		}
	}
	return "", false
}
