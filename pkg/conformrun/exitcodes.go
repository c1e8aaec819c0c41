// Package conformrun exposes constants for scripts and CI jobs that invoke
// the conformrun CLI.
package conformrun

// Exit codes returned by the conformrun CLI.
const (
	// ExitSuccess indicates every test passed or was skipped
	// (or, with an expectations file, every outcome matched).
	ExitSuccess = 0

	// ExitFailure indicates failed or unknown tests, or a runtime failure.
	ExitFailure = 1

	// ExitConfigError indicates an invalid configuration or invalid flags.
	ExitConfigError = 2

	// ExitEnvError indicates a missing toolchain or an unusable environment.
	ExitEnvError = 3
)
