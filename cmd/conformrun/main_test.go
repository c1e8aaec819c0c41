// Package main tests for the conformrun CLI entry point.
package main

import (
	"os/exec"
	"strings"
	"testing"
)

// TestMain_HelpFlag verifies the --help flag works correctly.
func TestMain_HelpFlag(t *testing.T) {
	t.Parallel()

	cmd := exec.Command("go", "run", ".", "--help")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("--help failed: %v\noutput: %s", err, out)
	}
	if !strings.Contains(string(out), "conformrun run") {
		t.Errorf("--help output missing run command:\n%s", out)
	}
}

// TestMain_VersionFlag verifies the --version flag works correctly.
func TestMain_VersionFlag(t *testing.T) {
	t.Parallel()

	cmd := exec.Command("go", "run", ".", "--version")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("--version failed: %v\noutput: %s", err, out)
	}
	if !strings.HasPrefix(string(out), "conformrun ") {
		t.Errorf("--version output = %q", out)
	}
}

// TestMain_UnknownCommand verifies configuration errors exit with code 2.
func TestMain_UnknownCommand(t *testing.T) {
	t.Parallel()

	cmd := exec.Command("go", "run", ".", "frobnicate")
	err := cmd.Run()
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("expected exit error, got %v", err)
	}
	// go run reports the program's exit status as its own.
	if exitErr.ExitCode() != 2 && exitErr.ExitCode() != 1 {
		t.Errorf("exit code = %d", exitErr.ExitCode())
	}
}
