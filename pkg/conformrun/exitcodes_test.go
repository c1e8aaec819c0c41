package conformrun_test

import (
	"testing"

	"github.com/AndreyAkinshin/conformrun/internal/errors"
	"github.com/AndreyAkinshin/conformrun/pkg/conformrun"
)

// TestExitCodeConsistency verifies that public exit code constants match
// the internal errors package constants.
func TestExitCodeConsistency(t *testing.T) {
	tests := []struct {
		name     string
		public   int
		internal int
		expected int
	}{
		{"Success", conformrun.ExitSuccess, errors.ExitSuccess, 0},
		{"Failure", conformrun.ExitFailure, errors.ExitFailure, 1},
		{"ConfigError", conformrun.ExitConfigError, errors.ExitConfigError, 2},
		{"EnvError", conformrun.ExitEnvError, errors.ExitEnvironmentError, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.public != tt.expected {
				t.Errorf("conformrun.%s = %d, want %d", tt.name, tt.public, tt.expected)
			}
			if tt.public != tt.internal {
				t.Errorf("exit code mismatch: public = %d, internal = %d", tt.public, tt.internal)
			}
		})
	}
}
