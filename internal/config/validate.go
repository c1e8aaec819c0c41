package config

import (
	"fmt"
	"path/filepath"
	"regexp"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a defaulted configuration for errors and returns
// warnings for non-fatal issues.
func Validate(cfg *Config) (warnings []string, err error) {
	if err := validateSuites(cfg.Suites); err != nil {
		return nil, err
	}
	if err := validateCompiler(cfg.Compiler); err != nil {
		return nil, err
	}
	if err := validateLauncher(cfg.Launcher); err != nil {
		return nil, err
	}

	for i, s := range cfg.Suites.Exclude {
		if s == "" {
			warnings = append(warnings, fmt.Sprintf("suites.exclude[%d] is empty and excludes every suite", i))
		}
	}
	if cfg.Launcher.Grace < 5 {
		warnings = append(warnings, "launcher.grace below 5 seconds may kill the launcher before it reports a timeout")
	}
	return warnings, nil
}

func validateSuites(s *SuitesConfig) error {
	if _, err := filepath.Match(s.Pattern, ""); err != nil {
		return &ValidationError{Field: "suites.pattern", Message: fmt.Sprintf("invalid glob: %v", err)}
	}
	if _, err := filepath.Match(s.TestPattern, ""); err != nil {
		return &ValidationError{Field: "suites.test_pattern", Message: fmt.Sprintf("invalid glob: %v", err)}
	}
	return nil
}

func validateCompiler(c *CompilerConfig) error {
	if c.Timeout < 0 {
		return &ValidationError{Field: "compiler.timeout", Message: "must not be negative"}
	}
	return nil
}

func validateLauncher(l *LauncherConfig) error {
	if l.Timeout < 0 {
		return &ValidationError{Field: "launcher.timeout", Message: "must not be negative"}
	}
	if l.Grace < 0 {
		return &ValidationError{Field: "launcher.grace", Message: "must not be negative"}
	}
	if l.NoisePattern != nil {
		if _, err := regexp.Compile(*l.NoisePattern); err != nil {
			return &ValidationError{Field: "launcher.noise_pattern", Message: fmt.Sprintf("invalid regular expression: %v", err)}
		}
	}
	return nil
}
