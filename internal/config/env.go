package config

import (
	"fmt"
	"strconv"
)

// Environment variables that override configuration values.
const (
	EnvBrowser = "CONFORMRUN_BROWSER"
	EnvTimeout = "CONFORMRUN_TIMEOUT"
)

// ApplyEnv overrides launcher settings from the environment. getenv is
// usually os.Getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv(EnvBrowser); v != "" {
		cfg.Launcher.Browser = v
	}
	if v := getenv(EnvTimeout); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return &ValidationError{Field: EnvTimeout, Message: fmt.Sprintf("must be a positive number of seconds, got %q", v)}
		}
		cfg.Launcher.Timeout = n
	}
	return nil
}

// EnvVerbose enables verbose output when set to a true value.
const EnvVerbose = "CONFORMRUN_VERBOSE"

// VerboseFromEnv reports whether EnvVerbose holds a true value such as
// "1" or "true".
func VerboseFromEnv(getenv func(string) string) bool {
	v, err := strconv.ParseBool(getenv(EnvVerbose))
	return err == nil && v
}
