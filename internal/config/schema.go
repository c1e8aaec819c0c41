// Package config provides configuration loading and validation for
// .conformrun/config.json.
package config

// Config represents the complete config.json configuration.
type Config struct {
	Suites       *SuitesConfig   `json:"suites,omitempty"`
	Compiler     *CompilerConfig `json:"compiler,omitempty"`
	Launcher     *LauncherConfig `json:"launcher,omitempty"`
	Expectations string          `json:"expectations,omitempty"`
	History      string          `json:"history,omitempty"`
	Report       *ReportConfig   `json:"report,omitempty"`
}

// SuitesConfig controls suite and test discovery.
type SuitesConfig struct {
	Root        string   `json:"root,omitempty"`
	Pattern     string   `json:"pattern,omitempty"`      // glob matched against suite directory names
	Exclude     []string `json:"exclude,omitempty"`      // substrings; a matching suite is skipped
	TestPattern string   `json:"test_pattern,omitempty"` // glob matched against test file names
}

// CompilerConfig configures the build step.
type CompilerConfig struct {
	Program     string            `json:"program,omitempty"`
	Flags       []string          `json:"flags,omitempty"`
	IncludeDirs []string          `json:"include_dirs,omitempty"`
	Extra       []string          `json:"extra,omitempty"`
	Timeout     int               `json:"timeout,omitempty"` // seconds
	Env         map[string]string `json:"env,omitempty"`
}

// LauncherConfig configures the execute step.
type LauncherConfig struct {
	Program      string            `json:"program,omitempty"`
	Args         []string          `json:"args,omitempty"`
	Browser      string            `json:"browser,omitempty"`
	Timeout      int               `json:"timeout,omitempty"` // seconds per test
	Grace        int               `json:"grace,omitempty"`   // seconds added before the launcher is killed
	NoisePattern *string           `json:"noise_pattern,omitempty"`
	Env          map[string]string `json:"env,omitempty"`
}

// ReportConfig configures machine-readable output.
type ReportConfig struct {
	JSON string `json:"json,omitempty"`
}
