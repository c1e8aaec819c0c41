package config

// Default configuration values.
const (
	DefaultSuitePattern    = "*"
	DefaultTestPattern     = "[0-9]*.c"
	DefaultCompiler        = "emcc"
	DefaultCompilerTimeout = 300
	DefaultLauncher        = "emrun"
	DefaultTimeout         = 15
	DefaultGrace           = 30
	DefaultNoisePattern    = `^\d{4}-`
)

// DefaultIncludeDirs are relative to each suite directory.
var DefaultIncludeDirs = []string{"../../../include"}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills in default values for unset configuration fields.
func applyDefaults(cfg *Config) {
	applySuitesDefaults(cfg)
	applyCompilerDefaults(cfg)
	applyLauncherDefaults(cfg)
	if cfg.Report == nil {
		cfg.Report = &ReportConfig{}
	}
}

func applySuitesDefaults(cfg *Config) {
	if cfg.Suites == nil {
		cfg.Suites = &SuitesConfig{}
	}
	if cfg.Suites.Root == "" {
		cfg.Suites.Root = "."
	}
	if cfg.Suites.Pattern == "" {
		cfg.Suites.Pattern = DefaultSuitePattern
	}
	if cfg.Suites.TestPattern == "" {
		cfg.Suites.TestPattern = DefaultTestPattern
	}
}

func applyCompilerDefaults(cfg *Config) {
	if cfg.Compiler == nil {
		cfg.Compiler = &CompilerConfig{}
	}
	if cfg.Compiler.Program == "" {
		cfg.Compiler.Program = DefaultCompiler
	}
	if cfg.Compiler.IncludeDirs == nil {
		cfg.Compiler.IncludeDirs = DefaultIncludeDirs
	}
	if cfg.Compiler.Timeout == 0 {
		cfg.Compiler.Timeout = DefaultCompilerTimeout
	}
}

func applyLauncherDefaults(cfg *Config) {
	if cfg.Launcher == nil {
		cfg.Launcher = &LauncherConfig{}
	}
	if cfg.Launcher.Program == "" {
		cfg.Launcher.Program = DefaultLauncher
	}
	if cfg.Launcher.Timeout == 0 {
		cfg.Launcher.Timeout = DefaultTimeout
	}
	if cfg.Launcher.Grace == 0 {
		cfg.Launcher.Grace = DefaultGrace
	}
	// An explicit empty noise_pattern disables filtering.
	if cfg.Launcher.NoisePattern == nil {
		p := DefaultNoisePattern
		cfg.Launcher.NoisePattern = &p
	}
}
