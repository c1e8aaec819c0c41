package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/AndreyAkinshin/conformrun/internal/schema"
)

// Load reads and parses a config.json file without applying defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

// LoadAndValidate reads a config file, checks it against the JSON schema,
// applies defaults and validates it. Warnings cover unknown fields and
// suspicious but legal values.
func LoadAndValidate(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return LoadBytes(data)
}

// LoadBytes is LoadAndValidate for in-memory data.
func LoadBytes(data []byte) (*Config, []string, error) {
	cfg, err := parse(data)
	if err != nil {
		return nil, nil, err
	}
	if err := schema.ValidateConfig(data); err != nil {
		return nil, nil, err
	}

	warnings := detectUnknownFields(data)
	applyDefaults(cfg)

	validationWarnings, err := Validate(cfg)
	warnings = append(warnings, validationWarnings...)
	if err != nil {
		return nil, warnings, err
	}
	return cfg, warnings, nil
}
