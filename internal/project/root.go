// Package project locates the conformrun configuration and discovers the
// suites it describes.
package project

import (
	"errors"
	"os"
	"path/filepath"
)

// ConfigDirName is the name of the configuration directory.
const ConfigDirName = ".conformrun"

// ConfigFileName is the name of the configuration file.
const ConfigFileName = "config.json"

// ErrNoProjectRoot is returned when .conformrun/config.json is not found.
var ErrNoProjectRoot = errors.New(".conformrun/config.json not found in this directory or any parent")

// FindRootFrom walks up from startDir until it finds .conformrun/config.json.
func FindRootFrom(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, ConfigDirName, ConfigFileName)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoProjectRoot
		}
		dir = parent
	}
}
