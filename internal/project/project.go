package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AndreyAkinshin/conformrun/internal/config"
	cerrors "github.com/AndreyAkinshin/conformrun/internal/errors"
)

// Project is a loaded configuration anchored at a root directory.
type Project struct {
	Root       string
	ConfigPath string // empty when running on defaults
	Config     *config.Config
	Warnings   []string
}

// Load finds the configuration by walking up from startDir. Without one,
// the defaults are used and startDir becomes the root.
func Load(startDir string) (*Project, error) {
	root, err := FindRootFrom(startDir)
	if errors.Is(err, ErrNoProjectRoot) {
		abs, absErr := filepath.Abs(startDir)
		if absErr != nil {
			return nil, absErr
		}
		return &Project{Root: abs, Config: config.Default()}, nil
	}
	if err != nil {
		return nil, err
	}
	return LoadFrom(root)
}

// LoadFrom loads the configuration of the project rooted at root.
func LoadFrom(root string) (*Project, error) {
	path := filepath.Join(root, ConfigDirName, ConfigFileName)
	cfg, warnings, err := config.LoadAndValidate(path)
	if err != nil {
		return nil, cerrors.WrapConfig(err, "failed to load configuration")
	}
	return &Project{Root: root, ConfigPath: path, Config: cfg, Warnings: warnings}, nil
}

// Resolve returns p relative to the project root unless it is absolute.
// The empty path stays empty.
func (p *Project) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Root, path)
}

// SuitesRoot returns the absolute directory containing the suites.
func (p *Project) SuitesRoot() string {
	return p.Resolve(p.Config.Suites.Root)
}

// CheckSuitesRoot verifies that the suites root is an existing directory.
func (p *Project) CheckSuitesRoot() error {
	dir := p.SuitesRoot()
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return cerrors.NotFound("suites directory", dir)
	}
	if err != nil {
		return fmt.Errorf("cannot access suites directory %q: %w", dir, err)
	}
	if !info.IsDir() {
		return cerrors.Configf("suites root %q is not a directory", dir)
	}
	return nil
}
