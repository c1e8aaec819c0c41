package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	cerrors "github.com/AndreyAkinshin/conformrun/internal/errors"
	"github.com/AndreyAkinshin/conformrun/internal/suite"
)

// Selection is the set of suites chosen for a run.
type Selection struct {
	Suites   []suite.Suite
	Excluded []string // suite names dropped by the denylist
}

// Excluded reports the first denylist entry that is a substring of name.
func Excluded(name string, deny []string) (string, bool) {
	for _, d := range deny {
		if strings.Contains(name, d) {
			return d, true
		}
	}
	return "", false
}

// DiscoverTests lists the test sources in dir matching pattern, sorted.
func DiscoverTests(dir, pattern string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var tests []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ok, err := filepath.Match(pattern, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("test pattern %q: %w", pattern, err)
		}
		if ok {
			tests = append(tests, entry.Name())
		}
	}
	sort.Strings(tests)
	return tests, nil
}

// Discover finds every suite under the suites root: directories matching
// the suite pattern that contain at least one test and are not excluded.
func (p *Project) Discover() (*Selection, error) {
	root := p.SuitesRoot()
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, cerrors.Wrap(err, "failed to list suites")
	}

	cfg := p.Config.Suites
	sel := &Selection{}
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if ok, _ := filepath.Match(cfg.Pattern, name); !ok {
			continue
		}
		if _, ok := Excluded(name, cfg.Exclude); ok {
			sel.Excluded = append(sel.Excluded, name)
			continue
		}

		dir := filepath.Join(root, name)
		tests, err := DiscoverTests(dir, cfg.TestPattern)
		if err != nil {
			return nil, cerrors.Wrap(err, fmt.Sprintf("failed to list tests of %s", name))
		}
		if len(tests) == 0 {
			continue
		}
		sel.Suites = append(sel.Suites, suite.Suite{Name: name, Dir: dir, Tests: tests})
	}
	return sel, nil
}

// Select resolves explicit selectors. A selector is either a suite name or
// "suite/test.c" for a single test. Selectors bypass the denylist; tests
// of the same suite are merged in selector order.
func (p *Project) Select(selectors []string) (*Selection, error) {
	root := p.SuitesRoot()
	sel := &Selection{}
	index := make(map[string]int)

	for _, arg := range selectors {
		name, test, _ := strings.Cut(strings.Trim(arg, "/"), "/")
		dir := filepath.Join(root, name)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return nil, cerrors.NotFound("suite", name)
		}

		var tests []string
		if test != "" {
			if _, err := os.Stat(filepath.Join(dir, test)); err != nil {
				return nil, cerrors.NotFound("test", name+"/"+test)
			}
			tests = []string{test}
		} else {
			found, err := DiscoverTests(dir, p.Config.Suites.TestPattern)
			if err != nil {
				return nil, cerrors.Wrap(err, fmt.Sprintf("failed to list tests of %s", name))
			}
			tests = found
		}

		if i, ok := index[name]; ok {
			sel.Suites[i].Tests = appendMissing(sel.Suites[i].Tests, tests)
			continue
		}
		index[name] = len(sel.Suites)
		sel.Suites = append(sel.Suites, suite.Suite{Name: name, Dir: dir, Tests: tests})
	}
	return sel, nil
}

func appendMissing(dst, src []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, s := range dst {
		seen[s] = true
	}
	for _, s := range src {
		if !seen[s] {
			dst = append(dst, s)
			seen[s] = true
		}
	}
	return dst
}
