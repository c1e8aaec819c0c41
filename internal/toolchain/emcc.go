package toolchain

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/AndreyAkinshin/conformrun/internal/suite"
)

// DefaultCompilerFlags are passed to emcc between the source and -o.
var DefaultCompilerFlags = []string{
	"-lpthread",
	"-Wno-format-security",
	"-s", "TOTAL_MEMORY=268435456",
	"-s", "PTHREAD_POOL_SIZE=40",
}

// CompilerOptions configures the Compiler.
type CompilerOptions struct {
	Program     string   // compiler executable, "emcc" if empty
	Flags       []string // DefaultCompilerFlags if nil
	IncludeDirs []string // relative to the suite directory
	Extra       []string // appended after the output and include flags
	Env         map[string]string
	Timeout     time.Duration // 0 means no limit beyond the parent context
}

// Compiler builds test sources into HTML artifacts runnable by emrun.
type Compiler struct {
	opts CompilerOptions
}

// NewCompiler creates a Compiler with defaults applied.
func NewCompiler(opts CompilerOptions) *Compiler {
	if opts.Program == "" {
		opts.Program = "emcc"
	}
	if opts.Flags == nil {
		opts.Flags = DefaultCompilerFlags
	}
	if opts.Extra == nil {
		opts.Extra = []string{"--emrun"}
	}
	return &Compiler{opts: opts}
}

// ArtifactPath returns the artifact produced for source.
func ArtifactPath(source string) string {
	return strings.TrimSuffix(source, filepath.Ext(source)) + ".html"
}

// Command returns the compiler command line for source. Paths are relative
// to the source's directory, where the compiler is run.
func (c *Compiler) Command(source string) []string {
	base := filepath.Base(source)
	argv := []string{c.opts.Program, base}
	argv = append(argv, c.opts.Flags...)
	argv = append(argv, "-o", filepath.Base(ArtifactPath(source)))
	for _, dir := range c.opts.IncludeDirs {
		argv = append(argv, "-I"+dir)
	}
	argv = append(argv, c.opts.Extra...)
	return argv
}

// Build compiles source. The artifact path is returned even on failure so
// the executor reports the missing artifact as a failed run.
func (c *Compiler) Build(ctx context.Context, source string) (suite.Artifact, error) {
	argv := c.Command(source)
	art := suite.Artifact{Path: ArtifactPath(source), Command: argv}

	res := run(ctx, filepath.Dir(source), c.opts.Env, c.opts.Timeout, argv)
	if res.err != nil {
		detail := strings.TrimSpace(res.stderr)
		if detail == "" {
			detail = strings.TrimSpace(res.stdout)
		}
		if detail != "" {
			return art, fmt.Errorf("%s: %w\n%s", c.opts.Program, res.err, detail)
		}
		return art, fmt.Errorf("%s: %w", c.opts.Program, res.err)
	}
	return art, nil
}

var _ suite.Builder = (*Compiler)(nil)
