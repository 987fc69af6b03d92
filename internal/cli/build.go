package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cruciblehq/xcforge/internal/build"
	"github.com/cruciblehq/xcforge/internal/headers"
	"github.com/cruciblehq/xcforge/internal/manifest"
	"github.com/cruciblehq/xcforge/internal/paths"
	"github.com/cruciblehq/xcforge/internal/platform"
	"github.com/cruciblehq/xcforge/internal/report"
	"github.com/cruciblehq/xcforge/internal/xcodebuild"
)

// Flags shared by commands that read a manifest.
type ManifestFlags struct {
	Manifest      string   `short:"m" default:"xcforge.hcl" type:"path" help:"Manifest describing the project and its packages." placeholder:"FILE"`
	Platforms     []string `short:"p" sep:"," help:"Platforms to build (ios, osx, tvos, watchos). Defaults to the manifest's." placeholder:"LIST"`
	Configuration string   `short:"c" help:"Build configuration. Defaults to the scheme's." placeholder:"NAME"`
}

// Loads the manifest and converts the requested platform names.
func (f *ManifestFlags) load() (*manifest.Manifest, []platform.Platform, error) {
	m, err := manifest.Load(f.Manifest)
	if err != nil {
		return nil, nil, err
	}

	var platforms []platform.Platform
	for _, name := range f.Platforms {
		if name = strings.TrimSpace(name); name != "" {
			platforms = append(platforms, platform.Platform{Name: name})
		}
	}
	return m, platforms, nil
}

// Represents the 'xcforge build' command.
type BuildCmd struct {
	ManifestFlags `embed:""`

	Output        string        `short:"o" default:"." type:"path" help:"Directory receiving the Products directory." placeholder:"DIR"`
	WorkDir       string        `short:"w" type:"path" help:"Directory for intermediate archives. Defaults to a per-project cache directory." placeholder:"DIR"`
	NoClean       bool          `help:"Keep intermediate archives after the build."`
	FailFast      bool          `help:"Stop launching archives after the first failure."`
	Distribution  bool          `name:"build-library-for-distribution" help:"Build libraries for distribution."`
	Jobs          int           `short:"j" default:"1" help:"Maximum concurrent archive invocations." placeholder:"N"`
	Timeout       time.Duration `help:"Timeout for each build tool invocation. Zero disables it." placeholder:"DURATION"`
	Link          string        `default:"symlink" enum:"symlink,hardlink,copy" help:"How namespaced headers are materialized (${enum})."`
	AllowWarnings bool          `default:"true" negatable:"" help:"Treat warnings as success. Use --no-allow-warnings to fail on warnings."`
	Zip           bool          `help:"Also write a zip archive of each product directory."`
	Xcodebuild    string        `default:"xcodebuild" help:"Build tool executable." placeholder:"PATH"`
}

// Executes the build command.
//
// Loads the manifest, runs the build, and prints the report to standard error
// and the product summary to standard output. Returns [build.ErrBuild] when
// the report is not valid.
func (c *BuildCmd) Run(ctx context.Context) error {
	m, platforms, err := c.load()
	if err != nil {
		return err
	}

	mode, err := headers.ParseMode(c.Link)
	if err != nil {
		return err
	}

	projectDir := filepath.Dir(m.Project)
	opts := build.Options{
		Manifest:      m,
		Platforms:     platforms,
		Configuration: c.Configuration,
		Distribution:  c.Distribution,
		NoClean:       c.NoClean,
		FailFast:      c.FailFast,
		Jobs:          c.Jobs,
		WorkRoot:      c.workRoot(m),
		ProductRoot:   paths.Products(c.Output),
		LinkMode:      mode,
		Capabilities:  headers.HostCapabilities(),
		Zip:           c.Zip,
	}

	executor := &xcodebuild.CommandExecutor{
		Path:    c.Xcodebuild,
		Dir:     projectDir,
		Timeout: c.Timeout,
	}

	res, err := build.Run(ctx, xcodebuild.New(executor, projectDir), opts)
	if err != nil {
		return err
	}

	if res.Halted {
		slog.Warn("build halted after the first failed archive")
	}

	res.Report.Print(os.Stderr)

	if len(res.Products) > 0 {
		if err := report.PrintYAML(os.Stdout, res.Products); err != nil {
			return err
		}
	}

	if !res.Valid(c.AllowWarnings) {
		return fmt.Errorf("%w: %d errors, %d warnings", build.ErrBuild,
			res.Report.Count(report.Error), res.Report.Count(report.Warning))
	}

	slog.Info("build finished", "products", len(res.Products))
	return nil
}

// Returns the work root, defaulting to a cache directory named after the
// project.
func (c *BuildCmd) workRoot(m *manifest.Manifest) string {
	if c.WorkDir != "" {
		return c.WorkDir
	}
	name := strings.TrimSuffix(filepath.Base(m.Project), filepath.Ext(m.Project))
	return paths.WorkRoot(name)
}
