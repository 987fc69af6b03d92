package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cruciblehq/xcforge/internal/headers"
	"github.com/cruciblehq/xcforge/internal/manifest"
	"github.com/cruciblehq/xcforge/internal/paths"
	"github.com/cruciblehq/xcforge/internal/platform"
	"github.com/cruciblehq/xcforge/internal/product"
	"github.com/cruciblehq/xcforge/internal/report"
	"github.com/cruciblehq/xcforge/internal/variant"
	"github.com/cruciblehq/xcforge/internal/xcodebuild"
)

// Runs the external build tool.
type Toolchain interface {
	Archive(ctx context.Context, opts xcodebuild.ArchiveOptions) *xcodebuild.Invocation
	CreateXCFramework(ctx context.Context, args []string, output string) *xcodebuild.Invocation
}

// Controls a build run.
type Options struct {
	Manifest      *manifest.Manifest   // Resolved packages and project.
	Platforms     []platform.Platform  // Platforms to build. Defaults to the manifest's, then the targets'.
	Configuration string               // Build configuration. Empty uses the scheme default.
	Distribution  bool                 // Whether to build libraries for distribution.
	NoClean       bool                 // Whether to keep the work root after the run.
	FailFast      bool                 // Whether the first failed archive halts the run.
	Jobs          int                  // Maximum concurrent archive invocations. Defaults to 1.
	WorkRoot      string               // Directory for intermediate archives.
	ProductRoot   string               // Directory for final products.
	LinkMode      headers.Mode         // How namespaced headers are materialized.
	Capabilities  headers.Capabilities // Link kinds the filesystem supports.
	Zip           bool                 // Whether to also zip each product directory.
}

// Returned after a build run.
type Result struct {
	Products []*product.Info // Assembled products, in manifest order.
	Report   *report.Results // Diagnostics recorded during the run.
	Halted   bool            // Whether fail-fast stopped the run.
	States   []State         // Final state of every (package, platform) pair.
}

// Whether the run succeeded.
func (r *Result) Valid(allowWarnings bool) bool {
	return r.Report.Valid(allowWarnings)
}

// Runs a build.
//
// Configuration errors, such as an unknown platform or an empty manifest, are
// returned before the build tool is invoked. Archive and merge failures are
// recorded in the result's report. Filesystem errors while archiving abort
// the run; those while assembling a package are reported and the remaining
// packages are still assembled.
func Run(ctx context.Context, tool Toolchain, opts Options) (*Result, error) {
	if err := validate(&opts); err != nil {
		return nil, err
	}

	plan, err := Plan(opts)
	if err != nil {
		return nil, err
	}

	slog.Info("building",
		"project", opts.Manifest.Project,
		"packages", len(opts.Manifest.Packages),
		"variants", len(plan.Variants()),
		"fail_fast", opts.FailFast,
		"jobs", opts.Jobs,
	)

	if err := os.MkdirAll(opts.WorkRoot, paths.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}
	if !opts.NoClean {
		defer cleanup(opts.WorkRoot)
	}

	return newOrchestrator(tool, opts, plan).build(ctx)
}

// Computes the plan a run with these options executes.
//
// Requested platforms default to those declared by the manifest. Deployment
// targets missing from the request are taken from the declarations.
func Plan(opts Options) (*variant.Plan, error) {
	if opts.Manifest == nil {
		return nil, fmt.Errorf("%w: no manifest", ErrInvalidOptions)
	}
	return variant.Compute(requestedPlatforms(opts), opts.Manifest.Packages, opts.Configuration)
}

// Applies defaults and rejects unusable options.
func validate(opts *Options) error {
	if opts.Manifest == nil {
		return fmt.Errorf("%w: no manifest", ErrInvalidOptions)
	}
	if len(opts.Manifest.Packages) == 0 {
		return manifest.ErrNoPackages
	}
	if opts.WorkRoot == "" || opts.ProductRoot == "" {
		return fmt.Errorf("%w: work root and product root are required", ErrInvalidOptions)
	}
	if opts.Jobs < 1 {
		opts.Jobs = 1
	}

	work, err := filepath.Abs(opts.WorkRoot)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	products, err := filepath.Abs(opts.ProductRoot)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	if within(products, work) {
		return fmt.Errorf("%w: product root %s lies inside work root %s", ErrInvalidOptions, products, work)
	}
	opts.WorkRoot, opts.ProductRoot = work, products
	return nil
}

// Returns the platforms to request from the planner, with deployment
// targets filled in from the manifest declarations.
func requestedPlatforms(opts Options) []platform.Platform {
	decls := make(map[string]string)
	for _, d := range opts.Manifest.Platforms {
		if name, err := platform.Canonical(d.Name); err == nil {
			decls[name] = d.DeploymentTarget
		}
	}

	requested := opts.Platforms
	if len(requested) == 0 {
		for _, d := range opts.Manifest.Platforms {
			requested = append(requested, platform.Platform{Name: d.Name, DeploymentTarget: d.DeploymentTarget})
		}
	}

	out := make([]platform.Platform, len(requested))
	for i, p := range requested {
		if p.DeploymentTarget == "" {
			if name, err := platform.Canonical(p.Name); err == nil {
				p.DeploymentTarget = decls[name]
			}
		}
		out[i] = p
	}
	return out
}

// Removes the work root.
func cleanup(dir string) {
	slog.Debug("removing work root", "dir", dir)
	if err := os.RemoveAll(dir); err != nil {
		slog.Warn("failed to remove work root", "dir", dir, "error", err)
	}
}

// Whether path is dir or lies below it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && filepath.IsLocal(rel)
}
