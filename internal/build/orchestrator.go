package build

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/cruciblehq/xcforge/internal/headers"
	"github.com/cruciblehq/xcforge/internal/platform"
	"github.com/cruciblehq/xcforge/internal/product"
	"github.com/cruciblehq/xcforge/internal/report"
	"github.com/cruciblehq/xcforge/internal/variant"
)

// Extension of per-variant archives.
const archiveExt = ".xcarchive"

// Holds shared state for one build run.
type orchestrator struct {
	tool    Toolchain       // Build tool for archive and merge invocations.
	opts    Options         // Validated run options.
	plan    *variant.Plan   // Variants and members to build.
	linker  headers.Linker  // Header tree materializer.
	results *report.Results // Run report, appended to by every worker.
	tracker *tracker        // Per (package, platform) progress.
	halted  atomic.Bool     // Set once fail-fast stops the run.
}

// Creates a new [orchestrator] and registers every (package, platform) pair
// of the plan.
func newOrchestrator(tool Toolchain, opts Options, plan *variant.Plan) *orchestrator {
	o := &orchestrator{
		tool:    tool,
		opts:    opts,
		plan:    plan,
		linker:  headers.Linker{Mode: opts.LinkMode, Capabilities: opts.Capabilities},
		results: report.New(),
		tracker: newTracker(),
	}

	for _, pp := range plan.Platforms {
		sdks := make([]string, len(pp.Variants))
		for i, v := range pp.Variants {
			sdks[i] = v.SDK.Name
		}
		for _, m := range pp.Members {
			o.tracker.add(m.Package.Name, pp.Platform.Name, sdks)
		}
	}

	return o
}

// Archives every variant, then assembles every package.
//
// Assembly is skipped entirely when fail-fast halted the run.
func (o *orchestrator) build(ctx context.Context) (*Result, error) {
	if err := o.archiveAll(ctx); err != nil {
		return nil, err
	}

	res := &Result{Report: o.results, Halted: o.halted.Load()}
	if res.Halted {
		o.tracker.cancelUnfinished()
		slog.Warn("build halted, skipping assembly")
	} else {
		res.Products = o.assembleAll(ctx)
	}
	res.States = o.tracker.snapshot()

	return res, nil
}

// Archives the variants of the plan on a bounded worker pool.
//
// Variants are launched in plan order. Once fail-fast trips, no further
// variant is launched, while variants already running finish normally.
func (o *orchestrator) archiveAll(ctx context.Context) error {
	launchCtx, stopLaunching := context.WithCancel(ctx)
	defer stopLaunching()

	g := new(errgroup.Group)
	g.SetLimit(o.opts.Jobs)

launch:
	for _, pp := range o.plan.Platforms {
		for i, v := range pp.Variants {
			if launchCtx.Err() != nil {
				break launch
			}

			pp, i, v := pp, i, v
			g.Go(func() error {
				if launchCtx.Err() != nil {
					return nil
				}

				ok, err := o.archiveVariant(ctx, pp, i, v)
				if err != nil {
					stopLaunching()
					return fmt.Errorf("%w: %s: %w", ErrBuild, v, err)
				}
				if !ok && o.opts.FailFast {
					if o.halted.CompareAndSwap(false, true) {
						slog.Warn("archive failed, halting", "variant", v.String())
					}
					stopLaunching()
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrBuild, err)
	}
	return nil
}

// Merges the archives of every package, in manifest order.
//
// A package whose assembly fails on the filesystem is reported and the
// remaining packages are still assembled.
func (o *orchestrator) assembleAll(ctx context.Context) []*product.Info {
	var infos []*product.Info

	for _, pkg := range o.opts.Manifest.Packages {
		var items []*product.Product
		for _, pp := range o.plan.Platforms {
			for _, m := range pp.Members {
				if m.Package.Name != pkg.Name {
					continue
				}
				items = append(items, &product.Product{
					Package:      pkg,
					Target:       m.Target,
					Root:         o.opts.ProductRoot,
					ArchivePaths: o.tracker.archives(pkg.Name, pp.Platform.Name),
				})
			}
		}
		if len(items) == 0 {
			continue
		}

		ps := product.New(pkg, items)
		ps.Zip = o.opts.Zip

		info, err := ps.Assemble(ctx, o.tool, o.results)
		if err != nil {
			slog.Error("assembly failed", "package", pkg.Name, "error", err)
			o.results.Error(product.Topic, fmt.Sprintf("%s: %v", pkg.Name, err))
			continue
		}
		if info != nil {
			infos = append(infos, info)
		}
	}

	return infos
}

// Returns the archive path of a variant.
//
// Archives are keyed by SDK; every package of the scheme shares one.
func (o *orchestrator) archivePath(v variant.Variant) string {
	return filepath.Join(o.opts.WorkRoot, "archive", v.SDK.Name, o.opts.Manifest.SchemePrefix+archiveExt)
}

// Returns the scheme archived for a platform (e.g., "Pods-App-ios").
func (o *orchestrator) scheme(p platform.Platform) string {
	return o.opts.Manifest.SchemePrefix + "-" + p.Name
}
