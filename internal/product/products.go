package product

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"

	"github.com/cruciblehq/xcforge/internal/manifest"
	"github.com/cruciblehq/xcforge/internal/report"
	"github.com/cruciblehq/xcforge/internal/xcodebuild"
)

// Topic of entries produced while merging.
const Topic = "xcframework"

// Runs the architecture merge.
type Merger interface {
	CreateXCFramework(ctx context.Context, args []string, output string) *xcodebuild.Invocation
}

// Summary of an assembled package.
type Info struct {
	Name    string        `yaml:"name"`
	Version string        `yaml:"version"`
	Type    string        `yaml:"type"`
	Path    string        `yaml:"path"`
	Digest  digest.Digest `yaml:"digest"`
	Zip     string        `yaml:"zip,omitempty"`
}

// Every product of one package.
type Products struct {
	Package manifest.Package
	Items   []*Product
	Zip     bool // Whether to also write <product dir>.zip.
}

// Creates the product group for a package.
func New(pkg manifest.Package, items []*Product) *Products {
	return &Products{Package: pkg, Items: items}
}

// Returns the number of archive references the merge would receive.
func (ps *Products) Refs() int {
	n := 0
	for _, p := range ps.Items {
		n += len(p.ArchivePaths)
	}
	return n
}

// Returns the merge arguments for every item, in item order.
func (ps *Products) Args() []string {
	var args []string
	for _, p := range ps.Items {
		args = append(args, p.Args()...)
	}
	return args
}

// Returns the product directory, or "" when there are no items.
func (ps *Products) Path() string {
	if len(ps.Items) == 0 {
		return ""
	}
	return ps.Items[0].Path()
}

// Builds the package product.
//
// Returns nil without touching the filesystem when no archive reached this
// package. A failed merge is reported to results and also returns nil.
// Filesystem failures are returned as errors.
func (ps *Products) Assemble(ctx context.Context, merger Merger, results *report.Results) (*Info, error) {
	if ps.Refs() == 0 {
		slog.Info("no archives to merge, skipping", "package", ps.Package.Name)
		return nil, nil
	}

	first := ps.Items[0]
	dir := first.Path()
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	slog.Info("creating xcframework", "package", ps.Package.Name, "archives", ps.Refs())

	inv := merger.CreateXCFramework(ctx, ps.Args(), first.XCFrameworkPath())
	results.MergeWarnings(inv.Results)
	if inv.Failed() {
		for _, e := range inv.Results.Entries() {
			slog.Error(e.Message, "package", ps.Package.Name, "severity", e.Severity.String())
		}
		results.Error(Topic, fmt.Sprintf("%s: failed to create %s (exit code %d)", ps.Package.Name, first.XCFrameworkName(), inv.ExitCode))
		return nil, nil
	}

	for _, p := range ps.Items {
		n, err := p.CopyFiles()
		if err != nil {
			return nil, err
		}
		if n > 0 {
			slog.Debug("copied auxiliary files", "target", p.Target.Label, "count", n)
		}
	}

	sum, err := Digest(dir)
	if err != nil {
		return nil, err
	}

	info := &Info{
		Name:    first.XCFrameworkName(),
		Version: ps.Package.Version,
		Type:    string(first.Target.Kind),
		Path:    dir,
		Digest:  sum,
	}

	if ps.Zip {
		dest := filepath.Join(filepath.Dir(dir), filepath.Base(dir)+".zip")
		if err := Zip(dir, dest); err != nil {
			return nil, err
		}
		info.Zip = dest
	}

	slog.Info("product ready", "name", info.Name, "version", info.Version, "type", info.Type, "path", info.Path)
	return info, nil
}
