package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cruciblehq/xcforge/internal/headers"
	"github.com/cruciblehq/xcforge/internal/paths"
	"github.com/cruciblehq/xcforge/internal/product"
	"github.com/cruciblehq/xcforge/internal/report"
	"github.com/cruciblehq/xcforge/internal/variant"
	"github.com/cruciblehq/xcforge/internal/xcodebuild"
)

// Archives one variant and prepares its library targets for merging.
//
// Returns false when the archive failed or a member's headers could not be
// linked; both are recorded in the run report. Returns an error only for
// filesystem failures.
func (o *orchestrator) archiveVariant(ctx context.Context, pp variant.PlatformPlan, index int, v variant.Variant) (bool, error) {
	for _, m := range pp.Members {
		o.tracker.begin(m.Package.Name, pp.Platform.Name)
	}

	path := o.archivePath(v)
	if err := os.RemoveAll(path); err != nil {
		return false, fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), paths.DefaultDirMode); err != nil {
		return false, fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	scheme := o.scheme(pp.Platform)
	slog.Info("archiving", "platform", pp.Platform.String(), "sdk", v.SDK.Name, "scheme", scheme)

	inv := o.tool.Archive(ctx, xcodebuild.ArchiveOptions{
		Flags:         v.Flags(),
		Project:       o.opts.Manifest.Project,
		Scheme:        scheme,
		ArchivePath:   path,
		Configuration: v.Configuration,
		Distribution:  o.opts.Distribution,
	})
	o.results.MergeWarnings(inv.Results)

	if inv.Failed() {
		for _, e := range inv.Results.Entries() {
			if e.Severity == report.Error {
				slog.Error(e.Message, "variant", v.String())
			}
		}
		o.results.Error(xcodebuild.Topic, fmt.Sprintf("%s: archive failed for %s (exit code %d)", scheme, v.SDK.Name, inv.ExitCode))
		for _, m := range pp.Members {
			o.tracker.fail(m.Package.Name, pp.Platform.Name, index)
		}
		return false, nil
	}

	slog.Info("archived", "sdk", v.SDK.Name, "path", path)

	ok := true
	for _, m := range pp.Members {
		err := o.prepareMember(path, m)
		switch {
		case err == nil:
			o.tracker.succeed(m.Package.Name, pp.Platform.Name, index, path)
		case errors.Is(err, headers.ErrHeaderCollision), errors.Is(err, headers.ErrInvalidNamespace):
			o.results.Error(headers.Topic, fmt.Sprintf("%s (%s): %v", m.Target.Label, v.SDK.Name, err))
			o.tracker.fail(m.Package.Name, pp.Platform.Name, index)
			ok = false
		default:
			return false, err
		}
	}

	return ok, nil
}

// Renames the library of a member and links its headers next to the
// archive. Framework targets carry their headers inside the framework and
// need neither.
func (o *orchestrator) prepareMember(archivePath string, m variant.Member) error {
	if !m.Target.Kind.IsLibrary() {
		return nil
	}

	if _, err := renameLibrary(archivePath, m.Target); err != nil {
		return err
	}

	_, err := o.linker.Link(headers.Request{
		RootName:  m.Package.RootName(),
		SourceDir: m.Package.SourceDir,
		UsesSwift: m.Target.UsesSwift,
		Mappings:  m.Target.HeaderMappings(),
		Dest:      filepath.Dir(product.HeadersDir(archivePath, m.Package)),
	})
	return err
}
