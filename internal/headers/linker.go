package headers

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cruciblehq/xcforge/internal/manifest"
	"github.com/cruciblehq/xcforge/internal/paths"
)

const (

	// Topic of report entries produced while linking headers.
	Topic = "headers"

	// Directory holding the header tree under a variant destination.
	HeadersDir = "Headers"

	// Directory under the package sources holding generated Swift
	// compatibility headers.
	CompatDir = "Copy-Library-Swift-Headers"
)

// Materializes header trees.
type Linker struct {
	Mode         Mode         // Requested materialization mode.
	Capabilities Capabilities // What the destination filesystem supports.
}

// Input of one link operation.
type Request struct {
	RootName  string                   // Package root name, used for compatibility headers.
	SourceDir string                   // Package source directory.
	UsesSwift bool                     // Whether compatibility headers are expected.
	Mappings  []manifest.HeaderMapping // Private then public mappings.
	Dest      string                   // Variant destination; headers go to Dest/Headers.
}

// Outcome of one link operation.
type Result struct {
	Dir   string   // Absolute headers root.
	Files []string // Placed files relative to Dir, sorted.
}

// Rebuilds the header tree for one variant.
//
// Any existing tree at Dest/Headers is removed first. Directories are only
// created for namespaces that receive files.
func (l Linker) Link(req Request) (*Result, error) {
	root := filepath.Join(req.Dest, HeadersDir)
	if err := os.RemoveAll(root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	st := newStore(root)
	mode := l.Capabilities.Effective(l.Mode)

	for _, m := range req.Mappings {
		if err := l.linkMapping(st, mode, m); err != nil {
			return nil, err
		}
	}

	if err := linkCompat(st, req); err != nil {
		return nil, err
	}

	files := st.files()
	slog.Debug("headers linked", "dest", root, "files", len(files), "mode", mode.String())
	return &Result{Dir: root, Files: files}, nil
}

// Places one mapping: flat copies first, then the namespaced entries.
func (l Linker) linkMapping(st *store, mode Mode, m manifest.HeaderMapping) error {
	if len(m.Files) == 0 {
		return nil
	}

	ns := filepath.Clean(m.Namespace)
	if ns != "." && !filepath.IsLocal(ns) {
		return fmt.Errorf("%w: %q", ErrInvalidNamespace, m.Namespace)
	}

	if err := os.MkdirAll(st.root, paths.DefaultDirMode); err != nil {
		return fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	for _, src := range m.Files {
		name := filepath.Base(src)
		write, err := st.claim(name, src)
		if err != nil {
			return err
		}
		if write {
			if err := copyFile(src, filepath.Join(st.root, name)); err != nil {
				return fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
			}
		}
	}

	if ns == "." {
		return nil
	}

	nsDir := filepath.Join(st.root, ns)
	if err := os.MkdirAll(nsDir, paths.DefaultDirMode); err != nil {
		return fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	for _, src := range m.Files {
		name := filepath.Base(src)
		write, err := st.claim(filepath.Join(ns, name), src)
		if err != nil {
			return err
		}
		if write {
			if err := place(mode, filepath.Join(st.root, name), filepath.Join(nsDir, name)); err != nil {
				return fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
			}
		}
	}

	return nil
}

// Copies generated compatibility headers into the root-named directory.
func linkCompat(st *store, req Request) error {
	dir := filepath.Join(req.SourceDir, CompatDir)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		if req.UsesSwift {
			slog.Debug("no compatibility headers", "dir", dir)
		}
		return nil
	}

	files, err := listFiles(dir)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	for _, f := range files {
		src := filepath.Join(dir, f)
		rel := filepath.Join(req.RootName, f)
		write, err := st.claim(rel, src)
		if err != nil {
			return err
		}
		if !write {
			continue
		}

		dest := filepath.Join(st.root, rel)
		if err := os.MkdirAll(filepath.Dir(dest), paths.DefaultDirMode); err != nil {
			return fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
		}
		if err := copyFile(src, dest); err != nil {
			return fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
		}
	}

	return nil
}

// Materializes flat at dest using mode, degrading to a copy when linking
// fails.
func place(mode Mode, flat, dest string) error {
	switch mode {
	case Symlink:
		target, err := filepath.Rel(filepath.Dir(dest), flat)
		if err == nil {
			if err = os.Symlink(target, dest); err == nil {
				return nil
			}
		}
		slog.Debug("symlink failed, trying hard link", "dest", dest, "error", err)
		fallthrough
	case Hardlink:
		err := os.Link(flat, dest)
		if err == nil {
			return nil
		}
		slog.Debug("hard link failed, copying", "dest", dest, "error", err)
	}
	return copyFile(flat, dest)
}
