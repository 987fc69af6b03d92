package product

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cruciblehq/xcforge/internal/paths"
)

// Copies a file or directory tree to dest unless dest already exists.
//
// Parent directories are created on demand. Symbolic links are recreated
// rather than followed, so framework bundles keep their layout. Returns
// whether anything was copied.
func copyPath(src, dest string) (bool, error) {
	if _, err := os.Lstat(dest); err == nil {
		slog.Debug("copy skipped, destination exists", "dest", dest)
		return false, nil
	}

	info, err := os.Lstat(src)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrCopy, err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), paths.DefaultDirMode); err != nil {
		return false, fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	slog.Debug("copy", "src", src, "dest", dest, "dir", info.IsDir())

	if info.IsDir() {
		err = copyDir(src, dest)
	} else {
		err = copyEntry(src, dest, info)
	}
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrCopy, err)
	}
	return true, nil
}

// Copies a directory tree rooted at src to dest.
func copyDir(src, dest string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		return copyEntry(path, filepath.Join(dest, rel), info)
	})
}

// Copies a single file, directory or symlink entry.
func copyEntry(src, dest string, info os.FileInfo) error {
	switch {
	case info.IsDir():
		return os.MkdirAll(dest, info.Mode().Perm()|0700)

	case info.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(src)
		if err != nil {
			return err
		}
		return os.Symlink(target, dest)

	case info.Mode().IsRegular():
		return copyFile(src, dest, info.Mode().Perm())
	}

	slog.Debug("copy skipped, unsupported file type", "src", src, "mode", info.Mode().String())
	return nil
}

// Copies a regular file's contents.
func copyFile(src, dest string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
