package product

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/cruciblehq/xcforge/internal/paths"
)

// Timestamp stamped on every archive entry so output is reproducible.
var zipEpoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// Writes the contents of dir to a zip archive at dest, replacing any
// existing archive.
//
// Entry names are relative to dir. Symbolic links are stored as links.
func Zip(dir, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), paths.DefaultDirMode); err != nil {
		return fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}
	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, paths.DefaultFileMode)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrZip, err)
	}

	zw := zip.NewWriter(f)
	walkErr := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		return writeZipEntry(zw, path, filepath.ToSlash(rel), d)
	})

	closeErr := zw.Close()
	if err := f.Close(); err != nil && closeErr == nil {
		closeErr = err
	}

	if walkErr != nil {
		return fmt.Errorf("%w: %w", ErrZip, walkErr)
	}
	if closeErr != nil {
		return fmt.Errorf("%w: %w", ErrZip, closeErr)
	}
	return nil
}

// Writes a single file, directory or symlink entry to a zip writer.
func writeZipEntry(zw *zip.Writer, path, name string, d os.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Modified = zipEpoch

	switch {
	case info.IsDir():
		header.Name += "/"
		header.Method = zip.Store
		_, err := zw.CreateHeader(header)
		return err

	case info.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(path)
		if err != nil {
			return err
		}
		header.Method = zip.Store
		w, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, target)
		return err
	}

	header.Method = zip.Deflate
	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	_, err = io.Copy(w, src)
	return err
}
