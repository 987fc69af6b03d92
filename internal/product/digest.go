package product

import (
	_ "crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"
)

// Computes a content digest of a directory tree.
//
// Entries are visited in lexical order. Each contributes its slash-separated
// relative path, its type, and its contents (or link target), so two trees
// with the same digest are byte-identical. Modification times are ignored.
func Digest(dir string) (digest.Digest, error) {
	d := digest.Canonical.Digester()
	h := d.Hash()

	err := filepath.WalkDir(dir, func(path string, e os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		switch {
		case e.IsDir():
			fmt.Fprintf(h, "d %s\x00", rel)

		case e.Type()&os.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(h, "l %s\x00%s\x00", rel, target)

		default:
			info, err := e.Info()
			if err != nil {
				return err
			}
			fmt.Fprintf(h, "f %s\x00%o\x00%d\x00", rel, info.Mode().Perm(), info.Size())

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			_, err = io.Copy(h, f)
			f.Close()
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	return d.Digest(), nil
}
