package headers

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// Tracks which source file owns each destination path of one header tree.
type store struct {
	root    string            // Absolute headers root.
	sources map[string]string // Destination path relative to root, mapped to its source.
}

func newStore(root string) *store {
	return &store{root: root, sources: make(map[string]string)}
}

// Claims rel for src.
//
// Returns false when rel is already owned by src or by a file with identical
// contents, in which case nothing needs to be written. Returns
// [ErrHeaderCollision] when a different file already owns rel.
func (s *store) claim(rel, src string) (bool, error) {
	owner, ok := s.sources[rel]
	if !ok {
		s.sources[rel] = src
		return true, nil
	}
	if owner == src {
		return false, nil
	}

	same, err := sameContents(owner, src)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}
	if !same {
		return false, fmt.Errorf("%w: %s provided by both %s and %s", ErrHeaderCollision, rel, owner, src)
	}
	return false, nil
}

// Returns the claimed destination paths, sorted.
func (s *store) files() []string {
	out := make([]string, 0, len(s.sources))
	for rel := range s.sources {
		out = append(out, rel)
	}
	sort.Strings(out)
	return out
}

// Compares two files byte by byte.
func sameContents(a, b string) (bool, error) {
	ia, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	ib, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	if ia.Size() != ib.Size() {
		return false, nil
	}

	fa, err := os.ReadFile(a)
	if err != nil {
		return false, err
	}
	fb, err := os.ReadFile(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(fa, fb), nil
}

// Copies a regular file, replacing any existing destination.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Returns the regular files under dir, relative to dir, in lexical order.
func listFiles(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		out = append(out, rel)
		return nil
	})
	return out, err
}
