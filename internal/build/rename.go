package build

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cruciblehq/xcforge/internal/manifest"
)

// Location of static libraries inside an archive.
const archiveLibDir = "Products/usr/local/lib"

// Strips the scope suffix from a target's built static library.
//
// Nothing happens unless the target is a library, its label ends with its
// scope suffix, and the built library exists. Returns whether the file was
// renamed.
func renameLibrary(archivePath string, t manifest.Target) (bool, error) {
	if !t.Kind.IsLibrary() || t.ScopeSuffix == "" || !strings.HasSuffix(t.Label, t.ScopeSuffix) {
		return false, nil
	}

	dir := filepath.Join(archivePath, archiveLibDir)
	from := filepath.Join(dir, t.BuiltLibraryName())
	to := filepath.Join(dir, t.StaticLibraryName())
	if from == to {
		return false, nil
	}

	if _, err := os.Stat(from); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	if err := os.Rename(from, to); err != nil {
		return false, fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	slog.Debug("renamed library", "from", filepath.Base(from), "to", filepath.Base(to))
	return true, nil
}
