package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	toolName = "xcforge"

	// Directory holding final products under an output directory.
	productsDir = "Products"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Path to the directory for cached build state.
//
//	Linux:   $XDG_CACHE_HOME/xcforge or ~/.cache/xcforge
//	macOS:   ~/Library/Caches/xcforge
func Cache() string {
	return filepath.Join(xdg.CacheHome, toolName)
}

// Default work root for a named build.
//
// The name is usually the manifest's project base name, so that concurrent
// builds of different projects do not share archives.
//
//	Linux:   $XDG_CACHE_HOME/xcforge/work/<name>
//	macOS:   ~/Library/Caches/xcforge/work/<name>
func WorkRoot(name string) string {
	if name == "" {
		name = "default"
	}
	return filepath.Join(Cache(), "work", name)
}

// Default product root under an output directory.
func Products(output string) string {
	return filepath.Join(output, productsDir)
}
