package product

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cruciblehq/xcforge/internal/headers"
	"github.com/cruciblehq/xcforge/internal/manifest"
)

// Extension of merged bundles.
const bundleExt = ".xcframework"

// One package target and the archives built for its platform.
type Product struct {
	Package      manifest.Package
	Target       manifest.Target
	Root         string   // Product root directory.
	ArchivePaths []string // Successful archives, in SDK order.
}

// Returns the package product directory.
//
// The name encodes root name, product kind and version so several versions
// can live side by side (e.g., "Products/Alpha-framework-1.0").
func (p *Product) Path() string {
	name := fmt.Sprintf("%s-%s-%s", p.Package.RootName(), p.Target.Kind, p.Package.Version)
	return filepath.Join(p.Root, name)
}

// Returns the merged bundle name.
func (p *Product) XCFrameworkName() string {
	return p.Package.RootName() + bundleExt
}

// Returns the merged bundle path.
func (p *Product) XCFrameworkPath() string {
	return filepath.Join(p.Path(), p.XCFrameworkName())
}

// Returns the merge references for every archive of this product.
//
// Frameworks contribute "-archive A -framework N". Libraries contribute
// "-archive A -library L", followed by "-headers H" when the header tree
// linked next to the archive is present and not empty.
func (p *Product) Args() []string {
	var args []string
	for _, archive := range p.ArchivePaths {
		args = append(args, "-archive", archive)
		if p.Target.Kind.IsFramework() {
			args = append(args, "-framework", p.Target.ProductName())
			continue
		}
		args = append(args, "-library", p.Target.StaticLibraryName())
		if dir := HeadersDir(archive, p.Package); hasEntries(dir) {
			args = append(args, "-headers", dir)
		}
	}
	return args
}

// Returns the header tree linked for a package next to an archive.
func HeadersDir(archivePath string, pkg manifest.Package) string {
	return filepath.Join(filepath.Dir(archivePath), pkg.RootName(), headers.HeadersDir)
}

// Copies the target's auxiliary files into the product directory.
//
// Paths keep their location relative to the package source directory. Files
// already present are left untouched. Returns the number of entries copied.
func (p *Product) CopyFiles() (int, error) {
	f := p.Target.Files
	var sources []string
	sources = append(sources, f.VendoredFrameworks...)
	sources = append(sources, f.VendoredLibraries...)
	sources = append(sources, f.Resources...)
	sources = append(sources, f.ResourceBundleFiles...)
	if f.License != "" {
		sources = append(sources, f.License)
	}
	if f.Readme != "" {
		sources = append(sources, f.Readme)
	}

	dest := p.Path()
	copied := 0
	for _, src := range sources {
		rel, err := filepath.Rel(p.Package.SourceDir, src)
		if err != nil || !filepath.IsLocal(rel) {
			rel = filepath.Base(src)
		}

		ok, err := copyPath(src, filepath.Join(dest, rel))
		if err != nil {
			return copied, err
		}
		if ok {
			copied++
		}
	}
	return copied, nil
}

// Whether dir exists and has at least one entry.
func hasEntries(dir string) bool {
	entries, err := os.ReadDir(dir)
	return err == nil && len(entries) > 0
}
