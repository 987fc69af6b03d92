package manifest

import (
	"slices"
	"strings"
)

// Default prefix for scheme and archive names.
const DefaultSchemePrefix = "Pods-App"

// Kind of product a target builds.
type ProductKind string

const (
	StaticLibrary  ProductKind = "static_library"
	Framework      ProductKind = "framework"
	DynamicLibrary ProductKind = "dynamic_library"
	Bundle         ProductKind = "bundle"
)

// Whether the kind is one of the known product kinds.
func (k ProductKind) Valid() bool {
	switch k {
	case StaticLibrary, Framework, DynamicLibrary, Bundle:
		return true
	}
	return false
}

// Whether products of this kind are merged as frameworks.
func (k ProductKind) IsFramework() bool {
	return k == Framework
}

// Whether products of this kind are merged as libraries with loose headers.
func (k ProductKind) IsLibrary() bool {
	return k == StaticLibrary || k == DynamicLibrary
}

// Headers placed under one namespace directory.
type HeaderMapping struct {
	Namespace string   // Directory relative to the headers root (e.g., "Alpha").
	Files     []string // Absolute source header paths, in declaration order.
}

// Auxiliary files copied into the final product directory.
type Files struct {
	VendoredFrameworks  []string // Prebuilt frameworks shipped with the package.
	VendoredLibraries   []string // Prebuilt static libraries shipped with the package.
	Resources           []string // Declared resources.
	ResourceBundleFiles []string // Files of declared resource bundles.
	License             string   // License file, may be empty.
	Readme              string   // Readme file, may be empty.
}

// One package built for one platform.
type Target struct {
	Label          string          // Unique build identifier (e.g., "Alpha-iOS").
	Platform       string          // Platform identifier as written in the manifest.
	Kind           ProductKind     // Product kind.
	ScopeSuffix    string          // Suffix distinguishing per-platform variants of one label.
	ModuleName     string          // Module name. Defaults to a sanitized package root name.
	UsesSwift      bool            // Whether Swift compatibility headers are produced.
	PublicHeaders  []HeaderMapping // Public header mappings.
	PrivateHeaders []HeaderMapping // Private (implementation) header mappings.
	Files          Files           // Auxiliary files.
}

// Returns the label without its scope suffix.
func (t Target) UnscopedLabel() string {
	return RemoveScopeSuffix(t.Label, t.ScopeSuffix)
}

// Returns the file name of the static library the build tool produces.
func (t Target) BuiltLibraryName() string {
	return "lib" + t.Label + ".a"
}

// Returns the file name of the static library once its scope suffix has
// been stripped.
func (t Target) StaticLibraryName() string {
	return "lib" + t.UnscopedLabel() + ".a"
}

// Returns the product name referenced when merging architectures.
func (t Target) ProductName() string {
	if t.Kind.IsFramework() {
		return t.ModuleName + ".framework"
	}
	return t.StaticLibraryName()
}

// Returns the private mappings followed by the public ones, with exact
// duplicates removed.
func (t Target) HeaderMappings() []HeaderMapping {
	var out []HeaderMapping
	for _, m := range append(append([]HeaderMapping(nil), t.PrivateHeaders...), t.PublicHeaders...) {
		if containsMapping(out, m) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// A resolved package.
type Package struct {
	Name      string   // Package name, possibly with a subspec path (e.g., "Alpha/Core").
	Version   string   // Package version.
	SourceDir string   // Absolute directory holding the package sources.
	Targets   []Target // One target per platform the package builds for.
}

// Returns the package name up to the first slash.
func (p Package) RootName() string {
	root, _, _ := strings.Cut(p.Name, "/")
	return root
}

// Declared platform with its deployment target.
type PlatformDecl struct {
	Name             string
	DeploymentTarget string
}

// The loaded input of a build.
type Manifest struct {
	Path         string         // File the manifest was loaded from.
	Project      string         // Absolute path of the project the build tool archives.
	SchemePrefix string         // Prefix of per-platform scheme names.
	Platforms    []PlatformDecl // Declared platforms, in declaration order.
	Packages     []Package      // Resolved packages, in declaration order.
}

// Returns the package with the given name.
func (m *Manifest) Package(name string) (Package, bool) {
	for _, p := range m.Packages {
		if p.Name == name {
			return p, true
		}
	}
	return Package{}, false
}

// Strips a target scope suffix from a label.
//
// Suffixes beginning with a dot are removed as-is; any other suffix is
// removed together with its separating dash.
func RemoveScopeSuffix(label, suffix string) string {
	if suffix == "" || strings.HasPrefix(suffix, ".") {
		return strings.TrimSuffix(label, suffix)
	}
	return strings.TrimSuffix(label, "-"+suffix)
}

// Derives a module name from a package root name by replacing characters
// that are not valid in an identifier.
func moduleName(root string) string {
	var b strings.Builder
	for i, r := range root {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func containsMapping(list []HeaderMapping, m HeaderMapping) bool {
	return slices.ContainsFunc(list, func(x HeaderMapping) bool {
		return x.Namespace == m.Namespace && slices.Equal(x.Files, m.Files)
	})
}
