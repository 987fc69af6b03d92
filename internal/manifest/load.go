package manifest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/cruciblehq/xcforge/internal/platform"
)

const (
	visibilityPublic  = "public"
	visibilityPrivate = "private"
)

// Top-level blocks and attributes of a manifest file.
type fileRoot struct {
	Project      string           `hcl:"project"`
	SchemePrefix string           `hcl:"scheme_prefix,optional"`
	Platforms    []*platformBlock `hcl:"platform,block"`
	Packages     []*packageBlock  `hcl:"package,block"`
}

type platformBlock struct {
	Name             string `hcl:"name,label"`
	DeploymentTarget string `hcl:"deployment_target,optional"`
}

type packageBlock struct {
	Name      string         `hcl:"name,label"`
	Version   string         `hcl:"version"`
	SourceDir string         `hcl:"source_dir"`
	Targets   []*targetBlock `hcl:"target,block"`
}

type targetBlock struct {
	Label               string          `hcl:"label,label"`
	Platform            string          `hcl:"platform"`
	ProductKind         string          `hcl:"product_kind"`
	ScopeSuffix         string          `hcl:"scope_suffix,optional"`
	ModuleName          string          `hcl:"module_name,optional"`
	UsesSwift           bool            `hcl:"uses_swift,optional"`
	Headers             []*headersBlock `hcl:"headers,block"`
	VendoredFrameworks  []string        `hcl:"vendored_frameworks,optional"`
	VendoredLibraries   []string        `hcl:"vendored_libraries,optional"`
	Resources           []string        `hcl:"resources,optional"`
	ResourceBundleFiles []string        `hcl:"resource_bundle_files,optional"`
	License             string          `hcl:"license,optional"`
	Readme              string          `hcl:"readme,optional"`
}

type headersBlock struct {
	Visibility string   `hcl:"visibility,label"`
	Namespace  string   `hcl:"namespace"`
	Files      []string `hcl:"files"`
}

// Loads a manifest from an HCL file, evaluating env.* against the process
// environment.
func Load(path string) (*Manifest, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	return Decode(src, path, environ())
}

// Decodes manifest source.
//
// The filename is used for diagnostics and as the base for relative paths.
// The environ map is exposed to expressions as the env object.
func Decode(src []byte, filename string, environ map[string]string) (*Manifest, error) {
	abs, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, abs)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(file.Body, evalContext(environ), &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, diags)
	}

	m, err := translate(&root, filepath.Dir(abs))
	if err != nil {
		return nil, err
	}
	m.Path = abs

	slog.Debug("manifest loaded", "path", abs, "packages", len(m.Packages), "platforms", len(m.Platforms))
	return m, nil
}

// Builds the evaluation context exposing environment variables as env.NAME.
func evalContext(environ map[string]string) *hcl.EvalContext {
	env := cty.EmptyObjectVal
	if len(environ) > 0 {
		vals := make(map[string]cty.Value, len(environ))
		for k, v := range environ {
			vals[k] = cty.StringVal(v)
		}
		env = cty.ObjectVal(vals)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": env},
	}
}

// Returns the process environment as a map.
func environ() map[string]string {
	env := make(map[string]string)
	for _, entry := range os.Environ() {
		if k, v, ok := strings.Cut(entry, "="); ok && k != "" {
			env[k] = v
		}
	}
	return env
}

// Converts decoded blocks into the manifest model, resolving relative paths
// against dir and validating the result.
func translate(root *fileRoot, dir string) (*Manifest, error) {
	if strings.TrimSpace(root.Project) == "" {
		return nil, fmt.Errorf("%w: project must not be empty", ErrInvalidManifest)
	}

	m := &Manifest{
		Project:      resolve(dir, root.Project),
		SchemePrefix: root.SchemePrefix,
	}
	if m.SchemePrefix == "" {
		m.SchemePrefix = DefaultSchemePrefix
	}

	for _, p := range root.Platforms {
		m.Platforms = append(m.Platforms, PlatformDecl{
			Name:             strings.ToLower(p.Name),
			DeploymentTarget: p.DeploymentTarget,
		})
	}

	labels := make(map[string]string)
	roots := make(map[string]string)
	for _, pb := range root.Packages {
		pkg, err := translatePackage(pb, dir)
		if err != nil {
			return nil, err
		}
		if owner, ok := roots[pkg.RootName()]; ok {
			return nil, fmt.Errorf("%w: packages %q and %q share root name %q", ErrInvalidManifest, owner, pkg.Name, pkg.RootName())
		}
		roots[pkg.RootName()] = pkg.Name
		for _, t := range pkg.Targets {
			if owner, ok := labels[t.Label]; ok {
				return nil, fmt.Errorf("%w: target %q declared by both %q and %q", ErrInvalidManifest, t.Label, owner, pkg.Name)
			}
			labels[t.Label] = pkg.Name
		}
		m.Packages = append(m.Packages, pkg)
	}

	if len(m.Packages) == 0 {
		return nil, ErrNoPackages
	}

	return m, nil
}

func translatePackage(pb *packageBlock, dir string) (Package, error) {
	if strings.TrimSpace(pb.Name) == "" {
		return Package{}, fmt.Errorf("%w: package name must not be empty", ErrInvalidManifest)
	}
	if strings.TrimSpace(pb.Version) == "" {
		return Package{}, fmt.Errorf("%w: package %q: version must not be empty", ErrInvalidManifest, pb.Name)
	}
	if len(pb.Targets) == 0 {
		return Package{}, fmt.Errorf("%w: package %q declares no targets", ErrInvalidManifest, pb.Name)
	}

	pkg := Package{
		Name:      pb.Name,
		Version:   pb.Version,
		SourceDir: resolve(dir, pb.SourceDir),
	}

	platforms := make(map[string]string)
	for _, tb := range pb.Targets {
		t, err := translateTarget(tb, pkg, dir)
		if err != nil {
			return Package{}, fmt.Errorf("package %q: %w", pb.Name, err)
		}
		key := platformKey(t.Platform)
		if owner, ok := platforms[key]; ok {
			return Package{}, fmt.Errorf("%w: package %q: targets %q and %q both build for %q",
				ErrInvalidManifest, pb.Name, owner, t.Label, t.Platform)
		}
		platforms[key] = t.Label
		pkg.Targets = append(pkg.Targets, t)
	}

	return pkg, nil
}

func translateTarget(tb *targetBlock, pkg Package, dir string) (Target, error) {
	kind := ProductKind(tb.ProductKind)
	if !kind.Valid() {
		return Target{}, fmt.Errorf("%w: target %q: unknown product_kind %q", ErrInvalidManifest, tb.Label, tb.ProductKind)
	}

	t := Target{
		Label:       tb.Label,
		Platform:    strings.ToLower(strings.TrimSpace(tb.Platform)),
		Kind:        kind,
		ScopeSuffix: tb.ScopeSuffix,
		ModuleName:  tb.ModuleName,
		UsesSwift:   tb.UsesSwift,
		Files: Files{
			VendoredFrameworks:  resolveAll(dir, tb.VendoredFrameworks),
			VendoredLibraries:   resolveAll(dir, tb.VendoredLibraries),
			Resources:           resolveAll(dir, tb.Resources),
			ResourceBundleFiles: resolveAll(dir, tb.ResourceBundleFiles),
			License:             resolve(dir, tb.License),
			Readme:              resolve(dir, tb.Readme),
		},
	}
	if t.ModuleName == "" {
		t.ModuleName = moduleName(pkg.RootName())
	}

	for _, hb := range tb.Headers {
		mapping := HeaderMapping{
			Namespace: filepath.Clean(hb.Namespace),
			Files:     resolveAll(dir, hb.Files),
		}
		switch hb.Visibility {
		case visibilityPublic:
			t.PublicHeaders = append(t.PublicHeaders, mapping)
		case visibilityPrivate:
			t.PrivateHeaders = append(t.PrivateHeaders, mapping)
		default:
			return Target{}, fmt.Errorf("%w: target %q: headers visibility must be %q or %q, got %q",
				ErrInvalidManifest, tb.Label, visibilityPublic, visibilityPrivate, hb.Visibility)
		}
	}

	return t, nil
}

// Returns the canonical platform name, or the name itself when it is not a
// known platform. Unknown platforms are rejected by the planner.
func platformKey(name string) string {
	if c, err := platform.Canonical(name); err == nil {
		return c
	}
	return name
}

// Resolves p against dir unless it is empty or absolute.
func resolve(dir, p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}

func resolveAll(dir string, paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = resolve(dir, p)
	}
	return out
}
