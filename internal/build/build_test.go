package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/cruciblehq/xcforge/internal/headers"
	"github.com/cruciblehq/xcforge/internal/manifest"
	"github.com/cruciblehq/xcforge/internal/platform"
	"github.com/cruciblehq/xcforge/internal/product"
	"github.com/cruciblehq/xcforge/internal/report"
	"github.com/cruciblehq/xcforge/internal/xcodebuild"
)

// Stands in for the build tool. Archives produce the configured static
// libraries; merges produce a bundle listing their arguments.
type fakeExecutor struct {
	mu        sync.Mutex
	calls     [][]string
	failSDKs  []string
	libraries []string
	warning   string // Diagnostic printed by every successful archive.
}

func (f *fakeExecutor) Execute(_ context.Context, args []string) (*xcodebuild.ExecResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, slices.Clone(args))
	f.mu.Unlock()

	switch args[0] {
	case "archive":
		sdk := argValue(args, "-sdk")
		if slices.Contains(f.failSDKs, sdk) {
			return &xcodebuild.ExecResult{
				ExitCode: 65,
				Output:   "/src/Alpha.m:1:1: error: unknown type name\n** ARCHIVE FAILED **\n",
			}, nil
		}
		lib := filepath.Join(argValue(args, "-archivePath"), archiveLibDir)
		if err := os.MkdirAll(lib, 0755); err != nil {
			return nil, err
		}
		for _, name := range f.libraries {
			if err := os.WriteFile(filepath.Join(lib, name), []byte(sdk), 0644); err != nil {
				return nil, err
			}
		}
		return &xcodebuild.ExecResult{Output: f.warning + "** ARCHIVE SUCCEEDED **\n"}, nil

	case "-create-xcframework":
		out := argValue(args, "-output")
		if err := os.MkdirAll(out, 0755); err != nil {
			return nil, err
		}
		refs := strings.Join(args[1:len(args)-2], "\n")
		if err := os.WriteFile(filepath.Join(out, "Info.plist"), []byte(refs), 0644); err != nil {
			return nil, err
		}
		return &xcodebuild.ExecResult{}, nil
	}

	return &xcodebuild.ExecResult{ExitCode: 64}, nil
}

func (f *fakeExecutor) archiveSDKs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if c[0] == "archive" {
			out = append(out, argValue(c, "-sdk"))
		}
	}
	return out
}

func (f *fakeExecutor) merges() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out [][]string
	for _, c := range f.calls {
		if c[0] == "-create-xcframework" {
			out = append(out, c)
		}
	}
	return out
}

func argValue(args []string, flag string) string {
	i := slices.Index(args, flag)
	if i < 0 || i+1 >= len(args) {
		return ""
	}
	return args[i+1]
}

func countRefs(args []string) int {
	n := 0
	for _, a := range args {
		if a == "-archive" {
			n++
		}
	}
	return n
}

func alphaManifest(t *testing.T, kind manifest.ProductKind) *manifest.Manifest {
	t.Helper()
	return &manifest.Manifest{
		Project:      "/project/Pods/Pods.xcodeproj",
		SchemePrefix: manifest.DefaultSchemePrefix,
		Platforms: []manifest.PlatformDecl{
			{Name: "ios", DeploymentTarget: "12.0"},
			{Name: "macos", DeploymentTarget: "10.13"},
		},
		Packages: []manifest.Package{{
			Name:      "Alpha",
			Version:   "1.0",
			SourceDir: t.TempDir(),
			Targets: []manifest.Target{
				{Label: "Alpha", Platform: "ios", Kind: kind, ModuleName: "Alpha"},
				{Label: "Alpha-macOS", Platform: "macos", Kind: kind, ModuleName: "Alpha", ScopeSuffix: "macOS"},
			},
		}},
	}
}

func alphaOptions(t *testing.T, m *manifest.Manifest) Options {
	t.Helper()
	root := t.TempDir()
	return Options{
		Manifest:     m,
		WorkRoot:     filepath.Join(root, "work"),
		ProductRoot:  filepath.Join(root, "Products"),
		LinkMode:     headers.Symlink,
		Capabilities: headers.HostCapabilities(),
	}
}

func run(t *testing.T, exec *fakeExecutor, opts Options) *Result {
	t.Helper()
	res, err := Run(context.Background(), xcodebuild.New(exec, opts.WorkRoot), opts)
	require.NoError(t, err)
	return res
}

func TestRunAlpha(t *testing.T) {
	exec := &fakeExecutor{}
	opts := alphaOptions(t, alphaManifest(t, manifest.Framework))

	res := run(t, exec, opts)

	if diff := cmp.Diff([]string{"iphonesimulator", "iphoneos", "macosx"}, exec.archiveSDKs()); diff != "" {
		t.Fatalf("archive order mismatch (-want +got):\n%s", diff)
	}

	merges := exec.merges()
	require.Len(t, merges, 1)
	require.Equal(t, 3, countRefs(merges[0]))
	require.Equal(t, 3, strings.Count(strings.Join(merges[0], " "), "-framework Alpha.framework"))

	require.Len(t, res.Products, 1)
	info := res.Products[0]
	require.Equal(t, filepath.Join(opts.ProductRoot, "Alpha-framework-1.0"), info.Path)
	require.Equal(t, "Alpha.xcframework", info.Name)
	require.Equal(t, "1.0", info.Version)
	require.DirExists(t, filepath.Join(info.Path, "Alpha.xcframework"))

	require.False(t, res.Halted)
	require.True(t, res.Valid(false))
	require.NoDirExists(t, opts.WorkRoot)

	for _, s := range res.States {
		require.Equal(t, Archived, s.Phase, "%s/%s", s.Package, s.Platform)
	}
}

func TestRunWithWarnings(t *testing.T) {
	exec := &fakeExecutor{warning: "/src/Alpha.m:3:1: warning: unused variable 'x'\n"}
	opts := alphaOptions(t, alphaManifest(t, manifest.Framework))

	res := run(t, exec, opts)

	require.Len(t, res.Products, 1)
	require.Len(t, exec.merges(), 1)
	require.Equal(t, 0, res.Report.Count(report.Error))
	require.Equal(t, 3, res.Report.Count(report.Warning))
	require.True(t, res.Valid(true))
	require.False(t, res.Valid(false))
}

func TestRunArchiveArguments(t *testing.T) {
	exec := &fakeExecutor{}
	opts := alphaOptions(t, alphaManifest(t, manifest.Framework))
	opts.Configuration = "Release"
	opts.Distribution = true

	run(t, exec, opts)

	first := exec.calls[0]
	want := []string{
		"archive", "-showBuildTimingSummary",
		"-destination", "generic/platform=iOS Simulator", "-sdk", "iphonesimulator", "IPHONEOS_DEPLOYMENT_TARGET=12.0",
		"-configuration", "Release",
		"BUILD_LIBRARY_FOR_DISTRIBUTION=YES",
		"-project", "/project/Pods/Pods.xcodeproj",
		"-scheme", "Pods-App-ios",
		"-archivePath", filepath.Join(opts.WorkRoot, "archive/iphonesimulator/Pods-App.xcarchive"),
		"SKIP_INSTALL=NO",
	}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Fatalf("archive args mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "Pods-App-osx", argValue(exec.calls[2], "-scheme"))
}

func TestRunFailFast(t *testing.T) {
	exec := &fakeExecutor{failSDKs: []string{"iphoneos"}}
	opts := alphaOptions(t, alphaManifest(t, manifest.Framework))
	opts.FailFast = true

	res := run(t, exec, opts)

	require.Equal(t, []string{"iphonesimulator", "iphoneos"}, exec.archiveSDKs())
	require.Empty(t, exec.merges())
	require.True(t, res.Halted)
	require.Empty(t, res.Products)
	require.Equal(t, 1, res.Report.Count(report.Error))
	require.False(t, res.Valid(true))
	require.NoDirExists(t, filepath.Join(opts.ProductRoot, "Alpha-framework-1.0"))

	want := []State{
		{Package: "Alpha", Platform: "ios", Phase: Failed, Archives: []string{filepath.Join(opts.WorkRoot, "archive/iphonesimulator/Pods-App.xcarchive")}, FailedSDKs: []string{"iphoneos"}},
		{Package: "Alpha", Platform: "osx", Phase: Cancelled},
	}
	if diff := cmp.Diff(want, res.States); diff != "" {
		t.Fatalf("states mismatch (-want +got):\n%s", diff)
	}
}

func TestRunCollectAll(t *testing.T) {
	tests := []struct {
		name     string
		failSDKs []string
	}{
		{name: "no failures"},
		{name: "one failure", failSDKs: []string{"iphoneos"}},
		{name: "two failures", failSDKs: []string{"iphonesimulator", "macosx"}},
		{name: "all failures", failSDKs: []string{"iphonesimulator", "iphoneos", "macosx"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExecutor{failSDKs: tt.failSDKs}
			opts := alphaOptions(t, alphaManifest(t, manifest.Framework))

			res := run(t, exec, opts)
			k := len(tt.failSDKs)

			require.Len(t, exec.archiveSDKs(), 3)
			require.Equal(t, k, res.Report.Count(report.Error))
			require.False(t, res.Halted)

			merges := exec.merges()
			if k == 3 {
				require.Empty(t, merges)
				require.Empty(t, res.Products)
				require.NoDirExists(t, filepath.Join(opts.ProductRoot, "Alpha-framework-1.0"))
				return
			}
			require.Len(t, merges, 1)
			require.Equal(t, 3-k, countRefs(merges[0]))
			require.Len(t, res.Products, 1)
		})
	}
}

func TestRunConcurrentJobs(t *testing.T) {
	exec := &fakeExecutor{failSDKs: []string{"iphonesimulator"}}
	opts := alphaOptions(t, alphaManifest(t, manifest.Framework))
	opts.Jobs = 3

	res := run(t, exec, opts)

	require.ElementsMatch(t, []string{"iphonesimulator", "iphoneos", "macosx"}, exec.archiveSDKs())
	require.Equal(t, 1, res.Report.Count(report.Error))
	require.Len(t, exec.merges(), 1)
	require.Equal(t, 2, countRefs(exec.merges()[0]))
}

func TestRunIsIdempotent(t *testing.T) {
	m := alphaManifest(t, manifest.Framework)
	opts := alphaOptions(t, m)
	opts.NoClean = true

	first := run(t, &fakeExecutor{}, opts)
	second := run(t, &fakeExecutor{}, opts)

	require.Len(t, first.Products, 1)
	require.Len(t, second.Products, 1)
	require.Equal(t, first.Products[0].Digest, second.Products[0].Digest)
	require.DirExists(t, opts.WorkRoot)
}

func TestRunStaticLibrary(t *testing.T) {
	m := alphaManifest(t, manifest.StaticLibrary)
	src := m.Packages[0].SourceDir
	header := filepath.Join(src, "Sources/Alpha.h")
	require.NoError(t, os.MkdirAll(filepath.Dir(header), 0755))
	require.NoError(t, os.WriteFile(header, []byte("// alpha"), 0644))
	for i := range m.Packages[0].Targets {
		m.Packages[0].Targets[i].PublicHeaders = []manifest.HeaderMapping{{Namespace: "Alpha", Files: []string{header}}}
	}

	exec := &fakeExecutor{libraries: []string{"libAlpha-macOS.a"}}
	opts := alphaOptions(t, m)
	opts.NoClean = true
	opts.Platforms = []platform.Platform{{Name: "macos"}}

	res := run(t, exec, opts)
	require.True(t, res.Valid(false))

	archive := filepath.Join(opts.WorkRoot, "archive/macosx/Pods-App.xcarchive")
	require.FileExists(t, filepath.Join(archive, archiveLibDir, "libAlpha.a"))
	require.NoFileExists(t, filepath.Join(archive, archiveLibDir, "libAlpha-macOS.a"))

	headersDir := product.HeadersDir(archive, m.Packages[0])
	require.FileExists(t, filepath.Join(headersDir, "Alpha/Alpha.h"))

	merges := exec.merges()
	require.Len(t, merges, 1)
	want := []string{"-archive", archive, "-library", "libAlpha.a", "-headers", headersDir}
	if diff := cmp.Diff(want, merges[0][1:len(merges[0])-2]); diff != "" {
		t.Fatalf("merge refs mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "MACOSX_DEPLOYMENT_TARGET=10.13", exec.calls[0][6])
}

func TestRunHeaderCollision(t *testing.T) {
	m := alphaManifest(t, manifest.StaticLibrary)
	src := m.Packages[0].SourceDir
	a := filepath.Join(src, "a/Util.h")
	b := filepath.Join(src, "b/Util.h")
	for path, content := range map[string]string{a: "one", b: "two"} {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	m.Packages[0].Targets[1].PublicHeaders = []manifest.HeaderMapping{{Namespace: "Alpha", Files: []string{a, b}}}

	exec := &fakeExecutor{}
	opts := alphaOptions(t, m)
	opts.Platforms = []platform.Platform{{Name: "osx"}}

	res := run(t, exec, opts)

	require.Equal(t, 1, res.Report.Count(report.Error))
	require.Equal(t, headers.Topic, res.Report.Entries()[0].Topic)
	require.Empty(t, exec.merges())
}

func TestRunConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
		want   error
	}{
		{
			name:   "unknown platform",
			mutate: func(o *Options) { o.Platforms = []platform.Platform{{Name: "ios"}, {Name: "android"}} },
			want:   platform.ErrUnknownPlatform,
		},
		{
			name:   "no packages",
			mutate: func(o *Options) { o.Manifest.Packages = nil },
			want:   manifest.ErrNoPackages,
		},
		{
			name:   "no manifest",
			mutate: func(o *Options) { o.Manifest = nil },
			want:   ErrInvalidOptions,
		},
		{
			name: "two targets on one platform",
			mutate: func(o *Options) {
				pkg := &o.Manifest.Packages[0]
				pkg.Targets = append(pkg.Targets, manifest.Target{Label: "Alpha-Core", Platform: "ios", Kind: manifest.Framework})
			},
			want: manifest.ErrInvalidManifest,
		},
		{
			name:   "product root inside work root",
			mutate: func(o *Options) { o.ProductRoot = filepath.Join(o.WorkRoot, "Products") },
			want:   ErrInvalidOptions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExecutor{}
			opts := alphaOptions(t, alphaManifest(t, manifest.Framework))
			tt.mutate(&opts)

			_, err := Run(context.Background(), xcodebuild.New(exec, opts.WorkRoot), opts)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if len(exec.calls) != 0 {
				t.Fatalf("build tool invoked %d times, want 0", len(exec.calls))
			}
		})
	}
}

func TestPlanFillsDeploymentTargets(t *testing.T) {
	opts := alphaOptions(t, alphaManifest(t, manifest.Framework))
	opts.Platforms = []platform.Platform{{Name: "macos"}}

	plan, err := Plan(opts)
	require.NoError(t, err)
	require.Len(t, plan.Platforms, 1)

	got := plan.Platforms[0].Platform
	want := platform.Platform{Name: platform.OSX, DeploymentTarget: "10.13"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("platform mismatch (-want +got):\n%s", diff)
	}
}

func TestRenameLibrary(t *testing.T) {
	tests := []struct {
		name    string
		target  manifest.Target
		present string
		renamed bool
		want    string
	}{
		{
			name:    "dash suffix",
			target:  manifest.Target{Label: "Alpha-iOS", ScopeSuffix: "iOS", Kind: manifest.StaticLibrary},
			present: "libAlpha-iOS.a",
			renamed: true,
			want:    "libAlpha.a",
		},
		{
			name:    "dot suffix",
			target:  manifest.Target{Label: "Alpha.static", ScopeSuffix: ".static", Kind: manifest.StaticLibrary},
			present: "libAlpha.static.a",
			renamed: true,
			want:    "libAlpha.a",
		},
		{
			name:    "no suffix",
			target:  manifest.Target{Label: "Alpha", Kind: manifest.StaticLibrary},
			present: "libAlpha.a",
			want:    "libAlpha.a",
		},
		{
			name:    "label without suffix",
			target:  manifest.Target{Label: "Alpha", ScopeSuffix: "iOS", Kind: manifest.StaticLibrary},
			present: "libAlpha.a",
			want:    "libAlpha.a",
		},
		{
			name:    "framework",
			target:  manifest.Target{Label: "Alpha-iOS", ScopeSuffix: "iOS", Kind: manifest.Framework},
			present: "libAlpha-iOS.a",
			want:    "libAlpha-iOS.a",
		},
		{
			name:   "missing library",
			target: manifest.Target{Label: "Alpha-iOS", ScopeSuffix: "iOS", Kind: manifest.StaticLibrary},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			archive := t.TempDir()
			dir := filepath.Join(archive, archiveLibDir)
			require.NoError(t, os.MkdirAll(dir, 0755))
			if tt.present != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, tt.present), nil, 0644))
			}

			renamed, err := renameLibrary(archive, tt.target)
			require.NoError(t, err)
			require.Equal(t, tt.renamed, renamed)
			if tt.want != "" {
				require.FileExists(t, filepath.Join(dir, tt.want))
			}
		})
	}
}
