package headers

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/cruciblehq/xcforge/internal/manifest"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLinkSymlinks(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()

	pub := writeFile(t, filepath.Join(src, "Sources/Alpha.h"), "// alpha\n")
	priv := writeFile(t, filepath.Join(src, "Sources/AlphaPrivate.h"), "// private\n")

	l := Linker{Mode: Symlink, Capabilities: Capabilities{Symlinks: true, Hardlinks: true}}
	res, err := l.Link(Request{
		RootName:  "Alpha",
		SourceDir: src,
		Mappings: []manifest.HeaderMapping{
			{Namespace: "Alpha/Internal", Files: []string{priv}},
			{Namespace: "Alpha", Files: []string{pub}},
		},
		Dest: dest,
	})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dest, HeadersDir), res.Dir)

	want := []string{"Alpha.h", "Alpha/Alpha.h", "Alpha/Internal/AlphaPrivate.h", "AlphaPrivate.h"}
	if diff := cmp.Diff(want, res.Files); diff != "" {
		t.Fatalf("files mismatch (-want +got):\n%s", diff)
	}

	link := filepath.Join(res.Dir, "Alpha/Internal/AlphaPrivate.h")
	target, err := os.Readlink(link)
	require.NoError(t, err)
	require.Equal(t, "../../AlphaPrivate.h", target)

	data, err := os.ReadFile(link)
	require.NoError(t, err)
	require.Equal(t, "// private\n", string(data))
}

func TestLinkFallsBackWithoutSymlinks(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	h := writeFile(t, filepath.Join(src, "A.h"), "a")

	l := Linker{Mode: Symlink, Capabilities: Capabilities{}}
	res, err := l.Link(Request{
		SourceDir: src,
		Mappings:  []manifest.HeaderMapping{{Namespace: "A", Files: []string{h}}},
		Dest:      dest,
	})
	require.NoError(t, err)

	info, err := os.Lstat(filepath.Join(res.Dir, "A/A.h"))
	require.NoError(t, err)
	require.True(t, info.Mode().IsRegular(), "expected a regular file, got %v", info.Mode())
}

func TestLinkCollision(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	a := writeFile(t, filepath.Join(src, "a/Util.h"), "one")
	b := writeFile(t, filepath.Join(src, "b/Util.h"), "two")

	l := Linker{Mode: Copy}
	_, err := l.Link(Request{
		SourceDir: src,
		Mappings: []manifest.HeaderMapping{
			{Namespace: "Alpha", Files: []string{a}},
			{Namespace: "Alpha", Files: []string{b}},
		},
		Dest: dest,
	})
	if !errors.Is(err, ErrHeaderCollision) {
		t.Fatalf("err = %v, want ErrHeaderCollision", err)
	}
}

func TestLinkIdenticalContentsTolerated(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	a := writeFile(t, filepath.Join(src, "a/Alpha.h"), "same")
	b := writeFile(t, filepath.Join(src, "b/Alpha.h"), "same")

	l := Linker{Mode: Copy}
	res, err := l.Link(Request{
		SourceDir: src,
		Mappings:  []manifest.HeaderMapping{{Namespace: "Alpha", Files: []string{a, b, a}}},
		Dest:      dest,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"Alpha.h", "Alpha/Alpha.h"}, res.Files)
}

func TestLinkCompatHeaders(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	h := writeFile(t, filepath.Join(src, "Alpha.h"), "a")
	writeFile(t, filepath.Join(src, CompatDir, "Alpha-Swift.h"), "swift")
	writeFile(t, filepath.Join(src, CompatDir, "Alpha.h"), "a")

	l := Linker{Mode: Hardlink, Capabilities: HostCapabilities()}
	res, err := l.Link(Request{
		RootName:  "Alpha",
		SourceDir: src,
		UsesSwift: true,
		Mappings:  []manifest.HeaderMapping{{Namespace: "Alpha", Files: []string{h}}},
		Dest:      dest,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"Alpha.h", "Alpha/Alpha-Swift.h", "Alpha/Alpha.h"}, res.Files)

	data, err := os.ReadFile(filepath.Join(res.Dir, "Alpha/Alpha-Swift.h"))
	require.NoError(t, err)
	require.Equal(t, "swift", string(data))
}

func TestLinkRebuildsTree(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	stale := writeFile(t, filepath.Join(dest, HeadersDir, "Stale.h"), "old")
	h := writeFile(t, filepath.Join(src, "A.h"), "a")

	l := Linker{Mode: Copy}
	_, err := l.Link(Request{
		SourceDir: src,
		Mappings:  []manifest.HeaderMapping{{Namespace: "A", Files: []string{h}}},
		Dest:      dest,
	})
	require.NoError(t, err)
	_, err = os.Stat(stale)
	require.True(t, os.IsNotExist(err), "stale header survived: %v", err)
}

func TestLinkNoHeadersCreatesNothing(t *testing.T) {
	dest := t.TempDir()
	l := Linker{Mode: Copy}
	res, err := l.Link(Request{
		SourceDir: t.TempDir(),
		Mappings:  []manifest.HeaderMapping{{Namespace: "Empty"}},
		Dest:      dest,
	})
	require.NoError(t, err)
	require.Empty(t, res.Files)
	_, err = os.Stat(res.Dir)
	require.True(t, os.IsNotExist(err))
}

func TestLinkRejectsEscapingNamespace(t *testing.T) {
	src := t.TempDir()
	h := writeFile(t, filepath.Join(src, "A.h"), "a")
	l := Linker{Mode: Copy}
	_, err := l.Link(Request{
		SourceDir: src,
		Mappings:  []manifest.HeaderMapping{{Namespace: "../outside", Files: []string{h}}},
		Dest:      t.TempDir(),
	})
	if !errors.Is(err, ErrInvalidNamespace) {
		t.Fatalf("err = %v, want ErrInvalidNamespace", err)
	}
}

func TestParseModeAndEffective(t *testing.T) {
	for in, want := range map[string]Mode{"": Symlink, "symlink": Symlink, "HardLink": Hardlink, "copy": Copy} {
		got, err := ParseMode(in)
		require.NoError(t, err)
		require.Equal(t, want, got, in)
	}
	_, err := ParseMode("junction")
	require.ErrorIs(t, err, ErrUnknownMode)

	require.Equal(t, Hardlink, Capabilities{Hardlinks: true}.Effective(Symlink))
	require.Equal(t, Copy, Capabilities{}.Effective(Symlink))
	require.Equal(t, Symlink, Capabilities{Symlinks: true}.Effective(Symlink))
}
