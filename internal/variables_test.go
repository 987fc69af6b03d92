package internal

import "testing"

func TestVersionString(t *testing.T) {
	tests := []struct {
		name    string
		version string
		commit  string
		want    string
	}{
		{name: "release", version: "1.2.3", commit: "a1b2c3d4", want: "xcforge 1.2.3 (a1b2c3d4)"},
		{name: "v prefix", version: " V2.0.0 ", commit: "ffee", want: "xcforge 2.0.0 (ffee)"},
		{name: "local", want: "xcforge (local)"},
		{name: "missing commit", version: "1.2.3", want: "xcforge (local)"},
		{name: "missing version", commit: "a1b2c3d4", want: "xcforge (local)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := versionString(tt.version, tt.commit); got != tt.want {
				t.Fatalf("versionString(%q, %q) = %q, want %q", tt.version, tt.commit, got, tt.want)
			}
		})
	}
}

func TestIsLocalWithoutLinkerFlags(t *testing.T) {
	defer func(v, c string) { version, gitCommit = v, c }(version, gitCommit)

	version, gitCommit = "", ""
	if !IsLocal() {
		t.Fatal("IsLocal = false, want true without linker flags")
	}
	if got := VersionString(); got != "xcforge (local)" {
		t.Fatalf("VersionString = %q, want %q", got, "xcforge (local)")
	}

	version, gitCommit = "v1.0.0", "abc123"
	if IsLocal() {
		t.Fatal("IsLocal = true, want false with version and commit set")
	}
	if got := Version(); got != "1.0.0" {
		t.Fatalf("Version = %q, want 1.0.0", got)
	}
}
