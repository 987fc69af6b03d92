package headers

import (
	"fmt"
	"runtime"
	"strings"
)

// How namespaced headers are materialized.
type Mode int

const (
	Symlink  Mode = iota // Relative symbolic link to the flat copy.
	Hardlink             // Hard link to the flat copy.
	Copy                 // Independent copy of the flat file.
)

func (m Mode) String() string {
	switch m {
	case Hardlink:
		return "hardlink"
	case Copy:
		return "copy"
	}
	return "symlink"
}

// Parses a mode name. The empty string selects [Symlink].
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "symlink":
		return Symlink, nil
	case "hardlink":
		return Hardlink, nil
	case "copy":
		return Copy, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Link kinds the destination filesystem supports.
type Capabilities struct {
	Symlinks  bool
	Hardlinks bool
}

// Returns the capabilities of the host operating system.
func HostCapabilities() Capabilities {
	if runtime.GOOS == "windows" {
		return Capabilities{Hardlinks: true}
	}
	return Capabilities{Symlinks: true, Hardlinks: true}
}

// Returns the mode actually used given the capabilities.
//
// Symlinks fall back to hard links, and hard links fall back to copies.
func (c Capabilities) Effective(m Mode) Mode {
	if m == Symlink && !c.Symlinks {
		m = Hardlink
	}
	if m == Hardlink && !c.Hardlinks {
		m = Copy
	}
	return m
}
