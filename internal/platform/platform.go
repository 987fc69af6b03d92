package platform

import (
	"fmt"
	"strings"
)

const (
	IOS     = "ios"     // iOS, device and simulator.
	OSX     = "osx"     // macOS.
	TVOS    = "tvos"    // tvOS, device and simulator.
	WatchOS = "watchos" // watchOS, device and simulator.
)

// Alternative spellings accepted for platform identifiers.
var aliases = map[string]string{
	"macos": OSX,
}

// Build settings carrying the minimum deployment version.
var deploymentSettings = map[string]string{
	IOS:     "IPHONEOS_DEPLOYMENT_TARGET",
	OSX:     "MACOSX_DEPLOYMENT_TARGET",
	TVOS:    "TVOS_DEPLOYMENT_TARGET",
	WatchOS: "WATCHOS_DEPLOYMENT_TARGET",
}

// Display names used in logs and reports.
var displayNames = map[string]string{
	IOS:     "iOS",
	OSX:     "macOS",
	TVOS:    "tvOS",
	WatchOS: "watchOS",
}

// Identifies a target platform and its minimum deployment version.
type Platform struct {
	Name             string // Platform identifier (e.g., "ios", "osx").
	DeploymentTarget string // Minimum OS version. Empty leaves it to the project.
}

// Returns the canonical identifier for a platform name.
//
// Names are matched case-insensitively and aliases such as "macos" resolve to
// their canonical form. Unknown names return [ErrUnknownPlatform].
func Canonical(name string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[n]; ok {
		n = alias
	}
	if _, ok := platformSDKs[n]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, name)
	}
	return n, nil
}

// Whether the name identifies a supported platform.
func Valid(name string) bool {
	_, err := Canonical(name)
	return err == nil
}

// Returns all canonical platform identifiers in a stable order.
func All() []string {
	return []string{IOS, OSX, TVOS, WatchOS}
}

// Returns a copy of the platform with its name in canonical form.
func (p Platform) Canonical() (Platform, error) {
	name, err := Canonical(p.Name)
	if err != nil {
		return Platform{}, err
	}
	p.Name = name
	return p, nil
}

// Returns the human-readable platform name, or the raw identifier if the
// platform is not in the table.
func (p Platform) DisplayName() string {
	if name, ok := displayNames[p.Name]; ok {
		return name
	}
	return p.Name
}

// Returns the build setting assignment for the deployment target (e.g.,
// "IPHONEOS_DEPLOYMENT_TARGET=12.0"), or "" when no target is set.
func (p Platform) DeploymentSetting() string {
	setting, ok := deploymentSettings[p.Name]
	if !ok || p.DeploymentTarget == "" {
		return ""
	}
	return setting + "=" + p.DeploymentTarget
}

func (p Platform) String() string {
	if p.DeploymentTarget == "" {
		return p.DisplayName()
	}
	return fmt.Sprintf("%s %s", p.DisplayName(), p.DeploymentTarget)
}
