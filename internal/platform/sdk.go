package platform

import (
	"fmt"
	"slices"
	"strings"
)

// An SDK the build tool can target.
type SDK struct {
	Name        string   // SDK identifier passed to -sdk (e.g., "iphoneos").
	Destination string   // Destination platform name (e.g., "iOS Simulator").
	Archs       []string // Architectures built for this SDK.
}

// Ordered SDKs per platform.
var platformSDKs = map[string][]string{
	OSX:     {"macosx"},
	IOS:     {"iphonesimulator", "iphoneos"},
	WatchOS: {"watchsimulator", "watchos"},
	TVOS:    {"appletvsimulator", "appletvos"},
}

// Destination and architectures per SDK.
var sdks = map[string]SDK{
	"iphonesimulator":  {Name: "iphonesimulator", Destination: "iOS Simulator", Archs: []string{"x86_64", "arm64", "i386"}},
	"iphoneos":         {Name: "iphoneos", Destination: "iOS", Archs: []string{"arm64"}},
	"watchos":          {Name: "watchos", Destination: "watchOS", Archs: []string{"armv7k", "arm64_32"}},
	"watchsimulator":   {Name: "watchsimulator", Destination: "watchOS Simulator", Archs: []string{"x86_64", "arm64"}},
	"appletvos":        {Name: "appletvos", Destination: "tvOS", Archs: []string{"x86_64", "arm64"}},
	"appletvsimulator": {Name: "appletvsimulator", Destination: "tvOS Simulator", Archs: []string{"x86_64", "arm64"}},
	"macosx":           {Name: "macosx", Destination: "macOS", Archs: []string{"x86_64", "arm64"}},
}

// Returns the SDKs required by a platform, in build order.
func SDKs(platform string) ([]SDK, error) {
	name, err := Canonical(platform)
	if err != nil {
		return nil, err
	}

	names := platformSDKs[name]
	out := make([]SDK, 0, len(names))
	for _, n := range names {
		sdk, err := LookupSDK(n)
		if err != nil {
			return nil, err
		}
		out = append(out, sdk)
	}
	return out, nil
}

// Returns the table entry for an SDK identifier.
//
// The returned value owns its architecture slice.
func LookupSDK(name string) (SDK, error) {
	sdk, ok := sdks[name]
	if !ok {
		return SDK{}, fmt.Errorf("%w: %q", ErrUnknownSDK, name)
	}
	sdk.Archs = slices.Clone(sdk.Archs)
	return sdk, nil
}

// Returns the generic destination specifier (e.g., "generic/platform=iOS").
func (s SDK) GenericDestination() string {
	return "generic/platform=" + s.Destination
}

// Whether the SDK targets a simulator.
func (s SDK) IsSimulator() bool {
	return strings.HasSuffix(s.Name, "simulator")
}
