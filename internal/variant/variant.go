package variant

import (
	"fmt"
	"log/slog"

	"github.com/cruciblehq/xcforge/internal/manifest"
	"github.com/cruciblehq/xcforge/internal/platform"
)

// One (platform, SDK) build combination.
type Variant struct {
	Platform      platform.Platform // Canonical platform.
	SDK           platform.SDK      // SDK from the platform table.
	Configuration string            // Build configuration, empty for the project default.
}

// Returns the destination and SDK flags passed to the archive invocation,
// followed by the deployment target setting when one is set.
func (v Variant) Flags() []string {
	flags := []string{"-destination", v.SDK.GenericDestination(), "-sdk", v.SDK.Name}
	if setting := v.Platform.DeploymentSetting(); setting != "" {
		flags = append(flags, setting)
	}
	return flags
}

func (v Variant) String() string {
	return v.Platform.Name + "/" + v.SDK.Name
}

// A package target scheduled on a platform.
type Member struct {
	Package manifest.Package
	Target  manifest.Target
}

// Variants and members for one platform.
type PlatformPlan struct {
	Platform platform.Platform
	Variants []Variant // In table-defined SDK order.
	Members  []Member  // In manifest order.
}

// The full build plan.
type Plan struct {
	Platforms []PlatformPlan      // In requested order.
	Skipped   []platform.Platform // Requested platforms no target builds for.
}

// Returns every variant of the plan, platforms first then SDKs.
func (p *Plan) Variants() []Variant {
	var out []Variant
	for _, pp := range p.Platforms {
		out = append(out, pp.Variants...)
	}
	return out
}

// Returns the members of the plan that belong to the named package, across
// all platforms.
func (p *Plan) Members(pkg string) []Member {
	var out []Member
	for _, pp := range p.Platforms {
		for _, m := range pp.Members {
			if m.Package.Name == pkg {
				out = append(out, m)
			}
		}
	}
	return out
}

// Computes the build plan.
//
// Requested platforms are canonicalized and deduplicated. When none are
// requested, the platforms are taken from the targets in the order they first
// appear. Unknown platform identifiers, whether requested or declared by a
// target, return [platform.ErrUnknownPlatform]. An empty package list returns
// [manifest.ErrNoPackages], and a plan with nothing to build returns
// [ErrNoVariants].
func Compute(requested []platform.Platform, packages []manifest.Package, configuration string) (*Plan, error) {
	if len(packages) == 0 {
		return nil, manifest.ErrNoPackages
	}

	if err := validateTargets(packages); err != nil {
		return nil, err
	}

	platforms, err := resolvePlatforms(requested, packages)
	if err != nil {
		return nil, err
	}

	plan := &Plan{}
	for _, p := range platforms {
		members := membersFor(p.Name, packages)
		if len(members) == 0 {
			slog.Warn("no targets build for platform, skipping", "platform", p.Name)
			plan.Skipped = append(plan.Skipped, p)
			continue
		}

		sdks, err := platform.SDKs(p.Name)
		if err != nil {
			return nil, err
		}

		pp := PlatformPlan{Platform: p, Members: members}
		for _, sdk := range sdks {
			pp.Variants = append(pp.Variants, Variant{
				Platform:      p,
				SDK:           sdk,
				Configuration: configuration,
			})
		}
		plan.Platforms = append(plan.Platforms, pp)
	}

	if len(plan.Platforms) == 0 {
		return nil, ErrNoVariants
	}

	return plan, nil
}

// Rejects targets declared for unknown platforms, and packages with more
// than one target on a platform.
func validateTargets(packages []manifest.Package) error {
	for _, pkg := range packages {
		seen := make(map[string]string)
		for _, t := range pkg.Targets {
			name, err := platform.Canonical(t.Platform)
			if err != nil {
				return fmt.Errorf("package %q target %q: %w", pkg.Name, t.Label, err)
			}
			if owner, ok := seen[name]; ok {
				return fmt.Errorf("%w: package %q: targets %q and %q both build for %q",
					manifest.ErrInvalidManifest, pkg.Name, owner, t.Label, name)
			}
			seen[name] = t.Label
		}
	}
	return nil
}

// Returns the canonical platforms to build, deduplicated.
func resolvePlatforms(requested []platform.Platform, packages []manifest.Package) ([]platform.Platform, error) {
	if len(requested) == 0 {
		for _, pkg := range packages {
			for _, t := range pkg.Targets {
				requested = append(requested, platform.Platform{Name: t.Platform})
			}
		}
	}

	seen := make(map[string]bool)
	var out []platform.Platform
	for _, p := range requested {
		c, err := p.Canonical()
		if err != nil {
			return nil, err
		}
		if seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		out = append(out, c)
	}
	return out, nil
}

// Returns the targets that build on a canonical platform, in manifest order.
func membersFor(name string, packages []manifest.Package) []Member {
	var out []Member
	for _, pkg := range packages {
		for _, t := range pkg.Targets {
			if c, _ := platform.Canonical(t.Platform); c == name {
				out = append(out, Member{Package: pkg, Target: t})
			}
		}
	}
	return out
}
