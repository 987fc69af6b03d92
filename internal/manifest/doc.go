// Package manifest describes the resolved packages to build.
//
// A manifest names the project the build tool archives, the platforms to
// target, and every package with its per-platform targets. Each target
// carries its product kind, header mappings, and the auxiliary files that are
// copied next to the merged bundle. Dependency resolution happens before the
// manifest is written; this package only loads and validates the result.
//
// Manifests are written in HCL. Expressions may reference the process
// environment through the env object:
//
//	project = "Pods/Pods.xcodeproj"
//
//	package "Alpha" {
//	  version    = env.ALPHA_VERSION
//	  source_dir = "Pods/Alpha"
//
//	  target "Alpha-iOS" {
//	    platform     = "ios"
//	    product_kind = "framework"
//	  }
//	}
//
// Example usage:
//
//	m, err := manifest.Load("xcforge.hcl")
//	if err != nil {
//	    return err
//	}
//	for _, pkg := range m.Packages {
//	    fmt.Println(pkg.Name, pkg.Version)
//	}
package manifest
