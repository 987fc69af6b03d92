// Package variant computes the build plan for a run.
//
// A plan lists, per platform, the SDK variants to archive and the package
// targets that build on that platform. Platforms keep the order they were
// requested in; SDKs within a platform follow the static table order. The
// planner is a pure function of its inputs and the platform tables, so every
// configuration error surfaces before any external invocation.
//
// Example usage:
//
//	plan, err := variant.Compute(platforms, m.Packages, "Release")
//	if err != nil {
//	    return err
//	}
//	for _, v := range plan.Variants() {
//	    fmt.Println(v.Platform.Name, v.SDK.Name, v.Flags())
//	}
package variant
