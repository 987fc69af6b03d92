// Package build orchestrates multi-variant archive builds.
//
// A build archives every (platform, SDK) variant of the plan with the
// external build tool, then merges the per-variant archives of each package
// into one multi-architecture bundle. After each successful archive, library
// targets have their scope suffix stripped from the built static library and
// their headers linked next to the archive, so the merge step can pick up
// both.
//
// Variants run on a bounded worker pool. With fail-fast enabled, the first
// failed archive stops any further variant from being launched; variants
// already running are allowed to finish, and no package is merged. Without
// it, failed variants are left out of the merge and the run continues. Every
// failure is recorded in the run report rather than returned as an error;
// only configuration and filesystem problems abort the run.
//
// Intermediate archives live under the work root, which is removed at the end
// of the run unless NoClean is set.
//
// Example usage:
//
//	res, err := build.Run(ctx, xcodebuild.New(executor, workRoot), build.Options{
//	    Manifest:    m,
//	    WorkRoot:    workRoot,
//	    ProductRoot: "build/Products",
//	    FailFast:    true,
//	    Jobs:        2,
//	})
//	if err != nil {
//	    return err
//	}
//	res.Report.Print(os.Stdout)
package build
