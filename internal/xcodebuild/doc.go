// Package xcodebuild invokes the external build tool.
//
// An [Invoker] runs the two modes the orchestrator needs: archiving a
// project scheme for one SDK, and merging per-SDK archives into a single
// multi-architecture bundle. Each call returns an [Invocation] holding the
// full argument list, the captured output, and the diagnostics classified
// from it. Tool failures never surface as Go errors; the caller inspects
// [Invocation.Failed] and decides how to proceed.
//
// A nonzero exit always marks the invocation as failed. The captured text is
// also scanned for compiler-style error markers, since the tool has been
// known to exit cleanly after reporting errors.
//
// Process execution sits behind the [Executor] interface so tests can
// substitute a fake.
//
// Example usage:
//
//	inv := xcodebuild.New(&xcodebuild.CommandExecutor{Path: "xcodebuild"}, workDir)
//	res := inv.Archive(ctx, xcodebuild.ArchiveOptions{
//	    Flags:       v.Flags(),
//	    Project:     "Pods/Pods.xcodeproj",
//	    Scheme:      "Pods-App-ios",
//	    ArchivePath: "build/archive/iphoneos/Pods-App.xcarchive",
//	})
//	if res.Failed() {
//	    res.Results.Print(os.Stderr)
//	}
package xcodebuild
