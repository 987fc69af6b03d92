// Package report accumulates the diagnostics of a run.
//
// Each entry carries a severity, a topic naming the component or tool that
// produced it, and a message. Entries are appended from concurrent build
// workers, so [Results] is safe for concurrent use. A run is valid when it
// recorded no errors and, unless warnings are tolerated, no warnings.
//
// Example usage:
//
//	results := report.New()
//	results.Error("xcodebuild", "archive failed for iphoneos")
//	results.Print(os.Stdout)
//	if !results.Valid(true) {
//	    return errors.New("build failed")
//	}
package report
