package xcodebuild

import (
	"regexp"
	"strings"

	"github.com/cruciblehq/xcforge/internal/report"
)

// Topic of entries produced by the build tool.
const Topic = "xcodebuild"

// Message recorded when the tool exits abnormally.
const UnsuccessfulExitMessage = "Returned an unsuccessful exit code."

var (
	errorLocation   = regexp.MustCompile(`\S+:\d+:\d+: error:`)
	warningLocation = regexp.MustCompile(`\S+:\d+:\d+: warning:`)
)

// Lines that carry a marker but are never diagnostics.
var ignored = []string{
	"Explicit dependencies on target 'InputFile'",
	"Unable to resolve build file: XCBCore.BuildFile",
}

// Classifies captured output into report entries.
//
// Only lines carrying an "error: ", "warning: " or "note: " marker are
// considered. Lines with a file:line:column location become errors or
// warnings; everything else becomes a note. The workDir prefix is trimmed
// from messages so reports stay readable.
func ParseOutput(output, workDir string) *report.Results {
	results := report.New()
	for _, line := range selectLines(output) {
		if containsAny(line, ignored) {
			continue
		}
		msg := trimWorkDir(line, workDir)
		switch {
		case errorLocation.MatchString(line):
			results.Error(Topic, msg)
		case warningLocation.MatchString(line):
			results.Warning(Topic, msg)
		default:
			results.Note(Topic, msg)
		}
	}
	return results
}

// Returns the lines carrying a diagnostic marker, minus known summary noise.
func selectLines(output string) []string {
	var out []string
	for _, l := range strings.Split(output, "\n") {
		l = strings.TrimRight(l, "\r")
		switch {
		case strings.Contains(l, "error: ") &&
			!strings.Contains(l, "errors generated.") &&
			!strings.Contains(l, "error generated.") &&
			!strings.Contains(l, "error: (null)"):
		case strings.Contains(l, "warning: ") &&
			!strings.Contains(l, "warnings generated.") &&
			!strings.Contains(l, "warning generated."):
		case strings.Contains(l, "note: ") &&
			!strings.Contains(l, "expanded from macro"):
		default:
			continue
		}
		out = append(out, strings.TrimLeft(l, " \t"))
	}
	return out
}

func trimWorkDir(line, workDir string) string {
	if workDir == "" {
		return line
	}
	return strings.ReplaceAll(line, strings.TrimSuffix(workDir, "/")+"/", "")
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
