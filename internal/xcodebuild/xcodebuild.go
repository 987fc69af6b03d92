package xcodebuild

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cruciblehq/xcforge/internal/report"
)

// Classified result of an invocation.
type Outcome int

const (
	Success Outcome = iota
	Warning
	Failure
)

func (o Outcome) String() string {
	switch o {
	case Warning:
		return "warning"
	case Failure:
		return "failure"
	}
	return "success"
}

// A completed invocation of the build tool.
type Invocation struct {
	Args     []string        // Full argument list, excluding the executable.
	Output   string          // Captured output, or the execution error text.
	ExitCode int             // Exit code, -1 when the process could not run.
	Results  *report.Results // Diagnostics classified from the output.
	Outcome  Outcome         // Overall classification.
}

// Whether the invocation failed.
func (i *Invocation) Failed() bool {
	return i.Outcome == Failure
}

// Options for an archive invocation.
type ArchiveOptions struct {
	Flags         []string // Destination and SDK flags for the variant.
	Project       string   // Project path.
	Scheme        string   // Scheme to archive.
	ArchivePath   string   // Output archive path.
	Configuration string   // Build configuration. Empty uses the scheme default.
	Distribution  bool     // Whether to build the library for distribution.
}

// Returns the archive argument list.
func (o ArchiveOptions) Args() []string {
	args := []string{"archive", "-showBuildTimingSummary"}
	args = append(args, o.Flags...)
	if o.Configuration != "" {
		args = append(args, "-configuration", o.Configuration)
	}
	if o.Distribution {
		args = append(args, "BUILD_LIBRARY_FOR_DISTRIBUTION=YES")
	}
	args = append(args, "-project", o.Project, "-scheme", o.Scheme, "-archivePath", o.ArchivePath)
	return append(args, "SKIP_INSTALL=NO")
}

// Runs build tool invocations.
type Invoker struct {
	executor Executor
	workDir  string // Prefix trimmed from diagnostics.
}

// Creates an invoker.
func New(executor Executor, workDir string) *Invoker {
	return &Invoker{executor: executor, workDir: workDir}
}

// Archives a scheme for one variant.
func (inv *Invoker) Archive(ctx context.Context, opts ArchiveOptions) *Invocation {
	return inv.run(ctx, opts.Args())
}

// Merges per-SDK archives into a multi-architecture bundle at output.
//
// The args hold the -archive/-framework or -archive/-library[/-headers]
// references of every input.
func (inv *Invoker) CreateXCFramework(ctx context.Context, args []string, output string) *Invocation {
	full := append([]string{"-create-xcframework"}, args...)
	full = append(full, "-output", output)
	return inv.run(ctx, full)
}

// Executes args and classifies the result.
func (inv *Invoker) run(ctx context.Context, args []string) *Invocation {
	res := &Invocation{Args: args, Results: report.New()}

	out, err := inv.executor.Execute(ctx, args)
	switch {
	case err != nil:
		res.ExitCode = -1
		res.Output = err.Error()
		res.Results.Error(Topic, UnsuccessfulExitMessage)
	case out.ExitCode != 0:
		res.ExitCode = out.ExitCode
		res.Output = out.Output
		res.Results.Error(Topic, UnsuccessfulExitMessage)
	default:
		res.Output = out.Output
	}

	res.Results.Merge(ParseOutput(res.Output, inv.workDir))

	switch res.Results.Type() {
	case report.Error:
		res.Outcome = Failure
	case report.Warning:
		res.Outcome = Warning
	}

	slog.Debug("xcodebuild finished",
		"mode", args[0],
		"exit", res.ExitCode,
		"outcome", res.Outcome.String(),
		"errors", res.Results.Count(report.Error),
		"warnings", res.Results.Count(report.Warning),
	)
	if res.Failed() {
		slog.Debug("xcodebuild command", "args", strings.Join(args, " "))
	}

	return res
}
