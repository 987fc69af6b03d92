// Parses flags, configures logging and runs the xcforge commands.
//
// Global flags:
//
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output.
//	-d, --debug     Enable debug output.
//
// Commands:
//
//	build     Archive every package and assemble XCFrameworks.
//	plan      Print the variant plan as YAML without building.
//	version   Show version information.
//
// The build and plan commands read a manifest (-m, default xcforge.hcl) and
// accept a comma-separated platform list (-p) and a build configuration (-c).
// The build command additionally accepts:
//
//	-o, --output                            Directory receiving Products/.
//	-w, --work-dir                          Directory for intermediate archives.
//	    --no-clean                          Keep intermediate archives.
//	    --fail-fast                         Stop after the first failed archive.
//	    --build-library-for-distribution    Build libraries for distribution.
//	-j, --jobs                              Maximum concurrent archives.
//	    --timeout                           Per-invocation timeout.
//	    --link                              symlink, hardlink or copy.
//	    --no-allow-warnings                 Fail the build on warnings.
//	    --zip                               Zip each product directory.
//	    --xcodebuild                        Build tool executable.
//
// Flags override build-time defaults set via linker flags. After parsing, the
// global logger is reconfigured to reflect the final level and verbosity.
package cli
