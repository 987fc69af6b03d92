// Provides platform-appropriate default paths for xcforge.
//
// Paths follow XDG conventions on Linux and platform-native conventions on
// macOS and Windows. The tool name "xcforge" is used as the subdirectory under
// each base path. Intermediate archives live under the cache directory so they
// can be discarded at any time; final products live next to the chosen output
// directory.
package paths
