// Package headers materializes a package's header tree.
//
// For one build variant, every header of the package is first copied flat
// into <dest>/Headers, then placed again under its namespace directory as a
// relative symbolic link, a hard link, or a copy, depending on the selected
// [Mode] and the host [Capabilities]. Generated Swift compatibility headers,
// when present in the package sources, are copied into the directory named
// after the package root.
//
// Two different source files may never land on the same destination path.
// Such a collision returns [ErrHeaderCollision] instead of overwriting,
// except when both files have identical contents.
//
// Example usage:
//
//	l := headers.Linker{Mode: headers.Symlink, Capabilities: headers.HostCapabilities()}
//	res, err := l.Link(headers.Request{
//	    RootName:  "Alpha",
//	    SourceDir: "Pods/Alpha",
//	    Mappings:  target.HeaderMappings(),
//	    Dest:      "build/archive/iphoneos/Alpha",
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Dir, len(res.Files))
package headers
