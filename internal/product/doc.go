// Package product assembles the final per-package output.
//
// A [Product] pairs one package target with the archives built for its
// platform. [Products] groups every target of a package and turns their
// archives into one merged bundle: the product directory is removed, the
// merge tool is invoked with one reference per archive, and the package's
// auxiliary files are copied next to the bundle. A package with no archives
// produces nothing and touches nothing on disk.
//
// Example usage:
//
//	ps := product.New(pkg, "build/Products", items)
//	info, err := ps.Assemble(ctx, invoker, results)
//	if err != nil {
//	    return err
//	}
//	if info != nil {
//	    fmt.Println(info.Name, info.Version, info.Digest)
//	}
package product
