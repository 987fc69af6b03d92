// Package platform holds the static platform and SDK tables.
//
// Every supported platform maps to an ordered list of SDKs (a device SDK and,
// where one exists, a simulator SDK). Every SDK carries the destination string
// passed to the build tool and the CPU architectures it produces. The tables
// are fixed; anything outside them is a configuration error.
//
// Example usage:
//
//	sdks, err := platform.SDKs("ios")
//	if err != nil {
//	    return err
//	}
//	for _, sdk := range sdks {
//	    fmt.Println(sdk.Name, sdk.GenericDestination(), sdk.Archs)
//	}
package platform
