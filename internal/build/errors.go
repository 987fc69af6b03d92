package build

import "errors"

var (
	ErrBuild               = errors.New("build failed")
	ErrInvalidOptions      = errors.New("invalid build options")
	ErrFileSystemOperation = errors.New("file system operation failed")
)
