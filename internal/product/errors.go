package product

import "errors"

var (
	ErrFileSystemOperation = errors.New("file system operation failed")
	ErrCopy                = errors.New("copy failed")
	ErrZip                 = errors.New("zip failed")
)
