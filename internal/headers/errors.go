package headers

import "errors"

var (
	ErrHeaderCollision     = errors.New("header collision")
	ErrFileSystemOperation = errors.New("file system operation failed")
	ErrUnknownMode         = errors.New("unknown link mode")
	ErrInvalidNamespace    = errors.New("invalid header namespace")
)
