package manifest

import "errors"

var (
	ErrInvalidManifest = errors.New("invalid manifest")
	ErrNoPackages      = errors.New("no packages resolved")
)
