package platform

import "errors"

var (
	ErrUnknownPlatform = errors.New("unknown platform")
	ErrUnknownSDK      = errors.New("unknown sdk")
)
