package xcodebuild

import "errors"

var (
	ErrExec    = errors.New("xcodebuild execution failed")
	ErrTimeout = errors.New("xcodebuild timed out")
)
