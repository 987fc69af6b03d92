package variant

import "errors"

var (
	ErrNoVariants = errors.New("no variants to build")
)
