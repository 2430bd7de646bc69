package fixedpoint

import "errors"

// ErrInvalidAmount is returned for malformed decimal input.
var ErrInvalidAmount = errors.New("fixedpoint: invalid amount")
