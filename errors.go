package vc2

import "errors"

// Error kinds per the error handling design: ConfigError and
// MalformedStream terminate the current sequence; IOError propagates
// whatever the underlying transport reported; BudgetExceeded reports
// that a component of an HQ slice needs more than 255 length units at
// the quantiser index chosen for the slice, and the encoder writes
// nothing for that picture. A slice that overruns its byte budget even
// at the maximum quantiser index is emitted at that index with no
// error.
var (
	ErrConfig          = errors.New("vc2: invalid configuration")
	ErrMalformedStream = errors.New("vc2: malformed stream")
	ErrIO              = errors.New("vc2: io error")
	ErrBudgetExceeded  = errors.New("vc2: slice budget exceeded")
)
