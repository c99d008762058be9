package item

import "errors"

// Error taxonomy shared by all journal operations. Callers match with
// errors.Is; wrapped messages carry the detail.
var (
	ErrValidation = errors.New("invalid input")
	ErrNotFound   = errors.New("not found")
	ErrStorage    = errors.New("storage failure")
)
