package aggregate

import "errors"

// ErrInvalidPage indicates a malformed offset/limit pair.
var ErrInvalidPage = errors.New("aggregate: invalid page")
