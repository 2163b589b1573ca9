package advisor

import "errors"

// ErrNoSnapshot is returned when an operation is invoked without input data.
var ErrNoSnapshot = errors.New("no snapshot loaded")
