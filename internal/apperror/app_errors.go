package apperror

import "errors"

// ErrNotFound - the requested record does not exist in the store.
var ErrNotFound = errors.New("not found")
