package document

import "errors"

// ErrNotFound is returned by FindOne when no visible document matches the
// query.
var ErrNotFound = errors.New("document not found")
