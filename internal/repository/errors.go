package repository

import "errors"

// ErrNotFound is returned by lookups that matched no account row. Callers
// translate it into their own sentinel instead of leaking it to transports.
var ErrNotFound = errors.New("repository: not found")
