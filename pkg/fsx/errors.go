package fsx

import "errors"

// ErrIOFailed classifies a failure to open, create, chmod, write, sync
// or rename a file while saving. Wrapped errors carry the operation and
// path for diagnostics; use errors.Is(err, ErrIOFailed) to classify. A
// failed chown is ignored rather than reported, and a failed sync of
// the parent directory after rename is reported as ErrDirSync.
var ErrIOFailed = errors.New("fsx: io failed")
