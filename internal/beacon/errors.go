package beacon

import "errors"

// Derivation failures are deterministic input-validation errors, never
// transient. Callers abort the attempt, not the process.
var (
	ErrInvalidVersion = errors.New("unsupported entropy version")
	ErrNoRegionParams = errors.New("no region parameters")
	ErrNoDataRate     = errors.New("no data rate")
)
