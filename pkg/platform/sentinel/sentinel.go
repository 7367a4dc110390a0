package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors:
//   - ErrNotFound: record does not exist in store
//   - ErrUnavailable: database or broker temporarily unreachable
//   - ErrTxAborted: unit of work rolled back before commit
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
	ErrTxAborted   = errors.New("transaction aborted")
)
