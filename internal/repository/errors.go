package repository

import "errors"

// ErrStateConflict indicates the state store was written by another process
// between Load and Save. The run's output files are still valid; the caller
// decides whether to retry the reconcile against fresh state.
var ErrStateConflict = errors.New("state store version conflict")
