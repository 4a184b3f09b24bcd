package collection_core

import "errors"

var (
	// ErrStoreUnavailable wraps any local or remote store I/O failure.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrStaleReadRisk is returned when a read that had to reach the server was served from a cache.
	ErrStaleReadRisk = errors.New("stale read risk: remote read served from cache")
	// ErrPartialBatchRisk is returned when a batch cannot be committed atomically.
	ErrPartialBatchRisk = errors.New("partial batch risk: batch exceeds atomic commit limit")
	// ErrTransformError is returned when a local record cannot be normalized into the remote schema.
	ErrTransformError = errors.New("transform error")
)

type StoreError struct {
	Store string
	Op    string
	Err   error
}

// Error implements error.
func (e *StoreError) Error() string {
	return e.Store + " " + e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() []error {
	return []error{ErrStoreUnavailable, e.Err}
}

func NewStoreError(store, op string, err error) error {
	if err == nil {
		return nil
	}

	return &StoreError{
		Store: store,
		Op:    op,
		Err:   err,
	}
}
