package catalogdash

import "github.com/kailas-cloud/catalogdash/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrFetchFailed       = domain.ErrFetchFailed
	ErrSuperseded        = domain.ErrSuperseded
	ErrBackendStatus     = domain.ErrBackendStatus
	ErrMalformedResponse = domain.ErrMalformedResponse
)
