package utils

import "errors"

// Store-specific failures are mapped onto this taxonomy at the storage and
// repository boundaries; the pipelines only ever branch on these.
var (
	ErrNotFound       = errors.New("not found")
	ErrDecodeFailure  = errors.New("media decode failed")
	ErrStoreFailure   = errors.New("storage backend failure")
	ErrValidation     = errors.New("validation failed")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrConfirmExpired = errors.New("confirmation expired or unknown")
)
