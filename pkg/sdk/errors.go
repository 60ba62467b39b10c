package lightarchive

import "github.com/lightsoft-dev/light-archive/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound     = domain.ErrArchiveNotFound
	ErrInvalidInput = domain.ErrInvalidInput
)
