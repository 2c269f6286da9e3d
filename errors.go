package mlkit

import (
	mlerrors "github.com/randalmurphal/mlkit/errors"
)

// Error kinds returned by Toolkit operations. Test with errors.Is.
var (
	// ErrNotFound indicates the file or path to read does not exist.
	ErrNotFound = mlerrors.ErrNotFound

	// ErrInvalidConfig indicates a document parsed but is empty or not a mapping.
	ErrInvalidConfig = mlerrors.ErrInvalidConfig

	// ErrParse indicates the content could not be interpreted in its format.
	ErrParse = mlerrors.ErrParse

	// ErrDeserialization indicates a binary artifact could not be reconstructed.
	ErrDeserialization = mlerrors.ErrDeserialization
)
