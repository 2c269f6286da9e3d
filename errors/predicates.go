package errors

import (
	"errors"
	"io/fs"
)

// IsNotFound checks if an error means the target path does not exist.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

// IsInvalidConfig checks if an error is a wrong-shape or empty document.
func IsInvalidConfig(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrInvalidConfig)
}

// IsParse checks if an error is a syntax-level parse failure.
func IsParse(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrParse)
}

// IsDeserialization checks if an error is a corrupt or incompatible artifact.
func IsDeserialization(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrDeserialization)
}

// IsPermissionError checks if an error is permission-related.
func IsPermissionError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrPermissionDenied) || errors.Is(err, fs.ErrPermission)
}

// Classify returns the sentinel kind carried by err, or nil if it has none.
func Classify(err error) error {
	for _, kind := range []error{ErrNotFound, ErrInvalidConfig, ErrParse, ErrDeserialization, ErrPermissionDenied} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if errors.Is(err, fs.ErrPermission) {
		return ErrPermissionDenied
	}
	return nil
}
