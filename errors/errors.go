package errors

import "errors"

// Persistence error kinds. Every operation in this module classifies its
// failures with one of these so callers can branch with errors.Is.
var (
	// ErrNotFound indicates the file or path to read does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig indicates a document parsed but is empty or not a mapping.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrParse indicates the content could not be interpreted in its format.
	ErrParse = errors.New("parse error")

	// ErrDeserialization indicates a binary artifact could not be reconstructed.
	ErrDeserialization = errors.New("deserialization error")

	// ErrPermissionDenied indicates the filesystem refused access.
	ErrPermissionDenied = errors.New("permission denied")
)

// OpError records a failed file operation with the path it touched.
type OpError struct {
	Op   string // Operation that failed (e.g., "read config", "load artifact")
	Path string // Path the operation was acting on
	Kind error  // One of the sentinel kinds above, or nil if unclassified
	Err  error  // Underlying error
}

func (e *OpError) Error() string {
	msg := e.Op + " " + e.Path
	if e.Kind != nil {
		msg += ": " + e.Kind.Error()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *OpError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// New returns an OpError of the given kind.
func New(op, path string, kind, err error) *OpError {
	return &OpError{Op: op, Path: path, Kind: kind, Err: err}
}
