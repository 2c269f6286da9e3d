// Package errors defines the error taxonomy shared by the config and
// artifact packages, plus CLI-facing wrappers with user-friendly messaging.
//
// Sentinel kinds:
//   - ErrNotFound: target file/path does not exist
//   - ErrInvalidConfig: document is empty or not a mapping at top level
//   - ErrParse: content is not valid in its format
//   - ErrDeserialization: binary content cannot be reconstructed
//   - ErrPermissionDenied: filesystem refused access
//
// Operations return *OpError, which unwraps to both its kind and its cause:
//
//	doc, err := config.Read("params.yaml")
//	if errors.IsNotFound(err) {
//	    // create a default config
//	}
//
// Commands wrap errors for display:
//
//	return errors.Wrap(err)
//
// Wrap with custom messages by implementing ErrorMessenger:
//
//	wrapped := errors.Wrap(err, errors.WithMessenger(MyMessenger{}))
package errors
