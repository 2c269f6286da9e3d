package errors

import (
	"errors"
	"fmt"
	"strings"
)

// CLIError wraps an error with user-friendly context and suggestions.
type CLIError struct {
	// Err is the underlying error
	Err error

	// Message is a user-friendly description of what went wrong
	Message string

	// Suggestion is an actionable hint for the user
	Suggestion string

	// Details provides additional context (optional)
	Details string
}

func (e *CLIError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Details != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Details)
	}

	if e.Suggestion != "" {
		sb.WriteString("\n\n")
		sb.WriteString(e.Suggestion)
	}

	return sb.String()
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// ErrorMessenger provides customizable error messages.
// Implement this interface to customize suggestions for your CLI.
type ErrorMessenger interface {
	// NotFoundMessage returns the message and suggestion for a missing path.
	NotFoundMessage(path string) (message, suggestion string)

	// InvalidConfigMessage returns the message and suggestion for empty or
	// wrongly shaped documents.
	InvalidConfigMessage(path string) (message, suggestion string)

	// ParseErrorMessage returns the message and suggestion for syntax errors.
	ParseErrorMessage(path string) (message, suggestion string)

	// DeserializationMessage returns the message and suggestion for corrupt artifacts.
	DeserializationMessage(path string) (message, suggestion string)

	// PermissionDeniedMessage returns the message and suggestion for permission errors.
	PermissionDeniedMessage(path string) (message, suggestion string)
}

// DefaultMessenger provides default error messages.
type DefaultMessenger struct{}

func (m DefaultMessenger) NotFoundMessage(path string) (string, string) {
	return fmt.Sprintf("The file at '%s' was not found.", path),
		"Check the path, or create the file before running this command."
}

func (m DefaultMessenger) InvalidConfigMessage(path string) (string, string) {
	return fmt.Sprintf("The file at '%s' must contain a valid mapping.", path),
		"Make sure the document is not empty and its top level is made of key: value pairs."
}

func (m DefaultMessenger) ParseErrorMessage(path string) (string, string) {
	return fmt.Sprintf("Could not parse the content in '%s'.", path),
		"Check the file for syntax errors such as bad indentation or unbalanced brackets."
}

func (m DefaultMessenger) DeserializationMessage(path string) (string, string) {
	return fmt.Sprintf("Could not load the binary artifact at '%s'.", path),
		"The file may be corrupt or written by an incompatible version.\nRegenerate the artifact and try again."
}

func (m DefaultMessenger) PermissionDeniedMessage(path string) (string, string) {
	return fmt.Sprintf("Permission denied for '%s'.", path),
		"Check the file and directory permissions."
}

// WrapConfig configures error wrapping behavior.
type WrapConfig struct {
	Messenger ErrorMessenger
}

// Option configures WrapConfig.
type Option func(*WrapConfig)

// WithMessenger sets a custom error messenger.
func WithMessenger(m ErrorMessenger) Option {
	return func(c *WrapConfig) {
		c.Messenger = m
	}
}

func getMessenger(opts []Option) ErrorMessenger {
	cfg := &WrapConfig{
		Messenger: DefaultMessenger{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg.Messenger
}

// Wrap converts a classified error into a CLIError with guidance.
// Errors without a known kind are returned unchanged.
func Wrap(err error, opts ...Option) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	path := pathOf(err)
	messenger := getMessenger(opts)

	var msg, suggestion string
	switch Classify(err) {
	case ErrNotFound:
		msg, suggestion = messenger.NotFoundMessage(path)
	case ErrInvalidConfig:
		msg, suggestion = messenger.InvalidConfigMessage(path)
	case ErrParse:
		msg, suggestion = messenger.ParseErrorMessage(path)
	case ErrDeserialization:
		msg, suggestion = messenger.DeserializationMessage(path)
	case ErrPermissionDenied:
		msg, suggestion = messenger.PermissionDeniedMessage(path)
	default:
		return err
	}

	return &CLIError{
		Err:        err,
		Message:    msg,
		Details:    causeOf(err),
		Suggestion: suggestion,
	}
}

func pathOf(err error) string {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr.Path
	}
	return ""
}

func causeOf(err error) string {
	var opErr *OpError
	if errors.As(err, &opErr) && opErr.Err != nil {
		return opErr.Err.Error()
	}
	return ""
}
