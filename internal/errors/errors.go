package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
)

// InputKind classifies why a source file could not be loaded
type InputKind string

const (
	KindNotFound    InputKind = "not_found"
	KindIsDirectory InputKind = "is_directory"
	KindNotRegular  InputKind = "not_regular"
	KindPermission  InputKind = "permission"
	KindUnreadable  InputKind = "unreadable"
)

// InputError is reported when a file handed to the checker cannot be read.
// It is fatal for that file only; the rest of a batch keeps going.
type InputError struct {
	Kind       InputKind
	Path       string
	Op         string
	Underlying error
	Timestamp  time.Time
}

// NewInputError creates a new input error
func NewInputError(kind InputKind, op, path string, err error) *InputError {
	return &InputError{
		Kind:       kind,
		Path:       path,
		Op:         op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// ClassifyInput builds an InputError whose kind is derived from err.
func ClassifyInput(op, path string, err error) *InputError {
	kind := KindUnreadable
	switch {
	case stderrors.Is(err, fs.ErrNotExist):
		kind = KindNotFound
	case stderrors.Is(err, fs.ErrPermission):
		kind = KindPermission
	}
	return NewInputError(kind, op, path, err)
}

// Error implements the error interface
func (e *InputError) Error() string {
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("file not found: %s", e.Path)
	case KindIsDirectory:
		return fmt.Sprintf("path is a directory, not a file: %s", e.Path)
	case KindNotRegular:
		return fmt.Sprintf("not a regular file: %s", e.Path)
	case KindPermission:
		return fmt.Sprintf("permission denied: %s", e.Path)
	}
	if e.Underlying != nil {
		return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Underlying)
	}
	return fmt.Sprintf("failed to %s %s", e.Op, e.Path)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *InputError) Unwrap() error {
	return e.Underlying
}

// IsInputError reports whether err is or wraps an *InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return stderrors.As(err, &ie)
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("config error for field %s: %v", e.Field, e.Underlying)
	}
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError collects the per-file failures of a batch
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error, dropping nil entries
func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// ErrOrNil returns nil when no errors were collected.
func (e *MultiError) ErrOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

// Error implements the error interface
func (e *MultiError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d errors: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}
