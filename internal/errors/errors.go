// Package errors is the error facade used across roadnet: stdlib matching
// helpers plus pkg/errors wrapping so wrapped failures keep a stack trace.
// The At* helpers attach the graph or sensor location a failure refers to in
// one fixed format, so logs and CLI output read the same everywhere.
package errors

import (
	stderrors "errors"

	pkgerrors "github.com/pkg/errors"
)

// New returns an error that formats as the given text.
func New(text string) error {
	return stderrors.New(text)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err.
func Unwrap(err error) error {
	return stderrors.Unwrap(err)
}

// Join returns an error that wraps the given errors.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}

// AsType finds the first error in err's tree of type T.
func AsType[T error](err error) (T, bool) {
	var target T
	ok := stderrors.As(err, &target)

	return target, ok
}

// Wrap returns an error annotating err with a stack trace and the supplied message.
func Wrap(err error, message string) error {
	return pkgerrors.Wrap(err, message)
}

// Wrapf returns an error annotating err with a stack trace and the format specifier.
func Wrapf(err error, format string, args ...any) error {
	return pkgerrors.Wrapf(err, format, args...)
}

// WithStack annotates err with a stack trace at the point WithStack was called.
func WithStack(err error) error {
	return pkgerrors.WithStack(err)
}

// WithMessage annotates err with a new message.
func WithMessage(err error, message string) error {
	return pkgerrors.WithMessage(err, message)
}

// Errorf formats according to a format specifier and returns the string as a
// value that satisfies error with stack trace.
func Errorf(format string, args ...any) error {
	return pkgerrors.Errorf(format, args...)
}

// Cause returns the underlying cause of the error, if possible.
//
//nolint:wrapcheck // Compatibility passthrough to preserve pkg/errors semantics.
func Cause(err error) error {
	return pkgerrors.Cause(err)
}

// AtNode annotates err with the graph node it concerns, e.g. "start 12".
func AtNode[ID ~int32](err error, role string, id ID) error {
	return pkgerrors.Wrapf(err, "%s %d", role, id)
}

// AtEdge annotates err with the node pair of a directed hop, e.g. "3 -> 4".
func AtEdge[ID ~int32](err error, from, to ID) error {
	return pkgerrors.Wrapf(err, "%d -> %d", from, to)
}

// AtSite annotates err with the measurement site it concerns.
func AtSite(err error, site int32) error {
	return pkgerrors.Wrapf(err, "site %d", site)
}

// AtSensor annotates err with the stored sensor channel id it concerns.
func AtSensor(err error, id string) error {
	return pkgerrors.Wrapf(err, "sensor id %q", id)
}

// InFile annotates err with the file being read or written.
func InFile(err error, op, path string) error {
	return pkgerrors.Wrapf(err, "%s %s", op, path)
}
