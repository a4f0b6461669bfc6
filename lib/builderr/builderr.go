// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

// Package builderr classifies packaging failures so that callers can
// report a concrete cause without parsing error text.
//
// Every stage of the packaging pipeline returns errors built with the
// kind-specific constructors ([Validation], [IO], [Compilation],
// [Archive]) or [Wrap]. The orchestrator recovers the kind with
// [KindOf] when it builds its terminal report.
//
// This package depends on no other capucosmetic packages.
package builderr

import (
	"errors"
	"fmt"
)

// Kind classifies a build failure.
type Kind string

const (
	// KindNone is the kind of a nil error.
	KindNone Kind = ""

	// KindValidation indicates malformed or missing metadata fields
	// (empty name, path separators, version below 1). Raised before
	// any filesystem mutation, so there is nothing to roll back.
	KindValidation Kind = "validation"

	// KindIO indicates a staging directory, output directory, or
	// generic read/write failure.
	KindIO Kind = "io"

	// KindCompilation indicates the external compiler reported
	// failure, or reported success without producing the artifact.
	KindCompilation Kind = "compilation"

	// KindArchive indicates an archive write failure or a
	// post-write verification mismatch.
	KindArchive Kind = "archive"
)

// String returns the kind name used in reports ("ValidationError" and
// so on), matching the vocabulary of the build report.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindIO:
		return "IOError"
	case KindCompilation:
		return "CompilationError"
	case KindArchive:
		return "ArchiveError"
	case KindNone:
		return "none"
	default:
		return fmt.Sprintf("unknown(%s)", string(k))
	}
}

// Error is a classified build error. It wraps the underlying error so
// errors.Is and errors.As see the full chain.
type Error struct {
	// Kind classifies the error.
	Kind Kind

	// Err carries the human-readable message.
	Err error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// Validation creates a validation error.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Err: fmt.Errorf(format, args...)}
}

// IO creates an I/O error.
func IO(format string, args ...any) *Error {
	return &Error{Kind: KindIO, Err: fmt.Errorf(format, args...)}
}

// Compilation creates a compilation error.
func Compilation(format string, args ...any) *Error {
	return &Error{Kind: KindCompilation, Err: fmt.Errorf(format, args...)}
}

// Archive creates an archive error.
func Archive(format string, args ...any) *Error {
	return &Error{Kind: KindArchive, Err: fmt.Errorf(format, args...)}
}

// Wrap classifies err under kind with a context prefix:
//
//	builderr.Wrap(builderr.KindIO, err, "creating %s", path)
//
// produces "creating <path>: <err>". Returns nil when err is nil.
func Wrap(kind Kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	prefix := fmt.Sprintf(format, args...)
	return &Error{Kind: kind, Err: fmt.Errorf("%s: %w", prefix, err)}
}

// KindOf returns the kind of the outermost classified error in err's
// chain. Unclassified non-nil errors are reported as [KindIO]: every
// unclassified failure in the pipeline comes from the filesystem.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return KindIO
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
