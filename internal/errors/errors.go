// Copyright (c) 2019 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errors implements the error kinds of §7's taxonomy
// (IoError, NotesUnavailable) as tagged types rather than a type
// hierarchy, mirroring the teacher's moduleError pattern (one struct
// per kind, exposed only through constructor functions and an Is*
// predicate). The errors package re-exports what other packages need.
package errors

import (
	"fmt"

	"golang.org/x/xerrors"
)

// ioError wraps a syscall-shaped failure: open, ftruncate, mmap, msync,
// munmap, close (§7 "IoError(operation, errno)").
type ioError struct {
	op    string
	cause error
}

func (e *ioError) Error() string { return fmt.Sprintf("%s: %v", e.op, e.cause) }
func (e *ioError) Unwrap() error { return e.cause }

// IoError wraps cause as an IoError for operation op.
func IoError(op string, cause error) error {
	return &ioError{op: op, cause: cause}
}

// notesUnavailableError indicates a compile unit's notes file could not
// be opened; the pass continues instrumenting without it (§4.D, §7).
type notesUnavailableError struct {
	sourceFile string
	cause      error
}

func (e *notesUnavailableError) Error() string {
	return fmt.Sprintf("notes unavailable for %s: %v", e.sourceFile, e.cause)
}

func (e *notesUnavailableError) Unwrap() error { return e.cause }

// NotesUnavailable wraps cause as a NotesUnavailable error for sourceFile.
func NotesUnavailable(sourceFile string, cause error) error {
	return &notesUnavailableError{sourceFile: sourceFile, cause: cause}
}

// IsNotesUnavailable reports whether err (or something it wraps) is a
// NotesUnavailable error.
func IsNotesUnavailable(err error) bool {
	var e *notesUnavailableError
	return xerrors.As(err, &e)
}

// IsIoError reports whether err (or something it wraps) is an IoError.
func IsIoError(err error) bool {
	var e *ioError
	return xerrors.As(err, &e)
}
