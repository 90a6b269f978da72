// Copyright (c) 2019 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errors exports tinycoverage's error kinds without pulling in
// the packages that construct them (§7's error taxonomy: IoError,
// NotesUnavailable; SelectionSkipped is not an error, just a pass
// decision, and has no constructor here).
package errors

import (
	internal "github.com/myrrc/tinycoverage/internal/errors"
)

// IoError wraps cause as a syscall-shaped failure for operation op
// (open, ftruncate, mmap, msync, munmap, close).
func IoError(op string, cause error) error {
	return internal.IoError(op, cause)
}

// NotesUnavailable wraps cause as a "notes file could not be opened"
// error for sourceFile; the pass continues without notes.
func NotesUnavailable(sourceFile string, cause error) error {
	return internal.NotesUnavailable(sourceFile, cause)
}

// IsIoError reports whether err is (or wraps) an IoError.
func IsIoError(err error) bool { return internal.IsIoError(err) }

// IsNotesUnavailable reports whether err is (or wraps) a NotesUnavailable error.
func IsNotesUnavailable(err error) bool { return internal.IsNotesUnavailable(err) }
