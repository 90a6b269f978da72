// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pass

import (
	"github.com/myrrc/tinycoverage/errors"
)

// NotesUnavailable reports whether err indicates the notes file for a
// compile unit could not be opened (not fatal, per §7).
func NotesUnavailable(err error) bool {
	return errors.IsNotesUnavailable(err)
}

func wrapNotesUnavailable(sourceFile string, cause error) error {
	return errors.NotesUnavailable(sourceFile, cause)
}
