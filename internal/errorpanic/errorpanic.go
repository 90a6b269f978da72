// Copyright (c) 2016 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errorpanic recovers a pass-time panic into an error the
// driver can record as a diagnostic, mirroring the teacher's pattern
// of keeping recover() out of ordinary control flow: genuine runtime
// errors (index out of range, nil dereference) still propagate, since
// those indicate a bug in this package rather than a malformed input.
package errorpanic

import "runtime"

// Handle converts x (the value recovered from a panic) into an error,
// or re-panics if x is already an error of a kind that should not be
// swallowed.
func Handle(x any) (err error) {
	if x == nil {
		return nil
	}

	err, ok := x.(error)
	if !ok {
		panic(x)
	}
	if _, ok := err.(runtime.Error); ok {
		panic(x)
	}
	return err
}
