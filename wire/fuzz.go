// Copyright (c) 2021 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// +build gofuzz

package wire

import "bytes"

// Fuzz drives Reader over arbitrary input, the same go-fuzz entry point
// shape the teacher ships in its own fuzz.go (there, fuzzing the wasm
// decoder; here, fuzzing the notes/report codec both sidecars share).
// Since wire has no schema of its own -- callers decide how many
// words/strings to expect -- this exercises the primitives an offline
// reader would actually call: alternating ReadWord and ReadString until
// the input is exhausted or a read fails.
func Fuzz(data []byte) int {
	r := NewReader(bytes.NewReader(data))

	for i := 0; ; i++ {
		var err error
		if i%2 == 0 {
			_, err = r.ReadWord()
		} else {
			_, err = r.ReadString()
		}
		if err != nil {
			return 0
		}
	}
}
