// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"io"

	"github.com/myrrc/tinycoverage/errors"
	"github.com/myrrc/tinycoverage/wire"
)

// Report magics, §6.3.
const (
	magicTestRecord      = 0xFEFEFEAA
	magicNamesIndices    = 0xFEFEFEAB
	magicNamesDictionary = 0xFEFEFEAC
)

// cursorWriter is an io.Writer over the tail of the mmapped region,
// advancing State's cursor as it writes. §7 leaves behavior undefined
// if a write would overflow the mapped capacity ("implementation may
// saturate or abort"); this implementation saturates: writes beyond
// the mapped region are silently dropped and ErrShortWrite is
// returned, so a misconfigured capacity degrades a report instead of
// crashing the process under test.
type cursorWriter struct {
	s *State
}

func (c cursorWriter) Write(p []byte) (int, error) {
	n := copy(c.s.mmapped[c.s.cursor:], p)
	c.s.cursor += n
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// TestFinished implements §4.F: append a delta TestRecord of newly-set
// block indices, clearing each as it is read. Ordering within the
// record is ascending block index, which falls out of scanning
// counters in order. It requires phase INITIALIZED (§4.F's state
// machine); the cursor is not thread-safe (§5) and must not overlap
// with another TestFinished or ShutDown call.
//
// Delta semantics are intentional, not a bug (§9 Open Question (3)): a
// reader cannot distinguish "block never hit" from "block hit before
// the first TestFinished call" from the report alone.
func (s *State) TestFinished() {
	if s.phase != phaseInitialized {
		panic("runtime: TestFinished called outside phase INITIALIZED")
	}

	w := wire.NewWriter(cursorWriter{s})
	w.WriteWord(magicTestRecord)
	for i, hit := range s.counters {
		if hit != 0 {
			w.WriteWord(uint32(i))
			s.counters[i] = 0
		}
	}
	// w.Err() is deliberately ignored here per §7: "test_finished has
	// no failure path" — a saturated write degrades silently.
}

// emitNamesDictionary implements §4.F's shutdown-time emission: a
// NamesIndices section mapping each block to a dense, first-seen-order
// name id, followed by a NamesDictionary section mapping each id to its
// string. Deduplicating once here instead of streaming per test keeps
// TestFinished a flat O(N) scan with O(hits) writes, per §4.F's
// rationale.
func (s *State) emitNamesDictionary() error {
	w := wire.NewWriter(cursorWriter{s})

	ids := make(map[string]uint32)
	var order []string

	w.WriteWord(magicNamesIndices)
	for _, name := range s.funcNames {
		id, ok := ids[name]
		if !ok {
			id = uint32(len(order))
			ids[name] = id
			order = append(order, name)
		}
		w.WriteWord(id)
	}

	w.WriteWord(magicNamesDictionary)
	for id, name := range order {
		w.WriteWord(uint32(id))
		w.WriteString(name)
	}

	if err := w.Err(); err != nil {
		return errors.IoError("write names dictionary", err)
	}
	return nil
}
