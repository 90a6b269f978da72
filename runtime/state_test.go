// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/myrrc/tinycoverage/wire"
)

func newTestState(t *testing.T, n int, names []string) (*State, string) {
	t.Helper()
	s := New(WithCapacity(4096))
	s.RegisterModule(make([]byte, n), names)

	path := filepath.Join(t.TempDir(), "report")
	if err := s.Init(path); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return s, path
}

func readWords(t *testing.T, path string) []uint32 {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data)%4 != 0 {
		t.Fatalf("report file length %d is not word-aligned", len(data))
	}
	r := wire.NewReader(bytes.NewReader(data))
	var words []uint32
	for {
		w, err := r.ReadWord()
		if err != nil {
			break
		}
		words = append(words, w)
	}
	return words
}

func TestNoTestFinishedProducesOnlyDictionary(t *testing.T) {
	s, path := newTestState(t, 2, []string{"main", "foo"})
	if err := s.ShutDown(); err != nil {
		t.Fatalf("ShutDown: %v", err)
	}

	words := readWords(t, path)
	if len(words) == 0 || words[0] != magicNamesIndices {
		t.Fatalf("expected report to start with NamesIndices, got %v", words)
	}
	for _, w := range words {
		if w == magicTestRecord {
			t.Fatalf("no TestFinished was called; report must not contain a TestRecord: %v", words)
		}
	}
}

func TestFinishedWithNoHitsProducesEmptyRecord(t *testing.T) {
	s, path := newTestState(t, 3, []string{"main", "main", "main"})
	s.TestFinished()
	if err := s.ShutDown(); err != nil {
		t.Fatalf("ShutDown: %v", err)
	}

	words := readWords(t, path)
	if len(words) < 2 || words[0] != magicTestRecord || words[1] != magicNamesIndices {
		t.Fatalf("expected [TestRecord, NamesIndices, ...], got %v", words)
	}
}

func TestFinishedDeltaAndClear(t *testing.T) {
	s, path := newTestState(t, 4, []string{"main", "main", "foo", "bar"})
	s.counters[0] = 1
	s.counters[2] = 1
	s.TestFinished()

	// first record: blocks 0 and 2. Counters must now be cleared.
	for i, c := range s.counters {
		if c != 0 {
			t.Fatalf("counters[%d] should have been cleared by TestFinished", i)
		}
	}

	s.counters[3] = 1
	s.TestFinished()

	if err := s.ShutDown(); err != nil {
		t.Fatalf("ShutDown: %v", err)
	}

	words := readWords(t, path)
	want := []uint32{magicTestRecord, 0, 2, magicTestRecord, 3, magicNamesIndices}
	if len(words) < len(want) {
		t.Fatalf("report too short: %v", words)
	}
	for i, w := range want {
		if words[i] != w {
			t.Fatalf("word %d = %#x, want %#x (full: %v)", i, words[i], w, words)
		}
	}
}

func TestFooBarMainScenario(t *testing.T) {
	// Mirrors spec.md §8's concrete scenario: block 0 = main-entry, 1 =
	// then-branch, 2 = else-branch, 3 = post-merge, 4 = foo-entry,
	// 5 = bar-entry. Run with argc == 1 takes the else branch, then foo.
	names := []string{"main", "main", "main", "main", "foo", "bar"}
	s, path := newTestState(t, 6, names)

	// argc == 1 takes the else branch (calls bar, block 5) first, then
	// the harness unconditionally calls the opposite branch (foo,
	// block 4) before the second test_finished.
	s.counters[0] = 1
	s.counters[2] = 1
	s.counters[3] = 1
	s.counters[5] = 1
	s.TestFinished()

	s.counters[4] = 1
	s.TestFinished()

	if err := s.ShutDown(); err != nil {
		t.Fatalf("ShutDown: %v", err)
	}

	words := readWords(t, path)
	want := []uint32{
		magicTestRecord, 0, 2, 3, 5,
		magicTestRecord, 4,
		magicNamesIndices,
	}
	for i, w := range want {
		if words[i] != w {
			t.Fatalf("word %d = %#x, want %#x (full: %v)", i, words[i], w, words)
		}
	}

	idx := len(want)
	// NamesIndices: one id per block, main repeated 4x then foo then bar.
	idMain, idFoo, idBar := words[idx], words[idx+4], words[idx+5]
	if idMain == idFoo || idMain == idBar || idFoo == idBar {
		t.Fatalf("expected three distinct name ids, got main=%d foo=%d bar=%d", idMain, idFoo, idBar)
	}
	for _, w := range words[idx : idx+4] {
		if w != idMain {
			t.Fatalf("expected all four main blocks to share id %d, got %d", idMain, w)
		}
	}
}

func TestInitTwiceFails(t *testing.T) {
	s, path := newTestState(t, 1, []string{"main"})
	_ = path
	if err := s.Init(path); err == nil {
		t.Fatalf("second Init should fail: runtime is already INITIALIZED")
	}
}

func TestShutDownBeforeInitFails(t *testing.T) {
	s := New()
	s.RegisterModule(make([]byte, 1), []string{"main"})
	if err := s.ShutDown(); err == nil {
		t.Fatalf("ShutDown before Init should fail: runtime is UNINIT")
	}
}
