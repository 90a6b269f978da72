// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"os"

	"github.com/myrrc/tinycoverage/errors"
	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"
)

// phase is the runtime's state machine per §4.F: "UNINIT -> INITIALIZED
// -> FINALIZED". Calls outside the arrows are undefined; this package
// checks them defensively: Init and ShutDown return an error, and
// TestFinished, which has no error result, panics.
type phase int

const (
	phaseUninit phase = iota
	phaseInitialized
	phaseFinalized
)

// State is the process-wide singleton of §3's "Runtime state": the
// flat, already-linker-concatenated view of every instrumented
// module's counters/func_names arrays, plus the memory-mapped report
// file. It is exposed as a type (rather than only package-level
// functions) so tests can exercise independent instances; production
// code goes through the cgo-exported entry points in cgo.go, which
// operate on a single global instance to match the C ABI's assumption
// of one runtime per process.
type State struct {
	counters  []byte   // one byte-wide boolean per instrumented block, across all modules
	funcNames []string // parallel to counters: block i's owning function's linkage name

	file     *os.File
	mmapped  []byte
	cursor   int // byte offset into mmapped where the next write begins
	capacity int

	phase phase
}

// Option configures a State at construction time.
type Option func(*State)

// WithCapacity overrides the report file's upper-bound size, resolving
// §9 Open Question (2). The default is 200 KiB, matching the original
// deployment constant.
func WithCapacity(bytes int) Option {
	return func(s *State) { s.capacity = bytes }
}

// New returns a State in phase UNINIT with no registered modules.
func New(opts ...Option) *State {
	s := &State{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterModule appends one module's counters/func_names arrays to
// the flat view, implementing §4.E's "__tinycoverage_init...composes
// the per-module ranges into one flat view". It may be called any
// number of times before Init (module constructors run at load time,
// ahead of the host's explicit Init call) and must not be called
// afterward: per §3, "cross-module indexing is not defined" once the
// flat view has been handed to a report in progress.
//
// len(counters) must equal len(names); RegisterModule panics otherwise,
// since it indicates a malformed caller (the pass guarantees this
// invariant at emission time — see pass.ModuleMetadata).
func (s *State) RegisterModule(counters []byte, names []string) {
	if len(counters) != len(names) {
		panic("runtime: RegisterModule: len(counters) != len(names)")
	}
	s.counters = append(s.counters, counters...)
	s.funcNames = append(s.funcNames, names...)
}

// N returns the total number of instrumented blocks registered so far.
func (s *State) N() int {
	return len(s.counters)
}

// Init implements §4.E: open reportPath with create+truncate (mode
// 0666), truncate to the configured capacity, mmap it shared and
// write-only, and set the cursor to the map base. Returns an error
// wrapping the failing syscall; callers map that to -1 per §6.2/§7.
func (s *State) Init(reportPath string) error {
	if s.phase != phaseUninit {
		return xerrors.New("runtime: Init called outside phase UNINIT")
	}

	f, err := os.OpenFile(reportPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return errors.IoError("open", err)
	}

	if err := f.Truncate(int64(s.capacity)); err != nil {
		f.Close()
		return errors.IoError("ftruncate", err)
	}

	mapped, err := unix.Mmap(int(f.Fd()), 0, s.capacity, unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return errors.IoError("mmap", err)
	}

	s.file = f
	s.mmapped = mapped
	s.cursor = 0
	s.phase = phaseInitialized
	return nil
}

// ShutDown implements §4.E step 3 and §4.F's shutdown-time name
// dictionary: emit the function-name dictionary, msync the mapping,
// munmap, ftruncate the file to the actual bytes written, then close.
func (s *State) ShutDown() error {
	if s.phase != phaseInitialized {
		return xerrors.New("runtime: ShutDown called outside phase INITIALIZED")
	}

	if err := s.emitNamesDictionary(); err != nil {
		s.phase = phaseFinalized
		return err
	}

	if err := unix.Msync(s.mmapped, unix.MS_SYNC); err != nil {
		s.phase = phaseFinalized
		return errors.IoError("msync", err)
	}
	if err := unix.Munmap(s.mmapped); err != nil {
		s.phase = phaseFinalized
		return errors.IoError("munmap", err)
	}
	s.mmapped = nil

	// §4.E step 2: "ftruncate the file to the actual byte count written
	// ((cursor - base) * 4 + 4)". cursor here is already a byte offset,
	// so the *4 from the spec's word-counted cursor collapses to just
	// adding one trailing word.
	actual := int64(s.cursor + wordSize)
	if err := s.file.Truncate(actual); err != nil {
		s.phase = phaseFinalized
		return errors.IoError("ftruncate", err)
	}

	err := s.file.Close()
	s.phase = phaseFinalized
	if err != nil {
		return errors.IoError("close", err)
	}
	return nil
}

