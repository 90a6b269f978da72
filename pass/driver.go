// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pass

import (
	"io"
	"strings"

	"github.com/myrrc/tinycoverage/internal/errorpanic"
	"github.com/myrrc/tinycoverage/ir"
)

// NotesSink opens (or otherwise obtains) the writer a compile unit's
// notes should be appended to, named <source_basename>.tcno by
// convention (§4.D); the driver does not touch the filesystem directly
// so it stays testable without one.
type NotesSink func(sourceFile string) (io.WriteCloser, error)

// Stats summarizes one Driver.Run or DryRun, per the (new) dry-run mode
// in SPEC_FULL.md §4.G.
type Stats struct {
	Functions                   int
	SkippedReservedFunctions    int
	SkippedUnreachableFunctions int
	InstrumentedBlocks          int

	// LoopBackEdges counts edges ir.IsBackEdge flags across every
	// instrumented function, a coarse loop-density diagnostic the
	// selector itself does not need (it already treats loop headers
	// like any other block, per §4.A); surfaced so a caller tuning
	// instrumentation density has some idea how loop-heavy the module
	// is before deciding whether the selector's reduction is enough.
	LoopBackEdges int
}

// Driver orchestrates components A->D per function and C's constructor
// synthesis across a module, per §4.G. A Driver holds per-run mutable
// state that Run clears at entry; per §5, a Driver must not be reused
// across concurrent Run calls — callers processing distinct modules
// concurrently must use their own Driver instance each.
type Driver struct {
	diagnostics []error
	stats       Stats
}

// NewDriver returns a fresh Driver.
func NewDriver() *Driver {
	return &Driver{}
}

// Diagnostics returns the non-fatal problems recorded by the most
// recent Run (e.g. notes-file open failures, per §4.G's failure
// semantics: "instrumentation still proceeds").
func (d *Driver) Diagnostics() []error {
	return d.diagnostics
}

// Stats returns the totals accumulated by the most recent Run.
func (d *Driver) Stats() Stats {
	return d.stats
}

// Run drives the pass across every function in m's non-skeleton compile
// units, then synthesizes the module constructor. notes may be nil, in
// which case no notes files are written (instrumentation still
// happens). It returns the module metadata description (§4.C) or an
// error only for conditions that are not recoverable per §7 (there are
// none in this implementation: notes failures are diagnostics, not
// errors).
func (d *Driver) Run(m *ir.Module, notes NotesSink) (*ModuleMetadata, error) {
	d.diagnostics = nil
	d.stats = Stats{}

	var funcNames []string
	var blocksPerFunc []int
	base := 0

	for _, cu := range m.CompileUnits {
		if cu.IsSkeleton() {
			continue
		}

		cuNotes := CompileUnitNotes{SourceFile: cu.SourceFile}

		for _, fn := range cu.Functions {
			blocks, fnNotes, ok := d.instrumentFunctionRecovering(fn, base, &d.stats)
			if !ok {
				continue
			}

			funcNames = append(funcNames, fn.Name)
			blocksPerFunc = append(blocksPerFunc, blocks)
			cuNotes.Functions = append(cuNotes.Functions, fnNotes)
			base += blocks
		}

		if notes != nil && len(cuNotes.Functions) > 0 {
			d.writeNotes(notes, cuNotes)
		}
	}

	metadata := BuildModuleMetadata(m, funcNames, blocksPerFunc)
	patchCounterGlobal(m, metadata.Counters)
	return metadata, nil
}

// patchCounterGlobal backfills the Counters pointer on every synthetic
// load/store the injector emitted, once the flat counters array (§4.C)
// exists. CounterIndex is set at injection time since it only depends
// on each function's running offset; Counters cannot be until the
// module-level global itself has been allocated.
func patchCounterGlobal(m *ir.Module, counters *ir.GlobalVar) {
	for _, cu := range m.CompileUnits {
		for _, fn := range cu.Functions {
			for _, bb := range fn.Blocks {
				for _, insn := range bb.Insns {
					if insn.Synthetic && (insn.Op == ir.OpLoad || insn.Op == ir.OpStore) {
						insn.Counters = counters
					}
				}
			}
		}
	}
}

// DryRun runs the selector and metadata-sizing steps without mutating
// the IR or writing notes, per SPEC_FULL.md's (new) dry-run mode.
func (d *Driver) DryRun(m *ir.Module) Stats {
	total := Stats{}
	for _, cu := range m.CompileUnits {
		if cu.IsSkeleton() {
			continue
		}
		for _, fn := range cu.Functions {
			total.Functions++
			if isReservedFunction(fn) {
				total.SkippedReservedFunctions++
				continue
			}
			if fn.EntryTerminatorUnreachable() {
				total.SkippedUnreachableFunctions++
				continue
			}
			total.InstrumentedBlocks += len(SelectBlocks(fn))
			total.LoopBackEdges += countBackEdges(fn)
		}
	}
	return total
}

// countBackEdges tallies ir.IsBackEdge over every edge in fn, computed
// against fn's own dominator tree. Must run before injection splits any
// block, since a post-split block's successor set no longer matches the
// edges that existed when the function was written.
func countBackEdges(fn *ir.Function) int {
	dt := ir.BuildDominatorTree(fn)
	n := 0
	for _, bb := range fn.Blocks {
		for _, s := range bb.Succs {
			if ir.IsBackEdge(bb, s, dt) {
				n++
			}
		}
	}
	return n
}

// instrumentFunction runs the selector and injector over fn, mutating
// its CFG in place, and returns the number of blocks it instrumented
// plus the notes for those blocks. ok is false if fn was skipped
// entirely (§4.G's exclusions, mirroring sancov.cpp's
// instrumentFunction guard).
func (d *Driver) instrumentFunction(fn *ir.Function, base int, stats *Stats) (instrumented int, notes FunctionNotes, ok bool) {
	stats.Functions++

	if isReservedFunction(fn) {
		stats.SkippedReservedFunctions++
		return 0, FunctionNotes{}, false
	}
	if fn.EntryTerminatorUnreachable() {
		stats.SkippedUnreachableFunctions++
		return 0, FunctionNotes{}, false
	}

	stats.LoopBackEdges += countBackEdges(fn)

	selected := SelectBlocks(fn)
	if len(selected) == 0 {
		return 0, FunctionNotes{}, false
	}

	notes = FunctionNotes{Name: fn.Name}
	for i, bb := range selected {
		notes.Blocks = append(notes.Blocks, CollectLineSet(bb))
		// Selection already ran over the pre-injection CFG (§4.A is
		// computed once); InjectCoverage mutates bb in place and
		// returns the new tail block, so bb's identity and position in
		// fn.Blocks are preserved and only the split siblings need
		// adding. idx is base+i, the block's flat position in the
		// module-wide counters array, not its position within fn.
		cont := InjectCoverage(fn, bb, base+i, nil)
		then := bb.Succs[0]
		fn.Blocks = append(fn.Blocks, then, cont)
	}

	stats.InstrumentedBlocks += len(selected)
	return len(selected), notes, true
}

// instrumentFunctionRecovering wraps instrumentFunction with a
// recover, so a malformed CFG in one function (e.g. a block the
// selector's dominance computation cannot make sense of) degrades to a
// skipped function plus a diagnostic instead of aborting the whole
// module's instrumentation, consistent with §4.G's "instrumentation
// still proceeds" stance on partial failures.
func (d *Driver) instrumentFunctionRecovering(fn *ir.Function, base int, stats *Stats) (instrumented int, notes FunctionNotes, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if err := errorpanic.Handle(r); err != nil {
				d.diagnostics = append(d.diagnostics, err)
				instrumented, notes, ok = 0, FunctionNotes{}, false
			}
		}
	}()
	return d.instrumentFunction(fn, base, stats)
}

func (d *Driver) writeNotes(sink NotesSink, cu CompileUnitNotes) {
	w, err := sink(cu.SourceFile)
	if err != nil {
		d.diagnostics = append(d.diagnostics, wrapNotesUnavailable(cu.SourceFile, err))
		return
	}
	defer w.Close()

	if err := EmitNotes(w, cu); err != nil {
		d.diagnostics = append(d.diagnostics, wrapNotesUnavailable(cu.SourceFile, err))
	}
}

// isReservedFunction reports whether fn must never be instrumented per
// §3/§4.G because of its available-externally linkage or a reserved
// name (__sanitizer_, __tinycoverage_, or containing ".module_ctor").
// The unreachable-entry exclusion is checked separately, through
// ir.Function.EntryTerminatorUnreachable.
func isReservedFunction(fn *ir.Function) bool {
	if fn.Linkage == ir.LinkageAvailableExternally {
		return true
	}
	if strings.HasPrefix(fn.Name, "__sanitizer_") || strings.HasPrefix(fn.Name, "__tinycoverage_") {
		return true
	}
	if strings.Contains(fn.Name, ".module_ctor") {
		return true
	}
	return false
}
