// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pass

import (
	"fmt"

	"github.com/myrrc/tinycoverage/ir"
)

// InjectCoverage emits a one-time "set flag to true" sequence at bb's
// insertion point for the counters array slot idx, per §4.B. bb keeps
// its place in the function's block list as the guard's head; the
// function returns the new block that continues the original control
// flow after the guard. Neither it nor the new "then" block
// (bb.Succs[0]) is added to f.Blocks here: the caller adds both.
//
// InjectCoverage panics with an error (recoverable via errorpanic.Handle)
// if bb has no valid insertion point; callers are expected to have
// already filtered such blocks via SelectBlocks, so this indicates a
// caller bug rather than a malformed-input condition.
func InjectCoverage(f *ir.Function, bb *ir.BasicBlock, idx int, counters *ir.GlobalVar) *ir.BasicBlock {
	at, ok := bb.FirstInsertionPoint()
	if !ok {
		panic(fmt.Errorf("pass: InjectCoverage: block %q has no insertion point", bb.Name))
	}

	isEntry := bb.IsEntry()

	if isEntry {
		at = bb.HoistPrologue(at)
	}

	load := &ir.Instruction{Op: ir.OpLoad, NoSanitize: true, CounterIndex: idx, Counters: counters}
	cond := &ir.Instruction{Op: ir.OpCondBr}
	store := &ir.Instruction{Op: ir.OpStore, NoSanitize: true, CounterIndex: idx, Counters: counters}

	loc := debugLocFor(f, isEntry)
	load.Loc, cond.Loc, store.Loc = loc, loc, loc

	_, _, cont := bb.SplitAndInsertIfThen(at, load, cond, store)
	return cont
}

// debugLocFor synthesizes the DebugLoc the injected instructions carry
// when the builder has none to inherit, per §4.B step 5: line 0/column
// 0 in general, but the subprogram's scope line for the entry block.
func debugLocFor(f *ir.Function, isEntry bool) ir.DebugLoc {
	if f.Subprogram == nil {
		return ir.DebugLoc{}
	}
	if isEntry {
		return f.Subprogram.EntryLoc()
	}
	return f.Subprogram.Synthesize()
}
