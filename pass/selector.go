// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pass

import "github.com/myrrc/tinycoverage/ir"

// SelectBlocks decides, per §4.A, which of f's basic blocks should be
// instrumented. The returned slice preserves f.Blocks order, which
// becomes the index the runtime and notes file use (§3: "Ordering is
// the traversal order of the selector").
//
// This selector does not guarantee a minimal feedback set in the
// graph-theoretic sense, only a useful reduction (§4.A); callers should
// only rely on the predicate below, not on any optimality claim.
func SelectBlocks(f *ir.Function) []*ir.BasicBlock {
	if len(f.Blocks) == 0 {
		return nil
	}

	dt := ir.BuildDominatorTree(f)
	pdt := ir.BuildPostDominatorTree(f)

	var selected []*ir.BasicBlock
	for _, bb := range f.Blocks {
		if shouldInstrument(f, bb, dt, pdt) {
			selected = append(selected, bb)
		}
	}
	return selected
}

func shouldInstrument(f *ir.Function, bb *ir.BasicBlock, dt *ir.DominatorTree, pdt *ir.PostDominatorTree) bool {
	if first := bb.FirstNonPhiOrDbgOrLifetime(); first != nil && first.Op == ir.OpUnreachable {
		return false
	}

	if _, ok := bb.FirstInsertionPoint(); !ok {
		return false
	}

	if bb.IsEntry() {
		return true
	}

	fullDom := ir.IsFullDominator(bb, dt)
	fullPostDomMultiPred := ir.IsFullPostDominator(bb, pdt) && len(bb.Preds) > 1

	return !fullDom && !fullPostDomMultiPred
}
