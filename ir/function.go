// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ir

// Linkage mirrors the handful of LLVM linkage types the pass inspects
// or assigns.
type Linkage int

const (
	LinkageExternal Linkage = iota
	LinkagePrivate
	LinkageAvailableExternally
	LinkageLinkOnceODR
	LinkageExternalWeak
)

// Function is a module-level function and its control-flow graph.
type Function struct {
	Name    string // mangled linkage name
	Linkage Linkage

	Entry  *BasicBlock
	Blocks []*BasicBlock

	Subprogram *Subprogram // nil if the function lacks debug info
}

// AddBlock appends bb to the function's block list and takes ownership
// of it (bb.Func() will return this function).
func (f *Function) AddBlock(bb *BasicBlock) {
	bb.fn = f
	f.Blocks = append(f.Blocks, bb)
	if f.Entry == nil {
		f.Entry = bb
	}
}

// EntryTerminatorUnreachable reports whether F's entry block ends in an
// unreachable instruction, per the reserved-function check in §4.G /
// §4.D ("Unreachable entry terminator ... skipped by design").
func (f *Function) EntryTerminatorUnreachable() bool {
	if f.Entry == nil || len(f.Entry.Insns) == 0 {
		return false
	}
	last := f.Entry.Insns[len(f.Entry.Insns)-1]
	return last.Op == OpUnreachable
}

// Exits returns the function's blocks that have no successors, i.e. its
// return points. Post-dominance is computed relative to a virtual exit
// node that these all flow into.
func (f *Function) Exits() []*BasicBlock {
	var exits []*BasicBlock
	for _, bb := range f.Blocks {
		if len(bb.Succs) == 0 {
			exits = append(exits, bb)
		}
	}
	return exits
}
