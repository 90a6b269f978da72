// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ir

// BasicBlock is a maximal straight-line sequence of instructions with a
// single entry and single exit, per the glossary.
type BasicBlock struct {
	Name  string
	Insns []*Instruction
	Preds []*BasicBlock
	Succs []*BasicBlock

	fn *Function
}

// AddEdge links from as a predecessor of to and to as a successor of
// from. Edges must be built via this helper so dominance computation
// always sees a consistent graph.
func AddEdge(from, to *BasicBlock) {
	from.Succs = append(from.Succs, to)
	to.Preds = append(to.Preds, from)
}

// FirstNonPhiOrDbgOrLifetime returns the first instruction in the block
// that is not a phi, debug intrinsic or lifetime intrinsic, or nil if
// the block contains only such instructions (§4.A step 1).
func (b *BasicBlock) FirstNonPhiOrDbgOrLifetime() *Instruction {
	for _, insn := range b.Insns {
		if !insn.IsDebugOrLifetime() {
			return insn
		}
	}
	return nil
}

// FirstInsertionPoint returns the index of the first instruction after
// which coverage may not be injected before, mirroring LLVM's
// getFirstInsertionPt: the position after any leading phis, but catching
// blocks with no valid slot at all (catchswitch-shaped blocks in the
// original; here, a non-empty block with nothing but phis). An empty
// block's insertion point is index 0. ok is false when no insertion
// point exists.
func (b *BasicBlock) FirstInsertionPoint() (index int, ok bool) {
	for i, insn := range b.Insns {
		if insn.Op != OpPhi {
			return i, true
		}
	}
	return 0, len(b.Insns) == 0
}

// IsEntry reports whether b is its function's entry block.
func (b *BasicBlock) IsEntry() bool {
	return b.fn != nil && b.fn.Entry == b
}

// Func returns the owning function.
func (b *BasicBlock) Func() *Function { return b.fn }

// HoistPrologue migrates static allocas and llvm.localescape calls from
// the front of the entry block to stay ahead of the insertion point, per
// §4.B step 1 ("migrate static stack allocations and local-escape
// intrinsics so they remain in the entry prologue"). It returns the
// updated insertion index.
func (b *BasicBlock) HoistPrologue(insertAt int) int {
	var prologue, rest []*Instruction
	for _, insn := range b.Insns {
		if insn.Op == OpAlloca || insn.Op == OpLocalEscape {
			prologue = append(prologue, insn)
		} else {
			rest = append(rest, insn)
		}
	}
	if len(prologue) == 0 {
		return insertAt
	}
	b.Insns = append(append([]*Instruction{}, prologue...), rest...)
	if len(prologue) > insertAt {
		return len(prologue)
	}
	return insertAt
}

// SplitAndInsertIfThen implements the primitive design note 9 asks for:
// "a utility that splits a basic block at a given instruction and
// inserts a new conditional branch". It splits b at index, inserting
// the load into the head and the store into a new "then" block that
// is taken only when cond holds, per §4.B steps 2-3:
//
//	head:  ...insns[:at]..., load, condbr cond, then, cont
//	then:  store                 (single edge to cont)
//	cont:  insns[at:]..., (original successors)
//
// The original block's identity is reused as head; then and cont are
// freshly allocated and linked into the function's block list by the
// caller. The one-shot property falls out of leaving the false arm
// (head -> cont) empty: cont never touches the flag.
func (b *BasicBlock) SplitAndInsertIfThen(at int, load, cond, store *Instruction) (head, then, cont *BasicBlock) {
	load.Synthetic = true
	cond.Synthetic = true
	store.Synthetic = true

	cont = &BasicBlock{Name: b.Name + ".cont", Insns: b.Insns[at:], fn: b.fn, Succs: b.Succs}
	for _, s := range cont.Succs {
		for i, p := range s.Preds {
			if p == b {
				s.Preds[i] = cont
			}
		}
	}

	then = &BasicBlock{Name: b.Name + ".then", Insns: []*Instruction{store}, fn: b.fn}
	AddEdge(then, cont)

	b.Insns = append(append([]*Instruction{}, b.Insns[:at]...), load, cond)
	b.Succs = nil
	AddEdge(b, then)
	AddEdge(b, cont)

	return b, then, cont
}
