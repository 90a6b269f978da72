// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pass

import (
	"io"
	"sort"

	"github.com/myrrc/tinycoverage/ir"
	"github.com/myrrc/tinycoverage/wire"
)

// notesMagic marks the start of one compile unit's entry in the notes
// file. The original repository used an ad-hoc text layout for this
// sidecar (parser.py's TcnoParser); §6.4 of the expanded spec instead
// gives it the same magic-prefixed, word-aligned binary layout as the
// report file, so both sidecars share the wire package's codec.
const notesMagic = 0x7c0003e0

// FunctionNotes is one function's contribution to a compile unit's
// notes file: its selected blocks' line sets, in selector order.
type FunctionNotes struct {
	Name   string
	Blocks [][]int // Blocks[i] is the deduplicated line set for block i
}

// CompileUnitNotes groups a compile unit's functions for §4.D: "the
// emitter groups by (source_file -> function_name -> block_index ->
// line_set)".
type CompileUnitNotes struct {
	SourceFile string
	Functions  []FunctionNotes
}

// CollectLineSet derives a block's line set from the debug locations of
// its non-debug instructions, per §4.D: "For each instruction I in a
// selected block, if I is not a debug intrinsic and carries a debug
// location with line > 0, include that line." The result is
// deduplicated; order is unspecified but stable per run (sorted here).
func CollectLineSet(bb *ir.BasicBlock) []int {
	seen := make(map[int]bool)
	for _, insn := range bb.Insns {
		if insn.Op == ir.OpDebugIntrinsic {
			continue
		}
		if insn.HasLine() {
			seen[insn.Loc.Line] = true
		}
	}
	lines := make([]int, 0, len(seen))
	for l := range seen {
		lines = append(lines, l)
	}
	sort.Ints(lines)
	return lines
}

// EmitNotes writes one compile unit's notes per §6.4's CUEntry grammar.
func EmitNotes(w io.Writer, cu CompileUnitNotes) error {
	writer := wire.NewWriter(w)
	writer.WriteWord(notesMagic)
	writer.WriteString(cu.SourceFile)
	writer.WriteWord(uint32(len(cu.Functions)))

	for _, fn := range cu.Functions {
		writer.WriteString(fn.Name)
		writer.WriteWord(uint32(len(fn.Blocks)))
		for _, lines := range fn.Blocks {
			writer.WriteWord(uint32(len(lines)))
			for _, line := range lines {
				writer.WriteWord(uint32(line))
			}
		}
	}

	return writer.Err()
}
