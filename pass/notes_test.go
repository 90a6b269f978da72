// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pass

import (
	"bytes"
	"testing"

	"github.com/myrrc/tinycoverage/ir"
	"github.com/myrrc/tinycoverage/wire"
)

func TestCollectLineSetDedupsAndSortsSkipsDebugAndZero(t *testing.T) {
	bb := &ir.BasicBlock{Insns: []*ir.Instruction{
		{Op: ir.OpOther, Loc: ir.DebugLoc{Line: 5}},
		{Op: ir.OpOther, Loc: ir.DebugLoc{Line: 3}},
		{Op: ir.OpOther, Loc: ir.DebugLoc{Line: 5}},
		{Op: ir.OpDebugIntrinsic, Loc: ir.DebugLoc{Line: 99}},
		{Op: ir.OpOther, Loc: ir.DebugLoc{Line: 0}},
	}}

	got := CollectLineSet(bb)
	want := []int{3, 5}
	if len(got) != len(want) {
		t.Fatalf("CollectLineSet() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("CollectLineSet() = %v, want %v", got, want)
		}
	}
}

func TestEmitNotesRoundTrip(t *testing.T) {
	cu := CompileUnitNotes{
		SourceFile: "foo.c",
		Functions: []FunctionNotes{
			{Name: "foo", Blocks: [][]int{{1, 2}, {3}}},
			{Name: "bar", Blocks: [][]int{{10}}},
		},
	}

	var buf bytes.Buffer
	if err := EmitNotes(&buf, cu); err != nil {
		t.Fatalf("EmitNotes: %v", err)
	}

	r := wire.NewReader(&buf)
	magic, err := r.ReadWord()
	if err != nil || magic != notesMagic {
		t.Fatalf("magic = %#x, %v", magic, err)
	}
	src, err := r.ReadString()
	if err != nil || src != "foo.c" {
		t.Fatalf("source = %q, %v", src, err)
	}
	funcCount, err := r.ReadWord()
	if err != nil || funcCount != 2 {
		t.Fatalf("func_count = %d, %v", funcCount, err)
	}

	name, err := r.ReadString()
	if err != nil || name != "foo" {
		t.Fatalf("func name = %q, %v", name, err)
	}
	blockCount, err := r.ReadWord()
	if err != nil || blockCount != 2 {
		t.Fatalf("block_count = %d, %v", blockCount, err)
	}
	lineCount, err := r.ReadWord()
	if err != nil || lineCount != 2 {
		t.Fatalf("line_count = %d, %v", lineCount, err)
	}
	l0, _ := r.ReadWord()
	l1, _ := r.ReadWord()
	if l0 != 1 || l1 != 2 {
		t.Fatalf("lines = [%d %d], want [1 2]", l0, l1)
	}
}
