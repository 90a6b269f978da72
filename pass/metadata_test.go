// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pass

import (
	"testing"

	"github.com/myrrc/tinycoverage/ir"
)

func TestBuildModuleMetadataCountersAndFuncNamesLengthsMatch(t *testing.T) {
	m := &ir.Module{PointerBits: 64}
	meta := BuildModuleMetadata(m, []string{"foo", "bar"}, []int{2, 1})

	if meta.Counters.Len != meta.FuncNames.Len {
		t.Fatalf("|counters| (%d) != |func_names| (%d)", meta.Counters.Len, meta.FuncNames.Len)
	}
	if meta.Counters.Len != 3 {
		t.Fatalf("expected 3 total blocks, got %d", meta.Counters.Len)
	}
}

func TestBuildModuleMetadataFuncNamesOfIsPerBlock(t *testing.T) {
	m := &ir.Module{PointerBits: 64}
	meta := BuildModuleMetadata(m, []string{"foo", "bar"}, []int{2, 1})

	want := []string{"foo", "foo", "bar"}
	if len(meta.FuncNamesOf) != len(want) {
		t.Fatalf("len(FuncNamesOf) = %d, want %d", len(meta.FuncNamesOf), len(want))
	}
	for i, name := range want {
		if meta.FuncNamesOf[i] != name {
			t.Errorf("FuncNamesOf[%d] = %q, want %q", i, meta.FuncNamesOf[i], name)
		}
	}
}

func TestBuildModuleMetadataSectionsAndLinkage(t *testing.T) {
	m := &ir.Module{PointerBits: 64}
	meta := BuildModuleMetadata(m, []string{"foo"}, []int{1})

	if meta.Counters.Section != CountersSection {
		t.Errorf("Counters.Section = %q, want %q", meta.Counters.Section, CountersSection)
	}
	if meta.FuncNames.Section != FuncNamesSection {
		t.Errorf("FuncNames.Section = %q, want %q", meta.FuncNames.Section, FuncNamesSection)
	}
	if meta.Counters.Linkage != ir.LinkagePrivate {
		t.Errorf("Counters.Linkage = %v, want private", meta.Counters.Linkage)
	}
	if meta.Counters.Align != 1 {
		t.Errorf("Counters.Align = %d, want 1 (byte-wide boolean)", meta.Counters.Align)
	}
	if meta.FuncNames.Align != m.PointerBits/8 {
		t.Errorf("FuncNames.Align = %d, want %d", meta.FuncNames.Align, m.PointerBits/8)
	}
}

func TestBuildModuleMetadataBoundsSymbolsAreWeakHiddenAndMutable(t *testing.T) {
	m := &ir.Module{PointerBits: 64}
	meta := BuildModuleMetadata(m, []string{"foo"}, []int{1})

	for _, g := range []*ir.GlobalVar{meta.SecStart, meta.SecStop, meta.NamesStart} {
		if g.Linkage != ir.LinkageExternalWeak {
			t.Errorf("%s: linkage = %v, want external weak", g.Name, g.Linkage)
		}
		if !g.Hidden {
			t.Errorf("%s: must be hidden-visibility", g.Name)
		}
		// §9 Open Question (1): mutable, not const -- the linker emits
		// a non-const symbol.
		if g.Const {
			t.Errorf("%s: must be mutable, resolving Open Question (1)", g.Name)
		}
	}
}

func TestBuildModuleMetadataCtor(t *testing.T) {
	m := &ir.Module{PointerBits: 64}
	meta := BuildModuleMetadata(m, []string{"foo"}, []int{1})

	if meta.Ctor.Name != moduleCtorName {
		t.Errorf("Ctor.Name = %q, want %q", meta.Ctor.Name, moduleCtorName)
	}
	if meta.Ctor.Priority != 2 {
		t.Errorf("Ctor.Priority = %d, want 2", meta.Ctor.Priority)
	}
	if meta.Ctor.Callback != CallbackName {
		t.Errorf("Ctor.Callback = %q, want %q", meta.Ctor.Callback, CallbackName)
	}
	want := []string{sectionStartName, sectionStopName, namesStartName}
	if len(meta.Ctor.Args) != len(want) {
		t.Fatalf("Ctor.Args = %v", meta.Ctor.Args)
	}
	for i, a := range want {
		if meta.Ctor.Args[i] != a {
			t.Errorf("Ctor.Args[%d] = %q, want %q", i, meta.Ctor.Args[i], a)
		}
	}
}

func TestBuildModuleMetadataAddsCompilerUsed(t *testing.T) {
	m := &ir.Module{PointerBits: 64}
	meta := BuildModuleMetadata(m, []string{"foo"}, []int{1})

	if !m.IsCompilerUsed(meta.Counters) {
		t.Errorf("counters global must survive dead-stripping (§4.C step 5)")
	}
	if !m.IsCompilerUsed(meta.FuncNames) {
		t.Errorf("func_names global must survive dead-stripping (§4.C step 5)")
	}
}
