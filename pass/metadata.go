// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pass

import "github.com/myrrc/tinycoverage/ir"

// CountersSection and FuncNamesSection are the section names §6.1
// fixes for the persisted metadata.
const (
	CountersSection   = "__tinycoverage_counters"
	FuncNamesSection  = "__tinycoverage_func_names"
	CallbackName      = "__tinycoverage_init"
	sectionStartName  = "__start___tinycoverage_counters"
	sectionStopName   = "__stop___tinycoverage_counters"
	namesStartName    = "__start___tinycoverage_func_names"
	moduleCtorName    = "tinycoverage.module_ctor"
	moduleCtorPrio    = 2
)

// ModuleCtor describes the synthesized constructor of §4.C step 4: a
// comdat-grouped function, registered in the module's global-constructor
// list at priority 2, that calls __tinycoverage_init with the three
// bounds symbols.
type ModuleCtor struct {
	Name     string
	Priority int
	Callback string
	Args     []string // the three bounds symbol names, in ABI order
}

// ModuleMetadata is the Go-level description of what §4.C's steps
// allocate for one module: the two arrays, the bounds symbols, and the
// constructor that wires them together. A real LLVM backend lowers this
// into the ELF sections named by §6.1; this module does not itself emit
// an object file (see SPEC_FULL.md §3 Non-goal).
type ModuleMetadata struct {
	Counters  *ir.GlobalVar
	FuncNames *ir.GlobalVar

	SecStart, SecStop, NamesStart *ir.GlobalVar

	Ctor *ModuleCtor

	// FuncNamesOf is indexed the same way as Counters/FuncNames: index i
	// holds the owning function's linkage name for block i (§3: "one
	// entry per block ... block i holds the pointer to its function's
	// name").
	FuncNamesOf []string
}

// BuildModuleMetadata allocates the module-level globals and constructor
// descriptor for a module whose functions' selected block counts are
// given by blocksPerFunc (parallel to funcNames), per §4.C.
func BuildModuleMetadata(m *ir.Module, funcNames []string, blocksPerFunc []int) *ModuleMetadata {
	n := 0
	var funcNamesOf []string
	for i, count := range blocksPerFunc {
		n += count
		for j := 0; j < count; j++ {
			funcNamesOf = append(funcNamesOf, funcNames[i])
		}
	}

	counters := &ir.GlobalVar{
		Name:    "__tinycoverage_counters",
		Linkage: ir.LinkagePrivate,
		Section: CountersSection,
		Align:   1, // byte-wide boolean store size (§4.C step 1)
		Len:     n,
	}
	funcNamesArr := &ir.GlobalVar{
		Name:    "__tinycoverage_func_names",
		Linkage: ir.LinkagePrivate,
		Section: FuncNamesSection,
		Align:   m.PointerBits / 8,
		Len:     n,
	}

	secStart := &ir.GlobalVar{Name: sectionStartName, Linkage: ir.LinkageExternalWeak, Hidden: true, Const: false}
	secStop := &ir.GlobalVar{Name: sectionStopName, Linkage: ir.LinkageExternalWeak, Hidden: true, Const: false}
	namesStart := &ir.GlobalVar{Name: namesStartName, Linkage: ir.LinkageExternalWeak, Hidden: true, Const: false}

	ctor := &ModuleCtor{
		Name:     moduleCtorName,
		Priority: moduleCtorPrio,
		Callback: CallbackName,
		Args:     []string{sectionStartName, sectionStopName, namesStartName},
	}

	m.AddGlobal(counters)
	m.AddGlobal(funcNamesArr)
	m.AddGlobal(secStart)
	m.AddGlobal(secStop)
	m.AddGlobal(namesStart)
	m.AppendCompilerUsed(counters)
	m.AppendCompilerUsed(funcNamesArr)

	return &ModuleMetadata{
		Counters:    counters,
		FuncNames:   funcNamesArr,
		SecStart:    secStart,
		SecStop:     secStop,
		NamesStart:  namesStart,
		Ctor:        ctor,
		FuncNamesOf: funcNamesOf,
	}
}

// FuncNameStringLinkage is the linkage per-function name string globals
// use so identical names fold at link time across translation units
// (§3, §4.C step 2, §9 "Deduplication via linkage").
const FuncNameStringLinkage = ir.LinkageLinkOnceODR
