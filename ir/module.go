// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ir

// GlobalVar is a module-level global, modeling the globals §4.C
// allocates: the counters array, the func_names array, the per-function
// name strings, and the weak-external bounds symbols.
type GlobalVar struct {
	Name    string
	Linkage Linkage
	Section string
	Align   int
	Const   bool // §9 Open Question (1): bounds symbols resolve to false
	Hidden  bool
	Len     int // element count, for arrays; 0 for scalars
}

// CompileUnit is one debug-info root, corresponding to one source
// translation input (glossary). DWOId is non-zero for split-DWARF
// skeleton CUs, which the pass driver skips (§4.G step 2).
type CompileUnit struct {
	SourceFile string
	Functions  []*Function
	DWOId      uint64
}

// IsSkeleton reports whether cu is a split-DWARF skeleton compile unit.
func (cu *CompileUnit) IsSkeleton() bool {
	return cu.DWOId != 0
}

// Module is the top-level unit the pass driver processes (§4.G: "Per
// module"). PointerBits comes from the module's data layout and sets
// the alignment of the func_names pointer array (§4.C step 2).
type Module struct {
	Name         string
	CompileUnits []*CompileUnit
	PointerBits  int

	globals        []*GlobalVar
	compilerUsed   map[string]bool
}

// AddGlobal registers a global with the module.
func (m *Module) AddGlobal(g *GlobalVar) {
	m.globals = append(m.globals, g)
}

// Globals returns the module's globals in insertion order.
func (m *Module) Globals() []*GlobalVar {
	return m.globals
}

// AppendCompilerUsed records g as surviving dead-stripping (§4.C step 5).
func (m *Module) AppendCompilerUsed(g *GlobalVar) {
	if m.compilerUsed == nil {
		m.compilerUsed = make(map[string]bool)
	}
	m.compilerUsed[g.Name] = true
}

// IsCompilerUsed reports whether g was appended to the compiler-used
// list.
func (m *Module) IsCompilerUsed(g *GlobalVar) bool {
	return m.compilerUsed[g.Name]
}

// Functions iterates all functions across all non-skeleton compile
// units, in compile-unit then declaration order.
func (m *Module) Functions() []*Function {
	var fns []*Function
	for _, cu := range m.CompileUnits {
		if cu.IsSkeleton() {
			continue
		}
		fns = append(fns, cu.Functions...)
	}
	return fns
}
