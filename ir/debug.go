// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ir models the slice of LLVM IR that the tinycoverage pass
// actually touches: modules, functions, basic blocks, instructions and
// debug locations. A real front end constructs this graph from a parsed
// bitcode module and hands it to pass.Driver.Run once per module; the
// LLVM pass-plugin registration surface itself is out of scope (see
// spec.md §1).
package ir

// DebugLoc is a source position attached to an instruction, mirroring
// LLVM's DILocation.
type DebugLoc struct {
	Line, Column int
	Scope        *Subprogram
}

// Subprogram is the debug-info description of a function, taken from
// the module's compile unit. SourceFile and ScopeLine are the two fields
// the pass actually consults (§3, §4.B).
type Subprogram struct {
	Name       string
	SourceFile string
	ScopeLine  int
}

// Synthesize builds a fallback DebugLoc for an instruction that has none,
// per §4.B step 5: line 0, column 0, attributed to the subprogram.
func (sp *Subprogram) Synthesize() DebugLoc {
	return DebugLoc{Line: 0, Column: 0, Scope: sp}
}

// EntryLoc builds the DebugLoc used for the entry block's guard, which
// uses the subprogram's scope line rather than line 0 (§4.B step 5).
func (sp *Subprogram) EntryLoc() DebugLoc {
	return DebugLoc{Line: sp.ScopeLine, Column: 0, Scope: sp}
}
