// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ir

// Opcode identifies the handful of instruction shapes the pass needs to
// reason about. It is not a general-purpose IR; unmodeled instructions
// are represented as OpOther and carry no pass-relevant structure.
type Opcode int

const (
	OpOther Opcode = iota
	OpPhi
	OpDebugIntrinsic
	OpLifetimeIntrinsic
	OpUnreachable
	OpAlloca
	OpLocalEscape
	OpLoad
	OpStore
	OpBr
	OpCondBr
)

// Instruction is one IR instruction within a BasicBlock.
type Instruction struct {
	Op  Opcode
	Loc DebugLoc

	// NoSanitize is set on the load/store pair the injector emits so
	// that other instrumentation passes do not recursively instrument
	// them (§4.B step 4).
	NoSanitize bool

	// Synthetic marks instructions the injector inserted, as opposed to
	// instructions that were present in the block before injection.
	Synthetic bool

	// CounterIndex and Counters identify which slot of the module's
	// counters array a synthetic load/store instruction touches. Unset
	// for non-synthetic instructions.
	CounterIndex int
	Counters     *GlobalVar
}

// HasLine reports whether the instruction carries a debug location with
// a source line usable by the notes emitter (§4.D: "carries a debug
// location with line > 0").
func (i *Instruction) HasLine() bool {
	return i.Loc.Line > 0
}

// IsDebugOrLifetime reports whether the instruction should be skipped
// when looking for a block's first real instruction (§4.A step 1).
func (i *Instruction) IsDebugOrLifetime() bool {
	switch i.Op {
	case OpPhi, OpDebugIntrinsic, OpLifetimeIntrinsic:
		return true
	default:
		return false
	}
}
