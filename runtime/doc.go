// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package runtime is the process-wide receiver of per-module
// instrumentation tables and the memory-mapped report-file writer that
// backs the C ABI of §6.2. A pass-generated module constructor calls
// __tinycoverage_init once per module at load time to hand over that
// module's counters/func_names ranges (§4.E); the host test harness
// calls the three exported entry points — tinycoverage_init,
// tinycoverage_test_finished, tinycoverage_shut_down — around the
// program's test loop.
//
// The mmap lifecycle (open, mmap shared, write from userspace, msync,
// munmap, close) follows the same shape as syzkaller's kcov package,
// which memory-maps a kernel-shared coverage buffer for the same
// reason: letting a tracer deposit data without a syscall per record.
package runtime

// wordSize is the on-disk word size used throughout §6.3/§6.4; kept
// local so the mmap arithmetic in state.go doesn't need to import wire
// just for this constant.
const wordSize = 4

// defaultCapacity is the report file's upper-bound size in bytes,
// resolving §9 Open Question (2): "this is likely too small for
// sustained fuzzing... treat it as a deployment parameter, not a
// constant." WithCapacity overrides it per State.
const defaultCapacity = 200 * 1024
