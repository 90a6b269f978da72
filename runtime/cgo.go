// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build cgo

package runtime

/*
#include <stdbool.h>
*/
import "C"
import "unsafe"

// global is the single runtime instance the cgo-exported entry points
// operate on, matching the C ABI's assumption of one runtime per
// process (§3, §6.2).
var global = New()

// __tinycoverage_init is called once per module by that module's
// compiler-synthesized constructor (§4.C step 4), handing over the
// module's counters/func_names section bounds. names_start points to
// an array of (cnt_end-cnt_start) char* entries, one per block, each
// pointing at the owning function's NUL-terminated linkage name (§3).
//
//export __tinycoverage_init
func tinycoverageModuleInit(cntStart, cntEnd *C.bool, namesStart **C.char) {
	n := int(uintptr(unsafe.Pointer(cntEnd)) - uintptr(unsafe.Pointer(cntStart)))
	if n <= 0 {
		return
	}

	counters := unsafe.Slice((*byte)(unsafe.Pointer(cntStart)), n)

	namePtrs := unsafe.Slice(namesStart, n)
	names := make([]string, n)
	for i, p := range namePtrs {
		names[i] = C.GoString(p)
	}

	global.RegisterModule(counters, names)
}

// tinycoverage_init is the host-facing entry point (§6.2): open and map
// the report file. Returns 0 on success, -1 on failure (errno is
// whatever the failing syscall left behind, per §4.E step 5).
//
//export tinycoverage_init
func tinycoverageInit(reportFilePath *C.char) C.int {
	if err := global.Init(C.GoString(reportFilePath)); err != nil {
		return -1
	}
	return 0
}

// tinycoverage_test_finished is the host-facing entry point (§6.2): see
// State.TestFinished. It has no failure path per §7.
//
//export tinycoverage_test_finished
func tinycoverageTestFinished() {
	global.TestFinished()
}

// tinycoverage_shut_down is the host-facing entry point (§6.2): see
// State.ShutDown. Returns 0 on success, -1 on failure.
//
//export tinycoverage_shut_down
func tinycoverageShutDown() C.int {
	if err := global.ShutDown(); err != nil {
		return -1
	}
	return 0
}
