/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package xerr holds the sentinel errors returned by the public primitive
// surface (the api package) and a small Assert helper for invariants that
// must never be reachable from outside the kernel.
package xerr

import "errors"

var (
	// ErrBadArg is returned when a caller-supplied argument is out of range,
	// e.g. an envelope longer than the maximum message text, or a priority
	// outside [HIGHEST, LOWEST].
	ErrBadArg = errors.New("rtx: bad argument")

	// ErrBadPointer is returned when a released memory block does not look
	// like one this pool handed out: wrong alignment, out of arena range, or
	// already free.
	ErrBadPointer = errors.New("rtx: bad memory block pointer")

	// ErrNotPermitted is returned when an operation targets a PID that may
	// not be the subject of it, e.g. moving the NULL process off NullPrio.
	// A user process asked to take NullPrio or any level past the user
	// maximum gets ErrBadArg instead.
	ErrNotPermitted = errors.New("rtx: operation not permitted")

	// ErrNoMessage names the empty-mailbox case of a non-blocking receive.
	// Kernel.TryReceiveMessage does not return it; it reports that case
	// with ok=false.
	ErrNoMessage = errors.New("rtx: no message available")

	// ErrUnknownProcess is returned when a PID is not in the process table.
	ErrUnknownProcess = errors.New("rtx: unknown process")
)

// Assert panics with msg if cond is false. It marks invariants that the
// kernel's own bookkeeping should make impossible to violate -- not
// caller-input validation, which goes through the Err* sentinels instead.
func Assert(cond bool, msg string) {
	if !cond {
		panic("rtx: assertion failed: " + msg)
	}
}
