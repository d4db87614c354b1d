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

// Package config holds the build-time constants and process table of the
// executive: reserved PIDs, priority levels, message types, and the fixed
// pool sizing. Nothing here is computed; it is the Go analogue of
// common.h and k_rtx.h in the original kernel sources.
package config

// PID identifies a process. PID 0 is always the NULL process.
type PID int

// String renders a PID for logging.
func (p PID) String() string {
	if p >= 0 && int(p) < len(pidNames) {
		return pidNames[p]
	}
	return "pid?"
}

var pidNames = [...]string{
	PIDNull: "null", PIDP1: "p1", PIDP2: "p2", PIDP3: "p3", PIDP4: "p4",
	PIDP5: "p5", PIDP6: "p6", PIDTestA: "test_a", PIDTestB: "test_b",
	PIDTestC: "test_c", PIDSetPrio: "set_prio", PIDClock: "clock",
	PIDKCD: "kcd", PIDCRT: "crt", PIDTimerIProc: "timer_iproc",
	PIDUARTIProc: "uart_iproc",
}

// Priority levels. The lower the number, the higher the priority.
type Priority int

const (
	HIGHEST Priority = iota
	MEDIUM
	LOW
	LOWEST
	NullPrio   // no user process may hold this priority
	IProcPrio  // implicit priority of interrupt-driven pseudo-processes
	NumPriorities
)

// UserMaxPriority is the lowest priority settable via SetProcessPriority.
const UserMaxPriority = LOWEST

// Reserved process identifiers (spec.md §6).
const (
	PIDNull PID = iota
	PIDP1
	PIDP2
	PIDP3
	PIDP4
	PIDP5
	PIDP6
	PIDTestA
	PIDTestB
	PIDTestC
	PIDSetPrio
	PIDClock
	PIDKCD
	PIDCRT
	PIDTimerIProc
	PIDUARTIProc
	NumPIDs
)

// Message types (spec.md §6).
const (
	MsgDefault = iota
	MsgKCDReg
	MsgKCDKeyboardInput
	MsgCRTDisplay
	MsgCountReport
	MsgWakeup10
)

// Debug hot-keys recognized by the UART RX interrupt handler.
const (
	HotkeyReadyQueue        = '!'
	HotkeyBlockedMemQueue   = '@'
	HotkeyBlockedRecvQueue  = '#'
)

// Fixed memory pool geometry (spec.md §3).
const (
	BlockSize = 128
	NumBlocks = 30
)

// TimerTickMS is the nominal period of the timer interrupt.
const TimerTickMS = 1

// EagerPreemptTicks is how often (in ticks) the round-robin preemption check
// runs within a priority level (spec.md §4.5).
const EagerPreemptTicks = 100

// ProcInit is one row of the build-time process table (PROC_INIT in the
// original sources): which PID a process is, and what priority it starts at.
// The entry point itself is supplied by the boot package, which is the one
// place that knows both the process table and the scheduler type — keeping
// it out of config avoids a config -> sched import cycle.
type ProcInit struct {
	PID      PID
	Priority Priority
}
