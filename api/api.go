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

// Package api is the public primitive surface every process body is
// written against: release_processor, request/release_memory_block,
// send/receive_message, delayed_send, and get/set_process_priority. It is
// a thin, self-documenting shim over *sched.Kernel -- every call here maps
// to exactly one Kernel method -- kept separate so process code reads
// against primitive names rather than scheduler internals.
package api

import (
	"github.com/rtxgo/kernel/config"
	"github.com/rtxgo/kernel/mbox"
	"github.com/rtxgo/kernel/sched"
)

// ReleaseProcessor gives up the rest of self's time slice voluntarily.
func ReleaseProcessor(k *sched.Kernel, self config.PID) {
	k.ReleaseProcessor(self)
}

// RequestMemoryBlock blocks self until a fixed-size block is available and
// returns it.
func RequestMemoryBlock(k *sched.Kernel, self config.PID) []byte {
	return k.RequestMemoryBlock(self)
}

// ReleaseMemoryBlock returns blk to the pool.
func ReleaseMemoryBlock(k *sched.Kernel, self config.PID, blk []byte) error {
	return k.ReleaseMemoryBlock(self, blk)
}

// SendMessage delivers a message from self to receiver immediately.
func SendMessage(k *sched.Kernel, self, receiver config.PID, msgType int32, text []byte) error {
	return k.SendMessage(self, receiver, msgType, text)
}

// ReceiveMessage blocks self until a message arrives for it.
func ReceiveMessage(k *sched.Kernel, self config.PID) mbox.Envelope {
	return k.ReceiveMessage(self)
}

// ReceiveMessageNonBlocking returns self's oldest pending message, if any,
// without blocking.
func ReceiveMessageNonBlocking(k *sched.Kernel, self config.PID) (mbox.Envelope, bool) {
	return k.TryReceiveMessage(self)
}

// DelayedSend schedules a message to be delivered delayTicks ticks from
// now.
func DelayedSend(k *sched.Kernel, self, receiver config.PID, msgType int32, text []byte, delayTicks uint64) error {
	return k.DelayedSend(self, receiver, msgType, text, delayTicks)
}

// SetProcessPriority changes target's priority.
func SetProcessPriority(k *sched.Kernel, target config.PID, newPrio config.Priority) error {
	return k.SetPriority(target, newPrio)
}

// GetProcessPriority reports target's current priority.
func GetProcessPriority(k *sched.Kernel, target config.PID) (config.Priority, error) {
	return k.GetPriority(target)
}
