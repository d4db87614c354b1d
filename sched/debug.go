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

package sched

import "github.com/rtxgo/kernel/config"

// ReadyQueueSnapshot lists every PID currently on the ready queue, in
// dispatch order. It exists for the UART hot-key queue dumps and never
// mutates scheduler state.
func (k *Kernel) ReadyQueueSnapshot() []config.PID {
	k.lock()
	defer k.unlock()
	return k.ready.Snapshot()
}

// BlockedOnResourceSnapshot lists every PID currently waiting for a memory
// block, in priority order.
func (k *Kernel) BlockedOnResourceSnapshot() []config.PID {
	k.lock()
	defer k.unlock()
	return k.blocked.Snapshot()
}

// BlockedOnReceiveSnapshot lists every PID currently blocked awaiting a
// message.
func (k *Kernel) BlockedOnReceiveSnapshot() []config.PID {
	k.lock()
	defer k.unlock()
	var out []config.PID
	for _, pcb := range k.pcbs {
		if pcb != nil && pcb.State == StateBlockedOnReceive {
			out = append(out, pcb.PID)
		}
	}
	return out
}
