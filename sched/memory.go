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

// RequestMemoryBlock hands self one block from the fixed pool, blocking
// (on the blocked-on-resource queue, by priority) while none is free. When
// a block is released every waiter is woken (the wake-all policy), so a
// woken process must re-check availability itself -- a higher-priority
// waiter may win the race for the single freed block first.
func (k *Kernel) RequestMemoryBlock(self config.PID) []byte {
	for {
		k.lock()
		if blk, ok := k.pool.TryAcquire(); ok {
			k.unlock()
			return blk
		}
		pcb := k.pcbs[self]
		pcb.State = StateBlockedOnResource
		k.blocked.Push(self, pcb.Priority)
		k.dispatchLocked()
	}
}

// ReleaseMemoryBlock returns blk to the pool. It validates blk first; an
// invalid pointer is returned as an error and nothing else happens. On a
// valid release every blocked-on-resource process is moved to ready (the
// wake-all policy), and the preemption check (checkPreemptionLocked) runs
// in case one of them now outranks self.
func (k *Kernel) ReleaseMemoryBlock(self config.PID, blk []byte) error {
	k.lock()
	if err := k.pool.Release(blk); err != nil {
		k.unlock()
		return err
	}
	if k.blocked.Len() == 0 {
		k.unlock()
		return nil
	}
	for _, pid := range k.blocked.Snapshot() {
		k.pcbs[pid].State = StateReady
	}
	k.blocked.DrainAllInto(k.ready)
	k.checkPreemptionLocked()
	return nil
}

// FreeBlockCount reports how many blocks are currently unallocated.
func (k *Kernel) FreeBlockCount() int {
	k.lock()
	defer k.unlock()
	return k.pool.FreeCount()
}
