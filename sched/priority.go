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

import (
	"github.com/rtxgo/kernel/config"
	"github.com/rtxgo/kernel/internal/xerr"
)

// SetPriority changes target's priority. If target currently sits on the
// ready queue it is relocated to its new lane (losing its place in the old
// one, keeping FIFO order in the new one); if target is self or otherwise
// affects who should be running, the preemption check
// (checkPreemptionLocked) runs immediately afterward.
func (k *Kernel) SetPriority(target config.PID, newPrio config.Priority) error {
	if target == config.PIDNull {
		if newPrio == config.NullPrio {
			return nil // no-op: NULL is already at NULL_PRIO
		}
		return xerr.ErrNotPermitted
	}
	if newPrio < config.HIGHEST || newPrio > config.UserMaxPriority {
		return xerr.ErrBadArg
	}
	if int(target) < 0 || int(target) >= int(config.NumPIDs) {
		return xerr.ErrBadArg
	}
	k.lock()
	pcb := k.pcbs[target]
	if pcb == nil {
		k.unlock()
		return xerr.ErrBadArg
	}
	pcb.Priority = newPrio
	switch pcb.State {
	case StateReady:
		k.ready.Move(target, newPrio)
	case StateBlockedOnResource:
		k.blocked.Move(target, newPrio)
	}
	k.checkPreemptionLocked()
	return nil
}

// GetPriority reports target's current priority.
func (k *Kernel) GetPriority(target config.PID) (config.Priority, error) {
	if int(target) < 0 || int(target) >= int(config.NumPIDs) {
		return 0, xerr.ErrBadArg
	}
	k.lock()
	defer k.unlock()
	pcb := k.pcbs[target]
	if pcb == nil {
		return 0, xerr.ErrBadArg
	}
	return pcb.Priority, nil
}
