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
	"github.com/rtxgo/kernel/mbox"
)

// deliverLocked drops e into its receiver's mailbox and, if the receiver
// was blocked waiting for exactly this, moves it to the ready queue. It
// reports whether a process became ready. Must be called with k.mu held.
func (k *Kernel) deliverLocked(e mbox.Envelope) bool {
	receiver := k.pcbs[e.Receiver]
	if receiver == nil {
		return false
	}
	receiver.Mailbox.Deliver(e)
	if receiver.State == StateBlockedOnReceive {
		receiver.State = StateReady
		k.ready.Push(receiver.PID, receiver.Priority)
		return true
	}
	return false
}

// SendMessage delivers an envelope from self to receiver immediately. If
// receiver was blocked awaiting a message it becomes ready, and a
// strictly-higher-priority receiver preempts self right away. If an eager
// round-robin check has come due since the last one (see Kernel.eagerDue),
// an equal-priority receiver preempts self as well.
func (k *Kernel) SendMessage(self, receiver config.PID, msgType int32, text []byte) error {
	k.lock()
	if int(receiver) < 0 || int(receiver) >= int(config.NumPIDs) || k.pcbs[receiver] == nil {
		k.unlock()
		return xerr.ErrUnknownProcess
	}
	e := mbox.Envelope{Sender: self, Receiver: receiver, Type: msgType, Text: text}
	woke := k.deliverLocked(e)
	if !woke {
		k.unlock()
		return nil
	}
	k.checkPreemptionLocked()
	return nil
}

// InjectMessage delivers an envelope from an interrupt source (sender is
// normally config.PIDTimerIProc or config.PIDUARTIProc) to receiver. Unlike
// SendMessage it never runs the preemption check: the caller here is an
// ISR goroutine, not a dispatched process, so it holds no "current" token
// and must never try to dispatch or park one (see Tick). The receiver is
// still readied immediately if it was blocked awaiting a message; whatever
// process is actually running picks up the resulting priority change at
// its own next cooperative kernel entry.
func (k *Kernel) InjectMessage(sender, receiver config.PID, msgType int32, text []byte) error {
	k.lock()
	defer k.unlock()
	if int(receiver) < 0 || int(receiver) >= int(config.NumPIDs) || k.pcbs[receiver] == nil {
		return xerr.ErrUnknownProcess
	}
	k.deliverLocked(mbox.Envelope{Sender: sender, Receiver: receiver, Type: msgType, Text: text})
	return nil
}

// ReceiveMessage blocks self until a message arrives, then returns it.
func (k *Kernel) ReceiveMessage(self config.PID) mbox.Envelope {
	for {
		k.lock()
		pcb := k.pcbs[self]
		if e, ok := pcb.Mailbox.Take(); ok {
			k.unlock()
			return e
		}
		pcb.State = StateBlockedOnReceive
		k.dispatchLocked()
	}
}

// TryReceiveMessage returns immediately: the oldest pending message for
// self, or ok=false if its mailbox is empty.
func (k *Kernel) TryReceiveMessage(self config.PID) (mbox.Envelope, bool) {
	k.lock()
	defer k.unlock()
	return k.pcbs[self].Mailbox.Take()
}

// DelayedSend schedules an envelope to be delivered delayTicks ticks from
// now. A delay of zero is equivalent to SendMessage: the envelope is
// delivered immediately rather than queued for the next Tick, which matters
// to callers with no timer running at all (a scheduler-only test, or a
// process using DelayedSend purely as a uniform send/self-send primitive).
func (k *Kernel) DelayedSend(self, receiver config.PID, msgType int32, text []byte, delayTicks uint64) error {
	k.lock()
	if int(receiver) < 0 || int(receiver) >= int(config.NumPIDs) || k.pcbs[receiver] == nil {
		k.unlock()
		return xerr.ErrUnknownProcess
	}
	e := mbox.Envelope{Sender: self, Receiver: receiver, Type: msgType, Text: text}
	if delayTicks == 0 {
		woke := k.deliverLocked(e)
		if !woke {
			k.unlock()
			return nil
		}
		k.checkPreemptionLocked()
		return nil
	}
	k.delayed.Insert(k.tick+delayTicks, e)
	k.unlock()
	return nil
}
