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

package main

import (
	"bytes"
	"strconv"

	"github.com/rtxgo/kernel/config"
	"github.com/rtxgo/kernel/mbox"
	"github.com/rtxgo/kernel/mem"
	"github.com/rtxgo/kernel/sched"
)

// demoA, demoB and demoC are the classic three-process stress chain: A
// registers "%Z" as its start command, then on every release_processor
// counts up and forwards to B; B forwards whatever it gets to C; C watches
// the count and, every 20 messages, prints a line to the CRT and hibernates
// for ten seconds before resuming.
//
// demoTicksPerSecond expresses the original's 10-second delayed_send in
// ticks of this port's timer.
const demoTicksPerSecond = 1000 / config.TimerTickMS

func demoA(k *sched.Kernel, self config.PID) {
	reg := k.RequestMemoryBlock(self)
	n := copy(reg, "%Z")
	if err := k.SendMessage(self, config.PIDKCD, config.MsgKCDReg, reg[:n:mem.BlockPayloadSize()]); err != nil {
		return
	}

	for {
		e := k.ReceiveMessage(self)
		hit := bytes.Contains(e.Text, []byte("%Z"))
		_ = k.ReleaseMemoryBlock(self, mem.Reclaim(e.Text))
		if hit {
			break
		}
	}

	for num := 0; ; num++ {
		blk := k.RequestMemoryBlock(self)
		n := copy(blk, strconv.Itoa(num))
		if err := k.SendMessage(self, config.PIDTestB, config.MsgCountReport, blk[:n:mem.BlockPayloadSize()]); err != nil {
			return
		}
		k.ReleaseProcessor(self)
	}
}

func demoB(k *sched.Kernel, self config.PID) {
	for {
		e := k.ReceiveMessage(self)
		if err := k.SendMessage(self, config.PIDTestC, e.Type, e.Text); err != nil {
			return
		}
	}
}

func demoC(k *sched.Kernel, self config.PID) {
	var pending []mbox.Envelope
	hibernateNext := false

	for {
		var e mbox.Envelope
		if len(pending) > 0 {
			e, pending = pending[0], pending[1:]
		} else {
			e = k.ReceiveMessage(self)
		}

		if e.Type != config.MsgCountReport {
			_ = k.ReleaseMemoryBlock(self, mem.Reclaim(e.Text))
			k.ReleaseProcessor(self)
			continue
		}

		count, _ := strconv.Atoi(string(e.Text))

		if hibernateNext {
			hibernateNext = false
			woke, ok := hibernate(k, self, e.Text, &pending)
			if !ok {
				return
			}
			e = woke
		}

		if count%20 == 0 {
			n := copy(e.Text[:cap(e.Text)], "Process C\n")
			if err := k.SendMessage(self, config.PIDCRT, config.MsgCRTDisplay, e.Text[:n:mem.BlockPayloadSize()]); err != nil {
				return
			}
			hibernateNext = true
			continue
		}

		_ = k.ReleaseMemoryBlock(self, mem.Reclaim(e.Text))
		k.ReleaseProcessor(self)
	}
}

// hibernate re-sends blk (the memory block backing the envelope that
// triggered hibernation) to self ten seconds out and blocks on
// ReceiveMessage until the wakeup comes back, queueing anything else that
// arrives in the meantime onto pending for the caller to drain first.
// Mirrors sys_proc.c's hibernate(): the block is never released, only
// recycled, so its full capacity survives for the caller to write into.
func hibernate(k *sched.Kernel, self config.PID, blk []byte, pending *[]mbox.Envelope) (mbox.Envelope, bool) {
	full := mem.Reclaim(blk)
	if err := k.DelayedSend(self, self, config.MsgWakeup10, full[:0:cap(full)], demoTicksPerSecond*10); err != nil {
		return mbox.Envelope{}, false
	}
	for {
		e := k.ReceiveMessage(self)
		if e.Type == config.MsgWakeup10 {
			return e, true
		}
		*pending = append(*pending, e)
	}
}
