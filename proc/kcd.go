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

// Package proc holds the collaborator processes specified only by the
// messages they exchange with the kernel and each other: the keyboard
// command dispatcher, the wall clock, the CRT output sink, and the
// set-priority helper. None of them is part of the core executive; each is
// just an ordinary process body built on the api/sched primitive surface.
package proc

import (
	"bytes"

	"github.com/rtxgo/kernel/config"
	"github.com/rtxgo/kernel/internal/klog"
	"github.com/rtxgo/kernel/mem"
	"github.com/rtxgo/kernel/sched"
)

type registration struct {
	prefix  string
	handler config.PID
}

// KCD dispatches registered command prefixes to their handlers. It owns a
// table built up entirely from KCD_REG messages -- there is no fixed
// registration step at boot, each collaborator registers itself the first
// time it runs.
func KCD(k *sched.Kernel, self config.PID) {
	var entries []registration

	for {
		e := k.ReceiveMessage(self)

		switch {
		case e.Type == config.MsgKCDReg:
			entries = append(entries, registration{prefix: string(e.Text), handler: e.Sender})
			releaseIfBlock(k, self, e.Text)

		case e.Sender == config.PIDUARTIProc:
			dispatchLine(k, self, entries, e.Text)

		default:
			klog.Debugf("kcd: unexpected message type %d from %v", e.Type, e.Sender)
			releaseIfBlock(k, self, e.Text)
		}
	}
}

// dispatchLine forwards line to every registered handler whose prefix
// matches, each exactly once, mirroring kcd.c's sent_to_mask bitmask.
func dispatchLine(k *sched.Kernel, self config.PID, entries []registration, line []byte) {
	sentTo := make(map[config.PID]bool, len(entries))
	for _, reg := range entries {
		if sentTo[reg.handler] {
			continue
		}
		if !bytes.HasPrefix(line, []byte(reg.prefix)) {
			continue
		}
		sentTo[reg.handler] = true

		blk := k.RequestMemoryBlock(self)
		n := copy(blk, line)
		if err := k.SendMessage(self, reg.handler, config.MsgDefault, blk[:n:mem.BlockPayloadSize()]); err != nil {
			klog.Debugf("kcd: forward to %v failed: %v", reg.handler, err)
		}
	}
}
