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

package proc

import (
	"github.com/rtxgo/kernel/config"
	"github.com/rtxgo/kernel/internal/klog"
	"github.com/rtxgo/kernel/mem"
	"github.com/rtxgo/kernel/sched"
)

// register tells KCD that self handles commands starting with prefix.
func register(k *sched.Kernel, self config.PID, prefix string) {
	blk := k.RequestMemoryBlock(self)
	n := copy(blk, prefix)
	if err := k.SendMessage(self, config.PIDKCD, config.MsgKCDReg, blk[:n:mem.BlockPayloadSize()]); err != nil {
		klog.Debugf("%v: registration of %q failed: %v", self, prefix, err)
	}
}

// crtPrintf sends text to the CRT process for display.
func crtPrintf(k *sched.Kernel, self config.PID, text string) {
	blk := k.RequestMemoryBlock(self)
	n := copy(blk, text)
	if err := k.SendMessage(self, config.PIDCRT, config.MsgCRTDisplay, blk[:n:mem.BlockPayloadSize()]); err != nil {
		klog.Debugf("%v: crt_printf failed: %v", self, err)
	}
}

// releaseIfBlock returns a block-backed envelope text to the pool. Every
// envelope text a collaborator receives here was itself built by
// RequestMemoryBlock further up the chain (registration, KCD forwarding,
// clock self-ticks, CRT display), so it is always safe to reclaim and
// release once the handler is done reading it.
func releaseIfBlock(k *sched.Kernel, self config.PID, text []byte) {
	if err := k.ReleaseMemoryBlock(self, mem.Reclaim(text)); err != nil {
		klog.Debugf("%v: release of inbound message failed: %v", self, err)
	}
}
