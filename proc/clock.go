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
	"encoding/binary"
	"fmt"

	"github.com/rtxgo/kernel/config"
	"github.com/rtxgo/kernel/internal/klog"
	"github.com/rtxgo/kernel/mem"
	"github.com/rtxgo/kernel/sched"
)

const clockTickDelayTicks = 1000 // one second, at the 1ms tick rate

// clockState is the wall clock's own working memory. It lives entirely on
// the process's goroutine stack; nothing here is touched by anyone else.
type clockState struct {
	h, m, s uint
	running bool
	gen     uint32 // bumped on every accepted command; stale self-ticks are dropped
}

// Clock is the wall-clock display process: it registers "%W" with KCD,
// and on %WS/%WR starts printing "Wall clock: HH:MM:SS" to the CRT once a
// second until %WT. Self-rescheduling uses delayed_send with the tick
// generation embedded in the envelope so a stale tick from before a reset
// is silently dropped rather than restarting a clock that was told to stop.
func Clock(k *sched.Kernel, self config.PID) {
	register(k, self, "%W")

	st := &clockState{}
	for {
		e := k.ReceiveMessage(self)
		switch e.Sender {
		case config.PIDKCD:
			handleClockCommand(k, self, st, string(e.Text))
		case config.PIDClock:
			handleClockTick(k, self, st, e.Text)
		default:
			klog.Debugf("clock: ignoring message from %v", e.Sender)
		}
		if len(e.Text) > 0 {
			releaseIfBlock(k, self, e.Text)
		}
	}
}

func handleClockCommand(k *sched.Kernel, self config.PID, st *clockState, cmd string) {
	if len(cmd) < 3 || cmd[0] != '%' || cmd[1] != 'W' {
		klog.Debugf("clock: invalid command %q", cmd)
		return
	}
	switch cmd[2] {
	case 'T':
		st.gen++
		st.running = false
	case 'R':
		st.h, st.m, st.s = 0, 0, 0
		st.gen++
		st.running = true
		displayAndReschedule(k, self, st)
	case 'S':
		if len(cmd) != 12 || cmd[3] != ' ' || cmd[6] != ':' || cmd[9] != ':' {
			klog.Debugf("clock: bad %%WS format %q", cmd)
			return
		}
		h, okH := twoDigits(cmd[4], cmd[5])
		m, okM := twoDigits(cmd[7], cmd[8])
		s, okS := twoDigits(cmd[10], cmd[11])
		if !okH || !okM || !okS || h >= 24 || m >= 60 || s >= 60 {
			klog.Debugf("clock: invalid time in %q", cmd)
			return
		}
		st.h, st.m, st.s = h, m, s
		st.gen++
		st.running = true
		displayAndReschedule(k, self, st)
	default:
		klog.Debugf("clock: unknown subcommand in %q", cmd)
	}
}

func twoDigits(hi, lo byte) (uint, bool) {
	if hi < '0' || hi > '9' || lo < '0' || lo > '9' {
		return 0, false
	}
	return uint(hi-'0')*10 + uint(lo-'0'), true
}

func handleClockTick(k *sched.Kernel, self config.PID, st *clockState, payload []byte) {
	if len(payload) < 4 || binary.LittleEndian.Uint32(payload[:4]) != st.gen {
		return // stale tick from before a %WT/reset; drop it
	}
	if !st.running {
		return
	}
	st.s++
	if st.s == 60 {
		st.s = 0
		st.m++
	}
	if st.m == 60 {
		st.m = 0
		st.h++
	}
	if st.h == 24 {
		st.h = 0
	}
	displayAndReschedule(k, self, st)
}

func displayAndReschedule(k *sched.Kernel, self config.PID, st *clockState) {
	crtPrintf(k, self, fmt.Sprintf("Wall clock: %02d:%02d:%02d", st.h, st.m, st.s))

	blk := k.RequestMemoryBlock(self)
	binary.LittleEndian.PutUint32(blk[:4], st.gen)
	if err := k.DelayedSend(self, config.PIDClock, config.MsgDefault, blk[:4:mem.BlockPayloadSize()], clockTickDelayTicks); err != nil {
		klog.Debugf("clock: failed to reschedule tick: %v", err)
	}
}
