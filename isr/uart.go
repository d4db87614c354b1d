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

package isr

import (
	"context"

	"github.com/bytedance/gopkg/lang/dirtmake"

	"github.com/rtxgo/kernel/config"
	"github.com/rtxgo/kernel/internal/klog"
	"github.com/rtxgo/kernel/mbox"
	"github.com/rtxgo/kernel/mem"
	"github.com/rtxgo/kernel/sched"
)

// UART models the interrupt-driven RX side (channel 0) plus a non-blocking
// TX ring (channel 1, polled). RX bytes arrive over a channel rather than a
// real register, but the handling is the same shape as uart_irq.c's RX/TX
// paths: echo, line-buffer, hot-key interception, and a line handed to KCD
// on '\r'.
type UART struct {
	k *sched.Kernel

	rx chan byte
	tx chan byte

	line []byte
}

// NewUART builds a UART ISR bound to k. rxBuf is the channel the board's RX
// source (a pty, a test harness, a real interrupt shim) feeds bytes into.
func NewUART(k *sched.Kernel, rxBuf <-chan byte) *UART {
	maxLine := mbox.MaxTextLen(mem.BlockPayloadSize())
	return &UART{k: k, rx: toChan(rxBuf), tx: make(chan byte, 256), line: dirtmake.Bytes(0, maxLine)}
}

func toChan(c <-chan byte) chan byte {
	// rx is read-only from the ISR's point of view; wrapping it keeps the
	// field type simple without exposing a send side externally.
	out := make(chan byte)
	go func() {
		defer close(out)
		for b := range c {
			out <- b
		}
	}()
	return out
}

// Output returns the TX ring a board driver (or a test harness) drains to
// produce actual terminal output.
func (u *UART) Output() <-chan byte {
	return u.tx
}

// Write queues p onto the TX ring non-blockingly, the way crt.c hands bytes
// to the polled TX-empty interrupt: bytes that don't fit are dropped rather
// than stalling the caller. It is the CRT process's only way to produce
// output, and is safe to call from any goroutine.
func (u *UART) Write(p []byte) (accepted int) {
	for _, b := range p {
		select {
		case u.tx <- b:
			accepted++
		default:
			return accepted
		}
	}
	return accepted
}

func (u *UART) echo(b byte) {
	select {
	case u.tx <- b:
	default:
	}
}

// Run services RX bytes until ctx is cancelled.
func (u *UART) Run(ctx context.Context) {
	defer klog.Recover("uart_iproc")
	for {
		select {
		case b, ok := <-u.rx:
			if !ok {
				return
			}
			u.handleRX(b)
		case <-ctx.Done():
			return
		}
	}
}

func (u *UART) handleRX(b byte) {
	switch b {
	case config.HotkeyReadyQueue:
		klog.Infof("ready queue: %v", u.k.ReadyQueueSnapshot())
		return
	case config.HotkeyBlockedMemQueue:
		klog.Infof("blocked-on-memory queue: %v", u.k.BlockedOnResourceSnapshot())
		return
	case config.HotkeyBlockedRecvQueue:
		klog.Infof("blocked-on-receive queue: %v", u.k.BlockedOnReceiveSnapshot())
		return
	}

	u.echo(b)

	if b == '\r' || b == '\n' {
		if len(u.line) == 0 {
			return
		}
		line := append([]byte(nil), u.line...)
		u.line = u.line[:0]
		if err := u.k.InjectMessage(config.PIDUARTIProc, config.PIDKCD, config.MsgKCDKeyboardInput, line); err != nil {
			klog.Debugf("uart: KCD unreachable: %v", err)
		}
		return
	}

	if len(u.line) < cap(u.line) {
		u.line = append(u.line, b)
	}
	// input ring full: drop the byte, matching uart_irq.c's "drop if full"
}
